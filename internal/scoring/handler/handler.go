// Package handler exposes the scoring engine over HTTP. Score reads are
// public; only the refresh endpoint requires an authenticated caller.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"chainpass/internal/domain"
	id "chainpass/pkg/domain"
	dErrors "chainpass/pkg/domain-errors"
	"chainpass/pkg/platform/httputil"
	"chainpass/pkg/requestcontext"
)

// Service defines the scoring operations the handler depends on.
type Service interface {
	Evaluate(ctx context.Context, addr id.Address) (domain.ScoreResult, error)
	Refresh(ctx context.Context, addr id.Address) (domain.ScoreResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts scoring endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/score/{address}", h.HandleGetScore)
	r.Post("/score/{address}/refresh", h.HandleRefreshScore)
}

func (h *Handler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	h.evaluate(w, r, h.service.Evaluate)
}

func (h *Handler) HandleRefreshScore(w http.ResponseWriter, r *http.Request) {
	h.evaluate(w, r, h.service.Refresh)
}

func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request, eval func(context.Context, id.Address) (domain.ScoreResult, error)) {
	ctx := r.Context()
	start := time.Now()

	addr, err := id.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInvalidInput, "invalid address", err))
		return
	}

	result, err := eval(ctx, addr)
	if err != nil {
		if h.logger != nil {
			h.logger.WarnContext(ctx, "score evaluation failed",
				"request_id", requestcontext.RequestID(ctx),
				"address", addr.Short(),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	if h.logger != nil {
		h.logger.InfoContext(ctx, "score served",
			"request_id", requestcontext.RequestID(ctx),
			"address", addr.Short(),
			"score", result.Score,
			"partial", result.Partial,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
