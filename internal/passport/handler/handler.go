package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"chainpass/internal/domain"
	"chainpass/internal/passport"
	id "chainpass/pkg/domain"
	dErrors "chainpass/pkg/domain-errors"
	"chainpass/pkg/platform/httputil"
	"chainpass/pkg/requestcontext"
)

// Service defines the credential ledger operations the handler depends on.
type Service interface {
	Issue(ctx context.Context, score int, tier domain.Tier) (domain.Credential, error)
	Transfer(ctx context.Context, tokenID uint64, to id.Address) error
	Burn(ctx context.Context, tokenID uint64) error
	Approve(ctx context.Context, tokenID uint64, operator id.Address) (domain.Approval, error)
	Credential(ctx context.Context, tokenID uint64) (domain.Credential, error)
	CredentialOf(ctx context.Context, owner id.Address) (domain.Credential, error)
	RenderMetadata(ctx context.Context, tokenID uint64) (passport.Metadata, error)
}

// Handler wires passport endpoints to the credential ledger.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts passport endpoints on the router. The transfer-shaped
// surface exists so clients get a structured non_transferable conflict
// rather than a 404.
func (h *Handler) Register(r chi.Router) {
	r.Post("/passport/issue", h.HandleIssue)
	r.Get("/passport/{tokenID}", h.HandleGetCredential)
	r.Get("/passport/{tokenID}/metadata", h.HandleGetMetadata)
	r.Post("/passport/{tokenID}/transfer", h.HandleTransfer)
	r.Post("/passport/{tokenID}/approve", h.HandleApprove)
	r.Delete("/passport/{tokenID}", h.HandleBurn)
	r.Get("/passport/owner/{address}", h.HandleGetByOwner)
}

// IssueRequest is the credential write-boundary payload. Tier arrives as a
// string and is parsed against the closed set, never coerced from numbers.
type IssueRequest struct {
	Score int    `json:"score"`
	Tier  string `json:"tier"`
}

type issueResponse struct {
	TokenID  uint64      `json:"token_id"`
	Tier     domain.Tier `json:"tier"`
	Score    int         `json:"score"`
	IssuedAt time.Time   `json:"issued_at"`
}

func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[IssueRequest](w, r, h.logger)
	if !ok {
		return
	}
	tier, err := domain.ParseTier(req.Tier)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cred, err := h.service.Issue(ctx, req.Score, tier)
	if err != nil {
		if h.logger != nil {
			h.logger.WarnContext(ctx, "issuance rejected",
				"request_id", requestcontext.RequestID(ctx),
				"caller", requestcontext.Caller(ctx).Short(),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, issueResponse{
		TokenID:  cred.TokenID,
		Tier:     cred.Tier,
		Score:    cred.Score,
		IssuedAt: cred.IssuedAt,
	})
}

// TransferRequest carries the destination of a doomed transfer attempt.
type TransferRequest struct {
	To string `json:"to"`
}

func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := h.tokenID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[TransferRequest](w, r, h.logger)
	if !ok {
		return
	}
	// Destination parse failures still surface before the structural
	// rejection so callers learn about malformed addresses.
	to, err := id.ParseAddress(req.To)
	if err != nil && req.To != "" {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Transfer(r.Context(), tokenID, to); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

func (h *Handler) HandleBurn(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := h.tokenID(w, r)
	if !ok {
		return
	}
	if err := h.service.Burn(r.Context(), tokenID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "burned"})
}

// ApproveRequest names the operator being recorded.
type ApproveRequest struct {
	Operator string `json:"operator"`
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := h.tokenID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[ApproveRequest](w, r, h.logger)
	if !ok {
		return
	}
	operator, err := id.ParseAddress(req.Operator)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	approval, err := h.service.Approve(r.Context(), tokenID, operator)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, approval)
}

func (h *Handler) HandleGetCredential(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := h.tokenID(w, r)
	if !ok {
		return
	}
	cred, err := h.service.Credential(r.Context(), tokenID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cred)
}

func (h *Handler) HandleGetMetadata(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := h.tokenID(w, r)
	if !ok {
		return
	}
	meta, err := h.service.RenderMetadata(r.Context(), tokenID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, meta)
}

func (h *Handler) HandleGetByOwner(w http.ResponseWriter, r *http.Request) {
	owner, err := id.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cred, err := h.service.CredentialOf(r.Context(), owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cred)
}

func (h *Handler) tokenID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	tokenID, err := strconv.ParseUint(chi.URLParam(r, "tokenID"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "token id must be a non-negative integer"))
		return 0, false
	}
	return tokenID, true
}
