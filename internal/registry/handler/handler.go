package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"chainpass/internal/domain"
	dErrors "chainpass/pkg/domain-errors"
	"chainpass/pkg/platform/httputil"
	"chainpass/pkg/requestcontext"
)

// Service defines the registry operations the handler depends on.
type Service interface {
	AddProject(ctx context.Context, title, contentRef string) (domain.ProjectEntry, error)
	Projects(ctx context.Context) ([]domain.ProjectEntry, error)
	ProjectCount(ctx context.Context) (int, error)
	Project(ctx context.Context, index int) (domain.ProjectEntry, error)
}

// Handler wires registry endpoints to the registry service.
type Handler struct {
	service    Service
	logger     *slog.Logger
	strictRefs bool
}

// New constructs a registry handler. With strictRefs set, content references
// must parse as CIDs at this boundary; the service itself stays opaque about
// their format.
func New(service Service, logger *slog.Logger, strictRefs bool) *Handler {
	return &Handler{service: service, logger: logger, strictRefs: strictRefs}
}

// Register mounts registry endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/registry/projects", h.HandleAddProject)
	r.Get("/registry/projects", h.HandleListProjects)
	r.Get("/registry/projects/count", h.HandleProjectCount)
	r.Get("/registry/projects/{index}", h.HandleGetProject)
}

// AddProjectRequest is the write-boundary payload.
type AddProjectRequest struct {
	Title      string `json:"title"`
	ContentRef string `json:"content_ref"`
}

type addProjectResponse struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) HandleAddProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	req, ok := httputil.Decode[AddProjectRequest](w, r, h.logger)
	if !ok {
		return
	}
	if h.strictRefs && req.ContentRef != "" {
		if err := ValidateContentRef(req.ContentRef); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	entry, err := h.service.AddProject(ctx, req.Title, req.ContentRef)
	if err != nil {
		if h.logger != nil {
			h.logger.WarnContext(ctx, "add project rejected",
				"request_id", requestcontext.RequestID(ctx),
				"caller", requestcontext.Caller(ctx).Short(),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	if h.logger != nil {
		h.logger.InfoContext(ctx, "project created",
			"request_id", requestcontext.RequestID(ctx),
			"project_id", entry.ID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	httputil.WriteJSON(w, http.StatusCreated, addProjectResponse{ID: entry.ID, CreatedAt: entry.CreatedAt})
}

func (h *Handler) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Projects(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.ProjectEntry{}
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) HandleProjectCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.ProjectCount(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) HandleGetProject(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "index must be an integer"))
		return
	}
	entry, err := h.service.Project(r.Context(), index)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}
