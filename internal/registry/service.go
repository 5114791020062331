// Package registry owns the authority-gated project catalog. The catalog is
// an append-only sequence: two observable states per index, absent and
// present-and-immutable.
package registry

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"chainpass/internal/domain"
	"chainpass/internal/events"
	"chainpass/internal/recordlog"
	"chainpass/internal/registry/metrics"
	id "chainpass/pkg/domain"
	dErrors "chainpass/pkg/domain-errors"
	"chainpass/pkg/platform/sentinel"
	"chainpass/pkg/requestcontext"
)

// Coded errors surfaced to callers. Validation failures are caller-correctable;
// the authority gate is permanent for a given caller.
var (
	ErrUnauthorized    = dErrors.New(dErrors.CodeUnauthorized, "caller is not the registry authority")
	ErrEmptyTitle      = dErrors.New(dErrors.CodeInvalidInput, "title must not be empty")
	ErrEmptyContentRef = dErrors.New(dErrors.CodeInvalidInput, "content_ref must not be empty")
	ErrProjectNotFound = dErrors.New(dErrors.CodeNotFound, "project index out of range")
)

// Service wraps the record log with the authorization gate. All invariant
// checks precede any state change; the log's own serialization makes the
// append one indivisible transition.
type Service struct {
	authority id.Address
	log       recordlog.Log[domain.ProjectEntry]
	publisher events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics

	// writeMu spans the append and its emission: an event for entry N is
	// on the stream before entry N+1 can commit, so stream order never
	// diverges from mutation order.
	writeMu sync.Mutex
}

func NewService(
	authority id.Address,
	log recordlog.Log[domain.ProjectEntry],
	publisher events.Publisher,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		authority: authority,
		log:       log,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
	}
}

// AddProject appends a new catalog entry. Only the configured authority may
// call it; the side effect is purely additive.
func (s *Service) AddProject(ctx context.Context, title, contentRef string) (domain.ProjectEntry, error) {
	caller := requestcontext.Caller(ctx)
	if caller != s.authority || caller.IsZero() {
		s.metrics.IncrementRejected("unauthorized")
		return domain.ProjectEntry{}, ErrUnauthorized
	}
	if strings.TrimSpace(title) == "" {
		s.metrics.IncrementRejected("empty_title")
		return domain.ProjectEntry{}, ErrEmptyTitle
	}
	if strings.TrimSpace(contentRef) == "" {
		s.metrics.IncrementRejected("empty_content_ref")
		return domain.ProjectEntry{}, ErrEmptyContentRef
	}

	createdAt := requestcontext.Now(ctx)

	s.writeMu.Lock()
	entry, err := s.log.Append(ctx, func(index int) domain.ProjectEntry {
		return domain.ProjectEntry{
			ID:         index,
			Title:      title,
			ContentRef: contentRef,
			CreatedAt:  createdAt,
		}
	})
	if err != nil {
		s.writeMu.Unlock()
		return domain.ProjectEntry{}, dErrors.Wrap(dErrors.CodeInternal, "append project", err)
	}
	emitErr := s.publisher.Emit(ctx, events.NewProjectAdded(entry))
	s.writeMu.Unlock()

	s.metrics.IncrementAdded()
	if s.logger != nil {
		s.logger.InfoContext(ctx, "project added",
			"project_id", entry.ID,
			"title", entry.Title,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if emitErr != nil && s.logger != nil {
		// The append has committed; a lost notification is logged, not rolled back.
		s.logger.ErrorContext(ctx, "project_added event dropped", "project_id", entry.ID, "error", emitErr)
	}
	return entry, nil
}

// Projects returns the full catalog in insertion order.
func (s *Service) Projects(ctx context.Context) ([]domain.ProjectEntry, error) {
	list, err := s.log.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list projects", err)
	}
	return list, nil
}

// ProjectCount returns the number of catalog entries.
func (s *Service) ProjectCount(ctx context.Context) (int, error) {
	count, err := s.log.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(dErrors.CodeInternal, "count projects", err)
	}
	return count, nil
}

// Project returns the entry at index. An invalid index is an error, never an
// empty entry: callers must be able to tell "absent" from "present but empty".
func (s *Service) Project(ctx context.Context, index int) (domain.ProjectEntry, error) {
	entry, err := s.log.Get(ctx, index)
	if err != nil {
		if errors.Is(err, sentinel.ErrIndexOutOfBounds) {
			return domain.ProjectEntry{}, ErrProjectNotFound
		}
		return domain.ProjectEntry{}, dErrors.Wrap(dErrors.CodeInternal, "get project", err)
	}
	return entry, nil
}
