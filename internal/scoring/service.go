package scoring

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"chainpass/internal/domain"
	"chainpass/internal/scoring/metrics"
	id "chainpass/pkg/domain"
	dErrors "chainpass/pkg/domain-errors"
	"chainpass/pkg/platform/sentinel"
	"chainpass/pkg/requestcontext"
)

var (
	ErrNoSources = dErrors.New(dErrors.CodeUnavailable, "no activity sources available")
	ErrTimeout   = dErrors.New(dErrors.CodeTimeout, "score evaluation timed out")
)

const defaultSourceTimeout = 5 * time.Second

// Service evaluates addresses against all configured chain sources. Sources
// are queried concurrently and independently: one failing or slow source
// degrades the result to partial, it never cancels its peers.
type Service struct {
	sources       []ChainSource
	cache         Cache
	sourceTimeout time.Duration
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	group         singleflight.Group
}

type Option func(*Service)

func WithSourceTimeout(d time.Duration) Option {
	return func(s *Service) { s.sourceTimeout = d }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(sources []ChainSource, cache Cache, logger *slog.Logger, opts ...Option) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		sources:       sources,
		cache:         cache,
		sourceTimeout: defaultSourceTimeout,
		logger:        logger,
		tracer:        otel.Tracer("chainpass/scoring"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate computes the score for an address, serving from cache when a
// fresh result exists. The returned result carries the aggregated signals,
// the score, the tier, and which sources (if any) failed to answer.
func (s *Service) Evaluate(ctx context.Context, addr id.Address) (domain.ScoreResult, error) {
	ctx, span := s.tracer.Start(ctx, "scoring.Evaluate",
		trace.WithAttributes(attribute.String("address", addr.Short())))
	defer span.End()

	if cached, err := s.cache.Get(ctx, addr); err == nil {
		s.metrics.RecordCacheHit()
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		// A broken cache is not a reason to refuse scoring.
		s.logger.WarnContext(ctx, "score cache read failed", "address", addr.Short(), "error", err)
	}

	// Concurrent evaluations of the same address share one live fan-out.
	// The shared work is detached from the initiating caller's deadline:
	// a short deadline on the first caller must not poison joined peers.
	// Per-source timeouts still bound the fan-out itself.
	ch := s.group.DoChan(string(addr), func() (any, error) {
		return s.evaluateLive(context.WithoutCancel(ctx), addr)
	})

	var result domain.ScoreResult
	select {
	case <-ctx.Done():
		s.metrics.RecordEvaluation("failed")
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.ScoreResult{}, ErrTimeout
		}
		return domain.ScoreResult{}, dErrors.Wrap(dErrors.CodeTimeout, "score evaluation abandoned", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.ScoreResult{}, res.Err
		}
		result = res.Val.(domain.ScoreResult)
	}

	if err := s.cache.Set(ctx, addr, result); err != nil {
		s.logger.WarnContext(ctx, "score cache write failed", "address", addr.Short(), "error", err)
	}
	return result, nil
}

// Refresh drops any cached result and re-evaluates from live sources.
func (s *Service) Refresh(ctx context.Context, addr id.Address) (domain.ScoreResult, error) {
	if err := s.cache.Invalidate(ctx, addr); err != nil {
		s.logger.WarnContext(ctx, "score cache invalidation failed", "address", addr.Short(), "error", err)
	}
	return s.Evaluate(ctx, addr)
}

type sourceOutcome struct {
	name    string
	mainnet bool
	signals domain.ActivitySignals
	err     error
}

func (s *Service) evaluateLive(ctx context.Context, addr id.Address) (domain.ScoreResult, error) {
	if len(s.sources) == 0 {
		s.metrics.RecordEvaluation("failed")
		return domain.ScoreResult{}, ErrNoSources
	}

	// Each goroutine owns one slot, so results need no lock and keep the
	// configured source order, which keeps FailedSources deterministic.
	outcomes := make([]sourceOutcome, len(s.sources))
	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src ChainSource) {
			defer wg.Done()
			qctx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
			defer cancel()

			start := time.Now()
			signals, err := src.QueryActivity(qctx, addr)
			elapsed := time.Since(start)

			outcomes[i] = sourceOutcome{name: src.Name(), mainnet: src.Mainnet(), signals: signals, err: err}
			if err != nil {
				s.metrics.RecordSourceQuery(src.Name(), "error", elapsed)
				s.logger.WarnContext(ctx, "activity source query failed",
					"source", src.Name(), "address", addr.Short(), "error", err)
				return
			}
			s.metrics.RecordSourceQuery(src.Name(), "ok", elapsed)
		}(i, src)
	}
	wg.Wait()

	observations := make([]sourceObservation, 0, len(outcomes))
	var failed []string
	for _, out := range outcomes {
		if out.err != nil {
			failed = append(failed, out.name)
			continue
		}
		observations = append(observations, sourceObservation{name: out.name, mainnet: out.mainnet, signals: out.signals})
	}
	if len(observations) == 0 {
		s.metrics.RecordEvaluation("failed")
		return domain.ScoreResult{}, ErrNoSources
	}
	sort.Strings(failed)

	signals := aggregate(observations)
	score := ScoreSignals(signals)

	result := domain.ScoreResult{
		Address:       addr,
		Signals:       signals,
		Score:         score,
		Tier:          TierForScore(score),
		Partial:       len(failed) > 0,
		FailedSources: failed,
		EvaluatedAt:   requestcontext.Now(ctx),
	}

	s.metrics.RecordScore(score)
	outcome := "complete"
	if result.Partial {
		outcome = "partial"
	}
	s.metrics.RecordEvaluation(outcome)
	s.logger.InfoContext(ctx, "score evaluated",
		"address", addr.Short(), "score", score, "tier", result.Tier, "partial", result.Partial)

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("score", score),
		attribute.String("tier", string(result.Tier)),
		attribute.Bool("partial", result.Partial),
	)
	return result, nil
}
