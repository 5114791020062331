// Package httptransport assembles the public HTTP surface: middleware
// chain, feature handlers, health, and metrics.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	passporthandler "chainpass/internal/passport/handler"
	registryhandler "chainpass/internal/registry/handler"
	scoringhandler "chainpass/internal/scoring/handler"
	id "chainpass/pkg/domain"
	"chainpass/pkg/platform/middleware/auth"
	"chainpass/pkg/platform/middleware/metadata"
	"chainpass/pkg/platform/middleware/requestid"
	"chainpass/pkg/platform/middleware/requesttime"
)

// Deps carries everything the router mounts.
type Deps struct {
	Registry registryhandler.Service
	Passport passporthandler.Service
	Scoring  scoringhandler.Service

	Tokens auth.TokenValidator
	// AuthorityKeyHash enables X-Authority-Key access for registry writes
	// when non-empty.
	AuthorityKeyHash []byte
	Authority        id.Address

	StrictContentRefs bool

	Logger     *slog.Logger
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter wires all public endpoints behind the shared middleware chain.
// Reads are public; writes require a resolved caller identity.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	registryH := registryhandler.New(d.Registry, d.Logger, d.StrictContentRefs)
	passportH := passporthandler.New(d.Passport, d.Logger)
	scoringH := scoringhandler.New(d.Scoring, d.Logger)

	// Authenticated surface: registry writes also accept the authority key,
	// which resolves the caller to the authority address directly.
	r.Group(func(g chi.Router) {
		g.Use(auth.AuthorityKey(d.AuthorityKeyHash, d.Authority, d.Logger))
		g.Use(auth.RequireIdentity(d.Tokens, d.Logger))
		g.Post("/registry/projects", registryH.HandleAddProject)
		g.Post("/passport/issue", passportH.HandleIssue)
		g.Post("/passport/{tokenID}/transfer", passportH.HandleTransfer)
		g.Post("/passport/{tokenID}/approve", passportH.HandleApprove)
		g.Delete("/passport/{tokenID}", passportH.HandleBurn)
	})

	// Public reads. Callers with a token still get named in logs.
	r.Group(func(g chi.Router) {
		g.Use(auth.OptionalIdentity(d.Tokens))
		g.Get("/registry/projects", registryH.HandleListProjects)
		g.Get("/registry/projects/count", registryH.HandleProjectCount)
		g.Get("/registry/projects/{index}", registryH.HandleGetProject)
		g.Get("/passport/{tokenID}", passportH.HandleGetCredential)
		g.Get("/passport/{tokenID}/metadata", passportH.HandleGetMetadata)
		g.Get("/passport/owner/{address}", passportH.HandleGetByOwner)
		g.Get("/score/{address}", scoringH.HandleGetScore)
		g.Post("/score/{address}/refresh", scoringH.HandleRefreshScore)
	})

	return r
}
