// Command server runs the chainpass API: project registry, credential
// ledger, and scoring engine behind one HTTP surface.
package main

import (
	"context"
	"database/sql"
	"errors"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"chainpass/internal/domain"
	"chainpass/internal/events"
	jwttoken "chainpass/internal/jwt_token"
	"chainpass/internal/passport"
	passportmetrics "chainpass/internal/passport/metrics"
	"chainpass/internal/platform/config"
	"chainpass/internal/platform/httpserver"
	"chainpass/internal/platform/logger"
	platformredis "chainpass/internal/platform/redis"
	"chainpass/internal/recordlog"
	"chainpass/internal/registry"
	registrymetrics "chainpass/internal/registry/metrics"
	"chainpass/internal/scoring"
	scoringmetrics "chainpass/internal/scoring/metrics"
	httptransport "chainpass/internal/transport/http"
)

func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector())
	promReg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Storage: postgres when configured, in-memory otherwise.
	var (
		projectLog    recordlog.Log[domain.ProjectEntry]
		passportStore passport.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Error("opening postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pgLog := registry.NewPostgresLog(db)
		pgStore := passport.NewPostgresStore(db)
		if err := pgLog.EnsureSchema(ctx); err != nil {
			log.Error("registry schema", "error", err)
			os.Exit(1)
		}
		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Error("passport schema", "error", err)
			os.Exit(1)
		}
		projectLog, passportStore = pgLog, pgStore
	} else {
		log.Warn("no postgres DSN configured, using in-memory storage")
		projectLog = recordlog.NewMemoryLog[domain.ProjectEntry]()
		passportStore = passport.NewMemoryStore()
	}

	// Events: kafka when brokers are configured, otherwise an in-process
	// worker draining to a memory sink so the stream stays observable.
	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, err := events.NewKafkaPublisher(ctx, cfg.KafkaBrokers)
		if err != nil {
			log.Error("connecting to kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaPub.Close()
		publisher = kafkaPub
	} else {
		log.Warn("no kafka brokers configured, events retained in process only")
		inbox := make(chan events.Event, 256)
		workerCtx, stopWorker := context.WithCancel(ctx)
		defer stopWorker()
		go func() {
			if err := events.NewWorker(events.NewMemorySink(), inbox).Run(workerCtx); err != nil &&
				!errors.Is(err, context.Canceled) {
				log.Error("event worker stopped", "error", err)
			}
		}()
		publisher = events.NewChannelPublisher(inbox)
	}

	// Score cache: redis when configured, in-process otherwise.
	var cache scoring.Cache = scoring.NewMemoryCache(cfg.ScoreTTL)
	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache = scoring.NewRedisCache(redisClient.Client, cfg.ScoreTTL)
	}

	sources := make([]scoring.ChainSource, 0, len(cfg.Networks))
	for _, network := range cfg.Networks {
		sources = append(sources, scoring.NewExplorerSource(network.Name, network.ExplorerURL, network.Mainnet))
	}

	registrySvc := registry.NewService(cfg.Authority, projectLog, publisher, log,
		registrymetrics.New(promReg))
	passportSvc := passport.NewService(passportStore, publisher, log,
		passportmetrics.New(promReg))
	scoringSvc := scoring.NewService(sources, cache, log,
		scoring.WithSourceTimeout(cfg.SourceTimeout),
		scoring.WithMetrics(scoringmetrics.New(promReg)))

	router := httptransport.NewRouter(httptransport.Deps{
		Registry:          registrySvc,
		Passport:          passportSvc,
		Scoring:           scoringSvc,
		Tokens:            jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience),
		AuthorityKeyHash:  []byte(cfg.AuthorityKeyHash),
		Authority:         cfg.Authority,
		StrictContentRefs: cfg.StrictContentRefs,
		Logger:            log,
		Registerer:        promReg,
		Gatherer:          promReg,
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting chainpass", "addr", cfg.Addr,
		"networks", len(sources), "authority", cfg.Authority.Short())

	if err := httpserver.Run(srv, cfg.ShutdownTimeout, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
