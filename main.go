package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/toolscout-core/server/internal/agent/breaker"
	"github.com/toolscout-core/server/internal/agent/catalog"
	"github.com/toolscout-core/server/internal/agent/engine"
	"github.com/toolscout-core/server/internal/agent/gates"
	"github.com/toolscout-core/server/internal/agent/graph"
	"github.com/toolscout-core/server/internal/agent/graph/nodes"
	"github.com/toolscout-core/server/internal/agent/intent"
	"github.com/toolscout-core/server/internal/agent/model"
	"github.com/toolscout-core/server/internal/agent/postprocess"
	"github.com/toolscout-core/server/internal/agent/provider"
	"github.com/toolscout-core/server/internal/agent/repo"
	"github.com/toolscout-core/server/internal/agent/retrieval"
	"github.com/toolscout-core/server/internal/agent/synthesis"
	"github.com/toolscout-core/server/internal/agent/tier"
	"github.com/toolscout-core/server/internal/core"
	"github.com/toolscout-core/server/internal/server"
	logx "github.com/toolscout-core/server/pkg/logger"
	pkgredis "github.com/toolscout-core/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the service,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"APP_ENV" default:"development"`
	LogLevel    string           `envconfig:"LOG_LEVEL"`

	// Infrastructure
	Redis pkgredis.Config

	// Engine configs
	Tier      model.TierConfig
	Breaker   model.BreakerConfig
	Provider  model.ProviderConfig
	Retrieval model.RetrievalConfig
	Synthesis model.SynthesisConfig
	Gate      model.GateConfig
	Server    model.ServerConfig
}

// stores groups the collaborators that switch between Redis and in-process backends.
type stores struct {
	rotation model.RotationStore
	limiter  model.RateLimiter
	sessions model.SessionResolver
	close    func()
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logx.Debug().Err(err).Msg("No .env file loaded")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("Failed to process environment config")
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Environment, Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := newStores(cfg)
	defer st.close()

	cat, closeCatalog := newCatalog(ctx, cfg.Retrieval)
	defer closeCatalog()

	alerter := newAlerter(cfg.Gate)

	cb := breaker.New(cfg.Breaker.Threshold, cfg.Breaker.Cooldown,
		breaker.WithOnChange(engine.BreakerObserver(alerter, cfg.Gate.AlertTimeout)),
	)
	defer cb.Stop()

	lm, err := provider.New(ctx, cfg.Provider)
	if err != nil {
		logx.Fatal().Err(err).Str("provider", cfg.Provider.Name).Msg("Failed to initialise LM provider")
	}

	lex := intent.DefaultLexicon()
	moderator := gates.NewKeywordModerator(cfg.Gate.BlockedTerms...)

	runner, err := graph.BuildRunner(ctx, &graph.GraphConfig{Deps: &nodes.Deps{
		Classifier:  intent.NewClassifier(lex),
		Router:      intent.NewRouter(lex, cfg.Synthesis.AmbiguityThreshold),
		Ranker:      retrieval.NewRanker(cat, st.rotation, lex.CatalogCategories, cfg.Retrieval),
		Catalog:     cat,
		Synthesizer: synthesis.New(lm, cb, cfg.Synthesis.MaxContinuations, synthesis.WithAlerter(alerter, cfg.Gate.AlertTimeout)),
		Processor:   postprocess.New(cfg.Synthesis.SectionBodyLines, moderator),
		Synthesis:   cfg.Synthesis,
	}})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build routing graph")
	}

	eng, err := engine.New(engine.Deps{
		Limiter:      st.limiter,
		Moderator:    moderator,
		Sessions:     st.sessions,
		Tiers:        tier.NewResolver(cfg.Tier, cb),
		Runner:       runner,
		Alerter:      alerter,
		AlertTimeout: cfg.Gate.AlertTimeout,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build chat engine")
	}

	logx.Info().
		Str("env", cfg.Environment.String()).
		Str("provider", cfg.Provider.Name).
		Bool("redis", cfg.Redis.Enabled()).
		Bool("sql_catalog", cfg.Retrieval.CatalogDSN != "").
		Msg("Service starting")

	if err := server.New(eng, cfg.Server).Run(ctx); err != nil {
		logx.Error().Err(err).Msg("HTTP server stopped with error")
	}
	logx.Info().Msg("Service stopped")
}

func newStores(cfg AppConfig) stores {
	window := time.Minute
	if !cfg.Redis.Enabled() {
		logx.Warn().Msg("REDIS_URL not set; using in-process rotation, rate limiting and sessions")
		return stores{
			rotation: retrieval.NewRotationTable(),
			limiter:  gates.NewLocalLimiter(cfg.Gate.RateLimitPerMinute, cfg.Gate.RateLimitBurst),
			sessions: gates.NewStaticSessions(),
			close:    func() {},
		}
	}

	rdb, err := cfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	logx.Info().Msg("Connected to Redis successfully")

	return stores{
		rotation: repo.NewRedisRotationStore(rdb, cfg.Retrieval.RotationTTL),
		limiter:  repo.NewRedisRateLimiter(rdb, cfg.Gate.RateLimitPerMinute, window),
		sessions: repo.NewRedisSessionStore(rdb, cfg.Gate.SessionTTL),
		close: func() {
			if err := rdb.Close(); err != nil {
				logx.Warn().Err(err).Msg("Failed to close Redis client")
			}
		},
	}
}

func newCatalog(ctx context.Context, cfg model.RetrievalConfig) (model.Catalog, func()) {
	if cfg.CatalogDSN == "" {
		return catalog.NewSeeded(), func() {}
	}

	openCtx, cancel := context.WithTimeout(ctx, cfg.CatalogTimeout)
	defer cancel()

	db, err := catalog.OpenSQL(openCtx, cfg.CatalogDSN)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to open catalog database")
	}
	n, err := db.Count(openCtx)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to read catalog")
	}
	if n == 0 {
		if err := db.Seed(openCtx, catalog.SeedTools); err != nil {
			logx.Fatal().Err(err).Msg("Failed to seed catalog")
		}
		logx.Info().Int("tools", len(catalog.SeedTools)).Msg("Seeded empty catalog")
	}
	return db, func() {
		if err := db.Close(); err != nil {
			logx.Warn().Err(err).Msg("Failed to close catalog database")
		}
	}
}

func newAlerter(cfg model.GateConfig) model.Alerter {
	if cfg.AlertWebhookURL == "" {
		return gates.LogAlerter{}
	}
	return gates.Multi{gates.LogAlerter{}, gates.NewWebhookAlerter(cfg.AlertWebhookURL, cfg.AlertTimeout)}
}
