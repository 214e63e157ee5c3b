package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/satvik-shyam/placematch/internal/config"
	"github.com/satvik-shyam/placematch/internal/db"
	dbPostgres "github.com/satvik-shyam/placematch/internal/db/postgres"
	dbRedis "github.com/satvik-shyam/placematch/internal/db/redis"
	"github.com/satvik-shyam/placematch/internal/domain"
	"github.com/satvik-shyam/placematch/internal/domain/scoring"
	logpkg "github.com/satvik-shyam/placematch/internal/logger"
	"github.com/satvik-shyam/placematch/internal/metrics"
	"github.com/satvik-shyam/placematch/internal/projector"
	"github.com/satvik-shyam/placematch/internal/repository/docstore"
	"github.com/satvik-shyam/placematch/internal/repository/embcache"
	jobsrepo "github.com/satvik-shyam/placematch/internal/repository/jobs"
	recrepo "github.com/satvik-shyam/placematch/internal/repository/recommendation"
	openaiEmb "github.com/satvik-shyam/placematch/internal/transport/openai"
	embeddinguc "github.com/satvik-shyam/placematch/internal/usecase/embedding"
	"github.com/satvik-shyam/placematch/internal/usecase/recommend"
	"github.com/satvik-shyam/placematch/internal/version"
)

func main() {
	var (
		mode        = flag.String("mode", "serve", "run mode: serve, generate, list, view, apply")
		candidateID = flag.Int64("candidate", 0, "candidate id")
		jobID       = flag.Int64("job", 0, "job id (view/apply)")
		topN        = flag.Int("top", 0, "max recommendations to keep (0 = config default)")
		minScore    = flag.Float64("min-score", -1, "minimum combined score (negative = config default)")
		force       = flag.Bool("force", false, "recompute embeddings even when cached")
		applied     = flag.Bool("include-applied", false, "include applied recommendations in list output")
	)
	flag.Parse()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting placematch",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.String("mode", *mode),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create document store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Document store not ready", zap.Error(err))
	}

	sqlDB, err := dbPostgres.Open(ctx, dbPostgres.Config{
		DSN:          cfg.Postgres.DSN,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Postgres.MaxIdleConns,
	})
	if err != nil {
		logger.Fatal("Failed to connect to postgres", zap.Error(err))
	}
	defer sqlDB.Close()
	logger.Info("Connected to databases")

	// Register metrics explicitly (no init())
	metrics.RegisterMatchingMetrics()

	recs := recrepo.New(sqlDB)
	if err := recs.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure recommendations schema", zap.Error(err))
	}

	embedder := buildEmbedder(cfg, logger)
	cache := embcache.New(store, embedder, cfg.Storage.KeyPrefix, metrics.EmbeddingCacheTotal, logger)
	docs := docstore.New(store, cfg.Storage.KeyPrefix)
	jobs := jobsrepo.New(sqlDB)

	params := scoring.Params{
		Weights: scoring.Weights{
			Similarity: cfg.Matching.SimilarityWeight,
			Skills:     cfg.Matching.SkillWeight,
			Experience: cfg.Matching.ExperienceWeight,
		},
		ExperienceOverflowYears: cfg.Matching.ExperienceOverflowYears,
	}
	ttl := time.Duration(cfg.Matching.RecommendationTTLDays) * 24 * time.Hour
	svc := recommend.New(cache, docs, jobs, recs, params, ttl, logger)

	top := *topN
	if top <= 0 {
		top = cfg.Matching.DefaultTopN
	}
	score := *minScore
	if score < 0 {
		score = cfg.Matching.DefaultMinScore
	}

	switch *mode {
	case "serve":
		if cfg.HTTP.Port <= 0 {
			logger.Fatal("Ops listener disabled, set http.port to serve", zap.Int("port", cfg.HTTP.Port))
		}
		runOps(cfg, store, sqlDB, logger)
	case "generate":
		requireID(*candidateID, "candidate", logger)
		scored, err := svc.Generate(ctx, *candidateID, top, score, *force)
		if err != nil {
			logger.Fatal("Generate failed", zap.Error(err))
		}
		n, err := svc.Store(ctx, *candidateID, scored)
		if err != nil {
			logger.Fatal("Store failed", zap.Int("written", n), zap.Error(err))
		}
		printJSON(scored)
	case "list":
		requireID(*candidateID, "candidate", logger)
		out, err := svc.List(ctx, *candidateID, *applied)
		if err != nil {
			logger.Fatal("List failed", zap.Error(err))
		}
		printJSON(out)
	case "view", "apply":
		requireID(*candidateID, "candidate", logger)
		requireID(*jobID, "job", logger)
		mark := svc.MarkViewed
		if *mode == "apply" {
			mark = svc.MarkApplied
		}
		ok, err := mark(ctx, *candidateID, *jobID)
		if err != nil {
			logger.Fatal("Flag update failed", zap.Error(err))
		}
		if !ok {
			logger.Warn("No such recommendation",
				zap.Int64("candidate_id", *candidateID), zap.Int64("job_id", *jobID))
			os.Exit(1)
		}
	default:
		logger.Fatal("Unknown mode", zap.String("mode", *mode))
	}
}

// buildEmbedder assembles the embedder chain. Without an API key the
// deterministic projector runs alone; with one, the provider is primary and
// the projector backs it up so generation never hard-fails on the upstream.
func buildEmbedder(cfg config.Config, logger *zap.Logger) domain.Embedder {
	proj := projector.New(cfg.Matching.Dimensions)
	if cfg.Embedding.APIKey == "" {
		return proj
	}

	primary := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Matching.Dimensions,
		Provider:   cfg.Embedding.Provider,
	})
	logger.Info("External embedding provider enabled",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
	)
	return embeddinguc.NewFallbackEmbedder(primary, proj, logger)
}

// runOps serves /healthz and /metrics until SIGINT/SIGTERM.
func runOps(cfg config.Config, store db.Store, sqlDB interface {
	PingContext(ctx context.Context) error
}, logger *zap.Logger) {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		hctx, cancel := context.WithTimeout(req.Context(), 5*time.Second)
		defer cancel()
		if err := store.Ping(hctx); err != nil {
			http.Error(w, "document store unavailable", http.StatusServiceUnavailable)
			return
		}
		if err := sqlDB.PingContext(hctx); err != nil {
			http.Error(w, "relational store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting ops listener", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Ops listener error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	logger.Info("Stopped gracefully")
}

func requireID(v int64, name string, logger *zap.Logger) {
	if v <= 0 {
		logger.Fatal("Missing required flag", zap.String("flag", name))
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
