// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopify-store-builder/internal/config"
	"shopify-store-builder/internal/domain/ports/adapter"
	aiAdapters "shopify-store-builder/internal/infra/adapters/ai"
	imgAdapters "shopify-store-builder/internal/infra/adapters/image"
	"shopify-store-builder/internal/infra/adapters/shopify"
	"shopify-store-builder/internal/infra/catalog"
	pg "shopify-store-builder/internal/infra/db/postgres"
	"shopify-store-builder/internal/infra/logging"
	"shopify-store-builder/internal/infra/metrics"
	red "shopify-store-builder/internal/infra/redis"
	"shopify-store-builder/internal/infra/security"
	"shopify-store-builder/internal/infra/web"
	"shopify-store-builder/internal/infra/worker"
	"shopify-store-builder/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (canned AI output, placeholder images)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	jobLocker := red.NewLocker(redisClient)

	// ---- Encryption ----
	encKey := cfg.Security.EncryptionKey
	if len(encKey) != 32 {
		logger.Warn().Msg("security.encryption_key not set or not 32 bytes; falling back to dev key (INSECURE)")
		encKey = "0123456789abcdef0123456789abcdef"
	}
	encSvc, err := security.NewEncryptionService(encKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("encryption")
	}

	// ---- Repositories ----
	txm := pg.NewTxManager(pool)
	jobRepo := pg.NewStoreJobRepoCacheDecorator(pg.NewStoreJobRepo(pool, txm, encSvc), redisClient)
	storeRepo := pg.NewStoreRepo(pool, encSvc)

	// ---- Product catalog ----
	cat, err := catalog.NewJSONCatalog(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("catalog")
	}

	// ---- AI text adapter (OpenAI -> Gemini fallback) ----
	var providers []adapter.TextGenerator
	if cfg.AI.OpenAIKey != "" {
		oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.TextModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		providers = append(providers, oa)
		logger.Info().Str("model", cfg.AI.TextModel).Msg("AI adapter: OpenAI")
	}
	if cfg.AI.GeminiKey != "" {
		ga, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.TextModel, 500)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		providers = append(providers, ga)
		logger.Info().Str("base", cfg.AI.GeminiURL).Msg("AI adapter: Gemini")
	}
	var text adapter.TextGenerator
	switch {
	case len(providers) > 0:
		text = aiAdapters.NewMultiTextAdapter(providers...)
	case cfg.Runtime.Dev:
		text = aiAdapters.NewNoopTextAdapter()
		logger.Warn().Msg("AI adapter: noop (dev mode, canned output)")
	default:
		logger.Fatal().Msgf("no AI provider configured: set ai.openai_key or ai.gemini_key in %s", *cfgPath)
	}

	// ---- Image generator ----
	var images adapter.ImageGenerator
	if cfg.AI.PlaceholderImages || cfg.AI.OpenAIKey == "" {
		images = imgAdapters.NewPlaceholderGenerator()
		logger.Info().Msg("image generator: placeholder")
	} else {
		images, err = imgAdapters.NewDalleGenerator(cfg.AI.OpenAIKey, cfg.AI.ImageModel, cfg.AI.ImageSize)
		if err != nil {
			logger.Fatal().Err(err).Msg("dalle generator")
		}
		logger.Info().Str("model", cfg.AI.ImageModel).Msg("image generator: DALL-E")
	}

	// ---- Shopify ----
	storeAPI := shopify.NewStoreOperations(storeRepo, cfg.Shopify.APIVersion, cfg.Shopify.DevDomainSuffix)

	// ---- Use case ----
	storeUC := usecase.NewStoreCreationUseCase(jobRepo, cat, text, images, storeAPI, logger)

	// ---- Background workers ----
	wpool := worker.NewPool(cfg.Worker.Count, logger)
	wpool.Start(ctx)
	defer wpool.Stop()

	processor := worker.NewStoreJobProcessor(jobRepo, storeUC, jobLocker, cfg.Worker.PollInterval, cfg.Worker.JobLockTTL, logger)
	go processor.Start(ctx, wpool)

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Server.AdminSecret, !cfg.Runtime.Dev, "", cfg.Server.SessionTTL)
	srv := web.NewServer(storeUC, rateLimiter, auth, cfg.Server.APIKey, cfg.Server.AdminSecret,
		cfg.RateLimit.StoreCreations, cfg.RateLimit.Window, logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: srv.Router()}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
