package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/gitdex/gitdex/internal/analyzer"
	"github.com/gitdex/gitdex/internal/auth"
	"github.com/gitdex/gitdex/internal/catalog"
	"github.com/gitdex/gitdex/internal/config"
	"github.com/gitdex/gitdex/internal/gitstore"
	"github.com/gitdex/gitdex/internal/httpserver"
	"github.com/gitdex/gitdex/internal/httpserver/deps"
	"github.com/gitdex/gitdex/internal/logger"
	"github.com/gitdex/gitdex/internal/redis"
	"github.com/gitdex/gitdex/internal/scheduler"
	"github.com/gitdex/gitdex/internal/sources/categories"
	redisstore "github.com/gitdex/gitdex/internal/store/redis"
	"github.com/gitdex/gitdex/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	catalog     *catalog.Service
	reloader    *scheduler.CatalogReloader
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Redis is optional: without it the catalog is simply re-read from the
	// repository on every load.
	var redisClient *goredis.Client
	var cache *redisstore.Store
	if cfg.RedisAddr != "" {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		redisClient = client
		cache = redisstore.NewStore(client, cfg.CacheTTL)
		loggerClient.Info("Redis initialized successfully")
	} else {
		loggerClient.Info("Redis not configured, catalog cache disabled")
	}

	// Content provider and commit strategy.
	provider := gitstore.NewGitHubProvider(gitstore.GitHubOptions{
		Token:   cfg.GitHubToken,
		Owner:   cfg.GitHubOwner,
		Repo:    cfg.GitHubRepo,
		Branch:  cfg.GitHubBranch,
		Timeout: 30 * time.Second,
	})
	committer := gitstore.NewCommitter(provider, cfg.CommitMode, loggerClient)

	// Page analyzer, with optional LLM classification.
	llm := analyzer.NewLLM(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.AnalyzeTimeout)
	pageAnalyzer := analyzer.New(&http.Client{Timeout: cfg.AnalyzeTimeout}, llm, loggerClient)
	if llm.Enabled() {
		loggerClient.Info("LLM classification enabled",
			logger.String("model", cfg.LLMModel))
	} else {
		loggerClient.Info("LLM not configured, heuristic classification only")
	}

	authService := auth.New(cfg.AdminUsername, cfg.AdminPassword, cfg.SessionSecret, cfg.SessionTTL)

	cats, err := categories.NewLoader(cfg.CategoriesFile).Load()
	if err != nil {
		loggerClient.Errorf("Failed to load categories: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("categories loaded", logger.Int("count", len(cats)))

	var cacheIface catalog.Cache
	if cache != nil {
		cacheIface = cache
	}
	catalogService := catalog.New(provider, committer, pageAnalyzer, cacheIface, loggerClient)

	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewCatalogReloader(
		catalogService,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	// Dependencies passed to routes.
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		Catalog:       catalogService,
		Auth:          authService,
		Analyzer:      pageAnalyzer,
		Categories:    cats,
		RedisClient:   redisClient,
		Cache:         cache,
		ReloadTrigger: reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		catalog:     catalogService,
		reloader:    reloader,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting gitdex v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("gitdex %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load the catalog and start the periodic refresh.
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start catalog reloader: %w", err)
	}
	a.logger.Info("catalog reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ gitdex stopped cleanly")
	return nil
}
