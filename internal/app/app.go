package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	coreusage "github.com/router-for-me/CLIProxyAPI/v6/sdk/cliproxy/usage"
	"github.com/router-for-me/CLIProxyAPISelector/internal/catalog"
	"github.com/router-for-me/CLIProxyAPISelector/internal/config"
	"github.com/router-for-me/CLIProxyAPISelector/internal/db"
	"github.com/router-for-me/CLIProxyAPISelector/internal/evaluation"
	selectorhttp "github.com/router-for-me/CLIProxyAPISelector/internal/http/api/selector"
	"github.com/router-for-me/CLIProxyAPISelector/internal/metrics"
	"github.com/router-for-me/CLIProxyAPISelector/internal/ratelimit"
	"github.com/router-for-me/CLIProxyAPISelector/internal/selection"
	"github.com/router-for-me/CLIProxyAPISelector/internal/store"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 5 * time.Second

// Service is the assembled selector: one catalog, policy, engine and tracker shared by
// every request.
type Service struct {
	Config      config.EngineConfig
	JWT         config.JWTConfig
	Catalog     *catalog.Catalog
	Policy      *selection.Policy
	Engine      *evaluation.Engine
	Tracker     *metrics.Tracker
	UsagePlugin *metrics.UsagePlugin
	RateLimiter *ratelimit.Manager

	conn        *gorm.DB
	evaluations *store.GormEvaluationStore
	usage       *store.GormUsageStore
	settings    *store.GormCompanySettingsStore
}

// Migrate opens the database, runs migrations under ctx and closes the connection.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if sqlDB, errDB := conn.DB(); errDB == nil {
		defer func() {
			if errClose := sqlDB.Close(); errClose != nil {
				log.WithError(errClose).Warn("close database after migrate failed")
			}
		}()
	}
	return db.Migrate(conn.WithContext(ctx))
}

// Build loads configuration and wires the service. A missing database DSN leaves the
// service in memory-only mode.
func Build(ctx context.Context, cfg config.AppConfig) (*Service, error) {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	engineCfg, err := config.LoadEngineConfig(configPath)
	if err != nil {
		return nil, err
	}
	applyLogLevel(engineCfg.LogLevel)
	jwtCfg, _ := config.LoadJWTConfig(configPath)

	svc := &Service{
		Config:  engineCfg,
		JWT:     jwtCfg,
		Catalog: catalog.NewDefault(),
		Tracker: metrics.NewTracker(),
	}

	dsn, errDSN := config.LoadDatabaseDSN(configPath)
	switch {
	case errDSN == nil:
		conn, errOpen := db.Open(dsn)
		if errOpen != nil {
			return nil, errOpen
		}
		if errMigrate := db.Migrate(conn); errMigrate != nil {
			return nil, errMigrate
		}
		svc.conn = conn
		svc.evaluations = store.NewGormEvaluationStore(conn, engineCfg.Evaluation.HistoryRetention())
		svc.usage = store.NewGormUsageStore(conn)
		svc.settings = store.NewGormCompanySettingsStore(conn)
	case errors.Is(errDSN, config.ErrMissingDatabaseDSN), errors.Is(errDSN, fs.ErrNotExist):
		log.Warn("no database configured, running memory-only")
	default:
		return nil, errDSN
	}

	if svc.usage != nil {
		records, errLoad := svc.usage.LoadUsage(ctx)
		if errLoad != nil {
			log.WithError(errLoad).Warn("restore usage metrics failed")
		} else {
			svc.Tracker.Restore(records)
		}
	}

	svc.Policy = selection.NewPolicy(svc.Catalog, selection.WithFallbackModel(engineCfg.Selection.FallbackModel))

	opts := []evaluation.Option{
		evaluation.WithSampleDelay(engineCfg.Evaluation.SampleDelay),
		evaluation.WithConcurrency(engineCfg.Evaluation.Concurrency),
		evaluation.WithProviderTimeout(engineCfg.Evaluation.ProviderTimeout),
		evaluation.WithHistoryRetention(engineCfg.Evaluation.HistoryRetention()),
		evaluation.WithUsageRecorder(svc.Tracker),
	}
	if svc.evaluations != nil {
		opts = append(opts, evaluation.WithRecorder(svc.evaluations))
	}
	svc.Engine = evaluation.NewEngine(svc.Catalog, opts...)

	svc.UsagePlugin = metrics.NewUsagePlugin(svc.Tracker, svc.Catalog)
	svc.RateLimiter = ratelimit.NewManager(ratelimit.StaticSettings(rateLimitSettings(engineCfg.RateLimit)), nil, nil)
	return svc, nil
}

// Handler builds the gin engine serving the selector API.
func (s *Service) Handler() http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	deps := selectorhttp.Deps{
		Catalog:     s.Catalog,
		Policy:      s.Policy,
		Engine:      s.Engine,
		Tracker:     s.Tracker,
		RateLimiter: s.RateLimiter,
		JWTSecret:   s.JWT.Secret,
	}
	if s.settings != nil {
		deps.Settings = s.settings
		deps.Durable = true
	}
	if s.evaluations != nil {
		deps.Persisted = s.evaluations
	}
	selectorhttp.RegisterRoutes(engine, deps)
	return engine
}

// Close releases the limiter and database handles.
func (s *Service) Close() {
	if s == nil {
		return
	}
	if errClose := s.RateLimiter.Close(); errClose != nil {
		log.WithError(errClose).Warn("close rate limiter failed")
	}
	if s.conn != nil {
		if sqlDB, errDB := s.conn.DB(); errDB == nil {
			_ = sqlDB.Close()
		}
	}
}

// RunServer boots the selector HTTP server and blocks until ctx is done.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	gin.SetMode(gin.ReleaseMode)
	svc, err := Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	coreusage.RegisterPlugin(svc.UsagePlugin)

	var flusher *metrics.Flusher
	if svc.usage != nil && svc.Config.Metrics.FlushInterval > 0 {
		flusher = metrics.NewFlusher(svc.Tracker, svc.usage, svc.Config.Metrics.FlushInterval)
	}
	flushCtx, stopFlush := context.WithCancel(context.Background())
	flusher.Start(flushCtx)
	defer func() {
		stopFlush()
		flusher.Wait()
	}()

	if port <= 0 {
		port = svc.Config.Port
	}
	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:    addr,
		Handler: svc.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.Errorf("selector server shutdown error: %v", errShutdown)
		}
	}()

	log.Infof("starting model selector on %s with config=%s (%d models)", addr, cfg.ConfigPath, svc.Catalog.Len())
	if errListen := srv.ListenAndServe(); errListen != nil && !errors.Is(errListen, http.ErrServerClosed) {
		return errListen
	}
	return nil
}

func rateLimitSettings(cfg config.RateLimitConfig) ratelimit.SettingsConfig {
	return ratelimit.SettingsConfig{
		Limit:         cfg.Limit,
		Routes:        cfg.Routes,
		RedisEnabled:  cfg.RedisEnabled,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		RedisPrefix:   cfg.RedisPrefix,
	}
}

func applyLogLevel(raw string) {
	level, errParse := log.ParseLevel(strings.TrimSpace(raw))
	if errParse != nil {
		log.Warnf("unknown log level %q, using info", raw)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// corsMiddleware allows browser dashboards to call the API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, "+selectorhttp.CompanyHeader)
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
