package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/gamestore/internal/catalog"
	"github.com/simp-lee/gamestore/internal/config"
	"github.com/simp-lee/gamestore/internal/domain"
	"github.com/simp-lee/gamestore/internal/filter"
	"github.com/simp-lee/gamestore/internal/middleware"
	"github.com/simp-lee/gamestore/internal/module/game"
	"github.com/simp-lee/gamestore/internal/module/purchase"
	"github.com/simp-lee/gamestore/internal/module/review"
	"github.com/simp-lee/gamestore/internal/module/user"
	"github.com/simp-lee/gamestore/internal/pkg"
)

const shutdownTimeout = 5 * time.Second

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	logger *logger.Logger
	cfg    *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, requestTimeout time.Duration) httpServer {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	// Leave room for the timeout envelope to be written.
	if requestTimeout > 0 && requestTimeout+5*time.Second > srv.WriteTimeout {
		srv.WriteTimeout = requestTimeout + 5*time.Second
	}
	return srv
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// catalogModels lists the entities migrated at startup, parents first.
var catalogModels = []any{
	&domain.User{},
	&domain.Game{},
	&domain.Purchase{},
	&domain.Review{},
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the audited store, the filter sanitizer, the four
// catalog modules and their middleware chain.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}

	success := false

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 exposes permissive CORS")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		closeDatabase(db, log.Logger)
	}()

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(catalogModels...); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed", slog.Int("models", len(catalogModels)))
	}

	modules := buildModules(db, cfg.Query)

	requestTimeout, err := parseOptionalDuration(cfg.Server.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid server.timeout: %w", err)
	}
	corsConfig, err := resolveCORSConfig(cfg.Server.Mode, &cfg.Server.CORS)
	if err != nil {
		return nil, err
	}

	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: false,
		}),
		middleware.Logger(log.Logger),
		middleware.CORSWithConfig(corsConfig),
		middleware.Timeout(requestTimeout),
	)

	if err := RegisterRoutes(engine, &RouteDeps{Modules: modules, DB: db}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine: engine,
		db:     db,
		logger: log,
		cfg:    cfg,
	}, nil
}

// buildModules wires repository → service → handler for every catalog
// resource. All repositories share one sanitizer so textual filters are
// parsed against the same whitelist and date layout.
func buildModules(db *gorm.DB, q config.QueryConfig) []Module {
	sanitizer := filter.NewSanitizer(catalog.Whitelist, filter.WithLocaleDateLayout(q.LocaleDateLayout))
	pages := pkg.PageDefaults{PageSize: q.DefaultPageSize, MaxPageSize: q.MaxPageSize}

	users := user.NewUserRepository(db, sanitizer)
	games := game.NewGameRepository(db, sanitizer)
	purchases := purchase.NewPurchaseRepository(db, sanitizer)
	reviews := review.NewReviewRepository(db, sanitizer)

	return []Module{
		user.NewModule(user.NewUserHandler(user.NewUserService(users, sanitizer), pages)),
		game.NewModule(game.NewGameHandler(game.NewGameService(games), pages)),
		purchase.NewModule(purchase.NewPurchaseHandler(purchase.NewPurchaseService(purchases, users, games), pages)),
		review.NewModule(review.NewReviewHandler(review.NewReviewService(reviews, users, games, purchases), pages)),
	}
}

// resolveCORSConfig builds the CORS policy from settings. In release mode,
// when no allowlist is configured, cross-origin requests are denied.
func resolveCORSConfig(mode string, cfg *config.CORSConfig) (middleware.CORSConfig, error) {
	corsConfig := middleware.DefaultCORSConfig()

	switch {
	case len(cfg.AllowOrigins) > 0:
		corsConfig.AllowOrigins = cfg.AllowOrigins
	case mode == gin.ReleaseMode:
		corsConfig.AllowOrigins = []string{}
	}
	if len(cfg.AllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.AllowHeaders
	}
	corsConfig.AllowCredentials = cfg.AllowCredentials

	maxAge, err := parseOptionalDuration(cfg.MaxAge)
	if err != nil {
		return middleware.CORSConfig{}, fmt.Errorf("invalid server.cors.max_age: %w", err)
	}
	if maxAge > 0 {
		corsConfig.MaxAge = maxAge
	}

	return corsConfig, nil
}

func parseOptionalDuration(v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	return time.ParseDuration(v)
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

func closeDatabase(db *gorm.DB, log *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("database close error", slog.Any("error", err))
		return
	}
	log.Info("database connection closed")
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It drains in-flight requests for up to five seconds, then closes the store
// and the logger.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	requestTimeout, _ := parseOptionalDuration(a.cfg.Server.Timeout)
	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine, requestTimeout)

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	if a.db != nil {
		closeDatabase(a.db, log)
	}

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}
