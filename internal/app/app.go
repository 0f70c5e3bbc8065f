package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"edujobs_backend/internal/auth"
	"edujobs_backend/internal/config"
	"edujobs_backend/internal/database"
	"edujobs_backend/internal/email"
	"edujobs_backend/internal/handlers"
	"edujobs_backend/internal/middleware"
	"edujobs_backend/internal/ratelimit"
	"edujobs_backend/internal/repositories"
	"edujobs_backend/internal/routes"
	"edujobs_backend/internal/services"
	"edujobs_backend/internal/validator"
	"edujobs_backend/internal/workers"
	"edujobs_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App wires configuration, storage, services and the HTTP router.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	db      *gorm.DB
	router  *gin.Engine
	mailer  *email.Mailer
	cleanup *workers.TokenCleanupWorker
}

type options struct {
	emailProvider email.Provider
	clock         func() time.Time
	db            *gorm.DB
}

// Option customizes New. Tests use them to swap collaborators.
type Option func(*options)

// WithEmailProvider replaces the provider chosen from config.
func WithEmailProvider(p email.Provider) Option {
	return func(o *options) { o.emailProvider = p }
}

// WithClock replaces the time source of tokens, services and the rate limiter.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// WithDB uses an already opened database instead of opening one from config.
func WithDB(db *gorm.DB) Option {
	return func(o *options) { o.db = db }
}

// New opens the database, migrates it, seeds the first admin and builds the router.
func New(cfg *config.Config, log *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	now := o.clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	db := o.db
	if db == nil {
		var err error
		log.Info("connecting to database", "driver", cfg.Database.Driver)
		db, err = database.Open(cfg.Database, log)
		if err != nil {
			return nil, err
		}
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}

	provider := o.emailProvider
	if provider == nil {
		var err error
		provider, err = newEmailProvider(cfg, log)
		if err != nil {
			_ = database.Close(db)
			return nil, err
		}
	}
	templates, err := email.NewTemplateManager()
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("load email templates: %w", err)
	}
	if dir := cfg.Email.TemplatesDir; dir != "" {
		if err := templates.LoadTemplates(dir); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("load email templates from %s: %w", dir, err)
		}
	}
	log.Debug("email templates loaded", "templates", templates.TemplateNames())
	mailer := email.NewMailer(provider, templates, cfg.Email.FromEmail, cfg.Email.BaseURL)

	permissions, err := loadPermissions(cfg)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	if err := seedFirstAdmin(db, cfg, hasher, log); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("seed first admin: %w", err)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret(), cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL).WithClock(now)
	userRepo := repositories.NewUserRepository(db)
	courseRepo := repositories.NewCourseRepository(db)

	container := &services.ServiceContainer{
		AuthService: services.NewAuthService(userRepo, tokens, hasher, mailer, services.AuthOptions{
			VerificationTTL: cfg.Auth.VerificationTTL,
			ResetTTL:        cfg.Auth.ResetTTL,
		}, now),
		UserService:   services.NewUserService(userRepo, hasher, tokens, now),
		CourseService: services.NewCourseService(courseRepo, userRepo, now),
	}

	limiter := ratelimit.New(cfg.Auth.RateLimit.Window, cfg.Auth.RateLimit.MaxAttempts).WithClock(now)
	guards := handlers.Guards{
		Authenticate: middleware.Authenticate(container.AuthService),
		OptionalAuth: middleware.OptionalAuth(container.AuthService),
		RateLimit:    middleware.RateLimit(limiter),
		Permissions:  permissions,
	}

	cookies := handlers.CookieSettings{
		Secure:     cfg.SecureCookies(),
		Domain:     cfg.Auth.CookieDomain,
		AccessTTL:  tokens.AccessTTL(),
		RefreshTTL: tokens.RefreshTTL(),
	}

	router := initializeGinRouter(cfg, log)
	routes.RegisterRoutes(router, initializeHandlers(container, db, cookies, cfg.Auth.ExposeTokens), guards)

	return &App{
		cfg:     cfg,
		log:     log,
		db:      db,
		router:  router,
		mailer:  mailer,
		cleanup: workers.NewTokenCleanupWorker(userRepo, cfg.Workers.TokenCleanupInterval, cfg.Workers.TokenRetention, log).WithClock(now),
	}, nil
}

func newEmailProvider(cfg *config.Config, log *slog.Logger) (email.Provider, error) {
	if !cfg.Email.Enabled {
		log.Warn("email delivery disabled, messages are logged only")
		return email.NewLogProvider(log), nil
	}
	provider, err := email.NewSMTPProvider(email.FromAppConfig(cfg.Email))
	if err != nil {
		return nil, fmt.Errorf("configure smtp: %w", err)
	}
	return provider, nil
}

func loadPermissions(cfg *config.Config) (*auth.PermissionTable, error) {
	if cfg.Auth.PermissionsFile == "" {
		return auth.DefaultPermissionTable(), nil
	}
	table, err := auth.LoadPermissionTable(cfg.Auth.PermissionsFile)
	if err != nil {
		return nil, err
	}
	return table, nil
}

func initializeHandlers(container *services.ServiceContainer, db *gorm.DB, cookies handlers.CookieSettings, exposeTokens bool) *handlers.AppHandlers {
	base := handlers.NewBaseHandler(validator.New())
	return &handlers.AppHandlers{
		AuthHandler:   handlers.NewAuthHandler(base, container.AuthService, cookies, exposeTokens),
		UserHandler:   handlers.NewUserHandler(base, container.UserService, container.CourseService, cookies),
		AdminHandler:  handlers.NewAdminHandler(base, container.UserService),
		CourseHandler: handlers.NewCourseHandler(base, container.CourseService),
		HealthHandler: handlers.NewHealthHandler(db),
	}
}

func initializeGinRouter(cfg *config.Config, log *slog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.RequestID())
	router.Use(apperrors.Middleware(cfg.IsDevelopment()))
	router.Use(apperrors.Recovery())
	router.Use(middleware.Logging())
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	return router
}

// Router exposes the HTTP handler, mainly for tests.
func (a *App) Router() http.Handler {
	return a.router
}

// DB returns the database handle.
func (a *App) DB() *gorm.DB {
	return a.db
}

// Run serves HTTP until ctx is cancelled, then drains connections within
// server.shutdown_timeout.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      a.router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	a.cleanup.Start(workerCtx)

	serveErr := make(chan error, 1)
	go func() {
		a.log.Info("server starting", "addr", srv.Addr, "env", a.cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down", "timeout", a.cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	stopWorkers()
	err := srv.Shutdown(shutdownCtx)
	a.cleanup.Wait()
	if err != nil {
		_ = srv.Close()
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	a.log.Info("server stopped")
	return nil
}

// Close releases the mail provider and the database.
func (a *App) Close() error {
	return errors.Join(a.mailer.Close(), database.Close(a.db))
}
