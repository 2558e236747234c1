package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"spotmerge.hitchmap.org/internal/app"
	"spotmerge.hitchmap.org/internal/appconf"
	"spotmerge.hitchmap.org/internal/clock"
	"spotmerge.hitchmap.org/internal/detection"
	"spotmerge.hitchmap.org/internal/executor"
	"spotmerge.hitchmap.org/internal/identity"
	"spotmerge.hitchmap.org/internal/logging"
	"spotmerge.hitchmap.org/internal/metrics"
	"spotmerge.hitchmap.org/internal/notify"
	"spotmerge.hitchmap.org/internal/restapi"
	"spotmerge.hitchmap.org/internal/spots"
	"spotmerge.hitchmap.org/internal/workflow"
	"spotmerge.hitchmap.org/proposaldb"
)

// ParseKeyList splits a comma-separated string and trims whitespace from each
// entry. Returns an empty slice if the input is empty.
func ParseKeyList(raw string) []string {
	if raw == "" {
		return []string{}
	}

	keys := strings.Split(raw, ",")
	for i := range keys {
		keys[i] = strings.TrimSpace(keys[i])
	}
	return keys
}

// BuildApplication creates and initializes the Application with all
// dependencies: logger, SQLite-backed stores, detection, workflow, and
// executor. The returned client must be closed by the caller.
func BuildApplication(cfg appconf.Config, dbPath string) (*app.Application, *proposaldb.Client, error) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := proposaldb.NewClient(proposaldb.NewConfig(dbPath, cfg.Env, cfg.Verbose))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open proposal database: %w", err)
	}

	sysClock := clock.SystemClock{}
	spotRepo := proposaldb.NewSpotRepository(db)
	authorizer := identity.NewStaticAuthorizer(cfg.ModeratorKeys)
	notifier := notify.NewLogNotifier(logger)
	favorites := spots.NewMemoryFavorites()

	detector := detection.NewDetector()
	wf := workflow.New(db, spotRepo, authorizer, notifier, sysClock, logger)
	exec := executor.New(db, db, spotRepo, favorites, wf.Resolver(), notifier, sysClock, logger)

	coreApp := &app.Application{
		Config:     cfg,
		Logger:     logger,
		Clock:      sysClock,
		SpotRepo:   spotRepo,
		Detector:   detector,
		Scanner:    detection.NewScanner(detector),
		Workflow:   wf,
		Executor:   exec,
		Authorizer: authorizer,
		Metrics:    metrics.New(),
	}

	return coreApp, db, nil
}

// CreateServer creates and configures the HTTP server with routes and middleware.
func CreateServer(coreApp *app.Application, cfg appconf.Config) *http.Server {
	api := restapi.NewRestAPI(coreApp)

	mux := http.NewServeMux()
	api.SetRoutes(mux)

	// Wrap with security middleware
	secureHandler := api.WithSecurityHeaders(mux)

	// Add request id + request logging middleware (outermost)
	requestLogger := logging.NewStructuredLogger(os.Stdout, slog.LevelInfo)
	requestLogMiddleware := restapi.NewRequestLoggingMiddleware(requestLogger)
	handler := restapi.RequestIDMiddleware(requestLogMiddleware(secureHandler))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(coreApp.Logger.Handler(), slog.LevelError),
	}

	return srv
}

// Run manages the server lifecycle with graceful shutdown.
func Run(srv *http.Server, logger *slog.Logger) error {
	logger.Info("starting server", "addr", srv.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
