package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/The-synnapse-Project/front-end-sub000/internal"
	"github.com/The-synnapse-Project/front-end-sub000/internal/auth"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/events"
	"github.com/The-synnapse-Project/front-end-sub000/internal/entry"
	"github.com/The-synnapse-Project/front-end-sub000/internal/gateway"
	"github.com/The-synnapse-Project/front-end-sub000/internal/guard"
	"github.com/The-synnapse-Project/front-end-sub000/internal/identity"
	"github.com/The-synnapse-Project/front-end-sub000/internal/notify"
	"github.com/The-synnapse-Project/front-end-sub000/internal/permission"
	"github.com/The-synnapse-Project/front-end-sub000/internal/person"
	"github.com/The-synnapse-Project/front-end-sub000/internal/session"
	"github.com/The-synnapse-Project/front-end-sub000/internal/transport/rest"
	"github.com/The-synnapse-Project/front-end-sub000/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	Router   *chi.Mux
	Backend  *gateway.Client
	Guard    *guard.Guard
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.Handlers, deps.Guard, deps.Config.Server.AllowedOrigins, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Observability.Logging.Format == "json" {
		logger.Init("production")
	} else {
		logger.Init("development")
	}
	lg := logger.L()

	backend := gateway.NewClient(gateway.Config{
		BaseURL:        config.Attendance.BaseURL,
		SharedSecret:   config.Attendance.SharedSecret,
		RequestTimeout: config.Attendance.RequestTimeout,
	}, lg)

	sessions := session.NewManager(config.Security.SessionSecret, config.Security.SessionDuration)
	access := guard.New(sessions, config.Security.SignInPath, lg)
	resolver := identity.NewService(backend, lg)

	bus := events.NewBus(lg)
	relay := notify.NewRelay(bus, lg)

	handlers := rest.Handlers{
		Health:     rest.NewHealthHandler(backend),
		Auth:       auth.NewHandler(resolver, backend, sessions),
		Persons:    person.NewHandler(person.NewService(backend, bus, lg)),
		Permission: permission.NewHandler(permission.NewService(backend, bus, lg)),
		Entries:    entry.NewHandler(entry.NewService(backend, bus, lg)),
		Notify:     notify.NewHandler(relay),
	}

	return &Dependencies{
		Config:   config,
		Router:   chi.NewRouter(),
		Backend:  backend,
		Guard:    access,
		Handlers: handlers,
		Logger:   lg,
	}, nil
}
