package app

import (
	"context"
	"log/slog"

	"github.com/thenoetrevino/lanes/internal/config"
	"github.com/thenoetrevino/lanes/internal/database"
	"github.com/thenoetrevino/lanes/internal/events"
	projectservice "github.com/thenoetrevino/lanes/internal/services/project"
	ticketservice "github.com/thenoetrevino/lanes/internal/services/ticket"
	"github.com/thenoetrevino/lanes/internal/telemetry"
)

// App holds all application services and provides dependency injection.
// This is the main application container that manages service lifecycles.
type App struct {
	// Repository layer (direct database access)
	store database.DataStore

	// Event system for live updates
	eventClient events.EventPublisher

	Config *config.Config

	// Service layer (business logic)
	TicketService  ticketservice.Service
	ProjectService projectservice.Service
}

// New creates a new App around an already opened store
func New(store database.DataStore, cfg *config.Config, opts ...Option) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	ac := &appConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(ac)
	}

	return &App{
		store:       store,
		eventClient: ac.eventClient,
		Config:      cfg,
		TicketService: ticketservice.NewService(store, ac.eventClient,
			ticketservice.WithAutoRebalance(cfg.Ordering.AutoRebalance),
			ticketservice.WithLogger(ac.logger),
		),
		ProjectService: projectservice.NewService(store, ac.eventClient),
	}
}

// Open builds the App described by cfg: it opens the database, instruments it
// when telemetry is enabled and connects to the daemon when one is running.
// A missing daemon is not an error; live updates are simply off.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	ac := &appConfig{logger: slog.Default(), connect: !cfg.Daemon.Disabled}
	for _, opt := range opts {
		opt(ac)
	}

	store, err := database.Open(ctx, database.Options{
		Driver:          cfg.Database.Driver,
		Path:            cfg.Database.Path,
		DSN:             cfg.Database.DSN,
		RetryMaxElapsed: cfg.Retry.MaxElapsed,
	})
	if err != nil {
		return nil, err
	}
	wrapped := telemetry.WrapStore(store)

	if ac.eventClient == nil && ac.connect {
		ac.eventClient = connectDaemon(ctx, cfg.Daemon.SocketPath, ac.logger)
	}

	return New(wrapped, cfg, WithEventPublisher(ac.eventClient), WithLogger(ac.logger)), nil
}

// connectDaemon returns a connected client or nil when no daemon is reachable
func connectDaemon(ctx context.Context, socketPath string, logger *slog.Logger) events.EventPublisher {
	if socketPath == "" {
		var err error
		if socketPath, err = events.DefaultSocketPath(); err != nil {
			logger.Debug("no daemon socket path", "error", err)
			return nil
		}
	}

	client, err := events.NewClient(socketPath, events.WithLogger(logger))
	if err != nil {
		logger.Debug("failed to create event client", "error", err)
		return nil
	}
	if err := client.Connect(ctx); err != nil {
		logger.Debug("daemon not available, live updates disabled", "error", events.ClassifyDaemonError(err))
		_ = client.Close()
		return nil
	}
	return client
}

// Events returns the daemon client, nil when live updates are off
func (a *App) Events() events.EventPublisher {
	return a.eventClient
}

// Close flushes pending events and closes the database
func (a *App) Close() error {
	if a.eventClient != nil {
		if err := a.eventClient.Close(); err != nil {
			slog.Error("error closing event client", "error", err)
		}
	}
	return a.store.Close()
}
