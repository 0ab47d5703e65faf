package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/thenoetrevino/lanes/internal/config"
	"github.com/thenoetrevino/lanes/internal/daemon"
	"github.com/thenoetrevino/lanes/internal/events"
	"github.com/thenoetrevino/lanes/internal/telemetry"
)

func main() {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	socketPath := cfg.Daemon.SocketPath
	if socketPath == "" {
		socketPath, err = events.DefaultSocketPath()
		if err != nil {
			slog.Error("failed to resolve socket path", "error", err)
			os.Exit(1)
		}
	}

	// Ensure the socket directory exists with secure permissions
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o700); err != nil {
		slog.Error("failed to create socket directory", "error", err)
		os.Exit(1)
	}

	if err := telemetry.Init(ctx, telemetry.Options{
		Enabled: cfg.Telemetry.Enabled,
		Stdout:  cfg.Telemetry.Stdout,
	}, "lanes-daemon", "dev"); err != nil {
		slog.Warn("telemetry disabled", "error", err)
	}
	defer telemetry.Shutdown(context.WithoutCancel(ctx))

	server, err := daemon.NewServer(socketPath,
		daemon.WithBuffers(cfg.Daemon.BroadcastBuffer, cfg.Daemon.ClientBuffer))
	if err != nil {
		slog.Error("failed to create daemon", "error", err)
		os.Exit(1)
	}

	slog.Info("lanes daemon starting", "socket_path", socketPath, "pid", os.Getpid())

	// Start the daemon (blocks until shutdown)
	if err := server.Start(ctx); err != nil {
		slog.Error("daemon error", "error", err)
		os.Exit(1)
	}

	slog.Info("lanes daemon shutting down gracefully")
}
