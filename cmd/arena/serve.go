package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/turn-arena/internal/config"
	"github.com/vovakirdan/turn-arena/internal/multiplayer"
	"github.com/vovakirdan/turn-arena/internal/storage"
	"github.com/vovakirdan/turn-arena/internal/transport/httpapi"
	"github.com/vovakirdan/turn-arena/internal/transport/sshcmd"
)

var (
	flagHTTPAddr string
	flagSSHAddr  string
	flagHostKey  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the arena servers",
	Long: `Start the HTTP/JSON API (with WebSocket notifications on /ws) and,
unless ssh_addr is empty, the SSH command interface.

Callers identify themselves with the X-User-ID header over HTTP and with
the SSH username over SSH.

Examples:
  arena serve                          # Use config defaults (:8080, :2222)
  arena serve --http :9000             # Listen for HTTP on port 9000
  arena serve --ssh ""                 # Disable SSH
  arena serve --db :memory:            # Throwaway database

Users can connect with:
  ssh 42@localhost -p 2222`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP address (overrides config)")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH address, empty string disables (overrides config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to SSH host key (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagHTTPAddr != "" {
		cfg.Server.HTTPAddr = flagHTTPAddr
	}
	if cmd.Flags().Changed("ssh") {
		cfg.Server.SSHAddr = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.Server.HostKeyPath = flagHostKey
	}
	logger := newLogger(cfg.Log)

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	hub := multiplayer.NewHub()
	svc := multiplayer.NewService(serviceConfig(cfg.Matchmaking), store, hub, logger)
	defer svc.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.ResumeTimers(ctx); err != nil {
		return fmt.Errorf("resume turn timers: %w", err)
	}

	api := httpapi.NewHandler(svc, hub, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	var sshServer *sshcmd.Server
	if cfg.Server.SSHAddr != "" {
		sshServer, err = sshcmd.NewServer(sshcmd.ServerConfig{
			Address:     cfg.Server.SSHAddr,
			HostKeyPath: cfg.Server.HostKeyPath,
			IdleTimeout: cfg.Server.IdleTimeout,
		}, svc, hub, logger)
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "address", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if sshServer != nil {
		g.Go(func() error {
			if err := sshServer.ListenAndServe(); err != nil {
				return fmt.Errorf("ssh server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		api.Close()
		errs := []error{httpServer.Shutdown(shutdownCtx)}
		if sshServer != nil {
			errs = append(errs, sshServer.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

func serviceConfig(c config.MatchmakingConfig) multiplayer.ServiceConfig {
	return multiplayer.ServiceConfig{
		TurnTimeout: c.TurnTimeout,
		JoinRetries: c.JoinRetries,
		IDRetries:   c.IDRetries,
	}
}
