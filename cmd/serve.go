package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/illarion/hostlock/internal/api"
	"github.com/illarion/hostlock/internal/config"
	"github.com/illarion/hostlock/internal/core"
	"github.com/illarion/hostlock/internal/host"
	"github.com/illarion/hostlock/internal/security"
	"github.com/illarion/hostlock/internal/storage"
)

// Serve runs the daemon until ctx is cancelled
func Serve(ctx context.Context, configPath string) {
	if err := serve(ctx, configPath); err != nil {
		HandleError(err)
	}
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	dataDir, err := security.OpenDataDir(cfg.DataDir)
	if err != nil {
		return err
	}
	defer dataDir.Close()
	logger.Debug("data dir opened", "path", dataDir.Path())
	storePath, err := dataDir.Resolve(cfg.Store)
	if err != nil {
		return fmt.Errorf("invalid store: %w", err)
	}

	db, err := storage.Open(storePath)
	if err != nil {
		return err
	}
	defer db.Close()

	instanceID, err := db.GetOrCreateInstanceID()
	if err != nil {
		return err
	}

	surfaces := core.Surfaces{
		Panel: host.WindowSpec{Kind: host.KindPanel, Width: cfg.Panel.Width, Height: cfg.Panel.Height, Focused: true},
		Setup: host.WindowSpec{Kind: host.KindSetup, Width: cfg.Setup.Width, Height: cfg.Setup.Height, Focused: true},
	}
	windows := host.NewMemory()
	ctrl, err := core.New(core.Options{
		Store:    db,
		Sessions: storage.NewEphemeral(),
		Windows:  windows,
		Surfaces: &surfaces,
		Logger:   logger.With("component", "controller"),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- ctrl.Run(ctx) }()

	srv := &http.Server{
		Addr: cfg.Listen,
		Handler: api.NewRouter(api.Options{
			Controller: ctrl,
			InstanceID: instanceID,
			Host:       windows,
			Logger:     logger.With("component", "api"),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe() }()

	logger.Info("hostlock serving", "addr", cfg.Listen, "store", db.Path(), "instance", instanceID)

	var result error
	select {
	case <-ctx.Done():
	case err := <-runErr:
		if !errors.Is(err, context.Canceled) {
			result = fmt.Errorf("controller stopped: %w", err)
		}
		runErr = nil
	case err := <-serveErr:
		result = fmt.Errorf("http server stopped: %w", err)
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	cancel()
	if runErr != nil {
		<-runErr
	}

	logger.Info("hostlock stopped")
	return result
}
