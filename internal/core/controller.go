package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/illarion/hostlock/internal/guard"
	"github.com/illarion/hostlock/internal/host"
	"github.com/illarion/hostlock/internal/storage"
)

var (
	ErrStopped        = errors.New("controller stopped")
	ErrAlreadyRunning = errors.New("controller already running")
)

// Store is the durable config store the controller persists to
type Store interface {
	guard.Store
	Put(ctx context.Context, values storage.Values) error
	Subscribe() (*storage.Subscription, error)
}

// Surfaces sizes the windows the controller opens for itself
type Surfaces struct {
	Panel host.WindowSpec
	Setup host.WindowSpec
}

// DefaultSurfaces returns the standard unlock panel and setup window sizes
func DefaultSurfaces() Surfaces {
	return Surfaces{
		Panel: host.WindowSpec{Kind: host.KindPanel, Width: 520, Height: 370, Focused: true},
		Setup: host.WindowSpec{Kind: host.KindSetup, Width: 640, Height: 580, Focused: true},
	}
}

// Options configures a Controller
type Options struct {
	Store    Store
	Sessions *storage.Ephemeral
	Windows  host.WindowManager
	Surfaces *Surfaces
	Logger   *slog.Logger
}

// state is the runtime state. Only the Run goroutine touches it.
type state struct {
	locked      bool
	panelOpened bool
	panelID     host.WindowID
	config      storage.Config
}

type event struct {
	name string
	fn   func(ctx context.Context)
	done chan struct{}
}

// Controller owns the lock state. Every host event and request is queued
// and handled one at a time by Run, so no handler ever observes a
// half-applied change made by another.
type Controller struct {
	store    Store
	sessions *storage.Ephemeral
	windows  host.WindowManager
	surfaces Surfaces
	logger   *slog.Logger

	events  chan event
	started chan struct{}
	stopped chan struct{}

	// owned by the Run goroutine
	st    state
	guard *guard.Guard
}

// New creates a controller; call Run to start it
func New(opts Options) (*Controller, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if opts.Windows == nil {
		return nil, fmt.Errorf("window manager is required")
	}
	if opts.Sessions == nil {
		opts.Sessions = storage.NewEphemeral()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	surfaces := DefaultSurfaces()
	if opts.Surfaces != nil {
		surfaces = *opts.Surfaces
	}

	return &Controller{
		store:    opts.Store,
		sessions: opts.Sessions,
		windows:  opts.Windows,
		surfaces: surfaces,
		logger:   opts.Logger,
		events:   make(chan event),
		started:  make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// Run loads the config, applies the startup lock and serves events until
// ctx is done. It returns ctx.Err() on shutdown.
func (c *Controller) Run(ctx context.Context) error {
	select {
	case <-c.started:
		return ErrAlreadyRunning
	default:
		close(c.started)
	}
	defer close(c.stopped)

	values, err := c.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := storage.ParseConfig(values)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		c.logger.Warn("stored credential record is inconsistent", "error", err)
	}

	c.guard, err = guard.New(c.store, values, c.logger.With("component", "guard"))
	if err != nil {
		return err
	}
	sub, err := c.store.Subscribe()
	if err != nil {
		return fmt.Errorf("failed to watch config: %w", err)
	}
	defer sub.Close()

	c.st.config = cfg
	if cfg.PasswdSet() {
		c.st.locked = true
		c.showPanel(ctx, false)
	}
	c.logger.Info("controller started", "locked", c.st.locked, "passwd_set", cfg.PasswdSet())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			c.logger.Debug("event", "name", ev.name)
			ev.fn(ctx)
			close(ev.done)
		case change, ok := <-sub.C():
			if !ok {
				return ErrStopped
			}
			c.observe(ctx, change)
		}
	}
}

// submit queues fn and waits for Run to finish it. ctx only bounds the
// wait for Run to accept the event: once accepted, fn runs to completion
// under Run's context and submit reports its result.
func (c *Controller) submit(ctx context.Context, name string, fn func(ctx context.Context)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ev := event{name: name, fn: fn, done: make(chan struct{})}
	select {
	case c.events <- ev:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopped:
		return ErrStopped
	}

	<-ev.done
	return nil
}

// Handle answers one protocol request
func (c *Controller) Handle(ctx context.Context, req Request) (Response, error) {
	var resp Response
	err := c.submit(ctx, string(req.Kind()), func(ctx context.Context) {
		resp = c.dispatch(ctx, req)
	})
	return resp, err
}

// IconClicked locks the host on user request
func (c *Controller) IconClicked(ctx context.Context) error {
	return c.submit(ctx, "icon", c.lock)
}

// Startup handles a host restart
func (c *Controller) Startup(ctx context.Context) error {
	return c.submit(ctx, "startup", c.startup)
}

// WindowCreated handles a window opened by the user or the host
func (c *Controller) WindowCreated(ctx context.Context, id host.WindowID) error {
	return c.submit(ctx, "window_created", func(ctx context.Context) {
		c.windowCreated(ctx, id)
	})
}

// WindowRemoved handles a window closed by the user or the host
func (c *Controller) WindowRemoved(ctx context.Context, id host.WindowID) error {
	return c.submit(ctx, "window_removed", func(ctx context.Context) {
		c.windowRemoved(ctx, id)
	})
}

// InstallReason is why the host reported an install event
type InstallReason string

const (
	ReasonInstall InstallReason = "install"
	ReasonUpdate  InstallReason = "update"
)

// Installed handles install and update events
func (c *Controller) Installed(ctx context.Context, reason InstallReason) error {
	return c.submit(ctx, "installed", func(ctx context.Context) {
		c.installed(ctx, reason)
	})
}

// dispatch is exhaustive over the Request variants
func (c *Controller) dispatch(ctx context.Context, req Request) Response {
	switch r := req.(type) {
	case UnlockRequest:
		return c.unlock(ctx, r)
	case PasswdRequest:
		return c.setOrChange(ctx, r)
	case RecoveryRequest:
		return c.resetWithRecoveryKey(ctx, r)
	case ConfigRequest:
		return Response{Type: KindConfig, Success: true, Data: c.st.config}
	case StatusRequest:
		return Response{Type: KindStatus, Success: true, Data: c.status()}
	default:
		c.logger.Error("unhandled request", "kind", req.Kind())
		return Response{Type: req.Kind(), Message: ErrUnknownRequest.Error()}
	}
}

func (c *Controller) status() Status {
	return Status{Locked: c.st.locked, PanelOpened: c.st.panelOpened}
}

func (c *Controller) observe(ctx context.Context, change storage.Change) {
	outcome, err := c.guard.Observe(ctx, change)
	if err != nil {
		c.logger.Error("failed to check config change", "seq", change.Seq, "error", err)
		return
	}
	c.logger.Debug("config change", "seq", change.Seq, "outcome", outcome.String(), "pending", c.guard.Pending())
}

// reload refreshes the cached config from the store. Contents that do not
// match the guard's known-good copy are not trusted; the guard reverts them.
func (c *Controller) reload(ctx context.Context) {
	values, err := c.store.Snapshot(ctx)
	if err != nil {
		c.logger.Error("failed to reload config", "error", err)
		return
	}
	got, err := guard.Sum(values)
	if err != nil {
		c.logger.Error("failed to reload config", "error", err)
		return
	}
	want, err := guard.Sum(c.guard.KnownGood())
	if err != nil || got != want {
		c.logger.Warn("stored config differs from known-good copy, keeping cache")
		return
	}
	cfg, err := storage.ParseConfig(values)
	if err != nil {
		c.logger.Error("failed to reload config", "error", err)
		return
	}
	c.st.config = cfg
}
