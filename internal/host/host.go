// Package host describes the window-management surface of the host
// environment that hostlock locks.
package host

import (
	"context"
	"errors"
)

var ErrNoSuchWindow = errors.New("no such window")

// WindowID is an opaque window handle issued by the host
type WindowID string

// Kind distinguishes ordinary windows from hostlock's own surfaces
type Kind string

const (
	KindNormal Kind = "normal"
	KindPanel  Kind = "panel" // unlock panel shown while locked
	KindSetup  Kind = "setup" // first-run / set-password surface
)

// Window is one open host window
type Window struct {
	ID   WindowID `json:"id"`
	Kind Kind     `json:"kind"`
}

// WindowSpec describes a window to create
type WindowSpec struct {
	Kind    Kind
	Width   int
	Height  int
	Focused bool
}

// WindowManager is the host's window API
type WindowManager interface {
	// List returns every open window
	List(ctx context.Context) ([]Window, error)
	// Create opens a window and returns it
	Create(ctx context.Context, spec WindowSpec) (Window, error)
	// Remove closes a window
	Remove(ctx context.Context, id WindowID) error
	// RestoreSession reopens the most recently closed session window
	RestoreSession(ctx context.Context) error
}
