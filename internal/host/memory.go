package host

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process WindowManager. The daemon uses it as the host
// model that clients drive over HTTP; tests use it directly.
type Memory struct {
	mu      sync.Mutex
	windows []Window
	closed  []Window // closed normal windows, most recent last
	failing map[WindowID]bool
}

// NewMemory creates a host with no windows
func NewMemory() *Memory {
	return &Memory{failing: make(map[WindowID]bool)}
}

// Open opens a normal window on behalf of the user
func (m *Memory) Open() Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := Window{ID: WindowID(uuid.NewString()), Kind: KindNormal}
	m.windows = append(m.windows, w)
	return w
}

// FailRemoval makes Remove of id fail, simulating a window that refuses to close
func (m *Memory) FailRemoval(id WindowID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[id] = true
}

// Count returns the number of open windows
func (m *Memory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// Get returns the window with id
func (m *Memory) Get(id WindowID) (Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return Window{}, false
	}
	return m.windows[i], true
}

func (m *Memory) index(id WindowID) int {
	for i, w := range m.windows {
		if w.ID == id {
			return i
		}
	}
	return -1
}

// List implements WindowManager
func (m *Memory) List(ctx context.Context) ([]Window, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Window(nil), m.windows...), nil
}

// Create implements WindowManager
func (m *Memory) Create(ctx context.Context, spec WindowSpec) (Window, error) {
	if err := ctx.Err(); err != nil {
		return Window{}, err
	}
	kind := spec.Kind
	if kind == "" {
		kind = KindNormal
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	w := Window{ID: WindowID(uuid.NewString()), Kind: kind}
	m.windows = append(m.windows, w)
	return w, nil
}

// Remove implements WindowManager. Closed normal windows can be restored.
func (m *Memory) Remove(ctx context.Context, id WindowID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing[id] {
		return ErrNoSuchWindow
	}
	i := m.index(id)
	if i < 0 {
		return ErrNoSuchWindow
	}
	w := m.windows[i]
	m.windows = append(m.windows[:i], m.windows[i+1:]...)
	if w.Kind == KindNormal {
		m.closed = append(m.closed, w)
	}
	return nil
}

// RestoreSession implements WindowManager
func (m *Memory) RestoreSession(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.closed) == 0 {
		return ErrNoSuchWindow
	}
	w := m.closed[len(m.closed)-1]
	m.closed = m.closed[:len(m.closed)-1]
	m.windows = append(m.windows, w)
	return nil
}
