package storage

import "sync"

// SessionsKey holds the number of windows open when the host was locked
const SessionsKey = "sessions"

// Ephemeral is a process-lifetime integer store
type Ephemeral struct {
	mu     sync.Mutex
	values map[string]int
}

// NewEphemeral creates an empty ephemeral store
func NewEphemeral() *Ephemeral {
	return &Ephemeral{values: make(map[string]int)}
}

// Get returns the value for key and whether it was set
func (e *Ephemeral) Get(key string) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.values[key]
	return v, ok
}

// Set stores value under key
func (e *Ephemeral) Set(key string, value int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values[key] = value
}

// Delete removes key
func (e *Ephemeral) Delete(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.values, key)
}
