package core

import (
	"context"
	"sync"

	"github.com/illarion/hostlock/internal/host"
	"github.com/illarion/hostlock/internal/storage"
)

func (c *Controller) startup(ctx context.Context) {
	c.reload(ctx)
	if c.st.config.PasswdSet() {
		c.st.locked = true
		c.showPanel(ctx, false)
	}
}

// lock records how many windows were open, locks, and shows the panel.
// A second lock while already locked keeps the first count.
func (c *Controller) lock(ctx context.Context) {
	count := 0
	windows, err := c.windows.List(ctx)
	if err != nil {
		c.logger.Warn("failed to count windows", "error", err)
	}
	for _, w := range windows {
		if w.Kind == host.KindNormal {
			count++
		}
	}

	_, counted := c.sessions.Get(storage.SessionsKey)
	wasLocked := c.st.locked

	c.st.locked = true
	c.showPanel(ctx, true)

	if !wasLocked || !counted {
		c.sessions.Set(storage.SessionsKey, count)
	}
	c.logger.Info("locked", "windows", count)
}

func (c *Controller) unlock(ctx context.Context, req UnlockRequest) Response {
	if !c.st.config.Passwd.Verify(req.Passwd) {
		c.logger.Info("unlock rejected")
		return Response{Type: KindUnlock, Success: false}
	}

	c.st.locked = false

	sessions, _ := c.sessions.Get(storage.SessionsKey)
	c.sessions.Delete(storage.SessionsKey)
	if sessions > 0 {
		for i := 0; i < sessions; i++ {
			if err := c.windows.RestoreSession(ctx); err != nil {
				c.logger.Debug("failed to restore session", "error", err)
			}
		}
	} else {
		if _, err := c.windows.Create(ctx, host.WindowSpec{Kind: host.KindNormal, Focused: true}); err != nil {
			c.logger.Debug("failed to open window", "error", err)
		}
	}

	if c.st.panelOpened {
		if err := c.windows.Remove(ctx, c.st.panelID); err != nil {
			c.logger.Debug("failed to close panel", "error", err)
		}
		c.st.panelOpened = false
		c.st.panelID = ""
	}

	c.logger.Info("unlocked", "sessions_restored", sessions)
	return Response{Type: KindUnlock, Success: true}
}

func (c *Controller) windowCreated(ctx context.Context, id host.WindowID) {
	if id == c.st.panelID {
		return
	}
	if c.st.locked && c.st.config.PasswdSet() {
		c.showPanel(ctx, false)
	}
}

func (c *Controller) windowRemoved(ctx context.Context, id host.WindowID) {
	if c.st.panelOpened && id == c.st.panelID {
		c.st.panelOpened = false
		c.st.panelID = ""
	}

	windows, err := c.windows.List(ctx)
	if err != nil {
		c.logger.Warn("failed to count windows", "error", err)
		return
	}
	if len(windows) == 0 && !c.st.locked {
		c.st.locked = true
		c.logger.Info("last window closed, locked")
	}
}

func (c *Controller) installed(ctx context.Context, reason InstallReason) {
	switch reason {
	case ReasonInstall:
		c.openSetup(ctx)
	case ReasonUpdate:
		c.reload(ctx)
		c.st.locked = false
	default:
		c.logger.Debug("ignoring install event", "reason", reason)
	}
}

// showPanel makes the unlock panel the only open window. It never fails:
// window operations are best-effort.
func (c *Controller) showPanel(ctx context.Context, fromIcon bool) {
	if !c.st.locked {
		return
	}

	if !c.st.config.PasswdSet() {
		if fromIcon {
			c.openSetup(ctx)
		}
		return
	}

	windows, err := c.windows.List(ctx)
	if err != nil {
		c.logger.Warn("failed to list windows", "error", err)
		return
	}

	if !c.panelAlive(windows) {
		panel, err := c.windows.Create(ctx, c.surfaces.Panel)
		if err != nil {
			c.logger.Warn("failed to open unlock panel", "error", err)
			return
		}
		c.st.panelID = panel.ID
		c.st.panelOpened = true
	}

	var wg sync.WaitGroup
	for _, w := range windows {
		if w.ID == c.st.panelID {
			continue
		}
		wg.Add(1)
		go func(id host.WindowID) {
			defer wg.Done()
			if err := c.windows.Remove(ctx, id); err != nil {
				c.logger.Debug("failed to close window", "window", id, "error", err)
			}
		}(w.ID)
	}
	wg.Wait()
}

// panelAlive reports whether the remembered panel is still open; a stale
// handle is forgotten
func (c *Controller) panelAlive(windows []host.Window) bool {
	if !c.st.panelOpened {
		return false
	}
	for _, w := range windows {
		if w.ID == c.st.panelID {
			return true
		}
	}
	c.st.panelOpened = false
	c.st.panelID = ""
	return false
}

func (c *Controller) openSetup(ctx context.Context) {
	windows, err := c.windows.List(ctx)
	if err == nil {
		for _, w := range windows {
			if w.Kind == host.KindSetup {
				return
			}
		}
	}
	if _, err := c.windows.Create(ctx, c.surfaces.Setup); err != nil {
		c.logger.Warn("failed to open setup window", "error", err)
	}
}
