package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/illarion/hostlock/internal/core"
	"github.com/illarion/hostlock/internal/host"
)

const maxBody = 64 << 10

// JSONResponse writes payload as JSON with status
func JSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// ErrorResponse writes {"error": msg}
func ErrorResponse(w http.ResponseWriter, status int, msg string) {
	JSONResponse(w, status, map[string]string{"error": msg})
}

func (s *server) controllerError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrStopped) || errors.Is(err, context.Canceled) {
		ErrorResponse(w, http.StatusServiceUnavailable, "controller stopped")
		return
	}
	s.logger.Error("controller call failed", "error", err)
	ErrorResponse(w, http.StatusInternalServerError, "internal error")
}

func (s *server) handleMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		ErrorResponse(w, http.StatusRequestEntityTooLarge, "request too large")
		return
	}
	req, err := core.DecodeRequest(body)
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.ctrl.Handle(r.Context(), req)
	if err != nil {
		s.controllerError(w, err)
		return
	}
	JSONResponse(w, http.StatusOK, resp)
}

func (s *server) handleInstance(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, http.StatusOK, map[string]string{"id": s.instanceID})
}

func (s *server) handleStartup(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Startup(r.Context()); err != nil {
		s.controllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleIcon(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.IconClicked(r.Context()); err != nil {
		s.controllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type installRequest struct {
	Reason core.InstallReason `json:"reason"`
}

func (s *server) handleInstall(w http.ResponseWriter, r *http.Request) {
	var req installRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil || req.Reason == "" {
		ErrorResponse(w, http.StatusBadRequest, "reason is required")
		return
	}
	if err := s.ctrl.Installed(r.Context(), req.Reason); err != nil {
		s.controllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleListWindows(w http.ResponseWriter, r *http.Request) {
	windows, err := s.host.List(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if windows == nil {
		windows = []host.Window{}
	}
	JSONResponse(w, http.StatusOK, windows)
}

type openWindowResponse struct {
	ID   host.WindowID `json:"id"`
	Open bool          `json:"open"`
}

// handleOpenWindow opens a window as the user would. Open reports whether
// it survived the controller's reaction.
func (s *server) handleOpenWindow(w http.ResponseWriter, r *http.Request) {
	win := s.host.Open()
	if err := s.ctrl.WindowCreated(r.Context(), win.ID); err != nil {
		s.controllerError(w, err)
		return
	}
	_, open := s.host.Get(win.ID)
	JSONResponse(w, http.StatusCreated, openWindowResponse{ID: win.ID, Open: open})
}

func (s *server) handleCloseWindow(w http.ResponseWriter, r *http.Request) {
	id := host.WindowID(mux.Vars(r)["id"])
	if err := s.host.Remove(r.Context(), id); err != nil {
		if errors.Is(err, host.ErrNoSuchWindow) {
			ErrorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.ctrl.WindowRemoved(r.Context(), id); err != nil {
		s.controllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
