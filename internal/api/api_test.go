package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/illarion/hostlock/internal/core"
	"github.com/illarion/hostlock/internal/host"
	"github.com/illarion/hostlock/internal/storage"
)

type testServer struct {
	srv    *httptest.Server
	client *Client
	mem    *host.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := storage.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	id, err := db.GetOrCreateInstanceID()
	if err != nil {
		t.Fatalf("Failed to create instance ID: %v", err)
	}

	mem := host.NewMemory()
	ctrl, err := core.New(core.Options{Store: db, Windows: mem, Logger: logger})
	if err != nil {
		t.Fatalf("Failed to create controller: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- ctrl.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-errc
	})

	srv := httptest.NewServer(NewRouter(Options{
		Controller: ctrl,
		InstanceID: id,
		Host:       mem,
		Logger:     logger,
	}))
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, client: NewClient(srv.URL), mem: mem}
}

func (ts *testServer) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to post %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.srv.URL + "/health")
	if err != nil {
		t.Fatalf("Failed to get health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Unexpected status %d", resp.StatusCode)
	}
}

func TestMessageRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	st, err := ts.client.Status(ctx)
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if st.Locked {
		t.Error("Expected unlocked")
	}

	resp, err := ts.client.Send(ctx, core.PasswdRequest{PasswdNew: "pw"})
	if err != nil {
		t.Fatalf("Failed to send passwd: %v", err)
	}
	if !resp.Success || resp.RecoveryKey == "" {
		t.Fatalf("Unexpected passwd response %+v", resp)
	}

	cfg, err := ts.client.Config(ctx)
	if err != nil {
		t.Fatalf("Failed to get config: %v", err)
	}
	if !cfg.Passwd.Verify("pw") {
		t.Error("Config over HTTP does not carry the credential")
	}

	resp, err = ts.client.Send(ctx, core.UnlockRequest{Passwd: "nope"})
	if err != nil {
		t.Fatalf("Failed to send unlock: %v", err)
	}
	if resp.Success || resp.Type != core.KindUnlock {
		t.Errorf("Unexpected unlock response %+v", resp)
	}
}

func TestMessageRejectsBadRequests(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []string{`{"type":"reboot"}`, `not json`} {
		resp := ts.post(t, "/v1/messages", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Body %q: expected 400, got %d", body, resp.StatusCode)
		}
	}

	resp, err := http.Get(ts.srv.URL + "/v1/messages")
	if err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", resp.StatusCode)
	}
}

func TestInstance(t *testing.T) {
	ts := newTestServer(t)

	id, err := ts.client.InstanceID(context.Background())
	if err != nil {
		t.Fatalf("Failed to get instance ID: %v", err)
	}
	if len(id) != 32 {
		t.Errorf("Unexpected instance ID %q", id)
	}
}

func TestHostWindowFlow(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	if _, err := ts.client.Send(ctx, core.PasswdRequest{PasswdNew: "pw"}); err != nil {
		t.Fatalf("Failed to set password: %v", err)
	}

	resp := ts.post(t, "/v1/host/windows", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	var opened openWindowResponse
	if err := json.NewDecoder(resp.Body).Decode(&opened); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if !opened.Open {
		t.Error("Window should stay open while unlocked")
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.srv.URL+"/v1/host/windows/"+string(opened.ID), nil)
	del, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to delete window: %v", err)
	}
	del.Body.Close()
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", del.StatusCode)
	}

	st, err := ts.client.Status(ctx)
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if !st.Locked {
		t.Error("Closing the last window should lock")
	}

	resp = ts.post(t, "/v1/host/windows", "")
	if err := json.NewDecoder(resp.Body).Decode(&opened); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if opened.Open {
		t.Error("Window should be closed while locked")
	}

	list, err := http.Get(ts.srv.URL + "/v1/host/windows")
	if err != nil {
		t.Fatalf("Failed to list windows: %v", err)
	}
	defer list.Body.Close()
	var windows []host.Window
	if err := json.NewDecoder(list.Body).Decode(&windows); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if len(windows) != 1 || windows[0].Kind != host.KindPanel {
		t.Errorf("Expected only the panel, got %+v", windows)
	}

	req, _ = http.NewRequest(http.MethodDelete, ts.srv.URL+"/v1/host/windows/missing", nil)
	del, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to delete window: %v", err)
	}
	del.Body.Close()
	if del.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", del.StatusCode)
	}
}

func TestHostIconAndInstall(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	if resp := ts.post(t, "/v1/host/install", `{"reason":"install"}`); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}
	windows, _ := ts.mem.List(ctx)
	if len(windows) != 1 || windows[0].Kind != host.KindSetup {
		t.Errorf("Expected setup window, got %+v", windows)
	}

	if resp := ts.post(t, "/v1/host/install", `{}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}

	if _, err := ts.client.Send(ctx, core.PasswdRequest{PasswdNew: "pw"}); err != nil {
		t.Fatalf("Failed to set password: %v", err)
	}
	if err := ts.client.Icon(ctx); err != nil {
		t.Fatalf("Icon failed: %v", err)
	}
	st, err := ts.client.Status(ctx)
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if !st.Locked || !st.PanelOpened {
		t.Errorf("Expected locked with panel, got %+v", st)
	}

	if resp := ts.post(t, "/v1/host/startup", ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
}

func TestHostRoutesDisabled(t *testing.T) {
	srv := httptest.NewServer(NewRouter(Options{}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/host/icon", "application/json", nil)
	if err != nil {
		t.Fatalf("Failed to post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 without a host, got %d", resp.StatusCode)
	}
}

func TestClientUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewClient(addr).Status(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}
