package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/illarion/hostlock/internal/core"
	"github.com/illarion/hostlock/internal/storage"
)

var ErrUnavailable = errors.New("hostlock daemon is not running")

// Client talks to a running daemon
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the daemon at addr (host:port or URL)
func NewClient(addr string) *Client {
	base := addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// reply is a Response whose data is kept raw until the caller picks a type
type reply struct {
	Type        core.Kind       `json:"type"`
	Success     bool            `json:"success"`
	RecoveryKey string          `json:"recoveryKey,omitempty"`
	Message     string          `json:"message,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = resp.Status
		}
		return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, e.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Send posts one request and returns the daemon's response. Data is
// returned as json.RawMessage.
func (c *Client) Send(ctx context.Context, req core.Request) (core.Response, error) {
	body, err := core.EncodeRequest(req)
	if err != nil {
		return core.Response{}, err
	}
	var r reply
	if err := c.do(ctx, http.MethodPost, "/v1/messages", body, &r); err != nil {
		return core.Response{}, err
	}
	resp := core.Response{
		Type:        r.Type,
		Success:     r.Success,
		RecoveryKey: r.RecoveryKey,
		Message:     r.Message,
	}
	if len(r.Data) > 0 {
		resp.Data = r.Data
	}
	return resp, nil
}

func (c *Client) sendData(ctx context.Context, req core.Request, out any) error {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return err
	}
	raw, ok := resp.Data.(json.RawMessage)
	if !resp.Success || !ok {
		return fmt.Errorf("%s request failed: %s", req.Kind(), resp.Message)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", req.Kind(), err)
	}
	return nil
}

// Status returns the lock state
func (c *Client) Status(ctx context.Context) (core.Status, error) {
	var st core.Status
	err := c.sendData(ctx, core.StatusRequest{}, &st)
	return st, err
}

// Config returns the stored credential record
func (c *Client) Config(ctx context.Context) (storage.Config, error) {
	var cfg storage.Config
	err := c.sendData(ctx, core.ConfigRequest{}, &cfg)
	return cfg, err
}

// InstanceID returns the daemon's store instance ID
func (c *Client) InstanceID(ctx context.Context) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/instance", nil, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// Icon locks the host the way a toolbar click does
func (c *Client) Icon(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/host/icon", nil, nil)
}
