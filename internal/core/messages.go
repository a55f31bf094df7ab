package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownRequest = errors.New("unknown request type")

// Kind names a request in the message protocol
type Kind string

const (
	KindUnlock   Kind = "unlock"
	KindPasswd   Kind = "passwd"
	KindRecovery Kind = "recovery"
	KindConfig   Kind = "config"
	KindStatus   Kind = "status"
)

// Request is one of UnlockRequest, PasswdRequest, RecoveryRequest,
// ConfigRequest or StatusRequest. The set is closed.
type Request interface {
	Kind() Kind
	isRequest()
}

// UnlockRequest asks to unlock with a password
type UnlockRequest struct {
	Passwd string `json:"passwd"`
}

// PasswdRequest sets the first password or changes it.
// PasswdLast is required only when a password is already set.
type PasswdRequest struct {
	PasswdNew  string  `json:"passwdNew"`
	PasswdLast *string `json:"passwdLast,omitempty"`
}

// RecoveryRequest resets the password with a recovery key
type RecoveryRequest struct {
	RecoveryKey string `json:"recoveryKey"`
	NewPassword string `json:"newPassword"`
}

// ConfigRequest asks for the stored credential record
type ConfigRequest struct{}

// StatusRequest asks for the lock state
type StatusRequest struct{}

func (UnlockRequest) Kind() Kind   { return KindUnlock }
func (PasswdRequest) Kind() Kind   { return KindPasswd }
func (RecoveryRequest) Kind() Kind { return KindRecovery }
func (ConfigRequest) Kind() Kind   { return KindConfig }
func (StatusRequest) Kind() Kind   { return KindStatus }

func (UnlockRequest) isRequest()   {}
func (PasswdRequest) isRequest()   {}
func (RecoveryRequest) isRequest() {}
func (ConfigRequest) isRequest()   {}
func (StatusRequest) isRequest()   {}

// Envelope is the wire form of a request
type Envelope struct {
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Response is the wire form of every reply
type Response struct {
	Type        Kind   `json:"type"`
	Success     bool   `json:"success"`
	RecoveryKey string `json:"recoveryKey,omitempty"`
	Message     string `json:"message,omitempty"`
	Data        any    `json:"data,omitempty"`
}

// Status is the data of a status response
type Status struct {
	Locked      bool `json:"locked"`
	PanelOpened bool `json:"panelOpened"`
}

// DecodeRequest parses an envelope into its request type
func DecodeRequest(raw []byte) (Request, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}

	var req Request
	switch env.Type {
	case KindUnlock:
		req = &UnlockRequest{}
	case KindPasswd:
		req = &PasswdRequest{}
	case KindRecovery:
		req = &RecoveryRequest{}
	case KindConfig:
		return ConfigRequest{}, nil
	case KindStatus:
		return StatusRequest{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRequest, env.Type)
	}

	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, req); err != nil {
			return nil, fmt.Errorf("failed to decode %s data: %w", env.Type, err)
		}
	}

	// Handlers work on values
	switch r := req.(type) {
	case *UnlockRequest:
		return *r, nil
	case *PasswdRequest:
		return *r, nil
	case *RecoveryRequest:
		return *r, nil
	}
	return req, nil
}

// EncodeRequest builds the envelope for req
func EncodeRequest(req Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s data: %w", req.Kind(), err)
	}
	return json.Marshal(Envelope{Type: req.Kind(), Data: data})
}
