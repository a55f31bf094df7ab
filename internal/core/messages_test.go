package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Request
	}{
		{"unlock", `{"type":"unlock","data":{"passwd":"pw"}}`, UnlockRequest{Passwd: "pw"}},
		{"recovery", `{"type":"recovery","data":{"recoveryKey":"K","newPassword":"n"}}`, RecoveryRequest{RecoveryKey: "K", NewPassword: "n"}},
		{"config", `{"type":"config"}`, ConfigRequest{}},
		{"status with null data", `{"type":"status","data":null}`, StatusRequest{}},
		{"unlock without data", `{"type":"unlock"}`, UnlockRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRequest([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}
			if got != tt.want {
				t.Errorf("Got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodePasswdRequest(t *testing.T) {
	got, err := DecodeRequest([]byte(`{"type":"passwd","data":{"passwdNew":"b","passwdLast":"a"}}`))
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	req, ok := got.(PasswdRequest)
	if !ok {
		t.Fatalf("Unexpected type %T", got)
	}
	if req.PasswdNew != "b" || req.PasswdLast == nil || *req.PasswdLast != "a" {
		t.Errorf("Unexpected request %+v", req)
	}

	got, err = DecodeRequest([]byte(`{"type":"passwd","data":{"passwdNew":"b"}}`))
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if got.(PasswdRequest).PasswdLast != nil {
		t.Error("Missing passwdLast should decode as nil")
	}
}

func TestDecodeRequestErrors(t *testing.T) {
	if _, err := DecodeRequest([]byte(`{"type":"selfdestruct"}`)); !errors.Is(err, ErrUnknownRequest) {
		t.Errorf("Expected ErrUnknownRequest, got %v", err)
	}
	if _, err := DecodeRequest([]byte(`{}`)); !errors.Is(err, ErrUnknownRequest) {
		t.Errorf("Expected ErrUnknownRequest for missing type, got %v", err)
	}
	if _, err := DecodeRequest([]byte(`not json`)); err == nil {
		t.Error("Expected error for malformed envelope")
	}
	if _, err := DecodeRequest([]byte(`{"type":"unlock","data":{"passwd":42}}`)); err == nil {
		t.Error("Expected error for mistyped data")
	}
}

func TestEncodeRequest(t *testing.T) {
	last := "old"
	raw, err := EncodeRequest(PasswdRequest{PasswdNew: "new", PasswdLast: &last})
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("Failed to parse envelope: %v", err)
	}
	if env.Type != KindPasswd {
		t.Errorf("Unexpected type %q", env.Type)
	}

	back, err := DecodeRequest(raw)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if req := back.(PasswdRequest); req.PasswdNew != "new" || *req.PasswdLast != "old" {
		t.Errorf("Unexpected request %+v", req)
	}
}

func TestResponseJSON(t *testing.T) {
	raw, err := json.Marshal(Response{Type: KindStatus, Success: true, Data: Status{Locked: true}})
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	want := `{"type":"status","success":true,"data":{"locked":true,"panelOpened":false}}`
	if string(raw) != want {
		t.Errorf("Got %s, want %s", raw, want)
	}

	raw, err = json.Marshal(Response{Type: KindUnlock})
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if string(raw) != `{"type":"unlock","success":false}` {
		t.Errorf("Unexpected failure response %s", raw)
	}
}

func TestFailureMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrNoRecoveryKey, "no recovery key set"},
		{ErrInvalidRecoveryKey, "invalid recovery key"},
		{ErrWrongPassword, "wrong password"},
		{ErrEmptyPassword, "password must not be empty"},
	}

	for _, tt := range tests {
		if tt.err.Error() != tt.want {
			t.Errorf("Got message %q, want %q", tt.err.Error(), tt.want)
		}
	}
}
