package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/illarion/hostlock/internal/crypto"
	"github.com/illarion/hostlock/internal/recovery"
	"github.com/illarion/hostlock/internal/storage"
)

var (
	ErrNoRecoveryKey      = errors.New("no recovery key set")
	ErrInvalidRecoveryKey = errors.New("invalid recovery key")
	ErrWrongPassword      = errors.New("wrong password")
	ErrEmptyPassword      = crypto.ErrEmptyPassword
)

func (c *Controller) setOrChange(ctx context.Context, req PasswdRequest) Response {
	if c.st.config.PasswdSet() {
		var last string
		if req.PasswdLast != nil {
			last = *req.PasswdLast
		}
		if !c.st.config.Passwd.Verify(last) {
			c.logger.Info("password change rejected")
			return Response{Type: KindPasswd, Success: false, Message: ErrWrongPassword.Error()}
		}
	}

	key, err := c.reissue(ctx, req.PasswdNew)
	if err != nil {
		return Response{Type: KindPasswd, Success: false, Message: failureMessage(err)}
	}
	c.logger.Info("password set")
	return Response{Type: KindPasswd, Success: true, RecoveryKey: key}
}

func (c *Controller) resetWithRecoveryKey(ctx context.Context, req RecoveryRequest) Response {
	if c.st.config.RecoveryKeyHash == "" {
		return Response{Type: KindRecovery, Success: false, Message: ErrNoRecoveryKey.Error()}
	}
	if !recovery.Verify(req.RecoveryKey, c.st.config.RecoveryKeyHash) {
		c.logger.Info("recovery key rejected")
		return Response{Type: KindRecovery, Success: false, Message: ErrInvalidRecoveryKey.Error()}
	}

	key, err := c.reissue(ctx, req.NewPassword)
	if err != nil {
		return Response{Type: KindRecovery, Success: false, Message: failureMessage(err)}
	}
	c.logger.Info("password reset with recovery key")
	return Response{Type: KindRecovery, Success: true, RecoveryKey: key}
}

// reissue stores a new credential and a new recovery key hash in one write,
// announced to the guard beforehand, and returns the plaintext key
func (c *Controller) reissue(ctx context.Context, password string) (string, error) {
	cred, err := crypto.Encrypt(password)
	if err != nil {
		return "", err
	}

	key, err := recovery.Generate()
	if err != nil {
		return "", err
	}

	next := storage.Config{Passwd: cred, RecoveryKeyHash: recovery.Hash(key)}
	values, err := next.Values()
	if err != nil {
		return "", err
	}

	ticket, err := c.guard.Arm(values)
	if err != nil {
		return "", err
	}
	c.logger.Debug("armed config write", "token", ticket.Token().String())
	writeErr := c.store.Put(ctx, values)
	if err := c.guard.Settle(ticket, writeErr); err != nil {
		c.logger.Error("failed to update known-good config", "error", err)
	}
	if writeErr != nil {
		c.logger.Error("failed to store credential", "error", writeErr)
		return "", fmt.Errorf("failed to store credential: %w", writeErr)
	}

	c.st.config = next
	return key, nil
}

func failureMessage(err error) string {
	if errors.Is(err, ErrEmptyPassword) {
		return ErrEmptyPassword.Error()
	}
	return "failed to save password"
}
