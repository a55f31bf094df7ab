package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/illarion/hostlock/internal/crypto"
)

// Config keys
const (
	KeyPasswd          = "passwd"
	KeyRecoveryKeyHash = "recoveryKeyHash"
)

var ErrInconsistentRecord = errors.New("passwd and recoveryKeyHash must be set together")

// Config is the persisted credential record.
// RecoveryKeyHash is present exactly when Passwd is.
type Config struct {
	Passwd          *crypto.Credential `json:"passwd,omitempty"`
	RecoveryKeyHash string             `json:"recoveryKeyHash,omitempty"`
}

// PasswdSet reports whether a master password has been set
func (c Config) PasswdSet() bool {
	return c.Passwd != nil
}

// Validate checks the record invariant
func (c Config) Validate() error {
	if c.PasswdSet() != (c.RecoveryKeyHash != "") {
		return ErrInconsistentRecord
	}
	return nil
}

// Values encodes the record as stored bucket values
func (c Config) Values() (Values, error) {
	values := make(Values)
	if c.Passwd != nil {
		data, err := json.Marshal(c.Passwd)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", KeyPasswd, err)
		}
		values[KeyPasswd] = data
	}
	if c.RecoveryKeyHash != "" {
		data, err := json.Marshal(c.RecoveryKeyHash)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", KeyRecoveryKeyHash, err)
		}
		values[KeyRecoveryKeyHash] = data
	}
	return values, nil
}

// ParseConfig decodes the record from bucket values. Unknown keys are ignored.
func ParseConfig(values Values) (Config, error) {
	var c Config
	if data, ok := values[KeyPasswd]; ok {
		c.Passwd = &crypto.Credential{}
		if err := json.Unmarshal(data, c.Passwd); err != nil {
			return Config{}, fmt.Errorf("failed to decode %s: %w", KeyPasswd, err)
		}
	}
	if data, ok := values[KeyRecoveryKeyHash]; ok {
		if err := json.Unmarshal(data, &c.RecoveryKeyHash); err != nil {
			return Config{}, fmt.Errorf("failed to decode %s: %w", KeyRecoveryKeyHash, err)
		}
	}
	return c, nil
}
