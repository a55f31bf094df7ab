package guard

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/illarion/hostlock/internal/storage"
)

// Digest identifies bucket contents
type Digest [32]byte

// String returns the hex form of d
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("guard: CBOR encoder initialization failed: " + err.Error())
	}
}

// Canonical returns the deterministic encoding of values
func Canonical(values storage.Values) ([]byte, error) {
	m := map[string][]byte(values)
	if m == nil {
		m = map[string][]byte{}
	}
	data, err := encMode.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

// Sum returns the digest of values
func Sum(values storage.Values) (Digest, error) {
	data, err := Canonical(values)
	if err != nil {
		return Digest{}, err
	}
	return Digest(blake3.Sum256(data)), nil
}
