package guard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/illarion/hostlock/internal/storage"
)

// Store is the part of the durable store the guard reads and repairs
type Store interface {
	Snapshot(ctx context.Context) (storage.Values, error)
	Replace(ctx context.Context, values storage.Values) error
}

// Outcome is what the guard did with one notification
type Outcome int

const (
	Unchanged  Outcome = iota // store matched the known-good copy
	Sanctioned                // notification belonged to an armed write
	Reverted                  // store was restored to the known-good copy
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Sanctioned:
		return "sanctioned"
	case Reverted:
		return "reverted"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Ticket is an armed write waiting for its outcome
type Ticket struct {
	token   Digest
	next    storage.Values
	settled bool
}

// Token returns the digest the armed write is expected to produce
func (t *Ticket) Token() Digest {
	return t.token
}

// Guard watches the config bucket, see package doc
type Guard struct {
	store     Store
	logger    *slog.Logger
	knownGood storage.Values
	goodSum   Digest
	pending   []*Ticket
}

// New creates a guard trusting knownGood as the current contents
func New(store Store, knownGood storage.Values, logger *slog.Logger) (*Guard, error) {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Guard{store: store, logger: logger}
	if err := g.setKnownGood(knownGood); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Guard) setKnownGood(values storage.Values) error {
	sum, err := Sum(values)
	if err != nil {
		return err
	}
	g.knownGood = values.Clone()
	g.goodSum = sum
	return nil
}

// KnownGood returns a copy of the trusted contents
func (g *Guard) KnownGood() storage.Values {
	return g.knownGood.Clone()
}

// Pending returns the number of armed writes not yet observed
func (g *Guard) Pending() int {
	return len(g.pending)
}

// Arm announces a Put of update. The bucket contents it will produce are
// update merged over the known-good copy.
func (g *Guard) Arm(update storage.Values) (*Ticket, error) {
	next := g.knownGood.Clone()
	for k, v := range update {
		if v == nil {
			delete(next, k)
			continue
		}
		next[k] = append([]byte(nil), v...)
	}

	token, err := Sum(next)
	if err != nil {
		return nil, err
	}
	t := &Ticket{token: token, next: next}
	g.pending = append(g.pending, t)
	return t, nil
}

// Settle reports the result of the armed write. On success the written
// contents become known-good; on failure the token is withdrawn.
func (g *Guard) Settle(t *Ticket, writeErr error) error {
	if writeErr != nil {
		g.withdraw(t)
		return nil
	}
	if err := g.setKnownGood(t.next); err != nil {
		return err
	}
	t.settled = true
	return nil
}

func (g *Guard) withdraw(t *Ticket) {
	for i, p := range g.pending {
		if p == t {
			g.pending = append(g.pending[:i], g.pending[i+1:]...)
			return
		}
	}
}

// forgetSettled drops tokens of committed writes. After a revert the store
// holds the known-good copy, which already includes them.
func (g *Guard) forgetSettled() int {
	kept := g.pending[:0]
	for _, p := range g.pending {
		if !p.settled {
			kept = append(kept, p)
		}
	}
	dropped := len(g.pending) - len(kept)
	for i := len(kept); i < len(g.pending); i++ {
		g.pending[i] = nil
	}
	g.pending = kept
	return dropped
}

// consume drops token and every token armed before it. Notifications
// arrive in commit order, so older tokens can no longer match.
func (g *Guard) consume(token Digest) bool {
	for i, p := range g.pending {
		if p.token == token {
			g.pending = append([]*Ticket(nil), g.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Observe handles one change notification
func (g *Guard) Observe(ctx context.Context, change storage.Change) (Outcome, error) {
	seen, err := Sum(change.Snapshot)
	if err != nil {
		return Unchanged, err
	}
	if g.consume(seen) {
		g.logger.Debug("sanctioned config write", "seq", change.Seq, "digest", seen.String())
		return Sanctioned, nil
	}

	current, err := g.store.Snapshot(ctx)
	if err != nil {
		return Unchanged, fmt.Errorf("failed to read config: %w", err)
	}
	currentSum, err := Sum(current)
	if err != nil {
		return Unchanged, err
	}
	if currentSum == g.goodSum {
		return Unchanged, nil
	}

	if err := g.store.Replace(ctx, g.knownGood.Clone()); err != nil {
		return Unchanged, fmt.Errorf("failed to restore config: %w", err)
	}
	dropped := g.forgetSettled()
	g.logger.Warn("reverted unsanctioned config write",
		"seq", change.Seq,
		"keys", change.Keys,
		"dropped_tokens", dropped,
		"diff", Describe(g.knownGood, current),
	)
	return Reverted, nil
}
