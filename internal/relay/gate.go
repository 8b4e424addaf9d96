package relay

import (
	"fmt"

	"github.com/nfrund/powchat/internal/domain"
	"github.com/nfrund/powchat/internal/pow"
)

// MessagePrefix tags every payload the relay puts on the hub.
const MessagePrefix = "[message] "

// Gate decides whether an inbound frame may be broadcast and what payload
// represents it on the hub. A non-nil error drops the frame; the
// connection stays open.
type Gate interface {
	Admit(text string) ([]byte, error)
}

// GateFunc adapts a function to the Gate interface.
type GateFunc func(text string) ([]byte, error)

// Admit calls f(text).
func (f GateFunc) Admit(text string) ([]byte, error) {
	return f(text)
}

// PassThrough forwards every frame unchecked.
var PassThrough Gate = GateFunc(func(text string) ([]byte, error) {
	return []byte(MessagePrefix + text), nil
})

// CommitmentGate only admits frames that are serialized commitments with a
// valid proof at or above MinDifficulty.
type CommitmentGate struct {
	MinDifficulty uint8
}

// NewCommitmentGate returns a gate requiring at least the engine's
// difficulty.
func NewCommitmentGate(engine *pow.Engine) *CommitmentGate {
	return &CommitmentGate{MinDifficulty: engine.Difficulty()}
}

// Admit implements Gate.
func (g *CommitmentGate) Admit(text string) ([]byte, error) {
	c, err := pow.ParseCommitment([]byte(text))
	if err != nil {
		return nil, err
	}
	if c.Difficulty < g.MinDifficulty {
		return nil, fmt.Errorf("%w: %d < %d", domain.ErrInsufficientDifficulty, c.Difficulty, g.MinDifficulty)
	}
	if !pow.Verify(c) {
		return nil, fmt.Errorf("%w: %s", domain.ErrProofInvalid, c)
	}
	return []byte(MessagePrefix + c.Chat.Sender + ": " + c.Chat.Message), nil
}
