package pow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/nfrund/powchat/internal/domain"
)

// DigestLength is the number of hex characters in a digest.
const DigestLength = sha256.Size * 2

// cancelCheckInterval is how many nonces SolveContext tries between
// context checks. Must be a power of two.
const cancelCheckInterval = 1 << 12

// Engine searches for commitments at a fixed difficulty.
type Engine struct {
	difficulty uint8
}

// NewEngine returns an engine for the given difficulty. A difficulty longer
// than the digest can never be satisfied and is rejected here instead of
// surfacing later as a search that never ends.
func NewEngine(difficulty uint8) (*Engine, error) {
	if int(difficulty) > DigestLength {
		return nil, fmt.Errorf("%w: %d > %d", domain.ErrDifficultyOutOfRange, difficulty, DigestLength)
	}
	return &Engine{difficulty: difficulty}, nil
}

// Difficulty returns the number of leading zeros the engine searches for.
func (e *Engine) Difficulty() uint8 {
	return e.difficulty
}

// Solve returns the commitment with the lowest satisfying nonce. It runs
// until it finds one; expected cost is about 16^difficulty hashes.
func (e *Engine) Solve(msg ChatMessage) Commitment {
	c, _ := e.SolveContext(context.Background(), msg)
	return c
}

// SolveContext is Solve with cancellation. The context is polled every few
// thousand nonces, so cancellation is prompt but not instantaneous.
func (e *Engine) SolveContext(ctx context.Context, msg ChatMessage) (Commitment, error) {
	prefix := make([]byte, 0, len(msg.Timestamp)+len(msg.Message)+len(msg.Sender)+20)
	prefix = append(prefix, msg.Timestamp...)
	prefix = append(prefix, msg.Message...)
	prefix = append(prefix, msg.Sender...)
	base := len(prefix)

	for nonce := uint64(0); ; nonce++ {
		if nonce&(cancelCheckInterval-1) == 0 && nonce != 0 {
			if err := ctx.Err(); err != nil {
				return Commitment{}, err
			}
		}

		buf := strconv.AppendUint(prefix[:base], nonce, 10)
		sum := sha256.Sum256(buf)
		if hasZeroNibbles(sum[:], e.difficulty) {
			return Commitment{
				Chat:       msg,
				Hash:       hex.EncodeToString(sum[:]),
				Nonce:      nonce,
				Difficulty: e.difficulty,
			}, nil
		}
	}
}

// Digest returns the lowercase hex SHA-256 of Encode(msg, nonce).
func Digest(msg ChatMessage, nonce uint64) string {
	sum := sha256.Sum256(Encode(msg, nonce))
	return hex.EncodeToString(sum[:])
}

// HasLeadingZeros reports whether digest starts with n '0' characters.
func HasLeadingZeros(digest string, n uint8) bool {
	if int(n) > len(digest) {
		return false
	}
	for i := 0; i < int(n); i++ {
		if digest[i] != '0' {
			return false
		}
	}
	return true
}

// hasZeroNibbles is HasLeadingZeros evaluated on the raw digest, one hex
// character per nibble, high nibble first.
func hasZeroNibbles(sum []byte, n uint8) bool {
	if int(n) > len(sum)*2 {
		return false
	}
	full := int(n) / 2
	for i := 0; i < full; i++ {
		if sum[i] != 0 {
			return false
		}
	}
	if n%2 == 1 && sum[full]>>4 != 0 {
		return false
	}
	return true
}
