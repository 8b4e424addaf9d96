package pow

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/nfrund/powchat/internal/domain"
)

// Commitment is a chat message bundled with the nonce and digest that prove
// the search work was done. The JSON field names are the serialized form
// exchanged with peers.
type Commitment struct {
	Chat       ChatMessage `json:"chat"`
	Hash       string      `json:"hash" validate:"required,len=64,hexadecimal,lowercase"`
	Nonce      uint64      `json:"nonce"`
	Difficulty uint8       `json:"difficulty" validate:"lte=64"`
}

var validate = validator.New()

// ParseCommitment decodes a serialized commitment and checks that it is
// well formed. It says nothing about whether the proof holds; use Verify for
// that.
func ParseCommitment(data []byte) (Commitment, error) {
	var c Commitment
	if err := json.Unmarshal(data, &c); err != nil {
		return Commitment{}, fmt.Errorf("%w: %v", domain.ErrInvalidCommitment, err)
	}
	if err := validate.Struct(c); err != nil {
		return Commitment{}, fmt.Errorf("%w: %v", domain.ErrInvalidCommitment, err)
	}
	return c, nil
}

// Verify recomputes the digest from c.Chat and c.Nonce and reports whether
// it matches c.Hash and carries at least c.Difficulty leading zeros. A
// false result is an ordinary outcome, not a fault.
func Verify(c Commitment) bool {
	digest := Digest(c.Chat, c.Nonce)
	return digest == c.Hash && HasLeadingZeros(digest, c.Difficulty)
}

// String renders the commitment for logs.
func (c Commitment) String() string {
	return fmt.Sprintf("%s@%s nonce=%d difficulty=%d hash=%s",
		c.Chat.Sender, c.Chat.Timestamp, c.Nonce, c.Difficulty, c.Hash)
}
