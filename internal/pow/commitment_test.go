package pow

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nfrund/powchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solved(t *testing.T, difficulty uint8) Commitment {
	t.Helper()
	return mustEngine(t, difficulty).Solve(aliceHi)
}

func TestVerify_Scenario(t *testing.T) {
	c := solved(t, 1)
	require.True(t, strings.HasPrefix(c.Hash, "0"))
	assert.True(t, Verify(c))

	// The difficulty-1 digest for this message is "08dd...", so claiming
	// two leading zeros must fail.
	c.Difficulty = 2
	assert.False(t, Verify(c))
}

func TestVerify_Tampering(t *testing.T) {
	base := solved(t, 2)

	tests := []struct {
		name   string
		mutate func(c *Commitment)
	}{
		{"nonce incremented", func(c *Commitment) { c.Nonce++ }},
		{"nonce decremented", func(c *Commitment) { c.Nonce-- }},
		{"nonce far away", func(c *Commitment) { c.Nonce += 1 << 40 }},
		{"timestamp changed", func(c *Commitment) { c.Chat.Timestamp = "1001" }},
		{"message changed", func(c *Commitment) { c.Chat.Message = "hI" }},
		{"sender changed", func(c *Commitment) { c.Chat.Sender = "mallory" }},
		{"forged digest", func(c *Commitment) { c.Hash = "00" + strings.Repeat("f", DigestLength-2) }},
		{"difficulty forged upward", func(c *Commitment) { c.Difficulty = 10 }},
		{"difficulty beyond digest", func(c *Commitment) { c.Difficulty = DigestLength + 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			assert.False(t, Verify(c))
		})
	}
}

func TestVerify_FieldBoundaryShiftIsNotDetectedByEncoding(t *testing.T) {
	// Encode has no separators, so moving bytes between adjacent fields
	// yields the same input. The commitment still binds the concatenation.
	a := ChatMessage{Timestamp: "1000", Message: "hia", Sender: "lice"}
	assert.Equal(t, Encode(aliceHi, 7), Encode(a, 7))
}

func TestVerify_LowerDifficultyStillValid(t *testing.T) {
	c := solved(t, 3)
	c.Difficulty = 1
	assert.True(t, Verify(c), "a stronger proof satisfies a weaker claim")
}

func TestVerify_Idempotent(t *testing.T) {
	good := solved(t, 2)
	bad := good
	bad.Nonce++

	for i := 0; i < 5; i++ {
		assert.True(t, Verify(good))
		assert.False(t, Verify(bad))
	}
}

func TestCommitment_JSON(t *testing.T) {
	c := solved(t, 1)

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	chat, ok := raw["chat"].(map[string]any)
	require.True(t, ok, "chat must be a nested object")
	assert.Equal(t, "1000", chat["timestamp"])
	assert.Equal(t, "hi", chat["message"])
	assert.Equal(t, "alice", chat["sender"])
	assert.Equal(t, c.Hash, raw["hash"])
	assert.EqualValues(t, 6, raw["nonce"])
	assert.EqualValues(t, 1, raw["difficulty"])

	parsed, err := ParseCommitment(data)
	require.NoError(t, err)
	assert.Equal(t, c, parsed)
	assert.True(t, Verify(parsed))
}

func TestParseCommitment_Invalid(t *testing.T) {
	validHash := strings.Repeat("0", DigestLength)
	tests := []struct {
		name string
		body string
	}{
		{"not json", `hello`},
		{"missing hash", `{"chat":{"timestamp":"1","message":"m","sender":"s"},"nonce":1,"difficulty":0}`},
		{"short hash", `{"chat":{"timestamp":"1","message":"m","sender":"s"},"hash":"00","nonce":1,"difficulty":0}`},
		{"uppercase hash", `{"chat":{"timestamp":"1","message":"m","sender":"s"},"hash":"` + strings.Repeat("A", DigestLength) + `","nonce":1,"difficulty":0}`},
		{"non numeric timestamp", `{"chat":{"timestamp":"soon","message":"m","sender":"s"},"hash":"` + validHash + `","nonce":1,"difficulty":0}`},
		{"negative timestamp", `{"chat":{"timestamp":"-5","message":"m","sender":"s"},"hash":"` + validHash + `","nonce":1,"difficulty":0}`},
		{"signed timestamp", `{"chat":{"timestamp":"+3","message":"m","sender":"s"},"hash":"` + validHash + `","nonce":1,"difficulty":0}`},
		{"fractional timestamp", `{"chat":{"timestamp":"1.5","message":"m","sender":"s"},"hash":"` + validHash + `","nonce":1,"difficulty":0}`},
		{"difficulty too large", `{"chat":{"timestamp":"1","message":"m","sender":"s"},"hash":"` + validHash + `","nonce":1,"difficulty":65}`},
		{"negative nonce", `{"chat":{"timestamp":"1","message":"m","sender":"s"},"hash":"` + validHash + `","nonce":-1,"difficulty":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCommitment([]byte(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidCommitment)
		})
	}
}

func TestNewChatMessage(t *testing.T) {
	msg := NewChatMessage("hello", "bob")
	assert.Equal(t, "hello", msg.Message)
	assert.Equal(t, "bob", msg.Sender)
	assert.Regexp(t, `^[0-9]{13,}$`, msg.Timestamp)
}
