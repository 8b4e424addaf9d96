package pow

import (
	"strconv"
	"time"
)

// ChatMessage is the part of a commitment that is authored by the peer.
type ChatMessage struct {
	// Timestamp is decimal milliseconds since the Unix epoch.
	Timestamp string `json:"timestamp" validate:"required,number"`
	Message   string `json:"message"`
	Sender    string `json:"sender"`
}

// NewChatMessage stamps a message with the current time in milliseconds.
func NewChatMessage(message, sender string) ChatMessage {
	return ChatMessage{
		Timestamp: strconv.FormatInt(time.Now().UnixMilli(), 10),
		Message:   message,
		Sender:    sender,
	}
}

// Encode returns the canonical hash input for msg and nonce. Field order and
// the decimal nonce are part of the wire contract; changing either
// invalidates every existing commitment.
func Encode(msg ChatMessage, nonce uint64) []byte {
	buf := make([]byte, 0, len(msg.Timestamp)+len(msg.Message)+len(msg.Sender)+20)
	return appendEncoding(buf, msg, nonce)
}

func appendEncoding(buf []byte, msg ChatMessage, nonce uint64) []byte {
	buf = append(buf, msg.Timestamp...)
	buf = append(buf, msg.Message...)
	buf = append(buf, msg.Sender...)
	return strconv.AppendUint(buf, nonce, 10)
}
