package websocket

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/coder/websocket"
)

// ErrBinaryFrame is returned by Receive when the peer sends a binary frame.
// The relay only speaks text, so the connection is ended.
var ErrBinaryFrame = errors.New("binary frames are not supported")

// Conn adapts a coder/websocket connection to the relay's text-frame
// transport.
type Conn struct {
	conn *websocket.Conn
}

// NewConn wraps an accepted or dialed connection.
func NewConn(conn *websocket.Conn) *Conn {
	return &Conn{conn: conn}
}

// Receive returns the next text frame. A close frame with a normal or
// going-away status is reported as io.EOF.
func (c *Conn) Receive(ctx context.Context) (string, error) {
	typ, data, err := c.conn.Read(ctx)
	if err != nil {
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway, websocket.StatusNoStatusRcvd:
			return "", io.EOF
		}
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", err
	}
	if typ != websocket.MessageText {
		return "", fmt.Errorf("%w (%d bytes)", ErrBinaryFrame, len(data))
	}
	return string(data), nil
}

// Send writes text as a single text frame.
func (c *Conn) Send(ctx context.Context, text string) error {
	return c.conn.Write(ctx, websocket.MessageText, []byte(text))
}

// Close sends a close frame with the given status and reason.
func (c *Conn) Close(code websocket.StatusCode, reason string) error {
	return c.conn.Close(code, reason)
}
