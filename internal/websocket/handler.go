package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/powchat/internal/relay"
)

// Handler upgrades HTTP requests to WebSocket connections and hands each
// one to the relay for its lifetime.
type Handler struct {
	relay *relay.Relay
	// base is cancelled on server shutdown; hijacked connections are not
	// tracked by http.Server.Shutdown.
	base context.Context
	opts *websocket.AcceptOptions
}

// NewHandler creates a Handler. Connections served by it are torn down when
// base is cancelled.
func NewHandler(base context.Context, r *relay.Relay) *Handler {
	return &Handler{
		relay: r,
		base:  base,
		opts: &websocket.AcceptOptions{
			// In a production environment, you should check the origin to prevent CSRF.
			InsecureSkipVerify: true,
		},
	}
}

// ServeHTTP implements http.Handler. It blocks until the connection ends.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, h.opts)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}

	peer := relay.Peer{ID: uuid.NewString(), RemoteAddr: r.RemoteAddr}
	wsConn := NewConn(conn)

	// Cancelling a read context tears the socket down without a close
	// frame, so shutdown closes the connection instead and lets the
	// relay observe the handshake as a clean end.
	stop := context.AfterFunc(h.base, func() {
		wsConn.Close(websocket.StatusGoingAway, "server shutting down")
	})
	defer stop()

	err = h.relay.Serve(r.Context(), peer, wsConn)
	if h.base.Err() != nil {
		return
	}
	switch {
	case errors.Is(err, ErrBinaryFrame):
		wsConn.Close(websocket.StatusUnsupportedData, "text frames only")
	case err != nil:
		wsConn.Close(websocket.StatusInternalError, "")
	default:
		wsConn.Close(websocket.StatusNormalClosure, "")
	}
}

// Handle is the echo adapter for ServeHTTP.
func (h *Handler) Handle(c echo.Context) error {
	h.ServeHTTP(c.Response(), c.Request())
	return nil
}
