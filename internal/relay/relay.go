// Package relay bridges one peer connection to the broadcast hub.
//
// Each connection runs two loops: the receive loop reads frames from the
// peer, passes them through a Gate and publishes the result; the send loop
// writes the connection's hub subscription back to the peer. Whichever loop
// stops first cancels the other, and Serve returns once both are gone.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nfrund/powchat/internal/hub"
	"github.com/nfrund/powchat/internal/pubsub"
	"golang.org/x/sync/errgroup"
)

// DefaultWriteTimeout bounds a single frame write to the peer.
const DefaultWriteTimeout = 10 * time.Second

// Transport is an established duplex text-frame connection.
type Transport interface {
	// Receive blocks for the next text frame. It returns io.EOF once the
	// peer has closed the connection and must return promptly when ctx is
	// cancelled.
	Receive(ctx context.Context) (string, error)
	// Send writes one text frame.
	Send(ctx context.Context, text string) error
}

// Recorder receives relay counters. Implementations must be safe for
// concurrent use.
type Recorder interface {
	PeerConnected()
	PeerDisconnected()
	FrameRelayed()
	FrameRejected()
}

type noopRecorder struct{}

func (noopRecorder) PeerConnected()    {}
func (noopRecorder) PeerDisconnected() {}
func (noopRecorder) FrameRelayed()     {}
func (noopRecorder) FrameRejected()    {}

// Peer identifies the connection being served.
type Peer struct {
	ID         string
	RemoteAddr string
}

// Relay serves connections against a single hub. One Relay is shared by
// all connections; it holds no per-connection state.
type Relay struct {
	hub          *hub.Hub
	gate         Gate
	events       pubsub.Publisher
	recorder     Recorder
	writeTimeout time.Duration
}

// Option configures a Relay.
type Option func(*Relay)

// WithGate sets the admission policy. The default is PassThrough.
func WithGate(g Gate) Option {
	return func(r *Relay) {
		r.gate = g
	}
}

// WithEvents publishes connect, disconnect and rejection events to p.
func WithEvents(p pubsub.Publisher) Option {
	return func(r *Relay) {
		r.events = p
	}
}

// WithRecorder reports counters to rec.
func WithRecorder(rec Recorder) Option {
	return func(r *Relay) {
		r.recorder = rec
	}
}

// WithWriteTimeout bounds each frame write.
func WithWriteTimeout(d time.Duration) Option {
	return func(r *Relay) {
		r.writeTimeout = d
	}
}

// New creates a relay publishing into and subscribing from h.
func New(h *hub.Hub, opts ...Option) *Relay {
	r := &Relay{
		hub:          h,
		gate:         PassThrough,
		recorder:     noopRecorder{},
		writeTimeout: DefaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Serve runs both loops for one connection and blocks until both have
// stopped. A clean close by the peer or cancellation of ctx returns nil;
// a transport failure is returned and affects no other connection.
func (r *Relay) Serve(ctx context.Context, peer Peer, t Transport) error {
	logger := slog.Default().With("peerID", peer.ID)

	// Subscribe before the receive loop starts so the peer sees its own
	// first message.
	sub := r.hub.Subscribe(peer.ID)
	defer r.hub.Unsubscribe(sub)

	r.recorder.PeerConnected()
	defer r.recorder.PeerDisconnected()
	logger.Info("Peer connected", "remoteAddr", peer.RemoteAddr)
	r.publishPeerEvent(ctx, pubsub.TopicPeerConnected, peer, "")

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error {
		defer cancel()
		return r.receiveLoop(loopCtx, peer, t, logger)
	})
	g.Go(func() error {
		defer cancel()
		return r.sendLoop(loopCtx, sub, t)
	})

	err := g.Wait()

	reason := "closed"
	if err != nil {
		reason = err.Error()
		logger.Warn("Peer disconnected", "error", err, "dropped", sub.Dropped())
	} else {
		logger.Info("Peer disconnected", "dropped", sub.Dropped())
	}
	r.publishPeerEvent(ctx, pubsub.TopicPeerDisconnected, peer, reason)
	return err
}

func (r *Relay) receiveLoop(ctx context.Context, peer Peer, t Transport, logger *slog.Logger) error {
	for {
		text, err := t.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}

		payload, err := r.gate.Admit(text)
		if err != nil {
			r.recorder.FrameRejected()
			logger.Info("Frame rejected", "reason", err)
			r.publishRejection(ctx, peer, err)
			continue
		}

		logger.Debug("Frame received", "size", len(text))
		r.hub.Publish(payload)
		r.recorder.FrameRelayed()
	}
}

func (r *Relay) sendLoop(ctx context.Context, sub *hub.Subscriber, t Transport) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.C():
			if !ok {
				return nil
			}
			wctx, cancel := context.WithTimeout(ctx, r.writeTimeout)
			err := t.Send(wctx, string(msg))
			cancel()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("send: %w", err)
			}
		}
	}
}

func (r *Relay) publishPeerEvent(ctx context.Context, event pubsub.Event[pubsub.PeerEvent], peer Peer, reason string) {
	if r.events == nil {
		return
	}
	err := pubsub.Publish(context.WithoutCancel(ctx), r.events, event, peer.ID, pubsub.PeerEvent{
		PeerID:     peer.ID,
		RemoteAddr: peer.RemoteAddr,
		Reason:     reason,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		slog.Error("Failed to publish peer event", "topic", event.Name(), "peerID", peer.ID, "error", err)
	}
}

func (r *Relay) publishRejection(ctx context.Context, peer Peer, reason error) {
	if r.events == nil {
		return
	}
	err := pubsub.Publish(context.WithoutCancel(ctx), r.events, pubsub.TopicCommitmentRejected, peer.ID, pubsub.RejectionEvent{
		PeerID:    peer.ID,
		Reason:    reason.Error(),
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		slog.Error("Failed to publish rejection event", "peerID", peer.ID, "error", err)
	}
}
