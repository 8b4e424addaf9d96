package presence

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/nfrund/powchat/internal/pubsub"
)

// Presence is one connected peer.
type Presence struct {
	PeerID     string    `json:"peer_id"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	Since      time.Time `json:"since"`
}

// departedTTL is how long a disconnect that overtook its connect is
// remembered. Peer IDs are never reused.
const departedTTL = time.Minute

// Service keeps the set of online peers up to date from the relay's
// lifecycle events.
type Service struct {
	mu        sync.RWMutex
	presences map[string]Presence  // peerID -> presence
	departed  map[string]time.Time // peerID -> when its early disconnect arrived
	logger    *slog.Logger
	now       func() time.Time
}

// NewService subscribes to peer lifecycle events on subscriber. The
// subscriptions live until ctx is cancelled or the bus is closed.
func NewService(ctx context.Context, subscriber pubsub.Subscriber) (*Service, error) {
	svc := &Service{
		presences: make(map[string]Presence),
		departed:  make(map[string]time.Time),
		logger:    slog.Default().With("service", "presence"),
		now:       time.Now,
	}

	if err := pubsub.Subscribe(ctx, subscriber, pubsub.TopicPeerConnected, svc.handlePeerConnected); err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", pubsub.TopicPeerConnected.Name(), err)
	}
	if err := pubsub.Subscribe(ctx, subscriber, pubsub.TopicPeerDisconnected, svc.handlePeerDisconnected); err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", pubsub.TopicPeerDisconnected.Name(), err)
	}

	svc.logger.Info("Presence service initialized")
	return svc, nil
}

func (s *Service) handlePeerConnected(ctx context.Context, ev pubsub.PeerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, gone := s.departed[ev.PeerID]; gone {
		delete(s.departed, ev.PeerID)
		s.logger.Debug("Connect arrived after disconnect, ignoring", "peerID", ev.PeerID)
		return nil
	}
	s.presences[ev.PeerID] = Presence{
		PeerID:     ev.PeerID,
		RemoteAddr: ev.RemoteAddr,
		Since:      ev.Timestamp,
	}
	s.logger.Debug("Peer came online", "peerID", ev.PeerID, "online", len(s.presences))
	return nil
}

func (s *Service) handlePeerDisconnected(ctx context.Context, ev pubsub.PeerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, at := range s.departed {
		if now.Sub(at) > departedTTL {
			delete(s.departed, id)
		}
	}

	if _, ok := s.presences[ev.PeerID]; !ok {
		// Events travel on separate topics; remember the departure so the
		// late connect does not resurrect the peer.
		s.departed[ev.PeerID] = now
		s.logger.Debug("Disconnect before connect", "peerID", ev.PeerID)
		return nil
	}
	delete(s.presences, ev.PeerID)
	s.logger.Debug("Peer went offline", "peerID", ev.PeerID, "reason", ev.Reason, "online", len(s.presences))
	return nil
}

// Count returns the number of online peers.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.presences)
}

// Online returns the online peers, oldest connection first.
func (s *Service) Online() []Presence {
	s.mu.RLock()
	out := make([]Presence, 0, len(s.presences))
	for _, p := range s.presences {
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Since.Equal(out[j].Since) {
			return out[i].PeerID < out[j].PeerID
		}
		return out[i].Since.Before(out[j].Since)
	})
	return out
}
