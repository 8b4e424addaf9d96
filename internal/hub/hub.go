package hub

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// DefaultBacklog is the number of unread payloads a subscriber may hold
// before the oldest ones are discarded.
const DefaultBacklog = 100

// Subscriber is one private view of the hub's stream. It observes every
// payload published after it subscribed, in publish order, minus whatever
// was discarded when its backlog overflowed.
type Subscriber struct {
	// ID identifies the subscriber in logs, typically the peer ID.
	ID string

	// send is a buffered channel of outbound payloads. Only the hub sends on
	// it, and only while holding its lock.
	send    chan []byte
	dropped atomic.Uint64
	// lagging is set from the first eviction until a payload is enqueued
	// without one. Guarded by the hub lock.
	lagging bool
}

// C returns the channel the subscriber reads payloads from. It is closed
// when the subscriber is unsubscribed. Payloads are shared between all
// subscribers and must not be modified.
func (s *Subscriber) C() <-chan []byte {
	return s.send
}

// Dropped returns how many payloads were discarded for this subscriber.
func (s *Subscriber) Dropped() uint64 {
	return s.dropped.Load()
}

// offer enqueues msg, evicting the oldest unread payloads until it fits.
func (s *Subscriber) offer(msg []byte) int {
	evicted := 0
	for {
		select {
		case s.send <- msg:
			return evicted
		default:
		}
		select {
		case <-s.send:
			evicted++
		default:
		}
	}
}

// Stats is a snapshot of hub counters.
type Stats struct {
	Subscribers int    `json:"subscribers"`
	Published   uint64 `json:"published"`
	Dropped     uint64 `json:"dropped"`
	Backlog     int    `json:"backlog"`
}

// Hub is a single shared fan-out stream. Every publish is delivered to all
// current subscribers; a slow subscriber loses its oldest payloads instead
// of stalling the publisher.
type Hub struct {
	backlog int

	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}

	published atomic.Uint64
	dropped   atomic.Uint64

	onDrop func(n int)
}

// Option configures a Hub.
type Option func(*Hub)

// WithDropHook registers a callback invoked with the number of payloads a
// publish evicted across all backlogs. It runs after the hub lock is
// released and may be called concurrently.
func WithDropHook(fn func(n int)) Option {
	return func(h *Hub) {
		h.onDrop = fn
	}
}

// NewHub creates a hub whose subscribers each buffer up to backlog
// payloads. A non-positive backlog selects DefaultBacklog.
func NewHub(backlog int, opts ...Option) *Hub {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	h := &Hub{
		backlog:     backlog,
		subscribers: make(map[*Subscriber]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a new subscriber. Payloads published before this call
// returns are not replayed.
func (h *Hub) Subscribe(id string) *Subscriber {
	s := &Subscriber{ID: id, send: make(chan []byte, h.backlog)}

	h.mu.Lock()
	h.subscribers[s] = struct{}{}
	total := len(h.subscribers)
	h.mu.Unlock()

	slog.Debug("Hub subscriber registered", "subscriberID", id, "total_subscribers", total)
	return s
}

// Unsubscribe removes s and closes its channel. Nothing published afterwards
// reaches s. Calling it more than once is harmless.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	_, ok := h.subscribers[s]
	if ok {
		delete(h.subscribers, s)
		close(s.send)
	}
	total := len(h.subscribers)
	h.mu.Unlock()

	if ok {
		slog.Debug("Hub subscriber unregistered", "subscriberID", s.ID, "total_subscribers", total)
	}
}

// Publish fans msg out to every subscriber. It never blocks on a slow
// subscriber. Publishes are serialized, so all subscribers see the same
// order.
func (h *Hub) Publish(msg []byte) {
	var (
		total   int
		started []string
	)

	h.mu.Lock()
	h.published.Add(1)
	for s := range h.subscribers {
		n := s.offer(msg)
		if n == 0 {
			s.lagging = false
			continue
		}
		s.dropped.Add(uint64(n))
		total += n
		if !s.lagging {
			s.lagging = true
			started = append(started, s.ID)
		}
	}
	h.mu.Unlock()

	if total == 0 {
		return
	}
	h.dropped.Add(uint64(total))
	if h.onDrop != nil {
		h.onDrop(total)
	}
	for _, id := range started {
		slog.Warn("Subscriber backlog full, dropping oldest payloads", "subscriberID", id)
	}
}

// Len returns the number of current subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Stats returns a snapshot of the hub counters.
func (h *Hub) Stats() Stats {
	return Stats{
		Subscribers: h.Len(),
		Published:   h.published.Load(),
		Dropped:     h.dropped.Load(),
		Backlog:     h.backlog,
	}
}
