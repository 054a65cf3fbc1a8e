package inapp

import (
	"context"
	"sync"
)

// Subscription receives one user's realtime messages. After Close the
// channel returned by Receive is closed; Close is idempotent.
type Subscription struct {
	ch     chan Message
	closed bool
	mu     sync.Mutex
}

// Receive returns the channel live messages arrive on.
func (s *Subscription) Receive() <-chan Message {
	return s.ch
}

// Close detaches the subscription and closes its channel.
func (s *Subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
	return nil
}

// send delivers without blocking; a full buffer drops the message.
func (s *Subscription) send(msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}

// Hub fans stored messages out to each user's live subscribers, typically
// one per open SSE or websocket connection. Publishes never block: slow
// subscribers lose messages and are detached, and the persistent Store
// remains the source of truth they can re-read from.
type Hub struct {
	mu         sync.RWMutex
	subs       map[string]map[*Subscription]struct{} // userID -> subscriptions
	bufferSize int
	closed     bool
	cleanupWg  sync.WaitGroup
}

// NewHub creates a hub. bufferSize is each subscription's channel buffer;
// a minimum of 1 keeps sends non-blocking.
func NewHub(bufferSize int) *Hub {
	return &Hub{
		subs:       make(map[string]map[*Subscription]struct{}),
		bufferSize: max(bufferSize, 1),
	}
}

// Subscribe attaches a new subscription for the user. The subscription is
// cleaned up when ctx is cancelled; a closed hub returns an already-closed
// subscription.
func (h *Hub) Subscribe(ctx context.Context, userID string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscription{ch: make(chan Message, h.bufferSize)}
	if h.closed {
		_ = sub.Close()
		return sub
	}

	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}

	if ctx.Done() != nil {
		h.cleanupWg.Add(1)
		go func() {
			defer h.cleanupWg.Done()
			<-ctx.Done()
			h.unsubscribe(userID, sub)
		}()
	}
	return sub
}

// Publish delivers the message to every live subscription of its user.
// Subscriptions that cannot accept it are detached asynchronously.
func (h *Hub) Publish(_ context.Context, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	for sub := range h.subs[msg.UserID] {
		if !sub.send(msg) {
			go h.unsubscribe(msg.UserID, sub)
		}
	}
}

// Close shuts the hub down and closes every subscription.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	for _, subs := range h.subs {
		for sub := range subs {
			_ = sub.Close()
		}
	}
	clear(h.subs)
	h.mu.Unlock()

	h.cleanupWg.Wait()
	return nil
}

func (h *Hub) unsubscribe(userID string, sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subs[userID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.subs, userID)
		}
	}
	_ = sub.Close()
}
