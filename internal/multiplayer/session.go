package multiplayer

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/vovakirdan/turn-arena/internal/match"
)

// SessionHandle is the transport-neutral interface for pushing notifications
// to one connection. It lets the hub deliver events without depending on
// Wish or WebSocket types.
type SessionHandle interface {
	// ID returns the unique session identifier.
	ID() SessionID

	// Send delivers a notification asynchronously.
	// Must be non-blocking; implementations should use buffered channels.
	Send(n Notification)

	// Done returns a channel that closes when the session ends.
	Done() <-chan struct{}
}

// NewSessionID returns a fresh random session id.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// ChannelSession is a SessionHandle implementation using Go channels.
// Transports read Events() and write each notification to their connection.
type ChannelSession struct {
	id       SessionID
	events   chan Notification
	done     chan struct{}
	doneOnce sync.Once
	dropped  atomic.Uint64
}

// NewChannelSession creates a new channel-based session handle.
// bufferSize controls how many notifications can be queued before the oldest
// is dropped.
func NewChannelSession(id SessionID, bufferSize int) *ChannelSession {
	if bufferSize < 1 {
		bufferSize = 64
	}
	return &ChannelSession{
		id:     id,
		events: make(chan Notification, bufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *ChannelSession) ID() SessionID {
	return s.id
}

// Send queues a notification.
// If the buffer is full, the oldest notification is dropped to prevent blocking.
func (s *ChannelSession) Send(n Notification) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.events <- n:
	default:
		// Buffer full, drop oldest and retry
		select {
		case <-s.events:
			s.dropped.Add(1)
		default:
		}
		select {
		case s.events <- n:
		default:
			s.dropped.Add(1)
		}
	}
}

// Dropped returns how many notifications were discarded because the reader
// fell behind.
func (s *ChannelSession) Dropped() uint64 {
	return s.dropped.Load()
}

// Events returns the channel to receive notifications from.
func (s *ChannelSession) Events() <-chan Notification {
	return s.events
}

// Done returns the done channel.
func (s *ChannelSession) Done() <-chan struct{} {
	return s.done
}

// Close marks the session as done.
// Safe to call multiple times.
func (s *ChannelSession) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

const hubShards = 32

// Hub tracks the live sessions of every user and implements Notifier by
// fanning each notification out to all of the user's sessions. Users are
// spread over independently locked shards.
type Hub struct {
	shards [hubShards]hubShard
}

type hubShard struct {
	mu       sync.RWMutex
	sessions map[match.UserID]map[SessionID]SessionHandle
}

var _ Notifier = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub() *Hub {
	h := &Hub{}
	for i := range h.shards {
		h.shards[i].sessions = make(map[match.UserID]map[SessionID]SessionHandle)
	}
	return h
}

func (h *Hub) shard(user match.UserID) *hubShard {
	return &h.shards[shardIndex(int64(user), hubShards)]
}

// Register adds a session for user.
func (h *Hub) Register(user match.UserID, session SessionHandle) {
	sh := h.shard(user)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	byID, ok := sh.sessions[user]
	if !ok {
		byID = make(map[SessionID]SessionHandle)
		sh.sessions[user] = byID
	}
	byID[session.ID()] = session
}

// Unregister removes a session of user.
func (h *Hub) Unregister(user match.UserID, id SessionID) {
	sh := h.shard(user)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	byID := sh.sessions[user]
	delete(byID, id)
	if len(byID) == 0 {
		delete(sh.sessions, user)
	}
}

// Notify sends n to every live session of user.
func (h *Hub) Notify(_ context.Context, user match.UserID, n Notification) {
	sh := h.shard(user)
	sh.mu.RLock()
	targets := make([]SessionHandle, 0, len(sh.sessions[user]))
	for _, s := range sh.sessions[user] {
		targets = append(targets, s)
	}
	sh.mu.RUnlock()

	for _, s := range targets {
		s.Send(n)
	}
}

// Count returns the number of registered sessions.
func (h *Hub) Count() int {
	total := 0
	for i := range h.shards {
		sh := &h.shards[i]
		sh.mu.RLock()
		for _, byID := range sh.sessions {
			total += len(byID)
		}
		sh.mu.RUnlock()
	}
	return total
}
