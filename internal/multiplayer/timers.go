package multiplayer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vovakirdan/turn-arena/internal/match"
)

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock schedules delayed callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ExpireFunc is called when user failed to move in match before the
// deadline. version is the match version the deadline was started at.
type ExpireFunc func(id match.ID, user match.UserID, version int64)

const timerShards = 32

// TurnTimers keeps at most one pending turn deadline per match. Each
// scheduled timer carries a generation; a callback whose generation is no
// longer current is ignored. A callback that already left the registry
// still carries the match version it was started at, so the expiry handler
// can tell it apart from the current deadline.
type TurnTimers struct {
	timeout  time.Duration
	clock    Clock
	onExpire ExpireFunc

	gen     atomic.Uint64
	stopped atomic.Bool
	shards  [timerShards]timerShard
}

type timerShard struct {
	mu      sync.Mutex
	pending map[match.ID]turnTimer
}

type turnTimer struct {
	user    match.UserID
	version int64
	gen     uint64
	timer   Timer
}

// NewTurnTimers creates a scheduler that calls onExpire timeout after the
// most recent Schedule of a match.
func NewTurnTimers(timeout time.Duration, clock Clock, onExpire ExpireFunc) *TurnTimers {
	if clock == nil {
		clock = realClock{}
	}
	t := &TurnTimers{
		timeout:  timeout,
		clock:    clock,
		onExpire: onExpire,
	}
	for i := range t.shards {
		t.shards[i].pending = make(map[match.ID]turnTimer)
	}
	return t
}

func (t *TurnTimers) shard(id match.ID) *timerShard {
	return &t.shards[shardIndex(int64(id), timerShards)]
}

// Schedule starts the deadline for user in match id at version, replacing
// any pending deadline of that match.
func (t *TurnTimers) Schedule(id match.ID, user match.UserID, version int64) {
	if t.stopped.Load() {
		return
	}
	gen := t.gen.Add(1)

	sh := t.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if old, ok := sh.pending[id]; ok {
		old.timer.Stop()
	}
	sh.pending[id] = turnTimer{
		user:    user,
		version: version,
		gen:     gen,
		timer:   t.clock.AfterFunc(t.timeout, func() { t.fire(id, gen) }),
	}
}

// Cancel drops the pending deadline of match id, if any.
func (t *TurnTimers) Cancel(id match.ID) {
	sh := t.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if old, ok := sh.pending[id]; ok {
		old.timer.Stop()
		delete(sh.pending, id)
	}
}

// Pending returns the user whose deadline is running in match id.
func (t *TurnTimers) Pending(id match.ID) (match.UserID, bool) {
	sh := t.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	tt, ok := sh.pending[id]
	return tt.user, ok
}

// Len returns the number of pending deadlines.
func (t *TurnTimers) Len() int {
	n := 0
	for i := range t.shards {
		sh := &t.shards[i]
		sh.mu.Lock()
		n += len(sh.pending)
		sh.mu.Unlock()
	}
	return n
}

// Stop cancels every pending deadline and rejects further scheduling.
func (t *TurnTimers) Stop() {
	t.stopped.Store(true)
	for i := range t.shards {
		sh := &t.shards[i]
		sh.mu.Lock()
		for id, tt := range sh.pending {
			tt.timer.Stop()
			delete(sh.pending, id)
		}
		sh.mu.Unlock()
	}
}

func (t *TurnTimers) fire(id match.ID, gen uint64) {
	sh := t.shard(id)
	sh.mu.Lock()
	tt, ok := sh.pending[id]
	if !ok || tt.gen != gen {
		sh.mu.Unlock()
		return
	}
	delete(sh.pending, id)
	sh.mu.Unlock()

	if t.stopped.Load() {
		return
	}
	t.onExpire(id, tt.user, tt.version)
}
