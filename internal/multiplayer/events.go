package multiplayer

import (
	"context"
	"fmt"

	"github.com/vovakirdan/turn-arena/internal/match"
)

// EventKind describes what happened in a match.
type EventKind int

const (
	EventMoveMade       EventKind = iota // Opponent played a move
	EventMatchForfeited                  // A player forfeited, by hand or on timeout
	EventMatchOver                       // The board reached a win or a draw
	EventMatchCancelled                  // A waiting match was withdrawn
	EventOpponentJoined                  // Someone joined a waiting match
)

func (k EventKind) String() string {
	switch k {
	case EventMoveMade:
		return "move_made"
	case EventMatchForfeited:
		return "match_forfeited"
	case EventMatchOver:
		return "match_over"
	case EventMatchCancelled:
		return "match_cancelled"
	case EventOpponentJoined:
		return "opponent_joined"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k EventKind) MarshalText() ([]byte, error) {
	if k < EventMoveMade || k > EventOpponentJoined {
		return nil, fmt.Errorf("unknown event kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// Notification tells a user that a match changed. Clients fetch the match at
// Version to see the details.
type Notification struct {
	Kind    EventKind `json:"kind"`
	MatchID match.ID  `json:"match_id"`
	Version int64     `json:"version"`
}

// Notifier delivers notifications to a user. Implementations must not
// block on slow receivers.
type Notifier interface {
	Notify(ctx context.Context, user match.UserID, n Notification)
}

// NopNotifier discards every notification.
type NopNotifier struct{}

// Notify does nothing.
func (NopNotifier) Notify(context.Context, match.UserID, Notification) {}
