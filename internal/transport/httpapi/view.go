package httpapi

import (
	"github.com/vovakirdan/turn-arena/internal/board"
	"github.com/vovakirdan/turn-arena/internal/match"
)

type matchView struct {
	ID          match.ID        `json:"id"`
	Type        board.MatchType `json:"match_type"`
	State       string          `json:"state"`
	Version     int64           `json:"version"`
	Player1     match.UserID    `json:"player1"`
	Player2     match.UserID    `json:"player2,omitempty"`
	Winner      match.UserID    `json:"winner,omitempty"`
	CurrentUser match.UserID    `json:"current_user,omitempty"`
	Board       board.Record    `json:"board"`
}

func newMatchView(m match.Match) matchView {
	return matchView{
		ID:          m.ID,
		Type:        m.Type,
		State:       m.State().String(),
		Version:     m.Version,
		Player1:     m.Player1,
		Player2:     m.Player2,
		Winner:      m.Winner,
		CurrentUser: m.CurrentUser(),
		Board:       board.Encode(m.Board),
	}
}
