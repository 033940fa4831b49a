// Package board implements the game-board abstraction shared by every match
// type: coordinates, pieces, moves and the Running/Win/Draw board states.
// Boards contain pure logic with no I/O; the rules for each match type live
// in their own package and register themselves with Register.
package board

import (
	"strings"

	apperrors "github.com/vovakirdan/turn-arena/internal/errors"
)

// Player is an in-board side. Each match type uses exactly two sides.
type Player uint8

const (
	Empty  Player = iota // No piece
	Cross                // Tic-tac-toe "X"
	Circle               // Tic-tac-toe "O"
	Black                // Reversi black
	White                // Reversi white
)

// Other returns the opposing side. Empty.Other() is Empty.
func (p Player) Other() Player {
	switch p {
	case Cross:
		return Circle
	case Circle:
		return Cross
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

// String returns the lowercase name of the side.
func (p Player) String() string {
	switch p {
	case Empty:
		return "empty"
	case Cross:
		return "cross"
	case Circle:
		return "circle"
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "unknown"
	}
}

// Symbol returns the single-character board symbol for the side.
func (p Player) Symbol() string {
	switch p {
	case Cross:
		return "X"
	case Circle:
		return "O"
	case Black:
		return "B"
	case White:
		return "W"
	default:
		return "."
	}
}

// ParsePlayer accepts either a side name ("cross") or its symbol ("X").
func ParsePlayer(s string) (Player, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x", "cross":
		return Cross, nil
	case "o", "circle":
		return Circle, nil
	case "b", "black":
		return Black, nil
	case "w", "white":
		return White, nil
	case ".", "empty":
		return Empty, nil
	}
	return Empty, apperrors.WithMetadata(apperrors.CodeInvalidArgument,
		"unknown player "+s, map[string]string{"player": s})
}
