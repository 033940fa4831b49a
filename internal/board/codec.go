package board

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/vovakirdan/turn-arena/internal/errors"
)

// ParseSquare parses "<number><letter>" notation (e.g. "3a") for a board of
// side dim.
func ParseSquare(s string, dim int) (Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 2 {
		return Square{}, invalidSquare(s)
	}
	letter := rune(s[len(s)-1])
	number, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || letter < 'a' || letter > 'z' {
		return Square{}, invalidSquare(s)
	}
	row, err := RowFromNumber(number, dim)
	if err != nil {
		return Square{}, err
	}
	col, err := ColumnFromLetter(letter, dim)
	if err != nil {
		return Square{}, err
	}
	return Square{Row: row, Column: col}, nil
}

func invalidSquare(s string) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidArgument,
		fmt.Sprintf("invalid square %q, want <number><letter>", s),
		map[string]string{"square": s})
}

// ParseMove builds a move for match type t from wire strings. A player that
// does not belong to t's family is rejected as a wrong-type move.
func ParseMove(t MatchType, player, square string) (Move, error) {
	rules, err := Lookup(t)
	if err != nil {
		return Move{}, err
	}
	p, err := ParsePlayer(player)
	if err != nil {
		return Move{}, err
	}
	if a, b := rules.Sides(); p != a && p != b {
		return Move{}, apperrors.InvalidMove(apperrors.ReasonWrongType,
			fmt.Sprintf("%s does not play %s", p, t))
	}
	sq, err := ParseSquare(square, rules.Dimension())
	if err != nil {
		return Move{}, err
	}
	return NewMove(t, p, sq), nil
}

// DecodeMove parses the compact Move.String() form ("X3a").
func DecodeMove(t MatchType, s string) (Move, error) {
	if len(s) < 3 {
		return Move{}, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("invalid move %q", s))
	}
	return ParseMove(t, s[:1], s[1:])
}

// Record is the serialized form of a Board, used for persistence and wire
// payloads. Rows are listed top row first, one symbol per cell.
type Record struct {
	Type    string   `json:"type"`
	Status  string   `json:"status"`
	Rows    []string `json:"rows"`
	Moves   []string `json:"moves"`
	Turn    string   `json:"turn"`
	Player1 string   `json:"player1"`
	Player2 string   `json:"player2"`
	Winner  string   `json:"winner,omitempty"`
}

// Encode converts a board to its record form.
func Encode(b Board) Record {
	r := Record{
		Type:    string(b.matchType),
		Status:  b.status.String(),
		Moves:   make([]string, 0, len(b.moves)),
		Turn:    b.turn.Symbol(),
		Player1: b.player1.Symbol(),
		Player2: b.player2.Symbol(),
	}
	if b.status == StatusWin {
		r.Winner = b.winner.Symbol()
	}
	for _, m := range b.moves {
		r.Moves = append(r.Moves, m.String())
	}
	if b.grid != nil {
		r.Rows = make([]string, 0, b.grid.dim)
		for row := 0; row < b.grid.dim; row++ {
			var sb strings.Builder
			for col := 0; col < b.grid.dim; col++ {
				sb.WriteString(b.grid.At(row, col).Symbol())
			}
			r.Rows = append(r.Rows, sb.String())
		}
	}
	return r
}

// Decode validates a record and rebuilds the board.
func Decode(r Record) (Board, error) {
	t := MatchType(r.Type)
	rules, err := Lookup(t)
	if err != nil {
		return Board{}, err
	}
	dim := rules.Dimension()
	sideA, sideB := rules.Sides()
	isSide := func(p Player) bool { return p == sideA || p == sideB }

	status, err := parseStatus(r.Status)
	if err != nil {
		return Board{}, err
	}
	p1, err := ParsePlayer(r.Player1)
	if err != nil {
		return Board{}, err
	}
	p2, err := ParsePlayer(r.Player2)
	if err != nil {
		return Board{}, err
	}
	turn, err := ParsePlayer(r.Turn)
	if err != nil {
		return Board{}, err
	}
	if !isSide(p1) || p2 != p1.Other() || !isSide(turn) {
		return Board{}, corrupt("sides do not match " + r.Type)
	}

	if len(r.Rows) != dim {
		return Board{}, corrupt(fmt.Sprintf("want %d rows, got %d", dim, len(r.Rows)))
	}
	g := NewGrid(dim)
	for row, line := range r.Rows {
		if len(line) != dim {
			return Board{}, corrupt(fmt.Sprintf("row %d has %d cells, want %d", row, len(line), dim))
		}
		for col := 0; col < dim; col++ {
			p, err := ParsePlayer(line[col : col+1])
			if err != nil {
				return Board{}, err
			}
			if p != Empty && !isSide(p) {
				return Board{}, corrupt(fmt.Sprintf("cell %d,%d holds %s", row, col, p))
			}
			g.SetAt(row, col, p)
		}
	}

	if len(r.Moves) > dim*dim {
		return Board{}, corrupt("more moves than squares")
	}
	moves := make([]Move, 0, len(r.Moves))
	for _, s := range r.Moves {
		m, err := DecodeMove(t, s)
		if err != nil {
			return Board{}, err
		}
		moves = append(moves, m)
	}

	b := Board{
		matchType: t,
		status:    status,
		grid:      g,
		moves:     moves,
		turn:      turn,
		player1:   p1,
		player2:   p2,
	}
	if status == StatusWin {
		w, err := ParsePlayer(r.Winner)
		if err != nil {
			return Board{}, err
		}
		if !isSide(w) {
			return Board{}, corrupt("win without a winner")
		}
		b.winner = w
	}
	return b, nil
}

// Marshal encodes a board as JSON.
func Marshal(b Board) ([]byte, error) {
	return json.Marshal(Encode(b))
}

// Unmarshal decodes and validates a JSON board.
func Unmarshal(data []byte) (Board, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Board{}, apperrors.Wrap(apperrors.CodeInvalidArgument, "decode board", err)
	}
	return Decode(r)
}

func parseStatus(s string) (Status, error) {
	switch s {
	case "running":
		return StatusRunning, nil
	case "win":
		return StatusWin, nil
	case "draw":
		return StatusDraw, nil
	}
	return 0, corrupt("unknown status " + s)
}

func corrupt(msg string) error {
	return apperrors.New(apperrors.CodeInvalidArgument, "board record: "+msg)
}
