package board_test

import (
	"testing"

	"github.com/vovakirdan/turn-arena/internal/board"
	apperrors "github.com/vovakirdan/turn-arena/internal/errors"
	"github.com/vovakirdan/turn-arena/internal/games/tictactoe"
)

func TestParseMove(t *testing.T) {
	m, err := board.ParseMove(tictactoe.Type, "x", "2b")
	if err != nil {
		t.Fatalf("ParseMove() failed: %v", err)
	}
	if m.Player != board.Cross || m.Square.String() != "2b" || m.Type != tictactoe.Type {
		t.Errorf("ParseMove() = %+v", m)
	}
	if m.String() != "X2b" {
		t.Errorf("String() = %q, want X2b", m.String())
	}

	_, err = board.ParseMove(tictactoe.Type, "black", "2b")
	if apperrors.GetMetadata(err)["reason"] != apperrors.ReasonWrongType {
		t.Errorf("foreign side error = %v, want wrong_type", err)
	}
	if _, err := board.ParseMove(tictactoe.Type, "z", "2b"); !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Errorf("bad player error = %v, want InvalidArgument", err)
	}
}

func TestBoardRecordRoundTrip(t *testing.T) {
	b := play(t, newTTT(t), at(t, 0, 0), at(t, 1, 1), at(t, 2, 2))

	data, err := board.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	got, err := board.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}

	if got.Turn() != b.Turn() || got.Status() != b.Status() || got.Player1() != b.Player1() {
		t.Errorf("decoded header differs: %+v", board.Encode(got))
	}
	wantMoves, gotMoves := b.Moves(), got.Moves()
	if len(gotMoves) != len(wantMoves) {
		t.Fatalf("moves = %v, want %v", gotMoves, wantMoves)
	}
	for i := range wantMoves {
		if gotMoves[i] != wantMoves[i] {
			t.Errorf("move %d = %s, want %s", i, gotMoves[i], wantMoves[i])
		}
	}
	rec := board.Encode(got)
	if rec.Rows[0] != "X.." || rec.Rows[1] != ".O." || rec.Rows[2] != "..X" {
		t.Errorf("rows = %v", rec.Rows)
	}
}

func TestDecodeRejectsCorruptRecords(t *testing.T) {
	good := board.Encode(newTTT(t))

	tests := []struct {
		name   string
		mutate func(r *board.Record)
	}{
		{"short row", func(r *board.Record) { r.Rows[0] = ".." }},
		{"missing row", func(r *board.Record) { r.Rows = r.Rows[:2] }},
		{"foreign piece", func(r *board.Record) { r.Rows[0] = "B.." }},
		{"bad status", func(r *board.Record) { r.Status = "paused" }},
		{"mismatched sides", func(r *board.Record) { r.Player2 = "X" }},
		{"win without winner", func(r *board.Record) { r.Status = "win" }},
		{"unknown type", func(r *board.Record) { r.Type = "chess" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := good
			r.Rows = append([]string(nil), good.Rows...)
			tt.mutate(&r)
			if _, err := board.Decode(r); err == nil {
				t.Error("Decode() succeeded, want error")
			}
		})
	}
}
