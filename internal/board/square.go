package board

import (
	"fmt"
	"strconv"

	apperrors "github.com/vovakirdan/turn-arena/internal/errors"
)

// MaxDimension is the largest supported board side (columns are lettered a-z).
const MaxDimension = 26

// Row is a zero-based board row. Its human-facing number counts from the
// bottom: number = dim - index.
type Row struct {
	index int
	dim   int
}

// NewRow creates a row from a zero-based index on a board of side dim.
func NewRow(index, dim int) (Row, error) {
	if err := checkDimension(dim); err != nil {
		return Row{}, err
	}
	if index < 0 || index >= dim {
		return Row{}, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("row index %d out of range [0, %d)", index, dim))
	}
	return Row{index: index, dim: dim}, nil
}

// RowFromNumber creates a row from its human-facing number.
func RowFromNumber(number, dim int) (Row, error) {
	return NewRow(dim-number, dim)
}

// Index returns the zero-based row index.
func (r Row) Index() int { return r.index }

// Number returns the 1-based row number shown to players.
func (r Row) Number() int { return r.dim - r.index }

// Column is a zero-based board column, labelled by a letter.
type Column struct {
	index int
	dim   int
}

// NewColumn creates a column from a zero-based index.
func NewColumn(index, dim int) (Column, error) {
	if err := checkDimension(dim); err != nil {
		return Column{}, err
	}
	if index < 0 || index >= dim {
		return Column{}, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("column index %d out of range [0, %d)", index, dim))
	}
	return Column{index: index, dim: dim}, nil
}

// ColumnFromLetter creates a column from its letter ('a' is index 0).
func ColumnFromLetter(letter rune, dim int) (Column, error) {
	if letter >= 'A' && letter <= 'Z' {
		letter += 'a' - 'A'
	}
	if letter < 'a' || letter > 'z' {
		return Column{}, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("invalid column letter %q", letter))
	}
	return NewColumn(int(letter-'a'), dim)
}

// Index returns the zero-based column index.
func (c Column) Index() int { return c.index }

// Letter returns the column letter.
func (c Column) Letter() rune { return rune('a' + c.index) }

// Square is a board coordinate. Squares compare by value.
type Square struct {
	Row    Row
	Column Column
}

// NewSquare creates a square from zero-based row and column indexes.
func NewSquare(rowIndex, colIndex, dim int) (Square, error) {
	row, err := NewRow(rowIndex, dim)
	if err != nil {
		return Square{}, err
	}
	col, err := NewColumn(colIndex, dim)
	if err != nil {
		return Square{}, err
	}
	return Square{Row: row, Column: col}, nil
}

// Dim returns the side length of the board the square belongs to.
func (s Square) Dim() int { return s.Row.dim }

// Index returns the row-major offset of the square.
func (s Square) Index() int { return s.Row.index*s.Row.dim + s.Column.index }

// String returns the square in "<number><letter>" notation, e.g. "3a".
func (s Square) String() string {
	return strconv.Itoa(s.Row.Number()) + string(s.Column.Letter())
}

func checkDimension(dim int) error {
	if dim < 1 || dim > MaxDimension {
		return apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("board dimension %d out of range [1, %d]", dim, MaxDimension))
	}
	return nil
}
