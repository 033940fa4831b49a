package board

// Position pairs a square with its occupant (Empty when vacant).
type Position struct {
	Square Square
	Player Player
}

// Grid is the mutable cell store rules operate on while computing a move.
// Boards never expose their grid; they hand rules a private clone.
type Grid struct {
	dim   int
	cells []Player
}

// NewGrid creates an empty dim x dim grid.
func NewGrid(dim int) *Grid {
	return &Grid{dim: dim, cells: make([]Player, dim*dim)}
}

// Dim returns the side length.
func (g *Grid) Dim() int { return g.dim }

// InBounds reports whether (row, col) lies on the grid.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.dim && col >= 0 && col < g.dim
}

// At returns the occupant at (row, col), or Empty when out of bounds.
func (g *Grid) At(row, col int) Player {
	if !g.InBounds(row, col) {
		return Empty
	}
	return g.cells[row*g.dim+col]
}

// SetAt places p at (row, col). Out-of-bounds writes are ignored.
func (g *Grid) SetAt(row, col int, p Player) {
	if g.InBounds(row, col) {
		g.cells[row*g.dim+col] = p
	}
}

// Get returns the occupant of a square.
func (g *Grid) Get(sq Square) Player {
	return g.At(sq.Row.Index(), sq.Column.Index())
}

// Set places p on a square.
func (g *Grid) Set(sq Square, p Player) {
	g.SetAt(sq.Row.Index(), sq.Column.Index(), p)
}

// Count returns how many cells p occupies.
func (g *Grid) Count(p Player) int {
	n := 0
	for _, c := range g.cells {
		if c == p {
			n++
		}
	}
	return n
}

// Full reports whether no empty cell remains.
func (g *Grid) Full() bool {
	return g.Count(Empty) == 0
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	cells := make([]Player, len(g.cells))
	copy(cells, g.cells)
	return &Grid{dim: g.dim, cells: cells}
}

// Positions returns every square with its occupant in row-major order.
func (g *Grid) Positions() []Position {
	out := make([]Position, 0, len(g.cells))
	for i, p := range g.cells {
		out = append(out, Position{
			Square: Square{
				Row:    Row{index: i / g.dim, dim: g.dim},
				Column: Column{index: i % g.dim, dim: g.dim},
			},
			Player: p,
		})
	}
	return out
}
