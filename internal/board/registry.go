package board

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/vovakirdan/turn-arena/internal/errors"
)

// MatchType identifies a game family (and therefore its move shape and rules).
type MatchType string

// Rules is the contract every match type implements.
// Implementations must be stateless; boards call them with private grids.
type Rules interface {
	// Title returns a human-readable name (e.g., "Tic-Tac-Toe").
	Title() string

	// Dimension returns the board side length.
	Dimension() int

	// Sides returns the two in-board players of this family.
	Sides() (Player, Player)

	// Setup places the starting pieces on an empty grid.
	Setup(g *Grid)

	// Place applies the move to the grid, including any captures.
	// The square is already known to be empty and it is the mover's turn.
	Place(g *Grid, m Move) error

	// Result classifies the grid after mover's placement.
	Result(g *Grid, mover Player) Result
}

// Result is the classification of a board after a placement.
type Result struct {
	Status Status
	Winner Player // Set only when Status is StatusWin
	Pass   bool   // The opponent cannot move; mover keeps the turn
}

// TypeInfo contains metadata about a registered match type.
type TypeInfo struct {
	Type      MatchType `json:"type"`
	Title     string    `json:"title"`
	Dimension int       `json:"dimension"`
}

var (
	rulesByType = make(map[MatchType]Rules)
	mu          sync.RWMutex
)

// Register adds the rules for a match type.
// Typically called from a game package's init() function.
// Panics if the type is already registered.
func Register(t MatchType, r Rules) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := rulesByType[t]; exists {
		panic(fmt.Sprintf("board: match type %q already registered", t))
	}
	if err := checkDimension(r.Dimension()); err != nil {
		panic(fmt.Sprintf("board: match type %q: %v", t, err))
	}
	rulesByType[t] = r
}

// Lookup returns the rules for a match type.
func Lookup(t MatchType) (Rules, error) {
	mu.RLock()
	defer mu.RUnlock()

	r, ok := rulesByType[t]
	if !ok {
		return nil, apperrors.WithMetadata(apperrors.CodeUnknownMatchType,
			fmt.Sprintf("unknown match type %q", t), map[string]string{"match_type": string(t)})
	}
	return r, nil
}

// ParseMatchType normalizes s and checks that it names a registered type.
func ParseMatchType(s string) (MatchType, error) {
	t := MatchType(strings.ToLower(strings.TrimSpace(s)))
	if _, err := Lookup(t); err != nil {
		return "", err
	}
	return t, nil
}

// Types returns information about all registered match types, sorted by type.
func Types() []TypeInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]TypeInfo, 0, len(rulesByType))
	for t, r := range rulesByType {
		result = append(result, TypeInfo{
			Type:      t,
			Title:     r.Title(),
			Dimension: r.Dimension(),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Type < result[j].Type
	})

	return result
}
