// Package storage provides SQLite-based persistence for matches.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/turn-arena/internal/board"
	apperrors "github.com/vovakirdan/turn-arena/internal/errors"
	"github.com/vovakirdan/turn-arena/internal/match"
	"github.com/vovakirdan/turn-arena/internal/multiplayer"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store manages the SQLite database connection for match persistence.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ multiplayer.Repository = (*Store)(nil)

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	if dbPath != MemoryPath {
		// Expand ~ to home directory
		if dbPath != "" && dbPath[0] == '~' {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
			}
			dbPath = filepath.Join(home, dbPath[1:])
		}

		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One connection: writes are serialized and :memory: stays a single database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db, now: time.Now}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY,
			match_type TEXT NOT NULL,
			state TEXT NOT NULL,
			board TEXT NOT NULL,
			player1 INTEGER NOT NULL,
			player2 INTEGER,
			winner INTEGER,
			version INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_matches_waiting ON matches(match_type, state, created_at);
		CREATE INDEX IF NOT EXISTS idx_matches_player1 ON matches(player1, state);
		CREATE INDEX IF NOT EXISTS idx_matches_player2 ON matches(player2, state);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const matchColumns = `id, match_type, state, board, player1, player2, winner, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (match.Match, error) {
	var (
		m       match.Match
		mt      string
		state   string
		raw     string
		player2 sql.NullInt64
		winner  sql.NullInt64
	)
	if err := row.Scan(&m.ID, &mt, &state, &raw, &m.Player1, &player2, &winner, &m.Version); err != nil {
		return match.Match{}, err
	}

	b, err := board.Unmarshal([]byte(raw))
	if err != nil {
		return match.Match{}, apperrors.Wrap(apperrors.CodeInternal,
			fmt.Sprintf("corrupt board for match %d", m.ID), err)
	}
	m.Type = board.MatchType(mt)
	m.Board = b
	if player2.Valid {
		m.Player2 = match.UserID(player2.Int64)
	}
	if winner.Valid {
		m.Winner = match.UserID(winner.Int64)
	}

	if got := m.State().String(); got != state {
		return match.Match{}, apperrors.New(apperrors.CodeInternal,
			fmt.Sprintf("match %d stored as %s but decodes as %s", m.ID, state, got))
	}
	return m, nil
}

func (s *Store) queryMatch(ctx context.Context, what, query string, args ...any) (*match.Match, error) {
	m, err := scanMatch(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query %s: %w", what, err)
	}
	return &m, nil
}

// GetMatchByID retrieves a match by id.
func (s *Store) GetMatchByID(ctx context.Context, id match.ID) (*match.Match, error) {
	return s.queryMatch(ctx, "match",
		`SELECT `+matchColumns+` FROM matches WHERE id = ?`, int64(id))
}

// GetRunningOrWaitingMatchByUser retrieves the unfinished match of a user.
func (s *Store) GetRunningOrWaitingMatchByUser(ctx context.Context, user match.UserID) (*match.Match, error) {
	return s.queryMatch(ctx, "user match",
		`SELECT `+matchColumns+` FROM matches
		 WHERE (player1 = ? OR player2 = ?) AND state IN ('waiting', 'running')
		 ORDER BY created_at DESC
		 LIMIT 1`,
		int64(user), int64(user))
}

// GetWaitingMatch retrieves the oldest waiting match of a type.
func (s *Store) GetWaitingMatch(ctx context.Context, t board.MatchType) (*match.Match, error) {
	return s.queryMatch(ctx, "waiting match",
		`SELECT `+matchColumns+` FROM matches
		 WHERE match_type = ? AND state = 'waiting'
		 ORDER BY created_at, id
		 LIMIT 1`,
		string(t))
}

// AddMatch inserts a new match. An id that is already taken fails with
// DUPLICATE_MATCH_ID.
func (s *Store) AddMatch(ctx context.Context, m match.Match) (match.ID, error) {
	raw, err := board.Marshal(m.Board)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot encode board: %w", err)
	}
	now := s.now().UnixNano()

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO matches (`+matchColumns+`, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		int64(m.ID), string(m.Type), m.State().String(), string(raw),
		int64(m.Player1), nullableUser(m.Player2), nullableUser(m.Winner), m.Version,
		now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get affected rows: %w", err)
	}
	if n == 0 {
		return 0, apperrors.WithMetadata(apperrors.CodeDuplicateMatchID,
			fmt.Sprintf("match id %s is taken", m.ID),
			map[string]string{"match_id": m.ID.String()})
	}
	return m.ID, nil
}

// UpdateMatch writes the full snapshot m if the stored version still equals
// expectedVersion.
func (s *Store) UpdateMatch(ctx context.Context, m match.Match, expectedVersion int64) (match.Match, error) {
	raw, err := board.Marshal(m.Board)
	if err != nil {
		return match.Match{}, fmt.Errorf("storage: cannot encode board: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE matches
		 SET board = ?, player1 = ?, player2 = ?, match_type = ?, version = ?, state = ?, winner = ?, updated_at = ?
		 WHERE id = ? AND version = ?`,
		string(raw), int64(m.Player1), nullableUser(m.Player2), string(m.Type), m.Version,
		m.State().String(), nullableUser(m.Winner), s.now().UnixNano(),
		int64(m.ID), expectedVersion,
	)
	if err != nil {
		return match.Match{}, fmt.Errorf("storage: cannot update match: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return match.Match{}, fmt.Errorf("storage: cannot get affected rows: %w", err)
	}
	if n == 1 {
		return m, nil
	}

	var stored int64
	err = s.db.QueryRowContext(ctx, `SELECT version FROM matches WHERE id = ?`, int64(m.ID)).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return match.Match{}, apperrors.New(apperrors.CodeMatchNotFound,
			fmt.Sprintf("match %s not found", m.ID))
	}
	if err != nil {
		return match.Match{}, fmt.Errorf("storage: cannot query match version: %w", err)
	}
	return match.Match{}, apperrors.WithMetadata(apperrors.CodeVersionMismatch,
		fmt.Sprintf("match %s is at version %d, not %d", m.ID, stored, expectedVersion),
		map[string]string{"version": fmt.Sprint(stored)})
}

// CancelSearch deletes a waiting match owned by user.
func (s *Store) CancelSearch(ctx context.Context, user match.UserID, id match.ID) (multiplayer.CancelConfirmation, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM matches WHERE id = ? AND player1 = ? AND state = 'waiting'`,
		int64(id), int64(user))
	if err != nil {
		return multiplayer.CancelConfirmation{}, fmt.Errorf("storage: cannot delete match: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return multiplayer.CancelConfirmation{}, fmt.Errorf("storage: cannot get affected rows: %w", err)
	}
	if n == 1 {
		return multiplayer.CancelConfirmation{MatchID: id, UserID: user}, nil
	}

	m, err := s.GetMatchByID(ctx, id)
	switch {
	case err != nil:
		return multiplayer.CancelConfirmation{}, err
	case m == nil:
		return multiplayer.CancelConfirmation{}, apperrors.New(apperrors.CodeMatchNotFound,
			fmt.Sprintf("match %s not found", id))
	case !m.IsParticipant(user):
		return multiplayer.CancelConfirmation{}, apperrors.New(apperrors.CodeUserNotInThisMatch,
			fmt.Sprintf("user %d is not in match %s", user, id))
	default:
		return multiplayer.CancelConfirmation{}, apperrors.New(apperrors.CodeMatchNotInWaitingState,
			fmt.Sprintf("match %s is %s", id, m.State()))
	}
}

// GetStatistics aggregates finished matches of user per match type. Every
// registered type is listed, with zero counts if never played.
func (s *Store) GetStatistics(ctx context.Context, user match.UserID) ([]multiplayer.Statistics, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT match_type,
		        COUNT(*),
		        COALESCE(SUM(CASE WHEN winner = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN state = 'draw' THEN 1 ELSE 0 END), 0)
		 FROM matches
		 WHERE (player1 = ? OR player2 = ?) AND state IN ('win', 'draw')
		 GROUP BY match_type`,
		int64(user), int64(user), int64(user),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get statistics: %w", err)
	}
	defer rows.Close()

	byType := make(map[board.MatchType]multiplayer.Statistics)
	for rows.Next() {
		var (
			mt                  string
			played, wins, draws int
		)
		if err := rows.Scan(&mt, &played, &wins, &draws); err != nil {
			return nil, fmt.Errorf("storage: cannot scan statistics row: %w", err)
		}
		byType[board.MatchType(mt)] = multiplayer.NewStatistics(board.MatchType(mt), played, wins, draws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: cannot read statistics: %w", err)
	}

	var stats []multiplayer.Statistics
	for _, info := range board.Types() {
		st, ok := byType[info.Type]
		if !ok {
			st = multiplayer.NewStatistics(info.Type, 0, 0, 0)
		}
		stats = append(stats, st)
		delete(byType, info.Type)
	}
	// Types that were played once but are no longer registered.
	for _, st := range byType {
		stats = append(stats, st)
	}
	return stats, nil
}

// RunningMatches lists every running match.
func (s *Store) RunningMatches(ctx context.Context) ([]match.Match, error) {
	return s.listMatches(ctx, "running matches",
		`SELECT `+matchColumns+` FROM matches WHERE state = 'running' ORDER BY created_at`)
}

// RecentMatches lists the most recently updated matches, newest first.
// A positive user restricts the list to that user's matches.
func (s *Store) RecentMatches(ctx context.Context, user match.UserID, limit int) ([]match.Match, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT ` + matchColumns + ` FROM matches`
	args := []any{}
	if user > 0 {
		query += ` WHERE player1 = ? OR player2 = ?`
		args = append(args, int64(user), int64(user))
	}
	query += ` ORDER BY updated_at DESC LIMIT ?`
	args = append(args, limit)
	return s.listMatches(ctx, "recent matches", query, args...)
}

func (s *Store) listMatches(ctx context.Context, what, query string, args ...any) ([]match.Match, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query %s: %w", what, err)
	}
	defer rows.Close()

	var matches []match.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: cannot read %s: %w", what, err)
	}
	return matches, nil
}

func nullableUser(u match.UserID) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(u), Valid: u != 0}
}
