package multiplayer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/turn-arena/internal/board"
	apperrors "github.com/vovakirdan/turn-arena/internal/errors"
	"github.com/vovakirdan/turn-arena/internal/match"
)

// ServiceConfig holds configuration for the match service.
type ServiceConfig struct {
	TurnTimeout time.Duration // How long a player may think before forfeiting
	JoinRetries int           // Extra searches after losing a join race
	IDRetries   int           // Extra id draws after a collision
}

// DefaultServiceConfig returns sensible defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		TurnTimeout: 30 * time.Second,
		JoinRetries: 3,
		IDRetries:   5,
	}
}

// expireTimeout bounds the repository work of one auto-forfeit.
const expireTimeout = 10 * time.Second

// maxMatchID keeps ids exact for JSON clients that decode numbers as float64.
const maxMatchID = 1 << 53

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the wall clock used by turn timers.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithRandomizer replaces the coin flips used to pick sides at start.
// r must be safe for concurrent use.
func WithRandomizer(r match.Randomizer) Option {
	return func(s *Service) { s.rnd = r }
}

// WithIDGenerator replaces the random match id source.
func WithIDGenerator(f func() match.ID) Option {
	return func(s *Service) { s.newID = f }
}

// Service orchestrates matchmaking and match transitions. State-changing
// operations on one match are serialized by a per-match lock; the
// repository's version check guards against writers outside this process.
type Service struct {
	config   ServiceConfig
	repo     Repository
	notifier Notifier
	logger   *log.Logger

	clock  Clock
	rnd    match.Randomizer
	newID  func() match.ID
	timers *TurnTimers

	userLocks  stripedLock
	matchLocks stripedLock
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

func randomMatchID() match.ID {
	return match.ID(rand.Int64N(maxMatchID-1) + 1)
}

// NewService creates a match service. notifier may be nil.
func NewService(cfg ServiceConfig, repo Repository, notifier Notifier, logger *log.Logger, opts ...Option) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if cfg.TurnTimeout <= 0 {
		cfg.TurnTimeout = DefaultServiceConfig().TurnTimeout
	}
	s := &Service{
		config:   cfg,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		clock:    realClock{},
		rnd:      globalRand{},
		newID:    randomMatchID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.timers = NewTurnTimers(cfg.TurnTimeout, s.clock, s.expire)
	return s
}

// Timers exposes the turn-timer registry.
func (s *Service) Timers() *TurnTimers {
	return s.timers
}

// Stop cancels every pending turn timer.
func (s *Service) Stop() {
	s.timers.Stop()
}

// ResumeTimers starts a fresh deadline for every running match in the
// store. Called once at startup.
func (s *Service) ResumeTimers(ctx context.Context) error {
	running, err := s.repo.RunningMatches(ctx)
	if err != nil {
		return err
	}
	for _, m := range running {
		s.timers.Schedule(m.ID, m.CurrentUser(), m.Version)
	}
	if len(running) > 0 {
		s.logger.Info("resumed turn timers", "matches", len(running))
	}
	return nil
}

// EnterMatch puts user into a waiting match of type t, or opens a new one if
// none is waiting.
func (s *Service) EnterMatch(ctx context.Context, user match.UserID, t board.MatchType) (match.Match, error) {
	if user <= 0 {
		return match.Match{}, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("invalid user id %d", user))
	}
	if _, err := board.Lookup(t); err != nil {
		return match.Match{}, err
	}

	unlock := s.userLocks.lock(int64(user))
	defer unlock()

	current, err := s.repo.GetRunningOrWaitingMatchByUser(ctx, user)
	if err != nil {
		return match.Match{}, err
	}
	if current != nil {
		return match.Match{}, apperrors.WithMetadata(apperrors.CodeUserAlreadyInMatch,
			fmt.Sprintf("user %d is already in match %s", user, current.ID),
			map[string]string{"match_id": current.ID.String()})
	}

	for attempt := 0; attempt <= s.config.JoinRetries; attempt++ {
		joined, ok, err := s.tryJoin(ctx, user, t)
		if err != nil {
			return match.Match{}, err
		}
		if ok {
			return joined, nil
		}
		if joined.ID == 0 {
			break // nothing waiting
		}
		s.logger.Debug("lost join race", "match", joined.ID, "user", user, "attempt", attempt)
	}

	return s.startMatch(ctx, user, t)
}

// tryJoin joins the oldest waiting match of type t. It reports ok=false with
// a zero match when nothing is waiting, and ok=false with the contested
// match when another user got there first.
func (s *Service) tryJoin(ctx context.Context, user match.UserID, t board.MatchType) (match.Match, bool, error) {
	waiting, err := s.repo.GetWaitingMatch(ctx, t)
	if err != nil || waiting == nil {
		return match.Match{}, false, err
	}

	unlock := s.matchLocks.lock(int64(waiting.ID))
	defer unlock()

	joined, err := waiting.Join(user)
	if err != nil {
		return match.Match{}, false, err
	}
	saved, err := s.repo.UpdateMatch(ctx, joined, waiting.Version)
	if apperrors.IsCode(err, apperrors.CodeVersionMismatch) || apperrors.IsCode(err, apperrors.CodeMatchNotFound) {
		return match.Match{ID: waiting.ID}, false, nil
	}
	if err != nil {
		return match.Match{}, false, err
	}

	s.timers.Schedule(saved.ID, saved.CurrentUser(), saved.Version)
	s.notifier.Notify(ctx, saved.Player1, Notification{
		Kind:    EventOpponentJoined,
		MatchID: saved.ID,
		Version: saved.Version,
	})
	s.logger.Info("match joined", "match", saved.ID, "type", t, "player1", saved.Player1, "player2", saved.Player2)
	return saved, true, nil
}

func (s *Service) startMatch(ctx context.Context, user match.UserID, t board.MatchType) (match.Match, error) {
	for attempt := 0; attempt <= s.config.IDRetries; attempt++ {
		m, err := match.Start(s.newID(), user, t, s.rnd)
		if err != nil {
			return match.Match{}, err
		}
		if _, err := s.repo.AddMatch(ctx, m); err != nil {
			if apperrors.IsCode(err, apperrors.CodeDuplicateMatchID) {
				s.logger.Warn("match id collision", "match", m.ID, "attempt", attempt)
				continue
			}
			return match.Match{}, err
		}
		s.logger.Info("match created", "match", m.ID, "type", t, "user", user)
		return m, nil
	}
	return match.Match{}, apperrors.New(apperrors.CodeInternal,
		fmt.Sprintf("no free match id after %d attempts", s.config.IDRetries+1))
}

// PlayMove applies a move by user to match id. expectedVersion must equal
// the stored version.
func (s *Service) PlayMove(ctx context.Context, id match.ID, user match.UserID, mv board.Move, expectedVersion int64) (match.Match, error) {
	unlock := s.matchLocks.lock(int64(id))
	defer unlock()

	m, err := s.loadParticipant(ctx, id, user)
	if err != nil {
		return match.Match{}, err
	}
	if m.Version != expectedVersion {
		return match.Match{}, versionMismatch(m, expectedVersion)
	}
	side, err := m.PlayerType(user)
	if err != nil {
		return match.Match{}, err
	}
	if side != mv.Player {
		return match.Match{}, apperrors.New(apperrors.CodeIncorrectPlayerType,
			fmt.Sprintf("user %d plays %s, not %s", user, side, mv.Player))
	}

	next, err := m.Play(mv)
	if err != nil {
		return match.Match{}, err
	}
	saved, err := s.repo.UpdateMatch(ctx, next, m.Version)
	if err != nil {
		return match.Match{}, err
	}

	opponent, hasOpponent := s.opponentOf(saved, user)
	n := Notification{Kind: EventMoveMade, MatchID: saved.ID, Version: saved.Version}
	if saved.State() == match.StateRunning {
		s.timers.Schedule(saved.ID, saved.CurrentUser(), saved.Version)
		if hasOpponent {
			s.notifier.Notify(ctx, opponent, n)
		}
		return saved, nil
	}

	s.timers.Cancel(saved.ID)
	n.Kind = EventMatchOver
	if hasOpponent {
		s.notifier.Notify(ctx, opponent, n)
	}
	s.notifier.Notify(ctx, user, n)
	s.logger.Info("match over", "match", saved.ID, "state", saved.State(), "winner", saved.Winner)
	return saved, nil
}

// Forfeit concedes match id on behalf of user. No version is required.
func (s *Service) Forfeit(ctx context.Context, id match.ID, user match.UserID) (match.Match, error) {
	unlock := s.matchLocks.lock(int64(id))
	defer unlock()

	m, err := s.loadParticipant(ctx, id, user)
	if err != nil {
		return match.Match{}, err
	}
	saved, err := s.forfeitLocked(ctx, m, user)
	if err != nil {
		return match.Match{}, err
	}
	s.logger.Info("match forfeited", "match", id, "user", user, "winner", saved.Winner)
	return saved, nil
}

func (s *Service) forfeitLocked(ctx context.Context, m match.Match, user match.UserID) (match.Match, error) {
	next, err := m.Forfeit(user)
	if err != nil {
		return match.Match{}, err
	}
	saved, err := s.repo.UpdateMatch(ctx, next, m.Version)
	if err != nil {
		return match.Match{}, err
	}
	s.timers.Cancel(saved.ID)

	n := Notification{Kind: EventMatchForfeited, MatchID: saved.ID, Version: saved.Version}
	s.notifier.Notify(ctx, saved.Winner, n)
	s.notifier.Notify(ctx, user, n)
	return saved, nil
}

// CancelSearch withdraws a waiting match started by user.
func (s *Service) CancelSearch(ctx context.Context, user match.UserID, id match.ID) (CancelConfirmation, error) {
	unlock := s.matchLocks.lock(int64(id))
	defer unlock()

	m, err := s.loadParticipant(ctx, id, user)
	if err != nil {
		return CancelConfirmation{}, err
	}
	if m.State() != match.StateWaiting {
		return CancelConfirmation{}, notWaiting(m)
	}

	conf, err := s.repo.CancelSearch(ctx, user, id)
	if err != nil {
		return CancelConfirmation{}, err
	}
	s.timers.Cancel(id)
	s.notifier.Notify(ctx, user, Notification{Kind: EventMatchCancelled, MatchID: id, Version: m.Version})
	s.logger.Info("search cancelled", "match", id, "user", user)
	return conf, nil
}

// GetMatch returns the latest snapshot of match id.
func (s *Service) GetMatch(ctx context.Context, id match.ID) (match.Match, error) {
	m, err := s.repo.GetMatchByID(ctx, id)
	if err != nil {
		return match.Match{}, err
	}
	if m == nil {
		return match.Match{}, notFound(id)
	}
	return *m, nil
}

// GetMatchAtVersion returns match id provided the store is at least at
// minVersion. A store behind the caller indicates a bug or a race.
func (s *Service) GetMatchAtVersion(ctx context.Context, id match.ID, minVersion int64) (match.Match, error) {
	m, err := s.GetMatch(ctx, id)
	if err != nil {
		return match.Match{}, err
	}
	if m.Version < minVersion {
		return match.Match{}, versionMismatch(m, minVersion)
	}
	return m, nil
}

// ActiveMatch returns the running or waiting match of user, if any.
func (s *Service) ActiveMatch(ctx context.Context, user match.UserID) (*match.Match, error) {
	return s.repo.GetRunningOrWaitingMatchByUser(ctx, user)
}

// Statistics returns the per-type record of user.
func (s *Service) Statistics(ctx context.Context, user match.UserID) ([]Statistics, error) {
	if user <= 0 {
		return nil, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("invalid user id %d", user))
	}
	return s.repo.GetStatistics(ctx, user)
}

// opponentOf returns the other participant of a saved match. The move is
// already persisted when this runs, so a failure is logged, not returned.
func (s *Service) opponentOf(m match.Match, user match.UserID) (match.UserID, bool) {
	opponent, err := m.OtherPlayer(user)
	if err != nil {
		s.logger.Error("cannot resolve opponent", "match", m.ID, "user", user, "err", err)
		return 0, false
	}
	return opponent, true
}

// expire is the turn-timer callback. It re-reads the match and only forfeits
// if it is still at the version the deadline was started at, which also
// means the same user is on move.
func (s *Service) expire(id match.ID, user match.UserID, version int64) {
	ctx, cancel := context.WithTimeout(context.Background(), expireTimeout)
	defer cancel()

	unlock := s.matchLocks.lock(int64(id))
	defer unlock()

	m, err := s.repo.GetMatchByID(ctx, id)
	if err != nil {
		s.logger.Error("turn timeout: cannot load match", "match", id, "err", err)
		return
	}
	if m == nil || m.Version != version || m.State() != match.StateRunning || m.CurrentUser() != user {
		s.logger.Debug("turn timeout: nothing to do", "match", id, "user", user, "version", version)
		return
	}

	saved, err := s.forfeitLocked(ctx, *m, user)
	if err != nil {
		s.logger.Warn("turn timeout: auto-forfeit failed", "match", id, "user", user, "err", err)
		return
	}
	s.logger.Info("turn timeout: auto-forfeit", "match", id, "user", user, "winner", saved.Winner)
}

func (s *Service) loadParticipant(ctx context.Context, id match.ID, user match.UserID) (match.Match, error) {
	m, err := s.repo.GetMatchByID(ctx, id)
	if err != nil {
		return match.Match{}, err
	}
	if m == nil {
		return match.Match{}, notFound(id)
	}
	if !m.IsParticipant(user) {
		return match.Match{}, apperrors.New(apperrors.CodeUserNotInThisMatch,
			fmt.Sprintf("user %d is not in match %s", user, id))
	}
	return *m, nil
}

func notFound(id match.ID) error {
	return apperrors.WithMetadata(apperrors.CodeMatchNotFound,
		fmt.Sprintf("match %s not found", id),
		map[string]string{"match_id": id.String()})
}

func notWaiting(m match.Match) error {
	return apperrors.WithMetadata(apperrors.CodeMatchNotInWaitingState,
		fmt.Sprintf("match %s is %s", m.ID, m.State()),
		map[string]string{"state": m.State().String()})
}

func versionMismatch(m match.Match, want int64) error {
	return apperrors.WithMetadata(apperrors.CodeVersionMismatch,
		fmt.Sprintf("match %s is at version %d, not %d", m.ID, m.Version, want),
		map[string]string{"version": fmt.Sprint(m.Version)})
}
