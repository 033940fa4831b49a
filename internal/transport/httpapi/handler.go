// Package httpapi exposes the match service as a JSON HTTP API and streams
// match notifications over WebSocket. Callers identify themselves with the
// X-User-ID header.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/turn-arena/internal/board"
	apperrors "github.com/vovakirdan/turn-arena/internal/errors"
	"github.com/vovakirdan/turn-arena/internal/match"
	"github.com/vovakirdan/turn-arena/internal/multiplayer"
)

// UserHeader carries the caller's user id.
const UserHeader = "X-User-ID"

// MatchService is the part of multiplayer.Service the API drives.
type MatchService interface {
	EnterMatch(ctx context.Context, user match.UserID, t board.MatchType) (match.Match, error)
	PlayMove(ctx context.Context, id match.ID, user match.UserID, mv board.Move, expectedVersion int64) (match.Match, error)
	Forfeit(ctx context.Context, id match.ID, user match.UserID) (match.Match, error)
	CancelSearch(ctx context.Context, user match.UserID, id match.ID) (multiplayer.CancelConfirmation, error)
	GetMatch(ctx context.Context, id match.ID) (match.Match, error)
	GetMatchAtVersion(ctx context.Context, id match.ID, minVersion int64) (match.Match, error)
	Statistics(ctx context.Context, user match.UserID) ([]multiplayer.Statistics, error)
}

// SessionRegistrar tracks the notification sessions of connected users.
type SessionRegistrar interface {
	Register(user match.UserID, session multiplayer.SessionHandle)
	Unregister(user match.UserID, id multiplayer.SessionID)
}

// Handler serves the HTTP API.
type Handler struct {
	service MatchService
	hub     SessionRegistrar
	logger  *log.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewHandler creates a new handler.
func NewHandler(service MatchService, hub SessionRegistrar, logger *log.Logger) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// RegisterRoutes sets up the routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/match-types", h.handleMatchTypes)
	mux.HandleFunc("POST /api/matches", h.handleEnterMatch)
	mux.HandleFunc("GET /api/matches/{id}", h.handleGetMatch)
	mux.HandleFunc("POST /api/matches/{id}/moves", h.handlePlayMove)
	mux.HandleFunc("POST /api/matches/{id}/forfeit", h.handleForfeit)
	mux.HandleFunc("DELETE /api/matches/{id}", h.handleCancelSearch)
	mux.HandleFunc("GET /api/users/{id}/statistics", h.handleStatistics)
	mux.HandleFunc("GET /ws", h.handleWebSocket)
}

// Routes returns a mux with every route registered.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

// Close ends every open WebSocket stream.
func (h *Handler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *Handler) handleMatchTypes(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, board.Types())
}

type enterMatchRequest struct {
	MatchType string `json:"match_type"`
}

func (h *Handler) handleEnterMatch(w http.ResponseWriter, r *http.Request) {
	user, err := callerID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req enterMatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	t, err := board.ParseMatchType(req.MatchType)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	m, err := h.service.EnterMatch(r.Context(), user, t)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	status := http.StatusOK
	if m.State() == match.StateWaiting && m.Version == 1 {
		status = http.StatusCreated
	}
	h.respondJSON(w, status, newMatchView(m))
}

func (h *Handler) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	id, err := match.ParseID(r.PathValue("id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var m match.Match
	if raw := r.URL.Query().Get("min_version"); raw != "" {
		minVersion, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			h.respondError(w, r, apperrors.New(apperrors.CodeInvalidArgument, "min_version must be an integer"))
			return
		}
		m, err = h.service.GetMatchAtVersion(r.Context(), id, minVersion)
	} else {
		m, err = h.service.GetMatch(r.Context(), id)
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, newMatchView(m))
}

type playMoveRequest struct {
	Player          string `json:"player"` // Defaults to the caller's side
	Square          string `json:"square"`
	ExpectedVersion int64  `json:"expected_version"`
}

func (h *Handler) handlePlayMove(w http.ResponseWriter, r *http.Request) {
	user, err := callerID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := match.ParseID(r.PathValue("id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req playMoveRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	current, err := h.service.GetMatch(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.Player == "" {
		side, err := current.PlayerType(user)
		if err != nil {
			h.respondError(w, r, apperrors.New(apperrors.CodeUserNotInThisMatch, err.Error()))
			return
		}
		req.Player = side.String()
	}
	mv, err := board.ParseMove(current.Type, req.Player, req.Square)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	m, err := h.service.PlayMove(r.Context(), id, user, mv, req.ExpectedVersion)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, newMatchView(m))
}

func (h *Handler) handleForfeit(w http.ResponseWriter, r *http.Request) {
	user, err := callerID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := match.ParseID(r.PathValue("id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	m, err := h.service.Forfeit(r.Context(), id, user)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, newMatchView(m))
}

func (h *Handler) handleCancelSearch(w http.ResponseWriter, r *http.Request) {
	user, err := callerID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := match.ParseID(r.PathValue("id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	conf, err := h.service.CancelSearch(r.Context(), user, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, conf)
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	user, err := match.ParseUserID(r.PathValue("id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	stats, err := h.service.Statistics(r.Context(), user)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if stats == nil {
		stats = []multiplayer.Statistics{}
	}
	h.respondJSON(w, http.StatusOK, stats)
}

func callerID(r *http.Request) (match.UserID, error) {
	raw := r.Header.Get(UserHeader)
	if raw == "" {
		return 0, apperrors.New(apperrors.CodeInvalidArgument, "missing "+UserHeader+" header")
	}
	return match.ParseUserID(raw)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid request body", err)
	}
	return nil
}
