package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	apperrors "github.com/vovakirdan/turn-arena/internal/errors"
	_ "github.com/vovakirdan/turn-arena/internal/games/reversi"
	_ "github.com/vovakirdan/turn-arena/internal/games/tictactoe"
	"github.com/vovakirdan/turn-arena/internal/match"
	"github.com/vovakirdan/turn-arena/internal/multiplayer"
	"github.com/vovakirdan/turn-arena/internal/storage"
)

type zeroRand struct{}

func (zeroRand) IntN(int) int { return 0 }

type apiFixture struct {
	handler *Handler
	server  *httptest.Server
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store, err := storage.Open(storage.MemoryPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var ids atomic.Int64
	logger := log.New(io.Discard)
	hub := multiplayer.NewHub()
	svc := multiplayer.NewService(multiplayer.DefaultServiceConfig(), store, hub, logger,
		multiplayer.WithRandomizer(zeroRand{}),
		multiplayer.WithIDGenerator(func() match.ID { return match.ID(ids.Add(1)) }),
	)
	t.Cleanup(svc.Stop)

	h := NewHandler(svc, hub, logger)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})
	return &apiFixture{handler: h, server: srv}
}

func (f *apiFixture) do(t *testing.T, method, path string, user int, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, f.server.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if user > 0 {
		req.Header.Set(UserHeader, match.UserID(user).String())
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("bad JSON %q: %v", raw, err)
		}
	}
	return resp.StatusCode, out
}

func TestMatchFlow(t *testing.T) {
	f := newAPI(t)

	status, body := f.do(t, http.MethodPost, "/api/matches", 1, map[string]string{"match_type": "tictactoe"})
	if status != http.StatusCreated || body["state"] != "waiting" {
		t.Fatalf("enter(1) = %d %v", status, body)
	}

	status, body = f.do(t, http.MethodPost, "/api/matches", 2, map[string]string{"match_type": "TicTacToe"})
	if status != http.StatusOK || body["state"] != "running" || body["version"] != float64(2) {
		t.Fatalf("enter(2) = %d %v", status, body)
	}
	if body["current_user"] != float64(1) {
		t.Errorf("current_user = %v, want 1", body["current_user"])
	}

	status, body = f.do(t, http.MethodPost, "/api/matches/1/moves", 1,
		map[string]any{"player": "X", "square": "3a", "expected_version": 2})
	if status != http.StatusOK || body["version"] != float64(3) {
		t.Fatalf("move = %d %v", status, body)
	}

	status, body = f.do(t, http.MethodPost, "/api/matches/1/moves", 2,
		map[string]any{"square": "2b", "expected_version": 2})
	if status != http.StatusConflict || body["code"] != string(apperrors.CodeVersionMismatch) {
		t.Errorf("stale move = %d %v, want 409 VERSION_MISMATCH", status, body)
	}

	// player defaults to the caller's side
	status, body = f.do(t, http.MethodPost, "/api/matches/1/moves", 2,
		map[string]any{"square": "2b", "expected_version": 3})
	if status != http.StatusOK || body["version"] != float64(4) {
		t.Fatalf("move(2) = %d %v", status, body)
	}

	status, body = f.do(t, http.MethodGet, "/api/matches/1", 0, nil)
	if status != http.StatusOK {
		t.Fatalf("get = %d %v", status, body)
	}
	rows := body["board"].(map[string]any)["rows"].([]any)
	if rows[0] != "X.." || rows[1] != ".O." {
		t.Errorf("rows = %v", rows)
	}
}

func TestErrors(t *testing.T) {
	f := newAPI(t)
	f.do(t, http.MethodPost, "/api/matches", 1, map[string]string{"match_type": "tictactoe"})

	tests := []struct {
		name   string
		method string
		path   string
		user   int
		body   any
		status int
		code   apperrors.Code
	}{
		{"no caller", http.MethodPost, "/api/matches", 0, map[string]string{"match_type": "tictactoe"}, 400, apperrors.CodeInvalidArgument},
		{"unknown type", http.MethodPost, "/api/matches", 3, map[string]string{"match_type": "chess"}, 400, apperrors.CodeUnknownMatchType},
		{"unknown field", http.MethodPost, "/api/matches", 3, map[string]string{"game": "tictactoe"}, 400, apperrors.CodeInvalidArgument},
		{"already in match", http.MethodPost, "/api/matches", 1, map[string]string{"match_type": "reversi"}, 409, apperrors.CodeUserAlreadyInMatch},
		{"missing match", http.MethodGet, "/api/matches/77", 0, nil, 404, apperrors.CodeMatchNotFound},
		{"bad id", http.MethodGet, "/api/matches/abc", 0, nil, 400, apperrors.CodeInvalidArgument},
		{"ahead of store", http.MethodGet, "/api/matches/1?min_version=5", 0, nil, 409, apperrors.CodeVersionMismatch},
		{"play while waiting", http.MethodPost, "/api/matches/1/moves", 1, map[string]any{"player": "X", "square": "3a", "expected_version": 1}, 409, apperrors.CodeInvalidState},
		{"stranger move", http.MethodPost, "/api/matches/1/moves", 5, map[string]any{"square": "3a", "expected_version": 1}, 403, apperrors.CodeUserNotInThisMatch},
		{"bad square", http.MethodPost, "/api/matches/1/moves", 1, map[string]any{"player": "X", "square": "9z", "expected_version": 1}, 400, apperrors.CodeInvalidArgument},
		{"forfeit waiting", http.MethodPost, "/api/matches/1/forfeit", 1, nil, 400, apperrors.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := f.do(t, tt.method, tt.path, tt.user, tt.body)
			if status != tt.status || body["code"] != string(tt.code) {
				t.Errorf("%s %s = %d %v, want %d %s", tt.method, tt.path, status, body, tt.status, tt.code)
			}
		})
	}
}

func TestCancelForfeitAndStatistics(t *testing.T) {
	f := newAPI(t)

	f.do(t, http.MethodPost, "/api/matches", 1, map[string]string{"match_type": "tictactoe"})
	status, body := f.do(t, http.MethodDelete, "/api/matches/1", 1, nil)
	if status != http.StatusOK || body["match_id"] != float64(1) {
		t.Fatalf("cancel = %d %v", status, body)
	}

	f.do(t, http.MethodPost, "/api/matches", 1, map[string]string{"match_type": "tictactoe"})
	f.do(t, http.MethodPost, "/api/matches", 2, map[string]string{"match_type": "tictactoe"})

	status, body = f.do(t, http.MethodDelete, "/api/matches/2", 1, nil)
	if status != http.StatusConflict || body["code"] != string(apperrors.CodeMatchNotInWaitingState) {
		t.Errorf("cancel running = %d %v", status, body)
	}

	status, body = f.do(t, http.MethodPost, "/api/matches/2/forfeit", 2, nil)
	if status != http.StatusOK || body["state"] != "win" || body["winner"] != float64(1) {
		t.Fatalf("forfeit = %d %v", status, body)
	}

	resp, err := http.Get(f.server.URL + "/api/users/1/statistics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var stats []multiplayer.Statistics
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode statistics: %v", err)
	}
	found := false
	for _, s := range stats {
		if s.MatchType == "tictactoe" {
			found = true
			if s.GamesPlayed != 1 || s.Wins != 1 || s.WinRate != 1 {
				t.Errorf("tictactoe stats = %+v", s)
			}
		}
	}
	if !found {
		t.Errorf("statistics = %+v, want a tictactoe row", stats)
	}
}

func TestMatchTypes(t *testing.T) {
	f := newAPI(t)
	resp, err := http.Get(f.server.URL + "/api/match-types")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var types []struct {
		Type      string `json:"type"`
		Dimension int    `json:"dimension"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&types); err != nil {
		t.Fatal(err)
	}
	if len(types) != 2 || types[0].Type != "reversi" || types[1].Dimension != 3 {
		t.Errorf("match types = %+v", types)
	}
}

func TestWebSocketNotifications(t *testing.T) {
	f := newAPI(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	header := http.Header{UserHeader: []string{"1"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	defer conn.Close()

	f.do(t, http.MethodPost, "/api/matches", 1, map[string]string{"match_type": "tictactoe"})
	f.do(t, http.MethodPost, "/api/matches", 2, map[string]string{"match_type": "tictactoe"})

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var n struct {
		Kind    string `json:"kind"`
		MatchID int64  `json:"match_id"`
		Version int64  `json:"version"`
	}
	if err := conn.ReadJSON(&n); err != nil {
		t.Fatalf("ReadJSON() failed: %v", err)
	}
	if n.Kind != "opponent_joined" || n.MatchID != 1 || n.Version != 2 {
		t.Errorf("notification = %+v", n)
	}
}

func TestWebSocketRequiresCaller(t *testing.T) {
	f := newAPI(t)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.DialContext(context.Background(), url, nil)
	if err == nil {
		t.Fatal("Dial() without caller should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("handshake response = %v, want 400", resp)
	}
}
