package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/c4search/internal/config"
	"github.com/iamasit07/c4search/internal/repository/postgres"
	"github.com/iamasit07/c4search/internal/service/analysis"
	"github.com/iamasit07/c4search/internal/service/game"
	"github.com/rs/zerolog"
)

var testEngine = config.EngineConfig{MaxDepth: 6, TTSize: 10000, DefaultAlgorithm: "alphabeta"}

type fakeGames struct {
	games []postgres.GameRecord
	err   error
}

func (f *fakeGames) GetRecentGames(_ context.Context, limit int) ([]postgres.GameRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.games[:min(limit, len(f.games))], nil
}

func (f *fakeGames) GetGameByID(_ context.Context, id string) (*postgres.GameRecord, error) {
	for _, g := range f.games {
		if g.GameID == id {
			return &g, nil
		}
	}
	return nil, f.err
}

type fakeBenchStore struct {
	runID string
	n     int
}

func (f *fakeBenchStore) SaveResults(_ context.Context, runID string, records []postgres.BenchRecord) error {
	f.runID, f.n = runID, len(records)
	return nil
}

func newRouter(t *testing.T, games GameStore, store BenchStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zerolog.Nop()

	moves := NewMoveHandler(analysis.NewService(testEngine, nil, log), log)
	history := NewHistoryHandler(games, log)
	watch := NewWatchHandler(game.NewSessionManager(nil, testEngine, 0, log))
	benchH := NewBenchHandler(store, testEngine.TTSize, log)

	r := gin.New()
	r.GET("/api/health", Health)
	r.POST("/api/move", moves.BestMove)
	r.GET("/api/games", history.GetHistory)
	r.GET("/api/games/:id", history.GetGameDetails)
	r.GET("/api/live", watch.GetLiveGames)
	r.POST("/api/bench", benchH.Run)
	return r
}

func request(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := request(newRouter(t, nil, nil), http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"ok"`)) {
		t.Fatalf("health: %d %s", w.Code, w.Body)
	}
}

func TestBestMove(t *testing.T) {
	r := newRouter(t, nil, nil)

	w := request(r, http.MethodPost, "/api/move", map[string]any{"moves": "112233", "depth": 3})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	var res analysis.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Column != 3 || res.Algorithm != "alphabeta" || res.Nodes == 0 {
		t.Fatalf("unexpected result %+v", res)
	}

	tests := []struct {
		name string
		body any
	}{
		{"bad moves", map[string]any{"moves": "44x"}},
		{"too deep", map[string]any{"depth": 99}},
		{"unknown algorithm", map[string]any{"algorithm": "negamax"}},
		{"finished game", map[string]any{"moves": "1212121"}},
		{"short grid", map[string]any{"grid": [][]int{{0}}}},
		{"not json", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := request(r, http.MethodPost, "/api/move", tt.body); w.Code != http.StatusBadRequest {
				t.Fatalf("got %d: %s", w.Code, w.Body)
			}
		})
	}
}

func TestHistory(t *testing.T) {
	games := &fakeGames{games: []postgres.GameRecord{
		{GameID: "a", Winner: "ada", FinishedAt: time.Now()},
		{GameID: "b", Winner: "Bob", FinishedAt: time.Now()},
	}}
	r := newRouter(t, games, nil)

	w := request(r, http.MethodGet, "/api/games?limit=1", nil)
	var list []postgres.GameRecord
	json.Unmarshal(w.Body.Bytes(), &list)
	if w.Code != http.StatusOK || len(list) != 1 || list[0].GameID != "a" {
		t.Fatalf("history: %d %s", w.Code, w.Body)
	}
	if w := request(r, http.MethodGet, "/api/games?limit=0", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("limit 0: %d", w.Code)
	}
	if w := request(r, http.MethodGet, "/api/games/b", nil); w.Code != http.StatusOK {
		t.Fatalf("details: %d", w.Code)
	}
	if w := request(r, http.MethodGet, "/api/games/zzz", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing game: %d", w.Code)
	}

	games.err = errors.New("db down")
	if w := request(r, http.MethodGet, "/api/games", nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("db error: %d", w.Code)
	}

	noDB := newRouter(t, nil, nil)
	if w := request(noDB, http.MethodGet, "/api/games", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("without store: %d", w.Code)
	}
}

func TestLiveGamesEmpty(t *testing.T) {
	w := request(newRouter(t, nil, nil), http.MethodGet, "/api/live", nil)
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("live: %d %s", w.Code, w.Body)
	}
}

func TestBench(t *testing.T) {
	store := &fakeBenchStore{}
	r := newRouter(t, nil, store)

	w := request(r, http.MethodPost, "/api/bench", map[string]any{
		"states":     []string{"4453", "22"},
		"algorithms": []string{"minimax", "alphabeta"},
		"depths":     []int{2, 3},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	var resp benchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 8 || len(resp.Summary) != 4 || !resp.Saved {
		t.Fatalf("unexpected response %+v", resp)
	}
	if store.runID != resp.RunID || store.n != 8 {
		t.Fatalf("store got run %q with %d records", store.runID, store.n)
	}

	bad := []map[string]any{
		{"states": []string{}, "depths": []int{2}},
		{"states": []string{"4"}, "depths": []int{20}},
		{"states": []string{"4"}, "depths": []int{2}, "algorithms": []string{"negamax"}},
		{"states": []string{"48"}, "depths": []int{2}},
		{"states": []string{"4"}, "depths": []int{}},
	}
	for _, body := range bad {
		if w := request(r, http.MethodPost, "/api/bench", body); w.Code != http.StatusBadRequest {
			t.Fatalf("%v: got %d %s", body, w.Code, w.Body)
		}
	}
}
