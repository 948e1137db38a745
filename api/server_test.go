package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mazeveil/echomaze/game/config"
	"github.com/mazeveil/echomaze/game/engine"
	"github.com/mazeveil/echomaze/game/service"
	"github.com/mazeveil/echomaze/game/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := service.NewGameService(session.NewManager(), configs, nil)
	return NewServer(svc, nil)
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, srv *Server) string {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/sessions", map[string]string{})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status %d, body %s", rec.Code, rec.Body.String())
	}
	var info service.SessionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	return info.ID
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestCreateSession(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/sessions", map[string]string{})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var info service.SessionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.ID == "" {
		t.Error("created session has no ID")
	}
	if info.GameState == nil || info.GameState.Status != engine.StatusLore {
		t.Errorf("new session state = %+v, want lore", info.GameState)
	}
}

func TestCreateSession_UnknownConfig(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/sessions", map[string]string{"config_id": "ghost"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/sessions/none", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListSessions(t *testing.T) {
	srv := newTestServer(t)
	createSession(t, srv)
	createSession(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/sessions?limit=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Count    int                    `json:"count"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || len(resp.Sessions) != 1 {
		t.Errorf("limit ignored: count=%d len=%d", resp.Count, len(resp.Sessions))
	}
}

func TestDeleteSession(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	rec := doJSON(t, srv, http.MethodDelete, "/api/sessions/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/sessions/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestGameOperationFlow(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	// Rolling on the lore screen is rejected but not an HTTP error.
	rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/sessions/%s/roll", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("roll status = %d", rec.Code)
	}
	var result service.OperationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Accepted {
		t.Error("roll accepted before the game started")
	}

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/sessions/%s/start", id), nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if !result.Accepted || result.GameState.Status != engine.StatusPlaying {
		t.Fatalf("start result = %+v", result)
	}

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/sessions/%s/roll", id), nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if !result.Accepted || result.GameState.DiceResult < 1 {
		t.Fatalf("roll result = %+v", result)
	}
	if result.GameState.Phase != engine.PhaseMoving {
		t.Errorf("phase after roll = %v, want moving", result.GameState.Phase)
	}
}

func TestMove_OutOfGridIsBadRequest(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/sessions/%s/start", id), nil)
	doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/sessions/%s/roll", id), nil)

	rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/sessions/%s/move", id),
		map[string]int{"row": -1, "col": 0})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMove_UnknownSession(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/sessions/none/move",
		map[string]int{"row": 1, "col": 1})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRestart(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/sessions/%s/restart", id), nil)
	var result service.OperationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if !result.Accepted || result.GameState.Status != engine.StatusPlaying {
		t.Errorf("restart result = %+v", result)
	}
}

func TestConfigEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/configs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list configs status = %d", rec.Code)
	}
	var infos []*service.ConfigInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatal(err)
	}
	if len(infos) == 0 {
		t.Fatal("no configs listed")
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/configs/default", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get default config status = %d", rec.Code)
	}

	custom := engine.DefaultConfig()
	custom.Name = "tight"
	custom.GridWidth = 13
	rec = doJSON(t, srv, http.MethodPost, "/api/configs", custom)
	if rec.Code != http.StatusCreated {
		t.Errorf("create config status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/configs/tight", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get saved config status = %d", rec.Code)
	}
}

func TestCreateConfig_RequiresName(t *testing.T) {
	srv := newTestServer(t)

	cfg := engine.DefaultConfig()
	cfg.Name = ""
	rec := doJSON(t, srv, http.MethodPost, "/api/configs", cfg)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWebSocket_DisabledWithoutHub(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/ws?session=ab12", nil)
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rec.Code)
	}
}
