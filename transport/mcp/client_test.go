package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mazeveil/echomaze/game/engine"
	"github.com/mazeveil/echomaze/game/service"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client.baseURL != baseURL {
		t.Errorf("baseURL = %s, want %s", client.baseURL, baseURL)
	}
	if client.httpClient == nil {
		t.Error("HTTP client not initialized")
	}
	if client.mcpServer == nil {
		t.Error("MCP server not initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	expected := map[string]interface{}{
		"id":          "ab12",
		"config_name": "Default",
	}

	var gotPath, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expected)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var result map[string]interface{}
	if err := client.apiCall("GET", "/api/sessions/ab12", nil, &result); err != nil {
		t.Fatalf("apiCall: %v", err)
	}
	if gotMethod != "GET" || gotPath != "/api/sessions/ab12" {
		t.Errorf("request was %s %s", gotMethod, gotPath)
	}
	if result["id"] != "ab12" {
		t.Errorf("result = %v", result)
	}
}

func TestClient_apiCallSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api/sessions/none", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "session not found") {
		t.Errorf("error = %v, want the API's error message", err)
	}
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestHandleCreateSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/sessions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:         "cd34",
			ConfigName: "Default",
			GameState:  minimalState(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleCreateSession(context.Background(), toolRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleCreateSession: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "cd34") {
		t.Errorf("result does not mention the session ID: %s", text)
	}
}

func TestOperationHandler(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/cd34/roll" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(service.OperationResult{
			Accepted:  true,
			GameState: minimalState(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	handler := client.operationHandler("roll")
	result, err := handler(context.Background(), toolRequest(map[string]interface{}{
		"session_id": "cd34",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "✓ Accepted") {
		t.Errorf("accepted operation not reported: %s", text)
	}
}

func TestHandleMove_SendsCoordinates(t *testing.T) {
	var body map[string]int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(service.OperationResult{
			Accepted:  false,
			GameState: minimalState(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleMove(context.Background(), toolRequest(map[string]interface{}{
		"session_id": "cd34",
		"row":        float64(3),
		"col":        float64(5),
		"intent":     "probing the east corridor",
	}))
	if err != nil {
		t.Fatalf("handleMove: %v", err)
	}
	if body["row"] != 3 || body["col"] != 5 {
		t.Errorf("request body = %v, want row 3 col 5", body)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "✗ Rejected") {
		t.Errorf("rejected move not reported: %s", text)
	}
}

func TestFormatGameState(t *testing.T) {
	state := minimalState()
	state.PossibleMoves = []engine.Position{{Row: 1, Col: 2}}
	enemy := engine.Position{Row: 3, Col: 3}
	exit := engine.Position{Row: 3, Col: 1}
	state.EnemyPos = &enemy
	state.ExitPos = &exit
	state.Revealed = true
	state.EchoActive = true

	text := formatGameState(state)

	lines := strings.Split(text, "\n")
	var gridLines []string
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			gridLines = append(gridLines, line)
		}
	}
	if len(gridLines) != 5 {
		t.Fatalf("expected 5 grid rows, got %d in:\n%s", len(gridLines), text)
	}
	if gridLines[1][1] != '@' {
		t.Errorf("player marker missing: %q", gridLines[1])
	}
	if gridLines[1][2] != 'o' {
		t.Errorf("reachable marker missing: %q", gridLines[1])
	}
	if gridLines[3][3] != 'W' {
		t.Errorf("warden marker missing: %q", gridLines[3])
	}
	if gridLines[3][1] != 'X' {
		t.Errorf("exit marker missing: %q", gridLines[3])
	}
	if !strings.Contains(text, "Echo active") {
		t.Error("echo banner missing")
	}
}

func TestFormatGameState_Nil(t *testing.T) {
	if got := formatGameState(nil); got != "No game state available" {
		t.Errorf("formatGameState(nil) = %q", got)
	}
}

// minimalState builds a small fully-walled state with an open 3x3 interior.
func minimalState() *engine.GameState {
	grid := engine.NewGrid(5, 5)
	for row := 1; row <= 3; row++ {
		for col := 1; col <= 3; col++ {
			grid[row][col] = engine.PathCell
		}
	}
	return &engine.GameState{
		Grid:       grid,
		PlayerPos:  engine.Position{Row: 1, Col: 1},
		Turn:       engine.TurnPlayer,
		Phase:      engine.PhaseRolling,
		Status:     engine.StatusPlaying,
		ConfigName: "Default",
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return text.Text
}
