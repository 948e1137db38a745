// Package mcp exposes the game to MCP-speaking agents. The client is a thin
// proxy: every tool call turns into a REST request against the API server,
// so agents and browsers always see the same state.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mazeveil/echomaze/game/engine"
	"github.com/mazeveil/echomaze/game/service"
)

// Client is a thin MCP client that proxies to the REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API.
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools.
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Echomaze",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Echomaze - MCP Interface

A turn-based chase through a procedurally generated maze. You are the
runner (@). Somewhere in the dark a warden hunts you, and somewhere an
exit waits. Both stay hidden until you spend an echo to reveal them.

AVAILABLE TOOLS:
- create_session: Create a new game session
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Get the current game state
- start_game: Leave the intro screen and begin playing
- restart_game: Regenerate the maze and start over
- roll_dice: Roll for movement range on your turn
- move: Move to a reachable cell (row/col) - requires intent explanation
- pass_turn: End your turn without moving
- activate_echo: Spend a full echo charge to reveal the warden and exit
- game_instructions: Get comprehensive game instructions and rules

NOTE: The 'intent' parameter on the move tool serves as rubber duck
debugging - explain your reasoning!`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools.
func (c *Client) registerTools() {
	sessionIDProp := map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}

	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the config to use (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Leave the intro screen and begin playing",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, c.operationHandler("start"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_game",
		Description: "Regenerate the maze and start a fresh game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, c.operationHandler("restart"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "roll_dice",
		Description: "Roll the die to determine your movement range this turn",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, c.operationHandler("roll"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move to a reachable cell. Only cells listed in possible_moves are accepted.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Destination row (0-based)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Destination column (0-based)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "pass_turn",
		Description: "End your turn without moving (banks an echo charge)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, c.operationHandler("pass"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "activate_echo",
		Description: "Spend a full echo charge to reveal the warden and the exit",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, c.operationHandler("echo"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall issues one request against the REST API and decodes the response.
func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

// operationHandler builds a handler for the body-less game operations, which
// all share the same request and response shape.
func (c *Client) operationHandler(op string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})
		sessionID, _ := args["session_id"].(string)

		var result service.OperationResult
		if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/%s", sessionID, op), nil, &result); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(formatOperationResult(&result)), nil
	}
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	row, _ := args["row"].(float64)
	col, _ := args["col"].(float64)
	intent, _ := args["intent"].(string)

	// Intent serves as rubber duck debugging - no further processing needed.
	_ = intent

	body := map[string]int{
		"row": int(row),
		"col": int(col),
	}

	var result service.OperationResult
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/move", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatOperationResult(&result)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall("GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Grid: %dx%d, Dice: d%d\n\n",
			config.Name, config.ConfigID, config.Description,
			config.GridWidth, config.GridHeight, config.DiceSides)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Echomaze - Complete Instructions

GAME OBJECTIVE:
Escape the maze through the hidden exit before the warden catches you.

GAME MECHANICS:
• The game is turn-based. On your turn, roll the die, then either move to
  one of the highlighted reachable cells or pass.
• After your turn ends, the warden takes one step toward you along the
  shortest corridor path.
• The warden and the exit are invisible. Each turn you do not spend an
  echo banks one charge; at full charge you may activate the echo to
  reveal both until you next move.
• You lose if the warden reaches your cell, or ends its step adjacent to
  you (it hears you). You win by stepping onto the exit.

GRID LEGEND:
• @ - You (the runner)
• # - Wall (impassable)
• . - Corridor (passable)
• o - Reachable this turn (after rolling)
• W - Warden (only visible during an echo or on its turn)
• X - Exit (only visible during an echo)

TURN FLOW:
1. roll_dice - your movement range for this turn
2. move (row, col) - any cell marked reachable, or pass_turn
3. The warden moves; watch the state update
4. Repeat

STRATEGY NOTES:
• Distance matters twice: the warden loses you if you stay far away, but
  the exit could be anywhere. Bank echo charges early.
• Moving cancels an active echo. Memorize the exit's position before you
  commit to a route.
• Passing still banks a charge, and sometimes standing still is safer
  than closing the gap toward an unseen hunter.
• Coordinates are (row, col), 0-based, row 0 at the top.

SESSION MANAGEMENT:
• Multiple sessions can run simultaneously, each with its own maze.
• Each session has a unique 4-character ID.
• restart_game regenerates the maze from scratch at any time.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatOperationResult(result *service.OperationResult) string {
	var b strings.Builder
	if result.Accepted {
		b.WriteString("✓ Accepted\n")
	} else {
		b.WriteString("✗ Rejected (not valid in the current state)\n")
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Status: %s | Turn: %s | Phase: %s\n", state.Status, state.Turn, state.Phase)
	fmt.Fprintf(&b, "Position: (%d,%d) | Dice: %d | Echo: %d\n",
		state.PlayerPos.Row, state.PlayerPos.Col, state.DiceResult, state.EchoCharge)
	if state.EchoActive {
		b.WriteString("Echo active: the warden and the exit are revealed\n")
	}
	b.WriteString("\n")

	reachable := make(map[engine.Position]bool, len(state.PossibleMoves))
	for _, p := range state.PossibleMoves {
		reachable[p] = true
	}

	for row := range state.Grid {
		for col := range state.Grid[row] {
			pos := engine.Position{Row: row, Col: col}
			switch {
			case pos == state.PlayerPos:
				b.WriteString("@")
			case state.EnemyPos != nil && pos == *state.EnemyPos:
				b.WriteString("W")
			case state.ExitPos != nil && pos == *state.ExitPos:
				b.WriteString("X")
			case reachable[pos]:
				b.WriteString("o")
			case state.Grid[row][col] == engine.Wall:
				b.WriteString("#")
			default:
				b.WriteString(".")
			}
		}
		b.WriteString("\n")
	}

	switch state.Status {
	case engine.StatusWin:
		b.WriteString("\n🎉 YOU ESCAPED!")
	case engine.StatusLose:
		b.WriteString("\n💀 GAME OVER")
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}

	return b.String()
}
