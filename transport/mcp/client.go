package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/guessgame/game/engine"
	"github.com/wricardo/mcp-training/guessgame/game/history"
	"github.com/wricardo/mcp-training/guessgame/game/service"
	"github.com/wricardo/mcp-training/guessgame/obslog"
	"go.uber.org/zap"
)

// ServerName and ServerVersion identify the MCP server to clients
const (
	ServerName    = "Number Guessing Game"
	ServerVersion = "1.0.0"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Number Guessing Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Find the secret number in as few guesses as possible.

AVAILABLE TOOLS:
- start_game: Start a game with the configured range
- guess: Submit a number for a game
- get_game: Show a game's status and guess history
- get_config: Show the range, hint frequency and messages
- save_match: Record a finished game in the match history
- game_instructions: Rules, hints and strategy`),
	)

	c.registerTools()
}

func gameIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Game ID returned by start_game",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start a new game. The secret is drawn from the configured range.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "guess",
		Description: "Guess the secret number. Returns lower/higher/correct, and a hint every few misses.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"number": map[string]interface{}{
					"type":        "integer",
					"description": "The guess, within the game's range",
				},
			},
			Required: []string{"game_id", "number"},
		},
	}, c.handleGuess)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_game",
		Description: "Get the status and guess history of a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
			},
			Required: []string{"game_id"},
		},
	}, c.handleGetGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_config",
		Description: "Get the current game configuration",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGetConfig)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "save_match",
		Description: "Record a finished game in the match history, with an optional difficulty rating",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"difficulty_rating": map[string]interface{}{
					"type":        "integer",
					"description": "How hard the game felt, 1 (easy) to 5 (hard)",
					"minimum":     history.MinRating,
					"maximum":     history.MaxRating,
				},
			},
			Required: []string{"game_id"},
		},
	}, c.handleSaveMatch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the game, how hints work and a suggested strategy",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeHTTP answers single JSON-RPC messages posted to /mcp
func (c *Client) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := c.mcpServer.HandleMessage(r.Context(), body)
	if response == nil {
		// Notifications have no reply
		w.WriteHeader(http.StatusAccepted)
		return
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(responseData)
}

// APIError is a non-2xx answer from the REST API
type APIError struct {
	Status  int
	Message string
	Min     *int
	Max     *int
}

func (e *APIError) Error() string {
	if e.Min != nil && e.Max != nil {
		return fmt.Sprintf("%s (valid range %d-%d)", e.Message, *e.Min, *e.Max)
	}
	return e.Message
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
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
		var errResp struct {
			Error string `json:"error"`
			Min   *int   `json:"min"`
			Max   *int   `json:"max"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		apiErr := &APIError{Status: resp.StatusCode, Message: errResp.Error, Min: errResp.Min, Max: errResp.Max}
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("API error: %d", resp.StatusCode)
		}
		obslog.L().Debug("api call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return apiErr
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func gamePath(gameID string, suffix string) string {
	return "/api/games/" + url.PathEscape(gameID) + suffix
}

// intArg reads an integer argument. JSON numbers arrive as float64 and must
// be whole.
func intArg(args map[string]interface{}, key string) (int, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, true, fmt.Errorf("%s must be a whole number", key)
		}
		return int(v), true, nil
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, true, fmt.Errorf("%s must be a whole number", key)
		}
		return int(n), true, nil
	default:
		return 0, true, fmt.Errorf("%s must be a number", key)
	}
}

// Tool handlers

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var info service.GameInfo
	if err := c.apiCall(ctx, "POST", "/api/games", nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Started game: %s\nRange: %d-%d\nUse the guess tool with this game_id.\n",
		info.ID, info.MinRange, info.MaxRange)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGuess(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	gameID, _ := args["game_id"].(string)
	if gameID == "" {
		return mcp.NewToolResultError("game_id is required"), nil
	}
	number, ok, err := intArg(args, "number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError("number is required"), nil
	}

	var result service.GuessResult
	if err := c.apiCall(ctx, "POST", gamePath(gameID, "/guess"), map[string]int{"guess": number}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGuessResult(number, &result)), nil
}

func (c *Client) handleGetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID := request.GetString("game_id", "")
	if gameID == "" {
		return mcp.NewToolResultError("game_id is required"), nil
	}

	var info service.GameInfo
	if err := c.apiCall(ctx, "GET", gamePath(gameID, ""), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameInfo(&info)), nil
}

func (c *Client) handleGetConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var cfg engine.GameConfig
	if err := c.apiCall(ctx, "GET", "/api/config", nil, &cfg); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatConfig(&cfg)), nil
}

func (c *Client) handleSaveMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	gameID, _ := args["game_id"].(string)
	if gameID == "" {
		return mcp.NewToolResultError("game_id is required"), nil
	}

	body := service.SaveMatchRequest{GameID: gameID}
	rating, ok, err := intArg(args, "difficulty_rating")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		body.DifficultyRating = &rating
	}

	var rec history.MatchRecord
	if err := c.apiCall(ctx, "POST", "/api/matches", body, &rec); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMatchRecord(&rec)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	b.WriteString(`Number Guessing Game - Instructions

OBJECTIVE:
A secret whole number is drawn when a game starts. Find it with as few guesses as possible.

HOW TO PLAY:
1. start_game returns a game_id and the range (both bounds inclusive).
2. guess with game_id and number. Each answer is one of:
   • lower   - the secret is below your guess
   • higher  - the secret is above your guess
   • correct - you won; the game is finished
3. Guesses outside the range are rejected and do not count as attempts.
4. A finished game accepts no more guesses. Use save_match to record it.

HINTS:
Every few misses (see hint_trigger_count) a hint is added to the answer:
• The first hint tells whether the secret is even or odd.
• Later hints give the narrowest interval consistent with all your guesses.

STRATEGY:
Always guess the middle of the interval that is still possible. This halves
the candidates each time and needs at most ceil(log2(range size)) guesses.
`)

	var cfg engine.GameConfig
	if err := c.apiCall(ctx, "GET", "/api/config", nil, &cfg); err == nil {
		b.WriteString("\nCURRENT CONFIGURATION:\n")
		b.WriteString(formatConfig(&cfg))
	}

	return mcp.NewToolResultText(b.String()), nil
}

// Formatting helpers

func formatGuessResult(number int, result *service.GuessResult) string {
	if result.Result == nil {
		return fmt.Sprintf("Game %s: no result returned", result.GameID)
	}
	r := result.Result

	var b strings.Builder
	fmt.Fprintf(&b, "Game %s, attempt %d: %d is %s\n", result.GameID, r.AttemptCount, number, r.Outcome)
	fmt.Fprintf(&b, "%s\n", r.Message)

	if r.Hint != nil {
		fmt.Fprintf(&b, "%s\n", r.Hint.Message)
	}
	fmt.Fprintf(&b, "Position: %d%% of %d-%d\n", r.Range.PositionPercent, r.Range.Min, r.Range.Max)

	if r.IsCorrect {
		b.WriteString("Game finished.")
		if r.ElapsedSeconds != nil {
			fmt.Fprintf(&b, " Time: %.1fs.", *r.ElapsedSeconds)
		}
		b.WriteString(" Use save_match to record it.\n")
	}
	return b.String()
}

func formatGameInfo(info *service.GameInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Game: %s\nStatus: %s\nRange: %d-%d\nAttempts: %d\nHints given: %d\n",
		info.ID, info.Status, info.MinRange, info.MaxRange, info.AttemptCount, info.HintsGiven)
	fmt.Fprintf(&b, "Started: %s\n", info.StartedAt.Format("2006-01-02 15:04:05"))
	if info.FinishedAt != nil {
		fmt.Fprintf(&b, "Finished: %s\n", info.FinishedAt.Format("2006-01-02 15:04:05"))
	}

	if len(info.History) > 0 {
		b.WriteString("\nGuesses:\n")
		for i, rec := range info.History {
			fmt.Fprintf(&b, "%d. %d -> %s\n", i+1, rec.Guess, rec.Outcome)
		}
	}
	return b.String()
}

func formatConfig(cfg *engine.GameConfig) string {
	msg := func(v, def string) string {
		if v == "" {
			return def + " (default)"
		}
		return v
	}
	return fmt.Sprintf("Range: %d-%d\nHint every %d misses\nMessages:\n  lower:  %s\n  higher: %s\n  equal:  %s\n",
		cfg.MinRange, cfg.MaxRange, cfg.HintTriggerCount,
		msg(cfg.Messages.Lower, engine.DefaultLowerMessage),
		msg(cfg.Messages.Higher, engine.DefaultHigherMessage),
		msg(cfg.Messages.Equal, engine.DefaultEqualMessage))
}

func formatMatchRecord(rec *history.MatchRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Match saved: %s\nGame: %s\nAttempts: %d\nHints: %d\nRange: %d-%d\nTime: %.1fs\n",
		rec.HistoryID, rec.GameID, rec.Attempts, rec.HintsGiven, rec.MinRange, rec.MaxRange,
		float64(rec.ElapsedMs)/1000)
	if rec.DifficultyRating != nil {
		fmt.Fprintf(&b, "Difficulty: %d/%d\n", *rec.DifficultyRating, history.MaxRating)
	}
	return b.String()
}
