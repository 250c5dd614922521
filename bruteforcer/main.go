// Command bruteforcer plays number guessing games against a running server
// by bisection, narrowing further whenever the server sends a hint, and
// reports how many attempts each game took.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/valyala/fasthttp"
	"github.com/wricardo/mcp-training/guessgame/game/engine"
	"github.com/wricardo/mcp-training/guessgame/game/history"
	"github.com/wricardo/mcp-training/guessgame/game/service"
	"github.com/wricardo/mcp-training/guessgame/game/strategy"
	"github.com/wricardo/mcp-training/guessgame/obslog"
	"go.uber.org/zap"
)

// Client talks to the REST API over fasthttp
type Client struct {
	baseURL string
	client  *fasthttp.Client
	timeout time.Duration
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &fasthttp.Client{
			Name:                "bruteforcer",
			MaxConnsPerHost:     16,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 30 * time.Second,
		},
		timeout: 10 * time.Second,
	}
}

// apiError is a non-2xx answer
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%d: %s", e.status, e.message)
}

func (c *Client) do(method, path string, body, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(data)
	}

	if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode() >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(resp.Body(), &errResp)
		return &apiError{status: resp.StatusCode(), message: errResp.Error}
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("parse %s response: %w", path, err)
		}
	}
	return nil
}

// StartGame creates a game on the server
func (c *Client) StartGame() (*service.GameInfo, error) {
	var info service.GameInfo
	if err := c.do(fasthttp.MethodPost, "/api/games", nil, &info); err != nil {
		return nil, fmt.Errorf("start game: %w", err)
	}
	return &info, nil
}

// Guess submits one guess
func (c *Client) Guess(gameID string, number int) (*service.GuessResult, error) {
	var result service.GuessResult
	path := "/api/games/" + url.PathEscape(gameID) + "/guess"
	if err := c.do(fasthttp.MethodPost, path, map[string]int{"guess": number}, &result); err != nil {
		return nil, fmt.Errorf("guess %d: %w", number, err)
	}
	if result.Result == nil {
		return nil, errors.New("empty guess result")
	}
	return &result, nil
}

// SaveMatch records a finished game
func (c *Client) SaveMatch(gameID string, rating *int) (*history.MatchRecord, error) {
	var rec history.MatchRecord
	body := service.SaveMatchRequest{GameID: gameID, DifficultyRating: rating}
	if err := c.do(fasthttp.MethodPost, "/api/matches", body, &rec); err != nil {
		return nil, fmt.Errorf("save match: %w", err)
	}
	return &rec, nil
}

// GameReport is the outcome of one played game
type GameReport struct {
	GameID    string
	Attempts  int
	Hints     int
	WorstCase int
	Elapsed   time.Duration
}

// playGame runs one game to completion. delay is slept between guesses.
func playGame(c *Client, delay time.Duration) (*GameReport, error) {
	start := time.Now()
	info, err := c.StartGame()
	if err != nil {
		return nil, err
	}

	logger := obslog.L().With(zap.String("game_id", info.ID))
	logger.Debug("game started", zap.Int("min_range", info.MinRange), zap.Int("max_range", info.MaxRange))

	b := strategy.NewBisect(info.MinRange, info.MaxRange)
	hints := 0
	for {
		guess, err := b.Next()
		if err != nil {
			return nil, err
		}

		result, err := c.Guess(info.ID, guess)
		if err != nil {
			return nil, err
		}
		if result.Hint != nil {
			hints++
			logger.Debug("hint received", zap.String("kind", string(result.Hint.Kind)), zap.String("message", result.Hint.Message))
		}

		if result.IsCorrect || result.Status == engine.StatusFinished {
			return &GameReport{
				GameID:    info.ID,
				Attempts:  result.AttemptCount,
				Hints:     hints,
				WorstCase: strategy.WorstCaseAttempts(info.MaxRange - info.MinRange + 1),
				Elapsed:   time.Since(start),
			}, nil
		}

		if err := b.Observe(guess, result.Outcome, result.Hint); err != nil {
			return nil, err
		}
		low, high := b.Bounds()
		logger.Debug("guess answered",
			zap.Int("guess", guess),
			zap.String("outcome", string(result.Outcome)),
			zap.Int("low", low),
			zap.Int("high", high))

		if delay > 0 {
			time.Sleep(delay)
		}
	}
}

// difficulty maps attempts against the bisection worst case onto 1-5
func difficulty(attempts, worst int) int {
	if worst <= 0 {
		return history.MinRating
	}
	rating := 1 + (attempts*(history.MaxRating-history.MinRating))/worst
	if rating > history.MaxRating {
		rating = history.MaxRating
	}
	return rating
}

func main() {
	serverURL := pflag.String("url", "http://localhost:8080", "Game server URL")
	games := pflag.IntP("games", "n", 1, "Number of games to play")
	save := pflag.Bool("save", false, "Record each finished game in the match history")
	verbose := pflag.BoolP("verbose", "v", false, "Verbose output")
	delay := pflag.Duration("delay", 0, "Delay between guesses")
	pflag.Parse()

	if *games < 1 {
		fmt.Fprintln(os.Stderr, "--games must be at least 1")
		os.Exit(2)
	}

	if err := obslog.InitFromEnv(*verbose); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer obslog.L().Sync()
	logger := obslog.L()

	logger.Info("connecting to game server", zap.String("url", *serverURL))
	client := NewClient(*serverURL)

	total := 0
	worstSeen := 0
	for i := 1; i <= *games; i++ {
		report, err := playGame(client, *delay)
		if err != nil {
			logger.Fatal("game failed", zap.Int("game", i), zap.Error(err))
		}

		total += report.Attempts
		if report.Attempts > worstSeen {
			worstSeen = report.Attempts
		}
		logger.Info("game won",
			zap.Int("game", i),
			zap.String("game_id", report.GameID),
			zap.Int("attempts", report.Attempts),
			zap.Int("hints", report.Hints),
			zap.Duration("elapsed", report.Elapsed))

		if *save {
			rating := difficulty(report.Attempts, report.WorstCase)
			if _, err := client.SaveMatch(report.GameID, &rating); err != nil {
				logger.Warn("failed to save match", zap.String("game_id", report.GameID), zap.Error(err))
			}
		}
	}

	logger.Info("done",
		zap.Int("games", *games),
		zap.Float64("mean_attempts", float64(total)/float64(*games)),
		zap.Int("max_attempts", worstSeen))
}
