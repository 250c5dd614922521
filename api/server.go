package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/guessgame/game/config"
	"github.com/wricardo/mcp-training/guessgame/game/engine"
	"github.com/wricardo/mcp-training/guessgame/game/history"
	"github.com/wricardo/mcp-training/guessgame/game/service"
	"github.com/wricardo/mcp-training/guessgame/obslog"
	"github.com/wricardo/mcp-training/guessgame/transport/websocket"
	"go.uber.org/zap"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	admin   *AdminAuth
	router  *mux.Router
}

// Option configures a Server
type Option func(*Server)

// WithAdminAuth sets the credentials required by PUT /api/config
func WithAdminAuth(auth *AdminAuth) Option {
	return func(s *Server) {
		s.admin = auth
	}
}

// NewServer creates a new API server. hub may be nil, in which case nothing
// is broadcast and /ws is unavailable.
func NewServer(gameService service.GameService, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(requestLogger)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("", s.handleIndex).Methods("GET")

	// Games
	api.HandleFunc("/games", s.handleStartGame).Methods("POST")
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/games/{id}", s.handleGetGame).Methods("GET")
	api.HandleFunc("/games/{id}/guess", s.handleGuess).Methods("POST")

	// Configuration
	api.HandleFunc("/config", s.handleGetConfig).Methods("GET")
	api.HandleFunc("/config", s.handleUpdateConfig).Methods("PUT")

	// Match history
	api.HandleFunc("/matches", s.handleSaveMatch).Methods("POST")
	api.HandleFunc("/matches", s.handleListMatches).Methods("GET")
	api.HandleFunc("/matches/{gameId}", s.handleGetMatch).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{"error": message})
}

// respondServiceError maps domain errors to HTTP statuses
func respondServiceError(w http.ResponseWriter, err error) {
	body := map[string]interface{}{"error": err.Error()}

	var rangeErr *engine.OutOfRangeError
	if errors.As(err, &rangeErr) {
		body["min"] = rangeErr.Min
		body["max"] = rangeErr.Max
	}

	status := statusForError(err)
	if status == http.StatusInternalServerError {
		obslog.L().Error("request failed", zap.Error(err))
	}
	respondJSON(w, status, body)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound),
		errors.Is(err, history.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrOutOfRange),
		errors.Is(err, history.ErrInvalidRating),
		errors.Is(err, history.ErrInvalidGameID),
		errors.Is(err, config.ErrEmptyUpdate):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrAlreadyFinished),
		errors.Is(err, history.ErrGameNotFinished),
		errors.Is(err, history.ErrAlreadyRecorded):
		return http.StatusConflict
	case errors.Is(err, engine.ErrInvalidConfiguration),
		errors.Is(err, config.ErrInvalidConfig):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrAdminDisabled):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		obslog.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) broadcast(gameID, eventType string, data interface{}) {
	if s.hub != nil {
		s.hub.BroadcastToGame(gameID, eventType, data)
	}
}

// Game Handlers

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.StartGame(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(info.ID, websocket.EventGameStarted, info)
	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.service.ListGames(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"games": games,
		"count": len(games),
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetGame(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var req service.GuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Guess == nil {
		respondError(w, http.StatusBadRequest, "guess is required")
		return
	}

	result, err := s.service.Guess(r.Context(), gameID, *req.Guess)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(result.GameID, websocket.EventGuess, result)
	respondJSON(w, http.StatusOK, result)
}

// Configuration Handlers

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.service.GetConfig(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.Authorize(r); err != nil {
		obslog.L().Warn("config update rejected", zap.String("remote", r.RemoteAddr), zap.Error(err))
		respondServiceError(w, err)
		return
	}

	var patch engine.ConfigPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cfg, err := s.service.UpdateConfig(r.Context(), patch)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

// Match History Handlers

func (s *Server) handleSaveMatch(w http.ResponseWriter, r *http.Request) {
	var req service.SaveMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.GameID == "" {
		respondError(w, http.StatusBadRequest, "game_id is required")
		return
	}

	rec, err := s.service.SaveMatch(r.Context(), req.GameID, req.DifficultyRating)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	matches, err := s.service.ListMatches(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.GetMatch(r.Context(), mux.Vars(r)["gameId"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "spectator feed disabled", http.StatusServiceUnavailable)
		return
	}

	// Without a game the spectator follows every game, starts included
	gameID := r.URL.Query().Get("game")
	if gameID == "" || gameID == websocket.AllGames {
		s.hub.ServeWS(w, r, websocket.AllGames)
		return
	}

	if _, err := s.service.GetGame(r.Context(), gameID); err != nil {
		http.Error(w, "Invalid game", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, gameID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// API index
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name": "number guessing game",
		"endpoints": []string{
			"POST /api/games",
			"GET /api/games",
			"GET /api/games/{id}",
			"POST /api/games/{id}/guess",
			"GET /api/config",
			"PUT /api/config",
			"POST /api/matches",
			"GET /api/matches",
			"GET /api/matches/{gameId}",
			"GET /ws?game={id}",
			"GET /ws",
		},
		"admin_updates": s.admin.Enabled(),
	})
}
