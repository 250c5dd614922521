// Command guessgame starts the number guessing game server.
//
// It supports these modes:
//  1. "server" (default) – runs the HTTP server exposing the REST API, the spectator WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "admin-token" – prints a signed admin JWT for PUT /api/config
//
// Flags control host/port, the config file, the match history store, admin
// credentials, debug logging, version output, and optional ngrok tunneling.
// Every flag falls back to an environment variable, and a .env file is loaded
// first when present.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"
	"github.com/wricardo/mcp-training/guessgame/api"
	"github.com/wricardo/mcp-training/guessgame/game/config"
	"github.com/wricardo/mcp-training/guessgame/game/history"
	"github.com/wricardo/mcp-training/guessgame/game/service"
	"github.com/wricardo/mcp-training/guessgame/game/session"
	"github.com/wricardo/mcp-training/guessgame/obslog"
	"github.com/wricardo/mcp-training/guessgame/transport/mcp"
	"github.com/wricardo/mcp-training/guessgame/transport/websocket"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Number Guessing Game Server"
)

// Settings holds everything the flags and environment control
type Settings struct {
	Port           int
	Host           string
	ConfigFile     string
	HistoryStore   string
	HistoryDir     string
	RedisURL       string
	DatabaseURL    string
	AdminKey       string
	AdminJWTSecret string
	Debug          bool
	Version        bool
	NgrokEnabled   bool
	NgrokAuth      string
	NgrokDomain    string
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if n, err := strconv.Atoi(getenv(key, "")); err == nil {
		return n
	}
	return def
}

func getenvBool(key string) bool {
	v := strings.ToLower(getenv(key, ""))
	return v == "true" || v == "1" || v == "yes"
}

// newFlagSet binds flags to s with defaults taken from the environment
func newFlagSet(s *Settings) *pflag.FlagSet {
	fs := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)

	fs.IntVar(&s.Port, "port", getenvInt("PORT", 8080), "HTTP server port (PORT)")
	fs.StringVar(&s.Host, "host", getenv("HOST", "localhost"), "HTTP server host (HOST)")
	fs.StringVar(&s.ConfigFile, "config-file", getenv("GAME_CONFIG_FILE", config.DefaultFileName), "Game configuration file, .json or .yaml (GAME_CONFIG_FILE)")
	fs.StringVar(&s.HistoryStore, "history-store", getenv("HISTORY_STORE", history.KindMemory), "Match history store: memory, file, redis or sql (HISTORY_STORE)")
	fs.StringVar(&s.HistoryDir, "history-dir", getenv("HISTORY_DIR", "match-history"), "Directory for the file history store (HISTORY_DIR)")
	fs.StringVar(&s.RedisURL, "redis-url", getenv("REDIS_URL", ""), "Redis URL for the redis history store (REDIS_URL)")
	fs.StringVar(&s.DatabaseURL, "database-url", getenv("DATABASE_URL", ""), "postgres:// or sqlite DSN for the sql history store (DATABASE_URL)")
	fs.StringVar(&s.AdminKey, "admin-key", getenv("ADMIN_API_KEY", ""), "Admin key or its bcrypt hash for config updates (ADMIN_API_KEY)")
	fs.StringVar(&s.AdminJWTSecret, "admin-jwt-secret", getenv("ADMIN_JWT_SECRET", ""), "HS256 secret for admin JWTs (ADMIN_JWT_SECRET)")
	fs.BoolVar(&s.Debug, "debug", getenvBool("DEBUG"), "Enable debug logging")
	fs.BoolVar(&s.Version, "version", false, "Show version information")
	fs.BoolVar(&s.NgrokEnabled, "ngrok", getenvBool("NGROK_ENABLED"), "Enable ngrok tunnel (NGROK_ENABLED)")
	fs.StringVar(&s.NgrokAuth, "ngrok-auth", getenv("NGROK_AUTHTOKEN", getenv("NGROK_AUTH_TOKEN", "")), "Ngrok auth token (NGROK_AUTHTOKEN)")
	fs.StringVar(&s.NgrokDomain, "ngrok-domain", getenv("NGROK_DOMAIN", ""), "Custom ngrok domain (NGROK_DOMAIN)")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(out, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(out, "Available modes:\n")
		fmt.Fprintf(out, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(out, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(out, "  mcp-stdio, mcp   Aliases for stdio-mcp\n")
		fmt.Fprintf(out, "  admin-token      Print an admin JWT signed with --admin-jwt-secret\n")
		fmt.Fprintf(out, "\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  %s                              # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(out, "  %s --port 9090                  # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(out, "  %s --history-store redis        # Keep match history in Redis\n", os.Args[0])
		fmt.Fprintf(out, "  %s stdio-mcp                    # Run MCP stdio server\n", os.Args[0])
	}
	return fs
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// Load .env before flags so it can supply their defaults
	envErr := godotenv.Load()

	var settings Settings
	fs := newFlagSet(&settings)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if settings.Version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	if err := obslog.InitFromEnv(settings.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer obslog.L().Sync()
	logger := obslog.L()

	if envErr == nil {
		logger.Info("loaded environment variables from .env file")
	} else if !os.IsNotExist(envErr) {
		logger.Warn("error loading .env file", zap.Error(envErr))
	}

	// Determine mode from command
	mode := "server"
	if args := fs.Args(); len(args) > 0 {
		mode = args[0]
	}

	if mode == "admin-token" {
		if err := printAdminToken(os.Stdout, &settings); err != nil {
			logger.Fatal("failed to issue admin token", zap.Error(err))
		}
		return
	}

	logger.Info("starting",
		zap.String("app", AppName),
		zap.String("version", Version),
		zap.String("mode", mode))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameService, closeServices, err := initializeServices(ctx, &settings)
	if err != nil {
		logger.Fatal("failed to initialize services", zap.Error(err))
	}
	defer closeServices()

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		err = runStdioMCPWithInternalServer(ctx, gameService, &settings)

	case "server", "http":
		err = runHTTPServer(ctx, gameService, &settings)

	default:
		err = fmt.Errorf("unknown mode: %s. Use 'server' (default), 'stdio-mcp' or 'admin-token'", mode)
	}
	if err != nil {
		logger.Error("exiting", zap.Error(err))
		closeServices()
		obslog.L().Sync()
		os.Exit(1)
	}
}

// initializeServices wires the config provider, game registry and match
// history into the game service. The returned func closes the history store.
func initializeServices(ctx context.Context, s *Settings) (service.GameService, func() error, error) {
	configManager, err := config.NewManager(s.ConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	// Load (or create) the file now so problems show up at startup
	current := configManager.Current()
	obslog.L().Info("game configuration loaded",
		zap.String("path", configManager.Path()),
		zap.Int("min_range", current.MinRange),
		zap.Int("max_range", current.MaxRange),
		zap.Int("hint_trigger_count", current.HintTriggerCount))

	store, err := history.Open(ctx, history.Options{
		Kind:        s.HistoryStore,
		Dir:         s.HistoryDir,
		RedisURL:    s.RedisURL,
		DatabaseURL: s.DatabaseURL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open match history: %w", err)
	}
	obslog.L().Info("match history store ready", zap.String("kind", s.HistoryStore))

	var once sync.Once
	closeStore := func() error {
		var err error
		once.Do(func() { err = store.Close() })
		return err
	}

	sessionManager := session.NewManager()
	gameService := service.NewGameService(sessionManager, configManager, history.NewRecorder(store))

	return gameService, closeStore, nil
}

func newAdminAuth(s *Settings) *api.AdminAuth {
	auth := api.NewAdminAuth(s.AdminKey, s.AdminJWTSecret)
	if !auth.Enabled() {
		obslog.L().Warn("no admin credentials configured, PUT /api/config is disabled")
	}
	return auth
}

func printAdminToken(w io.Writer, s *Settings) error {
	token, err := api.NewAdminAuth("", s.AdminJWTSecret).IssueToken("cli", 24*time.Hour)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}

// newRootHandler mounts the API and the /mcp endpoint on one mux
func newRootHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.Handle("/mcp", mcpClient)
	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, gameService service.GameService, s *Settings) error {
	logger := obslog.L()

	// Stopped after the HTTP server so hijacked spectator connections close last
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()

	hub := websocket.NewHub()
	go hub.Run(hubCtx)

	apiServer := api.NewServer(gameService, hub, api.WithAdminAuth(newAdminAuth(s)))

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	handler := newRootHandler(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("api", fmt.Sprintf("http://%s/api", addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws[?game=<game_id>]", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
			cancel()
		}
	}()

	if s.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, s, handler)
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	wg.Wait()
	logger.Info("server stopped")

	select {
	case err := <-serveErr:
		return err
	default:
		return nil
	}
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, s *Settings, handler http.Handler) {
	logger := obslog.L()

	if s.NgrokAuth == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if s.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(s.NgrokDomain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	logger.Info("starting ngrok tunnel", zap.String("domain", s.NgrokDomain))
	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(s.NgrokAuth))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established",
		zap.String("url", ngrokURL),
		zap.String("api", ngrokURL+"/api"),
		zap.String("websocket", ngrokURL+"/ws[?game=<game_id>]"),
		zap.String("mcp", ngrokURL+"/mcp"))

	tunnelServer := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		tunnelServer.Close()
	}()

	if err := tunnelServer.Serve(tun); err != nil && err != http.ErrServerClosed {
		logger.Warn("ngrok server error", zap.Error(err))
	}
	if err := tun.Close(); err != nil {
		logger.Debug("failed to close ngrok tunnel", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// externalAPIAvailable reports whether a game server already answers at baseURL
func externalAPIAvailable(baseURL string) bool {
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an API already listening on --host/--port; if unavailable, it
// starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, gameService service.GameService, s *Settings) error {
	logger := obslog.L()

	baseURL := fmt.Sprintf("http://%s:%d", s.Host, s.Port)
	if externalAPIAvailable(baseURL) {
		logger.Info("external API server found, using it for MCP", zap.String("url", baseURL))
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hubCtx, stopHub := context.WithCancel(ctx)
		defer stopHub()

		hub := websocket.NewHub()
		go hub.Run(hubCtx)

		apiServer := api.NewServer(gameService, hub, api.WithAdminAuth(newAdminAuth(s)))
		httpServer := &http.Server{Handler: apiServer}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				logger.Error("internal HTTP server error", zap.Error(err))
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		logger.Info("started internal HTTP server for MCP stdio", zap.String("url", baseURL))
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready")

	// Logs go to stderr; stdout carries the protocol
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
