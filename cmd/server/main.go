package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/chessrules/internal/config"
	"github.com/justinabrahms/chessrules/internal/web"
)

func main() {
	var configPath string
	var showHelp bool
	flag.StringVar(&configPath, "config", "", "Path to a config file (default: ./config.yaml)")
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&showHelp, "h", false, "Show help information")
	flag.Parse()

	if showHelp {
		showHelpMessage()
		return
	}

	// Setup logging
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load config
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if cfg.Logging.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	zerolog.SetGlobalLevel(cfg.Logging.LogLevel())

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := web.NewHub(cfg.Hub.Buffer)
	go hub.Run(ctx)

	service := web.NewService(cfg, hub)
	router := web.NewRouter(service)

	// Create server
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("variant", cfg.Game.Variant).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	stop()

	log.Info().Msg("Server exited")
}

func showHelpMessage() {
	fmt.Println(`Chess Rules Server

DESCRIPTION:
    Serves chess game sessions over HTTP. Validates and applies moves,
    tracks check, checkmate, stalemate and the fifty-move rule, supports
    undo, exports PGN and pushes updates to WebSocket watchers.

USAGE:
    chessrules-server [OPTIONS]

OPTIONS:
    -config PATH  Read settings from PATH instead of ./config.yaml
    -h, --help    Show this help message

CONFIGURATION:
    Example config.yaml:
        server:
          host: localhost
          port: 8080
        game:
          variant: standard     # or chess960
          start_fen: ""         # custom start position (standard only)
          chess960_index: -1    # -1 draws a random position
        logging:
          level: info
          pretty: false
        hub:
          buffer: 256

    Every key can be overridden with CHESSRULES_<SECTION>_<KEY>,
    e.g. CHESSRULES_SERVER_PORT=9000.

API ENDPOINTS:
    GET    /api/health                      Service health
    POST   /api/sessions                    Start a session
    GET    /api/sessions/{id}               Session snapshot
    POST   /api/sessions/{id}/moves         Play a move {"from","to"}
    DELETE /api/sessions/{id}/moves/last    Cancel the last move
    GET    /api/sessions/{id}/history       Position and move history
    GET    /api/sessions/{id}/pgn           PGN export
    GET    /api/sessions/{id}/board         Board contents
    POST   /api/board/apply                 Replay a move record on a position
    GET    /api/chess960/{index}            Chess960 start position
    GET    /ws?sessionId={id}               Live session updates`)
}
