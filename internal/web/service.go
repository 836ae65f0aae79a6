package web

import (
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/chessrules/internal/board"
	"github.com/justinabrahms/chessrules/internal/chess"
	"github.com/justinabrahms/chessrules/internal/chess960"
	"github.com/justinabrahms/chessrules/internal/config"
	"github.com/justinabrahms/chessrules/internal/pgn"
)

// session pairs an engine with the lock that serializes access to it.
type session struct {
	mu            sync.Mutex
	id            string
	engine        *chess.Engine
	chess960Index *int
	createdAt     time.Time
}

type Service struct {
	config *config.Config
	hub    *Hub

	mu       sync.RWMutex
	sessions map[string]*session

	randMu sync.Mutex
	rand   *rand.Rand
}

func NewService(cfg *config.Config, hub *Hub) *Service {
	return &Service{
		config:   cfg,
		hub:      hub,
		sessions: make(map[string]*session),
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewRouter registers every endpoint of the service.
func NewRouter(s *Service) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware, requestLogger)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.HealthHandler).Methods("GET")
	api.HandleFunc("/sessions", s.CreateSessionHandler).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{id}", s.GetSessionHandler).Methods("GET")
	api.HandleFunc("/sessions/{id}/moves", s.MakeMoveHandler).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{id}/moves/last", s.CancelMoveHandler).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/sessions/{id}/history", s.HistoryHandler).Methods("GET")
	api.HandleFunc("/sessions/{id}/pgn", s.PGNHandler).Methods("GET")
	api.HandleFunc("/sessions/{id}/board", s.BoardHandler).Methods("GET")
	api.HandleFunc("/board/apply", s.ApplyRecordHandler).Methods("POST", "OPTIONS")
	api.HandleFunc("/chess960/{index:[0-9]+}", s.Chess960Handler).Methods("GET")

	router.HandleFunc("/health", s.HealthHandler).Methods("GET")
	router.HandleFunc("/ws", s.WebSocketHandler(s.hub))

	return router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Handled request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	n := len(s.sessions)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": n,
	})
}

// SessionView is the JSON snapshot of a session.
type SessionView struct {
	ID            string                     `json:"id"`
	FEN           string                     `json:"fen"`
	ActiveColor   string                     `json:"activeColor"`
	ActivePlayer  int                        `json:"activePlayer"`
	Status        chess.GameStatus           `json:"status"`
	DrawReason    string                     `json:"drawReason,omitempty"`
	Check         bool                       `json:"check"`
	LegalMoves    map[string]map[string]bool `json:"legalMoves"`
	Players       []chess.PlayerInfo         `json:"players"`
	Material      chess.MaterialCount        `json:"material"`
	Chess960Index *int                       `json:"chess960Index,omitempty"`
	CreatedAt     time.Time                  `json:"createdAt"`
}

func (s *session) view() SessionView {
	e := s.engine
	return SessionView{
		ID:            s.id,
		FEN:           e.GetFEN(),
		ActiveColor:   e.GetActiveColor(),
		ActivePlayer:  e.ActivePlayerIndex(),
		Status:        e.GetStatus(),
		DrawReason:    e.GetDrawReason(),
		Check:         e.ActivePlayer().Checked,
		LegalMoves:    e.LegalMoves(),
		Players:       e.Players(),
		Material:      e.GetMaterialCount(),
		Chess960Index: s.chess960Index,
		CreatedAt:     s.createdAt,
	}
}

type CreateSessionRequest struct {
	Variant       string `json:"variant,omitempty"`
	FEN           string `json:"fen,omitempty"`
	Chess960Index *int   `json:"chess960Index,omitempty"`
}

// startPosition resolves a create request against the configured defaults and
// reports the variant it settled on.
func (s *Service) startPosition(req CreateSessionRequest) (string, string, error) {
	game := s.config.Game
	if req.Variant != "" {
		game.Variant = req.Variant
		game.StartFEN = ""
	}
	if req.FEN != "" {
		game.Variant = config.VariantStandard
		game.StartFEN = req.FEN
	}
	if req.Chess960Index != nil {
		game.Variant = config.VariantChess960
		game.Chess960Index = *req.Chess960Index
	}
	if game.Variant != config.VariantStandard && game.Variant != config.VariantChess960 {
		return "", "", errors.New("unknown variant " + strconv.Quote(game.Variant))
	}

	s.randMu.Lock()
	defer s.randMu.Unlock()
	start, err := game.StartPosition(s.rand)
	return start, game.Variant, err
}

// chess960IndexOf recovers the arrangement index from a start FEN's back rank.
func chess960IndexOf(start string) *int {
	row, _, _ := strings.Cut(start, "/")
	index, ok := chess960.Index(row)
	if !ok {
		return nil
	}
	return &index
}

func (s *Service) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	start, variant, err := s.startPosition(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	engine, err := chess.NewEngineFromFEN(start)
	if err != nil {
		log.Warn().Err(err).Str("fen", start).Msg("Rejected start position")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := &session{
		id:        uuid.NewString(),
		engine:    engine,
		createdAt: time.Now().UTC(),
	}
	if variant == config.VariantChess960 {
		sess.chess960Index = chess960IndexOf(start)
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	log.Info().Str("sessionID", sess.id).Str("fen", start).Msg("Session created")
	writeJSON(w, http.StatusCreated, sess.view())
}

// lookup resolves the {id} route variable, writing a 404 when unknown.
func (s *Service) lookup(w http.ResponseWriter, r *http.Request) *session {
	id := mux.Vars(r)["id"]
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Session not found")
		return nil
	}
	return sess
}

func (s *Service) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	view := sess.view()
	sess.mu.Unlock()
	writeJSON(w, http.StatusOK, view)
}

type MakeMoveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// MoveResponse carries the move outcome and the resulting session snapshot.
type MoveResponse struct {
	Result  *chess.MoveResult `json:"result"`
	Session SessionView       `json:"session"`
}

func (s *Service) MakeMoveHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess == nil {
		return
	}

	var req MakeMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Updates are queued under the session lock to keep them in engine order.
	sess.mu.Lock()
	result, err := sess.engine.MakeMove(req.From, req.To)
	var resp MoveResponse
	if err == nil {
		resp = MoveResponse{Result: result, Session: sess.view()}
		s.hub.BroadcastSessionUpdate(SessionUpdate{SessionID: sess.id, Type: UpdateMove, Data: resp})
		if result.GameOver {
			s.hub.BroadcastSessionUpdate(SessionUpdate{SessionID: sess.id, Type: UpdateGameEnd, Data: resp.Session})
		}
	}
	sess.mu.Unlock()

	switch {
	case errors.Is(err, chess.ErrIllegalMove):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Info().
		Str("sessionID", sess.id).
		Str("from", req.From).
		Str("to", req.To).
		Str("san", result.SAN).
		Msg("Move made")

	writeJSON(w, http.StatusOK, resp)
}

// CancelResponse carries the undone move and the restored snapshot.
type CancelResponse struct {
	Move    *board.MoveRecord `json:"move"`
	Session SessionView       `json:"session"`
}

func (s *Service) CancelMoveHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess == nil {
		return
	}

	sess.mu.Lock()
	undone := sess.engine.CancelLastMove()
	resp := CancelResponse{Move: undone, Session: sess.view()}
	if undone != nil {
		s.hub.BroadcastSessionUpdate(SessionUpdate{SessionID: sess.id, Type: UpdateUndo, Data: resp})
	}
	sess.mu.Unlock()

	if undone == nil {
		writeError(w, http.StatusConflict, "No move to cancel")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess == nil {
		return
	}

	sess.mu.Lock()
	history := sess.engine.History()
	moves := sess.engine.AlgebraicMoves()
	sess.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"history":   history,
		"algebraic": moves,
	})
}

func (s *Service) PGNHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess == nil {
		return
	}

	sess.mu.Lock()
	text, err := pgn.Export(sess.engine, map[string]string{
		"Event": "Casual game",
		"Site":  sess.id,
		"Date":  sess.createdAt.Format("2006.01.02"),
		"White": "Whites",
		"Black": "Blacks",
	})
	sess.mu.Unlock()

	if err != nil {
		if errors.Is(err, pgn.ErrUnsupportedMove) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		log.Error().Err(err).Str("sessionID", sess.id).Msg("Failed to export PGN")
		writeError(w, http.StatusInternalServerError, "Failed to export PGN")
		return
	}

	w.Header().Set("Content-Type", "application/x-chess-pgn")
	_, _ = w.Write([]byte(text))
}

// BoardView is the board-only snapshot: the FEN position field plus the
// occupied squares.
type BoardView struct {
	Position string                        `json:"position"`
	Squares  map[string]*board.PieceRecord `json:"squares"`
}

func boardView(b *board.Board) BoardView {
	return BoardView{Position: b.Position(), Squares: b.SquareContents()}
}

func (s *Service) BoardHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r)
	if sess == nil {
		return
	}

	sess.mu.Lock()
	b := sess.engine.Chessboard()
	sess.mu.Unlock()

	writeJSON(w, http.StatusOK, boardView(b))
}

// ApplyRecordRequest replays a move record on a raw position without any
// legality checks.
type ApplyRecordRequest struct {
	Position string            `json:"position"`
	Move     *board.MoveRecord `json:"move"`
	Undo     bool              `json:"undo,omitempty"`
}

func (s *Service) ApplyRecordHandler(w http.ResponseWriter, r *http.Request) {
	var req ApplyRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Move == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b := board.New(req.Position)
	apply := b.ApplyRecord
	if req.Undo {
		apply = b.UndoRecord
	}
	if err := apply(req.Move); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, boardView(b))
}

func (s *Service) Chess960Handler(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid index")
		return
	}

	row, err := chess960.Row(index)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	start, err := chess960.StartFEN(index)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"index": index,
		"row":   row,
		"fen":   start,
	})
}
