// Package chess runs a game session: turn order, history, move application and
// undo, and the derived state (check flags, castling rights, counters) that has
// to be refreshed around them.
//
// An Engine is not safe for concurrent use; callers sharing one must
// serialize access.
package chess

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/chessrules/internal/board"
	"github.com/justinabrahms/chessrules/internal/chess960"
	"github.com/justinabrahms/chessrules/internal/fen"
)

var (
	ErrMissingKing   = errors.New("missing king")
	ErrDuplicateKing = errors.New("duplicate king")
	ErrIllegalMove   = errors.New("illegal move")
)

type historyEntry struct {
	fen     string
	record  *fen.Record
	move    *board.Move
	checked bool
}

type Engine struct {
	board          *board.Board
	players        []*board.Player
	active         int
	halfmoveClock  int
	fullmoveNumber int
	history        []historyEntry
	legalMoves     board.LegalMoves
}

func NewEngine() *Engine {
	e, err := NewEngineFromFEN(fen.StartFEN)
	if err != nil {
		panic(err)
	}
	return e
}

func NewEngineFromFEN(s string) (*Engine, error) {
	rec, err := fen.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid FEN: %w", err)
	}

	e := &Engine{
		board: board.New(rec.Position),
		players: []*board.Player{
			board.NewPlayer(board.White, "Whites", board.Up, rec.White),
			board.NewPlayer(board.Black, "Blacks", board.Down, rec.Black),
		},
		halfmoveClock:  rec.Halfmove,
		fullmoveNumber: rec.Fullmove,
	}

	if err := e.setKingSquares(); err != nil {
		return nil, err
	}
	for _, p := range e.players {
		p.SetCastlingSquares(e.board)
	}

	for i, p := range e.players {
		if p.Color.Letter() == rec.Active {
			e.active = i
		}
	}
	active := e.ActivePlayer()
	active.Checked = e.board.IsChecked(active)

	e.history = append(e.history, historyEntry{
		fen:     rec.String(),
		record:  rec,
		checked: active.Checked,
	})
	e.setLegalMoves()

	return e, nil
}

// NewFischerRandomEngine starts a Chess960 game from the given index.
func NewFischerRandomEngine(index int) (*Engine, error) {
	s, err := chess960.StartFEN(index)
	if err != nil {
		return nil, err
	}
	return NewEngineFromFEN(s)
}

func (e *Engine) setKingSquares() error {
	for _, p := range e.players {
		p.KingSquare = nil
	}
	for _, sq := range e.board.Squares() {
		if !sq.Has(board.King) {
			continue
		}
		p := e.player(sq.Piece.Color)
		if p.KingSquare != nil {
			return fmt.Errorf("%w for %s: %s and %s", ErrDuplicateKing, p.Color, p.KingSquare.Name, sq.Name)
		}
		p.KingSquare = sq
	}
	for _, p := range e.players {
		if p.KingSquare == nil {
			return fmt.Errorf("%w for %s", ErrMissingKing, p.Color)
		}
	}
	return nil
}

func (e *Engine) player(c board.Color) *board.Player {
	for _, p := range e.players {
		if p.Color == c {
			return p
		}
	}
	return nil
}

func (e *Engine) ActivePlayer() *board.Player {
	return e.players[e.active]
}

func (e *Engine) ActivePlayerIndex() int {
	return e.active
}

func (e *Engine) GetActiveColor() string {
	return e.ActivePlayer().Color.String()
}

func (e *Engine) nextPlayer() {
	e.active = (e.active + 1) % len(e.players)
}

func (e *Engine) previousPlayer() {
	e.active = (e.active - 1 + len(e.players)) % len(e.players)
}

func (e *Engine) last() *historyEntry {
	return &e.history[len(e.history)-1]
}

func (e *Engine) setLegalMoves() {
	p := e.ActivePlayer()
	e.legalMoves = e.board.GetLegalMoves(p, e.last().record.EnPassant)
}

func (e *Engine) IsLegalMove(from, to string) bool {
	return e.legalMoves.Get(from, to) != nil
}

// TryMove plays the legal move from/to and returns its record, or nil without
// touching any state when the move is not legal.
func (e *Engine) TryMove(from, to string) *board.MoveRecord {
	m := e.legalMoves.Get(from, to)
	if m == nil {
		log.Warn().Str("from", from).Str("to", to).Str("fen", e.GetFEN()).Msg("Rejected illegal move")
		return nil
	}
	e.playMove(m)
	return m.Record()
}

func (e *Engine) playMove(m *board.Move) {
	mover := e.ActivePlayer()
	resetsClock := m.Piece.Kind == board.Pawn || m.IsCapture()

	mover.Checked = false
	e.board.Apply(m)
	mover.KingSquare = e.board.FindKingSquare(mover.Color)
	mover.UpdateCastlingRights(m)

	e.nextPlayer()
	next := e.ActivePlayer()
	next.RevokeCapturedRook(m)
	if e.active == 0 {
		e.fullmoveNumber++
	}
	if resetsClock {
		e.halfmoveClock = 0
	} else {
		e.halfmoveClock++
	}
	next.Checked = e.board.IsChecked(next)

	e.storeHistoryEntry(m)
	e.setLegalMoves()

	log.Debug().
		Str("move", m.Algebraic()).
		Str("fen", e.GetFEN()).
		Bool("check", next.Checked).
		Msg("Move played")
}

func (e *Engine) storeHistoryEntry(m *board.Move) {
	rec := &fen.Record{
		Position:  e.board.Position(),
		Active:    e.ActivePlayer().Color.Letter(),
		EnPassant: m.EnPassantTarget,
		Halfmove:  e.halfmoveClock,
		Fullmove:  e.fullmoveNumber,
	}
	for _, p := range e.players {
		rec.SetCastling(p.Color.Letter(), p.Rights)
	}

	e.history = append(e.history, historyEntry{
		fen:     rec.String(),
		record:  rec,
		move:    m,
		checked: e.ActivePlayer().Checked,
	})
}

// CancelLastMove undoes the most recent move and returns its record, or nil
// when only the initial position remains.
func (e *Engine) CancelLastMove() *board.MoveRecord {
	if len(e.history) <= 1 {
		return nil
	}

	undone := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	prev := e.last().record

	e.ActivePlayer().Checked = false
	if undone.move != nil {
		e.board.Undo(undone.move)
	}
	e.fullmoveNumber = prev.Fullmove
	e.halfmoveClock = prev.Halfmove
	e.previousPlayer()

	for _, p := range e.players {
		p.Rights = prev.Castling(p.Color.Letter())
	}
	active := e.ActivePlayer()
	active.KingSquare = e.board.FindKingSquare(active.Color)
	active.Checked = e.board.IsChecked(active)
	e.setLegalMoves()

	if undone.move == nil {
		return nil
	}
	log.Debug().Str("move", undone.move.Algebraic()).Str("fen", e.GetFEN()).Msg("Move cancelled")
	return undone.move.Record()
}

// MakeMove plays from/to and summarizes the outcome.
func (e *Engine) MakeMove(from, to string) (*MoveResult, error) {
	if _, _, ok := fen.ParseSquare(from); !ok {
		return nil, fmt.Errorf("invalid square notation: %q", from)
	}
	if _, _, ok := fen.ParseSquare(to); !ok {
		return nil, fmt.Errorf("invalid square notation: %q", to)
	}

	rec := e.TryMove(from, to)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s to %s", ErrIllegalMove, from, to)
	}

	status := e.GetStatus()
	result := &MoveResult{
		From:      from,
		To:        to,
		SAN:       rec.Algebraic,
		FEN:       e.GetFEN(),
		Check:     e.ActivePlayer().Checked,
		Checkmate: e.IsCheckmate(),
		Draw:      status == StatusDraw,
		GameOver:  status != StatusActive,
		Move:      rec,
	}
	if result.GameOver {
		result.Result = string(status)
	}
	return result, nil
}

func (e *Engine) GetFEN() string {
	return e.last().fen
}

// ValidateFEN reports whether s would start a session.
func (e *Engine) ValidateFEN(s string) error {
	_, err := NewEngineFromFEN(s)
	return err
}

// LegalMoves returns the current mapping as from -> to -> true.
func (e *Engine) LegalMoves() map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(e.legalMoves))
	for from, tos := range e.legalMoves {
		out[from] = make(map[string]bool, len(tos))
		for to := range tos {
			out[from][to] = true
		}
	}
	return out
}

func (e *Engine) Players() []PlayerInfo {
	out := make([]PlayerInfo, len(e.players))
	for i, p := range e.players {
		out[i] = PlayerInfo{Name: p.Name, Color: p.Color.Letter(), Direction: p.Direction}
	}
	return out
}

func (e *Engine) History() []HistoryRecord {
	out := make([]HistoryRecord, len(e.history))
	for i, h := range e.history {
		out[i] = HistoryRecord{FEN: h.fen, Checked: h.checked}
		if h.move != nil {
			out[i].Move = h.move.Record()
		}
	}
	return out
}

// Halfmove returns the move recorded at history index i, or nil.
func (e *Engine) Halfmove(i int) *board.MoveRecord {
	if i < 0 || i >= len(e.history) || e.history[i].move == nil {
		return nil
	}
	return e.history[i].move.Record()
}

// AlgebraicMoves lists the algebraic text of every ply played so far.
func (e *Engine) AlgebraicMoves() []string {
	out := make([]string, 0, len(e.history)-1)
	for _, h := range e.history[1:] {
		if h.move == nil {
			out = append(out, "")
			continue
		}
		out = append(out, h.move.Algebraic())
	}
	return out
}

// Chessboard returns an independent board holding the current position.
func (e *Engine) Chessboard() *board.Board {
	return board.New(e.board.Position())
}

func (e *Engine) IsCheckmate() bool {
	return e.legalMoves.Len() == 0 && e.ActivePlayer().Checked
}

func (e *Engine) IsStalemate() bool {
	return e.legalMoves.Len() == 0 && !e.ActivePlayer().Checked
}

func (e *Engine) GetStatus() GameStatus {
	switch {
	case e.IsCheckmate():
		if e.ActivePlayer().Color == board.White {
			return StatusBlackWon
		}
		return StatusWhiteWon
	case e.IsStalemate(), e.halfmoveClock >= 100:
		return StatusDraw
	default:
		return StatusActive
	}
}

// GetDrawReason explains a drawn status, or returns "".
func (e *Engine) GetDrawReason() string {
	switch {
	case e.IsStalemate():
		return DrawStalemate
	case e.IsCheckmate():
		return ""
	case e.halfmoveClock >= 100:
		return DrawFiftyMove
	}
	return ""
}

func (e *Engine) GetMaterialCount() MaterialCount {
	var count MaterialCount
	for _, sq := range e.board.Squares() {
		if sq.IsEmpty() {
			continue
		}
		value := StandardPieceValues[sq.Piece.Kind]
		if sq.Piece.Color == board.White {
			count.White += value
		} else {
			count.Black += value
		}
	}
	return count
}

// GetMaterialBalance is white material minus black material.
func (e *Engine) GetMaterialBalance() int {
	count := e.GetMaterialCount()
	return count.White - count.Black
}

func (e *Engine) String() string {
	return strings.TrimSpace(e.board.String()) + "\n" + e.GetFEN()
}
