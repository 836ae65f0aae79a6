package chess

import "github.com/justinabrahms/chessrules/internal/board"

type GameStatus string

const (
	StatusActive   GameStatus = "active"
	StatusDraw     GameStatus = "draw"
	StatusWhiteWon GameStatus = "white_won"
	StatusBlackWon GameStatus = "black_won"
)

const (
	DrawStalemate = "stalemate"
	DrawFiftyMove = "fifty_move_rule"
)

// MoveResult summarizes a move for adapters.
type MoveResult struct {
	From      string            `json:"from"`
	To        string            `json:"to"`
	SAN       string            `json:"san"`
	FEN       string            `json:"fen"`
	Check     bool              `json:"check"`
	Checkmate bool              `json:"checkmate"`
	Draw      bool              `json:"draw"`
	GameOver  bool              `json:"gameOver"`
	Result    string            `json:"result"`
	Move      *board.MoveRecord `json:"move"`
}

// PlayerInfo is a read-only view of a player.
type PlayerInfo struct {
	Name      string          `json:"name"`
	Color     string          `json:"color"`
	Direction board.Direction `json:"direction"`
}

// HistoryRecord is a read-only view of one ply. Move is nil for the initial
// entry.
type HistoryRecord struct {
	FEN     string            `json:"fen"`
	Move    *board.MoveRecord `json:"move"`
	Checked bool              `json:"checked"`
}

// MaterialCount represents the material count for both sides
type MaterialCount struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// StandardPieceValues maps piece kinds to their conventional values.
var StandardPieceValues = map[board.Kind]int{
	board.Pawn:   1,
	board.Knight: 3,
	board.Bishop: 3,
	board.Rook:   5,
	board.Queen:  9,
	board.King:   0, // King has no material value
}
