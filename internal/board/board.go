// Package board implements the square arena, piece movement patterns, move
// application and the check-safety filter that turns pseudo-legal moves into
// legal ones.
package board

import (
	"strconv"
	"strings"

	"github.com/justinabrahms/chessrules/internal/fen"
)

const (
	numFiles = len(fen.Files)
	numRanks = len(fen.Ranks)
)

// Square is one cell of the board. It owns at most one piece.
type Square struct {
	Name     string
	Position Position
	Piece    Piece
}

// IsEmpty reports whether no piece stands on the square.
func (s *Square) IsEmpty() bool {
	return s.Piece.IsNone()
}

// HasAlly reports whether a piece of color c stands on the square.
func (s *Square) HasAlly(c Color) bool {
	return !s.Piece.IsNone() && s.Piece.Color == c
}

// HasOpponent reports whether a piece not of color c stands on the square.
func (s *Square) HasOpponent(c Color) bool {
	return !s.Piece.IsNone() && s.Piece.Color != c
}

// Has reports whether a piece of kind k stands on the square.
func (s *Square) Has(k Kind) bool {
	return s.Piece.Kind == k && k != NoKind
}

// Board is a fixed 8x8 arena of squares indexed by position. Moves refer to
// squares by position, so apply and undo are in-place edits and never copy the
// board.
type Board struct {
	squares [numFiles * numRanks]Square
}

// New builds a board and fills it from a FEN position field.
func New(position string) *Board {
	b := &Board{}
	for rank := 0; rank < numRanks; rank++ {
		for file := 0; file < numFiles; file++ {
			sq := &b.squares[rank*numFiles+file]
			sq.Name = fen.SquareName(file, rank)
			sq.Position = Position{File: file, Rank: rank}
		}
	}
	b.Fill(position)
	return b
}

// NewStandard returns a board in the initial position.
func NewStandard() *Board {
	return New(fen.StartPosition)
}

// At returns the square at p, or nil when p is off the board.
func (b *Board) At(p Position) *Square {
	if p.File < 0 || p.Rank < 0 || p.File >= numFiles || p.Rank >= numRanks {
		return nil
	}
	return &b.squares[p.Rank*numFiles+p.File]
}

// Square looks a square up by name.
func (b *Board) Square(name string) *Square {
	file, rank, ok := fen.ParseSquare(name)
	if !ok {
		return nil
	}
	return b.At(Position{File: file, Rank: rank})
}

// Neighbor returns the square n steps from sq along d, or nil off the board.
func (b *Board) Neighbor(sq *Square, d Direction, n int) *Square {
	return b.At(sq.Position.Step(d, n))
}

// Squares iterates squares from a1 to h8, file-major within each rank.
func (b *Board) Squares() []*Square {
	out := make([]*Square, len(b.squares))
	for i := range b.squares {
		out[i] = &b.squares[i]
	}
	return out
}

// Empty removes every piece.
func (b *Board) Empty() {
	for i := range b.squares {
		b.squares[i].Piece = NoPiece
	}
}

// Fill places pieces from a FEN position field. Rows run from rank 8 down to
// rank 1. Digits skip squares without clearing them, so filling a board that
// already holds pieces keeps them wherever the field says empty; call Empty
// first to load a fresh position. Unknown characters advance one square and
// extra rows or columns are ignored, so raw fields from outside callers never
// panic.
func (b *Board) Fill(position string) {
	rows := strings.Split(position, "/")
	for i, row := range rows {
		rank := numRanks - 1 - i
		if rank < 0 {
			break
		}
		file := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '0' && c <= '9' {
				file += int(c - '0')
				continue
			}
			if p := PieceFromLetter(c); !p.IsNone() {
				if sq := b.At(Position{File: file, Rank: rank}); sq != nil {
					sq.Piece = p
				}
			}
			file++
		}
	}
}

// Position renders the FEN position field.
func (b *Board) Position() string {
	var sb strings.Builder
	for rank := numRanks - 1; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < numFiles; file++ {
			sq := b.At(Position{File: file, Rank: rank})
			if sq.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(sq.Piece.FENLetter())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// FindKingSquare scans for the king of color c.
func (b *Board) FindKingSquare(c Color) *Square {
	for i := range b.squares {
		sq := &b.squares[i]
		if sq.Has(King) && sq.HasAlly(c) {
			return sq
		}
	}
	return nil
}

// String draws the board for debugging, rank 8 at the top.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("\n  ")
	for i := 0; i < numFiles; i++ {
		sb.WriteByte(fen.Files[i])
		sb.WriteByte(' ')
	}
	sb.WriteString("\n")
	for rank := numRanks - 1; rank >= 0; rank-- {
		sb.WriteString(string(fen.Ranks[rank]))
		sb.WriteByte(' ')
		for file := 0; file < numFiles; file++ {
			sq := b.At(Position{File: file, Rank: rank})
			if sq.IsEmpty() {
				sb.WriteString(". ")
				continue
			}
			sb.WriteByte(sq.Piece.FENLetter())
			sb.WriteByte(' ')
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
