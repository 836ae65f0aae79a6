package board

import (
	"strings"

	"github.com/justinabrahms/chessrules/internal/fen"
)

// Color identifies a side.
type Color uint8

const (
	White Color = iota
	Black
)

// Opponent returns the other color.
func (c Color) Opponent() Color {
	return c ^ 1
}

// Letter returns the FEN active-color letter.
func (c Color) Letter() string {
	if c == Black {
		return fen.Black
	}
	return fen.White
}

func (c Color) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

// ColorFromLetter parses a FEN active-color letter.
func ColorFromLetter(s string) (Color, bool) {
	switch s {
	case fen.White:
		return White, true
	case fen.Black:
		return Black, true
	}
	return White, false
}

// Kind is the piece kind tag.
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

const kindLetters = " pnbrqk"

// Letter returns the lowercase FEN letter, or 0 for NoKind.
func (k Kind) Letter() byte {
	if k == NoKind || int(k) >= len(kindLetters) {
		return 0
	}
	return kindLetters[k]
}

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	}
	return "none"
}

// KindFromLetter parses a FEN piece letter of either case.
func KindFromLetter(c byte) Kind {
	i := strings.IndexByte(kindLetters, lower(c))
	if i <= 0 {
		return NoKind
	}
	return Kind(i)
}

// Piece is a colored piece. The zero value (Kind == NoKind) means no piece.
type Piece struct {
	Color Color
	Kind  Kind
}

// NoPiece is the empty square marker.
var NoPiece = Piece{}

// IsNone reports whether p is the empty marker.
func (p Piece) IsNone() bool {
	return p.Kind == NoKind
}

// FENLetter renders p the way FEN does: uppercase for white.
func (p Piece) FENLetter() byte {
	c := p.Kind.Letter()
	if p.Color == White {
		c = upper(c)
	}
	return c
}

// PieceFromLetter parses a FEN piece letter; the case selects the color.
func PieceFromLetter(c byte) Piece {
	k := KindFromLetter(c)
	if k == NoKind {
		return NoPiece
	}
	color := Black
	if c >= 'A' && c <= 'Z' {
		color = White
	}
	return Piece{Color: color, Kind: k}
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
