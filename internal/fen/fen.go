// Package fen reads and writes Forsyth-Edwards Notation records.
//
// The en-passant field holds the square of the pawn that just advanced two
// squares (for example "e4" after 1. e4), which is the convention the rest of
// this module uses. Record.Standard converts to the conventional skipped-square
// form when talking to other chess software.
package fen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// StartPosition is the board field of StartFEN.
const StartPosition = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"

// Board layout.
const (
	Files = "abcdefgh"
	Ranks = "12345678"
)

const (
	White = "w"
	Black = "b"
	none  = "-"
)

// ErrMalformed is wrapped by every parse failure.
var ErrMalformed = errors.New("malformed FEN")

// CastlingRights tracks whether one side may still castle on each wing.
type CastlingRights struct {
	Kingside  bool `json:"kingside"`
	Queenside bool `json:"queenside"`
}

// Record is a parsed FEN string.
type Record struct {
	Position  string
	Active    string
	White     CastlingRights
	Black     CastlingRights
	EnPassant string // empty when there is no target
	Halfmove  int
	Fullmove  int
}

// Castling returns the rights recorded for the given color letter.
func (r *Record) Castling(color string) CastlingRights {
	if color == Black {
		return r.Black
	}
	return r.White
}

// SetCastling stores rights for the given color letter.
func (r *Record) SetCastling(color string, rights CastlingRights) {
	if color == Black {
		r.Black = rights
		return
	}
	r.White = rights
}

// Parse parses and validates a six-field FEN string.
func Parse(s string) (*Record, error) {
	fields := strings.Fields(s)
	if len(fields) != 6 {
		return nil, fmt.Errorf("%w: need 6 fields, got %d", ErrMalformed, len(fields))
	}

	if err := ValidatePosition(fields[0]); err != nil {
		return nil, err
	}

	rec := &Record{Position: fields[0]}

	switch fields[1] {
	case White, Black:
		rec.Active = fields[1]
	default:
		return nil, fmt.Errorf("%w: invalid active color %q", ErrMalformed, fields[1])
	}

	white, black, err := parseCastling(fields[2])
	if err != nil {
		return nil, err
	}
	rec.White, rec.Black = white, black

	if fields[3] != none {
		if _, _, ok := ParseSquare(fields[3]); !ok {
			return nil, fmt.Errorf("%w: invalid en passant square %q", ErrMalformed, fields[3])
		}
		rec.EnPassant = fields[3]
	}

	rec.Halfmove, err = strconv.Atoi(fields[4])
	if err != nil || rec.Halfmove < 0 {
		return nil, fmt.Errorf("%w: invalid halfmove clock %q", ErrMalformed, fields[4])
	}

	rec.Fullmove, err = strconv.Atoi(fields[5])
	if err != nil || rec.Fullmove < 1 {
		return nil, fmt.Errorf("%w: invalid fullmove number %q", ErrMalformed, fields[5])
	}

	return rec, nil
}

// ValidatePosition checks the board field: eight rows of eight squares using
// known piece letters.
func ValidatePosition(position string) error {
	rows := strings.Split(position, "/")
	if len(rows) != len(Ranks) {
		return fmt.Errorf("%w: need %d rows, got %d", ErrMalformed, len(Ranks), len(rows))
	}

	for i, row := range rows {
		width := 0
		for _, c := range row {
			switch {
			case c >= '1' && c <= '8':
				width += int(c - '0')
			case strings.ContainsRune("pnbrqkPNBRQK", c):
				width++
			default:
				return fmt.Errorf("%w: invalid piece %q in row %d", ErrMalformed, c, i+1)
			}
		}
		if width != len(Files) {
			return fmt.Errorf("%w: row %d spans %d squares", ErrMalformed, i+1, width)
		}
	}

	return nil
}

func parseCastling(field string) (white, black CastlingRights, err error) {
	if field == none {
		return white, black, nil
	}

	seen := make(map[rune]bool, 4)
	for _, c := range field {
		if seen[c] {
			return white, black, fmt.Errorf("%w: repeated castling flag %q", ErrMalformed, c)
		}
		seen[c] = true

		switch c {
		case 'K':
			white.Kingside = true
		case 'Q':
			white.Queenside = true
		case 'k':
			black.Kingside = true
		case 'q':
			black.Queenside = true
		default:
			return white, black, fmt.Errorf("%w: invalid castling flag %q", ErrMalformed, c)
		}
	}

	return white, black, nil
}

// CastlingString renders both sides' rights in canonical KQkq order.
func CastlingString(white, black CastlingRights) string {
	var sb strings.Builder
	if white.Kingside {
		sb.WriteByte('K')
	}
	if white.Queenside {
		sb.WriteByte('Q')
	}
	if black.Kingside {
		sb.WriteByte('k')
	}
	if black.Queenside {
		sb.WriteByte('q')
	}
	if sb.Len() == 0 {
		return none
	}
	return sb.String()
}

// String serializes the record.
func (r *Record) String() string {
	ep := r.EnPassant
	if ep == "" {
		ep = none
	}
	return fmt.Sprintf("%s %s %s %s %d %d",
		r.Position, r.Active, CastlingString(r.White, r.Black), ep, r.Halfmove, r.Fullmove)
}

// Standard serializes the record with the en-passant field moved to the square
// the pawn skipped over, as most chess software expects.
func (r *Record) Standard() string {
	std := *r
	if file, rank, ok := ParseSquare(r.EnPassant); ok {
		switch rank {
		case 3:
			std.EnPassant = SquareName(file, 2)
		case 4:
			std.EnPassant = SquareName(file, 5)
		default:
			std.EnPassant = ""
		}
	}
	return std.String()
}

// SquareName returns the algebraic name of a zero-based file/rank pair.
func SquareName(file, rank int) string {
	return string([]byte{Files[file], Ranks[rank]})
}

// ParseSquare converts an algebraic square name into zero-based indexes.
func ParseSquare(name string) (file, rank int, ok bool) {
	if len(name) != 2 {
		return 0, 0, false
	}
	file = strings.IndexByte(Files, name[0])
	rank = strings.IndexByte(Ranks, name[1])
	if file < 0 || rank < 0 {
		return 0, 0, false
	}
	return file, rank, true
}
