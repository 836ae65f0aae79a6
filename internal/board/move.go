package board

import "strings"

// MoveKind tags the move variant.
type MoveKind uint8

const (
	Simple MoveKind = iota
	Capture
	EnPassant
	Castling
	Promotion
)

func (k MoveKind) String() string {
	switch k {
	case Capture:
		return "capture"
	case EnPassant:
		return "en_passant"
	case Castling:
		return "castling"
	case Promotion:
		return "promotion"
	}
	return "move"
}

// CastlingSide selects the wing.
type CastlingSide uint8

const (
	Kingside CastlingSide = iota
	Queenside
)

func (s CastlingSide) String() string {
	if s == Queenside {
		return "queenside"
	}
	return "kingside"
}

// Move is a reversible board edit. Fields beyond From/To/Piece only matter
// for the kinds that use them:
//
//	Capture, EnPassant: Captured and CaptureAt (CaptureAt differs from To only
//	  for en passant)
//	Promotion: PromoteTo, plus Captured/CaptureAt when the promotion captures
//	Castling: Rook holds the rook leg, Side the wing
type Move struct {
	Kind      MoveKind
	From      Position
	To        Position
	Piece     Piece
	Captured  Piece
	CaptureAt Position
	PromoteTo Kind
	Rook      *Move
	Side      CastlingSide

	// EnPassantTarget is the landing square name of a two-square pawn
	// advance, empty otherwise.
	EnPassantTarget string

	// key overrides To as the destination used to index legal moves.
	key *Position
}

// IsCapture reports whether the move removes an enemy piece.
func (m *Move) IsCapture() bool {
	return !m.Captured.IsNone()
}

// Key returns the destination this move is filed under in a LegalMoves map.
func (m *Move) Key() Position {
	if m.key != nil {
		return *m.key
	}
	return m.To
}

// Apply performs m on the board.
func (b *Board) Apply(m *Move) {
	if m.Kind == Castling {
		king, rook := b.At(m.From), b.At(m.Rook.From)
		king.Piece, rook.Piece = NoPiece, NoPiece
		b.At(m.To).Piece = m.Piece
		b.At(m.Rook.To).Piece = m.Rook.Piece
		return
	}

	if m.IsCapture() {
		b.At(m.CaptureAt).Piece = NoPiece
	}
	placed := m.Piece
	if m.Kind == Promotion {
		placed.Kind = m.PromoteTo
	}
	b.At(m.From).Piece = NoPiece
	b.At(m.To).Piece = placed
}

// Undo reverts a previously applied m.
func (b *Board) Undo(m *Move) {
	if m.Kind == Castling {
		b.At(m.To).Piece, b.At(m.Rook.To).Piece = NoPiece, NoPiece
		b.At(m.From).Piece = m.Piece
		b.At(m.Rook.From).Piece = m.Rook.Piece
		return
	}

	b.At(m.To).Piece = NoPiece
	b.At(m.From).Piece = m.Piece
	if m.IsCapture() {
		b.At(m.CaptureAt).Piece = m.Captured
	}
}

// Algebraic renders a short algebraic description: the piece letter unless a
// pawn moves, the source square for pawn captures, "x" on captures, and "=Q"
// on promotion. Castling is "O-O" or "O-O-O".
func (m *Move) Algebraic() string {
	if m.Kind == Castling {
		if m.Side == Queenside {
			return "O-O-O"
		}
		return "O-O"
	}

	var sb strings.Builder
	if m.Piece.Kind != Pawn {
		sb.WriteByte(upper(m.Piece.Kind.Letter()))
	}
	if m.IsCapture() {
		if m.Piece.Kind == Pawn {
			sb.WriteString(squareName(m.From))
		}
		sb.WriteByte('x')
	}
	sb.WriteString(squareName(m.To))
	if m.Kind == Promotion {
		sb.WriteByte('=')
		sb.WriteByte(upper(m.PromoteTo.Letter()))
	}
	return sb.String()
}

func (m *Move) String() string {
	return squareName(m.From) + squareName(m.Key()) + " (" + m.Kind.String() + ")"
}
