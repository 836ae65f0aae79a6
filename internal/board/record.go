package board

import (
	"errors"
	"fmt"
)

// PieceRecord is the transport form of a piece.
type PieceRecord struct {
	Color string `json:"color"`
	Name  string `json:"name"`
}

// MoveRecord is the transport form of a move.
type MoveRecord struct {
	Algebraic     string       `json:"algebraic"`
	FromPosition  Position     `json:"fromPosition"`
	ToPosition    Position     `json:"toPosition"`
	FromSquare    string       `json:"fromSquare"`
	ToSquare      string       `json:"toSquare"`
	CaptureSquare string       `json:"captureSquare,omitempty"`
	CapturedPiece *PieceRecord `json:"capturedPiece,omitempty"`
	NestedMove    *MoveRecord  `json:"nestedMove,omitempty"`
	IsPromoting   bool         `json:"isPromoting,omitempty"`
}

var (
	ErrUnknownSquare = errors.New("unknown square")
	ErrEmptySquare   = errors.New("no piece on square")
	ErrBadPiece      = errors.New("invalid piece record")
)

// Record converts p into its transport form; nil for NoPiece.
func (p Piece) Record() *PieceRecord {
	if p.IsNone() {
		return nil
	}
	return &PieceRecord{Color: p.Color.Letter(), Name: string(p.Kind.Letter())}
}

// Piece converts a transport record back to a piece.
func (r *PieceRecord) Piece() (Piece, error) {
	if r == nil {
		return NoPiece, nil
	}
	color, ok := ColorFromLetter(r.Color)
	if !ok || len(r.Name) != 1 {
		return NoPiece, fmt.Errorf("%w: %+v", ErrBadPiece, *r)
	}
	k := KindFromLetter(r.Name[0])
	if k == NoKind {
		return NoPiece, fmt.Errorf("%w: %+v", ErrBadPiece, *r)
	}
	return Piece{Color: color, Kind: k}, nil
}

// Record converts m into its transport form. The destination square is the
// one the move is filed under in a LegalMoves map, so a record always replays
// through the session's from/to interface.
func (m *Move) Record() *MoveRecord {
	r := &MoveRecord{
		Algebraic:    m.Algebraic(),
		FromPosition: m.From,
		ToPosition:   m.To,
		FromSquare:   squareName(m.From),
		ToSquare:     squareName(m.Key()),
		IsPromoting:  m.Kind == Promotion,
	}
	if m.IsCapture() {
		r.CaptureSquare = squareName(m.CaptureAt)
		r.CapturedPiece = m.Captured.Record()
	}
	if m.Rook != nil {
		r.NestedMove = m.Rook.Record()
	}
	return r
}

// moveFromRecord rebuilds a Move. The moving piece is read from the source
// square before application and from the destination square before undo.
// Castling records may be filed under the rook square, so their king landing
// square comes from ToPosition.
func (b *Board) moveFromRecord(r *MoveRecord, undo bool) (*Move, error) {
	from, to := b.Square(r.FromSquare), b.Square(r.ToSquare)
	if r.NestedMove != nil {
		to = b.At(r.ToPosition)
	}
	if from == nil || to == nil {
		return nil, fmt.Errorf("%w: %s-%s", ErrUnknownSquare, r.FromSquare, r.ToSquare)
	}

	m := &Move{Kind: Simple, From: from.Position, To: to.Position, Piece: from.Piece}
	if undo {
		m.Piece = to.Piece
	}
	if m.Piece.IsNone() {
		return nil, fmt.Errorf("%w: %s", ErrEmptySquare, r.FromSquare)
	}

	if r.CapturedPiece != nil {
		captured, err := r.CapturedPiece.Piece()
		if err != nil {
			return nil, err
		}
		at := to
		if r.CaptureSquare != "" {
			if at = b.Square(r.CaptureSquare); at == nil {
				return nil, fmt.Errorf("%w: %s", ErrUnknownSquare, r.CaptureSquare)
			}
		}
		m.Kind, m.Captured, m.CaptureAt = Capture, captured, at.Position
		if at != to {
			m.Kind = EnPassant
		}
	}

	if r.IsPromoting {
		m.Kind, m.PromoteTo = Promotion, Queen
		if undo {
			m.Piece.Kind = Pawn
		}
	}

	if r.NestedMove != nil {
		rook, err := b.moveFromRecord(r.NestedMove, undo)
		if err != nil {
			return nil, fmt.Errorf("nested move: %w", err)
		}
		m.Kind, m.Rook = Castling, rook
		if r.NestedMove.FromPosition.File < r.FromPosition.File {
			m.Side = Queenside
		}
	}

	return m, nil
}

// ApplyRecord performs a transport move on the board without legality checks.
func (b *Board) ApplyRecord(r *MoveRecord) error {
	m, err := b.moveFromRecord(r, false)
	if err != nil {
		return err
	}
	b.Apply(m)
	return nil
}

// UndoRecord reverts a transport move previously applied.
func (b *Board) UndoRecord(r *MoveRecord) error {
	m, err := b.moveFromRecord(r, true)
	if err != nil {
		return err
	}
	b.Undo(m)
	return nil
}

// SquareContents returns the piece on every occupied square, keyed by name.
func (b *Board) SquareContents() map[string]*PieceRecord {
	out := make(map[string]*PieceRecord)
	for i := range b.squares {
		if rec := b.squares[i].Piece.Record(); rec != nil {
			out[b.squares[i].Name] = rec
		}
	}
	return out
}

// SetSquare places a piece on the named square, or clears it when p is nil.
func (b *Board) SetSquare(name string, p *PieceRecord) error {
	sq := b.Square(name)
	if sq == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSquare, name)
	}
	piece, err := p.Piece()
	if err != nil {
		return err
	}
	sq.Piece = piece
	return nil
}
