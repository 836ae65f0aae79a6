package board

import "github.com/justinabrahms/chessrules/internal/fen"

// CastlingSquares are the home and destination squares for one wing.
type CastlingSquares struct {
	KingFrom Position
	KingTo   Position
	RookFrom Position
	RookTo   Position
}

// Player is one side's mutable state. KingSquare is a lookup cache refreshed
// by the game session after every move and undo; the board stays the source
// of truth.
type Player struct {
	Name      string
	Color     Color
	Direction Direction

	PawnCaptureDirections []Direction
	EnPassantDirections   []Direction
	CastlingDirections    [2]Direction
	CastlingSquares       [2]CastlingSquares

	Rights     fen.CastlingRights
	KingSquare *Square
	Checked    bool
}

// NewPlayer derives the direction sets from the forward direction.
func NewPlayer(color Color, name string, forward Direction, rights fen.CastlingRights) *Player {
	p := &Player{
		Name:      name,
		Color:     color,
		Direction: forward,
		Rights:    rights,
	}

	switch {
	case forward.DRank > 0:
		p.PawnCaptureDirections = []Direction{UpLeft, UpRight}
	case forward.DRank < 0:
		p.PawnCaptureDirections = []Direction{DownLeft, DownRight}
	case forward.DFile > 0:
		p.PawnCaptureDirections = []Direction{UpRight, DownRight}
	default:
		p.PawnCaptureDirections = []Direction{UpLeft, DownLeft}
	}

	if forward.DRank != 0 {
		p.EnPassantDirections = []Direction{Left, Right}
		p.CastlingDirections = [2]Direction{Right, Left}
	} else {
		p.EnPassantDirections = []Direction{Up, Down}
		p.CastlingDirections = [2]Direction{Down, Up}
	}

	p.setDefaultCastlingSquares()
	return p
}

// CanCastle reports whether the right for side is still held.
func (p *Player) CanCastle(side CastlingSide) bool {
	if side == Queenside {
		return p.Rights.Queenside
	}
	return p.Rights.Kingside
}

func (p *Player) revoke(side CastlingSide) {
	if side == Queenside {
		p.Rights.Queenside = false
		return
	}
	p.Rights.Kingside = false
}

// backRank is the rank index of the side's home row.
func (p *Player) backRank() int {
	if p.Direction.DRank < 0 {
		return numRanks - 1
	}
	return 0
}

// pawnRank is the rank a pawn may advance two squares from.
func (p *Player) pawnRank() int {
	return p.backRank() + p.Direction.DRank
}

func (p *Player) setDefaultCastlingSquares() {
	r := p.backRank()
	p.CastlingSquares[Kingside] = CastlingSquares{
		KingFrom: Position{4, r}, KingTo: Position{6, r},
		RookFrom: Position{7, r}, RookTo: Position{5, r},
	}
	p.CastlingSquares[Queenside] = CastlingSquares{
		KingFrom: Position{4, r}, KingTo: Position{2, r},
		RookFrom: Position{0, r}, RookTo: Position{3, r},
	}
}

// SetCastlingSquares derives the king and rook home squares from the current
// back rank: the king wherever it stands on that rank, and on each wing the
// outermost own rook beyond it. Wings without such a rook keep the standard
// corner square. Called once at session start, which is what makes
// Fischer-Random setups castle with the right rooks.
func (p *Player) SetCastlingSquares(b *Board) {
	p.setDefaultCastlingSquares()

	r := p.backRank()
	kingFile := -1
	for file := 0; file < numFiles; file++ {
		sq := b.At(Position{file, r})
		if sq.Has(King) && sq.HasAlly(p.Color) {
			kingFile = file
			break
		}
	}
	if kingFile < 0 {
		return
	}

	for _, side := range []CastlingSide{Kingside, Queenside} {
		cs := &p.CastlingSquares[side]
		cs.KingFrom = Position{kingFile, r}

		d := p.CastlingDirections[side]
		for sq := cs.KingFrom.Step(d, 1); b.At(sq) != nil; sq = sq.Step(d, 1) {
			s := b.At(sq)
			if s.Has(Rook) && s.HasAlly(p.Color) {
				cs.RookFrom = sq
			}
		}
	}
}

// UpdateCastlingRights revokes rights after the player's own move: both wings
// when the king moves (castling included), one wing when a rook leaves its
// home square. Rights never come back; undo restores them from history.
func (p *Player) UpdateCastlingRights(m *Move) {
	switch m.Piece.Kind {
	case King:
		p.Rights = fen.CastlingRights{}
	case Rook:
		for _, side := range []CastlingSide{Kingside, Queenside} {
			if m.From == p.CastlingSquares[side].RookFrom {
				p.revoke(side)
			}
		}
	}
}

// RevokeCapturedRook drops the right of a wing whose home rook was just
// captured by the opponent's move m.
func (p *Player) RevokeCapturedRook(m *Move) {
	if !m.IsCapture() || m.Captured.Kind != Rook || m.Captured.Color != p.Color {
		return
	}
	for _, side := range []CastlingSide{Kingside, Queenside} {
		if m.CaptureAt == p.CastlingSquares[side].RookFrom {
			p.revoke(side)
		}
	}
}
