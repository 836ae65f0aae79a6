package board

// LegalMoves maps source square name to destination square name to move.
type LegalMoves map[string]map[string]*Move

// Get returns the move filed under from/to, or nil.
func (lm LegalMoves) Get(from, to string) *Move {
	return lm[from][to]
}

// Len counts the moves in the mapping.
func (lm LegalMoves) Len() int {
	n := 0
	for _, tos := range lm {
		n += len(tos)
	}
	return n
}

// IsChecked reports whether the player's king is attacked. It relies on
// p.KingSquare being current and returns false when it is unset.
func (b *Board) IsChecked(p *Player) bool {
	if p.KingSquare == nil {
		return false
	}
	return b.checkedByPawn(p) ||
		b.checkedByKnight(p) ||
		b.checkedBySlider(p) ||
		b.checkedByKing(p)
}

func (b *Board) enemyAt(sq *Square, p *Player, kinds ...Kind) bool {
	if sq == nil || !sq.HasOpponent(p.Color) {
		return false
	}
	for _, k := range kinds {
		if sq.Has(k) {
			return true
		}
	}
	return false
}

// checkedByPawn looks along the player's own forward diagonals: an enemy pawn
// there attacks the king in the reverse direction.
func (b *Board) checkedByPawn(p *Player) bool {
	for _, d := range p.PawnCaptureDirections {
		if b.enemyAt(b.Neighbor(p.KingSquare, d, 1), p, Pawn) {
			return true
		}
	}
	return false
}

func (b *Board) checkedByKnight(p *Player) bool {
	for _, d := range KnightDirections {
		if b.enemyAt(b.Neighbor(p.KingSquare, d, 1), p, Knight) {
			return true
		}
	}
	return false
}

func (b *Board) checkedBySlider(p *Player) bool {
	for _, d := range QueenDirections {
		for sq := b.Neighbor(p.KingSquare, d, 1); sq != nil; sq = b.Neighbor(sq, d, 1) {
			if sq.IsEmpty() {
				continue
			}
			if isStraight(d) {
				if b.enemyAt(sq, p, Rook, Queen) {
					return true
				}
			} else if b.enemyAt(sq, p, Bishop, Queen) {
				return true
			}
			break
		}
	}
	return false
}

func (b *Board) checkedByKing(p *Player) bool {
	for _, d := range KingDirections {
		if b.enemyAt(b.Neighbor(p.KingSquare, d, 1), p, King) {
			return true
		}
	}
	return false
}

// IsCheckedByMoving trial-applies m, tests the player's king, then reverts
// the board and the player's king reference.
func (b *Board) IsCheckedByMoving(p *Player, m *Move) bool {
	if p.KingSquare == nil {
		return false
	}

	saved := p.KingSquare
	b.Apply(m)
	if m.Piece.Kind == King {
		p.KingSquare = b.At(m.To)
	}
	checked := b.IsChecked(p)
	b.Undo(m)
	p.KingSquare = saved

	return checked
}

// GetLegalMoves enumerates every pseudo-legal move of the player's pieces and
// keeps those that do not leave the player's king in check.
func (b *Board) GetLegalMoves(p *Player, enPassantTarget string) LegalMoves {
	legal := make(LegalMoves)
	for i := range b.squares {
		sq := &b.squares[i]
		if !sq.HasAlly(p.Color) {
			continue
		}
		for _, m := range b.PseudoLegalMoves(p, sq, enPassantTarget) {
			if b.IsCheckedByMoving(p, m) {
				continue
			}
			tos, ok := legal[sq.Name]
			if !ok {
				tos = make(map[string]*Move)
				legal[sq.Name] = tos
			}
			tos[squareName(m.Key())] = m
		}
	}
	return legal
}
