package board

// PseudoLegalMoves generates the moves the piece on sq could make by its
// movement pattern alone. They may still leave the mover's king in check.
// enPassantTarget names the pawn that just advanced two squares, or "".
func (b *Board) PseudoLegalMoves(p *Player, sq *Square, enPassantTarget string) []*Move {
	if !sq.HasAlly(p.Color) {
		return nil
	}

	switch sq.Piece.Kind {
	case Pawn:
		return b.pawnMoves(p, sq, enPassantTarget)
	case Knight:
		return b.leaperMoves(p, sq, KnightDirections)
	case Bishop:
		return b.slidingMoves(p, sq, BishopDirections)
	case Rook:
		return b.slidingMoves(p, sq, RookDirections)
	case Queen:
		return b.slidingMoves(p, sq, QueenDirections)
	case King:
		return append(b.leaperMoves(p, sq, KingDirections), b.castlingMoves(p, sq)...)
	}
	return nil
}

func simpleMove(from, to *Square) *Move {
	return &Move{Kind: Simple, From: from.Position, To: to.Position, Piece: from.Piece}
}

func captureMove(from, to *Square) *Move {
	return &Move{
		Kind:      Capture,
		From:      from.Position,
		To:        to.Position,
		Piece:     from.Piece,
		Captured:  to.Piece,
		CaptureAt: to.Position,
	}
}

// capturable reports whether a piece of color c may take whatever stands on
// to. Kings are never captured; check is detected instead.
func capturable(to *Square, c Color) bool {
	return to.HasOpponent(c) && !to.Has(King)
}

func (b *Board) leaperMoves(p *Player, from *Square, dirs []Direction) []*Move {
	var moves []*Move
	for _, d := range dirs {
		to := b.Neighbor(from, d, 1)
		switch {
		case to == nil:
		case to.IsEmpty():
			moves = append(moves, simpleMove(from, to))
		case capturable(to, p.Color):
			moves = append(moves, captureMove(from, to))
		}
	}
	return moves
}

func (b *Board) slidingMoves(p *Player, from *Square, dirs []Direction) []*Move {
	var moves []*Move
	for _, d := range dirs {
		for to := b.Neighbor(from, d, 1); to != nil; to = b.Neighbor(to, d, 1) {
			if to.IsEmpty() {
				moves = append(moves, simpleMove(from, to))
				continue
			}
			if capturable(to, p.Color) {
				moves = append(moves, captureMove(from, to))
			}
			break
		}
	}
	return moves
}

func (b *Board) pawnMoves(p *Player, from *Square, enPassantTarget string) []*Move {
	var moves []*Move

	if one := b.Neighbor(from, p.Direction, 1); one != nil && one.IsEmpty() {
		if b.Neighbor(one, p.Direction, 1) == nil {
			moves = append(moves, promotion(simpleMove(from, one)))
		} else {
			moves = append(moves, simpleMove(from, one))
		}

		if from.Position.Rank == p.pawnRank() {
			if two := b.Neighbor(one, p.Direction, 1); two != nil && two.IsEmpty() {
				m := simpleMove(from, two)
				m.EnPassantTarget = two.Name
				moves = append(moves, m)
			}
		}
	}

	for _, d := range p.PawnCaptureDirections {
		to := b.Neighbor(from, d, 1)
		if to == nil || !capturable(to, p.Color) {
			continue
		}
		m := captureMove(from, to)
		if b.Neighbor(to, p.Direction, 1) == nil {
			m = promotion(m)
		}
		moves = append(moves, m)
	}

	return append(moves, b.enPassantMoves(p, from, enPassantTarget)...)
}

func promotion(m *Move) *Move {
	m.Kind = Promotion
	m.PromoteTo = Queen
	return m
}

func (b *Board) enPassantMoves(p *Player, from *Square, target string) []*Move {
	if target == "" {
		return nil
	}

	var moves []*Move
	for _, d := range p.EnPassantDirections {
		victim := b.Neighbor(from, d, 1)
		if victim == nil || victim.Name != target {
			continue
		}
		if !victim.Has(Pawn) || !victim.HasOpponent(p.Color) {
			continue
		}
		to := b.Neighbor(victim, p.Direction, 1)
		if to == nil || !to.IsEmpty() {
			continue
		}
		moves = append(moves, &Move{
			Kind:      EnPassant,
			From:      from.Position,
			To:        to.Position,
			Piece:     from.Piece,
			Captured:  victim.Piece,
			CaptureAt: victim.Position,
		})
	}
	return moves
}

// castlingMoves yields one composite king+rook move per wing that still has
// its right, provided the king is not in check, every square the king and
// rook cross is empty (apart from those two pieces), and no square the king
// passes through is attacked. The landing square itself is checked later by
// the legality filter like any other move.
func (b *Board) castlingMoves(p *Player, from *Square) []*Move {
	if !p.Rights.Kingside && !p.Rights.Queenside {
		return nil
	}
	if b.IsChecked(p) {
		return nil
	}

	var moves []*Move
	for _, side := range []CastlingSide{Kingside, Queenside} {
		if !p.CanCastle(side) {
			continue
		}
		cs := p.CastlingSquares[side]
		if from.Position != cs.KingFrom {
			continue
		}
		rook := b.At(cs.RookFrom)
		if rook == nil || !rook.Has(Rook) || !rook.HasAlly(p.Color) {
			continue
		}
		if !b.castlingPathClear(cs) || !b.castlingTransitSafe(p, from, rook, cs) {
			continue
		}

		m := &Move{
			Kind:  Castling,
			From:  cs.KingFrom,
			To:    cs.KingTo,
			Piece: from.Piece,
			Side:  side,
			Rook: &Move{
				Kind:  Simple,
				From:  cs.RookFrom,
				To:    cs.RookTo,
				Piece: rook.Piece,
			},
		}
		if abs(cs.KingTo.File-cs.KingFrom.File) <= 1 {
			key := cs.RookFrom
			m.key = &key
		}
		moves = append(moves, m)
	}
	return moves
}

func (b *Board) castlingPathClear(cs CastlingSquares) bool {
	lo := min(cs.KingFrom.File, cs.KingTo.File, cs.RookFrom.File, cs.RookTo.File)
	hi := max(cs.KingFrom.File, cs.KingTo.File, cs.RookFrom.File, cs.RookTo.File)
	for file := lo; file <= hi; file++ {
		pos := Position{file, cs.KingFrom.Rank}
		if pos == cs.KingFrom || pos == cs.RookFrom {
			continue
		}
		if !b.At(pos).IsEmpty() {
			return false
		}
	}
	return true
}

// castlingTransitSafe walks the king across every square between its home and
// its landing square, trial-placing it on each with the castling rook lifted.
func (b *Board) castlingTransitSafe(p *Player, king, rook *Square, cs CastlingSquares) bool {
	step := Direction{DFile: sign(cs.KingTo.File - cs.KingFrom.File)}
	if step.DFile == 0 {
		return true
	}

	rookPiece := rook.Piece
	rook.Piece = NoPiece
	defer func() { rook.Piece = rookPiece }()

	for pos := cs.KingFrom.Step(step, 1); ; pos = pos.Step(step, 1) {
		transit := b.At(pos)
		if b.IsCheckedByMoving(p, simpleMove(king, transit)) {
			return false
		}
		if pos == cs.KingTo {
			return true
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
