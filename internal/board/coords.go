package board

import "github.com/justinabrahms/chessrules/internal/fen"

// Position addresses a square by zero-based file (x) and rank (y).
type Position struct {
	File int `json:"x"`
	Rank int `json:"y"`
}

// Direction is a file/rank offset.
type Direction struct {
	DFile int `json:"dx"`
	DRank int `json:"dy"`
}

// Step returns the position n steps away along d.
func (p Position) Step(d Direction, n int) Position {
	return Position{File: p.File + n*d.DFile, Rank: p.Rank + n*d.DRank}
}

func (p Position) String() string {
	return squareName(p)
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	return Direction{DFile: -d.DFile, DRank: -d.DRank}
}

var (
	Up        = Direction{0, 1}
	Down      = Direction{0, -1}
	Left      = Direction{-1, 0}
	Right     = Direction{1, 0}
	UpLeft    = Direction{-1, 1}
	UpRight   = Direction{1, 1}
	DownLeft  = Direction{-1, -1}
	DownRight = Direction{1, -1}

	UpUpLeft       = Direction{-1, 2}
	UpUpRight      = Direction{1, 2}
	UpRightRight   = Direction{2, 1}
	DownRightRight = Direction{2, -1}
	DownDownRight  = Direction{1, -2}
	DownDownLeft   = Direction{-1, -2}
	DownLeftLeft   = Direction{-2, -1}
	UpLeftLeft     = Direction{-2, 1}
)

var (
	RookDirections   = []Direction{Up, Right, Down, Left}
	BishopDirections = []Direction{UpLeft, UpRight, DownRight, DownLeft}
	QueenDirections  = append(append([]Direction{}, BishopDirections...), RookDirections...)
	KingDirections   = QueenDirections
	KnightDirections = []Direction{
		UpUpLeft, UpUpRight, UpRightRight, DownRightRight,
		DownDownRight, DownDownLeft, DownLeftLeft, UpLeftLeft,
	}
)

func isStraight(d Direction) bool {
	return d.DFile == 0 || d.DRank == 0
}

func squareName(p Position) string {
	if p.File < 0 || p.Rank < 0 || p.File >= numFiles || p.Rank >= numRanks {
		return ""
	}
	return fen.SquareName(p.File, p.Rank)
}
