// Package chess960 decodes Fischer-Random starting positions from their
// index in [0, 960).
package chess960

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/justinabrahms/chessrules/internal/fen"
)

// Count is the number of distinct starting rows.
const Count = 960

// StandardIndex decodes to the classical rnbqkbnr row.
const StandardIndex = 518

var ErrIndexOutOfRange = errors.New("chess960 index out of range")

// knightPatterns lists, for each of the 10 arrangements, the two slots (among
// the five files left after bishops and queen) that take knights. The three
// slots left over take rook, king, rook from left to right, which keeps the
// king between the rooks.
var knightPatterns = [10][2]int{
	{0, 1}, {0, 2}, {0, 3}, {0, 4},
	{1, 2}, {1, 3}, {1, 4},
	{2, 3}, {2, 4},
	{3, 4},
}

// Row decodes index into a lowercase back-rank row such as "rnbqkbnr".
//
// The index is consumed by successive divisions: base 4 for the bishop on a
// light file (b, d, f, h), base 4 for the bishop on a dark file (a, c, e, g),
// base 6 for the queen among the remaining files, and the quotient (< 10)
// selects the knight pattern.
func Row(index int) (string, error) {
	if index < 0 || index >= Count {
		return "", fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	row := make([]byte, len(fen.Files))
	n := index

	row[2*(n%4)+1] = 'b'
	n /= 4
	row[2*(n%4)] = 'b'
	n /= 4

	free := freeFiles(row)
	row[free[n%6]] = 'q'
	n /= 6

	free = freeFiles(row)
	pattern := knightPatterns[n]
	row[free[pattern[0]]] = 'n'
	row[free[pattern[1]]] = 'n'

	free = freeFiles(row)
	row[free[0]], row[free[1]], row[free[2]] = 'r', 'k', 'r'

	return string(row), nil
}

func freeFiles(row []byte) []int {
	free := make([]int, 0, len(row))
	for i, c := range row {
		if c == 0 {
			free = append(free, i)
		}
	}
	return free
}

// Index is the inverse of Row. It reports false for rows that are not valid
// Fischer-Random arrangements.
func Index(row string) (int, bool) {
	row = strings.ToLower(row)
	if len(row) != len(fen.Files) {
		return 0, false
	}

	var light, dark, queen = -1, -1, -1
	for i := 0; i < len(row); i++ {
		if row[i] == 'b' {
			if i%2 == 1 {
				light = i / 2
			} else {
				dark = i / 2
			}
		}
	}
	if light < 0 || dark < 0 {
		return 0, false
	}

	rest := make([]byte, 0, 6)
	for i := 0; i < len(row); i++ {
		if row[i] != 'b' {
			rest = append(rest, row[i])
		}
	}
	for i, c := range rest {
		if c == 'q' {
			queen = i
		}
	}
	if queen < 0 {
		return 0, false
	}

	rest = append(rest[:queen:queen], rest[queen+1:]...)
	var knights []int
	for i, c := range rest {
		if c == 'n' {
			knights = append(knights, i)
		}
	}
	if len(knights) != 2 {
		return 0, false
	}

	for p, pattern := range knightPatterns {
		if pattern[0] != knights[0] || pattern[1] != knights[1] {
			continue
		}
		index := light + 4*dark + 16*queen + 96*p
		if decoded, err := Row(index); err != nil || decoded != row {
			return 0, false
		}
		return index, true
	}
	return 0, false
}

// StartFEN embeds the decoded row on both back ranks of the standard start
// position, with full castling rights.
func StartFEN(index int) (string, error) {
	row, err := Row(index)
	if err != nil {
		return "", err
	}
	rec := &fen.Record{
		Position: row + "/pppppppp/8/8/8/8/PPPPPPPP/" + strings.ToUpper(row),
		Active:   fen.White,
		White:    fen.CastlingRights{Kingside: true, Queenside: true},
		Black:    fen.CastlingRights{Kingside: true, Queenside: true},
		Fullmove: 1,
	}
	return rec.String(), nil
}

// Random draws an index from r, or from the process-wide source when r is nil.
func Random(r *rand.Rand) int {
	if r == nil {
		return rand.Intn(Count)
	}
	return r.Intn(Count)
}
