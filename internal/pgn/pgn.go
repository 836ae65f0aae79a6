// Package pgn exports game sessions as Portable Game Notation text.
package pgn

import (
	"errors"
	"fmt"
	"sort"

	nchess "github.com/notnil/chess"

	"github.com/justinabrahms/chessrules/internal/chess"
	"github.com/justinabrahms/chessrules/internal/fen"
)

// ErrUnsupportedMove is returned for moves PGN cannot express, such as
// Fischer-Random castling filed under the rook's square.
var ErrUnsupportedMove = errors.New("move not expressible in PGN")

// Export replays the session's history and renders it with the given tag
// pairs. Sessions that did not start from the standard position carry SetUp
// and FEN tags.
func Export(e *chess.Engine, tags map[string]string) (string, error) {
	history := e.History()

	start, err := fen.Parse(history[0].FEN)
	if err != nil {
		return "", err
	}

	var opts []func(*nchess.Game)
	if history[0].FEN != fen.StartFEN {
		opt, err := nchess.FEN(start.Standard())
		if err != nil {
			return "", fmt.Errorf("start position: %w", err)
		}
		opts = append(opts, opt)
	}
	game := nchess.NewGame(opts...)

	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		game.AddTagPair(k, tags[k])
	}
	if history[0].FEN != fen.StartFEN {
		game.AddTagPair("SetUp", "1")
		game.AddTagPair("FEN", start.Standard())
	}

	for i, h := range history[1:] {
		uci := h.Move.FromSquare + h.Move.ToSquare
		if h.Move.IsPromoting {
			uci += "q"
		}
		m, err := nchess.UCINotation{}.Decode(game.Position(), uci)
		if err != nil {
			return "", fmt.Errorf("%w: ply %d %s: %v", ErrUnsupportedMove, i+1, uci, err)
		}
		if err := game.Move(m); err != nil {
			return "", fmt.Errorf("%w: ply %d %s: %v", ErrUnsupportedMove, i+1, uci, err)
		}
	}

	if e.GetDrawReason() == chess.DrawFiftyMove && game.Outcome() == nchess.NoOutcome {
		if err := game.Draw(nchess.FiftyMoveRule); err != nil {
			return "", fmt.Errorf("claim fifty move draw: %w", err)
		}
	}

	return game.String(), nil
}
