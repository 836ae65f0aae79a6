package chess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justinabrahms/chessrules/internal/fen"
)

func perft(t *testing.T, e *Engine, depth int) int {
	if depth == 0 {
		return 1
	}
	nodes := 0
	for from, tos := range e.LegalMoves() {
		for to := range tos {
			if depth == 1 {
				nodes++
				continue
			}
			require.NotNil(t, e.TryMove(from, to))
			nodes += perft(t, e, depth-1)
			require.NotNil(t, e.CancelLastMove())
		}
	}
	return nodes
}

func TestPerft(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		expected []int
	}{
		{
			name:     "Starting position",
			fen:      fen.StartFEN,
			expected: []int{20, 400, 8902},
		},
		{
			name:     "Kiwipete",
			fen:      "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
			expected: []int{48, 2039},
		},
		{
			name:     "Position 3",
			fen:      "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
			expected: []int{14, 191, 2812},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if testing.Short() && len(tt.expected) > 2 {
				tt.expected = tt.expected[:2]
			}
			engine, err := NewEngineFromFEN(tt.fen)
			require.NoError(t, err)

			for depth, want := range tt.expected {
				assert.Equal(t, want, perft(t, engine, depth+1), "depth %d", depth+1)
				assert.Equal(t, tt.fen, engine.GetFEN())
			}
		})
	}
}
