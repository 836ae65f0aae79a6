package chess

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMoveResultJSONSerializationAlwaysIncludesRequiredFields ensures that
// MoveResult structs always serialize to JSON with the expected field names
func TestMoveResultJSONSerializationAlwaysIncludesRequiredFields(t *testing.T) {
	result, err := NewEngine().MakeMove("e2", "e4")
	require.NoError(t, err)

	jsonData, err := json.Marshal(result)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(jsonData, &parsed))

	for _, field := range []string{"from", "to", "san", "fen", "check", "checkmate", "draw", "gameOver", "result", "move"} {
		assert.Contains(t, parsed, field)
	}
	assert.Equal(t, "e2", parsed["from"])
	assert.Equal(t, "e4", parsed["san"])
	assert.Equal(t, result.FEN, parsed["fen"])

	move, ok := parsed["move"].(map[string]interface{})
	require.True(t, ok)
	for _, field := range []string{"algebraic", "fromPosition", "toPosition", "fromSquare", "toSquare"} {
		assert.Contains(t, move, field)
	}
	assert.NotContains(t, move, "nestedMove")
	assert.Equal(t, map[string]interface{}{"x": float64(4), "y": float64(3)}, move["toPosition"])
}

// TestCastlingRecordJSONIncludesNestedMove ensures castling serializes its
// rook leg.
func TestCastlingRecordJSONIncludesNestedMove(t *testing.T) {
	engine, err := NewEngineFromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	rec := engine.TryMove("e1", "g1")
	require.NotNil(t, rec)

	jsonData, err := json.Marshal(rec)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(jsonData, &parsed))

	nested, ok := parsed["nestedMove"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "h1", nested["fromSquare"])
	assert.Equal(t, "f1", nested["toSquare"])
}

// TestHistoryJSONIncludesRequiredFields ensures history entries always carry
// the position, the move and the check flag.
func TestHistoryJSONIncludesRequiredFields(t *testing.T) {
	engine := NewEngine()
	playAll(t, engine, "e2e4")

	jsonData, err := json.Marshal(engine.History())
	require.NoError(t, err)

	var parsed []map[string]interface{}
	require.NoError(t, json.Unmarshal(jsonData, &parsed))
	require.Len(t, parsed, 2)

	for _, entry := range parsed {
		for _, field := range []string{"fen", "move", "checked"} {
			assert.Contains(t, entry, field)
		}
	}
	assert.Nil(t, parsed[0]["move"])
	assert.NotNil(t, parsed[1]["move"])
}

// TestFENValidationRejectsInvalidInput ensures that the chess engine
// properly validates FEN strings and rejects invalid input
func TestFENValidationRejectsInvalidInput(t *testing.T) {
	testCases := []struct {
		name     string
		fen      string
		expected bool
	}{
		{"Empty FEN should be rejected", "", false},
		{"Valid starting position should be accepted", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", true},
		{"Invalid FEN with too few sections should be rejected", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq", false},
		{"Valid mid-game position should be accepted", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e4 0 1", true},
		{"Invalid board configuration should be rejected", "invalid/board/config/here w KQkq - 0 1", false},
		{"Unknown piece letter should be rejected", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w KQkq - 0 1", false},
		{"Short row should be rejected", "rnbqkbnr/ppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", false},
		{"Negative halfmove clock should be rejected", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1", false},
		{"Zero fullmove number should be rejected", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 0", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEngineFromFEN(tc.fen)
			if tc.expected {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
