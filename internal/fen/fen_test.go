package fen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	rec, err := Parse("r3k2r/8/8/2pP4/8/8/8/R3K2R b Kq c5 3 12")
	require.NoError(t, err)

	assert.Equal(t, "r3k2r/8/8/2pP4/8/8/8/R3K2R", rec.Position)
	assert.Equal(t, Black, rec.Active)
	assert.Equal(t, CastlingRights{Kingside: true}, rec.White)
	assert.Equal(t, CastlingRights{Queenside: true}, rec.Black)
	assert.Equal(t, CastlingRights{Kingside: true}, rec.Castling(White))
	assert.Equal(t, "c5", rec.EnPassant)
	assert.Equal(t, 3, rec.Halfmove)
	assert.Equal(t, 12, rec.Fullmove)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"empty", ""},
		{"missing counters", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -"},
		{"extra field", StartFEN + " extra"},
		{"seven rows", "rnbqkbnr/pppppppp/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"wide row", "rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"bad piece", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w KQkq - 0 1"},
		{"bad color", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1"},
		{"bad castling", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkx - 0 1"},
		{"repeated castling", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KK - 0 1"},
		{"bad en passant", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e9 0 1"},
		{"bad halfmove", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1"},
		{"negative halfmove", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1"},
		{"zero fullmove", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.fen)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e4 0 1",
		"r3k2r/8/8/8/8/8/8/R3K2R w - - 4 3",
		"r3k2r/8/8/8/8/8/8/R3K2R w Qk - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}
	for _, s := range fens {
		rec, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, s, rec.String())
	}
}

func TestCastlingString(t *testing.T) {
	all := CastlingRights{Kingside: true, Queenside: true}
	assert.Equal(t, "KQkq", CastlingString(all, all))
	assert.Equal(t, "-", CastlingString(CastlingRights{}, CastlingRights{}))
	assert.Equal(t, "Qk", CastlingString(CastlingRights{Queenside: true}, CastlingRights{Kingside: true}))

	// Flags are normalized to canonical order.
	rec, err := Parse("r3k2r/8/8/8/8/8/8/R3K2R w qkQK - 0 1")
	require.NoError(t, err)
	assert.Equal(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", rec.String())
}

func TestStandard(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{
			"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e4 0 1",
			"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		},
		{
			"rnbqkbnr/pp2pppp/8/2pP4/8/8/PPPP1PPP/RNBQKBNR w KQkq c5 0 3",
			"rnbqkbnr/pp2pppp/8/2pP4/8/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 3",
		},
		{StartFEN, StartFEN},
	}
	for _, tt := range tests {
		rec, err := Parse(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, rec.Standard())
		assert.Equal(t, tt.in, rec.String(), "Standard must not modify the record")
	}
}

func TestSquares(t *testing.T) {
	assert.Equal(t, "a1", SquareName(0, 0))
	assert.Equal(t, "h8", SquareName(7, 7))

	file, rank, ok := ParseSquare("e4")
	require.True(t, ok)
	assert.Equal(t, 4, file)
	assert.Equal(t, 3, rank)

	for _, bad := range []string{"", "e", "i1", "a0", "a9", "e44"} {
		_, _, ok := ParseSquare(bad)
		assert.False(t, ok, bad)
	}
}
