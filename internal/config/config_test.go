package config

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justinabrahms/chessrules/internal/chess960"
	"github.com/justinabrahms/chessrules/internal/fen"
)

func TestLoadDefaults(t *testing.T) {

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, VariantStandard, cfg.Game.Variant)
	assert.Equal(t, -1, cfg.Game.Chess960Index)
	assert.Equal(t, zerolog.InfoLevel, cfg.Logging.LogLevel())
	assert.Equal(t, 256, cfg.Hub.Buffer)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("CHESSRULES_SERVER_PORT", "9090")
	t.Setenv("CHESSRULES_GAME_VARIANT", "chess960")
	t.Setenv("CHESSRULES_GAME_CHESS960_INDEX", "518")
	t.Setenv("CHESSRULES_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, VariantChess960, cfg.Game.Variant)
	assert.Equal(t, 518, cfg.Game.Chess960Index)
	assert.Equal(t, zerolog.DebugLevel, cfg.Logging.LogLevel())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chessrules.yaml")
	content := `
server:
  host: 0.0.0.0
  port: 7000
game:
  variant: standard
  start_fen: "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1"
logging:
  level: warn
  pretty: true
hub:
  buffer: 16
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:7000", cfg.Server.Addr())
	assert.True(t, cfg.Logging.Pretty)
	assert.Equal(t, zerolog.WarnLevel, cfg.Logging.LogLevel())
	assert.Equal(t, 16, cfg.Hub.Buffer)

	start, err := cfg.Game.StartPosition(nil)
	require.NoError(t, err)
	assert.Equal(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", start)
}

func TestLoadFileRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad fen", "game:\n  start_fen: nonsense\n"},
		{"unknown variant", "game:\n  variant: crazyhouse\n"},
		{"index out of range", "game:\n  variant: chess960\n  chess960_index: 960\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"empty hub buffer", "hub:\n  buffer: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := LoadFile(path)
			assert.Error(t, err)
		})
	}
}

func TestStartPosition(t *testing.T) {
	start, err := GameConfig{Variant: VariantStandard}.StartPosition(nil)
	require.NoError(t, err)
	assert.Equal(t, fen.StartFEN, start)

	start, err = GameConfig{Variant: VariantChess960, Chess960Index: 0}.StartPosition(nil)
	require.NoError(t, err)
	assert.Equal(t, "bbqnnrkr/pppppppp/8/8/8/8/PPPPPPPP/BBQNNRKR w KQkq - 0 1", start)

	g := GameConfig{Variant: VariantChess960, Chess960Index: -1}
	a, err := g.StartPosition(rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	b, err := g.StartPosition(rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	want, err := chess960.StartFEN(chess960.Random(rand.New(rand.NewSource(3))))
	require.NoError(t, err)
	assert.Equal(t, want, a)
}
