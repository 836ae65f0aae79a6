package config

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/justinabrahms/chessrules/internal/chess960"
	"github.com/justinabrahms/chessrules/internal/fen"
)

const (
	VariantStandard = "standard"
	VariantChess960 = "chess960"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Game    GameConfig    `mapstructure:"game"`
	Logging LoggingConfig `mapstructure:"logging"`
	Hub     HubConfig     `mapstructure:"hub"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// GameConfig selects the position new sessions start from.
type GameConfig struct {
	Variant       string `mapstructure:"variant"`
	StartFEN      string `mapstructure:"start_fen"`
	Chess960Index int    `mapstructure:"chess960_index"` // -1 draws a random index
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type HubConfig struct {
	Buffer int `mapstructure:"buffer"`
}

// Load reads config.yaml from the working directory or ./config, overlaid by
// CHESSRULES_* environment variables. A missing file is not an error.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	return read(v)
}

// LoadFile reads the given file instead of searching for config.yaml.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	return read(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("CHESSRULES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("game.variant", VariantStandard)
	v.SetDefault("game.start_fen", "")
	v.SetDefault("game.chess960_index", -1)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)
	v.SetDefault("hub.buffer", 256)

	return v
}

func read(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and environment
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that can never start a session.
func (c *Config) Validate() error {
	switch c.Game.Variant {
	case VariantStandard:
		if c.Game.StartFEN != "" {
			if _, err := fen.Parse(c.Game.StartFEN); err != nil {
				return fmt.Errorf("game.start_fen: %w", err)
			}
		}
	case VariantChess960:
		if c.Game.Chess960Index < -1 || c.Game.Chess960Index >= chess960.Count {
			return fmt.Errorf("game.chess960_index: %w: %d", chess960.ErrIndexOutOfRange, c.Game.Chess960Index)
		}
	default:
		return fmt.Errorf("game.variant: unknown variant %q", c.Game.Variant)
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Hub.Buffer < 1 {
		return fmt.Errorf("hub.buffer must be positive, got %d", c.Hub.Buffer)
	}
	return nil
}

// StartPosition resolves the FEN a new session starts from. r drives the
// random Chess960 draw and may be nil.
func (g GameConfig) StartPosition(r *rand.Rand) (string, error) {
	if g.Variant == VariantChess960 {
		index := g.Chess960Index
		if index < 0 {
			index = chess960.Random(r)
		}
		return chess960.StartFEN(index)
	}
	if g.StartFEN != "" {
		return g.StartFEN, nil
	}
	return fen.StartFEN, nil
}

// LogLevel returns the configured zerolog level, info when unparseable.
func (l LoggingConfig) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
