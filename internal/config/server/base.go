package server

import (
	"fmt"

	"github.com/spf13/viper"
)

type BaseServerConfig struct {
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Log      LogServerConfig      `mapstructure:"log"      yaml:"log"`
	Metadata MetadataServerConfig `mapstructure:"metadata" yaml:"metadata"`
	Games    []GameServerConfig   `mapstructure:"games"    yaml:"games"`
}

func LoadServerConfig() (*BaseServerConfig, error) {
	cfg := &BaseServerConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// Game returns the configuration block for the given game id, or nil.
func (cfg *BaseServerConfig) Game(id string) *GameServerConfig {
	for i := range cfg.Games {
		if cfg.Games[i].ID == id {
			return &cfg.Games[i]
		}
	}
	return nil
}

// LeagueStart returns the configured start date of the active league for a game.
func (cfg *BaseServerConfig) LeagueStart(game string) (string, error) {
	gc := cfg.Game(game)
	if gc == nil {
		return "", fmt.Errorf("unknown game: %s", game)
	}
	return gc.LeagueStart, nil
}
