package server

import (
	"os"
	"path/filepath"
)

// GameServerConfig describes one supported Path of Exile installation.
type GameServerConfig struct {
	ID           string `mapstructure:"id"            yaml:"id"`
	FiltersDir   string `mapstructure:"filters_dir"   yaml:"filters_dir"`
	OnlineSubdir string `mapstructure:"online_subdir" yaml:"online_subdir"`
	League       string `mapstructure:"league"        yaml:"league"`
	LeagueStart  string `mapstructure:"league_start"  yaml:"league_start"`
}

// DefaultFiltersDir resolves the conventional filter directory for a game.
// The game client keeps loot filters under Documents/My Games.
func DefaultFiltersDir(game string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	switch game {
	case "poe2":
		return filepath.Join(home, "Documents", "My Games", "Path of Exile 2")
	default:
		return filepath.Join(home, "Documents", "My Games", "Path of Exile")
	}
}
