// Package scanner enumerates candidate loot filter files on disk and derives
// stable filter identifiers from their paths.
package scanner

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"time"

	config "github.com/parvel/divtracker/internal/config/server"
	"github.com/parvel/divtracker/pkg/db/models"
	"github.com/parvel/divtracker/pkg/log"
)

const filterFileExtension = ".filter"

// DiscoveredFile is one raw discovery record produced by a scan.
type DiscoveredFile struct {
	FilterType models.FilterType
	FilePath   string
	FilterName string
	LastUpdate *time.Time
}

type gameDirs struct {
	filters string
	online  string
}

// Scanner walks the per-game filter directories.
type Scanner struct {
	games map[string]gameDirs
	log   log.LoggerService
}

func New(games []config.GameServerConfig, logger log.LoggerService) *Scanner {
	dirs := make(map[string]gameDirs, len(games))
	for _, game := range games {
		filters := game.FiltersDir
		if filters == "" {
			filters = config.DefaultFiltersDir(game.ID)
		}

		online := game.OnlineSubdir
		if online == "" {
			online = "OnlineFilters"
		}

		dirs[game.ID] = gameDirs{
			filters: filters,
			online:  filepath.Join(filters, online),
		}
	}

	return &Scanner{
		games: dirs,
		log:   logger.Named("scanner"),
	}
}

// FiltersDirectory returns the root holding locally maintained filters.
func (s *Scanner) FiltersDirectory(game string) string {
	return s.games[game].filters
}

// OnlineFiltersDirectory returns the subdirectory holding downloaded filters.
func (s *Scanner) OnlineFiltersDirectory(game string) string {
	return s.games[game].online
}

// ScanAll discovers every filter file for a game, local roots first.
// Directories that do not exist scan as empty.
func (s *Scanner) ScanAll(game string) ([]DiscoveredFile, error) {
	dirs, ok := s.games[game]
	if !ok {
		return nil, fmt.Errorf("unknown game: %s", game)
	}

	var discovered []DiscoveredFile

	local, err := s.scanDirectory(dirs.filters, models.FilterTypeLocal)
	if err != nil {
		return nil, err
	}
	discovered = append(discovered, local...)

	online, err := s.scanDirectory(dirs.online, models.FilterTypeOnline)
	if err != nil {
		return nil, err
	}
	discovered = append(discovered, online...)

	s.log.Debug("Discovered %d filter files for game '%s'", len(discovered), game)
	return discovered, nil
}

func (s *Scanner) scanDirectory(dir string, filterType models.FilterType) ([]DiscoveredFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read filter directory %s: %w", dir, err)
	}

	var discovered []DiscoveredFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.EqualFold(filepath.Ext(entry.Name()), filterFileExtension) {
			continue
		}

		fullPath := filepath.Join(dir, entry.Name())

		record := DiscoveredFile{
			FilterType: filterType,
			FilePath:   fullPath,
			FilterName: FilterNameFromPath(entry.Name()),
		}

		if info, err := entry.Info(); err == nil {
			modTime := info.ModTime()
			record.LastUpdate = &modTime
		} else {
			s.log.Warn("Could not stat filter file '%s': %v", fullPath, err)
		}

		discovered = append(discovered, record)
	}

	return discovered, nil
}

// DirectoryExists is a plain existence probe used by UI surfaces.
func DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FilterNameFromPath derives a display name from a file path or name.
func FilterNameFromPath(path string) string {
	base := filepath.Base(strings.ReplaceAll(path, "\\", "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// GenerateFilterID derives the stable identifier of a filter file from its
// path. The path is lower-cased and slash-normalized first, so mixed-case or
// mixed-separator spellings of the same file always yield the same id.
// FNV-1a is not collision free; a collision merges two files into one row,
// which is an accepted limitation.
func GenerateFilterID(filePath string) string {
	normalized := strings.ToLower(strings.ReplaceAll(filePath, "\\", "/"))

	h := fnv.New32a()
	h.Write([]byte(normalized))

	return fmt.Sprintf("filter_%08x", h.Sum32())
}
