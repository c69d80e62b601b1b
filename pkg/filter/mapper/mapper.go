// Package mapper converts between persisted filter rows and the DTOs served
// to UI surfaces, and decides whether a filter is outdated for a league.
package mapper

import (
	"strings"
	"time"

	"github.com/parvel/divtracker/pkg/db/models"
	"github.com/parvel/divtracker/pkg/filter/scanner"
)

// OutdatedGrace is how far ahead of a league launch filter authors usually
// push updates. Anything newer than leagueStart - OutdatedGrace counts as
// current.
const OutdatedGrace = 72 * time.Hour

// FilterDTO mirrors a filter_metadata row with times rendered as RFC3339
// strings (empty when unset).
type FilterDTO struct {
	ID            string `json:"id"`
	FilterType    string `json:"filterType"`
	FilePath      string `json:"filePath"`
	FilterName    string `json:"filterName"`
	LastUpdate    string `json:"lastUpdate,omitempty"`
	IsFullyParsed bool   `json:"isFullyParsed"`
	ParsedAt      string `json:"parsedAt,omitempty"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// DiscoveredFilterDTO is the runtime-only view returned by scans; it is
// never persisted.
type DiscoveredFilterDTO struct {
	FilterDTO

	FileName   string `json:"fileName"`
	IsOutdated bool   `json:"isOutdated"`
}

func ToFilterDTO(m *models.FilterMetadata) FilterDTO {
	return FilterDTO{
		ID:            m.ID,
		FilterType:    string(m.FilterType),
		FilePath:      m.FilePath,
		FilterName:    m.FilterName,
		LastUpdate:    formatTime(m.LastUpdate),
		IsFullyParsed: m.IsFullyParsed,
		ParsedAt:      formatTime(m.ParsedAt),
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     m.UpdatedAt.Format(time.RFC3339),
	}
}

// ToDiscoveredFilterDTO attaches the extracted file name and the outdated
// verdict against the active league's start date.
func ToDiscoveredFilterDTO(m *models.FilterMetadata, leagueStart string) DiscoveredFilterDTO {
	return DiscoveredFilterDTO{
		FilterDTO:  ToFilterDTO(m),
		FileName:   FileNameFromPath(m.FilePath),
		IsOutdated: IsFilterOutdated(formatTime(m.LastUpdate), leagueStart),
	}
}

// FromDiscovery converts a scan record into a metadata row, deriving the
// stable id from the file path.
func FromDiscovery(d scanner.DiscoveredFile) models.FilterMetadata {
	return models.FilterMetadata{
		ID:         scanner.GenerateFilterID(d.FilePath),
		FilterType: d.FilterType,
		FilePath:   d.FilePath,
		FilterName: d.FilterName,
		LastUpdate: d.LastUpdate,
	}
}

// IsFilterOutdated reports whether a filter's last update predates the
// league start by more than the grace window. Missing or unparsable dates
// fail safe to "not outdated"; the boundary is exclusive, so an update
// exactly OutdatedGrace before launch is still current.
func IsFilterOutdated(filterLastUpdate, leagueStartDate string) bool {
	lastUpdate, ok := parseDate(filterLastUpdate)
	if !ok {
		return false
	}

	leagueStart, ok := parseDate(leagueStartDate)
	if !ok {
		return false
	}

	return lastUpdate.Before(leagueStart.Add(-OutdatedGrace))
}

// FileNameFromPath extracts the last path segment after normalizing
// separators.
func FileNameFromPath(path string) string {
	normalized := strings.ReplaceAll(path, "\\", "/")
	if idx := strings.LastIndex(normalized, "/"); idx >= 0 {
		return normalized[idx+1:]
	}
	return normalized
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}
