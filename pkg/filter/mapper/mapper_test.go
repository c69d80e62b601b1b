package mapper

import (
	"testing"
	"time"

	"github.com/parvel/divtracker/pkg/db/models"
	"github.com/parvel/divtracker/pkg/filter/scanner"
	"github.com/stretchr/testify/assert"
)

func TestIsFilterOutdatedBoundary(t *testing.T) {
	leagueStart := time.Date(2026, 8, 29, 20, 0, 0, 0, time.UTC)
	boundary := leagueStart.Add(-OutdatedGrace)

	// Exactly three days before launch is still current.
	assert.False(t, IsFilterOutdated(boundary.Format(time.RFC3339Nano), leagueStart.Format(time.RFC3339)))

	// One millisecond beyond the grace window is outdated.
	beyond := boundary.Add(-time.Millisecond)
	assert.True(t, IsFilterOutdated(beyond.Format(time.RFC3339Nano), leagueStart.Format(time.RFC3339)))

	// Updated after launch is trivially current.
	after := leagueStart.Add(time.Hour)
	assert.False(t, IsFilterOutdated(after.Format(time.RFC3339), leagueStart.Format(time.RFC3339)))
}

func TestIsFilterOutdatedInvalidDates(t *testing.T) {
	assert.False(t, IsFilterOutdated("", "2026-08-29"))
	assert.False(t, IsFilterOutdated("2026-08-01", ""))
	assert.False(t, IsFilterOutdated("not-a-date", "2026-08-29"))
	assert.False(t, IsFilterOutdated("2026-08-01", "not-a-date"))
	assert.False(t, IsFilterOutdated("", ""))
}

func TestIsFilterOutdatedDateOnlyLayout(t *testing.T) {
	assert.True(t, IsFilterOutdated("2026-08-01", "2026-08-29"))
	assert.False(t, IsFilterOutdated("2026-08-27", "2026-08-29"))
}

func TestFileNameFromPath(t *testing.T) {
	assert.Equal(t, "Strict.filter", FileNameFromPath(`C:\Users\Exile\Documents\Strict.filter`))
	assert.Equal(t, "Strict.filter", FileNameFromPath("/home/exile/filters/Strict.filter"))
	assert.Equal(t, "Strict.filter", FileNameFromPath("Strict.filter"))
}

func TestToFilterDTO(t *testing.T) {
	lastUpdate := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	m := &models.FilterMetadata{
		ID:            "filter_0a1b2c3d",
		FilterType:    models.FilterTypeLocal,
		FilePath:      "/filters/Strict.filter",
		FilterName:    "Strict",
		LastUpdate:    &lastUpdate,
		IsFullyParsed: true,
	}

	dto := ToFilterDTO(m)

	assert.Equal(t, "filter_0a1b2c3d", dto.ID)
	assert.Equal(t, "local", dto.FilterType)
	assert.Equal(t, "Strict", dto.FilterName)
	assert.Equal(t, lastUpdate.Format(time.RFC3339Nano), dto.LastUpdate)
	assert.True(t, dto.IsFullyParsed)
	assert.Empty(t, dto.ParsedAt)
}

func TestToDiscoveredFilterDTO(t *testing.T) {
	lastUpdate := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	m := &models.FilterMetadata{
		ID:         "filter_0a1b2c3d",
		FilterType: models.FilterTypeOnline,
		FilePath:   `C:\Filters\Old.filter`,
		FilterName: "Old",
		LastUpdate: &lastUpdate,
	}

	dto := ToDiscoveredFilterDTO(m, "2026-08-29T20:00:00Z")

	assert.Equal(t, "Old.filter", dto.FileName)
	assert.True(t, dto.IsOutdated)

	// Without a league start date nothing is outdated.
	dto = ToDiscoveredFilterDTO(m, "")
	assert.False(t, dto.IsOutdated)
}

func TestFromDiscovery(t *testing.T) {
	lastUpdate := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	d := scanner.DiscoveredFile{
		FilterType: models.FilterTypeLocal,
		FilePath:   "/filters/Strict.filter",
		FilterName: "Strict",
		LastUpdate: &lastUpdate,
	}

	m := FromDiscovery(d)

	assert.Equal(t, scanner.GenerateFilterID("/filters/Strict.filter"), m.ID)
	assert.Equal(t, models.FilterTypeLocal, m.FilterType)
	assert.Equal(t, "Strict", m.FilterName)
	assert.False(t, m.IsFullyParsed)
}
