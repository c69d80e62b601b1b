package filter

import (
	"context"
	"errors"
	"testing"
	"time"

	config "github.com/parvel/divtracker/internal/config/server"
	"github.com/parvel/divtracker/pkg/db/models"
	"github.com/parvel/divtracker/pkg/db/store"
	"github.com/parvel/divtracker/pkg/filter/parser"
	"github.com/parvel/divtracker/pkg/filter/scanner"
	"github.com/parvel/divtracker/pkg/log"
	"github.com/parvel/divtracker/pkg/settings"
	"github.com/stretchr/testify/assert"
)

type fakeScanner struct {
	files []scanner.DiscoveredFile
	err   error
}

func (f *fakeScanner) ScanAll(game string) ([]scanner.DiscoveredFile, error) {
	return f.files, f.err
}

type countingParser struct {
	calls  int
	result *parser.Result
}

func (p *countingParser) ParseFile(path string) (*parser.Result, error) {
	p.calls++
	return p.result, nil
}

type fakeCards struct {
	calls      int
	lastFilter string
	lastGame   string
	lastLeague string
}

func (f *fakeCards) UpdateRaritiesFromFilter(ctx context.Context, filterID, game, league string) (int, error) {
	f.calls++
	f.lastFilter = filterID
	f.lastGame = game
	f.lastLeague = league
	return 10, nil
}

type fakeSink struct {
	events   []string
	payloads []any
}

func (s *fakeSink) Publish(event string, payload any) {
	s.events = append(s.events, event)
	s.payloads = append(s.payloads, payload)
}

type fixture struct {
	svc     *RarityModelService
	store   *store.SQLiteStore
	scanner *fakeScanner
	parser  *countingParser
	cards   *fakeCards
	sink    *fakeSink
}

func testLogger() log.LoggerService {
	return log.NewLoggerService("test", config.LogServerConfig{
		Level:      "FATAL",
		TimeFormat: time.RFC3339,
		NoTerminal: true,
	})
}

func newFixture(t *testing.T) *fixture {
	s, err := store.NewSQLiteStore(store.SQLiteConfig{Path: ":memory:"})
	assert.NoError(t, err)

	ctx := context.Background()
	assert.NoError(t, s.Connect(ctx))
	assert.NoError(t, s.Migrate(ctx))

	t.Cleanup(func() {
		s.Close()
	})

	f := &fixture{
		store:   s,
		scanner: &fakeScanner{},
		parser:  &countingParser{result: &parser.Result{CardRarities: map[string]int{}}},
		cards:   &fakeCards{},
		sink:    &fakeSink{},
	}

	f.svc = NewRarityModelService(
		f.scanner,
		f.parser,
		s,
		settings.New(s),
		f.cards,
		LeagueSourceFunc(func(ctx context.Context, game string) (string, error) {
			return "2026-08-29T20:00:00Z", nil
		}),
		f.sink,
		testLogger(),
	)

	return f
}

func (f *fixture) seedFilter(t *testing.T, path string) string {
	t.Helper()

	now := time.Now().UTC()
	m := models.FilterMetadata{
		ID:         scanner.GenerateFilterID(path),
		FilterType: models.FilterTypeLocal,
		FilePath:   path,
		FilterName: scanner.FilterNameFromPath(path),
		LastUpdate: &now,
	}
	assert.NoError(t, f.store.UpsertFilter(context.Background(), &m))
	return m.ID
}

func TestScanFiltersLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	now := time.Now().UTC()
	f.scanner.files = []scanner.DiscoveredFile{
		{FilterType: models.FilterTypeLocal, FilePath: "/filters/a.filter", FilterName: "a", LastUpdate: &now},
		{FilterType: models.FilterTypeOnline, FilePath: "/filters/online/b.filter", FilterName: "b", LastUpdate: &now},
	}

	result, err := f.svc.ScanFilters(ctx, "poe1")
	assert.NoError(t, err)
	assert.Len(t, result.Filters, 2)
	assert.Equal(t, 1, result.LocalCount)
	assert.Equal(t, 1, result.OnlineCount)

	// The next scan no longer sees b; its row must be pruned.
	f.scanner.files = f.scanner.files[:1]

	result, err = f.svc.ScanFilters(ctx, "poe1")
	assert.NoError(t, err)
	assert.Len(t, result.Filters, 1)
	assert.Equal(t, "a", result.Filters[0].FilterName)
	assert.Zero(t, result.OnlineCount)
}

func TestScanFiltersComputesOutdated(t *testing.T) {
	f := newFixture(t)

	old := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	fresh := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	f.scanner.files = []scanner.DiscoveredFile{
		{FilterType: models.FilterTypeLocal, FilePath: "/filters/old.filter", FilterName: "old", LastUpdate: &old},
		{FilterType: models.FilterTypeLocal, FilePath: "/filters/fresh.filter", FilterName: "fresh", LastUpdate: &fresh},
	}

	result, err := f.svc.ScanFilters(context.Background(), "poe1")
	assert.NoError(t, err)

	byName := map[string]bool{}
	for _, dto := range result.Filters {
		byName[dto.FilterName] = dto.IsOutdated
	}

	assert.True(t, byName["old"])
	assert.False(t, byName["fresh"])
}

func TestScanFiltersToleratesLeagueSourceFailure(t *testing.T) {
	f := newFixture(t)

	failing := NewRarityModelService(
		f.scanner, f.parser, f.store, settings.New(f.store), f.cards,
		LeagueSourceFunc(func(ctx context.Context, game string) (string, error) {
			return "", errors.New("league service unreachable")
		}),
		f.sink, testLogger(),
	)

	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	f.scanner.files = []scanner.DiscoveredFile{
		{FilterType: models.FilterTypeLocal, FilePath: "/filters/old.filter", FilterName: "old", LastUpdate: &old},
	}

	result, err := failing.ScanFilters(context.Background(), "poe1")
	assert.NoError(t, err)
	assert.False(t, result.Filters[0].IsOutdated)
}

func TestEnsureFilterParsedUnknownID(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.EnsureFilterParsed(context.Background(), "filter_unknown")
	assert.NoError(t, err)
	assert.Nil(t, result)

	_, err = f.svc.ParseFilter(context.Background(), "filter_unknown")
	assert.ErrorContains(t, err, "filter not found: filter_unknown")
}

func TestEnsureFilterParsedRespectsCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.seedFilter(t, "/filters/a.filter")
	f.parser.result = &parser.Result{
		HasDivinationSection: true,
		TotalCards:           1,
		CardRarities:         map[string]int{"The Doctor": 1},
	}

	result, err := f.svc.EnsureFilterParsed(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.parser.calls)
	assert.True(t, result.HasDivinationSection)
	assert.Equal(t, map[string]int{"The Doctor": 1}, result.CardRarities)

	stored, err := f.store.GetFilter(ctx, id)
	assert.NoError(t, err)
	assert.True(t, stored.IsFullyParsed)

	// Second call is served from the stored rarity set; the parser must
	// not run again.
	result, err = f.svc.EnsureFilterParsed(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.parser.calls)
	assert.Equal(t, map[string]int{"The Doctor": 1}, result.CardRarities)
}

func TestSelectFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.SelectFilter(ctx, "filter_unknown")
	assert.ErrorContains(t, err, "filter not found: filter_unknown")

	id := f.seedFilter(t, "/filters/a.filter")
	assert.NoError(t, f.svc.SelectFilter(ctx, id))

	selected, err := f.svc.SelectedFilter(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, selected)
	assert.Equal(t, id, selected.ID)

	// Clearing never validates against the store.
	assert.NoError(t, f.svc.SelectFilter(ctx, ""))

	selected, err = f.svc.SelectedFilter(ctx)
	assert.NoError(t, err)
	assert.Nil(t, selected)
}

func TestRaritySource(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	source, err := f.svc.RaritySource(ctx)
	assert.NoError(t, err)
	assert.Equal(t, settings.RaritySourcePoeNinja, source)

	err = f.svc.SetRaritySource(ctx, "poe.trade")
	assert.ErrorContains(t, err, "invalid rarity source: poe.trade")

	assert.NoError(t, f.svc.SetRaritySource(ctx, "filter"))

	source, err = f.svc.RaritySource(ctx)
	assert.NoError(t, err)
	assert.Equal(t, settings.RaritySourceFilter, source)
}

func TestUpdateCardRarityBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.seedFilter(t, "/filters/a.filter")

	assert.ErrorContains(t, f.svc.UpdateCardRarity(ctx, id, "The Doctor", 0), "rarity must be between")
	assert.ErrorContains(t, f.svc.UpdateCardRarity(ctx, id, "The Doctor", 5), "rarity must be between")
	assert.ErrorContains(t, f.svc.UpdateCardRarity(ctx, "filter_unknown", "The Doctor", 2), "filter not found")

	assert.NoError(t, f.svc.UpdateCardRarity(ctx, id, "The Doctor", 2))
}

func TestApplyFilterRarities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.seedFilter(t, "/filters/a.filter")
	f.parser.result = &parser.Result{
		HasDivinationSection: true,
		TotalCards:           1,
		CardRarities:         map[string]int{"The Doctor": 1},
	}

	result, err := f.svc.ApplyFilterRarities(ctx, id, "poe1", "Settlers")
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.TotalCards)
	assert.Equal(t, "a", result.FilterName)

	assert.Equal(t, 1, f.cards.calls)
	assert.Equal(t, id, f.cards.lastFilter)
	assert.Equal(t, "poe1", f.cards.lastGame)
	assert.Equal(t, "Settlers", f.cards.lastLeague)

	assert.Equal(t, []string{EventRaritiesApplied}, f.sink.events)
	event, ok := f.sink.payloads[0].(RaritiesAppliedEvent)
	assert.True(t, ok)
	assert.Equal(t, id, event.FilterID)
	assert.Equal(t, 1, event.TotalCards)
	assert.Equal(t, "Settlers", event.League)
}

func TestApplyFilterRaritiesNoDivinationSection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.seedFilter(t, "/filters/plain.filter")
	f.parser.result = &parser.Result{CardRarities: map[string]int{}}

	result, err := f.svc.ApplyFilterRarities(ctx, id, "poe1", "Settlers")
	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Zero(t, result.TotalCards)
	assert.Equal(t, "plain", result.FilterName)

	// The collaborator and the sink stay untouched.
	assert.Zero(t, f.cards.calls)
	assert.Empty(t, f.sink.events)
}

func TestApplyFilterRaritiesUnknownID(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ApplyFilterRarities(context.Background(), "filter_unknown", "poe1", "Settlers")
	assert.ErrorContains(t, err, "filter not found: filter_unknown")
}
