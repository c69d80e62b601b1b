// Package filter orchestrates rarity models: discovery, lazy parsing,
// selection and application of loot filter card tiers.
package filter

import (
	"context"
	"fmt"
	"time"

	"github.com/parvel/divtracker/pkg/db/models"
	"github.com/parvel/divtracker/pkg/db/store"
	"github.com/parvel/divtracker/pkg/filter/mapper"
	"github.com/parvel/divtracker/pkg/filter/parser"
	"github.com/parvel/divtracker/pkg/filter/scanner"
	"github.com/parvel/divtracker/pkg/log"
	"github.com/parvel/divtracker/pkg/notify"
	"github.com/parvel/divtracker/pkg/settings"
)

// FileScanner discovers filter files for a game.
type FileScanner interface {
	ScanAll(game string) ([]scanner.DiscoveredFile, error)
}

// FileParser extracts a card tier mapping from one filter file.
type FileParser interface {
	ParseFile(path string) (*parser.Result, error)
}

// CardWriter is the collaborator that persists applied rarities per league.
type CardWriter interface {
	UpdateRaritiesFromFilter(ctx context.Context, filterID, game, league string) (int, error)
}

// LeagueSource resolves the start date of the active league for a game.
type LeagueSource interface {
	LeagueStart(ctx context.Context, game string) (string, error)
}

// LeagueSourceFunc adapts a function to the LeagueSource interface.
type LeagueSourceFunc func(ctx context.Context, game string) (string, error)

func (f LeagueSourceFunc) LeagueStart(ctx context.Context, game string) (string, error) {
	return f(ctx, game)
}

// ScanResult is the outcome of one full scan cycle.
type ScanResult struct {
	Filters     []mapper.DiscoveredFilterDTO `json:"filters"`
	LocalCount  int                          `json:"localCount"`
	OnlineCount int                          `json:"onlineCount"`
}

// ParseResult is the (possibly cached) divination section of one filter.
type ParseResult struct {
	HasDivinationSection bool           `json:"hasDivinationSection"`
	TotalCards           int            `json:"totalCards"`
	CardRarities         map[string]int `json:"cardRarities"`
}

// ApplyResult reports the outcome of applying a filter to a league.
type ApplyResult struct {
	Success    bool   `json:"success"`
	TotalCards int    `json:"totalCards"`
	FilterName string `json:"filterName"`
}

// RarityModelService drives filters through Discovered, Parsed and Applied.
// All collaborators are injected; callers hold one instance per process.
type RarityModelService struct {
	scanner  FileScanner
	parser   FileParser
	store    store.MetadataStore
	settings settings.Settings
	cards    CardWriter
	leagues  LeagueSource
	sink     notify.Sink
	log      log.LoggerService
}

func NewRarityModelService(
	fileScanner FileScanner,
	fileParser FileParser,
	metadataStore store.MetadataStore,
	appSettings settings.Settings,
	cards CardWriter,
	leagues LeagueSource,
	sink notify.Sink,
	logger log.LoggerService,
) *RarityModelService {
	return &RarityModelService{
		scanner:  fileScanner,
		parser:   fileParser,
		store:    metadataStore,
		settings: appSettings,
		cards:    cards,
		leagues:  leagues,
		sink:     sink,
		log:      logger.Named("rarity-models"),
	}
}

// ScanFilters reconciles the metadata table with the filter files currently
// on disk and returns the discovered set. Concurrent scans are allowed;
// upserts are last-writer-wins.
func (s *RarityModelService) ScanFilters(ctx context.Context, game string) (*ScanResult, error) {
	discovered, err := s.scanner.ScanAll(game)
	if err != nil {
		return nil, fmt.Errorf("failed to scan filter directories: %w", err)
	}

	filters := make([]models.FilterMetadata, 0, len(discovered))
	survivors := make([]string, 0, len(discovered))
	for _, d := range discovered {
		filters = append(filters, mapper.FromDiscovery(d))
		survivors = append(survivors, d.FilePath)
	}

	if err := s.store.UpsertFilters(ctx, filters); err != nil {
		return nil, fmt.Errorf("failed to upsert filter metadata: %w", err)
	}

	if err := s.store.DeleteFiltersNotIn(ctx, survivors); err != nil {
		return nil, fmt.Errorf("failed to prune removed filters: %w", err)
	}

	all, err := s.store.ListFilters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list filters: %w", err)
	}

	leagueStart, err := s.leagues.LeagueStart(ctx, game)
	if err != nil {
		// Fail safe: without a league start date nothing is outdated.
		s.log.Warn("Could not resolve league start for game '%s': %v", game, err)
		leagueStart = ""
	}

	result := &ScanResult{
		Filters: make([]mapper.DiscoveredFilterDTO, 0, len(all)),
	}

	for i := range all {
		result.Filters = append(result.Filters, mapper.ToDiscoveredFilterDTO(&all[i], leagueStart))

		switch all[i].FilterType {
		case models.FilterTypeLocal:
			result.LocalCount++
		case models.FilterTypeOnline:
			result.OnlineCount++
		}
	}

	s.log.Info("Scan for game '%s' found %d filters (%d local, %d online)",
		game, len(result.Filters), result.LocalCount, result.OnlineCount)

	return result, nil
}

// GetFilter returns one filter DTO, or nil when the id is unknown.
func (s *RarityModelService) GetFilter(ctx context.Context, id string) (*mapper.FilterDTO, error) {
	m, err := s.store.GetFilter(ctx, id)
	if err != nil || m == nil {
		return nil, err
	}

	dto := mapper.ToFilterDTO(m)
	return &dto, nil
}

// GetAllFilters returns every known filter.
func (s *RarityModelService) GetAllFilters(ctx context.Context) ([]mapper.FilterDTO, error) {
	all, err := s.store.ListFilters(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]mapper.FilterDTO, 0, len(all))
	for i := range all {
		dtos = append(dtos, mapper.ToFilterDTO(&all[i]))
	}
	return dtos, nil
}

// EnsureFilterParsed is the single cache-respecting gateway to parsed data.
// Unknown ids return (nil, nil). An already-parsed filter is served from the
// stored rarity set without touching the file; otherwise the file is parsed
// once, the rarity set replaced atomically and the filter marked parsed.
func (s *RarityModelService) EnsureFilterParsed(ctx context.Context, id string) (*ParseResult, error) {
	m, err := s.store.GetFilter(ctx, id)
	if err != nil || m == nil {
		return nil, err
	}

	if m.IsFullyParsed {
		rarities, err := s.store.GetCardRarities(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load cached rarities: %w", err)
		}

		cardRarities := make(map[string]int, len(rarities))
		for _, r := range rarities {
			cardRarities[r.CardName] = r.Rarity
		}

		return &ParseResult{
			HasDivinationSection: len(cardRarities) > 0,
			TotalCards:           len(cardRarities),
			CardRarities:         cardRarities,
		}, nil
	}

	parsed, err := s.parser.ParseFile(m.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse filter %s: %w", id, err)
	}

	rarities := make([]models.FilterCardRarity, 0, len(parsed.CardRarities))
	for card, rarity := range parsed.CardRarities {
		rarities = append(rarities, models.FilterCardRarity{
			FilterID: id,
			CardName: card,
			Rarity:   rarity,
		})
	}

	if err := s.store.ReplaceCardRarities(ctx, id, rarities); err != nil {
		return nil, fmt.Errorf("failed to store card rarities: %w", err)
	}

	if err := s.store.MarkFilterParsed(ctx, id, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to mark filter parsed: %w", err)
	}

	s.log.Debug("Parsed filter %s: %d cards, divination section: %t",
		id, parsed.TotalCards, parsed.HasDivinationSection)

	return &ParseResult{
		HasDivinationSection: parsed.HasDivinationSection,
		TotalCards:           parsed.TotalCards,
		CardRarities:         parsed.CardRarities,
	}, nil
}

// ParseFilter is EnsureFilterParsed with an unknown id surfaced as an error.
func (s *RarityModelService) ParseFilter(ctx context.Context, id string) (*ParseResult, error) {
	result, err := s.EnsureFilterParsed(ctx, id)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("filter not found: %s", id)
	}
	return result, nil
}

// SelectFilter persists the user's filter choice. An empty id clears the
// selection without touching the metadata table.
func (s *RarityModelService) SelectFilter(ctx context.Context, id string) error {
	if id == "" {
		return s.settings.SetSelectedFilterID(ctx, "")
	}

	m, err := s.store.GetFilter(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("filter not found: %s", id)
	}

	return s.settings.SetSelectedFilterID(ctx, id)
}

// SelectedFilter returns the currently selected filter, or nil when none is
// selected or the selection points at a since-deleted row.
func (s *RarityModelService) SelectedFilter(ctx context.Context) (*mapper.FilterDTO, error) {
	id, err := s.settings.SelectedFilterID(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}

	return s.GetFilter(ctx, id)
}

func (s *RarityModelService) RaritySource(ctx context.Context) (settings.RaritySource, error) {
	return s.settings.RaritySource(ctx)
}

// SetRaritySource validates before any persistence occurs.
func (s *RarityModelService) SetRaritySource(ctx context.Context, value string) error {
	source, err := settings.ParseRaritySource(value)
	if err != nil {
		return err
	}
	return s.settings.SetRaritySource(ctx, source)
}

// UpdateCardRarity applies a manual single-card correction.
func (s *RarityModelService) UpdateCardRarity(ctx context.Context, filterID, cardName string, rarity int) error {
	if rarity < parser.RarityExtremelyRare || rarity > parser.RarityCommon {
		return fmt.Errorf("rarity must be between %d and %d, got %d",
			parser.RarityExtremelyRare, parser.RarityCommon, rarity)
	}

	m, err := s.store.GetFilter(ctx, filterID)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("filter not found: %s", filterID)
	}

	return s.store.UpdateCardRarity(ctx, filterID, cardName, rarity)
}

// ApplyFilterRarities pushes a filter's tier mapping into the per-league
// rarity table. A filter without a divination section is a no-op reported
// as Success=false; the collaborator is never invoked for it.
func (s *RarityModelService) ApplyFilterRarities(ctx context.Context, id, game, league string) (*ApplyResult, error) {
	m, err := s.store.GetFilter(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("filter not found: %s", id)
	}

	parsed, err := s.EnsureFilterParsed(ctx, id)
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, fmt.Errorf("filter not found: %s", id)
	}

	if !parsed.HasDivinationSection {
		return &ApplyResult{
			Success:    false,
			TotalCards: 0,
			FilterName: m.FilterName,
		}, nil
	}

	if _, err := s.cards.UpdateRaritiesFromFilter(ctx, id, game, league); err != nil {
		return nil, err
	}

	result := &ApplyResult{
		Success:    true,
		TotalCards: parsed.TotalCards,
		FilterName: m.FilterName,
	}

	s.sink.Publish(EventRaritiesApplied, RaritiesAppliedEvent{
		FilterID:   id,
		FilterName: m.FilterName,
		Game:       game,
		League:     league,
		TotalCards: parsed.TotalCards,
	})

	return result, nil
}
