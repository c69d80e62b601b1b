// Package divcards persists final per-card rarity decisions into the
// per-game, per-league rarity table.
package divcards

import (
	"context"
	"fmt"

	"github.com/parvel/divtracker/pkg/db/models"
	"github.com/parvel/divtracker/pkg/db/store"
	"github.com/parvel/divtracker/pkg/log"
)

// DefaultRarity is assigned to every known card a filter does not mention.
const DefaultRarity = 4

type Service struct {
	store store.MetadataStore
	log   log.LoggerService
}

func NewService(store store.MetadataStore, logger log.LoggerService) *Service {
	return &Service{
		store: store,
		log:   logger.Named("divcards"),
	}
}

// UpdateRaritiesFromFilter writes one row per known card for the given
// game and league, taking tiers from the filter's cached rarity set and
// defaulting absent cards to common. Cards the filter lists but the catalog
// does not know are written as well. Returns the number of rows written.
func (s *Service) UpdateRaritiesFromFilter(ctx context.Context, filterID, game, league string) (int, error) {
	rarities, err := s.store.GetCardRarities(ctx, filterID)
	if err != nil {
		return 0, fmt.Errorf("failed to load card rarities for filter %s: %w", filterID, err)
	}

	fromFilter := make(map[string]int, len(rarities))
	for _, r := range rarities {
		fromFilter[r.CardName] = r.Rarity
	}

	known, err := s.store.ListCards(ctx, game)
	if err != nil {
		return 0, fmt.Errorf("failed to load card catalog for game %s: %w", game, err)
	}

	rows := make([]models.LeagueCardRarity, 0, len(known)+len(fromFilter))
	seen := make(map[string]bool, len(known))

	for _, name := range known {
		rarity, ok := fromFilter[name]
		if !ok {
			rarity = DefaultRarity
		}

		rows = append(rows, models.LeagueCardRarity{
			Game:     game,
			League:   league,
			CardName: name,
			Rarity:   rarity,
		})
		seen[name] = true
	}

	for name, rarity := range fromFilter {
		if seen[name] {
			continue
		}
		rows = append(rows, models.LeagueCardRarity{
			Game:     game,
			League:   league,
			CardName: name,
			Rarity:   rarity,
		})
	}

	if err := s.store.ReplaceLeagueRarities(ctx, game, league, rows); err != nil {
		return 0, fmt.Errorf("failed to replace league rarities: %w", err)
	}

	s.log.Info("Applied %d card rarities from filter %s to %s/%s", len(rows), filterID, game, league)
	return len(rows), nil
}

// SeedDefaultCatalog loads the built-in card list for a game. Existing
// catalog entries are kept.
func (s *Service) SeedDefaultCatalog(ctx context.Context, game string) error {
	names, ok := defaultCatalog[game]
	if !ok {
		return nil
	}
	return s.store.SeedCards(ctx, game, names)
}
