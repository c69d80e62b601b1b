package store

import (
	"context"
	"time"

	"github.com/parvel/divtracker/pkg/db/models"
)

// MetadataStore defines the interface for database operations.
//
// Single-row getters return (nil, nil) when no row matches; callers decide
// whether a missing row is an error.
type MetadataStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Filter metadata operations
	UpsertFilter(ctx context.Context, filter *models.FilterMetadata) error
	UpsertFilters(ctx context.Context, filters []models.FilterMetadata) error
	GetFilter(ctx context.Context, id string) (*models.FilterMetadata, error)
	GetFilterByPath(ctx context.Context, filePath string) (*models.FilterMetadata, error)
	ListFilters(ctx context.Context) ([]models.FilterMetadata, error)
	ListFiltersByType(ctx context.Context, filterType models.FilterType) ([]models.FilterMetadata, error)
	DeleteFilter(ctx context.Context, id string) error
	DeleteFiltersNotIn(ctx context.Context, filePaths []string) error
	MarkFilterParsed(ctx context.Context, id string, parsedAt time.Time) error

	// Per-filter card rarity operations
	ReplaceCardRarities(ctx context.Context, filterID string, rarities []models.FilterCardRarity) error
	UpdateCardRarity(ctx context.Context, filterID, cardName string, rarity int) error
	GetCardRarities(ctx context.Context, filterID string) ([]models.FilterCardRarity, error)
	CountCardRarities(ctx context.Context, filterID string) (int64, error)

	// Settings operations
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	// Card catalog and per-league rarity operations
	SeedCards(ctx context.Context, game string, names []string) error
	ListCards(ctx context.Context, game string) ([]string, error)
	ReplaceLeagueRarities(ctx context.Context, game, league string, rows []models.LeagueCardRarity) error
	GetLeagueRarities(ctx context.Context, game, league string) ([]models.LeagueCardRarity, error)
}
