package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/parvel/divtracker/pkg/db/migrations"
	"github.com/parvel/divtracker/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// rarityInsertBatchSize bounds the row count per INSERT statement so the
// engine's parameter limit is never hit. Batching is invisible to other
// connections; the surrounding transaction stays atomic.
const rarityInsertBatchSize = 500

// SQLiteStore implements MetadataStore using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path         string
	MaxOpenConns int
	LogLevel     logger.LogLevel
}

// NewSQLiteStore creates a new SQLite-backed metadata store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate runs database migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return migrations.NewMigrator(s.db).Migrate(ctx)
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Filter metadata operations

// filterUpsertColumns are the columns refreshed when a scan rediscovers an
// already-known file. The id is never touched on conflict.
var filterUpsertColumns = []string{"filter_type", "filter_name", "last_update", "updated_at"}

func (s *SQLiteStore) UpsertFilter(ctx context.Context, filter *models.FilterMetadata) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "file_path"}},
			DoUpdates: clause.AssignmentColumns(filterUpsertColumns),
		}).
		Create(filter).Error
}

func (s *SQLiteStore) UpsertFilters(ctx context.Context, filters []models.FilterMetadata) error {
	if len(filters) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "file_path"}},
				DoUpdates: clause.AssignmentColumns(filterUpsertColumns),
			}).
			CreateInBatches(filters, rarityInsertBatchSize).Error
	})
}

func (s *SQLiteStore) GetFilter(ctx context.Context, id string) (*models.FilterMetadata, error) {
	var filter models.FilterMetadata
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&filter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &filter, nil
}

func (s *SQLiteStore) GetFilterByPath(ctx context.Context, filePath string) (*models.FilterMetadata, error) {
	var filter models.FilterMetadata
	err := s.db.WithContext(ctx).Where("file_path = ?", filePath).First(&filter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &filter, nil
}

func (s *SQLiteStore) ListFilters(ctx context.Context) ([]models.FilterMetadata, error) {
	var filters []models.FilterMetadata
	err := s.db.WithContext(ctx).Order("filter_name").Find(&filters).Error
	return filters, err
}

func (s *SQLiteStore) ListFiltersByType(ctx context.Context, filterType models.FilterType) ([]models.FilterMetadata, error) {
	var filters []models.FilterMetadata
	err := s.db.WithContext(ctx).
		Where("filter_type = ?", filterType).
		Order("filter_name").
		Find(&filters).Error
	return filters, err
}

func (s *SQLiteStore) DeleteFilter(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("filter_id = ?", id).Delete(&models.FilterCardRarity{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.FilterMetadata{}).Error
	})
}

// DeleteFiltersNotIn prunes metadata rows for files that vanished from disk.
// An empty survivor list deletes every row; a scan that found nothing resets
// the table.
func (s *SQLiteStore) DeleteFiltersNotIn(ctx context.Context, filePaths []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if len(filePaths) == 0 {
			err = tx.Where("1 = 1").Delete(&models.FilterMetadata{}).Error
		} else {
			err = tx.Where("file_path NOT IN ?", filePaths).Delete(&models.FilterMetadata{}).Error
		}
		if err != nil {
			return err
		}

		// Cascade for orphaned rarity rows without relying on PRAGMA foreign_keys.
		return tx.Exec("DELETE FROM filter_card_rarities WHERE filter_id NOT IN (SELECT id FROM filter_metadata)").Error
	})
}

func (s *SQLiteStore) MarkFilterParsed(ctx context.Context, id string, parsedAt time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.FilterMetadata{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_fully_parsed": true,
			"parsed_at":       parsedAt,
		}).Error
}

// Per-filter card rarity operations

// ReplaceCardRarities swaps a filter's entire rarity set in one transaction.
// Other connections observe either the full old set or the full new set.
func (s *SQLiteStore) ReplaceCardRarities(ctx context.Context, filterID string, rarities []models.FilterCardRarity) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("filter_id = ?", filterID).Delete(&models.FilterCardRarity{}).Error; err != nil {
			return err
		}

		if len(rarities) == 0 {
			return nil
		}

		return tx.CreateInBatches(rarities, rarityInsertBatchSize).Error
	})
}

func (s *SQLiteStore) UpdateCardRarity(ctx context.Context, filterID, cardName string, rarity int) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "filter_id"}, {Name: "card_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"rarity"}),
		}).
		Create(&models.FilterCardRarity{
			FilterID: filterID,
			CardName: cardName,
			Rarity:   rarity,
		}).Error
}

func (s *SQLiteStore) GetCardRarities(ctx context.Context, filterID string) ([]models.FilterCardRarity, error) {
	var rarities []models.FilterCardRarity
	err := s.db.WithContext(ctx).
		Where("filter_id = ?", filterID).
		Order("card_name").
		Find(&rarities).Error
	return rarities, err
}

func (s *SQLiteStore) CountCardRarities(ctx context.Context, filterID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.FilterCardRarity{}).
		Where("filter_id = ?", filterID).
		Count(&count).Error
	return count, err
}

// Settings operations

func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, error) {
	var setting models.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&models.Setting{Key: key, Value: value}).Error
}

// Card catalog and per-league rarity operations

func (s *SQLiteStore) SeedCards(ctx context.Context, game string, names []string) error {
	if len(names) == 0 {
		return nil
	}

	cards := make([]models.DivinationCard, 0, len(names))
	for _, name := range names {
		cards = append(cards, models.DivinationCard{Game: game, Name: name})
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(cards, rarityInsertBatchSize).Error
}

func (s *SQLiteStore) ListCards(ctx context.Context, game string) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Model(&models.DivinationCard{}).
		Where("game = ?", game).
		Order("name").
		Pluck("name", &names).Error
	return names, err
}

func (s *SQLiteStore) ReplaceLeagueRarities(ctx context.Context, game, league string, rows []models.LeagueCardRarity) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game = ? AND league = ?", game, league).Delete(&models.LeagueCardRarity{}).Error; err != nil {
			return err
		}

		if len(rows) == 0 {
			return nil
		}

		return tx.CreateInBatches(rows, rarityInsertBatchSize).Error
	})
}

func (s *SQLiteStore) GetLeagueRarities(ctx context.Context, game, league string) ([]models.LeagueCardRarity, error) {
	var rows []models.LeagueCardRarity
	err := s.db.WithContext(ctx).
		Where("game = ? AND league = ?", game, league).
		Order("card_name").
		Find(&rows).Error
	return rows, err
}
