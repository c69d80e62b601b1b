package client

import (
	"context"
	"fmt"

	config "github.com/parvel/divtracker/internal/config/server"
	"github.com/parvel/divtracker/pkg/db/store"
	"github.com/parvel/divtracker/pkg/divcards"
	"github.com/parvel/divtracker/pkg/filter"
	"github.com/parvel/divtracker/pkg/filter/parser"
	"github.com/parvel/divtracker/pkg/filter/scanner"
	"github.com/parvel/divtracker/pkg/log"
	"github.com/parvel/divtracker/pkg/notify"
	"github.com/parvel/divtracker/pkg/settings"
)

// composition is the one-shot equivalent of the agent's service wiring.
type composition struct {
	cfg   *config.BaseServerConfig
	store *store.SQLiteStore
	svc   *filter.RarityModelService
}

func compose(ctx context.Context) (*composition, error) {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// One-shot commands print their own output; keep the logger off the
	// terminal unless a log file is configured.
	logCfg := cfg.Log
	logCfg.NoTerminal = true
	logger := log.NewLoggerService("divtracker", logCfg)

	metadataStore, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path: cfg.Metadata.SQLite.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata store: %w", err)
	}

	if err := metadataStore.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to metadata store: %w", err)
	}

	if err := metadataStore.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate metadata store: %w", err)
	}

	cards := divcards.NewService(metadataStore, logger)
	for _, game := range cfg.Games {
		if err := cards.SeedDefaultCatalog(ctx, game.ID); err != nil {
			return nil, fmt.Errorf("failed to seed card catalog: %w", err)
		}
	}

	svc := filter.NewRarityModelService(
		scanner.New(cfg.Games, logger),
		parser.New(),
		metadataStore,
		settings.New(metadataStore),
		cards,
		filter.LeagueSourceFunc(func(_ context.Context, game string) (string, error) {
			return cfg.LeagueStart(game)
		}),
		notify.NewBroadcaster(logger),
		logger,
	)

	return &composition{
		cfg:   cfg,
		store: metadataStore,
		svc:   svc,
	}, nil
}

func (c *composition) Close() {
	c.store.Close()
}
