package agent

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/mwantia/fabric/pkg/container"
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

// TrackerAgent is the long-running composition root: it wires the scanner,
// parser, store and rarity model service together and keeps the filter
// directories watched until shutdown.
type TrackerAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg *config.BaseServerConfig
	sc  *container.ServiceContainer
	log log.LoggerService

	store   *store.SQLiteStore
	svc     *filter.RarityModelService
	watcher *filter.Watcher
}

func NewAgent(cfg *config.BaseServerConfig) *TrackerAgent {
	return &TrackerAgent{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: log.NewLoggerService("divtracker", cfg.Log),
	}
}

func (ta *TrackerAgent) setupServices(ctx context.Context) error {
	metadataStore, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path: ta.cfg.Metadata.SQLite.Path,
	})
	if err != nil {
		return fmt.Errorf("failed to create metadata store: %w", err)
	}

	if err := metadataStore.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to metadata store: %w", err)
	}

	if err := metadataStore.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate metadata store: %w", err)
	}

	ta.store = metadataStore

	fileScanner := scanner.New(ta.cfg.Games, ta.log)
	cards := divcards.NewService(metadataStore, ta.log)
	broadcaster := notify.NewBroadcaster(ta.log)

	for _, game := range ta.cfg.Games {
		if err := cards.SeedDefaultCatalog(ctx, game.ID); err != nil {
			return fmt.Errorf("failed to seed card catalog for game %s: %w", game.ID, err)
		}
	}

	ta.svc = filter.NewRarityModelService(
		fileScanner,
		parser.New(),
		metadataStore,
		settings.New(metadataStore),
		cards,
		filter.LeagueSourceFunc(func(_ context.Context, game string) (string, error) {
			return ta.cfg.LeagueStart(game)
		}),
		broadcaster,
		ta.log,
	)

	watcher, err := filter.NewWatcher(ta.svc, fileScanner, ta.gameIDs(), ta.log)
	if err != nil {
		return fmt.Errorf("failed to create filter watcher: %w", err)
	}
	ta.watcher = watcher

	errs := container.Errors{}

	ta.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](ta.sc,
		container.With[log.LoggerService](),
		container.WithInstance(ta.log)))

	ta.log.Debug("Registering 'MetadataStore'...")
	errs.Add(container.Register[store.SQLiteStore](ta.sc,
		container.With[store.MetadataStore](),
		container.WithInstance(metadataStore)))

	ta.log.Debug("Registering 'Sink'...")
	errs.Add(container.Register[notify.Broadcaster](ta.sc,
		container.With[notify.Sink](),
		container.WithInstance(broadcaster)))

	return errs.Errors()
}

func (ta *TrackerAgent) gameIDs() []string {
	ids := make([]string, 0, len(ta.cfg.Games))
	for _, game := range ta.cfg.Games {
		ids = append(ids, game.ID)
	}
	return ids
}

func (ta *TrackerAgent) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	ta.mutex.Lock()

	if err := ta.setupServices(ctx); err != nil {
		ta.mutex.Unlock()
		return err
	}

	ta.mutex.Unlock()

	// Reconcile once on startup so the watcher only has to track deltas.
	for _, game := range ta.gameIDs() {
		if _, err := ta.svc.ScanFilters(ctx, game); err != nil {
			ta.log.Error("Initial scan for game '%s' failed: %v", game, err)
		}
	}

	ta.wait.Add(1)
	go func() {
		defer ta.wait.Done()
		if err := ta.watcher.Run(ctx); err != nil {
			ta.log.Error("Filter watcher stopped: %v", err)
		}
	}()

	<-ctx.Done()

	timeout, err := time.ParseDuration(ta.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 60 seconds if error
		timeout = 60 * time.Second
	}

	shutdown, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := ta.watcher.Close(); err != nil {
		ta.log.Warn("Failed to close filter watcher: %v", err)
	}

	if err := ta.sc.Cleanup(shutdown); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}

	if err := ta.store.Close(); err != nil {
		return fmt.Errorf("failed to close metadata store: %w", err)
	}

	ta.wait.Wait()
	return nil
}
