package filter

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/parvel/divtracker/pkg/filter/scanner"
	"github.com/parvel/divtracker/pkg/log"
)

// watchDebounce coalesces bursts of filesystem events (editors write filter
// files in several steps) into one rescan.
const watchDebounce = 500 * time.Millisecond

// Watcher triggers a rescan whenever a watched filter directory changes.
type Watcher struct {
	svc   *RarityModelService
	games []string
	log   log.LoggerService
	fsw   *fsnotify.Watcher
}

// NewWatcher watches the local and online filter roots of the given games.
// Directories that do not exist yet are skipped; they get picked up on the
// next agent restart.
func NewWatcher(svc *RarityModelService, sc *scanner.Scanner, games []string, logger log.LoggerService) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		svc:   svc,
		games: games,
		log:   logger.Named("watcher"),
		fsw:   fsw,
	}

	for _, game := range games {
		for _, dir := range []string{sc.FiltersDirectory(game), sc.OnlineFiltersDirectory(game)} {
			if !scanner.DirectoryExists(dir) {
				w.log.Debug("Skipping missing filter directory '%s'", dir)
				continue
			}
			if err := fsw.Add(dir); err != nil {
				w.log.Warn("Could not watch '%s': %v", dir, err)
				continue
			}
			w.log.Info("Watching filter directory '%s'", dir)
		}
	}

	return w, nil
}

// Run blocks until the context is done, rescanning after debounced change
// bursts.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				fire = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Watch error: %v", err)

		case <-fire:
			timer = nil
			fire = nil
			w.rescan(ctx)
		}
	}
}

func (w *Watcher) rescan(ctx context.Context) {
	for _, game := range w.games {
		if _, err := w.svc.ScanFilters(ctx, game); err != nil {
			w.log.Error("Rescan for game '%s' failed: %v", game, err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}
