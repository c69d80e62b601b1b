// Package settings is the typed configuration port over the settings table.
// Each setting gets its own strongly-typed accessor.
package settings

import (
	"context"
	"fmt"

	"github.com/parvel/divtracker/pkg/db/store"
)

// RaritySource selects where per-card rarities come from.
type RaritySource string

const (
	RaritySourcePoeNinja          RaritySource = "poe.ninja"
	RaritySourceFilter            RaritySource = "filter"
	RaritySourceProhibitedLibrary RaritySource = "prohibited-library"
)

// ParseRaritySource validates a raw source value.
func ParseRaritySource(value string) (RaritySource, error) {
	switch RaritySource(value) {
	case RaritySourcePoeNinja, RaritySourceFilter, RaritySourceProhibitedLibrary:
		return RaritySource(value), nil
	default:
		return "", fmt.Errorf("invalid rarity source: %s", value)
	}
}

const (
	keySelectedFilterID = "filter.selected_id"
	keyRaritySource     = "rarity.source"
)

// Settings exposes one accessor pair per persisted setting.
type Settings interface {
	SelectedFilterID(ctx context.Context) (string, error)
	SetSelectedFilterID(ctx context.Context, id string) error

	RaritySource(ctx context.Context) (RaritySource, error)
	SetRaritySource(ctx context.Context, source RaritySource) error
}

// StoreSettings persists settings through the metadata store.
type StoreSettings struct {
	store store.MetadataStore
}

func New(store store.MetadataStore) *StoreSettings {
	return &StoreSettings{store: store}
}

func (s *StoreSettings) SelectedFilterID(ctx context.Context) (string, error) {
	return s.store.GetSetting(ctx, keySelectedFilterID)
}

func (s *StoreSettings) SetSelectedFilterID(ctx context.Context, id string) error {
	return s.store.SetSetting(ctx, keySelectedFilterID, id)
}

func (s *StoreSettings) RaritySource(ctx context.Context) (RaritySource, error) {
	value, err := s.store.GetSetting(ctx, keyRaritySource)
	if err != nil {
		return "", err
	}
	if value == "" {
		return RaritySourcePoeNinja, nil
	}
	return ParseRaritySource(value)
}

func (s *StoreSettings) SetRaritySource(ctx context.Context, source RaritySource) error {
	if _, err := ParseRaritySource(string(source)); err != nil {
		return err
	}
	return s.store.SetSetting(ctx, keyRaritySource, string(source))
}
