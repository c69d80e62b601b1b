package settings

import (
	"context"
	"testing"

	"github.com/parvel/divtracker/pkg/db/store"
	"github.com/stretchr/testify/assert"
)

func testSettings(t *testing.T) *StoreSettings {
	s, err := store.NewSQLiteStore(store.SQLiteConfig{Path: ":memory:"})
	assert.NoError(t, err)

	ctx := context.Background()
	assert.NoError(t, s.Connect(ctx))
	assert.NoError(t, s.Migrate(ctx))

	t.Cleanup(func() {
		s.Close()
	})

	return New(s)
}

func TestSelectedFilterID(t *testing.T) {
	settings := testSettings(t)
	ctx := context.Background()

	id, err := settings.SelectedFilterID(ctx)
	assert.NoError(t, err)
	assert.Empty(t, id)

	assert.NoError(t, settings.SetSelectedFilterID(ctx, "filter_0a1b2c3d"))

	id, err = settings.SelectedFilterID(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "filter_0a1b2c3d", id)

	assert.NoError(t, settings.SetSelectedFilterID(ctx, ""))

	id, err = settings.SelectedFilterID(ctx)
	assert.NoError(t, err)
	assert.Empty(t, id)
}

func TestRaritySourceDefaultsToPoeNinja(t *testing.T) {
	settings := testSettings(t)

	source, err := settings.RaritySource(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, RaritySourcePoeNinja, source)
}

func TestRaritySourceRoundTrip(t *testing.T) {
	settings := testSettings(t)
	ctx := context.Background()

	for _, source := range []RaritySource{RaritySourceFilter, RaritySourceProhibitedLibrary, RaritySourcePoeNinja} {
		assert.NoError(t, settings.SetRaritySource(ctx, source))

		stored, err := settings.RaritySource(ctx)
		assert.NoError(t, err)
		assert.Equal(t, source, stored)
	}
}

func TestSetRaritySourceRejectsUnknown(t *testing.T) {
	settings := testSettings(t)

	err := settings.SetRaritySource(context.Background(), "poe.trade")
	assert.ErrorContains(t, err, "invalid rarity source: poe.trade")
}

func TestParseRaritySource(t *testing.T) {
	source, err := ParseRaritySource("poe.ninja")
	assert.NoError(t, err)
	assert.Equal(t, RaritySourcePoeNinja, source)

	_, err = ParseRaritySource("")
	assert.Error(t, err)
}
