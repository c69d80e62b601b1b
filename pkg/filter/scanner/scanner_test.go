package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	config "github.com/parvel/divtracker/internal/config/server"
	"github.com/parvel/divtracker/pkg/db/models"
	"github.com/parvel/divtracker/pkg/log"
	"github.com/stretchr/testify/assert"
)

func testLogger() log.LoggerService {
	return log.NewLoggerService("test", config.LogServerConfig{
		Level:      "FATAL",
		TimeFormat: time.RFC3339,
		NoTerminal: true,
	})
}

func testScanner(t *testing.T) (*Scanner, string) {
	root := t.TempDir()

	sc := New([]config.GameServerConfig{
		{ID: "poe1", FiltersDir: root, OnlineSubdir: "OnlineFilters"},
	}, testLogger())

	return sc, root
}

func TestGenerateFilterIDDeterministic(t *testing.T) {
	a := GenerateFilterID(`C:\Users\Exile\Documents\My Games\Path of Exile\NeverSink.filter`)
	b := GenerateFilterID(`c:/users/exile/documents/my games/path of exile/neversink.filter`)
	c := GenerateFilterID(`C:/Users/Exile/Documents/My Games/Path of Exile/NEVERSINK.FILTER`)

	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
	assert.Regexp(t, `^filter_[0-9a-f]{8}$`, a)
}

func TestGenerateFilterIDDistinctPaths(t *testing.T) {
	a := GenerateFilterID("/filters/strict.filter")
	b := GenerateFilterID("/filters/semi-strict.filter")

	assert.NotEqual(t, a, b)
}

func TestScanAllMissingDirectories(t *testing.T) {
	sc := New([]config.GameServerConfig{
		{ID: "poe1", FiltersDir: filepath.Join(t.TempDir(), "does-not-exist")},
	}, testLogger())

	discovered, err := sc.ScanAll("poe1")
	assert.NoError(t, err)
	assert.Empty(t, discovered)
}

func TestScanAllUnknownGame(t *testing.T) {
	sc, _ := testScanner(t)

	_, err := sc.ScanAll("poe3")
	assert.ErrorContains(t, err, "unknown game")
}

func TestScanAll(t *testing.T) {
	sc, root := testScanner(t)

	online := filepath.Join(root, "OnlineFilters")
	assert.NoError(t, os.MkdirAll(online, 0755))

	writeFile(t, filepath.Join(root, "Strict.filter"))
	writeFile(t, filepath.Join(root, "notes.txt"))
	writeFile(t, filepath.Join(online, "NeverSink Semi-Strict.filter"))

	discovered, err := sc.ScanAll("poe1")
	assert.NoError(t, err)
	assert.Len(t, discovered, 2)

	assert.Equal(t, models.FilterTypeLocal, discovered[0].FilterType)
	assert.Equal(t, "Strict", discovered[0].FilterName)
	assert.NotNil(t, discovered[0].LastUpdate)

	assert.Equal(t, models.FilterTypeOnline, discovered[1].FilterType)
	assert.Equal(t, "NeverSink Semi-Strict", discovered[1].FilterName)
}

func TestDirectoryExists(t *testing.T) {
	dir := t.TempDir()

	assert.True(t, DirectoryExists(dir))
	assert.False(t, DirectoryExists(filepath.Join(dir, "missing")))

	file := filepath.Join(dir, "a.filter")
	writeFile(t, file)
	assert.False(t, DirectoryExists(file))
}

func TestFilterNameFromPath(t *testing.T) {
	assert.Equal(t, "Strict", FilterNameFromPath(`C:\Filters\Strict.filter`))
	assert.Equal(t, "Semi Strict", FilterNameFromPath("/filters/Semi Strict.filter"))
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	assert.NoError(t, os.WriteFile(path, []byte("Show\n"), 0644))
}
