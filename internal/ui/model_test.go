package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yubota24504/FileVizDedup/internal/config"
	"github.com/yubota24504/FileVizDedup/internal/services"
	"github.com/yubota24504/FileVizDedup/internal/state"
)

func runes(value string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(value)}
}

type fixture struct {
	fs        billy.Filesystem
	model     Model
	generator *services.MockGenerator
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	fsys := memfs.New()
	for path, content := range map[string]string{
		"/data/a/photo.jpg":      "same-bytes",
		"/data/b/photo copy.jpg": "same-bytes",
		"/data/notes.txt":        "unique",
	} {
		require.NoError(t, util.WriteFile(fsys, path, []byte(content), 0o644))
	}

	detector, err := services.NewDetector(fsys, services.DetectorOptions{Workers: 2})
	require.NoError(t, err)
	generator := services.NewMockGenerator("same photo twice")
	cfg := config.DefaultConfig()
	cfg.Path = "/data"

	model := NewModel(state.NewState(cfg), Services{
		Scanner:   services.NewFSScanner(fsys, services.ScanOptions{}),
		Finder:    detector,
		Actions:   services.NewFSActions(fsys, zerolog.Nop()),
		Explainer: services.NewGroupExplainer(detector, generator, services.ExplainOptions{}),
	}, cfg)
	return fixture{fs: fsys, model: model, generator: generator}
}

func update(t *testing.T, model Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := model.Update(msg)
	typed, ok := next.(Model)
	require.True(t, ok)
	return typed, cmd
}

func scanned(t *testing.T, fx fixture) Model {
	t.Helper()
	msg := fx.model.scanCmd(context.Background(), "/data")()
	model, _ := update(t, fx.model, msg)
	require.True(t, model.state.HasTree())
	return model
}

func TestScanPopulatesTreeAndGroups(t *testing.T) {
	fx := newFixture(t)
	model := scanned(t, fx)

	assert.Equal(t, "/data", model.state.CurrentPath())
	assert.EqualValues(t, 26, model.state.Root.Size)
	require.Len(t, model.state.Groups, 1)
	assert.EqualValues(t, 10, model.state.Groups[0].Wasted)
	assert.Contains(t, model.status, "1 groups")
}

func TestScanKeyStartsScanning(t *testing.T) {
	fx := newFixture(t)
	model, cmd := update(t, fx.model, runes("s"))

	assert.True(t, model.scanning)
	assert.NotNil(t, cmd)
	assert.Len(t, model.sources, 2)

	model, _ = update(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, model.scanning)
	assert.Equal(t, "Scan cancelled", model.status)
}

func TestScanErrorIsReported(t *testing.T) {
	fx := newFixture(t)
	msg := fx.model.scanCmd(context.Background(), "/missing")()
	model, _ := update(t, fx.model, msg)

	assert.False(t, model.state.HasTree())
	assert.Contains(t, model.status, "Scan error")
}

func TestMarkAndDeleteDuplicates(t *testing.T) {
	fx := newFixture(t)
	model := scanned(t, fx)

	model, _ = update(t, model, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, state.ViewDuplicates, model.state.View)

	model, _ = update(t, model, runes("a"))
	marked := model.state.MarkedPaths()
	require.Len(t, marked, 1)

	model, cmd := update(t, model, runes("d"))
	require.NotNil(t, cmd)
	model, _ = update(t, model, cmd())
	require.True(t, model.confirming)
	assert.Equal(t, 1, model.preview.TotalFiles)
	assert.EqualValues(t, 10, model.preview.TotalBytes)

	model, cmd = update(t, model, runes("y"))
	require.NotNil(t, cmd)
	model, _ = update(t, model, cmd())

	assert.False(t, model.confirming)
	assert.Empty(t, model.state.Groups)
	assert.Empty(t, model.state.MarkedPaths())
	assert.EqualValues(t, 16, model.state.Root.Size)
	_, err := fx.fs.Stat(marked[0])
	assert.Error(t, err)
}

func TestDeleteCanBeCancelled(t *testing.T) {
	fx := newFixture(t)
	model := scanned(t, fx)
	model.state.ToggleView()
	model, _ = update(t, model, runes("a"))
	model, cmd := update(t, model, runes("d"))
	model, _ = update(t, model, cmd())

	model, cmd = update(t, model, runes("n"))
	assert.Nil(t, cmd)
	assert.False(t, model.confirming)
	assert.Len(t, model.state.Groups, 1)
}

func TestDeleteWithoutMarks(t *testing.T) {
	fx := newFixture(t)
	model := scanned(t, fx)
	model.state.ToggleView()

	model, cmd := update(t, model, runes("d"))
	assert.Nil(t, cmd)
	assert.Contains(t, model.status, "Nothing marked")
}

func TestExplainCurrentGroup(t *testing.T) {
	fx := newFixture(t)
	model := scanned(t, fx)
	model.state.ToggleView()

	model, cmd := update(t, model, runes("e"))
	require.NotNil(t, cmd)
	model, _ = update(t, model, cmd())

	group, ok := model.state.CurrentGroup()
	require.True(t, ok)
	text, ok := model.state.Explanation(group.Hash)
	require.True(t, ok)
	assert.Equal(t, "same photo twice", text)
	require.Len(t, fx.generator.Prompts, 1)
	assert.Contains(t, model.View(), "same photo twice")
}

func TestTreeNavigationAndSearch(t *testing.T) {
	fx := newFixture(t)
	model := scanned(t, fx)

	model, _ = update(t, model, tea.KeyMsg{Type: tea.KeyDown})
	node := model.state.CurrentNode()
	require.NotNil(t, node)
	model, _ = update(t, model, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, node.NodePath(), model.state.CurrentPath())
	model, _ = update(t, model, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "/data", model.state.CurrentPath())

	model, _ = update(t, model, runes("/"))
	require.True(t, model.searching)
	model, _ = update(t, model, runes("notes"))
	model, _ = update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "notes", model.state.SearchQuery)
	assert.Len(t, model.state.VisibleNodes(), 2)
}

func TestConfigSnapshotKeepsSessionPreferences(t *testing.T) {
	fx := newFixture(t)
	model, _ := update(t, fx.model, runes("o"))
	model, _ = update(t, model, runes("h"))

	snapshot := model.ConfigSnapshot()
	assert.Equal(t, "/data", snapshot.Path)
	assert.True(t, snapshot.ShowHidden)
	assert.EqualValues(t, "name", snapshot.SortMode)
	assert.Equal(t, fx.model.base.OllamaModel, snapshot.OllamaModel)
}

func TestKeyMapOverrides(t *testing.T) {
	keys := KeyMapFrom(map[string]string{"scan": "S, f5", "bogus": "z", "quit": " "})
	assert.Equal(t, []string{"S", "f5"}, keys.Scan.Keys())
	assert.Equal(t, []string{"q", "ctrl+c"}, keys.Quit.Keys())
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "999B", formatSize(999))
	assert.Equal(t, "1.5KB", formatSize(1500))
	assert.Equal(t, "2.0MB", formatSize(2_000_000))
	assert.Equal(t, "...c/d.txt", truncateLeft("/a/b/c/d.txt", 10))
	assert.Equal(t, "short", truncateLeft("short", 10))
	assert.Equal(t, 0, scrollTop(0, 3, 10, 5))
	assert.Equal(t, 2, scrollTop(0, 6, 10, 5))
	assert.Equal(t, 5, scrollTop(9, 9, 10, 5))
}
