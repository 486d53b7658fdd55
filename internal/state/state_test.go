package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yubota24504/FileVizDedup/internal/config"
	"github.com/yubota24504/FileVizDedup/internal/domain"
)

func sampleTree() *domain.DirectoryNode {
	docs := &domain.DirectoryNode{
		Name: "docs",
		Path: "/root/docs",
		Size: 300,
		Children: []domain.FilesystemNode{
			&domain.FileEntry{Name: "a.txt", Path: "/root/docs/a.txt", Size: 100, Extension: ".txt"},
			&domain.FileEntry{Name: "b.txt", Path: "/root/docs/b.txt", Size: 200, Extension: ".txt"},
		},
	}
	return &domain.DirectoryNode{
		Name: "root",
		Path: "/root",
		Size: 405,
		Children: []domain.FilesystemNode{
			&domain.FileEntry{Name: "z.bin", Path: "/root/z.bin", Size: 100, Extension: ".bin"},
			&domain.FileEntry{Name: ".hidden", Path: "/root/.hidden", Size: 5},
			docs,
		},
	}
}

func newTestState(t *testing.T) *State {
	t.Helper()
	appState := NewState(config.DefaultConfig())
	appState.SetTree(sampleTree())
	return appState
}

func visiblePaths(appState *State) []string {
	paths := []string{}
	for _, item := range appState.VisibleNodes() {
		paths = append(paths, item.Node.NodePath())
	}
	return paths
}

func TestSetTreeFocusesRoot(t *testing.T) {
	appState := newTestState(t)

	assert.True(t, appState.HasTree())
	assert.Equal(t, "/root", appState.CurrentPath())
	assert.True(t, appState.IsExpanded("/root"))
	assert.Equal(t, []string{"/root", "/root/docs", "/root/z.bin"}, visiblePaths(appState))
}

func TestExpandAndSortModes(t *testing.T) {
	appState := newTestState(t)
	require.True(t, appState.ToggleExpanded("/root/docs"))

	assert.Equal(t, []string{"/root", "/root/docs", "/root/docs/b.txt", "/root/docs/a.txt", "/root/z.bin"}, visiblePaths(appState))

	assert.Equal(t, domain.SortByName, appState.ToggleSortMode())
	assert.Equal(t, []string{"/root", "/root/docs", "/root/docs/a.txt", "/root/docs/b.txt", "/root/z.bin"}, visiblePaths(appState))
}

func TestShowHiddenAndSearch(t *testing.T) {
	appState := newTestState(t)
	appState.ToggleShowHidden()
	assert.Contains(t, visiblePaths(appState), "/root/.hidden")

	appState.SearchQuery = "B.TXT"
	appState.ToggleExpanded("/root/docs")
	assert.Equal(t, []string{"/root", "/root/docs", "/root/docs/b.txt"}, visiblePaths(appState))
}

func TestEnterAndLeaveDirectories(t *testing.T) {
	appState := newTestState(t)

	assert.False(t, appState.EnterDir("/root/z.bin"))
	require.True(t, appState.EnterDir("/root/docs"))
	assert.Equal(t, "/root/docs", appState.CurrentPath())
	assert.Equal(t, "/root/docs", appState.CurrentNode().NodePath())

	require.True(t, appState.LeaveDir())
	assert.Equal(t, "/root", appState.CurrentPath())
	assert.False(t, appState.LeaveDir())
}

func TestSetTreeKeepsKnownCurrentDirectory(t *testing.T) {
	appState := newTestState(t)
	require.True(t, appState.EnterDir("/root/docs"))

	appState.SetTree(sampleTree())
	assert.Equal(t, "/root/docs", appState.CurrentPath())

	appState.SetTree(&domain.DirectoryNode{Name: "other", Path: "/other"})
	assert.Equal(t, "/other", appState.CurrentPath())
	assert.False(t, appState.IsExpanded("/root/docs"))
}

func TestMarkDuplicatesKeepsFirstCopy(t *testing.T) {
	appState := newTestState(t)
	group := domain.NewDuplicateGroup("h", 100, []string{"/root/docs/a.txt", "/root/z.bin"})
	appState.SetGroups([]domain.DuplicateGroup{group})

	assert.Equal(t, 1, appState.MarkDuplicates(group))
	assert.Equal(t, []string{"/root/z.bin"}, appState.MarkedPaths())

	count, total := appState.SelectionSummary()
	assert.Equal(t, 1, count)
	assert.EqualValues(t, 100, total)

	assert.False(t, appState.ToggleMark("/root/z.bin"))
	assert.Empty(t, appState.MarkedPaths())
}

func TestRemovePathsUpdatesTreeAndGroups(t *testing.T) {
	appState := newTestState(t)
	keep := domain.NewDuplicateGroup("big", 200, []string{"/x/1", "/x/2", "/x/3"})
	gone := domain.NewDuplicateGroup("small", 100, []string{"/root/docs/a.txt", "/root/z.bin"})
	appState.SetGroups([]domain.DuplicateGroup{keep, gone})
	appState.SetExplanation("small", "two copies")
	appState.MarkDuplicates(gone)

	appState.RemovePaths([]string{"/root/z.bin", "/x/3"})

	assert.EqualValues(t, 305, appState.Root.Size)
	assert.Len(t, appState.Root.Children, 2)
	require.Len(t, appState.Groups, 1)
	assert.Equal(t, "big", appState.Groups[0].Hash)
	assert.EqualValues(t, 200, appState.Groups[0].Wasted)
	assert.Empty(t, appState.MarkedPaths())
	_, ok := appState.Explanation("small")
	assert.False(t, ok)
}

func TestRemovePathsShrinksNestedAncestors(t *testing.T) {
	appState := newTestState(t)
	appState.RemovePaths([]string{"/root/docs/b.txt"})

	docs := appState.Root.Subdirectories()[0]
	assert.EqualValues(t, 100, docs.Size)
	assert.EqualValues(t, 205, appState.Root.Size)
}

func TestGroupCursorClamps(t *testing.T) {
	appState := newTestState(t)
	_, ok := appState.CurrentGroup()
	assert.False(t, ok)

	appState.SetGroups([]domain.DuplicateGroup{
		domain.NewDuplicateGroup("a", 10, []string{"/1", "/2"}),
		domain.NewDuplicateGroup("b", 5, []string{"/3", "/4"}),
	})
	appState.MoveGroupCursor(5)
	group, ok := appState.CurrentGroup()
	require.True(t, ok)
	assert.Equal(t, "b", group.Hash)
	appState.MoveGroupCursor(-9)
	assert.Zero(t, appState.GroupCursor)
	assert.EqualValues(t, 15, appState.TotalWasted())
}

func TestToggleView(t *testing.T) {
	appState := newTestState(t)
	assert.Equal(t, ViewDuplicates, appState.ToggleView())
	assert.Equal(t, ViewTree, appState.ToggleView())
}
