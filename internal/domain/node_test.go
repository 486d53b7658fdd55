package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryNodeJSONShape(t *testing.T) {
	root := &DirectoryNode{
		Name: "a",
		Path: "/a",
		Size: 5,
		Children: []FilesystemNode{
			&FileEntry{Name: "x.TXT", Path: "/a/x.TXT", Size: 5, Extension: ".txt"},
			&DirectoryNode{Name: "empty", Path: "/a/empty"},
		},
	}

	data, err := json.Marshal(root)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "directory", decoded["type"])
	assert.EqualValues(t, 5, decoded["size"])
	assert.NotContains(t, decoded, "extension")

	children := decoded["children"].([]any)
	require.Len(t, children, 2)

	file := children[0].(map[string]any)
	assert.Equal(t, "file", file["type"])
	assert.Equal(t, ".txt", file["extension"])
	assert.NotContains(t, file, "children")

	empty := children[1].(map[string]any)
	assert.Equal(t, []any{}, empty["children"])
}

func TestDuplicateGroupWasted(t *testing.T) {
	group := NewDuplicateGroup("abc", 100, []string{"/a/1.bin", "/a/2.bin", "/b/3.bin"})
	assert.EqualValues(t, 200, group.Wasted)

	assert.EqualValues(t, 0, WastedBytes(100, 1))
	assert.EqualValues(t, 0, WastedBytes(100, 0))
}

func TestWalkAndFileCount(t *testing.T) {
	root := &DirectoryNode{
		Name: "r",
		Path: "/r",
		Children: []FilesystemNode{
			&FileEntry{Name: "1", Path: "/r/1"},
			&DirectoryNode{Name: "d", Path: "/r/d", Children: []FilesystemNode{
				&FileEntry{Name: "2", Path: "/r/d/2"},
			}},
		},
	}

	var order []string
	Walk(root, func(node FilesystemNode, depth int) bool {
		order = append(order, node.NodePath())
		return true
	})
	assert.Equal(t, []string{"/r", "/r/1", "/r/d", "/r/d/2"}, order)
	assert.Equal(t, 2, root.FileCount())
	assert.Len(t, root.Subdirectories(), 1)
}
