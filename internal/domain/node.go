package domain

import "encoding/json"

type NodeKind string

const (
	NodeFile NodeKind = "file"
	NodeDir  NodeKind = "directory"
)

// FilesystemNode is either a *FileEntry or a *DirectoryNode.
type FilesystemNode interface {
	Kind() NodeKind
	NodeName() string
	NodePath() string
	NodeSize() int64
}

type FileEntry struct {
	Name      string
	Path      string
	Size      int64
	Extension string
}

func (entry *FileEntry) Kind() NodeKind   { return NodeFile }
func (entry *FileEntry) NodeName() string { return entry.Name }
func (entry *FileEntry) NodePath() string { return entry.Path }
func (entry *FileEntry) NodeSize() int64  { return entry.Size }

func (entry *FileEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(fileRecord{
		Name:      entry.Name,
		Path:      entry.Path,
		Type:      NodeFile,
		Size:      entry.Size,
		Extension: entry.Extension,
	})
}

// DirectoryNode keeps children in discovery order. Size is the sum of all
// descendant file sizes and is only final once the scan of the subtree ends.
type DirectoryNode struct {
	Name     string
	Path     string
	Size     int64
	Children []FilesystemNode
}

func (dir *DirectoryNode) Kind() NodeKind   { return NodeDir }
func (dir *DirectoryNode) NodeName() string { return dir.Name }
func (dir *DirectoryNode) NodePath() string { return dir.Path }
func (dir *DirectoryNode) NodeSize() int64  { return dir.Size }

func (dir *DirectoryNode) MarshalJSON() ([]byte, error) {
	children := dir.Children
	if children == nil {
		children = []FilesystemNode{}
	}
	return json.Marshal(directoryRecord{
		Name:     dir.Name,
		Path:     dir.Path,
		Type:     NodeDir,
		Size:     dir.Size,
		Children: children,
	})
}

// Subdirectories returns the directory children in discovery order.
func (dir *DirectoryNode) Subdirectories() []*DirectoryNode {
	dirs := make([]*DirectoryNode, 0, len(dir.Children))
	for _, child := range dir.Children {
		if sub, ok := child.(*DirectoryNode); ok {
			dirs = append(dirs, sub)
		}
	}
	return dirs
}

// Walk visits node and every descendant depth-first, parents before children.
// Returning false from visit stops descent into that node.
func Walk(node FilesystemNode, visit func(node FilesystemNode, depth int) bool) {
	walk(node, 0, visit)
}

func walk(node FilesystemNode, depth int, visit func(FilesystemNode, int) bool) {
	if node == nil || !visit(node, depth) {
		return
	}
	dir, ok := node.(*DirectoryNode)
	if !ok {
		return
	}
	for _, child := range dir.Children {
		walk(child, depth+1, visit)
	}
}

// FileCount returns the number of files below dir.
func (dir *DirectoryNode) FileCount() int {
	count := 0
	Walk(dir, func(node FilesystemNode, _ int) bool {
		if node.Kind() == NodeFile {
			count++
		}
		return true
	})
	return count
}

type fileRecord struct {
	Name      string   `json:"name"`
	Path      string   `json:"path"`
	Type      NodeKind `json:"type"`
	Size      int64    `json:"size"`
	Extension string   `json:"extension"`
}

type directoryRecord struct {
	Name     string           `json:"name"`
	Path     string           `json:"path"`
	Type     NodeKind         `json:"type"`
	Size     int64            `json:"size"`
	Children []FilesystemNode `json:"children"`
}
