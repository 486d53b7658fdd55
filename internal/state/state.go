package state

import (
	"sort"
	"strings"

	"github.com/yubota24504/FileVizDedup/internal/config"
	"github.com/yubota24504/FileVizDedup/internal/domain"
)

type Preferences struct {
	ShowHidden bool
	SafeMode   bool
	SortMode   domain.SortMode
	Theme      string
	Lang       string
}

type View int

const (
	ViewTree View = iota
	ViewDuplicates
)

type State struct {
	Path        string
	Current     string
	Cursor      int
	Expanded    map[string]bool
	Prefs       Preferences
	KeyBindings map[string]string
	SearchQuery string
	View        View

	Root    *domain.DirectoryNode
	dirs    map[string]*domain.DirectoryNode
	files   map[string]*domain.FileEntry
	parents map[string]*domain.DirectoryNode

	Groups       []domain.DuplicateGroup
	GroupCursor  int
	Marked       map[string]bool
	Explanations map[string]string
	groupSizes   map[string]int64
}

func NewState(cfg config.Config) *State {
	appState := &State{
		Path:     cfg.Path,
		Expanded: make(map[string]bool),
		Prefs: Preferences{
			ShowHidden: cfg.ShowHidden,
			SafeMode:   cfg.SafeMode,
			SortMode:   cfg.SortMode,
			Theme:      cfg.Theme,
			Lang:       cfg.Lang,
		},
		KeyBindings:  ensureBindings(cfg.KeyBindings),
		Marked:       make(map[string]bool),
		Explanations: make(map[string]string),
		groupSizes:   make(map[string]int64),
	}
	appState.clearIndex()
	return appState
}

func ensureBindings(bindings map[string]string) map[string]string {
	if bindings == nil {
		return map[string]string{}
	}
	return bindings
}

func (appState *State) clearIndex() {
	appState.dirs = make(map[string]*domain.DirectoryNode)
	appState.files = make(map[string]*domain.FileEntry)
	appState.parents = make(map[string]*domain.DirectoryNode)
}

// SetTree replaces the scanned tree. Expansion state survives for directories
// still present; the cursor stays on the current directory when possible.
func (appState *State) SetTree(root *domain.DirectoryNode) {
	appState.Root = root
	appState.clearIndex()
	if root == nil {
		appState.Current = ""
		appState.Cursor = 0
		return
	}
	appState.Path = root.Path
	indexTree(root, appState.dirs, appState.files, appState.parents)

	if _, ok := appState.dirs[appState.Current]; !ok {
		appState.Current = root.Path
		appState.Cursor = 0
	}
	for path := range appState.Expanded {
		if _, ok := appState.dirs[path]; !ok {
			delete(appState.Expanded, path)
		}
	}
	appState.Expanded[appState.Current] = true
}

func indexTree(root *domain.DirectoryNode, dirs map[string]*domain.DirectoryNode, files map[string]*domain.FileEntry, parents map[string]*domain.DirectoryNode) {
	dirs[root.Path] = root
	stack := []*domain.DirectoryNode{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range dir.Children {
			parents[child.NodePath()] = dir
			switch typed := child.(type) {
			case *domain.DirectoryNode:
				dirs[typed.Path] = typed
				stack = append(stack, typed)
			case *domain.FileEntry:
				files[typed.Path] = typed
			}
		}
	}
}

func (appState *State) HasTree() bool {
	return appState.Root != nil
}

func (appState *State) SetCurrent(path string) bool {
	if _, ok := appState.dirs[path]; !ok {
		return false
	}
	appState.Current = path
	appState.Cursor = 0
	appState.Expanded[path] = true
	return true
}

type VisibleNode struct {
	Node  domain.FilesystemNode
	Depth int
}

func (appState *State) VisibleNodes() []VisibleNode {
	root, ok := appState.dirs[appState.Current]
	if !ok {
		return nil
	}
	visible := make([]VisibleNode, 0, len(root.Children)+1)
	appState.appendNode(&visible, root, 0)
	return visible
}

func (appState *State) appendNode(visible *[]VisibleNode, node domain.FilesystemNode, depth int) {
	isRoot := node.NodePath() == appState.Current
	if !isRoot && !appState.Prefs.ShowHidden && isHiddenName(node.NodeName()) {
		return
	}
	dir, isDir := node.(*domain.DirectoryNode)
	if appState.SearchQuery != "" && !isRoot && !appState.matches(node) {
		return
	}
	*visible = append(*visible, VisibleNode{Node: node, Depth: depth})
	if !isDir || !appState.Expanded[dir.Path] {
		return
	}
	for _, child := range appState.sortedChildren(dir) {
		appState.appendNode(visible, child, depth+1)
	}
}

// matches reports whether node or anything below it contains the query.
func (appState *State) matches(node domain.FilesystemNode) bool {
	query := strings.ToLower(appState.SearchQuery)
	found := false
	domain.Walk(node, func(item domain.FilesystemNode, _ int) bool {
		if found {
			return false
		}
		if strings.Contains(strings.ToLower(item.NodeName()), query) {
			found = true
		}
		return !found
	})
	return found
}

func (appState *State) sortedChildren(dir *domain.DirectoryNode) []domain.FilesystemNode {
	children := append([]domain.FilesystemNode(nil), dir.Children...)
	if len(children) < 2 {
		return children
	}
	sort.SliceStable(children, func(i, j int) bool {
		left, right := children[i], children[j]
		if left.Kind() != right.Kind() {
			return left.Kind() == domain.NodeDir
		}
		if appState.Prefs.SortMode == domain.SortByName {
			return left.NodeName() < right.NodeName()
		}
		return left.NodeSize() > right.NodeSize()
	})
	return children
}

func isHiddenName(name string) bool {
	return strings.HasPrefix(name, ".")
}

func (appState *State) CurrentNode() domain.FilesystemNode {
	visible := appState.VisibleNodes()
	if appState.Cursor < 0 || appState.Cursor >= len(visible) {
		return nil
	}
	return visible[appState.Cursor].Node
}

func (appState *State) CurrentPath() string {
	if appState.Current != "" {
		return appState.Current
	}
	return appState.Path
}

func (appState *State) EnterDir(path string) bool {
	if path == appState.Current {
		return false
	}
	return appState.SetCurrent(path)
}

func (appState *State) LeaveDir() bool {
	parent, ok := appState.parents[appState.Current]
	if !ok {
		return false
	}
	appState.Current = parent.Path
	appState.Cursor = 0
	appState.Expanded[parent.Path] = true
	return true
}

func (appState *State) ToggleExpanded(path string) bool {
	if _, ok := appState.dirs[path]; !ok {
		return false
	}
	appState.Expanded[path] = !appState.Expanded[path]
	return appState.Expanded[path]
}

func (appState *State) IsExpanded(path string) bool {
	return appState.Expanded[path]
}

func (appState *State) ToggleSortMode() domain.SortMode {
	if appState.Prefs.SortMode == domain.SortBySize {
		appState.Prefs.SortMode = domain.SortByName
	} else {
		appState.Prefs.SortMode = domain.SortBySize
	}
	return appState.Prefs.SortMode
}

func (appState *State) ToggleShowHidden() bool {
	appState.Prefs.ShowHidden = !appState.Prefs.ShowHidden
	return appState.Prefs.ShowHidden
}

func (appState *State) ToggleView() View {
	if appState.View == ViewTree {
		appState.View = ViewDuplicates
	} else {
		appState.View = ViewTree
	}
	return appState.View
}

// SetGroups replaces the duplicate groups. Marks and explanations for paths
// or digests that disappeared are dropped.
func (appState *State) SetGroups(groups []domain.DuplicateGroup) {
	appState.Groups = groups
	appState.groupSizes = make(map[string]int64)
	hashes := make(map[string]bool, len(groups))
	for _, group := range groups {
		hashes[group.Hash] = true
		for _, path := range group.Paths {
			appState.groupSizes[path] = group.Size
		}
	}
	for path := range appState.Marked {
		if _, ok := appState.groupSizes[path]; !ok {
			delete(appState.Marked, path)
		}
	}
	for hash := range appState.Explanations {
		if !hashes[hash] {
			delete(appState.Explanations, hash)
		}
	}
	appState.clampGroupCursor()
}

func (appState *State) clampGroupCursor() {
	if appState.GroupCursor >= len(appState.Groups) {
		appState.GroupCursor = len(appState.Groups) - 1
	}
	if appState.GroupCursor < 0 {
		appState.GroupCursor = 0
	}
}

func (appState *State) CurrentGroup() (domain.DuplicateGroup, bool) {
	if appState.GroupCursor < 0 || appState.GroupCursor >= len(appState.Groups) {
		return domain.DuplicateGroup{}, false
	}
	return appState.Groups[appState.GroupCursor], true
}

func (appState *State) MoveGroupCursor(delta int) {
	appState.GroupCursor += delta
	appState.clampGroupCursor()
}

// TotalWasted sums reclaimable bytes over the loaded groups.
func (appState *State) TotalWasted() int64 {
	var total int64
	for _, group := range appState.Groups {
		total += group.Wasted
	}
	return total
}

func (appState *State) ToggleMark(path string) bool {
	if path == "" {
		return false
	}
	if appState.Marked[path] {
		delete(appState.Marked, path)
		return false
	}
	appState.Marked[path] = true
	return true
}

// MarkDuplicates marks every copy in group except the first for deletion.
func (appState *State) MarkDuplicates(group domain.DuplicateGroup) int {
	marked := 0
	for index, path := range group.Paths {
		if index == 0 {
			delete(appState.Marked, path)
			continue
		}
		if !appState.Marked[path] {
			appState.Marked[path] = true
			marked++
		}
	}
	return marked
}

func (appState *State) ClearMarks() {
	appState.Marked = make(map[string]bool)
}

func (appState *State) MarkedPaths() []string {
	paths := make([]string, 0, len(appState.Marked))
	for path := range appState.Marked {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func (appState *State) SelectionSummary() (int, int64) {
	var total int64
	for path := range appState.Marked {
		total += appState.sizeOf(path)
	}
	return len(appState.Marked), total
}

func (appState *State) sizeOf(path string) int64 {
	if file, ok := appState.files[path]; ok {
		return file.Size
	}
	if dir, ok := appState.dirs[path]; ok {
		return dir.Size
	}
	return appState.groupSizes[path]
}

// RemovePaths forgets deleted files: they leave the tree, ancestor sizes
// shrink, and groups falling below two copies disappear.
func (appState *State) RemovePaths(deleted []string) {
	if len(deleted) == 0 {
		return
	}
	gone := make(map[string]bool, len(deleted))
	for _, path := range deleted {
		gone[path] = true
		delete(appState.Marked, path)
		appState.removeFile(path)
	}

	groups := make([]domain.DuplicateGroup, 0, len(appState.Groups))
	for _, group := range appState.Groups {
		paths := make([]string, 0, len(group.Paths))
		for _, path := range group.Paths {
			if !gone[path] {
				paths = append(paths, path)
			}
		}
		if len(paths) < 2 {
			continue
		}
		groups = append(groups, domain.NewDuplicateGroup(group.Hash, group.Size, paths))
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Wasted > groups[j].Wasted
	})
	appState.SetGroups(groups)
}

func (appState *State) removeFile(path string) {
	file, ok := appState.files[path]
	if !ok {
		return
	}
	parent := appState.parents[path]
	delete(appState.files, path)
	delete(appState.parents, path)
	if parent == nil {
		return
	}
	for index, child := range parent.Children {
		if child.NodePath() == path {
			parent.Children = append(parent.Children[:index], parent.Children[index+1:]...)
			break
		}
	}
	for dir := parent; dir != nil; dir = appState.parents[dir.Path] {
		dir.Size -= file.Size
	}
}

func (appState *State) SetExplanation(hash, text string) {
	appState.Explanations[hash] = text
}

func (appState *State) Explanation(hash string) (string, bool) {
	text, ok := appState.Explanations[hash]
	return text, ok
}
