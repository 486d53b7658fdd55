package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yubota24504/FileVizDedup/internal/config"
	"github.com/yubota24504/FileVizDedup/internal/domain"
	"github.com/yubota24504/FileVizDedup/internal/services"
	"github.com/yubota24504/FileVizDedup/internal/state"
)

// GroupExplainer explains a single duplicate group on demand.
type GroupExplainer interface {
	ExplainGroup(ctx context.Context, group domain.DuplicateGroup, lang string) domain.ExplainedGroup
}

type Services struct {
	Scanner   services.Scanner
	Finder    services.DuplicateFinder
	Actions   services.Actions
	Explainer GroupExplainer
}

type Model struct {
	state       *state.State
	scanner     services.Scanner
	finder      services.DuplicateFinder
	actions     services.Actions
	explainer   GroupExplainer
	previewer   services.DeletePreviewer
	sources     []<-chan services.ScanProgress
	base        config.Config
	keys        KeyMap
	showHelp    bool
	status      string
	scanning    bool
	cancel      context.CancelFunc
	width       int
	height      int
	viewTop     int
	groupTop    int
	progress    services.ScanProgress
	confirming  bool
	preview     services.DeletePreview
	deleting    bool
	explaining  map[string]bool
	searching   bool
	searchInput string
}

type ConfigProvider interface {
	ConfigSnapshot() config.Config
}

func NewModel(appState *state.State, svc Services, base config.Config) Model {
	model := Model{
		state:      appState,
		scanner:    svc.Scanner,
		finder:     svc.Finder,
		actions:    svc.Actions,
		explainer:  svc.Explainer,
		base:       base,
		keys:       KeyMapFrom(appState.KeyBindings),
		status:     "Ready - press s to scan",
		width:      100,
		height:     30,
		explaining: make(map[string]bool),
	}
	if previewer, ok := svc.Actions.(services.DeletePreviewer); ok {
		model.previewer = previewer
	}
	for _, candidate := range []any{svc.Scanner, svc.Finder} {
		if provider, ok := candidate.(services.ProgressProvider); ok {
			model.sources = append(model.sources, provider.Progress())
		}
	}
	return model
}

func (model Model) WithStatus(message string) Model {
	if message != "" {
		model.status = message
	}
	return model
}

// ConfigSnapshot returns the startup config with the preferences changed
// during the session.
func (model Model) ConfigSnapshot() config.Config {
	snapshot := model.base
	snapshot.Path = model.state.Path
	snapshot.ShowHidden = model.state.Prefs.ShowHidden
	snapshot.SafeMode = model.state.Prefs.SafeMode
	snapshot.SortMode = model.state.Prefs.SortMode
	snapshot.Theme = model.state.Prefs.Theme
	snapshot.KeyBindings = model.state.KeyBindings
	return snapshot
}

func (model Model) Init() tea.Cmd {
	return nil
}

func (model Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return model.handleKey(typed)
	case tea.WindowSizeMsg:
		model.width = typed.Width
		model.height = typed.Height
		model.ensureCursorVisible()
		return model, nil
	case scanResultMsg:
		return model.applyScan(typed), nil
	case scanProgressMsg:
		if !model.scanning {
			return model, nil
		}
		if !typed.progress.Completed {
			model.progress = typed.progress
			model.status = progressStatus(typed.progress)
		}
		return model, listenProgress(typed.source)
	case deletePreviewMsg:
		if typed.err != nil {
			model.status = fmt.Sprintf("Preview error: %v", typed.err)
			return model, nil
		}
		model.preview = typed.preview
		model.confirming = true
		model.status = previewPrompt(typed.preview)
		return model, nil
	case deleteResultMsg:
		model.deleting = false
		if typed.err != nil {
			model.status = fmt.Sprintf("Delete error: %v", typed.err)
			return model, nil
		}
		model.state.RemovePaths(typed.result.Deleted)
		model.ensureCursorVisible()
		model.status = fmt.Sprintf("Deleted %d files (%d failed)", typed.result.Count, len(typed.result.Errors))
		if len(typed.result.Errors) > 0 {
			first := typed.result.Errors[0]
			model.status += fmt.Sprintf(" - warning: %s: %s", first.Path, first.Reason)
		}
		return model, nil
	case explainResultMsg:
		delete(model.explaining, typed.group.Hash)
		model.state.SetExplanation(typed.group.Hash, typed.group.Explanation)
		model.status = "Explanation ready"
		return model, nil
	default:
		return model, nil
	}
}

func (model Model) applyScan(msg scanResultMsg) Model {
	model.scanning = false
	model.cancel = nil
	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			model.status = "Scan cancelled"
			return model
		}
		model.status = fmt.Sprintf("Scan error: %v", msg.err)
		return model
	}
	model.state.SetTree(msg.tree.Root)
	model.state.SetGroups(msg.duplicates.Groups)
	model.ensureCursorVisible()

	skipped := len(msg.tree.Skipped) + len(msg.duplicates.Skipped)
	model.status = fmt.Sprintf("Scan complete (%s): %d groups, %s reclaimable",
		(msg.tree.Duration + msg.duplicates.Duration).Round(time.Millisecond),
		len(msg.duplicates.Groups),
		formatSize(msg.duplicates.TotalWasted()))
	if skipped > 0 {
		model.status += fmt.Sprintf(", %d skipped", skipped)
	}
	return model
}

func (model Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model.searching {
		return model.handleSearchInput(msg)
	}
	switch {
	case key.Matches(msg, model.keys.Quit):
		model = model.cancelScan("")
		return model, tea.Quit
	case key.Matches(msg, model.keys.Help):
		model.showHelp = !model.showHelp
		return model, nil
	case model.confirming && key.Matches(msg, model.keys.Confirm):
		return model.confirmDelete()
	case model.confirming && key.Matches(msg, model.keys.Cancel):
		model.confirming = false
		model.status = "Delete cancelled"
		return model, nil
	case model.confirming:
		return model, nil
	case key.Matches(msg, model.keys.Cancel) && model.scanning:
		return model.cancelScan("Scan cancelled"), nil
	case key.Matches(msg, model.keys.Scan):
		return model.beginScan(model.state.CurrentPath())
	case key.Matches(msg, model.keys.SwitchView):
		model.state.ToggleView()
		return model, nil
	case key.Matches(msg, model.keys.Hidden):
		model.state.ToggleShowHidden()
		model.ensureCursorVisible()
		return model, nil
	case key.Matches(msg, model.keys.Sort):
		model.state.ToggleSortMode()
		return model, nil
	}
	if model.state.View == state.ViewDuplicates {
		return model.handleDuplicatesKey(msg)
	}
	return model.handleTreeKey(msg)
}

func (model Model) handleTreeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, model.keys.Up):
		if model.state.Cursor > 0 {
			model.state.Cursor--
			model.ensureCursorVisible()
		}
	case key.Matches(msg, model.keys.Down):
		if model.state.Cursor < len(model.state.VisibleNodes())-1 {
			model.state.Cursor++
			model.ensureCursorVisible()
		}
	case key.Matches(msg, model.keys.Enter):
		if node := model.state.CurrentNode(); node != nil && node.Kind() == domain.NodeDir {
			model.state.ToggleExpanded(node.NodePath())
			model.ensureCursorVisible()
		}
	case key.Matches(msg, model.keys.Right):
		if node := model.state.CurrentNode(); node != nil && node.Kind() == domain.NodeDir {
			model.state.EnterDir(node.NodePath())
			model.ensureCursorVisible()
		}
	case key.Matches(msg, model.keys.Left):
		if model.state.LeaveDir() {
			model.ensureCursorVisible()
		}
	case key.Matches(msg, model.keys.Search):
		model.searching = true
		model.searchInput = model.state.SearchQuery
		model.status = fmt.Sprintf("Search: %s", model.searchInput)
	case key.Matches(msg, model.keys.ClearMarks):
		model.state.SearchQuery = ""
		model.ensureCursorVisible()
		model.status = "Search cleared"
	}
	return model, nil
}

func (model Model) handleDuplicatesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, model.keys.Up):
		model.state.MoveGroupCursor(-1)
		model.ensureGroupVisible()
	case key.Matches(msg, model.keys.Down):
		model.state.MoveGroupCursor(1)
		model.ensureGroupVisible()
	case key.Matches(msg, model.keys.MarkDups), key.Matches(msg, model.keys.Mark):
		group, ok := model.state.CurrentGroup()
		if !ok {
			return model, nil
		}
		marked := model.state.MarkDuplicates(group)
		model.status = fmt.Sprintf("Marked %d copies, keeping %s", marked, group.Paths[0])
	case key.Matches(msg, model.keys.ClearMarks):
		model.state.ClearMarks()
		model.status = "Marks cleared"
	case key.Matches(msg, model.keys.Delete):
		return model.requestPreview()
	case key.Matches(msg, model.keys.Explain):
		return model.requestExplanation()
	}
	return model, nil
}

func (model Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		model.searching = false
		model.status = "Search cancelled"
		return model, nil
	case tea.KeyEnter:
		model.searching = false
		model.state.SearchQuery = strings.TrimSpace(model.searchInput)
		model.state.Cursor = 0
		model.ensureCursorVisible()
		model.status = "Search applied"
		return model, nil
	case tea.KeyBackspace, tea.KeyDelete:
		if len(model.searchInput) > 0 {
			runes := []rune(model.searchInput)
			model.searchInput = string(runes[:len(runes)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		model.searchInput += string(msg.Runes)
	}
	model.status = fmt.Sprintf("Search: %s", model.searchInput)
	return model, nil
}

func (model Model) beginScan(path string) (Model, tea.Cmd) {
	if model.scanner == nil || model.finder == nil {
		model.status = "Scanner unavailable"
		return model, nil
	}
	model = model.cancelScan("")
	ctx, cancel := context.WithCancel(context.Background())
	model.cancel = cancel
	model.scanning = true
	model.progress = services.ScanProgress{}
	model.status = fmt.Sprintf("Scanning... %s", path)

	cmds := []tea.Cmd{model.scanCmd(ctx, path)}
	for _, source := range model.sources {
		cmds = append(cmds, listenProgress(source))
	}
	return model, tea.Batch(cmds...)
}

// scanCmd builds the tree first and then looks for duplicates under the
// same root, so both views describe one moment in time.
func (model Model) scanCmd(ctx context.Context, path string) tea.Cmd {
	scanner, finder := model.scanner, model.finder
	return func() tea.Msg {
		tree, err := scanner.Scan(ctx, services.ScanRequest{RootPath: path})
		if err != nil {
			return scanResultMsg{err: err}
		}
		duplicates, err := finder.Find(ctx, services.DuplicateRequest{RootPath: tree.Root.Path})
		return scanResultMsg{tree: tree, duplicates: duplicates, err: err}
	}
}

func listenProgress(source <-chan services.ScanProgress) tea.Cmd {
	if source == nil {
		return nil
	}
	return func() tea.Msg {
		progress, ok := <-source
		if !ok {
			return nil
		}
		return scanProgressMsg{source: source, progress: progress}
	}
}

func (model Model) cancelScan(message string) Model {
	if model.cancel != nil {
		model.cancel()
		model.cancel = nil
	}
	if message != "" {
		model.status = message
	}
	model.scanning = false
	return model
}

func (model Model) requestPreview() (tea.Model, tea.Cmd) {
	if model.deleting {
		model.status = "Delete already running"
		return model, nil
	}
	paths := model.state.MarkedPaths()
	if len(paths) == 0 {
		model.status = "Nothing marked - press a to mark duplicates"
		return model, nil
	}
	request := services.DeleteRequest{Paths: paths, SafeMode: model.state.Prefs.SafeMode}
	if model.previewer == nil {
		model.preview = services.DeletePreview{Sources: paths, TotalFiles: len(paths)}
		model.confirming = true
		model.status = previewPrompt(model.preview)
		return model, nil
	}
	previewer := model.previewer
	return model, func() tea.Msg {
		preview, err := previewer.Preview(context.Background(), request)
		return deletePreviewMsg{preview: preview, err: err}
	}
}

func (model Model) confirmDelete() (tea.Model, tea.Cmd) {
	model.confirming = false
	if model.actions == nil {
		model.status = "Delete unavailable"
		return model, nil
	}
	model.deleting = true
	model.status = "Deleting..."
	request := services.DeleteRequest{Paths: model.preview.Sources, SafeMode: model.state.Prefs.SafeMode}
	actions := model.actions
	return model, func() tea.Msg {
		result, err := actions.Delete(context.Background(), request)
		return deleteResultMsg{result: result, err: err}
	}
}

func (model Model) requestExplanation() (tea.Model, tea.Cmd) {
	group, ok := model.state.CurrentGroup()
	if !ok {
		model.status = "No duplicate group selected"
		return model, nil
	}
	if model.explainer == nil {
		model.status = "Explanations unavailable"
		return model, nil
	}
	if model.explaining[group.Hash] {
		model.status = "Explanation already requested"
		return model, nil
	}
	model.explaining[group.Hash] = true
	model.status = "Asking the model..."
	explainer, lang := model.explainer, model.state.Prefs.Lang
	return model, func() tea.Msg {
		return explainResultMsg{group: explainer.ExplainGroup(context.Background(), group, lang)}
	}
}

func progressStatus(progress services.ScanProgress) string {
	label := "Scanning"
	switch progress.Phase {
	case services.PhaseSizes:
		label = "Sizing"
	case services.PhaseHashes:
		label = "Hashing"
	}
	if progress.Current != "" {
		return fmt.Sprintf("%s... %d items (%s)", label, progress.Scanned, progress.Current)
	}
	return fmt.Sprintf("%s... %d items", label, progress.Scanned)
}

func previewPrompt(preview services.DeletePreview) string {
	summary := fmt.Sprintf("DELETE %d files, %s", preview.TotalFiles, formatSize(preview.TotalBytes))
	if len(preview.Warnings) > 0 {
		summary += fmt.Sprintf(", %d refused", len(preview.Warnings))
	}
	return summary + " - confirm (y/n)"
}

func (model *Model) ensureCursorVisible() {
	visible := model.state.VisibleNodes()
	if len(visible) == 0 {
		model.state.Cursor = 0
		model.viewTop = 0
		return
	}
	model.state.Cursor = clamp(model.state.Cursor, 0, len(visible)-1)
	model.viewTop = scrollTop(model.viewTop, model.state.Cursor, len(visible), model.listHeight())
}

func (model *Model) ensureGroupVisible() {
	rows := maxInt(model.listHeight()/groupRowHeight, 1)
	model.groupTop = scrollTop(model.groupTop, model.state.GroupCursor, len(model.state.Groups), rows)
}

func (model *Model) listHeight() int {
	return model.height - 6
}

// scrollTop keeps cursor inside a window of height rows over total items.
func scrollTop(top, cursor, total, height int) int {
	if height <= 0 {
		return top
	}
	if cursor < top {
		top = cursor
	}
	if cursor >= top+height {
		top = cursor - height + 1
	}
	return clamp(top, 0, maxInt(total-height, 0))
}
