package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yubota24504/FileVizDedup/internal/domain"
	"github.com/yubota24504/FileVizDedup/internal/state"
)

// groupRowHeight is the number of lines a group takes in the duplicates list.
const groupRowHeight = 2

type uiStyles struct {
	headerStyle   lipgloss.Style
	mutedStyle    lipgloss.Style
	statusStyle   lipgloss.Style
	warnStyle     lipgloss.Style
	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	panelBorder   lipgloss.Style
}

func stylesFor(model Model) uiStyles {
	if strings.ToLower(model.state.Prefs.Theme) == "light" {
		return uiStyles{
			headerStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("235")),
			mutedStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
			statusStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("25")).Bold(true),
			warnStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("124")).Bold(true),
			cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("90")).Bold(true),
			selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),
			panelBorder:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		}
	}
	return uiStyles{
		headerStyle:   lipgloss.NewStyle().Bold(true),
		mutedStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		statusStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true),
		warnStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true),
		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		panelBorder:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

func (model Model) View() string {
	styles := stylesFor(model)
	if model.showHelp {
		return renderHelpView(model, styles)
	}
	return strings.Join([]string{renderBody(model, styles), renderFooter(model, styles)}, "\n")
}

func renderBody(model Model, styles uiStyles) string {
	bodyHeight := maxInt(model.listHeight(), 3)
	leftWidth, rightWidth, showRight := splitPanels(model.width)

	var left, right string
	if model.state.View == state.ViewDuplicates {
		left = renderGroupsPanel(model, styles, bodyHeight, leftWidth)
		if showRight {
			right = renderGroupDetail(model, styles, rightWidth, bodyHeight)
		}
	} else {
		left = renderTreePanel(model, styles, model.state.VisibleNodes(), bodyHeight, leftWidth)
		if showRight {
			right = renderNodeDetail(model, styles, rightWidth, bodyHeight)
		}
	}
	if model.confirming && showRight {
		right = renderPreviewPanel(model, styles, rightWidth, bodyHeight)
	}
	if !showRight {
		return left
	}
	sep := lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Render("│")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, sep, right)
}

func renderFooter(model Model, styles uiStyles) string {
	statusLine := trimStatus(model.status, model.width)
	if model.scanning {
		statusLine = fmt.Sprintf("%s  %s", statusLine, progressBar(model.progress.Scanned, 18))
	}
	statusStyle := styles.mutedStyle
	lower := strings.ToLower(model.status)
	if strings.Contains(lower, "error") || strings.Contains(lower, "warning") {
		statusStyle = styles.warnStyle
	}
	statusLine = statusStyle.Render(statusLine)

	markedCount, markedSize := model.state.SelectionSummary()
	info := fmt.Sprintf("Marked: %d (%s)  Sort: %s", markedCount, formatSize(markedSize), strings.ToUpper(string(model.state.Prefs.SortMode)))
	if model.state.Prefs.ShowHidden {
		info += "  Hidden: on"
	}
	if model.state.SearchQuery != "" {
		info += fmt.Sprintf("  Search[%s]", model.state.SearchQuery)
	}
	if !model.state.Prefs.SafeMode {
		info += "  SAFE MODE OFF"
	}

	keys := "↑/↓ move  → enter  ← up  enter expand  / search  s scan  tab duplicates  ? help  q quit"
	if model.state.View == state.ViewDuplicates {
		keys = "↑/↓ group  a mark copies  x clear  d delete  e explain  s scan  tab tree  ? help  q quit"
	}
	if model.confirming {
		keys = "y confirm  n cancel"
	}
	if model.searching {
		keys = "type query  enter apply  esc cancel"
	}
	return strings.Join([]string{statusLine, styles.mutedStyle.Render(padLine(info, keys, model.width))}, "\n")
}

func renderTreePanel(model Model, styles uiStyles, visible []state.VisibleNode, height, width int) string {
	contentWidth := maxInt(width-2, 10)
	headerLine := padLine(styles.headerStyle.Render("FileVizDedup")+"  "+breadcrumbs(model.state.CurrentPath()), styles.statusStyle.Render(scanLabel(model)), contentWidth)
	listHeight := maxInt(height-1, 1)
	if len(visible) == 0 {
		message := "Not scanned - press s"
		if model.scanning {
			message = "Scanning..."
		}
		return styles.panelBorder.Width(contentWidth).Render(fillLines([]string{headerLine, message}, height))
	}

	start := clamp(model.viewTop, 0, maxInt(len(visible)-1, 0))
	end := minInt(start+listHeight, len(visible))
	lines := []string{headerLine}
	for index := start; index < end; index++ {
		item := visible[index]
		node := item.Node
		name := node.NodeName()
		if node.Kind() == domain.NodeDir {
			name += "/"
		}
		marker := "   "
		if model.state.Marked[node.NodePath()] {
			marker = styles.selectedStyle.Render("[d]")
		}
		line := fmt.Sprintf("%9s %s %s%s %s", formatSize(node.NodeSize()), marker, strings.Repeat("  ", item.Depth), fileIcon(model, node), name)
		if index == model.state.Cursor {
			line = styles.cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return styles.panelBorder.Width(contentWidth).Render(fillLines(lines, height))
}

func renderNodeDetail(model Model, styles uiStyles, width, height int) string {
	contentWidth := maxInt(width-2, 10)
	node := model.state.CurrentNode()
	if node == nil {
		return styles.panelBorder.Width(contentWidth).Render("No selection")
	}
	lines := []string{
		styles.headerStyle.Render("Path"),
		node.NodePath(),
		"",
		styles.headerStyle.Render("Size"),
		formatSize(node.NodeSize()),
	}
	switch typed := node.(type) {
	case *domain.DirectoryNode:
		lines = append(lines,
			fmt.Sprintf("Folders: %d", len(typed.Subdirectories())),
			fmt.Sprintf("Files  : %d", typed.FileCount()))
	case *domain.FileEntry:
		ext := typed.Extension
		if ext == "" {
			ext = "-"
		}
		lines = append(lines, "", styles.headerStyle.Render("Extension"), ext)
	}
	return renderPanel(styles, lines, contentWidth, height)
}

func renderGroupsPanel(model Model, styles uiStyles, height, width int) string {
	contentWidth := maxInt(width-2, 10)
	groups := model.state.Groups
	title := fmt.Sprintf("Duplicates  %d groups, %s reclaimable", len(groups), formatSize(model.state.TotalWasted()))
	headerLine := padLine(styles.headerStyle.Render(title), styles.statusStyle.Render(scanLabel(model)), contentWidth)
	if len(groups) == 0 {
		message := "No duplicates - press s to scan"
		if model.scanning {
			message = "Scanning..."
		}
		return styles.panelBorder.Width(contentWidth).Render(fillLines([]string{headerLine, message}, height))
	}

	rows := maxInt((height-1)/groupRowHeight, 1)
	start := clamp(model.groupTop, 0, maxInt(len(groups)-1, 0))
	end := minInt(start+rows, len(groups))
	lines := []string{headerLine}
	for index := start; index < end; index++ {
		group := groups[index]
		summary := fmt.Sprintf("%9s  %d x %s  %s", formatSize(group.Wasted), len(group.Paths), formatSize(group.Size), shortHash(group.Hash))
		first := "    " + truncateLeft(group.Paths[0], contentWidth-4)
		if index == model.state.GroupCursor {
			summary = styles.cursorStyle.Render(summary)
		}
		lines = append(lines, summary, styles.mutedStyle.Render(first))
	}
	return styles.panelBorder.Width(contentWidth).Render(fillLines(lines, height))
}

func renderGroupDetail(model Model, styles uiStyles, width, height int) string {
	contentWidth := maxInt(width-2, 10)
	group, ok := model.state.CurrentGroup()
	if !ok {
		return styles.panelBorder.Width(contentWidth).Render("No group")
	}
	lines := []string{
		styles.headerStyle.Render("Digest"),
		group.Hash,
		"",
		fmt.Sprintf("Size  : %s", formatSize(group.Size)),
		fmt.Sprintf("Copies: %d", len(group.Paths)),
		fmt.Sprintf("Wasted: %s", formatSize(group.Wasted)),
		"",
		styles.headerStyle.Render("Copies"),
	}
	for index, path := range group.Paths {
		marker := "keep"
		if model.state.Marked[path] {
			marker = styles.selectedStyle.Render("del ")
		} else if index > 0 {
			marker = "    "
		}
		lines = append(lines, fmt.Sprintf("%s %s", marker, truncateLeft(path, contentWidth-5)))
	}
	if text, ok := model.state.Explanation(group.Hash); ok {
		lines = append(lines, "", styles.headerStyle.Render("Explanation"), text)
	} else if model.explaining[group.Hash] {
		lines = append(lines, "", styles.mutedStyle.Render("Waiting for explanation..."))
	}
	return renderPanel(styles, lines, contentWidth, height)
}

func renderPreviewPanel(model Model, styles uiStyles, width, height int) string {
	preview := model.preview
	lines := []string{
		styles.headerStyle.Render("Delete Preview"),
		fmt.Sprintf("Files: %d", preview.TotalFiles),
		fmt.Sprintf("Size : %s", formatSize(preview.TotalBytes)),
	}
	if len(preview.Samples) > 0 {
		lines = append(lines, "", styles.headerStyle.Render("Samples"))
		lines = append(lines, preview.Samples...)
	}
	if len(preview.Warnings) > 0 {
		lines = append(lines, "", styles.warnStyle.Render("Refused"))
		lines = append(lines, preview.Warnings...)
	}
	return renderPanel(styles, lines, maxInt(width-2, 10), height)
}

func renderHelpView(model Model, styles uiStyles) string {
	lines := []string{styles.headerStyle.Render("FileVizDedup Help"), ""}
	lines = append(lines, styles.headerStyle.Render("Tree"))
	lines = append(lines, "↑/↓ move cursor", "→ enter folder", "← go to parent", "enter expand/collapse", "/ search, x clear search")
	lines = append(lines, "", styles.headerStyle.Render("Duplicates"))
	lines = append(lines, "tab switch views", "a mark every copy but the first", "d delete marked copies", "e explain the group")
	lines = append(lines, "", styles.headerStyle.Render("Safety"))
	lines = append(lines, "confirm with y", "cancel with n or esc", "blocked in safe mode: /, $HOME, /etc, /usr, /var, /bin, /sbin, /boot")
	lines = append(lines, "", styles.headerStyle.Render("Keys"))
	for _, binding := range model.keys.all() {
		lines = append(lines, fmt.Sprintf("%-18s %s", strings.Join(binding.Keys(), ", "), binding.Help().Desc))
	}
	lines = append(lines, "", "Press ? to close help")
	width := model.width
	if width <= 0 {
		width = 80
	}
	return styles.panelBorder.Width(maxInt(width-2, 10)).Render(strings.Join(lines, "\n"))
}

func renderPanel(styles uiStyles, lines []string, width, height int) string {
	content := lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
	return styles.panelBorder.Width(width).Render(content)
}

func fillLines(lines []string, height int) string {
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func scanLabel(model Model) string {
	if model.scanning {
		return "SCANNING"
	}
	return "IDLE"
}

func breadcrumbs(path string) string {
	path = filepath.Clean(path)
	if path == "." {
		return "."
	}
	parts := strings.Split(path, string(filepath.Separator))
	if parts[0] == "" {
		parts[0] = string(filepath.Separator)
	}
	return strings.Join(parts, " › ")
}

func padLine(left, right string, width int) string {
	if width <= 0 {
		return left
	}
	space := width - lipgloss.Width(left) - lipgloss.Width(right)
	if space < 1 {
		return left + " " + right
	}
	return left + strings.Repeat(" ", space) + right
}

func splitPanels(width int) (int, int, bool) {
	if width < 80 {
		return width, 0, false
	}
	left := maxInt(int(float64(width)*0.6), 40)
	right := width - left - 1
	if right < 30 {
		return width, 0, false
	}
	return left, right, true
}

func fileIcon(model Model, node domain.FilesystemNode) string {
	if node.Kind() != domain.NodeDir {
		return "📄"
	}
	if model.state.IsExpanded(node.NodePath()) {
		return "📂"
	}
	return "📁"
}

func formatSize(size int64) string {
	const unit = 1000
	if size < unit {
		return fmt.Sprintf("%dB", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit && exp < 5; n /= unit {
		div *= unit
		exp++
	}
	value := float64(size) / float64(div)
	units := []string{"KB", "MB", "GB", "TB", "PB", "EB"}
	return fmt.Sprintf("%.1f%s", value, units[exp])
}

func shortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}

// truncateLeft keeps the end of long paths, where the file name is.
func truncateLeft(value string, width int) string {
	runes := []rune(value)
	if width <= 3 || len(runes) <= width {
		return value
	}
	return "..." + string(runes[len(runes)-width+3:])
}

func progressBar(count int64, width int) string {
	if width <= 0 {
		return ""
	}
	pos := int(count % int64(width))
	return fmt.Sprintf("[%s%s]", strings.Repeat("█", pos), strings.Repeat("░", width-pos))
}

func trimStatus(message string, width int) string {
	if width <= 0 {
		return message
	}
	max := width - 4
	if max <= 0 || len(message) <= max {
		return message
	}
	return message[:max] + "..."
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
