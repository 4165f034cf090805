package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/JonMunkholm/examgrid/internal/view"
)

// maxCellWidth caps a column so one long course name cannot push the rest
// off screen.
const maxCellWidth = 28

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	cell     lipgloss.Style
	muted    lipgloss.Style
	active   lipgloss.Style
	disabled lipgloss.Style
	errText  lipgloss.Style
	prompt   lipgloss.Style
}

func defaultStyles() styles {
	primary := lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#60A5FA"}
	secondary := lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	errColor := lipgloss.AdaptiveColor{Light: "#EF4444", Dark: "#F87171"}

	return styles{
		title:    lipgloss.NewStyle().Foreground(primary).Bold(true),
		header:   lipgloss.NewStyle().Bold(true).Underline(true),
		cell:     lipgloss.NewStyle(),
		muted:    lipgloss.NewStyle().Foreground(secondary),
		active:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(primary).Bold(true),
		disabled: lipgloss.NewStyle().Foreground(secondary).Faint(true),
		errText:  lipgloss.NewStyle().Foreground(errColor).Bold(true),
		prompt:   lipgloss.NewStyle().Foreground(primary),
	}
}

// View renders the model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render(m.title))
	b.WriteString("\n\n")

	switch {
	case m.loading && m.ctrl.Dataset() == nil:
		b.WriteString(m.styles.muted.Render("Loading..."))
		b.WriteString("\n")
	case m.frame.Error != "":
		b.WriteString(m.styles.errText.Render(m.frame.Error))
		b.WriteString("\n")
	default:
		if m.frame.Signals.ShowFilter {
			b.WriteString(m.renderFilter())
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderTable())
		if m.frame.Signals.ShowPagination {
			b.WriteString("\n")
			b.WriteString(m.renderPager())
			b.WriteString("  ")
			b.WriteString(m.styles.muted.Render(m.frame.Info))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString(m.styles.errText.Render("render error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render(m.statusLine()))
	return b.String()
}

func (m *Model) renderFilter() string {
	label := "Filter: "
	if m.mode == modeFilter {
		return m.styles.prompt.Render(label) + m.filter + "█"
	}
	if m.filter == "" {
		return m.styles.muted.Render(label + "(press / to filter)")
	}
	return m.styles.prompt.Render(label) + m.filter
}

// renderTable lays out the page rows in padded columns. Cells are cut to
// maxCellWidth terminal cells and lines to the window width.
func (m *Model) renderTable() string {
	rows := m.frame.Rows
	if len(rows) == 0 {
		return m.styles.muted.Render(m.empty) + "\n"
	}

	headers := rows[0].Keys()
	cells := make([][]string, len(rows))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = min(runewidth.StringWidth(h), maxCellWidth)
	}
	for r, rec := range rows {
		cells[r] = make([]string, len(headers))
		for i, h := range headers {
			v, _ := rec.Get(h)
			s, _ := view.FormatValue(v)
			s = runewidth.Truncate(s, maxCellWidth, "…")
			cells[r][i] = s
			widths[i] = max(widths[i], runewidth.StringWidth(s))
		}
	}

	var b strings.Builder
	b.WriteString(m.styles.header.Render(m.fitLine(joinCells(headers, widths))))
	b.WriteString("\n")
	for _, row := range cells {
		b.WriteString(m.styles.cell.Render(m.fitLine(joinCells(row, widths))))
		b.WriteString("\n")
	}
	return b.String()
}

func joinCells(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = runewidth.FillRight(runewidth.Truncate(c, widths[i], "…"), widths[i])
	}
	return strings.Join(parts, "  ")
}

func (m *Model) fitLine(s string) string {
	if m.width <= 0 {
		return s
	}
	return runewidth.Truncate(s, m.width, "…")
}

// renderPager draws the same buttons the web controls show.
func (m *Model) renderPager() string {
	buttons := m.frame.Window.Buttons()
	parts := make([]string, 0, len(buttons))
	for _, btn := range buttons {
		label := btn.Label
		switch btn.Kind {
		case view.ButtonPrev:
			label = "‹ " + label
		case view.ButtonNext:
			label = label + " ›"
		}
		switch {
		case btn.Active:
			parts = append(parts, m.styles.active.Render(" "+label+" "))
		case btn.Disabled:
			parts = append(parts, m.styles.disabled.Render(label))
		default:
			parts = append(parts, label)
		}
	}
	return strings.Join(parts, " ")
}

func (m *Model) statusLine() string {
	var help string
	switch m.mode {
	case modeFilter:
		help = "type to filter • enter done • esc clear"
	case modeJump:
		help = "go to page " + m.jump + "_ • enter jump • esc cancel"
	default:
		help = "←/→ page • home/end first/last • 0-9 jump • / filter • r reload • q quit"
	}
	if m.ctrl.Dataset() == nil {
		return help
	}
	return m.frame.Summary() + " • " + help
}
