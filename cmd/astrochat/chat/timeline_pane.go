package chat

import (
	"strings"

	"astrochat/internal/i18n"
	"astrochat/internal/timeline"
)

// timelinePaneWidth is the fixed column width of the timeline pane,
// borders included.
const timelinePaneWidth = 42

func (m Model) timelinePaneHeight() int {
	h := m.height - 7
	if h < 8 {
		h = 8
	}
	return h
}

// renderTimelinePane draws the vertical axis with its markers into a
// character grid, applying the engine's pan offset, then appends the
// detail box for the selected event.
func (m Model) renderTimelinePane() string {
	if m.engine == nil {
		return ""
	}
	height := m.timelinePaneHeight()
	width := timelinePaneWidth - 4 // inside border and padding
	axisCol := int(m.tlCfg.AxisX)
	pan := m.engine.Pan()

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
		grid[r][axisCol] = '│'
	}

	selected := m.engine.Selected()
	hovered := m.engine.Hovered()

	type label struct {
		row   int
		text  string
		side  timeline.Side
		state rune // ' ', 'h'over, 's'elected
	}
	var labels []label
	for _, mk := range m.engine.Markers() {
		row := int(mk.Y + pan)
		if row < 0 || row >= height {
			continue
		}
		state := ' '
		glyph := '●'
		switch {
		case mk.Event == selected:
			state = 's'
			glyph = '◉'
		case mk.Event == hovered:
			state = 'h'
			glyph = '○'
		}
		grid[row][axisCol] = glyph
		labels = append(labels, label{row: row, text: mk.Event.Name, side: mk.Side, state: state})
	}

	lines := make([]string, height)
	for r := range grid {
		lines[r] = string(grid[r])
	}
	for _, l := range labels {
		lines[l.row] = m.placeLabel(lines[l.row], l.text, l.side, axisCol, width, l.state)
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(m.bundle.TimelineTitle))
	sb.WriteString("\n")
	sb.WriteString(strings.Join(lines, "\n"))
	if selected != nil {
		sb.WriteString("\n")
		sb.WriteString(m.renderEventInfo(selected))
	}
	return m.styles.TimelinePane.Render(sb.String())
}

// placeLabel writes an event name beside its marker, truncated to the
// space on its side of the axis.
func (m Model) placeLabel(line, text string, side timeline.Side, axisCol, width int, state rune) string {
	runes := []rune(line)
	name := []rune(text)

	if side == timeline.SideLeft {
		space := axisCol - 2
		if len(name) > space {
			name = name[:space]
		}
		start := axisCol - 1 - len(name)
		copy(runes[start:], name)
	} else {
		space := width - axisCol - 2
		if len(name) > space {
			name = name[:space]
		}
		copy(runes[axisCol+2:], name)
	}

	out := string(runes)
	switch state {
	case 's':
		return m.styles.TimelineSelected.Render(out)
	case 'h':
		return m.styles.TimelineHover.Render(out)
	}
	return m.styles.TimelineAxis.Render(out)
}

// renderEventInfo is the detail box under the axis.
func (m Model) renderEventInfo(ev *i18n.CosmicEvent) string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(ev.Name))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render(m.bundle.TimelineLabel + " " + m.bundle.FormatTime(ev.Time)))
	sb.WriteString("\n")
	sb.WriteString(wrap(ev.Description, timelinePaneWidth-6))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Suggestion.Render(m.bundle.ButtonGenerateVis + ": /visualize"))
	return m.styles.InfoBox.Render(sb.String())
}

// wrap is a dumb word wrapper for the detail box.
func wrap(s string, width int) string {
	if width < 8 {
		width = 8
	}
	words := strings.Fields(s)
	var (
		sb   strings.Builder
		line int
	)
	for i, w := range words {
		if line+len(w)+1 > width && line > 0 {
			sb.WriteString("\n")
			line = 0
		} else if i > 0 {
			sb.WriteString(" ")
			line++
		}
		sb.WriteString(w)
		line += len(w)
	}
	return sb.String()
}
