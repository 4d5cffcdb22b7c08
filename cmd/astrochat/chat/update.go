package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"astrochat/cmd/astrochat/ui"
	core "astrochat/internal/chat"
	"astrochat/internal/i18n"
	"astrochat/internal/timeline"
)

// Update is the event loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.ready = true
		m.refreshTranscript()
		return m, nil

	case transcriptMsg:
		m.refreshTranscript()
		return m, m.listenUpdates()

	case sendDoneMsg:
		m.banner = msg.banner
		m.refreshTranscript()
		return m, nil

	case levelDoneMsg:
		if msg.banner != nil {
			m.banner = msg.banner
			return m, nil
		}
		m.screen = screenChat
		m.banner = nil
		m.refreshTranscript()
		return m, nil

	case vizDoneMsg:
		m.vizBusy = false
		m.rotator.Stop()
		if msg.err != nil {
			m.banner = &core.AppError{
				Title:   m.bundle.ErrGenerationTitle,
				Message: m.bundle.ErrGenerationMessage + " " + msg.err.Error(),
			}
			return m, nil
		}
		m.vizArt = msg.art
		m.status = m.bundle.VisResultTitle + ": " + msg.art.Path
		return m, m.previewCmd(msg.art.Path)

	case previewDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		return m, nil

	case musicStateMsg:
		m.musicOn = bool(msg)
		return m, m.listenMusic()

	case factMsg:
		m.factIdx = int(msg)
		return m, m.listenFacts()

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case ConfigReloadMsg:
		if lang, err := i18n.ParseLanguage(msg.Language); err == nil && lang != m.deps.Lang {
			m.setBundle(lang)
		}
		theme := ui.ThemeByName(msg.Theme)
		if theme.IsDark != m.styles.Theme.IsDark {
			m.styles = ui.NewStyles(theme)
		}
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		m.spinner, spCmd = m.spinner.Update(msg)
		return m, spCmd
	}

	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		if m.banner != nil {
			m.banner = nil
			return m, nil
		}
		if m.engine != nil && m.engine.Selected() != nil {
			m.engine.ClearSelection()
			return m, nil
		}
	}

	if m.screen == screenLevel {
		return m.handleLevelKey(msg)
	}
	return m.handleChatKey(msg)
}

func (m Model) handleLevelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	opts := m.bundle.EducationLevels
	switch msg.Type {
	case tea.KeyUp:
		if m.levelCursor > 0 {
			m.levelCursor--
		}
	case tea.KeyDown:
		if m.levelCursor < len(opts)-1 {
			m.levelCursor++
		}
	case tea.KeyEnter:
		level := opts[m.levelCursor].Name
		return m, m.selectLevelCmd(level)
	case tea.KeyRunes:
		switch string(msg.Runes) {
		case "q":
			return m, tea.Quit
		case "k":
			if m.levelCursor > 0 {
				m.levelCursor--
			}
		case "j":
			if m.levelCursor < len(opts)-1 {
				m.levelCursor++
			}
		}
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		return m.submit()
	}
	var taCmd tea.Cmd
	m.textarea, taCmd = m.textarea.Update(msg)
	return m, taCmd
}

// submit routes the input line: /-commands locally, everything else to
// the model.
func (m Model) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return m, nil
	}

	if strings.HasPrefix(input, "/") {
		next, cmd, handled := m.handleCommand(input)
		if handled {
			next.textarea.Reset()
			return next, cmd
		}
	}

	if m.deps.Machine.Sending() {
		// Busy sends are dropped, not queued.
		return m, nil
	}
	m.textarea.Reset()
	m.status = ""
	m.banner = nil
	m.suggestions = false
	if m.deps.Cues != nil {
		m.deps.Cues.Send()
	}
	return m, m.sendCmd(input)
}

// handleMouse feeds pointer events inside the timeline pane to the
// gesture engine.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.showTimeline || m.engine == nil {
		return m, nil
	}
	x := float64(msg.X - m.paneLeft - 2)
	y := float64(msg.Y - m.paneTop - 1)
	inside := x >= 0 && msg.X < m.width && y >= 0 && y < float64(m.timelinePaneHeight())

	var act timeline.Action
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if !inside {
			return m, nil
		}
		act = m.engine.PointerDown(x, y)
	case msg.Action == tea.MouseActionMotion:
		if !inside {
			act = m.engine.PointerLeave()
			break
		}
		act = m.engine.PointerMove(x, y)
	case msg.Action == tea.MouseActionRelease:
		act = m.engine.PointerUp(x, y)
	default:
		return m, nil
	}

	switch act {
	case timeline.ActionSelect:
		if m.deps.Cues != nil {
			m.deps.Cues.Select()
		}
	case timeline.ActionSwitch:
		if m.deps.Cues != nil {
			m.deps.Cues.Select()
		}
		// The old event's visualization no longer applies.
		m.deps.Generator.Discard()
		m.vizArt = nil
	case timeline.ActionDeselect:
		// Keep the artifact; only switching selection invalidates it.
	}
	return m, nil
}

// layout recomputes component sizes for the current terminal.
func (m *Model) layout() {
	chatWidth := m.width
	if m.showTimeline {
		chatWidth -= timelinePaneWidth
	}
	if chatWidth < 20 {
		chatWidth = 20
	}
	vpHeight := m.height - 7
	if vpHeight < 3 {
		vpHeight = 3
	}

	if m.viewport.Width == 0 {
		m.viewport = viewport.New(chatWidth-2, vpHeight)
	} else {
		m.viewport.Width = chatWidth - 2
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(chatWidth - 4)

	m.renderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(chatWidth-6),
	)

	m.paneLeft = m.width - timelinePaneWidth
	m.paneTop = 2
	if m.showTimeline {
		m.rebuildTimeline()
	}
}

// refreshTranscript re-renders the conversation into the viewport and
// follows the tail.
func (m *Model) refreshTranscript() {
	if m.viewport.Width == 0 {
		return
	}
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}
