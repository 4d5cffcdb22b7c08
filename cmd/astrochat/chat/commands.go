package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	core "astrochat/internal/chat"
	"astrochat/internal/i18n"
	"astrochat/internal/logging"
	"astrochat/internal/viz"
)

// Messages produced by background work.
type (
	transcriptMsg []core.Message
	sendDoneMsg   struct{ banner *core.AppError }
	levelDoneMsg  struct{ banner *core.AppError }
	vizDoneMsg    struct {
		art *viz.Artifact
		err error
	}
	previewDoneMsg struct{ err error }
	musicStateMsg  bool
	factMsg        int
	statusMsg      string
)

// ConfigReloadMsg is sent by the runner when the config file changes on
// disk while the interface is up.
type ConfigReloadMsg struct {
	Theme    string
	Language string
}

func (m Model) listenUpdates() tea.Cmd {
	ch := m.updates
	return func() tea.Msg { return transcriptMsg(<-ch) }
}

func (m Model) listenMusic() tea.Cmd {
	ch := m.musicCh
	return func() tea.Msg { return musicStateMsg(<-ch) }
}

func (m Model) listenFacts() tea.Cmd {
	ch := m.factCh
	return func() tea.Msg { return factMsg(<-ch) }
}

// selectLevelCmd creates the model session off the event loop.
func (m Model) selectLevelCmd(level i18n.EducationLevel) tea.Cmd {
	machine, ctx := m.deps.Machine, m.ctx
	return func() tea.Msg {
		return levelDoneMsg{banner: machine.SelectLevel(ctx, level)}
	}
}

// sendCmd streams one turn, pushing transcript snapshots through the
// updates channel as fragments arrive.
func (m Model) sendCmd(text string) tea.Cmd {
	machine, ctx, ch := m.deps.Machine, m.ctx, m.updates
	return func() tea.Msg {
		banner := machine.Send(ctx, text, func(tr []core.Message) {
			select {
			case ch <- tr:
			default:
				// The UI repaints on the next snapshot anyway.
			}
		})
		return sendDoneMsg{banner: banner}
	}
}

// generateVizCmd runs one visualization generation for the event.
func (m Model) generateVizCmd(event *i18n.CosmicEvent) tea.Cmd {
	gen, ctx := m.deps.Generator, m.ctx
	return func() tea.Msg {
		art, err := gen.Generate(ctx, event)
		return vizDoneMsg{art: art, err: err}
	}
}

// previewCmd opens the current artifact in a browser.
func (m Model) previewCmd(path string) tea.Cmd {
	prev, ctx := m.deps.Preview, m.ctx
	return func() tea.Msg {
		if prev == nil {
			return previewDoneMsg{}
		}
		return previewDoneMsg{err: prev.Open(ctx, path)}
	}
}

// handleCommand dispatches a /-command. Unknown commands fall through to
// the model as a normal question.
func (m Model) handleCommand(input string) (Model, tea.Cmd, bool) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "/quit", "/exit":
		return m, tea.Quit, true

	case "/help":
		m.banner = nil
		return m, func() tea.Msg { return statusMsg(helpText) }, true

	case "/clear":
		if m.deps.Cues != nil {
			m.deps.Cues.Clear()
		}
		m.deps.Machine.Clear()
		m.banner = nil
		m.suggestions = true
		m.refreshTranscript()
		return m, nil, true

	case "/back":
		m.deps.Machine.Back()
		m.screen = screenLevel
		m.banner = nil
		m.suggestions = true
		return m, nil, true

	case "/lang":
		if len(fields) < 2 {
			return m, func() tea.Msg { return statusMsg("usage: /lang en|id") }, true
		}
		lang, err := i18n.ParseLanguage(fields[1])
		if err != nil {
			return m, func() tea.Msg { return statusMsg(err.Error()) }, true
		}
		m.setBundle(lang)
		return m, nil, true

	case "/music":
		if m.deps.Music != nil {
			m.deps.Music.Toggle()
		}
		return m, nil, true

	case "/timeline":
		m.showTimeline = !m.showTimeline
		if m.showTimeline {
			m.rebuildTimeline()
		}
		return m, nil, true

	case "/visualize":
		return m.startVisualization(fields[1:])

	default:
		return m, nil, false
	}
}

// startVisualization resolves the target event (named argument, current
// timeline selection, or the default concept) and kicks off generation.
// A second request while one runs is dropped, like a busy send.
func (m Model) startVisualization(args []string) (Model, tea.Cmd, bool) {
	if m.vizBusy {
		return m, nil, true
	}
	if m.deps.Generator == nil {
		m.banner = &core.AppError{
			Title:   m.bundle.ErrAPIKeyNotFoundTitle,
			Message: m.bundle.ErrAPIKeyNotFoundMessage,
		}
		return m, nil, true
	}

	var event *i18n.CosmicEvent
	if len(args) > 0 {
		name := strings.Join(args, " ")
		ev, ok := m.bundle.EventByName(name)
		if !ok {
			return m, func() tea.Msg { return statusMsg("unknown event: " + name) }, true
		}
		event = ev
	} else if m.engine != nil {
		event = m.engine.Selected()
	}

	m.vizBusy = true
	m.factIdx = 0
	m.banner = nil
	if event != nil && len(event.FunFacts) > 1 {
		ch := m.factCh
		m.rotator.Start(m.ctx, len(event.FunFacts), func(i int) {
			select {
			case ch <- i:
			default:
			}
		})
	}
	logging.UI("visualization requested: %v", eventName(event))
	return m, m.generateVizCmd(event), true
}

func eventName(e *i18n.CosmicEvent) string {
	if e == nil {
		return "default"
	}
	return e.Name
}

const helpText = `/clear      reset the conversation (the model keeps its memory)
/back       return to the level picker
/lang en|id switch language
/music      toggle ambient music
/timeline   show or hide the cosmic timeline pane
/visualize [event]  generate an AI visualization
/help       this text
/quit       leave`
