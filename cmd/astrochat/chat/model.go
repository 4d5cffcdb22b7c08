// Package chat implements the interactive AstroChat terminal interface:
// the education level picker, the streaming conversation view and the
// cosmic timeline pane.
package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"astrochat/cmd/astrochat/ui"
	"astrochat/internal/audio"
	"astrochat/internal/browser"
	core "astrochat/internal/chat"
	"astrochat/internal/i18n"
	"astrochat/internal/timeline"
	"astrochat/internal/viz"
)

type screen int

const (
	screenLevel screen = iota
	screenChat
)

// Deps are the services the interface drives. The composition root wires
// them; tests substitute fakes.
type Deps struct {
	Machine   *core.Machine
	Generator *viz.Generator
	Music     *audio.Player
	Cues      *audio.CuePlayer
	Preview   *browser.Previewer
	Lang      i18n.Language
	Theme     ui.Theme
}

// Model is the bubbletea model for the whole interface.
type Model struct {
	deps   Deps
	bundle *i18n.Bundle
	styles ui.Styles

	screen      screen
	levelCursor int

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool

	banner      *core.AppError
	status      string
	suggestions bool

	showTimeline bool
	engine       *timeline.Engine
	tlCfg        timeline.LayoutConfig
	paneLeft     int
	paneTop      int

	musicOn    bool
	musicSubID int

	vizBusy bool
	vizArt  *viz.Artifact
	factIdx int
	rotator *timeline.FactRotator

	// Async results flow through these; listener commands pump them back
	// into Update as messages.
	updates chan []core.Message
	musicCh chan bool
	factCh  chan int

	ctx context.Context
}

// NewModel wires the interface over its dependencies.
func NewModel(ctx context.Context, deps Deps) Model {
	bundle := i18n.Get(deps.Lang)
	styles := ui.NewStyles(deps.Theme)

	ta := textarea.New()
	ta.Placeholder = bundle.InputPlaceholder
	ta.CharLimit = 2000
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	m := Model{
		deps:        deps,
		bundle:      bundle,
		styles:      styles,
		screen:      screenLevel,
		textarea:    ta,
		spinner:     sp,
		suggestions: true,
		rotator:     timeline.NewFactRotator(timeline.FactInterval),
		updates:     make(chan []core.Message, 8),
		musicCh:     make(chan bool, 4),
		factCh:      make(chan int, 4),
		ctx:         ctx,
	}

	if deps.Music != nil {
		m.musicOn = deps.Music.Playing()
		ch := m.musicCh
		m.musicSubID = deps.Music.Subscribe(func(on bool) {
			select {
			case ch <- on:
			default:
			}
		})
	}
	return m
}

// Init starts the cursor blink, the spinner and the channel listeners.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.listenUpdates(),
		m.listenMusic(),
		m.listenFacts(),
	)
}

// rebuildTimeline lays the events out for the current pane size.
func (m *Model) rebuildTimeline() {
	paneH := float64(m.timelinePaneHeight())
	m.tlCfg = timeline.LayoutConfig{
		AxisLen: paneH * 2, // taller than the pane so panning matters
		AxisX:   float64(timelinePaneWidth / 2),
		Padding: 2,
		Radius:  1,
		MinGap:  3,
	}
	markers := timeline.Layout(m.bundle.Events, m.tlCfg)
	m.engine = timeline.NewEngine(markers, m.tlCfg, paneH)
}

// setBundle swaps the language everywhere at once.
func (m *Model) setBundle(lang i18n.Language) {
	m.deps.Lang = lang
	m.bundle = i18n.Get(lang)
	m.deps.Machine.SetBundle(m.bundle)
	m.textarea.Placeholder = m.bundle.InputPlaceholder
	if m.showTimeline {
		m.rebuildTimeline()
	}
}

// Close releases the model's subscriptions. The runner calls it after the
// program exits.
func (m Model) Close() {
	if m.deps.Music != nil {
		m.deps.Music.Unsubscribe(m.musicSubID)
	}
	m.rotator.Stop()
}
