package timeline

import (
	"math"

	"astrochat/internal/i18n"
)

// PanThreshold is the cumulative vertical displacement, in the same units
// as the layout, past which a press stops being a potential click.
const PanThreshold = 5

// Action tells the caller what a pointer event did.
type Action int

const (
	ActionNone Action = iota
	// ActionHover means the hovered marker changed.
	ActionHover
	// ActionPan means the pan offset changed.
	ActionPan
	// ActionSelect means a marker was selected.
	ActionSelect
	// ActionDeselect means the selected marker was cleared, either by
	// clicking it again or by clicking empty space.
	ActionDeselect
	// ActionSwitch means selection moved to a different marker. Any
	// visualization generated for the previous one is stale and must be
	// discarded by the caller.
	ActionSwitch
)

// Engine is the pointer state machine for one timeline view. Coordinates
// given to the pointer methods are view coordinates; the engine translates
// to content coordinates using its own pan offset. Not safe for concurrent
// use; the event loop owns it.
type Engine struct {
	markers    []Marker
	viewHeight float64
	content    float64

	selected *Marker
	hovered  *Marker

	pan float64

	pressed  bool
	panning  bool
	startY   float64
	startPan float64
}

// NewEngine builds an engine over a laid-out timeline. viewHeight is the
// visible window; content taller than the window becomes pannable.
func NewEngine(markers []Marker, cfg LayoutConfig, viewHeight float64) *Engine {
	return &Engine{
		markers:    markers,
		viewHeight: viewHeight,
		content:    ContentHeight(markers, cfg),
	}
}

// Selected returns the selected event, nil when none.
func (e *Engine) Selected() *i18n.CosmicEvent {
	if e.selected == nil {
		return nil
	}
	return e.selected.Event
}

// Hovered returns the hovered event, nil when none.
func (e *Engine) Hovered() *i18n.CosmicEvent {
	if e.hovered == nil {
		return nil
	}
	return e.hovered.Event
}

// Pan returns the current offset: content Y plus offset gives view Y, so
// the value is zero or negative.
func (e *Engine) Pan() float64 { return e.pan }

// Markers exposes the laid-out markers for drawing.
func (e *Engine) Markers() []Marker { return e.markers }

// hit translates view coordinates through the pan offset before testing.
func (e *Engine) hit(x, y float64) *Marker {
	return HitTest(e.markers, x, y-e.pan)
}

// PointerDown starts a gesture. Whether it becomes a click or a pan is
// decided by later movement.
func (e *Engine) PointerDown(x, y float64) Action {
	e.pressed = true
	e.panning = false
	e.startY = y
	e.startPan = e.pan
	return ActionNone
}

// PointerMove updates hover when no button is down. While pressed, a
// vertical displacement past the threshold reclassifies the gesture as a
// pan; from then on the offset follows the pointer, clamped so the window
// never scrolls past the content.
func (e *Engine) PointerMove(x, y float64) Action {
	if !e.pressed {
		h := e.hit(x, y)
		if h != e.hovered {
			e.hovered = h
			return ActionHover
		}
		return ActionNone
	}
	if !e.panning && math.Abs(y-e.startY) > PanThreshold {
		e.panning = true
		e.hovered = nil
	}
	if e.panning {
		e.pan = e.clampPan(e.startPan + (y - e.startY))
		return ActionPan
	}
	return ActionNone
}

// PointerUp ends the gesture. A press that never crossed the pan threshold
// is a click: hit-test at the release point and toggle selection.
func (e *Engine) PointerUp(x, y float64) Action {
	if !e.pressed {
		return ActionNone
	}
	e.pressed = false
	if e.panning {
		e.panning = false
		return ActionNone
	}

	h := e.hit(x, y)
	switch {
	case h == nil && e.selected == nil:
		return ActionNone
	case h == nil || h == e.selected:
		e.selected = nil
		return ActionDeselect
	case e.selected == nil:
		e.selected = h
		return ActionSelect
	default:
		e.selected = h
		return ActionSwitch
	}
}

// PointerLeave clears hover when the pointer exits the view.
func (e *Engine) PointerLeave() Action {
	e.pressed = false
	e.panning = false
	if e.hovered != nil {
		e.hovered = nil
		return ActionHover
	}
	return ActionNone
}

// ClearSelection drops the selection without a pointer event, for keyboard
// driven dismissal.
func (e *Engine) ClearSelection() {
	e.selected = nil
}

func (e *Engine) clampPan(p float64) float64 {
	min := e.viewHeight - e.content
	if min > 0 {
		min = 0
	}
	if p < min {
		return min
	}
	if p > 0 {
		return 0
	}
	return p
}
