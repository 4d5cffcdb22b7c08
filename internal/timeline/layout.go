// Package timeline maps cosmic events spanning ten orders of magnitude of
// time onto a single vertical axis and turns raw pointer input into
// hover, selection and pan actions.
package timeline

import (
	"math"

	"astrochat/internal/i18n"
)

// MaxTime is the age of the universe in years, the far end of the axis.
const MaxTime = 13_800_000_000

var logMaxTime = math.Log10(MaxTime)

// HitTolerance widens every marker's clickable area beyond its drawn
// radius. Pointer input is imprecise; markers are small.
const HitTolerance = 10

// Side says which side of the axis a marker's label sits on.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

// Marker is one event placed on the axis, in content coordinates (pan
// offset not applied).
type Marker struct {
	Event  *i18n.CosmicEvent
	X, Y   float64
	Radius float64
	Side   Side
}

// LayoutConfig sizes the axis. AxisLen is the drawable height, Padding the
// clamp margin at both ends, MinGap the smallest vertical distance allowed
// between same-side neighbours (label height plus breathing room).
type LayoutConfig struct {
	AxisLen float64
	AxisX   float64
	Padding float64
	Radius  float64
	MinGap  float64
}

// eventY places a time value on the log scale. Times at or below one year
// have no usable logarithm and pin to the top padding.
func eventY(time int64, cfg LayoutConfig) float64 {
	if time <= 1 {
		return cfg.Padding
	}
	return cfg.Padding + math.Log10(float64(time))/logMaxTime*(cfg.AxisLen-2*cfg.Padding)
}

// Layout positions every event. Sides alternate by index so labels
// interleave, then a forward pass per side pushes any marker that landed
// too close to its predecessor down by the shortfall. The pass is strictly
// one-directional: earlier markers never move, so the corrected order
// matches event order.
func Layout(events []i18n.CosmicEvent, cfg LayoutConfig) []Marker {
	markers := make([]Marker, 0, len(events))
	lastY := map[Side]float64{SideLeft: math.Inf(-1), SideRight: math.Inf(-1)}
	for i := range events {
		ev := &events[i]
		side := SideLeft
		if i%2 == 1 {
			side = SideRight
		}
		y := eventY(ev.Time, cfg)
		if min := lastY[side] + cfg.MinGap; y < min {
			y = min
		}
		lastY[side] = y
		markers = append(markers, Marker{
			Event:  ev,
			X:      cfg.AxisX,
			Y:      y,
			Radius: cfg.Radius,
			Side:   side,
		})
	}
	return markers
}

// ContentHeight reports the full scrollable extent of a laid-out timeline,
// including the bottom padding after the last marker.
func ContentHeight(markers []Marker, cfg LayoutConfig) float64 {
	h := cfg.AxisLen
	for _, m := range markers {
		if bottom := m.Y + cfg.Padding; bottom > h {
			h = bottom
		}
	}
	return h
}

// HitTest resolves a pointer position in content coordinates to a marker.
// The first marker within radius plus tolerance wins, in insertion order;
// nil when nothing is close enough.
func HitTest(markers []Marker, x, y float64) *Marker {
	for i := range markers {
		m := &markers[i]
		dx, dy := x-m.X, y-m.Y
		if math.Sqrt(dx*dx+dy*dy) <= m.Radius+HitTolerance {
			return m
		}
	}
	return nil
}
