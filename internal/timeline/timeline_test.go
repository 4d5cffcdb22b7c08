package timeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"astrochat/internal/i18n"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testCfg = LayoutConfig{
	AxisLen: 1000,
	AxisX:   50,
	Padding: 40,
	Radius:  6,
	MinGap:  30,
}

func testEvents() []i18n.CosmicEvent {
	return []i18n.CosmicEvent{
		{Time: 1, Name: "Origin"},
		{Time: 380_000, Name: "Recombination"},
		{Time: 400_000_000, Name: "First Stars"},
		{Time: 1_000_000_000, Name: "Galaxies"},
		{Time: 9_000_000_000, Name: "Solar System"},
		{Time: 10_000_000_000, Name: "First Life"},
		{Time: MaxTime, Name: "Present Day"},
	}
}

func TestLayoutLogScale(t *testing.T) {
	markers := Layout(testEvents(), testCfg)
	require.Len(t, markers, 7)

	assert.Equal(t, testCfg.Padding, markers[0].Y, "time 1 clamps to the top padding")
	assert.InDelta(t, testCfg.AxisLen-testCfg.Padding, markers[6].Y, 0.001, "max time reaches the bottom padding")

	for i := 1; i < len(markers); i++ {
		assert.Greater(t, markers[i].Y, markers[i-1].Y, "markers keep event order top to bottom")
	}
}

func TestLayoutAlternatesSides(t *testing.T) {
	markers := Layout(testEvents(), testCfg)
	for i, m := range markers {
		want := SideLeft
		if i%2 == 1 {
			want = SideRight
		}
		assert.Equal(t, want, m.Side, "marker %d", i)
	}
}

func TestLayoutMinGapPerSide(t *testing.T) {
	// Three same-decade events crowd the bottom of the axis.
	crowded := []i18n.CosmicEvent{
		{Time: 9_000_000_000, Name: "a"},
		{Time: 9_500_000_000, Name: "b"},
		{Time: 10_000_000_000, Name: "c"},
		{Time: 10_200_000_000, Name: "d"},
	}
	markers := Layout(crowded, testCfg)

	bySide := map[Side][]Marker{}
	for _, m := range markers {
		bySide[m.Side] = append(bySide[m.Side], m)
	}
	for side, ms := range bySide {
		for i := 1; i < len(ms); i++ {
			gap := ms[i].Y - ms[i-1].Y
			assert.GreaterOrEqual(t, gap, testCfg.MinGap-0.001, "side %v pair %d", side, i)
		}
	}
}

func TestHitTestToleranceAndOrder(t *testing.T) {
	markers := Layout(testEvents(), testCfg)
	m := markers[2]

	assert.Equal(t, m.Event, HitTest(markers, m.X, m.Y).Event)
	assert.Equal(t, m.Event, HitTest(markers, m.X+m.Radius+HitTolerance, m.Y).Event, "edge of tolerance still hits")
	assert.Nil(t, HitTest(markers, m.X+m.Radius+HitTolerance+1, m.Y), "just outside misses")

	// Two coincident markers: insertion order wins.
	dup := []Marker{
		{Event: markers[0].Event, X: 10, Y: 10, Radius: 6},
		{Event: markers[1].Event, X: 10, Y: 10, Radius: 6},
	}
	assert.Equal(t, markers[0].Event, HitTest(dup, 10, 10).Event)
}

func TestClickTogglesSelection(t *testing.T) {
	markers := Layout(testEvents(), testCfg)
	e := NewEngine(markers, testCfg, 400)
	m := markers[1]

	e.PointerDown(m.X, m.Y)
	assert.Equal(t, ActionSelect, e.PointerUp(m.X, m.Y))
	assert.Equal(t, m.Event, e.Selected())

	e.PointerDown(m.X, m.Y)
	assert.Equal(t, ActionDeselect, e.PointerUp(m.X, m.Y))
	assert.Nil(t, e.Selected())
}

func TestClickSwitchesSelection(t *testing.T) {
	markers := Layout(testEvents(), testCfg)
	e := NewEngine(markers, testCfg, 400)
	a, b := markers[1], markers[2]

	e.PointerDown(a.X, a.Y)
	require.Equal(t, ActionSelect, e.PointerUp(a.X, a.Y))

	e.PointerDown(b.X, b.Y)
	assert.Equal(t, ActionSwitch, e.PointerUp(b.X, b.Y), "switching must tell the caller to drop the old visualization")
	assert.Equal(t, b.Event, e.Selected())
}

func TestPanNeverSelects(t *testing.T) {
	markers := Layout(testEvents(), testCfg)
	e := NewEngine(markers, testCfg, 400)
	m := markers[3]

	e.PointerDown(m.X, m.Y)
	e.PointerMove(m.X, m.Y+PanThreshold+1)
	act := e.PointerUp(m.X, m.Y+PanThreshold+1)

	assert.NotEqual(t, ActionSelect, act, "a drag past the threshold is never a click")
	assert.Nil(t, e.Selected())
}

func TestPanClampedToContent(t *testing.T) {
	markers := Layout(testEvents(), testCfg)
	e := NewEngine(markers, testCfg, 400)

	e.PointerDown(0, 500)
	e.PointerMove(0, 5000)
	assert.Equal(t, 0.0, e.Pan(), "cannot scroll above the top")

	e.PointerUp(0, 5000)
	e.PointerDown(0, 500)
	e.PointerMove(0, -5000)
	// Min-gap correction can push the last markers below the axis, so the
	// bottom bound follows the content height, not the axis length.
	assert.Equal(t, 400-ContentHeight(markers, testCfg), e.Pan(), "cannot scroll past the bottom")
	e.PointerUp(0, -5000)
}

func TestPanClearsHoverAndCompensatesHit(t *testing.T) {
	markers := Layout(testEvents(), testCfg)
	e := NewEngine(markers, testCfg, 400)
	m := markers[4]

	// Hover first, then drag: hover must clear.
	e.PointerMove(markers[0].X, markers[0].Y)
	require.NotNil(t, e.Hovered())
	e.PointerDown(0, 300)
	e.PointerMove(0, 200)
	assert.Nil(t, e.Hovered())
	e.PointerUp(0, 200)
	pan := e.Pan()
	require.Negative(t, pan)

	// A click at the panned view position of a marker still hits it.
	e.PointerDown(m.X, m.Y+pan)
	assert.Equal(t, ActionSelect, e.PointerUp(m.X, m.Y+pan))
	assert.Equal(t, m.Event, e.Selected())
}

func TestHoverTracksPointer(t *testing.T) {
	markers := Layout(testEvents(), testCfg)
	e := NewEngine(markers, testCfg, 400)
	m := markers[0]

	assert.Equal(t, ActionHover, e.PointerMove(m.X, m.Y))
	assert.Equal(t, m.Event, e.Hovered())
	assert.Equal(t, ActionNone, e.PointerMove(m.X+1, m.Y), "same marker, no change")
	assert.Equal(t, ActionHover, e.PointerMove(m.X+200, m.Y))
	assert.Nil(t, e.Hovered())

	e.PointerMove(m.X, m.Y)
	assert.Equal(t, ActionHover, e.PointerLeave())
	assert.Nil(t, e.Hovered())
}

func TestFactRotatorCycles(t *testing.T) {
	r := NewFactRotator(5 * time.Millisecond)
	defer r.Stop()

	seen := make(chan int, 16)
	r.Start(context.Background(), 3, func(i int) { seen <- i })

	want := []int{1, 2, 0, 1}
	for _, w := range want {
		select {
		case got := <-seen:
			assert.Equal(t, w, got)
		case <-time.After(time.Second):
			t.Fatal("rotator stalled")
		}
	}
	r.Stop()
	assert.NotPanics(t, func() { r.Stop() }, "stop is idempotent")
}

func TestFactRotatorSingleFactNoGoroutine(t *testing.T) {
	r := NewFactRotator(time.Millisecond)
	r.Start(context.Background(), 1, func(int) { t.Error("single fact never rotates") })
	time.Sleep(10 * time.Millisecond)
	r.Stop()
	assert.Equal(t, 0, r.Index())
}
