package svgclip

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/svgflatten/svgpath"
)

func mustParse(t *testing.T, d string) svgpath.Path {
	t.Helper()
	p, err := svgpath.ParsePath(d)
	require.NoError(t, err)
	return p
}

func filled(p svgpath.Path) Subject { return Subject{Path: p, Filled: true} }

func bothBackends(t *testing.T, fn func(t *testing.T, e Engine)) {
	for _, b := range []Backend{BackendClipper, BackendPolyclip} {
		opts := DefaultOptions()
		opts.Backend = b
		t.Run(b.String(), func(t *testing.T) { fn(t, NewEngine(opts)) })
	}
}

func TestSquareCircle(t *testing.T) {
	square := svgpath.Rect(0, 0, 200, 200, 0, 0)
	circle := mustParse(t, "M 60 100 A 40 40 0 1 0 140 100 A 40 40 0 1 0 60 100 Z")
	bothBackends(t, func(t *testing.T, e Engine) {
		res, err := e.Intersect(filled(square), circle)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.True(t, res[0].Closed)
		assert.Empty(t, res[0].Holes)
		assert.InEpsilon(t, math.Pi*40*40, res.Area(), 0.01)

		b := res[0].Bounds()
		assert.InDelta(t, 60, b.X, 0.1)
		assert.InDelta(t, 80, b.W, 0.1)
	})
}

func TestTwoSquares(t *testing.T) {
	a := svgpath.Rect(0, 0, 100, 100, 0, 0)
	b := svgpath.Rect(50, 50, 100, 100, 0, 0)
	bothBackends(t, func(t *testing.T, e Engine) {
		res, err := e.Intersect(filled(a), b)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.InDelta(t, 2500, res.Area(), 1e-6)
		bounds := res[0].Bounds()
		assert.InDelta(t, 50, bounds.X, 1e-9)
		assert.InDelta(t, 50, bounds.Y, 1e-9)
		assert.InDelta(t, 50, bounds.W, 1e-9)
		assert.InDelta(t, 50, bounds.H, 1e-9)
	})
}

func TestDisjoint(t *testing.T) {
	a := svgpath.Rect(0, 0, 10, 10, 0, 0)
	b := svgpath.Rect(100, 100, 10, 10, 0, 0)
	bothBackends(t, func(t *testing.T, e Engine) {
		res, err := e.Intersect(filled(a), b)
		require.NoError(t, err)
		assert.Empty(t, res)
	})
}

func TestIslands(t *testing.T) {
	// a clip made of two separate squares cuts a wide rectangle in two islands
	content := svgpath.Rect(0, 40, 200, 20, 0, 0)
	clip := mustParse(t, "M 10 0 H 50 V 100 H 10 Z M 150 0 H 190 V 100 H 150 Z")
	bothBackends(t, func(t *testing.T, e Engine) {
		res, err := e.Intersect(filled(content), clip)
		require.NoError(t, err)
		require.Len(t, res, 2)
		for _, c := range res {
			assert.InDelta(t, 800, c.Area(), 1e-6)
		}
		// islands are disjoint
		assert.False(t, res[0].Bounds().Contains(res[1].Bounds(), 0))
	})
}

func TestHoles(t *testing.T) {
	// the content is a frame (even-odd), fully inside the clip
	frame := mustParse(t, "M 0 0 H 100 V 100 H 0 Z M 25 25 H 75 V 75 H 25 Z")
	clip := svgpath.Rect(-10, -10, 200, 200, 0, 0)
	bothBackends(t, func(t *testing.T, e Engine) {
		res, err := e.Intersect(filled(frame), clip)
		require.NoError(t, err)
		require.Len(t, res, 1)
		require.Len(t, res[0].Holes, 1)
		assert.InDelta(t, 10000-2500, res.Area(), 1e-6)
		assert.False(t, res.Contains(svgpath.Point{X: 50, Y: 50}))
		assert.True(t, res.Contains(svgpath.Point{X: 10, Y: 50}))
	})
}

func TestIslandInsideHole(t *testing.T) {
	// frame with a small square in its hole
	content := mustParse(t, "M 0 0 H 100 V 100 H 0 Z M 20 20 H 80 V 80 H 20 Z M 40 40 H 60 V 60 H 40 Z")
	clip := svgpath.Rect(-10, -10, 200, 200, 0, 0)
	bothBackends(t, func(t *testing.T, e Engine) {
		res, err := e.Intersect(filled(content), clip)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.InDelta(t, 10000-3600+400, res.Area(), 1e-6)
		assert.True(t, res.Contains(svgpath.Point{X: 50, Y: 50}))
		assert.False(t, res.Contains(svgpath.Point{X: 30, Y: 30}))
	})
}

func TestNonZero(t *testing.T) {
	// two overlapping squares with the same orientation
	content := mustParse(t, "M 0 0 H 100 V 100 H 0 Z M 50 0 H 150 V 100 H 50 Z")
	clip := svgpath.Rect(0, 0, 150, 100, 0, 0)
	e := NewEngine(DefaultOptions())

	res, err := e.Intersect(Subject{Path: content, Filled: true, FillRule: NonZero}, clip)
	require.NoError(t, err)
	assert.InDelta(t, 15000, res.Area(), 1e-6)

	res, err = e.Intersect(Subject{Path: content, Filled: true, FillRule: EvenOdd}, clip)
	require.NoError(t, err)
	assert.InDelta(t, 10000, res.Area(), 1e-6)

	opts := DefaultOptions()
	opts.Backend = BackendPolyclip
	_, err = NewEngine(opts).Intersect(Subject{Path: content, Filled: true, FillRule: NonZero}, clip)
	assert.Error(t, err)
}

func TestDegenerate(t *testing.T) {
	e := NewEngine(DefaultOptions())
	square := svgpath.Rect(0, 0, 10, 10, 0, 0)

	res, err := e.Intersect(filled(nil), square)
	require.NoError(t, err)
	assert.Empty(t, res)

	res, err = e.Intersect(filled(square), nil)
	require.NoError(t, err)
	assert.Empty(t, res)

	// zero area clip
	res, err = e.Intersect(filled(square), mustParse(t, "M 0 0 L 10 10 L 5 5 Z"))
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestContainment(t *testing.T) {
	content := mustParse(t, "M 10 10 C 90 -20 150 60 120 140 Q 40 170 10 10 Z")
	clip := mustParse(t, "M 60 80 A 50 50 0 1 0 160 80 A 50 50 0 1 0 60 80 Z")
	e := NewEngine(DefaultOptions())
	res, err := e.Intersect(filled(content), clip)
	require.NoError(t, err)
	require.NotEmpty(t, res)

	contentPls := content.Flatten(e.Options().Tolerance)
	clipPls := clip.Flatten(e.Options().Tolerance)
	contentRings, _ := ringPoints(contentPls)
	clipRings, _ := ringPoints(clipPls)
	// every result vertex belongs to both operands, up to the grid resolution
	const eps = 1e-2
	near := func(p svgpath.Point, rings [][]svgpath.Point) bool {
		if insideEvenOdd(p, rings) {
			return true
		}
		for _, r := range rings {
			for i := range r {
				if distToSegment(p, r[i], r[(i+1)%len(r)]) < eps {
					return true
				}
			}
		}
		return false
	}
	for _, c := range res {
		for _, p := range c.Outline {
			assert.True(t, near(p, contentRings), p)
			assert.True(t, near(p, clipRings), p)
		}
	}
	// and sampled points inside both are covered
	for x := 0.; x <= 160; x += 7 {
		for y := 0.; y <= 160; y += 7 {
			p := svgpath.Point{X: x, Y: y}
			if insideEvenOdd(p, contentRings) && insideEvenOdd(p, clipRings) && !near(p, res.rings()) {
				assert.True(t, res.Contains(p), p)
			}
		}
	}
}

func (cs Compound) rings() [][]svgpath.Point {
	var out [][]svgpath.Point
	for _, c := range cs {
		out = append(out, c.Outline)
		out = append(out, c.Holes...)
	}
	return out
}

func TestOutlineMode(t *testing.T) {
	// an open zigzag crossing the clip square twice
	line := mustParse(t, "M -10 5 L 20 5 L 20 15 L -10 15")
	clip := svgpath.Rect(0, 0, 10, 20, 0, 0)
	e := NewEngine(DefaultOptions())

	res, err := e.Intersect(Subject{Path: line}, clip)
	require.NoError(t, err)
	require.Len(t, res, 2)
	for _, c := range res {
		assert.False(t, c.Closed)
		assert.Equal(t, 0., c.Area())
		for _, p := range c.Outline {
			assert.True(t, p.X >= -1e-9 && p.X <= 10+1e-9, p)
		}
	}
	assertPoints(t, []svgpath.Point{{X: 0, Y: 5}, {X: 10, Y: 5}}, res[0].Outline)
	assertPoints(t, []svgpath.Point{{X: 10, Y: 15}, {X: 0, Y: 15}}, res[1].Outline)
}

func assertPoints(t *testing.T, expected, got []svgpath.Point) {
	t.Helper()
	if !assert.Len(t, got, len(expected)) {
		return
	}
	for i := range expected {
		assert.InDelta(t, expected[i].X, got[i].X, 1e-9)
		assert.InDelta(t, expected[i].Y, got[i].Y, 1e-9)
	}
}

func TestOutlineModeClosedRing(t *testing.T) {
	square := svgpath.Rect(0, 0, 10, 10, 0, 0)
	e := NewEngine(DefaultOptions())

	// entirely inside: kept closed
	res, err := e.Intersect(Subject{Path: square}, svgpath.Rect(-5, -5, 20, 20, 0, 0))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.True(t, res[0].Closed)
	assert.Len(t, res[0].Outline, 4)

	// the clip covers the left half: the piece around the ring start is merged
	res, err = e.Intersect(Subject{Path: square}, svgpath.Rect(-5, -5, 10, 20, 0, 0))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.False(t, res[0].Closed)
	assert.Equal(t, []svgpath.Point{{X: 5, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0}, {X: 5, Y: 0}}, res[0].Outline)
}

func TestTraceDisabled(t *testing.T) {
	square := svgpath.Rect(0, 0, 10, 10, 0, 0)
	opts := DefaultOptions()
	opts.Trace = false
	res, err := NewEngine(opts).Intersect(filled(square), svgpath.Rect(5, -5, 20, 20, 0, 0))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.False(t, res[0].Closed)
	// the cut points on x = 5 are kept
	assert.Equal(t, []svgpath.Point{{X: 5, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 5, Y: 10}}, res[0].Outline)
}

func TestFilledWithoutArea(t *testing.T) {
	// a default filled line has no interior: its outline is clipped
	content := mustParse(t, "M 10 10 L 150 150 M 10 90 L 150 90")
	clip := svgpath.Rect(0, 0, 100, 100, 0, 0)
	bothBackends(t, func(t *testing.T, e Engine) {
		res, err := e.Intersect(filled(content), clip)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assertPoints(t, []svgpath.Point{{X: 10, Y: 10}, {X: 100, Y: 100}}, res[0].Outline)
		assertPoints(t, []svgpath.Point{{X: 10, Y: 90}, {X: 100, Y: 90}}, res[1].Outline)
		for _, c := range res {
			assert.False(t, c.Closed)
		}
	})

	// mixed with a region
	mixed := mustParse(t, "M 0 0 H 200 V 50 H 0 Z M 10 90 L 150 90")
	bothBackends(t, func(t *testing.T, e Engine) {
		res, err := e.Intersect(filled(mixed), clip)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.True(t, res[0].Closed)
		assert.InDelta(t, 5000, res[0].Area(), 1e-6)
		assert.False(t, res[1].Closed)
	})
}

func TestBoundaryInclusive(t *testing.T) {
	// a segment lying on the clip edge is kept
	edge := mustParse(t, "M 0 0 L 10 0")
	res, err := NewEngine(DefaultOptions()).Intersect(Subject{Path: edge}, svgpath.Rect(0, 0, 10, 10, 0, 0))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, []svgpath.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}, res[0].Outline)
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("Polyclip")
	require.NoError(t, err)
	assert.Equal(t, BackendPolyclip, b)
	b, err = ParseBackend("")
	require.NoError(t, err)
	assert.Equal(t, BackendClipper, b)
	_, err = ParseBackend("gpc")
	assert.Error(t, err)
}

func TestContourPath(t *testing.T) {
	c := Contour{
		Outline: []svgpath.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}},
		Holes:   [][]svgpath.Point{{{X: 2, Y: 1}, {X: 8, Y: 1}, {X: 8, Y: 7}}},
		Closed:  true,
	}
	assert.Equal(t, "M0,0 L10,0 L10,10 Z M8,7 L8,1 L2,1 Z", c.Path().ToSVGPath())
	open := Contour{Outline: []svgpath.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}}
	assert.Equal(t, "M0,0 L1,1", open.Path().ToSVGPath())
}
