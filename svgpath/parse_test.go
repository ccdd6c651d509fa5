package svgpath

import (
	"errors"
	"math"
	"testing"

	"github.com/srwiley/rasterx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePathBasic(t *testing.T) {
	p, err := ParsePath("M 10 20 L 30 40 H 50 V 60 Z")
	require.NoError(t, err)
	assert.Equal(t, Path{
		MoveTo{10, 20},
		LineTo{30, 40},
		LineTo{50, 40},
		LineTo{50, 60},
		Close{},
	}, p)
}

func TestParsePathRelative(t *testing.T) {
	p, err := ParsePath("m10,20 l5 5 h-5 v-5 z m 1 1 l 1 1")
	require.NoError(t, err)
	assert.Equal(t, Path{
		MoveTo{10, 20},
		LineTo{15, 25},
		LineTo{10, 25},
		LineTo{10, 20},
		Close{},
		MoveTo{11, 21},
		LineTo{12, 22},
	}, p)
}

func TestParsePathImplicitCommands(t *testing.T) {
	// extra pairs after a move are lines
	p, err := ParsePath("M0 0 10 0 10 10")
	require.NoError(t, err)
	assert.Equal(t, Path{MoveTo{0, 0}, LineTo{10, 0}, LineTo{10, 10}}, p)

	p, err = ParsePath("m1 1 2 2 3 3")
	require.NoError(t, err)
	assert.Equal(t, Path{MoveTo{1, 1}, LineTo{3, 3}, LineTo{6, 6}}, p)
}

func TestParsePathCompactNumbers(t *testing.T) {
	p, err := ParsePath("M.5.5L-1-1e1")
	require.NoError(t, err)
	assert.Equal(t, Path{MoveTo{0.5, 0.5}, LineTo{-1, -10}}, p)
}

func TestParsePathCurves(t *testing.T) {
	p, err := ParsePath("M0 0 C 0 10 10 10 10 0 S 20 -10 20 0")
	require.NoError(t, err)
	require.Len(t, p, 3)
	assert.Equal(t, CubicTo{{0, 10}, {10, 10}, {10, 0}}, p[1])
	// first control point is the reflection of (10, 10) around (10, 0)
	assert.Equal(t, CubicTo{{10, -10}, {20, -10}, {20, 0}}, p[2])

	p, err = ParsePath("M0 0 Q 5 10 10 0 T 20 0")
	require.NoError(t, err)
	require.Len(t, p, 3)
	assert.Equal(t, QuadTo{{5, 10}, {10, 0}}, p[1])
	assert.Equal(t, QuadTo{{15, -10}, {20, 0}}, p[2])

	// S without a previous cubic uses the current point
	p, err = ParsePath("M0 0 S 5 5 10 0")
	require.NoError(t, err)
	assert.Equal(t, CubicTo{{0, 0}, {5, 5}, {10, 0}}, p[1])
}

func TestParsePathArc(t *testing.T) {
	p, err := ParsePath("M 60 100 A 40 40 0 1 0 140 100 A 40 40 0 1 0 60 100 Z")
	require.NoError(t, err)

	// all points lie on the circle
	for _, op := range p {
		if c, ok := op.(CubicTo); ok {
			end := c[2]
			assert.InDelta(t, 40, math.Hypot(end.X-100, end.Y-100), 1e-9)
		}
	}
	b := p.Bounds()
	assert.InDelta(t, 60, b.X, 0.05)
	assert.InDelta(t, 60, b.Y, 0.05)
	assert.InDelta(t, 80, b.W, 0.05)
	assert.InDelta(t, 80, b.H, 0.05)

	// compact flags
	q, err := ParsePath("M 60 100 a40 40 0 1080 0")
	require.NoError(t, err)
	assert.Equal(t, CubicTo{}.command(), q[len(q)-1].command())
	end := q[len(q)-1].(CubicTo)[2]
	assert.Equal(t, Point{140, 100}, end)
}

func TestParsePathArcDegenerate(t *testing.T) {
	p, err := ParsePath("M 10 10 A 0 5 0 0 1 20 20")
	require.NoError(t, err)
	assert.Equal(t, Path{MoveTo{10, 10}, LineTo{20, 20}}, p)

	// same end points: the arc is omitted
	p, err = ParsePath("M 10 10 A 5 5 0 0 1 10 10")
	require.NoError(t, err)
	assert.Equal(t, Path{MoveTo{10, 10}}, p)
}

func TestParsePathDrawAfterClose(t *testing.T) {
	p, err := ParsePath("M 0 0 L 10 0 L 10 10 Z L 0 10")
	require.NoError(t, err)
	assert.Equal(t, Path{
		MoveTo{0, 0}, LineTo{10, 0}, LineTo{10, 10}, Close{},
		MoveTo{0, 0}, LineTo{0, 10},
	}, p)
}

func TestParsePathEmpty(t *testing.T) {
	p, err := ParsePath("  ")
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestParsePathErrors(t *testing.T) {
	for _, d := range []string{
		"L 10 10",
		"10 10",
		"M 10",
		"M 10 10 L",
		"M 10 10 X 5",
		"M 10 10 Z 5",
		"M 0 0 A 10 10 0 2 0 5 5",
		"M 0 0 L 1 px",
		"M L 1 1",
	} {
		_, err := ParsePath(d)
		var pe *ParseError
		if assert.Error(t, err, d) {
			assert.True(t, errors.As(err, &pe), d)
		}
	}
}

func TestToSVGPathRoundTrip(t *testing.T) {
	for _, d := range []string{
		"M 10 20 L 30 40 Z",
		"M0 0 C 0 10 10 10 10 0 Q 15 5 20 0 Z M 30 30 L 40 40",
		"M 60 100 A 40 40 0 1 0 140 100 A 40 40 0 1 0 60 100 Z",
		"M -0.25 1e2 l 0.125 -3",
	} {
		p, err := ParsePath(d)
		require.NoError(t, err)
		s := p.ToSVGPath()
		p2, err := ParsePath(s)
		require.NoError(t, err, s)
		require.Len(t, p2, len(p))
		for i := range p {
			assert.Equal(t, p[i].command(), p2[i].command())
		}
		assert.InDelta(t, p.Bounds().W, p2.Bounds().W, 1e-3)
		assert.InDelta(t, p.Bounds().X, p2.Bounds().X, 1e-3)
	}
}

func TestFmtFloat(t *testing.T) {
	assert.Equal(t, "10", fmtFloat(10))
	assert.Equal(t, "-0.5", fmtFloat(-0.5))
	assert.Equal(t, "0", fmtFloat(-0.0001))
	assert.Equal(t, "1.235", fmtFloat(1.23456))
}

func TestParseTransform(t *testing.T) {
	m, err := ParseTransform("")
	require.NoError(t, err)
	assert.Equal(t, rasterx.Identity, m)

	m, err = ParseTransform("translate(10, 20) scale(2)")
	require.NoError(t, err)
	x, y := m.Transform(1, 1)
	assert.InDelta(t, 12, x, 1e-9)
	assert.InDelta(t, 22, y, 1e-9)

	m, err = ParseTransform("rotate(90 10 10)")
	require.NoError(t, err)
	x, y = m.Transform(20, 10)
	assert.InDelta(t, 10, x, 1e-9)
	assert.InDelta(t, 20, y, 1e-9)

	m, err = ParseTransform("matrix(1 0 0 1 5 -5), translate(1)")
	require.NoError(t, err)
	x, y = m.Transform(0, 0)
	assert.InDelta(t, 6, x, 1e-9)
	assert.InDelta(t, -5, y, 1e-9)

	for _, bad := range []string{"translate(1 2 3)", "scale()", "spin(4)", "translate 4", "rotate(a)"} {
		_, err = ParseTransform(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseNumbers(t *testing.T) {
	v, err := ParseNumbers("0,0 10,5 -3.5e1 .5")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 10, 5, -35, 0.5}, v)

	_, err = ParseNumbers("1 2 three")
	assert.Error(t, err)
}
