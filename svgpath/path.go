// Implements an abstract representation of
// svg path data, with the geometric helpers needed
// to clip it: parsing, transforms, flattening and bounds.
package svgpath

import (
	"strconv"
	"strings"

	"github.com/srwiley/rasterx"
)

// Point is a position in user space.
type Point struct{ X, Y float64 }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p * s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Apply transforms the point by m.
func (p Point) Apply(m rasterx.Matrix2D) Point {
	x, y := m.Transform(p.X, p.Y)
	return Point{x, y}
}

type pathCommand uint8

// Human readable path constants
const (
	pathMoveTo pathCommand = iota
	pathLineTo
	pathQuadTo
	pathCubicTo
	pathClose
)

// Operation groups the different SVG commands,
// all expressed in absolute coordinates.
type Operation interface {
	command() pathCommand
}

type MoveTo Point

type LineTo Point

// QuadTo stores the control point and the end point.
type QuadTo [2]Point

// CubicTo stores the two control points and the end point.
type CubicTo [3]Point

type Close struct{}

func (MoveTo) command() pathCommand  { return pathMoveTo }
func (LineTo) command() pathCommand  { return pathLineTo }
func (QuadTo) command() pathCommand  { return pathQuadTo }
func (CubicTo) command() pathCommand { return pathCubicTo }
func (Close) command() pathCommand   { return pathClose }

// Path describes a sequence of basic SVG operations.
// Higher-level shapes may be reduced to a path.
// A well formed path starts with a MoveTo.
type Path []Operation

// coordPrecision is the number of decimals written by ToSVGPath.
const coordPrecision = 3

// fmtFloat writes x with at most coordPrecision decimals,
// without trailing zeros.
func fmtFloat(x float64) string {
	s := strconv.FormatFloat(x, 'f', coordPrecision, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

func fmtPoints(pts ...Point) string {
	chunks := make([]string, len(pts))
	for i, p := range pts {
		chunks[i] = fmtFloat(p.X) + "," + fmtFloat(p.Y)
	}
	return strings.Join(chunks, " ")
}

// ToSVGPath returns a string representation of the path,
// suitable for a 'd' attribute.
func (p Path) ToSVGPath() string {
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = "M" + fmtPoints(Point(op))
		case LineTo:
			chunks[i] = "L" + fmtPoints(Point(op))
		case QuadTo:
			chunks[i] = "Q" + fmtPoints(op[0], op[1])
		case CubicTo:
			chunks[i] = "C" + fmtPoints(op[0], op[1], op[2])
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}

// String returns a readable representation of a Path.
func (p Path) String() string {
	return p.ToSVGPath()
}

// Clear zeros the path slice
func (p *Path) Clear() {
	*p = (*p)[:0]
}

// Start starts a new curve at the given point.
func (p *Path) Start(a Point) {
	*p = append(*p, MoveTo(a))
}

// Line adds a linear segment to the current curve.
func (p *Path) Line(b Point) {
	*p = append(*p, LineTo(b))
}

// QuadBezier adds a quadratic segment to the current curve.
func (p *Path) QuadBezier(b, c Point) {
	*p = append(*p, QuadTo{b, c})
}

// CubeBezier adds a cubic segment to the current curve.
func (p *Path) CubeBezier(b, c, d Point) {
	*p = append(*p, CubicTo{b, c, d})
}

// Stop joins the ends of the path
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}

// Append concatenates the operations of q after p.
func (p *Path) Append(q Path) {
	*p = append(*p, q...)
}

// Transform returns a new path with every point mapped by m.
func (p Path) Transform(m rasterx.Matrix2D) Path {
	out := make(Path, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			out[i] = MoveTo(Point(op).Apply(m))
		case LineTo:
			out[i] = LineTo(Point(op).Apply(m))
		case QuadTo:
			out[i] = QuadTo{op[0].Apply(m), op[1].Apply(m)}
		case CubicTo:
			out[i] = CubicTo{op[0].Apply(m), op[1].Apply(m), op[2].Apply(m)}
		case Close:
			out[i] = op
		}
	}
	return out
}

// Subpaths splits the path at each MoveTo.
func (p Path) Subpaths() []Path {
	var (
		out     []Path
		current Path
	)
	for _, op := range p {
		if op.command() == pathMoveTo && len(current) != 0 {
			out = append(out, current)
			current = nil
		}
		current = append(current, op)
	}
	if len(current) != 0 {
		out = append(out, current)
	}
	return out
}

// HasClose returns true if at least one subpath is explicitly closed.
func (p Path) HasClose() bool {
	for _, op := range p {
		if op.command() == pathClose {
			return true
		}
	}
	return false
}
