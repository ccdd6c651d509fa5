package svgpath

import (
	"math"

	"github.com/srwiley/rasterx"
)

// DefaultTolerance is the maximal distance, in user units, between
// a curve and its flattened approximation.
const DefaultTolerance = 0.05

// rasterx subdivides curves so that the deviation stays below
// this value, in its own units.
const rasterxDeviation = 0.144

// Polyline is a flattened subpath.
// For a closed polyline, the closing edge from the last point back
// to the first one is implicit: the first point is not repeated.
type Polyline struct {
	Points []Point
	Closed bool
}

// Area returns the signed area enclosed by the polyline,
// considered as closed. It is positive for a clockwise ring
// in the SVG (y down) coordinate system.
func (pl Polyline) Area() float64 {
	var a float64
	n := len(pl.Points)
	for i := range pl.Points {
		p, q := pl.Points[i], pl.Points[(i+1)%n]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// Segments calls fn for each edge of the polyline,
// including the closing edge for a closed one.
func (pl Polyline) Segments(fn func(a, b Point)) {
	n := len(pl.Points)
	for i := 0; i+1 < n; i++ {
		fn(pl.Points[i], pl.Points[i+1])
	}
	if pl.Closed && n > 2 {
		fn(pl.Points[n-1], pl.Points[0])
	}
}

// Flatten approximates the path by polylines, one per subpath.
// Curves are subdivided so that the distance to the exact curve stays
// below tolerance; a non positive tolerance means DefaultTolerance.
// Subpaths with less than two distinct points are dropped.
func (p Path) Flatten(tolerance float64) []Polyline {
	if tolerance <= 0 || math.IsNaN(tolerance) {
		tolerance = DefaultTolerance
	}
	f := flattener{scale: rasterxDeviation / tolerance}
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			f.flush()
			f.start = Point(op)
			f.last = f.start
			f.current = []Point{f.start}
		case LineTo:
			f.lineTo(Point(op))
		case QuadTo:
			f.quadTo(op[0], op[1])
		case CubicTo:
			f.cubeTo(op[0], op[1], op[2])
		case Close:
			f.closed = true
			f.flush()
			f.last = f.start
		}
	}
	f.flush()
	return f.out
}

type flattener struct {
	scale       float64 // user units to rasterx units
	start, last Point
	current     []Point
	closed      bool
	out         []Polyline
}

func (f *flattener) flush() {
	pts := dedup(f.current)
	if f.closed && len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) >= 2 {
		f.out = append(f.out, Polyline{Points: pts, Closed: f.closed})
	}
	f.current, f.closed = nil, false
}

func (f *flattener) lineTo(b Point) {
	if f.current == nil { // drawing after a close
		f.current = []Point{f.last}
	}
	f.current = append(f.current, b)
	f.last = b
}

// emit returns the callback used by rasterx, which works relative
// to the start of the segment to keep float32 precision.
func (f *flattener) emit(origin Point) func(x, y float32) {
	return func(x, y float32) {
		f.lineTo(Point{origin.X + float64(x)/f.scale, origin.Y + float64(y)/f.scale})
	}
}

// relative returns the scaled float32 coordinates of p - origin.
func (f *flattener) relative(p, origin Point) (float32, float32) {
	return float32((p.X - origin.X) * f.scale), float32((p.Y - origin.Y) * f.scale)
}

func (f *flattener) quadTo(b, c Point) {
	a := f.last
	bx, by := f.relative(b, a)
	cx, cy := f.relative(c, a)
	rasterx.QuadTo(0, 0, bx, by, cx, cy, f.emit(a))
	f.fixEnd(c)
}

func (f *flattener) cubeTo(b, c, d Point) {
	a := f.last
	bx, by := f.relative(b, a)
	cx, cy := f.relative(c, a)
	dx, dy := f.relative(d, a)
	rasterx.CubeTo(0, 0, bx, by, cx, cy, dx, dy, f.emit(a))
	f.fixEnd(d)
}

// fixEnd replaces the last emitted point, subject to
// roundoff, by the exact segment end.
func (f *flattener) fixEnd(end Point) {
	f.current[len(f.current)-1] = end
	f.last = end
}

// dedup removes consecutive duplicated points.
func dedup(pts []Point) []Point {
	if len(pts) == 0 {
		return nil
	}
	out := pts[:1]
	for _, p := range pts[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
