package svgpath

import "math"

// compute the exact bounding box of a path, needed to resolve
// objectBoundingBox units and to detect full canvas backgrounds

// Bounds defines a bounding box, such as a viewport
// or a path extent.
type Bounds struct{ X, Y, W, H float64 }

// Contains returns true if b covers other, up to eps.
func (b Bounds) Contains(other Bounds, eps float64) bool {
	return b.X <= other.X+eps && b.Y <= other.Y+eps &&
		b.X+b.W >= other.X+other.W-eps && b.Y+b.H >= other.Y+other.H-eps
}

type line [2]Point

func (l line) criticalPoints() (tX, tY []float64) {
	return nil, nil
}

func (l line) evaluateCurve(t float64) (x, y float64) {
	return bezierLine(l[0].X, l[1].X, t), bezierLine(l[0].Y, l[1].Y, t)
}

func bezierLine(p0, p1, t float64) float64 {
	return (p1-p0)*t + p0
}

type quadBezier [3]Point

// quadratic polinomial
// x = At^2 + Bt + C
// where
// A = p0 + p2 - 2p1
// B = 2(p1 - p0)
// C = p0
func bezierQuad(p0, p1, p2, t float64) float64 {
	return (p0+p2-2*p1)*t*t + 2*(p1-p0)*t + p0
}

// derivative as at + b where a,b :
func quadraticDerivative(p0, p1, p2 float64) (a, b float64) {
	return 2 * (p2 - p1 - (p1 - p0)), 2 * (p1 - p0)
}

// handle the case where a = 0
func linearRoots(a, b float64) []float64 {
	if a == 0 {
		return nil
	}
	return []float64{-b / a}
}

func (cu quadBezier) criticalPoints() (tX, tY []float64) {
	aX, bX := quadraticDerivative(cu[0].X, cu[1].X, cu[2].X)
	aY, bY := quadraticDerivative(cu[0].Y, cu[1].Y, cu[2].Y)
	return linearRoots(aX, bX), linearRoots(aY, bY)
}

func (cu quadBezier) evaluateCurve(t float64) (x, y float64) {
	return bezierQuad(cu[0].X, cu[1].X, cu[2].X, t), bezierQuad(cu[0].Y, cu[1].Y, cu[2].Y, t)
}

type cubicBezier [4]Point

func (cu cubicBezier) criticalPoints() (tX, tY []float64) {
	aX, bX, cX := cubicDerivative(cu[0].X, cu[1].X, cu[2].X, cu[3].X)
	aY, bY, cY := cubicDerivative(cu[0].Y, cu[1].Y, cu[2].Y, cu[3].Y)
	return quadraticRoots(aX, bX, cX), quadraticRoots(aY, bY, cY)
}

func (cu cubicBezier) evaluateCurve(t float64) (x, y float64) {
	return bezierSpline(cu[0].X, cu[1].X, cu[2].X, cu[3].X, t), bezierSpline(cu[0].Y, cu[1].Y, cu[2].Y, cu[3].Y, t)
}

// cubic polinomial
// x = At^3 + Bt^2 + Ct + D
// where A,B,C,D:
// A = p3 -3 * p2 + 3 * p1 - p0
// B = 3 * p2 - 6 * p1 +3 * p0
// C = 3 * p1 - 3 * p0
// D = p0
func bezierSpline(p0, p1, p2, p3, t float64) float64 {
	return (p3-3*p2+3*p1-p0)*t*t*t +
		(3*p2-6*p1+3*p0)*t*t +
		(3*p1-3*p0)*t +
		(p0)
}

// X' = (3*p3-9*p2+9*p1-3*p0)t^2 + (6*p2-12*p1+6*p0)t + (3*p1-3*p0)
// taken as aX^2 + bX + c
func cubicDerivative(p0, p1, p2, p3 float64) (a, b, c float64) {
	return 3*p3 - 9*p2 + 9*p1 - 3*p0, 6*p2 - 12*p1 + 6*p0, 3*p1 - 3*p0
}

func quadraticRoots(a, b, c float64) []float64 {
	if a == 0 {
		// simple line
		return linearRoots(b, c)
	}
	d := b*b - 4*a*c
	if d < 0 {
		return nil
	}
	if d == 0 {
		return []float64{-b / (2 * a)}
	}
	sq := math.Sqrt(d)
	return []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}
}

type bezier interface {
	// compute the t zeroing the derivative
	criticalPoints() (tX, tY []float64)
	// compute the point a time t
	evaluateCurve(t float64) (x, y float64)
}

// extent accumulates points into min and max coordinates.
type extent struct {
	minX, minY, maxX, maxY float64
	empty                  bool
}

func newExtent() extent {
	return extent{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1), true}
}

func (e *extent) add(x, y float64) {
	e.minX = math.Min(x, e.minX)
	e.minY = math.Min(y, e.minY)
	e.maxX = math.Max(x, e.maxX)
	e.maxY = math.Max(y, e.maxY)
	e.empty = false
}

func (e extent) bounds() Bounds {
	if e.empty {
		return Bounds{}
	}
	return Bounds{X: e.minX, Y: e.minY, W: e.maxX - e.minX, H: e.maxY - e.minY}
}

func (e *extent) addCurve(curve bezier) {
	resX, resY := curve.criticalPoints()
	// add begin and end point
	for _, t := range append(append(resX, 0, 1), resY...) {
		// filter invalid value
		if !(0 <= t && t <= 1) {
			continue
		}
		e.add(curve.evaluateCurve(t))
	}
}

// Bounds returns the exact bounding box of the path (control points
// outside the curve are not included). An empty path has zero bounds.
func (p Path) Bounds() Bounds {
	ext := newExtent()
	var last, start Point
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			last, start = Point(op), Point(op)
			ext.add(last.X, last.Y)
		case LineTo:
			ext.addCurve(line{last, Point(op)})
			last = Point(op)
		case QuadTo:
			ext.addCurve(quadBezier{last, op[0], op[1]})
			last = op[1]
		case CubicTo:
			ext.addCurve(cubicBezier{last, op[0], op[1], op[2]})
			last = op[2]
		case Close:
			last = start
		}
	}
	return ext.bounds()
}

// PolylinesBounds returns the bounding box of the given polylines.
func PolylinesBounds(pls []Polyline) Bounds {
	ext := newExtent()
	for _, pl := range pls {
		for _, pt := range pl.Points {
			ext.add(pt.X, pt.Y)
		}
	}
	return ext.bounds()
}
