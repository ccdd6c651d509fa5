package svgclip

import (
	"math"

	"github.com/benoitkugler/svgflatten/svgpath"
)

// boundaryEps is the distance under which a point is
// considered to be on a ring edge.
const boundaryEps = 1e-7

type location uint8

const (
	outside location = iota
	inside
	onBoundary
)

// locate returns the position of pt relative to the closed ring,
// using the even-odd (crossing) rule.
func locate(pt svgpath.Point, ring []svgpath.Point) location {
	n := len(ring)
	if n < 2 {
		return outside
	}
	in := false
	for i := range ring {
		a, b := ring[i], ring[(i+1)%n]
		if distToSegment(pt, a, b) <= boundaryEps {
			return onBoundary
		}
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := a.X + (pt.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if pt.X < x {
				in = !in
			}
		}
	}
	if in {
		return inside
	}
	return outside
}

// insideEvenOdd returns true if pt is inside the region described by
// the rings with the even-odd rule. Points on any edge are inside.
func insideEvenOdd(pt svgpath.Point, rings [][]svgpath.Point) bool {
	in := false
	for _, r := range rings {
		switch locate(pt, r) {
		case onBoundary:
			return true
		case inside:
			in = !in
		}
	}
	return in
}

func distToSegment(p, a, b svgpath.Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	t = math.Max(0, math.Min(1, t))
	proj := a.Add(ab.Scale(t))
	return math.Hypot(p.X-proj.X, p.Y-proj.Y)
}

func cross(u, v svgpath.Point) float64 { return u.X*v.Y - u.Y*v.X }

// segmentCuts returns the parameters t in (0, 1) where the segment
// [a, b] meets the segment [c, d]. Collinear overlaps yield
// the parameters of the overlap ends.
func segmentCuts(a, b, c, d svgpath.Point, dst []float64) []float64 {
	r, s := b.Sub(a), d.Sub(c)
	denom := cross(r, s)
	ca := c.Sub(a)
	rr := r.X*r.X + r.Y*r.Y
	if rr == 0 {
		return dst
	}
	if math.Abs(denom) <= 1e-12*math.Sqrt(rr*(s.X*s.X+s.Y*s.Y)) {
		// parallel: only collinear overlaps matter
		if math.Abs(cross(ca, r)) > boundaryEps*math.Sqrt(rr) {
			return dst
		}
		for _, q := range [2]svgpath.Point{c, d} {
			t := ((q.X-a.X)*r.X + (q.Y-a.Y)*r.Y) / rr
			if t > 0 && t < 1 {
				dst = append(dst, t)
			}
		}
		return dst
	}
	t := cross(ca, s) / denom
	u := cross(ca, r) / denom
	if t > 0 && t < 1 && u >= 0 && u <= 1 {
		dst = append(dst, t)
	}
	return dst
}

// ringPoints returns the points of the polylines usable as closed rings,
// and their total absolute area.
func ringPoints(pls []svgpath.Polyline) (rings [][]svgpath.Point, area float64) {
	for _, pl := range pls {
		if len(pl.Points) < 3 {
			continue
		}
		rings = append(rings, pl.Points)
		area += math.Abs(pl.Area())
	}
	return rings, area
}
