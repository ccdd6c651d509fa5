// Package svgclip computes the intersection of flattened SVG
// geometry with a clip region.
//
// The result of an intersection is a Compound: a flat list of independent
// Contours (islands), each one carrying its own holes. Contours are never merged
// nor dropped, so that each of them can be emitted as its own <path> element.
package svgclip

import (
	"math"

	"github.com/benoitkugler/svgflatten/svgpath"
)

// Contour is one piece of an intersection.
// A closed contour is a region bounded by Outline, minus its Holes.
// An open contour (Closed is false) is a polyline, without holes,
// produced when clipping outlines.
type Contour struct {
	Outline []svgpath.Point
	Holes   [][]svgpath.Point
	Closed  bool
}

// Path converts the contour to path data, one subpath per ring.
// Holes of a closed contour are written with the orientation opposite
// to the outline, so that the result renders the same under
// the even-odd and nonzero rules.
func (c Contour) Path() svgpath.Path {
	var p svgpath.Path
	if !c.Closed {
		addRing(&p, c.Outline, false, false)
		return p
	}
	addRing(&p, c.Outline, true, ringArea(c.Outline) < 0)
	for _, h := range c.Holes {
		addRing(&p, h, true, ringArea(h) > 0)
	}
	return p
}

func addRing(p *svgpath.Path, pts []svgpath.Point, closed, reverse bool) {
	if len(pts) == 0 {
		return
	}
	at := func(i int) svgpath.Point {
		if reverse {
			return pts[len(pts)-1-i]
		}
		return pts[i]
	}
	p.Start(at(0))
	for i := 1; i < len(pts); i++ {
		p.Line(at(i))
	}
	p.Stop(closed)
}

// Area returns the area covered by a closed contour,
// that is the area of the outline minus the ones of the holes.
// Open contours have zero area.
func (c Contour) Area() float64 {
	if !c.Closed {
		return 0
	}
	a := math.Abs(ringArea(c.Outline))
	for _, h := range c.Holes {
		a -= math.Abs(ringArea(h))
	}
	return a
}

// Bounds returns the bounding box of the outline.
func (c Contour) Bounds() svgpath.Bounds {
	return svgpath.PolylinesBounds([]svgpath.Polyline{{Points: c.Outline}})
}

// Contains returns true if pt is inside the region of a
// closed contour, boundary included.
func (c Contour) Contains(pt svgpath.Point) bool {
	if !c.Closed {
		return false
	}
	switch locate(pt, c.Outline) {
	case outside:
		return false
	case onBoundary:
		return true
	}
	for _, h := range c.Holes {
		if locate(pt, h) == inside {
			return false
		}
	}
	return true
}

// Compound is the result of an intersection: a list of
// independent contours, possibly empty.
type Compound []Contour

// Area returns the sum of the areas of the contours.
func (cs Compound) Area() float64 {
	var a float64
	for _, c := range cs {
		a += c.Area()
	}
	return a
}

// Contains returns true if one of the closed contours contains pt.
func (cs Compound) Contains(pt svgpath.Point) bool {
	for _, c := range cs {
		if c.Contains(pt) {
			return true
		}
	}
	return false
}

// Path returns the path data of all the contours.
func (cs Compound) Path() svgpath.Path {
	var p svgpath.Path
	for _, c := range cs {
		p.Append(c.Path())
	}
	return p
}

func ringArea(pts []svgpath.Point) float64 {
	return svgpath.Polyline{Points: pts, Closed: true}.Area()
}
