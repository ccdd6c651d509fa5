package svgclip

import (
	"fmt"
	"math"

	clipper "github.com/ctessum/go.clipper"

	"github.com/benoitkugler/svgflatten/svgpath"
)

// clipperBackend rounds coordinates to a grid of 1/precision
// user units and runs the Vatti clipper.
// A new clipper is created for each call.
type clipperBackend struct {
	precision float64
}

func (b clipperBackend) toPath(ring []svgpath.Point) clipper.Path {
	out := make(clipper.Path, 0, len(ring))
	for _, p := range ring {
		out = append(out, &clipper.IntPoint{
			X: clipper.CInt(math.Round(p.X * b.precision)),
			Y: clipper.CInt(math.Round(p.Y * b.precision)),
		})
	}
	return out
}

func (b clipperBackend) toPaths(rings [][]svgpath.Point) clipper.Paths {
	out := make(clipper.Paths, 0, len(rings))
	for _, r := range rings {
		out = append(out, b.toPath(r))
	}
	return out
}

func (b clipperBackend) fromPath(path clipper.Path) []svgpath.Point {
	out := make([]svgpath.Point, len(path))
	for i, p := range path {
		out[i] = svgpath.Point{X: float64(p.X) / b.precision, Y: float64(p.Y) / b.precision}
	}
	return out
}

func fillType(rule FillRule) clipper.PolyFillType {
	if rule == NonZero {
		return clipper.PftNonZero
	}
	return clipper.PftEvenOdd
}

func (b clipperBackend) intersect(subject [][]svgpath.Point, rule FillRule, clip [][]svgpath.Point) (out Compound, err error) {
	// the clipper library reports invalid input (such as out of range coordinates) by panicking
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", errBackendFailed, r)
		}
	}()

	c := clipper.NewClipper(clipper.IoNone)
	c.StrictlySimple = true
	c.AddPaths(b.toPaths(subject), clipper.PtSubject, true)
	c.AddPaths(b.toPaths(clip), clipper.PtClip, true)
	tree, ok := c.Execute2(clipper.CtIntersection, fillType(rule), clipper.PftEvenOdd)
	if !ok {
		return nil, errBackendFailed
	}
	return b.collect(tree.Childs(), nil), nil
}

// collect walks the outer polygons of the tree: each outer polygon
// and its direct holes form a contour, and polygons nested
// in holes are new islands.
func (b clipperBackend) collect(outers []*clipper.PolyNode, out Compound) Compound {
	for _, outer := range outers {
		ring := b.fromPath(outer.Contour())
		if len(ring) < 3 {
			continue
		}
		ct := Contour{Outline: ring, Closed: true}
		var nested []*clipper.PolyNode
		for _, hole := range outer.Childs() {
			if h := b.fromPath(hole.Contour()); len(h) >= 3 {
				ct.Holes = append(ct.Holes, h)
			}
			nested = append(nested, hole.Childs()...)
		}
		out = append(out, ct)
		out = b.collect(nested, out)
	}
	return out
}
