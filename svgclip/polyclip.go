package svgclip

import (
	"math"
	"sort"

	polyclip "github.com/akavel/polyclip-go"

	"github.com/benoitkugler/svgflatten/svgpath"
)

// polyclipBackend runs the Martinez-Rueda algorithm, which works
// directly on float coordinates. Its contours are unordered,
// so that holes are recovered from the nesting depth.
type polyclipBackend struct{}

func toPolygon(rings [][]svgpath.Point) polyclip.Polygon {
	out := make(polyclip.Polygon, 0, len(rings))
	for _, r := range rings {
		ct := make(polyclip.Contour, len(r))
		for i, p := range r {
			ct[i] = polyclip.Point{X: p.X, Y: p.Y}
		}
		out = append(out, ct)
	}
	return out
}

func (polyclipBackend) intersect(subject [][]svgpath.Point, rule FillRule, clip [][]svgpath.Point) (Compound, error) {
	if rule == NonZero {
		return nil, errUnsupportedNonZero
	}
	res := toPolygon(subject).Construct(polyclip.INTERSECTION, toPolygon(clip))

	var rings []nestedRing
	for _, ct := range res {
		if len(ct) < 3 {
			continue
		}
		pts := make([]svgpath.Point, len(ct))
		for i, p := range ct {
			pts[i] = svgpath.Point{X: p.X, Y: p.Y}
		}
		rings = append(rings, nestedRing{points: pts, area: math.Abs(ringArea(pts))})
	}
	return groupByNesting(rings), nil
}

type nestedRing struct {
	points []svgpath.Point
	area   float64
	depth  int
	parent int // index of the smallest enclosing ring, or -1
}

// contains returns true if the ring b lies inside the ring a,
// using the first vertex of b not located on a.
func (a nestedRing) contains(b nestedRing) bool {
	if b.area >= a.area {
		return false
	}
	for _, p := range b.points {
		switch locate(p, a.points) {
		case inside:
			return true
		case outside:
			return false
		}
	}
	return true // all vertices on the boundary
}

// groupByNesting attributes each hole (odd depth) to its
// enclosing outer ring (even depth).
func groupByNesting(rings []nestedRing) Compound {
	// processing the largest rings first ensures parents are
	// known before their children
	sort.SliceStable(rings, func(i, j int) bool { return rings[i].area > rings[j].area })
	for i := range rings {
		rings[i].parent = -1
		for j := i - 1; j >= 0; j-- { // smallest enclosing first
			if rings[j].contains(rings[i]) {
				rings[i].parent = j
				rings[i].depth = rings[j].depth + 1
				break
			}
		}
	}

	var out Compound
	index := make(map[int]int) // ring index -> contour index
	for i, r := range rings {
		if r.depth%2 == 0 {
			index[i] = len(out)
			out = append(out, Contour{Outline: r.points, Closed: true})
		}
	}
	for _, r := range rings {
		if r.depth%2 == 1 {
			ci := index[r.parent]
			out[ci].Holes = append(out[ci].Holes, r.points)
		}
	}
	return out
}
