package svgclip

import (
	"sort"

	"github.com/benoitkugler/svgflatten/svgpath"
)

// clipPolylines cuts each polyline at the boundary of the clip region
// and keeps the pieces inside it (boundary included), as open contours.
// A closed polyline entirely inside the clip is kept closed.
func clipPolylines(polylines []svgpath.Polyline, clip [][]svgpath.Point) Compound {
	var out Compound
	for _, pl := range polylines {
		out = append(out, clipPolyline(pl, clip)...)
	}
	return out
}

func clipPolyline(pl svgpath.Polyline, clip [][]svgpath.Point) Compound {
	var (
		pieces   [][]svgpath.Point
		current  []svgpath.Point
		allIn    = true
		firstCut = -1 // index in pieces of the piece starting the polyline
		cuts     []float64
	)
	flush := func() {
		if len(current) >= 2 {
			pieces = append(pieces, current)
		}
		current = nil
	}

	segIndex := 0
	pl.Segments(func(a, b svgpath.Point) {
		cuts = cuts[:0]
		for _, ring := range clip {
			n := len(ring)
			for i := range ring {
				cuts = segmentCuts(a, b, ring[i], ring[(i+1)%n], cuts)
			}
		}
		sort.Float64s(cuts)
		ts := append(append([]float64{0}, cuts...), 1)
		for k := 0; k+1 < len(ts); k++ {
			t0, t1 := ts[k], ts[k+1]
			if t1-t0 <= 1e-12 {
				continue
			}
			p0, p1 := lerp(a, b, t0), lerp(a, b, t1)
			if insideEvenOdd(lerp(a, b, (t0+t1)/2), clip) {
				if len(current) == 0 {
					if segIndex == 0 && k == 0 {
						firstCut = len(pieces)
					}
					current = append(current, p0)
				}
				current = append(current, p1)
			} else {
				allIn = false
				flush()
			}
		}
		segIndex++
	})

	if pl.Closed && allIn {
		// nothing was cut: keep the ring as is
		return Compound{{Outline: append([]svgpath.Point(nil), pl.Points...), Closed: true}}
	}
	// the piece still open at the end of a closed ring continues
	// with the piece starting the ring
	if pl.Closed && firstCut == 0 && len(current) != 0 && len(pieces) != 0 {
		pieces[0] = append(current, pieces[0][1:]...)
		current = nil
	}
	flush()

	out := make(Compound, 0, len(pieces))
	for _, p := range pieces {
		out = append(out, Contour{Outline: p})
	}
	return out
}

func lerp(a, b svgpath.Point, t float64) svgpath.Point {
	if t == 1 {
		return b
	}
	return svgpath.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}
