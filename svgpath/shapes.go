package svgpath

import (
	"errors"
	"math"
)

// This file implements the transformation from
// high level shapes to their path equivalent

// maxDx is the maximum radians a cubic splice is allowed to span
// in ellipse parametric when approximating an off-axis ellipse.
const maxDx float64 = math.Pi / 8

// Rect returns the outline of the rectangle with top left corner (x, y),
// optionally with rounded corners. Following SVG rules, a missing
// radius (zero) takes the value of the other, and radii are clamped
// to half the sides. An empty rectangle returns an empty path.
func Rect(x, y, w, h, rx, ry float64) Path {
	if w <= 0 || h <= 0 {
		return nil
	}
	if rx <= 0 {
		rx = ry
	}
	if ry <= 0 {
		ry = rx
	}
	rx, ry = math.Min(math.Max(rx, 0), w/2), math.Min(math.Max(ry, 0), h/2)

	var p Path
	if rx == 0 || ry == 0 {
		p.Start(Point{x, y})
		p.Line(Point{x + w, y})
		p.Line(Point{x + w, y + h})
		p.Line(Point{x, y + h})
		p.Stop(true)
		return p
	}
	maxX, maxY := x+w, y+h
	p.Start(Point{x + rx, y})
	p.Line(Point{maxX - rx, y})
	p.arcTo(Point{maxX - rx, y}, Point{maxX, y + ry}, rx, ry, 0, false, true)
	p.Line(Point{maxX, maxY - ry})
	p.arcTo(Point{maxX, maxY - ry}, Point{maxX - rx, maxY}, rx, ry, 0, false, true)
	p.Line(Point{x + rx, maxY})
	p.arcTo(Point{x + rx, maxY}, Point{x, maxY - ry}, rx, ry, 0, false, true)
	p.Line(Point{x, y + ry})
	p.arcTo(Point{x, y + ry}, Point{x + rx, y}, rx, ry, 0, false, true)
	p.Stop(true)
	return p
}

// Ellipse returns the closed outline of the axis aligned ellipse
// centered at (cx, cy), made of cubic splines.
// A degenerate ellipse returns an empty path.
func Ellipse(cx, cy, rx, ry float64) Path {
	if rx <= 0 || ry <= 0 {
		return nil
	}
	var p Path
	start, opposite := Point{cx + rx, cy}, Point{cx - rx, cy}
	p.Start(start)
	p.addArc([]float64{rx, ry, 0, 0, 1, opposite.X, opposite.Y}, cx, cy, start.X, start.Y)
	p.addArc([]float64{rx, ry, 0, 0, 1, start.X, start.Y}, cx, cy, opposite.X, opposite.Y)
	p.Stop(true)
	return p
}

// Line returns the open path joining the two points.
func Line(x1, y1, x2, y2 float64) Path {
	return Path{MoveTo{x1, y1}, LineTo{x2, y2}}
}

var errOddPoints = errors.New("polygon has odd number of points")

// PolylinePath returns the path joining the given coordinates pairs,
// closing it if closed is true (polygon).
// Less than two points yields an empty path.
func PolylinePath(coords []float64, closed bool) (Path, error) {
	if len(coords)%2 != 0 {
		return nil, errOddPoints
	}
	if len(coords) < 4 {
		return nil, nil
	}
	var p Path
	p.Start(Point{coords[0], coords[1]})
	for i := 2; i < len(coords)-1; i += 2 {
		p.Line(Point{coords[i], coords[i+1]})
	}
	p.Stop(closed)
	return p, nil
}

// addArc adds an arc to the path, approximated by cubic splines.
// points are the SVG arc parameters rx, ry, rotation (degrees), large arc flag,
// sweep flag and end point; (cx, cy) is the center and (px, py) the start point.
func (p *Path) addArc(points []float64, cx, cy, px, py float64) Point {
	rotX := points[2] * math.Pi / 180 // Convert degress to radians
	largeArc := points[3] != 0
	sweep := points[4] != 0
	startAngle := math.Atan2(py-cy, px-cx) - rotX
	endAngle := math.Atan2(points[6]-cy, points[5]-cx) - rotX
	deltaTheta := endAngle - startAngle
	arcBig := math.Abs(deltaTheta) > math.Pi

	// Approximate ellipse using cubic bezeir splines
	etaStart := math.Atan2(math.Sin(startAngle)/points[1], math.Cos(startAngle)/points[0])
	etaEnd := math.Atan2(math.Sin(endAngle)/points[1], math.Cos(endAngle)/points[0])
	deltaEta := etaEnd - etaStart
	if arcBig != largeArc {
		if deltaEta < 0 {
			deltaEta += math.Pi * 2
		} else {
			deltaEta -= math.Pi * 2
		}
	}
	// This check might be needed if the center point of the elipse is
	// at the midpoint of the start and end lines.
	if deltaEta < 0 && sweep {
		deltaEta += math.Pi * 2
	} else if deltaEta >= 0 && !sweep {
		deltaEta -= math.Pi * 2
	}

	// Round up to determine number of cubic splines to approximate bezier curve
	segs := int(math.Abs(deltaEta)/maxDx) + 1
	dEta := deltaEta / float64(segs) // span of each segment
	// Approximate the ellipse using a set of cubic bezier curves by the method of
	// L. Maisonobe, "Drawing an elliptical arc using polylines, quadratic
	// or cubic Bezier curves", 2003
	// https://www.spaceroots.org/documents/elllipse/elliptical-arc.pdf
	tde := math.Tan(dEta / 2)
	alpha := math.Sin(dEta) * (math.Sqrt(4+3*tde*tde) - 1) / 3
	lx, ly := px, py
	sinTheta, cosTheta := math.Sin(rotX), math.Cos(rotX)
	ldx, ldy := ellipsePrime(points[0], points[1], sinTheta, cosTheta, etaStart)
	for i := 1; i <= segs; i++ {
		eta := etaStart + dEta*float64(i)
		var px, py float64
		if i == segs {
			px, py = points[5], points[6] // Just makes the end point exact; no roundoff error
		} else {
			px, py = ellipsePointAt(points[0], points[1], sinTheta, cosTheta, eta, cx, cy)
		}
		dx, dy := ellipsePrime(points[0], points[1], sinTheta, cosTheta, eta)
		p.CubeBezier(Point{lx + alpha*ldx, ly + alpha*ldy},
			Point{px - alpha*dx, py - alpha*dy}, Point{px, py})
		lx, ly, ldx, ldy = px, py, dx, dy
	}
	return Point{lx, ly}
}

// ellipsePrime gives tangent vectors for parameterized elipse; a, b, radii, eta parameter
func ellipsePrime(a, b, sinTheta, cosTheta, eta float64) (px, py float64) {
	bCosEta := b * math.Cos(eta)
	aSinEta := a * math.Sin(eta)
	px = -aSinEta*cosTheta - bCosEta*sinTheta
	py = -aSinEta*sinTheta + bCosEta*cosTheta
	return
}

// ellipsePointAt gives points for parameterized elipse; a, b, radii, eta parameter, center cx, cy
func ellipsePointAt(a, b, sinTheta, cosTheta, eta, cx, cy float64) (px, py float64) {
	aCosEta := a * math.Cos(eta)
	bSinEta := b * math.Sin(eta)
	px = cx + aCosEta*cosTheta - bSinEta*sinTheta
	py = cy + aCosEta*sinTheta + bSinEta*cosTheta
	return
}

// findEllipseCenter locates the center of the Ellipse if it exists. If it does not exist,
// the radius values will be increased minimally for a solution to be possible
// while preserving the ra to rb ratio. ra and rb arguments are pointers that can be
// checked after the call to see if the values changed. This method uses coordinate transformations
// to reduce the problem to finding the center of a circle that includes the origin
// and an arbitrary point. The center of the circle is then transformed
// back to the original coordinates and returned.
func findEllipseCenter(ra, rb *float64, rotX, startX, startY, endX, endY float64, sweep, smallArc bool) (cx, cy float64) {
	cos, sin := math.Cos(rotX), math.Sin(rotX)

	// Move origin to start point
	nx, ny := endX-startX, endY-startY

	// Rotate ellipse x-axis to coordinate x-axis
	nx, ny = nx*cos+ny*sin, -nx*sin+ny*cos
	// Scale X dimension so that ra = rb
	nx *= *rb / *ra // Now the ellipse is a circle radius rb; therefore foci and center coincide

	midX, midY := nx/2, ny/2
	midlenSq := midX*midX + midY*midY

	var hr float64
	if *rb**rb < midlenSq {
		// Requested ellipse does not exist; scale ra, rb to fit. Length of
		// span is greater than max width of ellipse, must scale *ra, *rb
		nrb := math.Sqrt(midlenSq)
		if *ra == *rb {
			*ra = nrb // prevents roundoff
		} else {
			*ra = *ra * nrb / *rb
		}
		*rb = nrb
	} else {
		hr = math.Sqrt(*rb**rb-midlenSq) / math.Sqrt(midlenSq)
	}
	// Notice that if hr is zero, both answers are the same.
	if sweep == smallArc {
		cx = midX + midY*hr
		cy = midY - midX*hr
	} else {
		cx = midX - midY*hr
		cy = midY + midX*hr
	}

	// reverse scale
	cx *= *ra / *rb
	//Reverse rotate and translate back to original coordinates
	return cx*cos - cy*sin + startX, cx*sin + cy*cos + startY
}
