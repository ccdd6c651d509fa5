package svgpath

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/srwiley/rasterx"
	"github.com/tdewolff/parse/v2/strconv"
)

var errParamMismatch = errors.New("param mismatch")

// ParseError reports a malformed path data or transform string.
type ParseError struct {
	Input  string
	Offset int // byte offset of the problem in Input
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("svgpath: invalid data at offset %d in %q: %s", e.Offset, shorten(e.Input), e.Msg)
}

func shorten(s string) string {
	const limit = 40
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

func isSeparator(c byte) bool {
	return c == ' ' || c == ',' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// pathCursor holds the state while compiling a path data string.
type pathCursor struct {
	input string
	path  Path

	points  []float64 // pending arguments of the current command
	lastKey byte      // last processed command, in its original case

	place   Point // current point
	start   Point // start of the current subpath
	cntlPt  Point // last control point, for S and T
	closed  bool  // a Z was just processed
	started bool  // a MoveTo has been emitted
}

// commandArity maps each command (upper case) to its number of arguments.
var commandArity = [...]int{
	'M': 2, 'L': 2, 'H': 1, 'V': 1,
	'C': 6, 'S': 4, 'Q': 4, 'T': 2,
	'A': 7, 'Z': 0,
}

func arity(key byte) (int, bool) {
	up := key &^ 0x20 // to upper
	switch up {
	case 'M', 'L', 'H', 'V', 'C', 'S', 'Q', 'T', 'A', 'Z':
		return commandArity[up], true
	}
	return 0, false
}

// ParsePath compiles a path data string, as found in the 'd'
// attribute of a <path> element. Relative commands are resolved, arcs are
// converted to cubic splines and shortcut commands (H, V, S, T) are expanded,
// so that the returned Path only contains absolute basic operations.
// An empty (or blank) string returns an empty path.
func ParsePath(d string) (Path, error) {
	c := pathCursor{input: d}
	if err := c.compile(); err != nil {
		return nil, err
	}
	return c.path, nil
}

func (c *pathCursor) errorf(offset int, format string, args ...interface{}) error {
	return &ParseError{Input: c.input, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func (c *pathCursor) compile() error {
	b := []byte(c.input)
	var (
		key     byte
		pending bool // a command is waiting for its first arguments
	)
	for i := 0; i < len(b); {
		ch := b[i]
		if isSeparator(ch) {
			i++
			continue
		}
		if _, ok := arity(ch); ok {
			if pending || len(c.points) != 0 {
				return c.errorf(i, "incomplete parameters for command %c", key)
			}
			if key == 0 && ch&^0x20 != 'M' {
				return c.errorf(i, "path data must start with a move command, got %c", ch)
			}
			key = ch
			i++
			if ch&^0x20 == 'Z' {
				c.addSeg(key)
			} else {
				pending = true
			}
			continue
		}
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
			return c.errorf(i, "unknown command %c", ch)
		}
		if key == 0 {
			return c.errorf(i, "number before any command")
		}
		n, _ := arity(key)
		if n == 0 {
			return c.errorf(i, "unexpected number after %c", key)
		}

		var (
			f        float64
			consumed int
		)
		if up := key &^ 0x20; up == 'A' && (len(c.points) == 3 || len(c.points) == 4) {
			// arc flags may be written without separators
			if ch != '0' && ch != '1' {
				return c.errorf(i, "invalid arc flag %c", ch)
			}
			f, consumed = float64(ch-'0'), 1
		} else {
			f, consumed = strconv.ParseFloat(b[i:])
			if consumed == 0 {
				return c.errorf(i, "invalid number")
			}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return c.errorf(i, "invalid number")
		}
		i += consumed
		c.points = append(c.points, f)
		if len(c.points) == n {
			pending = false
			c.addSeg(key)
			c.points = c.points[:0]
			// implicit command repetition: extra pairs after a move are lines
			switch key {
			case 'M':
				key = 'L'
			case 'm':
				key = 'l'
			}
		}
	}
	if pending || len(c.points) != 0 {
		return c.errorf(len(b), "incomplete parameters for command %c", key)
	}
	return nil
}

// reflect returns the reflection of the last control point
// if the previous command is one of the given ones, or the current point.
func (c *pathCursor) reflect(prev ...byte) Point {
	last := c.lastKey &^ 0x20
	for _, k := range prev {
		if last == k {
			return Point{2*c.place.X - c.cntlPt.X, 2*c.place.Y - c.cntlPt.Y}
		}
	}
	return c.place
}

// ensureStarted begins a new subpath at the current point when
// drawing continues after a close command.
func (c *pathCursor) ensureStarted() {
	if c.closed || !c.started {
		c.path.Start(c.place)
		c.start = c.place
		c.closed = false
		c.started = true
	}
}

// addSeg process the command 'key', using
// the accumulated points
func (c *pathCursor) addSeg(key byte) {
	rel := key >= 'a'
	abs := func(x, y float64) Point {
		if rel {
			return Point{c.place.X + x, c.place.Y + y}
		}
		return Point{x, y}
	}
	pts := c.points
	switch key &^ 0x20 {
	case 'Z':
		if c.started && !c.closed {
			c.path.Stop(true)
		}
		c.place = c.start
		c.closed = true
	case 'M':
		c.place = abs(pts[0], pts[1])
		c.path.Start(c.place)
		c.start = c.place
		c.closed = false
		c.started = true
	case 'L':
		c.ensureStarted()
		c.place = abs(pts[0], pts[1])
		c.path.Line(c.place)
	case 'H':
		c.ensureStarted()
		if rel {
			c.place.X += pts[0]
		} else {
			c.place.X = pts[0]
		}
		c.path.Line(c.place)
	case 'V':
		c.ensureStarted()
		if rel {
			c.place.Y += pts[0]
		} else {
			c.place.Y = pts[0]
		}
		c.path.Line(c.place)
	case 'C':
		c.ensureStarted()
		b, d, e := abs(pts[0], pts[1]), abs(pts[2], pts[3]), abs(pts[4], pts[5])
		c.path.CubeBezier(b, d, e)
		c.cntlPt, c.place = d, e
	case 'S':
		c.ensureStarted()
		b := c.reflect('C', 'S')
		d, e := abs(pts[0], pts[1]), abs(pts[2], pts[3])
		c.path.CubeBezier(b, d, e)
		c.cntlPt, c.place = d, e
	case 'Q':
		c.ensureStarted()
		b, d := abs(pts[0], pts[1]), abs(pts[2], pts[3])
		c.path.QuadBezier(b, d)
		c.cntlPt, c.place = b, d
	case 'T':
		c.ensureStarted()
		b := c.reflect('Q', 'T')
		d := abs(pts[0], pts[1])
		c.path.QuadBezier(b, d)
		c.cntlPt, c.place = b, d
	case 'A':
		c.ensureStarted()
		end := abs(pts[5], pts[6])
		c.place = c.path.arcTo(c.place, end, pts[0], pts[1], pts[2], pts[3] != 0, pts[4] != 0)
	}
	c.lastKey = key
}

// arcTo adds the elliptical arc from 'from' to 'to' and returns the end point.
// Out of range radii are handled as in the SVG implementation notes.
func (p *Path) arcTo(from, to Point, rx, ry, rotDeg float64, largeArc, sweep bool) Point {
	if from == to {
		return to
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		p.Line(to)
		return to
	}
	rotX := rotDeg * math.Pi / 180
	cx, cy := findEllipseCenter(&rx, &ry, rotX, from.X, from.Y, to.X, to.Y, !sweep, !largeArc)
	return p.addArc([]float64{rx, ry, rotDeg, boolToFloat(largeArc), boolToFloat(sweep), to.X, to.Y}, cx, cy, from.X, from.Y)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ParseNumbers splits a list of numbers separated by commas
// and/or white spaces, as found in 'points' or 'viewBox' attributes.
func ParseNumbers(s string) ([]float64, error) {
	b := []byte(s)
	var out []float64
	for i := 0; i < len(b); {
		if isSeparator(b[i]) {
			i++
			continue
		}
		f, n := strconv.ParseFloat(b[i:])
		if n == 0 {
			return nil, &ParseError{Input: s, Offset: i, Msg: "invalid number"}
		}
		out = append(out, f)
		i += n
	}
	return out, nil
}

func readTransformAttr(m1 rasterx.Matrix2D, k string, points []float64) (rasterx.Matrix2D, error) {
	ln := len(points)
	switch k {
	case "rotate":
		if ln == 1 {
			m1 = m1.Rotate(points[0] * math.Pi / 180)
		} else if ln == 3 {
			m1 = m1.Translate(points[1], points[2]).
				Rotate(points[0]*math.Pi/180).
				Translate(-points[1], -points[2])
		} else {
			return m1, errParamMismatch
		}
	case "translate":
		if ln == 1 {
			m1 = m1.Translate(points[0], 0)
		} else if ln == 2 {
			m1 = m1.Translate(points[0], points[1])
		} else {
			return m1, errParamMismatch
		}
	case "skewx":
		if ln == 1 {
			m1 = m1.SkewX(points[0] * math.Pi / 180)
		} else {
			return m1, errParamMismatch
		}
	case "skewy":
		if ln == 1 {
			m1 = m1.SkewY(points[0] * math.Pi / 180)
		} else {
			return m1, errParamMismatch
		}
	case "scale":
		if ln == 1 {
			m1 = m1.Scale(points[0], points[0])
		} else if ln == 2 {
			m1 = m1.Scale(points[0], points[1])
		} else {
			return m1, errParamMismatch
		}
	case "matrix":
		if ln == 6 {
			m1 = m1.Mult(rasterx.Matrix2D{
				A: points[0],
				B: points[1],
				C: points[2],
				D: points[3],
				E: points[4],
				F: points[5]})
		} else {
			return m1, errParamMismatch
		}
	default:
		return m1, fmt.Errorf("unknown transform %q", k)
	}
	return m1, nil
}

// ParseTransform parses the value of a 'transform' attribute,
// composing the transformations from left to right.
// An empty string returns the identity.
func ParseTransform(v string) (rasterx.Matrix2D, error) {
	m1 := rasterx.Identity
	pos := 0
	for _, t := range strings.Split(v, ")") {
		at := pos
		pos += len(t) + 1
		t = strings.Trim(t, ", \t\n\r")
		if len(t) == 0 {
			continue
		}
		d := strings.Split(t, "(")
		if len(d) != 2 || len(d[1]) < 1 {
			return m1, &ParseError{Input: v, Offset: at, Msg: "badly formed transformation"}
		}
		points, err := ParseNumbers(d[1])
		if err != nil {
			return m1, &ParseError{Input: v, Offset: at, Msg: "invalid number"}
		}
		m1, err = readTransformAttr(m1, strings.ToLower(strings.TrimSpace(d[0])), points)
		if err != nil {
			return m1, &ParseError{Input: v, Offset: at, Msg: err.Error()}
		}
	}
	return m1, nil
}
