package svgflatten

import (
	"errors"
	"math"
	"strings"

	"github.com/beevik/etree"
	"github.com/srwiley/rasterx"
	"github.com/tdewolff/parse/v2/strconv"

	"github.com/benoitkugler/svgflatten/svgpath"
)

type percentageReference uint8

const (
	widthPercentage percentageReference = iota
	heightPercentage
	diagPercentage
)

var errInvalidLength = errors.New("invalid length")

// absolute units, in user units (px)
var unitSizes = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 96. / 72,
	"pc": 16,
	"mm": 96. / 25.4,
	"cm": 96. / 2.54,
	"in": 96,
}

func parseFloat(s string) (float64, error) {
	b := []byte(strings.TrimSpace(s))
	f, n := strconv.ParseFloat(b)
	if n == 0 || n != len(b) || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errInvalidLength
	}
	return f, nil
}

// viewport is used to resolve percentages.
type viewport struct {
	W, H float64
}

func (vp viewport) parseUnit(s string, asPerc percentageReference) (float64, error) {
	s = strings.TrimSpace(s)
	if v, isPerc := strings.CutSuffix(s, "%"); isPerc {
		f, err := parseFloat(v)
		if err != nil {
			return 0, err
		}
		switch asPerc {
		case widthPercentage:
			return f / 100 * vp.W, nil
		case heightPercentage:
			return f / 100 * vp.H, nil
		default:
			return f / 100 * math.Hypot(vp.W, vp.H) / math.Sqrt2, nil
		}
	}
	i := len(s)
	for i > 0 && s[i-1] >= 'a' && s[i-1] <= 'z' {
		i--
	}
	size, ok := unitSizes[s[i:]]
	if !ok {
		return 0, errInvalidLength
	}
	f, err := parseFloat(s[:i])
	if err != nil {
		return 0, err
	}
	return f * size, nil
}

// canvas returns the region drawn by the document, given by the viewBox
// of the root element or, in its absence, by its width and height.
func canvas(root *etree.Element) (svgpath.Bounds, bool) {
	if vb := root.SelectAttrValue("viewBox", ""); vb != "" {
		nums, err := svgpath.ParseNumbers(vb)
		if err == nil && len(nums) == 4 && nums[2] > 0 && nums[3] > 0 {
			return svgpath.Bounds{X: nums[0], Y: nums[1], W: nums[2], H: nums[3]}, true
		}
	}
	var vp viewport
	w, errW := vp.parseUnit(root.SelectAttrValue("width", ""), widthPercentage)
	h, errH := vp.parseUnit(root.SelectAttrValue("height", ""), heightPercentage)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return svgpath.Bounds{}, false
	}
	return svgpath.Bounds{W: w, H: h}, true
}

// shapeFunc converts a geometric element to a path,
// expressed in the local coordinates of the element (its transform excluded).
type shapeFunc func(el *etree.Element, vp viewport) (svgpath.Path, error)

var shapeFuncs = map[string]shapeFunc{
	"path":     pathF,
	"rect":     rectF,
	"circle":   circleF,
	"ellipse":  circleF, // circleF handles ellipse also
	"line":     lineF,
	"polyline": polylineF,
	"polygon":  polygonF,
}

// isGeometry returns true for the elements convertible by shapeFuncs.
func isGeometry(el *etree.Element) bool {
	_, ok := shapeFuncs[el.Tag]
	return ok
}

// ignoredTags never render and are kept untouched.
var ignoredTags = map[string]bool{
	"title":    true,
	"desc":     true,
	"metadata": true,
}

// toPath converts el to a path in the coordinates of its parent,
// that is with its own transform applied.
func toPath(el *etree.Element, vp viewport) (svgpath.Path, error) {
	fn, ok := shapeFuncs[el.Tag]
	if !ok {
		return nil, &UnsupportedContentError{Tag: el.Tag, Reason: "can't be converted to a path"}
	}
	p, err := fn(el, vp)
	if err != nil {
		return nil, err
	}
	m, err := localTransform(el)
	if err != nil {
		return nil, err
	}
	if m != rasterx.Identity {
		p = p.Transform(m)
	}
	return p, nil
}

// readLengths parses the given attributes of el, missing ones defaulting to 0.
func readLengths(el *etree.Element, vp viewport, names []string, refs []percentageReference) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		v := el.SelectAttrValue(name, "")
		if v == "" || v == "auto" {
			continue
		}
		f, err := vp.parseUnit(v, refs[i])
		if err != nil {
			return nil, &ParseError{Tag: el.Tag, Attr: name, Err: err}
		}
		out[i] = f
	}
	return out, nil
}

func pathF(el *etree.Element, _ viewport) (svgpath.Path, error) {
	p, err := svgpath.ParsePath(el.SelectAttrValue("d", ""))
	if err != nil {
		return nil, &ParseError{Tag: el.Tag, Attr: "d", Err: err}
	}
	return p, nil
}

func rectF(el *etree.Element, vp viewport) (svgpath.Path, error) {
	v, err := readLengths(el, vp,
		[]string{"x", "y", "width", "height", "rx", "ry"},
		[]percentageReference{widthPercentage, heightPercentage, widthPercentage, heightPercentage, widthPercentage, heightPercentage})
	if err != nil {
		return nil, err
	}
	return svgpath.Rect(v[0], v[1], v[2], v[3], v[4], v[5]), nil
}

func circleF(el *etree.Element, vp viewport) (svgpath.Path, error) {
	var (
		v   []float64
		err error
	)
	if el.Tag == "circle" {
		v, err = readLengths(el, vp, []string{"cx", "cy", "r"},
			[]percentageReference{widthPercentage, heightPercentage, diagPercentage})
		if err == nil {
			v = append(v, v[2])
		}
	} else {
		v, err = readLengths(el, vp, []string{"cx", "cy", "rx", "ry"},
			[]percentageReference{widthPercentage, heightPercentage, widthPercentage, heightPercentage})
	}
	if err != nil {
		return nil, err
	}
	if v[2] <= 0 || v[3] <= 0 { // not drawn, but not an error
		return nil, nil
	}
	return svgpath.Ellipse(v[0], v[1], v[2], v[3]), nil
}

func lineF(el *etree.Element, vp viewport) (svgpath.Path, error) {
	v, err := readLengths(el, vp, []string{"x1", "y1", "x2", "y2"},
		[]percentageReference{widthPercentage, heightPercentage, widthPercentage, heightPercentage})
	if err != nil {
		return nil, err
	}
	return svgpath.Line(v[0], v[1], v[2], v[3]), nil
}

func polyF(el *etree.Element, closed bool) (svgpath.Path, error) {
	nums, err := svgpath.ParseNumbers(el.SelectAttrValue("points", ""))
	if err != nil {
		return nil, &ParseError{Tag: el.Tag, Attr: "points", Err: err}
	}
	p, err := svgpath.PolylinePath(nums, closed)
	if err != nil {
		return nil, &ParseError{Tag: el.Tag, Attr: "points", Err: err}
	}
	return p, nil
}

func polylineF(el *etree.Element, _ viewport) (svgpath.Path, error) { return polyF(el, false) }

func polygonF(el *etree.Element, _ viewport) (svgpath.Path, error) { return polyF(el, true) }
