package svgclip

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/benoitkugler/svgflatten/svgpath"
)

// FillRule selects how overlapping subpaths define the inside of a shape.
type FillRule uint8

const (
	EvenOdd FillRule = iota
	NonZero
)

func (f FillRule) String() string {
	switch f {
	case EvenOdd:
		return "evenodd"
	case NonZero:
		return "nonzero"
	default:
		return "<unknown fill rule>"
	}
}

// Backend selects the polygon clipping algorithm used for regions.
type Backend uint8

const (
	// BackendClipper uses the Vatti algorithm on an integer grid.
	BackendClipper Backend = iota
	// BackendPolyclip uses the Martinez-Rueda algorithm on floats.
	// It only supports the even-odd rule for the content.
	BackendPolyclip
)

func (b Backend) String() string {
	switch b {
	case BackendClipper:
		return "clipper"
	case BackendPolyclip:
		return "polyclip"
	default:
		return "<unknown backend>"
	}
}

// ParseBackend returns the backend with the given name.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clipper":
		return BackendClipper, nil
	case "polyclip":
		return BackendPolyclip, nil
	}
	return 0, fmt.Errorf("svgclip: unknown backend %q", s)
}

const (
	// DefaultPrecision is the number of integer grid steps per
	// user unit used by the clipper backend.
	DefaultPrecision = 1000
)

var (
	errBackendFailed      = errors.New("svgclip: polygon clipping failed")
	errUnsupportedNonZero = errors.New("svgclip: the polyclip backend does not support the nonzero fill rule")
)

// Options tunes the intersection.
// The zero value is valid, but disables Trace: use DefaultOptions.
type Options struct {
	// Tolerance is the maximal distance, in user units, between
	// a curve and its flattened approximation.
	// Zero means svgpath.DefaultTolerance.
	Tolerance float64
	// Precision is the number of grid steps per user unit used by the clipper backend.
	// Zero means DefaultPrecision.
	Precision float64
	// Trace selects region intersection for filled content.
	// When false, or for unfilled content, only outlines are clipped.
	Trace   bool
	Backend Backend
}

// DefaultOptions returns the options used when nothing is specified.
func DefaultOptions() Options {
	return Options{
		Tolerance: svgpath.DefaultTolerance,
		Precision: DefaultPrecision,
		Trace:     true,
		Backend:   BackendClipper,
	}
}

// Subject is the content to clip.
type Subject struct {
	Path     svgpath.Path
	FillRule FillRule
	// Filled is true when the content is painted with a fill,
	// so that its interior matters.
	Filled bool
}

// Engine computes intersections. It holds no mutable state,
// and may be used concurrently.
type Engine struct {
	opts Options
}

// NewEngine returns an engine using opts, where zero
// Tolerance and Precision are replaced by their defaults.
func NewEngine(opts Options) Engine {
	if opts.Tolerance <= 0 {
		opts.Tolerance = svgpath.DefaultTolerance
	}
	if opts.Precision <= 0 {
		opts.Precision = DefaultPrecision
	}
	return Engine{opts: opts}
}

// Options returns the effective options of the engine.
func (e Engine) Options() Options { return e.opts }

// regionClipper is implemented by the polygon backends.
type regionClipper interface {
	intersect(subject [][]svgpath.Point, rule FillRule, clip [][]svgpath.Point) (Compound, error)
}

func (e Engine) backend() regionClipper {
	switch e.opts.Backend {
	case BackendPolyclip:
		return polyclipBackend{}
	default:
		return clipperBackend{precision: e.opts.Precision}
	}
}

// Intersect returns the part of content enclosed by clip.
// The clip region always uses the even-odd rule.
//
// Filled content with Trace enabled is intersected as a region; otherwise
// its outline is cut at the clip boundary, and the pieces inside
// (boundary included) are returned as open contours.
// Subpaths enclosing no area are always cut as outlines.
//
// Empty or degenerate operands (no area for the clip) give an empty result.
func (e Engine) Intersect(content Subject, clip svgpath.Path) (Compound, error) {
	clipRings, clipArea := ringPoints(clip.Flatten(e.opts.Tolerance))
	if len(clipRings) == 0 || clipArea <= boundaryEps*boundaryEps {
		return nil, nil
	}
	polylines := content.Path.Flatten(e.opts.Tolerance)
	if len(polylines) == 0 {
		return nil, nil
	}

	if !content.Filled || !e.opts.Trace {
		return clipPolylines(polylines, clipRings), nil
	}

	// subpaths without area (lines, 2 points paths) have no interior:
	// their outline is clipped instead of being lost
	var regions, outlines []svgpath.Polyline
	for _, pl := range polylines {
		if len(pl.Points) < 3 || math.Abs(pl.Area()) <= boundaryEps*boundaryEps {
			outlines = append(outlines, pl)
		} else {
			regions = append(regions, pl)
		}
	}
	var out Compound
	if subject, _ := ringPoints(regions); len(subject) != 0 {
		res, err := e.backend().intersect(subject, content.FillRule, clipRings)
		if err != nil {
			return nil, err
		}
		out = res
	}
	return append(out, clipPolylines(outlines, clipRings)...), nil
}
