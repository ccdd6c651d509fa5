package svgflatten

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/srwiley/rasterx"

	"github.com/benoitkugler/svgflatten/svgclip"
	"github.com/benoitkugler/svgflatten/svgpath"
)

// DerivedAttr tags the paths produced by an intersection,
// with the id of the clip definition as value.
const DerivedAttr = "data-clip-derived"

// ElementState is the processing state of a clipped element.
type ElementState uint8

const (
	Pending ElementState = iota
	Resolved
	Skipped
)

func (s ElementState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Skipped:
		return "skipped"
	default:
		return "<unknown state>"
	}
}

// ElementReport describes what happened to one clipped element.
type ElementReport struct {
	Element string   // location of the element in the input document
	Refs    []string // referenced definitions
	State   ElementState
	Paths   int   // number of paths inserted
	Err     error // reason of a skip

	source *etree.Element
}

// Rewriter replaces clipped elements by the explicit
// intersection of their content with their clip region.
type Rewriter struct {
	Engine svgclip.Engine
}

// contentItem is one path of the content of a clipped element.
type contentItem struct {
	el   *etree.Element
	path svgpath.Path // in the user space of the clipped element
	// maps the user space of the clipped element back to
	// the parent of el, for content of nested groups
	back rasterx.Matrix2D
}

// Rewrite processes every clipped element of doc, in document order,
// using the definitions returned by Resolver.Resolve.
// An element which can't be processed is left untouched and
// reported as Skipped.
func (rw Rewriter) Rewrite(doc *etree.Document, defs map[string]*ClipDefinition) []ElementReport {
	root := doc.Root()
	if root == nil {
		return nil
	}
	var vp viewport
	if b, ok := canvas(root); ok {
		vp = viewport{W: b.W, H: b.H}
	}

	targets := clippedElements(root)
	reports := make([]ElementReport, 0, len(targets))
	for _, el := range targets {
		rep := rw.rewriteElement(el, defs, vp)
		if rep.State == Skipped {
			Logger().Warn("clipped element skipped", "element", rep.Element, "error", rep.Err)
		} else {
			Logger().Debug("clipped element flattened", "element", rep.Element, "refs", rep.Refs, "paths", rep.Paths)
		}
		reports = append(reports, rep)
	}
	return reports
}

func (rw Rewriter) rewriteElement(el *etree.Element, defs map[string]*ClipDefinition, vp viewport) ElementReport {
	rep := ElementReport{Element: describe(el), State: Pending, source: el}
	skip := func(err error) ElementReport {
		rep.State, rep.Err = Skipped, err
		return rep
	}

	var clips []*ClipDefinition
	for _, ref := range references(el) {
		if ref.ID != "" {
			rep.Refs = append(rep.Refs, ref.ID)
		}
		if ref.Err != nil {
			return skip(ref.Err)
		}
		if ref.ID == "" { // none
			continue
		}
		def, ok := defs[ref.ID]
		if !ok {
			return skip(&UnresolvedReferenceError{ID: ref.ID})
		}
		if def.Err != nil {
			return skip(def.Err)
		}
		clips = append(clips, def)
	}

	if len(clips) == 0 {
		stripReferences(el)
		rep.State = Resolved
		return rep
	}

	isLeaf := el.Tag != "g"
	items, err := collectContent(el, isLeaf, vp)
	if err != nil {
		return skip(err)
	}

	clipPaths := clipGeometry(clips, items)
	results := make([]svgclip.Compound, len(items))
	for i, item := range items {
		results[i], err = rw.intersect(item, clipPaths)
		if err != nil {
			return skip(err)
		}
	}

	// every computation succeeded: the document may now be modified
	var leafTransform rasterx.Matrix2D
	if isLeaf {
		leafTransform, _ = localTransform(el) // already validated by collectContent
	}
	derived := strings.Join(rep.Refs, " ")
	for i, item := range items {
		var paths []*etree.Element
		for _, contour := range results[i] {
			p := contour.Path()
			if isLeaf && leafTransform != rasterx.Identity {
				p = p.Transform(leafTransform)
			}
			if item.back != rasterx.Identity {
				p = p.Transform(item.back)
			}
			paths = append(paths, derivedPath(item.el, p, contour.Closed, derived))
		}
		replace(item.el, paths)
		rep.Paths += len(paths)
	}
	if !isLeaf {
		stripReferences(el)
	}
	rep.State = Resolved
	return rep
}

// collectContent returns the paths to clip: the element itself for a leaf, or
// the geometric descendants of a group.
func collectContent(el *etree.Element, isLeaf bool, vp viewport) ([]contentItem, error) {
	if isLeaf {
		fn, ok := shapeFuncs[el.Tag]
		if !ok {
			return nil, &UnsupportedContentError{Tag: el.Tag, Reason: "can't be converted to a path"}
		}
		// the clip is expressed in the user space of the element,
		// its own transform included
		p, err := fn(el, vp)
		if err != nil {
			return nil, err
		}
		if _, err = localTransform(el); err != nil {
			return nil, err
		}
		return []contentItem{{el: el, path: p, back: rasterx.Identity}}, nil
	}
	return collectGroup(el, el, vp, nil)
}

// collectGroup appends the geometric descendants of group, nested groups
// included, expressed in the user space of the clipped element.
func collectGroup(clipped, group *etree.Element, vp viewport, items []contentItem) ([]contentItem, error) {
	for _, child := range group.ChildElements() {
		if ignoredTags[child.Tag] {
			continue
		}
		if len(references(child)) != 0 {
			return nil, &UnsupportedContentError{Tag: child.Tag, Reason: "nested clip references are not supported"}
		}
		if child.Tag == "g" {
			if _, err := localTransform(child); err != nil {
				return nil, err
			}
			var err error
			items, err = collectGroup(clipped, child, vp, items)
			if err != nil {
				return nil, err
			}
			continue
		}
		if !isGeometry(child) {
			return nil, &UnsupportedContentError{Tag: child.Tag, Reason: "can't be flattened inside a clipped group"}
		}
		p, err := toPath(child, vp)
		if err != nil {
			return nil, err
		}
		item := contentItem{el: child, path: p, back: rasterx.Identity}
		if group != clipped {
			m, err := relativeTransform(child, clipped)
			if err != nil {
				return nil, err
			}
			if m.A*m.D-m.B*m.C == 0 {
				return nil, &UnsupportedContentError{Tag: group.Tag, Reason: "has a singular transform"}
			}
			item.path = p.Transform(m)
			item.back = m.Invert()
		}
		items = append(items, item)
	}
	return items, nil
}

// clipGeometry returns the paths of the clip definitions, in the
// user space of the content.
func clipGeometry(clips []*ClipDefinition, items []contentItem) []svgpath.Path {
	out := make([]svgpath.Path, len(clips))
	var (
		bbox     svgpath.Bounds
		hasBBox  bool
		contents svgpath.Path
	)
	for i, def := range clips {
		if !def.BoundingBoxUnits {
			out[i] = def.Path
			continue
		}
		if !hasBBox {
			for _, item := range items {
				contents.Append(item.path)
			}
			bbox, hasBBox = contents.Bounds(), true
		}
		if bbox.W <= 0 || bbox.H <= 0 { // the clip region is empty
			out[i] = nil
			continue
		}
		m := rasterx.Identity.Translate(bbox.X, bbox.Y).Scale(bbox.W, bbox.H)
		out[i] = def.Path.Transform(m)
	}
	return out
}

// intersect applies the clips one after the other.
func (rw Rewriter) intersect(item contentItem, clips []svgpath.Path) (svgclip.Compound, error) {
	subject := svgclip.Subject{
		Path:     item.path,
		FillRule: fillRule(item.el),
		Filled:   isFilled(item.el),
	}
	var result svgclip.Compound
	for i, clip := range clips {
		var err error
		result, err = rw.Engine.Intersect(subject, clip)
		if err != nil {
			return nil, err
		}
		if i+1 < len(clips) {
			// holes are oriented against their outline
			subject.Path, subject.FillRule = result.Path(), svgclip.EvenOdd
		}
	}
	return result, nil
}

// derivedPath builds the element for one contour, carrying the
// paint properties of the source element.
func derivedPath(source *etree.Element, p svgpath.Path, closed bool, ref string) *etree.Element {
	out := etree.NewElement("path")
	out.CreateAttr("d", p.ToSVGPath())
	for _, name := range paintAttrs {
		if v, ok := property(source, name); ok {
			out.CreateAttr(name, v)
		}
	}
	if !closed && isFilled(source) {
		// a piece of outline: filling it would close it
		out.CreateAttr("fill", "none")
	}
	out.CreateAttr(DerivedAttr, ref)
	return out
}

// replace inserts paths at the position of el, which is then removed.
func replace(el *etree.Element, paths []*etree.Element) {
	parent := el.Parent()
	index := el.Index()
	for i, p := range paths {
		parent.InsertChildAt(index+i, p)
	}
	parent.RemoveChild(el)
}

func stripReferences(el *etree.Element) {
	for _, attr := range clipAttrs {
		removeProperty(el, attr)
	}
}
