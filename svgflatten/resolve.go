package svgflatten

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/srwiley/rasterx"

	"github.com/benoitkugler/svgflatten/svgpath"
)

// clipAttrs are the properties referencing a clip definition,
// in the order they are applied.
var clipAttrs = [...]string{"clip-path", "mask"}

// definitionTags may hold clip definitions. Their
// subtrees are removed from the output.
var definitionTags = map[string]bool{
	"clipPath": true,
	"mask":     true,
	"defs":     true,
}

// ClipDefinition is the parsed geometry of a <clipPath> or <mask> element.
type ClipDefinition struct {
	ID  string
	Tag string // clipPath or mask

	// Path is the union of the path children of the definition,
	// with their transforms and the one of the definition applied.
	Path svgpath.Path

	// BoundingBoxUnits is true when Path is expressed relatively to the
	// bounding box of the clipped content (objectBoundingBox units).
	BoundingBoxUnits bool

	// Err is not nil if the definition could not be parsed:
	// every element using it is skipped.
	Err error
}

// reference is one clip-path or mask value of an element.
type reference struct {
	Attr string
	ID   string // empty for none
	Err  error  // malformed value
}

// parseReference extracts the id of a url(#id) value.
// "none" returns an empty id.
func parseReference(attr, value string) reference {
	ref := reference{Attr: attr}
	v := strings.TrimSpace(value)
	if v == "none" {
		return ref
	}
	inner, ok := strings.CutPrefix(v, "url(")
	if ok {
		inner, ok = strings.CutSuffix(inner, ")")
	}
	if ok {
		inner = strings.TrimSpace(inner)
		if n := len(inner); n >= 2 && (inner[0] == '"' || inner[0] == '\'') && inner[n-1] == inner[0] {
			inner = inner[1 : n-1]
		}
		inner, ok = strings.CutPrefix(inner, "#")
	}
	if !ok || inner == "" || strings.ContainsAny(inner, " \t\n\r\"'()#") {
		ref.Err = &MalformedReferenceError{Attr: attr, Value: value}
		return ref
	}
	ref.ID = inner
	return ref
}

// references returns the clip references set on el,
// either as attributes or style properties.
func references(el *etree.Element) []reference {
	var out []reference
	for _, attr := range clipAttrs {
		if v, ok := property(el, attr); ok {
			out = append(out, parseReference(attr, v))
		}
	}
	return out
}

// clippedElements returns, in document order, the elements outside
// of definitions which carry a clip reference.
func clippedElements(root *etree.Element) []*etree.Element {
	var out []*etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if definitionTags[el.Tag] {
			return
		}
		if len(references(el)) != 0 {
			out = append(out, el)
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	walk(root)
	return out
}

// indexIDs maps the id attributes of the document to their elements.
// For duplicated ids, the first element wins.
func indexIDs(root *etree.Element) map[string]*etree.Element {
	out := make(map[string]*etree.Element)
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if id := el.SelectAttrValue("id", ""); id != "" {
			if _, has := out[id]; !has {
				out[id] = el
			}
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	walk(root)
	return out
}

// Resolver turns the clip references of a document into geometry.
// A Resolver is not safe for concurrent use.
type Resolver struct {
	// OnDefinitionParsed, if not nil, is called each time
	// a definition is parsed, with its id.
	OnDefinitionParsed func(id string)

	ids   map[string]*etree.Element
	cache map[string]*ClipDefinition
}

// Resolve parses every definition referenced in doc, exactly once per id.
// The returned map also holds the definitions which failed to parse, with their
// Err field set. One issue is returned for each reference which can't be
// resolved to a valid definition.
func (r *Resolver) Resolve(doc *etree.Document) (map[string]*ClipDefinition, []Issue) {
	r.cache = make(map[string]*ClipDefinition)
	root := doc.Root()
	if root == nil {
		return r.cache, nil
	}
	r.ids = indexIDs(root)

	var issues []Issue
	for _, el := range clippedElements(root) {
		for _, ref := range references(el) {
			if err := r.resolve(ref); err != nil {
				issues = append(issues, Issue{Element: describe(el), Ref: ref.ID, Err: err, source: el})
			}
		}
	}
	return r.cache, issues
}

func (r *Resolver) resolve(ref reference) error {
	if ref.Err != nil {
		return ref.Err
	}
	if ref.ID == "" {
		return nil
	}
	if def, ok := r.cache[ref.ID]; ok {
		return def.Err
	}
	el, ok := r.ids[ref.ID]
	if !ok {
		return &UnresolvedReferenceError{ID: ref.ID}
	}
	def := parseDefinition(el, ref.ID)
	r.cache[ref.ID] = def
	if r.OnDefinitionParsed != nil {
		r.OnDefinitionParsed(ref.ID)
	}
	Logger().Debug("clip definition parsed", "id", ref.ID, "tag", def.Tag, "error", def.Err)
	return def.Err
}

// parseDefinition collects the <path> children of el.
// The path data are concatenated and parsed at once, unless some child
// carries its own transform.
func parseDefinition(el *etree.Element, id string) *ClipDefinition {
	def := &ClipDefinition{ID: id, Tag: el.Tag}
	var units string
	switch el.Tag {
	case "clipPath":
		units = el.SelectAttrValue("clipPathUnits", "")
	case "mask":
		units = el.SelectAttrValue("maskContentUnits", "")
	default:
		def.Err = &UnsupportedContentError{Tag: el.Tag, Reason: "is not a clipPath or mask"}
		return def
	}
	def.BoundingBoxUnits = strings.TrimSpace(units) == "objectBoundingBox"

	var (
		children     []*etree.Element
		hasTransform bool
	)
	for _, child := range el.ChildElements() {
		switch {
		case child.Tag == "path":
			children = append(children, child)
			hasTransform = hasTransform || child.SelectAttr("transform") != nil
		case ignoredTags[child.Tag]:
		default:
			def.Err = &UnsupportedContentError{Tag: child.Tag, Reason: "is not supported as clip geometry"}
			return def
		}
	}

	if !hasTransform {
		ds := make([]string, len(children))
		for i, child := range children {
			ds[i] = child.SelectAttrValue("d", "")
		}
		p, err := svgpath.ParsePath(strings.Join(ds, " "))
		if err != nil {
			def.Err = &ParseError{Tag: "path", Attr: "d", Err: err}
			return def
		}
		def.Path = p
	} else {
		for _, child := range children {
			p, err := toPath(child, viewport{})
			if err != nil {
				def.Err = err
				return def
			}
			def.Path.Append(p)
		}
	}

	m, err := localTransform(el)
	if err != nil {
		def.Err = err
		return def
	}
	if m != rasterx.Identity {
		def.Path = def.Path.Transform(m)
	}
	return def
}
