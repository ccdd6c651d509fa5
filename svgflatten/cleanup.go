package svgflatten

import (
	"image/color"

	"github.com/beevik/etree"
)

// coverEps is the tolerance used when comparing a shape to the canvas.
const coverEps = 1e-6

// removeDefinitions drops every <clipPath> and <mask>, then every <defs>.
// It returns the number of removed elements.
func removeDefinitions(root *etree.Element) int {
	removed := removeAll(root, func(el *etree.Element) bool { return el.Tag == "clipPath" || el.Tag == "mask" })
	removed += removeAll(root, func(el *etree.Element) bool { return el.Tag == "defs" })
	return removed
}

// removeAll removes the elements below root matching pred,
// without looking into their subtrees.
func removeAll(root *etree.Element, pred func(el *etree.Element) bool) int {
	var removed int
	for _, child := range root.ChildElements() {
		if pred(child) {
			root.RemoveChild(child)
			removed++
			continue
		}
		removed += removeAll(child, pred)
	}
	return removed
}

// sweepBackground removes the unstroked paths and rectangles
// painted with one of the background colors and covering the whole canvas.
// It returns the number of removed elements.
func sweepBackground(root *etree.Element, colors []color.RGBA) int {
	if len(colors) == 0 {
		return 0
	}
	bounds, ok := canvas(root)
	if !ok {
		return 0
	}
	vp := viewport{W: bounds.W, H: bounds.H}
	return removeAll(root, func(el *etree.Element) bool {
		if el.Tag != "path" && el.Tag != "rect" {
			return false
		}
		if hasStroke(el) || !isBackground(inherited(el, "fill", "black"), colors) {
			return false
		}
		p, err := toPath(el, vp)
		if err != nil || len(p) == 0 {
			return false
		}
		// toPath applies the transform of el, the one of its ancestors is missing
		m, err := userTransform(el.Parent())
		if err != nil {
			return false
		}
		return p.Transform(m).Bounds().Contains(bounds, coverEps)
	})
}

func isBackground(fill string, colors []color.RGBA) bool {
	c, err := parseColor(fill)
	if err != nil {
		return false
	}
	for _, bg := range colors {
		if c == bg {
			return true
		}
	}
	return false
}

// parseColors validates the background colors.
func parseColors(values []string) ([]color.RGBA, error) {
	out := make([]color.RGBA, len(values))
	for i, v := range values {
		c, err := parseColor(v)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}
