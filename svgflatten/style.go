package svgflatten

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/colornames"

	"github.com/benoitkugler/svgflatten/svgclip"
	"github.com/benoitkugler/svgflatten/svgpath"
)

// paintAttrs are copied from a content path to the paths replacing it.
var paintAttrs = [...]string{"fill", "stroke", "stroke-width"}

// styleDecls splits the style attribute of el into its declarations.
// Keys are lower cased.
func styleDecls(el *etree.Element) [][2]string {
	style := el.SelectAttrValue("style", "")
	if style == "" {
		return nil
	}
	var out [][2]string
	for _, pair := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		out = append(out, [2]string{k, strings.TrimSpace(v)})
	}
	return out
}

// property returns the value of the presentation property name
// set on el, either in its style attribute (which wins) or as an attribute.
func property(el *etree.Element, name string) (string, bool) {
	decls := styleDecls(el)
	for i := len(decls) - 1; i >= 0; i-- {
		if decls[i][0] == name {
			return decls[i][1], true
		}
	}
	if attr := el.SelectAttr(name); attr != nil {
		return strings.TrimSpace(attr.Value), true
	}
	return "", false
}

// inherited walks up the ancestors of el until name is found,
// returning dflt if it never is. The "inherit" keyword defers to the parent.
func inherited(el *etree.Element, name, dflt string) string {
	for ; el != nil; el = el.Parent() {
		if v, ok := property(el, name); ok && v != "inherit" {
			return v
		}
	}
	return dflt
}

// removeProperty deletes name from el, both as
// an attribute and as a style declaration.
func removeProperty(el *etree.Element, name string) {
	el.RemoveAttr(name)
	decls := styleDecls(el)
	if len(decls) == 0 {
		return
	}
	var kept []string
	for _, d := range decls {
		if d[0] != name {
			kept = append(kept, d[0]+":"+d[1])
		}
	}
	if len(kept) == len(decls) {
		return
	}
	if len(kept) == 0 {
		el.RemoveAttr("style")
	} else {
		el.CreateAttr("style", strings.Join(kept, ";"))
	}
}

// isFilled returns true if the effective fill of el paints something.
func isFilled(el *etree.Element) bool {
	return inherited(el, "fill", "black") != "none"
}

// fillRule returns the effective fill-rule of el.
// Content without an explicit nonzero rule is treated as even-odd.
func fillRule(el *etree.Element) svgclip.FillRule {
	if inherited(el, "fill-rule", "") == "nonzero" {
		return svgclip.NonZero
	}
	return svgclip.EvenOdd
}

// hasStroke returns true if the effective stroke of el paints something.
func hasStroke(el *etree.Element) bool {
	v := inherited(el, "stroke", "none")
	return v != "none" && v != "transparent"
}

// localTransform returns the matrix of the transform attribute of el.
func localTransform(el *etree.Element) (rasterx.Matrix2D, error) {
	v := el.SelectAttrValue("transform", "")
	if strings.TrimSpace(v) == "" {
		return rasterx.Identity, nil
	}
	m, err := svgpath.ParseTransform(v)
	if err != nil {
		return rasterx.Identity, &ParseError{Tag: el.Tag, Attr: "transform", Err: err}
	}
	return m, nil
}

// isRoot returns true for the document element.
func isRoot(el *etree.Element) bool {
	return el.Parent() == nil || el.Parent().Parent() == nil
}

// userTransform returns the transform mapping the local
// coordinates of el to the ones of the root element.
func userTransform(el *etree.Element) (rasterx.Matrix2D, error) {
	m := rasterx.Identity
	for ; el != nil && !isRoot(el); el = el.Parent() {
		local, err := localTransform(el)
		if err != nil {
			return m, err
		}
		m = local.Mult(m)
	}
	return m, nil
}

// relativeTransform returns the transform mapping the coordinates
// of el (its own transform excluded) to the ones of its ancestor.
func relativeTransform(el, ancestor *etree.Element) (rasterx.Matrix2D, error) {
	m := rasterx.Identity
	for p := el.Parent(); p != nil && p != ancestor; p = p.Parent() {
		local, err := localTransform(p)
		if err != nil {
			return m, err
		}
		m = local.Mult(m)
	}
	return m, nil
}

// parseColor accepts named colors, hex (#rgb, #rrggbb) and
// rgb() notations. Alpha is always opaque.
func parseColor(v string) (color.RGBA, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if c, ok := colornames.Map[v]; ok {
		return c, nil
	}
	if hex, ok := strings.CutPrefix(v, "#"); ok {
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", v)
		}
		switch len(hex) {
		case 3:
			r, g, b := uint8(n>>8), uint8(n>>4&0xf), uint8(n&0xf)
			return color.RGBA{r * 17, g * 17, b * 17, 0xff}, nil
		case 6:
			return color.RGBA{uint8(n >> 16), uint8(n >> 8), uint8(n), 0xff}, nil
		}
		return color.RGBA{}, fmt.Errorf("invalid color %q", v)
	}
	if inner, ok := strings.CutPrefix(v, "rgb("); ok && strings.HasSuffix(inner, ")") {
		parts := strings.Split(strings.TrimSuffix(inner, ")"), ",")
		if len(parts) != 3 {
			return color.RGBA{}, fmt.Errorf("invalid color %q", v)
		}
		var cs [3]uint8
		for i, p := range parts {
			p = strings.TrimSpace(p)
			scale := 1.
			if pc, isPercent := strings.CutSuffix(p, "%"); isPercent {
				p, scale = pc, 255./100
			}
			f, err := parseFloat(p)
			if err != nil {
				return color.RGBA{}, fmt.Errorf("invalid color %q", v)
			}
			f *= scale
			switch {
			case f < 0:
				f = 0
			case f > 255:
				f = 255
			}
			cs[i] = uint8(f + 0.5)
		}
		return color.RGBA{cs[0], cs[1], cs[2], 0xff}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid color %q", v)
}
