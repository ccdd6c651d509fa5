// Package svgflatten removes clipping from SVG documents: each element
// referencing a <clipPath> or <mask> is replaced by explicit paths equal to
// the intersection of its content with the clip region. The output is a
// document made of plain paths, suitable for plotters and other
// consumers unaware of clipping.
//
// Processing tolerates failures: an element which can't be
// flattened is left untouched and reported, the others are still processed.
package svgflatten

import (
	"errors"
	"fmt"
	"io"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	"github.com/benoitkugler/svgflatten/svgclip"
)

// Options configures Flatten.
type Options struct {
	// Clip holds the intersection settings (tolerance, precision, trace and backend).
	Clip svgclip.Options

	// BackgroundColors are the fill colors of the full canvas
	// shapes removed after flattening. Empty disables the sweep.
	BackgroundColors []string

	// OnDefinitionParsed, if not nil, is called once
	// for each clip definition parsed.
	OnDefinitionParsed func(id string)
}

// DefaultOptions returns the options used by the command line tool.
func DefaultOptions() Options {
	return Options{
		Clip:             svgclip.DefaultOptions(),
		BackgroundColors: []string{"white"},
	}
}

// Result is the output of Flatten.
type Result struct {
	// Document is the flattened copy of the input.
	Document *etree.Document
	// Reports has one entry per clipped element, in document order.
	Reports []ElementReport
	// Issues lists the reasons of the skipped elements.
	Issues []Issue
}

// Skipped returns the number of elements left unmodified.
func (r *Result) Skipped() int {
	n := 0
	for _, rep := range r.Reports {
		if rep.State == Skipped {
			n++
		}
	}
	return n
}

// Err returns the issues joined in one error, or nil.
func (r *Result) Err() error {
	errs := make([]error, len(r.Issues))
	for i, is := range r.Issues {
		errs[i] = is
	}
	return errors.Join(errs...)
}

// Flatten returns a copy of doc where every clipped element has been
// replaced by its explicit intersection with its clip region, and where
// clip definitions and background shapes have been removed.
// doc itself is never modified.
//
// An error is only returned for invalid options or a document without root:
// elements which can't be processed are reported in Result.Issues.
func Flatten(doc *etree.Document, opts Options) (*Result, error) {
	if doc == nil || doc.Root() == nil {
		return nil, errNoRoot
	}
	backgrounds, err := parseColors(opts.BackgroundColors)
	if err != nil {
		return nil, fmt.Errorf("svgflatten: invalid background color: %w", err)
	}

	work := doc.Copy()

	resolver := Resolver{OnDefinitionParsed: opts.OnDefinitionParsed}
	defs, refIssues := resolver.Resolve(work)

	rw := Rewriter{Engine: svgclip.NewEngine(opts.Clip)}
	out := &Result{Document: work, Reports: rw.Rewrite(work, defs)}
	out.Issues = mergeIssues(out.Reports, refIssues)

	root := work.Root()
	removed := removeDefinitions(root)
	swept := sweepBackground(root, backgrounds)
	Logger().Info("document flattened",
		"elements", len(out.Reports), "skipped", len(out.Issues),
		"definitions_removed", removed, "backgrounds_removed", swept)
	return out, nil
}

// mergeIssues returns one issue per failed reference of the skipped
// elements, and one for the other skipped elements, in document order.
func mergeIssues(reports []ElementReport, refIssues []Issue) []Issue {
	byElement := make(map[*etree.Element][]Issue)
	for _, is := range refIssues {
		byElement[is.source] = append(byElement[is.source], is)
	}
	var out []Issue
	for _, rep := range reports {
		if rep.State != Skipped {
			continue
		}
		if l := byElement[rep.source]; len(l) != 0 {
			out = append(out, l...)
			continue
		}
		var ref string
		if len(rep.Refs) != 0 {
			ref = rep.Refs[0]
		}
		out = append(out, Issue{Element: rep.Element, Ref: ref, Err: rep.Err, source: rep.source})
	}
	return out
}

// ReadDocument parses an SVG document, honoring its
// declared character encoding.
func ReadDocument(r io.Reader) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("svgflatten: invalid svg document: %w", err)
	}
	if doc.Root() == nil {
		return nil, errNoRoot
	}
	return doc, nil
}
