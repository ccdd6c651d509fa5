package svgflatten

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
)

// Sentinel errors, matched with errors.Is.
var (
	ErrMalformedReference  = errors.New("malformed clip reference")
	ErrUnresolvedReference = errors.New("unresolved clip reference")
	ErrUnsupportedContent  = errors.New("unsupported content")
	ErrParse               = errors.New("invalid path data")
)

var errNoRoot = errors.New("svgflatten: document has no root element")

// MalformedReferenceError is returned when a clip-path or mask
// value does not match the url(#id) syntax.
type MalformedReferenceError struct {
	Attr  string // clip-path or mask
	Value string
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("%s: %s=%q", ErrMalformedReference, e.Attr, e.Value)
}

func (e *MalformedReferenceError) Unwrap() error { return ErrMalformedReference }

// UnresolvedReferenceError is returned when no element has the referenced id.
type UnresolvedReferenceError struct {
	ID string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s: no element with id %q", ErrUnresolvedReference, e.ID)
}

func (e *UnresolvedReferenceError) Unwrap() error { return ErrUnresolvedReference }

// UnsupportedContentError is returned when a clip definition or a clipped
// element holds geometry which can't be converted to paths.
type UnsupportedContentError struct {
	Tag    string // offending element
	Reason string
}

func (e *UnsupportedContentError) Error() string {
	return fmt.Sprintf("%s: <%s> %s", ErrUnsupportedContent, e.Tag, e.Reason)
}

func (e *UnsupportedContentError) Unwrap() error { return ErrUnsupportedContent }

// ParseError is returned when path data, a transform or
// a shape attribute is invalid.
// The underlying error is usually a *svgpath.ParseError.
type ParseError struct {
	Tag  string // element holding the invalid data
	Attr string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s in <%s %s>: %s", ErrParse, e.Tag, e.Attr, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// Issue records why a clipped element has been skipped.
type Issue struct {
	Element string // location of the element in the document
	Ref     string // referenced definition, if known
	Err     error

	source *etree.Element
}

func (is Issue) Error() string {
	if is.Ref != "" {
		return fmt.Sprintf("%s (#%s): %s", is.Element, is.Ref, is.Err)
	}
	return fmt.Sprintf("%s: %s", is.Element, is.Err)
}

func (is Issue) Unwrap() error { return is.Err }

// describe returns a readable location for el.
func describe(el *etree.Element) string {
	s := el.GetPath()
	if id := el.SelectAttrValue("id", ""); id != "" {
		s += "#" + id
	}
	return s
}
