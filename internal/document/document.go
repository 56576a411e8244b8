// Package document wraps a parsed HTML page behind a small predicate-based
// query API: find elements by tag name, optionally filtered by attribute
// value, and read an element's attributes, inner HTML and text nodes.
package document

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrNotFound is returned when an expected element is absent from a page.
var ErrNotFound = errors.New("element not found")

// Document is one parsed page.
type Document struct {
	doc *goquery.Document
}

// Element is a single node of a Document.
type Element struct {
	sel *goquery.Selection
}

// Predicate filters elements during Find.
type Predicate func(*Element) bool

// Parse reads and parses HTML from r.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseString parses an HTML string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Find yields every element with the given tag name that satisfies all
// predicates, in document order.
func (d *Document) Find(tag string, preds ...Predicate) iter.Seq[*Element] {
	return find(d.doc.Selection, tag, preds)
}

// First returns the first match of Find, or ErrNotFound.
func (d *Document) First(tag string, preds ...Predicate) (*Element, error) {
	for el := range d.Find(tag, preds...) {
		return el, nil
	}
	return nil, fmt.Errorf("<%s>: %w", tag, ErrNotFound)
}

// Find yields matching descendants of e.
func (e *Element) Find(tag string, preds ...Predicate) iter.Seq[*Element] {
	return find(e.sel, tag, preds)
}

func find(root *goquery.Selection, tag string, preds []Predicate) iter.Seq[*Element] {
	return func(yield func(*Element) bool) {
		nodes := root.Find(tag)
		for i := range nodes.Nodes {
			el := &Element{sel: nodes.Eq(i)}
			if !matchAll(el, preds) {
				continue
			}
			if !yield(el) {
				return
			}
		}
	}
}

func matchAll(el *Element, preds []Predicate) bool {
	for _, p := range preds {
		if !p(el) {
			return false
		}
	}
	return true
}

// AttrEquals matches elements whose attribute equals value exactly.
func AttrEquals(name, value string) Predicate {
	return func(e *Element) bool {
		v, ok := e.sel.Attr(name)
		return ok && v == value
	}
}

// AttrContains matches elements whose attribute contains substr. A missing
// attribute is treated as the empty string.
func AttrContains(name, substr string) Predicate {
	return func(e *Element) bool {
		return strings.Contains(e.Attr(name), substr)
	}
}

// Attr returns the attribute value, or "" when absent.
func (e *Element) Attr(name string) string {
	return e.sel.AttrOr(name, "")
}

// InnerHTML serializes the element's children. Script and style bodies are
// returned verbatim rather than entity-escaped.
func (e *Element) InnerHTML() (string, error) {
	if len(e.sel.Nodes) > 0 && rawText[e.sel.Nodes[0].Data] {
		return e.Text(), nil
	}
	return e.sel.Html()
}

var rawText = map[string]bool{
	"script": true,
	"style":  true,
	"xmp":    true,
}

// Texts yields every text node under the element in document order.
func (e *Element) Texts() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, n := range e.sel.Nodes {
			if !walkText(n, yield) {
				return
			}
		}
	}
}

func walkText(n *html.Node, yield func(string) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			if !yield(c.Data) {
				return false
			}
			continue
		}
		if !walkText(c, yield) {
			return false
		}
	}
	return true
}

// Text concatenates Texts.
func (e *Element) Text() string {
	var b strings.Builder
	for t := range e.Texts() {
		b.WriteString(t)
	}
	return b.String()
}
