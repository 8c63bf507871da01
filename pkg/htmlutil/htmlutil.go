package htmlutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("yahoomovie.pkg.htmlutil")

// ErrMissingElement is returned when markup that a parser requires is absent.
var ErrMissingElement = errors.New("missing element")

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
}

// CleanText removes non-printable characters, trims the ends and collapses
// inner runs of whitespace.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, " ")
}

// StripLabel removes a field label like "導演：" from text and trims the rest.
func StripLabel(text, label string) string {
	return strings.TrimSpace(strings.Replace(text, label, "", 1))
}

type Anchor struct {
	Name string
	Url  *url.URL
}

// GetAnchors collects every anchor in `sel`, resolving hrefs relative to `base`.
// Anchors whose href cannot be parsed are skipped.
func GetAnchors(ctx context.Context, base *url.URL, sel *goquery.Selection) []Anchor {
	_, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}

		link, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}
		if base != nil {
			link = base.ResolveReference(link)
		}

		name := CleanText(GetText(n))
		anchors = append(anchors, Anchor{
			Name: name,
			Url:  link,
		})
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", name),
			attribute.String("url", link.String()),
		))
	}

	return anchors
}

// Node is a position in a parsed document. Lookups on a node that does not
// exist yield nodes that do not exist, so a chain of lookups only needs to be
// checked once at the end with Exists or Require.
type Node struct {
	sel  *goquery.Selection
	path string
}

func FromDocument(doc *goquery.Document) Node {
	return Node{sel: doc.Selection, path: "document"}
}

func FromSelection(sel *goquery.Selection, path string) Node {
	return Node{sel: sel.First(), path: path}
}

// Parse parses an html fragment or document.
func Parse(contents string) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contents))
	if err != nil {
		return Node{}, err
	}
	return FromDocument(doc), nil
}

func (n Node) selection() *goquery.Selection {
	if n.sel == nil {
		return &goquery.Selection{}
	}
	return n.sel
}

func (n Node) child(sel *goquery.Selection, desc string) Node {
	return Node{sel: sel.First(), path: n.path + " > " + desc}
}

func (n Node) Exists() bool {
	return n.sel != nil && n.sel.Length() > 0
}

func (n Node) Path() string {
	return n.path
}

func (n Node) Selection() *goquery.Selection {
	return n.selection()
}

// Find returns the first descendant matching `selector`.
func (n Node) Find(selector string) Node {
	return n.child(n.selection().Find(selector), selector)
}

// FindAll returns every descendant matching `selector` in document order.
func (n Node) FindAll(selector string) []Node {
	var out []Node
	n.selection().Find(selector).Each(func(i int, s *goquery.Selection) {
		out = append(out, Node{sel: s, path: fmt.Sprintf("%s > %s[%d]", n.path, selector, i)})
	})
	return out
}

// FindByText returns the first descendant matching `selector` whose trimmed
// text is exactly `text`.
func (n Node) FindByText(selector, text string) Node {
	matched := n.selection().Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == text
	})
	return n.child(matched, fmt.Sprintf("%s[text=%q]", selector, text))
}

// FindContaining returns the first descendant matching `selector` whose text
// contains `substr`. Of nested matches the innermost one is returned.
func (n Node) FindContaining(selector, substr string) Node {
	contains := func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), substr)
	}
	matched := n.selection().Find(selector).FilterFunction(func(i int, s *goquery.Selection) bool {
		return contains(i, s) && s.Find(selector).FilterFunction(contains).Length() == 0
	})
	return n.child(matched, fmt.Sprintf("%s[contains=%q]", selector, substr))
}

// NextSibling returns the closest following sibling matching `selector`,
// skipping siblings that do not match.
func (n Node) NextSibling(selector string) Node {
	return n.child(n.selection().NextAllFiltered(selector), "~ "+selector)
}

func (n Node) Attr(name string) (string, bool) {
	return n.selection().Attr(name)
}

// Text returns the trimmed text content of the node and its descendants.
func (n Node) Text() string {
	if !n.Exists() {
		return ""
	}
	return strings.TrimSpace(GetText(n.sel.Get(0)))
}

func (n Node) Html() (string, error) {
	return n.selection().Html()
}

// Require returns ErrMissingElement describing the lookup path if the node does not exist.
func (n Node) Require() (Node, error) {
	if !n.Exists() {
		return n, fmt.Errorf("%w: %s", ErrMissingElement, n.path)
	}
	return n, nil
}

// LookupAttr returns the trimmed value of an attribute that must be present,
// an empty value is allowed.
func (n Node) LookupAttr(name string) (string, error) {
	_, err := n.Require()
	if err != nil {
		return "", err
	}
	value, ok := n.Attr(name)
	if !ok {
		return "", fmt.Errorf("%w: %s[%s]", ErrMissingElement, n.path, name)
	}
	return strings.TrimSpace(value), nil
}

// RequireAttr returns the value of an attribute that must be present and non-empty.
func (n Node) RequireAttr(name string) (string, error) {
	_, err := n.Require()
	if err != nil {
		return "", err
	}
	value, ok := n.Attr(name)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s[%s]", ErrMissingElement, n.path, name)
	}
	return value, nil
}
