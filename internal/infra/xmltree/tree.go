// Package xmltree implements markup.Node on top of antchfx/xmlquery.
package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"

	"djnml-feed/internal/domain/markup"
)

// ErrMalformed is returned when the input is not a well-formed XML document.
var ErrMalformed = errors.New("malformed markup")

// Parser builds markup trees from XML input.
type Parser struct {
	entities map[string]string
}

// NewParser returns a parser that accepts the HTML named entities wire
// copy tends to carry (&nbsp;, &eacute; ...).
func NewParser() *Parser {
	return &Parser{entities: xml.HTMLEntity}
}

// Parse reads a complete document. The returned node is the document root,
// so absolute and relative expressions both resolve from it.
func (p *Parser) Parse(r io.Reader) (markup.Node, error) {
	doc, err := xmlquery.ParseWithOptions(r, xmlquery.ParserOptions{
		Decoder: &xmlquery.DecoderOptions{
			Strict: true,
			Entity: p.entities,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !hasElement(doc) {
		return nil, fmt.Errorf("%w: no root element", ErrMalformed)
	}
	return &node{n: doc}, nil
}

// ParseString is Parse over an in-memory string.
func (p *Parser) ParseString(s string) (markup.Node, error) {
	return p.Parse(strings.NewReader(s))
}

func hasElement(doc *xmlquery.Node) bool {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return true
		}
	}
	return false
}

type node struct {
	n *xmlquery.Node
}

func (x *node) Find(expr string) []markup.Node {
	found, err := xmlquery.QueryAll(x.n, expr)
	if err != nil {
		return nil
	}
	out := make([]markup.Node, 0, len(found))
	for _, f := range found {
		out = append(out, &node{n: f})
	}
	return out
}

func (x *node) Attr(name string) (string, bool) {
	for _, a := range x.n.Attr {
		qualified := a.Name.Local
		if a.Name.Space != "" {
			qualified = a.Name.Space + ":" + a.Name.Local
		}
		if qualified == name || (a.Name.Space == "" && a.Name.Local == name) {
			return a.Value, true
		}
	}
	return "", false
}

func (x *node) Text() string {
	return x.n.InnerText()
}

func (x *node) InnerXML() string {
	return x.n.OutputXML(false)
}
