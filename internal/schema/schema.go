// Package schema validates wire documents against the fixed rreport schema
// (version 1.1). The XSD ships embedded for external tooling; validation runs
// against a Go content model that mirrors it, so no XML toolkit outside the
// process is needed.
package schema

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/dharsanguruparan/rreport/internal/errs"
)

const (
	// Namespace of every wire document.
	Namespace = "urn:rebelo.reports.core.parse.pojo"
	// Version of the schema the documents conform to.
	Version = "1.1"
	// URL where the XSD is published.
	URL = "https://raw.githubusercontent.com/joaomfrebelo/reports/master/src/main/resources/rreport_1_1.xsd"
	// Location is the xsi:schemaLocation value.
	Location = Namespace + " " + URL
	// XSINamespace is the XML Schema instance namespace.
	XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"
	// RootElement is the document element.
	RootElement = "rreport"
)

//go:embed rreport_1_1.xsd
var xsd []byte

// XSD returns a copy of the embedded schema document.
func XSD() []byte {
	out := make([]byte, len(xsd))
	copy(out, xsd)
	return out
}

// Validate checks doc and returns one ErrSerialization listing every
// violation, or nil.
func Validate(doc *etree.Document) error {
	v := &validator{}
	v.document(doc)
	if len(v.problems) == 0 {
		return nil
	}
	return errs.Serialization("document does not conform to schema %s: %s", Version, strings.Join(v.problems, "; "))
}

// ValidateBytes parses data and validates it.
func ValidateBytes(data []byte) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return errs.Serialization("parse document: %v", err)
	}
	return Validate(doc)
}

type validator struct {
	problems []string
}

func (v *validator) addf(path, format string, args ...any) {
	v.problems = append(v.problems, path+": "+fmt.Sprintf(format, args...))
}

func (v *validator) document(doc *etree.Document) {
	el := doc.Root()
	if el == nil {
		v.problems = append(v.problems, "document has no root element")
		return
	}
	path := "/" + el.Tag
	if el.Tag != RootElement || el.Space != "" {
		v.addf(path, "root element must be %s", RootElement)
		return
	}
	if ns := el.SelectAttrValue("xmlns", ""); ns != Namespace {
		v.addf(path, "namespace must be %q, got %q", Namespace, ns)
	}
	if loc := el.SelectAttrValue("xsi:schemaLocation", ""); loc != Location {
		v.addf(path, "xsi:schemaLocation must be %q, got %q", Location, loc)
	}
	if xsi := el.SelectAttrValue("xmlns:xsi", ""); xsi != XSINamespace {
		v.addf(path, "xmlns:xsi must be %q", XSINamespace)
	}
	v.content(el, root, path)
}

func (v *validator) element(el *etree.Element, n *node, path string) {
	v.attributes(el, n, path)
	v.content(el, n, path)
}

func (v *validator) attributes(el *etree.Element, n *node, path string) {
	for _, a := range n.attrs {
		attr := el.SelectAttr(a.name)
		if attr == nil {
			if a.required {
				v.addf(path, "missing required attribute %s", a.name)
			}
			continue
		}
		if msg := checkRule(a.rule, attr.Value); msg != "" {
			v.addf(path+"/@"+a.name, "%s", msg)
		}
	}
	for _, attr := range el.Attr {
		if !declared(n, attr.FullKey()) {
			v.addf(path, "unexpected attribute %s", attr.FullKey())
		}
	}
}

func declared(n *node, key string) bool {
	for _, a := range n.attrs {
		if a.name == key {
			return true
		}
	}
	return false
}

func (v *validator) content(el *etree.Element, n *node, path string) {
	if msg := n.check(el.Text()); msg != "" {
		v.addf(path, "%s", msg)
	}
	kids := el.ChildElements()
	if len(n.children) == 0 {
		if len(kids) > 0 {
			v.addf(path, "unexpected element %s", kids[0].Tag)
		}
		return
	}
	if n.choice {
		v.choice(kids, n, path)
		return
	}
	i := 0
	for _, p := range n.children {
		count := 0
		for i < len(kids) && kids[i].Tag == p.node.name && (p.max < 0 || count < p.max) {
			v.element(kids[i], p.node, path+"/"+kids[i].Tag)
			i++
			count++
		}
		if count < p.min {
			v.addf(path, "missing required element %s", p.node.name)
		}
	}
	for ; i < len(kids); i++ {
		v.addf(path, "unexpected element %s", kids[i].Tag)
	}
}

func (v *validator) choice(kids []*etree.Element, n *node, path string) {
	if len(kids) != 1 {
		v.addf(path, "expected exactly one of %s, found %d elements", optionNames(n), len(kids))
		if len(kids) == 0 {
			return
		}
	}
	for _, kid := range kids {
		matched := false
		for _, p := range n.children {
			if p.node.name == kid.Tag {
				v.element(kid, p.node, path+"/"+kid.Tag)
				matched = true
				break
			}
		}
		if !matched {
			v.addf(path, "unexpected element %s", kid.Tag)
		}
	}
}

func optionNames(n *node) string {
	names := make([]string, len(n.children))
	for i, p := range n.children {
		names[i] = p.node.name
	}
	return strings.Join(names, ", ")
}
