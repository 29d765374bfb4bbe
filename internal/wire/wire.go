// Package wire holds the small XML building helpers shared by every
// descriptor that knows how to emit its own node.
package wire

import (
	"strings"

	"github.com/beevik/etree"
)

const cdataEnd = "]]>"

// Text appends <tag>text</tag>. Use it for values from closed sets and
// numbers, which never need CDATA.
func Text(parent *etree.Element, tag, text string) *etree.Element {
	el := parent.CreateElement(tag)
	el.SetText(text)
	return el
}

// CData appends <tag><![CDATA[text]]></tag>. A "]]>" inside text is split
// across two sections so arbitrary content survives.
func CData(parent *etree.Element, tag, text string) *etree.Element {
	el := parent.CreateElement(tag)
	for {
		i := strings.Index(text, cdataEnd)
		if i < 0 {
			break
		}
		el.CreateCData(text[:i+2])
		text = text[i+2:]
	}
	el.CreateCData(text)
	return el
}

// Bool renders a boolean the way the schema expects.
func Bool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
