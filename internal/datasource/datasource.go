// Package datasource describes where a report's rows come from. Every variant
// shares the Datasource interface and emits its own element inside
// <datasource>, or its own entry in an API payload.
package datasource

import (
	"github.com/beevik/etree"
)

// Kind identifies a datasource variant. The value is the short name used as
// the payload key.
type Kind string

const (
	KindDatabase  Kind = "Database"
	KindJSONHTTP  Kind = "JsonHttp"
	KindJSONHTTPS Kind = "JsonHttps"
	KindXMLHTTP   Kind = "XmlHttp"
	KindXMLHTTPS  Kind = "XmlHttps"
	KindJSONFile  Kind = "JsonFile"
)

// Element is the wrapper element created by the report serializer, and
// RequestKey the payload key holding the datasource sub-map.
const (
	Element    = "datasource"
	RequestKey = "datasource"
)

// elements maps each variant to its XML element. JsonFile has none: it can
// only travel through the API payload.
var elements = map[Kind]string{
	KindDatabase:  "database",
	KindJSONHTTP:  "jsonhttp",
	KindJSONHTTPS: "jsonhttps",
	KindXMLHTTP:   "xmlhttp",
	KindXMLHTTPS:  "xmlhttps",
}

// ElementOf returns the XML element name of a kind.
func ElementOf(k Kind) (string, bool) {
	tag, ok := elements[k]
	return tag, ok
}

// Datasource is implemented by every variant.
type Datasource interface {
	// Kind returns the variant.
	Kind() Kind
	// WireNode appends the variant element to the <datasource> element.
	WireNode(parent *etree.Element) error
	// FillRequest adds the variant's fields to an API payload.
	FillRequest(payload map[string]any) error
}

// fill stores fields under payload["datasource"][kind].
func fill(payload map[string]any, k Kind, fields map[string]any) {
	payload[RequestKey] = map[string]any{string(k): fields}
}
