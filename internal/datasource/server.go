package datasource

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/dharsanguruparan/rreport/internal/enum"
	"github.com/dharsanguruparan/rreport/internal/errs"
	"github.com/dharsanguruparan/rreport/internal/wire"
)

const (
	fieldURL           = "url"
	fieldType          = "type"
	fieldDatePattern   = "datePattern"
	fieldNumberPattern = "numberPattern"
)

var schemes = map[Kind]string{
	KindJSONHTTP:  "http://",
	KindJSONHTTPS: "https://",
	KindXMLHTTP:   "http://",
	KindXMLHTTPS:  "https://",
}

// Server is an XML or JSON feed fetched over HTTP or HTTPS. The variant fixes
// the element name and the URL scheme it accepts.
type Server struct {
	kind          Kind
	url           string
	requestType   enum.RequestType
	datePattern   string
	numberPattern string
}

// NewJSONHTTP returns a JSON feed served over http://.
func NewJSONHTTP() *Server { return &Server{kind: KindJSONHTTP} }

// NewJSONHTTPS returns a JSON feed served over https://.
func NewJSONHTTPS() *Server { return &Server{kind: KindJSONHTTPS} }

// NewXMLHTTP returns an XML feed served over http://.
func NewXMLHTTP() *Server { return &Server{kind: KindXMLHTTP} }

// NewXMLHTTPS returns an XML feed served over https://.
func NewXMLHTTPS() *Server { return &Server{kind: KindXMLHTTPS} }

// NewServer returns the HTTP variant for kind.
func NewServer(kind Kind) (*Server, error) {
	if _, ok := schemes[kind]; !ok {
		return nil, errs.Validation("%s is not an HTTP datasource", kind)
	}
	return &Server{kind: kind}, nil
}

// Kind implements Datasource.
func (s *Server) Kind() Kind { return s.kind }

// URL returns the feed URL.
func (s *Server) URL() string { return s.url }

// SetURL sets the feed URL. The scheme must match the variant, compared
// case-insensitively; an empty string clears the URL.
func (s *Server) SetURL(u string) error {
	if u == "" {
		s.url = ""
		return nil
	}
	scheme, ok := schemes[s.kind]
	if !ok {
		return errs.Validation("datasource kind %q does not accept a url", string(s.kind))
	}
	if len(u) < len(scheme) || !strings.EqualFold(u[:len(scheme)], scheme) {
		return errs.Validation("%s datasource url must start with %s, got %q", s.kind, scheme, u)
	}
	s.url = u
	return nil
}

// RequestType returns the HTTP verb.
func (s *Server) RequestType() enum.RequestType { return s.requestType }

// SetRequestType sets the HTTP verb.
func (s *Server) SetRequestType(t enum.RequestType) error {
	if !t.Valid() {
		return errs.Validation("request type %q is not supported", string(t))
	}
	s.requestType = t
	return nil
}

// DatePattern returns the pattern used to parse dates in the feed.
func (s *Server) DatePattern() string { return s.datePattern }

// SetDatePattern sets the date pattern; empty clears it.
func (s *Server) SetDatePattern(p string) { s.datePattern = p }

// NumberPattern returns the pattern used to parse numbers in the feed.
func (s *Server) NumberPattern() string { return s.numberPattern }

// SetNumberPattern sets the number pattern; empty clears it.
func (s *Server) SetNumberPattern(p string) { s.numberPattern = p }

// WireNode implements Datasource.
func (s *Server) WireNode(parent *etree.Element) error {
	if s.url == "" {
		return errs.Serialization("%s datasource url is not set", s.kind)
	}
	if s.requestType == "" {
		return errs.Serialization("%s datasource request type is not set", s.kind)
	}
	el := parent.CreateElement(elements[s.kind])
	wire.CData(el, fieldURL, s.url)
	wire.Text(el, fieldType, s.requestType.String())
	if s.datePattern != "" {
		wire.CData(el, fieldDatePattern, s.datePattern)
	}
	if s.numberPattern != "" {
		wire.CData(el, fieldNumberPattern, s.numberPattern)
	}
	return nil
}

// FillRequest implements Datasource. Only fields that were set are added.
func (s *Server) FillRequest(payload map[string]any) error {
	fields := map[string]any{}
	if s.url != "" {
		fields[fieldURL] = s.url
	}
	if s.requestType != "" {
		fields[fieldType] = s.requestType.String()
	}
	if s.datePattern != "" {
		fields[fieldDatePattern] = s.datePattern
	}
	if s.numberPattern != "" {
		fields[fieldNumberPattern] = s.numberPattern
	}
	fill(payload, s.kind, fields)
	return nil
}
