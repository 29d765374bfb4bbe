// Package sign describes the digital signature applied to PDF reports:
// keystore, certificate, certification level, visible rectangle and the
// legal metadata (location, reason) embedded in the signature.
package sign

import (
	"github.com/beevik/etree"

	"github.com/dharsanguruparan/rreport/internal/enum"
	"github.com/dharsanguruparan/rreport/internal/errs"
	"github.com/dharsanguruparan/rreport/internal/wire"
)

// Element is the <sign> element name and RequestKey its payload key.
const (
	Element    = "sign"
	RequestKey = "sign"

	elementLevel    = "level"
	elementType     = "type"
	elementLocation = "location"
	elementReason   = "reason"
)

// Sign is the signature descriptor.
type Sign struct {
	keystore  *Keystore
	level     enum.SignLevel
	typ       enum.CertificateType
	rectangle *Rectangle
	location  string
	reason    string
}

// New returns a Sign with the given certification level and certificate
// type.
func New(level enum.SignLevel, typ enum.CertificateType) (*Sign, error) {
	s := &Sign{}
	if err := s.SetLevel(level); err != nil {
		return nil, err
	}
	if err := s.SetType(typ); err != nil {
		return nil, err
	}
	return s, nil
}

// Keystore returns the keystore, nil when unset.
func (s *Sign) Keystore() *Keystore { return s.keystore }

// SetKeystore sets the keystore.
func (s *Sign) SetKeystore(k *Keystore) { s.keystore = k }

// Level returns the certification level.
func (s *Sign) Level() enum.SignLevel { return s.level }

// SetLevel sets the certification level.
func (s *Sign) SetLevel(l enum.SignLevel) error {
	if !l.Valid() {
		return errs.Validation("sign level %q is not supported", string(l))
	}
	s.level = l
	return nil
}

// Type returns the certificate type.
func (s *Sign) Type() enum.CertificateType { return s.typ }

// SetType sets the certificate type.
func (s *Sign) SetType(t enum.CertificateType) error {
	if !t.Valid() {
		return errs.Validation("certificate type %q is not supported", string(t))
	}
	s.typ = t
	return nil
}

// Rectangle returns the visible signature rectangle, nil when unset.
func (s *Sign) Rectangle() *Rectangle { return s.rectangle }

// SetRectangle sets the rectangle; nil removes it.
func (s *Sign) SetRectangle(r *Rectangle) { s.rectangle = r }

// Location returns the signing location.
func (s *Sign) Location() string { return s.location }

// SetLocation sets the signing location.
func (s *Sign) SetLocation(l string) { s.location = l }

// Reason returns the signing reason.
func (s *Sign) Reason() string { return s.reason }

// SetReason sets the signing reason.
func (s *Sign) SetReason(r string) { s.reason = r }

// WireNode appends <sign> with keystore, level, type, optional rectangle,
// location and reason, in that order. Nothing is appended on failure.
func (s *Sign) WireNode(parent *etree.Element) error {
	if s.keystore == nil {
		return errs.Serialization("sign keystore is not set")
	}
	if s.level == "" {
		return errs.Serialization("sign level is not set")
	}
	if s.typ == "" {
		return errs.Serialization("sign certificate type is not set")
	}
	el := etree.NewElement(Element)
	if err := s.keystore.WireNode(el); err != nil {
		return err
	}
	wire.Text(el, elementLevel, s.level.String())
	wire.Text(el, elementType, s.typ.String())
	if s.rectangle != nil {
		if err := s.rectangle.WireNode(el); err != nil {
			return err
		}
	}
	wire.CData(el, elementLocation, s.location)
	wire.CData(el, elementReason, s.reason)
	parent.AddChild(el)
	return nil
}

// FillRequest adds the signature under "sign".
func (s *Sign) FillRequest(payload map[string]any) error {
	if s.keystore == nil {
		return errs.Serialization("sign keystore is not set")
	}
	out := map[string]any{
		elementKeystore: s.keystore.request(),
		elementLevel:    s.level.String(),
		elementType:     s.typ.String(),
		elementLocation: s.location,
		elementReason:   s.reason,
	}
	if s.rectangle != nil {
		out[elementRectangle] = s.rectangle.request()
	}
	payload[RequestKey] = out
	return nil
}
