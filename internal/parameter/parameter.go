// Package parameter models a single report parameter: a typed name/value
// pair whose value is coerced to its string form at construction.
package parameter

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/beevik/etree"
	"github.com/spf13/cast"

	"github.com/dharsanguruparan/rreport/internal/enum"
	"github.com/dharsanguruparan/rreport/internal/errs"
	"github.com/dharsanguruparan/rreport/internal/wire"
)

// Element and payload names.
const (
	Element       = "parameter"
	elementType   = "type"
	elementName   = "name"
	elementValue  = "value"
	attrFormat    = "format"
	requestType   = "type"
	requestName   = "name"
	requestValue  = "value"
	requestFormat = "format"
)

// Parameter is immutable once built.
type Parameter struct {
	typ    enum.ParameterType
	name   string
	value  string
	format string
}

// New validates and builds a Parameter. format must be non-empty exactly
// when typ is DATE or SQL_DATE; pass "" otherwise.
func New(typ enum.ParameterType, name string, value any, format string) (*Parameter, error) {
	if !typ.Valid() {
		return nil, errs.Validation("parameter type %q is not supported", string(typ))
	}
	if strings.TrimSpace(name) == "" {
		return nil, errs.Validation("parameter name must not be empty")
	}
	hasFormat := strings.TrimSpace(format) != ""
	if typ.IsDate() && !hasFormat {
		return nil, errs.Validation("parameter %q of type %s requires a format", name, typ)
	}
	if !typ.IsDate() && hasFormat {
		return nil, errs.Validation("parameter %q of type %s does not accept a format", name, typ)
	}
	str, err := Coerce(value)
	if err != nil {
		return nil, errs.Validation("parameter %q: %w", name, err)
	}
	if !hasFormat {
		format = ""
	}
	return &Parameter{typ: typ, name: name, value: str, format: format}, nil
}

// Coerce converts a scalar, string, Stringer or TextMarshaler to the string
// sent on the wire. Booleans become "true"/"false" and floats use their
// shortest decimal form.
func Coerce(value any) (string, error) {
	if value == nil || isNilPointer(value) {
		return "", errors.New("value must not be null")
	}
	var (
		out string
		err error
	)
	if tm, ok := value.(encoding.TextMarshaler); ok {
		var b []byte
		b, err = tm.MarshalText()
		out = string(b)
	} else {
		out, err = cast.ToStringE(value)
	}
	if err != nil {
		return "", fmt.Errorf("value of type %T cannot be converted to a string", value)
	}
	if out == "" {
		return "", errors.New("value must not be empty")
	}
	return out, nil
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Type returns the parameter type.
func (p *Parameter) Type() enum.ParameterType { return p.typ }

// Name returns the parameter name.
func (p *Parameter) Name() string { return p.name }

// Value returns the coerced value.
func (p *Parameter) Value() string { return p.value }

// Format returns the date pattern, empty for non-date types.
func (p *Parameter) Format() string { return p.format }

// WireNode appends the <parameter> element to parent.
func (p *Parameter) WireNode(parent *etree.Element) error {
	if p.typ == "" {
		return errs.Serialization("parameter type is not set")
	}
	if p.name == "" {
		return errs.Serialization("parameter name is not set")
	}
	if p.value == "" {
		return errs.Serialization("parameter %q value is not set", p.name)
	}
	el := parent.CreateElement(Element)
	wire.Text(el, elementType, p.typ.String())
	wire.CData(el, elementName, p.name)
	value := wire.CData(el, elementValue, p.value)
	if p.format != "" {
		value.CreateAttr(attrFormat, p.format)
	}
	return nil
}

// Request returns the payload form of the parameter.
func (p *Parameter) Request() map[string]any {
	out := map[string]any{
		requestType:  p.typ.String(),
		requestName:  p.name,
		requestValue: p.value,
	}
	if p.format != "" {
		out[requestFormat] = p.format
	}
	return out
}
