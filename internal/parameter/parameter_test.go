package parameter

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/rreport/internal/enum"
	"github.com/dharsanguruparan/rreport/internal/errs"
)

type money struct{ cents int }

func (m money) String() string { return "12.34" }

func TestCoercion(t *testing.T) {
	cases := []struct {
		typ   enum.ParameterType
		value any
		want  string
	}{
		{enum.ParamBoolean, true, "true"},
		{enum.ParamBool, false, "false"},
		{enum.ParamFloat, 0.999, "0.999"},
		{enum.ParamFloat, float32(0.999), "0.999"},
		{enum.ParamDouble, 1e21, "1000000000000000000000"},
		{enum.ParamInteger, 42, "42"},
		{enum.ParamLong, int64(-9007199254740993), "-9007199254740993"},
		{enum.ParamShort, uint8(7), "7"},
		{enum.ParamString, "Rebelo", "Rebelo"},
		{enum.ParamBigDecimal, big.NewFloat(1.5), "1.5"},
		{enum.ParamString, money{1234}, "12.34"},
		{enum.ParamTimestamp, time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC), "2024-02-29T10:00:00Z"},
	}
	for _, tc := range cases {
		p, err := New(tc.typ, "p", tc.value, "")
		require.NoError(t, err, "%T", tc.value)
		assert.Equal(t, tc.want, p.Value(), "%T", tc.value)
		assert.Equal(t, tc.typ, p.Type())
	}
}

func TestDateFormatPairing(t *testing.T) {
	p, err := New(enum.ParamDate, "since", "2024-01-01", "yyyy-MM-dd")
	require.NoError(t, err)
	assert.Equal(t, "yyyy-MM-dd", p.Format())

	_, err = New(enum.ParamSQLDate, "since", "2024-01-01", "")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = New(enum.ParamString, "name", "x", "yyyy")
	assert.ErrorIs(t, err, errs.ErrValidation)

	p, err = New(enum.ParamTime, "at", "10:00", "")
	require.NoError(t, err)
	assert.Empty(t, p.Format())
}

func TestNewRejectsInvalid(t *testing.T) {
	var nilPtr *int
	cases := map[string]func() error{
		"blank name":  func() error { _, err := New(enum.ParamString, "  ", "x", ""); return err },
		"nil value":   func() error { _, err := New(enum.ParamString, "n", nil, ""); return err },
		"nil pointer": func() error { _, err := New(enum.ParamInteger, "n", nilPtr, ""); return err },
		"empty value": func() error { _, err := New(enum.ParamString, "n", "", ""); return err },
		"map value":   func() error { _, err := New(enum.ParamString, "n", map[string]int{"a": 1}, ""); return err },
		"slice value": func() error { _, err := New(enum.ParamString, "n", []int{1}, ""); return err },
		"bad type":    func() error { _, err := New(enum.ParameterType("char"), "n", "x", ""); return err },
	}
	for name, fn := range cases {
		if err := fn(); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", name, err)
		}
	}
}

func TestWireNode(t *testing.T) {
	p, err := New(enum.ParamDate, "from <date>", "2024-01-01", "yyyy-MM-dd")
	require.NoError(t, err)

	doc := etree.NewDocument()
	root := doc.CreateElement("parameters")
	require.NoError(t, p.WireNode(root))

	el := root.SelectElement("parameter")
	require.NotNil(t, el)
	assert.Equal(t, "date", el.SelectElement("type").Text())
	assert.Equal(t, "from <date>", el.SelectElement("name").Text())
	value := el.SelectElement("value")
	assert.Equal(t, "2024-01-01", value.Text())
	assert.Equal(t, "yyyy-MM-dd", value.SelectAttrValue("format", ""))

	out, err := doc.WriteToString()
	require.NoError(t, err)
	assert.Contains(t, out, "<name><![CDATA[from <date>]]></name>")
}

func TestWireNodeRechecksFields(t *testing.T) {
	doc := etree.NewDocument()
	root := doc.CreateElement("parameters")
	err := (&Parameter{typ: enum.ParamString, name: "n"}).WireNode(root)
	assert.ErrorIs(t, err, errs.ErrSerialization)
	err = (&Parameter{name: "n", value: "v"}).WireNode(root)
	assert.ErrorIs(t, err, errs.ErrSerialization)
	assert.Empty(t, root.ChildElements())
}

func TestRequest(t *testing.T) {
	p, err := New(enum.ParamInteger, "limit", 10, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "integer", "name": "limit", "value": "10"}, p.Request())

	d, err := New(enum.ParamSQLDate, "day", "2024-01-01", "yyyy-MM-dd")
	require.NoError(t, err)
	assert.Equal(t, "yyyy-MM-dd", d.Request()["format"])
}
