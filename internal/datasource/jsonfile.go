package datasource

import (
	"encoding/json"

	"github.com/beevik/etree"

	"github.com/dharsanguruparan/rreport/internal/errs"
)

const fieldJSON = "json"

// JSONFile carries the report data inline as a JSON document. It is only
// usable through the API payload.
type JSONFile struct {
	json          string
	datePattern   string
	numberPattern string
}

// NewJSONFile returns an empty inline JSON datasource.
func NewJSONFile() *JSONFile { return &JSONFile{} }

// Kind implements Datasource.
func (j *JSONFile) Kind() Kind { return KindJSONFile }

// JSON returns the inline document.
func (j *JSONFile) JSON() string { return j.json }

// SetJSON stores the inline document; it must be valid JSON.
func (j *JSONFile) SetJSON(doc string) error {
	if !json.Valid([]byte(doc)) {
		return errs.Validation("json datasource content is not valid JSON")
	}
	j.json = doc
	return nil
}

// SetDatePattern sets the date pattern; empty clears it.
func (j *JSONFile) SetDatePattern(p string) { j.datePattern = p }

// SetNumberPattern sets the number pattern; empty clears it.
func (j *JSONFile) SetNumberPattern(p string) { j.numberPattern = p }

// WireNode always fails: the XML transport has no inline JSON element.
func (j *JSONFile) WireNode(*etree.Element) error {
	return errs.Serialization("%s datasource is not implemented for the XML transport", KindJSONFile)
}

// FillRequest implements Datasource.
func (j *JSONFile) FillRequest(payload map[string]any) error {
	if j.json == "" {
		return errs.Serialization("json datasource content is not set")
	}
	fields := map[string]any{fieldJSON: j.json}
	if j.datePattern != "" {
		fields[fieldDatePattern] = j.datePattern
	}
	if j.numberPattern != "" {
		fields[fieldNumberPattern] = j.numberPattern
	}
	fill(payload, KindJSONFile, fields)
	return nil
}
