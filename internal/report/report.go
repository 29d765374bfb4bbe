// Package report holds the report descriptor: what template to render, in
// which format, from which datasource, with which parameters. A Report is
// turned into a schema-checked XML document for the CLI engine or into a
// payload map for the REST engine.
package report

import (
	"strings"

	"github.com/dharsanguruparan/rreport/internal/datasource"
	"github.com/dharsanguruparan/rreport/internal/enum"
	"github.com/dharsanguruparan/rreport/internal/errs"
	"github.com/dharsanguruparan/rreport/internal/parameter"
	"github.com/dharsanguruparan/rreport/internal/resource"
	"github.com/dharsanguruparan/rreport/internal/sign"
)

// Report describes one rendering job. The zero value is not usable; build
// one with New or a format constructor.
type Report struct {
	format        enum.Format
	jasperFile    *JasperFile
	datasource    datasource.Datasource
	params        *parameterList
	outputFile    string
	sign          *sign.Sign
	metadata      *Metadata
	pdfProperties *PdfProperties
	resources     []*resource.ReportResource
}

// New returns an empty report of the given format.
func New(format enum.Format) (*Report, error) {
	if !format.Valid() {
		return nil, errs.Validation("report format %q is not supported", string(format))
	}
	return &Report{format: format, params: newParameterList()}, nil
}

func mustNew(f enum.Format) *Report {
	r, _ := New(f)
	return r
}

// Format constructors; each returns an empty report of that format.

func NewPDF() *Report  { return mustNew(enum.FormatPDF) }
func NewCSV() *Report  { return mustNew(enum.FormatCSV) }
func NewXML() *Report  { return mustNew(enum.FormatXML) }
func NewHTML() *Report { return mustNew(enum.FormatHTML) }
func NewXLS() *Report  { return mustNew(enum.FormatXLS) }
func NewXLSX() *Report { return mustNew(enum.FormatXLSX) }
func NewDOCX() *Report { return mustNew(enum.FormatDOCX) }
func NewODS() *Report  { return mustNew(enum.FormatODS) }
func NewODT() *Report  { return mustNew(enum.FormatODT) }
func NewPPTX() *Report { return mustNew(enum.FormatPPTX) }
func NewRTF() *Report  { return mustNew(enum.FormatRTF) }
func NewTEXT() *Report { return mustNew(enum.FormatTEXT) }
func NewJSON() *Report { return mustNew(enum.FormatJSON) }

// Format returns the output format.
func (r *Report) Format() enum.Format { return r.format }

// JasperFile returns the template reference, nil when unset.
func (r *Report) JasperFile() *JasperFile { return r.jasperFile }

// SetJasperFile sets the template reference.
func (r *Report) SetJasperFile(j *JasperFile) { r.jasperFile = j }

// Datasource returns the datasource, nil when unset.
func (r *Report) Datasource() datasource.Datasource { return r.datasource }

// SetDatasource sets the datasource.
func (r *Report) SetDatasource(d datasource.Datasource) { r.datasource = d }

// OutputFile returns the path the engine writes the rendered report to.
func (r *Report) OutputFile() string { return r.outputFile }

// SetOutputFile sets the output path; blank paths are rejected.
func (r *Report) SetOutputFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return errs.Validation("output file must not be empty")
	}
	r.outputFile = path
	return nil
}

// Sign returns the signature settings, nil when unset.
func (r *Report) Sign() *sign.Sign { return r.sign }

// SetSign sets the signature settings. Only PDF reports can be signed.
func (r *Report) SetSign(s *sign.Sign) error {
	if s != nil && r.format != enum.FormatPDF {
		return errs.Validation("%s reports cannot be signed", r.format.Name())
	}
	r.sign = s
	return nil
}

// Metadata returns the document information, nil when unset.
func (r *Report) Metadata() *Metadata { return r.metadata }

// SetMetadata sets the document information.
func (r *Report) SetMetadata(m *Metadata) { r.metadata = m }

// PdfProperties returns the PDF encryption settings, nil when unset.
func (r *Report) PdfProperties() *PdfProperties { return r.pdfProperties }

// SetPdfProperties sets the PDF encryption settings. Only PDF reports
// accept them.
func (r *Report) SetPdfProperties(p *PdfProperties) error {
	if p != nil && r.format != enum.FormatPDF {
		return errs.Validation("%s reports do not take pdf properties", r.format.Name())
	}
	r.pdfProperties = p
	return nil
}

// Resources returns the embedded resources.
func (r *Report) Resources() []*resource.ReportResource { return r.resources }

// AddResource appends an embedded resource.
func (r *Report) AddResource(res *resource.ReportResource) error {
	if res == nil {
		return errs.Validation("report resource must not be nil")
	}
	r.resources = append(r.resources, res)
	return nil
}

// AddParameter appends p and returns its index. Indices grow
// monotonically and are not reused after RemoveParameter.
func (r *Report) AddParameter(p *parameter.Parameter) (int, error) {
	if p == nil {
		return 0, errs.Validation("parameter must not be nil")
	}
	return r.params.add(p), nil
}

// RemoveParameter deletes the parameter at index.
func (r *Report) RemoveParameter(index int) error {
	return r.params.remove(index)
}

// HasParameter reports whether index holds a parameter.
func (r *Report) HasParameter(index int) bool {
	_, ok := r.params.get(index)
	return ok
}

// Parameter returns the parameter at index.
func (r *Report) Parameter(index int) (*parameter.Parameter, error) {
	p, ok := r.params.get(index)
	if !ok {
		return nil, errs.Validation("parameter index %d does not exist", index)
	}
	return p, nil
}

// Parameters returns the parameters in insertion order.
func (r *Report) Parameters() []*parameter.Parameter {
	out := make([]*parameter.Parameter, 0, r.params.len())
	_ = r.params.each(func(_ int, p *parameter.Parameter) error {
		out = append(out, p)
		return nil
	})
	return out
}
