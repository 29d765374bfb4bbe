package report

import (
	"os"

	"github.com/beevik/etree"

	"github.com/dharsanguruparan/rreport/internal/datasource"
	"github.com/dharsanguruparan/rreport/internal/errs"
	"github.com/dharsanguruparan/rreport/internal/parameter"
	"github.com/dharsanguruparan/rreport/internal/schema"
	"github.com/dharsanguruparan/rreport/internal/wire"
)

const (
	elementReportType = "reporttype"
	elementOutputFile = "outputfile"
	elementParameters = "parameters"
)

// SerializeToDocument builds the wire document and checks it against the
// schema. Missing parts are reported in document order.
func (r *Report) SerializeToDocument() (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(schema.RootElement)
	root.CreateAttr("xmlns", schema.Namespace)
	root.CreateAttr("xmlns:xsi", schema.XSINamespace)
	root.CreateAttr("xsi:schemaLocation", schema.Location)

	if r.jasperFile == nil {
		return nil, errs.Serialization("jasper file is not set")
	}
	if err := r.jasperFile.WireNode(root); err != nil {
		return nil, err
	}
	if err := r.reportTypeNode(root); err != nil {
		return nil, err
	}
	if r.datasource == nil {
		return nil, errs.Serialization("datasource is not set")
	}
	if err := r.datasource.WireNode(root.CreateElement(datasource.Element)); err != nil {
		return nil, err
	}
	if r.params.len() > 0 {
		params := root.CreateElement(elementParameters)
		err := r.params.each(func(_ int, p *parameter.Parameter) error {
			return p.WireNode(params)
		})
		if err != nil {
			return nil, err
		}
	}

	if err := schema.Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *Report) reportTypeNode(root *etree.Element) error {
	if r.outputFile == "" {
		return errs.Serialization("output file is not set")
	}
	el := etree.NewElement(r.format.String())
	wire.CData(el, elementOutputFile, r.outputFile)
	if r.sign != nil {
		if err := r.sign.WireNode(el); err != nil {
			return err
		}
	}
	root.CreateElement(elementReportType).AddChild(el)
	return nil
}

// SerializeToString renders the document with two-space indentation.
func (r *Report) SerializeToString() (string, error) {
	doc, err := r.SerializeToDocument()
	if err != nil {
		return "", err
	}
	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return "", errs.Serialization("write document: %w", err)
	}
	return out, nil
}

// SerializeToFile writes the document to path and confirms the file exists.
func (r *Report) SerializeToFile(path string) error {
	doc, err := r.SerializeToDocument()
	if err != nil {
		return err
	}
	doc.Indent(2)
	if err := doc.WriteToFile(path); err != nil {
		return errs.Serialization("write document to %s: %w", path, err)
	}
	if _, err := os.Stat(path); err != nil {
		return errs.Serialization("document %s missing after write: %w", path, err)
	}
	return nil
}
