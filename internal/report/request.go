package report

import (
	"github.com/dharsanguruparan/rreport/internal/errs"
	"github.com/dharsanguruparan/rreport/internal/resource"
)

// Payload keys of the REST request.
const (
	requestJasperFile = "jasperFile"
	requestReportType = "reportType"
	requestOutputFile = "outputFile"
	requestParameters = "parameters"
)

// FillRequest adds the report to an API payload. Only fields that were set
// are written; the schema is not consulted.
func (r *Report) FillRequest(payload map[string]any) error {
	if payload == nil {
		return errs.Validation("payload map must not be nil")
	}
	payload[requestReportType] = r.format.String()
	if r.jasperFile != nil {
		payload[requestJasperFile] = r.jasperFile.request()
	}
	if r.outputFile != "" {
		payload[requestOutputFile] = r.outputFile
	}
	if r.datasource != nil {
		if err := r.datasource.FillRequest(payload); err != nil {
			return err
		}
	}
	if r.params.len() > 0 {
		list := make([]map[string]any, 0, r.params.len())
		for _, p := range r.Parameters() {
			list = append(list, p.Request())
		}
		payload[requestParameters] = list
	}
	if r.sign != nil {
		if err := r.sign.FillRequest(payload); err != nil {
			return err
		}
	}
	if r.metadata != nil {
		r.metadata.FillRequest(payload)
	}
	if r.pdfProperties != nil {
		r.pdfProperties.FillRequest(payload)
	}
	resource.FillRequest(payload, r.resources)
	return nil
}

// Request returns a fresh payload map for the report.
func (r *Report) Request() (map[string]any, error) {
	payload := map[string]any{}
	if err := r.FillRequest(payload); err != nil {
		return nil, err
	}
	return payload, nil
}
