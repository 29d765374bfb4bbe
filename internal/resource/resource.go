// Package resource models binary files (sub-report templates, images) that
// travel inside an API request as base64 payloads.
package resource

import (
	"encoding/base64"
	"os"
	"strings"

	"github.com/dharsanguruparan/rreport/internal/errs"
)

// Payload keys.
const (
	RequestKey      = "reportResources"
	requestName     = "name"
	requestResource = "resource"
)

// Resolver turns a file path into a base64 payload. *cache.Cache satisfies it.
type Resolver interface {
	Resolve(path string) (string, error)
}

// ReportResource is one named base64 payload.
type ReportResource struct {
	name     string
	resource string
}

// New builds a ReportResource from an already encoded payload. An empty
// payload is allowed; it stands for an empty file.
func New(name, b64 string) (*ReportResource, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errs.Validation("report resource name must not be empty")
	}
	return &ReportResource{name: name, resource: b64}, nil
}

// FromFile loads path through resolver, or straight from disk when resolver
// is nil.
func FromFile(name, path string, resolver Resolver) (*ReportResource, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errs.Validation("report resource name must not be empty")
	}
	if resolver != nil {
		b64, err := resolver.Resolve(path)
		if err != nil {
			return nil, err
		}
		return New(name, b64)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Validation("read report resource %s: %w", path, err)
	}
	return New(name, base64.StdEncoding.EncodeToString(data))
}

// Name returns the resource name.
func (r *ReportResource) Name() string { return r.name }

// Resource returns the base64 payload.
func (r *ReportResource) Resource() string { return r.resource }

// Request returns the payload form of the resource.
func (r *ReportResource) Request() map[string]any {
	return map[string]any{requestName: r.name, requestResource: r.resource}
}

// FillRequest appends the resources under reportResources. Nothing is added
// for an empty list.
func FillRequest(payload map[string]any, resources []*ReportResource) {
	if len(resources) == 0 {
		return
	}
	list := make([]map[string]any, 0, len(resources))
	for _, r := range resources {
		list = append(list, r.Request())
	}
	payload[RequestKey] = list
}
