package report

import (
	"github.com/dharsanguruparan/rreport/internal/errs"
)

// Permission is a bitmask of what a reader of an encrypted PDF may do. Bit
// values follow the PDF writer used by the engine.
type Permission int

const (
	AllowDegradedPrinting  Permission = 4
	AllowModifyContents    Permission = 8
	AllowCopy              Permission = 16
	AllowModifyAnnotations Permission = 32
	AllowFillIn            Permission = 256
	AllowScreenReaders     Permission = 512
	AllowAssembly          Permission = 1024
	AllowPrinting          Permission = 2048 | AllowDegradedPrinting

	// DefaultPermissions grants nothing beyond viewing.
	DefaultPermissions Permission = 0

	allPermissions = AllowPrinting | AllowModifyContents | AllowCopy | AllowModifyAnnotations |
		AllowFillIn | AllowScreenReaders | AllowAssembly
)

const (
	requestPdfProperties = "pdfProperties"
	requestUserPassword  = "userPassword"
	requestOwnerPassword = "ownerPassword"
	requestJavascript    = "javascript"
	requestPermissions   = "permissions"
)

// PdfProperties controls encryption and embedded JavaScript of PDF output.
// It only travels through the API payload.
type PdfProperties struct {
	userPassword  string
	ownerPassword string
	javascript    string
	permissions   Permission
}

// NewPdfProperties returns properties with DefaultPermissions.
func NewPdfProperties() *PdfProperties {
	return &PdfProperties{permissions: DefaultPermissions}
}

// UserPassword returns the password required to open the document.
func (p *PdfProperties) UserPassword() string { return p.userPassword }

// SetUserPassword sets the password required to open the document.
func (p *PdfProperties) SetUserPassword(s string) { p.userPassword = s }

// OwnerPassword returns the password that lifts the permission limits.
func (p *PdfProperties) OwnerPassword() string { return p.ownerPassword }

// SetOwnerPassword sets the password that lifts the permission limits.
func (p *PdfProperties) SetOwnerPassword(s string) { p.ownerPassword = s }

// Javascript returns the document-level script.
func (p *PdfProperties) Javascript() string { return p.javascript }

// SetJavascript sets the document-level script.
func (p *PdfProperties) SetJavascript(s string) { p.javascript = s }

// Permissions returns the permission bitmask.
func (p *PdfProperties) Permissions() Permission { return p.permissions }

// SetPermissions replaces the bitmask; unknown bits are rejected.
func (p *PdfProperties) SetPermissions(perm Permission) error {
	if perm < 0 || perm&^allPermissions != 0 {
		return errs.Validation("pdf permissions %d contain unknown bits", int(perm))
	}
	p.permissions = perm
	return nil
}

// FillRequest adds the set fields under "pdfProperties"; permissions are
// always present.
func (p *PdfProperties) FillRequest(payload map[string]any) {
	out := map[string]any{requestPermissions: int(p.permissions)}
	if p.userPassword != "" {
		out[requestUserPassword] = p.userPassword
	}
	if p.ownerPassword != "" {
		out[requestOwnerPassword] = p.ownerPassword
	}
	if p.javascript != "" {
		out[requestJavascript] = p.javascript
	}
	payload[requestPdfProperties] = out
}
