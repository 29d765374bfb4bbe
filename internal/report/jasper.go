package report

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/dharsanguruparan/rreport/internal/errs"
	"github.com/dharsanguruparan/rreport/internal/wire"
)

const (
	elementJasperFile = "jasperfile"
	attrCopies        = "copies"
	requestPath       = "path"
	requestCopies     = "copies"
)

// JasperFile references the compiled report template and how many copies
// to render.
type JasperFile struct {
	path   string
	copies int
}

// NewJasperFile builds a JasperFile; copies must be at least 1.
func NewJasperFile(path string, copies int) (*JasperFile, error) {
	j := &JasperFile{copies: 1}
	if err := j.SetPath(path); err != nil {
		return nil, err
	}
	if err := j.SetCopies(copies); err != nil {
		return nil, err
	}
	return j, nil
}

// Path returns the template path.
func (j *JasperFile) Path() string { return j.path }

// SetPath sets the template path.
func (j *JasperFile) SetPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errs.Validation("jasper file path must not be empty")
	}
	j.path = path
	return nil
}

// Copies returns the number of copies.
func (j *JasperFile) Copies() int { return j.copies }

// SetCopies sets the number of copies.
func (j *JasperFile) SetCopies(n int) error {
	if n < 1 {
		return errs.Validation("jasper file copies must be at least 1, got %d", n)
	}
	j.copies = n
	return nil
}

// WireNode appends <jasperfile copies="n">path</jasperfile>.
func (j *JasperFile) WireNode(parent *etree.Element) error {
	if j.path == "" {
		return errs.Serialization("jasper file path is not set")
	}
	el := wire.CData(parent, elementJasperFile, j.path)
	el.CreateAttr(attrCopies, strconv.Itoa(j.copies))
	return nil
}

func (j *JasperFile) request() map[string]any {
	return map[string]any{requestPath: j.path, requestCopies: j.copies}
}
