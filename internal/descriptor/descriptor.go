// Package descriptor reads report descriptor files. A descriptor is a YAML
// (or JSON) document naming the template, format, datasource, parameters
// and optional signing or metadata of one report.
package descriptor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dharsanguruparan/rreport/internal/errs"
	"github.com/dharsanguruparan/rreport/internal/report"
	"github.com/dharsanguruparan/rreport/internal/resource"
)

// File is the on-disk shape of a descriptor.
type File struct {
	Format        string          `yaml:"format"`
	JasperFile    JasperFile      `yaml:"jasperFile"`
	OutputFile    string          `yaml:"outputFile"`
	Datasource    *Datasource     `yaml:"datasource"`
	Parameters    []Parameter     `yaml:"parameters"`
	Sign          *Sign           `yaml:"sign"`
	Metadata      *Metadata       `yaml:"metadata"`
	PdfProperties *PdfProperties  `yaml:"pdfProperties"`
	Resources     []ResourceEntry `yaml:"resources"`
}

// JasperFile names the compiled template.
type JasperFile struct {
	Path   string `yaml:"path"`
	Copies int    `yaml:"copies"`
}

// Datasource holds the union of every datasource variant's fields; Kind
// selects which ones apply.
type Datasource struct {
	Kind             string `yaml:"kind"`
	ConnectionString string `yaml:"connectionString"`
	Driver           string `yaml:"driver"`
	User             string `yaml:"user"`
	Password         string `yaml:"password"`
	URL              string `yaml:"url"`
	RequestType      string `yaml:"requestType"`
	DatePattern      string `yaml:"datePattern"`
	NumberPattern    string `yaml:"numberPattern"`
	JSON             string `yaml:"json"`
}

// Parameter is one report parameter. Value keeps its YAML scalar type so
// numbers and booleans coerce the same way as in code.
type Parameter struct {
	Type   string `yaml:"type"`
	Name   string `yaml:"name"`
	Value  any    `yaml:"value"`
	Format string `yaml:"format"`
}

// Sign describes a PDF signature.
type Sign struct {
	Level     string     `yaml:"level"`
	Type      string     `yaml:"type"`
	Location  string     `yaml:"location"`
	Reason    string     `yaml:"reason"`
	Keystore  Keystore   `yaml:"keystore"`
	Rectangle *Rectangle `yaml:"rectangle"`
}

// Keystore locates the signing key.
type Keystore struct {
	Path        string      `yaml:"path"`
	Password    string      `yaml:"password"`
	Certificate Certificate `yaml:"certificate"`
}

// Certificate selects the alias inside the keystore.
type Certificate struct {
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

// Rectangle places a visible signature.
type Rectangle struct {
	Visible  bool `yaml:"visible"`
	X        int  `yaml:"x"`
	Y        int  `yaml:"y"`
	Width    int  `yaml:"width"`
	Height   int  `yaml:"height"`
	Rotation int  `yaml:"rotation"`
}

// Metadata mirrors report.Metadata.
type Metadata struct {
	Title                string `yaml:"title"`
	Author               string `yaml:"author"`
	Subject              string `yaml:"subject"`
	Keywords             string `yaml:"keywords"`
	Application          string `yaml:"application"`
	Creator              string `yaml:"creator"`
	DisplayMetadataTitle bool   `yaml:"displayMetadataTitle"`
}

// PdfProperties lists permissions by name, e.g. [printing, copy].
type PdfProperties struct {
	UserPassword  string   `yaml:"userPassword"`
	OwnerPassword string   `yaml:"ownerPassword"`
	Javascript    string   `yaml:"javascript"`
	Permissions   []string `yaml:"permissions"`
}

// ResourceEntry embeds a file as a base64 report resource.
type ResourceEntry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Loader builds reports from descriptor files. Resources go through
// Resolver when it is set.
//
// A confined Loader only embeds regular files below Root, named by paths
// relative to it. With an empty Root it refuses every resource.
type Loader struct {
	Resolver resource.Resolver
	Root     string
	Confined bool
}

// NewLoader returns a Loader for trusted descriptors; resolver may be nil.
func NewLoader(resolver resource.Resolver) *Loader {
	return &Loader{Resolver: resolver}
}

// NewConfinedLoader returns a Loader for descriptors from untrusted callers.
func NewConfinedLoader(resolver resource.Resolver, root string) *Loader {
	return &Loader{Resolver: resolver, Root: root, Confined: true}
}

// Load reads and builds the descriptor at path. Relative resource paths are
// taken from the descriptor's directory.
func (l *Loader) Load(path string) (*report.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor: %w", err)
	}
	return l.Parse(data, filepath.Dir(path))
}

// Parse decodes data and builds the report.
func (l *Loader) Parse(data []byte, baseDir string) (*report.Report, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errs.Validation("parsing descriptor: %w", err)
	}
	return l.Build(&f, baseDir)
}

// Build turns a decoded descriptor into a report.
func (l *Loader) Build(f *File, baseDir string) (*report.Report, error) {
	b := builder{resolver: l.Resolver, baseDir: baseDir, root: l.Root, confined: l.Confined}
	return b.build(f)
}

func resolvePath(baseDir, p string) string {
	if filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}

// confine resolves p below root, following symlinks, and rejects anything
// that lands outside it.
func confine(root, p string) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", errs.Validation("report resources are disabled: no resource directory configured")
	}
	if !filepath.IsLocal(p) {
		return "", errs.Validation("report resource path %q must be relative to the resource directory", p)
	}
	base, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", errs.Validation("resource directory %s: %w", root, err)
	}
	target, err := filepath.EvalSymlinks(filepath.Join(base, p))
	if err != nil {
		return "", errs.Validation("report resource %s: %w", p, err)
	}
	rel, err := filepath.Rel(base, target)
	if err != nil || !filepath.IsLocal(rel) {
		return "", errs.Validation("report resource %q escapes the resource directory", p)
	}
	return target, nil
}

// resourcePath applies confinement and only lets regular files through.
func (b builder) resourcePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", errs.Validation("report resource path must not be empty")
	}
	path := resolvePath(b.baseDir, p)
	if b.confined {
		var err error
		if path, err = confine(b.root, p); err != nil {
			return "", err
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", errs.Validation("report resource %s: %w", p, err)
	}
	if !info.Mode().IsRegular() {
		return "", errs.Validation("report resource %s is not a regular file", p)
	}
	return path, nil
}
