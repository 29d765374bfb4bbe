package descriptor

import (
	"fmt"
	"strings"

	"github.com/dharsanguruparan/rreport/internal/datasource"
	"github.com/dharsanguruparan/rreport/internal/enum"
	"github.com/dharsanguruparan/rreport/internal/errs"
	"github.com/dharsanguruparan/rreport/internal/parameter"
	"github.com/dharsanguruparan/rreport/internal/report"
	"github.com/dharsanguruparan/rreport/internal/resource"
	"github.com/dharsanguruparan/rreport/internal/sign"
)

// permissionNames maps descriptor permission names to bits.
var permissionNames = map[string]report.Permission{
	"printing":          report.AllowPrinting,
	"degradedprinting":  report.AllowDegradedPrinting,
	"modifycontents":    report.AllowModifyContents,
	"copy":              report.AllowCopy,
	"modifyannotations": report.AllowModifyAnnotations,
	"fillin":            report.AllowFillIn,
	"screenreaders":     report.AllowScreenReaders,
	"assembly":          report.AllowAssembly,
}

type builder struct {
	resolver resource.Resolver
	baseDir  string
	root     string
	confined bool
}

func (b builder) build(f *File) (*report.Report, error) {
	format, err := enum.ParseFormat(f.Format)
	if err != nil {
		return nil, err
	}
	r, err := report.New(format)
	if err != nil {
		return nil, err
	}

	if f.JasperFile.Path != "" {
		copies := f.JasperFile.Copies
		if copies == 0 {
			copies = 1
		}
		jf, err := report.NewJasperFile(f.JasperFile.Path, copies)
		if err != nil {
			return nil, err
		}
		r.SetJasperFile(jf)
	}
	if f.OutputFile != "" {
		if err := r.SetOutputFile(f.OutputFile); err != nil {
			return nil, err
		}
	}
	if f.Datasource != nil {
		ds, err := buildDatasource(f.Datasource)
		if err != nil {
			return nil, err
		}
		r.SetDatasource(ds)
	}
	for i, p := range f.Parameters {
		typ, err := enum.ParseParameterType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		param, err := parameter.New(typ, p.Name, p.Value, p.Format)
		if err != nil {
			return nil, err
		}
		if _, err := r.AddParameter(param); err != nil {
			return nil, err
		}
	}
	if f.Sign != nil {
		s, err := buildSign(f.Sign)
		if err != nil {
			return nil, err
		}
		if err := r.SetSign(s); err != nil {
			return nil, err
		}
	}
	if f.Metadata != nil {
		m := report.Metadata(*f.Metadata)
		r.SetMetadata(&m)
	}
	if f.PdfProperties != nil {
		props, err := buildPdfProperties(f.PdfProperties)
		if err != nil {
			return nil, err
		}
		if err := r.SetPdfProperties(props); err != nil {
			return nil, err
		}
	}
	for _, entry := range f.Resources {
		path, err := b.resourcePath(entry.Path)
		if err != nil {
			return nil, err
		}
		res, err := resource.FromFile(entry.Name, path, b.resolver)
		if err != nil {
			return nil, err
		}
		if err := r.AddResource(res); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func buildDatasource(d *Datasource) (datasource.Datasource, error) {
	switch kind := datasource.Kind(d.Kind); {
	case strings.EqualFold(d.Kind, string(datasource.KindDatabase)):
		db := datasource.NewDatabase()
		if err := db.SetConnectionString(d.ConnectionString); err != nil {
			return nil, err
		}
		if err := db.SetDriver(d.Driver); err != nil {
			return nil, err
		}
		if d.User != "" {
			db.SetUser(d.User)
		}
		if d.Password != "" {
			db.SetPassword(d.Password)
		}
		return db, nil
	case strings.EqualFold(d.Kind, string(datasource.KindJSONFile)):
		jf := datasource.NewJSONFile()
		if err := jf.SetJSON(d.JSON); err != nil {
			return nil, err
		}
		jf.SetDatePattern(d.DatePattern)
		jf.SetNumberPattern(d.NumberPattern)
		return jf, nil
	default:
		s, err := datasource.NewServer(canonicalKind(kind))
		if err != nil {
			return nil, err
		}
		if err := s.SetURL(d.URL); err != nil {
			return nil, err
		}
		if d.RequestType != "" {
			rt, err := enum.ParseRequestType(d.RequestType)
			if err != nil {
				return nil, err
			}
			if err := s.SetRequestType(rt); err != nil {
				return nil, err
			}
		}
		s.SetDatePattern(d.DatePattern)
		s.SetNumberPattern(d.NumberPattern)
		return s, nil
	}
}

// canonicalKind accepts any casing of an HTTP datasource kind.
func canonicalKind(k datasource.Kind) datasource.Kind {
	for _, known := range []datasource.Kind{
		datasource.KindJSONHTTP, datasource.KindJSONHTTPS,
		datasource.KindXMLHTTP, datasource.KindXMLHTTPS,
	} {
		if strings.EqualFold(string(k), string(known)) {
			return known
		}
	}
	return k
}

func buildSign(d *Sign) (*sign.Sign, error) {
	level, err := enum.ParseSignLevel(d.Level)
	if err != nil {
		return nil, err
	}
	typ, err := enum.ParseCertificateType(d.Type)
	if err != nil {
		return nil, err
	}
	s, err := sign.New(level, typ)
	if err != nil {
		return nil, err
	}
	cert, err := sign.NewCertificate(d.Keystore.Certificate.Name, d.Keystore.Certificate.Password)
	if err != nil {
		return nil, err
	}
	ks, err := sign.NewKeystore(d.Keystore.Path, d.Keystore.Password, cert)
	if err != nil {
		return nil, err
	}
	s.SetKeystore(ks)
	s.SetLocation(d.Location)
	s.SetReason(d.Reason)
	if d.Rectangle != nil {
		rect := sign.NewRectangle()
		rect.SetVisible(d.Rectangle.Visible)
		for _, set := range []struct {
			fn func(int) error
			v  int
		}{
			{rect.SetX, d.Rectangle.X},
			{rect.SetY, d.Rectangle.Y},
			{rect.SetWidth, d.Rectangle.Width},
			{rect.SetHeight, d.Rectangle.Height},
			{rect.SetRotation, d.Rectangle.Rotation},
		} {
			if err := set.fn(set.v); err != nil {
				return nil, err
			}
		}
		s.SetRectangle(rect)
	}
	return s, nil
}

func buildPdfProperties(d *PdfProperties) (*report.PdfProperties, error) {
	props := report.NewPdfProperties()
	props.SetUserPassword(d.UserPassword)
	props.SetOwnerPassword(d.OwnerPassword)
	props.SetJavascript(d.Javascript)
	var perm report.Permission
	for _, name := range d.Permissions {
		key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(name))
		bit, ok := permissionNames[key]
		if !ok {
			return nil, errs.Validation("unknown pdf permission %q", name)
		}
		perm |= bit
	}
	if err := props.SetPermissions(perm); err != nil {
		return nil, err
	}
	return props, nil
}
