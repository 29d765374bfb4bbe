package enum

// Format is the output format of a report. The value doubles as the element
// name inside <reporttype>.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatCSV  Format = "csv"
	FormatXML  Format = "xml"
	FormatHTML Format = "html"
	FormatXLS  Format = "xls"
	FormatXLSX Format = "xlsx"
	FormatDOCX Format = "docx"
	FormatODS  Format = "ods"
	FormatODT  Format = "odt"
	FormatPPTX Format = "pptx"
	FormatRTF  Format = "rtf"
	FormatTEXT Format = "text"
	FormatJSON Format = "json"
)

var formats = newSet("report format",
	member[Format]{"PDF", FormatPDF},
	member[Format]{"CSV", FormatCSV},
	member[Format]{"XML", FormatXML},
	member[Format]{"HTML", FormatHTML},
	member[Format]{"XLS", FormatXLS},
	member[Format]{"XLSX", FormatXLSX},
	member[Format]{"DOCX", FormatDOCX},
	member[Format]{"ODS", FormatODS},
	member[Format]{"ODT", FormatODT},
	member[Format]{"PPTX", FormatPPTX},
	member[Format]{"RTF", FormatRTF},
	member[Format]{"TEXT", FormatTEXT},
	member[Format]{"JSON", FormatJSON},
)

// ParseFormat resolves a format by value or by name.
func ParseFormat(s string) (Format, error) { return formats.parse(s) }

// Formats lists every report format in declaration order.
func Formats() []Format { return formats.values() }

// Valid reports whether f is one of the declared formats.
func (f Format) Valid() bool { return formats.contains(f) }

// Name returns the constant name, e.g. "PDF".
func (f Format) Name() string { return formats.name(f) }

func (f Format) String() string { return string(f) }

// RequestType is the HTTP verb an HTTP datasource uses to fetch its feed.
type RequestType string

const (
	RequestGET  RequestType = "GET"
	RequestPOST RequestType = "POST"
)

var requestTypes = newSet("request type",
	member[RequestType]{"GET", RequestGET},
	member[RequestType]{"POST", RequestPOST},
)

// ParseRequestType resolves a request type by value or by name.
func ParseRequestType(s string) (RequestType, error) { return requestTypes.parse(s) }

// RequestTypes lists every request type.
func RequestTypes() []RequestType { return requestTypes.values() }

// Valid reports whether r is GET or POST.
func (r RequestType) Valid() bool { return requestTypes.contains(r) }

func (r RequestType) String() string { return string(r) }

// ParameterType is the Java-side type a report parameter is converted to.
type ParameterType string

const (
	ParamString     ParameterType = "string"
	ParamBool       ParameterType = "bool"
	ParamBoolean    ParameterType = "boolean"
	ParamDouble     ParameterType = "double"
	ParamFloat      ParameterType = "float"
	ParamInteger    ParameterType = "integer"
	ParamLong       ParameterType = "long"
	ParamShort      ParameterType = "short"
	ParamBigDecimal ParameterType = "bigdecimal"
	ParamDate       ParameterType = "date"
	ParamTime       ParameterType = "time"
	ParamSQLTime    ParameterType = "sqltime"
	ParamSQLDate    ParameterType = "sqldate"
	ParamTimestamp  ParameterType = "timestamp"
)

var parameterTypes = newSet("parameter type",
	member[ParameterType]{"STRING", ParamString},
	member[ParameterType]{"BOOL", ParamBool},
	member[ParameterType]{"BOOLEAN", ParamBoolean},
	member[ParameterType]{"DOUBLE", ParamDouble},
	member[ParameterType]{"FLOAT", ParamFloat},
	member[ParameterType]{"INTEGER", ParamInteger},
	member[ParameterType]{"LONG", ParamLong},
	member[ParameterType]{"SHORT", ParamShort},
	member[ParameterType]{"BIGDECIMAL", ParamBigDecimal},
	member[ParameterType]{"DATE", ParamDate},
	member[ParameterType]{"TIME", ParamTime},
	member[ParameterType]{"SQL_TIME", ParamSQLTime},
	member[ParameterType]{"SQL_DATE", ParamSQLDate},
	member[ParameterType]{"TIMESTAMP", ParamTimestamp},
)

// ParseParameterType resolves a parameter type by value or by name.
func ParseParameterType(s string) (ParameterType, error) { return parameterTypes.parse(s) }

// ParameterTypes lists every parameter type.
func ParameterTypes() []ParameterType { return parameterTypes.values() }

// Valid reports whether p is a declared parameter type.
func (p ParameterType) Valid() bool { return parameterTypes.contains(p) }

// IsDate reports whether values of this type need a format pattern.
func (p ParameterType) IsDate() bool { return p == ParamDate || p == ParamSQLDate }

func (p ParameterType) String() string { return string(p) }

// SignLevel is the PDF certification level of a signature.
type SignLevel string

const (
	SignNoChangesAllowed          SignLevel = "CERTIFIED_NO_CHANGES_ALLOWED"
	SignFormFilling               SignLevel = "CERTIFIED_FORM_FILLING"
	SignFormFillingAndAnnotations SignLevel = "CERTIFIED_FORM_FILLING_AND_ANNOTATIONS"
)

var signLevels = newSet("sign level",
	member[SignLevel]{"CERTIFIED_NO_CHANGES_ALLOWED", SignNoChangesAllowed},
	member[SignLevel]{"CERTIFIED_FORM_FILLING", SignFormFilling},
	member[SignLevel]{"CERTIFIED_FORM_FILLING_AND_ANNOTATIONS", SignFormFillingAndAnnotations},
)

// ParseSignLevel resolves a sign level by value or by name.
func ParseSignLevel(s string) (SignLevel, error) { return signLevels.parse(s) }

// SignLevels lists every sign level.
func SignLevels() []SignLevel { return signLevels.values() }

// Valid reports whether l is a declared sign level.
func (l SignLevel) Valid() bool { return signLevels.contains(l) }

func (l SignLevel) String() string { return string(l) }

// CertificateType identifies who issued the signing certificate.
type CertificateType string

const (
	CertSelfSigned     CertificateType = "SELF_SIGNED"
	CertVerisignSigned CertificateType = "VERISIGN_SIGNED"
	CertWincerSigned   CertificateType = "WINCER_SIGNED"
)

var certificateTypes = newSet("certificate type",
	member[CertificateType]{"SELF_SIGNED", CertSelfSigned},
	member[CertificateType]{"VERISIGN_SIGNED", CertVerisignSigned},
	member[CertificateType]{"WINCER_SIGNED", CertWincerSigned},
)

// ParseCertificateType resolves a certificate type by value or by name.
func ParseCertificateType(s string) (CertificateType, error) { return certificateTypes.parse(s) }

// CertificateTypes lists every certificate type.
func CertificateTypes() []CertificateType { return certificateTypes.values() }

// Valid reports whether c is a declared certificate type.
func (c CertificateType) Valid() bool { return certificateTypes.contains(c) }

func (c CertificateType) String() string { return string(c) }
