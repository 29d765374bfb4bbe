package schema

import (
	"strconv"
	"strings"

	"github.com/dharsanguruparan/rreport/internal/enum"
)

// textRule constrains the character data of an element or attribute.
type textRule int

const (
	textEmpty textRule = iota // whitespace only; used by container elements
	textAny
	textNonEmpty
	textNonNegativeInt
	textPositiveInt
	textBool
)

type attribute struct {
	name     string
	required bool
	rule     textRule
}

type particle struct {
	node     *node
	min, max int // max < 0 means unbounded
}

// node is one element declaration of the content model.
type node struct {
	name     string
	rule     textRule
	values   []string // closed set for the text, nil for free text
	prefixes []string // accepted case-insensitive text prefixes
	attrs    []attribute
	children []particle
	choice   bool
}

func one(n *node) particle      { return particle{node: n, min: 1, max: 1} }
func optional(n *node) particle { return particle{node: n, min: 0, max: 1} }
func many(n *node) particle     { return particle{node: n, min: 1, max: -1} }

func leaf(name string, rule textRule) *node { return &node{name: name, rule: rule} }

func enumLeaf[T ~string](name string, values []T) *node {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return &node{name: name, rule: textNonEmpty, values: out}
}

func sequence(name string, children ...particle) *node {
	return &node{name: name, rule: textEmpty, children: children}
}

func choice(name string, options ...*node) *node {
	children := make([]particle, len(options))
	for i, o := range options {
		children[i] = one(o)
	}
	return &node{name: name, rule: textEmpty, children: children, choice: true}
}

func server(name, scheme string) *node {
	url := leaf("url", textNonEmpty)
	url.prefixes = []string{scheme}
	return sequence(name,
		one(url),
		one(enumLeaf("type", enum.RequestTypes())),
		optional(leaf("datePattern", textAny)),
		optional(leaf("numberPattern", textAny)),
	)
}

func fileFormat(f enum.Format) *node {
	n := sequence(f.String(), one(leaf("outputfile", textNonEmpty)))
	if f == enum.FormatPDF {
		n.children = append(n.children, optional(signNode()))
	}
	return n
}

func signNode() *node {
	certificate := sequence("certificate",
		one(leaf("name", textNonEmpty)),
		one(leaf("password", textAny)),
	)
	keystore := sequence("keystore",
		one(leaf("path", textNonEmpty)),
		one(leaf("password", textAny)),
		one(certificate),
	)
	position := sequence("position",
		one(leaf("x", textNonNegativeInt)),
		one(leaf("y", textNonNegativeInt)),
		one(leaf("width", textNonNegativeInt)),
		one(leaf("height", textNonNegativeInt)),
		one(leaf("rotation", textNonNegativeInt)),
	)
	rectangle := sequence("rectangle",
		one(leaf("visible", textBool)),
		one(position),
	)
	return sequence("sign",
		one(keystore),
		one(enumLeaf("level", enum.SignLevels())),
		one(enumLeaf("type", enum.CertificateTypes())),
		optional(rectangle),
		one(leaf("location", textAny)),
		one(leaf("reason", textAny)),
	)
}

// root mirrors rreport_1_1.xsd.
var root = func() *node {
	jasper := leaf("jasperfile", textNonEmpty)
	jasper.attrs = []attribute{{name: "copies", required: true, rule: textPositiveInt}}

	formats := make([]*node, 0, len(enum.Formats()))
	for _, f := range enum.Formats() {
		formats = append(formats, fileFormat(f))
	}

	database := sequence("database",
		one(leaf("connectionString", textNonEmpty)),
		one(leaf("driver", textNonEmpty)),
		one(leaf("user", textAny)),
		one(leaf("password", textAny)),
	)
	datasource := choice("datasource",
		database,
		server("jsonhttp", "http://"),
		server("jsonhttps", "https://"),
		server("xmlhttp", "http://"),
		server("xmlhttps", "https://"),
	)

	value := leaf("value", textNonEmpty)
	value.attrs = []attribute{{name: "format", rule: textNonEmpty}}
	parameter := sequence("parameter",
		one(enumLeaf("type", enum.ParameterTypes())),
		one(leaf("name", textNonEmpty)),
		one(value),
	)

	return sequence(RootElement,
		one(jasper),
		one(choice("reporttype", formats...)),
		one(datasource),
		optional(sequence("parameters", many(parameter))),
	)
}()

// check returns a problem description, or "" when text satisfies the rule.
func (n *node) check(text string) string {
	switch n.rule {
	case textEmpty:
		if strings.TrimSpace(text) != "" {
			return "unexpected character data"
		}
		return ""
	case textAny:
		return ""
	}
	if msg := checkRule(n.rule, text); msg != "" {
		return msg
	}
	if n.values != nil && !contains(n.values, text) {
		return "value " + strconv.Quote(text) + " is not one of " + strings.Join(n.values, ", ")
	}
	if n.prefixes != nil && !hasPrefixFold(text, n.prefixes) {
		return "value " + strconv.Quote(text) + " must start with " + strings.Join(n.prefixes, " or ")
	}
	return ""
}

func checkRule(rule textRule, text string) string {
	switch rule {
	case textNonEmpty:
		if text == "" {
			return "value must not be empty"
		}
	case textNonNegativeInt, textPositiveInt:
		v, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return "value " + strconv.Quote(text) + " is not an integer"
		}
		if v < 0 || (rule == textPositiveInt && v == 0) {
			return "value " + strconv.Quote(text) + " is out of range"
		}
	case textBool:
		switch strings.TrimSpace(text) {
		case "true", "false", "1", "0":
		default:
			return "value " + strconv.Quote(text) + " is not a boolean"
		}
	}
	return ""
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func hasPrefixFold(text string, prefixes []string) bool {
	for _, p := range prefixes {
		if len(text) >= len(p) && strings.EqualFold(text[:len(p)], p) {
			return true
		}
	}
	return false
}
