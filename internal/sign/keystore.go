package sign

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/dharsanguruparan/rreport/internal/errs"
	"github.com/dharsanguruparan/rreport/internal/wire"
)

const (
	elementKeystore    = "keystore"
	elementCertificate = "certificate"
	elementPath        = "path"
	elementPassword    = "password"
	elementName        = "name"
)

// Certificate names the key entry inside a keystore.
type Certificate struct {
	name     string
	password string
}

// NewCertificate builds a Certificate; name must not be blank.
func NewCertificate(name, password string) (*Certificate, error) {
	c := &Certificate{password: password}
	if err := c.SetName(name); err != nil {
		return nil, err
	}
	return c, nil
}

// Name returns the certificate alias.
func (c *Certificate) Name() string { return c.name }

// SetName sets the certificate alias.
func (c *Certificate) SetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errs.Validation("certificate name must not be empty")
	}
	c.name = name
	return nil
}

// Password returns the certificate password.
func (c *Certificate) Password() string { return c.password }

// SetPassword sets the certificate password.
func (c *Certificate) SetPassword(p string) { c.password = p }

// WireNode appends <certificate>.
func (c *Certificate) WireNode(parent *etree.Element) error {
	if c.name == "" {
		return errs.Serialization("certificate name is not set")
	}
	el := parent.CreateElement(elementCertificate)
	wire.CData(el, elementName, c.name)
	wire.CData(el, elementPassword, c.password)
	return nil
}

func (c *Certificate) request() map[string]any {
	return map[string]any{elementName: c.name, elementPassword: c.password}
}

// Keystore is the Java keystore holding the signing certificate.
type Keystore struct {
	path        string
	password    string
	certificate *Certificate
}

// NewKeystore builds a Keystore; path must not be blank.
func NewKeystore(path, password string, cert *Certificate) (*Keystore, error) {
	k := &Keystore{password: password, certificate: cert}
	if err := k.SetPath(path); err != nil {
		return nil, err
	}
	return k, nil
}

// Path returns the keystore file path.
func (k *Keystore) Path() string { return k.path }

// SetPath sets the keystore file path.
func (k *Keystore) SetPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errs.Validation("keystore path must not be empty")
	}
	k.path = path
	return nil
}

// Password returns the keystore password.
func (k *Keystore) Password() string { return k.password }

// SetPassword sets the keystore password.
func (k *Keystore) SetPassword(p string) { k.password = p }

// Certificate returns the certificate, nil when unset.
func (k *Keystore) Certificate() *Certificate { return k.certificate }

// SetCertificate sets the certificate.
func (k *Keystore) SetCertificate(c *Certificate) { k.certificate = c }

// WireNode appends <keystore>; path and certificate are required.
func (k *Keystore) WireNode(parent *etree.Element) error {
	if k.path == "" {
		return errs.Serialization("keystore path is not set")
	}
	if k.certificate == nil {
		return errs.Serialization("keystore certificate is not set")
	}
	el := etree.NewElement(elementKeystore)
	wire.CData(el, elementPath, k.path)
	wire.CData(el, elementPassword, k.password)
	if err := k.certificate.WireNode(el); err != nil {
		return err
	}
	parent.AddChild(el)
	return nil
}

func (k *Keystore) request() map[string]any {
	out := map[string]any{elementPath: k.path, elementPassword: k.password}
	if k.certificate != nil {
		out[elementCertificate] = k.certificate.request()
	}
	return out
}
