package datasource

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/dharsanguruparan/rreport/internal/errs"
	"github.com/dharsanguruparan/rreport/internal/wire"
)

const (
	fieldConnectionString = "connectionString"
	fieldDriver           = "driver"
	fieldUser             = "user"
	fieldPassword         = "password"
)

// Database is a JDBC connection the engine opens to run the report query.
type Database struct {
	connectionString string
	driver           string
	user             string
	password         string
	userSet          bool
	passwordSet      bool
}

// NewDatabase returns an empty database datasource.
func NewDatabase() *Database { return &Database{} }

// Kind implements Datasource.
func (d *Database) Kind() Kind { return KindDatabase }

// ConnectionString returns the JDBC URL.
func (d *Database) ConnectionString() string { return d.connectionString }

// SetConnectionString sets the JDBC URL, e.g. jdbc:postgresql://db/app.
func (d *Database) SetConnectionString(s string) error {
	if strings.TrimSpace(s) == "" {
		return errs.Validation("database connection string must not be empty")
	}
	d.connectionString = s
	return nil
}

// Driver returns the JDBC driver class.
func (d *Database) Driver() string { return d.driver }

// SetDriver sets the JDBC driver class, e.g. org.postgresql.Driver.
func (d *Database) SetDriver(s string) error {
	if strings.TrimSpace(s) == "" {
		return errs.Validation("database driver must not be empty")
	}
	d.driver = s
	return nil
}

// User returns the database user.
func (d *Database) User() string { return d.user }

// SetUser sets the database user.
func (d *Database) SetUser(s string) {
	d.user = s
	d.userSet = true
}

// Password returns the database password.
func (d *Database) Password() string { return d.password }

// SetPassword sets the database password.
func (d *Database) SetPassword(s string) {
	d.password = s
	d.passwordSet = true
}

// WireNode implements Datasource. User and password are always emitted,
// empty when unset.
func (d *Database) WireNode(parent *etree.Element) error {
	if d.driver == "" {
		return errs.Serialization("database driver is not set")
	}
	if d.connectionString == "" {
		return errs.Serialization("database connection string is not set")
	}
	el := parent.CreateElement(elements[KindDatabase])
	wire.CData(el, fieldConnectionString, d.connectionString)
	wire.CData(el, fieldDriver, d.driver)
	wire.CData(el, fieldUser, d.user)
	wire.CData(el, fieldPassword, d.password)
	return nil
}

// FillRequest implements Datasource.
func (d *Database) FillRequest(payload map[string]any) error {
	fields := map[string]any{}
	if d.connectionString != "" {
		fields[fieldConnectionString] = d.connectionString
	}
	if d.driver != "" {
		fields[fieldDriver] = d.driver
	}
	if d.userSet {
		fields[fieldUser] = d.user
	}
	if d.passwordSet {
		fields[fieldPassword] = d.password
	}
	fill(payload, KindDatabase, fields)
	return nil
}
