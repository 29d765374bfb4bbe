// Package dbcheck verifies that a Database datasource is reachable before a
// report is handed to the engine. Only PostgreSQL JDBC URLs are supported.
package dbcheck

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/dharsanguruparan/rreport/internal/datasource"
	"github.com/dharsanguruparan/rreport/internal/logger"
)

const jdbcPostgres = "jdbc:postgresql:"

// DefaultSSLMode is used when the JDBC URL names no sslmode. lib/pq has no
// "prefer" mode, and its own default ("require") would break plain servers.
const DefaultSSLMode = "disable"

// ErrUnsupported is returned for JDBC URLs of other databases.
var ErrUnsupported = errors.New("unsupported jdbc url")

// Info is what a successful probe learned about the server.
type Info struct {
	Database string
	Version  string
	Latency  time.Duration
	// SSLMode is the mode used for the connection. SSLModeDefaulted reports
	// that the JDBC URL did not name one.
	SSLMode          string
	SSLModeDefaulted bool
}

// DSN converts the datasource's JDBC connection string into a lib/pq URL.
// User and password from the datasource override those in the JDBC URL.
// A missing sslmode becomes DefaultSSLMode.
func DSN(ds *datasource.Database) (string, error) {
	dsn, _, err := buildDSN(ds)
	return dsn, err
}

// buildDSN also reports whether sslmode was filled in.
func buildDSN(ds *datasource.Database) (string, bool, error) {
	conn := strings.TrimSpace(ds.ConnectionString())
	if !strings.HasPrefix(strings.ToLower(conn), jdbcPostgres) {
		return "", false, fmt.Errorf("%w: %q", ErrUnsupported, conn)
	}
	u, err := url.Parse("postgres:" + conn[len(jdbcPostgres):])
	if err != nil {
		return "", false, fmt.Errorf("parse jdbc url: %w", err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("parse jdbc url: missing host in %q", conn)
	}

	q := u.Query()
	user, password := ds.User(), ds.Password()
	if user == "" {
		user = q.Get("user")
	}
	if password == "" {
		password = q.Get("password")
	}
	q.Del("user")
	q.Del("password")
	if user != "" {
		if password != "" {
			u.User = url.UserPassword(user, password)
		} else {
			u.User = url.User(user)
		}
	}
	defaulted := q.Get("sslmode") == ""
	if defaulted {
		q.Set("sslmode", DefaultSSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String(), defaulted, nil
}

// Probe runs the identification queries on an open handle.
func Probe(ctx context.Context, db *sqlx.DB) (*Info, error) {
	start := time.Now()
	info := &Info{}
	if err := db.GetContext(ctx, &info.Database, "SELECT current_database()"); err != nil {
		return nil, fmt.Errorf("query database name: %w", err)
	}
	if err := db.GetContext(ctx, &info.Version, "SELECT version()"); err != nil {
		return nil, fmt.Errorf("query server version: %w", err)
	}
	info.Latency = time.Since(start)
	return info, nil
}

// Check opens a connection for ds, probes it and closes it again.
func Check(ctx context.Context, ds *datasource.Database, log logger.Logger) (*Info, error) {
	dsn, defaulted, err := buildDSN(ds)
	if err != nil {
		return nil, err
	}
	if defaulted {
		log.Debugf("jdbc url has no sslmode, connecting with sslmode=%s", DefaultSSLMode)
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect datasource: %w", err)
	}
	defer db.Close()
	info, err := Probe(ctx, db)
	if err != nil {
		return nil, err
	}
	info.SSLMode, info.SSLModeDefaulted = sslMode(dsn), defaulted
	return info, nil
}

func sslMode(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return ""
	}
	return u.Query().Get("sslmode")
}
