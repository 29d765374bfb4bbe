package dbcheck

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/rreport/internal/datasource"
)

func newDatabase(t *testing.T, conn, user, password string) *datasource.Database {
	t.Helper()
	ds := datasource.NewDatabase()
	require.NoError(t, ds.SetConnectionString(conn))
	require.NoError(t, ds.SetDriver("org.postgresql.Driver"))
	if user != "" {
		ds.SetUser(user)
	}
	if password != "" {
		ds.SetPassword(password)
	}
	return ds
}

func TestDSN(t *testing.T) {
	cases := []struct {
		name, conn, user, password, want string
	}{
		{"plain", "jdbc:postgresql://db:5432/sales", "", "", "postgres://db:5432/sales?sslmode=disable"},
		{"datasource credentials", "jdbc:postgresql://db/sales", "report", "p@ss", "postgres://report:p%40ss@db/sales?sslmode=disable"},
		{"query credentials", "jdbc:postgresql://db/sales?user=ro&password=x&sslmode=require", "", "", "postgres://ro:x@db/sales?sslmode=require"},
		{"datasource wins", "jdbc:postgresql://db/sales?user=ro", "report", "", "postgres://report@db/sales?sslmode=disable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DSN(newDatabase(t, tc.conn, tc.user, tc.password))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDSNReportsDefaultedSSLMode(t *testing.T) {
	dsn, defaulted, err := buildDSN(newDatabase(t, "jdbc:postgresql://db/sales", "", ""))
	require.NoError(t, err)
	assert.True(t, defaulted)
	assert.Equal(t, DefaultSSLMode, sslMode(dsn))

	dsn, defaulted, err = buildDSN(newDatabase(t, "jdbc:postgresql://db/sales?sslmode=verify-full", "", ""))
	require.NoError(t, err)
	assert.False(t, defaulted)
	assert.Equal(t, "verify-full", sslMode(dsn))
}

func TestDSNRejectsOtherDatabases(t *testing.T) {
	_, err := DSN(newDatabase(t, "jdbc:mysql://db/sales", "", ""))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = DSN(newDatabase(t, "jdbc:postgresql:sales", "", ""))
	assert.Error(t, err)
}

func TestProbe(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "sqlmock")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT current_database()")).
		WillReturnRows(sqlmock.NewRows([]string{"current_database"}).AddRow("sales"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version()")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("PostgreSQL 16.2"))

	info, err := Probe(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, "sales", info.Database)
	assert.Equal(t, "PostgreSQL 16.2", info.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProbeQueryError(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	boom := errors.New("permission denied")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT current_database()")).WillReturnError(boom)

	_, err = Probe(context.Background(), sqlx.NewDb(raw, "sqlmock"))
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
