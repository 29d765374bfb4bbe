package datasource

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/rreport/internal/enum"
	"github.com/dharsanguruparan/rreport/internal/errs"
)

func newParent() *etree.Element {
	return etree.NewDocument().CreateElement(Element)
}

func TestServerSchemes(t *testing.T) {
	httpVariants := []*Server{NewJSONHTTP(), NewXMLHTTP()}
	for _, s := range httpVariants {
		assert.ErrorIs(t, s.SetURL("https://x"), errs.ErrValidation, s.Kind())
		assert.NoError(t, s.SetURL("http://x"), s.Kind())
		assert.NoError(t, s.SetURL("HTTP://X/feed"), s.Kind())
	}
	httpsVariants := []*Server{NewJSONHTTPS(), NewXMLHTTPS()}
	for _, s := range httpsVariants {
		assert.NoError(t, s.SetURL("https://x"), s.Kind())
		assert.ErrorIs(t, s.SetURL("http://x"), errs.ErrValidation, s.Kind())
		assert.ErrorIs(t, s.SetURL("ftp://x"), errs.ErrValidation, s.Kind())
	}
}

func TestServerSetURLIsAtomic(t *testing.T) {
	s := NewXMLHTTPS()
	require.NoError(t, s.SetURL("https://feed.example/data.xml"))
	require.Error(t, s.SetURL("http://feed.example/data.xml"))
	assert.Equal(t, "https://feed.example/data.xml", s.URL())

	require.NoError(t, s.SetURL(""))
	assert.Empty(t, s.URL())
}

func TestZeroServerRejectsAnyURL(t *testing.T) {
	var s Server
	assert.ErrorIs(t, s.SetURL("ftp://x"), errs.ErrValidation)
	assert.ErrorIs(t, s.SetURL("http://x"), errs.ErrValidation)
	assert.Empty(t, s.URL())
	assert.NoError(t, s.SetURL(""))
}

func TestNewServerRejectsNonHTTPKinds(t *testing.T) {
	_, err := NewServer(KindDatabase)
	assert.ErrorIs(t, err, errs.ErrValidation)
	s, err := NewServer(KindXMLHTTP)
	require.NoError(t, err)
	assert.Equal(t, KindXMLHTTP, s.Kind())
}

func TestServerWireNode(t *testing.T) {
	s := NewJSONHTTPS()
	parent := newParent()
	assert.ErrorIs(t, s.WireNode(parent), errs.ErrSerialization, "url missing")

	require.NoError(t, s.SetURL("https://api.example/rows"))
	assert.ErrorIs(t, s.WireNode(parent), errs.ErrSerialization, "request type missing")
	assert.Empty(t, parent.ChildElements())

	require.NoError(t, s.SetRequestType(enum.RequestPOST))
	s.SetDatePattern("yyyy-MM-dd")
	require.NoError(t, s.WireNode(parent))

	el := parent.SelectElement("jsonhttps")
	require.NotNil(t, el)
	assert.Equal(t, "https://api.example/rows", el.SelectElement("url").Text())
	assert.Equal(t, "POST", el.SelectElement("type").Text())
	assert.Equal(t, "yyyy-MM-dd", el.SelectElement("datePattern").Text())
	assert.Nil(t, el.SelectElement("numberPattern"))
}

func TestServerFillRequest(t *testing.T) {
	s := NewXMLHTTP()
	require.NoError(t, s.SetURL("http://feed/x.xml"))
	require.NoError(t, s.SetRequestType(enum.RequestGET))

	payload := map[string]any{}
	require.NoError(t, s.FillRequest(payload))
	assert.Equal(t, map[string]any{
		"XmlHttp": map[string]any{"url": "http://feed/x.xml", "type": "GET"},
	}, payload[RequestKey])
}

func TestDatabaseRequiresDriver(t *testing.T) {
	d := NewDatabase()
	require.NoError(t, d.SetConnectionString("jdbc:postgresql://db/app"))
	d.SetUser("report")
	d.SetPassword("secret")
	assert.ErrorIs(t, d.WireNode(newParent()), errs.ErrSerialization)

	d = NewDatabase()
	require.NoError(t, d.SetDriver("org.postgresql.Driver"))
	assert.ErrorIs(t, d.WireNode(newParent()), errs.ErrSerialization)
}

func TestDatabaseSettersRejectBlank(t *testing.T) {
	d := NewDatabase()
	require.NoError(t, d.SetDriver("org.postgresql.Driver"))
	assert.ErrorIs(t, d.SetDriver(" "), errs.ErrValidation)
	assert.ErrorIs(t, d.SetConnectionString(""), errs.ErrValidation)
	assert.Equal(t, "org.postgresql.Driver", d.Driver())
}

func TestDatabaseWireNodeDefaults(t *testing.T) {
	d := NewDatabase()
	require.NoError(t, d.SetConnectionString("jdbc:mysql://db/app"))
	require.NoError(t, d.SetDriver("com.mysql.cj.jdbc.Driver"))

	parent := newParent()
	require.NoError(t, d.WireNode(parent))
	el := parent.SelectElement("database")
	require.NotNil(t, el)
	assert.Equal(t, "jdbc:mysql://db/app", el.SelectElement("connectionString").Text())
	assert.Equal(t, "com.mysql.cj.jdbc.Driver", el.SelectElement("driver").Text())
	require.NotNil(t, el.SelectElement("user"))
	assert.Equal(t, "", el.SelectElement("user").Text())
	require.NotNil(t, el.SelectElement("password"))

	payload := map[string]any{}
	require.NoError(t, d.FillRequest(payload))
	fields := payload[RequestKey].(map[string]any)["Database"].(map[string]any)
	assert.NotContains(t, fields, "user", "unset fields stay out of the payload")
	assert.Equal(t, "com.mysql.cj.jdbc.Driver", fields["driver"])
}

func TestJSONFile(t *testing.T) {
	j := NewJSONFile()
	assert.ErrorIs(t, j.SetJSON("{not json"), errs.ErrValidation)
	require.NoError(t, j.SetJSON(`{"rows":[{"a":1}]}`))
	assert.ErrorIs(t, j.WireNode(newParent()), errs.ErrSerialization)

	payload := map[string]any{}
	require.NoError(t, j.FillRequest(payload))
	assert.Equal(t, map[string]any{
		"JsonFile": map[string]any{"json": `{"rows":[{"a":1}]}`},
	}, payload[RequestKey])

	_, ok := ElementOf(KindJSONFile)
	assert.False(t, ok)
	assert.ErrorIs(t, NewJSONFile().FillRequest(map[string]any{}), errs.ErrSerialization)
}
