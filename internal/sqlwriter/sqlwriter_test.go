package sqlwriter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringLiteralPlain(t *testing.T) {
	assert.Equal(t, "''", StringLiteral(""))
	assert.Equal(t, "'hello world'", StringLiteral("hello world"))
}

func TestStringLiteralDoublesQuotes(t *testing.T) {
	assert.Equal(t, "'it''s here'", StringLiteral("it's here"))
}

func TestStringLiteralBackslashUsesEForm(t *testing.T) {
	assert.Equal(t, `E'a\\b'`, StringLiteral(`a\b`))
}

func TestStringLiteralBackslashAndQuoteTogether(t *testing.T) {
	assert.Equal(t, `E'it''s a\\test'`, StringLiteral(`it's a\test`))
}

func TestQuoteIdentifierSimpleStaysBare(t *testing.T) {
	assert.Equal(t, "foo", QuoteIdentifier("foo"))
}

func TestQuoteIdentifierSpaceIsQuoted(t *testing.T) {
	assert.Equal(t, `"C 1"`, QuoteIdentifier("C 1"))
}

func TestWriteQualifiedIdentSkipsPgCatalog(t *testing.T) {
	buf := New()
	buf.WriteQualifiedIdent("pg_catalog", "int4pl")
	assert.Equal(t, "int4pl", buf.String())
}

func TestWriteQualifiedIdentQuotesSchema(t *testing.T) {
	buf := New()
	buf.WriteQualifiedIdent("S 1", "T 1")
	assert.Equal(t, `"S 1"."T 1"`, buf.String())
}

func TestBufferChaining(t *testing.T) {
	buf := New()
	buf.WriteString("SELECT ").WriteInt(1).WriteByte(' ').WriteIdent("x")
	assert.Equal(t, "SELECT 1 x", buf.String())
	assert.Equal(t, buf.Len(), len(buf.String()))
}
