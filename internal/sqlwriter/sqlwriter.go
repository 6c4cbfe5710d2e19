// Package sqlwriter implements the append-only String Buffer of spec
// §4.2: a small text buffer with identifier-quoting and SQL
// string-literal-escaping primitives.
package sqlwriter

import (
	"strconv"
	"strings"
)

// Buffer is the caller-owned, append-only output buffer. Builders must
// not retain a reference to it after returning (spec §5, §9 design
// notes); it holds only the scratch strings.Builder, nothing else.
type Buffer struct {
	b strings.Builder
}

// New returns an empty Buffer.
func New() *Buffer { return &Buffer{} }

// String returns the buffer's contents so far.
func (buf *Buffer) String() string { return buf.b.String() }

// Len reports the number of bytes written so far.
func (buf *Buffer) Len() int { return buf.b.Len() }

// WriteString appends s verbatim.
func (buf *Buffer) WriteString(s string) *Buffer {
	buf.b.WriteString(s)
	return buf
}

// WriteByte appends a single byte.
func (buf *Buffer) WriteByte(c byte) *Buffer {
	buf.b.WriteByte(c)
	return buf
}

// WriteInt appends the base-10 representation of n.
func (buf *Buffer) WriteInt(n int) *Buffer {
	buf.b.WriteString(strconv.Itoa(n))
	return buf
}

// WriteIdent appends name as a SQL identifier, double-quoted only where
// QuoteIdentifier requires it.
func (buf *Buffer) WriteIdent(name string) *Buffer {
	buf.b.WriteString(QuoteIdentifier(name))
	return buf
}

// WriteQualifiedIdent appends schema.name, quoting each part, unless
// schema is "pg_catalog" (per spec §6: identifiers outside pg_catalog
// are schema-qualified, pg_catalog ones are bare).
func (buf *Buffer) WriteQualifiedIdent(schema, name string) *Buffer {
	if schema != "" && schema != "pg_catalog" {
		buf.WriteIdent(schema)
		buf.b.WriteByte('.')
	}
	buf.WriteIdent(name)
	return buf
}

// WriteStringLiteral appends s as a SQL string literal, using the
// standard '...' form, or the E'...' form when s contains a backslash
// (spec §4.2, §6). Embedded single quotes are always doubled; embedded
// backslashes are doubled only in E-mode.
func (buf *Buffer) WriteStringLiteral(s string) *Buffer {
	buf.b.WriteString(StringLiteral(s))
	return buf
}

// reservedWords is the subset of Postgres's reserved keyword list that
// this module's own generated SQL can plausibly collide with (relation,
// schema and column names coming back from a live catalog). It is not
// the full list from postgres' kwlist.h; quote_ident itself only needs
// to be conservative, not exhaustive, since over-quoting is harmless.
var reservedWords = map[string]bool{
	"all": true, "analyze": true, "and": true, "any": true, "as": true,
	"asc": true, "between": true, "by": true, "case": true, "check": true,
	"column": true, "constraint": true, "create": true, "default": true,
	"desc": true, "distinct": true, "drop": true, "else": true, "end": true,
	"false": true, "for": true, "foreign": true, "from": true,
	"group": true, "having": true, "in": true, "into": true, "is": true,
	"join": true, "key": true, "like": true, "limit": true, "not": true,
	"null": true, "offset": true, "on": true, "or": true, "order": true,
	"primary": true, "references": true, "select": true, "table": true,
	"then": true, "true": true, "union": true, "unique": true,
	"user": true, "using": true, "values": true, "when": true,
	"where": true,
}

// QuoteIdentifier quotes name as a Postgres identifier, matching the
// host's quote_identifier: lowercase simple identifiers that are not
// reserved words are left bare, everything else is double-quoted with
// embedded quotes doubled. Matching the host's own formatting (rather
// than unconditionally quoting) is what lets the idempotence property
// of spec §8 hold: deparsed SQL should read the way the host itself
// would print it back.
func QuoteIdentifier(name string) string {
	if isBareIdentifier(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func isBareIdentifier(name string) bool {
	if name == "" || reservedWords[name] {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c == '_':
		case c >= '0' && c <= '9', c == '$':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// StringLiteral renders s as a SQL string literal per spec §4.2/§6.
func StringLiteral(s string) string {
	if !strings.Contains(s, `\`) {
		return quoteSingle(s, false)
	}
	return "E" + quoteSingle(s, true)
}

func quoteSingle(s string, doubleBackslash bool) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\'':
			sb.WriteString("''")
		case '\\':
			if doubleBackslash {
				sb.WriteString(`\\`)
			} else {
				sb.WriteByte(c)
			}
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}
