// Package catalog defines the Catalog Oracle interface consumed by the
// safety walker, deparser and statement builders (spec §4.1), and ships
// two implementations: an in-memory Fake, built node by node in unit
// tests or loaded from a YAML document by LoadYAMLFixture (the same
// library, gopkg.in/yaml.v3, the teacher's
// database.ParseGeneratorConfigString uses for its own config), and
// PostgresOracle, which queries a live server's catalogs.
//
// Never embed catalog access inside the walker or deparser directly:
// passing this interface around keeps both testable without a live
// database (see spec §9 design notes).
package catalog

import (
	"fmt"

	"github.com/sqldef/pgfdwplan/internal/expr"
	"github.com/sqldef/pgfdwplan/internal/oid"
)

// OperatorKind says whether an operator is used prefix, postfix or infix.
type OperatorKind int

const (
	OperatorInfix OperatorKind = iota
	OperatorPrefix
	OperatorPostfix
)

// OperatorInfo is what the deparser needs to render an operator.
type OperatorInfo struct {
	Name         string
	NamespaceOID oid.OID
	Kind         OperatorKind
}

// FunctionInfo is what the deparser needs to render a function call.
type FunctionInfo struct {
	Name         string
	NamespaceOID oid.OID
}

// Option is a single FDW option (schema_name, table_name, column_name,
// use_remote_estimate, ...).
type Option struct {
	Name  string
	Value string
}

// LookupError is returned by a catalog miss. Per spec §7 it is always
// fatal; no admit/deparse path tolerates it, so callers should propagate
// it rather than fall back to a default.
type LookupError struct {
	Kind string // "function", "operator", "type", "relation", ...
	OID  oid.OID
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("cache lookup failed for %s %d", e.Kind, e.OID)
}

// Oracle is the metadata surface the core reads from the host. All
// methods are expected to be backed by catalog caches on the host side;
// only Oracle implementations may block on catalog I/O (spec §5).
type Oracle interface {
	// IsBuiltin reports whether oid is below the built-in cutoff.
	IsBuiltin(o oid.OID) bool

	GetNamespaceName(o oid.OID) (string, error)
	GetRelationNamespace(relOID oid.OID) (oid.OID, error)
	GetRelationName(relOID oid.OID) (string, error)
	GetAttributeName(relOID oid.OID, attNum int) (string, error)
	AttributeIsDropped(relOID oid.OID, attNum int) (bool, error)
	// GetAttributeCount returns the relation's highest attribute number,
	// dropped columns included; statement builders iterate 1..count.
	GetAttributeCount(relOID oid.OID) (int, error)

	GetForeignTableOptions(relOID oid.OID) ([]Option, error)
	GetForeignColumnOptions(relOID oid.OID, attNum int) ([]Option, error)

	LookupOperator(o oid.OID) (OperatorInfo, error)
	LookupFunction(o oid.OID) (FunctionInfo, error)

	ContainsMutableFunction(e expr.Expr) bool

	ExprType(e expr.Expr) (oid.OID, error)
	// ExprLengthCoercionTypmod mirrors expr_is_length_coercion: it returns
	// (typmod, true) when e is a length-coercion call, (0, false) otherwise.
	ExprLengthCoercionTypmod(e expr.Expr) (int32, bool)

	FormatTypeWithTypmod(typeOID oid.OID, typmod int32) (string, error)
	QuoteIdentifier(name string) string
	// TypeOutput renders a Const's opaque Value as the type's textual
	// output-function representation — the text the deparser then
	// classifies (numeric literal, boolean, string, ...).
	TypeOutput(typeOID oid.OID, value any) (string, error)

	// WithPortableOutput runs fn with the remote session's date/interval
	// output GUCs switched to a portable (ISO, non-ambiguous) style for
	// the duration of the call, restoring the prior setting on every
	// return path. Statement builders wrap constant deparsing in this
	// before appending a WHERE clause (spec §4.7).
	WithPortableOutput(fn func() error) error
}
