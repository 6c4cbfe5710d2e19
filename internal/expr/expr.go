// Package expr defines the expression-tree data model the safety walker
// and deparser both operate on (spec §3). It is a closed, tagged union:
// every node kind is represented by a dedicated struct implementing
// Expr, and Kind() lets a switch over kinds be exhaustive without
// reflection.
package expr

import "github.com/sqldef/pgfdwplan/internal/oid"

// Kind tags the node kinds admissible anywhere in a restriction clause.
type Kind int

const (
	KindVar Kind = iota
	KindConst
	KindParam
	KindArrayRef
	KindFuncExpr
	KindOpExpr
	KindDistinctExpr
	KindScalarArrayOpExpr
	KindRelabelType
	KindBoolExpr
	KindNullTest
	KindArrayExpr
	KindList
)

// Expr is any node of the expression tree. It is deliberately a closed
// set: a type switch over Kind() in the walker or deparser that does not
// handle every kind listed above is a bug, not a missing feature.
type Expr interface {
	Kind() Kind
}

// Var references a column of some relation in the planner's range table.
type Var struct {
	RelationIndex int
	AttrNumber    int
	TypeOID       oid.OID
	TypeMod       int32
	CollationOID  oid.OID
	// Level is the subquery nesting level; only level 0 is admissible.
	Level int
}

func (Var) Kind() Kind { return KindVar }

// Const is a literal value.
type Const struct {
	TypeOID      oid.OID
	TypeMod      int32
	CollationOID oid.OID
	IsNull       bool
	// Value is opaque to the walker and deparser; only the catalog
	// oracle's TypeOutput knows how to render it.
	Value any
}

func (Const) Kind() Kind { return KindConst }

// ParamKind discriminates where a Param's value comes from.
type ParamKind int

const (
	// ParamExtern is a query parameter supplied by the client at execution
	// time. It is the only admissible ParamKind.
	ParamExtern ParamKind = iota
	// ParamExec is an internal sub-plan parameter; never admissible.
	ParamExec
)

// Param is a reference to a query parameter.
type Param struct {
	ParamKind    ParamKind
	ID           int
	TypeOID      oid.OID
	TypeMod      int32
	CollationOID oid.OID
}

func (Param) Kind() Kind { return KindParam }

// ArrayRef is an array subscript expression. Assignment must be nil for
// the node to be admissible; the admitted form is read-only subscripting.
type ArrayRef struct {
	ResultCollation oid.OID
	UpperIndex      []Expr
	LowerIndex      []Expr // may be empty: plain [i] rather than [lo:hi]
	Base            Expr
	Assignment      Expr // must be nil in a restriction clause
	ElementTypeOID  oid.OID
}

func (ArrayRef) Kind() Kind { return KindArrayRef }

// FuncFormat records how a function call was introduced by the parser.
type FuncFormat int

const (
	FuncFormatNormal FuncFormat = iota
	FuncFormatImplicitCast
	FuncFormatExplicitCast
)

// FuncExpr is a function call.
type FuncExpr struct {
	FuncOID         oid.OID
	ResultTypeOID   oid.OID
	ResultCollation oid.OID
	InputCollation  oid.OID
	Format          FuncFormat
	Args            []Expr
	// LengthCoercionTypmod is set when this call is a length-coercion
	// function (varchar(n), char(n), numeric(p,s), ...); deparsing an
	// explicit-cast FuncExpr uses it as the cast's typmod, and renders the
	// cast with typmod -1 (no typmod) when it is absent. Supplements
	// spec.md's Open Question on explicit-cast typmod handling.
	LengthCoercionTypmod *int32
}

func (FuncExpr) Kind() Kind { return KindFuncExpr }

// OpExpr is a unary or binary operator application.
type OpExpr struct {
	OperatorOID     oid.OID
	ResultCollation oid.OID
	InputCollation  oid.OID
	Args            []Expr // length 1 or 2
	ResultTypeOID   oid.OID
}

func (OpExpr) Kind() Kind { return KindOpExpr }

// DistinctExpr is `a IS DISTINCT FROM b`; same shape as a binary OpExpr.
type DistinctExpr struct {
	OperatorOID     oid.OID
	ResultCollation oid.OID
	InputCollation  oid.OID
	Args            [2]Expr
}

func (DistinctExpr) Kind() Kind { return KindDistinctExpr }

// ScalarArrayOpExpr is `x OP ANY/ALL (array)`. Its result is always
// boolean, hence always non-collatable.
type ScalarArrayOpExpr struct {
	OperatorOID    oid.OID
	InputCollation oid.OID
	UseOr          bool // true: ANY, false: ALL
	Args           [2]Expr
}

func (ScalarArrayOpExpr) Kind() Kind { return KindScalarArrayOpExpr }

// RelabelType is a binary-compatible cast that only changes the
// declared type/collation, not the representation.
type RelabelType struct {
	Arg             Expr
	ResultTypeOID   oid.OID
	ResultTypeMod   int32
	ResultCollation oid.OID
	Format          FuncFormat
}

func (RelabelType) Kind() Kind { return KindRelabelType }

// BoolOp distinguishes AND/OR/NOT within a BoolExpr.
type BoolOp int

const (
	BoolAnd BoolOp = iota
	BoolOr
	BoolNot
)

// BoolExpr is an N-ary AND/OR, or a unary NOT. Always boolean, hence
// always non-collatable.
type BoolExpr struct {
	Op   BoolOp
	Args []Expr // len 1 for NOT, len >= 2 for AND/OR
}

func (BoolExpr) Kind() Kind { return KindBoolExpr }

// NullTest is `IS [NOT] NULL`. Always boolean.
type NullTest struct {
	Arg       Expr
	IsNotNull bool
}

func (NullTest) Kind() Kind { return KindNullTest }

// ArrayExpr is `ARRAY[e1, e2, ...]`.
type ArrayExpr struct {
	Elements         []Expr // may be empty
	ArrayTypeOID     oid.OID
	ElementTypeOID   oid.OID
	ElementCollation oid.OID
}

func (ArrayExpr) Kind() Kind { return KindArrayExpr }

// List is a heterogeneous ordered sequence of sub-nodes, used only to
// recurse into argument vectors. It has no result type of its own; the
// walker skips the built-in-type check on a List and the parent inherits
// the list's merged collation state directly.
type List struct {
	Items []Expr
}

func (List) Kind() Kind { return KindList }
