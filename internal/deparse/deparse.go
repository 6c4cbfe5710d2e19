// Package deparse implements the Expression Deparser of spec §4.6: a
// kind-dispatched renderer that mirrors the safety walker's accepted
// node set, producing dialect SQL text for every kind the walker can
// admit except List, which it reports as an unsupported kind.
package deparse

import (
	"fmt"
	"regexp"

	"github.com/sqldef/pgfdwplan/internal/catalog"
	"github.com/sqldef/pgfdwplan/internal/expr"
	"github.com/sqldef/pgfdwplan/internal/oid"
	"github.com/sqldef/pgfdwplan/internal/sqlwriter"
)

// numericText matches the bare, unquoted rendering of an int/float/
// numeric literal's output text (spec §4.6).
var numericText = regexp.MustCompile(`^[0-9+\-eE.]*$`)

// Deparser renders admitted expression nodes as Postgres-dialect SQL
// text into a caller-owned sqlwriter.Buffer.
type Deparser struct {
	Oracle catalog.Oracle
	RelOID oid.OID
}

// New returns a Deparser bound to the relation being scanned; Variable
// nodes resolve their remote column name against this relation.
func New(oracle catalog.Oracle, relOID oid.OID) *Deparser {
	return &Deparser{Oracle: oracle, RelOID: relOID}
}

// Deparse writes e's SQL text to buf. An error here always means a
// walker/deparser mismatch (an admitted node of a kind this function
// does not handle) or a catalog inconsistency — both fatal per spec §7.
func (d *Deparser) Deparse(buf *sqlwriter.Buffer, e expr.Expr) error {
	switch n := e.(type) {
	case expr.Var:
		return d.deparseVar(buf, n)
	case expr.Const:
		return d.deparseConst(buf, n)
	case expr.Param:
		return d.deparseParam(buf, n)
	case expr.ArrayRef:
		return d.deparseArrayRef(buf, n)
	case expr.FuncExpr:
		return d.deparseFuncExpr(buf, n)
	case expr.OpExpr:
		return d.deparseOpExpr(buf, n)
	case expr.DistinctExpr:
		return d.deparseDistinctExpr(buf, n)
	case expr.ScalarArrayOpExpr:
		return d.deparseScalarArrayOpExpr(buf, n)
	case expr.RelabelType:
		return d.deparseRelabelType(buf, n)
	case expr.BoolExpr:
		return d.deparseBoolExpr(buf, n)
	case expr.NullTest:
		return d.deparseNullTest(buf, n)
	case expr.ArrayExpr:
		return d.deparseArrayExpr(buf, n)
	default:
		return fmt.Errorf("deparse: unsupported expression kind %T (walker/deparser mismatch)", e)
	}
}

func (d *Deparser) deparseVar(buf *sqlwriter.Buffer, n expr.Var) error {
	name, err := d.remoteColumnName(n.AttrNumber)
	if err != nil {
		return err
	}
	buf.WriteIdent(name)
	return nil
}

func (d *Deparser) remoteColumnName(attNum int) (string, error) {
	opts, err := d.Oracle.GetForeignColumnOptions(d.RelOID, attNum)
	if err != nil {
		return "", err
	}
	for _, o := range opts {
		if o.Name == "column_name" {
			return o.Value, nil
		}
	}
	return d.Oracle.GetAttributeName(d.RelOID, attNum)
}

func (d *Deparser) deparseConst(buf *sqlwriter.Buffer, n expr.Const) error {
	typeName, err := d.Oracle.FormatTypeWithTypmod(n.TypeOID, n.TypeMod)
	if err != nil {
		return err
	}
	if n.IsNull {
		buf.WriteString("NULL::").WriteString(typeName)
		return nil
	}

	text, err := d.Oracle.TypeOutput(n.TypeOID, n.Value)
	if err != nil {
		return err
	}

	var needsSuffix bool
	switch {
	case n.TypeOID == oid.BoolOID:
		if text == "t" || text == "true" {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		needsSuffix = false
	case n.TypeOID == oid.NumericOID:
		writeNumericLiteral(buf, text)
		needsSuffix = needsCastSuffixNumeric(text, n.TypeMod)
	case oid.IsIntFloatNumeric(n.TypeOID):
		writeNumericLiteral(buf, text)
		needsSuffix = needsCastSuffix(n.TypeOID)
	case oid.IsBitVarbit(n.TypeOID):
		buf.WriteByte('B')
		buf.WriteStringLiteral(text)
		needsSuffix = needsCastSuffix(n.TypeOID)
	default:
		buf.WriteStringLiteral(text)
		needsSuffix = needsCastSuffix(n.TypeOID)
	}

	if needsSuffix {
		buf.WriteString("::").WriteString(typeName)
	}
	return nil
}

func writeNumericLiteral(buf *sqlwriter.Buffer, text string) {
	if numericText.MatchString(text) {
		if len(text) > 0 && (text[0] == '+' || text[0] == '-') {
			buf.WriteByte('(').WriteString(text).WriteByte(')')
		} else {
			buf.WriteString(text)
		}
		return
	}
	buf.WriteStringLiteral(text)
}

// looksLikeFloat reports whether text is a non-integer numeric literal,
// i.e. contains a decimal point or exponent marker.
func looksLikeFloat(text string) bool {
	for _, c := range text {
		if c == '.' || c == 'e' || c == 'E' {
			return true
		}
	}
	return false
}

// needsCastSuffix implements spec §4.6's implicit-retyping exceptions:
// boolean, 32-bit integer and unknown constants never get a ::typename
// suffix; everything else always gets it. Numeric is handled separately
// by needsCastSuffixNumeric since it also depends on the output text and
// the typmod.
func needsCastSuffix(typeOID oid.OID) bool {
	switch typeOID {
	case oid.BoolOID, oid.Int4OID, oid.UnknownOID:
		return false
	}
	return true
}

// needsCastSuffixNumeric is consulted only for NumericOID, which needs
// both the text and the typmod to decide.
func needsCastSuffixNumeric(text string, typmod int32) bool {
	return !(looksLikeFloat(text) && typmod < 0)
}

func (d *Deparser) deparseParam(buf *sqlwriter.Buffer, n expr.Param) error {
	typeName, err := d.Oracle.FormatTypeWithTypmod(n.TypeOID, n.TypeMod)
	if err != nil {
		return err
	}
	buf.WriteByte('$').WriteInt(n.ID).WriteString("::").WriteString(typeName)
	return nil
}

// isBareVar reports whether e is a plain Variable, the one case where a
// base expression in an ArrayRef is not itself parenthesized.
func isBareVar(e expr.Expr) bool {
	_, ok := e.(expr.Var)
	return ok
}

func (d *Deparser) deparseArrayRef(buf *sqlwriter.Buffer, n expr.ArrayRef) error {
	buf.WriteByte('(')
	needsParens := !isBareVar(n.Base)
	if needsParens {
		buf.WriteByte('(')
	}
	if err := d.Deparse(buf, n.Base); err != nil {
		return err
	}
	if needsParens {
		buf.WriteByte(')')
	}
	for i, up := range n.UpperIndex {
		buf.WriteByte('[')
		if i < len(n.LowerIndex) {
			if err := d.Deparse(buf, n.LowerIndex[i]); err != nil {
				return err
			}
			buf.WriteByte(':')
		}
		if err := d.Deparse(buf, up); err != nil {
			return err
		}
		buf.WriteByte(']')
	}
	buf.WriteByte(')')
	return nil
}

func (d *Deparser) deparseFuncExpr(buf *sqlwriter.Buffer, n expr.FuncExpr) error {
	switch n.Format {
	case expr.FuncFormatImplicitCast:
		if len(n.Args) == 0 {
			return fmt.Errorf("deparse: implicit-cast FuncExpr with no arguments")
		}
		return d.Deparse(buf, n.Args[0])
	case expr.FuncFormatExplicitCast:
		if len(n.Args) == 0 {
			return fmt.Errorf("deparse: explicit-cast FuncExpr with no arguments")
		}
		typmod := int32(-1)
		if tm, ok := d.Oracle.ExprLengthCoercionTypmod(n); ok {
			typmod = tm
		}
		typeName, err := d.Oracle.FormatTypeWithTypmod(n.ResultTypeOID, typmod)
		if err != nil {
			return err
		}
		buf.WriteByte('(')
		if err := d.Deparse(buf, n.Args[0]); err != nil {
			return err
		}
		buf.WriteString("::").WriteString(typeName)
		buf.WriteByte(')')
		return nil
	default:
		info, err := d.Oracle.LookupFunction(n.FuncOID)
		if err != nil {
			return err
		}
		nsName, err := d.Oracle.GetNamespaceName(info.NamespaceOID)
		if err != nil {
			return err
		}
		buf.WriteQualifiedIdent(nsName, info.Name)
		buf.WriteByte('(')
		for i, arg := range n.Args {
			if i > 0 {
				buf.WriteString(", ")
			}
			if err := d.Deparse(buf, arg); err != nil {
				return err
			}
		}
		buf.WriteByte(')')
		return nil
	}
}

func (d *Deparser) writeOperator(buf *sqlwriter.Buffer, opOID oid.OID) error {
	info, err := d.Oracle.LookupOperator(opOID)
	if err != nil {
		return err
	}
	if info.NamespaceOID == 0 {
		buf.WriteString(info.Name)
		return nil
	}
	nsName, err := d.Oracle.GetNamespaceName(info.NamespaceOID)
	if err != nil {
		return err
	}
	if nsName == "pg_catalog" {
		buf.WriteString(info.Name)
		return nil
	}
	buf.WriteString("OPERATOR(").WriteString(nsName).WriteByte('.').WriteString(info.Name).WriteByte(')')
	return nil
}

func (d *Deparser) deparseOpExpr(buf *sqlwriter.Buffer, n expr.OpExpr) error {
	info, err := d.Oracle.LookupOperator(n.OperatorOID)
	if err != nil {
		return err
	}
	buf.WriteByte('(')
	switch {
	case info.Kind == catalog.OperatorPrefix && len(n.Args) == 1:
		if err := d.writeOperator(buf, n.OperatorOID); err != nil {
			return err
		}
		buf.WriteByte(' ')
		if err := d.Deparse(buf, n.Args[0]); err != nil {
			return err
		}
	case info.Kind == catalog.OperatorPostfix && len(n.Args) == 1:
		if err := d.Deparse(buf, n.Args[0]); err != nil {
			return err
		}
		buf.WriteByte(' ')
		if err := d.writeOperator(buf, n.OperatorOID); err != nil {
			return err
		}
	default:
		if len(n.Args) != 2 {
			return fmt.Errorf("deparse: infix operator with %d arguments", len(n.Args))
		}
		if err := d.Deparse(buf, n.Args[0]); err != nil {
			return err
		}
		buf.WriteByte(' ')
		if err := d.writeOperator(buf, n.OperatorOID); err != nil {
			return err
		}
		buf.WriteByte(' ')
		if err := d.Deparse(buf, n.Args[1]); err != nil {
			return err
		}
	}
	buf.WriteByte(')')
	return nil
}

func (d *Deparser) deparseDistinctExpr(buf *sqlwriter.Buffer, n expr.DistinctExpr) error {
	buf.WriteByte('(')
	if err := d.Deparse(buf, n.Args[0]); err != nil {
		return err
	}
	buf.WriteString(" IS DISTINCT FROM ")
	if err := d.Deparse(buf, n.Args[1]); err != nil {
		return err
	}
	buf.WriteByte(')')
	return nil
}

func (d *Deparser) deparseScalarArrayOpExpr(buf *sqlwriter.Buffer, n expr.ScalarArrayOpExpr) error {
	buf.WriteByte('(')
	if err := d.Deparse(buf, n.Args[0]); err != nil {
		return err
	}
	buf.WriteByte(' ')
	if err := d.writeOperator(buf, n.OperatorOID); err != nil {
		return err
	}
	if n.UseOr {
		buf.WriteString(" ANY (")
	} else {
		buf.WriteString(" ALL (")
	}
	if err := d.Deparse(buf, n.Args[1]); err != nil {
		return err
	}
	buf.WriteString("))")
	return nil
}

func (d *Deparser) deparseRelabelType(buf *sqlwriter.Buffer, n expr.RelabelType) error {
	if err := d.Deparse(buf, n.Arg); err != nil {
		return err
	}
	if n.Format != expr.FuncFormatImplicitCast {
		typeName, err := d.Oracle.FormatTypeWithTypmod(n.ResultTypeOID, n.ResultTypeMod)
		if err != nil {
			return err
		}
		buf.WriteString("::").WriteString(typeName)
	}
	return nil
}

func (d *Deparser) deparseBoolExpr(buf *sqlwriter.Buffer, n expr.BoolExpr) error {
	if n.Op == expr.BoolNot {
		if len(n.Args) != 1 {
			return fmt.Errorf("deparse: NOT with %d arguments", len(n.Args))
		}
		buf.WriteString("(NOT ")
		if err := d.Deparse(buf, n.Args[0]); err != nil {
			return err
		}
		buf.WriteByte(')')
		return nil
	}

	word := " AND "
	if n.Op == expr.BoolOr {
		word = " OR "
	}
	buf.WriteByte('(')
	for i, arg := range n.Args {
		if i > 0 {
			buf.WriteString(word)
		}
		if err := d.Deparse(buf, arg); err != nil {
			return err
		}
	}
	buf.WriteByte(')')
	return nil
}

func (d *Deparser) deparseNullTest(buf *sqlwriter.Buffer, n expr.NullTest) error {
	buf.WriteByte('(')
	if err := d.Deparse(buf, n.Arg); err != nil {
		return err
	}
	if n.IsNotNull {
		buf.WriteString(" IS NOT NULL)")
	} else {
		buf.WriteString(" IS NULL)")
	}
	return nil
}

func (d *Deparser) deparseArrayExpr(buf *sqlwriter.Buffer, n expr.ArrayExpr) error {
	buf.WriteString("ARRAY[")
	for i, elem := range n.Elements {
		if i > 0 {
			buf.WriteString(", ")
		}
		if err := d.Deparse(buf, elem); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	if len(n.Elements) == 0 {
		typeName, err := d.Oracle.FormatTypeWithTypmod(n.ArrayTypeOID, -1)
		if err != nil {
			return err
		}
		buf.WriteString("::").WriteString(typeName)
	}
	return nil
}
