package catalog

import (
	"fmt"

	"github.com/sqldef/pgfdwplan/internal/expr"
	"github.com/sqldef/pgfdwplan/internal/oid"
	"github.com/sqldef/pgfdwplan/internal/sqlwriter"
)

// Column describes one attribute of a fake relation.
type Column struct {
	Name        string
	TypeOID     oid.OID
	Dropped     bool
	ForeignName string // column_name FDW option override, "" if unset
}

// Relation is a fake relation: either the local foreign table itself or
// one of the built-in/namespace objects the oracle needs to know about.
type Relation struct {
	OID          oid.OID
	NamespaceOID oid.OID
	Name         string
	Columns      []Column
	SchemaOption string // schema_name FDW option, "" if unset
	TableOption  string // table_name FDW option, "" if unset
	UseRemoteEst bool
}

// Fake is an in-memory Oracle built up by tests node by node, per the
// design note that the walker/deparser must be testable without a live
// database.
type Fake struct {
	Cutoff          oid.OID
	Namespaces      map[oid.OID]string
	Relations       map[oid.OID]*Relation
	Operators       map[oid.OID]OperatorInfo
	Functions       map[oid.OID]FunctionInfo
	Mutable         map[oid.OID]bool // function OID -> is it mutable
	TypeOutputs     map[oid.OID]func(any) (string, error)
	TypeNames       map[oid.OID]string // "typename" text for FormatTypeWithTypmod, sans typmod
	LengthCoercions map[oid.OID]bool
}

// NewFake returns an empty Fake with the default built-in cutoff.
func NewFake() *Fake {
	return &Fake{
		Cutoff:          oid.DefaultCutoff(),
		Namespaces:      map[oid.OID]string{},
		Relations:       map[oid.OID]*Relation{},
		Operators:       map[oid.OID]OperatorInfo{},
		Functions:       map[oid.OID]FunctionInfo{},
		Mutable:         map[oid.OID]bool{},
		TypeOutputs:     map[oid.OID]func(any) (string, error){},
		TypeNames:       map[oid.OID]string{},
		LengthCoercions: map[oid.OID]bool{},
	}
}

func (f *Fake) IsBuiltin(o oid.OID) bool { return o != oid.InvalidOID && o < f.Cutoff }

func (f *Fake) GetNamespaceName(o oid.OID) (string, error) {
	if name, ok := f.Namespaces[o]; ok {
		return name, nil
	}
	return "", &LookupError{Kind: "namespace", OID: o}
}

func (f *Fake) relation(relOID oid.OID) (*Relation, error) {
	if r, ok := f.Relations[relOID]; ok {
		return r, nil
	}
	return nil, &LookupError{Kind: "relation", OID: relOID}
}

func (f *Fake) GetRelationNamespace(relOID oid.OID) (oid.OID, error) {
	r, err := f.relation(relOID)
	if err != nil {
		return oid.InvalidOID, err
	}
	return r.NamespaceOID, nil
}

func (f *Fake) GetRelationName(relOID oid.OID) (string, error) {
	r, err := f.relation(relOID)
	if err != nil {
		return "", err
	}
	return r.Name, nil
}

func (f *Fake) GetAttributeName(relOID oid.OID, attNum int) (string, error) {
	r, err := f.relation(relOID)
	if err != nil {
		return "", err
	}
	if attNum < 1 || attNum > len(r.Columns) {
		return "", &LookupError{Kind: "attribute", OID: relOID}
	}
	return r.Columns[attNum-1].Name, nil
}

func (f *Fake) GetAttributeCount(relOID oid.OID) (int, error) {
	r, err := f.relation(relOID)
	if err != nil {
		return 0, err
	}
	return len(r.Columns), nil
}

func (f *Fake) AttributeIsDropped(relOID oid.OID, attNum int) (bool, error) {
	r, err := f.relation(relOID)
	if err != nil {
		return false, err
	}
	if attNum < 1 || attNum > len(r.Columns) {
		return false, &LookupError{Kind: "attribute", OID: relOID}
	}
	return r.Columns[attNum-1].Dropped, nil
}

func (f *Fake) GetForeignTableOptions(relOID oid.OID) ([]Option, error) {
	r, err := f.relation(relOID)
	if err != nil {
		return nil, err
	}
	var opts []Option
	if r.SchemaOption != "" {
		opts = append(opts, Option{Name: "schema_name", Value: r.SchemaOption})
	}
	if r.TableOption != "" {
		opts = append(opts, Option{Name: "table_name", Value: r.TableOption})
	}
	if r.UseRemoteEst {
		opts = append(opts, Option{Name: "use_remote_estimate", Value: "true"})
	}
	return opts, nil
}

func (f *Fake) GetForeignColumnOptions(relOID oid.OID, attNum int) ([]Option, error) {
	r, err := f.relation(relOID)
	if err != nil {
		return nil, err
	}
	if attNum < 1 || attNum > len(r.Columns) {
		return nil, &LookupError{Kind: "attribute", OID: relOID}
	}
	col := r.Columns[attNum-1]
	if col.ForeignName == "" {
		return nil, nil
	}
	return []Option{{Name: "column_name", Value: col.ForeignName}}, nil
}

func (f *Fake) LookupOperator(o oid.OID) (OperatorInfo, error) {
	if info, ok := f.Operators[o]; ok {
		return info, nil
	}
	return OperatorInfo{}, &LookupError{Kind: "operator", OID: o}
}

func (f *Fake) LookupFunction(o oid.OID) (FunctionInfo, error) {
	if info, ok := f.Functions[o]; ok {
		return info, nil
	}
	return FunctionInfo{}, &LookupError{Kind: "function", OID: o}
}

func (f *Fake) ContainsMutableFunction(e expr.Expr) bool {
	return containsMutable(e, f.Mutable)
}

func containsMutable(e expr.Expr, mutable map[oid.OID]bool) bool {
	switch n := e.(type) {
	case expr.FuncExpr:
		if mutable[n.FuncOID] {
			return true
		}
		return anyMutable(n.Args, mutable)
	case expr.OpExpr:
		return anyMutable(n.Args, mutable)
	case expr.DistinctExpr:
		return anyMutable(n.Args[:], mutable)
	case expr.ScalarArrayOpExpr:
		return anyMutable(n.Args[:], mutable)
	case expr.ArrayRef:
		if containsMutable(n.Base, mutable) {
			return true
		}
		return anyMutable(n.UpperIndex, mutable) || anyMutable(n.LowerIndex, mutable)
	case expr.RelabelType:
		return containsMutable(n.Arg, mutable)
	case expr.BoolExpr:
		return anyMutable(n.Args, mutable)
	case expr.NullTest:
		return containsMutable(n.Arg, mutable)
	case expr.ArrayExpr:
		return anyMutable(n.Elements, mutable)
	case expr.List:
		return anyMutable(n.Items, mutable)
	default:
		return false
	}
}

func anyMutable(items []expr.Expr, mutable map[oid.OID]bool) bool {
	for _, item := range items {
		if containsMutable(item, mutable) {
			return true
		}
	}
	return false
}

func (f *Fake) ExprType(e expr.Expr) (oid.OID, error) {
	switch n := e.(type) {
	case expr.Var:
		return n.TypeOID, nil
	case expr.Const:
		return n.TypeOID, nil
	case expr.Param:
		return n.TypeOID, nil
	case expr.FuncExpr:
		return n.ResultTypeOID, nil
	case expr.OpExpr:
		return n.ResultTypeOID, nil
	case expr.DistinctExpr:
		return oid.BoolOID, nil
	case expr.ScalarArrayOpExpr:
		return oid.BoolOID, nil
	case expr.RelabelType:
		return n.ResultTypeOID, nil
	case expr.BoolExpr:
		return oid.BoolOID, nil
	case expr.NullTest:
		return oid.BoolOID, nil
	case expr.ArrayExpr:
		return n.ArrayTypeOID, nil
	case expr.ArrayRef:
		return n.ElementTypeOID, nil
	default:
		return oid.InvalidOID, fmt.Errorf("expr_type: unsupported node %T", e)
	}
}

func (f *Fake) ExprLengthCoercionTypmod(e expr.Expr) (int32, bool) {
	fe, ok := e.(expr.FuncExpr)
	if !ok {
		return 0, false
	}
	if !f.LengthCoercions[fe.FuncOID] || fe.LengthCoercionTypmod == nil {
		return 0, false
	}
	return *fe.LengthCoercionTypmod, true
}

func (f *Fake) FormatTypeWithTypmod(typeOID oid.OID, typmod int32) (string, error) {
	name, ok := f.TypeNames[typeOID]
	if !ok {
		return "", &LookupError{Kind: "type", OID: typeOID}
	}
	if typmod < 0 {
		return name, nil
	}
	return fmt.Sprintf("%s(%d)", name, typmod), nil
}

func (f *Fake) QuoteIdentifier(name string) string {
	return sqlwriter.QuoteIdentifier(name)
}

func (f *Fake) TypeOutput(typeOID oid.OID, value any) (string, error) {
	out, ok := f.TypeOutputs[typeOID]
	if !ok {
		return "", &LookupError{Kind: "type output function", OID: typeOID}
	}
	return out(value)
}

// WithPortableOutput has nothing to switch in-memory; it exists so tests
// exercise the same call shape a live-catalog Oracle does.
func (f *Fake) WithPortableOutput(fn func() error) error {
	return fn()
}
