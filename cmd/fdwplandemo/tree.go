package main

import (
	"encoding/json"
	"fmt"

	"github.com/sqldef/pgfdwplan/internal/expr"
	"github.com/sqldef/pgfdwplan/internal/oid"
)

// exprFile is the on-disk shape of the JSON file fed to --exprs: a target
// column list (or whole-row marker) plus the restriction list to
// classify and deparse.
type exprFile struct {
	WholeRow     bool       `json:"whole_row"`
	TargetAttrs  []int      `json:"target_attrs"`
	Restrictions []jsonNode `json:"restrictions"`
}

// jsonNode is a catch-all JSON shape for one expression-tree node; Kind
// selects which subset of the other fields toExpr reads. This exists
// only so the demo CLI can accept restriction trees as data instead of
// Go literals — it is not part of the library's public surface.
type jsonNode struct {
	Kind string `json:"kind"`

	RelationIndex int             `json:"relation_index,omitempty"`
	AttrNumber    int             `json:"attr_number,omitempty"`
	TypeOID       oid.OID         `json:"type_oid,omitempty"`
	TypeMod       int32           `json:"type_mod,omitempty"`
	CollationOID  oid.OID         `json:"collation_oid,omitempty"`
	Level         int             `json:"level,omitempty"`
	IsNull        bool            `json:"is_null,omitempty"`
	Value         json.RawMessage `json:"value,omitempty"`

	ParamKind string `json:"param_kind,omitempty"`
	ID        int    `json:"id,omitempty"`

	UpperIndex      []jsonNode `json:"upper_index,omitempty"`
	LowerIndex      []jsonNode `json:"lower_index,omitempty"`
	Base            *jsonNode  `json:"base,omitempty"`
	Assignment      *jsonNode  `json:"assignment,omitempty"`
	ElementTypeOID  oid.OID    `json:"element_type_oid,omitempty"`
	ResultCollation oid.OID    `json:"result_collation,omitempty"`

	FuncOID              oid.OID    `json:"func_oid,omitempty"`
	ResultTypeOID        oid.OID    `json:"result_type_oid,omitempty"`
	InputCollation       oid.OID    `json:"input_collation,omitempty"`
	Format               string     `json:"format,omitempty"`
	Args                 []jsonNode `json:"args,omitempty"`
	LengthCoercionTypmod *int32     `json:"length_coercion_typmod,omitempty"`

	OperatorOID oid.OID `json:"operator_oid,omitempty"`
	UseOr       bool    `json:"use_or,omitempty"`

	Arg           *jsonNode `json:"arg,omitempty"`
	ResultTypeMod int32     `json:"result_type_mod,omitempty"`

	Op string `json:"op,omitempty"`

	IsNotNull bool `json:"is_not_null,omitempty"`

	Elements         []jsonNode `json:"elements,omitempty"`
	ArrayTypeOID     oid.OID    `json:"array_type_oid,omitempty"`
	ElementCollation oid.OID    `json:"element_collation,omitempty"`

	Items []jsonNode `json:"items,omitempty"`
}

func toExprSlice(nodes []jsonNode) ([]expr.Expr, error) {
	out := make([]expr.Expr, 0, len(nodes))
	for _, n := range nodes {
		e, err := n.toExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func optionalExpr(n *jsonNode) (expr.Expr, error) {
	if n == nil {
		return nil, nil
	}
	return n.toExpr()
}

func (n jsonNode) toExpr() (expr.Expr, error) {
	switch n.Kind {
	case "Var":
		return expr.Var{
			RelationIndex: n.RelationIndex,
			AttrNumber:    n.AttrNumber,
			TypeOID:       n.TypeOID,
			TypeMod:       n.TypeMod,
			CollationOID:  n.CollationOID,
			Level:         n.Level,
		}, nil
	case "Const":
		var value any
		if len(n.Value) > 0 {
			if err := json.Unmarshal(n.Value, &value); err != nil {
				return nil, fmt.Errorf("const value: %w", err)
			}
		}
		return expr.Const{
			TypeOID:      n.TypeOID,
			TypeMod:      n.TypeMod,
			CollationOID: n.CollationOID,
			IsNull:       n.IsNull,
			Value:        value,
		}, nil
	case "Param":
		kind := expr.ParamExtern
		if n.ParamKind == "exec" {
			kind = expr.ParamExec
		}
		return expr.Param{
			ParamKind:    kind,
			ID:           n.ID,
			TypeOID:      n.TypeOID,
			TypeMod:      n.TypeMod,
			CollationOID: n.CollationOID,
		}, nil
	case "ArrayRef":
		upper, err := toExprSlice(n.UpperIndex)
		if err != nil {
			return nil, err
		}
		lower, err := toExprSlice(n.LowerIndex)
		if err != nil {
			return nil, err
		}
		if n.Base == nil {
			return nil, fmt.Errorf("ArrayRef: missing base")
		}
		base, err := n.Base.toExpr()
		if err != nil {
			return nil, err
		}
		assignment, err := optionalExpr(n.Assignment)
		if err != nil {
			return nil, err
		}
		return expr.ArrayRef{
			ResultCollation: n.ResultCollation,
			UpperIndex:      upper,
			LowerIndex:      lower,
			Base:            base,
			Assignment:      assignment,
			ElementTypeOID:  n.ElementTypeOID,
		}, nil
	case "FuncExpr":
		args, err := toExprSlice(n.Args)
		if err != nil {
			return nil, err
		}
		return expr.FuncExpr{
			FuncOID:              n.FuncOID,
			ResultTypeOID:        n.ResultTypeOID,
			ResultCollation:      n.ResultCollation,
			InputCollation:       n.InputCollation,
			Format:               parseFuncFormat(n.Format),
			Args:                 args,
			LengthCoercionTypmod: n.LengthCoercionTypmod,
		}, nil
	case "OpExpr":
		args, err := toExprSlice(n.Args)
		if err != nil {
			return nil, err
		}
		return expr.OpExpr{
			OperatorOID:     n.OperatorOID,
			ResultCollation: n.ResultCollation,
			InputCollation:  n.InputCollation,
			Args:            args,
			ResultTypeOID:   n.ResultTypeOID,
		}, nil
	case "DistinctExpr":
		args, err := toExprSlice(n.Args)
		if err != nil {
			return nil, err
		}
		if len(args) != 2 {
			return nil, fmt.Errorf("DistinctExpr: expected 2 args, got %d", len(args))
		}
		return expr.DistinctExpr{
			OperatorOID:     n.OperatorOID,
			ResultCollation: n.ResultCollation,
			InputCollation:  n.InputCollation,
			Args:            [2]expr.Expr{args[0], args[1]},
		}, nil
	case "ScalarArrayOpExpr":
		args, err := toExprSlice(n.Args)
		if err != nil {
			return nil, err
		}
		if len(args) != 2 {
			return nil, fmt.Errorf("ScalarArrayOpExpr: expected 2 args, got %d", len(args))
		}
		return expr.ScalarArrayOpExpr{
			OperatorOID:    n.OperatorOID,
			InputCollation: n.InputCollation,
			UseOr:          n.UseOr,
			Args:           [2]expr.Expr{args[0], args[1]},
		}, nil
	case "RelabelType":
		if n.Arg == nil {
			return nil, fmt.Errorf("RelabelType: missing arg")
		}
		arg, err := n.Arg.toExpr()
		if err != nil {
			return nil, err
		}
		return expr.RelabelType{
			Arg:             arg,
			ResultTypeOID:   n.ResultTypeOID,
			ResultTypeMod:   n.ResultTypeMod,
			ResultCollation: n.ResultCollation,
			Format:          parseFuncFormat(n.Format),
		}, nil
	case "BoolExpr":
		args, err := toExprSlice(n.Args)
		if err != nil {
			return nil, err
		}
		return expr.BoolExpr{Op: parseBoolOp(n.Op), Args: args}, nil
	case "NullTest":
		if n.Arg == nil {
			return nil, fmt.Errorf("NullTest: missing arg")
		}
		arg, err := n.Arg.toExpr()
		if err != nil {
			return nil, err
		}
		return expr.NullTest{Arg: arg, IsNotNull: n.IsNotNull}, nil
	case "ArrayExpr":
		elements, err := toExprSlice(n.Elements)
		if err != nil {
			return nil, err
		}
		return expr.ArrayExpr{
			Elements:         elements,
			ArrayTypeOID:     n.ArrayTypeOID,
			ElementTypeOID:   n.ElementTypeOID,
			ElementCollation: n.ElementCollation,
		}, nil
	case "List":
		items, err := toExprSlice(n.Items)
		if err != nil {
			return nil, err
		}
		return expr.List{Items: items}, nil
	default:
		return nil, fmt.Errorf("unknown expression kind %q", n.Kind)
	}
}

func parseFuncFormat(s string) expr.FuncFormat {
	switch s {
	case "implicit_cast":
		return expr.FuncFormatImplicitCast
	case "explicit_cast":
		return expr.FuncFormatExplicitCast
	default:
		return expr.FuncFormatNormal
	}
}

func parseBoolOp(s string) expr.BoolOp {
	switch s {
	case "or":
		return expr.BoolOr
	case "not":
		return expr.BoolNot
	default:
		return expr.BoolAnd
	}
}
