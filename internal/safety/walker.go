// Package safety implements the Expression Safety Walker of spec §4.4:
// a recursive post-order walk over a typed expression tree that decides
// whether the tree can be evaluated remotely with local-identical
// semantics.
package safety

import (
	"github.com/sqldef/pgfdwplan/internal/catalog"
	"github.com/sqldef/pgfdwplan/internal/collation"
	"github.com/sqldef/pgfdwplan/internal/expr"
	"github.com/sqldef/pgfdwplan/internal/oid"
)

// Glob accumulates state across one top-level Walk call: the external
// parameter IDs seen so far. Per the design notes, IDs are appended as
// found and deduplicated once at classify time, not per node.
type Glob struct {
	ParamNumbers []int
}

// Walker bundles the catalog oracle and the relation being planned. A new
// Walker is cheap to construct; it holds no mutable state of its own.
type Walker struct {
	Oracle   catalog.Oracle
	RelOID   oid.OID
	RelIndex int
}

// New returns a Walker scoped to one foreign relation.
func New(oracle catalog.Oracle, relOID oid.OID, relIndex int) *Walker {
	return &Walker{Oracle: oracle, RelOID: relOID, RelIndex: relIndex}
}

// Walk is the walker's contract: it returns (true, nil) when e is safe to
// send remotely, filling glob.ParamNumbers with any admitted external
// parameter IDs and inner with the subtree's final collation state.
// It returns (false, nil) for a normal, silent rejection (routes the
// clause to local_conds — not an error per spec §7), and (false, err)
// only for a catalog lookup failure, which is fatal and must propagate.
func (w *Walker) Walk(e expr.Expr, glob *Glob, inner *collation.State) (bool, error) {
	var (
		safe   bool
		result collation.State
		err    error
	)

	switch n := e.(type) {
	case expr.Var:
		safe, result, err = w.walkVar(n)
	case expr.Const:
		safe, result, err = w.walkConst(n)
	case expr.Param:
		safe, result, err = w.walkParam(n, glob)
	case expr.ArrayRef:
		safe, result, err = w.walkArrayRef(n, glob)
	case expr.FuncExpr:
		safe, result, err = w.walkFuncExpr(n, glob)
	case expr.OpExpr:
		safe, result, err = w.walkOpExpr(n, glob)
	case expr.DistinctExpr:
		safe, result, err = w.walkDistinctExpr(n, glob)
	case expr.ScalarArrayOpExpr:
		safe, result, err = w.walkScalarArrayOpExpr(n, glob)
	case expr.RelabelType:
		safe, result, err = w.walkRelabelType(n, glob)
	case expr.BoolExpr:
		safe, result, err = w.walkBoolExpr(n, glob)
	case expr.NullTest:
		safe, result, err = w.walkNullTest(n, glob)
	case expr.ArrayExpr:
		safe, result, err = w.walkArrayExpr(n, glob)
	case expr.List:
		return w.walkList(n, glob, inner)
	default:
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !safe {
		return false, nil
	}

	// After the kind-specific arm, check the result type: every admitted
	// node's result type must be built-in (spec invariant 2). List is
	// handled above and never reaches here.
	resultType, err := w.Oracle.ExprType(e)
	if err != nil {
		return false, err
	}
	if !w.Oracle.IsBuiltin(resultType) {
		return false, nil
	}

	*inner = collation.Merge(*inner, result)
	return true, nil
}

// walkChildren recurses into each child in order, short-circuiting on
// the first rejection or error, threading a shared inner state.
func (w *Walker) walkChildren(children []expr.Expr, glob *Glob, inner *collation.State) (bool, error) {
	for _, c := range children {
		safe, err := w.Walk(c, glob, inner)
		if err != nil {
			return false, err
		}
		if !safe {
			return false, nil
		}
	}
	return true, nil
}

func (w *Walker) walkVar(n expr.Var) (bool, collation.State, error) {
	if n.Level != 0 || n.RelationIndex != w.RelIndex {
		return false, collation.State{}, nil
	}
	if n.CollationOID == oid.InvalidCollationOID {
		return true, collation.State{Tag: collation.None}, nil
	}
	return true, collation.State{Tag: collation.Safe, OID: n.CollationOID}, nil
}

func (w *Walker) walkConst(n expr.Const) (bool, collation.State, error) {
	if n.CollationOID != oid.InvalidCollationOID && n.CollationOID != oid.DefaultCollationOID {
		return false, collation.State{}, nil
	}
	return true, collation.State{Tag: collation.None}, nil
}

func (w *Walker) walkParam(n expr.Param, glob *Glob) (bool, collation.State, error) {
	if n.ParamKind != expr.ParamExtern {
		return false, collation.State{}, nil
	}
	if n.CollationOID != oid.InvalidCollationOID && n.CollationOID != oid.DefaultCollationOID {
		return false, collation.State{}, nil
	}
	glob.ParamNumbers = append(glob.ParamNumbers, n.ID)
	return true, collation.State{Tag: collation.None}, nil
}

func (w *Walker) walkArrayRef(n expr.ArrayRef, glob *Glob) (bool, collation.State, error) {
	if n.Assignment != nil {
		return false, collation.State{}, nil
	}
	var inner collation.State
	if safe, err := w.walkChildren(n.UpperIndex, glob, &inner); err != nil || !safe {
		return safe, collation.State{}, err
	}
	if safe, err := w.walkChildren(n.LowerIndex, glob, &inner); err != nil || !safe {
		return safe, collation.State{}, err
	}
	if safe, err := w.Walk(n.Base, glob, &inner); err != nil || !safe {
		return safe, collation.State{}, err
	}
	return true, collation.Finish(n.ResultCollation, inner), nil
}

func inputCollationSatisfied(inputCollation oid.OID, inner collation.State) bool {
	if inputCollation == oid.InvalidCollationOID {
		return true
	}
	return inner.Tag == collation.Safe && inner.OID == inputCollation
}

func (w *Walker) walkFuncExpr(n expr.FuncExpr, glob *Glob) (bool, collation.State, error) {
	if !w.Oracle.IsBuiltin(n.FuncOID) {
		return false, collation.State{}, nil
	}
	var inner collation.State
	if safe, err := w.walkChildren(n.Args, glob, &inner); err != nil || !safe {
		return safe, collation.State{}, err
	}
	if !inputCollationSatisfied(n.InputCollation, inner) {
		return false, collation.State{}, nil
	}
	return true, collation.Finish(n.ResultCollation, inner), nil
}

func (w *Walker) walkOpExpr(n expr.OpExpr, glob *Glob) (bool, collation.State, error) {
	if !w.Oracle.IsBuiltin(n.OperatorOID) {
		return false, collation.State{}, nil
	}
	var inner collation.State
	if safe, err := w.walkChildren(n.Args, glob, &inner); err != nil || !safe {
		return safe, collation.State{}, err
	}
	if !inputCollationSatisfied(n.InputCollation, inner) {
		return false, collation.State{}, nil
	}
	return true, collation.Finish(n.ResultCollation, inner), nil
}

func (w *Walker) walkDistinctExpr(n expr.DistinctExpr, glob *Glob) (bool, collation.State, error) {
	if !w.Oracle.IsBuiltin(n.OperatorOID) {
		return false, collation.State{}, nil
	}
	var inner collation.State
	if safe, err := w.walkChildren(n.Args[:], glob, &inner); err != nil || !safe {
		return safe, collation.State{}, err
	}
	if !inputCollationSatisfied(n.InputCollation, inner) {
		return false, collation.State{}, nil
	}
	return true, collation.Finish(n.ResultCollation, inner), nil
}

func (w *Walker) walkScalarArrayOpExpr(n expr.ScalarArrayOpExpr, glob *Glob) (bool, collation.State, error) {
	if !w.Oracle.IsBuiltin(n.OperatorOID) {
		return false, collation.State{}, nil
	}
	var inner collation.State
	if safe, err := w.walkChildren(n.Args[:], glob, &inner); err != nil || !safe {
		return safe, collation.State{}, err
	}
	if !inputCollationSatisfied(n.InputCollation, inner) {
		return false, collation.State{}, nil
	}
	// Result is always boolean, hence always non-collatable.
	return true, collation.State{Tag: collation.None}, nil
}

func (w *Walker) walkRelabelType(n expr.RelabelType, glob *Glob) (bool, collation.State, error) {
	var inner collation.State
	if safe, err := w.Walk(n.Arg, glob, &inner); err != nil || !safe {
		return safe, collation.State{}, err
	}
	return true, collation.Finish(n.ResultCollation, inner), nil
}

func (w *Walker) walkBoolExpr(n expr.BoolExpr, glob *Glob) (bool, collation.State, error) {
	var inner collation.State
	if safe, err := w.walkChildren(n.Args, glob, &inner); err != nil || !safe {
		return safe, collation.State{}, err
	}
	return true, collation.State{Tag: collation.None}, nil
}

func (w *Walker) walkNullTest(n expr.NullTest, glob *Glob) (bool, collation.State, error) {
	var inner collation.State
	if safe, err := w.Walk(n.Arg, glob, &inner); err != nil || !safe {
		return safe, collation.State{}, err
	}
	return true, collation.State{Tag: collation.None}, nil
}

func (w *Walker) walkArrayExpr(n expr.ArrayExpr, glob *Glob) (bool, collation.State, error) {
	var inner collation.State
	if safe, err := w.walkChildren(n.Elements, glob, &inner); err != nil || !safe {
		return safe, collation.State{}, err
	}
	return true, collation.Finish(n.ElementCollation, inner), nil
}

// walkList recurses into each element and merges directly into the
// caller's inner state; unlike every other kind it skips the built-in
// result-type check (a List has no result type of its own).
func (w *Walker) walkList(n expr.List, glob *Glob, inner *collation.State) (bool, error) {
	for _, item := range n.Items {
		safe, err := w.Walk(item, glob, inner)
		if err != nil {
			return false, err
		}
		if !safe {
			return false, nil
		}
	}
	return true, nil
}

// Admit runs Walk at the top level for one restriction clause, then
// applies the final mutable-function safeguard (spec §4.4: "after
// admitting an expression, reject if it contains any mutable function...
// because it is expensive"). It returns the admitted parameter IDs (not
// yet deduplicated) and the root's collation state.
func Admit(oracle catalog.Oracle, relOID oid.OID, relIndex int, root expr.Expr) (bool, []int, collation.State, error) {
	w := New(oracle, relOID, relIndex)
	glob := &Glob{}
	var inner collation.State
	safe, err := w.Walk(root, glob, &inner)
	if err != nil {
		return false, nil, collation.State{}, err
	}
	if !safe {
		return false, nil, collation.State{}, nil
	}
	if oracle.ContainsMutableFunction(root) {
		return false, nil, collation.State{}, nil
	}
	return true, glob.ParamNumbers, inner, nil
}
