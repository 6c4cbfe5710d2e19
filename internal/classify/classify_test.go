package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldef/pgfdwplan/internal/catalog"
	"github.com/sqldef/pgfdwplan/internal/expr"
	"github.com/sqldef/pgfdwplan/internal/oid"
)

const (
	relOID   oid.OID = 16400
	relIndex         = 1
	eqOID    oid.OID = 96
)

func newFixture() *catalog.Fake {
	f := catalog.NewFake()
	f.Namespaces[11] = "pg_catalog"
	f.Relations[relOID] = &catalog.Relation{
		OID:  relOID,
		Name: "T 1",
		Columns: []catalog.Column{
			{Name: "c1", TypeOID: oid.Int4OID},
			{Name: "c8", TypeOID: 20000}, // above the default cutoff
		},
	}
	f.Operators[eqOID] = catalog.OperatorInfo{Name: "=", NamespaceOID: 11, Kind: catalog.OperatorInfix}
	f.TypeOutputs[oid.Int4OID] = func(v any) (string, error) { return "1", nil }
	return f
}

func col(attNum int, typeOID oid.OID) expr.Var {
	return expr.Var{RelationIndex: relIndex, AttrNumber: attNum, TypeOID: typeOID}
}

func TestClassifyPartitionsIntoRemoteParamAndLocal(t *testing.T) {
	f := newFixture()

	remote := expr.OpExpr{OperatorOID: eqOID, ResultTypeOID: oid.BoolOID,
		Args: []expr.Expr{col(1, oid.Int4OID), expr.Const{TypeOID: oid.Int4OID}}}
	withParam := expr.OpExpr{OperatorOID: eqOID, ResultTypeOID: oid.BoolOID,
		Args: []expr.Expr{col(1, oid.Int4OID), expr.Param{ParamKind: expr.ParamExtern, ID: 7, TypeOID: oid.Int4OID}}}
	local := expr.OpExpr{OperatorOID: eqOID, ResultTypeOID: oid.BoolOID,
		Args: []expr.Expr{col(2, 20000), expr.Const{TypeOID: 20000}}}

	result, err := Classify(f, relOID, relIndex, []expr.Expr{remote, withParam, local})
	require.NoError(t, err)

	assert.Equal(t, []expr.Expr{remote}, result.RemoteConds)
	assert.Equal(t, []expr.Expr{withParam}, result.ParamConds)
	assert.Equal(t, []expr.Expr{local}, result.LocalConds)
	assert.Equal(t, map[int]struct{}{7: {}}, result.ParamIDs)
}

func TestClassifyEmptyInputYieldsEmptyPartition(t *testing.T) {
	f := newFixture()
	result, err := Classify(f, relOID, relIndex, nil)
	require.NoError(t, err)
	assert.Empty(t, result.RemoteConds)
	assert.Empty(t, result.ParamConds)
	assert.Empty(t, result.LocalConds)
	assert.Empty(t, result.ParamIDs)
}

func TestClassifyDedupesRepeatedParameterIDs(t *testing.T) {
	f := newFixture()
	clause := expr.BoolExpr{
		Op: expr.BoolAnd,
		Args: []expr.Expr{
			expr.OpExpr{OperatorOID: eqOID, ResultTypeOID: oid.BoolOID,
				Args: []expr.Expr{col(1, oid.Int4OID), expr.Param{ParamKind: expr.ParamExtern, ID: 3, TypeOID: oid.Int4OID}}},
			expr.OpExpr{OperatorOID: eqOID, ResultTypeOID: oid.BoolOID,
				Args: []expr.Expr{col(1, oid.Int4OID), expr.Param{ParamKind: expr.ParamExtern, ID: 3, TypeOID: oid.Int4OID}}},
		},
	}
	result, err := Classify(f, relOID, relIndex, []expr.Expr{clause})
	require.NoError(t, err)
	assert.Equal(t, map[int]struct{}{3: {}}, result.ParamIDs)
	assert.Len(t, result.ParamConds, 1)
}
