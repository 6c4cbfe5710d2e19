package pgfdwplan_test

import (
	"testing"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgfdwplan "github.com/sqldef/pgfdwplan"
	"github.com/sqldef/pgfdwplan/internal/catalog"
	"github.com/sqldef/pgfdwplan/internal/expr"
	"github.com/sqldef/pgfdwplan/internal/oid"
)

const (
	relOID oid.OID = 16400
	eqOID  oid.OID = 96
)

func newFixture() *catalog.Fake {
	f := catalog.NewFake()
	f.Namespaces[11] = "pg_catalog"
	f.Namespaces[2200] = "public"
	f.Relations[relOID] = &catalog.Relation{
		OID:          relOID,
		NamespaceOID: 2200,
		Name:         "t1",
		Columns: []catalog.Column{
			{Name: "c1", TypeOID: oid.Int4OID},
			{Name: "c2", TypeOID: oid.TextOID},
		},
	}
	f.Operators[eqOID] = catalog.OperatorInfo{Name: "=", NamespaceOID: 11, Kind: catalog.OperatorInfix}
	f.TypeNames[oid.Int4OID] = "integer"
	f.TypeNames[oid.TextOID] = "text"
	f.TypeOutputs[oid.Int4OID] = func(v any) (string, error) { return "1", nil }
	f.TypeOutputs[oid.TextOID] = func(v any) (string, error) { return v.(string), nil }
	return f
}

// TestPlanScanEndToEnd exercises the classifier together with the scan
// SELECT and WHERE-clause builders the way a foreign-data wrapper's
// planner would chain them for a single scan; the two ANALYZE builders
// are covered by TestPlanAnalyzeStatementsEndToEnd.
func TestPlanScanEndToEnd(t *testing.T) {
	f := newFixture()
	restrictions := []pgfdwplan.Expr{
		expr.OpExpr{OperatorOID: eqOID, ResultTypeOID: oid.BoolOID, Args: []expr.Expr{
			expr.Var{RelationIndex: 1, AttrNumber: 1, TypeOID: oid.Int4OID},
			expr.Const{TypeOID: oid.Int4OID, TypeMod: -1, Value: 1},
		}},
		expr.OpExpr{OperatorOID: eqOID, ResultTypeOID: oid.BoolOID, Args: []expr.Expr{
			expr.Var{RelationIndex: 1, AttrNumber: 2, TypeOID: oid.TextOID},
			expr.Param{ParamKind: expr.ParamExtern, ID: 1, TypeOID: oid.TextOID, TypeMod: -1},
		}},
	}

	result, err := pgfdwplan.ClassifyConditions(f, relOID, 1, restrictions)
	require.NoError(t, err)
	assert.Len(t, result.RemoteConds, 1)
	assert.Len(t, result.ParamConds, 1)
	assert.Empty(t, result.LocalConds)

	buf := pgfdwplan.NewBuffer()
	require.NoError(t, pgfdwplan.DeparseSimpleSQL(buf, f, relOID, pgfdwplan.UsedColumns{WholeRow: true}))
	require.NoError(t, pgfdwplan.AppendWhereClause(buf, f, relOID, true, result.RemoteConds))
	require.NoError(t, pgfdwplan.AppendWhereClause(buf, f, relOID, false, result.ParamConds))

	got := buf.String()
	assert.Equal(t, `SELECT c1, c2 FROM public.t1 WHERE ((c1 = 1)) AND ((c2 = $1::text))`, got)
	assertParsesAsValidSQL(t, got)
}

func TestPlanAnalyzeStatementsEndToEnd(t *testing.T) {
	f := newFixture()

	sizeBuf := pgfdwplan.NewBuffer()
	require.NoError(t, pgfdwplan.DeparseAnalyzeSizeSQL(sizeBuf, f, relOID, 8192))
	assertParsesAsValidSQL(t, sizeBuf.String())

	sampleBuf := pgfdwplan.NewBuffer()
	require.NoError(t, pgfdwplan.DeparseAnalyzeSQL(sampleBuf, f, relOID))
	assertParsesAsValidSQL(t, sampleBuf.String())
}

// TestClassifyDeparseParseClassifyIsIdempotent is the round-trip property
// from spec §8: a restriction is admitted and deparsed, a real Postgres
// parser must accept the emitted text, and classifying the same
// restriction a second time must yield the same remote/param/local
// partition as the first pass. Like assertParsesAsValidSQL, the parse
// step checks the deparser's output with a real SQL parser, so it
// catches syntax bugs a hand-written expected-string test would miss.
func TestClassifyDeparseParseClassifyIsIdempotent(t *testing.T) {
	f := newFixture()
	restriction := expr.OpExpr{OperatorOID: eqOID, ResultTypeOID: oid.BoolOID, Args: []expr.Expr{
		expr.Var{RelationIndex: 1, AttrNumber: 1, TypeOID: oid.Int4OID},
		expr.Const{TypeOID: oid.Int4OID, TypeMod: -1, Value: 1},
	}}

	first, err := pgfdwplan.ClassifyConditions(f, relOID, 1, []pgfdwplan.Expr{restriction})
	require.NoError(t, err)
	require.Len(t, first.RemoteConds, 1)

	buf := pgfdwplan.NewBuffer()
	require.NoError(t, pgfdwplan.DeparseSimpleSQL(buf, f, relOID, pgfdwplan.UsedColumns{WholeRow: true}))
	require.NoError(t, pgfdwplan.AppendWhereClause(buf, f, relOID, true, first.RemoteConds))

	remoteSQL := buf.String()
	tree, err := pg_query.Parse(remoteSQL)
	require.NoError(t, err, "remote SQL emitted by the deparser must be valid Postgres syntax")
	require.NotEmpty(t, tree.Stmts)

	second, err := pgfdwplan.ClassifyConditions(f, relOID, 1, []pgfdwplan.Expr{restriction})
	require.NoError(t, err)
	assert.Equal(t, first.RemoteConds, second.RemoteConds)
	assert.Equal(t, first.ParamConds, second.ParamConds)
	assert.Equal(t, first.LocalConds, second.LocalConds)
}

func assertParsesAsValidSQL(t *testing.T, sql string) {
	t.Helper()
	tree, err := pg_query.Parse(sql)
	require.NoError(t, err, "generated SQL must be syntactically valid Postgres: %s", sql)
	assert.NotEmpty(t, tree.Stmts)
}
