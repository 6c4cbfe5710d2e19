package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldef/pgfdwplan/internal/catalog"
	"github.com/sqldef/pgfdwplan/internal/expr"
	"github.com/sqldef/pgfdwplan/internal/oid"
	"github.com/sqldef/pgfdwplan/internal/sqlwriter"
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
		SchemaOption: "S 1",
		TableOption:  "T 1",
		Columns: []catalog.Column{
			{Name: "c1", TypeOID: oid.Int4OID, ForeignName: "C 1"},
			{Name: "c2", TypeOID: oid.Int4OID},
			{Name: "c3", TypeOID: oid.TextOID, Dropped: true},
		},
	}
	f.Operators[eqOID] = catalog.OperatorInfo{Name: "=", NamespaceOID: 11, Kind: catalog.OperatorInfix}
	f.TypeNames[oid.Int4OID] = "integer"
	f.TypeOutputs[oid.Int4OID] = func(v any) (string, error) { return "1", nil }
	return f
}

func TestDeparseSimpleSQLWholeRow(t *testing.T) {
	f := newFixture()
	buf := sqlwriter.New()
	err := DeparseSimpleSQL(buf, f, relOID, UsedColumns{WholeRow: true})
	require.NoError(t, err)
	assert.Equal(t, `SELECT "C 1", c2 FROM "S 1"."T 1"`, buf.String())
}

func TestDeparseSimpleSQLNullsOutUnusedColumns(t *testing.T) {
	f := newFixture()
	buf := sqlwriter.New()
	err := DeparseSimpleSQL(buf, f, relOID, UsedColumns{Attrs: map[int]bool{2: true}})
	require.NoError(t, err)
	assert.Equal(t, `SELECT NULL, c2 FROM "S 1"."T 1"`, buf.String())
}

func TestDeparseSimpleSQLEmptyProjectionEmitsSingleNull(t *testing.T) {
	f := newFixture()
	f.Relations[relOID].Columns = []catalog.Column{{Name: "c1", TypeOID: oid.Int4OID, Dropped: true}}
	buf := sqlwriter.New()
	err := DeparseSimpleSQL(buf, f, relOID, UsedColumns{WholeRow: true})
	require.NoError(t, err)
	assert.Equal(t, `SELECT NULL FROM "S 1"."T 1"`, buf.String())
}

func TestAppendWhereClauseFirstUsesWhereKeyword(t *testing.T) {
	f := newFixture()
	buf := sqlwriter.New()
	buf.WriteString(`SELECT "C 1" FROM "S 1"."T 1"`)
	cond := expr.OpExpr{OperatorOID: eqOID, ResultTypeOID: oid.BoolOID, Args: []expr.Expr{
		expr.Var{RelationIndex: 1, AttrNumber: 1, TypeOID: oid.Int4OID},
		expr.Const{TypeOID: oid.Int4OID, TypeMod: -1, Value: 1},
	}}
	err := AppendWhereClause(buf, f, relOID, true, []expr.Expr{cond})
	require.NoError(t, err)
	assert.Equal(t, `SELECT "C 1" FROM "S 1"."T 1" WHERE (("C 1" = 1))`, buf.String())
}

func TestAppendWhereClauseSubsequentUsesAndKeyword(t *testing.T) {
	f := newFixture()
	buf := sqlwriter.New()
	buf.WriteString(`SELECT "C 1" FROM "S 1"."T 1" WHERE (("C 1" = 1))`)
	cond := expr.OpExpr{OperatorOID: eqOID, ResultTypeOID: oid.BoolOID, Args: []expr.Expr{
		expr.Var{RelationIndex: 1, AttrNumber: 2, TypeOID: oid.Int4OID},
		expr.Const{TypeOID: oid.Int4OID, TypeMod: -1, Value: 1},
	}}
	err := AppendWhereClause(buf, f, relOID, false, []expr.Expr{cond})
	require.NoError(t, err)
	assert.Equal(t, `SELECT "C 1" FROM "S 1"."T 1" WHERE (("C 1" = 1)) AND ((c2 = 1))`, buf.String())
}

func TestAppendWhereClauseNoConditionsIsNoop(t *testing.T) {
	f := newFixture()
	buf := sqlwriter.New()
	buf.WriteString("SELECT 1")
	err := AppendWhereClause(buf, f, relOID, true, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", buf.String())
}

func TestDeparseAnalyzeSizeSQL(t *testing.T) {
	f := newFixture()
	buf := sqlwriter.New()
	err := DeparseAnalyzeSizeSQL(buf, f, relOID, 8192)
	require.NoError(t, err)
	assert.Equal(t, `SELECT pg_catalog.pg_relation_size('"S 1"."T 1"'::pg_catalog.regclass) / 8192`, buf.String())
}

func TestDeparseAnalyzeSizeSQLRejectsNonPositiveBlockSize(t *testing.T) {
	f := newFixture()
	buf := sqlwriter.New()
	err := DeparseAnalyzeSizeSQL(buf, f, relOID, 0)
	require.Error(t, err)
}

func TestDeparseAnalyzeSQLUsesRemoteColumnNames(t *testing.T) {
	f := newFixture()
	buf := sqlwriter.New()
	err := DeparseAnalyzeSQL(buf, f, relOID)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "C 1", c2 FROM "S 1"."T 1"`, buf.String())
}
