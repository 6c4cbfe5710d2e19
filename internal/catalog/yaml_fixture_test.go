package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sqldef/pgfdwplan/internal/oid"
)

const testFixtureYAML = `
cutoff: 16384
namespaces:
  11: pg_catalog
  2200: public
relations:
  16400:
    namespace: 2200
    name: "T 1"
    schema_option: "S 1"
    table_option: "T 1"
    columns:
      - name: "C 1"
        type_oid: 23
        foreign_name: "C 1"
      - name: c2
        type_oid: 25
operators:
  96:
    name: "="
    namespace: 11
    kind: infix
functions:
  1242:
    name: int4pl
    namespace: 11
types:
  23:
    name: integer
    output: int
  25:
    name: text
    output: text
mutable_functions: [9999]
length_coercions: [1688]
`

func parseTestFixture(t *testing.T) *Fake {
	t.Helper()
	var doc yamlDocument
	require.NoError(t, yaml.Unmarshal([]byte(testFixtureYAML), &doc))
	f, err := buildFakeFromYAML(doc)
	require.NoError(t, err)
	return f
}

func TestBuildFakeFromYAMLRelation(t *testing.T) {
	f := parseTestFixture(t)
	rel, ok := f.Relations[16400]
	require.True(t, ok)
	assert.Equal(t, "T 1", rel.Name)
	assert.Equal(t, "S 1", rel.SchemaOption)
	require.Len(t, rel.Columns, 2)
	assert.Equal(t, "C 1", rel.Columns[0].ForeignName)
}

func TestBuildFakeFromYAMLOperatorsAndFunctions(t *testing.T) {
	f := parseTestFixture(t)
	op, err := f.LookupOperator(96)
	require.NoError(t, err)
	assert.Equal(t, "=", op.Name)
	assert.Equal(t, OperatorInfix, op.Kind)

	fn, err := f.LookupFunction(1242)
	require.NoError(t, err)
	assert.Equal(t, "int4pl", fn.Name)
}

func TestBuildFakeFromYAMLTypeOutputStyles(t *testing.T) {
	f := parseTestFixture(t)
	text, err := f.TypeOutput(oid.Int4OID, 3.0)
	require.NoError(t, err)
	assert.Equal(t, "3", text)

	text, err = f.TypeOutput(oid.TextOID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestBuildFakeFromYAMLMutableAndLengthCoercion(t *testing.T) {
	f := parseTestFixture(t)
	assert.True(t, f.Mutable[9999])
	assert.True(t, f.LengthCoercions[1688])
}

func TestOutputStyleUnknownNameErrors(t *testing.T) {
	_, err := outputStyle("nonsense")
	assert.Error(t, err)
}
