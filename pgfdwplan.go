// Package pgfdwplan is the public facade of the query pushdown planner
// core: it wires the Condition Classifier, Expression Deparser and
// Statement Builders into the external interface named by spec §6.
// Everything underneath internal/ is an implementation detail; callers
// only see the functions exported here plus the catalog.Oracle contract
// they must implement.
package pgfdwplan

import (
	"github.com/sqldef/pgfdwplan/internal/catalog"
	"github.com/sqldef/pgfdwplan/internal/classify"
	"github.com/sqldef/pgfdwplan/internal/expr"
	"github.com/sqldef/pgfdwplan/internal/oid"
	"github.com/sqldef/pgfdwplan/internal/planner"
	"github.com/sqldef/pgfdwplan/internal/sqlwriter"
)

// Re-exported so callers outside this module never need to import the
// internal packages directly.
type (
	OID         = oid.OID
	Oracle      = catalog.Oracle
	Expr        = expr.Expr
	Buffer      = sqlwriter.Buffer
	UsedColumns = planner.UsedColumns
)

// ClassificationResult is the three-way restriction-list partition plus
// the deduplicated external parameter-ID set (spec §4.5).
type ClassificationResult = classify.Result

// NewBuffer returns an empty, caller-owned output buffer.
func NewBuffer() *Buffer { return sqlwriter.New() }

// ClassifyConditions partitions rel's restriction list into remote,
// parameterized and local-only clauses by running the safety walker
// fresh over each one (spec §4.5). relIndex is the range-table index of
// rel within the planner's query; only Variables at that index may be
// pushed down.
func ClassifyConditions(oracle Oracle, relOID OID, relIndex int, restrictions []Expr) (*ClassificationResult, error) {
	return classify.Classify(oracle, relOID, relIndex, restrictions)
}

// DeparseSimpleSQL appends the scan's top-level SELECT ... FROM ... to
// buf (spec §4.7).
func DeparseSimpleSQL(buf *Buffer, oracle Oracle, relOID OID, used UsedColumns) error {
	return planner.DeparseSimpleSQL(buf, oracle, relOID, used)
}

// AppendWhereClause appends admitted restriction clauses to an
// in-progress statement already holding a SELECT ... FROM ... (spec
// §4.7). isFirst reports whether buf has no WHERE clause yet.
func AppendWhereClause(buf *Buffer, oracle Oracle, relOID OID, isFirst bool, exprs []Expr) error {
	return planner.AppendWhereClause(buf, oracle, relOID, isFirst, exprs)
}

// DeparseAnalyzeSizeSQL appends the ANALYZE size-estimation query to buf
// (spec §4.7). blockSize is the local block size used to convert the
// remote relation's byte size into an approximate page count.
func DeparseAnalyzeSizeSQL(buf *Buffer, oracle Oracle, relOID OID, blockSize int) error {
	return planner.DeparseAnalyzeSizeSQL(buf, oracle, relOID, blockSize)
}

// DeparseAnalyzeSQL appends the ANALYZE sample-row query to buf (spec
// §4.7).
func DeparseAnalyzeSQL(buf *Buffer, oracle Oracle, relOID OID) error {
	return planner.DeparseAnalyzeSQL(buf, oracle, relOID)
}
