// Package planner implements the four Statement Builders of spec §4.7:
// the simple scan SELECT, the WHERE-clause append, the ANALYZE size
// query and the ANALYZE sample query. Each takes a caller-owned
// sqlwriter.Buffer and appends to it; none of them own the buffer's
// lifetime.
package planner

import (
	"fmt"

	"github.com/sqldef/pgfdwplan/internal/catalog"
	"github.com/sqldef/pgfdwplan/internal/deparse"
	"github.com/sqldef/pgfdwplan/internal/expr"
	"github.com/sqldef/pgfdwplan/internal/oid"
	"github.com/sqldef/pgfdwplan/internal/sqlwriter"
)

// UsedColumns describes which attributes of the scanned relation a plan
// actually needs: either an explicit attribute-number set, or WholeRow,
// which stands for "every live column" (a whole-row Var reference).
type UsedColumns struct {
	Attrs    map[int]bool
	WholeRow bool
}

func (u UsedColumns) needs(attNum int) bool {
	return u.WholeRow || u.Attrs[attNum]
}

// remoteRelationName resolves the schema.table pair the remote side
// should see, honoring schema_name/table_name FDW options and falling
// back to the relation's own catalog names.
func remoteRelationName(oracle catalog.Oracle, relOID oid.OID) (schema, table string, err error) {
	opts, err := oracle.GetForeignTableOptions(relOID)
	if err != nil {
		return "", "", err
	}
	for _, o := range opts {
		switch o.Name {
		case "schema_name":
			schema = o.Value
		case "table_name":
			table = o.Value
		}
	}
	if schema == "" {
		nsOID, err := oracle.GetRelationNamespace(relOID)
		if err != nil {
			return "", "", err
		}
		schema, err = oracle.GetNamespaceName(nsOID)
		if err != nil {
			return "", "", err
		}
	}
	if table == "" {
		table, err = oracle.GetRelationName(relOID)
		if err != nil {
			return "", "", err
		}
	}
	return schema, table, nil
}

// remoteColumnName resolves one attribute's remote name, honoring a
// column_name option override.
func remoteColumnName(oracle catalog.Oracle, relOID oid.OID, attNum int) (string, error) {
	opts, err := oracle.GetForeignColumnOptions(relOID, attNum)
	if err != nil {
		return "", err
	}
	for _, o := range opts {
		if o.Name == "column_name" {
			return o.Value, nil
		}
	}
	return oracle.GetAttributeName(relOID, attNum)
}

// DeparseSimpleSQL builds the scan's top-level SELECT ... FROM ...
// (spec §4.7 "Simple scan SELECT"). Columns not in used are rendered as
// a literal NULL placeholder so the executor's tuple shape is preserved;
// dropped columns are skipped entirely. If nothing remains, a single
// NULL is emitted so the SELECT list is never empty.
func DeparseSimpleSQL(buf *sqlwriter.Buffer, oracle catalog.Oracle, relOID oid.OID, used UsedColumns) error {
	count, err := oracle.GetAttributeCount(relOID)
	if err != nil {
		return err
	}

	buf.WriteString("SELECT ")
	wrote := false
	for attNum := 1; attNum <= count; attNum++ {
		dropped, err := oracle.AttributeIsDropped(relOID, attNum)
		if err != nil {
			return err
		}
		if dropped {
			continue
		}
		if wrote {
			buf.WriteString(", ")
		}
		wrote = true
		if !used.needs(attNum) {
			buf.WriteString("NULL")
			continue
		}
		name, err := remoteColumnName(oracle, relOID, attNum)
		if err != nil {
			return err
		}
		buf.WriteIdent(name)
	}
	if !wrote {
		buf.WriteString("NULL")
	}

	schema, table, err := remoteRelationName(oracle, relOID)
	if err != nil {
		return err
	}
	buf.WriteString(" FROM ")
	buf.WriteQualifiedIdent(schema, table)
	return nil
}

// AppendWhereClause appends admitted restriction clauses to an
// in-progress statement (spec §4.7 "WHERE clause append"). isFirst says
// whether the statement has no WHERE clause yet; the introducer word is
// "WHERE" or "AND" accordingly. Each clause is independently wrapped in
// parentheses and the full set is joined with "AND". Deparsing runs
// under the oracle's portable output mode so constant literals round
// trip unambiguously regardless of the remote session's locale.
func AppendWhereClause(buf *sqlwriter.Buffer, oracle catalog.Oracle, relOID oid.OID, isFirst bool, exprs []expr.Expr) error {
	if len(exprs) == 0 {
		return nil
	}
	d := deparse.New(oracle, relOID)
	return oracle.WithPortableOutput(func() error {
		for i, e := range exprs {
			if isFirst && i == 0 {
				buf.WriteString(" WHERE (")
			} else {
				buf.WriteString(" AND (")
			}
			if err := d.Deparse(buf, e); err != nil {
				return err
			}
			buf.WriteByte(')')
		}
		return nil
	})
}

// DeparseAnalyzeSizeSQL builds the ANALYZE size-estimation query (spec
// §4.7 "Analyze size query"). blockSize is the local block size used to
// convert the remote relation's on-disk byte size into an approximate
// page count; this is documented as a known approximation, since the
// remote server's actual block size may differ.
func DeparseAnalyzeSizeSQL(buf *sqlwriter.Buffer, oracle catalog.Oracle, relOID oid.OID, blockSize int) error {
	if blockSize <= 0 {
		return fmt.Errorf("planner: block size must be positive, got %d", blockSize)
	}
	schema, table, err := remoteRelationName(oracle, relOID)
	if err != nil {
		return err
	}
	qualified := oracle.QuoteIdentifier(table)
	if schema != "" {
		qualified = oracle.QuoteIdentifier(schema) + "." + qualified
	}
	buf.WriteString("SELECT pg_catalog.pg_relation_size(")
	buf.WriteStringLiteral(qualified)
	buf.WriteString("::pg_catalog.regclass) / ")
	buf.WriteInt(blockSize)
	return nil
}

// DeparseAnalyzeSQL builds the ANALYZE sample-row query (spec §4.7
// "Analyze sample query"): every non-dropped column by its remote name,
// or a single NULL if the relation has none.
func DeparseAnalyzeSQL(buf *sqlwriter.Buffer, oracle catalog.Oracle, relOID oid.OID) error {
	count, err := oracle.GetAttributeCount(relOID)
	if err != nil {
		return err
	}

	buf.WriteString("SELECT ")
	wrote := false
	for attNum := 1; attNum <= count; attNum++ {
		dropped, err := oracle.AttributeIsDropped(relOID, attNum)
		if err != nil {
			return err
		}
		if dropped {
			continue
		}
		if wrote {
			buf.WriteString(", ")
		}
		wrote = true
		name, err := remoteColumnName(oracle, relOID, attNum)
		if err != nil {
			return err
		}
		buf.WriteIdent(name)
	}
	if !wrote {
		buf.WriteString("NULL")
	}

	schema, table, err := remoteRelationName(oracle, relOID)
	if err != nil {
		return err
	}
	buf.WriteString(" FROM ")
	buf.WriteQualifiedIdent(schema, table)
	return nil
}
