package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/sqldef/pgfdwplan/internal/expr"
	"github.com/sqldef/pgfdwplan/internal/oid"
)

// PostgresOracle implements Oracle against a live server's catalogs
// through database/sql, the way the teacher's own PostgresDatabase talks
// to Postgres (driver/postgres.go, database/postgres/database.go). It
// trades the Fake's in-memory maps for round trips: most methods here
// issue one query per call, IsBuiltin and ExprType issue none, and
// ContainsMutableFunction and WithPortableOutput issue several.
type PostgresOracle struct {
	db *sql.DB
}

// NewPostgresOracle opens a connection to dsn using lib/pq and wraps it
// as an Oracle. Closing the returned *sql.DB is the caller's
// responsibility (spec §5: Oracle implementations may block on catalog
// I/O, they don't own connection lifetime).
func NewPostgresOracle(dsn string) (*PostgresOracle, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresOracle{db: db}, nil
}

// DB exposes the underlying connection so a caller can Ping or Close it.
func (p *PostgresOracle) DB() *sql.DB { return p.db }

func (p *PostgresOracle) IsBuiltin(o oid.OID) bool {
	return o != oid.InvalidOID && o < oid.DefaultCutoff()
}

func (p *PostgresOracle) GetNamespaceName(o oid.OID) (string, error) {
	var name string
	err := p.db.QueryRow(`SELECT nspname FROM pg_catalog.pg_namespace WHERE oid = $1`, o).Scan(&name)
	if err == sql.ErrNoRows {
		return "", &LookupError{Kind: "namespace", OID: o}
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

func (p *PostgresOracle) GetRelationNamespace(relOID oid.OID) (oid.OID, error) {
	var nsOID oid.OID
	err := p.db.QueryRow(`SELECT relnamespace FROM pg_catalog.pg_class WHERE oid = $1`, relOID).Scan(&nsOID)
	if err == sql.ErrNoRows {
		return oid.InvalidOID, &LookupError{Kind: "relation", OID: relOID}
	}
	if err != nil {
		return oid.InvalidOID, err
	}
	return nsOID, nil
}

func (p *PostgresOracle) GetRelationName(relOID oid.OID) (string, error) {
	var name string
	err := p.db.QueryRow(`SELECT relname FROM pg_catalog.pg_class WHERE oid = $1`, relOID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", &LookupError{Kind: "relation", OID: relOID}
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

func (p *PostgresOracle) GetAttributeName(relOID oid.OID, attNum int) (string, error) {
	var name string
	err := p.db.QueryRow(`SELECT attname FROM pg_catalog.pg_attribute WHERE attrelid = $1 AND attnum = $2`, relOID, attNum).Scan(&name)
	if err == sql.ErrNoRows {
		return "", &LookupError{Kind: "attribute", OID: relOID}
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

func (p *PostgresOracle) GetAttributeCount(relOID oid.OID) (int, error) {
	var count int
	err := p.db.QueryRow(`SELECT count(*) FROM pg_catalog.pg_attribute WHERE attrelid = $1 AND attnum > 0`, relOID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (p *PostgresOracle) AttributeIsDropped(relOID oid.OID, attNum int) (bool, error) {
	var dropped bool
	err := p.db.QueryRow(`SELECT attisdropped FROM pg_catalog.pg_attribute WHERE attrelid = $1 AND attnum = $2`, relOID, attNum).Scan(&dropped)
	if err == sql.ErrNoRows {
		return false, &LookupError{Kind: "attribute", OID: relOID}
	}
	if err != nil {
		return false, err
	}
	return dropped, nil
}

func (p *PostgresOracle) GetForeignTableOptions(relOID oid.OID) ([]Option, error) {
	return p.queryOptions(`
		SELECT option_name, option_value FROM (
			SELECT (pg_options_to_table(ftoptions)).* FROM pg_catalog.pg_foreign_table WHERE ftrelid = $1
		) opts`, relOID)
}

func (p *PostgresOracle) GetForeignColumnOptions(relOID oid.OID, attNum int) ([]Option, error) {
	return p.queryOptions(`
		SELECT option_name, option_value FROM (
			SELECT (pg_options_to_table(attfdwoptions)).* FROM pg_catalog.pg_attribute
			WHERE attrelid = $1 AND attnum = $2
		) opts`, relOID, attNum)
}

func (p *PostgresOracle) queryOptions(query string, args ...any) ([]Option, error) {
	rows, err := p.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opts []Option
	for rows.Next() {
		var o Option
		if err := rows.Scan(&o.Name, &o.Value); err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}

func (p *PostgresOracle) LookupOperator(o oid.OID) (OperatorInfo, error) {
	var info OperatorInfo
	var kind string
	err := p.db.QueryRow(`
		SELECT oprname, oprnamespace, oprkind FROM pg_catalog.pg_operator WHERE oid = $1`, o).
		Scan(&info.Name, &info.NamespaceOID, &kind)
	if err == sql.ErrNoRows {
		return OperatorInfo{}, &LookupError{Kind: "operator", OID: o}
	}
	if err != nil {
		return OperatorInfo{}, err
	}
	switch kind {
	case "l":
		info.Kind = OperatorPrefix
	case "r":
		info.Kind = OperatorPostfix
	default:
		info.Kind = OperatorInfix
	}
	return info, nil
}

func (p *PostgresOracle) LookupFunction(o oid.OID) (FunctionInfo, error) {
	var info FunctionInfo
	err := p.db.QueryRow(`
		SELECT proname, pronamespace FROM pg_catalog.pg_proc WHERE oid = $1`, o).
		Scan(&info.Name, &info.NamespaceOID)
	if err == sql.ErrNoRows {
		return FunctionInfo{}, &LookupError{Kind: "function", OID: o}
	}
	if err != nil {
		return FunctionInfo{}, err
	}
	return info, nil
}

// ContainsMutableFunction walks e in Go and only hits the database for
// FuncExpr nodes, one query per FuncExpr encountered (results are not
// cached), via isFunctionMutable.
func (p *PostgresOracle) ContainsMutableFunction(e expr.Expr) bool {
	mutable, err := p.containsMutable(e)
	return err == nil && mutable
}

func (p *PostgresOracle) containsMutable(e expr.Expr) (bool, error) {
	switch n := e.(type) {
	case expr.FuncExpr:
		isMutable, err := p.isFunctionMutable(n.FuncOID)
		if err != nil || isMutable {
			return isMutable, err
		}
		return p.anyMutable(n.Args)
	case expr.OpExpr:
		return p.anyMutable(n.Args)
	case expr.DistinctExpr:
		return p.anyMutable(n.Args[:])
	case expr.ScalarArrayOpExpr:
		return p.anyMutable(n.Args[:])
	case expr.ArrayRef:
		base, err := p.containsMutable(n.Base)
		if err != nil || base {
			return base, err
		}
		return p.anyMutable(append(append([]expr.Expr{}, n.UpperIndex...), n.LowerIndex...))
	case expr.RelabelType:
		return p.containsMutable(n.Arg)
	case expr.BoolExpr:
		return p.anyMutable(n.Args)
	case expr.NullTest:
		return p.containsMutable(n.Arg)
	case expr.ArrayExpr:
		return p.anyMutable(n.Elements)
	case expr.List:
		return p.anyMutable(n.Items)
	default:
		return false, nil
	}
}

func (p *PostgresOracle) anyMutable(items []expr.Expr) (bool, error) {
	for _, item := range items {
		ok, err := p.containsMutable(item)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func (p *PostgresOracle) isFunctionMutable(funcOID oid.OID) (bool, error) {
	var volatility string
	err := p.db.QueryRow(`SELECT provolatile FROM pg_catalog.pg_proc WHERE oid = $1`, funcOID).Scan(&volatility)
	if err == sql.ErrNoRows {
		return false, &LookupError{Kind: "function", OID: funcOID}
	}
	if err != nil {
		return false, err
	}
	return volatility != "i", nil
}

func (p *PostgresOracle) ExprType(e expr.Expr) (oid.OID, error) {
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

func (p *PostgresOracle) ExprLengthCoercionTypmod(e expr.Expr) (int32, bool) {
	fe, ok := e.(expr.FuncExpr)
	if !ok || fe.LengthCoercionTypmod == nil {
		return 0, false
	}
	var isLengthCoercion bool
	err := p.db.QueryRow(`SELECT proname IN ('bpchar', 'varchar', 'numeric', 'bit', 'varbit')
		FROM pg_catalog.pg_proc WHERE oid = $1`, fe.FuncOID).Scan(&isLengthCoercion)
	if err != nil || !isLengthCoercion {
		return 0, false
	}
	return *fe.LengthCoercionTypmod, true
}

func (p *PostgresOracle) FormatTypeWithTypmod(typeOID oid.OID, typmod int32) (string, error) {
	var text string
	err := p.db.QueryRow(`SELECT pg_catalog.format_type($1, $2)`, typeOID, nullableTypmod(typmod)).Scan(&text)
	if err != nil {
		return "", err
	}
	return text, nil
}

func nullableTypmod(typmod int32) any {
	if typmod < 0 {
		return nil
	}
	return typmod
}

func (p *PostgresOracle) QuoteIdentifier(name string) string {
	var quoted string
	if err := p.db.QueryRow(`SELECT quote_ident($1)`, name).Scan(&quoted); err != nil {
		return `"` + name + `"`
	}
	return quoted
}

// TypeOutput asks the server itself to render value through typeOID's
// output function, rather than reimplementing Postgres's numeric/date
// formatting client-side.
func (p *PostgresOracle) TypeOutput(typeOID oid.OID, value any) (string, error) {
	var out string
	err := p.db.QueryRow(`SELECT CAST($1 AS text)::pg_catalog.text`, value).Scan(&out)
	if err != nil {
		return "", err
	}
	return out, nil
}

// WithPortableOutput switches DateStyle to ISO and IntervalStyle to
// postgres for the duration of fn, restoring whatever the session had before (spec §4.7).
func (p *PostgresOracle) WithPortableOutput(fn func() error) error {
	var priorDateStyle, priorIntervalStyle string
	if err := p.db.QueryRow(`SHOW DateStyle`).Scan(&priorDateStyle); err != nil {
		return err
	}
	if err := p.db.QueryRow(`SHOW IntervalStyle`).Scan(&priorIntervalStyle); err != nil {
		return err
	}
	if _, err := p.db.Exec(`SET LOCAL DateStyle = 'ISO'`); err != nil {
		return err
	}
	if _, err := p.db.Exec(`SET LOCAL IntervalStyle = 'postgres'`); err != nil {
		return err
	}
	defer func() {
		_, _ = p.db.Exec(`SET LOCAL DateStyle = $1`, priorDateStyle)
		_, _ = p.db.Exec(`SET LOCAL IntervalStyle = $1`, priorIntervalStyle)
	}()
	return fn()
}
