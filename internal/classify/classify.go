// Package classify implements the Condition Classifier of spec §4.5: it
// partitions a relation's restriction list into remote_conds,
// param_conds and local_conds, plus a deduplicated set of the external
// parameter IDs referenced anywhere in param_conds.
package classify

import (
	"github.com/sqldef/pgfdwplan/internal/catalog"
	"github.com/sqldef/pgfdwplan/internal/expr"
	"github.com/sqldef/pgfdwplan/internal/oid"
	"github.com/sqldef/pgfdwplan/internal/safety"
)

// Result is the three-way partition plus the deduplicated parameter set.
type Result struct {
	RemoteConds []expr.Expr // safe, no external parameters
	ParamConds  []expr.Expr // safe, references external parameters
	LocalConds  []expr.Expr // unsafe; must be evaluated locally
	ParamIDs    map[int]struct{}
}

// Classify runs the safety walker once per restriction, fresh each time
// (spec §4.5: "run the walker with a fresh glob"), and buckets the
// clause accordingly. A catalog lookup failure aborts the whole call,
// since it is fatal per spec §7 — partial classification is not a
// meaningful result to return.
func Classify(oracle catalog.Oracle, relOID oid.OID, relIndex int, restrictions []expr.Expr) (*Result, error) {
	res := &Result{ParamIDs: map[int]struct{}{}}
	for _, clause := range restrictions {
		safe, paramIDs, _, err := safety.Admit(oracle, relOID, relIndex, clause)
		if err != nil {
			return nil, err
		}
		if !safe {
			res.LocalConds = append(res.LocalConds, clause)
			continue
		}
		if len(paramIDs) == 0 {
			res.RemoteConds = append(res.RemoteConds, clause)
			continue
		}
		res.ParamConds = append(res.ParamConds, clause)
		for _, id := range paramIDs {
			res.ParamIDs[id] = struct{}{}
		}
	}
	return res, nil
}
