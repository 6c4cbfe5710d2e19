// Package collation implements the three-valued collation-safety lattice
// (spec §4.3) used by the safety walker to track where a subtree's
// collation provenance comes from.
package collation

import "github.com/sqldef/pgfdwplan/internal/oid"

// Tag is the three-valued collation-safety state of a subtree.
type Tag int

const (
	// None means the expression's type is not collatable at all.
	None Tag = iota
	// Safe means the collation derives solely from a foreign-table column.
	Safe
	// Unsafe means the collation was introduced from any other source
	// (a locally-defined COLLATE, a mismatched foreign column, ...).
	Unsafe
)

func (t Tag) String() string {
	switch t {
	case None:
		return "none"
	case Safe:
		return "safe"
	case Unsafe:
		return "unsafe"
	default:
		return "unknown"
	}
}

// State is a (tag, collation OID) pair threaded through the walk. The OID
// is only meaningful when Tag == Safe, and identifies which collation the
// Safe tag is pinned to so a later sibling with a different collation can
// be detected and promoted to Unsafe.
type State struct {
	Tag Tag
	OID oid.OID
}

// Merge folds a child's completed state into the parent's accumulated
// state, per spec §4.3. It is a pure function: both arguments are passed
// by value and the merged result is returned, so callers own the mutation
// point explicitly rather than hiding it inside the walker.
func Merge(parent, child State) State {
	if child.Tag > parent.Tag {
		return child
	}
	if child.Tag < parent.Tag {
		return parent
	}
	switch child.Tag {
	case None:
		return parent
	case Safe:
		if parent.OID == child.OID {
			return parent
		}
		// Both claim to be Safe but disagree on which collation: a
		// non-default collation wins over the default one, and two
		// different non-default collations cannot be reconciled, so the
		// merged subtree can no longer be trusted.
		if parent.OID == oid.DefaultCollationOID {
			return child
		}
		if child.OID == oid.DefaultCollationOID {
			return parent
		}
		return State{Tag: Unsafe}
	default: // Unsafe
		return State{Tag: Unsafe}
	}
}

// Finish computes a node's own final tag from its declared result
// collation and the merged tag of its children, per spec §4.3's
// "parent node's final tag" rule.
func Finish(declaredCollation oid.OID, inner State) State {
	if declaredCollation == oid.InvalidCollationOID {
		return State{Tag: None}
	}
	if inner.Tag == Safe && inner.OID == declaredCollation {
		return State{Tag: Safe, OID: declaredCollation}
	}
	return State{Tag: Unsafe, OID: declaredCollation}
}
