// Package oid defines the object-identifier type shared by every other
// package in this module. Keeping it distinct from bare int keeps the
// built-in-cutoff check from ever being satisfied by the wrong kind of
// integer (an attribute number, a relation index, ...) by accident.
package oid

// OID is a Postgres object identifier: a type, function, operator,
// namespace, relation or collation OID, depending on context.
type OID uint32

// InvalidOID is never assigned to a real catalog object.
const InvalidOID OID = 0

// FirstBootstrapOID is the cutoff below which objects are considered
// "built-in": present since initdb, hand-assigned, and stable across
// server versions. It is the Go analogue of Postgres's
// FirstBootstrapObjectId.
//
// This is also the system's one Open Question from the spec: using a
// hard cutoff means the analyzer may admit expressions that reference
// objects existing locally but not on an older remote server. Callers
// read it through DefaultCutoff below; catalog.Fake keeps its own copy
// in a Cutoff field that tests and YAML fixtures can lower.
const FirstBootstrapOID OID = 16384

// Cutoff reports the built-in-object cutoff for a given catalog. It is a
// function rather than a constant so a server-specific catalog
// implementation can lower it (e.g. to match an older remote's object
// numbering) without touching the safety walker or deparser.
type Cutoff func() OID

// DefaultCutoff returns FirstBootstrapOID, matching a same-version remote.
func DefaultCutoff() OID { return FirstBootstrapOID }

// DefaultCollationOID is the OID of the "default" collation, the one
// collation that never makes a collatable expression unsafe on its own.
const DefaultCollationOID OID = 100

// InvalidCollationOID marks a non-collatable result type.
const InvalidCollationOID OID = InvalidOID
