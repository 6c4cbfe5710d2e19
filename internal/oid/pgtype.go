package oid

// Well-known built-in type OIDs the deparser needs to recognize by
// identity (not by catalog lookup) in order to pick a literal rendering
// for a Const. These numbers are Postgres's own stable, hand-assigned
// OIDs for these types and do not change across versions.
const (
	BoolOID    OID = 16
	Int8OID    OID = 20
	Int2OID    OID = 21
	Int4OID    OID = 23
	TextOID    OID = 25
	Float4OID  OID = 700
	Float8OID  OID = 701
	UnknownOID OID = 705
	BitOID     OID = 1560
	VarbitOID  OID = 1562
	BpcharOID  OID = 1042
	VarcharOID OID = 1043
	NumericOID OID = 1700
)

// IsIntFloatNumeric reports whether t is one of the integer/float/numeric
// built-in types, per spec §4.6's Constant rendering rule.
func IsIntFloatNumeric(t OID) bool {
	switch t {
	case Int2OID, Int4OID, Int8OID, Float4OID, Float8OID, NumericOID:
		return true
	default:
		return false
	}
}

// IsBitVarbit reports whether t is bit or varbit.
func IsBitVarbit(t OID) bool {
	return t == BitOID || t == VarbitOID
}
