package collation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqldef/pgfdwplan/internal/oid"
)

func TestMergeNoneWithSafePromotesToSafe(t *testing.T) {
	parent := State{Tag: None}
	child := State{Tag: Safe, OID: 100}
	result := Merge(parent, child)
	assert.Equal(t, Safe, result.Tag)
	assert.Equal(t, oid.OID(100), result.OID)
}

func TestMergeSafeSameCollationStaysSafe(t *testing.T) {
	a := State{Tag: Safe, OID: 100}
	b := State{Tag: Safe, OID: 100}
	result := Merge(a, b)
	assert.Equal(t, Safe, result.Tag)
	assert.Equal(t, oid.OID(100), result.OID)
}

func TestMergeSafeDifferentCollationIsUnsafe(t *testing.T) {
	a := State{Tag: Safe, OID: 100}
	b := State{Tag: Safe, OID: 200}
	assert.Equal(t, Unsafe, Merge(a, b).Tag)
}

func TestMergeSafeDefaultCollationYieldsToExplicit(t *testing.T) {
	defaultTagged := State{Tag: Safe, OID: oid.DefaultCollationOID}
	explicit := State{Tag: Safe, OID: 200}
	assert.Equal(t, explicit, Merge(defaultTagged, explicit))
	assert.Equal(t, explicit, Merge(explicit, defaultTagged))
}

func TestMergeUnsafeIsContagious(t *testing.T) {
	a := State{Tag: Unsafe}
	b := State{Tag: Safe, OID: 100}
	assert.Equal(t, Unsafe, Merge(a, b).Tag)
	assert.Equal(t, Unsafe, Merge(b, a).Tag)
}

func TestMergeNoneWithNoneStaysNone(t *testing.T) {
	result := Merge(State{Tag: None}, State{Tag: None})
	assert.Equal(t, None, result.Tag)
}

func TestFinishInvalidDeclaredCollationIsNone(t *testing.T) {
	result := Finish(oid.InvalidCollationOID, State{Tag: Safe, OID: 100})
	assert.Equal(t, None, result.Tag)
}

func TestFinishMatchingDeclaredCollationIsSafe(t *testing.T) {
	result := Finish(oid.OID(100), State{Tag: Safe, OID: 100})
	assert.Equal(t, Safe, result.Tag)
	assert.Equal(t, oid.OID(100), result.OID)
}

func TestFinishMismatchedOrMissingCollationIsUnsafe(t *testing.T) {
	assert.Equal(t, Unsafe, Finish(oid.OID(100), State{Tag: Safe, OID: 200}).Tag)
	assert.Equal(t, Unsafe, Finish(oid.OID(100), State{Tag: None}).Tag)
}
