package oid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCutoffIsFirstBootstrapOID(t *testing.T) {
	assert.Equal(t, FirstBootstrapOID, DefaultCutoff())
}

func TestIsIntFloatNumeric(t *testing.T) {
	for _, o := range []OID{Int2OID, Int4OID, Int8OID, Float4OID, Float8OID, NumericOID} {
		assert.True(t, IsIntFloatNumeric(o), "expected %d to be numeric-like", o)
	}
	for _, o := range []OID{BoolOID, TextOID, UnknownOID, BitOID} {
		assert.False(t, IsIntFloatNumeric(o), "expected %d not to be numeric-like", o)
	}
}

func TestIsBitVarbit(t *testing.T) {
	assert.True(t, IsBitVarbit(BitOID))
	assert.True(t, IsBitVarbit(VarbitOID))
	assert.False(t, IsBitVarbit(Int4OID))
}
