package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKindAcceptsNumberAndName(t *testing.T) {
	assert.Equal(t, Cuckoo, ParseKind("0"))
	assert.Equal(t, Cuckoo, ParseKind("cuckoo"))
	assert.Equal(t, ExtendibleN, ParseKind("1"))
	assert.Equal(t, ExtendibleN, ParseKind("xtndbln"))
	assert.Equal(t, Xuckoo, ParseKind("2"))
	assert.Equal(t, Xuckoo, ParseKind("xuckoo"))
	assert.Equal(t, NoType, ParseKind("bogus"))
}

func TestNewRejectsUnrecognizedKind(t *testing.T) {
	_, err := New(NoType, 4)
	require.Error(t, err)
}

func TestDispatchAcrossAllKinds(t *testing.T) {
	for _, kind := range []Kind{Cuckoo, ExtendibleN, Xuckoo} {
		tbl, err := New(kind, 4)
		require.NoError(t, err, kind)

		assert.True(t, tbl.Insert(10))
		assert.False(t, tbl.Insert(10))
		assert.True(t, tbl.Lookup(10))
		assert.False(t, tbl.Lookup(99))
		assert.Equal(t, 1, tbl.Len())

		snap := tbl.Stats()
		assert.Equal(t, kind.String(), snap.Kind)

		assert.Contains(t, tbl.String(), "end table")

		tbl.Destroy()
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "cuckoo", Cuckoo.String())
	assert.Equal(t, "xtndbln", ExtendibleN.String())
	assert.Equal(t, "xuckoo", Xuckoo.String())
	assert.Equal(t, "notype", NoType.String())
}
