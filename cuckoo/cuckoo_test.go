package cuckoo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonPositiveSize(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)

	_, err = New(-5)
	require.Error(t, err)
}

func TestInsertIdempotent(t *testing.T) {
	tbl, err := New(8)
	require.NoError(t, err)

	assert.True(t, tbl.Insert(42))
	assert.False(t, tbl.Insert(42))
	assert.True(t, tbl.Lookup(42))
}

func TestLookupAbsence(t *testing.T) {
	tbl, err := New(8)
	require.NoError(t, err)

	assert.False(t, tbl.Lookup(7))

	tbl.Insert(100)
	assert.False(t, tbl.Lookup(7))
	assert.True(t, tbl.Lookup(100))
}

func TestInsertLookupConsistency(t *testing.T) {
	tbl, err := New(4)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	inserted := make(map[uint64]bool)
	for i := 0; i < 2000; i++ {
		k := rng.Uint64()
		inserted[k] = true
		tbl.Insert(k)
	}

	for k := range inserted {
		assert.True(t, tbl.Lookup(k), "expected %d to be found", k)
	}

	for i := 0; i < 100; i++ {
		k := rng.Uint64()
		if inserted[k] {
			continue
		}
		assert.False(t, tbl.Lookup(k))
	}
}

func TestCountMonotonicity(t *testing.T) {
	tbl, err := New(8)
	require.NoError(t, err)

	prev := tbl.Len()
	for i := uint64(0); i < 200; i++ {
		before := tbl.Len()
		if tbl.Insert(i) {
			assert.Equal(t, before+1, tbl.Len())
		} else {
			assert.Equal(t, before, tbl.Len())
		}
		assert.GreaterOrEqual(t, tbl.Len(), prev)
		prev = tbl.Len()
	}
}

// TestRehashCorrectness forces a chain of displacements long enough to
// trigger at least one doubling, then checks every previously inserted
// key is still found afterward.
func TestRehashCorrectness(t *testing.T) {
	tbl, err := New(2)
	require.NoError(t, err)

	var inserted []uint64
	for i := uint64(0); i < 11; i++ {
		ok := tbl.Insert(i)
		require.True(t, ok, "insert %d should succeed", i)
		inserted = append(inserted, i)
	}

	assert.Greater(t, tbl.size, 2, "table should have grown past its initial size")

	for _, k := range inserted {
		assert.True(t, tbl.Lookup(k), "key %d lost across rehash", k)
	}
}

func TestDestroyClearsState(t *testing.T) {
	tbl, err := New(4)
	require.NoError(t, err)

	tbl.Insert(1)
	tbl.Destroy()

	assert.Nil(t, tbl.table1)
	assert.Nil(t, tbl.table2)
}

func TestStatsAndPrint(t *testing.T) {
	tbl, err := New(4)
	require.NoError(t, err)

	tbl.Insert(1)
	tbl.Insert(2)
	tbl.Lookup(1)

	snap := tbl.Stats()
	assert.Equal(t, uint64(2), snap.Inserts)
	assert.Equal(t, uint64(1), snap.Lookups)
	assert.Equal(t, 2, snap.KeyCount)

	out := tbl.String()
	assert.Contains(t, out, "table size")
	assert.Contains(t, out, "end table")
}
