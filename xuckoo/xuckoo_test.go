package xuckoo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertIdempotent(t *testing.T) {
	tbl := New()

	assert.True(t, tbl.Insert(42))
	assert.False(t, tbl.Insert(42))
	assert.True(t, tbl.Lookup(42))
}

func TestLookupAbsence(t *testing.T) {
	tbl := New()

	assert.False(t, tbl.Lookup(9))
	tbl.Insert(3)
	assert.False(t, tbl.Lookup(9))
}

func TestInsertLookupConsistency(t *testing.T) {
	tbl := New()

	rng := rand.New(rand.NewSource(11))
	inserted := make(map[uint64]bool)
	for i := 0; i < 1500; i++ {
		k := rng.Uint64()
		inserted[k] = true
		tbl.Insert(k)
	}
	for k := range inserted {
		assert.True(t, tbl.Lookup(k))
	}
	assert.Equal(t, len(inserted), tbl.Len())
}

func TestCountMonotonicity(t *testing.T) {
	tbl := New()

	prev := 0
	for i := uint64(0); i < 300; i++ {
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

// TestGrowthBound checks that a workload large enough to force many
// splits in both inner directories never fails to terminate or lose a
// key, exercising the displacement/split machinery all the way
// through a pass of the firstLimit counter.
func TestGrowthBound(t *testing.T) {
	tbl := New()

	var inserted []uint64
	for i := uint64(0); i < 5000; i++ {
		ok := tbl.Insert(i)
		assert.True(t, ok)
		inserted = append(inserted, i)
	}

	for _, k := range inserted {
		assert.True(t, tbl.Lookup(k), "key %d lost", k)
	}
	assert.Equal(t, len(inserted), tbl.Len())
}

// TestBalancedPlacement checks new-table ties are broken in favor of
// inner table 1: the very first insertion into a fresh table must land
// there.
func TestBalancedPlacement(t *testing.T) {
	tbl := New()
	tbl.Insert(5)
	assert.Equal(t, 1, tbl.table1.nkeys)
	assert.Equal(t, 0, tbl.table2.nkeys)
}

func TestDestroyClearsState(t *testing.T) {
	tbl := New()

	tbl.Insert(1)
	tbl.Destroy()

	assert.Nil(t, tbl.table1)
	assert.Nil(t, tbl.table2)
}

func TestStatsAndPrint(t *testing.T) {
	tbl := New()

	tbl.Insert(1)
	tbl.Insert(2)
	tbl.Lookup(1)

	snap := tbl.Stats()
	assert.Equal(t, uint64(2), snap.Inserts)
	assert.Equal(t, uint64(1), snap.Lookups)
	assert.Equal(t, 2, snap.KeyCount)

	out := tbl.String()
	assert.Contains(t, out, "end table")
}
