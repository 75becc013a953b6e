// Package xtndbln implements a dynamic integer-set hash table using
// extendible hashing: a directory of bucket references addressed by
// the low d bits of a hash, where each bucket holds up to B keys and
// carries its own local depth. Overflow triggers a bucket split and,
// once a bucket's local depth catches up to the directory's global
// depth, a directory doubling.
//
// Buckets live in an arena owned by the table; the directory holds
// arena indices rather than raw pointers, so a bucket referenced by
// many directory slots is still owned exactly once, and its
// first-address is a direct consequence of where it sits in the
// directory rather than bookkeeping callers must get right by hand.
package xtndbln

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/makirkman/hash-tables/internal/hashfn"
	"github.com/makirkman/hash-tables/internal/tablestats"
)

// maxDirectoryLen bounds how large the directory may grow.
const maxDirectoryLen = 1 << 27

// bucket holds up to bucketSize keys sharing the low depth bits of
// their H1 hash. firstAddress is the smallest directory index that
// references this bucket.
type bucket struct {
	firstAddress int
	depth        int
	keys         []uint64
}

// Table is an extendible hash set of uint64 keys.
type Table struct {
	arena      []*bucket
	directory  []int // directory[a] is an index into arena
	depth      int
	bucketSize int
	nkeys      int

	stats  *tablestats.Recorder
	logger *zap.Logger
}

// Option configures optional behavior of a Table at construction time.
type Option func(*Table)

// WithLogger attaches a structured logger used to report splits and
// directory doublings. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Table) { t.logger = l }
}

// New creates a Table with global depth 0, a one-entry directory
// pointing at a single empty bucket of capacity bucketSize.
// bucketSize must be positive.
func New(bucketSize int, opts ...Option) (*Table, error) {
	if bucketSize <= 0 {
		return nil, errors.Errorf("xtndbln: bucket size must be positive, got %d", bucketSize)
	}

	t := &Table{
		arena:      []*bucket{{firstAddress: 0, depth: 0}},
		directory:  []int{0},
		depth:      0,
		bucketSize: bucketSize,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.stats = tablestats.New("xtndbln", fmt.Sprintf("bucketSize=%d", bucketSize))
	return t, nil
}

func (t *Table) address(key uint64) int {
	return int(hashfn.RightmostNBits(uint(t.depth), hashfn.H1(key)))
}

func (t *Table) bucketAt(address int) *bucket {
	return t.arena[t.directory[address]]
}

// Insert adds key to the table, returning true iff it was newly
// inserted.
func (t *Table) Insert(key uint64) bool {
	start := time.Now()
	inserted := t.insert(key)
	t.stats.ObserveInsert(time.Since(start))
	return inserted
}

func (t *Table) insert(key uint64) bool {
	a := t.address(key)
	b := t.bucketAt(a)

	for _, k := range b.keys {
		if k == key {
			return false
		}
	}

	for len(b.keys) == t.bucketSize {
		if b.depth == t.depth {
			t.double()
		}
		t.split(a)
		a = t.address(key)
		b = t.bucketAt(a)
	}

	b.keys = append(b.keys, key)
	t.nkeys++
	return true
}

// double duplicates the directory in place: the new length is
// 2^(d+1), with entries 2^d..2^(d+1)-1 equal to entries 0..2^d-1.
func (t *Table) double() {
	newLen := len(t.directory) * 2
	if newLen > maxDirectoryLen {
		panic(errors.Errorf("xtndbln: directory would exceed maximum of %d entries", maxDirectoryLen))
	}
	grown := make([]int, newLen)
	copy(grown, t.directory)
	copy(grown[len(t.directory):], t.directory)
	t.directory = grown
	t.depth++
	t.stats.ObserveGrowth()
	t.logger.Debug("xtndbln directory doubled", zap.Int("new_depth", t.depth))
}

// split replaces the bucket referenced at address with two buckets at
// local depth+1, redistributing its keys by the newly significant
// hash bit. Assumes the table's global depth already exceeds the
// bucket's local depth (the caller doubles first if needed).
func (t *Table) split(address int) {
	oldIdx := t.directory[address]
	old := t.arena[oldIdx]

	oldDepth := old.depth
	oldFirst := old.firstAddress
	newDepth := oldDepth + 1

	old.depth = newDepth

	newFirst := (1 << oldDepth) | oldFirst
	fresh := &bucket{firstAddress: newFirst, depth: newDepth}
	t.arena = append(t.arena, fresh)
	newIdx := len(t.arena) - 1
	t.stats.ObserveGrowth()

	bitAddress := int(hashfn.RightmostNBits(uint(oldDepth), uint64(oldFirst)))
	suffix := (1 << oldDepth) | bitAddress
	maxPrefix := 1 << (t.depth - newDepth)
	for prefix := 0; prefix < maxPrefix; prefix++ {
		idx := (prefix << newDepth) | suffix
		t.directory[idx] = newIdx
	}

	keys := old.keys
	old.keys = nil
	for _, k := range keys {
		addr := t.address(k)
		dst := t.bucketAt(addr)
		dst.keys = append(dst.keys, k)
	}

	t.logger.Debug("xtndbln bucket split", zap.Int("old_first_address", oldFirst), zap.Int("new_first_address", newFirst))
}

// Lookup reports whether key is present.
func (t *Table) Lookup(key uint64) bool {
	start := time.Now()
	b := t.bucketAt(t.address(key))
	found := false
	for _, k := range b.keys {
		if k == key {
			found = true
			break
		}
	}
	t.stats.ObserveLookup(time.Since(start))
	return found
}

// Len returns the number of keys currently stored.
func (t *Table) Len() int {
	return t.nkeys
}

// BucketCount returns the number of distinct buckets backing the
// directory (for exercising the directory-doubling testable property).
func (t *Table) BucketCount() int {
	return len(t.arena)
}

// Stats returns a snapshot of this table's operation counters.
func (t *Table) Stats() tablestats.Snapshot {
	return t.stats.Snapshot(t.nkeys)
}

// Destroy releases the table's internal storage.
func (t *Table) Destroy() {
	t.arena = nil
	t.directory = nil
}

// Fprint writes a directory/bucket dump to w, matching the original
// implementation's column layout.
func (t *Table) Fprint(w io.Writer) {
	fmt.Fprintf(w, "--- table size: %d\n", len(t.directory))
	fmt.Fprintf(w, "  table:               buckets:\n")
	fmt.Fprintf(w, "  address | bucketid   bucketid [key]\n")
	for i, idx := range t.directory {
		b := t.arena[idx]
		fmt.Fprintf(w, "%9d | %-9d ", i, b.firstAddress)
		if b.firstAddress == i {
			fmt.Fprintf(w, "%9d [", b.firstAddress)
			for j := 0; j < t.bucketSize; j++ {
				if j < len(b.keys) {
					fmt.Fprintf(w, " %d", b.keys[j])
				} else {
					fmt.Fprintf(w, " -")
				}
			}
			fmt.Fprintf(w, " ]")
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "--- end table ---\n")
}

// String renders the same dump Fprint produces.
func (t *Table) String() string {
	var b strings.Builder
	t.Fprint(&b)
	return b.String()
}
