// Package xuckoo implements a dynamic integer-set hash table combining
// extendible hashing with cuckoo hashing: two extendible directories
// (one per hash function), each bucket holding at most one key.
// Displacement moves keys between the two directories cuckoo-style;
// when displacement appears to be cycling, the affected bucket is
// split (growing its directory if needed) rather than doubling a
// fixed-size table.
package xuckoo

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

// Limits on the displacement counter from spec: the first gives a
// bucket a chance to split if it can absorb more depth cheaply; the
// second forces a split regardless, guaranteeing termination.
const (
	firstLimit      = 20000
	finalLimit      = 21000
	maxDirectoryLen = 1 << 27
)

// bucket holds at most one key, plus the same local-depth /
// first-address bookkeeping as xtndbln's buckets.
type bucket struct {
	firstAddress int
	depth        int
	full         bool
	key          uint64
}

// innerTable is one of the two extendible directories making up a
// Table. id selects which hash function addresses it: 1 uses H1, 2
// uses H2.
type innerTable struct {
	id        int
	arena     []*bucket
	directory []int
	depth     int
	nkeys     int
}

func newInnerTable(id int) *innerTable {
	return &innerTable{
		id:        id,
		arena:     []*bucket{{firstAddress: 0, depth: 0}},
		directory: []int{0},
	}
}

func (it *innerTable) hash(key uint64) uint64 {
	if it.id == 1 {
		return hashfn.H1(key)
	}
	return hashfn.H2(key)
}

func (it *innerTable) address(key uint64) int {
	return int(hashfn.RightmostNBits(uint(it.depth), it.hash(key)))
}

func (it *innerTable) bucketAt(address int) *bucket {
	return it.arena[it.directory[address]]
}

// Table is a two-directory cuckoo/extendible hybrid hash set of
// uint64 keys.
type Table struct {
	table1 *innerTable
	table2 *innerTable

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

// New creates a Table with both inner directories at depth 0, each
// holding a single empty capacity-1 bucket.
func New(opts ...Option) *Table {
	t := &Table{
		table1: newInnerTable(1),
		table2: newInnerTable(2),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.stats = tablestats.New("xuckoo", "capacity=1")
	return t
}

// Len returns the number of keys currently stored across both inner
// tables.
func (t *Table) Len() int {
	return t.table1.nkeys + t.table2.nkeys
}

func (t *Table) contains(key uint64) bool {
	b1 := t.table1.bucketAt(t.table1.address(key))
	if b1.full && b1.key == key {
		return true
	}
	b2 := t.table2.bucketAt(t.table2.address(key))
	return b2.full && b2.key == key
}

// Lookup reports whether key is present in either inner table.
func (t *Table) Lookup(key uint64) bool {
	start := time.Now()
	found := t.contains(key)
	t.stats.ObserveLookup(time.Since(start))
	return found
}

// Insert adds key to the table, returning true iff it was newly
// inserted. The duplicate check happens first, exactly as Lookup
// does. Otherwise it starts the displacement routine in whichever
// inner table currently holds fewer keys, ties favoring table 1.
func (t *Table) Insert(key uint64) bool {
	start := time.Now()
	if t.contains(key) {
		t.stats.ObserveInsert(time.Since(start))
		return false
	}

	primary, secondary := t.table1, t.table2
	if t.table2.nkeys < t.table1.nkeys {
		primary, secondary = t.table2, t.table1
	}
	t.displace(key, primary, secondary)

	t.stats.ObserveInsert(time.Since(start))
	return true
}

// displace carries key through the alternating-table displacement
// routine as a loop, incrementing a counter each pass. When the
// counter crosses firstLimit and the target bucket still has room to
// grow without a directory doubling, it is split opportunistically;
// otherwise, once the counter crosses finalLimit, it is split
// unconditionally, guaranteeing termination. The two checks are
// mutually exclusive: a pass never splits the same just-split bucket
// twice.
func (t *Table) displace(key uint64, active, other *innerTable) {
	counter := 0
	cur := key

	for {
		counter++

		addr := active.address(cur)
		b := active.bucketAt(addr)

		if !b.full {
			b.key = cur
			b.full = true
			active.nkeys++
			return
		}

		evicted := b.key
		b.key = cur

		if counter >= firstLimit && b.depth < active.depth {
			t.splitBucket(active, addr)
		} else if counter >= finalLimit {
			t.splitBucket(active, addr)
		}

		cur = evicted
		active, other = other, active
	}
}

// doubleInner duplicates an inner table's directory, the same way
// xtndbln.Table.double does: entries 2^d..2^(d+1)-1 mirror 0..2^d-1 and no key
// needs to move, since every duplicated entry still references the
// bucket its key was already found through. This sidesteps the
// reinsert-through-top-level-insert double-counting hazard the
// original implementation was prone to (see DESIGN.md).
func (t *Table) doubleInner(it *innerTable) {
	newLen := len(it.directory) * 2
	if newLen > maxDirectoryLen {
		panic(errors.Errorf("xuckoo: table %d directory would exceed maximum of %d entries", it.id, maxDirectoryLen))
	}
	grown := make([]int, newLen)
	copy(grown, it.directory)
	copy(grown[len(it.directory):], it.directory)
	it.directory = grown
	it.depth++
	t.stats.ObserveGrowth()
	t.logger.Debug("xuckoo inner table doubled", zap.Int("table_id", it.id), zap.Int("new_depth", it.depth))
}

// splitBucket replaces the bucket at address with two buckets at
// local depth+1, doubling the inner table's directory first if the
// bucket's local depth has caught up to the global depth. The single
// key the old bucket held (if any) is cleared and reinserted through
// this inner table's own addressing, distinct from the cuckoo chain's
// own in-flight key in displace.
func (t *Table) splitBucket(it *innerTable, address int) {
	if it.bucketAt(address).depth == it.depth {
		t.doubleInner(it)
	}

	oldIdx := it.directory[address]
	old := it.arena[oldIdx]

	oldDepth := old.depth
	oldFirst := old.firstAddress
	newDepth := oldDepth + 1
	old.depth = newDepth

	newFirst := (1 << oldDepth) | oldFirst
	fresh := &bucket{firstAddress: newFirst, depth: newDepth}
	it.arena = append(it.arena, fresh)
	newIdx := len(it.arena) - 1
	t.stats.ObserveGrowth()

	bitAddress := int(hashfn.RightmostNBits(uint(oldDepth), uint64(oldFirst)))
	suffix := (1 << oldDepth) | bitAddress
	maxPrefix := 1 << (it.depth - newDepth)
	for prefix := 0; prefix < maxPrefix; prefix++ {
		idx := (prefix << newDepth) | suffix
		it.directory[idx] = newIdx
	}

	if old.full {
		k := old.key
		old.full = false
		dst := it.bucketAt(it.address(k))
		dst.key = k
		dst.full = true
	}

	t.logger.Debug("xuckoo bucket split", zap.Int("table_id", it.id),
		zap.Int("old_first_address", oldFirst), zap.Int("new_first_address", newFirst))
}

// Stats returns a snapshot of this table's combined operation
// counters.
func (t *Table) Stats() tablestats.Snapshot {
	return t.stats.Snapshot(t.Len())
}

// Destroy releases the table's internal storage.
func (t *Table) Destroy() {
	t.table1 = nil
	t.table2 = nil
}

// Fprint writes a dump of both inner directories to w.
func (t *Table) Fprint(w io.Writer) {
	fmt.Fprintf(w, "--- table ---\n")
	for n, it := range []*innerTable{t.table1, t.table2} {
		fmt.Fprintf(w, "table %d\n", n+1)
		fmt.Fprintf(w, "  table:               buckets:\n")
		fmt.Fprintf(w, "  address | bucketid   bucketid [key]\n")
		for i, idx := range it.directory {
			b := it.arena[idx]
			fmt.Fprintf(w, "%9d | %-9d ", i, b.firstAddress)
			if b.firstAddress == i {
				fmt.Fprintf(w, "%9d ", b.firstAddress)
				if b.full {
					fmt.Fprintf(w, "[%d]", b.key)
				} else {
					fmt.Fprintf(w, "[ ]")
				}
			}
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintf(w, "--- end table ---\n")
}

// String renders the same dump Fprint produces.
func (t *Table) String() string {
	var b strings.Builder
	t.Fprint(&b)
	return b.String()
}
