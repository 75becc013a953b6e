// Package cuckoo implements a dynamic integer-set hash table using
// two-table cuckoo hashing: two parallel slot arrays of equal size,
// two independent hash functions, displacement on collision, and a
// full doubling-and-rehash whenever a displacement chain cycles back
// on its own initial key.
//
// A Table is not safe for concurrent use; callers needing that must
// add their own synchronization.
package cuckoo

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

// maxSlots bounds the length either inner table may grow to. A table
// of 64-bit keys this large would occupy 2^27 * 8 bytes = 1GiB per
// inner table.
const maxSlots = 1 << 27

// innerTable is one of the two internal slot arrays of a Table. Each
// slot either is empty or holds exactly one key; id selects which of
// the two hash functions addresses this table.
type innerTable struct {
	id    int
	slots []uint64
	inuse []bool
	load  int
}

func newInnerTable(id, size int) *innerTable {
	return &innerTable{id: id, slots: make([]uint64, size), inuse: make([]bool, size)}
}

func (t *innerTable) address(key uint64, size int) int {
	if t.id == 1 {
		return int(hashfn.H1(key) % uint64(size))
	}
	return int(hashfn.H2(key) % uint64(size))
}

func (t *innerTable) place(i int, key uint64) {
	t.slots[i] = key
	t.inuse[i] = true
	t.load++
}

// Table is a two-table cuckoo hash set of uint64 keys.
type Table struct {
	table1 *innerTable
	table2 *innerTable
	size   int

	stats  *tablestats.Recorder
	logger *zap.Logger
}

// Option configures optional behavior of a Table at construction time.
type Option func(*Table)

// WithLogger attaches a structured logger used to report growth events.
// The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Table) { t.logger = l }
}

// New creates a Table with both inner tables holding size slots, all
// empty. size must be positive; a non-positive size is an invalid
// construction parameter and yields no table, per this module's error
// handling design.
func New(size int, opts ...Option) (*Table, error) {
	if size <= 0 {
		return nil, errors.Errorf("cuckoo: initial size must be positive, got %d", size)
	}
	if size > maxSlots {
		return nil, errors.Errorf("cuckoo: initial size %d exceeds maximum of %d slots", size, maxSlots)
	}

	t := &Table{
		table1: newInnerTable(1, size),
		table2: newInnerTable(2, size),
		size:   size,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.stats = tablestats.New("cuckoo", fmt.Sprintf("size=%d", size))
	return t, nil
}

// Len returns the number of keys currently stored.
func (t *Table) Len() int {
	return t.table1.load + t.table2.load
}

// Insert adds key to the table. It returns true if key was newly
// inserted, false if it was already present. On an unbreakable
// displacement cycle it doubles the table and rehashes before
// retrying; if that would exceed the maximum table size it panics
// with a wrapped, annotated error, per this module's error handling
// design for "capacity exhausted".
func (t *Table) Insert(key uint64) bool {
	start := time.Now()
	inserted := t.insert(key)
	t.stats.ObserveInsert(time.Since(start))
	return inserted
}

func (t *Table) insert(key uint64) bool {
	v := t.table1.address(key, t.size)
	w := t.table2.address(key, t.size)

	if !t.table1.inuse[v] {
		t.table1.place(v, key)
		return true
	}
	if t.table1.slots[v] == key {
		return false
	}
	if t.table2.inuse[w] && t.table2.slots[w] == key {
		return false
	}

	evicted := t.table1.slots[v]
	t.table1.slots[v] = key
	t.displace(evicted, key)
	return true
}

// displace carries an evicted key through the alternating-table
// cuckoo chain, expressed as a loop (not recursion) carrying the
// evicted-key state explicitly, per this module's design notes. initial
// is the key that originally triggered the chain; if the chain ever
// evicts initial itself, a cycle has formed.
func (t *Table) displace(cur, initial uint64) {
	active, other := t.table2, t.table1
	for {
		if cur == initial {
			t.grow()
			t.insert(cur)
			return
		}

		addr := active.address(cur, t.size)
		if !active.inuse[addr] {
			active.place(addr, cur)
			return
		}

		evicted := active.slots[addr]
		active.slots[addr] = cur
		cur = evicted
		active, other = other, active
	}
}

// grow doubles the size of both inner tables and rehashes every key
// that was present before the cycle was detected.
func (t *Table) grow() {
	newSize := t.size * 2
	if newSize > maxSlots {
		panic(errors.Errorf("cuckoo: cannot grow past %d slots per inner table", maxSlots))
	}

	old1, old2 := t.table1, t.table2
	t.table1 = newInnerTable(1, newSize)
	t.table2 = newInnerTable(2, newSize)
	t.size = newSize

	t.stats.ObserveGrowth()
	t.logger.Debug("cuckoo table doubled", zap.Int("old_size", newSize/2), zap.Int("new_size", newSize))

	for i, inuse := range old1.inuse {
		if inuse {
			t.insert(old1.slots[i])
		}
	}
	for i, inuse := range old2.inuse {
		if inuse {
			t.insert(old2.slots[i])
		}
	}
}

// Lookup reports whether key is present in the table.
func (t *Table) Lookup(key uint64) bool {
	start := time.Now()
	v := t.table1.address(key, t.size)
	w := t.table2.address(key, t.size)
	found := (t.table1.inuse[v] && t.table1.slots[v] == key) ||
		(t.table2.inuse[w] && t.table2.slots[w] == key)
	t.stats.ObserveLookup(time.Since(start))
	return found
}

// Stats returns a snapshot of this table's operation counters.
func (t *Table) Stats() tablestats.Snapshot {
	return t.stats.Snapshot(t.Len())
}

// Destroy releases the table's internal storage. After Destroy the
// table must not be used.
func (t *Table) Destroy() {
	t.table1 = nil
	t.table2 = nil
	t.size = 0
}

// Fprint writes a dump of both inner tables to w, in the same
// table-one/table-two column layout the original implementation used.
func (t *Table) Fprint(w io.Writer) {
	fmt.Fprintf(w, "--- table size: %d\n", t.size)
	fmt.Fprintf(w, "                    table one         table two\n")
	fmt.Fprintf(w, "                  key | address     address | key\n")
	for i := 0; i < t.size; i++ {
		if t.table1.inuse[i] {
			fmt.Fprintf(w, " %20d ", t.table1.slots[i])
		} else {
			fmt.Fprintf(w, " %20s ", "-")
		}
		fmt.Fprintf(w, "| %-9d %9d |", i, i)
		if t.table2.inuse[i] {
			fmt.Fprintf(w, " %d\n", t.table2.slots[i])
		} else {
			fmt.Fprintf(w, " %s\n", "-")
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
