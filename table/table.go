// Package table dispatches across the three hash table schemes through
// a single handle, the way the original implementation wrapped a
// type tag and a void pointer: here a Kind tag and an interface value.
package table

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/makirkman/hash-tables/cuckoo"
	"github.com/makirkman/hash-tables/internal/tablestats"
	"github.com/makirkman/hash-tables/xtndbln"
	"github.com/makirkman/hash-tables/xuckoo"
)

// Kind identifies which scheme a Table wraps.
type Kind int

// The three supported schemes, plus a sentinel for an unrecognized
// string.
const (
	NoType Kind = iota - 1
	Cuckoo
	ExtendibleN
	Xuckoo
)

// String renders a Kind the way the CLI spells it.
func (k Kind) String() string {
	switch k {
	case Cuckoo:
		return "cuckoo"
	case ExtendibleN:
		return "xtndbln"
	case Xuckoo:
		return "xuckoo"
	default:
		return "notype"
	}
}

// ParseKind accepts either a Kind's numeric spelling ("0", "1", "2")
// or its name ("cuckoo", "xtndbln", "xuckoo"), matching strtotype from
// the original implementation. An unrecognized string yields NoType.
func ParseKind(s string) Kind {
	switch s {
	case "0", "cuckoo":
		return Cuckoo
	case "1", "xtndbln":
		return ExtendibleN
	case "2", "xuckoo":
		return Xuckoo
	default:
		return NoType
	}
}

// backend is the common surface every concrete scheme exposes; Table
// dispatches to whichever one it wraps entirely through this
// interface, so adding a fourth scheme never touches the other three.
type backend interface {
	Insert(key uint64) bool
	Lookup(key uint64) bool
	Len() int
	Stats() tablestats.Snapshot
	Destroy()
	Fprint(w io.Writer)
	String() string
}

// Table is a handle over one concrete scheme, selected at
// construction time.
type Table struct {
	kind    Kind
	backend backend
}

// Option configures optional behavior shared by every underlying
// scheme, such as attaching a logger.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger attaches a structured logger used by the underlying
// scheme to report growth events.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New constructs a Table of the given kind. size is the initial
// number of slots for Cuckoo or the bucket capacity for ExtendibleN;
// it is ignored for Xuckoo, whose inner directories always start at a
// single capacity-1 bucket. An unrecognized kind is an invalid
// construction parameter.
func New(kind Kind, size int, opts ...Option) (*Table, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	switch kind {
	case Cuckoo:
		b, err := cuckoo.New(size, cuckoo.WithLogger(o.logger))
		if err != nil {
			return nil, errors.Wrap(err, "table: constructing cuckoo backend")
		}
		return &Table{kind: kind, backend: b}, nil
	case ExtendibleN:
		b, err := xtndbln.New(size, xtndbln.WithLogger(o.logger))
		if err != nil {
			return nil, errors.Wrap(err, "table: constructing xtndbln backend")
		}
		return &Table{kind: kind, backend: b}, nil
	case Xuckoo:
		b := xuckoo.New(xuckoo.WithLogger(o.logger))
		return &Table{kind: kind, backend: b}, nil
	default:
		return nil, errors.Errorf("table: unrecognized table type %d", kind)
	}
}

// Kind reports which scheme this Table wraps.
func (t *Table) Kind() Kind {
	return t.kind
}

// Insert adds key to the underlying table, returning true iff it was
// newly inserted.
func (t *Table) Insert(key uint64) bool {
	return t.backend.Insert(key)
}

// Lookup reports whether key is present in the underlying table.
func (t *Table) Lookup(key uint64) bool {
	return t.backend.Lookup(key)
}

// Len returns the number of keys currently stored.
func (t *Table) Len() int {
	return t.backend.Len()
}

// Stats returns a snapshot of the underlying table's operation
// counters.
func (t *Table) Stats() tablestats.Snapshot {
	return t.backend.Stats()
}

// Destroy releases the underlying table's storage. After Destroy the
// Table must not be used.
func (t *Table) Destroy() {
	t.backend.Destroy()
}

// Fprint writes a dump of the underlying table's contents to w.
func (t *Table) Fprint(w io.Writer) {
	t.backend.Fprint(w)
}

// Print writes a dump of the underlying table's contents to stdout.
func (t *Table) Print() {
	fmt.Print(t.backend.String())
}

// String renders the same dump Fprint produces.
func (t *Table) String() string {
	return t.backend.String()
}
