// Package tablestats gives every hash table backend in this module a
// uniform way to accumulate operation counts and timings, and to expose
// them both as plain counters (for a text-formatting collaborator, e.g.
// the REPL's "s" command) and as Prometheus collectors (for a host
// process that wants to scrape them).
//
// Formatting those counters into human-readable output is explicitly a
// collaborator's concern; this package only accumulates and snapshots.
package tablestats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Snapshot is a point-in-time, format-agnostic view of a table's
// statistics. It mirrors the "opaque timing accumulator" spec.md
// describes: elapsed time spent inside Insert/Lookup, plus operation
// counts and the number of keys currently stored.
type Snapshot struct {
	Kind     string
	Inserts  uint64
	Lookups  uint64
	Growths  uint64
	Elapsed  time.Duration
	KeyCount int
}

// Recorder accumulates counts for a single table instance. It owns a
// private Prometheus registry rather than registering into the global
// default one, so that constructing many tables in the same process
// (as the test suite does) never collides on duplicate
// metric registration.
type Recorder struct {
	kind string

	insertsTotal prometheus.Counter
	lookupsTotal prometheus.Counter
	growthsTotal prometheus.Counter
	opDuration   prometheus.Histogram

	registry *prometheus.Registry

	insertCount uint64
	lookupCount uint64
	growthCount uint64
	elapsed     time.Duration
}

// New creates a Recorder for a table of the given kind (e.g. "cuckoo",
// "xtndbln", "xuckoo") and instance label (typically the table's
// construction parameters, for disambiguation across multiple tables
// of the same kind in one process).
func New(kind, instance string) *Recorder {
	labels := prometheus.Labels{"kind": kind, "instance": instance}

	r := &Recorder{
		kind:     kind,
		registry: prometheus.NewRegistry(),
		insertsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hashtables_inserts_total",
			Help:        "Number of Insert calls made against this table.",
			ConstLabels: labels,
		}),
		lookupsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hashtables_lookups_total",
			Help:        "Number of Lookup calls made against this table.",
			ConstLabels: labels,
		}),
		growthsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hashtables_growths_total",
			Help:        "Number of directory doublings, bucket splits and inner-table rehashes performed.",
			ConstLabels: labels,
		}),
		opDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "hashtables_operation_duration_seconds",
			Help:        "Wall-clock time spent inside Insert/Lookup.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1e-7, 4, 12),
		}),
	}

	r.registry.MustRegister(r.insertsTotal, r.lookupsTotal, r.growthsTotal, r.opDuration)
	return r
}

// ObserveInsert records a completed Insert call and its duration.
func (r *Recorder) ObserveInsert(d time.Duration) {
	r.insertCount++
	r.elapsed += d
	r.insertsTotal.Inc()
	r.opDuration.Observe(d.Seconds())
}

// ObserveLookup records a completed Lookup call and its duration.
func (r *Recorder) ObserveLookup(d time.Duration) {
	r.lookupCount++
	r.elapsed += d
	r.lookupsTotal.Inc()
	r.opDuration.Observe(d.Seconds())
}

// ObserveGrowth records a directory doubling, inner-table doubling, or
// bucket split that grew the structure.
func (r *Recorder) ObserveGrowth() {
	r.growthCount++
	r.growthsTotal.Inc()
}

// Snapshot returns the current counters, tagging them with keyCount
// (the caller's own notion of how many keys are currently stored).
func (r *Recorder) Snapshot(keyCount int) Snapshot {
	return Snapshot{
		Kind:     r.kind,
		Inserts:  r.insertCount,
		Lookups:  r.lookupCount,
		Growths:  r.growthCount,
		Elapsed:  r.elapsed,
		KeyCount: keyCount,
	}
}

// Registry returns the private Prometheus registry this Recorder
// registered its collectors into, so a host process can gather it
// directly or federate it into a larger registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
