// Package hashfn provides the two independent hash functions shared by
// every hash table implementation in this module.
//
// Both are of the classical linear-congruential form (A*k + B) mod p,
// using distinct large prime constants. They are pure and
// deterministic: the same key always maps to the same hash value, and
// neither function carries any per-instance seed, so H1 and H2 stay
// uncorrelated across every table that uses them.
package hashfn

// Constants for H1 (a1, b1, p1) and H2 (a2, b2, p2). Arbitrary large primes; A1/p1 and A2/p2 must stay
// distinct and pairwise coprime with any table size this package is
// asked to address.
const (
	a1 uint64 = 899808677
	b1 uint64 = 776533253
	p1 uint64 = 2147483563

	a2 uint64 = 879191233
	b2 uint64 = 796929241
	p2 uint64 = 2147483629
)

// H1 returns the first hash of k. The result is non-negative; callers
// reduce it modulo a table size or mask its low bits themselves.
func H1(k uint64) uint64 {
	return (k*a1 + b1) % p1
}

// H2 returns the second hash of k, independent of H1.
func H2(k uint64) uint64 {
	return (k*a2 + b2) % p2
}

// RightmostNBits returns the low n bits of x, i.e. x mod 2^n.
func RightmostNBits(n uint, x uint64) uint64 {
	if n >= 64 {
		return x
	}
	return x & ((uint64(1) << n) - 1)
}
