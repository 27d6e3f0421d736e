package mc

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === RunKey ===

// RunKey uniquely identifies a reproducible Monte Carlo run.
// Two runs with the same RunKey and identical inputs MUST produce
// bit-for-bit identical trajectories and sampled data.
type RunKey int64

// NewRunKey creates a RunKey from a seed value.
func NewRunKey(seed int64) RunKey {
	return RunKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemProposal is the RNG subsystem used for event proposal
	// (site and occupant choice). Uses the master seed directly.
	SubsystemProposal = "proposal"

	// SubsystemAcceptance is the RNG subsystem used for the Metropolis
	// acceptance draw.
	SubsystemAcceptance = "acceptance"
)

// SubsystemReplica returns the subsystem name for replica N, for callers
// running independent replicas from one master seed.
func SubsystemReplica(id int) string {
	return fmt.Sprintf("replica_%d", id)
}

// === RandomSource ===

// RandomSource is a deterministic stream of uniform reals and integers.
// Each run owns exactly one RandomSource; there is no global generator
// state anywhere in the engine.
//
// Thread-safety: NOT thread-safe. Must be used from a single goroutine.
type RandomSource struct {
	rng *rand.Rand
}

// NewRandomSource creates a RandomSource from an explicit seed.
func NewRandomSource(seed int64) *RandomSource {
	return &RandomSource{rng: rand.New(rand.NewSource(seed))}
}

// UniformReal returns a uniform value in [0, 1).
func (r *RandomSource) UniformReal() float64 {
	return r.rng.Float64()
}

// UniformInt returns a uniform value in [0, n). Panics if n <= 0.
func (r *RandomSource) UniformInt(n int) int {
	return r.rng.Intn(n)
}

// === PartitionedRandomSource ===

// PartitionedRandomSource provides deterministic, isolated RandomSource
// instances per subsystem, derived from one master RunKey.
//
// Derivation formula:
//   - For SubsystemProposal: uses the master seed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type PartitionedRandomSource struct {
	key        RunKey
	subsystems map[string]*RandomSource
}

// NewPartitionedRandomSource creates a PartitionedRandomSource from a RunKey.
func NewPartitionedRandomSource(key RunKey) *PartitionedRandomSource {
	return &PartitionedRandomSource{
		key:        key,
		subsystems: make(map[string]*RandomSource),
	}
}

// ForSubsystem returns a deterministically-seeded RandomSource for the named
// subsystem. The same subsystem name always returns the same instance
// (cached). Never returns nil.
func (p *PartitionedRandomSource) ForSubsystem(name string) *RandomSource {
	if src, ok := p.subsystems[name]; ok {
		return src
	}

	var derivedSeed int64
	if name == SubsystemProposal {
		// Proposal stream uses the master seed directly so that a bare
		// NewRandomSource(seed) reproduces the proposal sequence.
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	src := NewRandomSource(derivedSeed)
	p.subsystems[name] = src
	return src
}

// Key returns the RunKey used to create this PartitionedRandomSource.
func (p *PartitionedRandomSource) Key() RunKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
