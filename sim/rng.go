package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce identical event traces.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemProducer draws the producer's per-chunk fill rate.
	SubsystemProducer = "producer"

	// SubsystemConsumer draws the consumer's per-chunk consumption rate.
	SubsystemConsumer = "consumer"

	// SubsystemPreset draws randomized pipeline configurations.
	// Uses master seed directly.
	SubsystemPreset = "preset"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemPreset: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	var derivedSeed int64
	if name == SubsystemPreset {
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// === Rates ===

// DelayRange is an inclusive range of per-chunk rates in milliseconds.
type DelayRange struct {
	Min int64 `yaml:"min" json:"min"`
	Max int64 `yaml:"max" json:"max"`
}

func (r DelayRange) String() string {
	return fmt.Sprintf("[%d,%d]ms", r.Min, r.Max)
}

// rate is a per-chunk rate drawn from a range, re-rolled for every chunk.
type rate struct {
	value int64 // milliseconds per chunk
	rng   DelayRange
	src   *rand.Rand
}

func newRate(r DelayRange, src *rand.Rand) rate {
	rt := rate{rng: r, src: src}
	rt.reroll()
	return rt
}

// reroll draws a new value uniformly from [Min, Max].
func (rt *rate) reroll() {
	rt.value = randInclusive(rt.src, rt.rng.Min, rt.rng.Max)
}

// step returns the simulated time of one progress step at the current rate.
func (rt *rate) step() int64 {
	return stepTicks(rt.value)
}

// randInclusive draws a uniform integer in [lo, hi].
func randInclusive(src *rand.Rand, lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + src.Int63n(hi-lo+1)
}
