package sim

import (
	"fmt"
	"math/rand"

	"github.com/hashicorp/go-multierror"
)

// ProducerConfig groups producer parameters.
type ProducerConfig struct {
	Delay DelayRange // per-chunk fill rate in ms, re-rolled per chunk
	Count int        // total number of chunks to produce (0 = end immediately)
}

// ConsumerConfig groups consumer parameters.
type ConsumerConfig struct {
	Delay    DelayRange // per-chunk consumption rate in ms, re-rolled per chunk
	Capacity int        // queue capacity (must be >= 1)
}

// PipelineConfig is everything needed to build a Pipeline.
type PipelineConfig struct {
	Producer ProducerConfig
	Consumer ConsumerConfig
	Seed     int64
}

// NewPipelineConfig creates a PipelineConfig with all fields explicitly set.
func NewPipelineConfig(producerDelay, consumerDelay DelayRange, count, capacity int, seed int64) PipelineConfig {
	return PipelineConfig{
		Producer: ProducerConfig{Delay: producerDelay, Count: count},
		Consumer: ConsumerConfig{Delay: consumerDelay, Capacity: capacity},
		Seed:     seed,
	}
}

// DefaultPipelineConfig returns the demo defaults:
// producer 1000ms, consumer 2000ms, 50 chunks, capacity 3.
func DefaultPipelineConfig() PipelineConfig {
	return NewPipelineConfig(DelayRange{1000, 1000}, DelayRange{2000, 2000}, 50, 3, 42)
}

// Validate reports every invalid field at once.
func (c PipelineConfig) Validate() error {
	var result *multierror.Error
	result = validateRange(result, "producer delay", c.Producer.Delay)
	result = validateRange(result, "consumer delay", c.Consumer.Delay)
	if c.Producer.Count < 0 {
		result = multierror.Append(result, fmt.Errorf("chunk count must be >= 0, got %d", c.Producer.Count))
	}
	if c.Consumer.Capacity < 1 {
		result = multierror.Append(result, fmt.Errorf("queue capacity must be >= 1, got %d", c.Consumer.Capacity))
	}
	return result.ErrorOrNil()
}

func validateRange(result *multierror.Error, name string, r DelayRange) *multierror.Error {
	if r.Min < 0 {
		result = multierror.Append(result, fmt.Errorf("%s min must be >= 0, got %d", name, r.Min))
	}
	if r.Max < r.Min {
		result = multierror.Append(result, fmt.Errorf("%s max (%d) must be >= min (%d)", name, r.Max, r.Min))
	}
	return result
}

// RandomPipelineConfig draws a configuration the way the demo's "random"
// preset does: 6-20 chunks, capacity 1-5, minimum delays 250-1500ms and
// maximum delays between the minimum and 3000ms.
func RandomPipelineConfig(rng *rand.Rand, seed int64) PipelineConfig {
	count := int(randInclusive(rng, 6, 20))
	capacity := int(randInclusive(rng, 1, 5))
	prodMin := randInclusive(rng, 250, 1500)
	prodMax := randInclusive(rng, prodMin, 3000)
	consMin := randInclusive(rng, 250, 1500)
	consMax := randInclusive(rng, consMin, 3000)
	return NewPipelineConfig(DelayRange{prodMin, prodMax}, DelayRange{consMin, consMax}, count, capacity, seed)
}
