// Package trace provides step-trace recording for pipeline runs.
// This package has no dependencies on sim/ — it stores pure data types.
package trace

// StepRecord captures the pipeline right after one executed event.
type StepRecord struct {
	Step          int    `yaml:"step"`
	Clock         int64  `yaml:"clock"`
	Event         string `yaml:"event"`
	ProducerState string `yaml:"producer_state"`
	ConsumerState string `yaml:"consumer_state"`
	ProducerChunk int    `yaml:"producer_chunk"` // -1 when the producer holds none
	ConsumerChunk int    `yaml:"consumer_chunk"` // -1 when the consumer holds none
	QueueLength   int    `yaml:"queue_length"`
	QueueCapacity int    `yaml:"queue_capacity"`
	Backpressure  bool   `yaml:"backpressure"`
	Draining      bool   `yaml:"draining"`
}
