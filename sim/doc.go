// Package sim provides the discrete-event simulation of a bounded-queue
// producer/consumer pipeline with backpressure.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - simulator.go: EventLoop, the scheduler (timed events ordered by time then
//     insertion order; immediate events run first, newest first)
//   - producer.go: Producer state machine (fill loop, push, backpressure pause)
//   - consumer.go: Consumer state machine (bounded queue, pull/consume, drain listeners)
//   - model.go: Model, which pumps the loop one event per rendered frame
//
// # Time
//
// Simulated time is an int64 tick count (one tick = one microsecond).
// A chunk rate of R milliseconds is spent as ten progress steps of R*100 ticks.
// Wall-clock time only paces the Model; it never affects event order.
//
// # Determinism
//
// Rates are re-rolled per chunk from RNGs derived from the configured seed
// (see PartitionedRNG). The same PipelineConfig always yields the same trace.
package sim
