// Package event provides sample-accurate event sources and voice allocation
// for granular and polyphonic processing at audio rate.
//
// Data flows per sample from a scheduler to an allocator or ramp and then to
// the consumer:
//
//	ev := cycle.Process(rate, reset)           // Event{Trigger, Phase, Rate, SubSampleOffset}
//	slot := alloc.Process(ev.Trigger, ev.Rate/overlap, ev.SubSampleOffset)
//	for i := range alloc.Voices() { use(alloc.Phase(i)) }
//
// Schedulers:
//   - [Cycle]: free-running periodic triggers; the rate latches at period
//     boundaries and the wrap is deferred by one sample so the reported phase
//     stays continuous.
//   - [Burst]: up to N periodic triggers after an init trigger, then holds.
//
// Consumers of events:
//   - [Allocator]: assigns triggers to the lowest free of N voice slots and
//     drops them when every slot is busy.
//   - [Integrator]: single re-triggerable [0,1) phase.
//   - [Accumulator]: single re-triggerable sample counter.
//   - [Divider]: derives a divided or multiplied ramp from an input ramp.
//
// Every trigger carries a sub-sample offset: how many samples past the ideal
// continuous-time boundary the discrete trigger fired. Consumers seed new
// phases with slope*offset so the first output sample already sits at the
// right fractional position.
//
// All types are real-time safe (no allocation after construction, no
// blocking) and not thread-safe. Each instance owns its state exclusively.
package event
