// Package effects provides the granular processors built on the event
// schedulers in dsp/event.
//
//   - GrainDelay: grains read from a circular history of the input, with
//     feedback, damping and freeze.
//   - GrainBuffer: grains read from an externally owned sample table.
//
// Both processors run zero-allocation render paths and support single-sample
// and block processing. They are not safe for concurrent use.
package effects
