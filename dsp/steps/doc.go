// Package steps provides random and shift-register step generators clocked
// by a phase ramp or a trigger.
//
// Each unit draws a new value when its clock ramp wraps and can glide to
// the next value with a cosine curve over the ramp's period. Randomness comes
// from an injected [Rand], so a seeded source makes every unit
// deterministic. *math/rand.Rand satisfies Rand.
//
// Units are real-time safe and not thread-safe.
package steps
