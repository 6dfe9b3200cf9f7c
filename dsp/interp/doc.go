// Package interp provides interpolation primitives used by delay- and
// grain-based DSP blocks.
//
// Available methods, from cheapest to highest quality:
//
//   - [Linear2]:    2-point linear interpolation
//   - [CosineStep]: cosine crossfade between two points
//   - [Hermite4]:   4-point cubic Hermite (good default)
//
// [PeekLinear] and [PeekCubic] read a fractional position from a
// power-of-two ring buffer using a bit mask for wrap-around.
package interp
