// Package predict implements the attribute prediction and quantization
// pipeline layered on top of a decoded mesh's connectivity: turning
// floating point attribute values into small integer residuals a symbol
// coder compresses well, and reversing that process on decode.
package predict

import "math"

// Quantizer maps floating point component values into Bits-wide unsigned
// integers against a single shared cubical bounding box, the same way the
// reference codec quantizes positions: every component is scaled by the
// largest of the per-component ranges, so a uniformly scaled mesh
// dequantizes without shearing.
type Quantizer struct {
	Min   []float64
	Range []float64
	Bits  int
}

// NewQuantizer derives Min/Range from the extent of values and fixes the
// quantization precision at bits.
func NewQuantizer(values [][]float64, bits int) *Quantizer {
	q := &Quantizer{Bits: bits}
	if len(values) == 0 || len(values[0]) == 0 {
		return q
	}
	n := len(values[0])
	min := append([]float64(nil), values[0]...)
	max := append([]float64(nil), values[0]...)
	for _, v := range values {
		for i, c := range v {
			if c < min[i] {
				min[i] = c
			}
			if c > max[i] {
				max[i] = c
			}
		}
	}
	maxRange := 0.0
	for i := range min {
		if r := max[i] - min[i]; r > maxRange {
			maxRange = r
		}
	}
	if maxRange == 0 {
		maxRange = 1
	}
	rng := make([]float64, n)
	for i := range rng {
		rng[i] = maxRange
	}
	q.Min, q.Range = min, rng
	return q
}

func (q *Quantizer) maxValue() float64 { return float64(uint32(1)<<uint(q.Bits) - 1) }

// Quantize rounds v's components to the nearest integer grid point.
func (q *Quantizer) Quantize(v []float64) []int32 {
	out := make([]int32, len(v))
	mv := q.maxValue()
	for i, c := range v {
		scaled := (c - q.Min[i]) / q.Range[i] * mv
		out[i] = int32(scaled + 0.5)
	}
	return out
}

// Dequantize reverses Quantize, introducing at most one quantization-grid
// step of error per component.
func (q *Quantizer) Dequantize(v []int32) []float64 {
	out := make([]float64, len(v))
	mv := q.maxValue()
	for i, c := range v {
		out[i] = q.Min[i] + float64(c)/mv*q.Range[i]
	}
	return out
}

// integerRange records each component's exact integer minimum and maximum
// across a value set, with no bit-depth binning — the basis for encoding
// integer-typed attributes losslessly instead of routing them through
// Quantizer's float binning.
type integerRange struct {
	Min []int32
	Max []int32
}

func newIntegerRange(values [][]float64) *integerRange {
	n := len(values[0])
	r := &integerRange{Min: make([]int32, n), Max: make([]int32, n)}
	for c := 0; c < n; c++ {
		v0 := int32(math.Round(values[0][c]))
		r.Min[c], r.Max[c] = v0, v0
	}
	for _, v := range values {
		for c, x := range v {
			iv := int32(math.Round(x))
			if iv < r.Min[c] {
				r.Min[c] = iv
			}
			if iv > r.Max[c] {
				r.Max[c] = iv
			}
		}
	}
	return r
}
