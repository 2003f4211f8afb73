package predict

// WrapEncode maps an actual-minus-predicted delta that overflows the
// quantized value's valid range [0, maxValue] back into range by adding or
// subtracting the range width N = maxValue+1, so the residual entropy
// coder never sees a value wider than the quantization itself needed. This
// matters most at a domain wrap-around: a value quantized near 0 predicted
// from a neighbor quantized near maxValue produces a huge raw delta that
// WrapEncode folds back down to a small one.
func WrapEncode(delta, maxValue int32) int32 {
	n := maxValue + 1
	switch {
	case delta < 0:
		return delta + n
	case delta > maxValue:
		return delta - n
	default:
		return delta
	}
}

// WrapDecode reverses WrapEncode. A folded residual alone can't be told
// apart from an unfolded small one — only the sum predicted+residual modulo
// N is meaningful — so WrapDecode takes the predicted value too and
// recovers the actual quantized value directly rather than an unwrapped
// delta.
func WrapDecode(wrapped, predicted, maxValue int32) int32 {
	n := maxValue + 1
	v := (predicted + wrapped) % n
	if v < 0 {
		v += n
	}
	return v
}
