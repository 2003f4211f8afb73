package draco

import "github.com/mrjoshuak/go-draco/internal/predict"

// PredictionScheme selects how a non-position attribute's values are
// predicted from its neighbors before entropy coding. Re-exported from
// internal/predict so callers never import an internal package directly.
type PredictionScheme = predict.Scheme

const (
	PredictionDifference                    = predict.SchemeDifference
	PredictionParallelogram                 = predict.SchemeParallelogram
	PredictionMultiParallelogram            = predict.SchemeMultiParallelogram
	PredictionConstrainedMultiParallelogram = predict.SchemeConstrainedMultiParallelogram
	PredictionTexCoord                      = predict.SchemeTexCoord
	PredictionNormal                        = predict.SchemeNormal
)

// Options configures a single Encode call. The zero value is usable:
// lossless integer attributes, 11-bit quantized positions (the reference
// codec's own default), normal prediction for normals, difference
// prediction for generic attributes and parallelogram prediction elsewhere.
type Options struct {
	// PositionQuantizationBits is the number of bits each position
	// component is quantized to. 0 selects the default of 11.
	PositionQuantizationBits int

	// GenericQuantizationBits is the default bit depth for any other
	// float-valued attribute (normals, texture coordinates, generic). 0
	// selects 8.
	GenericQuantizationBits int

	// Scheme is the prediction scheme applied to every attribute other
	// than position, which always uses Parallelogram, and normal, which
	// always uses PredictionNormal. The zero value (PredictionDifference)
	// selects PredictionParallelogram, except for generic attributes,
	// which keep difference prediction.
	Scheme PredictionScheme
}

func (o Options) positionBits() int {
	if o.PositionQuantizationBits <= 0 {
		return 11
	}
	return o.PositionQuantizationBits
}

func (o Options) genericBits() int {
	if o.GenericQuantizationBits <= 0 {
		return 8
	}
	return o.GenericQuantizationBits
}
