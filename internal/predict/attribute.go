package predict

import (
	"fmt"
	"math"

	"github.com/mrjoshuak/go-draco/internal/bio"
	"github.com/mrjoshuak/go-draco/internal/corner"
	"github.com/mrjoshuak/go-draco/internal/entropy"
	"github.com/mrjoshuak/go-draco/internal/geometry"
)

// attributeMode tags which of the three value representations an encoded
// attribute stream uses, so DecodeAttribute knows how to turn residuals
// back into attribute values without guessing from the descriptor alone
// (a generic attribute with integer DataType still needs its encoded
// per-component bounds, not just a bit count).
type attributeMode uint8

const (
	// modeQuantizedFloat bins float-valued components into bits-wide
	// integers across the value set's bounding range (lossy).
	modeQuantizedFloat attributeMode = iota
	// modeIntegerPassthrough rebases each component to its own exact
	// integer min/max and carries it through unquantized (lossless),
	// for attributes declared with an integer DataType.
	modeIntegerPassthrough
	// modeOctahedralNormal replaces a 3-component unit vector with its
	// 2-component octahedral encoding before prediction.
	modeOctahedralNormal
)

func isIntegerType(dt geometry.DataType) bool {
	switch dt {
	case geometry.DataTypeInt8, geometry.DataTypeUint8,
		geometry.DataTypeInt16, geometry.DataTypeUint16,
		geometry.DataTypeInt32, geometry.DataTypeUint32:
		return true
	default:
		return false
	}
}

// EncodeAttribute converts attr's values to the integer domain its mode
// calls for (quantized floats, lossless integer passthrough, or an
// octahedral-encoded normal), predicts each value from its already-visited
// neighbors per scheme as the traversal sequencer reaches it, folds the
// residual into the value's valid range with WrapEncode, and entropy-codes
// the result. The stream carries its own mode tag and bounds so
// DecodeAttribute needs nothing beyond the connectivity already decoded
// and, for scheme == SchemeTexCoord, the mesh's already-decoded position
// attribute (pass nil for every other scheme).
func EncodeAttribute(out *bio.EncoderBuffer, tbl *corner.Table, faces []geometry.Face, attr *geometry.PointAttribute, scheme Scheme, bits int, positions *geometry.PointAttribute) error {
	if attr.Descriptor.Element == geometry.ElementCorner {
		return encodeCornerAttribute(out, tbl, faces, attr, scheme, bits, positions)
	}

	seq := MeshTraversalSequencer(tbl, faces)
	n := attr.Descriptor.NumComponents

	mode := modeQuantizedFloat
	switch {
	case isIntegerType(attr.Descriptor.DataType):
		mode = modeIntegerPassthrough
	case scheme == SchemeNormal && n == 3:
		mode = modeOctahedralNormal
	}

	values := make([][]float64, attr.NumValues())
	for i := range values {
		values[i] = attr.Value(i)
	}

	var q *Quantizer
	var ir *integerRange
	wireComponents := n
	maxValue := make([]int32, n)
	full := int32(1)<<uint(bits) - 1

	switch mode {
	case modeIntegerPassthrough:
		ir = newIntegerRange(values)
		for c := 0; c < n; c++ {
			maxValue[c] = ir.Max[c] - ir.Min[c]
		}
	case modeOctahedralNormal:
		wireComponents = 2
		maxValue = []int32{full, full}
	default:
		q = NewQuantizer(values, bits)
		for c := 0; c < n; c++ {
			maxValue[c] = full
		}
	}

	toInt := func(p geometry.PointIndex) []int32 {
		v := attr.Value(int(attr.MappedIndex(p)))
		switch mode {
		case modeIntegerPassthrough:
			out := make([]int32, n)
			for c, x := range v {
				out[c] = int32(math.Round(x)) - ir.Min[c]
			}
			return out
		case modeOctahedralNormal:
			u, w := OctahedralEncode(v[0], v[1], v[2], bits)
			return []int32{u, w}
		default:
			return q.Quantize(v)
		}
	}

	quantized := make(map[geometry.PointIndex][]int32, len(seq.Points))
	lookup := func(v corner.Vertex) ([]int32, bool) {
		val, ok := quantized[tbl.VertexParent(v)]
		return val, ok
	}
	posLookup := positionLookup(tbl, positions)

	residuals := make([][]int32, len(seq.Points))
	var prev []int32
	for i, p := range seq.Points {
		actual := toInt(p)
		predicted := Predict(scheme, tbl, seq.Corners[i], lookup, prev, posLookup)
		if predicted == nil {
			predicted = make([]int32, wireComponents)
		}
		res := make([]int32, wireComponents)
		for c := 0; c < wireComponents; c++ {
			res[c] = WrapEncode(actual[c]-predicted[c], maxValue[c])
		}
		residuals[i] = res
		quantized[p] = actual
		prev = actual
	}

	out.EncodeUint8(uint8(scheme))
	out.EncodeUint8(uint8(mode))
	out.EncodeUint8(uint8(bits))
	out.EncodeUint32(uint32(len(residuals)))
	switch mode {
	case modeIntegerPassthrough:
		for c := 0; c < n; c++ {
			out.EncodeInt32(ir.Min[c])
			out.EncodeInt32(ir.Max[c])
		}
	case modeQuantizedFloat:
		for c := 0; c < n; c++ {
			out.EncodeFloat64(q.Min[c])
			out.EncodeFloat64(q.Range[c])
		}
	}

	symbols := make([]uint32, 0, len(residuals)*wireComponents)
	for _, res := range residuals {
		for _, v := range res {
			symbols = append(symbols, uint32(bio.ConvertSignedIntToSymbol(int64(v))))
		}
	}
	return entropy.EncodeSymbols(out, symbols, wireComponents)
}

// DecodeAttribute reverses EncodeAttribute. attr must already be allocated
// (geometry.NewPointAttribute) with room for one value per point in the
// traversal sequence's domain. positions should be the mesh's already
// fully-decoded position attribute when this attribute's scheme turns out
// to be SchemeTexCoord (the texture-coordinate predictor needs known 3D
// positions); pass nil for every other scheme.
func DecodeAttribute(in *bio.DecoderBuffer, tbl *corner.Table, faces []geometry.Face, attr *geometry.PointAttribute, positions *geometry.PointAttribute) (Scheme, error) {
	if attr.Descriptor.Element == geometry.ElementCorner {
		return decodeCornerAttribute(in, tbl, faces, attr, positions)
	}

	schemeByte, err := in.DecodeUint8()
	if err != nil {
		return 0, err
	}
	scheme := Scheme(schemeByte)
	modeByte, err := in.DecodeUint8()
	if err != nil {
		return 0, err
	}
	mode := attributeMode(modeByte)
	bitsByte, err := in.DecodeUint8()
	if err != nil {
		return 0, err
	}
	bits := int(bitsByte)
	count, err := in.DecodeUint32()
	if err != nil {
		return 0, err
	}

	n := attr.Descriptor.NumComponents
	wireComponents := n
	maxValue := make([]int32, n)
	full := int32(1)<<uint(bits) - 1

	var q *Quantizer
	var irMin []int32

	switch mode {
	case modeIntegerPassthrough:
		irMin = make([]int32, n)
		for c := 0; c < n; c++ {
			minV, err := in.DecodeInt32()
			if err != nil {
				return 0, err
			}
			maxV, err := in.DecodeInt32()
			if err != nil {
				return 0, err
			}
			irMin[c] = minV
			maxValue[c] = maxV - minV
		}
	case modeOctahedralNormal:
		wireComponents = 2
		maxValue = []int32{full, full}
	default:
		q = &Quantizer{Bits: bits, Min: make([]float64, n), Range: make([]float64, n)}
		for c := 0; c < n; c++ {
			if q.Min[c], err = in.DecodeFloat64(); err != nil {
				return 0, err
			}
			if q.Range[c], err = in.DecodeFloat64(); err != nil {
				return 0, err
			}
			maxValue[c] = full
		}
	}

	symbols, err := entropy.DecodeSymbols(in, int(count)*wireComponents, wireComponents)
	if err != nil {
		return 0, err
	}
	if len(symbols) != int(count)*wireComponents {
		return 0, fmt.Errorf("predict: decoded %d residual components, want %d", len(symbols), int(count)*wireComponents)
	}

	seq := MeshTraversalSequencer(tbl, faces)
	if len(seq.Points) != int(count) {
		return 0, fmt.Errorf("predict: traversal sequence has %d points, want %d", len(seq.Points), count)
	}

	quantized := make(map[geometry.PointIndex][]int32, len(seq.Points))
	lookup := func(v corner.Vertex) ([]int32, bool) {
		val, ok := quantized[tbl.VertexParent(v)]
		return val, ok
	}
	posLookup := positionLookup(tbl, positions)

	var prev []int32
	for i, p := range seq.Points {
		wrapped := make([]int32, wireComponents)
		for c := 0; c < wireComponents; c++ {
			wrapped[c] = int32(bio.ConvertSymbolToSignedInt(uint64(symbols[i*wireComponents+c])))
		}
		predicted := Predict(scheme, tbl, seq.Corners[i], lookup, prev, posLookup)
		if predicted == nil {
			predicted = make([]int32, wireComponents)
		}
		actual := make([]int32, wireComponents)
		for c := 0; c < wireComponents; c++ {
			actual[c] = WrapDecode(wrapped[c], predicted[c], maxValue[c])
		}
		quantized[p] = actual
		prev = actual

		switch mode {
		case modeIntegerPassthrough:
			vals := make([]float64, n)
			for c := 0; c < n; c++ {
				vals[c] = float64(actual[c] + irMin[c])
			}
			attr.SetValue(int(attr.MappedIndex(p)), vals)
		case modeOctahedralNormal:
			x, y, z := OctahedralDecode(actual[0], actual[1], bits)
			attr.SetValue(int(attr.MappedIndex(p)), []float64{x, y, z})
		default:
			attr.SetValue(int(attr.MappedIndex(p)), q.Dequantize(actual))
		}
	}
	return scheme, nil
}

// positionLookup adapts an optional position attribute into the
// corner.Vertex-keyed accessor TexCoordPredictor needs, returning ok=false
// unconditionally when positions is nil (every scheme but SchemeTexCoord).
func positionLookup(tbl *corner.Table, positions *geometry.PointAttribute) func(corner.Vertex) ([]float64, bool) {
	if positions == nil {
		return func(corner.Vertex) ([]float64, bool) { return nil, false }
	}
	return func(v corner.Vertex) ([]float64, bool) {
		p := tbl.VertexParent(v)
		idx := positions.MappedIndex(p)
		if idx < 0 || int(idx) >= positions.NumValues() {
			return nil, false
		}
		return positions.Value(int(idx)), true
	}
}
