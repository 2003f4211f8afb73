package predict

import (
	"fmt"

	"github.com/mrjoshuak/go-draco/internal/bio"
	"github.com/mrjoshuak/go-draco/internal/corner"
	"github.com/mrjoshuak/go-draco/internal/entropy"
	"github.com/mrjoshuak/go-draco/internal/geometry"
)

// cornerValueLookup is ValueLookup's corner-indexed counterpart: it resolves
// an already-decoded value by attribute-vertex id (corner.AttributeSeams'
// numbering) rather than by corner.Vertex, since a seamed attribute's value
// can differ between two corners that share a geometry vertex.
type cornerValueLookup func(attributeVertex int32) ([]int32, bool)

// parallelogramCorner is Parallelogram generalized to attribute-vertex ids:
// the same single-face rule, V = A + B - O, evaluated across the seam
// grouping rather than the geometry vertex grouping.
func parallelogramCorner(tbl *corner.Table, c corner.Corner, seams *corner.AttributeSeams, lookup cornerValueLookup) ([]int32, bool) {
	opp := tbl.Opposite(c)
	if opp == corner.InvalidCorner {
		return nil, false
	}
	o, ok1 := lookup(seams.Vertex(opp))
	a, ok2 := lookup(seams.Vertex(tbl.Next(opp)))
	b, ok3 := lookup(seams.Vertex(tbl.Previous(opp)))
	if !ok1 || !ok2 || !ok3 {
		return nil, false
	}
	out := make([]int32, len(o))
	for i := range out {
		out[i] = a[i] + b[i] - o[i]
	}
	return out, true
}

// multiParallelogramCorner is MultiParallelogram generalized the same way,
// averaging parallelogramCorner over every face already reachable by
// swinging c's own corner (not its attribute-vertex, which may span a
// narrower ring once a seam has split it).
func multiParallelogramCorner(tbl *corner.Table, c corner.Corner, seams *corner.AttributeSeams, lookup cornerValueLookup) ([]int32, bool) {
	var sum []int64
	n := 0
	cur := c
	for {
		if pred, ok := parallelogramCorner(tbl, cur, seams, lookup); ok {
			if sum == nil {
				sum = make([]int64, len(pred))
			}
			for i, v := range pred {
				sum[i] += int64(v)
			}
			n++
		}
		next := tbl.SwingRight(cur)
		if next == corner.InvalidCorner || next == c {
			break
		}
		cur = next
	}
	if n == 0 {
		return nil, false
	}
	out := make([]int32, len(sum))
	for i, s := range sum {
		out[i] = int32(s / int64(n))
	}
	return out, true
}

// predictCorner mirrors Predict's scheme dispatch for the corner-indexed
// path; SchemeTexCoord has no corner-indexed orthogonal-projection variant
// yet, so it shares MultiParallelogram's averaging like the other
// non-Parallelogram schemes.
func predictCorner(scheme Scheme, tbl *corner.Table, c corner.Corner, seams *corner.AttributeSeams, lookup cornerValueLookup, prevValue []int32) []int32 {
	var predicted []int32
	var ok bool
	if scheme == SchemeParallelogram {
		predicted, ok = parallelogramCorner(tbl, c, seams, lookup)
	} else {
		predicted, ok = multiParallelogramCorner(tbl, c, seams, lookup)
	}
	if !ok {
		return prevValue
	}
	return predicted
}

// cornerSequence lists, in face-traversal order, one representative corner
// per attribute-vertex the first time that attribute-vertex is reached —
// the corner-indexed analogue of Sequence built by MeshTraversalSequencer.
func cornerSequence(tbl *corner.Table, faces []geometry.Face, seams *corner.AttributeSeams) []corner.Corner {
	seen := make([]bool, seams.NumVertices())
	var out []corner.Corner
	for f := range faces {
		base := tbl.FirstCorner(f)
		for local := 0; local < 3; local++ {
			c := base + corner.Corner(local)
			av := seams.Vertex(c)
			if seen[av] {
				continue
			}
			seen[av] = true
			out = append(out, c)
		}
	}
	return out
}

func packSeamBits(seamBefore []bool) []byte {
	out := make([]byte, (len(seamBefore)+7)/8)
	for i, b := range seamBefore {
		if b {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

func unpackSeamBits(packed []byte, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = packed[i/8]&(1<<uint(i%8)) != 0
	}
	return out
}

// encodeCornerAttribute handles an attribute whose Descriptor.Element is
// ElementCorner: it first derives and transmits the seam bits separating
// attribute-vertices (mesh_attribute_corner_table.cc's per-corner "seam"
// flags), then runs the same quantize/predict/wrap pipeline EncodeAttribute
// uses, indexed by attribute-vertex instead of by point.
func encodeCornerAttribute(out *bio.EncoderBuffer, tbl *corner.Table, faces []geometry.Face, attr *geometry.PointAttribute, scheme Scheme, bits int, positions *geometry.PointAttribute) error {
	numCorners := tbl.NumFaces() * 3
	valueForCorner := func(c corner.Corner) int32 {
		v := attr.MappedIndexForCorner(int32(c))
		if v < 0 {
			return 0
		}
		return v
	}
	seamBefore := corner.BuildSeamBeforeBits(tbl, valueForCorner)
	seams := corner.BuildAttributeSeamsFromBits(tbl, seamBefore)

	out.EncodeUint8(uint8(scheme))
	out.EncodeUint8(uint8(bits))
	out.EncodeUint32(uint32(numCorners))
	out.EncodeBytes(packSeamBits(seamBefore))

	n := attr.Descriptor.NumComponents
	seq := cornerSequence(tbl, faces, seams)

	values := make([][]float64, len(seq))
	for i, c := range seq {
		values[i] = attr.Value(int(valueForCorner(c)))
	}
	q := NewQuantizer(values, bits)
	full := int32(1)<<uint(bits) - 1
	maxValue := make([]int32, n)
	for c := 0; c < n; c++ {
		maxValue[c] = full
	}

	decoded := make(map[int32][]int32, len(seq))
	lookup := func(av int32) ([]int32, bool) {
		v, ok := decoded[av]
		return v, ok
	}

	residuals := make([][]int32, len(seq))
	var prev []int32
	for i, c := range seq {
		actual := q.Quantize(values[i])
		predicted := predictCorner(scheme, tbl, c, seams, lookup, prev)
		if predicted == nil {
			predicted = make([]int32, n)
		}
		res := make([]int32, n)
		for comp := 0; comp < n; comp++ {
			res[comp] = WrapEncode(actual[comp]-predicted[comp], maxValue[comp])
		}
		residuals[i] = res
		decoded[seams.Vertex(c)] = actual
		prev = actual
	}

	out.EncodeUint32(uint32(len(residuals)))
	for c := 0; c < n; c++ {
		out.EncodeFloat64(q.Min[c])
		out.EncodeFloat64(q.Range[c])
	}

	symbols := make([]uint32, 0, len(residuals)*n)
	for _, res := range residuals {
		for _, v := range res {
			symbols = append(symbols, uint32(bio.ConvertSignedIntToSymbol(int64(v))))
		}
	}
	return entropy.EncodeSymbols(out, symbols, n)
}

// decodeCornerAttribute reverses encodeCornerAttribute: it reconstructs the
// attribute-vertex grouping from the transmitted seam bits alone, then
// rebuilds one value per attribute-vertex and fans it out to every corner
// that maps to it via SetCornerMapEntry.
func decodeCornerAttribute(in *bio.DecoderBuffer, tbl *corner.Table, faces []geometry.Face, attr *geometry.PointAttribute, positions *geometry.PointAttribute) (Scheme, error) {
	schemeByte, err := in.DecodeUint8()
	if err != nil {
		return 0, err
	}
	scheme := Scheme(schemeByte)
	bitsByte, err := in.DecodeUint8()
	if err != nil {
		return 0, err
	}
	bits := int(bitsByte)
	numCorners, err := in.DecodeUint32()
	if err != nil {
		return 0, err
	}
	packed, err := in.DecodeBytes(int((numCorners + 7) / 8))
	if err != nil {
		return 0, err
	}
	seamBefore := unpackSeamBits(packed, int(numCorners))
	seams := corner.BuildAttributeSeamsFromBits(tbl, seamBefore)

	n := attr.Descriptor.NumComponents
	full := int32(1)<<uint(bits) - 1
	maxValue := make([]int32, n)
	for c := 0; c < n; c++ {
		maxValue[c] = full
	}

	count, err := in.DecodeUint32()
	if err != nil {
		return 0, err
	}
	q := &Quantizer{Bits: bits, Min: make([]float64, n), Range: make([]float64, n)}
	for c := 0; c < n; c++ {
		if q.Min[c], err = in.DecodeFloat64(); err != nil {
			return 0, err
		}
		if q.Range[c], err = in.DecodeFloat64(); err != nil {
			return 0, err
		}
	}

	symbols, err := entropy.DecodeSymbols(in, int(count)*n, n)
	if err != nil {
		return 0, err
	}
	if len(symbols) != int(count)*n {
		return 0, fmt.Errorf("predict: decoded %d corner-attribute residual components, want %d", len(symbols), int(count)*n)
	}

	seq := cornerSequence(tbl, faces, seams)
	if len(seq) != int(count) {
		return 0, fmt.Errorf("predict: corner-attribute sequence has %d entries, want %d", len(seq), count)
	}

	decoded := make(map[int32][]int32, len(seq))
	lookup := func(av int32) ([]int32, bool) {
		v, ok := decoded[av]
		return v, ok
	}

	valueOf := make(map[int32][]float64, len(seq))
	var prev []int32
	for i, c := range seq {
		wrapped := make([]int32, n)
		for comp := 0; comp < n; comp++ {
			wrapped[comp] = int32(bio.ConvertSymbolToSignedInt(uint64(symbols[i*n+comp])))
		}
		predicted := predictCorner(scheme, tbl, c, seams, lookup, prev)
		if predicted == nil {
			predicted = make([]int32, n)
		}
		actual := make([]int32, n)
		for comp := 0; comp < n; comp++ {
			actual[comp] = WrapDecode(wrapped[comp], predicted[comp], maxValue[comp])
		}
		av := seams.Vertex(c)
		decoded[av] = actual
		prev = actual
		valueOf[av] = q.Dequantize(actual)
	}

	valueIndexOf := make(map[int32]int32, len(valueOf))
	var nextIdx int32
	for av, v := range valueOf {
		idx := nextIdx
		nextIdx++
		valueIndexOf[av] = idx
		attr.EnsureNumValues(int(idx) + 1)
		attr.SetValue(int(idx), v)
	}
	for fc := 0; fc < int(numCorners); fc++ {
		av := seams.Vertex(corner.Corner(fc))
		attr.SetCornerMapEntry(int32(fc), valueIndexOf[av])
	}
	return scheme, nil
}
