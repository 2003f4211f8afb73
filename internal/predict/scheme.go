package predict

import "github.com/mrjoshuak/go-draco/internal/corner"

// Scheme identifies which predictor an attribute stream was built with.
// The wire tag matches the order the reference codec enumerates them in.
type Scheme uint8

const (
	SchemeDifference Scheme = iota
	SchemeParallelogram
	SchemeMultiParallelogram
	SchemeConstrainedMultiParallelogram
	SchemeTexCoord
	SchemeNormal
)

func (s Scheme) String() string {
	switch s {
	case SchemeDifference:
		return "difference"
	case SchemeParallelogram:
		return "parallelogram"
	case SchemeMultiParallelogram:
		return "multi-parallelogram"
	case SchemeConstrainedMultiParallelogram:
		return "constrained-multi-parallelogram"
	case SchemeTexCoord:
		return "tex-coord"
	case SchemeNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// ValueLookup returns the already-decoded component values belonging to
// vertex v, or ok=false if v has not been reached yet by the sequencer —
// which happens for the far side of a parallelogram whose opposite face
// sits later in traversal order.
type ValueLookup func(v corner.Vertex) (values []int32, ok bool)

// Parallelogram predicts a value from the single face across the edge
// ahead of c, V = A + B - O, the standard rule for a (near-)planar
// quadrilateral split into two triangles (mesh_prediction_scheme_
// parallelogram.h).
func Parallelogram(tbl *corner.Table, c corner.Corner, lookup ValueLookup) ([]int32, bool) {
	opp := tbl.Opposite(c)
	if opp == corner.InvalidCorner {
		return nil, false
	}
	o, ok1 := lookup(tbl.Vertex(opp))
	a, ok2 := lookup(tbl.Vertex(tbl.Next(opp)))
	b, ok3 := lookup(tbl.Vertex(tbl.Previous(opp)))
	if !ok1 || !ok2 || !ok3 {
		return nil, false
	}
	out := make([]int32, len(o))
	for i := range out {
		out[i] = a[i] + b[i] - o[i]
	}
	return out, true
}

// MultiParallelogram averages the Parallelogram prediction over every face
// already reachable around c's vertex, damping the error any single
// parallelogram's planarity assumption introduces
// (mesh_prediction_scheme_multi_parallelogram.h).
// SchemeConstrainedMultiParallelogram also uses this unconstrained average:
// no crease flags are written or read, and no parallelogram is excluded.
func MultiParallelogram(tbl *corner.Table, c corner.Corner, lookup ValueLookup) ([]int32, bool) {
	var sum []int64
	n := 0
	cur := c
	for {
		if pred, ok := Parallelogram(tbl, cur, lookup); ok {
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

// Predict dispatches to the predictor scheme names, falling back to the
// most recently decoded value (plain differencing) when the geometric
// predictor has no usable neighbor yet — the same fallback the reference
// decoder uses for a scheme's first few vertices. position is consulted
// only by SchemeTexCoord's orthogonal-projection predictor; every other
// scheme ignores it, so callers with nothing to offer there can pass a
// function that always returns ok=false.
func Predict(scheme Scheme, tbl *corner.Table, c corner.Corner, lookup ValueLookup, prevValue []int32, position func(corner.Vertex) ([]float64, bool)) []int32 {
	var predicted []int32
	var ok bool
	switch scheme {
	case SchemeParallelogram:
		predicted, ok = Parallelogram(tbl, c, lookup)
	case SchemeMultiParallelogram, SchemeConstrainedMultiParallelogram, SchemeNormal:
		predicted, ok = MultiParallelogram(tbl, c, lookup)
	case SchemeTexCoord:
		predicted, ok = TexCoordPredictor(tbl, c, lookup, position)
		if !ok {
			predicted, ok = MultiParallelogram(tbl, c, lookup)
		}
	}
	if !ok {
		return prevValue
	}
	return predicted
}
