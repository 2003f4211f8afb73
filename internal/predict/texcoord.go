package predict

import "github.com/mrjoshuak/go-draco/internal/corner"

// TexCoordPredictor predicts a texture-coordinate value from the same
// parallelogram face Parallelogram uses, but — following
// mesh_prediction_scheme_texture_coordinates.h's use of the model's actual
// 3D shape rather than a flat UV average — expresses the target corner's
// position as an affine combination of the two known neighbors' positions
// (a least-squares projection onto the plane the triangle spans, via the
// 2x2 Gram-matrix solve in place of the reference's exact-plane geometry)
// and applies that same combination to their known UV values. position
// must return the already-decoded 3D position for any vertex in the
// table; callers outside the texture-coordinate attribute pass a function
// that always reports ok=false, which sends Predict to its
// MultiParallelogram fallback.
func TexCoordPredictor(tbl *corner.Table, c corner.Corner, lookup ValueLookup, position func(corner.Vertex) ([]float64, bool)) ([]int32, bool) {
	opp := tbl.Opposite(c)
	if opp == corner.InvalidCorner {
		return nil, false
	}
	vO := tbl.Vertex(opp)
	vN := tbl.Vertex(tbl.Next(opp))
	vP := tbl.Vertex(tbl.Previous(opp))
	vT := tbl.Vertex(c)

	uvO, ok1 := lookup(vO)
	uvN, ok2 := lookup(vN)
	uvP, ok3 := lookup(vP)
	if !ok1 || !ok2 || !ok3 {
		return nil, false
	}
	posO, ok4 := position(vO)
	posN, ok5 := position(vN)
	posP, ok6 := position(vP)
	posT, ok7 := position(vT)
	if !ok4 || !ok5 || !ok6 || !ok7 {
		return nil, false
	}

	e1 := sub3(posN, posO)
	e2 := sub3(posP, posO)
	d := sub3(posT, posO)

	g11, g12, g22 := dot3(e1, e1), dot3(e1, e2), dot3(e2, e2)
	det := g11*g22 - g12*g12
	out := make([]int32, len(uvO))
	if det == 0 {
		// Degenerate (collinear) neighbor triangle: the affine basis
		// doesn't span a plane, so fall back to plain parallelogram
		// averaging in UV space.
		for i := range out {
			out[i] = uvN[i] + uvP[i] - uvO[i]
		}
		return out, true
	}
	b1, b2 := dot3(e1, d), dot3(e2, d)
	alpha := (b1*g22 - b2*g12) / det
	beta := (b2*g11 - b1*g12) / det

	for i := range out {
		predicted := float64(uvO[i]) + alpha*float64(uvN[i]-uvO[i]) + beta*float64(uvP[i]-uvO[i])
		out[i] = int32(predicted + sign(predicted)*0.5)
	}
	return out, true
}

func sub3(a, b []float64) []float64 { return []float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func dot3(a, b []float64) float64   { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
