package draco

import (
	"math"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mrjoshuak/go-draco/internal/geometry"
)

func tetrahedronMesh() *geometry.Mesh {
	m := geometry.NewMesh(4)
	desc := geometry.AttributeDescriptor{Kind: geometry.AttributeKindPosition, DataType: geometry.DataTypeFloat32, NumComponents: 3}
	pos := geometry.NewPointAttribute(desc, 4)
	coords := [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for i, c := range coords {
		pos.SetValue(i, c)
	}
	m.AddAttribute(pos)
	m.AddFace(geometry.Face{0, 1, 2})
	m.AddFace(geometry.Face{0, 1, 3})
	m.AddFace(geometry.Face{0, 2, 3})
	m.AddFace(geometry.Face{1, 2, 3})
	return m
}

// sortedValenceHistogram is the same topology-invariant summary the
// edgebreaker package's tests use: Decode renumbers point ids, so exact
// index equality isn't expected, but the multiset of per-vertex face
// counts is.
func sortedValenceHistogram(m *geometry.Mesh) []int {
	counts := make(map[geometry.PointIndex]int)
	for f := geometry.FaceIndex(0); f < geometry.FaceIndex(m.NumFaces()); f++ {
		for _, p := range m.Face(f) {
			counts[p]++
		}
	}
	var out []int
	for _, c := range counts {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

func TestEncodeDecodeRoundTripTetrahedron(t *testing.T) {
	mesh := tetrahedronMesh()

	data, err := Encode(mesh, Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Encode returned empty stream")
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.NumFaces() != mesh.NumFaces() {
		t.Fatalf("NumFaces() = %d, want %d", got.NumFaces(), mesh.NumFaces())
	}
	if got.NumPoints() != mesh.NumPoints() {
		t.Fatalf("NumPoints() = %d, want %d", got.NumPoints(), mesh.NumPoints())
	}
	if diff := cmp.Diff(sortedValenceHistogram(mesh), sortedValenceHistogram(got), cmp.Comparer(func(a, b []int) bool {
		if len(a) != len(b) {
			return false
		}
		seen := make(map[int]int)
		for _, v := range a {
			seen[v]++
		}
		for _, v := range b {
			seen[v]--
		}
		for _, v := range seen {
			if v != 0 {
				return false
			}
		}
		return true
	})); diff != "" {
		t.Fatalf("valence histogram mismatch: %s", diff)
	}

	if got.NumAttributes() != 1 {
		t.Fatalf("NumAttributes() = %d, want 1", got.NumAttributes())
	}
	gotAttr := got.Attribute(0)
	wantAttr := mesh.Attribute(0)
	if gotAttr.Descriptor.NumComponents != wantAttr.Descriptor.NumComponents {
		t.Fatalf("NumComponents = %d, want %d", gotAttr.Descriptor.NumComponents, wantAttr.Descriptor.NumComponents)
	}

	// Every decoded position should be close to one of the four original
	// tetrahedron corners (point ids are renumbered by the decoder).
	for i := 0; i < gotAttr.NumValues(); i++ {
		v := gotAttr.Value(i)
		best := math.Inf(1)
		for j := 0; j < wantAttr.NumValues(); j++ {
			w := wantAttr.Value(j)
			d := 0.0
			for c := range v {
				d += (v[c] - w[c]) * (v[c] - w[c])
			}
			if d < best {
				best = d
			}
		}
		if best > 1e-4 {
			t.Fatalf("decoded position %v doesn't match any original corner (closest sq-dist %v)", v, best)
		}
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := Decode([]byte("not a draco stream at all"))
	if err == nil {
		t.Fatal("Decode should reject a stream with the wrong magic")
	}
	var derr *Error
	if !asError(err, &derr) {
		t.Fatalf("error should be *draco.Error, got %T", err)
	}
	if derr.Kind != ErrInvalidHeader {
		t.Fatalf("Kind = %v, want ErrInvalidHeader", derr.Kind)
	}
}

func asError(err error, target **Error) bool {
	if e, ok := err.(*Error); ok {
		*target = e
		return true
	}
	return false
}

func TestEncodeRejectsNilMesh(t *testing.T) {
	if _, err := Encode(nil, Options{}); err == nil {
		t.Fatal("Encode(nil, ...) should return an error")
	}
}
