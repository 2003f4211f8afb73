package edgebreaker

import (
	"sort"
	"testing"

	"github.com/mrjoshuak/go-draco/internal/bio"
	"github.com/mrjoshuak/go-draco/internal/corner"
	"github.com/mrjoshuak/go-draco/internal/geometry"
)

func quad() []geometry.Face {
	return []geometry.Face{{0, 1, 2}, {0, 2, 3}}
}

func tetrahedron() []geometry.Face {
	return []geometry.Face{
		{0, 1, 2},
		{0, 1, 3},
		{0, 2, 3},
		{1, 2, 3},
	}
}

// valenceHistogram returns the sorted multiset of vertex valences, which is
// invariant under the relabeling DecodeConnectivity introduces.
func valenceHistogram(tbl *corner.Table) []int {
	var h []int
	for v := corner.Vertex(0); v < corner.Vertex(tbl.NumVertices()); v++ {
		h = append(h, tbl.Valence(v))
	}
	sort.Ints(h)
	return h
}

func boundaryCount(tbl *corner.Table) int {
	n := 0
	for v := corner.Vertex(0); v < corner.Vertex(tbl.NumVertices()); v++ {
		if tbl.IsOnBoundary(v) {
			n++
		}
	}
	return n
}

func roundTrip(t *testing.T, faces []geometry.Face, numPoints int) *corner.Table {
	t.Helper()
	tbl := corner.NewTable(faces, numPoints)

	out := bio.NewEncoderBuffer()
	Encode(out, tbl)

	got, _, err := Decode(bio.NewDecoderBuffer(out.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.NumFaces() != tbl.NumFaces() {
		t.Fatalf("NumFaces() = %d, want %d", got.NumFaces(), tbl.NumFaces())
	}
	if got.NumVertices() != tbl.NumVertices() {
		t.Fatalf("NumVertices() = %d, want %d", got.NumVertices(), tbl.NumVertices())
	}
	wantHist, gotHist := valenceHistogram(tbl), valenceHistogram(got)
	if len(wantHist) != len(gotHist) {
		t.Fatalf("valence histogram length = %d, want %d", len(gotHist), len(wantHist))
	}
	for i := range wantHist {
		if wantHist[i] != gotHist[i] {
			t.Fatalf("valence histogram = %v, want %v", gotHist, wantHist)
		}
	}
	if boundaryCount(got) != boundaryCount(tbl) {
		t.Fatalf("boundaryCount = %d, want %d", boundaryCount(got), boundaryCount(tbl))
	}
	return got
}

func TestConnectivityRoundTripQuad(t *testing.T) {
	roundTrip(t, quad(), 4)
}

func TestConnectivityRoundTripTetrahedron(t *testing.T) {
	// A closed manifold forces every traversal branch to terminate via
	// SymbolE rather than running off a mesh boundary, exercising the
	// both-neighbors-visited path.
	roundTrip(t, tetrahedron(), 4)
}

func TestEncodeConnectivitySymbolCounts(t *testing.T) {
	tbl := corner.NewTable(tetrahedron(), 4)
	c := EncodeConnectivity(tbl)
	if len(c.Symbols) != tbl.NumFaces() {
		t.Fatalf("len(Symbols) = %d, want %d (one symbol per face)", len(c.Symbols), tbl.NumFaces())
	}
	var numC int
	for _, s := range c.Symbols {
		if s == SymbolC {
			numC++
		}
	}
	// Every SymbolC face introduces exactly one new vertex; the only others
	// are the two vertices the traversal bootstraps before the loop starts.
	if numC+2 != c.NumVertices {
		t.Fatalf("numC+2 = %d, want NumVertices %d", numC+2, c.NumVertices)
	}
}

func TestConnectivityRoundTripStrip(t *testing.T) {
	// A 5-triangle strip (7 points), exercising several consecutive SymbolC
	// steps plus a boundary close.
	faces := []geometry.Face{
		{0, 1, 2},
		{1, 3, 2},
		{2, 3, 4},
		{3, 5, 4},
		{4, 5, 6},
	}
	roundTrip(t, faces, 7)
}
