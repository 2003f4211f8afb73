package predict

import (
	"math"
	"testing"

	"github.com/mrjoshuak/go-draco/internal/bio"
	"github.com/mrjoshuak/go-draco/internal/corner"
	"github.com/mrjoshuak/go-draco/internal/geometry"
)

func cubeFaces() []geometry.Face {
	// A unit cube, 8 points / 12 triangles, closed manifold.
	return []geometry.Face{
		{0, 1, 2}, {0, 2, 3}, // bottom
		{4, 6, 5}, {4, 7, 6}, // top
		{0, 4, 5}, {0, 5, 1}, // front
		{1, 5, 6}, {1, 6, 2}, // right
		{2, 6, 7}, {2, 7, 3}, // back
		{3, 7, 4}, {3, 4, 0}, // left
	}
}

func cubePositions() [][]float64 {
	return [][]float64{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
}

func TestQuantizeDequantizeRoundTripsWithinOneStep(t *testing.T) {
	values := cubePositions()
	q := NewQuantizer(values, 11)
	for _, v := range values {
		got := q.Dequantize(q.Quantize(v))
		step := q.Range[0] / float64(uint32(1)<<11-1)
		for i := range v {
			if math.Abs(got[i]-v[i]) > step+1e-9 {
				t.Fatalf("dequantize(quantize(%v)) = %v, off by more than one grid step", v, got)
			}
		}
	}
}

func TestWrapEncodeFoldsIntoRange(t *testing.T) {
	const maxValue = int32(2047)
	cases := []struct{ delta, want int32 }{
		{0, 0},
		{maxValue, maxValue},
		{maxValue + 3, 2},
		{-1, maxValue},
	}
	for _, c := range cases {
		got := WrapEncode(c.delta, maxValue)
		if got != c.want {
			t.Fatalf("WrapEncode(%d, %d) = %d, want %d", c.delta, maxValue, got, c.want)
		}
	}
}

func TestParallelogramAttributeRoundTrip(t *testing.T) {
	faces := cubeFaces()
	tbl := corner.NewTable(faces, 8)

	desc := geometry.AttributeDescriptor{Kind: geometry.AttributeKindPosition, DataType: geometry.DataTypeFloat32, NumComponents: 3}
	attr := geometry.NewPointAttribute(desc, 8)
	for i, v := range cubePositions() {
		attr.SetValue(i, v)
	}

	out := bio.NewEncoderBuffer()
	if err := EncodeAttribute(out, tbl, faces, attr, SchemeParallelogram, 14, nil); err != nil {
		t.Fatalf("EncodeAttribute: %v", err)
	}

	gotAttr := geometry.NewPointAttribute(desc, 8)
	in := bio.NewDecoderBuffer(out.Bytes())
	scheme, err := DecodeAttribute(in, tbl, faces, gotAttr, nil)
	if err != nil {
		t.Fatalf("DecodeAttribute: %v", err)
	}
	if scheme != SchemeParallelogram {
		t.Fatalf("scheme = %v, want %v", scheme, SchemeParallelogram)
	}

	want := cubePositions()
	q := NewQuantizer(want, 14)
	step := q.Range[0] / float64(uint32(1)<<14-1)
	for i := range want {
		got := gotAttr.Value(i)
		for c := range want[i] {
			if math.Abs(got[c]-want[i][c]) > step+1e-9 {
				t.Fatalf("point %d component %d = %v, want ~%v", i, c, got[c], want[i][c])
			}
		}
	}
}

func TestDifferenceAttributeRoundTrip(t *testing.T) {
	faces := cubeFaces()
	tbl := corner.NewTable(faces, 8)

	desc := geometry.AttributeDescriptor{Kind: geometry.AttributeKindGeneric, DataType: geometry.DataTypeFloat32, NumComponents: 1}
	attr := geometry.NewPointAttribute(desc, 8)
	for i := 0; i < 8; i++ {
		attr.SetValue(i, []float64{float64(i)})
	}

	out := bio.NewEncoderBuffer()
	if err := EncodeAttribute(out, tbl, faces, attr, SchemeDifference, 12, nil); err != nil {
		t.Fatalf("EncodeAttribute: %v", err)
	}

	gotAttr := geometry.NewPointAttribute(desc, 8)
	in := bio.NewDecoderBuffer(out.Bytes())
	if _, err := DecodeAttribute(in, tbl, faces, gotAttr, nil); err != nil {
		t.Fatalf("DecodeAttribute: %v", err)
	}

	q := NewQuantizer([][]float64{{0}, {7}}, 12)
	step := q.Range[0] / float64(uint32(1)<<12-1)
	for i := 0; i < 8; i++ {
		if math.Abs(gotAttr.Value(i)[0]-float64(i)) > step+1e-9 {
			t.Fatalf("point %d = %v, want ~%v", i, gotAttr.Value(i)[0], i)
		}
	}
}

func TestOctahedralRoundTripPreservesDirection(t *testing.T) {
	dirs := [][3]float64{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}, {1, 1, 1}, {-1, -1, -1}}
	const bits = 12
	for _, d := range dirs {
		l := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
		x, y, z := d[0]/l, d[1]/l, d[2]/l
		u, v := OctahedralEncode(x, y, z, bits)
		gx, gy, gz := OctahedralDecode(u, v, bits)
		dot := x*gx + y*gy + z*gz
		if dot < 0.99 {
			t.Fatalf("direction %v round-tripped to (%v,%v,%v), dot=%v", d, gx, gy, gz, dot)
		}
	}
}
