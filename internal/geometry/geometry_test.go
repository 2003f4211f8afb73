package geometry

import "testing"

func TestPointAttributeIdentityMapping(t *testing.T) {
	desc := AttributeDescriptor{Kind: AttributeKindPosition, DataType: DataTypeFloat32, NumComponents: 3}
	a := NewPointAttribute(desc, 3)
	if !a.IsMappingIdentity() {
		t.Fatal("freshly created attribute should have identity mapping")
	}
	if a.Descriptor.UniqueID == 0 {
		t.Fatal("NewPointAttribute should assign a non-zero UniqueID")
	}
	a.SetPointMapEntry(0, 2)
	if a.IsMappingIdentity() {
		t.Fatal("mapping should no longer be identity after SetPointMapEntry")
	}
	if got := a.MappedIndex(0); got != 2 {
		t.Fatalf("MappedIndex(0) = %d, want 2", got)
	}
	if got := a.MappedIndex(1); got != 1 {
		t.Fatalf("MappedIndex(1) = %d, want 1 (untouched identity entry)", got)
	}
}

func TestDeduplicateAttributeValues(t *testing.T) {
	desc := AttributeDescriptor{Kind: AttributeKindPosition, DataType: DataTypeFloat32, NumComponents: 3}
	a := NewPointAttribute(desc, 4)
	a.SetValue(0, []float64{1, 2, 3})
	a.SetValue(1, []float64{1, 2, 3}) // duplicate of 0
	a.SetValue(2, []float64{4, 5, 6})
	a.SetValue(3, []float64{1, 2, 3}) // duplicate of 0

	pc := NewPointCloud(4)
	pc.AddAttribute(a)
	pc.DeduplicateAttributeValues()

	if got := a.NumValues(); got != 2 {
		t.Fatalf("NumValues() = %d, want 2 distinct entries", got)
	}
	v0 := a.Value(int(a.MappedIndex(0)))
	v1 := a.Value(int(a.MappedIndex(1)))
	v3 := a.Value(int(a.MappedIndex(3)))
	if v0[0] != v1[0] || v0[0] != v3[0] {
		t.Fatalf("points 0, 1, 3 should map to the same deduplicated value")
	}
	v2 := a.Value(int(a.MappedIndex(2)))
	if v2[0] == v0[0] {
		t.Fatal("point 2 should map to a distinct value from point 0")
	}
}

func TestMeshDeduplicatePointIds(t *testing.T) {
	desc := AttributeDescriptor{Kind: AttributeKindPosition, DataType: DataTypeFloat32, NumComponents: 1}
	a := NewPointAttribute(desc, 4)
	// Points 0 and 2 carry identical attribute data and should merge.
	a.SetValue(0, []float64{10})
	a.SetValue(1, []float64{20})
	a.SetValue(2, []float64{10})
	a.SetValue(3, []float64{30})

	m := NewMesh(4)
	m.AddAttribute(a)
	m.AddFace(Face{0, 1, 2})
	m.AddFace(Face{1, 2, 3})

	m.DeduplicatePointIds()

	if m.NumPoints() != 3 {
		t.Fatalf("NumPoints() = %d, want 3 after merging points 0 and 2", m.NumPoints())
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() after dedup: %v", err)
	}
}
