// Package geometry holds the container types the codec operates on:
// PointCloud, Mesh and their per-attribute data. These mirror the teacher's
// layered container model but store Draco's geometric data rather than
// image tiles: fixed-size index types, attribute descriptors, and flat
// backing arrays with an explicit point-to-value mapping.
package geometry

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// PointIndex identifies an entry in a PointCloud's point domain.
type PointIndex int32

// FaceIndex identifies a triangle within a Mesh.
type FaceIndex int32

// AttributeID identifies one PointAttribute within a PointCloud.
type AttributeID int32

// VertexIndex identifies a position in a CornerTable's vertex domain; see
// package corner. Declared here so attribute plumbing that predates corner
// table construction can refer to it without importing corner.
type VertexIndex int32

const InvalidPointIndex PointIndex = -1
const InvalidFaceIndex FaceIndex = -1
const InvalidVertexIndex VertexIndex = -1

// DataType enumerates the scalar storage types an attribute's components
// can hold, following the wire format's compact type tags.
type DataType uint8

const (
	DataTypeInvalid DataType = iota
	DataTypeInt8
	DataTypeUint8
	DataTypeInt16
	DataTypeUint16
	DataTypeInt32
	DataTypeUint32
	DataTypeFloat32
)

// AttributeKind labels the semantic role of an attribute, independent of
// how it is stored.
type AttributeKind uint8

const (
	AttributeKindInvalid AttributeKind = iota
	AttributeKindPosition
	AttributeKindNormal
	AttributeKindColor
	AttributeKindTexCoord
	AttributeKindGeneric
)

func (k AttributeKind) String() string {
	switch k {
	case AttributeKindPosition:
		return "position"
	case AttributeKindNormal:
		return "normal"
	case AttributeKindColor:
		return "color"
	case AttributeKindTexCoord:
		return "tex_coord"
	case AttributeKindGeneric:
		return "generic"
	default:
		return "invalid"
	}
}

// ElementType hints which mesh element an attribute's values are naturally
// indexed by, letting the attribute codec pick a traversal and a corner
// table (the per-corner variant for Corner-indexed attributes that carry
// seams) appropriate to the data.
type ElementType uint8

const (
	// ElementVertex is the default: one value per point, shared by every
	// corner incident to it.
	ElementVertex ElementType = iota
	// ElementCorner values may differ per corner of a shared vertex, used
	// for attributes with seams (e.g. texture coordinates across a UV cut).
	ElementCorner
	// ElementFace values are indexed by triangle rather than by vertex.
	ElementFace
)

// AttributeDescriptor records the shape of a PointAttribute's values: how
// many components each value has, what type they're stored as, and whether
// values are already known to be normalized (as is conventional for packed
// normals and colors).
type AttributeDescriptor struct {
	Kind          AttributeKind
	DataType      DataType
	NumComponents int
	Normalized    bool
	Element       ElementType
	UniqueID      uint32
}

// newUniqueID derives a stable 32-bit identifier from a freshly generated
// UUID, for callers that don't assign their own UniqueID.
func newUniqueID() uint32 {
	id := uuid.New()
	b := id[:]
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// PointAttribute stores one attribute's values plus the explicit
// point-to-value mapping, which may be the identity (one value per point)
// or many-to-one (values shared by several points, e.g. across a seam).
type PointAttribute struct {
	Descriptor AttributeDescriptor

	// values is a flat array of Descriptor.NumComponents-wide entries, one
	// per distinct attribute value.
	values []float64

	// mapping[p] gives the value index for point p. A nil mapping means the
	// identity mapping (mapping[p] == int(p)).
	mapping []int32

	// cornerMapping[c] gives the value index for corner c, used instead of
	// mapping when Descriptor.Element == ElementCorner: a seamed attribute
	// (a UV island, a hard-normal crease) can carry a different value on
	// each side of the seam even though every corner around it shares the
	// same point.
	cornerMapping []int32
}

// NewPointAttribute allocates storage for numValues entries of desc's
// shape. A zero UniqueID is filled in from a freshly generated UUID, as
// attributes a caller builds programmatically rarely need to pick their
// own wire identifier.
func NewPointAttribute(desc AttributeDescriptor, numValues int) *PointAttribute {
	if desc.UniqueID == 0 {
		desc.UniqueID = newUniqueID()
	}
	return &PointAttribute{
		Descriptor: desc,
		values:     make([]float64, numValues*desc.NumComponents),
	}
}

// NumValues returns the number of distinct attribute value entries.
func (a *PointAttribute) NumValues() int {
	if a.Descriptor.NumComponents == 0 {
		return 0
	}
	return len(a.values) / a.Descriptor.NumComponents
}

// EnsureNumValues grows the attribute's backing value storage, if needed, so
// it holds at least numValues entries, preserving existing ones. A
// corner-indexed attribute's final value count isn't known until its seam
// overlay has been decoded, which can exceed the vertex count NewPointAttribute
// was first sized from.
func (a *PointAttribute) EnsureNumValues(numValues int) {
	need := numValues * a.Descriptor.NumComponents
	if len(a.values) >= need {
		return
	}
	grown := make([]float64, need)
	copy(grown, a.values)
	a.values = grown
}

// SetValue overwrites the components of value entry valueIndex.
func (a *PointAttribute) SetValue(valueIndex int, components []float64) {
	n := a.Descriptor.NumComponents
	copy(a.values[valueIndex*n:valueIndex*n+n], components)
}

// Value returns the components of value entry valueIndex.
func (a *PointAttribute) Value(valueIndex int) []float64 {
	n := a.Descriptor.NumComponents
	return a.values[valueIndex*n : valueIndex*n+n]
}

// SetPointMapEntry records which value entry point p maps to. Calling this
// at least once switches the attribute out of identity-mapping mode.
func (a *PointAttribute) SetPointMapEntry(p PointIndex, valueIndex int32) {
	if a.mapping == nil {
		a.mapping = make([]int32, 0)
	}
	for len(a.mapping) <= int(p) {
		a.mapping = append(a.mapping, int32(len(a.mapping)))
	}
	a.mapping[p] = valueIndex
}

// MappedIndex returns the value entry a point maps to.
func (a *PointAttribute) MappedIndex(p PointIndex) int32 {
	if a.mapping == nil || int(p) >= len(a.mapping) {
		return int32(p)
	}
	return a.mapping[p]
}

// SetCornerMapEntry records which value entry corner c maps to. Only
// meaningful for attributes whose Descriptor.Element is ElementCorner;
// every other attribute is indexed by point via SetPointMapEntry/mapping.
func (a *PointAttribute) SetCornerMapEntry(c int32, valueIndex int32) {
	for int32(len(a.cornerMapping)) <= c {
		a.cornerMapping = append(a.cornerMapping, -1)
	}
	a.cornerMapping[c] = valueIndex
}

// MappedIndexForCorner returns the value entry corner c maps to, or -1 if
// none has been recorded.
func (a *PointAttribute) MappedIndexForCorner(c int32) int32 {
	if c < 0 || int(c) >= len(a.cornerMapping) {
		return -1
	}
	return a.cornerMapping[c]
}

// IsMappingIdentity reports whether every point maps to the value entry of
// the same index, which lets sequential encoders skip storing the mapping.
func (a *PointAttribute) IsMappingIdentity() bool {
	if a.mapping == nil {
		return true
	}
	for i, v := range a.mapping {
		if int32(i) != v {
			return false
		}
	}
	return true
}

// PointCloud is an unordered collection of points, each carrying zero or
// more attributes. Mesh embeds a PointCloud and adds face connectivity.
type PointCloud struct {
	numPoints  int32
	attributes []*PointAttribute
}

// NewPointCloud creates an empty point cloud with numPoints points and no
// attributes.
func NewPointCloud(numPoints int32) *PointCloud {
	return &PointCloud{numPoints: numPoints}
}

// NumPoints returns the point count.
func (p *PointCloud) NumPoints() int32 { return p.numPoints }

// AddAttribute appends attr and returns its id.
func (p *PointCloud) AddAttribute(attr *PointAttribute) AttributeID {
	p.attributes = append(p.attributes, attr)
	return AttributeID(len(p.attributes) - 1)
}

// Attribute returns the attribute registered under id, or nil if id is out
// of range.
func (p *PointCloud) Attribute(id AttributeID) *PointAttribute {
	if int(id) < 0 || int(id) >= len(p.attributes) {
		return nil
	}
	return p.attributes[id]
}

// NumAttributes returns how many attributes are registered.
func (p *PointCloud) NumAttributes() int { return len(p.attributes) }

// DeduplicateAttributeValues collapses, within each attribute independently,
// any value entries whose components agree once scaled by 1e9 and truncated
// to integers (see valueKey), remapping every point
// that referenced a dropped duplicate to the surviving entry. This is run
// once before encoding (point_cloud_builder.cc's analogous pass): meshes
// built from per-face vertex data routinely duplicate attribute values at
// shared vertices before this pass removes the redundancy.
func (p *PointCloud) DeduplicateAttributeValues() {
	for _, a := range p.attributes {
		a.deduplicateValues()
	}
}

// deduplicateValues rewrites a's value array to hold only distinct entries
// and updates its point mapping accordingly.
func (a *PointAttribute) deduplicateValues() {
	n := a.Descriptor.NumComponents
	if n == 0 {
		return
	}
	numValues := a.NumValues()
	type key = string
	seen := make(map[key]int32, numValues)
	remap := make([]int32, numValues)
	var kept []float64
	for i := 0; i < numValues; i++ {
		v := a.values[i*n : i*n+n]
		k := valueKey(v)
		if existing, ok := seen[k]; ok {
			remap[i] = existing
			continue
		}
		newIdx := int32(len(kept) / n)
		seen[k] = newIdx
		kept = append(kept, v...)
		remap[i] = newIdx
	}
	if len(kept) == len(a.values) {
		return // nothing was a duplicate.
	}
	a.values = kept
	if a.mapping == nil {
		a.mapping = make([]int32, numValues)
		for i := range a.mapping {
			a.mapping[i] = remap[i]
		}
		return
	}
	for p, v := range a.mapping {
		a.mapping[p] = remap[v]
	}
}

func valueKey(v []float64) string {
	b := make([]byte, 0, len(v)*8)
	for _, c := range v {
		bits := int64(c * 1e9) // stable key; exact bit pattern isn't needed for dedup grouping.
		for i := 0; i < 8; i++ {
			b = append(b, byte(bits>>(8*i)))
		}
	}
	return string(b)
}

// DeduplicatePointIds merges points that map to identical values across
// every attribute, shrinking the point domain and rewriting face indices
// via remap. Callers passing faces through Mesh should call this before
// face indices are finalized; PointCloud itself has no face list to
// rewrite, so it only returns the remap table.
func (p *PointCloud) DeduplicatePointIds() (remap []int32) {
	numPoints := int(p.numPoints)
	remap = make([]int32, numPoints)
	seen := make(map[string]int32, numPoints)
	var kept int32
	for pt := 0; pt < numPoints; pt++ {
		key := pointKey(p, PointIndex(pt))
		if existing, ok := seen[key]; ok {
			remap[pt] = existing
			continue
		}
		seen[key] = kept
		remap[pt] = kept
		kept++
	}
	if int(kept) == numPoints {
		return remap
	}
	for _, a := range p.attributes {
		newMapping := make([]int32, kept)
		for pt := 0; pt < numPoints; pt++ {
			newMapping[remap[pt]] = a.MappedIndex(PointIndex(pt))
		}
		a.mapping = newMapping
	}
	p.numPoints = kept
	return remap
}

// pointKey identifies a point by the concatenation of its attribute values
// rather than its value-array index, so two points that map to distinct but
// equal-keyed value entries (as happens before DeduplicateAttributeValues
// has run) still merge.
func pointKey(p *PointCloud, pt PointIndex) string {
	var b []byte
	for _, a := range p.attributes {
		v := a.Value(int(a.MappedIndex(pt)))
		b = slices.Grow(b, len(v)*8)
		b = append(b, valueKey(v)...)
	}
	return string(b)
}

// AttributeByKind returns the first attribute of the given kind, or nil.
func (p *PointCloud) AttributeByKind(kind AttributeKind) *PointAttribute {
	for _, a := range p.attributes {
		if a.Descriptor.Kind == kind {
			return a
		}
	}
	return nil
}

// Face is a triangle described by three point indices, ordered
// counter-clockwise by convention.
type Face [3]PointIndex

// Mesh is a PointCloud with triangle connectivity layered on top.
type Mesh struct {
	PointCloud
	faces []Face
}

// NewMesh creates an empty mesh with numPoints points and no faces.
func NewMesh(numPoints int32) *Mesh {
	return &Mesh{PointCloud: PointCloud{numPoints: numPoints}}
}

// NumFaces returns the face count.
func (m *Mesh) NumFaces() int32 { return int32(len(m.faces)) }

// Face returns the face at index f.
func (m *Mesh) Face(f FaceIndex) Face { return m.faces[f] }

// Faces returns the full face list backing the mesh. Callers must not
// retain the slice across a subsequent AddFace/SetFace call.
func (m *Mesh) Faces() []Face { return m.faces }

// SetFace overwrites, or appends past the end, face f.
func (m *Mesh) SetFace(f FaceIndex, face Face) {
	for FaceIndex(len(m.faces)) <= f {
		m.faces = append(m.faces, Face{})
	}
	m.faces[f] = face
}

// AddFace appends a new face and returns its index.
func (m *Mesh) AddFace(face Face) FaceIndex {
	m.faces = append(m.faces, face)
	return FaceIndex(len(m.faces) - 1)
}

// DeduplicatePointIds merges points with identical attribute values across
// the whole mesh and rewrites every face's point indices through the
// resulting remap, on top of PointCloud.DeduplicatePointIds's attribute
// remapping.
func (m *Mesh) DeduplicatePointIds() {
	remap := m.PointCloud.DeduplicatePointIds()
	for i, f := range m.faces {
		for c, p := range f {
			m.faces[i][c] = PointIndex(remap[p])
		}
	}
}

// Validate checks the universal structural invariants expected to hold for
// any mesh the codec hands off between pipeline stages: face point indices
// in range, and attribute mappings in range.
func (m *Mesh) Validate() error {
	for i, f := range m.faces {
		for c, p := range f {
			if p < 0 || int32(p) >= m.numPoints {
				return fmt.Errorf("geometry: face %d corner %d references out-of-range point %d", i, c, p)
			}
		}
	}
	for ai, a := range m.attributes {
		if a.mapping == nil {
			continue
		}
		for p, v := range a.mapping {
			if v < 0 || int(v) >= a.NumValues() {
				return fmt.Errorf("geometry: attribute %d point %d maps to out-of-range value %d", ai, p, v)
			}
		}
	}
	return nil
}
