package corner

// AttributeSeams groups a table's corners into attribute-vertices: maximal
// sets of corners reachable from one another by swinging around a shared
// vertex without crossing a seam. A geometry vertex with no seam through it
// is one attribute-vertex, same as a plain Table.Vertex; a vertex split by
// a UV island boundary or a hard-normal crease becomes several, each free
// to carry its own attribute value. This is the corner-indexed analogue of
// Table's own non-manifold vertex splitting, driven by attribute seams
// instead of mesh topology.
type AttributeSeams struct {
	cornerToVertex []int32
	numVertices    int
}

// BuildAttributeSeams derives seam boundaries from valueForCorner, the
// attribute value index each corner currently carries. Used encoder-side,
// where the attribute's true per-corner values are known; the resulting
// per-corner seam flags (BuildSeamBeforeBits) are what the wire format actually
// carries, since a decoder can't call valueForCorner before it has decoded
// any values.
func BuildAttributeSeams(tbl *Table, valueForCorner func(c Corner) int32) *AttributeSeams {
	numCorners := tbl.NumFaces() * 3
	seamBefore := make([]bool, numCorners)
	for c := 0; c < numCorners; c++ {
		cc := Corner(c)
		left := tbl.SwingLeft(cc)
		if left == InvalidCorner || valueForCorner(left) != valueForCorner(cc) {
			seamBefore[c] = true
		}
	}
	return assembleSeams(tbl, seamBefore)
}

// BuildAttributeSeamsFromBits reconstructs the identical grouping
// decoder-side from the per-corner seam bits EncodeAttribute transmitted,
// with no value lookups at all.
func BuildAttributeSeamsFromBits(tbl *Table, seamBefore []bool) *AttributeSeams {
	return assembleSeams(tbl, seamBefore)
}

// BuildSeamBeforeBits returns the per-corner seam flags: entry c is true
// when corner c carries a different attribute value than SwingLeft(c) (or
// sits on a boundary with no SwingLeft neighbor at all).
// EncodeAttribute transmits exactly this array so DecodeAttribute can call
// BuildAttributeSeamsFromBits without ever seeing a value.
func BuildSeamBeforeBits(tbl *Table, valueForCorner func(c Corner) int32) []bool {
	numCorners := tbl.NumFaces() * 3
	seamBefore := make([]bool, numCorners)
	for c := 0; c < numCorners; c++ {
		cc := Corner(c)
		left := tbl.SwingLeft(cc)
		if left == InvalidCorner || valueForCorner(left) != valueForCorner(cc) {
			seamBefore[c] = true
		}
	}
	return seamBefore
}

func assembleSeams(tbl *Table, seamBefore []bool) *AttributeSeams {
	numCorners := len(seamBefore)
	s := &AttributeSeams{cornerToVertex: make([]int32, numCorners)}
	visited := make([]bool, numCorners)
	var nextID int32
	for start := 0; start < numCorners; start++ {
		cc := Corner(start)
		if visited[cc] {
			continue
		}
		id := nextID
		nextID++
		queue := []Corner{cc}
		visited[cc] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			s.cornerToVertex[cur] = id
			if left := tbl.SwingLeft(cur); left != InvalidCorner && !visited[left] && !seamBefore[cur] {
				visited[left] = true
				queue = append(queue, left)
			}
			if right := tbl.SwingRight(cur); right != InvalidCorner && !visited[right] && !seamBefore[right] {
				visited[right] = true
				queue = append(queue, right)
			}
		}
	}
	s.numVertices = int(nextID)
	return s
}

// Vertex returns the attribute-vertex id corner c belongs to.
func (s *AttributeSeams) Vertex(c Corner) int32 { return s.cornerToVertex[c] }

// NumVertices returns how many distinct attribute-vertices the seams split
// the table's corners into.
func (s *AttributeSeams) NumVertices() int { return s.numVertices }
