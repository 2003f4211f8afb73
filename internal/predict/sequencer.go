package predict

import (
	"github.com/mrjoshuak/go-draco/internal/corner"
	"github.com/mrjoshuak/go-draco/internal/geometry"
)

// Sequence is the per-value processing order a prediction scheme walks:
// parallel arrays of the corner used to look up a value's neighbors and the
// point that value belongs to.
type Sequence struct {
	Corners []corner.Corner
	Points  []geometry.PointIndex
}

// MeshTraversalSequencer derives a value processing order from the face
// list an Edgebreaker decode produced, matching mesh_traversal_sequencer.h:
// faces are visited in the order they were decoded, and within each face a
// point is sequenced the first time any of its corners is seen.
func MeshTraversalSequencer(tbl *corner.Table, faces []geometry.Face) *Sequence {
	seq := &Sequence{}
	seen := make(map[geometry.PointIndex]bool, len(faces))
	for f := range faces {
		base := tbl.FirstCorner(f)
		for local := 0; local < 3; local++ {
			p := faces[f][local]
			if seen[p] {
				continue
			}
			seen[p] = true
			seq.Corners = append(seq.Corners, base+corner.Corner(local))
			seq.Points = append(seq.Points, p)
		}
	}
	return seq
}
