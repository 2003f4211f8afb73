package edgebreaker

import (
	"fmt"

	"github.com/mrjoshuak/go-draco/internal/corner"
	"github.com/mrjoshuak/go-draco/internal/geometry"
)

// gate is one open boundary edge of the partially reconstructed mesh,
// oriented so the next face built from it is (a, b, x) for some third
// vertex x yet to be determined.
type gate struct {
	a, b corner.Vertex
}

// decoderState rebuilds a face list from a Connectivity symbol stream. It
// tracks the DFS stack of open gates exactly as EncodeConnectivity does,
// plus a per-vertex list of other currently-dangling edges (openEdges),
// which is enough to resolve R/L/E merges without consulting the original
// mesh. SymbolS is the one case a local edge lookup cannot resolve — two
// faces reconnecting after simultaneously diverging from a single vertex
// — so its third vertex is instead read from the side-channel
// SplitSourceSymbol recorded at encode time.
type decoderState struct {
	faces       []geometry.Face
	openEdges   map[corner.Vertex][]corner.Vertex
	vertexByOrd []corner.Vertex
	nextVertex  corner.Vertex
}

func (d *decoderState) newVertex() corner.Vertex {
	v := d.nextVertex
	d.nextVertex++
	d.vertexByOrd = append(d.vertexByOrd, v)
	return v
}

func (d *decoderState) openEdge(u, v corner.Vertex) {
	d.openEdges[u] = append(d.openEdges[u], v)
	d.openEdges[v] = append(d.openEdges[v], u)
}

// closeEdgeFrom pops and returns the most recently opened partner of v,
// removing the matching entry from the partner's own list too.
func (d *decoderState) closeEdgeFrom(v corner.Vertex) (corner.Vertex, error) {
	list := d.openEdges[v]
	if len(list) == 0 {
		return 0, fmt.Errorf("edgebreaker: no open edge at vertex %d", v)
	}
	partner := list[len(list)-1]
	d.openEdges[v] = list[:len(list)-1]
	d.removePartner(partner, v)
	return partner, nil
}

// removePartner deletes one occurrence of target from v's open-edge list.
func (d *decoderState) removePartner(v, target corner.Vertex) {
	list := d.openEdges[v]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i] == target {
			d.openEdges[v] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// DecodeConnectivity rebuilds a face list and corner table from a symbol
// stream produced by EncodeConnectivity. numFaces is the total triangle
// count and numVertices the total vertex count, both carried by the
// surrounding wire format.
func DecodeConnectivity(c *Connectivity, numFaces, numVertices int) (*corner.Table, []geometry.Face, error) {
	d := &decoderState{
		openEdges: make(map[corner.Vertex][]corner.Vertex),
	}
	d.faces = make([]geometry.Face, 0, numFaces)

	var stack []gate
	splitIdx := 0

	bootstrap := func() {
		a := d.newVertex()
		b := d.newVertex()
		stack = append(stack, gate{a, b})
	}

	for len(d.faces) < numFaces {
		if len(stack) == 0 {
			bootstrap()
		}
		if len(d.faces) >= len(c.Symbols) {
			return nil, nil, fmt.Errorf("edgebreaker: ran out of symbols before building %d faces (built %d)", numFaces, len(d.faces))
		}
		sym := c.Symbols[len(d.faces)]

		g := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		a, b := g.a, g.b

		var x corner.Vertex
		switch sym {
		case SymbolC:
			x = d.newVertex()
			d.openEdge(b, x)
			d.openEdge(x, a)
			stack = append(stack, gate{x, a}, gate{b, x})

		case SymbolS:
			if splitIdx >= len(c.SplitSourceSymbol) {
				return nil, nil, fmt.Errorf("edgebreaker: missing split source for S symbol at face %d", len(d.faces))
			}
			ord := c.SplitSourceSymbol[splitIdx]
			splitIdx++
			if ord < 0 || ord >= len(d.vertexByOrd) {
				return nil, nil, fmt.Errorf("edgebreaker: split source order %d out of range", ord)
			}
			x = d.vertexByOrd[ord]
			d.openEdge(b, x)
			d.openEdge(x, a)
			stack = append(stack, gate{x, a}, gate{b, x})

		case SymbolR:
			var err error
			x, err = d.closeEdgeFrom(b)
			if err != nil {
				return nil, nil, err
			}
			d.openEdge(x, a)
			stack = append(stack, gate{x, a})

		case SymbolL:
			var err error
			x, err = d.closeEdgeFrom(a)
			if err != nil {
				return nil, nil, err
			}
			d.openEdge(b, x)
			stack = append(stack, gate{b, x})

		case SymbolE:
			var err error
			x, err = d.closeEdgeFrom(a)
			if err != nil {
				return nil, nil, err
			}
			d.removePartner(b, x)
			d.removePartner(x, b)

		default:
			return nil, nil, fmt.Errorf("edgebreaker: unknown symbol %v", sym)
		}

		d.faces = append(d.faces, geometry.Face{
			geometry.PointIndex(a), geometry.PointIndex(b), geometry.PointIndex(x),
		})
	}

	if len(d.vertexByOrd) != numVertices {
		return nil, nil, fmt.Errorf("edgebreaker: decoded %d vertices, want %d", len(d.vertexByOrd), numVertices)
	}

	tbl := corner.NewTable(d.faces, numVertices)
	return tbl, d.faces, nil
}
