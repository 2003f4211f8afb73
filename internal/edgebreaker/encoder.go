package edgebreaker

import (
	"github.com/mrjoshuak/go-draco/internal/corner"
)

// Connectivity is the result of traversing a mesh's corner table: the
// symbol stream, one entry per face, plus the side-channel needed to
// reconstruct topology-splitting (S) events during decoding.
type Connectivity struct {
	Symbols []Symbol

	// SplitSourceSymbol[i] is the index, into the order vertices were first
	// visited, of the vertex that closes the i-th SymbolS event. Vertices
	// are numbered in visiting order starting at 0 (the first face's two
	// pre-marked vertices come first, then one per SymbolC).
	SplitSourceSymbol []int

	// NumVertices is the count of distinct vertices visited (== number of
	// SymbolC occurrences, plus 2 per connected component bootstrapped).
	NumVertices int
}

// EncodeConnectivity traverses every face of tbl exactly once, in the
// order described by edgebreaker_traverser.h's TraverseFromCorner: a
// corner-stack-driven depth-first walk that classifies each newly reached
// face against its already-visited neighbors. Faces unreachable from any
// single starting corner (separate connected components) are each
// traversed in turn until every face has been visited.
func EncodeConnectivity(tbl *corner.Table) *Connectivity {
	e := &encoderState{
		tbl:           tbl,
		visitedVertex: make([]bool, tbl.NumVertices()),
		visitedFace:   make([]bool, tbl.NumFaces()),
		vertexOrder:   make(map[corner.Vertex]int),
	}

	for f := 0; f < tbl.NumFaces(); f++ {
		if e.visitedFace[f] {
			continue
		}
		e.traverseFromCorner(tbl.FirstCorner(f))
	}

	return &Connectivity{
		Symbols:           e.symbols,
		SplitSourceSymbol: e.splitSource,
		NumVertices:       len(e.vertexOrder),
	}
}

type encoderState struct {
	tbl           *corner.Table
	visitedVertex []bool
	visitedFace   []bool

	symbols     []Symbol
	splitSource []int

	// vertexOrder records, for each vertex the traversal has marked
	// visited, the 0-based order in which it was first seen.
	vertexOrder map[corner.Vertex]int
}

func (e *encoderState) markVertexVisited(v corner.Vertex) {
	if e.visitedVertex[v] {
		return
	}
	e.visitedVertex[v] = true
	e.vertexOrder[v] = len(e.vertexOrder)
}

func (e *encoderState) isFaceVisited(c corner.Corner) bool {
	if c == corner.InvalidCorner {
		return true
	}
	return e.visitedFace[e.tbl.Face(c)]
}

// traverseFromCorner mirrors EdgeBreakerTraverser::TraverseFromCorner.
func (e *encoderState) traverseFromCorner(start corner.Corner) {
	tbl := e.tbl
	stack := []corner.Corner{start}

	// Pre-mark the two vertices of the start corner's face that are not the
	// corner's own tip; the tip itself is handled as an ordinary (almost
	// always SymbolC) step inside the main loop below.
	e.markVertexVisited(tbl.Vertex(tbl.Next(start)))
	e.markVertexVisited(tbl.Vertex(tbl.Previous(start)))

	for len(stack) > 0 {
		cornerID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e.isFaceVisited(cornerID) {
			continue
		}

		for {
			face := tbl.Face(cornerID)
			e.visitedFace[face] = true
			vertID := tbl.Vertex(cornerID)

			if !e.visitedVertex[vertID] && !tbl.IsOnBoundary(vertID) {
				e.markVertexVisited(vertID)
				e.symbols = append(e.symbols, SymbolC)
				cornerID = tbl.Opposite(tbl.Previous(cornerID))
				continue
			}

			// vertID is either already visited or sits on a boundary; either
			// way it is fully accounted for once this face is classified.
			e.markVertexVisited(vertID)

			rightCornerID := tbl.Opposite(tbl.Previous(cornerID))
			leftCornerID := tbl.Opposite(tbl.Next(cornerID))
			rightVisited := e.isFaceVisited(rightCornerID)
			leftVisited := e.isFaceVisited(leftCornerID)

			switch {
			case rightVisited && leftVisited:
				e.symbols = append(e.symbols, SymbolE)
				goto doneBranch
			case rightVisited && !leftVisited:
				e.symbols = append(e.symbols, SymbolR)
				cornerID = leftCornerID
			case !rightVisited && leftVisited:
				e.symbols = append(e.symbols, SymbolL)
				cornerID = rightCornerID
			default:
				e.splitSource = append(e.splitSource, e.vertexOrder[vertID])
				e.symbols = append(e.symbols, SymbolS)
				stack = append(stack, leftCornerID)
				cornerID = rightCornerID
				continue
			}
			continue
		doneBranch:
			break
		}
	}
}
