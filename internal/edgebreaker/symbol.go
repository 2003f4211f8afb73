// Package edgebreaker implements the Edgebreaker connectivity codec: a
// traversal over a corner table that visits every face exactly once,
// classifying each visit against one of five symbols describing which of
// its neighboring faces have already been visited. The resulting symbol
// stream, plus a small side-channel for topology-changing (S) events,
// fully determines the mesh's triangle connectivity.
package edgebreaker

// Symbol is one of the five Edgebreaker face classifications.
type Symbol uint8

const (
	// SymbolC: the face's tip vertex is new. Traversal continues along the
	// single remaining open edge.
	SymbolC Symbol = iota
	// SymbolS: the tip vertex is already known, but neither neighboring
	// face has been visited yet. Traversal splits into two independent
	// branches.
	SymbolS
	// SymbolR: the right neighboring face was already visited; traversal
	// continues to the left.
	SymbolR
	// SymbolL: the left neighboring face was already visited; traversal
	// continues to the right.
	SymbolL
	// SymbolE: both neighboring faces were already visited. This branch of
	// the traversal is complete.
	SymbolE
)

func (s Symbol) String() string {
	switch s {
	case SymbolC:
		return "C"
	case SymbolS:
		return "S"
	case SymbolR:
		return "R"
	case SymbolL:
		return "L"
	case SymbolE:
		return "E"
	default:
		return "?"
	}
}
