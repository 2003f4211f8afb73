package edgebreaker

import (
	"fmt"

	"github.com/mrjoshuak/go-draco/internal/bio"
	"github.com/mrjoshuak/go-draco/internal/corner"
	"github.com/mrjoshuak/go-draco/internal/entropy"
	"github.com/mrjoshuak/go-draco/internal/geometry"
)

// Encode writes tbl's connectivity as a header (face/vertex/symbol counts)
// followed by the rANS-coded symbol stream and its topology-split
// side-channel.
func Encode(out *bio.EncoderBuffer, tbl *corner.Table) {
	c := EncodeConnectivity(tbl)

	out.EncodeUint32(uint32(tbl.NumFaces()))
	out.EncodeUint32(uint32(c.NumVertices))
	out.EncodeUint32(uint32(len(c.Symbols)))

	freq := make([]uint64, 5)
	for _, s := range c.Symbols {
		freq[s]++
	}
	enc := entropy.NewSymbolEncoder(freq, 3, out)
	for _, s := range c.Symbols {
		enc.EncodeSymbol(uint32(s))
	}
	enc.EndEncoding(out)

	out.EncodeUint32(uint32(len(c.SplitSourceSymbol)))
	for _, ord := range c.SplitSourceSymbol {
		out.EncodeVarintUint64(uint64(ord))
	}
}

// Decode reverses Encode, returning the reconstructed corner table and its
// backing face list.
func Decode(in *bio.DecoderBuffer) (*corner.Table, []geometry.Face, error) {
	numFaces, err := in.DecodeUint32()
	if err != nil {
		return nil, nil, err
	}
	numVertices, err := in.DecodeUint32()
	if err != nil {
		return nil, nil, err
	}
	numSymbols, err := in.DecodeUint32()
	if err != nil {
		return nil, nil, err
	}

	dec, err := entropy.NewSymbolDecoder(in, 3)
	if err != nil {
		return nil, nil, err
	}
	if err := dec.StartDecoding(in); err != nil {
		return nil, nil, err
	}
	symbols := make([]Symbol, numSymbols)
	for i := range symbols {
		symbols[i] = Symbol(dec.DecodeSymbol())
	}

	numSplits, err := in.DecodeUint32()
	if err != nil {
		return nil, nil, err
	}
	splits := make([]int, numSplits)
	for i := range splits {
		v, err := in.DecodeVarintUint64()
		if err != nil {
			return nil, nil, err
		}
		splits[i] = int(v)
	}

	c := &Connectivity{Symbols: symbols, SplitSourceSymbol: splits, NumVertices: int(numVertices)}
	tbl, faces, err := DecodeConnectivity(c, int(numFaces), int(numVertices))
	if err != nil {
		return nil, nil, fmt.Errorf("edgebreaker: %w", err)
	}
	return tbl, faces, nil
}
