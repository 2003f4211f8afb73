package entropy

import (
	"fmt"

	"github.com/mrjoshuak/go-draco/internal/bio"
)

// computeRAnsPrecision picks the rANS probability-table precision (in bits)
// for an alphabet whose symbols need up to maxBitLength bits, clamped to a
// range that keeps the table small while still resolving rare symbols.
func computeRAnsPrecision(maxBitLength int) int {
	p := (3 * maxBitLength) / 2
	if p < 12 {
		p = 12
	}
	if p > 20 {
		p = 20
	}
	return p
}

// symbolTable holds the normalized frequency/cumulative-frequency
// representation shared by the symbol encoder and decoder, plus the
// precision they were built at.
type symbolTable struct {
	precision int
	probSize  uint32
	freq      []uint32
	cumFreq   []uint32 // base offset of each symbol's range within [0, probSize)
	lut       []uint32 // probSize entries, slot -> symbol, built for decoding
}

// buildSymbolTable normalizes raw frequency counts so they sum exactly to
// 1<<precision: exact proportional shares are floored, with any symbol of
// nonzero count kept at one slot or more so it stays decodable. The
// rounding error is then settled one slot at a time, cycling through the
// symbols in index order: a surplus is taken from symbols holding more than
// one slot, a shortfall is given to symbols holding at least one.
func buildSymbolTable(counts []uint64, maxBitLength int) *symbolTable {
	precision := computeRAnsPrecision(maxBitLength)
	probSize := uint32(1) << uint(precision)

	var total uint64
	for _, c := range counts {
		total += c
	}

	freq := make([]uint32, len(counts))
	if total > 0 {
		var assigned uint32
		for i, c := range counts {
			if c == 0 {
				continue
			}
			share := uint64(probSize) * c / total
			if share == 0 {
				share = 1
			}
			freq[i] = uint32(share)
			assigned += freq[i]
		}
		// Distribute/retract the rounding error so the table sums exactly to probSize.
		for assigned > probSize {
			for i := range freq {
				if assigned <= probSize {
					break
				}
				if freq[i] > 1 {
					freq[i]--
					assigned--
				}
			}
		}
		for assigned < probSize {
			for i := range freq {
				if assigned >= probSize {
					break
				}
				if freq[i] > 0 {
					freq[i]++
					assigned++
				}
			}
		}
	}

	cum := make([]uint32, len(freq))
	var base uint32
	for i, f := range freq {
		cum[i] = base
		base += f
	}

	lut := make([]uint32, probSize)
	for sym, f := range freq {
		for k := uint32(0); k < f; k++ {
			lut[cum[sym]+k] = uint32(sym)
		}
	}

	return &symbolTable{precision: precision, probSize: probSize, freq: freq, cumFreq: cum, lut: lut}
}

// encodeProbabilityTable writes num_symbols followed by each symbol's
// frequency, tagged-byte encoded: the low 2 bits of the first byte hold how
// many extra bytes follow, the remaining 6 bits (plus 8 per extra byte) hold
// the frequency value.
func encodeProbabilityTable(out *bio.EncoderBuffer, t *symbolTable) {
	out.EncodeUint32(uint32(len(t.freq)))
	for _, f := range t.freq {
		extraBytes := 0
		for f>>(6+8*uint(extraBytes)) != 0 {
			extraBytes++
		}
		if extraBytes > 3 {
			extraBytes = 3
		}
		first := byte((f&0x3f)<<2) | byte(extraBytes)
		out.EncodeUint8(first)
		rem := f >> 6
		for b := 0; b < extraBytes; b++ {
			out.EncodeUint8(byte(rem))
			rem >>= 8
		}
	}
}

func decodeProbabilityTable(in *bio.DecoderBuffer, maxBitLength int) (*symbolTable, error) {
	numSymbols, err := in.DecodeUint32()
	if err != nil {
		return nil, err
	}
	freq := make([]uint32, numSymbols)
	for i := range freq {
		b, err := in.DecodeUint8()
		if err != nil {
			return nil, err
		}
		extraBytes := int(b & 3)
		prob := uint32(b) >> 2
		for e := 0; e < extraBytes; e++ {
			eb, err := in.DecodeUint8()
			if err != nil {
				return nil, err
			}
			prob |= uint32(eb) << uint(6+8*e)
		}
		freq[i] = prob
	}
	precision := computeRAnsPrecision(maxBitLength)
	probSize := uint32(1) << uint(precision)
	cum := make([]uint32, len(freq))
	var base uint32
	for i, f := range freq {
		cum[i] = base
		base += f
	}
	if base > probSize {
		return nil, fmt.Errorf("entropy: probability table sums to %d, want <= %d", base, probSize)
	}
	lut := make([]uint32, probSize)
	for sym, f := range freq {
		for k := uint32(0); k < f; k++ {
			lut[cum[sym]+k] = uint32(sym)
		}
	}
	return &symbolTable{precision: precision, probSize: probSize, freq: freq, cumFreq: cum, lut: lut}, nil
}

// SymbolEncoder rANS-codes a stream of symbols drawn from an alphabet whose
// frequencies are known up front. Symbols are buffered and encoded in
// reverse when EndEncoding is called, mirroring the bit coders in this
// package: the rANS state machine fundamentally runs back-to-front.
type SymbolEncoder struct {
	table   *symbolTable
	symbols []uint32
}

// NewSymbolEncoder builds the probability table for counts (indexed by
// symbol value, counts[s] = occurrences of symbol s) and writes it to out.
// maxBitLength bounds the bit width of any symbol value and selects the
// rANS precision.
func NewSymbolEncoder(counts []uint64, maxBitLength int, out *bio.EncoderBuffer) *SymbolEncoder {
	t := buildSymbolTable(counts, maxBitLength)
	encodeProbabilityTable(out, t)
	return &SymbolEncoder{table: t}
}

// EncodeSymbol queues a symbol for encoding.
func (e *SymbolEncoder) EncodeSymbol(sym uint32) { e.symbols = append(e.symbols, sym) }

// EndEncoding rANS-codes every queued symbol and appends the byte-count
// prefixed stream to out.
func (e *SymbolEncoder) EndEncoding(out *bio.EncoderBuffer) {
	t := e.table
	var c ansCoder
	ansWriteInit(&c)
	var buf []byte
	for i := len(e.symbols) - 1; i >= 0; i-- {
		sym := e.symbols[i]
		f := t.freq[sym]
		bound := (ransL >> uint(t.precision) << 8) * uint64(f)
		for c.state >= bound {
			buf = append(buf, byte(c.state&0xff))
			c.state >>= 8
		}
		c.state = (c.state/uint64(f))*uint64(t.probSize) + (c.state % uint64(f)) + uint64(t.cumFreq[sym])
	}
	buf = ansWriteEnd(&c, buf)

	out.EncodeUint64(uint64(len(buf)))
	out.EncodeBytes(buf)
	e.symbols = nil
}

// SymbolDecoder decodes a stream produced by SymbolEncoder.
type SymbolDecoder struct {
	table *symbolTable
	coder ansCoder
	data  []byte
	pos   int
}

// NewSymbolDecoder reads the probability table written by NewSymbolEncoder.
func NewSymbolDecoder(in *bio.DecoderBuffer, maxBitLength int) (*SymbolDecoder, error) {
	t, err := decodeProbabilityTable(in, maxBitLength)
	if err != nil {
		return nil, err
	}
	return &SymbolDecoder{table: t}, nil
}

// NumSymbols returns the alphabet size of the decoded probability table.
func (d *SymbolDecoder) NumSymbols() int { return len(d.table.freq) }

// StartDecoding reads the byte-count prefixed rANS block from in.
func (d *SymbolDecoder) StartDecoding(in *bio.DecoderBuffer) error {
	size, err := in.DecodeUint64()
	if err != nil {
		return err
	}
	if int64(size) > in.RemainingSize() {
		return bio.ErrBufferUnderflow
	}
	data, err := in.DecodeBytes(int(size))
	if err != nil {
		return err
	}
	d.data = data
	pos, ok := ansReadInit(&d.coder, data)
	if !ok {
		return fmt.Errorf("entropy: symbol stream too short")
	}
	d.pos = pos
	return nil
}

// DecodeSymbol decodes the next symbol.
func (d *SymbolDecoder) DecodeSymbol() uint32 {
	t := d.table
	xR := d.coder.state & uint64(t.probSize-1)
	sym := t.lut[xR]
	f := uint64(t.freq[sym])
	d.coder.state = f*(d.coder.state>>uint(t.precision)) + xR - uint64(t.cumFreq[sym])
	for d.coder.state < ransL {
		var b byte
		if d.pos > 0 {
			d.pos--
			b = d.data[d.pos]
		}
		d.coder.state = (d.coder.state << 8) | uint64(b)
	}
	return sym
}
