package entropy

import (
	"fmt"
	"math/bits"

	"github.com/mrjoshuak/go-draco/internal/bio"
)

const (
	maxTagSymbolBitLength  = 32
	maxRawEncodingBitLength = 18
)

// mostSignificantBit returns the index (0-based) of the highest set bit, or
// 0 for v == 0, matching the semantics EncodeSymbols relies on.
func mostSignificantBit(v uint32) int {
	if v == 0 {
		return 0
	}
	return bits.Len32(v) - 1
}

// computeBitLengths groups symbols into num_components-wide entries and
// records, per entry, one more than the highest set bit across the group's
// components — the number of bits needed to hold the entry's largest value.
func computeBitLengths(symbols []uint32, numComponents int) (lengths []int, maxValue uint32) {
	for i := 0; i < len(symbols); i += numComponents {
		m := symbols[i]
		for j := 1; j < numComponents; j++ {
			if symbols[i+j] > m {
				m = symbols[i+j]
			}
		}
		if m > maxValue {
			maxValue = m
		}
		lengths = append(lengths, mostSignificantBit(m)+1)
	}
	return lengths, maxValue
}

// EncodeSymbols entropy-codes symbols (grouped into numComponents-wide
// entries, e.g. x/y/z of a quantized residual) into out, picking whichever
// of the tagged or raw schemes the data favors.
//
// The tagged scheme rANS-codes a small alphabet of per-entry bit-length
// "tags" and then bit-packs the raw values at their entry's tag width; it
// wins when the value range is large but concentrated in a few bit widths.
// The raw scheme builds one rANS table directly over the symbol values
// themselves; it wins when the alphabet is small enough that per-value
// probabilities beat the tag overhead. Once a single value needs more than
// maxRawEncodingBitLength bits the tagged scheme is mandatory, since the raw
// scheme's table covers only values up to that width.
func EncodeSymbols(out *bio.EncoderBuffer, symbols []uint32, numComponents int) error {
	if numComponents <= 0 {
		numComponents = 1
	}
	if len(symbols) == 0 {
		return nil
	}
	if len(symbols)%numComponents != 0 {
		return fmt.Errorf("entropy: %d symbols not divisible by %d components", len(symbols), numComponents)
	}

	bitLengths, maxValue := computeBitLengths(symbols, numComponents)

	var totalBitLength uint64
	for _, l := range bitLengths {
		totalBitLength += uint64(l)
	}
	numComponentValues := int64(len(symbols) / numComponents)

	averageBitLength := int64(ceilDiv(totalBitLength, uint64(numComponentValues)))
	averageBitsPerTag := int64(ceilDivInt(mostSignificantBit(uint32(averageBitLength)), numComponents))
	if averageBitsPerTag <= 0 {
		averageBitsPerTag = 1
	}

	taggedTotalBits := numComponentValues*(int64(numComponents)*averageBitLength+averageBitsPerTag) + 32*8
	rawTotalBits := int64(len(symbols))*averageBitLength + int64(maxValue)*8
	maxValueBitLength := mostSignificantBit(maxValue) + 1

	if taggedTotalBits < rawTotalBits || maxValueBitLength > maxRawEncodingBitLength {
		out.EncodeUint8(0)
		return encodeTaggedSymbols(out, symbols, numComponents, bitLengths)
	}
	out.EncodeUint8(1)
	return encodeRawSymbols(out, symbols, maxValue)
}

func ceilDiv(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

func ceilDivInt(a, b int) int {
	if b == 0 {
		return 0
	}
	if a%b == 0 {
		return a / b
	}
	return a/b + 1
}

func encodeTaggedSymbols(out *bio.EncoderBuffer, symbols []uint32, numComponents int, bitLengths []int) error {
	freq := make([]uint64, maxTagSymbolBitLength+1)
	for _, l := range bitLengths {
		freq[l]++
	}

	tagEnc := NewSymbolEncoder(freq, 6, out)

	valueBuf := bio.NewEncoderBuffer()
	valueBuf.StartBitEncoding(maxTagSymbolBitLength*len(symbols), false)

	for i := 0; i < len(symbols); i += numComponents {
		bitLength := bitLengths[i/numComponents]
		tagEnc.EncodeSymbol(uint32(bitLength))
		for j := 0; j < numComponents; j++ {
			valueBuf.EncodeLeastSignificantBits32(bitLength, symbols[i+j])
		}
	}
	tagEnc.EndEncoding(out)
	valueBuf.EndBitEncoding()
	out.EncodeBytes(valueBuf.Bytes())
	return nil
}

func encodeRawSymbols(out *bio.EncoderBuffer, symbols []uint32, maxValue uint32) error {
	maxValueBitLength := mostSignificantBit(maxValue) + 1
	if maxValueBitLength > maxRawEncodingBitLength {
		return fmt.Errorf("entropy: symbol value needs %d bits, exceeds raw limit %d", maxValueBitLength, maxRawEncodingBitLength)
	}
	out.EncodeUint8(uint8(maxValueBitLength))

	freq := make([]uint64, maxValue+1)
	for _, s := range symbols {
		freq[s]++
	}
	enc := NewSymbolEncoder(freq, maxValueBitLength, out)
	for _, s := range symbols {
		enc.EncodeSymbol(s)
	}
	enc.EndEncoding(out)
	return nil
}

// DecodeSymbols reverses EncodeSymbols: numValues is the total symbol count
// (already a multiple of numComponents), as carried by the surrounding
// stream format.
func DecodeSymbols(in *bio.DecoderBuffer, numValues, numComponents int) ([]uint32, error) {
	if numComponents <= 0 {
		numComponents = 1
	}
	if numValues == 0 {
		return nil, nil
	}
	scheme, err := in.DecodeUint8()
	if err != nil {
		return nil, err
	}
	if scheme == 0 {
		return decodeTaggedSymbols(in, numValues, numComponents)
	}
	return decodeRawSymbols(in, numValues)
}

func decodeTaggedSymbols(in *bio.DecoderBuffer, numValues, numComponents int) ([]uint32, error) {
	tagDec, err := NewSymbolDecoder(in, 6)
	if err != nil {
		return nil, err
	}
	if err := tagDec.StartDecoding(in); err != nil {
		return nil, err
	}

	numEntries := numValues / numComponents
	bitLengths := make([]int, numEntries)
	for i := range bitLengths {
		bitLengths[i] = int(tagDec.DecodeSymbol())
	}

	if _, err := in.StartBitDecoding(false); err != nil {
		return nil, err
	}
	symbols := make([]uint32, numValues)
	for i := 0; i < numEntries; i++ {
		bitLength := bitLengths[i]
		for j := 0; j < numComponents; j++ {
			v, err := in.DecodeLeastSignificantBits32(bitLength)
			if err != nil {
				return nil, err
			}
			symbols[i*numComponents+j] = v
		}
	}
	in.EndBitDecoding()
	return symbols, nil
}

func decodeRawSymbols(in *bio.DecoderBuffer, numValues int) ([]uint32, error) {
	maxValueBitLength, err := in.DecodeUint8()
	if err != nil {
		return nil, err
	}
	dec, err := NewSymbolDecoder(in, int(maxValueBitLength))
	if err != nil {
		return nil, err
	}
	if err := dec.StartDecoding(in); err != nil {
		return nil, err
	}
	symbols := make([]uint32, numValues)
	for i := range symbols {
		symbols[i] = dec.DecodeSymbol()
	}
	return symbols, nil
}
