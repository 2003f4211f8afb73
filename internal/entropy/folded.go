package entropy

import "github.com/mrjoshuak/go-draco/internal/bio"

// bitEncoder is the minimal interface a FoldedBit32Encoder needs from its
// underlying bit coder.
type bitEncoder interface {
	EncodeBit(bit bool)
	EndEncoding(out *bio.EncoderBuffer)
}

// bitDecoder is the minimal interface a FoldedBit32Decoder needs from its
// underlying bit coder.
type bitDecoder interface {
	DecodeNextBit() bool
}

// FoldedBit32Encoder treats each bit position of a value up to 32 bits wide
// as an independent coding context, which pays off when leading bits are
// disproportionately zero (small magnitudes are common in residual
// streams). It wraps 32 AdaptiveBitEncoders, one per position, plus one more
// for plain single-bit flags.
type FoldedBit32Encoder struct {
	perBit [32]*AdaptiveBitEncoder
	flags  *AdaptiveBitEncoder
}

// NewFoldedBit32Encoder returns a ready-to-use encoder.
func NewFoldedBit32Encoder() *FoldedBit32Encoder {
	f := &FoldedBit32Encoder{flags: NewAdaptiveBitEncoder()}
	for i := range f.perBit {
		f.perBit[i] = NewAdaptiveBitEncoder()
	}
	return f
}

// EncodeBit encodes a single flag bit outside of the folded contexts.
func (f *FoldedBit32Encoder) EncodeBit(bit bool) { f.flags.EncodeBit(bit) }

// EncodeLeastSignificantBits32 encodes the low nbits of value, each bit
// position routed to its own context.
func (f *FoldedBit32Encoder) EncodeLeastSignificantBits32(nbits int, value uint32) {
	selector := uint32(1) << uint(nbits-1)
	for i := 0; i < nbits; i++ {
		f.perBit[i].EncodeBit(value&selector != 0)
		selector >>= 1
	}
}

// EndEncoding flushes every context, in the same fixed order the decoder
// expects, into out.
func (f *FoldedBit32Encoder) EndEncoding(out *bio.EncoderBuffer) {
	for i := range f.perBit {
		f.perBit[i].EndEncoding(out)
	}
	f.flags.EndEncoding(out)
}

// FoldedBit32Decoder mirrors FoldedBit32Encoder.
type FoldedBit32Decoder struct {
	perBit [32]*AdaptiveBitDecoder
	flags  *AdaptiveBitDecoder
}

// NewFoldedBit32Decoder returns a ready-to-use decoder.
func NewFoldedBit32Decoder() *FoldedBit32Decoder {
	f := &FoldedBit32Decoder{flags: NewAdaptiveBitDecoder()}
	for i := range f.perBit {
		f.perBit[i] = NewAdaptiveBitDecoder()
	}
	return f
}

// StartDecoding primes every context from src, in the same fixed order
// EndEncoding wrote them.
func (f *FoldedBit32Decoder) StartDecoding(src *bio.DecoderBuffer) error {
	for i := range f.perBit {
		if err := f.perBit[i].StartDecoding(src); err != nil {
			return err
		}
	}
	return f.flags.StartDecoding(src)
}

// DecodeNextBit decodes a single flag bit.
func (f *FoldedBit32Decoder) DecodeNextBit() bool { return f.flags.DecodeNextBit() }

// DecodeLeastSignificantBits32 decodes nbits, each pulled from its own
// per-position context.
func (f *FoldedBit32Decoder) DecodeLeastSignificantBits32(nbits int) uint32 {
	var result uint32
	for i := 0; i < nbits; i++ {
		result <<= 1
		if f.perBit[i].DecodeNextBit() {
			result |= 1
		}
	}
	return result
}
