package entropy

import (
	"errors"

	"github.com/mrjoshuak/go-draco/internal/bio"
)

// clampProbability maps a floating point probability in [0,1] to the 8-bit
// fixed point representation used by the rANS bit coders, avoiding the
// degenerate 0 and 256 endpoints.
func clampProbability(p float64) uint8 {
	pInt := uint32(p*256 + 0.5)
	if pInt == 256 {
		pInt--
	}
	if pInt == 0 {
		pInt++
	}
	return uint8(pInt)
}

// updateProbability applies the exponential decay used by the adaptive
// coder: weight 127/128 on the running estimate, 1/128 on the new bit.
func updateProbability(oldP float64, bit bool) float64 {
	const w0 = 127.0 / 128.0
	const w1 = 1.0 / 128.0
	newBit := 0.0
	if !bit {
		newBit = 1.0
	}
	return oldP*w0 + newBit*w1
}

// AdaptiveBitEncoder collects a sequence of bits and rANS-codes them with a
// probability that adapts as bits arrive. Bits must be collected via
// EncodeBit before EndEncoding computes the stream, because encoding must
// run in reverse order while probabilities are derived from the forward
// pass.
type AdaptiveBitEncoder struct {
	bits []bool
}

// NewAdaptiveBitEncoder returns a ready-to-use encoder.
func NewAdaptiveBitEncoder() *AdaptiveBitEncoder { return &AdaptiveBitEncoder{} }

// EncodeBit appends one bit to the pending sequence.
func (e *AdaptiveBitEncoder) EncodeBit(bit bool) { e.bits = append(e.bits, bit) }

// EncodeLeastSignificantBits32 appends the low nbits of value, most
// significant bit first, matching the reference coder's bit order.
func (e *AdaptiveBitEncoder) EncodeLeastSignificantBits32(nbits int, value uint32) {
	for selector := uint32(1) << uint(nbits-1); selector != 0; selector >>= 1 {
		e.EncodeBit(value&selector != 0)
	}
}

// EndEncoding rANS-codes the collected bits and appends the result to out,
// size-prefixed so the decoder knows how many bytes to consume.
func (e *AdaptiveBitEncoder) EndEncoding(out *bio.EncoderBuffer) {
	p0f := 0.5
	probs := make([]uint8, len(e.bits))
	for i, b := range e.bits {
		probs[i] = clampProbability(p0f)
		p0f = updateProbability(p0f, b)
	}

	var c ansCoder
	ansWriteInit(&c)
	var buf []byte
	for i := len(e.bits) - 1; i >= 0; i-- {
		rabsWrite(&c, e.bits[i], probs[i], &buf)
	}
	buf = ansWriteEnd(&c, buf)

	out.EncodeUint32(uint32(len(buf)))
	out.EncodeBytes(buf)
	e.bits = nil
}

// AdaptiveBitDecoder decodes a stream produced by AdaptiveBitEncoder.
type AdaptiveBitDecoder struct {
	coder ansCoder
	data  []byte
	pos   int
	p0f   float64
}

// NewAdaptiveBitDecoder returns a ready-to-use decoder.
func NewAdaptiveBitDecoder() *AdaptiveBitDecoder { return &AdaptiveBitDecoder{p0f: 0.5} }

// StartDecoding reads the size-prefixed rANS block from src and primes the
// decoder state.
func (d *AdaptiveBitDecoder) StartDecoding(src *bio.DecoderBuffer) error {
	size, err := src.DecodeUint32()
	if err != nil {
		return err
	}
	if int64(size) > src.RemainingSize() {
		return bio.ErrBufferUnderflow
	}
	data, err := src.DecodeBytes(int(size))
	if err != nil {
		return err
	}
	d.data = data
	pos, ok := ansReadInit(&d.coder, data)
	if !ok {
		return errors.New("entropy: adaptive bit stream too short")
	}
	d.pos = pos
	d.p0f = 0.5
	return nil
}

// DecodeNextBit decodes the next bit and updates the running probability.
func (d *AdaptiveBitDecoder) DecodeNextBit() bool {
	p0 := clampProbability(d.p0f)
	bit := rabsRead(&d.coder, p0, d.data, &d.pos)
	d.p0f = updateProbability(d.p0f, bit)
	return bit
}

// DecodeLeastSignificantBits32 decodes nbits most-significant-bit first.
func (d *AdaptiveBitDecoder) DecodeLeastSignificantBits32(nbits int) uint32 {
	var result uint32
	for ; nbits > 0; nbits-- {
		result = (result << 1)
		if d.DecodeNextBit() {
			result |= 1
		}
	}
	return result
}
