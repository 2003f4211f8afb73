// Package entropy implements the low-level entropy coders shared by the
// connectivity and attribute pipelines: a byte-renormalized rANS binary
// coder (rABS), an adaptive bit coder built on top of it, a per-bit-position
// folded coder for small integers, and the symbol coder used for
// prediction-residual streams.
package entropy

const ransL = uint64(1) << 23

// ansCoder is the shared byte-renormalized rANS state machine used by the
// adaptive bit coder and the symbol coder. Probabilities are expressed as an
// 8-bit fixed point fraction p0/256 of the probability that a bit is 0.
type ansCoder struct {
	state uint64
}

// rabsWrite encodes one bit under probability p0 (P(bit==0) scaled to
// [1,255]/256), appending renormalization bytes to out in the order they
// are produced. No reversal pass follows: the decoder consumes them
// back-to-front, starting just before the final state that ansWriteEnd
// appends.
func rabsWrite(c *ansCoder, bit bool, p0 uint8, out *[]byte) {
	p := uint64(p0)
	// The renormalization bound for symbol s under 8-bit precision.
	pS := p
	if bit {
		pS = 256 - p
	}
	bound := ((ransL >> 8) << 8) * pS
	for c.state >= bound {
		*out = append(*out, byte(c.state&0xff))
		c.state >>= 8
	}
	if !bit {
		c.state = (c.state/p)*256 + (c.state % p)
	} else {
		c.state = (c.state/pS)*256 + (c.state%pS) + p
	}
}

// rabsRead decodes one bit under probability p0, pulling renormalization
// bytes forward from data at *pos as needed.
func rabsRead(c *ansCoder, p0 uint8, data []byte, pos *int) bool {
	p := uint64(p0)
	xR := c.state & 0xff
	bit := xR >= p
	if !bit {
		c.state = p*(c.state>>8) + xR
	} else {
		c.state = (256-p)*(c.state>>8) + xR - p
	}
	for c.state < ransL {
		var b byte
		if *pos > 0 {
			*pos--
			b = data[*pos]
		}
		c.state = (c.state << 8) | uint64(b)
	}
	return bit
}

// ansWriteInit resets the encoder to its initial state.
func ansWriteInit(c *ansCoder) { c.state = ransL }

// ansWriteEnd appends the final encoder state (4 bytes, little endian) after
// the renormalization bytes already collected in out. Renormalization bytes
// were produced while encoding bits in reverse order, so the decoder reads
// the trailing state bytes first and then walks the renorm bytes backward
// (see ansReadInit/rabsRead) to recover bits in their original order.
func ansWriteEnd(c *ansCoder, out []byte) []byte {
	final := c.state
	return append(out, byte(final), byte(final>>8), byte(final>>16), byte(final>>24))
}

// ansReadInit primes the decoder from the tail of data (the last 4 bytes
// hold the initial state, written there by ansWriteEnd).
func ansReadInit(c *ansCoder, data []byte) (pos int, ok bool) {
	if len(data) < 4 {
		return 0, false
	}
	n := len(data)
	c.state = uint64(data[n-4]) | uint64(data[n-3])<<8 | uint64(data[n-2])<<16 | uint64(data[n-1])<<24
	return n - 4, true
}
