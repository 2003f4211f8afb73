package bio

// encodeUvarint writes v as a little-endian base-128 varint: 7 bits of
// payload per byte, continuation flagged by the top bit.
func encodeUvarint(e *EncoderBuffer, v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		e.EncodeUint8(b)
		if v == 0 {
			return
		}
	}
}

// decodeUvarint reads a varint written by encodeUvarint.
func decodeUvarint(d *DecoderBuffer) (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := d.DecodeUint8()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, ErrBufferUnderflow
		}
	}
}

// EncodeVarintUint64 writes v as an unsigned varint to the byte stream.
func (e *EncoderBuffer) EncodeVarintUint64(v uint64) { encodeUvarint(e, v) }

// EncodeVarintInt64 zigzag-maps v and writes it as an unsigned varint, so
// small-magnitude negative values cost the same as small positive ones.
func (e *EncoderBuffer) EncodeVarintInt64(v int64) {
	encodeUvarint(e, ConvertSignedIntToSymbol(v))
}

// DecodeVarintUint64 reads an unsigned varint.
func (d *DecoderBuffer) DecodeVarintUint64() (uint64, error) {
	return decodeUvarint(d)
}

// DecodeVarintInt64 reads a zigzag-mapped signed varint.
func (d *DecoderBuffer) DecodeVarintInt64() (int64, error) {
	sym, err := decodeUvarint(d)
	if err != nil {
		return 0, err
	}
	return ConvertSymbolToSignedInt(sym), nil
}

// ConvertSignedIntToSymbol zigzag-maps a signed value onto the unsigned
// range: 0,-1,1,-2,2,... -> 0,1,2,3,4,...
func ConvertSignedIntToSymbol(val int64) uint64 {
	if val < 0 {
		return (uint64(-val-1) << 1) | 1
	}
	return uint64(val) << 1
}

// ConvertSymbolToSignedInt reverses ConvertSignedIntToSymbol.
func ConvertSymbolToSignedInt(sym uint64) int64 {
	if sym&1 != 0 {
		return -int64(sym>>1) - 1
	}
	return int64(sym >> 1)
}
