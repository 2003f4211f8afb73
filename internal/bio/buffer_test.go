package bio

import "testing"

func TestEncodeDecodeFixedWidth(t *testing.T) {
	e := NewEncoderBuffer()
	e.EncodeUint8(0xAB)
	e.EncodeInt16(-1234)
	e.EncodeUint32(0xdeadbeef)
	e.EncodeFloat32(3.25)
	e.EncodeUint64(0x0102030405060708)

	d := NewDecoderBuffer(e.Bytes())
	if v, err := d.DecodeUint8(); err != nil || v != 0xAB {
		t.Fatalf("DecodeUint8 = %v, %v", v, err)
	}
	if v, err := d.DecodeInt16(); err != nil || v != -1234 {
		t.Fatalf("DecodeInt16 = %v, %v", v, err)
	}
	if v, err := d.DecodeUint32(); err != nil || v != 0xdeadbeef {
		t.Fatalf("DecodeUint32 = %v, %v", v, err)
	}
	if v, err := d.DecodeFloat32(); err != nil || v != 3.25 {
		t.Fatalf("DecodeFloat32 = %v, %v", v, err)
	}
	if v, err := d.DecodeUint64(); err != nil || v != 0x0102030405060708 {
		t.Fatalf("DecodeUint64 = %v, %v", v, err)
	}
	if d.RemainingSize() != 0 {
		t.Fatalf("expected buffer fully consumed, remaining %d", d.RemainingSize())
	}
}

func TestDecodeUnderflow(t *testing.T) {
	d := NewDecoderBuffer([]byte{0x01})
	if _, err := d.DecodeUint32(); err != ErrBufferUnderflow {
		t.Fatalf("expected ErrBufferUnderflow, got %v", err)
	}
}

func TestBitPackingRoundTrip(t *testing.T) {
	e := NewEncoderBuffer()
	e.EncodeUint8(0x7F) // leading byte-mode marker, to check interleaving
	e.StartBitEncoding(64, true)
	values := []struct {
		nbits int
		value uint32
	}{
		{1, 1},
		{3, 5},
		{7, 100},
		{32, 0xffffffff},
		{5, 0},
	}
	for _, v := range values {
		e.EncodeLeastSignificantBits32(v.nbits, v.value)
	}
	e.EndBitEncoding()
	e.EncodeUint8(0x42) // trailing byte-mode marker

	d := NewDecoderBuffer(e.Bytes())
	if v, err := d.DecodeUint8(); err != nil || v != 0x7F {
		t.Fatalf("leading marker = %v, %v", v, err)
	}
	if _, err := d.StartBitDecoding(true); err != nil {
		t.Fatalf("StartBitDecoding: %v", err)
	}
	for _, v := range values {
		got, err := d.DecodeLeastSignificantBits32(v.nbits)
		if err != nil {
			t.Fatalf("DecodeLeastSignificantBits32(%d): %v", v.nbits, err)
		}
		want := v.value
		if v.nbits < 32 {
			want &= (1 << uint(v.nbits)) - 1
		}
		if got != want {
			t.Fatalf("DecodeLeastSignificantBits32(%d) = %#x, want %#x", v.nbits, got, want)
		}
	}
	d.EndBitDecoding()
	if v, err := d.DecodeUint8(); err != nil || v != 0x42 {
		t.Fatalf("trailing marker = %v, %v", v, err)
	}
}

func TestVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20, 1 << 40}
	e := NewEncoderBuffer()
	for _, c := range cases {
		e.EncodeVarintUint64(c)
	}
	d := NewDecoderBuffer(e.Bytes())
	for _, want := range cases {
		got, err := d.DecodeVarintUint64()
		if err != nil || got != want {
			t.Fatalf("DecodeVarintUint64 = %v, %v, want %v", got, err, want)
		}
	}
}

func TestSignedVarintZigzag(t *testing.T) {
	cases := []int64{0, -1, 1, -2, 2, 1 << 30, -(1 << 30)}
	e := NewEncoderBuffer()
	for _, c := range cases {
		e.EncodeVarintInt64(c)
	}
	d := NewDecoderBuffer(e.Bytes())
	for _, want := range cases {
		got, err := d.DecodeVarintInt64()
		if err != nil || got != want {
			t.Fatalf("DecodeVarintInt64 = %v, %v, want %v", got, err, want)
		}
	}
}
