package entropy

import (
	"math/rand"
	"testing"

	"github.com/mrjoshuak/go-draco/internal/bio"
)

func TestAdaptiveBitCoderRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	var bits []bool
	for i := 0; i < 500; i++ {
		bits = append(bits, r.Intn(10) < 2) // skewed distribution, exercises adaptation
	}

	enc := NewAdaptiveBitEncoder()
	for _, b := range bits {
		enc.EncodeBit(b)
	}
	out := bio.NewEncoderBuffer()
	enc.EndEncoding(out)

	in := bio.NewDecoderBuffer(out.Bytes())
	dec := NewAdaptiveBitDecoder()
	if err := dec.StartDecoding(in); err != nil {
		t.Fatalf("StartDecoding: %v", err)
	}
	for i, want := range bits {
		if got := dec.DecodeNextBit(); got != want {
			t.Fatalf("bit %d = %v, want %v", i, got, want)
		}
	}
}

func TestAdaptiveBitCoderLeastSignificantBits(t *testing.T) {
	enc := NewAdaptiveBitEncoder()
	values := []uint32{0, 1, 7, 123, 65535}
	for _, v := range values {
		enc.EncodeLeastSignificantBits32(17, v)
	}
	out := bio.NewEncoderBuffer()
	enc.EndEncoding(out)

	dec := NewAdaptiveBitDecoder()
	if err := dec.StartDecoding(bio.NewDecoderBuffer(out.Bytes())); err != nil {
		t.Fatalf("StartDecoding: %v", err)
	}
	for _, want := range values {
		if got := dec.DecodeLeastSignificantBits32(17); got != want&0x1ffff {
			t.Fatalf("DecodeLeastSignificantBits32 = %d, want %d", got, want&0x1ffff)
		}
	}
}

func TestFoldedBit32RoundTrip(t *testing.T) {
	values := []uint32{0, 1, 2, 1000, 1 << 20, 0xffffffff}
	enc := NewFoldedBit32Encoder()
	for _, v := range values {
		enc.EncodeLeastSignificantBits32(32, v)
	}
	enc.EncodeBit(true)
	enc.EncodeBit(false)

	out := bio.NewEncoderBuffer()
	enc.EndEncoding(out)

	dec := NewFoldedBit32Decoder()
	if err := dec.StartDecoding(bio.NewDecoderBuffer(out.Bytes())); err != nil {
		t.Fatalf("StartDecoding: %v", err)
	}
	for _, want := range values {
		if got := dec.DecodeLeastSignificantBits32(32); got != want {
			t.Fatalf("DecodeLeastSignificantBits32 = %#x, want %#x", got, want)
		}
	}
	if !dec.DecodeNextBit() {
		t.Fatal("expected true flag bit")
	}
	if dec.DecodeNextBit() {
		t.Fatal("expected false flag bit")
	}
}

func TestSymbolCoderRawScheme(t *testing.T) {
	// Small alphabet, skewed distribution: heuristic should favor the raw
	// scheme (dense per-value probabilities beat per-entry tag overhead).
	r := rand.New(rand.NewSource(2))
	symbols := make([]uint32, 2000)
	for i := range symbols {
		switch {
		case r.Intn(10) < 7:
			symbols[i] = 0
		case r.Intn(10) < 5:
			symbols[i] = 1
		default:
			symbols[i] = uint32(r.Intn(4) + 2)
		}
	}

	out := bio.NewEncoderBuffer()
	if err := EncodeSymbols(out, symbols, 1); err != nil {
		t.Fatalf("EncodeSymbols: %v", err)
	}

	got, err := DecodeSymbols(bio.NewDecoderBuffer(out.Bytes()), len(symbols), 1)
	if err != nil {
		t.Fatalf("DecodeSymbols: %v", err)
	}
	for i := range symbols {
		if got[i] != symbols[i] {
			t.Fatalf("symbol %d = %d, want %d", i, got[i], symbols[i])
		}
	}
}

func TestSymbolCoderTaggedScheme(t *testing.T) {
	// Wide-ranging magnitudes across 3-component entries should favor the
	// tagged scheme.
	r := rand.New(rand.NewSource(3))
	const numComponents = 3
	const numEntries = 500
	symbols := make([]uint32, numEntries*numComponents)
	for i := 0; i < numEntries; i++ {
		bitLen := r.Intn(16) + 1
		maxVal := uint32(1)<<uint(bitLen) - 1
		for c := 0; c < numComponents; c++ {
			symbols[i*numComponents+c] = uint32(r.Intn(int(maxVal) + 1))
		}
	}

	out := bio.NewEncoderBuffer()
	if err := EncodeSymbols(out, symbols, numComponents); err != nil {
		t.Fatalf("EncodeSymbols: %v", err)
	}

	got, err := DecodeSymbols(bio.NewDecoderBuffer(out.Bytes()), len(symbols), numComponents)
	if err != nil {
		t.Fatalf("DecodeSymbols: %v", err)
	}
	for i := range symbols {
		if got[i] != symbols[i] {
			t.Fatalf("symbol %d = %d, want %d", i, got[i], symbols[i])
		}
	}
}

func TestSymbolCoderEmpty(t *testing.T) {
	out := bio.NewEncoderBuffer()
	if err := EncodeSymbols(out, nil, 1); err != nil {
		t.Fatalf("EncodeSymbols(empty): %v", err)
	}
	got, err := DecodeSymbols(bio.NewDecoderBuffer(out.Bytes()), 0, 1)
	if err != nil || len(got) != 0 {
		t.Fatalf("DecodeSymbols(empty) = %v, %v", got, err)
	}
}
