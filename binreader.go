package animgraph

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

func float32FromBits(bits uint32) float32 { return math.Float32frombits(bits) }
func float64FromBits(bits uint64) float64 { return math.Float64frombits(bits) }

// blobVersion is the only graph-blob layout version this loader accepts.
// Spec §6 says the exact bytes match the editor's writer; since that writer
// is out of scope, this module defines its own compact little-endian layout
// (see loader.go's doc comment) and versions it the same way.
const blobVersion = 1

// binReader is a small little-endian cursor over a graph blob, grounded on
// Carmen-Shannon/oxy-go's gltf_parser.go binary-chunk reading (its GLB
// parsing walks a byte slice with encoding/binary.Read/LittleEndian.Uint32
// calls in the same style used here).
type binReader struct {
	r   *bytes.Reader
	err error
}

func newBinReader(data []byte) *binReader {
	return &binReader{r: bytes.NewReader(data)}
}

func (b *binReader) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *binReader) u8() uint8 {
	if b.err != nil {
		return 0
	}
	v, err := b.r.ReadByte()
	if err != nil {
		b.fail(errTruncatedBlob)
		return 0
	}
	return v
}

func (b *binReader) u32() uint32 {
	if b.err != nil {
		return 0
	}
	var v uint32
	if err := binary.Read(b.r, binary.LittleEndian, &v); err != nil {
		b.fail(errTruncatedBlob)
		return 0
	}
	return v
}

func (b *binReader) i32() int32 {
	return int32(b.u32())
}

func (b *binReader) f32() float32 {
	return float32FromBits(b.u32())
}

func (b *binReader) f64() float64 {
	if b.err != nil {
		return 0
	}
	var v uint64
	if err := binary.Read(b.r, binary.LittleEndian, &v); err != nil {
		b.fail(errTruncatedBlob)
		return 0
	}
	return float64FromBits(v)
}

func (b *binReader) str() string {
	if b.err != nil {
		return ""
	}
	n := b.u32()
	if n == 0 {
		return ""
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(b.r, buf); err != nil {
		b.fail(fmt.Errorf("reading string of length %d: %w", n, errTruncatedBlob))
		return ""
	}
	return string(buf)
}

func (b *binReader) bytesOf(n int) []byte {
	if b.err != nil {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(b.r, buf); err != nil {
		b.fail(errTruncatedBlob)
		return nil
	}
	return buf
}
