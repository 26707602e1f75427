package flat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arclight-labs/coach-cli/internal/core/domain"
)

// Binary layout (all integers little-endian):
//
//	magic        [4]byte  "CKBI"
//	format       uint16
//	version len  uint16   followed by the embedder version string
//	dimensions   uint32
//	count        uint32
//	per entry:
//	  id len     uint16   followed by the chunk id string
//	  vector     dimensions * float32
const (
	indexMagic    = "CKBI"
	formatVersion = 1
)

// Serialize implements driven.VectorIndex.
func (i *Index) Serialize() ([]byte, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return nil, fmt.Errorf("serializing index: index closed")
	}

	var buf bytes.Buffer
	buf.WriteString(indexMagic)
	writeUint16(&buf, formatVersion)
	if err := writeString16(&buf, i.version); err != nil {
		return nil, fmt.Errorf("serializing index: %w", err)
	}
	writeUint32(&buf, uint32(i.dimensions))
	writeUint32(&buf, uint32(len(i.ids)))

	for n, id := range i.ids {
		if err := writeString16(&buf, id); err != nil {
			return nil, fmt.Errorf("serializing index: %w", err)
		}
		for _, x := range i.vectors[n] {
			writeUint32(&buf, math.Float32bits(x))
		}
	}
	return buf.Bytes(), nil
}

// restore rebuilds an index from a Serialize blob.
func restore(blob []byte) (*Index, error) {
	r := bytes.NewReader(blob)

	magic := make([]byte, 4)
	if _, err := r.Read(magic); err != nil || string(magic) != indexMagic {
		return nil, fmt.Errorf("restoring index: %w: bad magic", domain.ErrInvalidInput)
	}
	format, err := readUint16(r)
	if err != nil {
		return nil, fmt.Errorf("restoring index: %w", err)
	}
	if format != formatVersion {
		return nil, fmt.Errorf("restoring index: %w: unsupported format %d",
			domain.ErrInvalidInput, format)
	}

	version, err := readString16(r)
	if err != nil {
		return nil, fmt.Errorf("restoring index: %w", err)
	}
	dimensions, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("restoring index: %w", err)
	}
	count, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("restoring index: %w", err)
	}

	idx, err := newIndex(version, int(dimensions))
	if err != nil {
		return nil, err
	}

	for n := uint32(0); n < count; n++ {
		id, err := readString16(r)
		if err != nil {
			return nil, fmt.Errorf("restoring index entry %d: %w", n, err)
		}
		vec := make([]float32, dimensions)
		for d := range vec {
			bits, err := readUint32(r)
			if err != nil {
				return nil, fmt.Errorf("restoring index entry %d: %w", n, err)
			}
			vec[d] = math.Float32frombits(bits)
		}
		// Vectors were normalized before serialization; insert directly
		// to avoid accumulating float error from a second pass.
		idx.byID[id] = len(idx.ids)
		idx.ids = append(idx.ids, id)
		idx.vectors = append(idx.vectors, vec)
	}

	return idx, nil
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeString16(buf *bytes.Buffer, s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("%w: string too long for encoding: %d bytes",
			domain.ErrInvalidInput, len(s))
	}
	writeUint16(buf, uint16(len(s)))
	buf.WriteString(s)
	return nil
}

func readUint16(r *bytes.Reader) (uint16, error) {
	var b [2]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, fmt.Errorf("%w: truncated blob", domain.ErrInvalidInput)
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if n, err := r.Read(b[:]); err != nil || n != 4 {
		return 0, fmt.Errorf("%w: truncated blob", domain.ErrInvalidInput)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readString16(r *bytes.Reader) (string, error) {
	n, err := readUint16(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if n > 0 {
		read, err := r.Read(b)
		if err != nil || read != int(n) {
			return "", fmt.Errorf("%w: truncated blob", domain.ErrInvalidInput)
		}
	}
	return string(b), nil
}
