package wpilog

import (
	"encoding/binary"
	"unicode/utf8"
)

// Reader is a cursor over a byte buffer. Reads past the end return
// ErrIncomplete and leave the cursor where it was.
type Reader struct {
	b []byte
	i int
}

func NewReader(b []byte) *Reader {
	return &Reader{
		b: b,
		i: 0,
	}
}

func (r *Reader) Remaining() int {
	return len(r.b) - r.i
}

func (r *Reader) ReadByte() (byte, error) {
	if r.Remaining() < 1 {
		return 0, ErrIncomplete
	}
	v := r.b[r.i]
	r.i += 1
	return v, nil
}

func (r *Reader) ReadBytes(size int) ([]byte, error) {
	if r.Remaining() < size {
		return nil, ErrIncomplete
	}
	b := r.b[r.i : r.i+size]
	r.i += size
	return b, nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	if r.Remaining() < 2 {
		return 0, ErrIncomplete
	}
	v := binary.LittleEndian.Uint16(r.b[r.i:])
	r.i += 2
	return v, nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	if r.Remaining() < 4 {
		return 0, ErrIncomplete
	}
	v := binary.LittleEndian.Uint32(r.b[r.i:])
	r.i += 4
	return v, nil
}

// ReadDynUint reads size little-endian bytes zero-extended to 64 bits.
// size must be 1..8.
func (r *Reader) ReadDynUint(size int) (uint64, error) {
	b, err := r.ReadBytes(size)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := size - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// ReadString reads size bytes and requires them to be valid UTF-8.
func (r *Reader) ReadString(size int) (string, error) {
	b, err := r.ReadBytes(size)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidString
	}
	return string(b), nil
}

// ReadLenString reads a u32 length prefix followed by that many UTF-8 bytes.
func (r *Reader) ReadLenString() (string, error) {
	size, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	return r.ReadString(int(size))
}
