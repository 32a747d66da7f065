package wpilog

import (
	"bytes"
	"io"

	"github.com/DataDog/zstd"
	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

// Compressed log captures show up in the field: match tooling wraps whole
// .wpilog files in a framed compressor. Decompress sniffs the frame magic
// and inflates; anything unrecognized passes through untouched for the
// framer to judge.

var (
	lz4FrameMagic  = []byte{0x04, 0x22, 0x4d, 0x18}
	zstdFrameMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	snappyStreamID = []byte{0xff, 0x06, 0x00, 0x00, 's', 'N', 'a', 'P', 'p', 'Y'}
)

func Decompress(b []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(b, lz4FrameMagic):
		return io.ReadAll(lz4.NewReader(bytes.NewReader(b)))

	case bytes.HasPrefix(b, zstdFrameMagic):
		return zstd.Decompress(nil, b)

	case bytes.HasPrefix(b, snappyStreamID):
		return io.ReadAll(snappy.NewReader(bytes.NewReader(b)))
	}
	return b, nil
}
