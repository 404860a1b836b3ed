package dxl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLittleEndian(t *testing.T) {
	require.Equal(t, uint16(0x1234), U16([]byte{0x34, 0x12}))
	require.Equal(t, uint32(0x12345678), U32([]byte{0x78, 0x56, 0x34, 0x12}))
	require.Equal(t, []byte{0x01, 0x34, 0x12}, AppendU16([]byte{0x01}, 0x1234))
	require.Equal(t, []byte{0x78, 0x56, 0x34, 0x12}, AppendU32(nil, 0x12345678))

	b := make([]byte, 4)
	PutU32(b, 0xdeadbeef)
	require.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, b)
	PutU16(b, 0x0102)
	require.Equal(t, []byte{0x02, 0x01, 0xad, 0xde}, b)
}

func TestDecodeEncodeLE(t *testing.T) {
	for _, width := range []int{1, 2, 4} {
		b := make([]byte, width)
		v := uint32(0x89abcdef) >> uint(32-8*width)
		require.NoError(t, EncodeLE(b, v))
		d, err := DecodeLE(b)
		require.NoError(t, err)
		require.Equal(t, v, d)
	}
	_, err := DecodeLE(make([]byte, 3))
	require.Error(t, err)
	require.Error(t, EncodeLE(nil, 1))
}

func TestAbsDiff(t *testing.T) {
	require.Equal(t, uint32(5), AbsDiff(10, 5))
	require.Equal(t, uint32(5), AbsDiff(5, 10))
	require.Equal(t, uint32(0), AbsDiff(7, 7))
	require.Equal(t, uint32(0xffffffff), AbsDiff(0, 0xffffffff))
}
