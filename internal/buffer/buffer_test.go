package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	b := New(nil)
	b.WriteByte(0x7f)
	b.WriteUint16(0x0102)
	b.WriteUint32(0x01020304)
	b.WriteUint64(0x0102030405060708)
	b.WriteString("hi")

	require.Equal(t, 1+2+4+8+2, b.Len())

	v8, err := b.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0x7f), v8)

	v16, err := b.ReadUint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x0102), v16)

	v32, err := b.ReadUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(0x01020304), v32)

	v64, err := b.ReadUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(0x0102030405060708), v64)

	s, err := b.Next(2)
	require.NoError(t, err)
	require.Equal(t, "hi", string(s))

	require.Equal(t, 0, b.Len())
}

func TestReadShortBufferErrors(t *testing.T) {
	b := New([]byte{0x01})
	_, err := b.ReadUint16()
	require.ErrorIs(t, err, ErrShortBuffer)

	b2 := New(nil)
	_, err = b2.ReadByte()
	require.ErrorIs(t, err, ErrShortBuffer)

	b3 := New([]byte{0x01, 0x02})
	_, err = b3.Next(3)
	require.ErrorIs(t, err, ErrShortBuffer)
}

func TestSkipAndPeek(t *testing.T) {
	b := New([]byte{1, 2, 3, 4})
	peeked, err := b.PeekByte()
	require.NoError(t, err)
	require.Equal(t, byte(1), peeked)

	require.NoError(t, b.Skip(2))
	require.Equal(t, 2, b.Len())

	rest, err := b.Next(2)
	require.NoError(t, err)
	require.Equal(t, []byte{3, 4}, rest)

	require.ErrorIs(t, b.Skip(1), ErrShortBuffer)
}

func TestResetReusesBuffer(t *testing.T) {
	b := New(nil)
	b.WriteString("abc")
	require.Equal(t, 3, b.Size())
	b.Reset()
	require.Equal(t, 0, b.Len())
	require.Equal(t, 0, b.Size())
	b.WriteString("xy")
	require.Equal(t, "xy", string(b.Bytes()))
}

func TestUnreadReflectsCursor(t *testing.T) {
	b := New([]byte{1, 2, 3})
	_, _ = b.ReadByte()
	require.Equal(t, []byte{2, 3}, b.Unread())
}
