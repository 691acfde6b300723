package comm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrame(t *testing.T) {
	testCases := []struct {
		name   string
		frame  Frame
		valid  bool
		expect []byte
	}{
		{"forward", NewFrame(1, 2), true, []byte{0xff, 1, 2, 3}},
		{"backward full speed", NewFrame(3, 100), true, []byte{0xff, 3, 100, 103}},
		{"negative magnitude", NewFrame(4, 0x80), true, []byte{0xff, 4, 0x80, 0x84}},
		{"bad checksum", Frame{Opcode: 1, Magnitude: 2, Checksum: 4}, false, []byte{0xff, 1, 2, 4}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.valid, tc.frame.Valid())
			require.Equal(t, tc.expect, tc.frame.Bytes())
			var buf bytes.Buffer
			n, err := tc.frame.WriteTo(&buf)
			require.NoError(t, err)
			require.Equal(t, int64(FrameLen), n)
			require.Equal(t, tc.expect, buf.Bytes())
		})
	}
}

func TestFrameSpeed(t *testing.T) {
	require.Equal(t, int8(-1), NewFrame(1, 0xff).Speed())
	require.Equal(t, int8(100), NewFrame(1, 100).Speed())
}

func TestDecodeFrame(t *testing.T) {
	f, err := DecodeFrame([]byte{0xff, 2, 50, 2 ^ 50})
	require.NoError(t, err)
	require.Equal(t, NewFrame(2, 50), f)

	_, err = DecodeFrame([]byte{0xff, 2})
	require.Equal(t, ErrShortFrame, err)

	_, err = DecodeFrame([]byte{0xfe, 2, 50, 2 ^ 50})
	require.IsType(t, &MarkerError{}, err)

	f, err = DecodeFrame([]byte{0xff, 2, 50, 0})
	require.IsType(t, &ChecksumError{}, err)
	require.Equal(t, byte(50), f.Magnitude)
	require.Contains(t, err.Error(), "checksum mismatch")
}
