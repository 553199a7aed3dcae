package transport

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
)

func testFrame(body string) []byte {
	return peer.AppendFrame(nil, 0, peer.DeliveryReliable, peer.MessageOperation, false, []byte(body))
}

func TestFrameReaderSplitsStream(t *testing.T) {
	first := testFrame("\x01\x00")
	ping := peer.EncodePingReply(1000, 42)
	second := testFrame("\x02\x01\x00\x07\x02hi")

	var stream bytes.Buffer
	stream.Write(first)
	stream.Write(ping)
	stream.Write(second)

	fr := NewFrameReader(&stream, peer.PingReplySize)

	got, err := fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, first, got)

	got, err = fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, ping, got)

	got, err = fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, second, got)

	_, err = fr.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrameReaderServerPings(t *testing.T) {
	fr := NewFrameReader(bytes.NewReader(peer.EncodePingRequest(77)), peer.PingRequestSize)

	got, err := fr.ReadFrame()
	require.NoError(t, err)
	ts, err := peer.DecodePingRequest(got)
	require.NoError(t, err)
	assert.Equal(t, int32(77), ts)
}

func TestFrameReaderErrors(t *testing.T) {
	big := testFrame(string(make([]byte, 200)))

	tests := []struct {
		name    string
		data    []byte
		maxSize uint32
		want    error
	}{
		{"truncated header", []byte{peer.MagicFrame, 0, 0}, 0, ErrFrameTruncated},
		{"truncated body", testFrame("abcdef")[:12], 0, ErrFrameTruncated},
		{"truncated ping", []byte{peer.MagicPing, 1, 2}, 0, ErrFrameTruncated},
		{"length below header", []byte{peer.MagicFrame, 0, 0, 0, 3, 0, 0}, 0, ErrBadFrameLength},
		{"too large", big, 64, ErrFrameTooLarge},
		{"unexpected byte", []byte{0x42, 0, 0}, 0, ErrUnexpectedByte},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := NewFrameReader(bytes.NewReader(tt.data), peer.PingReplySize)
			if tt.maxSize > 0 {
				fr.SetMaxFrameSize(tt.maxSize)
			}
			_, err := fr.ReadFrame()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFrameReaderReusesBuffer(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(testFrame("\x01\x00"))
	stream.Write(testFrame("\x03\x00"))

	fr := NewFrameReader(&stream, peer.PingReplySize)
	a, err := fr.ReadFrame()
	require.NoError(t, err)
	kept := bytes.Clone(a)

	b, err := fr.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, byte(3), b[peer.FrameHeaderSize+2])
	// The first slice now shows the second frame.
	assert.NotEqual(t, kept, a)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestFrameWriter(t *testing.T) {
	var out bytes.Buffer
	fw := NewFrameWriter(&out)

	assert.ErrorIs(t, fw.WriteFrame(nil), ErrFrameEmpty)

	frame := testFrame("\x01\x00")
	require.NoError(t, fw.WriteFrame(frame))
	assert.Equal(t, frame, out.Bytes())

	err := NewFrameWriter(failingWriter{}).WriteFrame(frame)
	assert.ErrorContains(t, err, "broken pipe")
}
