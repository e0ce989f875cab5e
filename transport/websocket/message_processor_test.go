package websocket

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/service"
)

func newBufrw(buf *bytes.Buffer) *bufio.ReadWriter {
	return bufio.NewReadWriter(bufio.NewReader(buf), bufio.NewWriter(buf))
}

func TestFrameRoundTrip(t *testing.T) {
	t.Run("short payload", func(t *testing.T) {
		var buf bytes.Buffer
		bufrw := newBufrw(&buf)

		payload := []byte(`{"action":"ping"}`)
		require.NoError(t, writeFrame(bufrw, frame{
			isFin:   true,
			opCode:  1,
			length:  uint64(len(payload)),
			payload: payload,
		}))

		header, err := readHeader(bufrw)
		require.NoError(t, err)

		got, err := readPayload(bufrw, header)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("extended 16-bit length", func(t *testing.T) {
		var buf bytes.Buffer
		bufrw := newBufrw(&buf)

		payload := []byte(strings.Repeat("a", 300))
		require.NoError(t, writeFrame(bufrw, frame{
			isFin:   true,
			opCode:  1,
			length:  uint64(len(payload)),
			payload: payload,
		}))

		header, err := readHeader(bufrw)
		require.NoError(t, err)

		got, err := readPayload(bufrw, header)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})
}

func TestReadPayload_MaskedClientFrame(t *testing.T) {
	// Client frames arrive masked; the reader must unmask them.
	payload := []byte(`{"action":"connect"}`)
	mask := []byte{0x1f, 0x2e, 0x3d, 0x4c}

	masked := make([]byte, len(payload))
	for i, b := range payload {
		masked[i] = b ^ mask[i%4]
	}

	var buf bytes.Buffer
	buf.Write([]byte{0x81, 0x80 | byte(len(payload))})
	buf.Write(mask)
	buf.Write(masked)

	bufrw := newBufrw(&buf)

	header, err := readHeader(bufrw)
	require.NoError(t, err)

	got, err := readPayload(bufrw, header)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadPayload_CloseFrame(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x88, 0x00}) // close frame, empty payload

	bufrw := newBufrw(&buf)

	header, err := readHeader(bufrw)
	require.NoError(t, err)

	_, err = readPayload(bufrw, header)
	require.ErrorIs(t, err, io.EOF)
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		raw     string
		want    service.Difficulty
		wantErr bool
	}{
		{raw: "", want: service.DifficultyMid},
		{raw: "low", want: service.DifficultyLow},
		{raw: "mid", want: service.DifficultyMid},
		{raw: "high", want: service.DifficultyHigh},
		{raw: "impossible", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseDifficulty(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.raw)
			continue
		}
		require.NoError(t, err, "input %q", tt.raw)
		assert.Equal(t, tt.want, got)
	}
}
