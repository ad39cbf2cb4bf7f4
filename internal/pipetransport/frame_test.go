package pipetransport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"hello":"world"}`)
	require.NoError(t, writeFrame(&buf, payload))

	got, err := readFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadFrameRejectsOversized(t *testing.T) {
	var buf bytes.Buffer
	oversized := bytes.Repeat([]byte("x"), 70*1024)
	require.NoError(t, writeFrame(&buf, oversized))

	_, err := readFrame(&buf)
	assert.Error(t, err)
}

func TestReadFrameTruncatedStream(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, []byte("hello")))
	truncated := bytes.NewReader(buf.Bytes()[:5])

	_, err := readFrame(truncated)
	assert.Error(t, err)
}
