package pipetransport

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/codecomfy/nextgallery/internal/envelope"
)

// frameHeaderLen is the fixed-width length prefix used to frame each
// message on the duplex channel: a single big-endian uint32 byte count.
const frameHeaderLen = 4

// writeFrame writes one length-prefixed message. payload must already
// satisfy the 64 KiB cap; callers enforce that before calling.
func writeFrame(w io.Writer, payload []byte) error {
	var header [frameHeaderLen]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return errors.Wrap(err, "pipetransport: write frame header")
	}
	if _, err := w.Write(payload); err != nil {
		return errors.Wrap(err, "pipetransport: write frame payload")
	}
	return nil
}

// readFrame reads one length-prefixed message, rejecting anything over the
// wire envelope's 64 KiB cap before allocating a buffer for it.
func readFrame(r io.Reader) ([]byte, error) {
	var header [frameHeaderLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > envelope.MaxMessageBytes {
		return nil, errors.Errorf("pipetransport: frame of %d bytes exceeds %d byte cap", size, envelope.MaxMessageBytes)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "pipetransport: read frame payload")
	}
	return buf, nil
}
