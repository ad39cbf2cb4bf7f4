package pipetransport

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/codecomfy/nextgallery/internal/envelope"
)

// pongPayload is the ping/pong diagnostic payload: process id and uptime,
// handled entirely in-component rather than via the activation handler.
type pongPayload struct {
	PID int `json:"pid"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func pongEnvelope(workspaceKey string, startedAt time.Time) (*envelope.MessageEnvelope, error) {
	payload, err := json.Marshal(pongPayload{
		PID: os.Getpid(),
		UptimeSeconds: time.Since(startedAt).Seconds(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "pipetransport: marshal pong payload")
	}
	return &envelope.MessageEnvelope{
		ProtocolVersion: envelope.ProtocolVersion,
		MessageType: envelope.MessageTypePong,
		WorkspaceKey: workspaceKey,
		Payload: payload,
		Timestamp: nowISO8601(),
	}, nil
}

func marshalEnvelope(env *envelope.MessageEnvelope) ([]byte, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return nil, errors.Wrap(err, "pipetransport: marshal envelope")
	}
	if len(b) > envelope.MaxMessageBytes {
		return nil, errors.Errorf("pipetransport: outgoing envelope exceeds %d bytes", envelope.MaxMessageBytes)
	}
	return b, nil
}

func nowISO8601() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}
