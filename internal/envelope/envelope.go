// Package envelope implements the wire-level message shape shared by the
// activation channel: a fixed MessageEnvelope around an opaque payload, and
// the ordered validation rule table that decides whether a received frame
// should be processed, dropped, or answered with an error response. This
// plays the same role here that fs/rc's Params/Reshape validation plays for
// rclone's remote-control protocol.
package envelope

import (
	"encoding/json"
	"regexp"

	"github.com/pkg/errors"
)

// MaxMessageBytes is the largest single message accepted in either
// direction on the activation channel.
const MaxMessageBytes = 64 * 1024

// MessageType enumerates the envelope's message_type field.
type MessageType string

const (
	MessageTypeActivationRequest  MessageType = "activation_request"
	MessageTypeActivationResponse MessageType = "activation_response"
	MessageTypePing               MessageType = "ping"
	MessageTypePong               MessageType = "pong"
)

func (t MessageType) valid() bool {
	switch t {
	case MessageTypeActivationRequest, MessageTypeActivationResponse, MessageTypePing, MessageTypePong:
		return true
	default:
		return false
	}
}

// ProtocolVersion is the only protocol_version value this build understands.
const ProtocolVersion = "1"

// MessageEnvelope is the fixed outer shape of every frame exchanged on the
// activation channel. All fields are required; payload is forward-compatible
// (unknown payload fields are ignored by the receiver).
type MessageEnvelope struct {
	ProtocolVersion string          `json:"protocol_version"`
	MessageType     MessageType     `json:"message_type"`
	WorkspaceKey    string          `json:"workspace_key"`
	Payload         json.RawMessage `json:"payload"`
	Timestamp       string          `json:"timestamp"`
}

// ActivationRequestPayload is the payload of an activation_request message.
type ActivationRequestPayload struct {
	WorkspacePath string   `json:"workspace_path"`
	RequestedView string   `json:"requested_view,omitempty"`
	Args          []string `json:"args,omitempty"`
}

// MaxWorkspacePathBytes bounds ActivationRequestPayload.WorkspacePath.
const MaxWorkspacePathBytes = 32 * 1024

// MaxArgsEntries bounds ActivationRequestPayload.Args.
const MaxArgsEntries = 100

// NewActivationRequestPayload builds an ActivationRequestPayload, truncating
// workspacePath to MaxWorkspacePathBytes and args to MaxArgsEntries on
// the way out rather than rejecting an oversized emit.
func NewActivationRequestPayload(workspacePath, requestedView string, args []string) ActivationRequestPayload {
	if len(workspacePath) > MaxWorkspacePathBytes {
		workspacePath = workspacePath[:MaxWorkspacePathBytes]
	}
	if len(args) > MaxArgsEntries {
		args = args[:MaxArgsEntries]
	}
	return ActivationRequestPayload{
		WorkspacePath: workspacePath,
		RequestedView: requestedView,
		Args:          args,
	}
}

// ResponseStatus enumerates ActivationResponsePayload.Status.
type ResponseStatus string

const (
	ResponseStatusActivated ResponseStatus = "activated"
	ResponseStatusError     ResponseStatus = "error"
	ResponseStatusBusy      ResponseStatus = "busy"
)

// WindowState enumerates ActivationResponsePayload.WindowState.
type WindowState string

const (
	WindowStateRestored          WindowState = "restored"
	WindowStateAlreadyForeground WindowState = "already_foreground"
	WindowStateMinimized         WindowState = "minimized"
	WindowStateUnknown           WindowState = "unknown"
)

// ActivationResponsePayload is the payload of an activation_response message.
type ActivationResponsePayload struct {
	Status      ResponseStatus `json:"status"`
	WindowState WindowState    `json:"window_state,omitempty"`
	NavigatedTo string         `json:"navigated_to,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Action is the caller instruction produced by Validate.
type Action int

const (
	// Drop means: do not process, do not respond, log only.
	Drop Action = iota
	// Process means: the envelope is well-formed and addressed to this
	// listener; hand it to the activation handler.
	Process
	// RespondWithError means: well-formed enough to answer, but carrying an
	// unsupported protocol_version; reply with an error activation_response.
	RespondWithError
)

func (a Action) String() string {
	switch a {
	case Drop:
		return "drop"
	case Process:
		return "process"
	case RespondWithError:
		return "respond_with_error"
	default:
		return "unknown"
	}
}

var workspaceKeyPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

// Validate runs the ordered rule table (first match wins) deciding what a
// listener should do with a received frame. On Process it also returns the
// parsed envelope; on Drop/RespondWithError the envelope may be nil or
// partially populated and must not be used.
func Validate(raw []byte, expectedWorkspaceKey string) (Action, *MessageEnvelope, error) {
	if len(raw) > MaxMessageBytes {
		return Drop, nil, errors.Errorf("envelope: message exceeds %d bytes", MaxMessageBytes)
	}

	var env MessageEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Drop, nil, errors.Wrap(err, "envelope: invalid JSON")
	}

	if env.ProtocolVersion == "" || env.MessageType == "" || env.WorkspaceKey == "" ||
		len(env.Payload) == 0 || env.Timestamp == "" {
		return Drop, nil, errors.New("envelope: required field missing or empty")
	}

	if env.ProtocolVersion != ProtocolVersion {
		return RespondWithError, &env, errors.Errorf("envelope: unsupported protocol_version %q", env.ProtocolVersion)
	}

	if !env.MessageType.valid() {
		return Drop, nil, errors.Errorf("envelope: unknown message_type %q", env.MessageType)
	}

	if !workspaceKeyPattern.MatchString(env.WorkspaceKey) {
		return Drop, nil, errors.New("envelope: invalid workspace_key format")
	}

	if env.WorkspaceKey != expectedWorkspaceKey {
		return Drop, nil, errors.New("envelope: workspace_key mismatch")
	}

	return Process, &env, nil
}

// ErrorResponse builds the well-formed activation_response envelope a
// listener sends back when Validate returns RespondWithError.
func ErrorResponse(workspaceKey, timestamp, message string) (MessageEnvelope, error) {
	payload, err := json.Marshal(ActivationResponsePayload{
		Status: ResponseStatusError,
		Error:  message,
	})
	if err != nil {
		return MessageEnvelope{}, errors.Wrap(err, "envelope: marshal error response payload")
	}
	return MessageEnvelope{
		ProtocolVersion: ProtocolVersion,
		MessageType:     MessageTypeActivationResponse,
		WorkspaceKey:    workspaceKey,
		Payload:         payload,
		Timestamp:       timestamp,
	}, nil
}

// DecodePayload unmarshals env.Payload into dst, the step a caller takes
// after Validate returns Process.
func DecodePayload(env *MessageEnvelope, dst interface{}) error {
	if err := json.Unmarshal(env.Payload, dst); err != nil {
		return errors.Wrap(err, "envelope: invalid payload")
	}
	return nil
}
