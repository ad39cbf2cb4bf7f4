// Package instancerouter decides, for a given workspace, whether this
// process becomes the primary (owns the window, the index projection, and
// the duplex server) or hands off to an already-running primary. Mutex
// acquisition is platform-specific (mutex_unix.go/mutex_windows.go,
// mirroring a local filesystem backend's own build-tag split for OS-level
// primitives); everything else here is the pure outcome-to-decision mapping.
package instancerouter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/codecomfy/nextgallery/internal/envelope"
	"github.com/codecomfy/nextgallery/internal/gallerylog"
	"github.com/codecomfy/nextgallery/internal/pipetransport"
)

// MutexName derives the system-global mutex name for a workspace key.
func MutexName(workspaceKey string) string {
	return "NextGallery_" + workspaceKey
}

// Decision is the routing outcome Route returns to the caller.
type Decision int

const (
	// DecisionCreateWindow means this process should become (or degrade
	// into) a primary instance and create its own window.
	DecisionCreateWindow Decision = iota
	// DecisionActivateExisting means an existing primary handled the
	// request; this process should exit.
	DecisionActivateExisting
)

func (d Decision) String() string {
	if d == DecisionActivateExisting {
		return "activate_existing"
	}
	return "create_window"
}

// Mutex is the narrow platform capability Route depends on: an attempt to
// become the single primary for a workspace.
type Mutex interface {
	// TryAcquire attempts to become primary. ok=true means this process now
	// owns the mutex and must call Release on exit.
	TryAcquire() (ok bool, err error)
	Release() error
}

// Result is Route's full output: the decision, whether it was degraded (the
// request to the existing primary failed in a way that still leaves this
// process able to proceed), and, when this process became primary, the
// Mutex it holds, which the caller releases on exit through Cleanup.
type Result struct {
	Decision Decision
	Degraded bool
	Mutex Mutex
}

// Route derives the mutex, tries to become primary, and if that fails, acts
// as a client against whatever primary is already running. workspacePath and
// args are forwarded to the existing primary verbatim (subject to the
// envelope's emit-time truncation) so it can activate against the same
// launch arguments this process received.
func Route(ctx context.Context, workspaceKey string, workspacePath string, requestedView string, args []string, mutex Mutex, timeouts pipetransport.ClientTimeouts) (Result, error) {
	log := gallerylog.FromContext(ctx)

	acquired, err := mutex.TryAcquire()
	if err != nil {
		return Result{}, errors.Wrap(err, "instancerouter: mutex acquisition failed")
	}
	if acquired {
		return Result{Decision: DecisionCreateWindow, Mutex: mutex}, nil
	}

	channelName := pipetransport.ChannelName(workspaceKey)
	req := activationRequestEnvelope(workspaceKey, workspacePath, requestedView, args)
	clientResult := pipetransport.SendActivationRequest(ctx, channelName, req, timeouts)

	switch clientResult.Outcome {
	case pipetransport.ClientSuccess:
		return Result{Decision: DecisionActivateExisting}, nil
	case pipetransport.ClientReceiveTimeout:
		log.Warn("instancerouter: activation response timed out, trusting the mutex", "workspace_key", workspaceKey)
		return Result{Decision: DecisionActivateExisting}, nil
	case pipetransport.ClientConnectTimeout:
		log.Warn("instancerouter: connect timed out, suspecting an orphan mutex", "workspace_key", workspaceKey)
		return Result{Decision: DecisionCreateWindow, Degraded: true}, nil
	case pipetransport.ClientInvalidResponse:
		log.Warn("instancerouter: existing primary returned an invalid response", "workspace_key", workspaceKey, "error", clientResult.Err)
		return Result{Decision: DecisionCreateWindow, Degraded: true}, nil
	default:
		log.Warn("instancerouter: activation request failed", "workspace_key", workspaceKey, "outcome", clientResult.Outcome.String(), "error", clientResult.Err)
		return Result{Decision: DecisionCreateWindow, Degraded: true}, nil
	}
}

func activationRequestEnvelope(workspaceKey, workspacePath, requestedView string, args []string) *envelope.MessageEnvelope {
	payload, _ := json.Marshal(envelope.NewActivationRequestPayload(workspacePath, requestedView, args))
	return &envelope.MessageEnvelope{
		ProtocolVersion: envelope.ProtocolVersion,
		MessageType: envelope.MessageTypeActivationRequest,
		WorkspaceKey: workspaceKey,
		Payload: payload,
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}

// Cleanup releases the mutex this process holds, if any. It is a no-op on a
// degraded or activate-existing Result.
func (r Result) Cleanup() error {
	if r.Mutex == nil {
		return nil
	}
	return r.Mutex.Release()
}
