// Package activation implements the pure decision logic a primary instance
// runs when a second launch hands it a request: which window commands to
// invoke, in what order, and what outcome set and response payload result.
// Window and Index are deliberately narrow capability interfaces — the same
// shape as the small interfaces accounting.go depends on rather than a
// concrete type — so the algorithm can be driven by fakes in tests without
// any real windowing toolkit.
package activation

import (
	"github.com/codecomfy/nextgallery/internal/envelope"
)

// Window is the capability ActivationHandler needs from the primary
// instance's top-level window. No method here touches the network or disk;
// all of it is in-process UI-toolkit state.
type Window interface {
	IsValid() bool
	IsMinimized() bool
	IsForeground() bool
	BringToFront()
	RestoreFromMinimized()
	FlashTaskbar()
	NavigateTo(view string)
}

// Index is the capability ActivationHandler needs from the view projection:
// a single command to re-run the loader and publish a new LoadResult.
type Index interface {
	Refresh()
}

// Outcome is one member of an ActivationResult's outcome set.
type Outcome string

const (
	OutcomeBroughtToFront Outcome = "brought_to_front"
	OutcomeAlreadyForeground Outcome = "already_foreground"
	OutcomeRestoredFromMinimized Outcome = "restored_from_minimized"
	OutcomeNavigatedToView Outcome = "navigated_to_view"
	OutcomeRefreshedIndex Outcome = "refreshed_index"
	OutcomeTaskbarFlashed Outcome = "taskbar_flashed"

	OutcomeErrorInvalidMessage Outcome = "error_invalid_message"
	OutcomeErrorUnsupportedVersion Outcome = "error_unsupported_version"
	OutcomeErrorWindowUnavailable Outcome = "error_window_unavailable"
	OutcomeErrorWorkspaceKeyMismatch Outcome = "error_workspace_key_mismatch"
	OutcomeErrorMessageTooLarge Outcome = "error_message_too_large"
	OutcomeErrorInvalidKeyFormat Outcome = "error_invalid_key_format"
)

func (o Outcome) isError() bool {
	switch o {
	case OutcomeErrorInvalidMessage, OutcomeErrorUnsupportedVersion, OutcomeErrorWindowUnavailable,
		OutcomeErrorWorkspaceKeyMismatch, OutcomeErrorMessageTooLarge, OutcomeErrorInvalidKeyFormat:
		return true
	default:
		return false
	}
}

// Result is the output of Handle. It is always either exactly one
// error outcome with a message, or a non-empty set of success outcomes that
// always includes OutcomeRefreshedIndex.
type Result struct {
	Outcomes []Outcome
	Error string
	NavigatedTo string
}

// IsError reports whether Result carries the single terminal error outcome.
func (r Result) IsError() bool {
	return len(r.Outcomes) == 1 && r.Outcomes[0].isError()
}

// Has reports whether outcome o is present in the result's outcome set.
func (r Result) Has(o Outcome) bool {
	for _, x := range r.Outcomes {
		if x == o {
			return true
		}
	}
	return false
}

func errorResult(o Outcome, msg string) Result {
	return Result{Outcomes: []Outcome{o}, Error: msg}
}

// Handle runs the fixed window-state algorithm against the request's
// decoded payload. It makes no platform calls other than those on window and
// index, and is otherwise fully deterministic.
func Handle(req envelope.ActivationRequestPayload, window Window, index Index) Result {
	if !window.IsValid() {
		return errorResult(OutcomeErrorWindowUnavailable, "window is no longer available")
	}

	var outcomes []Outcome

	switch {
	case window.IsMinimized():
		window.RestoreFromMinimized()
		outcomes = append(outcomes, OutcomeRestoredFromMinimized)
		window.FlashTaskbar()
		outcomes = append(outcomes, OutcomeTaskbarFlashed)
	case !window.IsForeground():
		window.BringToFront()
		outcomes = append(outcomes, OutcomeBroughtToFront)
	default:
		outcomes = append(outcomes, OutcomeAlreadyForeground)
	}

	var navigatedTo string
	if req.RequestedView != "" {
		window.NavigateTo(req.RequestedView)
		outcomes = append(outcomes, OutcomeNavigatedToView)
		navigatedTo = req.RequestedView
	}

	index.Refresh()
	outcomes = append(outcomes, OutcomeRefreshedIndex)

	return Result{Outcomes: outcomes, NavigatedTo: navigatedTo}
}

// WindowState maps a Result's outcome set to the response payload's
// window_state field.
func WindowState(r Result) envelope.WindowState {
	switch {
	case r.Has(OutcomeRestoredFromMinimized), r.Has(OutcomeBroughtToFront):
		return envelope.WindowStateRestored
	case r.Has(OutcomeAlreadyForeground):
		return envelope.WindowStateAlreadyForeground
	default:
		return envelope.WindowStateUnknown
	}
}

// ToResponsePayload builds the activation_response payload for a Result.
func ToResponsePayload(r Result) envelope.ActivationResponsePayload {
	if r.IsError() {
		return envelope.ActivationResponsePayload{
			Status: envelope.ResponseStatusError,
			Error: r.Error,
		}
	}
	return envelope.ActivationResponsePayload{
		Status: envelope.ResponseStatusActivated,
		WindowState: WindowState(r),
		NavigatedTo: r.NavigatedTo,
	}
}
