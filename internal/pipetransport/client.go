package pipetransport

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/codecomfy/nextgallery/internal/envelope"
)

// ClientOutcome is the result of one activation_request round trip.
type ClientOutcome int

const (
	ClientSuccess ClientOutcome = iota
	ClientConnectTimeout
	ClientSendTimeout
	ClientReceiveTimeout
	ClientNoResponse
	ClientInvalidResponse
	ClientError
)

func (o ClientOutcome) String() string {
	switch o {
	case ClientSuccess:
		return "success"
	case ClientConnectTimeout:
		return "connect_timeout"
	case ClientSendTimeout:
		return "send_timeout"
	case ClientReceiveTimeout:
		return "receive_timeout"
	case ClientNoResponse:
		return "no_response"
	case ClientInvalidResponse:
		return "invalid_response"
	default:
		return "error"
	}
}

// ClientTimeouts holds the three independently-scoped phase timeouts.
// The CLI may override the defaults below.
type ClientTimeouts struct {
	Connect time.Duration
	Send time.Duration
	Receive time.Duration
}

// DefaultClientTimeouts returns the standard 2s/1s/5s phase budget.
func DefaultClientTimeouts() ClientTimeouts {
	return ClientTimeouts{Connect: 2 * time.Second, Send: 1 * time.Second, Receive: 5 * time.Second}
}

// ClientResult is the outcome of SendActivationRequest.
type ClientResult struct {
	Outcome ClientOutcome
	Response *envelope.MessageEnvelope
	Err error
}

// SendActivationRequest connects to channelName, sends req, and awaits one
// response, each phase independently bounded by timeouts. A timeout in phase
// N cancels only that phase.
func SendActivationRequest(ctx context.Context, channelName string, req *envelope.MessageEnvelope, timeouts ClientTimeouts) ClientResult {
	conn, err := dialWithTimeout(ctx, channelName, timeouts.Connect)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ClientResult{Outcome: ClientConnectTimeout, Err: err}
		}
		return ClientResult{Outcome: ClientError, Err: errors.Wrap(err, "pipetransport: connect")}
	}
	defer conn.Close()

	payload, err := marshalEnvelope(req)
	if err != nil {
		return ClientResult{Outcome: ClientError, Err: err}
	}

	if err := writeWithTimeout(conn, payload, timeouts.Send); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ClientResult{Outcome: ClientSendTimeout, Err: err}
		}
		return ClientResult{Outcome: ClientError, Err: errors.Wrap(err, "pipetransport: send")}
	}

	raw, err := readWithTimeout(conn, timeouts.Receive)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ClientResult{Outcome: ClientReceiveTimeout, Err: err}
		}
		if isConnClosed(err) {
			return ClientResult{Outcome: ClientNoResponse, Err: err}
		}
		return ClientResult{Outcome: ClientError, Err: errors.Wrap(err, "pipetransport: receive")}
	}

	var resp envelope.MessageEnvelope
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ClientResult{Outcome: ClientInvalidResponse, Err: errors.Wrap(err, "pipetransport: unmarshal response")}
	}

	return ClientResult{Outcome: ClientSuccess, Response: &resp}
}

func dialWithTimeout(ctx context.Context, channelName string, timeout time.Duration) (net.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return dialPlatform(dialCtx, channelName)
}

func writeWithTimeout(conn net.Conn, payload []byte, timeout time.Duration) error {
	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	if err := writeFrame(conn, payload); err != nil {
		if isTimeout(err) {
			return context.DeadlineExceeded
		}
		return err
	}
	return nil
}

func readWithTimeout(conn net.Conn, timeout time.Duration) ([]byte, error) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	raw, err := readFrame(conn)
	if err != nil {
		if isTimeout(err) {
			return nil, context.DeadlineExceeded
		}
		return nil, err
	}
	return raw, nil
}

// isTimeout unwraps a pkg/errors-wrapped error to its root cause and checks
// the net.Error Timeout() interface, since Wrap loses that interface.
func isTimeout(err error) bool {
	ne, ok := errors.Cause(err).(interface{ Timeout() bool })
	return ok && ne.Timeout()
}

func isConnClosed(err error) bool {
	cause := errors.Cause(err)
	return cause == io.EOF || errors.Is(err, context.Canceled)
}
