package pipetransport

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/codecomfy/nextgallery/internal/envelope"
	"github.com/codecomfy/nextgallery/internal/gallerylog"
)

// Handler processes one validated activation envelope and returns the
// response envelope to write back, if any.
type Handler func(ctx context.Context, env *envelope.MessageEnvelope) (*envelope.MessageEnvelope, error)

// Server is the primary instance's side of the duplex channel: a dedicated
// accept loop that services connections one at a time.
type Server struct {
	listener net.Listener
	handler Handler
	startedAt time.Time
}

// Listen opens the platform-local duplex endpoint for channelName. The
// concrete transport (named pipe on Windows, Unix domain socket elsewhere)
// is chosen by listenPlatform in the build-tagged files.
func Listen(channelName string, handler Handler) (*Server, error) {
	l, err := listenPlatform(channelName)
	if err != nil {
		return nil, errors.Wrap(err, "pipetransport: listen")
	}
	return &Server{listener: l, handler: handler, startedAt: time.Now()}, nil
}

// Serve runs the accept loop until ctx is cancelled or the listener is
// closed. Each accepted connection is handled to completion before the next
// Accept call, matching the "max one in-flight client" posture.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	log := gallerylog.FromContext(ctx)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "pipetransport: accept")
		}
		connID := uuid.NewString()
		s.handleConn(ctx, conn, log.With("conn_id", connID))
	}
}

// Close stops the accept loop and releases the listener.
func (s *Server) Close() error {
	return s.listener.Close()
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn, log *slog.Logger) {
	defer conn.Close()

	raw, err := readFrame(conn)
	if err != nil {
		log.Warn("pipetransport: failed to read request frame", "error", err)
		return
	}

	// The server validates every frame itself against the workspace key set
	// by WithExpectedKey; the handler only ever sees envelopes that passed.
	action, env, verr := envelope.Validate(raw, expectedKeyFromContext(ctx))
	switch action {
	case envelope.Drop:
		log.Warn("pipetransport: dropping invalid envelope", "error", verr)
		return
	case envelope.RespondWithError:
		resp, err := envelope.ErrorResponse(expectedKeyFromContext(ctx), nowISO8601(), verr.Error())
		if err != nil {
			log.Warn("pipetransport: failed to build error response", "error", err)
			return
		}
		s.writeEnvelope(conn, &resp, log)
		return
	}

	if env.MessageType == envelope.MessageTypePing {
		pong, err := pongEnvelope(env.WorkspaceKey, s.startedAt)
		if err != nil {
			log.Warn("pipetransport: failed to build pong", "error", err)
			return
		}
		s.writeEnvelope(conn, pong, log)
		return
	}

	resp, err := s.handler(ctx, env)
	if err != nil {
		log.Warn("pipetransport: handler failed", "error", err)
		return
	}
	if resp != nil {
		s.writeEnvelope(conn, resp, log)
	}
}

func (s *Server) writeEnvelope(conn net.Conn, env *envelope.MessageEnvelope, log *slog.Logger) {
	payload, err := marshalEnvelope(env)
	if err != nil {
		log.Warn("pipetransport: failed to marshal response", "error", err)
		return
	}
	if err := writeFrame(conn, payload); err != nil {
		log.Warn("pipetransport: failed to write response frame", "error", err)
	}
}

// ctxKey and expectedKeyFromContext let the server recover the workspace key
// it was bound to without threading it through every call explicitly; set by
// WithExpectedKey before Serve is invoked.
type ctxKey struct{}

// WithExpectedKey attaches the workspace key this server validates incoming
// envelopes against.
func WithExpectedKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ctxKey{}, key)
}

func expectedKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(ctxKey{}).(string)
	return key
}
