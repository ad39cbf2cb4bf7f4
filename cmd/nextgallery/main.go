// Command nextgallery is the single-instance gallery viewer's process
// entrypoint: it resolves a workspace, routes through InstanceRouter to
// decide whether this launch becomes primary or hands off to an existing
// instance, and if primary, runs the view projection and duplex server.
// Flag parsing follows rclone's own cobra/pflag convention (a root command
// with PersistentFlags bound via pflag, RunE carrying the real logic).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codecomfy/nextgallery/internal/activation"
	"github.com/codecomfy/nextgallery/internal/envelope"
	"github.com/codecomfy/nextgallery/internal/galleryfs"
	"github.com/codecomfy/nextgallery/internal/galleryindex"
	"github.com/codecomfy/nextgallery/internal/gallerylog"
	"github.com/codecomfy/nextgallery/internal/instancerouter"
	"github.com/codecomfy/nextgallery/internal/pipetransport"
	"github.com/codecomfy/nextgallery/internal/viewmodel"
	"github.com/codecomfy/nextgallery/internal/workspacekey"
)

type flags struct {
	workspace        string
	requestedView    string
	pollInterval     time.Duration
	connectTimeout   time.Duration
	sendTimeout      time.Duration
	receiveTimeout   time.Duration
	backoffThreshold int
	logLevel         string
	args             []string
}

func main() {
	f := &flags{}
	root := &cobra.Command{
		Use:   "nextgallery",
		Short: "Single-instance per-workspace gallery viewer core",
		RunE: func(cmd *cobra.Command, args []string) error {
			f.args = args
			return run(cmd.Context(), f)
		},
	}

	root.PersistentFlags().StringVar(&f.workspace, "workspace", "", "workspace root directory (required)")
	root.PersistentFlags().StringVar(&f.requestedView, "requested-view", "", "view to navigate to on activation")
	root.PersistentFlags().DurationVar(&f.pollInterval, "poll-interval", viewmodel.PollInterval, "timer poll cadence")
	root.PersistentFlags().DurationVar(&f.connectTimeout, "connect-timeout", 2*time.Second, "activation client connect timeout")
	root.PersistentFlags().DurationVar(&f.sendTimeout, "send-timeout", 1*time.Second, "activation client send timeout")
	root.PersistentFlags().DurationVar(&f.receiveTimeout, "receive-timeout", 5*time.Second, "activation client receive timeout")
	root.PersistentFlags().IntVar(&f.backoffThreshold, "backoff-threshold", viewmodel.BackoffThreshold, "consecutive bad loads before timer polling is suspended")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "info", "minimum log level (debug, info, notice, warn, error)")
	_ = root.MarkPersistentFlagRequired("workspace")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "nextgallery:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f *flags) error {
	logger := gallerylog.NewAtLevel(gallerylog.ParseLevel(f.logLevel))
	ctx = gallerylog.WithContext(ctx, logger)

	canonPath, err := workspacekey.Normalize(f.workspace)
	if err != nil {
		return fmt.Errorf("invalid workspace path %q: %w", f.workspace, err)
	}
	workspaceKey, err := workspacekey.ComputeKey(f.workspace)
	if err != nil {
		return fmt.Errorf("failed to derive workspace key: %w", err)
	}

	logger.Info("nextgallery starting", "workspace", canonPath, "workspace_key", string(workspaceKey))

	reader := galleryfs.NewOSReader()
	mutex := instancerouter.NewMutex(instancerouter.MutexName(string(workspaceKey)))
	timeouts := pipetransport.ClientTimeouts{Connect: f.connectTimeout, Send: f.sendTimeout, Receive: f.receiveTimeout}

	routeResult, err := instancerouter.Route(ctx, string(workspaceKey), f.workspace, f.requestedView, f.args, mutex, timeouts)
	if err != nil {
		return fmt.Errorf("instance routing failed: %w", err)
	}
	defer routeResult.Cleanup()

	if routeResult.Decision == instancerouter.DecisionActivateExisting {
		logger.Info("handed off to existing instance, exiting")
		return nil
	}

	if routeResult.Degraded {
		logger.Warn("starting in degraded primary mode; an existing primary may be unresponsive")
	}

	window := newHeadlessWindow(logger)
	var model *viewmodel.Model
	model = viewmodel.NewWithConfig(canonPath, reader, window, func(result galleryindex.LoadResult) {
		logger.Info("projection updated", "state", result.State, "banner_severity", result.Banner.Severity)
	}, viewmodel.Config{PollInterval: f.pollInterval, BackoffThreshold: f.backoffThreshold})

	server, err := pipetransport.Listen(pipetransport.ChannelName(string(workspaceKey)), func(ctx context.Context, env *envelope.MessageEnvelope) (*envelope.MessageEnvelope, error) {
		var payload envelope.ActivationRequestPayload
		if err := envelope.DecodePayload(env, &payload); err != nil {
			resp, rerr := envelope.ErrorResponse(env.WorkspaceKey, time.Now().UTC().Format("2006-01-02T15:04:05.000Z"), "invalid activation_request payload")
			return &resp, rerr
		}
		result := activation.Handle(payload, window, modelIndex{model})
		responsePayload := activation.ToResponsePayload(result)
		respBytes, err := marshalResponsePayload(responsePayload)
		if err != nil {
			return nil, err
		}
		return &envelope.MessageEnvelope{
			ProtocolVersion: envelope.ProtocolVersion,
			MessageType:     envelope.MessageTypeActivationResponse,
			WorkspaceKey:    env.WorkspaceKey,
			Payload:         respBytes,
			Timestamp:       time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		}, nil
	})
	if err != nil {
		return fmt.Errorf("failed to start activation channel: %w", err)
	}

	serverCtx := pipetransport.WithExpectedKey(ctx, string(workspaceKey))
	go func() {
		if err := server.Serve(serverCtx); err != nil {
			logger.Warn("activation server exited", "error", err)
		}
	}()

	model.Start(ctx)
	go model.RunPollLoop(ctx)

	<-ctx.Done()
	logger.Info("nextgallery shutting down")
	return nil
}

// modelIndex adapts *viewmodel.Model to activation.Index's Refresh() contract.
type modelIndex struct {
	model *viewmodel.Model
}

func (m modelIndex) Refresh() {
	m.model.ExplicitRefresh(context.Background())
}

func marshalResponsePayload(payload envelope.ActivationResponsePayload) ([]byte, error) {
	return json.Marshal(payload)
}
