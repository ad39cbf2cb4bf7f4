//go:build windows

package pipetransport

import (
	"context"
	"net"

	"github.com/Microsoft/go-winio"
	"github.com/pkg/errors"
)

// pipePath maps a channel name to a Windows named pipe path. No path
// segments are allowed in channelName itself; the \\.\pipe\
// prefix is the platform layer's own addition.
func pipePath(channelName string) string {
	return `\\.\pipe\` + channelName
}

func listenPlatform(channelName string) (net.Listener, error) {
	l, err := winio.ListenPipe(pipePath(channelName), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "listen on named pipe %s", pipePath(channelName))
	}
	return l, nil
}

func dialPlatform(ctx context.Context, channelName string) (net.Conn, error) {
	conn, err := winio.DialPipeContext(ctx, pipePath(channelName))
	if err != nil {
		return nil, err
	}
	return conn, nil
}
