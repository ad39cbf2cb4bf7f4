//go:build !windows

package pipetransport

import (
	"context"
	"net"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// socketPath maps a channel name to a Unix domain socket path, mirroring how
// backend/local resolves workspace-relative paths to host filesystem paths
// (filepath.Join, host-native separators).
func socketPath(channelName string) string {
	return filepath.Join(os.TempDir(), channelName+".sock")
}

func listenPlatform(channelName string) (net.Listener, error) {
	path := socketPath(channelName)
	// A stale socket file from a crashed prior primary must not block a new
	// listener; removing it is safe because InstanceRouter's mutex is the
	// actual single-primary guarantee, not this file's existence.
	_ = os.Remove(path)
	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, errors.Wrapf(err, "listen on unix socket %s", path)
	}
	return &unixListener{Listener: l, path: path}, nil
}

// unixListener removes its socket file on Close so a clean shutdown leaves
// no stale path for the next primary to have to clear.
type unixListener struct {
	net.Listener
	path string
}

func (l *unixListener) Close() error {
	err := l.Listener.Close()
	_ = os.Remove(l.path)
	return err
}

func dialPlatform(ctx context.Context, channelName string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath(channelName))
	if err != nil {
		return nil, err
	}
	return conn, nil
}
