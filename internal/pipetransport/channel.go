// Package pipetransport implements the named duplex channel between
// instances of the same workspace: a sequential, single-connection-at-a-time
// server on the primary instance, and a three-phase-timeout client on every
// secondary launch. Listening and dialing live in build-tagged platform
// files, the same split instancerouter uses for its mutex; the Windows named
// pipe transport comes from github.com/Microsoft/go-winio.
package pipetransport

// ChannelName derives the platform-local duplex endpoint name for a
// workspace key: no path segments, lowercase hex only.
func ChannelName(workspaceKey string) string {
	return "codecomfy.nextgallery." + workspaceKey
}
