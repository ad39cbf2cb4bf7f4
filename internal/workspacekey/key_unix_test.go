//go:build !windows

package workspacekey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyCaseInsensitiveASCII(t *testing.T) {
	k1, err := ComputeKey("/home/user/workspace")
	require.NoError(t, err)
	k2, err := ComputeKey("/HOME/USER/WORKSPACE")
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestKeySlashDirectionInsensitive(t *testing.T) {
	// The leading slash keeps the path absolute on Unix path semantics;
	// the remaining separators are backslashes to exercise step 3's
	// backslash->forward-slash conversion.
	k1, err := ComputeKey(`/home/user/workspace`)
	require.NoError(t, err)
	k2, err := ComputeKey("/" + strings.ReplaceAll(`home/user/workspace`, "/", `\`))
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestKeyTrailingSlashInsensitiveForNonRoot(t *testing.T) {
	k1, err := ComputeKey("/home/user/workspace")
	require.NoError(t, err)
	k2, err := ComputeKey("/home/user/workspace/")
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}
