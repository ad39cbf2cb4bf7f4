//go:build windows

package workspacekey

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Key stability across equivalent spellings of the same Windows path.
func TestKeyStabilityAcrossEquivalentPaths(t *testing.T) {
	canon, err := Normalize(`C:\Projects\MyApp`)
	require.NoError(t, err)
	assert.Equal(t, "c:/projects/myapp", canon)

	sum := sha256.Sum256([]byte(canon))
	wantKey := Key(hex.EncodeToString(sum[:])[:32])

	for _, variant := range []string{
		`c:/projects/myapp`,
		`C:/Projects/MyApp/`,
		`c:\projects\myapp\`,
	} {
		got, err := ComputeKey(variant)
		require.NoError(t, err)
		assert.Equal(t, wantKey, got, "variant %q", variant)
	}
}

func TestKeyDriveRootVariants(t *testing.T) {
	k1, err := ComputeKey(`C:`)
	require.NoError(t, err)
	k2, err := ComputeKey(`C:\`)
	require.NoError(t, err)
	k3, err := ComputeKey(`C:/`)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.Equal(t, k2, k3)
}

func TestUNCCaseVariantsYieldSameKey(t *testing.T) {
	k1, err := ComputeKey(`\\SERVER\Share`)
	require.NoError(t, err)
	k2, err := ComputeKey(`\\server\share`)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}
