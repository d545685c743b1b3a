package sfgkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	keys := []string{
		GetStorageNodeKey("10.0.0.1"),
		GetStorageNodeKey("10.0.0.2"),
		ListStorageNodesKey(),
		ClusterSettingsKey(),
		StatusKey(),
	}
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		assert.False(t, seen[key], key)
		seen[key] = true
	}
	assert.Equal(t, "getsn_10.0.0.1", keys[0])
}
