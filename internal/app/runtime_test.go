package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestModeFollowsEnvironment(t *testing.T) {
	t.Cleanup(func() { RefreshTestMode() })

	for value, want := range map[string]bool{"1": true, "true": true, "0": false, "": false, "yes": false} {
		t.Setenv(TestModeEnv, value)
		assert.Equal(t, want, RefreshTestMode(), value)
		assert.Equal(t, want, InTestMode(), value)
	}
}
