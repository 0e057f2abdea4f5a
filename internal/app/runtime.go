package app

import (
	"os"
	"strconv"
	"sync"
)

// TestModeEnv disables network side effects in binaries started by tests.
const TestModeEnv = "ODYSSEY_TEST_MODE"

var (
	testModeMu     sync.RWMutex
	testModeLoaded bool
	testMode       bool
)

func readTestMode() bool {
	v, err := strconv.ParseBool(os.Getenv(TestModeEnv))
	return err == nil && v
}

// InTestMode reports whether the binaries should skip startup. The
// environment is read once.
func InTestMode() bool {
	testModeMu.RLock()
	if testModeLoaded {
		defer testModeMu.RUnlock()
		return testMode
	}
	testModeMu.RUnlock()
	return RefreshTestMode()
}

// RefreshTestMode rereads the environment and returns the new value.
func RefreshTestMode() bool {
	testModeMu.Lock()
	defer testModeMu.Unlock()
	testMode = readTestMode()
	testModeLoaded = true
	return testMode
}
