// Package testing switches the process into test mode when imported, so
// packages that start servers or touch external services stay inert.
package testing

import (
	"os"
	"path/filepath"
	"sync"
	stdtesting "testing"
)

var once sync.Once

// defaults are applied only when the variable is unset.
var defaults = map[string]string{
	"ODYSSEY_TEST_MODE": "1",
	"LOG_FORMAT":        "json",
	"GOTENBERG_URL":     "http://127.0.0.1:0",
	"REPORT_SPOOL_DIR":  filepath.Join(os.TempDir(), "odyssey-spool-test"),
}

func ensureTestMode() {
	once.Do(func() {
		for key, value := range defaults {
			if _, ok := os.LookupEnv(key); !ok {
				_ = os.Setenv(key, value)
			}
		}
	})
}

func init() {
	ensureTestMode()
}

// TestMain can be delegated to from a package's own TestMain.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
