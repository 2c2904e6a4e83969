//go:build cgo

package ffbridge

import (
	"fmt"
	"os"
	"sync"
	"testing"
)

// logHook receives native log records while a test has one installed.
var logHook struct {
	sync.Mutex
	fn LogCallback
}

func setLogHook(fn LogCallback) (restore func()) {
	logHook.Lock()
	prev := logHook.fn
	logHook.fn = fn
	logHook.Unlock()
	return func() {
		logHook.Lock()
		logHook.fn = prev
		logHook.Unlock()
	}
}

func TestMain(m *testing.M) {
	cfg := DefaultConfig()
	cfg.LogLevel = LogWarning
	cfg.LogCallback = func(rec *LogRecord) {
		logHook.Lock()
		fn := logHook.fn
		logHook.Unlock()
		if fn != nil {
			fn(rec)
		}
	}
	if err := Init(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "init ffmpeg:", err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}
