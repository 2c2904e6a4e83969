//go:build cgo

package ffbridge

/*
#include "ffbridge.h"
*/
import "C"

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	initOnce sync.Once
	initErr  error
	locks    = newLockRegistry()
)

// Init prepares the native libraries for use. Only the first call does any
// work; later calls return its result.
func Init(cfg Config) error {
	initOnce.Do(func() {
		initErr = doInit(cfg)
	})
	return initErr
}

func doInit(cfg Config) error {
	cfg, err := cfg.applyEnv()
	if err != nil {
		return err
	}

	versions, ok := describeLibraries(RunningVersions())
	if !ok {
		if !cfg.SkipVersionCheck {
			return errors.Errorf("ffmpeg libraries are not ABI-compatible:%s", versions)
		}
		cfg.Logger.Warnw("ignoring ffmpeg version mismatch", "versions", versions)
	}

	if ret := C.ffbridge_register_lockmgr(); ret != 0 {
		return errors.Wrap(Error(ret), "av_lockmgr_register")
	}

	cb := cfg.LogCallback
	if cb == nil {
		cb = loggerCallback(cfg.Logger)
	}
	SetLogLevel(cfg.LogLevel)
	sink.Store(&logSink{callback: cb, logger: cfg.Logger})
	C.ffbridge_install_log_callback()

	C.ffbridge_register_all()
	if cfg.MaxAlloc > 0 {
		SetMaxAlloc(cfg.MaxAlloc)
	}
	if cfg.NetworkInit {
		if ret := C.avformat_network_init(); ret < 0 {
			return errors.Wrap(Error(ret), "avformat_network_init")
		}
	}
	cfg.Logger.Debugw("initialized ffmpeg", "versions", versions)
	return nil
}

// LockManagerRequired reports whether the headers predate the removal of
// av_lockmgr_register, in which case Init installs a lock manager.
func LockManagerRequired() bool {
	return C.ffbridge_lockmgr_required() != 0
}

func _() {
	var x [1]struct{}
	_ = x[LockCreate-C.FFBRIDGE_LOCK_CREATE]
	_ = x[LockObtain-C.FFBRIDGE_LOCK_OBTAIN]
	_ = x[LockRelease-C.FFBRIDGE_LOCK_RELEASE]
	_ = x[LockDestroy-C.FFBRIDGE_LOCK_DESTROY]
}

//export ffbridgeLockOp
func ffbridgeLockOp(id *C.uintptr_t, op C.int) C.int {
	slot := uintptr(*id)
	ret := locks.do(&slot, LockOp(op))
	*id = C.uintptr_t(slot)
	return C.int(ret)
}

// SetMaxAlloc caps the size of a single native allocation.
func SetMaxAlloc(n int) {
	C.av_max_alloc(C.size_t(n))
}
