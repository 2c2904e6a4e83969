//go:build cgo

package ffbridge

/*
#include <stdlib.h>
#include "ffbridge.h"
*/
import "C"

import (
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

// LogRecord is one native log event as seen by a LogCallback.
type LogRecord struct {
	// ClassName is the AVClass item name of the source, e.g. "h264".
	ClassName string
	HasClass  bool
	// Source is the native object that logged, or nil.
	Source unsafe.Pointer
	Level  LogLevel
	// Format is the printf format string.
	Format string
	// Args formats the message. It is only usable during the callback.
	Args *ArgCursor
}

// Message renders the record and trims the trailing newline native
// messages carry.
func (r *LogRecord) Message() (string, error) {
	s, err := r.Args.String()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(s, "\n"), nil
}

// LogCallback receives native log events. It runs on whatever thread the
// native library logs from and must not retain rec past its return.
type LogCallback func(rec *LogRecord)

const (
	cursorLive = iota
	cursorConsumed
	cursorExpired
)

// ArgCursor is the argument list of one native log call. It may be
// formatted once, and only before the callback that received it returns.
type ArgCursor struct {
	mu     sync.Mutex
	state  int
	args   unsafe.Pointer
	format *C.char
}

// take locks the cursor for formatting. On success the caller must unlock.
func (c *ArgCursor) take() error {
	if c == nil {
		return ErrCursorExpired
	}
	c.mu.Lock()
	switch c.state {
	case cursorLive:
		c.state = cursorConsumed
		return nil
	case cursorConsumed:
		c.mu.Unlock()
		return ErrCursorConsumed
	default:
		c.mu.Unlock()
		return ErrCursorExpired
	}
}

func (c *ArgCursor) expire() {
	c.mu.Lock()
	c.state = cursorExpired
	c.args = nil
	c.mu.Unlock()
}

// FormatInto formats the message into buf with vsnprintf semantics: at most
// len(buf)-1 bytes plus a NUL are written and n is the length the whole
// message needs.
func (c *ArgCursor) FormatInto(buf []byte) (n int, err error) {
	if err := c.take(); err != nil {
		return 0, err
	}
	defer c.mu.Unlock()
	var p *C.char
	if len(buf) > 0 {
		p = (*C.char)(unsafe.Pointer(&buf[0]))
	}
	ret := C.ffbridge_args_format(c.args, c.format, p, C.size_t(len(buf)))
	if ret < 0 {
		return 0, errors.New("vsnprintf failed")
	}
	return int(ret), nil
}

// String formats the whole message.
func (c *ArgCursor) String() (string, error) {
	if err := c.take(); err != nil {
		return "", err
	}
	defer c.mu.Unlock()
	var n C.int
	s := C.ffbridge_args_string(c.args, c.format, &n)
	if s == nil {
		return "", errors.New("vsnprintf failed")
	}
	defer C.free(unsafe.Pointer(s))
	return C.GoStringN(s, n), nil
}

func _() {
	// An "invalid array index" compiler error means the LogLevel values
	// no longer match the AV_LOG_* constants.
	var x [1]struct{}
	_ = x[LogQuiet-C.AV_LOG_QUIET]
	_ = x[LogPanic-C.AV_LOG_PANIC]
	_ = x[LogFatal-C.AV_LOG_FATAL]
	_ = x[LogError-C.AV_LOG_ERROR]
	_ = x[LogWarning-C.AV_LOG_WARNING]
	_ = x[LogInfo-C.AV_LOG_INFO]
	_ = x[LogVerbose-C.AV_LOG_VERBOSE]
	_ = x[LogDebug-C.AV_LOG_DEBUG]
	_ = x[LogTrace-C.AV_LOG_TRACE]
}

type logSink struct {
	callback LogCallback
	logger   golog.Logger
}

var (
	sink     atomic.Pointer[logSink]
	logLevel atomic.Int32
)

// SetLogLevel changes the threshold applied to native messages.
func SetLogLevel(l LogLevel) {
	logLevel.Store(int32(l))
	C.av_log_set_level(C.int(l))
}

// CurrentLogLevel returns the threshold applied to native messages.
func CurrentLogLevel() LogLevel {
	return LogLevel(logLevel.Load())
}

//export ffbridgeLog
func ffbridgeLog(name *C.char, avcl unsafe.Pointer, level C.int, format *C.char, args unsafe.Pointer) {
	s := sink.Load()
	if s == nil || !CurrentLogLevel().Enabled(LogLevel(level)) {
		return
	}
	cur := &ArgCursor{args: args, format: format}
	if format == nil {
		cur.state = cursorExpired
	}
	defer cur.expire()
	defer func() {
		// A panic cannot unwind through the native frames above us.
		if r := recover(); r != nil {
			s.logger.Errorw("panic in log callback", "panic", r)
		}
	}()

	rec := &LogRecord{Source: avcl, Level: LogLevel(level), Args: cur}
	if name != nil {
		rec.ClassName = C.GoString(name)
		rec.HasClass = true
	}
	if format != nil {
		rec.Format = C.GoString(format)
	}
	s.callback(rec)
}

func loggerCallback(logger golog.Logger) LogCallback {
	return func(rec *LogRecord) {
		msg, err := rec.Message()
		if err != nil || msg == "" {
			return
		}
		fields := []interface{}{"level", rec.Level.String()}
		if rec.HasClass {
			fields = append(fields, "class", rec.ClassName)
		}
		switch rec.Level.zapLevel() {
		case zapcore.ErrorLevel:
			logger.Errorw(msg, fields...)
		case zapcore.WarnLevel:
			logger.Warnw(msg, fields...)
		case zapcore.InfoLevel:
			logger.Infow(msg, fields...)
		default:
			logger.Debugw(msg, fields...)
		}
	}
}

// Log writes msg through the native logging facility with no source.
func Log(level LogLevel, msg string) {
	logFrom(nil, level, msg)
}

func logFrom(avcl unsafe.Pointer, level LogLevel, msg string) {
	cmsg := C.CString(msg)
	defer C.free(unsafe.Pointer(cmsg))
	C.ffbridge_log_str(avcl, C.int(level), cmsg)
}
