package ffbridge

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

// LogLevel is a native log severity. Lower values are more severe.
// The values are the AV_LOG_* constants, which have been stable since
// libavutil 50.
type LogLevel int

const (
	LogQuiet   LogLevel = -8
	LogPanic   LogLevel = 0
	LogFatal   LogLevel = 8
	LogError   LogLevel = 16
	LogWarning LogLevel = 24
	LogInfo    LogLevel = 32
	LogVerbose LogLevel = 40
	LogDebug   LogLevel = 48
	LogTrace   LogLevel = 56
)

func (l LogLevel) String() string {
	switch l {
	case LogQuiet:
		return "quiet"
	case LogPanic:
		return "panic"
	case LogFatal:
		return "fatal"
	case LogError:
		return "error"
	case LogWarning:
		return "warning"
	case LogInfo:
		return "info"
	case LogVerbose:
		return "verbose"
	case LogDebug:
		return "debug"
	case LogTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// ParseLogLevel accepts the names printed by LogLevel.String, plus "warn".
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quiet":
		return LogQuiet, nil
	case "panic":
		return LogPanic, nil
	case "fatal":
		return LogFatal, nil
	case "error":
		return LogError, nil
	case "warning", "warn":
		return LogWarning, nil
	case "info":
		return LogInfo, nil
	case "verbose":
		return LogVerbose, nil
	case "debug":
		return LogDebug, nil
	case "trace":
		return LogTrace, nil
	}
	return LogInfo, errors.Errorf("unknown log level %q", s)
}

// Enabled reports whether a message at level msg passes a threshold of l.
func (l LogLevel) Enabled(msg LogLevel) bool {
	return msg <= l
}

// zapLevel maps a native severity onto zap. Native messages never exit the
// process, so panic and fatal both land on Error.
func (l LogLevel) zapLevel() zapcore.Level {
	switch {
	case l <= LogError:
		return zapcore.ErrorLevel
	case l <= LogWarning:
		return zapcore.WarnLevel
	case l <= LogInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
