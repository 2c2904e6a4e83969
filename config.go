//go:build cgo

package ffbridge

import (
	"os"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

// EnvLogLevel overrides Config.LogLevel when set, e.g. FFBRIDGE_LOG_LEVEL=debug.
const EnvLogLevel = "FFBRIDGE_LOG_LEVEL"

// Config controls the process-wide initialisation done by Init.
type Config struct {
	// Logger receives native log output when LogCallback is nil.
	Logger golog.Logger
	// LogLevel drops native messages less severe than this.
	LogLevel LogLevel
	// LogCallback replaces the default logger sink.
	LogCallback LogCallback
	// NetworkInit calls avformat_network_init.
	NetworkInit bool
	// SkipVersionCheck lets Init proceed when the running libraries are
	// not ABI-compatible with the headers.
	SkipVersionCheck bool
	// MaxAlloc caps single native allocations via av_max_alloc. Zero keeps
	// the library default.
	MaxAlloc int
}

// DefaultConfig returns the configuration Init is usually called with.
func DefaultConfig() Config {
	return Config{
		Logger:      golog.Global().Named("ffmpeg"),
		LogLevel:    LogInfo,
		NetworkInit: true,
	}
}

func (c Config) applyEnv() (Config, error) {
	if c.Logger == nil {
		c.Logger = golog.Global().Named("ffmpeg")
	}
	if s, ok := os.LookupEnv(EnvLogLevel); ok && s != "" {
		lvl, err := ParseLogLevel(s)
		if err != nil {
			return c, errors.Wrap(err, EnvLogLevel)
		}
		c.LogLevel = lvl
	}
	if c.MaxAlloc < 0 {
		return c, errors.Errorf("invalid max alloc %d", c.MaxAlloc)
	}
	return c, nil
}
