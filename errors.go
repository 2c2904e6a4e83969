package ffbridge

import "github.com/pkg/errors"

var (
	// ErrCursorConsumed is returned when a log argument cursor is used twice.
	ErrCursorConsumed = errors.New("log arguments already consumed")
	// ErrCursorExpired is returned when a log argument cursor is used after
	// its callback returned.
	ErrCursorExpired = errors.New("log arguments used outside their callback")
	// ErrLibraryNotFound is returned when the shared libraries cannot be loaded.
	ErrLibraryNotFound = errors.New("ffmpeg shared libraries not found")
	// ErrUnsupported is returned on platforms where the libraries can be
	// neither linked with cgo nor loaded with purego.
	ErrUnsupported = errors.New("ffmpeg probing unsupported on this platform")
	// ErrNoTimestamp is returned by the sinks for an access unit that has
	// neither a PTS nor a DTS.
	ErrNoTimestamp = errors.New("access unit has no timestamp")
)
