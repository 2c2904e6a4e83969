//go:build cgo

package ffbridge

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestLogTrampolineWithoutSource(t *testing.T) {
	var got []LogRecord
	var msgs []string
	defer setLogHook(func(rec *LogRecord) {
		msg, err := rec.Message()
		test.That(t, err, test.ShouldBeNil)
		got = append(got, *rec)
		msgs = append(msgs, msg)
	})()

	Log(LogError, "disk on fire 100%\n")
	test.That(t, got, test.ShouldHaveLength, 1)
	test.That(t, got[0].HasClass, test.ShouldBeFalse)
	test.That(t, got[0].ClassName, test.ShouldEqual, "")
	test.That(t, got[0].Source == nil, test.ShouldBeTrue)
	test.That(t, got[0].Level, test.ShouldEqual, LogError)
	test.That(t, got[0].Format, test.ShouldEqual, "%s")
	test.That(t, msgs[0], test.ShouldEqual, "disk on fire 100%")
}

func TestLogTrampolineClassName(t *testing.T) {
	par, err := NewCodecParameters()
	test.That(t, err, test.ShouldBeNil)
	defer par.Close()
	par.SetCodecID(CodecIDH264)
	par.SetCodecType(MediaTypeVideo)

	dec, err := par.NewDecoder(nil)
	if errors.Is(err, ErrDecoderNotFound) {
		t.Skip("libavcodec built without an H.264 decoder")
	}
	test.That(t, err, test.ShouldBeNil)
	defer dec.Close()

	var got *LogRecord
	defer setLogHook(func(rec *LogRecord) {
		if rec.Level == LogWarning {
			copied := *rec
			got = &copied
		}
	})()

	dec.Ctx().Log(LogWarning, "from the decoder")
	test.That(t, got, test.ShouldNotBeNil)
	test.That(t, got.HasClass, test.ShouldBeTrue)
	test.That(t, got.ClassName, test.ShouldEqual, "h264")
	test.That(t, got.Source != nil, test.ShouldBeTrue)
}

func TestLogLevelFiltering(t *testing.T) {
	calls := 0
	defer setLogHook(func(*LogRecord) { calls++ })()

	prev := CurrentLogLevel()
	defer SetLogLevel(prev)

	SetLogLevel(LogError)
	test.That(t, CurrentLogLevel(), test.ShouldEqual, LogError)
	Log(LogWarning, "dropped")
	test.That(t, calls, test.ShouldEqual, 0)
	Log(LogError, "kept")
	test.That(t, calls, test.ShouldEqual, 1)
}

func TestArgCursorSingleUse(t *testing.T) {
	var first, second error
	var retained *ArgCursor
	defer setLogHook(func(rec *LogRecord) {
		_, first = rec.Args.String()
		_, second = rec.Args.String()
		retained = rec.Args
	})()

	Log(LogError, "once")
	test.That(t, first, test.ShouldBeNil)
	test.That(t, second, test.ShouldEqual, ErrCursorConsumed)

	// Outside the callback the arguments are gone.
	_, err := retained.String()
	test.That(t, err, test.ShouldEqual, ErrCursorExpired)
	_, err = retained.FormatInto(make([]byte, 8))
	test.That(t, err, test.ShouldEqual, ErrCursorExpired)
}

func TestArgCursorFormatInto(t *testing.T) {
	var n int
	var ferr error
	buf := make([]byte, 6)
	defer setLogHook(func(rec *LogRecord) {
		n, ferr = rec.Args.FormatInto(buf)
	})()

	Log(LogError, "truncated message")
	test.That(t, ferr, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, len("truncated message"))
	test.That(t, string(buf[:5]), test.ShouldEqual, "trunc")
	test.That(t, buf[5], test.ShouldEqual, byte(0))
}

func TestLogCallbackPanicIsContained(t *testing.T) {
	defer setLogHook(func(*LogRecord) { panic("callback bug") })()
	// Reaching the next line at all is the assertion.
	Log(LogError, "boom")
}

func TestLoggerCallbackSkipsEmptyMessages(t *testing.T) {
	calls := 0
	defer setLogHook(func(rec *LogRecord) {
		calls++
		loggerCallback(DefaultConfig().Logger)(rec)
	})()
	Log(LogError, "")
	Log(LogError, "visible")
	test.That(t, calls, test.ShouldEqual, 2)
}
