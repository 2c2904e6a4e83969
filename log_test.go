package ffbridge

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"quiet", LogQuiet},
		{"panic", LogPanic},
		{"fatal", LogFatal},
		{"error", LogError},
		{"warning", LogWarning},
		{"warn", LogWarning},
		{" INFO ", LogInfo},
		{"verbose", LogVerbose},
		{"Debug", LogDebug},
		{"trace", LogTrace},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, got, test.ShouldEqual, tt.want)
		})
	}

	_, err := ParseLogLevel("loud")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"loud"`)
}

func TestLogLevelStringRoundTrip(t *testing.T) {
	for _, l := range []LogLevel{LogQuiet, LogPanic, LogFatal, LogError, LogWarning, LogInfo, LogVerbose, LogDebug, LogTrace} {
		got, err := ParseLogLevel(l.String())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldEqual, l)
	}
	test.That(t, LogLevel(3).String(), test.ShouldEqual, "unknown")
}

func TestLogLevelEnabled(t *testing.T) {
	test.That(t, LogInfo.Enabled(LogError), test.ShouldBeTrue)
	test.That(t, LogInfo.Enabled(LogInfo), test.ShouldBeTrue)
	test.That(t, LogInfo.Enabled(LogDebug), test.ShouldBeFalse)
	test.That(t, LogQuiet.Enabled(LogPanic), test.ShouldBeFalse)
}

func TestLogLevelZapMapping(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  zapcore.Level
	}{
		{LogPanic, zapcore.ErrorLevel},
		{LogFatal, zapcore.ErrorLevel},
		{LogError, zapcore.ErrorLevel},
		{LogWarning, zapcore.WarnLevel},
		{LogInfo, zapcore.InfoLevel},
		{LogVerbose, zapcore.DebugLevel},
		{LogDebug, zapcore.DebugLevel},
		{LogTrace, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		test.That(t, tt.level.zapLevel(), test.ShouldEqual, tt.want)
	}
}
