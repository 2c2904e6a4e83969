//go:build cgo

package ffbridge

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestCompiledVersionsMatchRunning(t *testing.T) {
	libs := RunningVersions()
	test.That(t, libs, test.ShouldHaveLength, 4)
	for _, lib := range libs {
		test.That(t, lib.Compiled, test.ShouldNotEqual, Version(0))
		test.That(t, lib.Running.Major(), test.ShouldEqual, lib.Compiled.Major())
		t.Logf("%s", lib)
	}
	test.That(t, libs[0].Compiled, test.ShouldEqual, CompiledAVUtilVersion)
	test.That(t, Configuration(), test.ShouldNotBeEmpty)
}

func TestEnumNames(t *testing.T) {
	test.That(t, CodecIDH264.String(), test.ShouldEqual, "h264")
	test.That(t, CodecIDAAC.String(), test.ShouldEqual, "aac")
	test.That(t, CodecIDRawVideo.String(), test.ShouldEqual, "rawvideo")
	test.That(t, PixelFormatYUV420P.String(), test.ShouldEqual, "yuv420p")
	test.That(t, PixelFormatRGB24.String(), test.ShouldEqual, "rgb24")
	test.That(t, PixelFormat(-5).String(), test.ShouldEqual, "PixelFormat(-5)")
	test.That(t, MediaTypeVideo.String(), test.ShouldEqual, "video")
	test.That(t, MediaTypeAudio.String(), test.ShouldEqual, "audio")
	test.That(t, MediaType(99).String(), test.ShouldEqual, "unknown")

	d := ImageDimensions{Width: 1280, Height: 720, PixelFormat: PixelFormatNV12}
	test.That(t, d.String(), test.ShouldEqual, "1280x720/nv12")

	test.That(t, MediaTypeVideo.IsVideo(), test.ShouldBeTrue)
	test.That(t, MediaTypeVideo.IsAudio(), test.ShouldBeFalse)
	test.That(t, CodecIDH264.IsH264(), test.ShouldBeTrue)
	test.That(t, CodecIDOpus.IsAAC(), test.ShouldBeFalse)
}

func TestSeekConstants(t *testing.T) {
	test.That(t, SeekSet, test.ShouldEqual, 0)
	test.That(t, SeekCur, test.ShouldEqual, 1)
	test.That(t, SeekEnd, test.ShouldEqual, 2)
	test.That(t, AVSeekSize, test.ShouldEqual, 0x10000)
	test.That(t, AVSeekForce, test.ShouldEqual, 0x20000)
	test.That(t, NoPTSValue, test.ShouldEqual, int64(-1<<63))
}

func TestErrorStrings(t *testing.T) {
	test.That(t, ErrEOF.Error(), test.ShouldContainSubstring, "End of file")
	test.That(t, ErrInvalidData.Error(), test.ShouldContainSubstring, "Invalid data")
	test.That(t, ErrEOF.Code() < 0, test.ShouldBeTrue)

	test.That(t, AsError(0), test.ShouldBeNil)
	test.That(t, AsError(17), test.ShouldBeNil)
	err := AsError(ErrAgain.Code())
	test.That(t, err, test.ShouldEqual, ErrAgain)

	// Wrapped codes still compare equal to their sentinel.
	wrapped := errors.Wrap(ErrNoMem, "alloc")
	test.That(t, errors.Is(wrapped, ErrNoMem), test.ShouldBeTrue)
	test.That(t, errors.Cause(wrapped), test.ShouldEqual, ErrNoMem)
}

func TestConfigApplyEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	cfg, err := Config{}.applyEnv()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.LogLevel, test.ShouldEqual, LogDebug)
	test.That(t, cfg.Logger, test.ShouldNotBeNil)

	t.Setenv(EnvLogLevel, "shouty")
	_, err = Config{}.applyEnv()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, EnvLogLevel)

	t.Setenv(EnvLogLevel, "")
	_, err = Config{MaxAlloc: -1}.applyEnv()
	test.That(t, err, test.ShouldNotBeNil)
}

func TestInitIsOnce(t *testing.T) {
	// TestMain already initialised; a bad config is not looked at again.
	t.Setenv(EnvLogLevel, "shouty")
	test.That(t, Init(Config{}), test.ShouldBeNil)
}

func TestDictionary(t *testing.T) {
	d := NewDictionary()
	defer d.Close()
	test.That(t, d.Len(), test.ShouldEqual, 0)
	test.That(t, d.String(), test.ShouldEqual, "")
	_, ok := d.Get("missing")
	test.That(t, ok, test.ShouldBeFalse)

	test.That(t, d.Set("preset", "fast"), test.ShouldBeNil)
	test.That(t, d.Set("Threads", "4"), test.ShouldBeNil)
	test.That(t, d.Len(), test.ShouldEqual, 2)
	test.That(t, d.String(), test.ShouldEqual, "preset=fast, Threads=4")

	v, ok := d.Get("threads")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, v, test.ShouldEqual, "4")
	_, ok = d.GetFlags("threads", DictMatchCase)
	test.That(t, ok, test.ShouldBeFalse)
	v, ok = d.GetFlags("pre", DictIgnoreSuffix)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, v, test.ShouldEqual, "fast")

	test.That(t, d.Set("preset", "slow"), test.ShouldBeNil)
	test.That(t, d.Len(), test.ShouldEqual, 2)
	v, _ = d.Get("preset")
	test.That(t, v, test.ShouldEqual, "slow")

	from, err := NewDictionaryFrom(map[string]string{"tune": "zerolatency"})
	test.That(t, err, test.ShouldBeNil)
	defer from.Close()
	test.That(t, from.String(), test.ShouldEqual, "tune=zerolatency")

	var nilDict *Dictionary
	test.That(t, nilDict.Len(), test.ShouldEqual, 0)
	test.That(t, nilDict.Close(), test.ShouldBeNil)
}

func TestPacketFields(t *testing.T) {
	pkt, err := NewPacketFrom([]byte{1, 2, 3, 4})
	test.That(t, err, test.ShouldBeNil)
	defer pkt.Close()

	_, ok := pkt.PTS()
	test.That(t, ok, test.ShouldBeFalse)
	pkt.SetPTS(3000, true)
	pkt.SetDTS(0, true)
	pkt.SetDuration(1500)
	pkt.SetStreamIndex(2)
	pkt.SetKey(true)

	pts, ok := pkt.PTS()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, pts, test.ShouldEqual, int64(3000))
	test.That(t, pkt.IsKey(), test.ShouldBeTrue)
	test.That(t, pkt.Size(), test.ShouldEqual, 4)

	pkt.RescaleTS(Rational{Num: 1, Den: 90000}, Rational{Num: 1, Den: 1000})
	pts, _ = pkt.PTS()
	test.That(t, pts, test.ShouldEqual, int64(33))
	test.That(t, pkt.Duration(), test.ShouldEqual, int64(17))

	au := pkt.AccessUnit("h264", Rational{Num: 1, Den: 1000})
	test.That(t, au.StreamIndex, test.ShouldEqual, 2)
	test.That(t, au.Key, test.ShouldBeTrue)
	test.That(t, au.HasPTS, test.ShouldBeTrue)
	test.That(t, au.HasDTS, test.ShouldBeTrue)
	test.That(t, au.Data, test.ShouldResemble, []byte{1, 2, 3, 4})

	// The access unit owns its bytes.
	pkt.Data()[0] = 9
	test.That(t, au.Data[0], test.ShouldEqual, byte(1))

	pkt.SetPTS(0, false)
	_, ok = pkt.PTS()
	test.That(t, ok, test.ShouldBeFalse)

	// Unset timestamps are flagged, not passed on as AV_NOPTS_VALUE.
	pkt.SetDTS(0, false)
	bare := pkt.AccessUnit("h264", Rational{Num: 1, Den: 1000})
	test.That(t, bare.HasPTS, test.ShouldBeFalse)
	test.That(t, bare.HasDTS, test.ShouldBeFalse)
	_, ok = bare.Timestamp()
	test.That(t, ok, test.ShouldBeFalse)
	packetizer, err := NewRTPPacketizer("h264", DefaultRTPConfig("h264"))
	test.That(t, err, test.ShouldBeNil)
	_, err = packetizer.Packetize(&bare)
	test.That(t, errors.Is(err, ErrNoTimestamp), test.ShouldBeTrue)
	pkt.SetKey(false)
	test.That(t, pkt.IsKey(), test.ShouldBeFalse)

	pkt.Unref()
	test.That(t, pkt.Data(), test.ShouldBeNil)
}

func TestCodecParameters(t *testing.T) {
	par, err := NewCodecParameters()
	test.That(t, err, test.ShouldBeNil)
	defer par.Close()

	d := ImageDimensions{Width: 320, Height: 240, PixelFormat: PixelFormatYUV420P}
	par.SetCodecID(CodecIDH264)
	par.SetDims(d)
	test.That(t, par.CodecType(), test.ShouldEqual, MediaTypeVideo)
	test.That(t, par.Dims(), test.ShouldResemble, d)

	extra := []byte{1, 0x42, 0xC0, 0x1E}
	test.That(t, par.SetExtradata(extra), test.ShouldBeNil)
	test.That(t, par.Extradata(), test.ShouldResemble, extra)

	cp, err := NewCodecParameters()
	test.That(t, err, test.ShouldBeNil)
	defer cp.Close()
	test.That(t, cp.CopyFrom(par), test.ShouldBeNil)
	test.That(t, cp.CodecID(), test.ShouldEqual, CodecIDH264)
	test.That(t, cp.Extradata(), test.ShouldResemble, extra)

	audio, err := NewCodecParameters()
	test.That(t, err, test.ShouldBeNil)
	defer audio.Close()
	audio.SetCodecType(MediaTypeAudio)
	func() {
		defer func() {
			test.That(t, recover(), test.ShouldNotBeNil)
		}()
		audio.Dims()
	}()
}

func TestDecoderNotFound(t *testing.T) {
	par, err := NewCodecParameters()
	test.That(t, err, test.ShouldBeNil)
	defer par.Close()
	par.SetCodecID(CodecIDNone)

	_, err = par.NewDecoder(nil)
	test.That(t, errors.Is(err, ErrDecoderNotFound), test.ShouldBeTrue)

	_, ok := FindDecoderByName("no-such-decoder")
	test.That(t, ok, test.ShouldBeFalse)
}
