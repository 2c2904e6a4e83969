package ffbridge

import (
	"fmt"
	"math"
	"math/big"
	"time"
)

// MediaType identifies the kind of an elementary stream (AVMediaType).
type MediaType int

// CodecID identifies a codec (AVCodecID).
type CodecID int

// PixelFormat identifies a pixel layout (AVPixelFormat).
type PixelFormat int

// Rational mirrors AVRational. The layout is stable across FFmpeg releases.
type Rational struct {
	Num int
	Den int
}

// NewRational returns num/den.
func NewRational(num, den int) Rational {
	return Rational{Num: num, Den: den}
}

// Valid reports whether the denominator is non-zero.
func (r Rational) Valid() bool {
	return r.Den != 0
}

// Float64 returns the value as a float, or 0 for an invalid rational.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Invert returns den/num.
func (r Rational) Invert() Rational {
	return Rational{Num: r.Den, Den: r.Num}
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// rescaleOverflow is what Rescale returns for a result outside int64, the
// same INT64_MIN av_rescale_q reports.
const rescaleOverflow = math.MinInt64

// Rescale converts v from units of r into units of to, rounding half away
// from zero like av_rescale_q. Invalid rationals yield 0, and a result that
// does not fit in int64 yields math.MinInt64.
func (r Rational) Rescale(v int64, to Rational) int64 {
	if r.Den == 0 || to.Num == 0 {
		return 0
	}
	num := new(big.Int).SetInt64(v)
	num.Mul(num, big.NewInt(int64(r.Num)))
	num.Mul(num, big.NewInt(int64(to.Den)))
	den := new(big.Int).Mul(big.NewInt(int64(r.Den)), big.NewInt(int64(to.Num)))
	if den.Sign() < 0 {
		num.Neg(num)
		den.Neg(den)
	}
	neg := num.Sign() < 0
	num.Abs(num)
	num.Add(num, new(big.Int).Rsh(den, 1))
	num.Quo(num, den)
	if neg {
		num.Neg(num)
	}
	if !num.IsInt64() {
		return rescaleOverflow
	}
	return num.Int64()
}

// Duration converts v ticks of r into a time.Duration.
func (r Rational) Duration(v int64) time.Duration {
	return time.Duration(r.Rescale(v, Rational{Num: 1, Den: int(time.Second)}))
}

// ImageDimensions is the {width, height, pixel format} bundle shared by codec
// parameters, frames and scalers.
type ImageDimensions struct {
	Width       int
	Height      int
	PixelFormat PixelFormat
}

// VideoParameters is the bundle moved in and out of a codec context in one call.
type VideoParameters struct {
	Width             int
	Height            int
	SampleAspectRatio Rational
	PixelFormat       PixelFormat
	TimeBase          Rational
}

// Dims returns the dimensions part of the parameters.
func (p VideoParameters) Dims() ImageDimensions {
	return ImageDimensions{Width: p.Width, Height: p.Height, PixelFormat: p.PixelFormat}
}

// Whence is the decoded mode of an I/O seek request.
type Whence int

const (
	// WhenceSet positions relative to the start of the stream.
	WhenceSet Whence = iota
	// WhenceCur positions relative to the current offset.
	WhenceCur
	// WhenceEnd positions relative to the end of the stream.
	WhenceEnd
	// WhenceSize asks for the stream size without moving.
	WhenceSize
)

func (w Whence) String() string {
	switch w {
	case WhenceSet:
		return "set"
	case WhenceCur:
		return "cur"
	case WhenceEnd:
		return "end"
	case WhenceSize:
		return "size"
	default:
		return "unknown"
	}
}

// AccessUnit is a Go-owned copy of one demuxed packet, detached from the
// native packet it was read from. The RTP, WebRTC and RTMP sinks consume it.
type AccessUnit struct {
	// Codec is the native codec name, e.g. "h264" or "aac".
	Codec       string
	StreamIndex int
	Data        []byte
	PTS         int64
	HasPTS      bool
	DTS         int64
	HasDTS      bool
	Duration    int64
	Key         bool
	TimeBase    Rational
}

// Timestamp returns the presentation time, falling back to DTS when the
// packet carries no PTS. ok is false when it carries neither.
func (au *AccessUnit) Timestamp() (ts time.Duration, ok bool) {
	v, ok := au.presentationTS()
	if !ok {
		return 0, false
	}
	return au.TimeBase.Duration(v), true
}

func (au *AccessUnit) presentationTS() (int64, bool) {
	switch {
	case au.HasPTS:
		return au.PTS, true
	case au.HasDTS:
		return au.DTS, true
	}
	return 0, false
}

func (au *AccessUnit) decodeTS() (int64, bool) {
	switch {
	case au.HasDTS:
		return au.DTS, true
	case au.HasPTS:
		return au.PTS, true
	}
	return 0, false
}

// DurationTime returns the packet duration as a time.Duration.
func (au *AccessUnit) DurationTime() time.Duration {
	return au.TimeBase.Duration(au.Duration)
}
