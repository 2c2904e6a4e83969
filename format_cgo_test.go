//go:build cgo

package ffbridge

import (
	"bytes"
	"io"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

// memWriteSeeker is an in-memory io.WriteSeeker.
type memWriteSeeker struct {
	buf []byte
	off int64
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	if end := m.off + int64(len(p)); end > int64(len(m.buf)) {
		m.buf = append(m.buf, make([]byte, end-int64(len(m.buf)))...)
	}
	n := copy(m.buf[m.off:], p)
	m.off += int64(n)
	return n, nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekCurrent:
		base = m.off
	case io.SeekEnd:
		base = int64(len(m.buf))
	}
	if base+offset < 0 {
		return 0, errors.New("negative position")
	}
	m.off = base + offset
	return m.off, nil
}

func TestDecodeWhence(t *testing.T) {
	tests := []struct {
		in    int
		want  Whence
		force bool
	}{
		{SeekSet, WhenceSet, false},
		{SeekCur, WhenceCur, false},
		{SeekEnd, WhenceEnd, false},
		{AVSeekSize, WhenceSize, false},
		{SeekSet | AVSeekForce, WhenceSet, true},
		{AVSeekSize | AVSeekForce, WhenceSize, true},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			w, force, err := decodeWhence(tt.in)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, w, test.ShouldEqual, tt.want)
			test.That(t, force, test.ShouldEqual, tt.force)
		})
	}

	_, _, err := decodeWhence(7)
	test.That(t, errors.Is(err, ErrInvalidArgument), test.ShouldBeTrue)
}

func TestSeekerSize(t *testing.T) {
	n, err := seekerSize(bytes.NewReader(make([]byte, 100)))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, int64(100))

	m := &memWriteSeeker{}
	m.Write(make([]byte, 40))
	m.Seek(10, io.SeekStart)
	n, err = seekerSize(m)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, int64(40))
	test.That(t, m.off, test.ShouldEqual, int64(10))
}

func TestNewIOContextValidation(t *testing.T) {
	_, err := NewIOContext(&bytes.Buffer{}, 0)
	test.That(t, errors.Is(err, ErrInvalidArgument), test.ShouldBeTrue)

	_, err = NewIOContext(struct{}{}, DefaultIOBufferSize)
	test.That(t, err, test.ShouldNotBeNil)

	ioc, err := NewIOContext(&bytes.Buffer{}, DefaultIOBufferSize)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ioc.Close(), test.ShouldBeNil)
}

func TestIOContextDoubleAttach(t *testing.T) {
	out, err := NewOutputFormatContext("nut", "")
	test.That(t, err, test.ShouldBeNil)
	defer out.Close()

	first, err := NewIOContext(&memWriteSeeker{}, DefaultIOBufferSize)
	test.That(t, err, test.ShouldBeNil)
	out.SetIOContext(first)

	second, err := NewIOContext(&memWriteSeeker{}, DefaultIOBufferSize)
	test.That(t, err, test.ShouldBeNil)
	defer second.Close()
	assertPanics(t, "already has an I/O context", func() { out.SetIOContext(second) })

	other, err := NewOutputFormatContext("nut", "")
	test.That(t, err, test.ShouldBeNil)
	defer other.Close()
	assertPanics(t, "already attached", func() { other.SetIOContext(first) })

	// Attached contexts belong to their format context.
	test.That(t, first.Close(), test.ShouldBeNil)
}

func TestOpenInputIOGarbage(t *testing.T) {
	ioc, err := NewBytesIOContext(bytes.Repeat([]byte{0x5A}, 64))
	test.That(t, err, test.ShouldBeNil)
	_, err = OpenInputIO(ioc, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

// TestRawVideoRoundTrip encodes, muxes into memory, demuxes, decodes and
// scales a few frames of raw video.
func TestRawVideoRoundTrip(t *testing.T) {
	const frames = 3
	dims := ImageDimensions{Width: 16, Height: 16, PixelFormat: PixelFormatRGB24}
	tb := Rational{Num: 1, Den: 25}

	codec, ok := CodecIDRawVideo.FindEncoder()
	if !ok {
		t.Skip("libavcodec built without the rawvideo encoder")
	}
	enc, err := NewEncodeContext(codec)
	test.That(t, err, test.ShouldBeNil)
	defer enc.Close()
	enc.Ctx().SetParams(VideoParameters{
		Width:             dims.Width,
		Height:            dims.Height,
		PixelFormat:       dims.PixelFormat,
		TimeBase:          tb,
		SampleAspectRatio: Rational{Num: 1, Den: 1},
	})
	test.That(t, enc.Open(nil), test.ShouldBeNil)
	test.That(t, enc.Ctx().Params().Dims(), test.ShouldResemble, dims)

	sink := &memWriteSeeker{}
	out, err := NewOutputFormatContext("nut", "")
	test.That(t, err, test.ShouldBeNil)
	ioc, err := NewIOContext(sink, DefaultIOBufferSize)
	test.That(t, err, test.ShouldBeNil)
	out.SetIOContext(ioc)

	par, err := NewCodecParameters()
	test.That(t, err, test.ShouldBeNil)
	defer par.Close()
	test.That(t, enc.FillParameters(par), test.ShouldBeNil)
	st, err := out.NewStream(par)
	test.That(t, err, test.ShouldBeNil)
	st.SetTimeBase(tb)
	test.That(t, out.WriteHeader(nil), test.ShouldBeNil)
	muxTB := st.TimeBase()

	frame, err := NewOwnedVideoFrame(dims)
	test.That(t, err, test.ShouldBeNil)
	defer frame.Close()
	pkt, err := NewPacket()
	test.That(t, err, test.ShouldBeNil)
	defer pkt.Close()

	for i := 0; i < frames; i++ {
		plane := frame.Plane(0)
		for j := range plane.Data {
			plane.Data[j] = byte(i * 60)
		}
		frame.SetPTS(int64(i))
		test.That(t, enc.SendFrame(frame), test.ShouldBeNil)
		test.That(t, enc.ReceivePacket(pkt), test.ShouldBeNil)
		pkt.SetStreamIndex(st.Index())
		pkt.RescaleTS(tb, muxTB)
		test.That(t, out.WritePacket(pkt), test.ShouldBeNil)
	}
	test.That(t, enc.SendFrame(nil), test.ShouldBeNil)
	test.That(t, enc.ReceivePacket(pkt), test.ShouldEqual, ErrEOF)
	test.That(t, out.WriteTrailer(), test.ShouldBeNil)
	test.That(t, out.Close(), test.ShouldBeNil)
	test.That(t, len(sink.buf) > frames*dims.Width*dims.Height*3, test.ShouldBeTrue)

	rd, err := NewBytesIOContext(sink.buf)
	test.That(t, err, test.ShouldBeNil)
	in, err := OpenInputIO(rd, nil)
	test.That(t, err, test.ShouldBeNil)
	defer in.Close()
	test.That(t, in.FindStreamInfo(), test.ShouldBeNil)
	test.That(t, in.FormatName(), test.ShouldEqual, "nut")
	test.That(t, in.Streams(), test.ShouldHaveLength, 1)
	test.That(t, in.Stream(1), test.ShouldBeNil)

	inSt := in.Stream(0)
	inPar := inSt.CodecParameters()
	test.That(t, inPar.CodecID(), test.ShouldEqual, CodecIDRawVideo)
	test.That(t, inPar.Dims(), test.ShouldResemble, dims)

	dec, err := inPar.NewDecoder(nil)
	test.That(t, err, test.ShouldBeNil)
	defer dec.Close()
	decoded, err := NewVideoFrame()
	test.That(t, err, test.ShouldBeNil)
	defer decoded.Close()

	gray := ImageDimensions{Width: 4, Height: 4, PixelFormat: PixelFormatGray8}
	scaler, err := NewScaler(dims, gray)
	test.That(t, err, test.ShouldBeNil)
	defer scaler.Close()
	small, err := NewOwnedVideoFrame(gray)
	test.That(t, err, test.ShouldBeNil)
	defer small.Close()

	var units []AccessUnit
	for {
		p, err := in.ReadPacket()
		if errors.Is(err, ErrEOF) {
			break
		}
		test.That(t, err, test.ShouldBeNil)
		units = append(units, p.AccessUnit(inPar.CodecID().String(), inSt.TimeBase()))

		decoded.Unref()
		got, err := dec.DecodeVideo(p, decoded)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldBeTrue)
		test.That(t, decoded.Dims(), test.ShouldResemble, dims)
		test.That(t, scaler.Scale(decoded, small), test.ShouldBeNil)
	}
	test.That(t, units, test.ShouldHaveLength, frames)
	for i, au := range units {
		test.That(t, au.Codec, test.ShouldEqual, "rawvideo")
		test.That(t, au.Key, test.ShouldBeTrue)
		test.That(t, au.Data, test.ShouldHaveLength, dims.Width*dims.Height*3)
		test.That(t, au.Data[0], test.ShouldEqual, byte(i*60))
		ts, ok := au.Timestamp()
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, ts, test.ShouldEqual, tb.Duration(int64(i)))
	}
	test.That(t, rd.Err(), test.ShouldBeNil)
}
