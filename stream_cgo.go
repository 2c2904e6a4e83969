//go:build cgo

package ffbridge

/*
#include <string.h>
#include "ffbridge.h"
*/
import "C"

import (
	"unsafe"
)

// Stream is a view of an AVStream, valid while its format context is open.
type Stream struct {
	s *C.AVStream
}

func (s *Stream) Index() int {
	return int(s.s.index)
}

// Duration is in TimeBase units, or NoPTSValue when unknown.
func (s *Stream) Duration() int64 {
	return int64(s.s.duration)
}

func (s *Stream) TimeBase() Rational {
	return rationalFromC(s.s.time_base)
}

func (s *Stream) SetTimeBase(tb Rational) {
	s.s.time_base = tb.c()
}

// CodecParameters returns a view of the stream's codec parameters.
func (s *Stream) CodecParameters() *CodecParameters {
	return &CodecParameters{par: s.s.codecpar}
}

// CodecParameters is an AVCodecParameters, either borrowed from a stream or
// owned when made with NewCodecParameters.
type CodecParameters struct {
	par   *C.AVCodecParameters
	owned bool
}

// NewCodecParameters allocates empty parameters.
func NewCodecParameters() (*CodecParameters, error) {
	par := C.avcodec_parameters_alloc()
	if par == nil {
		return nil, ErrNoMem
	}
	return &CodecParameters{par: par, owned: true}, nil
}

// Close frees owned parameters. It is a no-op for borrowed ones.
func (p *CodecParameters) Close() error {
	if p != nil && p.owned && p.par != nil {
		C.avcodec_parameters_free(&p.par)
	}
	return nil
}

func (p *CodecParameters) CodecID() CodecID {
	return CodecID(p.par.codec_id)
}

func (p *CodecParameters) SetCodecID(id CodecID) {
	p.par.codec_id = C.enum_AVCodecID(id)
}

func (p *CodecParameters) CodecType() MediaType {
	return MediaType(p.par.codec_type)
}

func (p *CodecParameters) SetCodecType(t MediaType) {
	p.par.codec_type = C.enum_AVMediaType(t)
}

// Dims returns the picture dimensions. It panics for non-video parameters.
func (p *CodecParameters) Dims() ImageDimensions {
	if t := p.CodecType(); t != MediaTypeVideo {
		panic("ffbridge: Dims on " + t.String() + " codec parameters")
	}
	return ImageDimensions{
		Width:       int(p.par.width),
		Height:      int(p.par.height),
		PixelFormat: PixelFormat(p.par.format),
	}
}

// SetDims sets the picture dimensions and marks the parameters as video.
func (p *CodecParameters) SetDims(d ImageDimensions) {
	p.par.codec_type = C.AVMEDIA_TYPE_VIDEO
	p.par.width = C.int(d.Width)
	p.par.height = C.int(d.Height)
	p.par.format = C.int(d.PixelFormat)
}

// SampleRate is zero for non-audio parameters.
func (p *CodecParameters) SampleRate() int {
	return int(p.par.sample_rate)
}

// Extradata is a view of the codec's global header (avcC for H.264 in MP4),
// or nil.
func (p *CodecParameters) Extradata() []byte {
	if p.par.extradata == nil || p.par.extradata_size <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p.par.extradata)), int(p.par.extradata_size))
}

// SetExtradata replaces the global header with a copy of b.
func (p *CodecParameters) SetExtradata(b []byte) error {
	C.av_freep(unsafe.Pointer(&p.par.extradata))
	p.par.extradata_size = 0
	if len(b) == 0 {
		return nil
	}
	buf := C.av_mallocz(C.size_t(len(b) + C.AV_INPUT_BUFFER_PADDING_SIZE))
	if buf == nil {
		return ErrNoMem
	}
	C.memcpy(buf, unsafe.Pointer(&b[0]), C.size_t(len(b)))
	p.par.extradata = (*C.uint8_t)(buf)
	p.par.extradata_size = C.int(len(b))
	return nil
}

// CopyFrom deep-copies src into p.
func (p *CodecParameters) CopyFrom(src *CodecParameters) error {
	return errorFromC(C.avcodec_parameters_copy(p.par, src.par))
}
