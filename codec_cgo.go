//go:build cgo

package ffbridge

/*
#include <stdlib.h>
#include "ffbridge.h"
*/
import "C"

import (
	"unsafe"

	"github.com/pkg/errors"
)

// Codec is a registered codec implementation.
type Codec struct {
	c *C.AVCodec
}

// FindDecoder returns the default decoder for id.
func (id CodecID) FindDecoder() (*Codec, bool) {
	c := C.avcodec_find_decoder(C.enum_AVCodecID(id))
	if c == nil {
		return nil, false
	}
	return &Codec{c: c}, true
}

// FindEncoder returns the default encoder for id.
func (id CodecID) FindEncoder() (*Codec, bool) {
	c := C.avcodec_find_encoder(C.enum_AVCodecID(id))
	if c == nil {
		return nil, false
	}
	return &Codec{c: c}, true
}

// FindDecoderByName looks a decoder up by its name, e.g. "h264".
func FindDecoderByName(name string) (*Codec, bool) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	c := C.avcodec_find_decoder_by_name(cname)
	if c == nil {
		return nil, false
	}
	return &Codec{c: c}, true
}

func (c *Codec) Name() string     { return C.GoString(c.c.name) }
func (c *Codec) LongName() string { return C.GoString(c.c.long_name) }
func (c *Codec) ID() CodecID      { return CodecID(c.c.id) }

// CodecContext is a view of an AVCodecContext. It is owned by a
// DecodeContext or EncodeContext.
type CodecContext struct {
	ctx *C.AVCodecContext
}

func (c *CodecContext) CodecID() CodecID         { return CodecID(c.ctx.codec_id) }
func (c *CodecContext) CodecType() MediaType     { return MediaType(c.ctx.codec_type) }
func (c *CodecContext) Width() int               { return int(c.ctx.width) }
func (c *CodecContext) Height() int              { return int(c.ctx.height) }
func (c *CodecContext) PixelFormat() PixelFormat { return PixelFormat(c.ctx.pix_fmt) }
func (c *CodecContext) TimeBase() Rational       { return rationalFromC(c.ctx.time_base) }

func (c *CodecContext) SetTimeBase(tb Rational) {
	c.ctx.time_base = tb.c()
}

// Params reads the video parameter bundle.
func (c *CodecContext) Params() VideoParameters {
	return VideoParameters{
		Width:             int(c.ctx.width),
		Height:            int(c.ctx.height),
		SampleAspectRatio: rationalFromC(c.ctx.sample_aspect_ratio),
		PixelFormat:       PixelFormat(c.ctx.pix_fmt),
		TimeBase:          rationalFromC(c.ctx.time_base),
	}
}

// SetParams writes the whole video parameter bundle.
func (c *CodecContext) SetParams(p VideoParameters) {
	c.ctx.width = C.int(p.Width)
	c.ctx.height = C.int(p.Height)
	c.ctx.sample_aspect_ratio = p.SampleAspectRatio.c()
	c.ctx.pix_fmt = C.enum_AVPixelFormat(p.PixelFormat)
	c.ctx.time_base = p.TimeBase.c()
}

// Log writes msg through the native logging facility with this context as
// the source, so callbacks see the codec's class name.
func (c *CodecContext) Log(level LogLevel, msg string) {
	logFrom(unsafe.Pointer(c.ctx), level, msg)
}

func allocCodecContext(codec *Codec) (*C.AVCodecContext, error) {
	ctx := C.avcodec_alloc_context3(codec.c)
	if ctx == nil {
		return nil, ErrNoMem
	}
	return ctx, nil
}

// EncodeContext owns an encoder.
type EncodeContext struct {
	codec *Codec
	ctx   *C.AVCodecContext
}

// NewEncodeContext allocates a context for codec. Set its parameters through
// Ctx, then Open it.
func NewEncodeContext(codec *Codec) (*EncodeContext, error) {
	ctx, err := allocCodecContext(codec)
	if err != nil {
		return nil, err
	}
	return &EncodeContext{codec: codec, ctx: ctx}, nil
}

func (e *EncodeContext) Ctx() *CodecContext {
	return &CodecContext{ctx: e.ctx}
}

// Open initialises the encoder. opts is left holding the options the
// encoder did not recognise.
func (e *EncodeContext) Open(opts *Dictionary) error {
	if err := errorFromC(C.avcodec_open2(e.ctx, e.codec.c, opts.ref())); err != nil {
		return errors.Wrapf(err, "open encoder %s", e.codec.Name())
	}
	return nil
}

// SendFrame queues a frame; nil starts draining.
func (e *EncodeContext) SendFrame(f *VideoFrame) error {
	var frame *C.AVFrame
	if f != nil {
		frame = f.frame
	}
	return errorFromC(C.avcodec_send_frame(e.ctx, frame))
}

// ReceivePacket fetches the next encoded packet. ErrAgain means more input
// is needed and ErrEOF that the encoder is drained.
func (e *EncodeContext) ReceivePacket(pkt *Packet) error {
	return errorFromC(C.avcodec_receive_packet(e.ctx, pkt.pkt))
}

// FillParameters copies the opened encoder's settings into par.
func (e *EncodeContext) FillParameters(par *CodecParameters) error {
	return errorFromC(C.avcodec_parameters_from_context(par.par, e.ctx))
}

func (e *EncodeContext) Close() error {
	if e != nil && e.ctx != nil {
		C.avcodec_free_context(&e.ctx)
	}
	return nil
}
