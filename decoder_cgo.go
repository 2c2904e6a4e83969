//go:build cgo

package ffbridge

/*
#include "ffbridge.h"
*/
import "C"

import (
	"github.com/pkg/errors"
)

// DecodeContext owns a decoder opened from a stream's codec parameters.
type DecodeContext struct {
	codec *Codec
	ctx   *C.AVCodecContext
}

// NewDecoder opens the default decoder for the parameters. It returns
// ErrDecoderNotFound when the library has no decoder for the codec.
func (p *CodecParameters) NewDecoder(opts *Dictionary) (*DecodeContext, error) {
	codec, ok := p.CodecID().FindDecoder()
	if !ok {
		return nil, errors.Wrapf(ErrDecoderNotFound, "codec %s", p.CodecID())
	}
	return NewDecodeContext(codec, p, opts)
}

// NewDecodeContext opens codec, initialised from par when it is not nil.
func NewDecodeContext(codec *Codec, par *CodecParameters, opts *Dictionary) (*DecodeContext, error) {
	ctx, err := allocCodecContext(codec)
	if err != nil {
		return nil, err
	}
	d := &DecodeContext{codec: codec, ctx: ctx}
	if par != nil {
		if err := errorFromC(C.avcodec_parameters_to_context(ctx, par.par)); err != nil {
			d.Close()
			return nil, errors.Wrap(err, "copy codec parameters")
		}
	}
	if err := errorFromC(C.avcodec_open2(ctx, codec.c, opts.ref())); err != nil {
		d.Close()
		return nil, errors.Wrapf(err, "open decoder %s", codec.Name())
	}
	return d, nil
}

func (d *DecodeContext) Ctx() *CodecContext {
	return &CodecContext{ctx: d.ctx}
}

func (d *DecodeContext) Codec() *Codec {
	return d.codec
}

// SendPacket queues a packet; nil starts draining.
func (d *DecodeContext) SendPacket(pkt *Packet) error {
	var p *C.AVPacket
	if pkt != nil {
		p = pkt.pkt
	}
	return errorFromC(C.avcodec_send_packet(d.ctx, p))
}

// ReceiveFrame fetches the next decoded frame. ErrAgain means more input is
// needed and ErrEOF that the decoder is drained.
func (d *DecodeContext) ReceiveFrame(f *VideoFrame) error {
	return errorFromC(C.avcodec_receive_frame(d.ctx, f.frame))
}

// DecodeVideo feeds pkt and tries to fetch one picture into frame. got is
// false when the decoder needs more input first. A packet refused because
// output was pending is dropped; callers that can see several pictures per
// packet should drive SendPacket and ReceiveFrame themselves.
func (d *DecodeContext) DecodeVideo(pkt *Packet, frame *VideoFrame) (got bool, err error) {
	if err := d.SendPacket(pkt); err != nil && !errors.Is(err, ErrAgain) {
		return false, err
	}
	switch err := d.ReceiveFrame(frame); {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrAgain), errors.Is(err, ErrEOF):
		return false, nil
	default:
		return false, err
	}
}

// Flush discards buffered frames, as after a seek.
func (d *DecodeContext) Flush() {
	C.avcodec_flush_buffers(d.ctx)
}

func (d *DecodeContext) Close() error {
	if d != nil && d.ctx != nil {
		C.avcodec_free_context(&d.ctx)
	}
	return nil
}
