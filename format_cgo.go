//go:build cgo

package ffbridge

/*
#include <stdlib.h>
#include "ffbridge.h"
*/
import "C"

import (
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// InputFormatContext is an open demuxer.
type InputFormatContext struct {
	ctx *C.AVFormatContext
	io  *IOContext
	pkt *Packet
}

// OpenInput opens url with the demuxer the library probes for.
func OpenInput(url string, opts *Dictionary) (*InputFormatContext, error) {
	curl := C.CString(url)
	defer C.free(unsafe.Pointer(curl))
	var ctx *C.AVFormatContext
	if err := errorFromC(C.avformat_open_input(&ctx, curl, nil, opts.ref())); err != nil {
		return nil, errors.Wrapf(err, "open input %q", url)
	}
	return newInputFormatContext(ctx, nil)
}

// OpenInputIO attaches ioc and opens the stream it reads. ioc belongs to
// the returned context, or is freed when opening fails.
func OpenInputIO(ioc *IOContext, opts *Dictionary) (*InputFormatContext, error) {
	ctx := C.avformat_alloc_context()
	if ctx == nil {
		return nil, ErrNoMem
	}
	ioc.attach()
	ctx.pb = ioc.pb
	empty := C.CString("")
	defer C.free(unsafe.Pointer(empty))
	// On failure avformat_open_input frees ctx but leaves custom I/O alone.
	if err := errorFromC(C.avformat_open_input(&ctx, empty, nil, opts.ref())); err != nil {
		ioc.release()
		return nil, errors.Wrap(err, "open input from I/O context")
	}
	return newInputFormatContext(ctx, ioc)
}

func newInputFormatContext(ctx *C.AVFormatContext, ioc *IOContext) (*InputFormatContext, error) {
	in := &InputFormatContext{ctx: ctx, io: ioc}
	pkt, err := NewPacket()
	if err != nil {
		in.Close()
		return nil, err
	}
	in.pkt = pkt
	return in, nil
}

// FindStreamInfo reads ahead to fill in stream parameters the container
// headers leave out.
func (in *InputFormatContext) FindStreamInfo() error {
	if err := errorFromC(C.avformat_find_stream_info(in.ctx, nil)); err != nil {
		return errors.Wrap(err, "find stream info")
	}
	return nil
}

// ReadPacket returns the next packet. The packet is reused by the next call
// and by Close; copy out whatever must outlive it. ErrEOF marks the end.
func (in *InputFormatContext) ReadPacket() (*Packet, error) {
	in.pkt.Unref()
	if err := errorFromC(C.av_read_frame(in.ctx, in.pkt.pkt)); err != nil {
		return nil, err
	}
	return in.pkt, nil
}

// Streams returns views of the streams found so far.
func (in *InputFormatContext) Streams() []*Stream {
	return streamsOf(in.ctx)
}

// Stream returns stream i, or nil.
func (in *InputFormatContext) Stream(i int) *Stream {
	streams := in.Streams()
	if i < 0 || i >= len(streams) {
		return nil
	}
	return streams[i]
}

// FormatName is the short name of the demuxer, e.g. "mov,mp4,m4a,3gp,3g2,mj2".
func (in *InputFormatContext) FormatName() string {
	if in.ctx.iformat == nil {
		return ""
	}
	return C.GoString(in.ctx.iformat.name)
}

// Duration is zero when the container does not know it.
func (in *InputFormatContext) Duration() time.Duration {
	d := int64(in.ctx.duration)
	if d == NoPTSValue || d <= 0 {
		return 0
	}
	return Rational{Num: 1, Den: C.AV_TIME_BASE}.Duration(d)
}

// Log writes msg with the demuxer as the source.
func (in *InputFormatContext) Log(level LogLevel, msg string) {
	logFrom(unsafe.Pointer(in.ctx), level, msg)
}

func (in *InputFormatContext) Close() error {
	if in == nil || in.ctx == nil {
		return nil
	}
	C.avformat_close_input(&in.ctx)
	var err error
	if in.pkt != nil {
		err = multierr.Append(err, in.pkt.Close())
	}
	if in.io != nil {
		in.io.release()
		err = multierr.Append(err, in.io.Err())
		in.io = nil
	}
	return err
}

// OutputFormatContext is a muxer.
type OutputFormatContext struct {
	ctx    *C.AVFormatContext
	io     *IOContext
	ownsPB bool
}

// NewOutputFormatContext picks the muxer by short name, or from url's
// extension when format is empty.
func NewOutputFormatContext(format, url string) (*OutputFormatContext, error) {
	var cformat, curl *C.char
	if format != "" {
		cformat = C.CString(format)
		defer C.free(unsafe.Pointer(cformat))
	}
	if url != "" {
		curl = C.CString(url)
		defer C.free(unsafe.Pointer(curl))
	}
	var ctx *C.AVFormatContext
	if err := errorFromC(C.avformat_alloc_output_context2(&ctx, nil, cformat, curl)); err != nil {
		return nil, errors.Wrapf(err, "output format %q for %q", format, url)
	}
	return &OutputFormatContext{ctx: ctx}, nil
}

// OpenWrite opens url for writing with the library's own I/O. Muxers that
// do no file I/O need nothing opened and OpenWrite returns nil.
func (out *OutputFormatContext) OpenWrite(url string) error {
	if out.hasIO() {
		panic("ffbridge: output format context already has an I/O context")
	}
	if out.ctx.oformat.flags&C.AVFMT_NOFILE != 0 {
		return nil
	}
	curl := C.CString(url)
	defer C.free(unsafe.Pointer(curl))
	if err := errorFromC(C.avio_open(&out.ctx.pb, curl, C.AVIO_FLAG_WRITE)); err != nil {
		return errors.Wrapf(err, "open %q", url)
	}
	out.ownsPB = true
	return nil
}

// SetIOContext attaches ioc, which then belongs to out. Attaching a second
// I/O context, or one already attached elsewhere, panics.
func (out *OutputFormatContext) SetIOContext(ioc *IOContext) {
	if out.hasIO() {
		panic("ffbridge: output format context already has an I/O context")
	}
	ioc.attach()
	out.io = ioc
	out.ctx.pb = ioc.pb
	out.ctx.flags |= C.AVFMT_FLAG_CUSTOM_IO
}

func (out *OutputFormatContext) hasIO() bool {
	return out.io != nil || out.ctx.pb != nil
}

// NewStream adds a stream, copying par into it when par is not nil.
func (out *OutputFormatContext) NewStream(par *CodecParameters) (*Stream, error) {
	st := C.avformat_new_stream(out.ctx, nil)
	if st == nil {
		return nil, ErrNoMem
	}
	if par != nil {
		if err := errorFromC(C.avcodec_parameters_copy(st.codecpar, par.par)); err != nil {
			return nil, errors.Wrap(err, "copy codec parameters")
		}
		// Let the muxer choose its own tag for the codec.
		st.codecpar.codec_tag = 0
	}
	return &Stream{s: st}, nil
}

// NewVideoStream adds a video stream for codec with the given picture size
// and time base.
func (out *OutputFormatContext) NewVideoStream(codec CodecID, dims ImageDimensions, tb Rational) (*Stream, error) {
	st, err := out.NewStream(nil)
	if err != nil {
		return nil, err
	}
	par := st.CodecParameters()
	par.SetCodecID(codec)
	par.SetDims(dims)
	st.SetTimeBase(tb)
	return st, nil
}

func (out *OutputFormatContext) Streams() []*Stream {
	return streamsOf(out.ctx)
}

// WriteHeader writes the container header. Stream time bases may be changed
// by the muxer; read them back before rescaling packets.
func (out *OutputFormatContext) WriteHeader(opts *Dictionary) error {
	if err := errorFromC(C.avformat_write_header(out.ctx, opts.ref())); err != nil {
		return errors.Wrap(err, "write header")
	}
	return nil
}

// WritePacket interleaves pkt into the output. Timestamps must be in the
// stream's time base. The packet's data reference is taken over by the muxer.
func (out *OutputFormatContext) WritePacket(pkt *Packet) error {
	return errorFromC(C.av_interleaved_write_frame(out.ctx, pkt.pkt))
}

func (out *OutputFormatContext) WriteTrailer() error {
	if err := errorFromC(C.av_write_trailer(out.ctx)); err != nil {
		return errors.Wrap(err, "write trailer")
	}
	return nil
}

// Log writes msg with the muxer as the source.
func (out *OutputFormatContext) Log(level LogLevel, msg string) {
	logFrom(unsafe.Pointer(out.ctx), level, msg)
}

func (out *OutputFormatContext) Close() error {
	if out == nil || out.ctx == nil {
		return nil
	}
	var err error
	switch {
	case out.ownsPB:
		err = errorFromC(C.avio_closep(&out.ctx.pb))
	case out.io != nil:
		out.ctx.pb = nil
		out.io.release()
		err = out.io.Err()
		out.io = nil
	}
	C.avformat_free_context(out.ctx)
	out.ctx = nil
	return err
}

func streamsOf(ctx *C.AVFormatContext) []*Stream {
	n := int(ctx.nb_streams)
	if n == 0 {
		return nil
	}
	raw := unsafe.Slice(ctx.streams, n)
	streams := make([]*Stream, n)
	for i, s := range raw {
		streams[i] = &Stream{s: s}
	}
	return streams
}
