//go:build cgo

package ffbridge

/*
#include "ffbridge.h"
#include <libavutil/pixdesc.h>
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// VideoFrame is an AVFrame holding one decoded or to-be-encoded picture.
type VideoFrame struct {
	frame *C.AVFrame
	// owned is set when data[0] came from av_image_alloc and must be freed
	// separately from the frame.
	owned bool
}

// FrameInfo is a snapshot of a frame's picture fields.
type FrameInfo struct {
	Dims     ImageDimensions
	Data     [8]unsafe.Pointer
	Linesize [8]int
	PTS      int64
}

// Plane is a view of one picture plane.
type Plane struct {
	Data     []byte
	Linesize int
	// Width is in bytes.
	Width  int
	Height int
}

// NewVideoFrame allocates an empty frame, e.g. for a decoder to fill.
func NewVideoFrame() (*VideoFrame, error) {
	f := C.av_frame_alloc()
	if f == nil {
		return nil, ErrNoMem
	}
	return &VideoFrame{frame: f}, nil
}

// NewOwnedVideoFrame allocates a frame with a picture buffer for d.
// Allocation failures are returned as ErrNoMem or ErrInvalidArgument.
func NewOwnedVideoFrame(d ImageDimensions) (*VideoFrame, error) {
	f, err := NewVideoFrame()
	if err != nil {
		return nil, err
	}
	if err := f.AllocImage(d); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// AllocImage gives the frame a picture buffer aligned to 32 bytes. It
// panics if the frame already has one.
func (f *VideoFrame) AllocImage(d ImageDimensions) error {
	if f.frame.data[0] != nil {
		panic("ffbridge: frame already has a picture buffer")
	}
	ret := C.av_image_alloc(&f.frame.data[0], &f.frame.linesize[0],
		C.int(d.Width), C.int(d.Height), C.enum_AVPixelFormat(d.PixelFormat), imageAlignment)
	if ret < 0 {
		return Error(ret)
	}
	f.frame.width = C.int(d.Width)
	f.frame.height = C.int(d.Height)
	f.frame.format = C.int(d.PixelFormat)
	f.owned = true
	return nil
}

func (f *VideoFrame) Close() error {
	if f == nil || f.frame == nil {
		return nil
	}
	if f.owned {
		C.av_freep(unsafe.Pointer(&f.frame.data[0]))
		f.owned = false
	}
	C.av_frame_free(&f.frame)
	return nil
}

// Unref releases the reference-counted buffers a decoder attached.
func (f *VideoFrame) Unref() {
	if f.owned {
		panic("ffbridge: Unref on a frame with an owned picture buffer")
	}
	C.av_frame_unref(f.frame)
}

func (f *VideoFrame) Dims() ImageDimensions {
	return ImageDimensions{
		Width:       int(f.frame.width),
		Height:      int(f.frame.height),
		PixelFormat: PixelFormat(f.frame.format),
	}
}

func (f *VideoFrame) PTS() int64 {
	return int64(f.frame.pts)
}

func (f *VideoFrame) SetPTS(pts int64) {
	f.frame.pts = C.int64_t(pts)
}

func (f *VideoFrame) Info() FrameInfo {
	info := FrameInfo{Dims: f.Dims(), PTS: f.PTS()}
	for i := 0; i < maxPlanes && i < len(info.Data); i++ {
		info.Data[i] = unsafe.Pointer(f.frame.data[i])
		info.Linesize[i] = int(f.frame.linesize[i])
	}
	return info
}

// NumPlanes returns the plane count of the frame's pixel format.
func (f *VideoFrame) NumPlanes() int {
	n := int(C.av_pix_fmt_count_planes(C.enum_AVPixelFormat(f.frame.format)))
	if n < 0 {
		return 0
	}
	return n
}

// Plane returns a view of plane i, valid while the frame holds its buffer.
// It panics if i is out of range for the pixel format.
func (f *VideoFrame) Plane(i int) Plane {
	if i < 0 || i >= f.NumPlanes() {
		panic(fmt.Sprintf("ffbridge: plane %d out of range for %s", i, PixelFormat(f.frame.format)))
	}
	pixfmt := C.enum_AVPixelFormat(f.frame.format)
	height := int(f.frame.height)
	if i == 1 || i == 2 {
		desc := C.av_pix_fmt_desc_get(pixfmt)
		shift := uint(desc.log2_chroma_h)
		height = -((-height) >> shift)
	}
	p := Plane{
		Linesize: int(f.frame.linesize[i]),
		Width:    int(C.av_image_get_linesize(pixfmt, f.frame.width, C.int(i))),
		Height:   height,
	}
	if f.frame.data[i] != nil && p.Linesize > 0 {
		p.Data = unsafe.Slice((*byte)(unsafe.Pointer(f.frame.data[i])), p.Linesize*p.Height)
	}
	return p
}
