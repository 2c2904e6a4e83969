//go:build cgo

package ffbridge

/*
#include "ffbridge.h"
*/
import "C"

import (
	"github.com/pkg/errors"
)

// Scaler converts pictures between sizes and pixel formats with bilinear
// filtering.
type Scaler struct {
	sws      *C.struct_SwsContext
	src, dst ImageDimensions
}

// NewScaler returns a scaler from src to dst. It returns ErrUnknown when
// swscale does not support the conversion.
func NewScaler(src, dst ImageDimensions) (*Scaler, error) {
	sws := C.sws_getContext(
		C.int(src.Width), C.int(src.Height), C.enum_AVPixelFormat(src.PixelFormat),
		C.int(dst.Width), C.int(dst.Height), C.enum_AVPixelFormat(dst.PixelFormat),
		C.int(SwsBilinear), nil, nil, nil)
	if sws == nil {
		return nil, errors.Wrapf(ErrUnknown, "scale %s to %s", src, dst)
	}
	return &Scaler{sws: sws, src: src, dst: dst}, nil
}

func (s *Scaler) Src() ImageDimensions { return s.src }
func (s *Scaler) Dst() ImageDimensions { return s.dst }

// Scale converts src into dst. Both frames must match the dimensions the
// scaler was made for and dst must have a picture buffer.
func (s *Scaler) Scale(src, dst *VideoFrame) error {
	if d := src.Dims(); d != s.src {
		return errors.Errorf("source frame is %s, scaler expects %s", d, s.src)
	}
	if d := dst.Dims(); d != s.dst {
		return errors.Errorf("destination frame is %s, scaler expects %s", d, s.dst)
	}
	ret := C.sws_scale(s.sws,
		&src.frame.data[0], &src.frame.linesize[0], 0, src.frame.height,
		&dst.frame.data[0], &dst.frame.linesize[0])
	if ret < 0 {
		return Error(ret)
	}
	dst.frame.pts = src.frame.pts
	return nil
}

func (s *Scaler) Close() error {
	if s != nil && s.sws != nil {
		C.sws_freeContext(s.sws)
		s.sws = nil
	}
	return nil
}
