//go:build cgo

package ffbridge

/*
#include "ffbridge.h"
*/
import "C"

import (
	"strconv"
	"unsafe"
)

// Error is a negative native error code (AVERROR).
type Error int

// Native error codes.
var (
	ErrDecoderNotFound = Error(C.ffbridge_averror_decoder_not_found)
	ErrInvalidData     = Error(C.ffbridge_averror_invalid_data)
	ErrEOF             = Error(C.ffbridge_averror_eof)
	ErrNoMem           = Error(C.ffbridge_averror_enomem)
	ErrNotImplemented  = Error(C.ffbridge_averror_enosys)
	ErrInvalidArgument = Error(C.ffbridge_averror_einval)
	ErrAgain           = Error(C.ffbridge_averror_eagain)
	ErrUnknown         = Error(C.ffbridge_averror_unknown)
)

// Code returns the raw native code.
func (e Error) Code() int { return int(e) }

func (e Error) Error() string {
	var buf [64]C.char // AV_ERROR_MAX_STRING_SIZE
	if C.av_strerror(C.int(e), &buf[0], C.size_t(len(buf))) < 0 {
		return "ffmpeg error " + strconv.Itoa(int(e))
	}
	return C.GoString((*C.char)(unsafe.Pointer(&buf[0])))
}

// AsError returns nil for non-negative codes and an Error otherwise.
func AsError(code int) error {
	if code >= 0 {
		return nil
	}
	return Error(code)
}

func errorFromC(code C.int) error {
	return AsError(int(code))
}
