//go:build cgo

package ffbridge

/*
#include "ffbridge.h"
*/
import "C"

import (
	"bytes"
	"io"
	"unsafe"

	pointer "github.com/mattn/go-pointer"
	"github.com/pkg/errors"
)

// DefaultIOBufferSize is the buffer size NewBytesIOContext uses.
const DefaultIOBufferSize = 32 * 1024

// IOContext is an AVIOContext backed by Go I/O. Once attached to a format
// context it belongs to that context and is freed with it.
type IOContext struct {
	pb     *C.AVIOContext
	handle unsafe.Pointer

	r io.Reader
	w io.Writer
	s io.Seeker

	attached bool
	err      error
}

// NewIOContext wraps rw, which must implement at least one of io.Reader and
// io.Writer. The context is seekable when rw is also an io.Seeker.
func NewIOContext(rw interface{}, bufSize int) (*IOContext, error) {
	if bufSize <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "buffer size %d", bufSize)
	}
	c := &IOContext{}
	c.r, _ = rw.(io.Reader)
	c.w, _ = rw.(io.Writer)
	c.s, _ = rw.(io.Seeker)
	if c.r == nil && c.w == nil {
		return nil, errors.Errorf("%T is neither an io.Reader nor an io.Writer", rw)
	}

	c.handle = pointer.Save(c)
	c.pb = C.ffbridge_avio_alloc(C.int(bufSize), cbool(c.w != nil), c.handle,
		cbool(c.r != nil), cbool(c.w != nil), cbool(c.s != nil))
	if c.pb == nil {
		pointer.Unref(c.handle)
		return nil, ErrNoMem
	}
	return c, nil
}

// NewBytesIOContext is a read-only, seekable, unbuffered view of b.
func NewBytesIOContext(b []byte) (*IOContext, error) {
	c, err := NewIOContext(bytes.NewReader(b), DefaultIOBufferSize)
	if err != nil {
		return nil, err
	}
	c.SetDirect(true)
	return c, nil
}

// SetDirect makes the context bypass its buffer where possible.
func (c *IOContext) SetDirect(direct bool) {
	c.pb.direct = cbool(direct)
}

// Err returns the last error reported by the wrapped Go I/O, other than
// io.EOF.
func (c *IOContext) Err() error {
	return c.err
}

// Close frees an unattached context. Attached contexts are freed by their
// format context and Close does nothing.
func (c *IOContext) Close() error {
	if c == nil || c.attached {
		return nil
	}
	c.release()
	return nil
}

func (c *IOContext) attach() {
	if c.attached {
		panic("ffbridge: I/O context is already attached to a format context")
	}
	c.attached = true
}

func (c *IOContext) release() {
	if c.pb != nil {
		if c.w != nil {
			C.avio_flush(c.pb)
		}
		C.ffbridge_avio_free(&c.pb)
	}
	if c.handle != nil {
		pointer.Unref(c.handle)
		c.handle = nil
	}
}

func (c *IOContext) fail(err error) C.int {
	if errors.Is(err, io.EOF) {
		return C.int(ErrEOF)
	}
	c.err = err
	return C.int(ErrUnknown)
}

func restoreIOContext(opaque unsafe.Pointer) *IOContext {
	c, _ := pointer.Restore(opaque).(*IOContext)
	return c
}

//export ffbridgeIORead
func ffbridgeIORead(opaque unsafe.Pointer, buf *C.uint8_t, size C.int) C.int {
	c := restoreIOContext(opaque)
	if c == nil || c.r == nil {
		return C.int(ErrNotImplemented)
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(size))
	n, err := io.ReadAtLeast(c.r, b, 1)
	if n > 0 {
		return C.int(n)
	}
	return c.fail(err)
}

//export ffbridgeIOWrite
func ffbridgeIOWrite(opaque unsafe.Pointer, buf *C.uint8_t, size C.int) C.int {
	c := restoreIOContext(opaque)
	if c == nil || c.w == nil {
		return C.int(ErrNotImplemented)
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(size))
	n, err := c.w.Write(b)
	if err != nil {
		return c.fail(err)
	}
	return C.int(n)
}

//export ffbridgeIOSeek
func ffbridgeIOSeek(opaque unsafe.Pointer, offset C.int64_t, whence C.int) C.int64_t {
	c := restoreIOContext(opaque)
	if c == nil || c.s == nil {
		return C.int64_t(ErrNotImplemented)
	}
	w, _, err := decodeWhence(int(whence))
	if err != nil {
		return C.int64_t(ErrInvalidArgument)
	}
	var pos int64
	if w == WhenceSize {
		pos, err = seekerSize(c.s)
	} else {
		pos, err = c.s.Seek(int64(offset), w.ioWhence())
	}
	if err != nil {
		return C.int64_t(c.fail(err))
	}
	return C.int64_t(pos)
}

// decodeWhence splits a native whence into a mode and the AVSEEK_FORCE bit.
func decodeWhence(whence int) (w Whence, force bool, err error) {
	if whence&AVSeekForce != 0 {
		force = true
		whence &^= AVSeekForce
	}
	switch whence {
	case AVSeekSize:
		return WhenceSize, force, nil
	case SeekSet:
		return WhenceSet, force, nil
	case SeekCur:
		return WhenceCur, force, nil
	case SeekEnd:
		return WhenceEnd, force, nil
	}
	return 0, force, errors.Wrapf(ErrInvalidArgument, "whence %#x", whence)
}

func (w Whence) ioWhence() int {
	switch w {
	case WhenceCur:
		return io.SeekCurrent
	case WhenceEnd:
		return io.SeekEnd
	default:
		return io.SeekStart
	}
}

func seekerSize(s io.Seeker) (int64, error) {
	if sz, ok := s.(interface{ Size() int64 }); ok {
		return sz.Size(), nil
	}
	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := s.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}

func cbool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}
