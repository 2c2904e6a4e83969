//go:build cgo

package ffbridge

/*
#include "ffbridge.h"
*/
import "C"

import (
	"unsafe"
)

// Packet is an AVPacket: one compressed unit of a stream.
type Packet struct {
	pkt *C.AVPacket
}

// NewPacket allocates an empty packet.
func NewPacket() (*Packet, error) {
	pkt := C.av_packet_alloc()
	if pkt == nil {
		return nil, ErrNoMem
	}
	return &Packet{pkt: pkt}, nil
}

// NewPacketFrom allocates a packet holding a copy of data.
func NewPacketFrom(data []byte) (*Packet, error) {
	p, err := NewPacket()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return p, nil
	}
	if err := errorFromC(C.av_new_packet(p.pkt, C.int(len(data)))); err != nil {
		p.Close()
		return nil, err
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(p.pkt.data)), len(data)), data)
	return p, nil
}

// Close frees the packet and its data reference.
func (p *Packet) Close() error {
	if p != nil && p.pkt != nil {
		C.av_packet_free(&p.pkt)
	}
	return nil
}

// Unref drops the data reference and resets the fields.
func (p *Packet) Unref() {
	C.av_packet_unref(p.pkt)
}

// PTS returns the presentation timestamp; ok is false when unset.
func (p *Packet) PTS() (pts int64, ok bool) {
	v := int64(p.pkt.pts)
	return v, v != NoPTSValue
}

// SetPTS sets the presentation timestamp, or clears it when ok is false.
func (p *Packet) SetPTS(pts int64, ok bool) {
	if !ok {
		pts = NoPTSValue
	}
	p.pkt.pts = C.int64_t(pts)
}

// DTS returns the decode timestamp; ok is false when unset.
func (p *Packet) DTS() (dts int64, ok bool) {
	v := int64(p.pkt.dts)
	return v, v != NoPTSValue
}

// SetDTS sets the decode timestamp, or clears it when ok is false.
func (p *Packet) SetDTS(dts int64, ok bool) {
	if !ok {
		dts = NoPTSValue
	}
	p.pkt.dts = C.int64_t(dts)
}

// Duration is in stream time base units; zero when unknown.
func (p *Packet) Duration() int64 {
	return int64(C.ffbridge_packet_duration(p.pkt))
}

func (p *Packet) SetDuration(d int64) {
	C.ffbridge_packet_set_duration(p.pkt, C.int64_t(d))
}

func (p *Packet) StreamIndex() int {
	return int(p.pkt.stream_index)
}

func (p *Packet) SetStreamIndex(i int) {
	p.pkt.stream_index = C.int(i)
}

// IsKey reports whether the packet starts a keyframe.
func (p *Packet) IsKey() bool {
	return int(p.pkt.flags)&packetFlagKey != 0
}

// SetKey sets or clears the keyframe flag.
func (p *Packet) SetKey(key bool) {
	if key {
		p.pkt.flags |= C.int(packetFlagKey)
	} else {
		p.pkt.flags &^= C.int(packetFlagKey)
	}
}

// Data is a view of the payload, valid until the packet is unref'd or
// closed. It is nil for an empty packet.
func (p *Packet) Data() []byte {
	if p.pkt.data == nil || p.pkt.size <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p.pkt.data)), int(p.pkt.size))
}

// Size returns the payload length.
func (p *Packet) Size() int {
	return int(p.pkt.size)
}

// RescaleTS converts the timestamps and duration from one time base to
// another.
func (p *Packet) RescaleTS(from, to Rational) {
	C.av_packet_rescale_ts(p.pkt, from.c(), to.c())
}

// AccessUnit copies the packet into a Go-owned value. tb is the time base
// of the stream the packet belongs to.
func (p *Packet) AccessUnit(codec string, tb Rational) AccessUnit {
	pts, hasPTS := p.PTS()
	dts, hasDTS := p.DTS()
	var data []byte
	if d := p.Data(); d != nil {
		data = append([]byte(nil), d...)
	}
	return AccessUnit{
		Codec:       codec,
		StreamIndex: p.StreamIndex(),
		Data:        data,
		PTS:         pts,
		HasPTS:      hasPTS,
		DTS:         dts,
		HasDTS:      hasDTS,
		Duration:    p.Duration(),
		Key:         p.IsKey(),
		TimeBase:    tb,
	}
}

func (r Rational) c() C.AVRational {
	return C.AVRational{num: C.int(r.Num), den: C.int(r.Den)}
}

func rationalFromC(r C.AVRational) Rational {
	return Rational{Num: int(r.num), Den: int(r.den)}
}
