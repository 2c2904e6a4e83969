package ffbridge

import (
	"sync"

	"github.com/pion/randutil"
	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
	"github.com/pkg/errors"
)

// RTPPacket is an alias to pion's rtp.Packet
type RTPPacket = rtp.Packet

// Default MTU for RTP packets (UDP safe)
const DefaultMTU = 1200

const rtpHeaderSize = 12

var rtpRand = randutil.NewMathRandomGenerator()

func randomSSRC() uint32      { return rtpRand.Uint32() }
func randomTimestamp() uint32 { return rtpRand.Uint32() }

// RTPConfig configures an RTPPacketizer.
type RTPConfig struct {
	PayloadType uint8
	SSRC        uint32
	MTU         int
	// ClockRate of the RTP timestamps. Zero picks the codec's usual rate.
	ClockRate uint32
	// NALLengthSize is the AVCC length prefix size of H.264 input as read
	// from MP4 or FLV. Zero means the input is already Annex B.
	NALLengthSize int
}

type rtpCodec struct {
	payloadType uint8
	clockRate   uint32
	video       bool
	payloader   func() rtp.Payloader
}

// Keyed by native codec name.
var rtpCodecs = map[string]rtpCodec{
	"h264":      {payloadType: 96, clockRate: 90000, video: true, payloader: func() rtp.Payloader { return &codecs.H264Payloader{} }},
	"opus":      {payloadType: 111, clockRate: 48000, payloader: func() rtp.Payloader { return &codecs.OpusPayloader{} }},
	"pcm_mulaw": {payloadType: 0, clockRate: 8000, payloader: func() rtp.Payloader { return &codecs.G711Payloader{} }},
	"pcm_alaw":  {payloadType: 8, clockRate: 8000, payloader: func() rtp.Payloader { return &codecs.G711Payloader{} }},
}

// DefaultRTPConfig returns the usual payload type and clock rate for codec
// with a random SSRC.
func DefaultRTPConfig(codec string) RTPConfig {
	c := rtpCodecs[codec]
	return RTPConfig{
		PayloadType: c.payloadType,
		SSRC:        randomSSRC(),
		MTU:         DefaultMTU,
		ClockRate:   c.clockRate,
	}
}

// RTPPacketizer turns access units of one stream into RTP packets.
// Timestamps are derived from each unit's PTS rather than counted, so gaps
// in the input show up as gaps on the wire.
type RTPPacketizer struct {
	codec     string
	cfg       RTPConfig
	video     bool
	payloader rtp.Payloader
	sequencer rtp.Sequencer
	baseTS    uint32
	mu        sync.Mutex
}

// NewRTPPacketizer returns a packetizer for codec ("h264", "opus",
// "pcm_mulaw" or "pcm_alaw").
func NewRTPPacketizer(codec string, cfg RTPConfig) (*RTPPacketizer, error) {
	c, ok := rtpCodecs[codec]
	if !ok {
		return nil, errors.Errorf("no RTP payloader for codec %q", codec)
	}
	if cfg.MTU == 0 {
		cfg.MTU = DefaultMTU
	}
	if cfg.MTU <= rtpHeaderSize || cfg.MTU > 0xFFFF {
		return nil, errors.Errorf("invalid MTU %d", cfg.MTU)
	}
	if cfg.ClockRate == 0 {
		cfg.ClockRate = c.clockRate
	}
	return &RTPPacketizer{
		codec:     codec,
		cfg:       cfg,
		video:     c.video,
		payloader: c.payloader(),
		sequencer: rtp.NewRandomSequencer(),
		baseTS:    randomTimestamp(),
	}, nil
}

// Packetize converts one access unit into RTP packets. The marker bit is set
// on the last packet of a video access unit.
func (p *RTPPacketizer) Packetize(au *AccessUnit) ([]*RTPPacket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(au.Data) == 0 {
		return nil, nil
	}
	data := au.Data
	if p.codec == "h264" && p.cfg.NALLengthSize > 0 {
		var err error
		if data, err = AVCCToAnnexB(au.Data, p.cfg.NALLengthSize); err != nil {
			return nil, err
		}
	}

	payloads := p.payloader.Payload(uint16(p.cfg.MTU-rtpHeaderSize), data)
	if len(payloads) == 0 {
		return nil, nil
	}
	ts, err := p.timestamp(au)
	if err != nil {
		return nil, err
	}
	packets := make([]*RTPPacket, len(payloads))
	for i, payload := range payloads {
		packets[i] = &RTPPacket{
			Header: rtp.Header{
				Version:        2,
				Marker:         p.video && i == len(payloads)-1,
				PayloadType:    p.cfg.PayloadType,
				SequenceNumber: p.sequencer.NextSequenceNumber(),
				Timestamp:      ts,
				SSRC:           p.cfg.SSRC,
			},
			Payload: payload,
		}
	}
	return packets, nil
}

// PacketizeToBytes converts an access unit to raw RTP packet bytes.
func (p *RTPPacketizer) PacketizeToBytes(au *AccessUnit) ([][]byte, error) {
	packets, err := p.Packetize(au)
	if err != nil {
		return nil, err
	}
	result := make([][]byte, len(packets))
	for i, pkt := range packets {
		if result[i], err = pkt.Marshal(); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (p *RTPPacketizer) timestamp(au *AccessUnit) (uint32, error) {
	v, ok := au.presentationTS()
	if !ok {
		return 0, ErrNoTimestamp
	}
	ticks := au.TimeBase.Rescale(v, Rational{Num: 1, Den: int(p.cfg.ClockRate)})
	if ticks == rescaleOverflow {
		return 0, errors.Errorf("timestamp %d in %s overflows the RTP clock", v, au.TimeBase)
	}
	return p.baseTS + uint32(ticks), nil
}

func (p *RTPPacketizer) Codec() string      { return p.codec }
func (p *RTPPacketizer) SSRC() uint32       { return p.cfg.SSRC }
func (p *RTPPacketizer) PayloadType() uint8 { return p.cfg.PayloadType }
func (p *RTPPacketizer) ClockRate() uint32  { return p.cfg.ClockRate }
func (p *RTPPacketizer) MTU() int           { return p.cfg.MTU }
