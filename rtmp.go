package ffbridge

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/url"
	"strings"
	"sync"
	"syscall"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/yutopp/go-rtmp"
	rtmpmsg "github.com/yutopp/go-rtmp/message"
	"go.uber.org/multierr"
)

const (
	rtmpDefaultPort = "1935"

	rtmpAudioChunkStreamID = 4
	rtmpVideoChunkStreamID = 6

	flvCodecAVC      = 7
	flvFrameKey      = 1
	flvFrameInter    = 2
	flvAVCSeqHeader  = 0
	flvAVCNALU       = 1
	flvAACHeaderByte = 0xAF // AAC, 44 kHz, 16-bit, stereo: fixed for AAC in FLV
	flvAACSeqHeader  = 0
	flvAACRaw        = 1
)

// RTMPConfig configures an RTMPPublisher.
type RTMPConfig struct {
	// URL is rtmp://host[:port]/app/stream.
	URL       string
	ChunkSize uint32
	Logger    golog.Logger
	// ConnLogger receives go-rtmp's connection-level logs. Nil discards them.
	ConnLogger logrus.FieldLogger
}

// DefaultRTMPConfig returns a config publishing to rawURL.
func DefaultRTMPConfig(rawURL string) RTMPConfig {
	return RTMPConfig{
		URL:       rawURL,
		ChunkSize: 4096,
		Logger:    golog.Global().Named("rtmp"),
	}
}

type rtmpTarget struct {
	addr   string
	app    string
	stream string
}

func parseRTMPURL(rawURL string) (rtmpTarget, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rtmpTarget{}, errors.Wrap(err, "parse RTMP URL")
	}
	if u.Scheme != "rtmp" {
		return rtmpTarget{}, errors.Errorf("unsupported scheme %q", u.Scheme)
	}
	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), rtmpDefaultPort)
	}
	app, stream, ok := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if !ok || app == "" || stream == "" {
		return rtmpTarget{}, errors.Errorf("RTMP URL %q needs /app/stream", rawURL)
	}
	return rtmpTarget{addr: host, app: app, stream: stream}, nil
}

// RTMPPublisher pushes H.264 and AAC access units to an RTMP server as FLV
// tagged messages.
type RTMPPublisher struct {
	mu     sync.Mutex
	client *rtmp.ClientConn
	stream *rtmp.Stream
	logger golog.Logger

	avc              *AVCConfig
	avcFromExtradata bool
	aacConfig        []byte
	videoHeaderSent  bool
	audioHeaderSent  bool
}

// DialRTMP connects, creates a stream and starts publishing. ctx bounds the
// whole handshake: its deadline applies to the TCP dial, and cancellation
// shuts down the socket so a stalled handshake fails.
func DialRTMP(ctx context.Context, cfg RTMPConfig) (*RTMPPublisher, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := parseRTMPURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = golog.Global().Named("rtmp")
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 4096
	}
	connLogger := cfg.ConnLogger
	if connLogger == nil {
		l := logrus.New()
		l.Out = io.Discard
		connLogger = l
	}

	type result struct {
		p   *RTMPPublisher
		err error
	}
	aborter := &dialAborter{}
	dialer := &net.Dialer{Control: aborter.control}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}
	done := make(chan result, 1)
	go func() {
		p, err := publish(dialer, target, cfg, connLogger)
		done <- result{p, err}
	}()

	select {
	case r := <-done:
		return r.p, r.err
	case <-ctx.Done():
		aborter.abort()
		// A publisher that completed anyway is dropped once it arrives.
		go func() {
			if r := <-done; r.p != nil {
				r.p.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

// dialAborter keeps the raw socket of a dial so it can be shut down from
// another goroutine. go-rtmp dials the connection itself and offers no
// context hook.
type dialAborter struct {
	mu      sync.Mutex
	raws    []syscall.RawConn
	aborted bool
}

func (a *dialAborter) control(_, _ string, c syscall.RawConn) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.aborted {
		return errors.New("dial aborted")
	}
	a.raws = append(a.raws, c)
	return nil
}

func (a *dialAborter) abort() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.aborted = true
	for _, raw := range a.raws {
		// Control refuses a socket that is already closed.
		_ = raw.Control(shutdownSocket)
	}
}

func publish(dialer *net.Dialer, target rtmpTarget, cfg RTMPConfig, connLogger logrus.FieldLogger) (*RTMPPublisher, error) {
	client, err := rtmp.DialWithDialer(dialer, "rtmp", target.addr, &rtmp.ConnConfig{Logger: connLogger})
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", target.addr)
	}
	if err := client.Connect(&rtmpmsg.NetConnectionConnect{
		Command: rtmpmsg.NetConnectionConnectCommand{App: target.app},
	}); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "connect app %q", target.app)
	}
	stream, err := client.CreateStream(nil, cfg.ChunkSize)
	if err != nil {
		client.Close()
		return nil, errors.Wrap(err, "create stream")
	}
	if err := stream.Publish(&rtmpmsg.NetStreamPublish{
		PublishingName: target.stream,
		PublishingType: "live",
	}); err != nil {
		multierr.AppendInto(&err, stream.Close())
		client.Close()
		return nil, errors.Wrapf(err, "publish %q", target.stream)
	}
	cfg.Logger.Debugw("publishing", "addr", target.addr, "app", target.app, "stream", target.stream)
	return &RTMPPublisher{client: client, stream: stream, logger: cfg.Logger}, nil
}

// SetVideoConfig sets the H.264 decoder configuration (avcC) sent ahead of
// the first video message and switches video input to AVCC framing. Without
// it, input is Annex B and the configuration is built from in-band SPS and
// PPS.
func (p *RTMPPublisher) SetVideoConfig(avcC []byte) error {
	c, err := ParseAVCConfig(avcC)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.avc = c
	p.avcFromExtradata = true
	p.videoHeaderSent = false
	p.mu.Unlock()
	return nil
}

// SetAudioConfig sets the AAC AudioSpecificConfig sent ahead of the first
// audio message.
func (p *RTMPPublisher) SetAudioConfig(asc []byte) {
	p.mu.Lock()
	p.aacConfig = append([]byte(nil), asc...)
	p.audioHeaderSent = false
	p.mu.Unlock()
}

// WriteAccessUnit sends one H.264 or AAC access unit.
func (p *RTMPPublisher) WriteAccessUnit(au *AccessUnit) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return errors.New("RTMP publisher is closed")
	}

	dts, ok := au.decodeTS()
	if !ok {
		return ErrNoTimestamp
	}
	msec := au.TimeBase.Rescale(dts, Rational{Num: 1, Den: 1000})
	if msec == rescaleOverflow {
		return errors.Errorf("timestamp %d in %s overflows", dts, au.TimeBase)
	}
	ms := uint32(msec)
	switch au.Codec {
	case "h264":
		return p.writeVideo(au, ms)
	case "aac":
		return p.writeAudio(au, ms)
	}
	return errors.Errorf("RTMP cannot carry codec %q", au.Codec)
}

func (p *RTMPPublisher) writeVideo(au *AccessUnit, ms uint32) error {
	data := au.Data
	if !p.avcFromExtradata {
		// Without extradata the input is taken to be Annex B with in-band
		// parameter sets.
		nalus := SplitAnnexB(data)
		if len(nalus) == 0 {
			return errors.New("H.264 access unit has no Annex B start code")
		}
		if p.avc == nil {
			if sps, pps := ExtractParameterSets(nalus); len(sps) > 0 && len(pps) > 0 {
				c, err := NewAVCConfig(sps, pps)
				if err != nil {
					return err
				}
				p.avc = c
			}
		}
		data = JoinAVCC(nalus)
	}
	if p.avc == nil {
		return errors.New("no H.264 decoder configuration before first video access unit")
	}
	if !p.videoHeaderSent {
		tag := flvVideoTag(true, flvAVCSeqHeader, 0, p.avc.Marshal())
		if err := p.stream.Write(rtmpVideoChunkStreamID, ms, &rtmpmsg.VideoMessage{Payload: bytes.NewReader(tag)}); err != nil {
			return errors.Wrap(err, "write AVC sequence header")
		}
		p.videoHeaderSent = true
	}

	var cts int32
	if au.HasPTS && au.HasDTS {
		cts = int32(au.TimeBase.Rescale(au.PTS-au.DTS, Rational{Num: 1, Den: 1000}))
	}
	tag := flvVideoTag(au.Key, flvAVCNALU, cts, data)
	return p.stream.Write(rtmpVideoChunkStreamID, ms, &rtmpmsg.VideoMessage{Payload: bytes.NewReader(tag)})
}

func (p *RTMPPublisher) writeAudio(au *AccessUnit, ms uint32) error {
	if p.aacConfig == nil {
		return errors.New("no AAC configuration before first audio access unit")
	}
	if !p.audioHeaderSent {
		tag := append([]byte{flvAACHeaderByte, flvAACSeqHeader}, p.aacConfig...)
		if err := p.stream.Write(rtmpAudioChunkStreamID, ms, &rtmpmsg.AudioMessage{Payload: bytes.NewReader(tag)}); err != nil {
			return errors.Wrap(err, "write AAC sequence header")
		}
		p.audioHeaderSent = true
	}
	tag := append([]byte{flvAACHeaderByte, flvAACRaw}, au.Data...)
	return p.stream.Write(rtmpAudioChunkStreamID, ms, &rtmpmsg.AudioMessage{Payload: bytes.NewReader(tag)})
}

// Close stops publishing and closes the connection.
func (p *RTMPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil
	}
	err := multierr.Combine(p.stream.Close(), p.client.Close())
	p.client, p.stream = nil, nil
	p.logger.Debugw("stopped publishing", "error", err)
	return err
}

// flvVideoTag builds the body of an FLV video tag: frame type and codec,
// AVC packet type, a 24-bit composition time offset, then data.
func flvVideoTag(key bool, packetType byte, cts int32, data []byte) []byte {
	frameType := byte(flvFrameInter)
	if key {
		frameType = flvFrameKey
	}
	tag := make([]byte, 5, 5+len(data))
	tag[0] = frameType<<4 | flvCodecAVC
	tag[1] = packetType
	tag[2] = byte(cts >> 16)
	tag[3] = byte(cts >> 8)
	tag[4] = byte(cts)
	return append(tag, data...)
}
