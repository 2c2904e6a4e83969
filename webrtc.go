package ffbridge

import (
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/pkg/errors"
)

// SampleTrack is the part of webrtc.TrackLocalStaticSample a SampleWriter
// needs.
type SampleTrack interface {
	WriteSample(s media.Sample) error
}

var _ SampleTrack = (*webrtc.TrackLocalStaticSample)(nil)

// MimeTypeForCodec maps a native codec name to its WebRTC MIME type.
func MimeTypeForCodec(codec string) (string, bool) {
	switch codec {
	case "h264":
		return webrtc.MimeTypeH264, true
	case "vp8":
		return webrtc.MimeTypeVP8, true
	case "vp9":
		return webrtc.MimeTypeVP9, true
	case "av1":
		return webrtc.MimeTypeAV1, true
	case "opus":
		return webrtc.MimeTypeOpus, true
	case "pcm_mulaw":
		return webrtc.MimeTypePCMU, true
	case "pcm_alaw":
		return webrtc.MimeTypePCMA, true
	}
	return "", false
}

// NewSampleTrack creates a local track carrying codec.
func NewSampleTrack(codec, id, streamID string) (*webrtc.TrackLocalStaticSample, error) {
	mime, ok := MimeTypeForCodec(codec)
	if !ok {
		return nil, errors.Errorf("codec %q has no WebRTC mapping", codec)
	}
	capability := webrtc.RTPCodecCapability{MimeType: mime, ClockRate: 90000}
	switch codec {
	case "opus":
		capability.ClockRate = 48000
		capability.Channels = 2
	case "pcm_mulaw", "pcm_alaw":
		capability.ClockRate = 8000
	}
	return webrtc.NewTrackLocalStaticSample(capability, id, streamID)
}

// SampleWriter feeds demuxed access units into a sample track. H.264 in
// AVCC form is rewritten to Annex B, which is what pion's payloader takes.
type SampleWriter struct {
	track         SampleTrack
	nalLengthSize int

	last    time.Duration
	hasLast bool
}

// NewSampleWriter returns a writer for track. nalLengthSize is the AVCC
// prefix size of H.264 input, or 0 for Annex B or non-H.264 input.
func NewSampleWriter(track SampleTrack, nalLengthSize int) *SampleWriter {
	return &SampleWriter{track: track, nalLengthSize: nalLengthSize}
}

// WriteAccessUnit writes au as one sample. When the unit carries no
// duration, the distance from the previous unit is used.
func (w *SampleWriter) WriteAccessUnit(au *AccessUnit) error {
	data := au.Data
	if au.Codec == "h264" && w.nalLengthSize > 0 {
		var err error
		if data, err = AVCCToAnnexB(au.Data, w.nalLengthSize); err != nil {
			return err
		}
	}
	ts, ok := au.Timestamp()
	if !ok {
		return ErrNoTimestamp
	}
	if ts == time.Duration(rescaleOverflow) {
		return errors.Errorf("access unit timestamp overflows in %s", au.TimeBase)
	}
	dur := au.DurationTime()
	if dur <= 0 && w.hasLast {
		dur = ts - w.last
	}
	if dur < 0 {
		dur = 0
	}
	w.last, w.hasLast = ts, true
	return w.track.WriteSample(media.Sample{
		Data:      data,
		Timestamp: time.Unix(0, 0).Add(ts),
		Duration:  dur,
	})
}
