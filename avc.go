package ffbridge

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// H.264 NAL unit types
const (
	nalTypeIDR = 5
	nalTypeSPS = 7
	nalTypePPS = 8
)

var annexBStartCode = []byte{0, 0, 0, 1}

// AVCConfig is an AVCDecoderConfigurationRecord ("avcC"), the H.264 global
// header MP4 and FLV carry as codec extradata.
type AVCConfig struct {
	Profile       byte
	Compatibility byte
	Level         byte
	// NALLengthSize is the size in bytes of each NAL unit's length prefix.
	NALLengthSize int
	SPS           [][]byte
	PPS           [][]byte
}

// NewAVCConfig builds a record with 4-byte length prefixes. Profile and
// level are copied from the first SPS.
func NewAVCConfig(sps, pps [][]byte) (*AVCConfig, error) {
	if len(sps) == 0 || len(sps[0]) < 4 {
		return nil, errors.New("avcC needs at least one SPS")
	}
	if len(pps) == 0 {
		return nil, errors.New("avcC needs at least one PPS")
	}
	return &AVCConfig{
		Profile:       sps[0][1],
		Compatibility: sps[0][2],
		Level:         sps[0][3],
		NALLengthSize: 4,
		SPS:           sps,
		PPS:           pps,
	}, nil
}

// ParseAVCConfig parses an avcC record. Trailing high-profile fields are
// ignored.
func ParseAVCConfig(b []byte) (*AVCConfig, error) {
	if len(b) < 7 {
		return nil, errors.Errorf("avcC too short: %d bytes", len(b))
	}
	if b[0] != 1 {
		return nil, errors.Errorf("unsupported avcC version %d", b[0])
	}
	c := &AVCConfig{
		Profile:       b[1],
		Compatibility: b[2],
		Level:         b[3],
		NALLengthSize: int(b[4]&0x03) + 1,
	}
	if c.NALLengthSize == 3 {
		return nil, errors.New("avcC NAL length size 3 is not allowed")
	}

	off := 6
	readSets := func(count int) ([][]byte, error) {
		sets := make([][]byte, 0, count)
		for i := 0; i < count; i++ {
			if off+2 > len(b) {
				return nil, errors.New("avcC truncated")
			}
			n := int(binary.BigEndian.Uint16(b[off:]))
			off += 2
			if off+n > len(b) {
				return nil, errors.New("avcC truncated")
			}
			sets = append(sets, b[off:off+n])
			off += n
		}
		return sets, nil
	}

	var err error
	if c.SPS, err = readSets(int(b[5]&0x1F)); err != nil {
		return nil, err
	}
	if off >= len(b) {
		return nil, errors.New("avcC truncated")
	}
	numPPS := int(b[off])
	off++
	if c.PPS, err = readSets(numPPS); err != nil {
		return nil, err
	}
	return c, nil
}

// Marshal encodes the record.
func (c *AVCConfig) Marshal() []byte {
	size := 7
	for _, s := range c.SPS {
		size += 2 + len(s)
	}
	for _, p := range c.PPS {
		size += 2 + len(p)
	}
	b := make([]byte, 0, size)
	b = append(b, 1, c.Profile, c.Compatibility, c.Level,
		0xFC|byte(c.NALLengthSize-1)&0x03,
		0xE0|byte(len(c.SPS))&0x1F)
	for _, s := range c.SPS {
		b = binary.BigEndian.AppendUint16(b, uint16(len(s)))
		b = append(b, s...)
	}
	b = append(b, byte(len(c.PPS)))
	for _, p := range c.PPS {
		b = binary.BigEndian.AppendUint16(b, uint16(len(p)))
		b = append(b, p...)
	}
	return b
}

// AnnexB renders the parameter sets with start codes, as an in-band
// Annex B stream would carry them ahead of a keyframe.
func (c *AVCConfig) AnnexB() []byte {
	var b []byte
	for _, s := range c.SPS {
		b = append(b, annexBStartCode...)
		b = append(b, s...)
	}
	for _, p := range c.PPS {
		b = append(b, annexBStartCode...)
		b = append(b, p...)
	}
	return b
}

// SplitAVCC splits length-prefixed NAL units. The returned slices alias data.
func SplitAVCC(data []byte, lengthSize int) ([][]byte, error) {
	switch lengthSize {
	case 1, 2, 4:
	default:
		return nil, errors.Errorf("invalid NAL length size %d", lengthSize)
	}
	var nalus [][]byte
	for off := 0; off < len(data); {
		if off+lengthSize > len(data) {
			return nil, errors.Errorf("truncated NAL length at offset %d", off)
		}
		var n int
		switch lengthSize {
		case 1:
			n = int(data[off])
		case 2:
			n = int(binary.BigEndian.Uint16(data[off:]))
		case 4:
			n = int(binary.BigEndian.Uint32(data[off:]))
		}
		off += lengthSize
		if n < 0 || off+n > len(data) {
			return nil, errors.Errorf("NAL unit of %d bytes overruns access unit at offset %d", n, off)
		}
		if n > 0 {
			nalus = append(nalus, data[off:off+n])
		}
		off += n
	}
	return nalus, nil
}

// AVCCToAnnexB rewrites a length-prefixed access unit with 4-byte start codes.
func AVCCToAnnexB(data []byte, lengthSize int) ([]byte, error) {
	nalus, err := SplitAVCC(data, lengthSize)
	if err != nil {
		return nil, err
	}
	return JoinAnnexB(nalus), nil
}

// JoinAnnexB concatenates NAL units, each behind a 4-byte start code.
func JoinAnnexB(nalus [][]byte) []byte {
	size := 0
	for _, n := range nalus {
		size += len(annexBStartCode) + len(n)
	}
	out := make([]byte, 0, size)
	for _, n := range nalus {
		out = append(out, annexBStartCode...)
		out = append(out, n...)
	}
	return out
}

// JoinAVCC concatenates NAL units, each behind a 4-byte big-endian length.
func JoinAVCC(nalus [][]byte) []byte {
	size := 0
	for _, n := range nalus {
		size += 4 + len(n)
	}
	out := make([]byte, 0, size)
	for _, n := range nalus {
		out = binary.BigEndian.AppendUint32(out, uint32(len(n)))
		out = append(out, n...)
	}
	return out
}

// SplitAnnexB splits on 3- and 4-byte start codes. The returned slices
// alias data.
func SplitAnnexB(data []byte) [][]byte {
	var nalus [][]byte
	start := -1
	for i := 0; i+2 < len(data); i++ {
		if data[i] != 0 || data[i+1] != 0 {
			continue
		}
		codeLen := 0
		switch {
		case data[i+2] == 1:
			codeLen = 3
		case i+3 < len(data) && data[i+2] == 0 && data[i+3] == 1:
			codeLen = 4
		default:
			continue
		}
		if start >= 0 && i > start {
			nalus = append(nalus, data[start:i])
		}
		start = i + codeLen
		i += codeLen - 1
	}
	if start >= 0 && start < len(data) {
		nalus = append(nalus, data[start:])
	}
	return nalus
}

// NALType returns the nal_unit_type of nalu, or 0 for an empty unit.
func NALType(nalu []byte) byte {
	if len(nalu) == 0 {
		return 0
	}
	return nalu[0] & 0x1F
}

// ExtractParameterSets returns the SPS and PPS units found in nalus.
func ExtractParameterSets(nalus [][]byte) (sps, pps [][]byte) {
	for _, n := range nalus {
		switch NALType(n) {
		case nalTypeSPS:
			sps = append(sps, n)
		case nalTypePPS:
			pps = append(pps, n)
		}
	}
	return sps, pps
}

// ContainsIDR reports whether any unit is an IDR slice.
func ContainsIDR(nalus [][]byte) bool {
	for _, n := range nalus {
		if NALType(n) == nalTypeIDR {
			return true
		}
	}
	return false
}
