package ffbridge

import "encoding/binary"

// SniffCodec guesses the codec of an elementary-stream payload or the first
// bytes of a raw container from its leading bytes. The name matches
// CodecID.String. It recognises H.264 (Annex B and AVCC), VP8 keyframes,
// VP9, AV1 OBUs, IVF files, ADTS AAC, MP3 and Ogg Opus.
//
// Sniffing is a heuristic: VP9 and AV1 have short signatures, so check
// payloads against what the demuxer reported rather than trusting this alone.
func SniffCodec(data []byte) (codec string, ok bool) {
	if len(data) < 4 {
		return "", false
	}
	switch {
	case string(data[:4]) == "DKIF":
		return sniffIVF(data)
	case string(data[:4]) == "OggS":
		// Ogg pages carry the codec magic right after the 28-byte header.
		if len(data) >= 36 && string(data[28:36]) == "OpusHead" {
			return "opus", true
		}
		return "", false
	case hasAnnexBStartCode(data):
		if isH264NALType(annexBNALType(data)) {
			return "h264", true
		}
		return "", false
	case isADTS(data):
		return "aac", true
	case isMP3Frame(data):
		return "mp3", true
	case isAVCC(data):
		return "h264", true
	case isVP8Keyframe(data):
		return "vp8", true
	case isVP9Frame(data):
		return "vp9", true
	case isAV1OBU(data):
		return "av1", true
	}
	return "", false
}

func sniffIVF(data []byte) (string, bool) {
	if len(data) < 32 {
		return "", false
	}
	switch string(data[8:12]) {
	case "VP80":
		return "vp8", true
	case "VP90":
		return "vp9", true
	case "AV01":
		return "av1", true
	}
	return "", false
}

func hasAnnexBStartCode(data []byte) bool {
	return len(data) >= 4 && data[0] == 0 && data[1] == 0 &&
		(data[2] == 1 || data[2] == 0 && data[3] == 1)
}

// annexBNALType returns the type of the NAL unit behind a leading start code.
func annexBNALType(data []byte) byte {
	off := 3
	if data[2] == 0 {
		off = 4
	}
	if len(data) <= off {
		return 0
	}
	return NALType(data[off:])
}

// Types 1-12 and 19-21 of H.264 Table 7-1.
func isH264NALType(t byte) bool {
	return t >= 1 && t <= 12 || t >= 19 && t <= 21
}

// isAVCC checks for a plausible 4-byte length prefix followed by a valid
// NAL header.
func isAVCC(data []byte) bool {
	if len(data) < 8 {
		return false
	}
	n := binary.BigEndian.Uint32(data)
	return n > 0 && int64(n) <= int64(len(data)-4) && data[4]&0x80 == 0 && isH264NALType(NALType(data[4:]))
}

// A VP8 keyframe has frame_type 0 and the 0x9D012A start code after the
// 3-byte frame tag (RFC 6386, 9.1).
func isVP8Keyframe(data []byte) bool {
	return len(data) >= 10 && data[0]&0x01 == 0 &&
		data[3] == 0x9D && data[4] == 0x01 && data[5] == 0x2A
}

// VP9 uncompressed headers start with frame_marker 0b10.
func isVP9Frame(data []byte) bool {
	return len(data) >= 3 && data[0]>>6 == 0x02
}

const (
	av1OBUSequenceHeader     = 1
	av1OBUTemporalDelimiter  = 2
	av1OBUExtensionFlag      = 0x04
	av1OBUHasSizeField       = 0x02
	av1OBUHeaderReservedBits = 0x81 // forbidden bit and obu_reserved_1bit
)

// isAV1OBU accepts a low-overhead bitstream that opens with a temporal
// delimiter or sequence header whose obu_size fits in data.
func isAV1OBU(data []byte) bool {
	h := data[0]
	if h&av1OBUHeaderReservedBits != 0 || h&av1OBUHasSizeField == 0 {
		return false
	}
	t := (h >> 3) & 0x0F
	if t != av1OBUSequenceHeader && t != av1OBUTemporalDelimiter {
		return false
	}
	off := 1
	if h&av1OBUExtensionFlag != 0 {
		off++
	}
	size, n, ok := readLEB128(data[min(off, len(data)):])
	switch {
	case !ok:
		return false
	case t == av1OBUTemporalDelimiter:
		return size == 0
	}
	return size > 0 && uint64(off+n)+size <= uint64(len(data))
}

// readLEB128 decodes an unsigned LEB128 value of at most 8 bytes.
func readLEB128(b []byte) (v uint64, n int, ok bool) {
	for i := 0; i < 8 && i < len(b); i++ {
		v |= uint64(b[i]&0x7F) << (7 * i)
		if b[i]&0x80 == 0 {
			return v, i + 1, true
		}
	}
	return 0, 0, false
}

// ADTS: 12-bit 0xFFF syncword, layer 0.
func isADTS(data []byte) bool {
	return len(data) >= 7 && data[0] == 0xFF && data[1]&0xF0 == 0xF0 && (data[1]>>1)&0x03 == 0
}

// MPEG audio: 11-bit syncword, layer III.
func isMP3Frame(data []byte) bool {
	return data[0] == 0xFF && data[1]&0xE0 == 0xE0 && (data[1]>>1)&0x03 == 1
}
