//go:build cgo

package ffbridge

/*
#cgo pkg-config: libavformat libavcodec libavutil libswscale
#include "ffbridge.h"
*/
import "C"

import "strconv"

// Versions of the headers this package was compiled against.
var (
	CompiledAVUtilVersion   = Version(C.ffbridge_compiled_libavutil_version)
	CompiledAVCodecVersion  = Version(C.ffbridge_compiled_libavcodec_version)
	CompiledAVFormatVersion = Version(C.ffbridge_compiled_libavformat_version)
	CompiledSwscaleVersion  = Version(C.ffbridge_compiled_libswscale_version)
)

// NoPTSValue is AV_NOPTS_VALUE, the "no timestamp" marker.
var NoPTSValue = int64(C.ffbridge_av_nopts_value)

const (
	MediaTypeUnknown  = MediaType(C.AVMEDIA_TYPE_UNKNOWN)
	MediaTypeVideo    = MediaType(C.AVMEDIA_TYPE_VIDEO)
	MediaTypeAudio    = MediaType(C.AVMEDIA_TYPE_AUDIO)
	MediaTypeData     = MediaType(C.AVMEDIA_TYPE_DATA)
	MediaTypeSubtitle = MediaType(C.AVMEDIA_TYPE_SUBTITLE)
)

const (
	CodecIDNone     = CodecID(C.AV_CODEC_ID_NONE)
	CodecIDH264     = CodecID(C.AV_CODEC_ID_H264)
	CodecIDHEVC     = CodecID(C.AV_CODEC_ID_HEVC)
	CodecIDVP8      = CodecID(C.AV_CODEC_ID_VP8)
	CodecIDVP9      = CodecID(C.AV_CODEC_ID_VP9)
	CodecIDAV1      = CodecID(C.AV_CODEC_ID_AV1)
	CodecIDMJPEG    = CodecID(C.AV_CODEC_ID_MJPEG)
	CodecIDRawVideo = CodecID(C.AV_CODEC_ID_RAWVIDEO)
	CodecIDAAC      = CodecID(C.AV_CODEC_ID_AAC)
	CodecIDOpus     = CodecID(C.AV_CODEC_ID_OPUS)
	CodecIDPCMMulaw = CodecID(C.AV_CODEC_ID_PCM_MULAW)
	CodecIDPCMAlaw  = CodecID(C.AV_CODEC_ID_PCM_ALAW)
)

const (
	PixelFormatNone     = PixelFormat(C.AV_PIX_FMT_NONE)
	PixelFormatRGB24    = PixelFormat(C.AV_PIX_FMT_RGB24)
	PixelFormatBGR24    = PixelFormat(C.AV_PIX_FMT_BGR24)
	PixelFormatRGBA     = PixelFormat(C.AV_PIX_FMT_RGBA)
	PixelFormatBGRA     = PixelFormat(C.AV_PIX_FMT_BGRA)
	PixelFormatGray8    = PixelFormat(C.AV_PIX_FMT_GRAY8)
	PixelFormatYUV420P  = PixelFormat(C.AV_PIX_FMT_YUV420P)
	PixelFormatYUVJ420P = PixelFormat(C.AV_PIX_FMT_YUVJ420P)
	PixelFormatNV12     = PixelFormat(C.AV_PIX_FMT_NV12)
)

// Seek modes and flags passed to I/O seek callbacks.
const (
	SeekSet     = int(C.SEEK_SET)
	SeekCur     = int(C.SEEK_CUR)
	SeekEnd     = int(C.SEEK_END)
	AVSeekSize  = int(C.AVSEEK_SIZE)
	AVSeekForce = int(C.AVSEEK_FORCE)
)

// Dictionary lookup flags.
const (
	DictMatchCase    = int(C.AV_DICT_MATCH_CASE)
	DictIgnoreSuffix = int(C.AV_DICT_IGNORE_SUFFIX)
)

// SwsBilinear selects bilinear scaling.
const SwsBilinear = int(C.SWS_BILINEAR)

const (
	packetFlagKey  = int(C.AV_PKT_FLAG_KEY)
	imageAlignment = 32
	maxPlanes      = int(C.AV_NUM_DATA_POINTERS)
)

func (t MediaType) String() string {
	if s := C.av_get_media_type_string(C.enum_AVMediaType(t)); s != nil {
		return C.GoString(s)
	}
	return "unknown"
}

func (t MediaType) IsVideo() bool { return t == MediaTypeVideo }
func (t MediaType) IsAudio() bool { return t == MediaTypeAudio }

// String returns the native codec name, e.g. "h264".
func (id CodecID) String() string {
	return C.GoString(C.avcodec_get_name(C.enum_AVCodecID(id)))
}

func (id CodecID) IsH264() bool { return id == CodecIDH264 }
func (id CodecID) IsAAC() bool  { return id == CodecIDAAC }

func (f PixelFormat) String() string {
	if s := C.av_get_pix_fmt_name(C.enum_AVPixelFormat(f)); s != nil {
		return C.GoString(s)
	}
	return "PixelFormat(" + strconv.Itoa(int(f)) + ")"
}

// String renders "WxH/format".
func (d ImageDimensions) String() string {
	return strconv.Itoa(d.Width) + "x" + strconv.Itoa(d.Height) + "/" + d.PixelFormat.String()
}
