// Package ffbridge binds the FFmpeg libraries (libavutil, libavcodec,
// libavformat, libswscale) at the ABI level and moves what they demux out to
// Go-native sinks.
//
// Key pieces include:
//   - Compiled-in versions and enum values read from the C headers, and a
//     compatibility check against the libraries actually loaded
//   - A logging bridge that routes native log output into a Go callback
//   - A legacy lock manager for libavcodec builds older than 58.9.100
//   - Typed handles over format, I/O, codec, packet, stream and frame
//     structures, each with Close
//   - RTP, WebRTC sample and RTMP sinks for demuxed access units
//
// # Architecture
//
//	Demux: OpenInput/OpenInputIO -> ReadPacket -> Packet.AccessUnit -> RTPPacketizer | SampleWriter | RTMPPublisher
//	Decode: Stream.CodecParameters -> NewDecoder -> DecodeVideo -> VideoFrame -> Scaler
//	Mux: NewOutputFormatContext -> SetIOContext/OpenWrite -> NewStream -> WriteHeader -> WritePacket -> WriteTrailer
//
// # Native Libraries
//
// With cgo the package links the libraries found by pkg-config
// (libavutil libavcodec libavformat libswscale). Init must be called once
// before anything else. Without cgo only RunningVersions and Configuration
// are available; they load the shared libraries with purego, searching
// FFBRIDGE_LIB_PATH first.
//
// # Logging
//
// Native log output goes to a golog logger named "ffmpeg" unless
// Config.LogCallback is set. FFBRIDGE_LOG_LEVEL overrides Config.LogLevel.
package ffbridge
