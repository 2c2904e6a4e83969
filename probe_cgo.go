//go:build cgo

package ffbridge

/*
#include "ffbridge.h"
*/
import "C"

// RunningVersions reports the compiled and loaded version of each library.
func RunningVersions() []Library {
	return []Library{
		{Name: "avutil", Compiled: CompiledAVUtilVersion, Running: Version(C.avutil_version())},
		{Name: "avcodec", Compiled: CompiledAVCodecVersion, Running: Version(C.avcodec_version())},
		{Name: "avformat", Compiled: CompiledAVFormatVersion, Running: Version(C.avformat_version())},
		{Name: "swscale", Compiled: CompiledSwscaleVersion, Running: Version(C.swscale_version())},
	}
}

// Configuration returns the build configuration of the loaded libavcodec.
func Configuration() string {
	return C.GoString(C.avcodec_configuration())
}
