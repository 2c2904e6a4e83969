//go:build (darwin || linux) && !cgo

// Version probing without cgo: the shared libraries are loaded with purego
// and asked for their versions. Nothing else in the package is available in
// this build.

package ffbridge

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/pkg/errors"
)

type probedLib struct {
	name   string
	majors []int
	symbol string

	handle  uintptr
	version func() uint32
}

var (
	probeOnce sync.Once
	probeErr  error
	probed    = []*probedLib{
		{name: "avutil", majors: []int{60, 59, 58, 57, 56}, symbol: "avutil_version"},
		{name: "avcodec", majors: []int{62, 61, 60, 59, 58}, symbol: "avcodec_version"},
		{name: "avformat", majors: []int{62, 61, 60, 59, 58}, symbol: "avformat_version"},
		{name: "swscale", majors: []int{9, 8, 7, 6, 5}, symbol: "swscale_version"},
	}
	avcodecConfiguration func() string
)

func probeLibraries() error {
	probeOnce.Do(func() {
		var missing []string
		for _, lib := range probed {
			if err := lib.load(); err != nil {
				missing = append(missing, lib.name)
			}
		}
		if len(missing) == len(probed) {
			probeErr = ErrLibraryNotFound
		} else if len(missing) > 0 {
			probeErr = errors.Wrapf(ErrLibraryNotFound, "missing %v", missing)
		}
		for _, lib := range probed {
			if lib.name == "avcodec" && lib.handle != 0 {
				purego.RegisterLibFunc(&avcodecConfiguration, lib.handle, "avcodec_configuration")
			}
		}
	})
	return probeErr
}

func (l *probedLib) load() error {
	var lastErr error
	for _, path := range libPaths(l.name, l.majors) {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lastErr = err
			continue
		}
		l.handle = handle
		purego.RegisterLibFunc(&l.version, handle, l.symbol)
		return nil
	}
	if lastErr == nil {
		lastErr = errors.Errorf("lib%s not found", l.name)
	}
	return lastErr
}

// ProbeError reports why some libraries could not be loaded, or nil.
func ProbeError() error {
	return probeLibraries()
}

// RunningVersions reports the version of each library that could be loaded.
// Compiled versions are unknown in this build and left zero.
func RunningVersions() []Library {
	_ = probeLibraries()
	var libs []Library
	for _, lib := range probed {
		if lib.handle == 0 {
			continue
		}
		libs = append(libs, Library{Name: lib.name, Running: Version(lib.version())})
	}
	return libs
}

// Configuration returns the build configuration of the loaded libavcodec.
func Configuration() string {
	_ = probeLibraries()
	if avcodecConfiguration == nil {
		return ""
	}
	return avcodecConfiguration()
}

func libFileNames(name string, majors []int) []string {
	var names []string
	switch runtime.GOOS {
	case "darwin":
		names = append(names, fmt.Sprintf("lib%s.dylib", name))
		for _, m := range majors {
			names = append(names, fmt.Sprintf("lib%s.%d.dylib", name, m))
		}
	default:
		names = append(names, fmt.Sprintf("lib%s.so", name))
		for _, m := range majors {
			names = append(names, fmt.Sprintf("lib%s.so.%d", name, m))
		}
	}
	return names
}

func libPaths(name string, majors []int) []string {
	var dirs []string
	if env := os.Getenv(EnvLibPath); env != "" {
		dirs = append(dirs, env)
	}
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		dirs = append(dirs, exeDir, filepath.Join(exeDir, "..", "lib"))
	}
	if root := findModuleRoot(); root != "" {
		dirs = append(dirs, filepath.Join(root, "build"), filepath.Join(root, "build", "lib"))
	}
	switch runtime.GOOS {
	case "darwin":
		dirs = append(dirs, "/opt/homebrew/lib", "/usr/local/lib")
	case "linux":
		dirs = append(dirs, "/usr/local/lib", "/usr/lib/x86_64-linux-gnu", "/usr/lib/aarch64-linux-gnu", "/usr/lib")
	}

	files := libFileNames(name, majors)
	var paths []string
	for _, dir := range dirs {
		for _, f := range files {
			paths = append(paths, filepath.Join(dir, f))
		}
	}
	// Bare names last, so the dynamic loader's own search path applies.
	return append(paths, files...)
}

// findModuleRoot walks up from the working directory to the directory
// holding go.mod.
func findModuleRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
