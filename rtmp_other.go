//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris || windows)

package ffbridge

// No socket shutdown here; an abandoned handshake runs until the peer gives up.
func shutdownSocket(uintptr) {}
