//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package ffbridge

import "golang.org/x/sys/unix"

func shutdownSocket(fd uintptr) {
	_ = unix.Shutdown(int(fd), unix.SHUT_RDWR)
}
