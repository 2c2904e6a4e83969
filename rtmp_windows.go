package ffbridge

import "golang.org/x/sys/windows"

func shutdownSocket(fd uintptr) {
	_ = windows.Shutdown(windows.Handle(fd), windows.SHUT_RDWR)
}
