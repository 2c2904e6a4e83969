//go:build !cgo && !(darwin || linux)

package ffbridge

// ProbeError always returns ErrUnsupported in this build.
func ProbeError() error {
	return ErrUnsupported
}

// RunningVersions reports nothing in this build.
func RunningVersions() []Library {
	return nil
}

func Configuration() string {
	return ""
}
