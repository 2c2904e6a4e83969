//go:build !cgo && !(darwin || linux)

package ffbridge

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestProbeUnsupportedPlatform(t *testing.T) {
	test.That(t, errors.Is(ProbeError(), ErrUnsupported), test.ShouldBeTrue)
	test.That(t, RunningVersions(), test.ShouldBeEmpty)
	test.That(t, Configuration(), test.ShouldEqual, "")
}
