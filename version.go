package ffbridge

import (
	"fmt"
	"strings"
)

// EnvLibPath names a directory searched first for the shared libraries in
// builds without cgo.
const EnvLibPath = "FFBRIDGE_LIB_PATH"

// Version is a packed library version as produced by AV_VERSION_INT:
// major<<16 | minor<<8 | micro.
type Version uint32

// NewVersion packs major, minor and micro.
func NewVersion(major, minor, micro int) Version {
	return Version(uint32(major)<<16 | uint32(minor&0xFF)<<8 | uint32(micro&0xFF))
}

func (v Version) Major() int { return int(v>>16) & 0xFF }
func (v Version) Minor() int { return int(v>>8) & 0xFF }
func (v Version) Micro() int { return int(v) & 0xFF }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Micro())
}

// Library pairs the version a library was compiled against with the
// version that is actually loaded.
type Library struct {
	Name     string
	Compiled Version
	Running  Version
}

// Compatible reports whether the running library can serve code compiled
// against the headers: same major, and a minor at least as new.
func (l Library) Compatible() bool {
	return l.Running.Major() == l.Compiled.Major() &&
		l.Running.Minor() >= l.Compiled.Minor()
}

func (l Library) String() string {
	if l.Compiled == 0 {
		return fmt.Sprintf("%s: running=%s", l.Name, l.Running)
	}
	return fmt.Sprintf("%s: running=%s compiled=%s", l.Name, l.Running, l.Compiled)
}

// describeLibraries renders one line per library, flagging the ones that
// are not ABI-compatible. ok is false if any library is flagged.
func describeLibraries(libs []Library) (msg string, ok bool) {
	var b strings.Builder
	ok = true
	for _, l := range libs {
		b.WriteString("\n")
		b.WriteString(l.String())
		if !l.Compatible() {
			ok = false
			b.WriteString(" <- not ABI-compatible!")
		}
	}
	return b.String(), ok
}
