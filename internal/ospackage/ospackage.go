package ospackage

import (
	"strings"

	rpmutils "github.com/sassoftware/go-rpmutils"
)

// NVRA identifies one installed package build.
type NVRA struct {
	Name    string `json:"name"`    // e.g. "docker"
	Version string `json:"version"` // e.g. "1.10.3"
	Release string `json:"release"` // e.g. "46.el7.14"
	Arch    string `json:"arch"`    // e.g. "x86_64", "noarch", "(none)"
}

// NVRAFields is the number of fields in an NVRA record.
const NVRAFields = 4

// NewNVRA builds a record from exactly four fields. ok is false for any
// other field count.
func NewNVRA(fields ...string) (nvra NVRA, ok bool) {
	if len(fields) != NVRAFields {
		return NVRA{}, false
	}
	return NVRA{Name: fields[0], Version: fields[1], Release: fields[2], Arch: fields[3]}, true
}

// String renders the record as name-version-release.arch.
func (n NVRA) String() string {
	return n.Name + "-" + n.Version + "-" + n.Release + "." + n.Arch
}

// VR returns version-release.
func (n NVRA) VR() string {
	return n.Version + "-" + n.Release
}

// Compare orders two builds by version, then release, using rpmvercmp.
// Names and arches are not compared.
func (n NVRA) Compare(other NVRA) int {
	if c := rpmutils.Vercmp(n.Version, other.Version); c != 0 {
		return c
	}
	return rpmutils.Vercmp(n.Release, other.Release)
}

// AtLeast reports whether the build's version is not older than minVersion.
// minVersion may carry a release ("1.10-3"); without one only versions
// are compared.
func (n NVRA) AtLeast(minVersion string) bool {
	i := strings.LastIndex(minVersion, "-")
	if i < 0 {
		return rpmutils.Vercmp(n.Version, minVersion) >= 0
	}
	return n.Compare(NVRA{Version: minVersion[:i], Release: minVersion[i+1:]}) >= 0
}

// Vercmp compares two version or release strings with rpm ordering and
// returns -1, 0 or 1.
func Vercmp(a, b string) int {
	return rpmutils.Vercmp(a, b)
}
