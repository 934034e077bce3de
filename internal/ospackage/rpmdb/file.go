package rpmdb

import (
	"fmt"
	"os"

	"github.com/open-edge-platform/os-envcheck/internal/ospackage"
	rpmutils "github.com/sassoftware/go-rpmutils"
)

// QueryFile reads the NVRA of a package file from its header, like
// rpm -qp. The result does not touch any cache.
func QueryFile(path string) (ospackage.NVRA, error) {
	f, err := os.Open(path)
	if err != nil {
		return ospackage.NVRA{}, fmt.Errorf("failed to open rpm file %s: %w", path, err)
	}
	defer f.Close()

	hdr, err := rpmutils.ReadHeader(f)
	if err != nil {
		return ospackage.NVRA{}, fmt.Errorf("failed to read rpm header from %s: %w", path, err)
	}
	nevra, err := hdr.GetNEVRA()
	if err != nil {
		return ospackage.NVRA{}, fmt.Errorf("failed to get NEVRA from %s: %w", path, err)
	}

	return ospackage.NVRA{
		Name:    nevra.Name,
		Version: nevra.Version,
		Release: nevra.Release,
		Arch:    nevra.Arch,
	}, nil
}
