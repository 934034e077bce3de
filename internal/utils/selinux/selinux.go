// Package selinux labels test fixtures for container access and reports the
// host's enforcement mode. Writes go through chcon so they behave exactly like
// the harness scripts; reads use the go-selinux binding.
package selinux

import (
	"errors"
	"fmt"

	goselinux "github.com/opencontainers/selinux/go-selinux"

	"github.com/open-edge-platform/os-envcheck/internal/utils/logger"
	"github.com/open-edge-platform/os-envcheck/internal/utils/shell"
)

// DefaultContext is the type container processes may read and write.
const DefaultContext = "svirt_sandbox_file_t"

var (
	ErrPathRequired   = errors.New("selinux: path is required")
	ErrUnexpectedMode = errors.New("selinux: unexpected enforce mode")
)

// Swapped in tests; the host may not have SELinux at all.
var (
	fileLabel   = goselinux.FileLabel
	enforceMode = goselinux.EnforceMode
)

// ContextCommand returns the shell snippet SetContext runs. It exits 0
// without touching path when SELinux tooling is absent or disabled.
func ContextCommand(path, context string, recursive bool) string {
	if context == "" {
		context = DefaultContext
	}
	flags := "-t"
	if recursive {
		flags = "-Rt"
	}
	return fmt.Sprintf("type -P selinuxenabled || exit 0 ; selinuxenabled || exit 0 ; chcon %s %s %s",
		flags, shell.Quote(context), shell.Quote(path))
}

// SetContext sets the SELinux type of path, recursively when asked. An empty
// context means DefaultContext.
func SetContext(path, context string, recursive bool) error {
	log := logger.Logger()
	if path == "" {
		return ErrPathRequired
	}
	cmdStr := ContextCommand(path, context, recursive)
	output, err := shell.ExecCmd(cmdStr, false, shell.HostPath, nil)
	if err != nil {
		log.Errorf("Failed to set SELinux context on %s: %v", path, err)
		return fmt.Errorf("failed to set SELinux context on %s: %w (output: %s)", path, err, output)
	}
	return nil
}

// GetContext returns the full SELinux label of path.
func GetContext(path string) (string, error) {
	if path == "" {
		return "", ErrPathRequired
	}
	label, err := fileLabel(path)
	if err != nil {
		return "", fmt.Errorf("failed to read SELinux context of %s: %w", path, err)
	}
	return label, nil
}

// IsEnforcing maps the current enforce mode to a boolean. Disabled hosts
// yield ErrUnexpectedMode.
func IsEnforcing() (bool, error) {
	switch mode := enforceMode(); mode {
	case goselinux.Enforcing:
		return true, nil
	case goselinux.Permissive:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %d", ErrUnexpectedMode, mode)
	}
}
