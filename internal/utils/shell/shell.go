package shell

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/open-edge-platform/os-envcheck/internal/utils/logger"
	"github.com/xyproto/files"
)

var (
	HostPath string = ""
)

// Executor runs shell command strings. Tests replace Default with a
// MockExecutor to keep host commands out of unit tests.
type Executor interface {
	ExecCmd(cmdStr string, sudo bool, chrootPath string, envVal []string) (string, error)
	ExecCmdSilent(cmdStr string, sudo bool, chrootPath string, envVal []string) (string, error)
}

// Default is the executor used by the package-level helpers.
var Default Executor = &DefaultExecutor{}

// GetOSEnvirons returns the system environment variables
func GetOSEnvirons() map[string]string {
	environ := make(map[string]string)
	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) == 2 {
			environ[parts[0]] = parts[1]
		}
	}
	return environ
}

// GetOSProxyEnvirons retrieves HTTP and HTTPS proxy environment variables
func GetOSProxyEnvirons() map[string]string {
	osEnv := GetOSEnvirons()
	proxyEnv := make(map[string]string)

	for key, value := range osEnv {
		if strings.Contains(strings.ToLower(key), "http_proxy") ||
			strings.Contains(strings.ToLower(key), "https_proxy") {
			proxyEnv[key] = value
		}
	}

	return proxyEnv
}

// getShell returns the preferred shell, falling back to /bin/sh if bash is not available
func getShell() string {
	shells := []string{"/bin/bash", "/usr/bin/bash", "/bin/sh"}
	for _, shell := range shells {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh"
}

// IsCommandExist checks if a command exists on the host or in a chroot environment.
// Host lookups go through the PATH cache; chroot lookups ask the chroot's shell.
func IsCommandExist(cmd string, chrootPath string) (bool, error) {
	if chrootPath == HostPath {
		return files.WhichCached(cmd) != "", nil
	}
	output, err := ExecCmdSilent("command -v "+cmd, false, chrootPath, nil)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, err
	}
	return strings.TrimSpace(output) != "", nil
}

// Quote single-quotes s for use as one word in a shell command string.
// Words made only of safe characters are returned unchanged.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("-_./:+=@%,", r):
		default:
			safe = false
		}
		if !safe {
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// GetFullCmdStr prepares a command string with necessary prefixes
func GetFullCmdStr(cmdStr string, sudo bool, chrootPath string, envVal []string) (string, error) {
	var fullCmdStr string
	log := logger.Logger()
	envValStr := ""
	for _, env := range envVal {
		envValStr += env + " "
	}

	if chrootPath != HostPath {
		if _, err := os.Stat(chrootPath); os.IsNotExist(err) {
			return cmdStr, fmt.Errorf("chroot path %s does not exist", chrootPath)
		}

		for key, value := range GetOSProxyEnvirons() {
			envValStr += key + "=" + value + " "
		}

		fullCmdStr = "sudo " + envValStr + "chroot " + chrootPath + " " + cmdStr
		log.Debugf("Chroot %s Exec: [%s]", filepath.Base(chrootPath), cmdStr)
	} else if sudo {
		for key, value := range GetOSProxyEnvirons() {
			envValStr += key + "=" + value + " "
		}

		fullCmdStr = "sudo " + envValStr + cmdStr
		log.Debugf("Exec: [sudo %s]", cmdStr)
	} else {
		fullCmdStr = envValStr + cmdStr
		log.Debugf("Exec: [%s]", cmdStr)
	}

	return fullCmdStr, nil
}

// DefaultExecutor runs commands through the host shell.
type DefaultExecutor struct{}

// ExecCmd executes a command and returns its combined output
func (d *DefaultExecutor) ExecCmd(cmdStr string, sudo bool, chrootPath string, envVal []string) (string, error) {
	log := logger.Logger()
	fullCmdStr, err := GetFullCmdStr(cmdStr, sudo, chrootPath, envVal)
	if err != nil {
		return "", fmt.Errorf("failed to get full command string: %w", err)
	}

	cmd := exec.Command(getShell(), "-c", fullCmdStr)
	output, err := cmd.CombinedOutput()
	outputStr := string(output)

	if err != nil {
		if outputStr != "" {
			log.Info(outputStr)
		}
		return outputStr, fmt.Errorf("failed to exec %s: %w", fullCmdStr, err)
	}
	if outputStr != "" {
		log.Debug(outputStr)
	}
	return outputStr, nil
}

// ExecCmdSilent executes a command and returns its stdout only. Output is
// not echoed to the log; stderr is attached to the error on failure.
func (d *DefaultExecutor) ExecCmdSilent(cmdStr string, sudo bool, chrootPath string, envVal []string) (string, error) {
	fullCmdStr, err := GetFullCmdStr(cmdStr, sudo, chrootPath, envVal)
	if err != nil {
		return "", fmt.Errorf("failed to get full command string: %w", err)
	}

	var stderr bytes.Buffer
	cmd := exec.Command(getShell(), "-c", fullCmdStr)
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return string(output), fmt.Errorf("failed to exec %s: %w: %s",
			fullCmdStr, err, strings.TrimSpace(stderr.String()))
	}
	return string(output), nil
}

// ExecCmd runs cmdStr through Default.
func ExecCmd(cmdStr string, sudo bool, chrootPath string, envVal []string) (string, error) {
	return Default.ExecCmd(cmdStr, sudo, chrootPath, envVal)
}

// ExecCmdSilent runs cmdStr through Default without logging its output.
func ExecCmdSilent(cmdStr string, sudo bool, chrootPath string, envVal []string) (string, error) {
	return Default.ExecCmdSilent(cmdStr, sudo, chrootPath, envVal)
}
