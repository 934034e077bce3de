package system

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/open-edge-platform/os-envcheck/internal/utils/logger"
	"github.com/open-edge-platform/os-envcheck/internal/utils/shell"
)

var (
	OsReleaseFile     = "/etc/os-release"
	RedhatReleaseFile = "/etc/redhat-release"
)

// ParseOsRelease reads os-release style KEY=VALUE lines. Surrounding quotes
// are removed from values; lines without "=" are skipped.
func ParseOsRelease(r io.Reader) (map[string]string, error) {
	fields := map[string]string{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), "\"'")
		fields[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return fields, nil
}

func GetHostOsInfo() (map[string]string, error) {
	log := logger.Logger()
	var hostOsInfo = map[string]string{
		"name":    "",
		"version": "",
		"arch":    "",
	}

	output, err := shell.ExecCmd("uname -m", false, shell.HostPath, nil)
	if err != nil {
		log.Errorf("Failed to get host architecture: %v", err)
		return hostOsInfo, fmt.Errorf("failed to get host architecture: %w", err)
	}
	hostOsInfo["arch"] = strings.TrimSpace(output)

	if file, err := os.Open(OsReleaseFile); err == nil {
		defer file.Close()
		fields, err := ParseOsRelease(file)
		if err == nil {
			hostOsInfo["name"] = fields["NAME"]
			hostOsInfo["version"] = fields["VERSION_ID"]
			log.Infof("Detected OS info: %s %s %s",
				hostOsInfo["name"], hostOsInfo["version"], hostOsInfo["arch"])
			return hostOsInfo, nil
		}
		log.Warnf("Failed to parse %s: %v", OsReleaseFile, err)
	}

	output, err = shell.ExecCmd("lsb_release -si", false, shell.HostPath, nil)
	if err != nil {
		log.Errorf("Failed to get host OS name: %v", err)
		return hostOsInfo, fmt.Errorf("failed to get host OS name: %w", err)
	}
	if output != "" {
		hostOsInfo["name"] = strings.TrimSpace(output)
		output, err = shell.ExecCmd("lsb_release -sr", false, shell.HostPath, nil)
		if err != nil {
			log.Errorf("Failed to get host OS version: %v", err)
			return hostOsInfo, fmt.Errorf("failed to get host OS version: %w", err)
		}
		if output != "" {
			hostOsInfo["version"] = strings.TrimSpace(output)
			log.Infof("Detected OS info: %s %s %s",
				hostOsInfo["name"], hostOsInfo["version"], hostOsInfo["arch"])
			return hostOsInfo, nil
		}
	}

	log.Errorf("Failed to detect host OS info!")
	return hostOsInfo, fmt.Errorf("failed to detect host OS info")
}

func GetHostOsPkgManager() (string, error) {
	hostOsInfo, err := GetHostOsInfo()
	if err != nil {
		return "", err
	}

	switch hostOsInfo["name"] {
	case "Ubuntu", "Debian", "Debian GNU/Linux":
		return "apt", nil
	case "Fedora", "Fedora Linux", "CentOS", "CentOS Linux", "CentOS Stream",
		"Red Hat Enterprise Linux", "Red Hat Enterprise Linux Server":
		return "yum", nil
	case "Microsoft Azure Linux", "Edge Microvisor Toolkit":
		return "tdnf", nil
	default:
		logger.Logger().Errorf("Unsupported host OS: %s", hostOsInfo["name"])
		return "", fmt.Errorf("unsupported host OS: %s", hostOsInfo["name"])
	}
}

// OsDistribution contains information about the Linux OS distribution
type OsDistribution struct {
	Name            string   `json:"name"`            // Distribution name (e.g., "Fedora Linux", "CentOS Linux")
	Version         string   `json:"version"`         // Version (e.g., "7", "38")
	ID              string   `json:"id"`              // Distribution ID (e.g., "centos", "fedora")
	IDLike          []string `json:"idLike"`          // Related distributions (e.g., ["rhel", "fedora"])
	PackageTypes    []string `json:"packageTypes"`    // Supported package types (e.g., ["rpm"])
	PackageManagers []string `json:"packageManagers"` // Package managers (e.g., ["dnf", "yum", "rpm"])
	Canonical       string   `json:"canonical"`       // Canonical distro when the detection probes agree, else empty
}

// DetectOsDistribution detects the underlying Linux OS distribution and its supported package types
// by parsing /etc/os-release and checking available package managers
func DetectOsDistribution() (*OsDistribution, error) {
	log := logger.Logger()

	content, err := os.ReadFile(OsReleaseFile)
	if err != nil {
		return nil, fmt.Errorf("file %s not found: %w", OsReleaseFile, err)
	}
	fields, err := ParseOsRelease(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", OsReleaseFile, err)
	}

	osInfo := &OsDistribution{
		Name:    fields["NAME"],
		Version: fields["VERSION_ID"],
		ID:      strings.ToLower(fields["ID"]),
		IDLike:  strings.Fields(fields["ID_LIKE"]),
	}

	osInfo.PackageTypes, osInfo.PackageManagers = detectPackageSupport(osInfo.ID, osInfo.IDLike)
	if len(osInfo.PackageTypes) == 0 {
		log.Warnf("Could not determine package type for distribution: %s (ID: %s)", osInfo.Name, osInfo.ID)
	}

	if cd, err := DefaultDetector.Detect(string(content)); err == nil {
		osInfo.Canonical = cd.String()
	} else {
		log.Debugf("No canonical distro for %s: %v", osInfo.ID, err)
	}

	log.Infof("Detected OS distribution: %s %s (ID: %s, Canonical: %q, Package Types: %v, Package Managers: %v)",
		osInfo.Name, osInfo.Version, osInfo.ID, osInfo.Canonical, osInfo.PackageTypes, osInfo.PackageManagers)

	return osInfo, nil
}

// detectPackageSupport determines the package types and managers based on distribution ID
func detectPackageSupport(id string, idLike []string) ([]string, []string) {
	if pkgTypes, pkgMgrs := getPackageInfoForID(id); len(pkgTypes) > 0 {
		return pkgTypes, pkgMgrs
	}
	for _, likeID := range idLike {
		if pkgTypes, pkgMgrs := getPackageInfoForID(likeID); len(pkgTypes) > 0 {
			return pkgTypes, pkgMgrs
		}
	}
	return detectFromCommands()
}

// getPackageInfoForID returns package types and managers for a given distribution ID
func getPackageInfoForID(id string) ([]string, []string) {
	switch strings.ToLower(id) {
	case "ubuntu", "debian", "linuxmint", "pop", "elementary", "kali", "raspbian":
		return []string{"deb"}, []string{"apt", "dpkg"}
	case "fedora", "rhel", "centos", "rocky", "almalinux", "scientific", "oracle":
		return []string{"rpm"}, []string{"dnf", "yum", "rpm"}
	case "opensuse", "opensuse-leap", "opensuse-tumbleweed", "sles", "sle":
		return []string{"rpm"}, []string{"zypper", "rpm"}
	case "mariner", "azurelinux":
		return []string{"rpm"}, []string{"tdnf", "rpm"}
	case "arch", "manjaro", "endeavouros":
		return []string{"pkg.tar.zst", "pkg.tar.xz"}, []string{"pacman"}
	case "alpine":
		return []string{"apk"}, []string{"apk"}
	default:
		return nil, nil
	}
}

// detectFromCommands attempts to detect package support by checking for package manager commands
func detectFromCommands() ([]string, []string) {
	// order matters for precedence
	checks := []struct {
		cmd          string
		packageTypes []string
		managers     []string
	}{
		{"dnf", []string{"rpm"}, []string{"dnf"}},
		{"tdnf", []string{"rpm"}, []string{"tdnf"}},
		{"yum", []string{"rpm"}, []string{"yum"}},
		{"zypper", []string{"rpm"}, []string{"zypper"}},
		{"rpm", []string{"rpm"}, []string{"rpm"}},
		{"apt", []string{"deb"}, []string{"apt"}},
		{"dpkg", []string{"deb"}, []string{"dpkg"}},
		{"pacman", []string{"pkg.tar.zst"}, []string{"pacman"}},
		{"apk", []string{"apk"}, []string{"apk"}},
	}

	for _, check := range checks {
		exists, err := shell.IsCommandExist(check.cmd, shell.HostPath)
		if err == nil && exists {
			return check.packageTypes, check.managers
		}
	}

	return []string{}, []string{}
}
