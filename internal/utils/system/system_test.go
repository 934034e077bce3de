package system_test

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/open-edge-platform/os-envcheck/internal/utils/shell"
	"github.com/open-edge-platform/os-envcheck/internal/utils/system"
)

func writeRelease(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "os-release")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write release file: %v", err)
	}
	return path
}

func TestGetHostOsInfo(t *testing.T) {
	originalExecutor := shell.Default
	originalOsReleaseFile := system.OsReleaseFile
	defer func() {
		shell.Default = originalExecutor
		system.OsReleaseFile = originalOsReleaseFile
	}()

	tests := []struct {
		name         string
		osRelease    string
		mockCommands []shell.MockCommand
		expected     map[string]string
		expectError  bool
		errorMsg     string
	}{
		{
			name: "os_release_fedora",
			osRelease: `NAME="Fedora Linux"
VERSION="40 (Workstation Edition)"
ID=fedora
VERSION_ID=40
PRETTY_NAME="Fedora Linux 40 (Workstation Edition)"`,
			mockCommands: []shell.MockCommand{
				{Pattern: "uname -m", Output: "x86_64\n"},
			},
			expected: map[string]string{"name": "Fedora Linux", "version": "40", "arch": "x86_64"},
		},
		{
			name: "os_release_single_quotes",
			osRelease: `NAME='CentOS Stream'
VERSION_ID='9'`,
			mockCommands: []shell.MockCommand{
				{Pattern: "uname -m", Output: "aarch64\n"},
			},
			expected: map[string]string{"name": "CentOS Stream", "version": "9", "arch": "aarch64"},
		},
		{
			name: "os_release_malformed_lines",
			osRelease: `NAME="Red Hat Enterprise Linux"
INVALID_LINE_WITHOUT_EQUALS
VERSION_ID="9.4"
ANOTHER_INVALID=`,
			mockCommands: []shell.MockCommand{
				{Pattern: "uname -m", Output: "  x86_64  \n"},
			},
			expected: map[string]string{"name": "Red Hat Enterprise Linux", "version": "9.4", "arch": "x86_64"},
		},
		{
			name: "lsb_release_fallback",
			mockCommands: []shell.MockCommand{
				{Pattern: "uname -m", Output: "x86_64\n"},
				{Pattern: "lsb_release -si", Output: "CentOS\n"},
				{Pattern: "lsb_release -sr", Output: "7.9.2009\n"},
			},
			expected: map[string]string{"name": "CentOS", "version": "7.9.2009", "arch": "x86_64"},
		},
		{
			name: "uname_failure",
			mockCommands: []shell.MockCommand{
				{Pattern: "uname -m", Error: fmt.Errorf("uname command failed")},
			},
			expectError: true,
			errorMsg:    "failed to get host architecture",
		},
		{
			name: "lsb_release_si_failure",
			mockCommands: []shell.MockCommand{
				{Pattern: "uname -m", Output: "x86_64\n"},
				{Pattern: "lsb_release -si", Error: fmt.Errorf("lsb_release -si failed")},
			},
			expectError: true,
			errorMsg:    "failed to get host OS name",
		},
		{
			name: "lsb_release_sr_failure",
			mockCommands: []shell.MockCommand{
				{Pattern: "uname -m", Output: "x86_64\n"},
				{Pattern: "lsb_release -si", Output: "Fedora\n"},
				{Pattern: "lsb_release -sr", Error: fmt.Errorf("lsb_release -sr failed")},
			},
			expectError: true,
			errorMsg:    "failed to get host OS version",
		},
		{
			name: "lsb_release_empty_output",
			mockCommands: []shell.MockCommand{
				{Pattern: "uname -m", Output: "x86_64\n"},
				{Pattern: "lsb_release -si", Output: ""},
			},
			expectError: true,
			errorMsg:    "failed to detect host OS info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shell.Default = shell.NewMockExecutor(tt.mockCommands)
			if tt.osRelease != "" {
				system.OsReleaseFile = writeRelease(t, tt.osRelease)
			} else {
				system.OsReleaseFile = "/nonexistent/os-release"
			}

			result, err := system.GetHostOsInfo()
			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error, but got none")
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error containing '%s', but got: %v", tt.errorMsg, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, but got: %v", err)
			}
			for key, expectedValue := range tt.expected {
				if result[key] != expectedValue {
					t.Errorf("Expected %s='%s', but got '%s'", key, expectedValue, result[key])
				}
			}
		})
	}
}

func TestGetHostOsPkgManager(t *testing.T) {
	originalExecutor := shell.Default
	originalOsReleaseFile := system.OsReleaseFile
	defer func() {
		shell.Default = originalExecutor
		system.OsReleaseFile = originalOsReleaseFile
	}()
	system.OsReleaseFile = "/nonexistent/os-release"

	tests := []struct {
		osName      string
		expected    string
		expectError bool
	}{
		{osName: "Ubuntu", expected: "apt"},
		{osName: "Debian GNU/Linux", expected: "apt"},
		{osName: "Fedora", expected: "yum"},
		{osName: "CentOS Stream", expected: "yum"},
		{osName: "Red Hat Enterprise Linux", expected: "yum"},
		{osName: "Microsoft Azure Linux", expected: "tdnf"},
		{osName: "UnsupportedOS", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.osName, func(t *testing.T) {
			shell.Default = shell.NewMockExecutor([]shell.MockCommand{
				{Pattern: "uname -m", Output: "x86_64\n"},
				{Pattern: "lsb_release -si", Output: tt.osName + "\n"},
				{Pattern: "lsb_release -sr", Output: "1.0\n"},
			})

			result, err := system.GetHostOsPkgManager()
			if tt.expectError {
				if err == nil || !strings.Contains(err.Error(), "unsupported host OS: "+tt.osName) {
					t.Errorf("Expected unsupported host OS error, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, but got: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected '%s', but got '%s'", tt.expected, result)
			}
		})
	}
}

func TestParseOsRelease(t *testing.T) {
	content := `# comment
NAME="Fedora Linux"

ID=fedora
ID_LIKE='rhel fedora'
GARBAGE
VERSION_ID = 40
`
	fields, err := system.ParseOsRelease(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Expected no error, but got: %v", err)
	}
	expected := map[string]string{
		"NAME":       "Fedora Linux",
		"ID":         "fedora",
		"ID_LIKE":    "rhel fedora",
		"VERSION_ID": "40",
	}
	if !reflect.DeepEqual(fields, expected) {
		t.Errorf("Expected %v, got %v", expected, fields)
	}
}

func TestDetectOsDistribution(t *testing.T) {
	originalOsReleaseFile := system.OsReleaseFile
	defer func() { system.OsReleaseFile = originalOsReleaseFile }()

	tests := []struct {
		name              string
		osReleaseContent  string
		expectedID        string
		expectedIDLike    []string
		expectedPkgTypes  []string
		expectedCanonical string
	}{
		{
			name: "fedora",
			osReleaseContent: `NAME="Fedora Linux"
VERSION_ID="40"
ID=fedora`,
			expectedID:        "fedora",
			expectedPkgTypes:  []string{"rpm"},
			expectedCanonical: "fedora",
		},
		{
			name: "centos",
			osReleaseContent: `NAME="CentOS Linux"
VERSION_ID="7"
ID="centos"
ID_LIKE="rhel fedora"`,
			expectedID:        "centos",
			expectedIDLike:    []string{"rhel", "fedora"},
			expectedPkgTypes:  []string{"rpm"},
			expectedCanonical: "centos",
		},
		{
			name: "rhel",
			osReleaseContent: `NAME="Red Hat Enterprise Linux"
VERSION_ID="9.4"
ID="rhel"
ID_LIKE="fedora"`,
			expectedID:        "rhel",
			expectedIDLike:    []string{"fedora"},
			expectedPkgTypes:  []string{"rpm"},
			expectedCanonical: "rhel",
		},
		{
			name: "rocky_via_id_like",
			osReleaseContent: `NAME="Rocky Linux"
VERSION_ID="9.3"
ID="rocky"
ID_LIKE="rhel centos fedora"`,
			expectedID:        "rocky",
			expectedIDLike:    []string{"rhel", "centos", "fedora"},
			expectedPkgTypes:  []string{"rpm"},
			expectedCanonical: "",
		},
		{
			name: "ubuntu",
			osReleaseContent: `NAME="Ubuntu"
VERSION_ID="22.04"
ID=ubuntu
ID_LIKE=debian`,
			expectedID:        "ubuntu",
			expectedIDLike:    []string{"debian"},
			expectedPkgTypes:  []string{"deb"},
			expectedCanonical: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			system.OsReleaseFile = writeRelease(t, tt.osReleaseContent)

			result, err := system.DetectOsDistribution()
			if err != nil {
				t.Fatalf("Expected no error, but got: %v", err)
			}
			if result.ID != tt.expectedID {
				t.Errorf("Expected ID '%s', got '%s'", tt.expectedID, result.ID)
			}
			if len(tt.expectedIDLike) > 0 && !reflect.DeepEqual(result.IDLike, tt.expectedIDLike) {
				t.Errorf("Expected IDLike %v, got %v", tt.expectedIDLike, result.IDLike)
			}
			if !reflect.DeepEqual(result.PackageTypes, tt.expectedPkgTypes) {
				t.Errorf("Expected PackageTypes %v, got %v", tt.expectedPkgTypes, result.PackageTypes)
			}
			if result.Canonical != tt.expectedCanonical {
				t.Errorf("Expected Canonical '%s', got '%s'", tt.expectedCanonical, result.Canonical)
			}
		})
	}
}

func TestDetectOsDistribution_FileNotFound(t *testing.T) {
	originalOsReleaseFile := system.OsReleaseFile
	defer func() { system.OsReleaseFile = originalOsReleaseFile }()

	system.OsReleaseFile = "/nonexistent/path/os-release"
	_, err := system.DetectOsDistribution()
	if err == nil {
		t.Fatal("Expected error for missing os-release file, but got none")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected 'not found' error, got: %v", err)
	}
}
