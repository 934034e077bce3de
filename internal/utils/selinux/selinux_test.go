package selinux

import (
	"errors"
	"testing"

	goselinux "github.com/opencontainers/selinux/go-selinux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-edge-platform/os-envcheck/internal/utils/shell"
)

func useMock(t *testing.T, commands []shell.MockCommand) *shell.MockExecutor {
	t.Helper()
	original := shell.Default
	t.Cleanup(func() { shell.Default = original })
	mock := shell.NewMockExecutor(commands)
	shell.Default = mock
	return mock
}

func TestContextCommand(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		context   string
		recursive bool
		expected  string
	}{
		{
			name:     "default_context",
			path:     "/var/tmp/fixture",
			expected: "type -P selinuxenabled || exit 0 ; selinuxenabled || exit 0 ; chcon -t svirt_sandbox_file_t /var/tmp/fixture",
		},
		{
			name:      "recursive_custom_context",
			path:      "/srv/data",
			context:   "container_file_t",
			recursive: true,
			expected:  "type -P selinuxenabled || exit 0 ; selinuxenabled || exit 0 ; chcon -Rt container_file_t /srv/data",
		},
		{
			name:     "path_with_spaces",
			path:     "/tmp/my dir",
			expected: "type -P selinuxenabled || exit 0 ; selinuxenabled || exit 0 ; chcon -t svirt_sandbox_file_t '/tmp/my dir'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContextCommand(tt.path, tt.context, tt.recursive))
		})
	}
}

func TestSetContext(t *testing.T) {
	mock := useMock(t, []shell.MockCommand{
		{Pattern: "chcon -t svirt_sandbox_file_t /var/tmp/fixture", Output: ""},
	})

	require.NoError(t, SetContext("/var/tmp/fixture", "", false))
	assert.Equal(t, 1, mock.CallCount("chcon"))
}

func TestSetContextFailure(t *testing.T) {
	useMock(t, []shell.MockCommand{
		{Pattern: "chcon", Output: "chcon: can't apply partial context", Error: errors.New("exit status 1")},
	})

	err := SetContext("/var/tmp/fixture", "bogus", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/var/tmp/fixture")
	assert.Contains(t, err.Error(), "can't apply partial context")
}

func TestSetContextRequiresPath(t *testing.T) {
	mock := useMock(t, nil)

	assert.ErrorIs(t, SetContext("", "", false), ErrPathRequired)
	assert.Empty(t, mock.Calls)
}

func TestGetContext(t *testing.T) {
	original := fileLabel
	t.Cleanup(func() { fileLabel = original })

	fileLabel = func(path string) (string, error) {
		if path == "/missing" {
			return "", errors.New("no such file or directory")
		}
		return "system_u:object_r:svirt_sandbox_file_t:s0", nil
	}

	label, err := GetContext("/var/tmp/fixture")
	require.NoError(t, err)
	assert.Equal(t, "system_u:object_r:svirt_sandbox_file_t:s0", label)

	_, err = GetContext("/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such file or directory")

	_, err = GetContext("")
	assert.ErrorIs(t, err, ErrPathRequired)
}

func TestIsEnforcing(t *testing.T) {
	original := enforceMode
	t.Cleanup(func() { enforceMode = original })

	tests := []struct {
		name     string
		mode     int
		expected bool
		wantErr  bool
	}{
		{name: "enforcing", mode: goselinux.Enforcing, expected: true},
		{name: "permissive", mode: goselinux.Permissive, expected: false},
		{name: "disabled", mode: goselinux.Disabled, wantErr: true},
		{name: "garbage", mode: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enforceMode = func() int { return tt.mode }
			got, err := IsEnforcing()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnexpectedMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
