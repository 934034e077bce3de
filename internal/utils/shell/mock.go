package shell

import (
	"fmt"
	"strings"
)

// MockCommand maps a command pattern to a canned result. Pattern matches
// when it is a substring of the full command string.
type MockCommand struct {
	Pattern string
	Output  string
	Error   error
}

// MockExecutor answers commands from a fixed table and records every call.
type MockExecutor struct {
	Commands []MockCommand
	Calls    []string
}

// NewMockExecutor returns an executor that serves the given commands.
func NewMockExecutor(commands []MockCommand) *MockExecutor {
	return &MockExecutor{Commands: commands}
}

func (m *MockExecutor) lookup(cmdStr string) (string, error) {
	m.Calls = append(m.Calls, cmdStr)
	for _, mc := range m.Commands {
		if strings.Contains(cmdStr, mc.Pattern) {
			return mc.Output, mc.Error
		}
	}
	return "", fmt.Errorf("unexpected command for mock executor: %s", cmdStr)
}

func (m *MockExecutor) ExecCmd(cmdStr string, sudo bool, chrootPath string, envVal []string) (string, error) {
	return m.lookup(cmdStr)
}

func (m *MockExecutor) ExecCmdSilent(cmdStr string, sudo bool, chrootPath string, envVal []string) (string, error) {
	return m.lookup(cmdStr)
}

// CallCount returns how many recorded calls contained pattern.
func (m *MockExecutor) CallCount(pattern string) int {
	n := 0
	for _, c := range m.Calls {
		if strings.Contains(c, pattern) {
			n++
		}
	}
	return n
}
