package config

import (
	"github.com/open-edge-platform/os-envcheck/internal/ospackage/rpmdb"
	"github.com/open-edge-platform/os-envcheck/internal/utils/system"
)

// ConfigHelpers provides convenient access to global configuration
type ConfigHelpers struct {
	config *GlobalConfig
}

// NewConfigHelpers creates a new config helpers instance
func NewConfigHelpers(config *GlobalConfig) *ConfigHelpers {
	return &ConfigHelpers{config: config}
}

// RPMCommand returns the package query template, locating rpm when no
// path is configured
func (c *ConfigHelpers) RPMCommand() rpmdb.Command {
	cmd := rpmdb.DefaultCommand()
	if c.config.RPM.Path != "" {
		cmd.RPMPath = c.config.RPM.Path
	}
	if c.config.RPM.QueryFormat != "" {
		cmd.QueryFormat = c.config.RPM.QueryFormat
	}
	return cmd
}

// Detector returns a canonical distro detector running the configured probes
// in order
func (c *ConfigHelpers) Detector() (*system.Detector, error) {
	if len(c.config.Distro.Probes) == 0 {
		return system.DefaultDetector, nil
	}
	probes, err := system.ProbesByName(c.config.Distro.Probes)
	if err != nil {
		return nil, err
	}
	return &system.Detector{Probes: probes}, nil
}

// SELinuxContext returns the type applied by selinux set
func (c *ConfigHelpers) SELinuxContext() string {
	return c.config.SELinux.Context
}

// SysconfigFile returns the sysconfig file edited by options edit-file
func (c *ConfigHelpers) SysconfigFile() string {
	return c.config.Sysconfig.File
}

// SysconfigKey returns the assignment edited by options edit-file
func (c *ConfigHelpers) SysconfigKey() string {
	return c.config.Sysconfig.Key
}

// Requirements returns the packages rpm check verifies by default
func (c *ConfigHelpers) Requirements() []rpmdb.Requirement {
	return c.config.Requirements
}

// LogLevel returns the configured log level
func (c *ConfigHelpers) LogLevel() string {
	return c.config.Logging.Level
}
