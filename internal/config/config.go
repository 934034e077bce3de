// Package config loads the os-envcheck configuration file. YAML and TOML are
// accepted; both are checked against the embedded JSON schema before they
// are decoded.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
	k8syaml "sigs.k8s.io/yaml"

	"github.com/open-edge-platform/os-envcheck/internal/config/validate"
	"github.com/open-edge-platform/os-envcheck/internal/ospackage/rpmdb"
	"github.com/open-edge-platform/os-envcheck/internal/utils/logger"
	"github.com/open-edge-platform/os-envcheck/internal/utils/selinux"
	"github.com/open-edge-platform/os-envcheck/internal/utils/sysconfig"
)

// GlobalConfig holds every tunable of the harness helpers.
type GlobalConfig struct {
	RPM          RPMConfig           `yaml:"rpm" toml:"rpm"`
	Distro       DistroConfig        `yaml:"distro" toml:"distro"`
	SELinux      SELinuxConfig       `yaml:"selinux" toml:"selinux"`
	Sysconfig    SysconfigConfig     `yaml:"sysconfig" toml:"sysconfig"`
	Requirements []rpmdb.Requirement `yaml:"requirements" toml:"requirements"`
	Logging      LoggingConfig       `yaml:"logging" toml:"logging"`
}

// RPMConfig overrides the package query command. An empty Path means the
// rpm binary is located at runtime.
type RPMConfig struct {
	Path        string `yaml:"path" toml:"path"`
	QueryFormat string `yaml:"queryFormat" toml:"queryFormat"`
}

// DistroConfig selects and orders the canonical distro probes.
type DistroConfig struct {
	Probes []string `yaml:"probes" toml:"probes"`
}

type SELinuxConfig struct {
	Context string `yaml:"context" toml:"context"`
}

type SysconfigConfig struct {
	File string `yaml:"file" toml:"file"`
	Key  string `yaml:"key" toml:"key"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// DefaultGlobalConfig returns the configuration used when no file is given.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		RPM: RPMConfig{
			QueryFormat: rpmdb.DefaultQueryFormat,
		},
		Distro: DistroConfig{
			Probes: []string{"fedora", "rhel", "centos"},
		},
		SELinux: SELinuxConfig{
			Context: selinux.DefaultContext,
		},
		Sysconfig: SysconfigConfig{
			File: sysconfig.DefaultFile,
			Key:  sysconfig.DefaultKey,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

var global = DefaultGlobalConfig()

// Global returns the process configuration.
func Global() *GlobalConfig {
	return global
}

// SetGlobal replaces the process configuration. A nil config restores the
// defaults.
func SetGlobal(c *GlobalConfig) {
	if c == nil {
		c = DefaultGlobalConfig()
	}
	global = c
}

// LoadGlobalConfig reads path, choosing the decoder by extension. An empty
// path yields the defaults.
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	log := logger.Logger()
	if path == "" {
		return DefaultGlobalConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg *GlobalConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		cfg, err = parseYAMLConfig(data)
	case ".toml":
		cfg, err = parseTOMLConfig(data)
	default:
		return nil, fmt.Errorf("unsupported config file extension %q (want .yaml, .yml or .toml)", ext)
	}
	if err != nil {
		log.Errorf("Invalid config file %s: %v", path, err)
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	log.Debugf("Loaded config from %s", path)
	return cfg, nil
}

func parseYAMLConfig(data []byte) (*GlobalConfig, error) {
	cfg := DefaultGlobalConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	jsonData, err := k8syaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("converting YAML to JSON: %w", err)
	}
	if err := validate.ValidateGlobalConfigJSON(jsonData); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return cfg, nil
}

func parseTOMLConfig(data []byte) (*GlobalConfig, error) {
	var raw map[string]interface{}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("converting TOML to JSON: %w", err)
	}
	if err := validate.ValidateGlobalConfigJSON(jsonData); err != nil {
		return nil, err
	}

	cfg := DefaultGlobalConfig()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}
	return cfg, nil
}
