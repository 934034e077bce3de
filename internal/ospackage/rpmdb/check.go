package rpmdb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/open-edge-platform/os-envcheck/internal/ospackage"
	"github.com/open-edge-platform/os-envcheck/internal/utils/logger"
)

// Requirement names a package that must be installed, optionally at or
// above MinVersion.
type Requirement struct {
	Name       string `yaml:"name" toml:"name" json:"name"`
	MinVersion string `yaml:"minVersion,omitempty" toml:"minVersion" json:"minVersion,omitempty"`
}

// ParseRequirement accepts "name" or "name>=version".
func ParseRequirement(s string) (Requirement, error) {
	name, minVersion, hasMin := strings.Cut(s, ">=")
	name = strings.TrimSpace(name)
	minVersion = strings.TrimSpace(minVersion)
	if name == "" || (hasMin && minVersion == "") {
		return Requirement{}, fmt.Errorf("invalid requirement %q, expected NAME or NAME>=VERSION", s)
	}
	return Requirement{Name: name, MinVersion: minVersion}, nil
}

func (r Requirement) String() string {
	if r.MinVersion == "" {
		return r.Name
	}
	return r.Name + ">=" + r.MinVersion
}

// CheckResult is the outcome for one requirement.
type CheckResult struct {
	Requirement Requirement
	Installed   *ospackage.NVRA
	Err         error
}

// Satisfied reports whether the requirement is met.
func (r CheckResult) Satisfied() bool {
	return r.Err == nil
}

// Check resolves one requirement through the cache. A package rpm does not
// know about is reported through Err, not as a failure of Check itself.
func (c *Cache) Check(req Requirement) CheckResult {
	log := logger.Logger()
	nvra, err := c.Get(req.Name)
	if err != nil {
		log.Warnf("Required package %s unavailable: %v", req.Name, err)
		return CheckResult{Requirement: req, Err: err}
	}
	res := CheckResult{Requirement: req, Installed: &nvra}
	if req.MinVersion != "" && !nvra.AtLeast(req.MinVersion) {
		res.Err = fmt.Errorf("%s is older than required %s", nvra, req.MinVersion)
		log.Warnf("Required package %s: %v", req.Name, res.Err)
	}
	return res
}

// CheckAll resolves every requirement and joins the failures. When progress
// is not nil it is called with each result as soon as it is known.
func (c *Cache) CheckAll(reqs []Requirement, progress func(CheckResult)) ([]CheckResult, error) {
	results := make([]CheckResult, 0, len(reqs))
	var errs []error
	for _, req := range reqs {
		res := c.Check(req)
		results = append(results, res)
		if progress != nil {
			progress(res)
		}
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", req, res.Err))
		}
	}
	return results, errors.Join(errs...)
}
