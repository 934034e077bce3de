package system

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/open-edge-platform/os-envcheck/internal/utils/logger"
)

var (
	ErrNoDistro         = errors.New("no distros detected")
	ErrMultipleDistros  = errors.New("multiple distros detected")
	ErrTooManyArguments = errors.New("canonical distro takes at most 1 hint")
	ErrUnknownProbe     = errors.New("unknown distro probe")
	ErrNoReleaseFile    = errors.New("no distro release file readable")
)

// Probe inspects a hint and returns the distro label it recognizes, or ""
// (or "none") when it does not match. Probes must be pure functions of the
// hint.
type Probe struct {
	Name  string
	Match func(hint string) string
}

// DetectionError carries the evidence behind a failed detection.
type DetectionError struct {
	Err     error
	Matches map[string]string
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("%v: %v", e.Err, e.Matches)
}

func (e *DetectionError) Unwrap() error { return e.Err }

// CanonicalDistro is the single distro name every matching probe agreed on.
type CanonicalDistro struct {
	name string
	// Matches maps probe name to the lower-cased label it returned.
	Matches map[string]string
}

func (c *CanonicalDistro) String() string {
	return c.name
}

// Detector folds the results of an ordered probe list into one distro name.
type Detector struct {
	Probes []Probe
}

// DefaultProbes is the stock ordered probe list.
var DefaultProbes = []Probe{
	{Name: "fedora", Match: MatchFedora},
	{Name: "rhel", Match: MatchRHEL},
	{Name: "centos", Match: MatchCentOS},
}

// DefaultDetector runs DefaultProbes.
var DefaultDetector = &Detector{Probes: DefaultProbes}

// ProbesByName selects probes from DefaultProbes in the given order.
func ProbesByName(names []string) ([]Probe, error) {
	byName := make(map[string]Probe, len(DefaultProbes))
	for _, p := range DefaultProbes {
		byName[p.Name] = p
	}
	probes := make([]Probe, 0, len(names))
	for _, name := range names {
		p, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProbe, name)
		}
		probes = append(probes, p)
	}
	return probes, nil
}

// Investigate runs every probe against hint and returns the non-empty
// results, lower-cased, keyed by probe name.
func (d *Detector) Investigate(hint string) map[string]string {
	matches := map[string]string{}
	for _, p := range d.Probes {
		match := strings.ToLower(p.Match(hint))
		if match == "" || match == "none" {
			continue
		}
		matches[p.Name] = match
	}
	return matches
}

// Detect returns the canonical distro for an optional hint. It fails unless
// exactly one distinct label was matched.
func (d *Detector) Detect(hints ...string) (*CanonicalDistro, error) {
	if len(hints) > 1 {
		return nil, fmt.Errorf("%w (%d given)", ErrTooManyArguments, len(hints))
	}
	hint := ""
	if len(hints) == 1 {
		hint = hints[0]
	}

	matches := d.Investigate(hint)
	distinct := map[string]struct{}{}
	for _, v := range matches {
		distinct[v] = struct{}{}
	}

	switch len(distinct) {
	case 1:
		for name := range distinct {
			logger.Logger().Debugf("Canonical distro %s from %v", name, matches)
			return &CanonicalDistro{name: name, Matches: matches}, nil
		}
	case 0:
		return nil, &DetectionError{Err: ErrNoDistro, Matches: matches}
	}
	return nil, &DetectionError{Err: ErrMultipleDistros, Matches: matches}
}

// NewCanonicalDistro detects with DefaultDetector.
func NewCanonicalDistro(hints ...string) (*CanonicalDistro, error) {
	return DefaultDetector.Detect(hints...)
}

// DetectHostCanonicalDistro runs DefaultDetector against the host.
func DetectHostCanonicalDistro() (*CanonicalDistro, error) {
	return DefaultDetector.DetectHost()
}

// DetectHost feeds the host's release file to the probes. /etc/os-release
// is preferred over /etc/redhat-release.
func (d *Detector) DetectHost() (*CanonicalDistro, error) {
	for _, path := range []string{OsReleaseFile, RedhatReleaseFile} {
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Logger().Debugf("Skipping %s: %v", path, err)
			continue
		}
		return d.Detect(string(content))
	}
	return nil, ErrNoReleaseFile
}

// SortedProbeNames lists the probe names of matches in sorted order.
func SortedProbeNames(matches map[string]string) []string {
	names := make([]string, 0, len(matches))
	for name := range matches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// releaseID returns the os-release ID of hint, or "" when hint does not
// look like os-release content.
func releaseID(hint string) string {
	fields, err := ParseOsRelease(strings.NewReader(hint))
	if err != nil {
		return ""
	}
	return strings.ToLower(fields["ID"])
}

// matchRelease matches an os-release ID exactly, otherwise looks for any of
// phrases in free text such as /etc/redhat-release.
func matchRelease(hint, id, label string, phrases ...string) string {
	if got := releaseID(hint); got != "" {
		if got == id {
			return label
		}
		return ""
	}
	lower := strings.ToLower(hint)
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return label
		}
	}
	return ""
}

func MatchFedora(hint string) string {
	return matchRelease(hint, "fedora", "fedora", "fedora")
}

func MatchRHEL(hint string) string {
	return matchRelease(hint, "rhel", "rhel", "red hat enterprise linux", "rhel")
}

func MatchCentOS(hint string) string {
	return matchRelease(hint, "centos", "centos", "centos")
}
