// Package rpmdb answers "which build of package X is installed" with at most
// one rpm query per package name. Results are memoized in a Cache; the
// process-wide instance is returned by Shared.
//
// A Cache is not safe for concurrent use. Callers sharing one across
// goroutines must serialize access themselves.
package rpmdb

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/open-edge-platform/os-envcheck/internal/ospackage"
	"github.com/open-edge-platform/os-envcheck/internal/utils/logger"
	"github.com/open-edge-platform/os-envcheck/internal/utils/shell"
	"github.com/xyproto/files"
)

const (
	// DefaultRPMPath is used when the rpm binary is not overridden.
	DefaultRPMPath = "/usr/bin/rpm"
	// DefaultQueryFormat yields one hash-delimited NVRA per line.
	DefaultQueryFormat = `%{N}#%{V}#%{R}#%{ARCH}\n`
	// allPackages is the rpm flag that selects every installed package.
	allPackages = "-a"
	fieldSep    = "#"
)

var (
	ErrNotFound         = errors.New("package not found in cache")
	ErrMalformedOutput  = errors.New("query did not return line-delimited items of hash-delimited fields")
	ErrIncompatibleSeed = errors.New("seed value incompatible with NVRA")
)

// FormatError reports query output that does not split into NVRA records.
type FormatError struct {
	Command string
	Output  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s did not return expected line-delimited items of hash-delimited fields as output: %q",
		e.Command, e.Output)
}

func (e *FormatError) Unwrap() error { return ErrMalformedOutput }

// SeedError names the seed entry that could not become an NVRA.
type SeedError struct {
	Key   string
	Value []string
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("initializer key %s's value %v incompatible with NVRA (need %d fields)",
		e.Key, e.Value, ospackage.NVRAFields)
}

func (e *SeedError) Unwrap() error { return ErrIncompatibleSeed }

// Runner executes a complete query command string and returns its stdout.
type Runner func(cmdStr string) (string, error)

// ShellRunner runs queries through shell.Default without echoing output.
func ShellRunner(cmdStr string) (string, error) {
	return shell.ExecCmdSilent(cmdStr, false, shell.HostPath, nil)
}

// Command is the rpm query template. The package name, or "-a", is
// appended as the last word.
type Command struct {
	RPMPath     string
	QueryFormat string
}

// DefaultCommand returns the stock query: rpm -q --qf '%{N}#%{V}#%{R}#%{ARCH}\n'.
// When /usr/bin/rpm is missing the rpm found on PATH is used instead.
func DefaultCommand() Command {
	path := DefaultRPMPath
	if _, err := os.Stat(path); err != nil {
		if found := files.WhichCached("rpm"); found != "" {
			path = found
		}
	}
	return Command{RPMPath: path, QueryFormat: DefaultQueryFormat}
}

// String renders the command for one query argument.
func (c Command) String(arg string) string {
	return strings.Join([]string{
		shell.Quote(c.RPMPath), "-q", "--qf", "'" + c.QueryFormat + "'", shell.Quote(arg),
	}, " ")
}

// Option configures a Cache.
type Option func(*Cache)

// WithRunner replaces the query runner.
func WithRunner(r Runner) Option {
	return func(c *Cache) { c.run = r }
}

// WithCommand replaces the query command template.
func WithCommand(cmd Command) Option {
	return func(c *Cache) { c.cmd = cmd }
}

// Cache maps package names to NVRA records.
type Cache struct {
	run     Runner
	cmd     Command
	records map[string]ospackage.NVRA
	allDone bool
}

// NewCache returns an empty cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		run:     ShellRunner,
		cmd:     DefaultCommand(),
		records: map[string]ospackage.NVRA{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewSeededCache returns a cache preloaded from seed without querying rpm.
func NewSeededCache(seed map[string][]string, opts ...Option) (*Cache, error) {
	c := NewCache(opts...)
	if err := c.Seed(seed); err != nil {
		return nil, err
	}
	return c, nil
}

var shared *Cache

// Shared returns the process-wide cache, creating it on first use.
func Shared() *Cache {
	if shared == nil {
		shared = NewCache()
	}
	return shared
}

// SetShared replaces the process-wide cache and returns the previous one.
// Intended for tests and for the CLI, which configures the query command.
func SetShared(c *Cache) *Cache {
	prev := shared
	shared = c
	return prev
}

// Seed loads records without querying rpm. It only applies to an empty
// cache; a populated cache is left as is. Every value must hold exactly
// name, version, release and arch. Nothing is stored if any entry is bad.
func (c *Cache) Seed(seed map[string][]string) error {
	if len(c.records) != 0 || len(seed) == 0 {
		return nil
	}

	keys := make([]string, 0, len(seed))
	for k := range seed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	staged := make(map[string]ospackage.NVRA, len(seed))
	for _, k := range keys {
		nvra, ok := ospackage.NewNVRA(seed[k]...)
		if !ok {
			return &SeedError{Key: k, Value: seed[k]}
		}
		staged[k] = nvra
	}
	for k, v := range staged {
		c.records[k] = v
	}
	return nil
}

// Get returns the record for name, querying rpm once if it is not cached.
// Names beginning with "-" are never passed to rpm.
func (c *Cache) Get(name string) (ospackage.NVRA, error) {
	if _, cached := c.records[name]; !cached && !strings.HasPrefix(name, "-") {
		if err := c.store(name); err != nil {
			return ospackage.NVRA{}, err
		}
	}
	nvra, ok := c.records[name]
	if !ok {
		return ospackage.NVRA{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nvra, nil
}

// Lookup returns a cached record without querying.
func (c *Cache) Lookup(name string) (ospackage.NVRA, bool) {
	nvra, ok := c.records[name]
	return nvra, ok
}

// FillAll queries every installed package once. Later calls do nothing.
func (c *Cache) FillAll() error {
	if c.allDone {
		return nil
	}
	logger.Logger().Infof("Querying all installed packages, this may take a while")
	if err := c.store(allPackages); err != nil {
		return err
	}
	c.allDone = true
	return nil
}

// Filled reports whether FillAll has completed.
func (c *Cache) Filled() bool {
	return c.allDone
}

// Contains reports whether name is installed, filling the cache first.
func (c *Cache) Contains(name string) (bool, error) {
	if err := c.FillAll(); err != nil {
		return false, err
	}
	_, ok := c.records[name]
	return ok, nil
}

// Len returns the number of installed packages, filling the cache first.
func (c *Cache) Len() (int, error) {
	if err := c.FillAll(); err != nil {
		return 0, err
	}
	return len(c.records), nil
}

// Names returns every installed package name in sorted order, filling the
// cache first.
func (c *Cache) Names() ([]string, error) {
	if err := c.FillAll(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(c.records))
	for name := range c.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Records returns every installed package record sorted by name, filling
// the cache first.
func (c *Cache) Records() ([]ospackage.NVRA, error) {
	names, err := c.Names()
	if err != nil {
		return nil, err
	}
	out := make([]ospackage.NVRA, 0, len(names))
	for _, name := range names {
		out = append(out, c.records[name])
	}
	return out, nil
}

// Flush empties the cache so the next access queries rpm again.
func (c *Cache) Flush() {
	c.records = map[string]ospackage.NVRA{}
	c.allDone = false
}

// store runs one query and records every package it reports, keyed by the
// name rpm returned. Executor errors are returned unmodified.
func (c *Cache) store(arg string) error {
	cmdStr := c.cmd.String(arg)
	output, err := c.run(cmdStr)
	if err != nil {
		return err
	}

	parsed, err := ParseQueryOutput(output)
	if err != nil {
		return &FormatError{Command: cmdStr, Output: output}
	}
	for _, nvra := range parsed {
		c.records[nvra.Name] = nvra
	}
	logger.Logger().Debugf("Cached %d package record(s) from query %q", len(parsed), arg)
	return nil
}

// ParseQueryOutput splits query output into records. Every non-empty line
// must hold exactly four hash-delimited fields.
func ParseQueryOutput(output string) ([]ospackage.NVRA, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, nil
	}

	var records []ospackage.NVRA
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Split(strings.TrimSpace(line), fieldSep)
		nvra, ok := ospackage.NewNVRA(fields...)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMalformedOutput, line)
		}
		records = append(records, nvra)
	}
	return records, nil
}
