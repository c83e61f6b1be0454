// Package config loads pythcheck settings from TOML.
//
// Settings live either in a standalone pythcheck.toml or in the
// [tool.pythcheck] table of a pyproject.toml. Command-line flags take
// precedence; see the main package for the merge.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/phobologic/pythcheck/internal/discover"
	"github.com/phobologic/pythcheck/internal/model"
)

// File names searched by Find, in order.
const (
	FileName      = "pythcheck.toml"
	PyprojectName = "pyproject.toml"
)

// DefaultMaxFileSize is the size above which files are skipped.
const DefaultMaxFileSize = 1_000_000 // 1 MB

// Formats lists the accepted values of Format.
var Formats = []string{"text", "toon", "json"}

// Config holds every setting a run reads.
type Config struct {
	IgnoreHidden     bool     `toml:"ignore_hidden"`
	IgnoreTests      bool     `toml:"ignore_tests"`
	IgnoreReturn     bool     `toml:"ignore_return"`
	RespectGitignore bool     `toml:"respect_gitignore"`
	Exclude          []string `toml:"exclude"`
	MaxFileSize      int64    `toml:"max_file_size"`
	ExemptParams     []string `toml:"exempt_params"`
	Format           string   `toml:"format"`
	Tests            Tests    `toml:"tests"`

	// Source is the file the settings came from, empty for defaults.
	Source string `toml:"-"`
}

// Tests configures test-file detection. An explicitly empty list disables
// that rule.
type Tests struct {
	Dirs     []string `toml:"dirs"`
	Patterns []string `toml:"patterns"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		MaxFileSize:  DefaultMaxFileSize,
		ExemptParams: slices.Clone(model.DefaultExemptParams),
		Format:       "text",
		Tests: Tests{
			Dirs:     slices.Clone(discover.DefaultTestDirs),
			Patterns: slices.Clone(discover.DefaultTestPatterns),
		},
	}
}

// Load reads path. A file named pyproject.toml is read from its
// [tool.pythcheck] table; anything else is read whole.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg *Config
	if filepath.Base(path) == PyprojectName {
		var found bool
		cfg, found, err = decodePyproject(data)
		if err == nil && !found {
			err = errors.New("no [tool.pythcheck] table")
		}
	} else {
		cfg, err = decode(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// Find looks for settings in dir: pythcheck.toml first, then a
// pyproject.toml carrying a [tool.pythcheck] table. It returns Default
// when neither exists.
func Find(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}

	path = filepath.Join(dir, PyprojectName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, found, err := decodePyproject(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !found {
		return Default(), nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

func decode(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, err
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("unknown key %q", keys[0].String())
	}
	return cfg, nil
}

func decodePyproject(data []byte) (*Config, bool, error) {
	var doc struct {
		Tool map[string]toml.Primitive `toml:"tool"`
	}
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, false, err
	}
	prim, ok := doc.Tool["pythcheck"]
	if !ok {
		return nil, false, nil
	}

	cfg := Default()
	if err := md.PrimitiveDecode(prim, cfg); err != nil {
		return nil, true, err
	}
	for _, k := range md.Undecoded() {
		if len(k) > 2 && k[0] == "tool" && k[1] == "pythcheck" {
			return nil, true, fmt.Errorf("unknown key %q", k.String())
		}
	}
	return cfg, true, nil
}

// Validate rejects settings that would fail later in the run.
func (c *Config) Validate() error {
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("invalid format %q (want one of %s)", c.Format, strings.Join(Formats, ", "))
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must not be negative, got %d", c.MaxFileSize)
	}
	for _, p := range c.Exclude {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	if _, err := discover.NewTestMatcher(c.Tests.Dirs, c.Tests.Patterns); err != nil {
		return err
	}
	return nil
}

// Policy returns the classification policy.
func (c *Config) Policy() model.Policy {
	return model.Policy{
		IgnoreHidden: c.IgnoreHidden,
		IgnoreTests:  c.IgnoreTests,
		IgnoreReturn: c.IgnoreReturn,
		ExemptParams: c.ExemptParams,
	}
}

// DiscoverOptions returns the file discovery filters.
func (c *Config) DiscoverOptions() (discover.Options, error) {
	tests, err := discover.NewTestMatcher(c.Tests.Dirs, c.Tests.Patterns)
	if err != nil {
		return discover.Options{}, err
	}
	return discover.Options{
		IgnoreHidden:     c.IgnoreHidden,
		IgnoreTests:      c.IgnoreTests,
		Tests:            tests,
		Exclude:          c.Exclude,
		RespectGitignore: c.RespectGitignore,
	}, nil
}
