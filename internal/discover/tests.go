package discover

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Default test-file conventions, matching pytest's discovery rules.
var (
	DefaultTestDirs     = []string{"tests"}
	DefaultTestPatterns = []string{"test_*.py", "*_test.py"}
)

// TestMatcher decides whether a path belongs to a test suite. A path is a
// test path if any directory segment equals one of the configured directory
// names, or if its file name matches one of the configured patterns. The two
// rules are independent; either list may be empty to disable that rule.
type TestMatcher struct {
	dirs     map[string]struct{}
	patterns []glob.Glob
}

// NewTestMatcher compiles the directory names and file-name glob patterns.
func NewTestMatcher(dirs, patterns []string) (*TestMatcher, error) {
	m := &TestMatcher{dirs: make(map[string]struct{}, len(dirs))}
	for _, d := range dirs {
		m.dirs[d] = struct{}{}
	}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid test pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, g)
	}
	return m, nil
}

// DefaultTestMatcher returns a matcher for DefaultTestDirs and DefaultTestPatterns.
func DefaultTestMatcher() *TestMatcher {
	m, err := NewTestMatcher(DefaultTestDirs, DefaultTestPatterns)
	if err != nil {
		panic(err) // defaults are constant
	}
	return m
}

// IsTestDir reports whether a single directory name is a test directory.
func (m *TestMatcher) IsTestDir(name string) bool {
	_, ok := m.dirs[name]
	return ok
}

// IsTestFile reports whether a slash-separated relative path is a test file.
func (m *TestMatcher) IsTestFile(rel string) bool {
	segs := strings.Split(rel, "/")
	name := segs[len(segs)-1]
	for _, seg := range segs[:len(segs)-1] {
		if m.IsTestDir(seg) {
			return true
		}
	}
	for _, g := range m.patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}
