// Package discover finds the Python source files a run should check.
package discover

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/pythcheck/internal/lang"
)

// FileEntry represents a discovered source file.
type FileEntry struct {
	Path string // Root joined with Rel, as the user would type it
	Rel  string // Relative to the scanned root, slash-separated
}

// Options control which files are candidates.
type Options struct {
	IgnoreHidden     bool
	IgnoreTests      bool
	Tests            *TestMatcher // Defaults to DefaultTestMatcher
	Exclude          []string     // doublestar patterns against Rel
	RespectGitignore bool
}

var skipDirs = map[string]struct{}{
	"__pycache__": {},
	".git":        {},
	".hg":         {},
	".svn":        {},
}

// Validate reports the first malformed exclude pattern.
func (o Options) Validate() error {
	for _, p := range o.Exclude {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

// Files discovers Python source files under root. If root is a regular
// file it is returned on its own, whatever its extension, unless the
// filters exclude it; the hidden filter then looks at every segment of
// root as given. Results are sorted by relative path.
func Files(root string, opts Options) ([]FileEntry, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Tests == nil {
		opts.Tests = DefaultTestMatcher()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		name := filepath.Base(root)
		if opts.IgnoreHidden && HasHiddenSegment(filepath.ToSlash(filepath.Clean(root))) {
			return nil, nil
		}
		if opts.excluded(name) {
			return nil, nil
		}
		return []FileEntry{{Path: root, Rel: name}}, nil
	}

	var gitFiles map[string]struct{}
	var gi *ignore.GitIgnore
	if opts.RespectGitignore {
		gitFiles = gitLsFiles(root)
		if gitFiles == nil {
			gi = loadGitignore(root)
		}
	}

	var results []FileEntry

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // skip unreadable entries
		}
		if path == root {
			return nil
		}

		relOS, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel := filepath.ToSlash(relOS)
		name := d.Name()

		if d.IsDir() {
			if _, skip := skipDirs[name]; skip {
				return filepath.SkipDir
			}
			if opts.IgnoreHidden && isHidden(name) {
				return filepath.SkipDir
			}
			if opts.IgnoreTests && opts.Tests.IsTestDir(name) {
				return filepath.SkipDir
			}
			if matchAny(opts.Exclude, rel) || matchAny(opts.Exclude, rel+"/") {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if lang.ForExtension(filepath.Ext(name)) == "" {
			return nil
		}
		if opts.excluded(rel) {
			return nil
		}

		if gitFiles != nil {
			if _, ok := gitFiles[rel]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		results = append(results, FileEntry{Path: path, Rel: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Rel < results[j].Rel
	})

	return results, nil
}

// excluded applies the hidden, test and exclude filters to a
// slash-separated relative file path.
func (o Options) excluded(rel string) bool {
	if o.IgnoreHidden && HasHiddenSegment(rel) {
		return true
	}
	if o.IgnoreTests && o.Tests.IsTestFile(rel) {
		return true
	}
	return matchAny(o.Exclude, rel)
}

// HasHiddenSegment reports whether any segment of a slash-separated
// relative path starts with ".". The "." and ".." segments are not hidden.
func HasHiddenSegment(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if isHidden(seg) {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
