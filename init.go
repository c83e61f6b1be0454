package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/pythcheck/internal/config"
)

const (
	sentinelStart = "# pythcheck:start"
	sentinelEnd   = "# pythcheck:end"
)

// newInitCmd implements `pythcheck init`, which writes a commented default
// configuration to pythcheck.toml or into a pyproject.toml.
func newInitCmd(stdout, stderr io.Writer) *cobra.Command {
	var dryRun, force bool

	cmd := &cobra.Command{
		Use:   "init [flags] [FILE]",
		Short: "Write a default configuration file",
		Long: `Write a commented default configuration.

FILE defaults to ./pythcheck.toml. When FILE is a pyproject.toml, a
[tool.pythcheck] section is written between sentinel comments so it can be
updated in place on later runs without touching surrounding content.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args, dryRun, force, stdout, stderr)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing pythcheck.toml")
	return cmd
}

func runInit(args []string, dryRun, force bool, stdout, stderr io.Writer) error {
	// --dry-run with no path: just print the settings.
	if dryRun && len(args) == 0 {
		_, _ = fmt.Fprint(stdout, generateConfig(""))
		return nil
	}

	path := config.FileName
	if len(args) > 0 {
		path = args[0]
	}

	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var updated string
	if filepath.Base(path) == config.PyprojectName {
		updated, err = applySection(string(existing), generateSection())
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	} else {
		if existing != nil && !force && !dryRun {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		updated = generateConfig("")
	}

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote pythcheck settings to %s\n", path)
	return nil
}

// generateConfig renders the default settings as commented TOML. A non-empty
// table prefix nests everything under that table, e.g. "tool.pythcheck".
func generateConfig(table string) string {
	d := config.Default()
	testsTable := "tests"
	var b strings.Builder

	b.WriteString("# pythcheck settings. Command-line flags take precedence.\n")
	if table != "" {
		testsTable = table + ".tests"
		fmt.Fprintf(&b, "[%s]\n", table)
	}
	fmt.Fprintf(&b, `
# Skip files and directories whose name starts with ".".
ignore_hidden = %t

# Skip test files and directories, as configured under [%s].
ignore_tests = %t

# Report parameters only, never missing return annotations.
ignore_return = %t

# Skip files git would ignore.
respect_gitignore = %t

# Glob patterns, relative to the checked path, to skip.
exclude = %s

# Files larger than this many bytes are skipped. 0 disables the limit.
max_file_size = %d

# Names exempt from the rule when they are the first parameter of a function.
exempt_params = %s

# Output format: %s.
format = %s

[%s]
# Directory names whose contents are tests.
dirs = %s

# File name patterns of test modules.
patterns = %s
`,
		d.IgnoreHidden,
		testsTable,
		d.IgnoreTests,
		d.IgnoreReturn,
		d.RespectGitignore,
		tomlList(d.Exclude),
		d.MaxFileSize,
		tomlList(d.ExemptParams),
		strings.Join(config.Formats, ", "),
		strconv.Quote(d.Format),
		testsTable,
		tomlList(d.Tests.Dirs),
		tomlList(d.Tests.Patterns),
	)
	return b.String()
}

// generateSection returns the sentinel-wrapped [tool.pythcheck] block.
func generateSection() string {
	return sentinelStart + "\n" + generateConfig("tool.pythcheck") + sentinelEnd
}

func tomlList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. A [tool.pythcheck] table outside the
// sentinels is an error, since appending would define it twice.
func applySection(content, section string) (string, error) {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):], nil
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "[tool.pythcheck]" || strings.HasPrefix(line, "[tool.pythcheck.") {
			return "", errors.New("existing [tool.pythcheck] table is not managed by pythcheck init; remove it first")
		}
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if len(content) > 0 {
		content += "\n"
	}
	return content + section + "\n", nil
}
