// pythcheck reports Python functions that are missing type hints.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/phobologic/pythcheck/internal/check"
	"github.com/phobologic/pythcheck/internal/config"
	"github.com/phobologic/pythcheck/internal/discover"
	"github.com/phobologic/pythcheck/internal/output"
)

var version = "dev"

// exitError carries a non-zero exit status that needs no message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if err == nil {
		return
	}
	var ee *exitError
	if errors.As(err, &ee) {
		os.Exit(ee.code)
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(2)
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.Execute()
}

type rootFlags struct {
	configPath       string
	ignoreHidden     bool
	ignoreTests      bool
	ignoreReturn     bool
	respectGitignore bool
	exclude          []string
	format           string
	color            string
	top              int
	progress         bool
	verbose          bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "pythcheck [flags] PATH",
		Short: "Report Python functions missing type hints",
		Long: `pythcheck checks that every function parameter and return value in a
Python file or directory tree carries a type annotation. It exits 0 when
everything is annotated, 1 when violations or unreadable files were found,
and 2 on usage or configuration errors.

Settings are read from --config, ./pythcheck.toml, or the [tool.pythcheck]
table of ./pyproject.toml, in that order. Flags override settings.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0], &f, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("pythcheck {{.Version}}\n")
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "read settings from `FILE`")
	flags.BoolVar(&f.ignoreHidden, "ignore-hidden", false, "skip files and directories whose name starts with '.'")
	flags.BoolVar(&f.ignoreTests, "ignore-tests", false, "skip test files and test directories")
	flags.BoolVar(&f.ignoreReturn, "ignore-return", false, "do not require return type hints")
	flags.BoolVar(&f.respectGitignore, "respect-gitignore", false, "skip files ignored by git")
	flags.StringArrayVar(&f.exclude, "exclude", nil, "skip paths matching `GLOB` (repeatable)")
	flags.StringVar(&f.format, "format", "text", "output format: "+strings.Join(config.Formats, ", "))
	flags.StringVar(&f.color, "color", output.ColorAuto, "colorize text output: "+strings.Join(output.ColorModes, ", "))
	flags.IntVar(&f.top, "top", 0, "rank the `N` files with the most violations; files that failed to check are always listed")
	flags.BoolVar(&f.progress, "progress", false, "show a progress bar on stderr")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "log debug output to stderr")
	flags.BoolP("version", "V", false, "print version and exit")

	cmd.AddCommand(newInitCmd(stdout, stderr))
	return cmd
}

func runCheck(cmd *cobra.Command, root string, f *rootFlags, stdout, stderr io.Writer) error {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if !slices.Contains(output.ColorModes, f.color) {
		return fmt.Errorf("invalid --color %q (want one of %s)", f.color, strings.Join(output.ColorModes, ", "))
	}
	if f.top < 0 {
		return fmt.Errorf("--top must not be negative, got %d", f.top)
	}

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	logger.Debug("loaded config", "source", cfg.Source)

	opts, err := cfg.DiscoverOptions()
	if err != nil {
		return err
	}
	files, err := discover.Files(root, opts)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	logger.Debug("discovered files", "root", root, "files", len(files))

	checkOpts := check.Options{
		Policy:      cfg.Policy(),
		MaxFileSize: cfg.MaxFileSize,
		Logger:      logger,
	}
	var bar *progressbar.ProgressBar
	if f.progress && len(files) > 0 {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionSetDescription("checking"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionClearOnFinish(),
		)
		checkOpts.Progress = func(_, _ int) {
			_ = bar.Add(1)
		}
	}

	rr, err := check.NewRunner(checkOpts).Run(files)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	if err := output.Write(stdout, rr, output.Options{Format: cfg.Format, Color: f.color, Top: f.top}); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if !rr.OK() {
		return &exitError{code: 1}
	}
	return nil
}

// loadConfig reads the settings file and applies every flag the user set.
func loadConfig(cmd *cobra.Command, f *rootFlags) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if f.configPath != "" {
		cfg, err = config.Load(f.configPath)
	} else {
		cfg, err = config.Find(".")
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("ignore-hidden") {
		cfg.IgnoreHidden = f.ignoreHidden
	}
	if flags.Changed("ignore-tests") {
		cfg.IgnoreTests = f.ignoreTests
	}
	if flags.Changed("ignore-return") {
		cfg.IgnoreReturn = f.ignoreReturn
	}
	if flags.Changed("respect-gitignore") {
		cfg.RespectGitignore = f.respectGitignore
	}
	if flags.Changed("format") {
		cfg.Format = f.format
	}
	cfg.Exclude = append(cfg.Exclude, f.exclude...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
