// Package check runs the parse, extract, classify pipeline over a file set.
package check

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/phobologic/pythcheck/internal/classify"
	"github.com/phobologic/pythcheck/internal/discover"
	"github.com/phobologic/pythcheck/internal/extract"
	"github.com/phobologic/pythcheck/internal/model"
	"github.com/phobologic/pythcheck/internal/parse"
	"github.com/phobologic/pythcheck/internal/report"
)

// Options configure a Runner.
type Options struct {
	Policy model.Policy
	// Workers bounds parallelism. Zero means runtime.GOMAXPROCS(0).
	Workers int
	// MaxFileSize skips files larger than this many bytes. Zero means no limit.
	MaxFileSize int64
	// Progress, if set, is called once per finished file from worker goroutines.
	Progress func(done, total int)
	Logger   *slog.Logger
}

// Runner checks files concurrently.
type Runner struct {
	opts       Options
	classifier *classify.Classifier
	log        *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(opts Options) *Runner {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		opts:       opts,
		classifier: classify.New(opts.Policy),
		log:        log,
	}
}

// Run checks every file and returns the reports in the order of files.
// A failure in one file is recorded in its report and never stops the run;
// the returned error reports internal faults only.
func (r *Runner) Run(files []discover.FileEntry) (*model.RunReport, error) {
	files = r.filterBySize(files)
	sink := report.NewSink(len(files))
	if len(files) == 0 {
		return sink.Report(), nil
	}

	numWorkers := r.opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}
	r.log.Debug("checking files", "files", len(files), "workers", numWorkers)

	work := make(chan int, len(files))
	for i := range files {
		work <- i
	}
	close(work)

	var done atomic.Int64
	var g errgroup.Group
	for range numWorkers {
		g.Go(func() error {
			// Each goroutine gets its own parser
			p := parse.NewParser()
			defer p.Close()

			for idx := range work {
				f := files[idx]
				start := time.Now()
				fr := r.checkFile(p, f)
				r.log.Debug("checked file", "path", f.Path, "violations", len(fr.Violations), "elapsed", time.Since(start))
				if err := sink.Submit(idx, fr); err != nil {
					return err
				}
				if r.opts.Progress != nil {
					r.opts.Progress(int(done.Add(1)), len(files))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return sink.Report(), nil
}

func (r *Runner) checkFile(p *parse.Parser, f discover.FileEntry) model.FileReport {
	src, ferr := ReadSource(f.Path)
	if ferr != nil {
		return report.Failed(f.Path, ferr)
	}
	return r.check(p, src)
}

// Check runs the pipeline on a single in-memory file.
func (r *Runner) Check(src model.SourceFile) model.FileReport {
	p := parse.NewParser()
	defer p.Close()
	return r.check(p, src)
}

func (r *Runner) check(p *parse.Parser, src model.SourceFile) model.FileReport {
	tree, err := p.Parse(src.Text)
	if err != nil {
		var fe *model.FileError
		if !errors.As(err, &fe) {
			fe = model.NewFileError(model.ParseError, "parsing failed", err)
		}
		return report.Failed(src.Path, fe)
	}
	fns := extract.Functions(tree)
	tree.Close()

	return report.Aggregate(src.Path, len(fns), r.classifier.File(src.Path, fns))
}

// ReadSource loads a file and checks that it is valid UTF-8.
func ReadSource(path string) (model.SourceFile, *model.FileError) {
	data, err := os.ReadFile(path)
	if err != nil {
		msg := "reading file"
		if errors.Is(err, fs.ErrNotExist) {
			msg = "file vanished"
		}
		return model.SourceFile{}, model.NewFileError(model.IOError, msg, err)
	}
	if !utf8.Valid(data) {
		return model.SourceFile{}, &model.FileError{
			Kind:    model.EncodingError,
			Message: fmt.Sprintf("not valid UTF-8 (first invalid byte at offset %d)", invalidOffset(data)),
		}
	}
	return model.SourceFile{Path: path, Text: data}, nil
}

func invalidOffset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(data)
}

func (r *Runner) filterBySize(files []discover.FileEntry) []discover.FileEntry {
	if r.opts.MaxFileSize <= 0 {
		return files
	}
	var kept []discover.FileEntry
	for _, f := range files {
		fi, err := os.Stat(f.Path)
		if err != nil {
			kept = append(kept, f) // let the read report the failure
			continue
		}
		if fi.Size() > r.opts.MaxFileSize {
			r.log.Warn("skipping large file", "path", f.Path, "size", fi.Size(), "limit", r.opts.MaxFileSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
