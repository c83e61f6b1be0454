package report

import (
	"fmt"
	"sync/atomic"

	"github.com/phobologic/pythcheck/internal/model"
)

// Sink collects file reports from concurrent producers. Each producer owns
// the slot at its file's discovery index, so stores never contend and the
// merged report keeps discovery order whatever order producers finish in.
type Sink struct {
	slots  []model.FileReport
	filled []atomic.Bool
}

// NewSink creates a sink for n files.
func NewSink(n int) *Sink {
	return &Sink{
		slots:  make([]model.FileReport, n),
		filled: make([]atomic.Bool, n),
	}
}

// Submit stores the report for the file at index. Submitting an index twice
// or out of range is a programming error and returns an error.
func (s *Sink) Submit(index int, r model.FileReport) error {
	if index < 0 || index >= len(s.slots) {
		return fmt.Errorf("report index %d out of range [0,%d)", index, len(s.slots))
	}
	if !s.filled[index].CompareAndSwap(false, true) {
		return fmt.Errorf("report for index %d submitted twice", index)
	}
	s.slots[index] = r
	return nil
}

// Report merges the submitted reports in index order. Slots that were never
// submitted are skipped. Call only after all producers have returned.
func (s *Sink) Report() *model.RunReport {
	files := make([]model.FileReport, 0, len(s.slots))
	for i := range s.filled {
		if s.filled[i].Load() {
			files = append(files, s.slots[i])
		}
	}
	return Merge(files)
}
