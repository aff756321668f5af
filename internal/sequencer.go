package internal

import (
	"fmt"
	"regexp"
	"strconv"
)

// stepNumberWidth is the zero-padding width of the sequence number embedded
// in step filenames. It is part of the on-store compatibility contract:
// changing it silently breaks restoration ordering for sequences >= 10^width.
const stepNumberWidth = 3

var stepFilePattern = regexp.MustCompile(`^step_(\d+)\.json$`)

// StepSequencer owns the per-session sequence counter. It does no I/O;
// allocation is only considered consumed once the corresponding write
// succeeds, so callers roll the counter back on a failed append.
type StepSequencer struct {
	next int
}

// NewStepSequencer creates a sequencer whose next allocation is next.
func NewStepSequencer(next int) *StepSequencer {
	if next < 1 {
		next = 1
	}
	return &StepSequencer{next: next}
}

// Next returns the next free sequence number and advances the counter.
func (s *StepSequencer) Next() int {
	n := s.next
	s.next++
	return n
}

// Rollback returns the counter to n, undoing an allocation whose write
// failed so a retry reuses the same sequence number.
func (s *StepSequencer) Rollback(n int) {
	if n < s.next {
		s.next = n
	}
}

// Peek returns the next sequence number without consuming it.
func (s *StepSequencer) Peek() int {
	return s.next
}

// StepFileName encodes a sequence number as a step filename using the fixed
// zero-padding width, e.g. 7 -> "step_007.json".
func StepFileName(number int) string {
	return fmt.Sprintf("step_%0*d.json", stepNumberWidth, number)
}

// ParseStepNumber extracts the sequence number from a step filename.
// It returns 0 and false for names that are not step files.
func ParseStepNumber(name string) (int, bool) {
	m := stepFilePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// IsStepFile reports whether name follows the step filename convention.
func IsStepFile(name string) bool {
	_, ok := ParseStepNumber(name)
	return ok
}
