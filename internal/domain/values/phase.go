package values

import "fmt"

// Phase is the ordering group of a unit. Lower phases run first; the number
// is the only ordering signal the scheduler uses.
type Phase int

// NewPhase validates a phase number.
func NewPhase(n int) (Phase, error) {
	if n < 0 {
		return 0, fmt.Errorf("phase must be >= 0, got %d", n)
	}
	return Phase(n), nil
}

// Int returns the phase as a plain int.
func (p Phase) Int() int {
	return int(p)
}

// Before reports whether p runs strictly before other.
func (p Phase) Before(other Phase) bool {
	return p < other
}
