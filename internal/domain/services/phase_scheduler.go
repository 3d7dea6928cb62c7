package services

import (
	"slices"

	"github.com/omniforge-dev/omniforge/internal/domain/entities"
)

// PhaseScheduler orders units for execution.
//
// Phase number is the only ordering signal: units are sorted ascending by
// phase and, within a phase, keep the order in which they were discovered.
// No inter-unit data dependencies are inspected.
type PhaseScheduler struct{}

// NewPhaseScheduler creates a new phase scheduler
func NewPhaseScheduler() *PhaseScheduler {
	return &PhaseScheduler{}
}

// PhaseGroup holds the units of one phase in execution order.
type PhaseGroup struct {
	Phase int
	Name  string
	Units []*entities.UnitDescriptor
}

// Schedule returns the execution order. The input slice is not modified.
func (s *PhaseScheduler) Schedule(units []*entities.UnitDescriptor) []*entities.UnitDescriptor {
	ordered := slices.Clone(units)
	slices.SortStableFunc(ordered, func(a, b *entities.UnitDescriptor) int {
		return a.Phase().Int() - b.Phase().Int()
	})
	return ordered
}

// Group returns the schedule split into phases, lowest first. The group
// name is the first non-empty phase name declared in that phase.
func (s *PhaseScheduler) Group(units []*entities.UnitDescriptor) []PhaseGroup {
	var groups []PhaseGroup
	for _, u := range s.Schedule(units) {
		n := len(groups)
		if n == 0 || groups[n-1].Phase != u.Phase().Int() {
			groups = append(groups, PhaseGroup{Phase: u.Phase().Int()})
			n++
		}
		g := &groups[n-1]
		if g.Name == "" {
			g.Name = u.PhaseName()
		}
		g.Units = append(g.Units, u)
	}
	return groups
}
