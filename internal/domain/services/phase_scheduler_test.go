package services

import (
	"testing"

	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unit(id string, phase int, phaseName string) *entities.UnitDescriptor {
	return entities.MustNewUnitDescriptor(entities.UnitFields{ID: id, Phase: phase, PhaseName: phaseName})
}

func ids(units []*entities.UnitDescriptor) []string {
	out := make([]string, 0, len(units))
	for _, u := range units {
		out = append(out, u.ID().String())
	}
	return out
}

func TestPhaseScheduler_Schedule(t *testing.T) {
	tests := []struct {
		name     string
		units    []*entities.UnitDescriptor
		expected []string
	}{
		{
			name:     "empty",
			units:    nil,
			expected: []string{},
		},
		{
			name:     "phases 0 0 3 keep declared order",
			units:    []*entities.UnitDescriptor{unit("A", 0, ""), unit("B", 0, ""), unit("C", 3, "")},
			expected: []string{"A", "B", "C"},
		},
		{
			name:     "ascending phase",
			units:    []*entities.UnitDescriptor{unit("late", 5, ""), unit("early", 1, ""), unit("mid", 3, "")},
			expected: []string{"early", "mid", "late"},
		},
		{
			name: "stable within equal phases",
			units: []*entities.UnitDescriptor{
				unit("z", 2, ""), unit("a", 1, ""), unit("y", 2, ""), unit("b", 1, ""), unit("x", 2, ""),
			},
			expected: []string{"a", "b", "z", "y", "x"},
		},
	}

	s := NewPhaseScheduler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ids(s.Schedule(tt.units)))
		})
	}
}

func TestPhaseScheduler_ScheduleDoesNotMutateInput(t *testing.T) {
	units := []*entities.UnitDescriptor{unit("b", 2, ""), unit("a", 1, "")}
	NewPhaseScheduler().Schedule(units)
	assert.Equal(t, []string{"b", "a"}, ids(units))
}

func TestPhaseScheduler_Group(t *testing.T) {
	units := []*entities.UnitDescriptor{
		unit("redis", 2, "infrastructure"),
		unit("init", 0, "bootstrap"),
		unit("docker", 2, ""),
		unit("chat", 3, "features"),
	}

	groups := NewPhaseScheduler().Group(units)
	require.Len(t, groups, 3)

	assert.Equal(t, 0, groups[0].Phase)
	assert.Equal(t, "bootstrap", groups[0].Name)
	assert.Equal(t, []string{"init"}, ids(groups[0].Units))

	assert.Equal(t, 2, groups[1].Phase)
	assert.Equal(t, "infrastructure", groups[1].Name)
	assert.Equal(t, []string{"redis", "docker"}, ids(groups[1].Units))

	assert.Equal(t, 3, groups[2].Phase)
	assert.Equal(t, []string{"chat"}, ids(groups[2].Units))
}
