package services

import (
	"testing"

	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profiled(id string, phase int, profiles ...string) *entities.UnitDescriptor {
	return entities.MustNewUnitDescriptor(entities.UnitFields{
		ID:       id,
		Phase:    phase,
		Profiles: profiles,
		Settings: []string{"PROJECT_ROOT"},
	})
}

func Test_UnitFilter_NoFilters(t *testing.T) {
	filter := NewUnitFilter()
	shouldRun, _ := filter.ShouldRun(profiled("redis-setup", 2))
	assert.True(t, shouldRun, "no filters should allow all units")
}

func Test_UnitFilter_OnlyMode(t *testing.T) {
	filter := NewUnitFilter().
		WithOnlyUnits([]string{"a", "b"}).
		WithExcludedUnits([]string{"a"})

	tests := []struct {
		id       string
		expected bool
	}{
		{"a", true},
		{"b", true},
		{"c", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			shouldRun, _ := filter.ShouldRun(profiled(tt.id, 0))
			assert.Equal(t, tt.expected, shouldRun)
		})
	}
}

func Test_UnitFilter_Profiles(t *testing.T) {
	filter := NewUnitFilter().
		WithIncludedProfiles([]string{"core", "cache"}).
		WithExcludedProfiles([]string{"experimental"})

	tests := []struct {
		name     string
		unit     *entities.UnitDescriptor
		expected bool
	}{
		{"included profile", profiled("redis", 2, "cache"), true},
		{"no profile", profiled("bare", 0), false},
		{"other profile", profiled("ai", 3, "ai"), false},
		{"excluded wins", profiled("beta", 3, "core", "experimental"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shouldRun, reason := filter.ShouldRun(tt.unit)
			assert.Equal(t, tt.expected, shouldRun)
			if !tt.expected {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func Test_UnitFilter_Expression(t *testing.T) {
	program, err := CompileFilter(`phase >= 2 && "cache" in profiles`)
	require.NoError(t, err)

	filter := NewUnitFilter().WithFilterExpression(program)

	ok, _ := filter.ShouldRun(profiled("redis", 2, "cache"))
	assert.True(t, ok)

	ok, reason := filter.ShouldRun(profiled("init", 0, "cache"))
	assert.False(t, ok)
	assert.Equal(t, "excluded by --filter expression", reason)
}

func Test_UnitFilter_ExpressionSeesSettings(t *testing.T) {
	program, err := CompileFilter(`"PROJECT_ROOT" in settings && id startsWith "chat"`)
	require.NoError(t, err)

	filter := NewUnitFilter().WithFilterExpression(program)
	ok, _ := filter.ShouldRun(profiled("chat-feature-scaffold", 3))
	assert.True(t, ok)
}

func Test_CompileFilter_Invalid(t *testing.T) {
	_, err := CompileFilter(`phase +`)
	assert.Error(t, err)

	_, err = CompileFilter(`name`)
	assert.Error(t, err, "non-boolean expressions are rejected")
}

func Test_UnitFilter_SelectKeepsOrder(t *testing.T) {
	units := []*entities.UnitDescriptor{
		profiled("c", 3, "core"),
		profiled("a", 0, "core"),
		profiled("x", 1, "extra"),
		profiled("b", 0, "core"),
	}

	selected, excluded := NewUnitFilter().WithIncludedProfiles([]string{"core"}).Select(units)
	assert.Equal(t, []string{"c", "a", "b"}, ids(selected))
	assert.Contains(t, excluded, "x")
}
