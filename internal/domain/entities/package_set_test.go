package entities_test

import (
	"testing"

	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/stretchr/testify/assert"
)

func TestInstalledPackageSet(t *testing.T) {
	t.Parallel()

	set := entities.NewInstalledPackageSet()
	assert.Equal(t, 0, set.Len())
	assert.False(t, set.Contains("redis"))

	set.Add("redis", "ai", "redis")
	set.Add("zod")

	assert.True(t, set.Contains("redis"))
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []string{"redis", "ai", "zod"}, set.Names())
}
