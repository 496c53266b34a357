package idgen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/guild-progression/internal/pkg/idgen"
)

func TestSequentialGenerator(t *testing.T) {
	g := idgen.NewSequential("reset")
	assert.Equal(t, "reset_1", g.Generate())
	assert.Equal(t, "reset_2", g.Generate())

	bare := idgen.NewSequential("")
	assert.Equal(t, "1", bare.Generate())
}

func TestUUIDGenerator(t *testing.T) {
	g := idgen.NewUUID("reset")
	a, b := g.Generate(), g.Generate()

	assert.True(t, strings.HasPrefix(a, "reset_"))
	assert.NotEqual(t, a, b)
	assert.Len(t, strings.TrimPrefix(a, "reset_"), 36)
}
