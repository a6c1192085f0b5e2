package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleCollapsed(t *testing.T) {
	s := NewState()
	assert.False(t, s.Collapsed("a"))

	s.ToggleCollapsed("a")
	assert.True(t, s.Collapsed("a"))

	s.ToggleCollapsed("a")
	assert.False(t, s.Collapsed("a"))
}

func TestEditingFlag(t *testing.T) {
	s := NewState()
	s.SetEditing("a", true)
	assert.True(t, s.Editing("a"))

	s.SetEditing("a", false)
	assert.False(t, s.Editing("a"))
}

func TestPruneForDropsOnlyRemovedIDs(t *testing.T) {
	s := NewState()
	s.ToggleCollapsed("a")
	s.ToggleCollapsed("b")
	s.SetEditing("b", true)

	s.PruneFor(map[string]struct{}{"b": {}, "c": {}})
	assert.True(t, s.Collapsed("a"))
	assert.False(t, s.Collapsed("b"))
	assert.False(t, s.Editing("b"))
}

func TestReset(t *testing.T) {
	s := NewState()
	s.ToggleCollapsed("a")
	s.SetEditing("b", true)
	s.Reset()
	assert.False(t, s.Collapsed("a"))
	assert.False(t, s.Editing("b"))
}
