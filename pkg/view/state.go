// Package view holds purely local presentation flags for a thread:
// which comments are collapsed and which are in edit mode. Nothing here
// affects the structural content of the tree and none of it is
// persisted; losing this state on reload is harmless.
package view

// State tracks per-comment collapsed/editing flags. Zero values mean
// expanded and not editing, so only deviations are stored.
type State struct {
	collapsed map[string]bool
	editing   map[string]bool
}

// NewState returns an empty presentation state.
func NewState() *State {
	return &State{
		collapsed: make(map[string]bool),
		editing:   make(map[string]bool),
	}
}

// ToggleCollapsed flips the collapsed flag for id.
func (s *State) ToggleCollapsed(id string) {
	if s.collapsed[id] {
		delete(s.collapsed, id)
		return
	}
	s.collapsed[id] = true
}

// Collapsed reports whether id is collapsed.
func (s *State) Collapsed(id string) bool { return s.collapsed[id] }

// SetEditing sets or clears the edit-mode flag for id.
func (s *State) SetEditing(id string, editing bool) {
	if !editing {
		delete(s.editing, id)
		return
	}
	s.editing[id] = true
}

// Editing reports whether id is in edit mode.
func (s *State) Editing(id string) bool { return s.editing[id] }

// PruneFor drops flags for comments removed from the tree, typically the
// removed-id set of a cascade delete.
func (s *State) PruneFor(removed map[string]struct{}) {
	for id := range removed {
		delete(s.collapsed, id)
		delete(s.editing, id)
	}
}

// Reset clears all flags, e.g. after a wholesale thread reload.
func (s *State) Reset() {
	s.collapsed = make(map[string]bool)
	s.editing = make(map[string]bool)
}
