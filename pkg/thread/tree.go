// Package thread maintains the in-memory comment forest for one page:
// a flat id->comment arena with children kept as ordered id lists. The
// structure is acyclic by construction (children are only appended by
// inserts, never re-parented) so traversals are plain depth-first walks.
package thread

import (
	"errors"
	"fmt"
	"sort"

	"pagethread/pkg/models"
)

var (
	// ErrParentNotFound is returned when an insert names an unknown parent.
	ErrParentNotFound = errors.New("parent comment not found")
	// ErrNodeNotFound is returned when an operation names an unknown comment.
	ErrNodeNotFound = errors.New("comment not found")
	// ErrDuplicateID is returned when an insert reuses an existing id.
	ErrDuplicateID = errors.New("comment id already present")
)

// Tree is the arena forest for a single page. It is not safe for
// concurrent use; callers serialize access (see mutate.Gateway).
type Tree struct {
	nodes    map[string]*models.Comment
	children map[string][]string
	parent   map[string]string
	roots    []string
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{
		nodes:    make(map[string]*models.Comment),
		children: make(map[string][]string),
		parent:   make(map[string]string),
	}
}

// Load replaces the whole forest from a flat comment list as returned by
// the storage API. Comments are ordered by creation time before linking
// so children lists come out in chronological order. A comment whose
// reply_to does not resolve (for example the parent was purged server
// side) is kept as a root rather than dropped.
func (t *Tree) Load(comments []models.Comment) {
	nodes := make(map[string]*models.Comment, len(comments))
	ordered := make([]*models.Comment, 0, len(comments))
	for i := range comments {
		c := comments[i]
		if c.ID == "" {
			continue
		}
		if _, ok := nodes[c.ID]; ok {
			continue
		}
		nodes[c.ID] = &c
		ordered = append(ordered, &c)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedTS < ordered[j].CreatedTS
	})

	t.nodes = nodes
	t.children = make(map[string][]string, len(nodes))
	t.parent = make(map[string]string, len(nodes))
	t.roots = t.roots[:0]
	for _, c := range ordered {
		p := c.ReplyTo
		if p == c.ID {
			p = ""
		}
		if _, ok := nodes[p]; ok && p != "" {
			t.children[p] = append(t.children[p], c.ID)
			t.parent[c.ID] = p
		} else {
			t.roots = append(t.roots, c.ID)
		}
	}
}

// Insert appends a comment to the arena and to its parent's children list,
// or to the root list when parentID is empty.
func (t *Tree) Insert(parentID string, c *models.Comment) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("insert: missing comment id")
	}
	if _, ok := t.nodes[c.ID]; ok {
		return fmt.Errorf("insert %s: %w", c.ID, ErrDuplicateID)
	}
	if parentID == c.ID {
		// malformed input: a comment cannot parent itself
		return fmt.Errorf("insert %s: %w", c.ID, ErrParentNotFound)
	}
	if parentID != "" {
		if _, ok := t.nodes[parentID]; !ok {
			return fmt.Errorf("insert %s under %s: %w", c.ID, parentID, ErrParentNotFound)
		}
	}
	t.nodes[c.ID] = c
	if parentID == "" {
		t.roots = append(t.roots, c.ID)
	} else {
		t.children[parentID] = append(t.children[parentID], c.ID)
		t.parent[c.ID] = parentID
	}
	return nil
}

// Update sets a comment's body (and optional pre-rendered form) and bumps
// its edited timestamp. EditedTS never decreases here; reconciliation
// rollbacks go through Revert instead.
func (t *Tree) Update(id, body, bodyHTML string, editedTS int64) error {
	c, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("update %s: %w", id, ErrNodeNotFound)
	}
	c.Body = body
	c.BodyHTML = bodyHTML
	if editedTS > c.EditedTS {
		c.EditedTS = editedTS
	}
	return nil
}

// Revert restores a comment's body and edited timestamp exactly as
// captured before an optimistic edit. Only the mutation gateway should
// call this; it is the one place EditedTS may move backwards.
func (t *Tree) Revert(id, body, bodyHTML string, editedTS int64) error {
	c, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("revert %s: %w", id, ErrNodeNotFound)
	}
	c.Body = body
	c.BodyHTML = bodyHTML
	c.EditedTS = editedTS
	return nil
}

// Remove deletes id and its entire subtree, returning the removed id set
// so callers can clean up derived state. Removing an unknown id is a
// no-op returning an empty set.
func (t *Tree) Remove(id string) map[string]struct{} {
	snap, removed := t.RemoveSubtree(id)
	_ = snap
	return removed
}

// Subtree is a structural snapshot of a removed subtree, sufficient to
// restore it at its original position if the server rejects the delete.
type Subtree struct {
	rootID   string
	parentID string
	index    int
	nodes    map[string]*models.Comment
	children map[string][]string
}

// Empty reports whether the snapshot holds no comments.
func (s *Subtree) Empty() bool { return s == nil || len(s.nodes) == 0 }

// IDs returns the removed id set.
func (s *Subtree) IDs() map[string]struct{} {
	out := make(map[string]struct{}, len(s.nodes))
	for id := range s.nodes {
		out[id] = struct{}{}
	}
	return out
}

// RemoveSubtree removes id and all descendants, detaching the root from
// its parent's children list (or the root list) first so no dangling
// references survive. The returned snapshot supports RestoreSubtree.
func (t *Tree) RemoveSubtree(id string) (*Subtree, map[string]struct{}) {
	if _, ok := t.nodes[id]; !ok {
		return &Subtree{nodes: map[string]*models.Comment{}}, map[string]struct{}{}
	}

	snap := &Subtree{
		rootID:   id,
		parentID: t.parent[id],
		index:    -1,
		nodes:    make(map[string]*models.Comment),
		children: make(map[string][]string),
	}

	// detach root from its sibling list, remembering the position
	if snap.parentID == "" {
		for i, rid := range t.roots {
			if rid == id {
				snap.index = i
				t.roots = append(t.roots[:i], t.roots[i+1:]...)
				break
			}
		}
	} else {
		sibs := t.children[snap.parentID]
		for i, cid := range sibs {
			if cid == id {
				snap.index = i
				t.children[snap.parentID] = append(sibs[:i], sibs[i+1:]...)
				break
			}
		}
	}

	// depth-first closure over the arena
	removed := make(map[string]struct{})
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := removed[cur]; seen {
			continue
		}
		removed[cur] = struct{}{}
		snap.nodes[cur] = t.nodes[cur]
		if kids := t.children[cur]; len(kids) > 0 {
			snap.children[cur] = append([]string(nil), kids...)
			stack = append(stack, kids...)
		}
		delete(t.nodes, cur)
		delete(t.children, cur)
		delete(t.parent, cur)
	}
	return snap, removed
}

// RestoreSubtree reinserts a removed subtree at its recorded position.
// Used by the mutation gateway when the server rejects a cascade delete.
func (t *Tree) RestoreSubtree(snap *Subtree) error {
	if snap.Empty() {
		return nil
	}
	if _, ok := t.nodes[snap.rootID]; ok {
		return fmt.Errorf("restore %s: %w", snap.rootID, ErrDuplicateID)
	}
	if snap.parentID != "" {
		if _, ok := t.nodes[snap.parentID]; !ok {
			return fmt.Errorf("restore %s under %s: %w", snap.rootID, snap.parentID, ErrParentNotFound)
		}
	}
	for id, c := range snap.nodes {
		t.nodes[id] = c
	}
	for id, kids := range snap.children {
		t.children[id] = append([]string(nil), kids...)
		for _, k := range kids {
			t.parent[k] = id
		}
	}
	// splice the root back into its sibling list at the original index
	if snap.parentID == "" {
		t.roots = spliceAt(t.roots, snap.rootID, snap.index)
	} else {
		t.children[snap.parentID] = spliceAt(t.children[snap.parentID], snap.rootID, snap.index)
		t.parent[snap.rootID] = snap.parentID
	}
	return nil
}

func spliceAt(list []string, id string, idx int) []string {
	if idx < 0 || idx > len(list) {
		return append(list, id)
	}
	list = append(list, "")
	copy(list[idx+1:], list[idx:])
	list[idx] = id
	return list
}

// Replace swaps a provisional comment for its server-confirmed form,
// keeping the same position among siblings. Any children accumulated
// under the provisional id are re-linked to the confirmed id.
func (t *Tree) Replace(provisionalID string, confirmed *models.Comment) error {
	if confirmed == nil || confirmed.ID == "" {
		return fmt.Errorf("replace %s: missing confirmed id", provisionalID)
	}
	if _, ok := t.nodes[provisionalID]; !ok {
		return fmt.Errorf("replace %s: %w", provisionalID, ErrNodeNotFound)
	}
	if confirmed.ID == provisionalID {
		t.nodes[provisionalID] = confirmed
		return nil
	}
	if _, ok := t.nodes[confirmed.ID]; ok {
		return fmt.Errorf("replace %s with %s: %w", provisionalID, confirmed.ID, ErrDuplicateID)
	}

	delete(t.nodes, provisionalID)
	t.nodes[confirmed.ID] = confirmed

	if kids, ok := t.children[provisionalID]; ok {
		delete(t.children, provisionalID)
		t.children[confirmed.ID] = kids
		for _, k := range kids {
			t.parent[k] = confirmed.ID
		}
	}

	if p, ok := t.parent[provisionalID]; ok {
		delete(t.parent, provisionalID)
		t.parent[confirmed.ID] = p
		sibs := t.children[p]
		for i, cid := range sibs {
			if cid == provisionalID {
				sibs[i] = confirmed.ID
				break
			}
		}
	} else {
		for i, rid := range t.roots {
			if rid == provisionalID {
				t.roots[i] = confirmed.ID
				break
			}
		}
	}
	return nil
}

// DescendantCount returns the number of comments strictly beneath id.
// Used for collapsed-summary display only.
func (t *Tree) DescendantCount(id string) int {
	n := 0
	for _, c := range t.children[id] {
		n += 1 + t.DescendantCount(c)
	}
	return n
}

// Get returns the comment for id.
func (t *Tree) Get(id string) (*models.Comment, bool) {
	c, ok := t.nodes[id]
	return c, ok
}

// Parent returns the parent id of a comment; empty for roots.
func (t *Tree) Parent(id string) string { return t.parent[id] }

// Children returns a copy of the ordered child id list for id.
func (t *Tree) Children(id string) []string {
	return append([]string(nil), t.children[id]...)
}

// Roots returns a copy of the ordered top-level id list.
func (t *Tree) Roots() []string {
	return append([]string(nil), t.roots...)
}

// Len returns the total number of comments in the forest, top-level and
// nested, for the "N comments" affordance in the page chrome.
func (t *Tree) Len() int { return len(t.nodes) }
