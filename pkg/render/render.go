// Package render turns the comment tree plus presentation state into a
// display tree for the page view to embed. Rendering is a pure
// traversal: all writes go through compose, mutate or view.
package render

import (
	"pagethread/pkg/models"
	"pagethread/pkg/thread"
	"pagethread/pkg/view"
)

// Action is a user intent affordance attached to a display node.
type Action string

const (
	ActionReply  Action = "reply"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Viewer is the acting identity and its page-level permissions, as
// supplied by the identity collaborator.
type Viewer struct {
	UserID string
	// CanComment gates whether the reply affordance is shown at all.
	CanComment bool
	// PageOwner grants delete beyond self-authorship.
	PageOwner bool
}

// CanEdit reports whether the viewer may edit c: authors edit their own
// comments only.
func (v Viewer) CanEdit(c *models.Comment) bool {
	return c != nil && v.UserID != "" && v.UserID == c.Author
}

// CanDelete reports whether the viewer may delete c: the author, or the
// page owner for any comment.
func (v Viewer) CanDelete(c *models.Comment) bool {
	if c == nil {
		return false
	}
	if v.PageOwner {
		return true
	}
	return v.UserID != "" && v.UserID == c.Author
}

// DisplayNode is one rendered comment. When Collapsed, Children is empty
// and HiddenReplies carries the descendant count for the summary line.
type DisplayNode struct {
	Comment       models.Comment
	Actions       []Action
	Collapsed     bool
	Editing       bool
	HiddenReplies int
	Children      []DisplayNode
}

// Renderer walks a tree and presentation state for one viewer.
type Renderer struct {
	tree   *thread.Tree
	state  *view.State
	viewer Viewer
}

// New returns a renderer over tree and state for viewer.
func New(tree *thread.Tree, state *view.State, viewer Viewer) *Renderer {
	return &Renderer{tree: tree, state: state, viewer: viewer}
}

// Render produces the display forest in root order.
func (r *Renderer) Render() []DisplayNode {
	roots := r.tree.Roots()
	out := make([]DisplayNode, 0, len(roots))
	for _, id := range roots {
		if n, ok := r.renderNode(id); ok {
			out = append(out, n)
		}
	}
	return out
}

// CommentCount returns the total number of comments, top-level and
// nested, for the "N comments" affordance.
func (r *Renderer) CommentCount() int { return r.tree.Len() }

func (r *Renderer) renderNode(id string) (DisplayNode, bool) {
	c, ok := r.tree.Get(id)
	if !ok {
		return DisplayNode{}, false
	}
	n := DisplayNode{
		Comment: *c,
		Actions: r.actionsFor(c),
		Editing: r.state.Editing(id),
	}
	if r.state.Collapsed(id) {
		n.Collapsed = true
		n.HiddenReplies = r.tree.DescendantCount(id)
		return n, true
	}
	kids := r.tree.Children(id)
	if len(kids) > 0 {
		n.Children = make([]DisplayNode, 0, len(kids))
		for _, kid := range kids {
			if child, ok := r.renderNode(kid); ok {
				n.Children = append(n.Children, child)
			}
		}
	}
	return n, true
}

func (r *Renderer) actionsFor(c *models.Comment) []Action {
	var acts []Action
	if r.viewer.CanComment {
		acts = append(acts, ActionReply)
	}
	if r.viewer.CanEdit(c) {
		acts = append(acts, ActionEdit)
	}
	if r.viewer.CanDelete(c) {
		acts = append(acts, ActionDelete)
	}
	return acts
}
