// Package mutate bridges user intent to the storage collaborator with
// optimistic local application. Every mutation follows the same two-phase
// protocol: apply to the in-memory tree first, await the server verdict,
// then commit the optimistic state or roll it back.
package mutate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pagethread/pkg/logger"
	"pagethread/pkg/models"
	"pagethread/pkg/telemetry"
	"pagethread/pkg/thread"
)

var (
	// ErrValidation rejects an empty body before any network call.
	ErrValidation = errors.New("comment body is empty")
	// ErrConflict rejects a mutation while another is in flight for the
	// same comment; edits and deletes are serialized per comment.
	ErrConflict = errors.New("another mutation is in flight for this comment")
	// ErrLoad wraps thread fetch failures; prior state is left unchanged.
	ErrLoad = errors.New("thread load failed")
)

// MutationError reports a server or transport failure after the local
// optimistic change was rolled back.
type MutationError struct {
	Op  string
	ID  string
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s %s failed (rolled back): %v", e.Op, e.ID, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// Store is the storage collaborator consumed by the gateway. All calls
// are request/response; failures are surfaced verbatim.
type Store interface {
	FetchThread(ctx context.Context, pageID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, pageID string, c models.Comment) (*models.Comment, error)
	EditComment(ctx context.Context, id, body, bodyHTML string) error
	DeleteComment(ctx context.Context, id string) error
}

// Actor is the acting identity stamped onto provisional comments.
// Authorization itself is the renderer's job; the gateway trusts its
// caller.
type Actor struct {
	UserID      string
	DisplayName string
}

// Gateway applies mutations for one page's thread. The tree and the
// in-flight table are guarded by a single mutex held only across local
// state changes, never across a network call, so different comments can
// have independent in-flight mutations.
type Gateway struct {
	pageID string
	store  Store
	actor  Actor

	mu       sync.Mutex
	tree     *thread.Tree
	inflight map[string]struct{}

	// pruner drops derived presentation state for removed ids; wired to
	// view.State.PruneFor by the embedding view.
	pruner func(map[string]struct{})

	now func() int64
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithPruner installs the hook invoked with the removed-id set after a
// confirmed delete (and after rolling back a failed create).
func WithPruner(fn func(map[string]struct{})) Option {
	return func(g *Gateway) { g.pruner = fn }
}

// WithClock overrides the timestamp source; tests use this.
func WithClock(fn func() int64) Option {
	return func(g *Gateway) { g.now = fn }
}

// NewGateway returns a gateway mutating tree on behalf of actor.
func NewGateway(pageID string, tree *thread.Tree, store Store, actor Actor, opts ...Option) *Gateway {
	g := &Gateway{
		pageID:   pageID,
		store:    store,
		actor:    actor,
		tree:     tree,
		inflight: make(map[string]struct{}),
		pruner:   func(map[string]struct{}) {},
		now:      func() int64 { return time.Now().UTC().UnixNano() },
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Tree returns the gateway's tree for read-side traversal.
func (g *Gateway) Tree() *thread.Tree { return g.tree }

// LoadThread replaces the tree wholesale from storage. On failure the
// prior forest is untouched and the error wraps ErrLoad.
func (g *Gateway) LoadThread(ctx context.Context) error {
	comments, err := g.store.FetchThread(ctx, g.pageID)
	if err != nil {
		telemetry.ThreadLoadsTotal.WithLabelValues("error").Inc()
		logger.Warn("thread_load_failed", "page", g.pageID, "error", err)
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}
	g.mu.Lock()
	g.tree.Load(comments)
	g.mu.Unlock()
	telemetry.ThreadLoadsTotal.WithLabelValues("ok").Inc()
	logger.Info("thread_loaded", "page", g.pageID, "comments", len(comments))
	return nil
}

// Create validates and optimistically inserts a provisional comment,
// then asks storage to confirm it. On success the provisional node is
// swapped in place for the server-issued one; on failure it is removed
// again and the error surfaced.
func (g *Gateway) Create(ctx context.Context, parentID, body string, attachments []models.Attachment) (*models.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrValidation
	}

	provisional := &models.Comment{
		ID:          "pending-" + uuid.NewString(),
		Page:        g.pageID,
		Author:      g.actor.UserID,
		AuthorName:  g.actor.DisplayName,
		Body:        body,
		CreatedTS:   g.now(),
		ReplyTo:     parentID,
		Attachments: append([]models.Attachment(nil), attachments...),
	}

	g.mu.Lock()
	if err := g.tree.Insert(parentID, provisional); err != nil {
		g.mu.Unlock()
		return nil, err
	}
	g.inflight[provisional.ID] = struct{}{}
	g.mu.Unlock()

	confirmed, err := g.store.CreateComment(ctx, g.pageID, *provisional)

	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, provisional.ID)
	if err != nil {
		removed := g.tree.Remove(provisional.ID)
		g.pruner(removed)
		telemetry.MutationsTotal.WithLabelValues("create", "rolled_back").Inc()
		logger.Warn("create_rolled_back", "page", g.pageID, "provisional", provisional.ID, "error", err)
		return nil, &MutationError{Op: "create", ID: provisional.ID, Err: err}
	}
	if rerr := g.tree.Replace(provisional.ID, confirmed); rerr != nil {
		// should not happen in correct usage; keep the provisional node
		// rather than lose the comment
		logger.Error("create_confirm_replace_failed", "provisional", provisional.ID, "confirmed", confirmed.ID, "error", rerr)
	}
	telemetry.MutationsTotal.WithLabelValues("create", "confirmed").Inc()
	logger.Info("comment_created", "page", g.pageID, "id", confirmed.ID, "reply_to", parentID)
	return confirmed, nil
}

// Edit validates and optimistically rewrites a comment body, keeping a
// pre-mutation snapshot until the server resolves. A second edit for the
// same comment while one is in flight fails with ErrConflict.
func (g *Gateway) Edit(ctx context.Context, id, body, bodyHTML string) error {
	if strings.TrimSpace(body) == "" {
		return ErrValidation
	}

	g.mu.Lock()
	if _, busy := g.inflight[id]; busy {
		g.mu.Unlock()
		telemetry.ConflictsTotal.Inc()
		return fmt.Errorf("edit %s: %w", id, ErrConflict)
	}
	prev, ok := g.tree.Get(id)
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("edit %s: %w", id, thread.ErrNodeNotFound)
	}
	prevBody, prevHTML, prevEdited := prev.Body, prev.BodyHTML, prev.EditedTS
	if err := g.tree.Update(id, body, bodyHTML, g.now()); err != nil {
		g.mu.Unlock()
		return err
	}
	g.inflight[id] = struct{}{}
	g.mu.Unlock()

	err := g.store.EditComment(ctx, id, body, bodyHTML)

	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, id)
	if err != nil {
		if rerr := g.tree.Revert(id, prevBody, prevHTML, prevEdited); rerr != nil {
			logger.Error("edit_rollback_failed", "id", id, "error", rerr)
		}
		telemetry.MutationsTotal.WithLabelValues("edit", "rolled_back").Inc()
		logger.Warn("edit_rolled_back", "id", id, "error", err)
		return &MutationError{Op: "edit", ID: id, Err: err}
	}
	telemetry.MutationsTotal.WithLabelValues("edit", "confirmed").Inc()
	logger.Info("comment_edited", "id", id)
	return nil
}

// Delete optimistically removes a comment and its whole subtree, keeping
// a structural snapshot until the server resolves. The storage cascade
// is atomic, so a failure restores the subtree at its original position.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	g.mu.Lock()
	if _, busy := g.inflight[id]; busy {
		g.mu.Unlock()
		telemetry.ConflictsTotal.Inc()
		return fmt.Errorf("delete %s: %w", id, ErrConflict)
	}
	if _, ok := g.tree.Get(id); !ok {
		g.mu.Unlock()
		return fmt.Errorf("delete %s: %w", id, thread.ErrNodeNotFound)
	}
	snap, removed := g.tree.RemoveSubtree(id)
	g.inflight[id] = struct{}{}
	g.mu.Unlock()

	err := g.store.DeleteComment(ctx, id)

	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, id)
	if err != nil {
		if rerr := g.tree.RestoreSubtree(snap); rerr != nil {
			logger.Error("delete_rollback_failed", "id", id, "error", rerr)
		}
		telemetry.MutationsTotal.WithLabelValues("delete", "rolled_back").Inc()
		logger.Warn("delete_rolled_back", "id", id, "error", err)
		return &MutationError{Op: "delete", ID: id, Err: err}
	}
	g.pruner(removed)
	telemetry.MutationsTotal.WithLabelValues("delete", "confirmed").Inc()
	logger.Info("comment_deleted", "id", id, "removed", len(removed))
	return nil
}
