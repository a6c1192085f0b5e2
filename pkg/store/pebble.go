// Package store persists page comment threads in pebble. Comments are
// kept under per-page keys in insertion order plus an id index, so a
// thread fetch is a single prefix scan and a cascade delete is one
// atomic batch.
package store

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"pagethread/pkg/logger"
	"pagethread/pkg/models"
)

var (
	db     *pebble.DB
	dbPath string
)

// seq reduces key collisions when multiple comments share the same
// nanosecond timestamp.
var seq uint64

// Open opens (or creates) a Pebble database at the given path and keeps
// a global handle for simple usage in this package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

func commentKey(pageID string, ts int64, s uint64) string {
	return fmt.Sprintf("page:%s:comment:%020d-%06d", pageID, ts, s)
}

func idKey(id string) string     { return "byid:comment:" + id }
func latestKey(id string) string { return "latest:comment:" + id }
func pageKey(id string) string   { return "page-meta:" + id }

// SaveComment appends a comment to its page in insertion order and
// indexes it by id. The caller supplies a fully-populated comment
// (id, page, author, created_ts).
func SaveComment(c models.Comment) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	if c.ID == "" || c.Page == "" {
		return fmt.Errorf("save comment: id and page are required")
	}
	ts := c.CreatedTS
	if ts == 0 {
		ts = time.Now().UTC().UnixNano()
	}
	s := atomic.AddUint64(&seq, 1)
	key := commentKey(c.Page, ts, s)

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal comment: %w", err)
	}

	b := db.NewBatch()
	defer b.Close()
	_ = b.Set([]byte(key), data, nil)
	_ = b.Set([]byte(idKey(c.ID)), []byte(key), nil)
	_ = b.Set([]byte(latestKey(c.ID)), data, nil)
	if err := db.Apply(b, pebble.Sync); err != nil {
		logger.Error("save_comment_failed", "page", c.Page, "id", c.ID, "error", err)
		return err
	}
	logger.Info("comment_saved", "page", c.Page, "id", c.ID, "reply_to", c.ReplyTo)
	return nil
}

// GetComment returns the current version of a comment by id.
func GetComment(id string) (*models.Comment, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	v, closer, err := db.Get([]byte(latestKey(id)))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, fmt.Errorf("comment %s not found", id)
		}
		return nil, err
	}
	defer closer.Close()
	var c models.Comment
	if err := json.Unmarshal(v, &c); err != nil {
		return nil, fmt.Errorf("invalid comment record %s: %w", id, err)
	}
	return &c, nil
}

// writeVersion rewrites a comment at its primary key and latest pointer
// inside the given batch.
func writeVersion(b *pebble.Batch, c models.Comment) error {
	v, closer, err := db.Get([]byte(idKey(c.ID)))
	if err != nil {
		return fmt.Errorf("comment %s index missing: %w", c.ID, err)
	}
	primary := append([]byte(nil), v...)
	closer.Close()
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_ = b.Set(primary, data, nil)
	_ = b.Set([]byte(latestKey(c.ID)), data, nil)
	return nil
}

// UpdateComment rewrites a comment's body, bumping EditedTS. EditedTS
// never decreases.
func UpdateComment(id, body, bodyHTML string) (*models.Comment, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	c, err := GetComment(id)
	if err != nil {
		return nil, err
	}
	if c.Deleted {
		return nil, fmt.Errorf("comment %s is deleted", id)
	}
	c.Body = body
	c.BodyHTML = bodyHTML
	if now := time.Now().UTC().UnixNano(); now > c.EditedTS {
		c.EditedTS = now
	}
	b := db.NewBatch()
	defer b.Close()
	if err := writeVersion(b, *c); err != nil {
		return nil, err
	}
	if err := db.Apply(b, pebble.Sync); err != nil {
		logger.Error("update_comment_failed", "id", id, "error", err)
		return nil, err
	}
	logger.Info("comment_updated", "id", id)
	return c, nil
}

// ListComments returns a page's comments in insertion order. Soft
// deleted comments are excluded unless includeDeleted is set.
func ListComments(pageID string, includeDeleted bool) ([]models.Comment, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte("page:" + pageID + ":comment:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Comment
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		key := iter.Key()
		if len(key) < len(prefix) || string(key[:len(prefix)]) != string(prefix) {
			break
		}
		var c models.Comment
		if err := json.Unmarshal(iter.Value(), &c); err != nil {
			logger.Warn("skip_invalid_comment_record", "key", string(key), "error", err)
			continue
		}
		if c.Deleted && !includeDeleted {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// DeleteCascade soft-deletes a comment and every descendant reachable
// through reply_to links, in one atomic batch. It returns the removed
// id set (the comment itself included) in stable list order.
func DeleteCascade(pageID, id string) ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	all, err := ListComments(pageID, false)
	if err != nil {
		return nil, err
	}
	children := make(map[string][]string, len(all))
	byID := make(map[string]models.Comment, len(all))
	for _, c := range all {
		byID[c.ID] = c
		if c.ReplyTo != "" {
			children[c.ReplyTo] = append(children[c.ReplyTo], c.ID)
		}
	}
	if _, ok := byID[id]; !ok {
		return nil, fmt.Errorf("comment %s not found", id)
	}

	now := time.Now().UTC().UnixNano()
	var removed []string
	stack := []string{id}
	seen := map[string]struct{}{}
	b := db.NewBatch()
	defer b.Close()
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, dup := seen[cur]; dup {
			continue
		}
		seen[cur] = struct{}{}
		c := byID[cur]
		c.Deleted = true
		c.DeletedTS = now
		if err := writeVersion(b, c); err != nil {
			return nil, err
		}
		removed = append(removed, cur)
		stack = append(stack, children[cur]...)
	}
	if err := db.Apply(b, pebble.Sync); err != nil {
		logger.Error("delete_cascade_failed", "page", pageID, "id", id, "error", err)
		return nil, err
	}
	logger.Info("comments_deleted", "page", pageID, "root", id, "count", len(removed))
	return removed, nil
}

// PurgeDeleted permanently removes soft-deleted comments whose deletion
// time is older than before. Used by the retention runner. Returns how
// many comments were purged.
func PurgeDeleted(before int64, dryRun bool) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte("page:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}
	defer iter.Close()
	b := db.NewBatch()
	defer b.Close()
	n := 0
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		key := iter.Key()
		if len(key) < len(prefix) || string(key[:len(prefix)]) != string(prefix) {
			break
		}
		var c models.Comment
		if err := json.Unmarshal(iter.Value(), &c); err != nil {
			continue
		}
		if !c.Deleted || c.DeletedTS >= before {
			continue
		}
		n++
		if dryRun {
			continue
		}
		_ = b.Delete(append([]byte(nil), key...), nil)
		_ = b.Delete([]byte(idKey(c.ID)), nil)
		_ = b.Delete([]byte(latestKey(c.ID)), nil)
	}
	if dryRun || n == 0 {
		return n, nil
	}
	if err := db.Apply(b, pebble.Sync); err != nil {
		return 0, err
	}
	logger.Info("tombstones_purged", "count", n)
	return n, nil
}

// SavePage stores page metadata.
func SavePage(p models.Page) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return db.Set([]byte(pageKey(p.ID)), data, pebble.Sync)
}

// GetPage returns page metadata by id.
func GetPage(id string) (*models.Page, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	v, closer, err := db.Get([]byte(pageKey(id)))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, fmt.Errorf("page %s not found", id)
		}
		return nil, err
	}
	defer closer.Close()
	var p models.Page
	if err := json.Unmarshal(v, &p); err != nil {
		return nil, fmt.Errorf("invalid page record %s: %w", id, err)
	}
	return &p, nil
}

// TouchPage updates a page's activity timestamp, creating the metadata
// record on first comment.
func TouchPage(id string, ts int64) {
	p, err := GetPage(id)
	if err != nil {
		p = &models.Page{ID: id, CreatedTS: ts}
	}
	p.UpdatedTS = ts
	if err := SavePage(*p); err != nil {
		logger.Warn("touch_page_failed", "page", id, "error", err)
	}
}
