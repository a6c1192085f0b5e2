package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pagethread/pkg/api"
	"pagethread/pkg/auth"
	"pagethread/pkg/config"
	"pagethread/pkg/models"
	"pagethread/pkg/store"
)

const (
	frontendKey = "fk-test"
	backendKey  = "bk-test"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	config.SetRuntime(&config.RuntimeConfig{
		BackendKeys:  map[string]struct{}{backendKey: {}},
		FrontendKeys: map[string]struct{}{frontendKey: {}},
		AdminKeys:    map[string]struct{}{},
		SigningKeys:  map[string]struct{}{backendKey: {}},
	})

	sec := auth.SecConfig{
		BackendKeys:  map[string]struct{}{backendKey: {}},
		FrontendKeys: map[string]struct{}{frontendKey: {}},
		AdminKeys:    map[string]struct{}{},
	}
	srv := httptest.NewServer(api.Handler(sec))
	t.Cleanup(srv.Close)
	return srv
}

// doJSON sends a request as a signed frontend user (or as backend when
// userID is empty) and decodes the response body into out when non-nil.
func doJSON(t *testing.T, srv *httptest.Server, method, path, userID string, in, out interface{}) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+path, body)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-API-Key", frontendKey)
		req.Header.Set("X-User-ID", userID)
		req.Header.Set("X-User-Signature", auth.Sign(backendKey, userID))
	} else {
		req.Header.Set("X-API-Key", backendKey)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	t.Cleanup(func() { _ = res.Body.Close() })
	if out != nil && res.StatusCode == http.StatusOK {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return res
}

func postComment(t *testing.T, srv *httptest.Server, user, replyTo, body string) models.Comment {
	t.Helper()
	var out models.Comment
	res := doJSON(t, srv, http.MethodPost, "/v1/pages/p1/comments", user,
		map[string]string{"reply_to": replyTo, "body": body}, &out)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("create status = %d", res.StatusCode)
	}
	return out
}

func TestRejectsMissingAPIKey(t *testing.T) {
	srv := newTestServer(t)
	res, err := http.Get(srv.URL + "/v1/pages/p1/comments")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.StatusCode)
	}
}

func TestRejectsBadSignature(t *testing.T) {
	srv := newTestServer(t)
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/pages/p1/comments",
		bytes.NewReader([]byte(`{"body":"hi"}`)))
	req.Header.Set("X-API-Key", frontendKey)
	req.Header.Set("X-User-ID", "alice")
	req.Header.Set("X-User-Signature", "deadbeef")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.StatusCode)
	}
}

func TestCreateAndListThread(t *testing.T) {
	srv := newTestServer(t)
	root := postComment(t, srv, "alice", "", "root comment")
	if root.ID == "" || root.Author != "alice" || root.CreatedTS == 0 {
		t.Fatalf("created = %+v", root)
	}
	reply := postComment(t, srv, "bob", root.ID, "a reply")
	if reply.ReplyTo != root.ID {
		t.Fatalf("reply_to = %s", reply.ReplyTo)
	}

	var listed struct {
		Page     string           `json:"page"`
		Comments []models.Comment `json:"comments"`
	}
	res := doJSON(t, srv, http.MethodGet, "/v1/pages/p1/comments", "alice", nil, &listed)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", res.StatusCode)
	}
	if len(listed.Comments) != 2 {
		t.Fatalf("listed %d comments, want 2", len(listed.Comments))
	}
}

func TestCreateValidation(t *testing.T) {
	srv := newTestServer(t)

	res := doJSON(t, srv, http.MethodPost, "/v1/pages/p1/comments", "alice",
		map[string]string{"body": "   "}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty body status = %d, want 400", res.StatusCode)
	}

	res = doJSON(t, srv, http.MethodPost, "/v1/pages/p1/comments", "alice",
		map[string]string{"reply_to": "missing", "body": "hi"}, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown parent status = %d, want 404", res.StatusCode)
	}
}

func TestReplyAcrossPagesRejected(t *testing.T) {
	srv := newTestServer(t)
	root := postComment(t, srv, "alice", "", "on p1")

	res := doJSON(t, srv, http.MethodPost, "/v1/pages/p2/comments", "alice",
		map[string]string{"reply_to": root.ID, "body": "cross-page"}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.StatusCode)
	}
}

func TestEditOwnershipEnforced(t *testing.T) {
	srv := newTestServer(t)
	c := postComment(t, srv, "alice", "", "original")

	res := doJSON(t, srv, http.MethodPut, "/v1/comments/"+c.ID, "bob",
		map[string]string{"body": "hijacked"}, nil)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign edit status = %d, want 403", res.StatusCode)
	}

	var updated models.Comment
	res = doJSON(t, srv, http.MethodPut, "/v1/comments/"+c.ID, "alice",
		map[string]string{"body": "revised"}, &updated)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("author edit status = %d", res.StatusCode)
	}
	if updated.Body != "revised" || updated.EditedTS == 0 {
		t.Fatalf("updated = %+v", updated)
	}
}

func TestBackendKeyMayModerate(t *testing.T) {
	srv := newTestServer(t)
	c := postComment(t, srv, "alice", "", "original")

	// backend caller asserts the author via header, no signature
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/v1/comments/"+c.ID,
		bytes.NewReader([]byte(`{"body":"moderated"}`)))
	req.Header.Set("X-API-Key", backendKey)
	req.Header.Set("X-User-ID", "moderator")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("moderation edit status = %d", res.StatusCode)
	}
}

func TestDeleteCascadeEndpoint(t *testing.T) {
	srv := newTestServer(t)
	a := postComment(t, srv, "alice", "", "a")
	b := postComment(t, srv, "bob", a.ID, "b")
	c := postComment(t, srv, "carol", b.ID, "c")
	d := postComment(t, srv, "dave", "", "d")

	// bob may not delete alice's root
	res := doJSON(t, srv, http.MethodDelete, "/v1/comments/"+a.ID, "bob", nil, nil)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign delete status = %d, want 403", res.StatusCode)
	}

	var out struct {
		Removed []string `json:"removed"`
	}
	res = doJSON(t, srv, http.MethodDelete, "/v1/comments/"+a.ID, "alice", nil, &out)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", res.StatusCode)
	}
	if len(out.Removed) != 3 {
		t.Fatalf("removed = %v, want a,b,c", out.Removed)
	}
	for _, id := range []string{a.ID, b.ID, c.ID} {
		found := false
		for _, rid := range out.Removed {
			if rid == id {
				found = true
			}
		}
		if !found {
			t.Fatalf("id %s missing from removed set %v", id, out.Removed)
		}
	}

	var listed struct {
		Comments []models.Comment `json:"comments"`
	}
	doJSON(t, srv, http.MethodGet, "/v1/pages/p1/comments", "alice", nil, &listed)
	if len(listed.Comments) != 1 || listed.Comments[0].ID != d.ID {
		t.Fatalf("surviving comments = %+v", listed.Comments)
	}

	// deleting again is a 404, tombstones are not addressable
	res = doJSON(t, srv, http.MethodDelete, "/v1/comments/"+a.ID, "alice", nil, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("repeat delete status = %d, want 404", res.StatusCode)
	}
}

func TestPageOwnerMayDelete(t *testing.T) {
	srv := newTestServer(t)
	if err := store.SavePage(models.Page{ID: "p1", Owner: "olivia", CreatedTS: 1}); err != nil {
		t.Fatalf("save page: %v", err)
	}
	c := postComment(t, srv, "alice", "", "on olivia's page")

	res := doJSON(t, srv, http.MethodDelete, "/v1/comments/"+c.ID, "olivia", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("owner delete status = %d", res.StatusCode)
	}
}

func TestAuthorMismatchRejected(t *testing.T) {
	srv := newTestServer(t)
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/pages/p1/comments",
		bytes.NewReader([]byte(`{"body":"hi"}`)))
	req.Header.Set("X-API-Key", frontendKey)
	req.Header.Set("X-User-ID", "mallory")
	req.Header.Set("X-User-Signature", auth.Sign(backendKey, "alice"))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.StatusCode)
	}
}

func TestPageMetadataEndpoint(t *testing.T) {
	srv := newTestServer(t)
	postComment(t, srv, "alice", "", "first")

	var info struct {
		models.Page
		CommentCount int `json:"comment_count"`
	}
	res := doJSON(t, srv, http.MethodGet, "/v1/pages/p1", "alice", nil, &info)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("page status = %d", res.StatusCode)
	}
	if info.ID != "p1" || info.CommentCount != 1 {
		t.Fatalf("page info = %+v", info)
	}
}
