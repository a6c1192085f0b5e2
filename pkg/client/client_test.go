package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pagethread/pkg/auth"
	"pagethread/pkg/models"
)

func TestRequestCarriesIdentityHeaders(t *testing.T) {
	var got http.Header
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"page": "p1", "comments": []models.Comment{}})
	}))
	defer srv.Close()

	c := New(Config{
		BaseURL:    srv.URL,
		APIKey:     "fk1",
		UserID:     "alice",
		UserName:   "Alice",
		SigningKey: "bk1",
	})
	if _, err := c.FetchThread(context.Background(), "p1"); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if gotPath != "/v1/pages/p1/comments" {
		t.Fatalf("path = %s", gotPath)
	}
	if got.Get("X-API-Key") != "fk1" {
		t.Fatalf("api key header missing")
	}
	if got.Get("X-User-ID") != "alice" {
		t.Fatalf("user header missing")
	}
	if got.Get("X-User-Name") != "Alice" {
		t.Fatalf("user name header missing")
	}
	if want := auth.Sign("bk1", "alice"); got.Get("X-User-Signature") != want {
		t.Fatalf("signature = %q, want %q", got.Get("X-User-Signature"), want)
	}
}

func TestCreateCommentPostsAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		var req struct {
			ReplyTo string `json:"reply_to"`
			Body    string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.ReplyTo != "parent-1" || req.Body != "hello" {
			t.Errorf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(models.Comment{ID: "c-1", Body: req.Body, ReplyTo: req.ReplyTo})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, APIKey: "k"})
	out, err := c.CreateComment(context.Background(), "p1", models.Comment{ReplyTo: "parent-1", Body: "hello"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out.ID != "c-1" {
		t.Fatalf("id = %s", out.ID)
	}
}

func TestServerErrorSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not author"})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, APIKey: "k", UserID: "mallory"})
	err := c.EditComment(context.Background(), "c-1", "evil", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "not author") {
		t.Fatalf("error %v does not carry server message", err)
	}
}

func TestDeleteComment(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string][]string{"removed": {"c-1", "c-2"}})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, APIKey: "k"})
	if err := c.DeleteComment(context.Background(), "c-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/v1/comments/c-1" {
		t.Fatalf("request %s %s", gotMethod, gotPath)
	}
}
