// Package client is the REST storage client for the comment service.
// It implements mutate.Store, so the thread engine can run against a
// live pagethreadd (or anything serving the same API).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"pagethread/pkg/auth"
	"pagethread/pkg/models"
)

// Config carries connection and identity settings for a client.
type Config struct {
	BaseURL string
	APIKey  string
	// UserID/UserName identify the acting author. SigningKey, when set,
	// produces the X-User-Signature header; backend keys may omit it.
	UserID     string
	UserName   string
	SigningKey string

	// HTTPClient overrides the default client (10s timeout).
	HTTPClient *http.Client
}

// Client talks to the comment storage service.
type Client struct {
	cfg  Config
	http *http.Client
}

// New returns a client for the given config.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{cfg: cfg, http: hc}
}

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", c.cfg.APIKey)
	}
	if c.cfg.UserID != "" {
		req.Header.Set("X-User-ID", c.cfg.UserID)
		if c.cfg.SigningKey != "" {
			req.Header.Set("X-User-Signature", auth.Sign(c.cfg.SigningKey, c.cfg.UserID))
		}
	}
	if c.cfg.UserName != "" {
		req.Header.Set("X-User-Name", c.cfg.UserName)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var ae apiError
		if json.NewDecoder(res.Body).Decode(&ae) == nil && ae.Error != "" {
			return fmt.Errorf("server: %s (%s)", ae.Error, res.Status)
		}
		return fmt.Errorf("server: %s", res.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// FetchThread returns a page's comment forest as a flat list.
func (c *Client) FetchThread(ctx context.Context, pageID string) ([]models.Comment, error) {
	var res struct {
		Page     string           `json:"page"`
		Comments []models.Comment `json:"comments"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/pages/"+pageID+"/comments", nil, &res); err != nil {
		return nil, err
	}
	return res.Comments, nil
}

// CreateComment persists a new comment and returns the server-confirmed
// form (server id and timestamps). The provisional id in c is ignored
// by the server.
func (c *Client) CreateComment(ctx context.Context, pageID string, comment models.Comment) (*models.Comment, error) {
	req := struct {
		ReplyTo     string              `json:"reply_to,omitempty"`
		Body        string              `json:"body"`
		BodyHTML    string              `json:"body_html,omitempty"`
		Attachments []models.Attachment `json:"attachments,omitempty"`
	}{
		ReplyTo:     comment.ReplyTo,
		Body:        comment.Body,
		BodyHTML:    comment.BodyHTML,
		Attachments: comment.Attachments,
	}
	var out models.Comment
	if err := c.do(ctx, http.MethodPost, "/v1/pages/"+pageID+"/comments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EditComment rewrites a comment body.
func (c *Client) EditComment(ctx context.Context, id, body, bodyHTML string) error {
	req := struct {
		Body     string `json:"body"`
		BodyHTML string `json:"body_html,omitempty"`
	}{Body: body, BodyHTML: bodyHTML}
	return c.do(ctx, http.MethodPut, "/v1/comments/"+id, req, nil)
}

// DeleteComment cascade-deletes a comment and its subtree.
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/comments/"+id, nil, nil)
}

// PageInfo is page metadata plus the live comment count.
type PageInfo struct {
	models.Page
	CommentCount int `json:"comment_count"`
}

// Page fetches page metadata and comment count.
func (c *Client) Page(ctx context.Context, pageID string) (*PageInfo, error) {
	var out PageInfo
	if err := c.do(ctx, http.MethodGet, "/v1/pages/"+pageID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health probes the service health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}
