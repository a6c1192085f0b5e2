package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"pagethread/pkg/auth"
	"pagethread/pkg/models"
	"pagethread/pkg/store"
	"pagethread/pkg/utils"
	"pagethread/pkg/validation"
)

// RegisterComments registers HTTP handlers for comment endpoints.
func RegisterComments(r *mux.Router) {
	// /v1/pages/{page}/comments
	r.HandleFunc("/pages/{page}/comments", listComments).Methods(http.MethodGet)
	r.HandleFunc("/pages/{page}/comments", createComment).Methods(http.MethodPost)

	// /v1/comments/{id}
	r.HandleFunc("/comments/{id}", getComment).Methods(http.MethodGet)
	r.HandleFunc("/comments/{id}", updateComment).Methods(http.MethodPut)
	r.HandleFunc("/comments/{id}", deleteComment).Methods(http.MethodDelete)
}

type createRequest struct {
	ReplyTo     string              `json:"reply_to,omitempty"`
	Body        string              `json:"body"`
	BodyHTML    string              `json:"body_html,omitempty"`
	Attachments []models.Attachment `json:"attachments,omitempty"`
}

type editRequest struct {
	Body     string `json:"body"`
	BodyHTML string `json:"body_html,omitempty"`
}

func listComments(w http.ResponseWriter, r *http.Request) {
	pageID := mux.Vars(r)["page"]
	comments, err := store.ListComments(pageID, false)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Page     string           `json:"page"`
		Comments []models.Comment `json:"comments"`
	}{Page: pageID, Comments: comments})
}

func createComment(w http.ResponseWriter, r *http.Request) {
	pageID := mux.Vars(r)["page"]
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	author, status, msg := auth.ResolveAuthor(r)
	if status != 0 {
		utils.JSONError(w, status, msg)
		return
	}

	c := models.Comment{
		ID:          utils.GenCommentID(),
		Page:        pageID,
		Author:      author,
		AuthorName:  r.Header.Get("X-User-Name"),
		Body:        req.Body,
		BodyHTML:    req.BodyHTML,
		CreatedTS:   time.Now().UTC().UnixNano(),
		ReplyTo:     req.ReplyTo,
		Attachments: req.Attachments,
	}
	if err := validation.ValidateComment(c); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ReplyTo != "" {
		parent, err := store.GetComment(req.ReplyTo)
		if err != nil || parent.Deleted {
			utils.JSONError(w, http.StatusNotFound, "parent comment not found")
			return
		}
		if parent.Page != pageID {
			utils.JSONError(w, http.StatusBadRequest, "parent comment belongs to another page")
			return
		}
	}
	if err := store.SaveComment(c); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	store.TouchPage(pageID, c.CreatedTS)
	_ = utils.JSONWrite(w, http.StatusOK, c)
}

func getComment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	c, err := store.GetComment(id)
	if err != nil || c.Deleted {
		utils.JSONError(w, http.StatusNotFound, "comment not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, c)
}

// updateComment rewrites a comment body. Only the author may edit;
// privileged (backend/admin) callers are exempt from the ownership
// check to support moderation tooling.
func updateComment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.ValidateBody(req.Body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	author, status, msg := auth.ResolveAuthor(r)
	if status != 0 {
		utils.JSONError(w, status, msg)
		return
	}
	c, err := store.GetComment(id)
	if err != nil || c.Deleted {
		utils.JSONError(w, http.StatusNotFound, "comment not found")
		return
	}
	if c.Author != author && !auth.IsPrivileged(r) {
		utils.JSONError(w, http.StatusForbidden, "only the author may edit a comment")
		return
	}
	updated, err := store.UpdateComment(id, req.Body, req.BodyHTML)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, updated)
}

// deleteComment soft-deletes a comment and its whole reply subtree in
// one atomic batch. Permitted for the author, the page owner, or
// privileged callers.
func deleteComment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	author, status, msg := auth.ResolveAuthor(r)
	if status != 0 {
		utils.JSONError(w, status, msg)
		return
	}
	c, err := store.GetComment(id)
	if err != nil || c.Deleted {
		utils.JSONError(w, http.StatusNotFound, "comment not found")
		return
	}
	allowed := c.Author == author || auth.IsPrivileged(r)
	if !allowed {
		if p, perr := store.GetPage(c.Page); perr == nil && p.Owner != "" && p.Owner == author {
			allowed = true
		}
	}
	if !allowed {
		utils.JSONError(w, http.StatusForbidden, "only the author or page owner may delete a comment")
		return
	}
	removed, err := store.DeleteCascade(c.Page, id)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	store.TouchPage(c.Page, time.Now().UTC().UnixNano())
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Removed []string `json:"removed"`
	}{Removed: removed})
}
