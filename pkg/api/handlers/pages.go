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
)

// RegisterPages registers HTTP handlers for page metadata endpoints.
func RegisterPages(r *mux.Router) {
	r.HandleFunc("/pages/{page}", getPage).Methods(http.MethodGet)
	r.HandleFunc("/pages/{page}", putPage).Methods(http.MethodPut)
}

// getPage returns page metadata plus the live comment count for the
// "N comments" affordance.
func getPage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["page"]
	p, err := store.GetPage(id)
	if err != nil {
		utils.JSONError(w, http.StatusNotFound, "page not found")
		return
	}
	comments, err := store.ListComments(id, false)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		models.Page
		CommentCount int `json:"comment_count"`
	}{Page: *p, CommentCount: len(comments)})
}

// putPage sets page metadata (owner, title). Reserved for privileged
// callers; page ownership comes from the document service, not from
// commenters.
func putPage(w http.ResponseWriter, r *http.Request) {
	if !auth.IsPrivileged(r) {
		utils.JSONError(w, http.StatusForbidden, "forbidden")
		return
	}
	id := mux.Vars(r)["page"]
	var p models.Page
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p.ID = id
	if prev, err := store.GetPage(id); err == nil {
		p.CreatedTS = prev.CreatedTS
	} else {
		p.CreatedTS = time.Now().UTC().UnixNano()
	}
	p.UpdatedTS = time.Now().UTC().UnixNano()
	if err := store.SavePage(p); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, p)
}
