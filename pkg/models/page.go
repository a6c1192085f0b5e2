package models

// Page holds per-page discussion metadata. The page body itself lives in
// the document store; only what the thread service needs is kept here.
type Page struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	// Owner is the identity id allowed to delete any comment on the page.
	Owner string `json:"owner,omitempty"`
	// Created timestamp (ns)
	CreatedTS int64 `json:"created_ts,omitempty"`
	// Updated timestamp (ns) - last time thread activity changed
	UpdatedTS int64 `json:"updated_ts,omitempty"`
}
