package models

// Comment is a single node of a page's discussion thread.
type Comment struct {
	ID   string `json:"id"`
	Page string `json:"page"`
	// Author is an opaque identity id; AuthorName is the display form
	// captured at creation time.
	Author     string `json:"author"`
	AuthorName string `json:"author_name,omitempty"`
	// Body is the authoritative plain-text content. BodyHTML is an
	// optional pre-rendered form supplied by the markdown collaborator
	// and is never trusted as source of truth.
	Body     string `json:"body"`
	BodyHTML string `json:"body_html,omitempty"`
	// Created timestamp (ns)
	CreatedTS int64 `json:"created_ts"`
	// EditedTS is 0 until the first edit; once set it only increases.
	EditedTS int64 `json:"edited_ts,omitempty"`
	// ReplyTo holds the parent comment id; empty for top-level comments.
	ReplyTo string `json:"reply_to,omitempty"`
	// Deleted marks a comment as soft-deleted; DeletedTS records when (ns).
	Deleted   bool  `json:"deleted,omitempty"`
	DeletedTS int64 `json:"deleted_ts,omitempty"`

	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment references an already-uploaded file. Upload itself is the
// attachment collaborator's job; comments only carry references.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type,omitempty"`
}
