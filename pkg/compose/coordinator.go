// Package compose coordinates the single active reply box of a thread.
// At most one comment may be the compose target at any time; starting a
// reply elsewhere silently discards the previous draft.
package compose

import (
	"context"
	"errors"
	"strings"

	"pagethread/pkg/models"
)

// Phase is the coordinator's state machine phase.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseComposing
	PhaseSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseComposing:
		return "composing"
	case PhaseSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

var (
	// ErrNotComposing is returned for draft operations outside Composing.
	ErrNotComposing = errors.New("no reply in progress")
	// ErrEmptyDraft is returned when submitting a draft that is empty
	// after trimming.
	ErrEmptyDraft = errors.New("draft body is empty")
	// ErrSubmitInFlight is returned when a submitted reply has not
	// resolved yet; the request always runs to completion first.
	ErrSubmitInFlight = errors.New("reply submission in flight")
)

// Creator is the mutation surface the coordinator submits drafts to.
// *mutate.Gateway satisfies it.
type Creator interface {
	Create(ctx context.Context, parentID, body string, attachments []models.Attachment) (*models.Comment, error)
}

// Draft is the compose buffer: target parent (empty for a top-level
// comment), plain-text body, and references to already-uploaded files.
type Draft struct {
	ParentID    string
	Body        string
	Attachments []models.Attachment
}

// Coordinator tracks which comment (if any) is being replied to and the
// associated draft. It is a plain value-holder, not ambient state, so
// the one-active-compose invariant stays locally verifiable.
type Coordinator struct {
	creator Creator
	phase   Phase
	draft   Draft
}

// NewCoordinator returns an idle coordinator submitting through creator.
func NewCoordinator(creator Creator) *Coordinator {
	return &Coordinator{creator: creator}
}

// Phase returns the current phase.
func (c *Coordinator) Phase() Phase { return c.phase }

// Draft returns a copy of the current draft; meaningful only while
// Composing or Submitting.
func (c *Coordinator) Draft() Draft {
	d := c.draft
	d.Attachments = append([]models.Attachment(nil), c.draft.Attachments...)
	return d
}

// StartReply begins composing a reply to parentID (empty for top-level),
// discarding any prior draft. Rejected while a submission is in flight.
func (c *Coordinator) StartReply(parentID string) error {
	if c.phase == PhaseSubmitting {
		return ErrSubmitInFlight
	}
	c.phase = PhaseComposing
	c.draft = Draft{ParentID: parentID}
	return nil
}

// UpdateDraft replaces the draft body. A no-op outside Composing.
func (c *Coordinator) UpdateDraft(body string) {
	if c.phase != PhaseComposing {
		return
	}
	c.draft.Body = body
}

// AttachFiles replaces the draft's attachment references. A no-op
// outside Composing.
func (c *Coordinator) AttachFiles(refs []models.Attachment) {
	if c.phase != PhaseComposing {
		return
	}
	c.draft.Attachments = append([]models.Attachment(nil), refs...)
}

// Cancel abandons the draft and returns to Idle. Not permitted while a
// submission is in flight.
func (c *Coordinator) Cancel() error {
	if c.phase == PhaseSubmitting {
		return ErrSubmitInFlight
	}
	c.phase = PhaseIdle
	c.draft = Draft{}
	return nil
}

// Submit sends the draft through the mutation gateway. Whatever the
// outcome, the coordinator ends up Idle with the draft discarded; the
// created comment (or the error) is the caller's to surface.
func (c *Coordinator) Submit(ctx context.Context) (*models.Comment, error) {
	switch c.phase {
	case PhaseSubmitting:
		return nil, ErrSubmitInFlight
	case PhaseIdle:
		return nil, ErrNotComposing
	}
	if strings.TrimSpace(c.draft.Body) == "" {
		return nil, ErrEmptyDraft
	}
	d := c.draft
	c.phase = PhaseSubmitting
	created, err := c.creator.Create(ctx, d.ParentID, d.Body, d.Attachments)
	c.phase = PhaseIdle
	c.draft = Draft{}
	if err != nil {
		return nil, err
	}
	return created, nil
}
