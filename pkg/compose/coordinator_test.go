package compose

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagethread/pkg/models"
)

// fakeCreator records submissions and can be told to fail. inFlight,
// when set, runs while the submission is pending, which is the only
// window where the Submitting phase is observable.
type fakeCreator struct {
	lastParent string
	lastBody   string
	lastAtt    []models.Attachment
	err        error
	inFlight   func()
}

func (f *fakeCreator) Create(ctx context.Context, parentID, body string, attachments []models.Attachment) (*models.Comment, error) {
	if f.inFlight != nil {
		f.inFlight()
	}
	f.lastParent, f.lastBody, f.lastAtt = parentID, body, attachments
	if f.err != nil {
		return nil, f.err
	}
	return &models.Comment{ID: "c-1", Body: body, ReplyTo: parentID}, nil
}

func TestStartReplyDiscardsPriorDraft(t *testing.T) {
	co := NewCoordinator(&fakeCreator{})

	require.NoError(t, co.StartReply("a"))
	co.UpdateDraft("draft for a")
	co.AttachFiles([]models.Attachment{{ID: "f1", Name: "x.png"}})

	// switching compose targets abandons the previous draft wholesale
	require.NoError(t, co.StartReply("b"))
	d := co.Draft()
	assert.Equal(t, "b", d.ParentID)
	assert.Empty(t, d.Body)
	assert.Empty(t, d.Attachments)
	assert.Equal(t, PhaseComposing, co.Phase())
}

func TestDraftOpsAreNoopsWhileIdle(t *testing.T) {
	co := NewCoordinator(&fakeCreator{})
	co.UpdateDraft("ignored")
	co.AttachFiles([]models.Attachment{{ID: "f1"}})
	assert.Equal(t, PhaseIdle, co.Phase())
	assert.Empty(t, co.Draft().Body)
}

func TestCancelReturnsToIdle(t *testing.T) {
	co := NewCoordinator(&fakeCreator{})
	require.NoError(t, co.StartReply(""))
	co.UpdateDraft("something")
	require.NoError(t, co.Cancel())
	assert.Equal(t, PhaseIdle, co.Phase())
	assert.Empty(t, co.Draft().Body)
}

func TestSubmitPassesDraftThrough(t *testing.T) {
	fc := &fakeCreator{}
	co := NewCoordinator(fc)

	require.NoError(t, co.StartReply("parent-1"))
	co.UpdateDraft("hello there")
	co.AttachFiles([]models.Attachment{{ID: "f1", Name: "x.png", Size: 10}})

	created, err := co.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c-1", created.ID)
	assert.Equal(t, "parent-1", fc.lastParent)
	assert.Equal(t, "hello there", fc.lastBody)
	assert.Len(t, fc.lastAtt, 1)
	assert.Equal(t, PhaseIdle, co.Phase())
}

func TestSubmitEmptyDraft(t *testing.T) {
	co := NewCoordinator(&fakeCreator{})
	require.NoError(t, co.StartReply(""))
	co.UpdateDraft("   \n ")
	_, err := co.Submit(context.Background())
	assert.ErrorIs(t, err, ErrEmptyDraft)
	// the coordinator stays composing so the user can fix the draft
	assert.Equal(t, PhaseComposing, co.Phase())
}

func TestSubmitWhileIdle(t *testing.T) {
	co := NewCoordinator(&fakeCreator{})
	_, err := co.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotComposing)
}

func TestSubmitFailureEndsIdleWithDraftDiscarded(t *testing.T) {
	fc := &fakeCreator{err: errors.New("rejected")}
	co := NewCoordinator(fc)
	require.NoError(t, co.StartReply("a"))
	co.UpdateDraft("doomed")

	_, err := co.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, PhaseIdle, co.Phase())
	assert.Empty(t, co.Draft().Body)
}

func TestInFlightSubmissionBlocksStartCancelSubmit(t *testing.T) {
	fc := &fakeCreator{}
	co := NewCoordinator(fc)
	fc.inFlight = func() {
		assert.Equal(t, PhaseSubmitting, co.Phase())
		assert.ErrorIs(t, co.StartReply("b"), ErrSubmitInFlight)
		assert.ErrorIs(t, co.Cancel(), ErrSubmitInFlight)
		_, err := co.Submit(context.Background())
		assert.ErrorIs(t, err, ErrSubmitInFlight)
	}

	require.NoError(t, co.StartReply("a"))
	co.UpdateDraft("in flight")

	created, err := co.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c-1", created.ID)
	assert.Equal(t, PhaseIdle, co.Phase())
}
