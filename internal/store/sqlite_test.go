package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailpilot/internal/model"
	"github.com/nhle/mailpilot/tests/testutil"
)

func sampleEmail(id string, ts time.Time) model.Email {
	return model.Email{
		ID:          id,
		MessageID:   id,
		ThreadID:    "t-" + id,
		Subject:     "subject " + id,
		Sender:      "Jane Doe",
		SenderEmail: "jane@example.com",
		Recipients:  []string{"me@example.com"},
		Content:     "body of " + id,
		Attachments: []model.Attachment{
			{Name: "a.pdf", Size: 42, MIMEType: "application/pdf"},
		},
		Labels:          []string{"INBOX", "UNREAD"},
		IsStarred:       true,
		Priority:        model.PriorityHigh,
		RequiresAction:  true,
		SuggestedAction: model.ActionReply,
		Timestamp:       ts,
		Version:         3,
		LastModified:    ts,
		SyncStatus:      model.SyncStatusSynced,
	}
}

func TestSaveAndLoadCollection(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	checkpoint := now.Add(-time.Minute)
	emails := []model.Email{
		sampleEmail("m1", now),
		sampleEmail("m2", now.Add(-time.Hour)),
	}

	require.NoError(t, s.SaveCollection(ctx, "a@x.com", emails, checkpoint))

	loaded, gotCheckpoint, err := s.LoadCollection(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// Newest first.
	assert.Equal(t, "m1", loaded[0].ID)
	assert.Equal(t, "m2", loaded[1].ID)
	assert.True(t, gotCheckpoint.Equal(checkpoint))

	got := loaded[0]
	assert.Equal(t, "subject m1", got.Subject)
	assert.Equal(t, []string{"me@example.com"}, got.Recipients)
	assert.Equal(t, []string{"INBOX", "UNREAD"}, got.Labels)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "a.pdf", got.Attachments[0].Name)
	assert.True(t, got.IsStarred)
	assert.True(t, got.RequiresAction)
	assert.Equal(t, model.PriorityHigh, got.Priority)
	assert.Equal(t, model.ActionReply, got.SuggestedAction)
	assert.Equal(t, 3, got.Version)
	assert.Equal(t, model.SyncStatusSynced, got.SyncStatus)
}

func TestSaveCollection_ReplacesPreviousRows(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.SaveCollection(ctx, "a@x.com", []model.Email{
		sampleEmail("m1", now),
		sampleEmail("m2", now),
	}, now))

	require.NoError(t, s.SaveCollection(ctx, "a@x.com", []model.Email{
		sampleEmail("m3", now),
	}, now))

	loaded, _, err := s.LoadCollection(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "m3", loaded[0].ID)
}

func TestLoadCollection_UnknownAccount(t *testing.T) {
	s := testutil.NewTestStore(t)

	emails, checkpoint, err := s.LoadCollection(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.Empty(t, emails)
	assert.True(t, checkpoint.IsZero())
}

func TestCollectionsAreIsolatedByAccount(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.SaveCollection(ctx, "a@x.com", []model.Email{sampleEmail("m1", now)}, now))
	require.NoError(t, s.SaveCollection(ctx, "b@x.com", []model.Email{
		sampleEmail("m1", now),
		sampleEmail("m2", now),
	}, now))

	a, _, err := s.LoadCollection(ctx, "a@x.com")
	require.NoError(t, err)
	b, _, err := s.LoadCollection(ctx, "b@x.com")
	require.NoError(t, err)

	assert.Len(t, a, 1)
	assert.Len(t, b, 2)
}

func TestDeleteCollection(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.SaveCollection(ctx, "a@x.com", []model.Email{sampleEmail("m1", now)}, now))
	require.NoError(t, s.DeleteCollection(ctx, "a@x.com"))

	emails, checkpoint, err := s.LoadCollection(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Empty(t, emails)
	assert.True(t, checkpoint.IsZero())

	accounts, err := s.Accounts(ctx)
	require.NoError(t, err)
	assert.NotContains(t, accounts, "a@x.com")
}

func TestAccounts(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.SaveCollection(ctx, "b@x.com", nil, now))
	require.NoError(t, s.SaveCollection(ctx, "a@x.com", nil, now))

	accounts, err := s.Accounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, accounts)
}
