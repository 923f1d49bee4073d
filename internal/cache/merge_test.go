package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailpilot/internal/model"
)

func synced(id string, ts time.Time) model.Email {
	return model.Email{
		ID:         id,
		MessageID:  id,
		Subject:    "subject " + id,
		Priority:   model.PriorityMedium,
		Timestamp:  ts,
		Version:    1,
		SyncStatus: model.SyncStatusSynced,
	}
}

func TestMerge_NewMessagesAppend(t *testing.T) {
	c := New()
	now := time.Now()

	stats := c.Merge("a@x.com", []model.Email{
		synced("m1", now),
		synced("m2", now.Add(-time.Hour)),
	})

	assert.Equal(t, 2, stats.NewMessages)
	assert.Equal(t, 0, stats.Dropped)
	assert.Equal(t, 2, stats.Total)
	assert.Len(t, c.Emails("a@x.com"), 2)
}

func TestMerge_DropsDisappearedSyncedRecords(t *testing.T) {
	c := New()
	now := time.Now()

	c.Merge("a@x.com", []model.Email{
		synced("m1", now),
		synced("m2", now),
	})

	stats := c.Merge("a@x.com", []model.Email{synced("m1", now)})

	assert.Equal(t, 0, stats.NewMessages)
	assert.Equal(t, 1, stats.Dropped)
	assert.Equal(t, 1, stats.Total)

	emails := c.Emails("a@x.com")
	require.Len(t, emails, 1)
	assert.Equal(t, "m1", emails[0].ID)
}

func TestMerge_RetainsLocalRecords(t *testing.T) {
	c := New()
	now := time.Now()

	draft := model.NewLocalDraft("draft", "body", []string{"to@x.com"})
	c.Merge("a@x.com", []model.Email{synced("m1", now), draft})

	// The draft never comes back from the remote, but it survives.
	stats := c.Merge("a@x.com", []model.Email{synced("m1", now)})

	assert.Equal(t, 0, stats.Dropped)
	assert.Equal(t, 2, stats.Total)

	var found bool
	for _, e := range c.Emails("a@x.com") {
		if e.ID == draft.ID {
			found = true
			assert.Equal(t, model.SyncStatusLocal, e.SyncStatus)
		}
	}
	assert.True(t, found, "local draft should survive the merge")
}

func TestMerge_InformedPriorityIsSticky(t *testing.T) {
	c := New()
	now := time.Now()

	enriched := synced("m1", now)
	enriched.Priority = model.PriorityHigh
	c.Merge("a@x.com", []model.Email{enriched})

	// The re-fetched record arrives with the default priority.
	refetched := synced("m1", now)
	refetched.Priority = model.PriorityMedium
	c.Merge("a@x.com", []model.Email{refetched})

	emails := c.Emails("a@x.com")
	require.Len(t, emails, 1)
	assert.Equal(t, model.PriorityHigh, emails[0].Priority)
}

func TestMerge_UninformedPriorityCanBeUpgraded(t *testing.T) {
	c := New()
	now := time.Now()

	c.Merge("a@x.com", []model.Email{synced("m1", now)})

	upgraded := synced("m1", now)
	upgraded.Priority = model.PriorityUrgent
	c.Merge("a@x.com", []model.Email{upgraded})

	emails := c.Emails("a@x.com")
	require.Len(t, emails, 1)
	assert.Equal(t, model.PriorityUrgent, emails[0].Priority)
}

func TestMerge_LocalEditsWinUserFlags(t *testing.T) {
	c := New()
	now := time.Now()

	c.Merge("a@x.com", []model.Email{synced("m1", now)})

	// The user stars the message; the edit has not reached the remote.
	ok := c.Update("a@x.com", "m1", func(e *model.Email) {
		e.IsStarred = true
		e.SyncStatus = model.SyncStatusLocal
	})
	require.True(t, ok)

	// The remote still reports it unstarred.
	remote := synced("m1", now)
	remote.IsStarred = false
	c.Merge("a@x.com", []model.Email{remote})

	emails := c.Emails("a@x.com")
	require.Len(t, emails, 1)
	assert.True(t, emails[0].IsStarred)
	assert.Equal(t, model.SyncStatusLocal, emails[0].SyncStatus)
}

func TestMerge_VersionIncrementsEachMerge(t *testing.T) {
	c := New()
	now := time.Now()

	c.Merge("a@x.com", []model.Email{synced("m1", now)})
	c.Merge("a@x.com", []model.Email{synced("m1", now)})
	c.Merge("a@x.com", []model.Email{synced("m1", now)})

	emails := c.Emails("a@x.com")
	require.Len(t, emails, 1)
	// First merge appends at version 1; the next two bump it.
	assert.Equal(t, 3, emails[0].Version)
}

func TestMerge_IsIdempotentOnContent(t *testing.T) {
	c := New()
	now := time.Now()
	batch := []model.Email{synced("m1", now), synced("m2", now.Add(-time.Minute))}

	c.Merge("a@x.com", batch)
	stats := c.Merge("a@x.com", batch)

	assert.Equal(t, 0, stats.NewMessages)
	assert.Equal(t, 0, stats.Dropped)
	assert.Equal(t, 2, stats.Total)
}

func TestMerge_PreservesProfileImage(t *testing.T) {
	c := New()
	now := time.Now()

	withImage := synced("m1", now)
	withImage.SenderProfileImageURL = "https://img.example.com/a.png"
	c.Merge("a@x.com", []model.Email{withImage})

	c.Merge("a@x.com", []model.Email{synced("m1", now)})

	emails := c.Emails("a@x.com")
	require.Len(t, emails, 1)
	assert.Equal(t, "https://img.example.com/a.png", emails[0].SenderProfileImageURL)
}

func TestMerge_SortsByTimestampDescending(t *testing.T) {
	c := New()
	now := time.Now()

	c.Merge("a@x.com", []model.Email{
		synced("old", now.Add(-2*time.Hour)),
		synced("new", now),
		synced("mid", now.Add(-time.Hour)),
	})

	emails := c.Emails("a@x.com")
	require.Len(t, emails, 3)
	assert.Equal(t, "new", emails[0].ID)
	assert.Equal(t, "mid", emails[1].ID)
	assert.Equal(t, "old", emails[2].ID)
}

func TestMerge_MatchesByMessageID(t *testing.T) {
	c := New()
	now := time.Now()

	// Stored under a provisional internal id, but carrying the
	// provider's message id.
	provisional := model.Email{
		ID:         "local-123",
		MessageID:  "msg-abc",
		Priority:   model.PriorityMedium,
		Timestamp:  now,
		SyncStatus: model.SyncStatusSynced,
	}
	c.Merge("a@x.com", []model.Email{provisional})

	incoming := model.Email{
		ID:         "srv-999",
		MessageID:  "msg-abc",
		Priority:   model.PriorityMedium,
		Timestamp:  now,
		SyncStatus: model.SyncStatusSynced,
	}
	stats := c.Merge("a@x.com", []model.Email{incoming})

	assert.Equal(t, 0, stats.NewMessages)
	assert.Equal(t, 1, stats.Total)
}

func TestMerge_UpdatesLastRefresh(t *testing.T) {
	c := New()

	assert.True(t, c.LastRefresh("a@x.com").IsZero())

	before := time.Now()
	c.Merge("a@x.com", []model.Email{synced("m1", before)})

	refresh := c.LastRefresh("a@x.com")
	assert.False(t, refresh.Before(before))
}
