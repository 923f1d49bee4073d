package cache

import (
	"time"

	"github.com/nhle/mailpilot/internal/model"
)

// MergeStats summarizes what a merge changed.
type MergeStats struct {
	// NewMessages is how many incoming records had no existing match.
	NewMessages int

	// Dropped is how many existing records disappeared remotely and
	// were removed.
	Dropped int

	// Total is the collection size after the merge.
	Total int
}

// Merge reconciles a freshly fetched batch into the account's
// collection. Incoming records claim existing ones by message id
// (falling back to the internal id); claimed pairs are merged field by
// field, unclaimed incoming records are appended as new, and unclaimed
// existing records survive only if they carry unsynced local edits.
// The result replaces the collection atomically.
func (c *Cache) Merge(account string, batch []model.Email) MergeStats {
	col := c.account(account)

	col.mu.Lock()
	defer col.mu.Unlock()

	existing := make(map[string]model.Email, len(col.emails))
	order := make([]string, 0, len(col.emails))
	for _, e := range col.emails {
		key := e.MergeKey()
		existing[key] = e
		order = append(order, key)
	}

	now := time.Now()
	var stats MergeStats
	merged := make([]model.Email, 0, len(batch)+len(col.emails))

	for _, incoming := range batch {
		key := incoming.MergeKey()
		if current, ok := existing[key]; ok {
			merged = append(merged, mergePair(current, incoming, now))
			delete(existing, key)
			continue
		}
		stats.NewMessages++
		merged = append(merged, incoming)
	}

	// Records the remote no longer returns are gone unless they hold
	// unsynced local state (outbox drafts, pending edits).
	for _, key := range order {
		leftover, ok := existing[key]
		if !ok {
			continue
		}
		if leftover.SyncStatus == model.SyncStatusLocal {
			merged = append(merged, leftover)
			continue
		}
		stats.Dropped++
	}

	sortByTimestampDesc(merged)

	col.emails = merged
	col.lastRefresh = now
	col.byLabel = nil

	stats.Total = len(merged)
	return stats
}

// mergePair combines a claimed pair of records. Informed priorities are
// sticky, local edits win the user-visible flags, and everything else
// comes from the incoming (remote-authoritative) record.
func mergePair(existing, incoming model.Email, now time.Time) model.Email {
	merged := incoming

	// An informed priority sticks; a default one may be upgraded by
	// the incoming record.
	if existing.Priority.Informed() {
		merged.Priority = existing.Priority
	} else if !incoming.Priority.Informed() {
		merged.Priority = model.PriorityMedium
	}

	local := existing.SyncStatus == model.SyncStatusLocal
	if local {
		merged.IsRead = existing.IsRead
		merged.IsStarred = existing.IsStarred
		merged.IsTrash = existing.IsTrash
		merged.IsArchived = existing.IsArchived
		merged.Labels = append([]string(nil), existing.Labels...)
		merged.SyncStatus = model.SyncStatusLocal
	} else {
		merged.SyncStatus = model.SyncStatusSynced
	}

	// Derived display data is expensive to recompute; keep it.
	if existing.SenderProfileImageURL != "" {
		merged.SenderProfileImageURL = existing.SenderProfileImageURL
	}

	merged.Version = maxVersion(existing.Version, incoming.Version) + 1
	merged.LastModified = now

	return merged
}

func maxVersion(a, b int) int {
	if a > b {
		return a
	}
	return b
}
