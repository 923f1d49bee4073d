// Package cache holds the per-account reconciled email collections.
// It is the one shared mutable resource in the core: reads run
// concurrently, merges take exclusive access per account, and a merge
// replaces the collection atomically so no partial state is ever
// observable.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/nhle/mailpilot/internal/model"
)

// collection is one account's reconciled state.
type collection struct {
	mu          sync.RWMutex
	emails      []model.Email
	lastRefresh time.Time

	// byLabel maps a label to the matching email ids. Computed lazily
	// on first filter and invalidated by every merge; never part of
	// merge correctness.
	byLabel map[string][]string
}

// Cache is a keyed set of account collections.
type Cache struct {
	mu       sync.RWMutex
	accounts map[string]*collection
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{accounts: make(map[string]*collection)}
}

// account returns the collection for the key, creating it if needed.
func (c *Cache) account(key string) *collection {
	c.mu.RLock()
	col, ok := c.accounts[key]
	c.mu.RUnlock()
	if ok {
		return col
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if col, ok = c.accounts[key]; ok {
		return col
	}
	col = &collection{}
	c.accounts[key] = col
	return col
}

// Emails returns a copy of the account's collection, ordered by
// timestamp descending. Safe to call concurrently with merges.
func (c *Cache) Emails(account string) []model.Email {
	col := c.account(account)

	col.mu.RLock()
	defer col.mu.RUnlock()

	out := make([]model.Email, len(col.emails))
	copy(out, col.emails)
	return out
}

// LastRefresh returns when the account's collection last changed via
// merge or load. The zero time means the account has never synced.
func (c *Cache) LastRefresh(account string) time.Time {
	col := c.account(account)

	col.mu.RLock()
	defer col.mu.RUnlock()

	return col.lastRefresh
}

// Load seeds an account's collection from persisted state, replacing
// whatever is cached. Used at account activation.
func (c *Cache) Load(account string, emails []model.Email, lastRefresh time.Time) {
	col := c.account(account)

	sorted := make([]model.Email, len(emails))
	copy(sorted, emails)
	sortByTimestampDesc(sorted)

	col.mu.Lock()
	defer col.mu.Unlock()

	col.emails = sorted
	col.lastRefresh = lastRefresh
	col.byLabel = nil
}

// FilterByLabel returns the ids of the account's emails carrying the
// given label. The per-label index is computed lazily and reused until
// the next merge.
func (c *Cache) FilterByLabel(account, label string) []string {
	col := c.account(account)

	col.mu.RLock()
	if col.byLabel != nil {
		ids, ok := col.byLabel[label]
		col.mu.RUnlock()
		if ok {
			return append([]string(nil), ids...)
		}
		return nil
	}
	col.mu.RUnlock()

	col.mu.Lock()
	defer col.mu.Unlock()

	if col.byLabel == nil {
		index := make(map[string][]string)
		for _, e := range col.emails {
			for _, l := range e.Labels {
				index[l] = append(index[l], e.ID)
			}
		}
		col.byLabel = index
	}

	return append([]string(nil), col.byLabel[label]...)
}

// Update applies fn to the record with the given id under the
// account's write lock, bumping its version and last-modified time.
// It reports whether the record was found.
func (c *Cache) Update(account, id string, fn func(*model.Email)) bool {
	col := c.account(account)

	col.mu.Lock()
	defer col.mu.Unlock()

	for i := range col.emails {
		if col.emails[i].ID != id {
			continue
		}
		fn(&col.emails[i])
		col.emails[i].Version++
		col.emails[i].LastModified = time.Now()
		col.byLabel = nil
		return true
	}
	return false
}

// Clear drops an account's collection.
func (c *Cache) Clear(account string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.accounts, account)
}

// ClearAll drops every account's collection.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accounts = make(map[string]*collection)
}

// UnreadCount returns how many cached messages are unread, excluding
// trash.
func (c *Cache) UnreadCount(account string) int {
	col := c.account(account)

	col.mu.RLock()
	defer col.mu.RUnlock()

	n := 0
	for _, e := range col.emails {
		if !e.IsRead && !e.IsTrash {
			n++
		}
	}
	return n
}

// CountByPriority returns the number of cached messages per priority
// level, excluding trash.
func (c *Cache) CountByPriority(account string) map[model.Priority]int {
	col := c.account(account)

	col.mu.RLock()
	defer col.mu.RUnlock()

	counts := make(map[model.Priority]int)
	for _, e := range col.emails {
		if e.IsTrash {
			continue
		}
		counts[e.Priority]++
	}
	return counts
}

// sortByTimestampDesc orders emails newest first, stably so records
// sharing a timestamp keep their relative order.
func sortByTimestampDesc(emails []model.Email) {
	sort.SliceStable(emails, func(i, j int) bool {
		return emails[i].Timestamp.After(emails[j].Timestamp)
	})
}
