// Package actions applies user mutations (read, star, archive, trash)
// optimistically to the cache and pushes them to the mailbox provider.
// Provider failures propagate to the caller; the record keeps its local
// edits until a later reconciliation confirms them.
package actions

import (
	"context"
	"fmt"

	"github.com/nhle/mailpilot/internal/cache"
	"github.com/nhle/mailpilot/internal/model"
	"github.com/nhle/mailpilot/internal/provider"
	"github.com/nhle/mailpilot/internal/store"
)

// Service pushes user mutations through the cache and provider.
type Service struct {
	cache     *cache.Cache
	store     store.Store
	providers map[string]provider.Provider
}

// New creates an action service. providers maps account addresses to
// their mailbox providers.
func New(c *cache.Cache, s store.Store, providers map[string]provider.Provider) *Service {
	return &Service{cache: c, store: s, providers: providers}
}

// MarkRead sets a message's read state.
func (s *Service) MarkRead(ctx context.Context, account, id string, read bool) error {
	add, remove := []string{"READ"}, []string{"UNREAD"}
	if !read {
		add, remove = []string{"UNREAD"}, []string{"READ"}
	}

	return s.mutate(ctx, account, id,
		func(e *model.Email) {
			e.IsRead = read
			e.Labels = swapLabels(e.Labels, add, remove)
		},
		func(ctx context.Context, p provider.Provider) error {
			if read {
				return p.ModifyLabels(ctx, id, nil, []string{"UNREAD"})
			}
			return p.ModifyLabels(ctx, id, []string{"UNREAD"}, nil)
		},
	)
}

// Star sets a message's starred state.
func (s *Service) Star(ctx context.Context, account, id string, starred bool) error {
	add, remove := []string{"STARRED"}, []string(nil)
	if !starred {
		add, remove = nil, []string{"STARRED"}
	}

	return s.mutate(ctx, account, id,
		func(e *model.Email) {
			e.IsStarred = starred
			e.Labels = swapLabels(e.Labels, add, remove)
		},
		func(ctx context.Context, p provider.Provider) error {
			return p.ModifyLabels(ctx, id, add, remove)
		},
	)
}

// Archive removes a message from the inbox.
func (s *Service) Archive(ctx context.Context, account, id string) error {
	return s.mutate(ctx, account, id,
		func(e *model.Email) {
			e.IsArchived = true
			e.Labels = swapLabels(e.Labels, []string{"ARCHIVED"}, []string{"INBOX"})
		},
		func(ctx context.Context, p provider.Provider) error {
			return p.ModifyLabels(ctx, id, nil, []string{"INBOX"})
		},
	)
}

// Trash moves a message to the trash.
func (s *Service) Trash(ctx context.Context, account, id string) error {
	return s.mutate(ctx, account, id,
		func(e *model.Email) {
			e.IsTrash = true
			e.Labels = swapLabels(e.Labels, []string{"TRASH"}, nil)
		},
		func(ctx context.Context, p provider.Provider) error {
			return p.Trash(ctx, id)
		},
	)
}

// Untrash restores a message from the trash.
func (s *Service) Untrash(ctx context.Context, account, id string) error {
	return s.mutate(ctx, account, id,
		func(e *model.Email) {
			e.IsTrash = false
			e.Labels = swapLabels(e.Labels, nil, []string{"TRASH"})
		},
		func(ctx context.Context, p provider.Provider) error {
			return p.Untrash(ctx, id)
		},
	)
}

// mutate applies the local edit, pushes it to the provider, and settles
// the record's sync status: Synced on ack, Local (edit preserved for a
// later reconciliation) on failure.
func (s *Service) mutate(
	ctx context.Context,
	account, id string,
	apply func(*model.Email),
	push func(context.Context, provider.Provider) error,
) error {
	found := s.cache.Update(account, id, func(e *model.Email) {
		apply(e)
		e.SyncStatus = model.SyncStatusPending
	})
	if !found {
		return fmt.Errorf("message %s not found in account %s", id, account)
	}

	prov, ok := s.providers[account]
	if !ok {
		// No provider configured: the edit stays local-only but must
		// still survive a restart.
		s.setStatus(account, id, model.SyncStatusLocal)
		s.persist(ctx, account)
		return nil
	}

	if err := push(ctx, prov); err != nil {
		s.setStatus(account, id, model.SyncStatusLocal)
		s.persist(ctx, account)
		return fmt.Errorf("pushing change for %s: %w", id, err)
	}

	s.setStatus(account, id, model.SyncStatusSynced)
	s.persist(ctx, account)
	return nil
}

// setStatus updates a record's sync status in place.
func (s *Service) setStatus(account, id string, status model.SyncStatus) {
	s.cache.Update(account, id, func(e *model.Email) {
		e.SyncStatus = status
	})
}

// persist writes the account's collection back to the store. Best
// effort: a persistence failure does not undo the mutation.
func (s *Service) persist(ctx context.Context, account string) {
	if s.store == nil {
		return
	}
	emails := s.cache.Emails(account)
	_ = s.store.SaveCollection(ctx, account, emails, s.cache.LastRefresh(account))
}

// swapLabels removes then adds labels, keeping the set deduplicated.
func swapLabels(labels, add, remove []string) []string {
	removeSet := make(map[string]bool, len(remove))
	for _, l := range remove {
		removeSet[l] = true
	}

	result := make([]string, 0, len(labels)+len(add))
	seen := make(map[string]bool, len(labels)+len(add))
	for _, l := range labels {
		if removeSet[l] || seen[l] {
			continue
		}
		seen[l] = true
		result = append(result, l)
	}
	for _, l := range add {
		if seen[l] {
			continue
		}
		seen[l] = true
		result = append(result, l)
	}
	return result
}
