// Package sync drives periodic delta synchronization of each account's
// mailbox into the reconciliation cache.
package sync

import (
	"context"
	"fmt"
	"log"
	"strconv"
	gosync "sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/mailpilot/internal/ai"
	"github.com/nhle/mailpilot/internal/cache"
	"github.com/nhle/mailpilot/internal/model"
	"github.com/nhle/mailpilot/internal/normalize"
	"github.com/nhle/mailpilot/internal/provider"
	"github.com/nhle/mailpilot/internal/store"
)

// State represents the current state of an account's sync.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateError
)

// Status holds the sync state for a single account.
type Status struct {
	Account  string
	State    State
	LastSync time.Time
	Err      error
}

// fetchTimeout is the maximum time allowed for a single sync pass.
const fetchTimeout = 60 * time.Second

// accountEntry holds a registered account, its provider, and the
// in-flight guard. The guard is a compare-and-swap flag so two
// near-simultaneous ticks can never both start a sync: the loser's
// request is dropped, not queued.
type accountEntry struct {
	cfg      model.AccountConfig
	prov     provider.Provider
	inFlight atomic.Bool

	// trigger requests an immediate sync of this account only. Buffered
	// one deep: a refresh request while one is already queued collapses
	// into it.
	trigger chan struct{}
}

// Scheduler orchestrates background delta syncs for all registered
// accounts.
type Scheduler struct {
	cache      *cache.Cache
	store      store.Store
	normalizer *normalize.Normalizer
	gateway    *ai.Gateway
	fetchLimit int

	mu       gosync.Mutex
	accounts []*accountEntry
	statuses map[string]*Status
	running  bool

	notifyCh chan model.ChangeNotification
	stopCh   chan struct{}
}

// New creates a Scheduler over the given collaborators.
func New(
	c *cache.Cache,
	s store.Store,
	n *normalize.Normalizer,
	g *ai.Gateway,
	fetchLimit int,
) *Scheduler {
	if fetchLimit <= 0 {
		fetchLimit = 50
	}
	return &Scheduler{
		cache:      c,
		store:      s,
		normalizer: n,
		gateway:    g,
		fetchLimit: fetchLimit,
		statuses:   make(map[string]*Status),
		notifyCh:   make(chan model.ChangeNotification, 16),
		stopCh:     make(chan struct{}),
	}
}

// RegisterAccount adds an account and its provider to the scheduler.
func (s *Scheduler) RegisterAccount(cfg model.AccountConfig, prov provider.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = append(s.accounts, &accountEntry{
		cfg:     cfg,
		prov:    prov,
		trigger: make(chan struct{}, 1),
	})
	s.statuses[cfg.Address] = &Status{
		Account: cfg.Address,
		State:   StateIdle,
	}
}

// Start launches a sync goroutine per registered account. Each does an
// immediate first pass and then follows its poll interval.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	accounts := make([]*accountEntry, len(s.accounts))
	copy(accounts, s.accounts)
	s.mu.Unlock()

	for _, entry := range accounts {
		go s.pollAccount(entry)
	}
}

// Stop halts all sync goroutines.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	close(s.stopCh)
	s.running = false
}

// Refresh requests an immediate sync of one account. Requests go to
// that account's own trigger; one already queued absorbs the new one.
// Unknown accounts are ignored.
func (s *Scheduler) Refresh(account string) {
	entry := s.entryFor(account)
	if entry == nil {
		return
	}

	select {
	case entry.trigger <- struct{}{}:
	default:
	}
}

// Notifications returns the channel change notifications are emitted
// on. Notifications are dropped, never queued unboundedly, when the
// receiver falls behind.
func (s *Scheduler) Notifications() <-chan model.ChangeNotification {
	return s.notifyCh
}

// Statuses returns the current sync status of all registered accounts.
func (s *Scheduler) Statuses() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]Status, 0, len(s.statuses))
	for _, st := range s.statuses {
		statuses = append(statuses, *st)
	}
	return statuses
}

// pollAccount runs the sync loop for a single account.
func (s *Scheduler) pollAccount(entry *accountEntry) {
	interval := time.Duration(entry.cfg.PollIntervalSec) * time.Second
	if interval <= 0 {
		interval = 120 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.SyncNow(context.Background(), entry.cfg.Address)

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.SyncNow(context.Background(), entry.cfg.Address)
		case <-entry.trigger:
			s.SyncNow(context.Background(), entry.cfg.Address)
		}
	}
}

// SyncNow performs one delta sync pass for the account. If a sync for
// the same account is already in flight the request is dropped and
// SyncNow reports false. A cancelled context aborts before the merge,
// never mid-merge.
func (s *Scheduler) SyncNow(ctx context.Context, account string) bool {
	entry := s.entryFor(account)
	if entry == nil {
		return false
	}

	if !entry.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer entry.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	s.setStatus(account, StateRunning, nil)

	batch, changed, err := s.fetchBatch(ctx, entry)
	if err != nil {
		log.Printf("sync %s: %v", account, err)
		s.setStatus(account, StateError, err)
		return true
	}
	if !changed {
		s.setStatus(account, StateIdle, nil)
		return true
	}

	// The fetch may have been cancelled after partial progress; a
	// cancelled sync must not apply a merge at all.
	if ctx.Err() != nil {
		s.setStatus(account, StateError, ctx.Err())
		return true
	}

	stats := s.cache.Merge(account, batch)

	if s.store != nil {
		merged := s.cache.Emails(account)
		if err := s.store.SaveCollection(ctx, account, merged, s.cache.LastRefresh(account)); err != nil {
			log.Printf("sync %s: persisting collection: %v", account, err)
		}
	}

	s.setStatus(account, StateIdle, nil)

	if stats.NewMessages > 0 || stats.Dropped > 0 {
		s.notify(model.ChangeNotification{
			ID:              uuid.New().String(),
			Account:         account,
			NewMessageCount: stats.NewMessages,
			TotalCount:      stats.Total,
			CreatedAt:       time.Now(),
		})
	}

	return true
}

// fetchBatch retrieves the account's current remote window, normalized
// and enriched. The checkpoint scopes a cheap probe first: when nothing
// changed since the last refresh, no messages are fetched at all and
// changed is false. The merge always receives the full window because
// it is what decides which cached records still exist remotely.
func (s *Scheduler) fetchBatch(
	ctx context.Context,
	entry *accountEntry,
) (batch []model.Email, changed bool, err error) {
	account := entry.cfg.Address

	if checkpoint := s.cache.LastRefresh(account); !checkpoint.IsZero() {
		query := "after:" + strconv.FormatInt(checkpoint.Unix(), 10)
		delta, err := entry.prov.ListMessageIDs(ctx, query, s.fetchLimit)
		if err != nil {
			return nil, false, fmt.Errorf("probing for changes: %w", err)
		}
		if len(delta) == 0 {
			return nil, false, nil
		}
	}

	refs, err := entry.prov.ListMessageIDs(ctx, "", s.fetchLimit)
	if err != nil {
		return nil, false, fmt.Errorf("listing messages: %w", err)
	}

	batch = make([]model.Email, 0, len(refs))
	for _, ref := range refs {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}

		raw, err := entry.prov.GetMessage(ctx, ref.ID)
		if err != nil {
			return nil, false, fmt.Errorf("getting message %s: %w", ref.ID, err)
		}

		email := s.normalizer.Normalize(raw)
		if s.gateway != nil {
			s.gateway.Enrich(ctx, &email)
		}
		batch = append(batch, email)
	}

	return batch, true, nil
}

// entryFor finds the registered entry for an account.
func (s *Scheduler) entryFor(account string) *accountEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.accounts {
		if entry.cfg.Address == account {
			return entry
		}
	}
	return nil
}

// setStatus updates the sync status for an account.
func (s *Scheduler) setStatus(account string, state State, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, ok := s.statuses[account]
	if !ok {
		return
	}

	status.State = state
	status.Err = err
	if state == StateIdle && err == nil {
		status.LastSync = time.Now()
	}
}

// notify sends a change notification without blocking.
func (s *Scheduler) notify(n model.ChangeNotification) {
	select {
	case s.notifyCh <- n:
	default:
		// Drop if the channel is full to avoid blocking the scheduler.
	}
}
