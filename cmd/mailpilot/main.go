// Command mailpilot runs the background email aggregation engine: it
// activates each configured account, keeps the reconciled collections
// synced with their mailboxes, and logs change notifications as they
// arrive.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/nhle/mailpilot/internal/ai"
	"github.com/nhle/mailpilot/internal/cache"
	"github.com/nhle/mailpilot/internal/credential"
	"github.com/nhle/mailpilot/internal/model"
	"github.com/nhle/mailpilot/internal/normalize"
	"github.com/nhle/mailpilot/internal/provider"
	"github.com/nhle/mailpilot/internal/provider/gmail"
	"github.com/nhle/mailpilot/internal/provider/imap"
	"github.com/nhle/mailpilot/internal/store"
	syncer "github.com/nhle/mailpilot/internal/sync"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mailpilot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return err
	}

	dbPath := defaultDBPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("closing store: %v", err)
		}
	}()

	emailCache := cache.New()
	normalizer := normalize.New()
	gateway := buildGateway(cfg.AI)

	scheduler := syncer.New(emailCache, st, normalizer, gateway, cfg.Sync.FetchLimit)

	activated := 0
	for _, account := range cfg.Accounts {
		if !account.Enabled {
			continue
		}

		prov, err := buildProvider(ctx, account)
		if err != nil {
			log.Printf("skipping account %s: %v", account.Address, err)
			continue
		}

		// Seed the cache from persisted state so the first delta sync
		// has a checkpoint to probe against.
		emails, lastRefresh, err := st.LoadCollection(ctx, account.Address)
		if err != nil {
			log.Printf("loading collection for %s: %v", account.Address, err)
		} else {
			emailCache.Load(account.Address, emails, lastRefresh)
		}

		scheduler.RegisterAccount(account, prov)
		activated++
	}

	if activated == 0 {
		return fmt.Errorf("no accounts could be activated; check %s", model.DefaultConfigPath())
	}

	scheduler.Start()
	defer scheduler.Stop()

	log.Printf("mailpilot running with %d account(s)", activated)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case n := <-scheduler.Notifications():
			log.Printf("%s: %d new message(s), %d total", n.Account, n.NewMessageCount, n.TotalCount)
		case sig := <-sigCh:
			log.Printf("received %s, shutting down", sig)
			return nil
		}
	}
}

// buildGateway wires the intelligence gateway. Without an API key in
// the keyring the gateway runs heuristics only.
func buildGateway(cfg model.AIConfig) *ai.Gateway {
	apiKey, err := credential.Get(credential.AnthropicAPIKey)
	if err != nil || apiKey == "" {
		log.Printf("no language-model API key configured; using heuristic classification")
		return ai.NewGateway(nil, cfg.Models, cfg.MaxTokens)
	}
	return ai.NewGateway(ai.NewClient(apiKey), cfg.Models, cfg.MaxTokens)
}

// buildProvider constructs the mailbox provider for an account from its
// config and keyring credentials.
func buildProvider(ctx context.Context, account model.AccountConfig) (provider.Provider, error) {
	switch account.Provider {
	case model.ProviderGmail:
		clientJSON, err := credential.Get(credential.GmailOAuthClientKey)
		if err != nil {
			return nil, fmt.Errorf("no OAuth client credentials: %w", err)
		}
		oauthConfig, err := google.ConfigFromJSON([]byte(clientJSON), gmailapi.GmailModifyScope)
		if err != nil {
			return nil, fmt.Errorf("parsing OAuth client credentials: %w", err)
		}

		tokenJSON, err := credential.Get(credential.GmailTokenKey(account.Address))
		if err != nil {
			return nil, fmt.Errorf("no OAuth token: %w", err)
		}

		return gmail.NewClient(ctx, account.Address, oauthConfig, []byte(tokenJSON))

	case model.ProviderIMAP:
		password, err := credential.Get(credential.IMAPPasswordKey(account.Address))
		if err != nil {
			return nil, fmt.Errorf("no IMAP password: %w", err)
		}
		return imap.NewClient(account.Host, account.Port, account.Address, password, true), nil

	default:
		return nil, fmt.Errorf("unknown provider kind %q", account.Provider)
	}
}

// defaultDBPath returns where the collection database lives, next to
// the config file.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "mailpilot.db")
	}
	return filepath.Join(home, ".config", "mailpilot", "mailpilot.db")
}
