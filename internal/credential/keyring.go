package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "mailpilot"

// Well-known credential keys.
const (
	// AnthropicAPIKey holds the language-model API key.
	AnthropicAPIKey = "anthropic-api-key"

	// GmailOAuthClientKey holds the Gmail OAuth client credentials JSON
	// shared by all Gmail accounts.
	GmailOAuthClientKey = "gmail-oauth-client"
)

// GmailTokenKey returns the keyring key for an account's OAuth token JSON.
func GmailTokenKey(address string) string {
	return "gmail-token-" + address
}

// IMAPPasswordKey returns the keyring key for an account's IMAP password.
func IMAPPasswordKey(address string) string {
	return "imap-" + address
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/mailpilot/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("mailpilot-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}
