// Package imap implements the mailbox provider contract over IMAP,
// mapping flags onto the label vocabulary the rest of the system
// speaks.
package imap

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	goimap "github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/nhle/mailpilot/internal/provider"
)

// Client is an IMAP-backed mailbox provider for a single account.
type Client struct {
	host     string
	port     string
	username string
	password string
	tls      bool
}

// NewClient creates a new IMAP provider configuration.
func NewClient(host, port, username, password string, tls bool) *Client {
	return &Client{
		host:     host,
		port:     port,
		username: username,
		password: password,
		tls:      tls,
	}
}

// connect establishes a connection to the IMAP server, authenticates,
// and selects INBOX. The caller is responsible for calling Logout on
// the returned client.
func (c *Client) connect(_ context.Context) (*imapclient.Client, error) {
	addr := c.host + ":" + c.port

	var client *imapclient.Client
	var err error

	if c.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, &provider.NetworkError{
			Op:  "connecting to " + addr,
			Err: err,
		}
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &provider.NotAuthenticatedError{
			Account: c.username,
			Message: err.Error(),
		}
	}

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}

	return client, nil
}

// ListMessageIDs searches INBOX for matching messages and returns their
// UIDs as refs, newest first. The only query form IMAP understands
// here is "after:<unix-seconds>"; anything else lists everything.
func (c *Client) ListMessageIDs(
	ctx context.Context,
	query string,
	maxResults int,
) ([]provider.MessageRef, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	criteria := &goimap.SearchCriteria{}
	if since, ok := parseAfterQuery(query); ok {
		criteria.Since = since
	}

	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if maxResults > 0 && len(uids) > maxResults {
		uids = uids[len(uids)-maxResults:]
	}

	refs := make([]provider.MessageRef, 0, len(uids))
	for i := len(uids) - 1; i >= 0; i-- {
		refs = append(refs, provider.MessageRef{
			ID: strconv.FormatUint(uint64(uids[i]), 10),
		})
	}
	return refs, nil
}

// GetMessage fetches the full message for the given UID and reshapes it
// into the provider contract.
func (c *Client) GetMessage(ctx context.Context, id string) (*provider.RawMessage, error) {
	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return nil, &provider.InvalidResponseError{
			Message: fmt.Sprintf("bad message id %q", id),
		}
	}

	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	uidSet := goimap.UIDSetNum(goimap.UID(uid))
	bodySection := &goimap.FetchItemBodySection{Peek: true}

	fetchCmd := client.Fetch(uidSet, &goimap.FetchOptions{
		Envelope:     true,
		Flags:        true,
		UID:          true,
		InternalDate: true,
		BodySection:  []*goimap.FetchItemBodySection{bodySection},
	})
	defer fetchCmd.Close()

	msg := fetchCmd.Next()
	if msg == nil {
		return nil, &provider.InvalidResponseError{
			Message: fmt.Sprintf("message %s not found", id),
		}
	}

	buf, err := msg.Collect()
	if err != nil {
		return nil, &provider.DecodingError{What: "message " + id, Err: err}
	}

	raw := &provider.RawMessage{
		ID:       id,
		LabelIDs: labelsFromFlags(buf.Flags),
	}
	if !buf.InternalDate.IsZero() {
		raw.InternalDate = strconv.FormatInt(buf.InternalDate.UnixMilli(), 10)
	}

	if buf.Envelope != nil {
		raw.Headers = headersFromEnvelope(buf.Envelope)
		// IMAP has no thread ids; group replies by normalized subject.
		raw.ThreadID = threadKey(buf.Envelope.Subject)
	}

	if body := buf.FindBodySection(bodySection); body != nil {
		raw.Body = parseBody(body)
	}

	if err := fetchCmd.Close(); err != nil {
		return raw, fmt.Errorf("closing fetch: %w", err)
	}

	return raw, nil
}

// ModifyLabels maps label changes onto IMAP flags. UNREAD inverts onto
// \Seen (adding UNREAD clears \Seen); labels without a flag equivalent
// are ignored.
func (c *Client) ModifyLabels(ctx context.Context, id string, add, remove []string) error {
	var addFlags, delFlags []goimap.Flag

	for _, l := range add {
		switch l {
		case "STARRED":
			addFlags = append(addFlags, goimap.FlagFlagged)
		case "TRASH":
			addFlags = append(addFlags, goimap.FlagDeleted)
		case "UNREAD":
			delFlags = append(delFlags, goimap.FlagSeen)
		case "READ":
			addFlags = append(addFlags, goimap.FlagSeen)
		}
	}
	for _, l := range remove {
		switch l {
		case "STARRED":
			delFlags = append(delFlags, goimap.FlagFlagged)
		case "TRASH":
			delFlags = append(delFlags, goimap.FlagDeleted)
		case "UNREAD":
			addFlags = append(addFlags, goimap.FlagSeen)
		case "READ":
			delFlags = append(delFlags, goimap.FlagSeen)
		}
	}

	if len(addFlags) > 0 {
		if err := c.storeFlags(ctx, id, addFlags, goimap.StoreFlagsAdd); err != nil {
			return err
		}
	}
	if len(delFlags) > 0 {
		if err := c.storeFlags(ctx, id, delFlags, goimap.StoreFlagsDel); err != nil {
			return err
		}
	}
	return nil
}

// Trash marks a message deleted.
func (c *Client) Trash(ctx context.Context, id string) error {
	return c.storeFlags(ctx, id, []goimap.Flag{goimap.FlagDeleted}, goimap.StoreFlagsAdd)
}

// Untrash clears the deleted flag.
func (c *Client) Untrash(ctx context.Context, id string) error {
	return c.storeFlags(ctx, id, []goimap.Flag{goimap.FlagDeleted}, goimap.StoreFlagsDel)
}

// storeFlags applies a flag change to a single message.
func (c *Client) storeFlags(
	ctx context.Context,
	id string,
	flags []goimap.Flag,
	op goimap.StoreFlagsOp,
) error {
	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return &provider.InvalidResponseError{
			Message: fmt.Sprintf("bad message id %q", id),
		}
	}

	client, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Logout().Wait() }()

	storeCmd := client.Store(goimap.UIDSetNum(goimap.UID(uid)), &goimap.StoreFlags{
		Op:     op,
		Silent: true,
		Flags:  flags,
	}, nil)

	if err := storeCmd.Close(); err != nil {
		return fmt.Errorf("storing flags on %s: %w", id, err)
	}
	return nil
}

// parseAfterQuery recognizes "after:<unix-seconds>" delta queries.
func parseAfterQuery(query string) (time.Time, bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(query), "after:")
	if !found {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}

// labelsFromFlags derives Gmail-style label ids from IMAP flags. Every
// INBOX message carries the INBOX label; \Seen absence becomes UNREAD.
func labelsFromFlags(flags []goimap.Flag) []string {
	labels := []string{"INBOX"}

	seen := false
	for _, f := range flags {
		switch f {
		case goimap.FlagSeen:
			seen = true
		case goimap.FlagFlagged:
			labels = append(labels, "STARRED")
		case goimap.FlagDeleted:
			labels = append(labels, "TRASH")
		}
	}
	if !seen {
		labels = append(labels, "UNREAD")
	}

	return labels
}

// headersFromEnvelope rebuilds the header list from envelope data.
func headersFromEnvelope(env *goimap.Envelope) []provider.Header {
	var headers []provider.Header

	if len(env.From) > 0 {
		from := env.From[0]
		value := from.Addr()
		if from.Name != "" {
			value = fmt.Sprintf("%s <%s>", from.Name, from.Addr())
		}
		headers = append(headers, provider.Header{Name: "From", Value: value})
	}

	if len(env.To) > 0 {
		var to []string
		for _, addr := range env.To {
			to = append(to, addr.Addr())
		}
		headers = append(headers, provider.Header{Name: "To", Value: strings.Join(to, ", ")})
	}

	headers = append(headers, provider.Header{Name: "Subject", Value: env.Subject})

	if !env.Date.IsZero() {
		headers = append(headers, provider.Header{
			Name:  "Date",
			Value: env.Date.Format(time.RFC1123Z),
		})
	}

	return headers
}

// threadKey builds a stable conversation key from a subject line by
// stripping reply/forward prefixes.
func threadKey(subject string) string {
	s := strings.TrimSpace(strings.ToLower(subject))
	for {
		trimmed := s
		trimmed = strings.TrimPrefix(trimmed, "re:")
		trimmed = strings.TrimPrefix(trimmed, "fwd:")
		trimmed = strings.TrimPrefix(trimmed, "fw:")
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == s {
			break
		}
		s = trimmed
	}
	if s == "" {
		return ""
	}
	return "thread-" + s
}
