// Package gmail implements the mailbox provider contract over the
// Gmail REST API.
package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/nhle/mailpilot/internal/provider"
)

const user = "me"

// Client is a Gmail-backed mailbox provider for a single account.
type Client struct {
	srv     *gmail.Service
	account string
}

// NewClient creates a Gmail client from an OAuth config and a stored
// token (the JSON form kept in the keyring).
func NewClient(
	ctx context.Context,
	account string,
	oauthConfig *oauth2.Config,
	tokenJSON []byte,
) (*Client, error) {
	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, &provider.DecodingError{What: "oauth token", Err: err}
	}

	httpClient := oauthConfig.Client(ctx, &token)
	srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating Gmail service: %w", err)
	}

	return &Client{srv: srv, account: account}, nil
}

// ListMessageIDs returns refs for messages matching the query, newest
// first.
func (c *Client) ListMessageIDs(
	ctx context.Context,
	query string,
	maxResults int,
) ([]provider.MessageRef, error) {
	call := c.srv.Users.Messages.List(user).Context(ctx)
	if query != "" {
		call = call.Q(query)
	}
	if maxResults > 0 {
		call = call.MaxResults(int64(maxResults))
	}

	list, err := call.Do()
	if err != nil {
		return nil, c.mapError("listing messages", err)
	}

	refs := make([]provider.MessageRef, 0, len(list.Messages))
	for _, m := range list.Messages {
		refs = append(refs, provider.MessageRef{ID: m.Id, ThreadID: m.ThreadId})
	}
	return refs, nil
}

// GetMessage retrieves the full raw message for the given id.
func (c *Client) GetMessage(ctx context.Context, id string) (*provider.RawMessage, error) {
	msg, err := c.srv.Users.Messages.Get(user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, c.mapError("getting message "+id, err)
	}
	if msg.Payload == nil {
		return nil, &provider.InvalidResponseError{
			Message: fmt.Sprintf("message %s has no payload", id),
		}
	}

	raw := &provider.RawMessage{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		LabelIDs: msg.LabelIds,
		Body:     convertPart(msg.Payload),
	}
	if msg.InternalDate > 0 {
		raw.InternalDate = strconv.FormatInt(msg.InternalDate, 10)
	}
	for _, h := range msg.Payload.Headers {
		raw.Headers = append(raw.Headers, provider.Header{Name: h.Name, Value: h.Value})
	}

	return raw, nil
}

// ModifyLabels adds and removes labels on a message.
func (c *Client) ModifyLabels(ctx context.Context, id string, add, remove []string) error {
	_, err := c.srv.Users.Messages.Modify(user, id, &gmail.ModifyMessageRequest{
		AddLabelIds:    add,
		RemoveLabelIds: remove,
	}).Context(ctx).Do()
	if err != nil {
		return c.mapError("modifying labels on "+id, err)
	}
	return nil
}

// Trash moves a message to the trash.
func (c *Client) Trash(ctx context.Context, id string) error {
	if _, err := c.srv.Users.Messages.Trash(user, id).Context(ctx).Do(); err != nil {
		return c.mapError("trashing "+id, err)
	}
	return nil
}

// Untrash restores a message from the trash.
func (c *Client) Untrash(ctx context.Context, id string) error {
	if _, err := c.srv.Users.Messages.Untrash(user, id).Context(ctx).Do(); err != nil {
		return c.mapError("untrashing "+id, err)
	}
	return nil
}

// convertPart maps a Gmail message part tree onto the provider shape.
func convertPart(p *gmail.MessagePart) provider.BodyPart {
	part := provider.BodyPart{
		MIMEType: p.MimeType,
		Filename: p.Filename,
	}
	if p.Body != nil {
		part.Data = p.Body.Data
		part.Size = p.Body.Size
		part.AttachmentID = p.Body.AttachmentId
	}
	for _, child := range p.Parts {
		part.Parts = append(part.Parts, convertPart(child))
	}
	return part
}

// mapError translates Gmail API failures into the provider error
// taxonomy.
func (c *Client) mapError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			return &provider.NotAuthenticatedError{
				Account: c.account,
				Message: apiErr.Message,
			}
		case 429:
			return &provider.RateLimitedError{Message: apiErr.Message}
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &provider.NetworkError{Op: op, Err: err}
	}

	return fmt.Errorf("%s: %w", op, err)
}
