// Package provider defines the consumed contract of a remote mailbox
// provider and the error taxonomy its implementations surface.
package provider

import "context"

// Header is a single message header as delivered by the provider.
type Header struct {
	Name  string
	Value string
}

// BodyPart is one node of a provider message's body tree. Data is
// base64url-encoded; multipart nodes carry children in Parts instead.
// Attachment parts carry a filename and a provider attachment id in
// place of inline data.
type BodyPart struct {
	MIMEType     string
	Filename     string
	Data         string
	Size         int64
	AttachmentID string
	Parts        []BodyPart
}

// RawMessage is a full provider message before normalization.
type RawMessage struct {
	ID       string
	ThreadID string
	LabelIDs []string
	Headers  []Header
	Body     BodyPart

	// InternalDate is the provider's millisecond-epoch timestamp as a
	// decimal string. Empty when the provider did not supply one.
	InternalDate string
}

// MessageRef identifies a message within its thread.
type MessageRef struct {
	ID       string
	ThreadID string
}

// Provider is the contract every mailbox integration implements.
// Errors from read and mutation operations propagate to the caller
// unmodified; the reconciliation core never retries them.
type Provider interface {
	// ListMessageIDs returns refs for messages matching the query,
	// newest first, up to maxResults.
	ListMessageIDs(ctx context.Context, query string, maxResults int) ([]MessageRef, error)

	// GetMessage retrieves the full raw message for the given id.
	GetMessage(ctx context.Context, id string) (*RawMessage, error)

	// ModifyLabels adds and removes labels on a message.
	ModifyLabels(ctx context.Context, id string, add, remove []string) error

	// Trash moves a message to the trash.
	Trash(ctx context.Context, id string) error

	// Untrash restores a message from the trash.
	Untrash(ctx context.Context, id string) error
}
