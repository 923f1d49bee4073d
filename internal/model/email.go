package model

import (
	"time"

	"github.com/google/uuid"
)

// Priority ranks how urgently a message needs the user's attention.
// Higher levels sort first.
type Priority int

const (
	PriorityUpdate Priority = 1
	PriorityLow    Priority = 2
	PriorityMedium Priority = 3
	PriorityHigh   Priority = 4
	PriorityUrgent Priority = 5
)

// String returns the canonical name of the priority level.
func (p Priority) String() string {
	switch p {
	case PriorityUrgent:
		return "urgent"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	case PriorityUpdate:
		return "update"
	default:
		return "medium"
	}
}

// Informed reports whether this priority was assigned by the classifier
// or the language model rather than left at the default. Informed values
// are sticky across merges.
func (p Priority) Informed() bool {
	return p != PriorityMedium && p != 0
}

// Sentiment is the overall tone detected in a message.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentCritical Sentiment = "critical"
)

// Action is a suggested next step for a message. The empty value means
// no action is suggested.
type Action string

const (
	ActionNone     Action = ""
	ActionReply    Action = "reply"
	ActionForward  Action = "forward"
	ActionArchive  Action = "archive"
	ActionDelete   Action = "delete"
	ActionMarkRead Action = "mark_read"
)

// SyncStatus tracks a record's relationship to the remote mailbox.
type SyncStatus string

const (
	// SyncStatusSynced means the record matches the remote state.
	SyncStatusSynced SyncStatus = "synced"

	// SyncStatusPending means a local mutation is awaiting provider
	// confirmation.
	SyncStatusPending SyncStatus = "pending"

	// SyncStatusError means the last push to the provider failed.
	SyncStatusError SyncStatus = "error"

	// SyncStatusLocal means the record has unsynced local edits.
	// A merge never overwrites the user-visible flags of a Local record.
	SyncStatusLocal SyncStatus = "local"
)

// Attachment holds metadata about a message attachment.
type Attachment struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mime_type"`
	URL      string `json:"url"`
}

// Email is the canonical representation of a single message.
type Email struct {
	// ID is the stable internal identifier, derived from the provider
	// message id when available.
	ID string `json:"id"`

	// MessageID is the provider-assigned identifier. Empty for purely
	// local drafts. When present it is the merge key.
	MessageID string `json:"message_id"`

	// ThreadID groups related messages into a conversation.
	ThreadID string `json:"thread_id"`

	// Subject is the message subject line.
	Subject string `json:"subject"`

	// Sender is the display name of the sender.
	Sender string `json:"sender"`

	// SenderEmail is the sender's address.
	SenderEmail string `json:"sender_email"`

	// SenderProfileImageURL is derived display data; preserved across
	// merges because it is expensive to recompute.
	SenderProfileImageURL string `json:"sender_profile_image_url,omitempty"`

	// Recipients is the ordered list of recipient addresses.
	Recipients []string `json:"recipients"`

	// Content is the plain-text body.
	Content string `json:"content"`

	// Attachments holds attachment metadata.
	Attachments []Attachment `json:"attachments,omitempty"`

	// User-visible state flags.
	IsRead     bool `json:"is_read"`
	IsStarred  bool `json:"is_starred"`
	IsTrash    bool `json:"is_trash"`
	IsArchived bool `json:"is_archived"`

	// Priority is the assigned attention level. Defaults to medium.
	Priority Priority `json:"priority"`

	// RequiresAction indicates the message needs a response or follow-up.
	RequiresAction bool `json:"requires_action"`

	// SuggestedAction is the inferred next step, if any.
	SuggestedAction Action `json:"suggested_action,omitempty"`

	// Labels holds provider-origin and derived tags.
	Labels []string `json:"labels"`

	// Timestamp is the authoritative message time.
	Timestamp time.Time `json:"timestamp"`

	// Version increments on every merge that changes the record.
	Version int `json:"version"`

	// LastModified is when the record was last changed locally.
	LastModified time.Time `json:"last_modified"`

	// SyncStatus tracks the record's relationship to the remote mailbox.
	SyncStatus SyncStatus `json:"sync_status"`
}

// MergeKey returns the key used to match this record against incoming
// batches: the provider message id when present, else the internal id.
func (e *Email) MergeKey() string {
	if e.MessageID != "" {
		return e.MessageID
	}
	return e.ID
}

// HasLabel reports whether the label set contains the given label.
func (e *Email) HasLabel(label string) bool {
	for _, l := range e.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// NewLocalDraft creates an unsent draft with a generated id. Drafts carry
// SyncStatusLocal so merges retain them until they exist remotely.
func NewLocalDraft(subject, content string, recipients []string) Email {
	now := time.Now()
	return Email{
		ID:           "local-" + uuid.New().String(),
		Subject:      subject,
		Content:      content,
		Recipients:   recipients,
		Priority:     PriorityMedium,
		Labels:       []string{"DRAFT"},
		Timestamp:    now,
		Version:      1,
		LastModified: now,
		SyncStatus:   SyncStatusLocal,
	}
}
