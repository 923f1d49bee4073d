package model

import "time"

// ChangeNotification is emitted after a sync that altered an account's
// cached collection.
type ChangeNotification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// Account is the address of the account that changed.
	Account string `json:"account"`

	// NewMessageCount is how many previously unseen messages arrived.
	NewMessageCount int `json:"new_message_count"`

	// TotalCount is the size of the collection after the merge.
	TotalCount int `json:"total_count"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}
