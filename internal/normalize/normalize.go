// Package normalize converts raw provider messages into the canonical
// Email record.
package normalize

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/mailpilot/internal/model"
	"github.com/nhle/mailpilot/internal/provider"
)

// Provider label ids with derived meaning.
const (
	labelUnread  = "UNREAD"
	labelRead    = "READ"
	labelStarred = "STARRED"
	labelTrash   = "TRASH"
	labelInbox   = "INBOX"
	labelSent    = "SENT"
	labelArchive = "ARCHIVED"
)

// Normalizer converts raw provider messages into Email records. It is
// safe for concurrent use; the only state is the timestamp memo cache.
type Normalizer struct {
	timestamps *timestampCache
}

// New creates a Normalizer with an empty timestamp cache.
func New() *Normalizer {
	return &Normalizer{timestamps: newTimestampCache()}
}

// Normalize converts a raw provider message into a canonical Email.
// It never fails: missing or malformed fields degrade to sentinels
// ("Unknown" sender, empty body, the fixed fallback date).
func (n *Normalizer) Normalize(raw *provider.RawMessage) model.Email {
	headers := headerMap(raw.Headers)

	sender, senderEmail := ParseSender(headers["From"])

	id := raw.ID
	if id == "" {
		id = "local-" + uuid.New().String()
	}

	email := model.Email{
		ID:              id,
		MessageID:       raw.ID,
		ThreadID:        raw.ThreadID,
		Subject:         headers["Subject"],
		Sender:          sender,
		SenderEmail:     senderEmail,
		Recipients:      parseRecipients(headers["To"], headers["Cc"]),
		Content:         extractBody(&raw.Body),
		Attachments:     extractAttachments(&raw.Body),
		Priority:        model.PriorityMedium,
		Timestamp:       n.resolve(raw.ID, raw.InternalDate, headers["Date"]),
		Version:         1,
		LastModified:    time.Now(),
		SyncStatus:      model.SyncStatusSynced,
	}

	applyLabels(&email, raw.LabelIDs)

	return email
}

// resolve returns the memoized timestamp for the message id, computing
// and caching it on first sight. Messages without a provider id are not
// cached.
func (n *Normalizer) resolve(id, internalDate, dateHeader string) time.Time {
	if id == "" {
		return resolveTimestamp(internalDate, dateHeader)
	}

	if t, ok := n.timestamps.get(id); ok {
		return t
	}

	t := resolveTimestamp(internalDate, dateHeader)
	n.timestamps.put(id, t)
	return t
}

// headerMap indexes headers by name. The first occurrence of a name
// wins.
func headerMap(headers []provider.Header) map[string]string {
	m := make(map[string]string, len(headers))
	for _, h := range headers {
		if _, ok := m[h.Name]; !ok {
			m[h.Name] = h.Value
		}
	}
	return m
}

// ParseSender splits a "Name <addr>" From header into display name and
// address. Without a <...> delimiter the whole value is treated as the
// address and the display name falls back to "Unknown".
func ParseSender(from string) (name, address string) {
	from = strings.TrimSpace(from)

	open := strings.LastIndex(from, "<")
	closing := strings.LastIndex(from, ">")
	if open == -1 || closing < open {
		if from == "" {
			return "Unknown", ""
		}
		return "Unknown", from
	}

	name = strings.TrimSpace(strings.Trim(strings.TrimSpace(from[:open]), `"`))
	address = strings.TrimSpace(from[open+1 : closing])
	if name == "" {
		name = "Unknown"
	}
	return name, address
}

// parseRecipients extracts addresses from the To and Cc headers,
// preserving order.
func parseRecipients(to, cc string) []string {
	var recipients []string
	for _, header := range []string{to, cc} {
		for _, part := range strings.Split(header, ",") {
			_, addr := splitAddress(strings.TrimSpace(part))
			if addr != "" {
				recipients = append(recipients, addr)
			}
		}
	}
	return recipients
}

// splitAddress pulls the address out of a single "Name <addr>" entry.
func splitAddress(entry string) (name, address string) {
	open := strings.LastIndex(entry, "<")
	closing := strings.LastIndex(entry, ">")
	if open == -1 || closing < open {
		return "", entry
	}
	return strings.TrimSpace(entry[:open]), strings.TrimSpace(entry[open+1 : closing])
}

// applyLabels derives the state flags from the provider label set and
// appends the derived tags, deduplicated.
func applyLabels(email *model.Email, labelIDs []string) {
	present := make(map[string]bool, len(labelIDs))
	for _, l := range labelIDs {
		present[l] = true
	}

	email.IsRead = !present[labelUnread]
	email.IsStarred = present[labelStarred]
	email.IsTrash = present[labelTrash]
	email.IsArchived = !present[labelInbox] && !present[labelTrash]

	labels := append([]string{}, labelIDs...)
	if email.IsRead {
		labels = append(labels, labelRead)
	} else {
		labels = append(labels, labelUnread)
	}
	if email.IsStarred {
		labels = append(labels, labelStarred)
	}
	if email.IsTrash {
		labels = append(labels, labelTrash)
	}
	if email.IsArchived {
		labels = append(labels, labelArchive)
	}
	if present[labelSent] {
		labels = append(labels, labelSent)
	}

	email.Labels = dedupe(labels)
}

// dedupe removes duplicate labels while preserving first-seen order.
func dedupe(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	result := make([]string, 0, len(labels))
	for _, l := range labels {
		if seen[l] {
			continue
		}
		seen[l] = true
		result = append(result, l)
	}
	return result
}

// extractBody returns the plain-text body. A top-level text body wins;
// otherwise the first text/plain part found in a depth-first walk is
// used. An absent body yields the empty string.
func extractBody(body *provider.BodyPart) string {
	if body == nil {
		return ""
	}

	if body.Data != "" && !strings.HasPrefix(body.MIMEType, "multipart/") {
		return decodeBase64URL(body.Data)
	}

	if part := findTextPlain(body.Parts); part != nil {
		return decodeBase64URL(part.Data)
	}

	return ""
}

// findTextPlain returns the first text/plain part in a depth-first walk.
func findTextPlain(parts []provider.BodyPart) *provider.BodyPart {
	for i := range parts {
		p := &parts[i]
		if strings.HasPrefix(p.MIMEType, "text/plain") && p.Data != "" {
			return p
		}
		if found := findTextPlain(p.Parts); found != nil {
			return found
		}
	}
	return nil
}

// extractAttachments collects attachment metadata from all body parts.
func extractAttachments(body *provider.BodyPart) []model.Attachment {
	if body == nil {
		return nil
	}

	var attachments []model.Attachment
	var walk func(parts []provider.BodyPart)
	walk = func(parts []provider.BodyPart) {
		for _, p := range parts {
			if p.Filename != "" {
				attachments = append(attachments, model.Attachment{
					Name:     p.Filename,
					Size:     p.Size,
					MIMEType: p.MIMEType,
					URL:      p.AttachmentID,
				})
			}
			walk(p.Parts)
		}
	}
	walk(body.Parts)
	return attachments
}

// decodeBase64URL decodes base64url data, tolerating missing padding.
// Undecodable data yields the empty string rather than an error.
func decodeBase64URL(data string) string {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	// Some providers deliver standard base64 with url-safe characters
	// mixed in; translate and retry.
	translated := strings.NewReplacer("-", "+", "_", "/").Replace(data)
	if decoded, err := base64.StdEncoding.DecodeString(translated); err == nil {
		return string(decoded)
	}
	return ""
}
