package normalize

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// SentinelDate is the fixed fallback timestamp used when a message
// carries no parseable time at all. It is deliberately far in the past
// so it can never be mistaken for "just now".
var SentinelDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// dateFormats is the ordered list of Date header layouts attempted
// during timestamp resolution.
var dateFormats = []string{
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// tzOffsets maps timezone abbreviations that time.Parse cannot resolve
// to fixed numeric offsets.
var tzOffsets = map[string]string{
	"UT":  "+0000",
	"GMT": "+0000",
	"UTC": "+0000",
	"EST": "-0500",
	"EDT": "-0400",
	"CST": "-0600",
	"CDT": "-0500",
	"MST": "-0700",
	"MDT": "-0600",
	"PST": "-0800",
	"PDT": "-0700",
}

// timestampCache memoizes resolved timestamps per provider message id
// so repeated normalization of the same message is idempotent and cheap.
type timestampCache struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func newTimestampCache() *timestampCache {
	return &timestampCache{entries: make(map[string]time.Time)}
}

func (c *timestampCache) get(id string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.entries[id]
	return t, ok
}

func (c *timestampCache) put(id string, t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[id] = t
}

// resolveTimestamp determines a message's authoritative time. Resolution
// order: the provider's millisecond-epoch internal timestamp, then the
// Date header against the known layouts, then SentinelDate.
func resolveTimestamp(internalDate, dateHeader string) time.Time {
	if internalDate != "" {
		if ms, err := strconv.ParseInt(internalDate, 10, 64); err == nil && ms > 0 {
			return time.UnixMilli(ms).UTC()
		}
	}

	if t, ok := parseDateHeader(dateHeader); ok {
		return t
	}

	return SentinelDate
}

// parseDateHeader attempts the Date header against each known layout,
// cleaning up parenthetical suffixes and substituting fixed offsets for
// timezone abbreviations before giving up.
func parseDateHeader(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	base := []string{value}

	// Strip a trailing parenthetical like "(UTC)" or "(PST)".
	if open := strings.LastIndex(value, " ("); open != -1 {
		if closing := strings.LastIndex(value, ")"); closing > open {
			stripped := strings.TrimSpace(value[:open] + value[closing+1:])
			base = append(base, stripped)
		}
	}

	// Substituted candidates must be tried before the raw value:
	// layouts like RFC1123 would otherwise accept the abbreviation
	// itself with a zero offset.
	var candidates []string
	for _, candidate := range base {
		fields := strings.Fields(candidate)
		if len(fields) == 0 {
			continue
		}
		last := fields[len(fields)-1]
		if offset, ok := tzOffsets[last]; ok {
			fields[len(fields)-1] = offset
			candidates = append(candidates, strings.Join(fields, " "))
		}
	}
	candidates = append(candidates, base...)

	for _, candidate := range candidates {
		for _, layout := range dateFormats {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t.UTC(), true
			}
		}
	}

	return time.Time{}, false
}
