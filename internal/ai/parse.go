package ai

import (
	"errors"
	"strings"

	"github.com/nhle/mailpilot/internal/model"
)

// ErrUnrecognized is returned when a model response does not match any
// expected token. The gateway treats it like any other model failure:
// the heuristic fallback runs instead of silently defaulting.
var ErrUnrecognized = errors.New("unrecognized model response")

// parsePriority maps a model response to a priority level.
func parsePriority(s string) (model.Priority, error) {
	switch normalizeToken(s) {
	case "URGENT":
		return model.PriorityUrgent, nil
	case "HIGH":
		return model.PriorityHigh, nil
	case "MEDIUM":
		return model.PriorityMedium, nil
	case "LOW":
		return model.PriorityLow, nil
	case "UPDATE":
		return model.PriorityUpdate, nil
	default:
		return 0, ErrUnrecognized
	}
}

// parseSentiment maps a model response to a sentiment label.
func parseSentiment(s string) (model.Sentiment, error) {
	switch normalizeToken(s) {
	case "POSITIVE":
		return model.SentimentPositive, nil
	case "NEGATIVE":
		return model.SentimentNegative, nil
	case "NEUTRAL":
		return model.SentimentNeutral, nil
	case "CRITICAL":
		return model.SentimentCritical, nil
	default:
		return "", ErrUnrecognized
	}
}

// parseAction maps a model response to a suggested action.
func parseAction(s string) (model.Action, error) {
	switch normalizeToken(s) {
	case "REPLY":
		return model.ActionReply, nil
	case "FORWARD":
		return model.ActionForward, nil
	case "ARCHIVE":
		return model.ActionArchive, nil
	case "DELETE":
		return model.ActionDelete, nil
	case "MARK_READ", "MARKREAD":
		return model.ActionMarkRead, nil
	case "NONE":
		return model.ActionNone, nil
	default:
		return model.ActionNone, ErrUnrecognized
	}
}

// knownCategories is the set of category labels the model may return.
var knownCategories = map[string]string{
	"MEETING":    "Meeting",
	"PROJECT":    "Project",
	"FINANCE":    "Finance",
	"SUPPORT":    "Support",
	"CLIENT":     "Client",
	"HR":         "HR",
	"NEWSLETTER": "Newsletter",
	"MARKETING":  "Marketing",
	"SOCIAL":     "Social",
	"GENERAL":    "General",
}

// parseCategories maps a comma-separated model response to category
// labels, dropping unknown entries and capping at three. A response
// with no recognizable category at all is unrecognized.
func parseCategories(s string) ([]string, error) {
	var categories []string
	for _, part := range strings.Split(s, ",") {
		if name, ok := knownCategories[normalizeToken(part)]; ok {
			categories = append(categories, name)
			if len(categories) == 3 {
				break
			}
		}
	}

	if len(categories) == 0 {
		return nil, ErrUnrecognized
	}
	return categories, nil
}

// normalizeToken uppercases and trims a response token, stripping any
// surrounding punctuation the model may add.
func normalizeToken(s string) string {
	return strings.ToUpper(strings.Trim(strings.TrimSpace(s), ".\"'`"))
}
