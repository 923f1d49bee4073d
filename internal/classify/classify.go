// Package classify is the deterministic fallback classification engine.
// Every function here is a pure function of the message's text fields:
// no network, no randomness, no hidden state. It substitutes for the
// language model whenever that is unavailable.
package classify

import (
	"strings"

	"github.com/nhle/mailpilot/internal/model"
)

// Result bundles everything the classifier derives for one message.
type Result struct {
	Priority        model.Priority
	Sentiment       model.Sentiment
	Categories      []string
	SuggestedAction model.Action
	RequiresAction  bool
}

// Classify runs the full deterministic pipeline over a message. The
// suggested action is inferred first because the priority score applies
// a discount to replies within an existing thread.
func Classify(email model.Email) Result {
	action := InferAction(email)

	return Result{
		Priority:        ScorePriority(email, action),
		Sentiment:       AnalyzeSentiment(email.Subject + " " + email.Content),
		Categories:      Categorize(email.Subject + " " + email.Content),
		SuggestedAction: action,
		RequiresAction:  action == model.ActionReply || action == model.ActionForward,
	}
}

// normalizeText lowercases text and collapses all whitespace runs
// (including newlines and tabs) into single spaces.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// containsAny reports whether text contains any of the phrases.
func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// countDistinct counts how many distinct phrases appear in text.
func countDistinct(text string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if strings.Contains(text, p) {
			n++
		}
	}
	return n
}
