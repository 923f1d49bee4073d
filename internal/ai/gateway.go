// Package ai is the intelligence gateway: it asks the language model to
// prioritize and classify messages, and falls back to the deterministic
// classifier whenever the model cannot answer. Classification callers
// never see a model error.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nhle/mailpilot/internal/classify"
	"github.com/nhle/mailpilot/internal/model"
)

// generationPlaceholder is shown for free-text generation when no
// credentials are configured. Classification tasks never surface it;
// they fall back to the heuristic engine instead.
const generationPlaceholder = "AI features are not configured. " +
	"Add an API key to enable generated replies and summaries."

// maxPromptBody caps how much message body is sent to the model.
const maxPromptBody = 2000

// Gateway routes intelligence tasks to the language model with a
// deterministic fallback.
type Gateway struct {
	completer Completer
	models    []string
	maxTokens int
}

// NewGateway creates a gateway over the given completer. A nil
// completer means no credentials are configured; every classification
// task then runs the heuristic engine directly.
func NewGateway(completer Completer, models []string, maxTokens int) *Gateway {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Gateway{
		completer: completer,
		models:    models,
		maxTokens: maxTokens,
	}
}

// complete walks the ordered model list: a missing model advances to
// the next entry, any other failure stops the walk, and exhausting the
// list reports the last model as unavailable.
func (g *Gateway) complete(ctx context.Context, prompt string) (string, error) {
	if g.completer == nil {
		return "", errNoCredentials
	}
	if len(g.models) == 0 {
		return "", errNoCredentials
	}

	for _, m := range g.models {
		text, err := g.completer.Complete(ctx, m, prompt, g.maxTokens)
		if err == nil {
			return text, nil
		}
		if IsModelUnavailable(err) {
			continue
		}
		return "", err
	}

	return "", &ModelUnavailableError{Model: g.models[len(g.models)-1]}
}

// Priority determines the message's priority, falling back to the
// heuristic scorer on any model failure.
func (g *Gateway) Priority(ctx context.Context, email model.Email) model.Priority {
	text, err := g.complete(ctx, priorityPrompt(email))
	if err == nil {
		if p, perr := parsePriority(text); perr == nil {
			return p
		}
	}
	return classify.ScorePriority(email, classify.InferAction(email))
}

// Sentiment determines the message's tone, falling back to the
// heuristic analyzer on any model failure.
func (g *Gateway) Sentiment(ctx context.Context, email model.Email) model.Sentiment {
	text, err := g.complete(ctx, sentimentPrompt(email))
	if err == nil {
		if s, perr := parseSentiment(text); perr == nil {
			return s
		}
	}
	return classify.AnalyzeSentiment(email.Subject + " " + email.Content)
}

// Categories determines the message's category labels, falling back to
// the heuristic keyword sets on any model failure.
func (g *Gateway) Categories(ctx context.Context, email model.Email) []string {
	text, err := g.complete(ctx, categoriesPrompt(email))
	if err == nil {
		if cats, perr := parseCategories(text); perr == nil {
			return cats
		}
	}
	return classify.Categorize(email.Subject + " " + email.Content)
}

// Action determines the suggested next step, falling back to the
// heuristic inference order on any model failure.
func (g *Gateway) Action(ctx context.Context, email model.Email) model.Action {
	text, err := g.complete(ctx, actionPrompt(email))
	if err == nil {
		if a, perr := parseAction(text); perr == nil {
			return a
		}
	}
	return classify.InferAction(email)
}

// Enrich attaches derived intelligence to the record: priority,
// suggested action, and category labels. It mutates the record in
// place and never fails.
func (g *Gateway) Enrich(ctx context.Context, email *model.Email) {
	action := g.Action(ctx, *email)
	email.SuggestedAction = action
	email.RequiresAction = action == model.ActionReply || action == model.ActionForward
	email.Priority = g.Priority(ctx, *email)

	for _, category := range g.Categories(ctx, *email) {
		if !email.HasLabel(category) {
			email.Labels = append(email.Labels, category)
		}
	}
}

// Generate produces free text from the prompt. With no credentials
// configured it returns a user-facing placeholder instead of an error;
// genuine model failures are surfaced to the caller.
func (g *Gateway) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := g.complete(ctx, prompt)
	if errors.Is(err, errNoCredentials) {
		return generationPlaceholder, nil
	}
	if err != nil {
		return "", fmt.Errorf("generating text: %w", err)
	}
	return text, nil
}

// --- prompt builders ---

func priorityPrompt(email model.Email) string {
	return taskPrompt(email,
		"Classify this email's priority. Respond with exactly one word: "+
			"URGENT, HIGH, MEDIUM, LOW, or UPDATE.")
}

func sentimentPrompt(email model.Email) string {
	return taskPrompt(email,
		"Classify this email's sentiment. Respond with exactly one word: "+
			"POSITIVE, NEGATIVE, NEUTRAL, or CRITICAL.")
}

func categoriesPrompt(email model.Email) string {
	return taskPrompt(email,
		"Classify this email into up to three categories from: MEETING, "+
			"PROJECT, FINANCE, SUPPORT, CLIENT, HR, NEWSLETTER, MARKETING, "+
			"SOCIAL, GENERAL. Respond with the category names separated by "+
			"commas and nothing else.")
}

func actionPrompt(email model.Email) string {
	return taskPrompt(email,
		"What should the user do with this email? Respond with exactly "+
			"one word: REPLY, FORWARD, ARCHIVE, DELETE, MARK_READ, or NONE.")
}

// taskPrompt builds a single-turn prompt with the message context.
func taskPrompt(email model.Email, instruction string) string {
	body := email.Content
	if len(body) > maxPromptBody {
		body = body[:maxPromptBody]
	}

	var sb strings.Builder
	sb.WriteString(instruction)
	sb.WriteString("\n\nFrom: ")
	sb.WriteString(email.Sender)
	sb.WriteString(" <")
	sb.WriteString(email.SenderEmail)
	sb.WriteString(">\nSubject: ")
	sb.WriteString(email.Subject)
	sb.WriteString("\n\n")
	sb.WriteString(body)

	return sb.String()
}
