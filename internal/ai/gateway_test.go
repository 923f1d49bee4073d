package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailpilot/internal/model"
)

// fakeCompleter scripts per-model responses for the gateway walk.
type fakeCompleter struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (f *fakeCompleter) Complete(_ context.Context, m, _ string, _ int) (string, error) {
	f.calls = append(f.calls, m)
	if err, ok := f.errs[m]; ok {
		return "", err
	}
	return f.responses[m], nil
}

func TestGateway_FirstModelWins(t *testing.T) {
	completer := &fakeCompleter{responses: map[string]string{"model-a": "URGENT"}}
	g := NewGateway(completer, []string{"model-a", "model-b"}, 256)

	got := g.Priority(context.Background(), model.Email{Subject: "x"})

	assert.Equal(t, model.PriorityUrgent, got)
	assert.Equal(t, []string{"model-a"}, completer.calls)
}

func TestGateway_MissingModelAdvancesList(t *testing.T) {
	completer := &fakeCompleter{
		errs:      map[string]error{"model-a": &ModelUnavailableError{Model: "model-a"}},
		responses: map[string]string{"model-b": "LOW"},
	}
	g := NewGateway(completer, []string{"model-a", "model-b"}, 256)

	got := g.Priority(context.Background(), model.Email{Subject: "x"})

	assert.Equal(t, model.PriorityLow, got)
	assert.Equal(t, []string{"model-a", "model-b"}, completer.calls)
}

func TestGateway_OtherErrorStopsWalkAndFallsBack(t *testing.T) {
	completer := &fakeCompleter{
		errs: map[string]error{"model-a": errors.New("rate limited")},
	}
	g := NewGateway(completer, []string{"model-a", "model-b"}, 256)

	// The heuristic fallback runs; model-b is never tried.
	got := g.Priority(context.Background(), model.Email{
		Subject: "Immediate response required: database is down",
	})

	assert.Equal(t, model.PriorityUrgent, got)
	assert.Equal(t, []string{"model-a"}, completer.calls)
}

func TestGateway_ExhaustedListFallsBack(t *testing.T) {
	completer := &fakeCompleter{
		errs: map[string]error{
			"model-a": &ModelUnavailableError{Model: "model-a"},
			"model-b": &ModelUnavailableError{Model: "model-b"},
		},
	}
	g := NewGateway(completer, []string{"model-a", "model-b"}, 256)

	got := g.Sentiment(context.Background(), model.Email{
		Subject: "Thanks!",
		Content: "great work, really appreciate it",
	})

	assert.Equal(t, model.SentimentPositive, got)
	assert.Equal(t, []string{"model-a", "model-b"}, completer.calls)
}

func TestGateway_NoCredentialsUsesHeuristics(t *testing.T) {
	g := NewGateway(nil, []string{"model-a"}, 256)

	got := g.Priority(context.Background(), model.Email{
		Subject:     "Flash sale! 50% off",
		SenderEmail: "deals@shop.example.com",
	})

	assert.Equal(t, model.PriorityLow, got)
}

func TestGateway_UnparseableResponseFallsBack(t *testing.T) {
	completer := &fakeCompleter{
		responses: map[string]string{"model-a": "I think this one is quite important"},
	}
	g := NewGateway(completer, []string{"model-a"}, 256)

	got := g.Priority(context.Background(), model.Email{
		Subject: "Immediate response required",
	})

	assert.Equal(t, model.PriorityUrgent, got)
}

func TestGateway_Enrich(t *testing.T) {
	completer := &fakeCompleter{responses: map[string]string{"model-a": "REPLY"}}
	g := NewGateway(completer, []string{"model-a"}, 256)

	email := model.Email{
		Subject: "Quick question",
		Content: "Can you confirm the numbers?",
		Labels:  []string{"INBOX"},
	}
	g.Enrich(context.Background(), &email)

	assert.Equal(t, model.ActionReply, email.SuggestedAction)
	assert.True(t, email.RequiresAction)
	assert.NotZero(t, email.Priority)
	assert.True(t, len(email.Labels) > 1, "category labels should be appended")
}

func TestGateway_GeneratePlaceholderWithoutCredentials(t *testing.T) {
	g := NewGateway(nil, nil, 256)

	text, err := g.Generate(context.Background(), "write a reply")

	require.NoError(t, err)
	assert.Equal(t, generationPlaceholder, text)
}

func TestGateway_GenerateSurfacesModelErrors(t *testing.T) {
	completer := &fakeCompleter{
		errs: map[string]error{"model-a": errors.New("overloaded")},
	}
	g := NewGateway(completer, []string{"model-a"}, 256)

	_, err := g.Generate(context.Background(), "write a reply")
	assert.Error(t, err)
}

func TestGateway_Generate(t *testing.T) {
	completer := &fakeCompleter{responses: map[string]string{"model-a": "Sure, here you go."}}
	g := NewGateway(completer, []string{"model-a"}, 256)

	text, err := g.Generate(context.Background(), "write a reply")

	require.NoError(t, err)
	assert.Equal(t, "Sure, here you go.", text)
}
