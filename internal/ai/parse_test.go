package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailpilot/internal/model"
)

func TestParsePriority(t *testing.T) {
	cases := []struct {
		in   string
		want model.Priority
	}{
		{"URGENT", model.PriorityUrgent},
		{"high", model.PriorityHigh},
		{" Medium. ", model.PriorityMedium},
		{`"LOW"`, model.PriorityLow},
		{"update", model.PriorityUpdate},
	}
	for _, tc := range cases {
		got, err := parsePriority(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got)
	}

	_, err := parsePriority("somewhat important")
	assert.ErrorIs(t, err, ErrUnrecognized)
}

func TestParseSentiment(t *testing.T) {
	got, err := parseSentiment("Critical")
	require.NoError(t, err)
	assert.Equal(t, model.SentimentCritical, got)

	_, err = parseSentiment("the email seems fine")
	assert.ErrorIs(t, err, ErrUnrecognized)
}

func TestParseAction(t *testing.T) {
	cases := []struct {
		in   string
		want model.Action
	}{
		{"REPLY", model.ActionReply},
		{"forward", model.ActionForward},
		{"MARK_READ", model.ActionMarkRead},
		{"MARKREAD", model.ActionMarkRead},
		{"none", model.ActionNone},
	}
	for _, tc := range cases {
		got, err := parseAction(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got)
	}

	_, err := parseAction("you should probably reply to this")
	assert.ErrorIs(t, err, ErrUnrecognized)
}

func TestParseCategories(t *testing.T) {
	got, err := parseCategories("MEETING, Finance, support")
	require.NoError(t, err)
	assert.Equal(t, []string{"Meeting", "Finance", "Support"}, got)

	t.Run("caps at three", func(t *testing.T) {
		got, err := parseCategories("meeting, project, finance, support, client")
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("drops unknown entries", func(t *testing.T) {
		got, err := parseCategories("SPAM, Finance")
		require.NoError(t, err)
		assert.Equal(t, []string{"Finance"}, got)
	})

	t.Run("nothing recognizable", func(t *testing.T) {
		_, err := parseCategories("this email is about many things")
		assert.ErrorIs(t, err, ErrUnrecognized)
	})
}
