package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailpilot/internal/model"
)

func TestScorePriority_UrgentSubjectShortCircuits(t *testing.T) {
	email := model.Email{
		Subject: "Immediate Response Required: server down",
		Content: "unsubscribe", // marketing language must not matter here
	}

	assert.Equal(t, model.PriorityUrgent, ScorePriority(email, model.ActionNone))
}

func TestScorePriority_SystemNotificationIsUpdate(t *testing.T) {
	email := model.Email{
		Subject:     "Backup completed",
		Sender:      "Backup Service",
		SenderEmail: "noreply@service.example.com",
	}

	assert.Equal(t, model.PriorityUpdate, ScorePriority(email, model.ActionNone))
}

func TestScorePriority_MarketingOverridesEverything(t *testing.T) {
	email := model.Email{
		Subject:     "Flash Sale: 50% off today only!",
		Sender:      "Deals",
		SenderEmail: "deals@retailer.example.com",
		Content:     "meeting urgent deadline", // strong signals, all skipped
		Recipients:  []string{"me@example.com"},
	}

	assert.Equal(t, model.PriorityLow, ScorePriority(email, model.ActionNone))
}

func TestScorePriority_MarketingByLocalPart(t *testing.T) {
	email := model.Email{
		Subject:     "Your monthly picks",
		Sender:      "Acme",
		SenderEmail: "promo@acme.example.com",
	}

	assert.Equal(t, model.PriorityLow, ScorePriority(email, model.ActionNone))
}

func TestScorePriority_MarketingByBulkDomain(t *testing.T) {
	email := model.Email{
		Subject:     "An update from us",
		Sender:      "Writer",
		SenderEmail: "writer@mail.substack.com",
	}

	assert.Equal(t, model.PriorityLow, ScorePriority(email, model.ActionNone))
}

func TestScorePriority_MeetingScoresHigh(t *testing.T) {
	email := model.Email{
		Subject:    "Team meeting",
		Sender:     "Alex",
		Content:    "room 4 is booked",
		Recipients: []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"},
	}

	// 3.5 meeting bonus, no other contributions with four recipients.
	assert.Equal(t, model.PriorityHigh, ScorePriority(email, model.ActionNone))
}

func TestScorePriority_MeetingPlusImmediateIsUrgent(t *testing.T) {
	email := model.Email{
		Subject:    "Need to schedule time asap",
		Sender:     "Alex",
		Recipients: []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"},
	}

	// 3.5 + 1.5 crosses the urgent threshold.
	assert.Equal(t, model.PriorityUrgent, ScorePriority(email, model.ActionNone))
}

func TestScorePriority_RecipientCountContributions(t *testing.T) {
	base := model.Email{
		Subject: "Notes",
		Sender:  "Sam",
		Content: "please review the contract",
	}

	// Base score: 0.5 action phrase + 0.5 critical term.
	narrow := base
	narrow.Recipients = []string{"a@x.com", "b@x.com"}
	// Two recipients earn both recipient bonuses: 1.0 + 1.0 = 2.0.
	assert.Equal(t, model.PriorityMedium, ScorePriority(narrow, model.ActionNone))

	exactlyThree := base
	exactlyThree.Recipients = []string{"a@x.com", "b@x.com", "c@x.com"}
	// Only the <=3 bonus fires: 1.0 + 0.5 = 1.5, on the boundary.
	assert.Equal(t, model.PriorityMedium, ScorePriority(exactlyThree, model.ActionNone))

	broadcast := base
	broadcast.Recipients = []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"}
	assert.Equal(t, model.PriorityLow, ScorePriority(broadcast, model.ActionNone))
}

func TestScorePriority_ThreadReplyDiscount(t *testing.T) {
	email := model.Email{
		ID:       "m2",
		ThreadID: "t1",
		Subject:  "Re: meeting",
		Sender:   "Dana",
		Content:  "let me know",
		Recipients: []string{
			"a@x.com", "b@x.com", "c@x.com", "d@x.com",
		},
	}

	// 3.5 meeting + 0.5 action phrase - 0.5 thread-reply discount.
	assert.Equal(t, model.PriorityHigh, ScorePriority(email, model.ActionReply))

	fresh := email
	fresh.ThreadID = ""
	assert.Equal(t, model.PriorityUrgent, ScorePriority(fresh, model.ActionReply))

	// A thread id equal to the message id means the message started the
	// thread; no discount applies.
	starter := email
	starter.ThreadID = starter.ID
	assert.Equal(t, model.PriorityUrgent, ScorePriority(starter, model.ActionReply))
}

func TestScorePriority_QuestionBonusIsCapped(t *testing.T) {
	email := model.Email{
		Subject:    "Questions",
		Sender:     "Sam",
		Content:    "one? two? three? four? five? six?",
		Recipients: []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"},
	}

	// Six questions cap at 0.9, well under the medium threshold.
	assert.Equal(t, model.PriorityLow, ScorePriority(email, model.ActionNone))
}

func TestInferAction_ReplyIndicator(t *testing.T) {
	email := model.Email{Content: "Please respond when you get a chance"}
	assert.Equal(t, model.ActionReply, InferAction(email))
}

func TestInferAction_QuestionBeatsForward(t *testing.T) {
	email := model.Email{
		Subject: "Budget draft",
		Content: "Can you share this with your team?",
	}
	assert.Equal(t, model.ActionReply, InferAction(email))
}

func TestInferAction_QuestionInReplyChainIgnored(t *testing.T) {
	email := model.Email{
		Subject: "Re: budget",
		Content: "what time works?",
	}
	assert.Equal(t, model.ActionNone, InferAction(email))
}

func TestInferAction_Forward(t *testing.T) {
	email := model.Email{Content: "Please forward this to accounting."}
	assert.Equal(t, model.ActionForward, InferAction(email))
}

func TestInferAction_MarketingSuggestsDelete(t *testing.T) {
	email := model.Email{
		Subject:     "Weekend picks",
		Sender:      "Deals",
		SenderEmail: "deals@shop.example.com",
		Content:     "flash sale ends soon",
	}
	assert.Equal(t, model.ActionDelete, InferAction(email))
}

func TestInferAction_Archive(t *testing.T) {
	email := model.Email{Content: "FYI the office closes early tomorrow."}
	assert.Equal(t, model.ActionArchive, InferAction(email))
}

func TestInferAction_None(t *testing.T) {
	email := model.Email{
		Subject: "Minutes",
		Content: "The notes from last time are attached.",
	}
	assert.Equal(t, model.ActionNone, InferAction(email))
}

func TestInferAction_SignOffExpectsReply(t *testing.T) {
	email := model.Email{
		Sender:  "Bob Smith",
		Content: "See you at the gym tomorrow. Bob",
	}
	assert.Equal(t, model.ActionReply, InferAction(email))
}

func TestAnalyzeSentiment(t *testing.T) {
	cases := []struct {
		name string
		text string
		want model.Sentiment
	}{
		{"critical co-occurrence", "urgent problem with the server", model.SentimentCritical},
		{"critical word alone is not critical", "urgent: need your signature", model.SentimentNeutral},
		{"positive", "thanks, great work on the release", model.SentimentPositive},
		{"negative", "problem after problem, the build failed and the delay is unacceptable", model.SentimentNegative},
		{"neutral", "the meeting is at noon", model.SentimentNeutral},
		{"mixed stays neutral", "thanks, but there is a problem", model.SentimentNeutral},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AnalyzeSentiment(tc.text))
		})
	}
}

func TestCategorize(t *testing.T) {
	t.Run("fixed order, capped at three", func(t *testing.T) {
		got := Categorize("meeting about the invoice, support ticket, client party")
		assert.Equal(t, []string{"Meeting", "Finance", "Support"}, got)
	})

	t.Run("order is by category priority, not text position", func(t *testing.T) {
		got := Categorize("party first, invoice second")
		assert.Equal(t, []string{"Finance", "Social"}, got)
	})

	t.Run("default", func(t *testing.T) {
		assert.Equal(t, []string{"General"}, Categorize("xyzzy"))
	})
}

func TestClassify_FullPipeline(t *testing.T) {
	email := model.Email{
		Subject:    "Project deadline",
		Sender:     "Pat",
		Content:    "Can you send the final deliverable today? Thanks!",
		Recipients: []string{"me@example.com"},
	}

	result := Classify(email)

	require.Equal(t, model.ActionReply, result.SuggestedAction)
	assert.True(t, result.RequiresAction)
	assert.Contains(t, result.Categories, "Project")
	assert.NotZero(t, result.Priority)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "hello world", normalizeText("  Hello\n\tWORLD  "))
	assert.Equal(t, "", normalizeText("   "))
}
