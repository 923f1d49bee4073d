package classify

import (
	"strings"

	"github.com/nhle/mailpilot/internal/model"
)

// Score contribution constants.
const (
	marketingPenalty     = -3.0
	meetingBonus         = 3.5
	immediateTimeBonus   = 1.5
	sameDayTimeBonus     = 1.0
	sameWeekTimeBonus    = 0.5
	executiveBonus       = 2.0
	personalContactBonus = 1.5
	smallRecipientBonus  = 0.5
	criticalTermBonus    = 0.5
	questionBonus        = 0.3
	maxQuestionBonus     = 0.9
	collaborationBonus   = 1.0
	socialBonus          = 2.5
	actionPhraseBonus    = 0.5
	maxActionBonus       = 1.5
	threadReplyDiscount  = 0.5
)

// Bucketing thresholds.
const (
	urgentThreshold = 4.0
	highThreshold   = 3.0
	mediumThreshold = 1.5
)

// ScorePriority computes the message's priority from a single additive
// score. suggestedAction feeds the thread-reply discount; pass
// model.ActionNone when unknown.
func ScorePriority(email model.Email, suggestedAction model.Action) model.Priority {
	subject := normalizeText(email.Subject)
	content := normalizeText(email.Content)
	sender := normalizeText(email.Sender + " " + email.SenderEmail)
	combined := subject + " " + content

	// Early exits skip scoring entirely.
	if strings.Contains(subject, urgentSubjectPhrase) {
		return model.PriorityUrgent
	}
	if isSystemNotification(sender, combined) {
		return model.PriorityUpdate
	}

	score := 0.0

	// Marketing mail is driven to Low regardless of any other signal:
	// the penalty plus the skipped contributions guarantee the bucket.
	if isMarketing(sender, email.SenderEmail, combined) {
		score += marketingPenalty
		return bucket(score)
	}

	if containsAny(combined, meetingKeywords) {
		score += meetingBonus
	}

	score += timeUrgency(combined)
	score += senderImportance(sender, len(email.Recipients))

	score += criticalTermBonus * float64(countDistinct(combined, criticalBusinessTerms))

	questions := strings.Count(combined, "?")
	qScore := questionBonus * float64(questions)
	if qScore > maxQuestionBonus {
		qScore = maxQuestionBonus
	}
	score += qScore

	if containsAny(combined, collaborationKeywords) {
		score += collaborationBonus
	}
	if containsAny(combined, socialKeywords) {
		score += socialBonus
	}

	aScore := actionPhraseBonus * float64(countDistinct(combined, actionUrgencyPhrases))
	if aScore > maxActionBonus {
		aScore = maxActionBonus
	}
	score += aScore

	if suggestedAction == model.ActionReply && inExistingThread(email) {
		score -= threadReplyDiscount
	}

	return bucket(score)
}

// isSystemNotification reports whether the message looks like a routine
// machine-generated notice: an automated sender plus unremarkable
// subject matter.
func isSystemNotification(sender, combined string) bool {
	return containsAny(sender, systemSenderPatterns) &&
		containsAny(combined, routineSubjectPatterns)
}

// isMarketing applies the four bulk-mail tests: promotional language,
// newsletter plumbing, a marketing sender local-part, and known bulk
// sender domains.
func isMarketing(sender, senderEmail, combined string) bool {
	if containsAny(combined, promotionalPhrases) {
		return true
	}
	if containsAny(combined, newsletterPhrases) {
		return true
	}

	addr := strings.ToLower(strings.TrimSpace(senderEmail))
	local, domain, found := strings.Cut(addr, "@")
	if !found {
		return containsAny(sender, promotionalPhrases)
	}

	for _, lp := range marketingLocalParts {
		if local == lp || strings.HasPrefix(local, lp+"+") || strings.HasPrefix(local, lp+".") {
			return true
		}
	}
	for _, d := range bulkMailDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}

	return false
}

// timeUrgency returns the bonus for the highest matching urgency tier.
// Tiers are exclusive; the meeting bonus is independent of them.
func timeUrgency(combined string) float64 {
	switch {
	case containsAny(combined, immediateTimePhrases):
		return immediateTimeBonus
	case containsAny(combined, sameDayTimePhrases):
		return sameDayTimeBonus
	case containsAny(combined, sameWeekTimePhrases):
		return sameWeekTimeBonus
	default:
		return 0
	}
}

// senderImportance scores who sent the message and how narrowly it was
// addressed. The two recipient-count checks overlap on purpose for
// counts of 0-2: both fire, matching the shipped scoring behavior.
func senderImportance(sender string, recipientCount int) float64 {
	score := 0.0

	if containsAny(sender, executiveTitles) {
		score += executiveBonus
	}
	if containsAny(sender, personalContactKeywords) {
		score += personalContactBonus
	}
	if recipientCount <= 3 {
		score += smallRecipientBonus
	}
	if recipientCount < 3 {
		score += smallRecipientBonus
	}

	return score
}

// inExistingThread reports whether the message is part of a thread that
// predates it.
func inExistingThread(email model.Email) bool {
	return email.ThreadID != "" && email.ThreadID != email.ID
}

// bucket maps the final score to a priority level.
func bucket(score float64) model.Priority {
	switch {
	case score >= urgentThreshold:
		return model.PriorityUrgent
	case score >= highThreshold:
		return model.PriorityHigh
	case score >= mediumThreshold:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}
