package classify

import (
	"strings"

	"github.com/nhle/mailpilot/internal/model"
)

// InferAction suggests a next step for the message. Checks run in
// strict order; reply and question tests precede forward tests, so a
// message carrying both infers a reply.
func InferAction(email model.Email) model.Action {
	subject := normalizeText(email.Subject)
	content := normalizeText(email.Content)
	sender := normalizeText(email.Sender + " " + email.SenderEmail)
	combined := subject + " " + content

	if containsAny(combined, replyIndicatorPhrases) || signedBySender(content, email.Sender) {
		return model.ActionReply
	}

	if strings.Contains(combined, "?") && !isReplySubject(subject) {
		return model.ActionReply
	}

	if containsAny(combined, forwardIndicatorPhrases) {
		return model.ActionForward
	}

	if isMarketing(sender, email.SenderEmail, combined) {
		return model.ActionDelete
	}

	if containsAny(combined, archiveIndicatorPhrases) {
		return model.ActionArchive
	}

	return model.ActionNone
}

// isReplySubject reports whether the subject marks the message as
// already part of a reply chain.
func isReplySubject(subject string) bool {
	return strings.HasPrefix(subject, "re:")
}

// signedBySender reports whether the body ends with the sender's bare
// first name, the usual sign-off of a personal message that expects an
// answer.
func signedBySender(content, senderName string) bool {
	if senderName == "" || senderName == "Unknown" {
		return false
	}

	fields := strings.Fields(senderName)
	if len(fields) == 0 {
		return false
	}
	first := strings.ToLower(fields[0])
	if len(first) < 2 {
		return false
	}

	trimmed := strings.TrimRight(content, " .,!")
	return strings.HasSuffix(trimmed, " "+first) || trimmed == first
}
