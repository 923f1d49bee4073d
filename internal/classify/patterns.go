package classify

// Keyword and pattern tables driving the deterministic classifier.
// All matching happens against normalized (lowercased, whitespace
// collapsed) text, so every entry here is lowercase.

// urgentSubjectPhrase short-circuits scoring entirely.
const urgentSubjectPhrase = "immediate response required"

// systemSenderPatterns identify automated senders. A message is treated
// as a routine system notification only when one of these co-occurs
// with a routine subject pattern.
var systemSenderPatterns = []string{
	"automated",
	"postmaster",
	"noreply",
	"no-reply",
	"no_reply",
	"donotreply",
	"do-not-reply",
	"mailer-daemon",
	"notifications@",
	"system@",
}

// routineSubjectPatterns mark unremarkable machine-generated content.
var routineSubjectPatterns = []string{
	"backup complete",
	"backup completed",
	"backup successful",
	"build succeeded",
	"build passed",
	"cron job",
	"scheduled maintenance",
	"report generated",
	"weekly report",
	"password was changed",
	"sign-in from",
	"login from",
	"receipt for",
	"delivery status",
}

// promotionalPhrases flag marketing language in the subject or body.
var promotionalPhrases = []string{
	"% off",
	"percent off",
	"flash sale",
	"limited time",
	"special offer",
	"exclusive offer",
	"exclusive deal",
	"discount",
	"clearance",
	"coupon",
	"free shipping",
	"buy now",
	"shop now",
	"save big",
	"best deal",
	"don't miss",
	"act now",
	"today only",
	"last chance",
}

// newsletterPhrases flag bulk-mail plumbing language.
var newsletterPhrases = []string{
	"unsubscribe",
	"opt out",
	"opt-out",
	"newsletter",
	"email preferences",
	"manage your subscription",
	"manage subscriptions",
	"view in browser",
	"view this email in your browser",
	"you are receiving this email",
	"update your preferences",
}

// marketingLocalParts are sender local-parts characteristic of bulk
// senders.
var marketingLocalParts = []string{
	"deals",
	"offers",
	"promo",
	"promotions",
	"marketing",
	"newsletter",
	"sales",
	"specials",
	"rewards",
	"savings",
}

// bulkMailDomains are domains of known bulk senders and email service
// providers. Matched as suffixes of the sender domain.
var bulkMailDomains = []string{
	"mailchimp.com",
	"mcsv.net",
	"sendgrid.net",
	"mailgun.org",
	"amazonses.com",
	"constantcontact.com",
	"campaign-monitor.com",
	"createsend.com",
	"hubspotemail.net",
	"marketo.com",
	"exacttarget.com",
	"substack.com",
	"mailjet.com",
	"sparkpostmail.com",
}

// meetingKeywords earn the single scheduling bonus.
var meetingKeywords = []string{
	"meeting",
	"schedule",
	"reschedule",
	"availability",
	"discuss",
	"appointment",
	"calendar invite",
	"sync up",
	"catch up",
	"1:1",
	"one-on-one",
}

// Time-urgency tiers. Only the highest matching tier fires.
var (
	immediateTimePhrases = []string{
		"right now",
		"immediately",
		"urgent",
		"asap",
		"as soon as possible",
		"by eod",
		"by end of day",
		"end of day",
	}
	sameDayTimePhrases = []string{
		"today",
		"tonight",
		"this afternoon",
		"this evening",
	}
	sameWeekTimePhrases = []string{
		"this week",
		"by friday",
		"by monday",
		"end of week",
		"by eow",
	}
)

// executiveTitles mark senders likely to matter.
var executiveTitles = []string{
	"ceo",
	"cto",
	"cfo",
	"coo",
	"chief",
	"president",
	"vice president",
	"vp ",
	"director",
	"founder",
	"head of",
	"managing partner",
}

// personalContactKeywords mark senders from the user's personal circle.
var personalContactKeywords = []string{
	"mom",
	"dad",
	"mum",
	"grandma",
	"grandpa",
	"family",
	"brother",
	"sister",
}

// criticalBusinessTerms each add to the score once per distinct term.
var criticalBusinessTerms = []string{
	"contract",
	"deadline",
	"outage",
	"breach",
	"lawsuit",
	"invoice",
	"payment",
	"compliance",
	"audit",
	"incident",
	"escalation",
	"budget",
	"renewal",
	"termination",
}

// collaborationKeywords earn the partnership bonus once.
var collaborationKeywords = []string{
	"collaboration",
	"partnership",
	"team up",
	"work together",
	"joint venture",
}

// socialKeywords earn the personal-event bonus once.
var socialKeywords = []string{
	"party",
	"dinner",
	"lunch",
	"rsvp",
	"birthday",
	"wedding",
	"anniversary",
	"celebration",
	"drinks",
	"barbecue",
	"get together",
}

// actionUrgencyPhrases each add to the score, capped.
var actionUrgencyPhrases = []string{
	"please respond",
	"please reply",
	"let me know",
	"can you",
	"could you",
	"would you",
	"please review",
	"please confirm",
	"please advise",
	"get back to me",
	"your thoughts",
}

// replyIndicatorPhrases directly suggest a reply is expected.
var replyIndicatorPhrases = []string{
	"please respond",
	"please reply",
	"let me know",
	"what do you think",
	"waiting for your response",
	"waiting to hear",
	"get back to me",
	"your thoughts",
	"would love to hear",
}

// forwardIndicatorPhrases suggest the message should be passed along.
var forwardIndicatorPhrases = []string{
	"please forward",
	"forward this",
	"pass this along",
	"pass it along",
	"share this with",
	"share with your",
	"loop in",
}

// archiveIndicatorPhrases suggest the message is informational only.
var archiveIndicatorPhrases = []string{
	"fyi",
	"for your information",
	"for your records",
	"no action needed",
	"no action required",
	"no reply needed",
	"just so you know",
	"heads up",
}

// Sentiment word lists.
var (
	positiveWords = []string{
		"thanks", "thank you", "great", "excellent", "awesome",
		"congratulations", "congrats", "appreciate", "wonderful",
		"fantastic", "well done", "happy", "glad", "pleased",
		"perfect", "love",
	}
	negativeWords = []string{
		"problem", "issue", "error", "failed", "failure",
		"disappointed", "unacceptable", "complaint", "wrong",
		"broken", "delay", "delayed", "missed", "concern",
		"unhappy", "frustrated", "angry", "cancel",
	}
	criticalWords = []string{
		"urgent", "emergency", "breach", "lawsuit", "critical",
		"outage", "disaster",
	}
)

// Category keyword sets, tested in categoryOrder priority.
var categoryKeywords = map[string][]string{
	"Meeting": {
		"meeting", "schedule", "calendar", "appointment", "invite",
		"agenda", "availability",
	},
	"Project": {
		"project", "milestone", "sprint", "release", "roadmap",
		"launch", "deliverable", "task",
	},
	"Finance": {
		"invoice", "payment", "budget", "expense", "receipt",
		"billing", "salary", "reimbursement",
	},
	"Support": {
		"support", "ticket", "issue", "bug", "help desk",
		"troubleshoot", "resolved",
	},
	"Client": {
		"client", "customer", "account", "proposal", "contract",
		"quote",
	},
	"HR": {
		"hr", "human resources", "benefits", "payroll", "vacation",
		"time off", "onboarding", "performance review",
	},
	"Newsletter": {
		"newsletter", "digest", "weekly update", "roundup",
		"subscribe",
	},
	"Marketing": {
		"sale", "discount", "offer", "promotion", "campaign",
		"coupon",
	},
	"Social": {
		"party", "dinner", "lunch", "birthday", "wedding",
		"rsvp", "celebration",
	},
}

// categoryOrder is the fixed priority order for returned categories.
var categoryOrder = []string{
	"Meeting",
	"Project",
	"Finance",
	"Support",
	"Client",
	"HR",
	"Newsletter",
	"Marketing",
	"Social",
}
