package classify

import "github.com/nhle/mailpilot/internal/model"

// AnalyzeSentiment derives the overall tone of the given text. A
// critical word co-occurring with any negative match escalates straight
// to Critical; otherwise one polarity must dominate the other by more
// than 2x to leave Neutral.
func AnalyzeSentiment(text string) model.Sentiment {
	normalized := normalizeText(text)

	positive := countDistinct(normalized, positiveWords)
	negative := countDistinct(normalized, negativeWords)

	if negative > 0 && containsAny(normalized, criticalWords) {
		return model.SentimentCritical
	}

	switch {
	case positive > 2*negative:
		return model.SentimentPositive
	case negative > 2*positive:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}
