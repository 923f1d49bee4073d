package classify

// maxCategories caps how many category labels a message receives.
const maxCategories = 3

// Categorize tests the text against each category keyword set and
// returns up to maxCategories matches in the fixed priority order.
// Messages matching nothing get the General label.
func Categorize(text string) []string {
	normalized := normalizeText(text)

	var matches []string
	for _, category := range categoryOrder {
		if containsAny(normalized, categoryKeywords[category]) {
			matches = append(matches, category)
			if len(matches) == maxCategories {
				break
			}
		}
	}

	if len(matches) == 0 {
		return []string{"General"}
	}
	return matches
}
