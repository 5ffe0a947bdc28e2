package catalog

import (
	"strconv"
	"strings"
)

// ParsePrice extracts a usable price from free-form price text. Everything but
// digits and the decimal point is stripped before parsing. Empty, non-numeric,
// zero, and negative results all report false: a zero or negative price means
// "no usable price", not a free item.
func ParsePrice(text string) (float64, bool) {
	var cleaned strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			cleaned.WriteRune(r)
		}
	}
	if cleaned.Len() == 0 {
		return 0, false
	}

	value, err := strconv.ParseFloat(cleaned.String(), 64)
	if err != nil {
		return 0, false
	}
	if value <= 0 {
		return 0, false
	}
	return value, true
}

// MatchesKeywords reports whether any keyword occurs, case-insensitively, in
// the title or in the flattened category-path text.
func MatchesKeywords(title, categoryPath string, keywords []string) bool {
	title = strings.ToLower(title)
	categoryPath = strings.ToLower(categoryPath)
	for _, keyword := range keywords {
		keyword = strings.ToLower(keyword)
		if strings.Contains(title, keyword) || strings.Contains(categoryPath, keyword) {
			return true
		}
	}
	return false
}
