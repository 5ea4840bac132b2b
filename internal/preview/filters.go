package preview

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joaosnet/gitfolio/internal/models"
)

// avatarHost serves user and organization avatars, never content screenshots.
const avatarHost = "avatars.githubusercontent.com"

// badgeURLKeywords mark known badge and CI-status image services.
var badgeURLKeywords = []string{
	"shields.io",
	"badge",
	"codecov",
	"travis",
	"circleci",
	".github/workflows",
}

// badgeAltLabels is the closed set of alt texts used by common inline badges.
var badgeAltLabels = map[string]struct{}{
	"build":     {},
	"status":    {},
	"coverage":  {},
	"license":   {},
	"version":   {},
	"downloads": {},
}

// rejectMention applies the badge and avatar exclusion rules to a single
// README image mention. A non-empty reason means the mention is skipped.
func rejectMention(m models.ImageMention) string {
	lowerURL := strings.ToLower(m.URL)
	for _, keyword := range badgeURLKeywords {
		if strings.Contains(lowerURL, keyword) {
			return "badge service URL"
		}
	}

	if strings.Contains(m.URL, avatarHost) {
		return "avatar host"
	}

	if _, ok := badgeAltLabels[strings.ToLower(m.AltText)]; ok {
		return "badge alt text"
	}

	if utf8.RuneCountInString(m.AltText) < 20 && isAllUpper(m.AltText) {
		return "short upper-case alt text"
	}

	return ""
}

// isAllUpper reports whether s contains at least one letter and no lower-case
// letters, the shape of undescriptive status-badge alt texts.
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
