package survey

import "strings"

// Survey status strings.
const (
	StatusPublished = "Published"
	StatusDraft     = "Draft"
)

// ParseStatus reports whether a "|"-delimited status token list marks the
// survey as active. Tokens compare case-insensitively.
func ParseStatus(status string) bool {
	for _, tok := range strings.Split(status, "|") {
		if strings.EqualFold(strings.TrimSpace(tok), StatusPublished) {
			return true
		}
	}
	return false
}

// StatusString renders the active flag as a status string.
func StatusString(active bool) string {
	if active {
		return StatusPublished
	}
	return StatusDraft
}
