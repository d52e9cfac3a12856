package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizePolicy = bluemonday.StrictPolicy()

// Sanitize strips any markup from user-supplied free text (block reasons,
// wallet labels) before it reaches storage or admin views.
func Sanitize(input string) string {
	return sanitizePolicy.Sanitize(input)
}
