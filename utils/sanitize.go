package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips every HTML tag from user supplied text and trims it.
func Sanitize(input string) string {
	return strings.TrimSpace(sanitizer.Sanitize(input))
}
