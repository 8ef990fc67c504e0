package utils

import "github.com/microcosm-cc/bluemonday"

// Answers are plain text; the strict policy strips every HTML element so
// stored content can be rendered anywhere without escaping concerns.
var textPolicy = bluemonday.StrictPolicy()

// CleanText strips all HTML from user supplied content.
func CleanText(input string) string {
	return textPolicy.Sanitize(input)
}
