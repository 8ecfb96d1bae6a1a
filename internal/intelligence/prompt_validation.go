package intelligence

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minPromptLength = 10

	msgPromptTooShort = "Your request is too short. Please provide more detail about your learning goal."
	msgPromptUnclear  = "Your request seems unclear. Please use descriptive language to specify your goal."
)

// promptKeywords are common function words and intent verbs. A prompt with
// none of them is unlikely to be a sentence.
var promptKeywords = regexp.MustCompile(`\b(the|a|an|is|to|for|in|of|learn|become|add|remove|change|make|more|less)\b`)

// ValidatePrompt rejects trivially short or keyword-free requests before
// they reach the model. The returned message is empty when ok is true.
func ValidatePrompt(text string) (ok bool, message string) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minPromptLength {
		return false, msgPromptTooShort
	}
	if !promptKeywords.MatchString(strings.ToLower(text)) {
		return false, msgPromptUnclear
	}
	return true, ""
}

func checkPrompt(text string) error {
	if ok, msg := ValidatePrompt(text); !ok {
		return &ValidationError{Message: msg}
	}
	return nil
}
