package services

import (
	"regexp"
	"strings"
)

// AnswerCheck is the verdict of the local pre-scoring check. An invalid
// verdict unconditionally forces a zero score for the pair; a valid verdict
// may still carry an informational reason.
type AnswerCheck struct {
	Valid  bool
	Reason string
}

// Refusal patterns are matched against the lower-cased, trimmed answer,
// anchored at the start. Order matters: the first match wins.
var refusalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(i am|i'm)\s+(not able|unable)\s+to\b`),
	regexp.MustCompile(`^(i|we)\s+(cannot|can't)\s+(answer|tell|explain|handle)\b`),

	regexp.MustCompile(`^i\s*(do not|don't)\s*know\b`),
	regexp.MustCompile(`^no\s*idea\b`),
	regexp.MustCompile(`^not\s*sure\b`),

	regexp.MustCompile(`^(skip this|skip|pass this)\b`),
	regexp.MustCompile(`^nothing\s+to\s+say\b`),

	regexp.MustCompile(`^not\s+able\s+to\s+handle\b`),
	regexp.MustCompile(`^can't\s+handle\b`),
}

// ClassifyAnswer runs the purely local validity check on a transcribed
// answer. It never calls a model and must run before any scoring.
func ClassifyAnswer(answer string) AnswerCheck {
	if strings.TrimSpace(answer) == "" {
		return AnswerCheck{Valid: false, Reason: "Empty answer"}
	}

	cleaned := strings.ToLower(strings.TrimSpace(answer))

	for _, pattern := range refusalPatterns {
		if pattern.MatchString(cleaned) {
			return AnswerCheck{Valid: false, Reason: "Explicitly declined to answer"}
		}
	}

	if len(strings.Fields(cleaned)) < 5 {
		return AnswerCheck{Valid: true, Reason: "Very short answer"}
	}

	return AnswerCheck{Valid: true}
}
