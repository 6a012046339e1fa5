package services

import (
	"strings"

	"empiric/hr-interviewer/internal/models"
)

// pairAccumulator is the fold state for QA pair extraction: the pending
// question text, or empty when no question is awaiting an answer.
type pairAccumulator struct {
	pending string
	pairs   []models.QAPair
}

func (acc pairAccumulator) step(turn models.Turn) pairAccumulator {
	switch {
	case turn.Role == models.RoleAI && turn.Type == models.TurnQuestion:
		acc.pending = turn.Text
	case turn.Role == models.RoleCandidate && turn.Type == models.TurnAnswer && acc.pending != "":
		acc.pairs = append(acc.pairs, models.QAPair{Question: acc.pending, Answer: turn.Text})
		acc.pending = ""
	}
	return acc
}

// ExtractQAPairs walks the conversation in order and emits one pair per
// adjacent (question, answer). An answer with no pending question is
// dropped, as is a question that never got an answer. The AI intro never
// opens a pair.
func ExtractQAPairs(conversation models.Conversation) []models.QAPair {
	acc := pairAccumulator{}
	for _, turn := range conversation {
		acc = acc.step(turn)
	}
	return acc.pairs
}

// CategoryGroups is the per-category view of all candidate answers: each
// bucket holds its answers joined with a single space, and Coverage counts
// answers per bucket.
type CategoryGroups struct {
	Answers  map[models.Category]string
	Coverage map[models.Category]int
}

// groupAccumulator is the fold state for category grouping: the category of
// the most recent AI turn with a known intent, carried forward across turns
// whose intent does not map.
type groupAccumulator struct {
	current models.Category
	known   bool
	buckets map[models.Category][]string
}

func (acc groupAccumulator) step(turn models.Turn) groupAccumulator {
	switch turn.Role {
	case models.RoleAI:
		if category, ok := models.CategoryForIntent(turn.Intent); ok {
			acc.current = category
			acc.known = true
		}
	case models.RoleCandidate:
		if acc.known {
			acc.buckets[acc.current] = append(acc.buckets[acc.current], turn.Text)
		}
	}
	return acc
}

// GroupAnswersByCategory buckets candidate answers under the category of
// the last AI turn before them.
func GroupAnswersByCategory(conversation models.Conversation) CategoryGroups {
	acc := groupAccumulator{buckets: make(map[models.Category][]string)}
	for _, turn := range conversation {
		acc = acc.step(turn)
	}

	groups := CategoryGroups{
		Answers:  make(map[models.Category]string),
		Coverage: make(map[models.Category]int),
	}
	for _, category := range models.Categories() {
		answers := acc.buckets[category]
		groups.Coverage[category] = len(answers)
		if len(answers) > 0 {
			groups.Answers[category] = strings.TrimSpace(strings.Join(answers, " "))
		}
	}
	return groups
}
