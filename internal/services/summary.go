package services

import (
	"fmt"
	"math"
	"strings"

	"empiric/hr-interviewer/internal/models"
)

// DegenerateResult is the terminal record for an interview with no usable
// question/answer pairs at all.
func DegenerateResult() *models.InterviewResult {
	return &models.InterviewResult{
		FinalScore: 0,
		Decision:   models.DecisionReject,
		RedFlags:   []string{"No valid answers provided"},
		HRSummary:  "Candidate did not provide usable responses.",
	}
}

// DecisionFor maps a final score to its band. Boundaries are inclusive on
// the lower bound of each band.
func DecisionFor(finalScore int) models.Decision {
	switch {
	case finalScore >= 70:
		return models.DecisionStrongHire
	case finalScore >= 55:
		return models.DecisionConsider
	case finalScore >= 40:
		return models.DecisionLessConsider
	default:
		return models.DecisionReject
	}
}

// Aggregate combines scored answers into the final interview result. Each
// pair contributes up to 20 points (10 communication + 10 justification).
func Aggregate(scored []models.ScoredAnswer, redFlags []string) *models.InterviewResult {
	if len(scored) == 0 {
		return DegenerateResult()
	}

	total := 0.0
	for _, answer := range scored {
		total += answer.Communication + answer.Justification
	}
	maxPossible := float64(20 * len(scored))

	finalScore := int(math.Round(total / maxPossible * 100))
	decision := DecisionFor(finalScore)

	return &models.InterviewResult{
		FinalScore: finalScore,
		Decision:   decision,
		RedFlags:   redFlags,
		HRSummary:  BuildHRSummary(finalScore, decision, redFlags, scored),
	}
}

// BuildHRSummary renders the narrative summary from aggregate statistics.
// It is template-driven; no model call is involved.
func BuildHRSummary(finalScore int, decision models.Decision, redFlags []string, scored []models.ScoredAnswer) string {
	var strengths []string
	var weaknesses []string
	var riskPatterns []string
	seenRisks := make(map[string]bool)

	addRisk := func(risk string) {
		if !seenRisks[risk] {
			seenRisks[risk] = true
			riskPatterns = append(riskPatterns, risk)
		}
	}

	avgComm := 0.0
	avgJust := 0.0
	for _, answer := range scored {
		avgComm += answer.Communication
		avgJust += answer.Justification

		if answer.Communication >= 7 && answer.Justification >= 6 {
			strengths = append(strengths, answer.Question)
		}
		if answer.Justification <= 3 {
			weaknesses = append(weaknesses, answer.Question)
		}

		reasoning := strings.ToLower(answer.Reasoning)
		if strings.Contains(reasoning, "vague") || strings.Contains(reasoning, "unclear") {
			addRisk("lack of clarity in explanations")
		}
		if strings.Contains(reasoning, "no examples") || strings.Contains(reasoning, "lacked examples") {
			addRisk("insufficient practical examples")
		}
	}

	count := float64(len(scored))
	if count == 0 {
		count = 1
	}
	avgComm /= count
	avgJust /= count

	var sentences []string

	switch {
	case avgComm >= 6:
		sentences = append(sentences, "The candidate communicated ideas clearly and was generally understandable.")
	case avgComm >= 4:
		sentences = append(sentences, "The candidate communicated with moderate clarity but was occasionally hard to follow.")
	default:
		sentences = append(sentences, "The candidate struggled to clearly communicate ideas during the interview.")
	}

	switch {
	case avgJust >= 6:
		sentences = append(sentences, "Responses demonstrated reasonable technical understanding and practical awareness.")
	case avgJust >= 4:
		sentences = append(sentences, "Technical explanations were basic and lacked consistent depth.")
	default:
		sentences = append(sentences, "Technical and problem-solving explanations were weak and lacked clarity.")
	}

	if len(strengths) > 0 {
		sentences = append(sentences, "Stronger responses were observed in: "+strings.Join(strengths, ", ")+".")
	}
	if len(weaknesses) > 0 {
		sentences = append(sentences, "Weaker or unclear responses were noted in: "+strings.Join(weaknesses, ", ")+".")
	}
	if len(riskPatterns) > 0 {
		sentences = append(sentences, "Common concerns included "+strings.Join(riskPatterns, ", ")+".")
	}
	if len(redFlags) > 0 {
		sentences = append(sentences, "Additional concerns were identified due to "+strings.Join(redFlags, "; ")+".")
	}

	switch decision {
	case models.DecisionStrongHire:
		sentences = append(sentences, "Based on consistent communication skills and acceptable technical reasoning, the candidate is considered a strong fit.")
	case models.DecisionConsider:
		sentences = append(sentences, "The candidate shows potential but would benefit from stronger technical depth and clearer explanations.")
	case models.DecisionLessConsider:
		sentences = append(sentences, "The candidate may be worth revisiting for junior roles but did not demonstrate sufficient depth for this position.")
	default:
		sentences = append(sentences, "Due to weak technical justification and inconsistent responses, the candidate is not recommended at this stage.")
	}

	sentences = append(sentences, fmt.Sprintf("The final interview score was %d/100, leading to a decision of %s.", finalScore, decision))

	return strings.Join(sentences, " ")
}
