package models

// Decision is the categorical hiring recommendation derived from the final
// score band.
type Decision string

const (
	DecisionStrongHire   Decision = "STRONG HIRE"
	DecisionConsider     Decision = "CONSIDER"
	DecisionLessConsider Decision = "LESS CONSIDER"
	DecisionReject       Decision = "REJECT"
)

// QAPair is one adjacent question/answer extracted from the conversation.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ScoredAnswer is one evaluated pair after model scoring and deterministic
// floor/bonus adjustments. ForcedZero overrides the model entirely.
// ScriptedSounding and ConfidenceWithoutContent are soft flags the model
// reports; aggregation carries them through without acting on them.
type ScoredAnswer struct {
	Question                 string  `json:"question"`
	Answer                   string  `json:"answer"`
	Communication            float64 `json:"communication"`
	Justification            float64 `json:"justification"`
	Reasoning                string  `json:"reasoning"`
	ForcedZero               bool    `json:"forced_zero"`
	ScriptedSounding         bool    `json:"scripted_sounding"`
	ConfidenceWithoutContent bool    `json:"confidence_without_content"`
}

// InterviewResult is the final record produced once, after the conversation
// is frozen.
type InterviewResult struct {
	FinalScore int      `json:"final_score"`
	Decision   Decision `json:"decision"`
	RedFlags   []string `json:"red_flags"`
	HRSummary  string   `json:"hr_summary"`
}
