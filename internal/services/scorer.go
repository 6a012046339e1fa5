package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"empiric/hr-interviewer/internal/models"
)

// Vocabularies for the deterministic post-scoring adjustments. Matching is
// case-insensitive substring containment against the answer text.
var toolSignals = []string{
	"django", "flask", "fastapi", "spring", "node",
	"aws", "gcp", "azure", "docker", "kubernetes",
	"postgres", "mysql", "mongodb", "redis",
	"react", "angular", "vue",
	"api", "microservice", "service", "backend",
	"ci/cd", "deployment", "production",
}

var problemSignals = []string{
	"issue", "problem", "bug", "error", "failure",
	"latency", "performance", "scaling", "downtime",
	"timeout", "crash", "bottleneck",
}

var actionSignals = []string{
	"fixed", "solved", "implemented", "designed",
	"optimized", "refactored", "debugged",
	"improved", "migrated", "handled",
}

var seniorSignals = []string{
	"years of experience",
	"production",
	"owned",
	"maintained",
	"deployment",
	"services",
	"architecture",
	"clients",
	"real users",
}

func containsAny(text string, signals []string) bool {
	for _, signal := range signals {
		if strings.Contains(text, signal) {
			return true
		}
	}
	return false
}

// EnforceRealWorldFloors raises justification (and sometimes communication)
// when the answer names real tools or a concrete problem plus a corrective
// action. Runs after model scoring and before the experience bonus. The
// max-based floors make repeated application a no-op.
func EnforceRealWorldFloors(answer string, comm, just float64) (float64, float64) {
	if strings.TrimSpace(answer) == "" {
		return comm, just
	}

	text := strings.ToLower(answer)

	hasTools := containsAny(text, toolSignals)
	hasProblem := containsAny(text, problemSignals)
	hasAction := containsAny(text, actionSignals)

	if hasTools {
		just = max(just, 5.0)
	}
	if hasProblem && hasAction {
		just = max(just, 6.0)
	}
	if hasProblem && hasAction && comm < 6 {
		comm = max(comm, 5.5)
	}

	return comm, just
}

// ApplyExperienceBonus bumps both scores when the answer carries at least
// two seniority signals, capped at 10. Capping keeps the bonus idempotent
// only per application; callers apply it exactly once per answer.
func ApplyExperienceBonus(answer string, comm, just float64) (float64, float64) {
	text := strings.ToLower(answer)

	signalCount := 0
	for _, signal := range seniorSignals {
		if strings.Contains(text, signal) {
			signalCount++
		}
	}

	if signalCount >= 2 {
		just = min(just+1.6, 10)
		comm = min(comm+1.0, 10)
	}

	return comm, just
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// batchScoreEntry mirrors one element of the model's "results" array.
type batchScoreEntry struct {
	Question                 string  `json:"question"`
	Communication            float64 `json:"communication"`
	Justification            float64 `json:"justification"`
	ConfidenceWithoutContent bool    `json:"confidence_without_content"`
	ScriptedSounding         bool    `json:"scripted_sounding"`
	Reasoning                string  `json:"reasoning"`
}

// InterviewScorer converts a frozen conversation into scored answers and a
// final interview result. It is the only component that talks to the model
// during scoring, in one batched call for all pairs.
type InterviewScorer interface {
	EvaluateConversation(ctx context.Context, conversation models.Conversation) *models.InterviewResult
	ScorePairs(ctx context.Context, pairs []models.QAPair) ([]models.ScoredAnswer, []string)
}

type interviewScorer struct {
	model      TextGenerator
	prompts    *PromptBuilder
	maxRetries int
	logger     *zap.Logger
}

func NewInterviewScorer(model TextGenerator, maxRetries int, log *zap.Logger) InterviewScorer {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &interviewScorer{
		model:      model,
		prompts:    NewPromptBuilder(),
		maxRetries: maxRetries,
		logger:     log,
	}
}

// EvaluateConversation implements InterviewScorer.
func (s *interviewScorer) EvaluateConversation(ctx context.Context, conversation models.Conversation) *models.InterviewResult {
	pairs := ExtractQAPairs(conversation)
	if len(pairs) == 0 {
		s.logger.Warn("no valid question/answer pairs in conversation")
		return DegenerateResult()
	}

	scored, redFlags := s.ScorePairs(ctx, pairs)
	return Aggregate(scored, redFlags)
}

// ScorePairs implements InterviewScorer. The classifier verdict for each
// answer is computed first and overrides the model unconditionally.
func (s *interviewScorer) ScorePairs(ctx context.Context, pairs []models.QAPair) ([]models.ScoredAnswer, []string) {
	forced := make([]bool, len(pairs))
	var redFlags []string
	for i, pair := range pairs {
		check := ClassifyAnswer(pair.Answer)
		if !check.Valid {
			forced[i] = true
			redFlags = append(redFlags, fmt.Sprintf("Question %d: %s", i+1, check.Reason))
		}
	}

	results := s.scoreBatch(ctx, pairs)

	scored := make([]models.ScoredAnswer, 0, len(pairs))
	for i, pair := range pairs {
		answer := models.ScoredAnswer{
			Question:   pair.Question,
			Answer:     pair.Answer,
			ForcedZero: forced[i],
		}

		switch {
		case forced[i]:
			answer.Communication = 0
			answer.Justification = 0

		case i >= len(results):
			answer.Communication = 4.0
			answer.Justification = 4.0
			answer.Reasoning = "Scoring fallback due to incomplete model response"

		default:
			entry := results[i]
			comm := entry.Communication
			just := entry.Justification

			comm, just = EnforceRealWorldFloors(pair.Answer, comm, just)
			comm, just = ApplyExperienceBonus(pair.Answer, comm, just)

			answer.Communication = clampScore(comm)
			answer.Justification = clampScore(just)
			answer.Reasoning = entry.Reasoning
			answer.ScriptedSounding = entry.ScriptedSounding
			answer.ConfidenceWithoutContent = entry.ConfidenceWithoutContent
		}

		scored = append(scored, answer)
	}

	return scored, redFlags
}

// scoreBatch runs the single batched model call. A response that cannot be
// parsed into the expected structure yields an empty slice; the per-pair
// fallback above absorbs it.
func (s *interviewScorer) scoreBatch(ctx context.Context, pairs []models.QAPair) []batchScoreEntry {
	prompt := s.prompts.BuildBatchScoringPrompt(pairs)

	raw, err := s.model.GenerateTextWithRetry(ctx, prompt, 0.1, s.maxRetries)
	if err != nil {
		s.logger.Error("batch scoring model call failed", zap.Error(err))
		return nil
	}

	result := ParseModelResult(raw)
	if result.Kind != ModelResultStructured {
		s.logger.Error("batch scoring returned non-structured response",
			zap.Int("kind", int(result.Kind)),
		)
		return nil
	}

	var parsed struct {
		Results []batchScoreEntry `json:"results"`
	}
	if err := json.Unmarshal(result.JSON, &parsed); err != nil {
		s.logger.Error("failed to decode batch scoring results", zap.Error(err))
		return nil
	}

	for i := range parsed.Results {
		parsed.Results[i].Communication = clampScore(parsed.Results[i].Communication)
		parsed.Results[i].Justification = clampScore(parsed.Results[i].Justification)
	}

	return parsed.Results
}
