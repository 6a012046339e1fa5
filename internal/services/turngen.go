package services

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"empiric/hr-interviewer/internal/config"
	"empiric/hr-interviewer/internal/logger"
	"empiric/hr-interviewer/internal/models"
)

type TurnAction string

const (
	ActionAskQuestion  TurnAction = "ask_question"
	ActionEndInterview TurnAction = "end_interview"
)

// AITurn is the next move in the interview: either a question to speak or
// an end decision with its reason.
type AITurn struct {
	Action TurnAction
	Intent string
	Text   string
	Reason string
}

// endKeywords are matched as substrings of lower-cased answers when
// counting refusals for the hard-stop rules.
var endKeywords = []string{
	"i don't know",
	"no idea",
	"skip",
	"not sure",
	"cannot answer",
	"can't handle",
}

const shortAnswerWords = 3

type TurnGenerator interface {
	// ShouldEnd decides whether the interview is over. The deterministic
	// rules run first and bound interview length even if the model never
	// chooses to end; the model only gets discretion after them.
	ShouldEnd(ctx context.Context, conversation models.Conversation) (bool, string)
	// NextTurn returns the end decision or the next adaptive question.
	NextTurn(ctx context.Context, conversation models.Conversation) AITurn
}

type turnGenerator struct {
	model     TextGenerator
	knowledge ContextRetriever
	prompts   *PromptBuilder
	script    *config.InterviewScript
	logger    *zap.Logger
}

// NewTurnGenerator builds the turn generator. knowledge may be nil; the
// question prompt then carries no role context.
func NewTurnGenerator(
	model TextGenerator,
	knowledge ContextRetriever,
	script *config.InterviewScript,
	log *zap.Logger,
) TurnGenerator {
	return &turnGenerator{
		model:     model,
		knowledge: knowledge,
		prompts:   NewPromptBuilder(),
		script:    script,
		logger:    log,
	}
}

// ShouldEnd implements TurnGenerator.
func (t *turnGenerator) ShouldEnd(ctx context.Context, conversation models.Conversation) (bool, string) {
	answers := conversation.AnswerTexts()

	refusals := 0
	veryShort := 0
	for _, answer := range answers {
		lowered := strings.ToLower(answer)
		for _, keyword := range endKeywords {
			if strings.Contains(lowered, keyword) {
				refusals++
				break
			}
		}
		if len(strings.Fields(answer)) <= shortAnswerWords {
			veryShort++
		}
	}

	if refusals >= t.script.MaxRefusals {
		return true, "Too many unanswered questions"
	}
	if veryShort >= t.script.MaxShortAnswers {
		return true, "Insufficient detail in responses"
	}
	if len(answers) >= t.script.MaxAnswers {
		return true, "Interview length reached"
	}

	return t.modelEndCheck(ctx, conversation)
}

// modelEndCheck delegates the discretionary end decision to the model. Any
// failure to obtain a valid structured response means the interview goes on.
func (t *turnGenerator) modelEndCheck(ctx context.Context, conversation models.Conversation) (bool, string) {
	raw, err := t.model.GenerateText(ctx, t.prompts.BuildEndCheckPrompt(conversation), 0.2)
	if err != nil {
		t.logger.Warn("end check model call failed, continuing interview", zap.Error(err))
		return false, ""
	}

	result := ParseModelResult(raw)
	if result.Kind != ModelResultStructured {
		t.logger.Warn("end check returned non-structured response, continuing interview",
			zap.String("preview", logger.Truncate(raw, 120)),
		)
		return false, ""
	}

	var decision struct {
		End    bool   `json:"end"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(result.JSON, &decision); err != nil {
		return false, ""
	}
	return decision.End, decision.Reason
}

// NextTurn implements TurnGenerator.
func (t *turnGenerator) NextTurn(ctx context.Context, conversation models.Conversation) AITurn {
	if end, reason := t.ShouldEnd(ctx, conversation); end {
		return AITurn{Action: ActionEndInterview, Reason: reason}
	}
	return t.nextQuestion(ctx, conversation)
}

func (t *turnGenerator) nextQuestion(ctx context.Context, conversation models.Conversation) AITurn {
	roleContext := ""
	if t.knowledge != nil {
		retrieved, err := t.knowledge.RetrieveContext(ctx, t.prompts.BuildKnowledgeQuery(conversation))
		if err != nil {
			t.logger.Warn("knowledge retrieval failed, generating without context", zap.Error(err))
		} else {
			roleContext = retrieved
		}
	}

	fallback := AITurn{
		Action: ActionAskQuestion,
		Intent: "general",
		Text:   t.script.FallbackQuestion,
	}

	raw, err := t.model.GenerateTextWithRetry(ctx, t.prompts.BuildNextQuestionPrompt(conversation, roleContext), 0.7, 2)
	if err != nil {
		t.logger.Warn("question generation failed, using fallback question", zap.Error(err))
		return fallback
	}

	result := ParseModelResult(raw)
	if result.Kind != ModelResultStructured {
		t.logger.Warn("question generation returned non-structured response, using fallback",
			zap.String("preview", logger.Truncate(raw, 120)),
		)
		return fallback
	}

	var generated struct {
		Action string `json:"action"`
		Intent string `json:"intent"`
		Text   string `json:"text"`
	}
	if err := json.Unmarshal(result.JSON, &generated); err != nil {
		return fallback
	}

	turn := AITurn{Action: ActionAskQuestion, Intent: generated.Intent, Text: strings.TrimSpace(generated.Text)}
	if turn.Intent == "" {
		turn.Intent = "general"
	}
	if turn.Text == "" {
		turn.Text = t.script.FallbackQuestion
	}
	return turn
}
