package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type Role string

const (
	RoleAI        Role = "ai"
	RoleCandidate Role = "candidate"
)

type TurnType string

const (
	TurnIntro    TurnType = "intro"
	TurnQuestion TurnType = "question"
	TurnAnswer   TurnType = "answer"
)

// Turn is one atomic event in the conversation log: the AI intro, an AI
// question, or a candidate answer. Intent is the raw intent label the model
// attached to a question ("skills", "project", ...); candidate turns carry
// none.
type Turn struct {
	Role   Role     `json:"role"`
	Type   TurnType `json:"type"`
	Intent string   `json:"intent,omitempty"`
	Text   string   `json:"text"`
}

// Conversation is the ordered turn log for one call. Order is chronological
// and meaningful for segmentation; turns are only ever appended.
type Conversation []Turn

func (c Conversation) Value() (driver.Value, error) {
	if c == nil {
		c = Conversation{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conversation: %w", err)
	}
	return string(data), nil
}

func (c *Conversation) Scan(value interface{}) error {
	if value == nil {
		*c = Conversation{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported conversation column type %T", value)
	}

	if len(data) == 0 {
		*c = Conversation{}
		return nil
	}
	return json.Unmarshal(data, c)
}

// AnswerTexts returns the candidate answer texts in conversation order.
func (c Conversation) AnswerTexts() []string {
	var answers []string
	for _, turn := range c {
		if turn.Role == RoleCandidate && turn.Type == TurnAnswer {
			answers = append(answers, turn.Text)
		}
	}
	return answers
}

// QuestionCount counts AI question turns (the intro does not count).
func (c Conversation) QuestionCount() int {
	count := 0
	for _, turn := range c {
		if turn.Role == RoleAI && turn.Type == TurnQuestion {
			count++
		}
	}
	return count
}

// Category is the topic bucket a question targets. Raw intent labels map
// many-to-one onto these four buckets.
type Category string

const (
	CategoryIntro         Category = "INTRO"
	CategoryTechnical     Category = "TECHNICAL"
	CategoryProblem       Category = "PROBLEM"
	CategoryCommunication Category = "COMMUNICATION"
)

var intentCategories = map[string]Category{
	"intro":           CategoryIntro,
	"technical":       CategoryTechnical,
	"skills":          CategoryTechnical,
	"project":         CategoryTechnical,
	"problem":         CategoryProblem,
	"problem_solving": CategoryProblem,
	"challenge":       CategoryProblem,
	"communication":   CategoryCommunication,
	"team":            CategoryCommunication,
}

// CategoryForIntent maps a raw intent label to its category. Unknown labels
// return ok=false so callers can carry the previous category forward.
func CategoryForIntent(intent string) (Category, bool) {
	category, ok := intentCategories[intent]
	return category, ok
}

// Categories lists all buckets in rendering order.
func Categories() []Category {
	return []Category{CategoryIntro, CategoryTechnical, CategoryProblem, CategoryCommunication}
}
