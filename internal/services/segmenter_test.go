package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empiric/hr-interviewer/internal/models"
)

func question(intent, text string) models.Turn {
	return models.Turn{Role: models.RoleAI, Type: models.TurnQuestion, Intent: intent, Text: text}
}

func answer(text string) models.Turn {
	return models.Turn{Role: models.RoleCandidate, Type: models.TurnAnswer, Text: text}
}

func TestExtractQAPairs_AdjacentPairs(t *testing.T) {
	conversation := models.Conversation{
		{Role: models.RoleAI, Type: models.TurnIntro, Intent: "intro", Text: "Hello, are you ready?"},
		answer("yes I am ready"),
		question("skills", "What technologies do you use?"),
		answer("Mostly Go and Postgres"),
		question("problem", "Tell me about a production incident."),
		answer("We had a memory leak"),
	}

	pairs := ExtractQAPairs(conversation)
	require.Len(t, pairs, 2)
	assert.Equal(t, "What technologies do you use?", pairs[0].Question)
	assert.Equal(t, "Mostly Go and Postgres", pairs[0].Answer)
	assert.Equal(t, "Tell me about a production incident.", pairs[1].Question)
	assert.Equal(t, "We had a memory leak", pairs[1].Answer)
}

func TestExtractQAPairs_DanglingQuestionDropped(t *testing.T) {
	conversation := models.Conversation{
		question("skills", "What do you work with?"),
		answer("Go services"),
		question("problem", "Describe a hard bug."),
	}

	pairs := ExtractQAPairs(conversation)
	require.Len(t, pairs, 1)
	assert.Equal(t, "What do you work with?", pairs[0].Question)
}

func TestExtractQAPairs_AnswerWithoutQuestionDropped(t *testing.T) {
	conversation := models.Conversation{
		answer("hello?"),
		question("skills", "What do you work with?"),
		answer("Go services"),
		answer("also some Python"),
	}

	// The second consecutive answer has no pending question.
	pairs := ExtractQAPairs(conversation)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Go services", pairs[0].Answer)
}

func TestExtractQAPairs_Empty(t *testing.T) {
	assert.Empty(t, ExtractQAPairs(nil))
	assert.Empty(t, ExtractQAPairs(models.Conversation{}))
}

func TestGroupAnswersByCategory_Buckets(t *testing.T) {
	conversation := models.Conversation{
		{Role: models.RoleAI, Type: models.TurnIntro, Intent: "intro", Text: "Hello"},
		answer("hi, ready"),
		question("skills", "What do you use?"),
		answer("Go and Kubernetes"),
		question("project", "What did you build?"),
		answer("A billing system"),
		question("challenge", "Hardest bug?"),
		answer("A race condition"),
	}

	groups := GroupAnswersByCategory(conversation)

	assert.Equal(t, "hi, ready", groups.Answers[models.CategoryIntro])
	assert.Equal(t, "Go and Kubernetes A billing system", groups.Answers[models.CategoryTechnical])
	assert.Equal(t, "A race condition", groups.Answers[models.CategoryProblem])

	assert.Equal(t, 1, groups.Coverage[models.CategoryIntro])
	assert.Equal(t, 2, groups.Coverage[models.CategoryTechnical])
	assert.Equal(t, 1, groups.Coverage[models.CategoryProblem])
	assert.Equal(t, 0, groups.Coverage[models.CategoryCommunication])
	assert.NotContains(t, groups.Answers, models.CategoryCommunication)
}

func TestGroupAnswersByCategory_UnknownIntentCarriesCategoryForward(t *testing.T) {
	conversation := models.Conversation{
		question("skills", "What do you use?"),
		answer("Go"),
		question("followup", "And besides that?"),
		answer("Terraform"),
	}

	groups := GroupAnswersByCategory(conversation)
	assert.Equal(t, "Go Terraform", groups.Answers[models.CategoryTechnical])
	assert.Equal(t, 2, groups.Coverage[models.CategoryTechnical])
}

func TestGroupAnswersByCategory_AnswerBeforeAnyKnownIntentDropped(t *testing.T) {
	conversation := models.Conversation{
		answer("hello?"),
		question("team", "How do you work with your team?"),
		answer("Daily standups and reviews"),
	}

	groups := GroupAnswersByCategory(conversation)
	assert.Equal(t, 0, groups.Coverage[models.CategoryIntro])
	assert.Equal(t, "Daily standups and reviews", groups.Answers[models.CategoryCommunication])
}
