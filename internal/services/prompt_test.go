package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"empiric/hr-interviewer/internal/models"
)

func TestFormatConversation(t *testing.T) {
	pb := NewPromptBuilder()

	conversation := models.Conversation{
		{Role: models.RoleAI, Type: models.TurnIntro, Intent: "intro", Text: "Hello"},
		question("skills", "What do you use?"),
		answer("Go and Postgres"),
	}

	formatted := pb.FormatConversation(conversation)
	lines := strings.Split(formatted, "\n")

	assert.Equal(t, "AI [intro/intro]: Hello", lines[0])
	assert.Equal(t, "AI [question/skills]: What do you use?", lines[1])
	assert.Equal(t, "CANDIDATE: Go and Postgres", lines[2])
}

func TestBuildNextQuestionPrompt_WithAndWithoutContext(t *testing.T) {
	pb := NewPromptBuilder()
	conversation := models.Conversation{question("skills", "Q1?")}

	withContext := pb.BuildNextQuestionPrompt(conversation, "[job_description] Senior Go engineer")
	assert.Contains(t, withContext, "Role context")
	assert.Contains(t, withContext, "Senior Go engineer")

	withoutContext := pb.BuildNextQuestionPrompt(conversation, "  ")
	assert.NotContains(t, withoutContext, "Role context")
}

func TestBuildBatchScoringPrompt_NumbersPairs(t *testing.T) {
	pb := NewPromptBuilder()

	prompt := pb.BuildBatchScoringPrompt([]models.QAPair{
		{Question: "What do you use?", Answer: "Go"},
		{Question: "Hardest bug?", Answer: "A deadlock"},
	})

	assert.Contains(t, prompt, "Q1: What do you use?")
	assert.Contains(t, prompt, "Q2: Hardest bug?")
	assert.Contains(t, prompt, `"results"`)
}

func TestBuildKnowledgeQuery(t *testing.T) {
	pb := NewPromptBuilder()

	assert.Equal(t,
		"interview opening questions for a software engineering candidate",
		pb.BuildKnowledgeQuery(models.Conversation{}))

	conversation := models.Conversation{
		question("skills", "Q1?"), answer("first answer"),
		question("project", "Q2?"), answer("second answer"),
		question("problem", "Q3?"), answer("third answer"),
	}
	assert.Equal(t, "second answer third answer", pb.BuildKnowledgeQuery(conversation))
}
