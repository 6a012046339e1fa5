package services

import (
	"fmt"
	"strings"

	"empiric/hr-interviewer/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// FormatConversation renders the turn log for inclusion in prompts.
func (pb *PromptBuilder) FormatConversation(conversation models.Conversation) string {
	var lines []string
	for _, turn := range conversation {
		role := strings.ToUpper(string(turn.Role))
		if turn.Role == models.RoleAI && turn.Intent != "" {
			lines = append(lines, fmt.Sprintf("%s [%s/%s]: %s", role, turn.Type, turn.Intent, turn.Text))
		} else {
			lines = append(lines, fmt.Sprintf("%s: %s", role, turn.Text))
		}
	}
	return strings.Join(lines, "\n")
}

// BuildEndCheckPrompt asks whether enough information has been gathered to
// evaluate the candidate.
func (pb *PromptBuilder) BuildEndCheckPrompt(conversation models.Conversation) string {
	return fmt.Sprintf(`You are a senior HR interviewer.

Conversation:
%s

Question:
Have you gathered enough information to evaluate this candidate?

Answer strictly as JSON:
{
  "end": true/false,
  "reason": "short reason"
}`, pb.FormatConversation(conversation))
}

// BuildNextQuestionPrompt asks for exactly one adaptive question. The role
// context is retrieved knowledge (job description, rubric snippets) and may
// be empty.
func (pb *PromptBuilder) BuildNextQuestionPrompt(conversation models.Conversation, roleContext string) string {
	contextBlock := ""
	if strings.TrimSpace(roleContext) != "" {
		contextBlock = fmt.Sprintf("\nRole context (job description and rubric excerpts):\n%s\n", roleContext)
	}

	return fmt.Sprintf(`You are a professional HR interviewer on a phone call.

Rules:
- Ask ONE clear question
- Adapt based on the candidate's last answer
- If the candidate sounds junior, simplify
- If experienced, go deeper
- Do NOT repeat a previously asked question topic
- Be natural and concise
%s
Conversation so far:
%s

Respond ONLY in JSON:
{
  "action": "ask",
  "intent": "intro|technical|problem|communication",
  "text": "question to ask"
}`, contextBlock, pb.FormatConversation(conversation))
}

// BuildBatchScoringPrompt builds the single batched evaluation prompt
// covering every question/answer pair. The rubric, floor rules, and soft
// flags are fixed; the model is told not to cap or normalize.
func (pb *PromptBuilder) BuildBatchScoringPrompt(pairs []models.QAPair) string {
	var qa strings.Builder
	for i, pair := range pairs {
		fmt.Fprintf(&qa, "\nQ%d: %s\nAnswer:\n%s\n", i+1, pair.Question, pair.Answer)
	}

	return fmt.Sprintf(`ROLE:
You are a professional HR evaluator assessing real-world software engineers.
Score answers based on the candidate's stated experience and practical exposure.

CONTEXT:
- Answers are generated from speech-to-text (STT)
- Ignore grammar mistakes, repetition, filler words, and accent issues
- Do NOT penalize informal or spoken phrasing
- Focus ONLY on professional meaning and substance

EVALUATION PRINCIPLES (NON-NEGOTIABLE):
- Evaluate EACH question independently
- Do NOT compare answers across questions
- Do NOT infer unstated skills or experience
- Concise but real answers are VALID
- Missing or explicit refusal answers MUST score 0

REAL-WORLD CREDIT RULES (CRITICAL):
- Mentioning real tools, frameworks, projects, clients, or years of experience
  MUST receive meaningful credit
- Listing multiple real technologies implies hands-on exposure
- Naming a real problem + constraint + action counts as valid problem-solving
- Do NOT penalize answers for lack of storytelling or structure (spoken interview)

INTRO QUESTION RULE:
- Mentioning years of experience + role + tools is sufficient
- Intro answers do NOT require metrics or achievements

SCORING RUBRIC:

Communication (0-10):
0-2: refusal, incoherent, irrelevant
3-4: basic clarity
5-7: understandable, spoken clarity
7-8: clear, structured, professional
9-10: exceptionally precise and confident

Justification (0-10):
0-2: no substance or refusal
3-4: vague but real exposure
5-7: real tools, projects, or responsibilities
7-8: problem-solving or ownership
9-10: strong impact, decisions, or trade-offs

IMPORTANT FLOOR RULES:
- If an answer mentions real tools or projects, justification MUST NOT be below 5
- If an answer describes a real problem and action, justification MUST NOT be below 6

SOFT FLAGS (DO NOT REDUCE SCORES):
- scripted_sounding
- confidence_without_content (only TRUE if communication >=7 and justification <=3)

QUESTIONS & ANSWERS:
%s
OUTPUT RULES:
- VALID JSON ONLY
- No markdown or extra text
- One result per question
- Use EXACT question text
- Reasoning must reference the actual answer
- Do NOT normalize or cap scores

RETURN JSON ONLY:
{
  "results": [
    {
      "question": "<exact question text>",
      "communication": <integer 0-10>,
      "justification": <integer 0-10>,
      "confidence_without_content": <true|false>,
      "scripted_sounding": <true|false>,
      "reasoning": "<short factual explanation>"
    }
  ]
}

IMPORTANT:
- End the response immediately after the end of the JSON
- Do NOT add explanations
- Do NOT add trailing text`, qa.String())
}

// BuildKnowledgeQuery phrases the retrieval query for next-question context
// from what the candidate has said so far.
func (pb *PromptBuilder) BuildKnowledgeQuery(conversation models.Conversation) string {
	answers := conversation.AnswerTexts()
	if len(answers) == 0 {
		return "interview opening questions for a software engineering candidate"
	}
	recent := answers
	if len(recent) > 2 {
		recent = recent[len(recent)-2:]
	}
	return strings.Join(recent, " ")
}
