package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"empiric/hr-interviewer/internal/config"
	"empiric/hr-interviewer/internal/models"
)

type memoryRepo struct {
	candidates map[string]*models.Candidate
	scoringIDs []uuid.UUID
	resetIDs   []uuid.UUID
	callSIDs   map[uuid.UUID]string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		candidates: make(map[string]*models.Candidate),
		callSIDs:   make(map[uuid.UUID]string),
	}
}

func (r *memoryRepo) Create(candidate *models.Candidate) error {
	r.candidates[candidate.Phone] = candidate
	return nil
}

func (r *memoryRepo) FindByID(id uuid.UUID) (*models.Candidate, error) {
	for _, candidate := range r.candidates {
		if candidate.ID == id {
			return candidate, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *memoryRepo) FindOrCreateByPhone(phone string) (*models.Candidate, error) {
	if candidate, ok := r.candidates[phone]; ok {
		return candidate, nil
	}
	candidate := &models.Candidate{
		ID:     uuid.New(),
		Phone:  phone,
		Status: models.StatusInProgress,
	}
	r.candidates[phone] = candidate
	return candidate, nil
}

func (r *memoryRepo) FindLatest() (*models.Candidate, error) {
	return nil, errors.New("not implemented")
}

func (r *memoryRepo) UpdateCallSID(id uuid.UUID, callSID string) error {
	r.callSIDs[id] = callSID
	return nil
}

func (r *memoryRepo) ResetInterview(id uuid.UUID) error {
	r.resetIDs = append(r.resetIDs, id)
	candidate, err := r.FindByID(id)
	if err != nil {
		return err
	}
	candidate.Conversation = models.Conversation{}
	candidate.QuestionsAsked = 0
	candidate.Status = models.StatusInProgress
	candidate.EndReason = ""
	return nil
}

func (r *memoryRepo) UpdateConversation(id uuid.UUID, conversation models.Conversation, questionsAsked int) error {
	candidate, err := r.FindByID(id)
	if err != nil {
		return err
	}
	candidate.Conversation = conversation
	candidate.QuestionsAsked = questionsAsked
	return nil
}

func (r *memoryRepo) MarkScoring(id uuid.UUID, endReason string) error {
	candidate, err := r.FindByID(id)
	if err != nil {
		return err
	}
	candidate.Status = models.StatusScoring
	candidate.EndReason = endReason
	return nil
}

func (r *memoryRepo) UpdateResult(id uuid.UUID, result *models.InterviewResult) error {
	candidate, err := r.FindByID(id)
	if err != nil {
		return err
	}
	candidate.Status = models.StatusCompleted
	candidate.FinalScore = result.FinalScore
	candidate.Decision = string(result.Decision)
	candidate.RedFlags = result.RedFlags
	candidate.HRSummary = result.HRSummary
	return nil
}

func (r *memoryRepo) UpdateError(id uuid.UUID, errorMsg string) error {
	candidate, err := r.FindByID(id)
	if err != nil {
		return err
	}
	candidate.Status = models.StatusFailed
	candidate.ErrorMessage = &errorMsg
	return nil
}

func (r *memoryRepo) FindPendingScoring(limit int) ([]models.Candidate, error) {
	var pending []models.Candidate
	for _, candidate := range r.candidates {
		if candidate.Status == models.StatusScoring && len(pending) < limit {
			pending = append(pending, *candidate)
		}
	}
	return pending, nil
}

type memoryCache struct {
	conversations map[uuid.UUID]models.Conversation
}

func newMemoryCache() *memoryCache {
	return &memoryCache{conversations: make(map[uuid.UUID]models.Conversation)}
}

func (c *memoryCache) Set(_ context.Context, candidateID uuid.UUID, conversation models.Conversation) error {
	c.conversations[candidateID] = conversation
	return nil
}

func (c *memoryCache) Get(_ context.Context, candidateID uuid.UUID) (models.Conversation, bool, error) {
	conversation, ok := c.conversations[candidateID]
	return conversation, ok, nil
}

func (c *memoryCache) Delete(_ context.Context, candidateID uuid.UUID) error {
	delete(c.conversations, candidateID)
	return nil
}

// fakeTurns returns scripted AI turns in order.
type fakeTurns struct {
	turns []AITurn
}

func (f *fakeTurns) ShouldEnd(context.Context, models.Conversation) (bool, string) {
	return false, ""
}

func (f *fakeTurns) NextTurn(context.Context, models.Conversation) AITurn {
	if len(f.turns) == 0 {
		return AITurn{Action: ActionAskQuestion, Intent: "general", Text: "Could you explain more?"}
	}
	turn := f.turns[0]
	f.turns = f.turns[1:]
	return turn
}

type fakeTranscription struct {
	text string
}

func (f *fakeTranscription) Transcribe(context.Context, []byte) string {
	return f.text
}

type fakeTelephony struct {
	callSID     string
	startedTo   []string
	downloads   []string
	downloadErr error
}

func (f *fakeTelephony) StartCall(_ context.Context, toPhone string) (string, error) {
	f.startedTo = append(f.startedTo, toPhone)
	return f.callSID, nil
}

func (f *fakeTelephony) DownloadRecording(_ context.Context, recordingURL string) ([]byte, error) {
	f.downloads = append(f.downloads, recordingURL)
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return []byte("audio"), nil
}

func (f *fakeTelephony) RenderVoiceResponse(VoiceDirective) (string, error) {
	return "<Response/>", nil
}

type fakeStorage struct {
	saved   int
	removed int
}

func (f *fakeStorage) EnsureDirs() error { return nil }

func (f *fakeStorage) SaveRecording([]byte) (string, error) {
	f.saved++
	return fmt.Sprintf("/tmp/rec-%d.wav", f.saved), nil
}

func (f *fakeStorage) RemoveRecording(string) error {
	f.removed++
	return nil
}

func (f *fakeStorage) SaveUpload(*multipart.FileHeader, string) (string, string, error) {
	return "", "", errors.New("not implemented")
}

type fakeEnqueuer struct {
	enqueued []uuid.UUID
}

func (f *fakeEnqueuer) EnqueueScoring(candidateID uuid.UUID) {
	f.enqueued = append(f.enqueued, candidateID)
}

type interviewFixture struct {
	service   InterviewService
	repo      *memoryRepo
	cache     *memoryCache
	turns     *fakeTurns
	telephony *fakeTelephony
	storage   *fakeStorage
	enqueuer  *fakeEnqueuer
	script    *config.InterviewScript
}

func newInterviewFixture(answerText string, turns []AITurn) *interviewFixture {
	fixture := &interviewFixture{
		repo:      newMemoryRepo(),
		cache:     newMemoryCache(),
		turns:     &fakeTurns{turns: turns},
		telephony: &fakeTelephony{callSID: "CA123"},
		storage:   &fakeStorage{},
		enqueuer:  &fakeEnqueuer{},
		script:    config.DefaultInterviewScript(),
	}
	fixture.service = NewInterviewService(
		fixture.repo,
		fixture.cache,
		fixture.turns,
		&fakeTranscription{text: answerText},
		fixture.telephony,
		fixture.storage,
		fixture.enqueuer,
		fixture.script,
		zap.NewNop(),
	)
	return fixture
}

func TestHandleVoiceTurn_FirstContactSpeaksIntro(t *testing.T) {
	fixture := newInterviewFixture("", nil)

	directive, err := fixture.service.HandleVoiceTurn(context.Background(), VoiceTurnInput{Phone: "+15550100"})
	require.NoError(t, err)

	assert.Equal(t, []string{fixture.script.IntroText}, directive.Say)
	assert.True(t, directive.Record)
	assert.False(t, directive.Hangup)

	candidate := fixture.repo.candidates["+15550100"]
	require.Len(t, candidate.Conversation, 1)
	assert.Equal(t, models.TurnIntro, candidate.Conversation[0].Type)
}

func TestHandleVoiceTurn_WarmupReplySkippedBeforeFirstQuestion(t *testing.T) {
	fixture := newInterviewFixture("yes I'm ready", []AITurn{
		{Action: ActionAskQuestion, Intent: "skills", Text: "What do you work with?"},
	})
	ctx := context.Background()

	_, err := fixture.service.HandleVoiceTurn(ctx, VoiceTurnInput{Phone: "+15550100"})
	require.NoError(t, err)

	directive, err := fixture.service.HandleVoiceTurn(ctx, VoiceTurnInput{
		Phone:        "+15550100",
		RecordingURL: "https://api.example.com/rec/1",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"What do you work with?"}, directive.Say)
	assert.True(t, directive.Record)

	// Warm-up reply is not logged; only intro and the first question are.
	candidate := fixture.repo.candidates["+15550100"]
	require.Len(t, candidate.Conversation, 2)
	assert.Equal(t, models.TurnQuestion, candidate.Conversation[1].Type)
	assert.Equal(t, 1, candidate.QuestionsAsked)
}

func TestHandleVoiceTurn_AnswerRecordedAfterFirstQuestion(t *testing.T) {
	fixture := newInterviewFixture("I mostly build Go services for payments", []AITurn{
		{Action: ActionAskQuestion, Intent: "skills", Text: "What do you work with?"},
		{Action: ActionAskQuestion, Intent: "problem", Text: "Hardest incident?"},
	})
	ctx := context.Background()

	_, err := fixture.service.HandleVoiceTurn(ctx, VoiceTurnInput{Phone: "+15550100"})
	require.NoError(t, err)
	_, err = fixture.service.HandleVoiceTurn(ctx, VoiceTurnInput{Phone: "+15550100", RecordingURL: "u1"})
	require.NoError(t, err)

	directive, err := fixture.service.HandleVoiceTurn(ctx, VoiceTurnInput{Phone: "+15550100", RecordingURL: "u2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hardest incident?"}, directive.Say)

	candidate := fixture.repo.candidates["+15550100"]
	// intro, Q1, answer, Q2
	require.Len(t, candidate.Conversation, 4)
	assert.Equal(t, models.TurnAnswer, candidate.Conversation[2].Type)
	assert.Equal(t, "I mostly build Go services for payments", candidate.Conversation[2].Text)

	// Recording files are cleaned up after transcription.
	assert.Equal(t, fixture.storage.saved, fixture.storage.removed)
}

func TestHandleVoiceTurn_EndBeforeMinQuestionsAsksFallback(t *testing.T) {
	fixture := newInterviewFixture("we migrated the database last year", []AITurn{
		{Action: ActionAskQuestion, Intent: "skills", Text: "What do you work with?"},
		{Action: ActionEndInterview, Reason: "Covered all topics"},
	})
	ctx := context.Background()

	_, err := fixture.service.HandleVoiceTurn(ctx, VoiceTurnInput{Phone: "+15550100"})
	require.NoError(t, err)
	_, err = fixture.service.HandleVoiceTurn(ctx, VoiceTurnInput{Phone: "+15550100", RecordingURL: "u1"})
	require.NoError(t, err)

	// Only one question asked so far; the end decision is overridden.
	directive, err := fixture.service.HandleVoiceTurn(ctx, VoiceTurnInput{Phone: "+15550100", RecordingURL: "u2"})
	require.NoError(t, err)

	assert.Equal(t, []string{fixture.script.FallbackQuestion}, directive.Say)
	assert.False(t, directive.Hangup)
	assert.Empty(t, fixture.enqueuer.enqueued)
}

func TestHandleVoiceTurn_EndClosesCallAndEnqueuesScoring(t *testing.T) {
	turns := []AITurn{
		{Action: ActionAskQuestion, Intent: "skills", Text: "Q1?"},
		{Action: ActionAskQuestion, Intent: "project", Text: "Q2?"},
		{Action: ActionAskQuestion, Intent: "problem", Text: "Q3?"},
		{Action: ActionAskQuestion, Intent: "team", Text: "Q4?"},
		{Action: ActionEndInterview, Reason: "Interview length reached"},
	}
	fixture := newInterviewFixture("a long and detailed answer about production work", turns)
	ctx := context.Background()

	_, err := fixture.service.HandleVoiceTurn(ctx, VoiceTurnInput{Phone: "+15550100"})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err = fixture.service.HandleVoiceTurn(ctx, VoiceTurnInput{
			Phone:        "+15550100",
			RecordingURL: fmt.Sprintf("u%d", i+1),
		})
		require.NoError(t, err)
	}

	directive, err := fixture.service.HandleVoiceTurn(ctx, VoiceTurnInput{Phone: "+15550100", RecordingURL: "u5"})
	require.NoError(t, err)

	assert.Equal(t, []string{fixture.script.ClosingText}, directive.Say)
	assert.True(t, directive.Hangup)
	assert.False(t, directive.Record)

	candidate := fixture.repo.candidates["+15550100"]
	assert.Equal(t, models.StatusScoring, candidate.Status)
	assert.Equal(t, "Interview length reached", candidate.EndReason)
	require.Len(t, fixture.enqueuer.enqueued, 1)
	assert.Equal(t, candidate.ID, fixture.enqueuer.enqueued[0])

	// Cached conversation is dropped once the interview is frozen.
	_, ok, _ := fixture.cache.Get(ctx, candidate.ID)
	assert.False(t, ok)
}

func TestHandleVoiceTurn_FinishedInterviewHangsUp(t *testing.T) {
	fixture := newInterviewFixture("", nil)
	candidate, err := fixture.repo.FindOrCreateByPhone("+15550100")
	require.NoError(t, err)
	candidate.Status = models.StatusCompleted

	directive, err := fixture.service.HandleVoiceTurn(context.Background(), VoiceTurnInput{Phone: "+15550100"})
	require.NoError(t, err)
	assert.True(t, directive.Hangup)
	assert.False(t, directive.Record)
}

func TestHandleVoiceTurn_DownloadFailureBecomesEmptyAnswer(t *testing.T) {
	fixture := newInterviewFixture("ignored", []AITurn{
		{Action: ActionAskQuestion, Intent: "skills", Text: "Q1?"},
		{Action: ActionAskQuestion, Intent: "project", Text: "Q2?"},
	})
	fixture.telephony.downloadErr = errors.New("provider timeout")
	ctx := context.Background()

	_, err := fixture.service.HandleVoiceTurn(ctx, VoiceTurnInput{Phone: "+15550100"})
	require.NoError(t, err)
	_, err = fixture.service.HandleVoiceTurn(ctx, VoiceTurnInput{Phone: "+15550100", RecordingURL: "u1"})
	require.NoError(t, err)

	_, err = fixture.service.HandleVoiceTurn(ctx, VoiceTurnInput{Phone: "+15550100", RecordingURL: "u2"})
	require.NoError(t, err)

	candidate := fixture.repo.candidates["+15550100"]
	// intro, Q1, empty answer, Q2
	require.Len(t, candidate.Conversation, 4)
	assert.Equal(t, models.TurnAnswer, candidate.Conversation[2].Type)
	assert.Empty(t, candidate.Conversation[2].Text)
}

func TestStartInterview_NewCandidate(t *testing.T) {
	fixture := newInterviewFixture("", nil)

	candidate, callSID, err := fixture.service.StartInterview(context.Background(), "+15550100")
	require.NoError(t, err)

	assert.Equal(t, "CA123", callSID)
	assert.Equal(t, []string{"+15550100"}, fixture.telephony.startedTo)
	assert.Equal(t, "CA123", fixture.repo.callSIDs[candidate.ID])
	assert.Empty(t, fixture.repo.resetIDs)
}

func TestStartInterview_ExistingCandidateResets(t *testing.T) {
	fixture := newInterviewFixture("", nil)
	existing, err := fixture.repo.FindOrCreateByPhone("+15550100")
	require.NoError(t, err)
	existing.Status = models.StatusCompleted
	existing.Conversation = models.Conversation{{Role: models.RoleAI, Type: models.TurnIntro, Text: "Hello"}}

	candidate, _, err := fixture.service.StartInterview(context.Background(), "+15550100")
	require.NoError(t, err)

	assert.Equal(t, existing.ID, candidate.ID)
	require.Len(t, fixture.repo.resetIDs, 1)
	assert.Equal(t, existing.ID, fixture.repo.resetIDs[0])
	assert.Equal(t, models.StatusInProgress, candidate.Status)
	assert.Empty(t, candidate.Conversation)
}
