package services

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"empiric/hr-interviewer/internal/cache"
	"empiric/hr-interviewer/internal/config"
	"empiric/hr-interviewer/internal/models"
	"empiric/hr-interviewer/internal/repositories"
)

// VoiceTurnInput is one inbound telephony callback: the caller's phone
// number and, after an answer was recorded, the recording URL.
type VoiceTurnInput struct {
	Phone        string
	RecordingURL string
}

// ScoringEnqueuer hands a frozen interview to the background scorer.
type ScoringEnqueuer interface {
	EnqueueScoring(candidateID uuid.UUID)
}

// InterviewService drives one candidate's interview across the call
// lifecycle: outbound call setup and the per-callback turn state machine.
type InterviewService interface {
	StartInterview(ctx context.Context, phone string) (*models.Candidate, string, error)
	HandleVoiceTurn(ctx context.Context, input VoiceTurnInput) (VoiceDirective, error)
}

type interviewService struct {
	repo          repositories.CandidateRepository
	conversations cache.ConversationCache
	turns         TurnGenerator
	transcription TranscriptionService
	telephony     TelephonyService
	storage       StorageService
	scoring       ScoringEnqueuer
	script        *config.InterviewScript
	logger        *zap.Logger

	// Turns for one candidate are strictly serialized; concurrent
	// callbacks for the same phone wait here.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewInterviewService(
	repo repositories.CandidateRepository,
	conversations cache.ConversationCache,
	turns TurnGenerator,
	transcription TranscriptionService,
	telephony TelephonyService,
	storage StorageService,
	scoring ScoringEnqueuer,
	script *config.InterviewScript,
	log *zap.Logger,
) InterviewService {
	return &interviewService{
		repo:          repo,
		conversations: conversations,
		turns:         turns,
		transcription: transcription,
		telephony:     telephony,
		storage:       storage,
		scoring:       scoring,
		script:        script,
		logger:        log,
		locks:         make(map[string]*sync.Mutex),
	}
}

func (s *interviewService) phoneLock(phone string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[phone]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[phone] = lock
	}
	return lock
}

// StartInterview implements InterviewService. A known phone number starts
// over with a clean conversation.
func (s *interviewService) StartInterview(ctx context.Context, phone string) (*models.Candidate, string, error) {
	candidate, err := s.repo.FindOrCreateByPhone(phone)
	if err != nil {
		return nil, "", err
	}

	if candidate.Status != models.StatusInProgress || len(candidate.Conversation) > 0 {
		if err := s.repo.ResetInterview(candidate.ID); err != nil {
			return nil, "", err
		}
		candidate.Conversation = models.Conversation{}
		candidate.Status = models.StatusInProgress
		if err := s.conversations.Delete(ctx, candidate.ID); err != nil {
			s.logger.Warn("failed to drop cached conversation", zap.Error(err))
		}
	}

	callSID, err := s.telephony.StartCall(ctx, phone)
	if err != nil {
		return nil, "", err
	}

	if err := s.repo.UpdateCallSID(candidate.ID, callSID); err != nil {
		s.logger.Warn("failed to store call sid", zap.Error(err))
	}

	return candidate, callSID, nil
}

// HandleVoiceTurn implements InterviewService.
func (s *interviewService) HandleVoiceTurn(ctx context.Context, input VoiceTurnInput) (VoiceDirective, error) {
	lock := s.phoneLock(input.Phone)
	lock.Lock()
	defer lock.Unlock()

	candidate, err := s.repo.FindOrCreateByPhone(input.Phone)
	if err != nil {
		return VoiceDirective{}, err
	}

	if candidate.Status != models.StatusInProgress {
		return VoiceDirective{
			Say:    []string{"This interview has already finished. Thank you."},
			Hangup: true,
		}, nil
	}

	conversation := s.loadConversation(ctx, candidate)

	// First contact: speak the intro exactly once, then listen.
	if len(conversation) == 0 {
		conversation = append(conversation, models.Turn{
			Role:   models.RoleAI,
			Type:   models.TurnIntro,
			Intent: "intro",
			Text:   s.script.IntroText,
		})
		s.persistConversation(ctx, candidate.ID, conversation)

		return VoiceDirective{Say: []string{s.script.IntroText}, Record: true}, nil
	}

	if input.RecordingURL != "" {
		conversation = s.ingestAnswer(ctx, candidate.ID, conversation, input.RecordingURL)
	}

	aiTurn := s.turns.NextTurn(ctx, conversation)

	// The model may not end the interview before the minimum number of
	// questions has been asked.
	if aiTurn.Action == ActionEndInterview && conversation.QuestionCount() < s.script.MinQuestions {
		aiTurn = AITurn{
			Action: ActionAskQuestion,
			Intent: "general",
			Text:   s.script.FallbackQuestion,
		}
	}

	if aiTurn.Action == ActionEndInterview {
		return s.finishInterview(ctx, candidate.ID, aiTurn.Reason)
	}

	conversation = append(conversation, models.Turn{
		Role:   models.RoleAI,
		Type:   models.TurnQuestion,
		Intent: aiTurn.Intent,
		Text:   aiTurn.Text,
	})
	s.persistConversation(ctx, candidate.ID, conversation)

	return VoiceDirective{Say: []string{aiTurn.Text}, Record: true}, nil
}

func (s *interviewService) loadConversation(ctx context.Context, candidate *models.Candidate) models.Conversation {
	cached, ok, err := s.conversations.Get(ctx, candidate.ID)
	if err != nil {
		s.logger.Warn("conversation cache read failed", zap.Error(err))
	}
	if ok {
		return cached
	}
	return candidate.Conversation
}

func (s *interviewService) persistConversation(ctx context.Context, candidateID uuid.UUID, conversation models.Conversation) {
	if err := s.repo.UpdateConversation(candidateID, conversation, conversation.QuestionCount()); err != nil {
		s.logger.Error("failed to persist conversation", zap.Error(err))
	}
	if err := s.conversations.Set(ctx, candidateID, conversation); err != nil {
		s.logger.Warn("conversation cache write failed", zap.Error(err))
	}
}

// ingestAnswer downloads and transcribes the recorded answer and appends
// it to the conversation. A short reply before any question has been asked
// is a warm-up ("yes, I'm ready") and is dropped; once questions are in
// flight every reply is recorded, including empty ones.
func (s *interviewService) ingestAnswer(ctx context.Context, candidateID uuid.UUID, conversation models.Conversation, recordingURL string) models.Conversation {
	text := ""

	audio, err := s.telephony.DownloadRecording(ctx, recordingURL)
	if err != nil {
		s.logger.Warn("recording download failed, treating answer as empty", zap.Error(err))
	} else {
		if path, err := s.storage.SaveRecording(audio); err == nil {
			defer func() {
				if err := s.storage.RemoveRecording(path); err != nil {
					s.logger.Warn("failed to remove recording", zap.Error(err))
				}
			}()
		}
		text = s.transcription.Transcribe(ctx, audio)
	}

	if conversation.QuestionCount() == 0 && len(strings.Fields(text)) <= shortAnswerWords {
		return conversation
	}

	conversation = append(conversation, models.Turn{
		Role: models.RoleCandidate,
		Type: models.TurnAnswer,
		Text: text,
	})
	s.persistConversation(ctx, candidateID, conversation)
	return conversation
}

func (s *interviewService) finishInterview(ctx context.Context, candidateID uuid.UUID, reason string) (VoiceDirective, error) {
	if err := s.repo.MarkScoring(candidateID, reason); err != nil {
		return VoiceDirective{}, err
	}
	if err := s.conversations.Delete(ctx, candidateID); err != nil {
		s.logger.Warn("failed to drop cached conversation", zap.Error(err))
	}

	s.scoring.EnqueueScoring(candidateID)

	s.logger.Info("interview ended",
		zap.String("candidate_id", candidateID.String()),
		zap.String("reason", reason),
	)

	return VoiceDirective{Say: []string{s.script.ClosingText}, Hangup: true}, nil
}
