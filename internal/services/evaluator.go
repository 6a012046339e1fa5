package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"empiric/hr-interviewer/internal/models"
	"empiric/hr-interviewer/internal/repositories"
)

// InterviewEvaluator scores a finished interview and writes the result
// back to the candidate record.
type InterviewEvaluator interface {
	EvaluateCandidate(ctx context.Context, candidateID uuid.UUID) error
}

type interviewEvaluator struct {
	repo   repositories.CandidateRepository
	scorer InterviewScorer
	logger *zap.Logger
}

func NewInterviewEvaluator(repo repositories.CandidateRepository, scorer InterviewScorer, log *zap.Logger) InterviewEvaluator {
	return &interviewEvaluator{
		repo:   repo,
		scorer: scorer,
		logger: log,
	}
}

// EvaluateCandidate implements InterviewEvaluator.
func (e *interviewEvaluator) EvaluateCandidate(ctx context.Context, candidateID uuid.UUID) error {
	candidate, err := e.repo.FindByID(candidateID)
	if err != nil {
		return fmt.Errorf("failed to load candidate: %w", err)
	}

	if candidate.Status == models.StatusCompleted {
		e.logger.Info("candidate already scored, skipping",
			zap.String("candidate_id", candidateID.String()))
		return nil
	}

	e.logger.Info("scoring interview",
		zap.String("candidate_id", candidateID.String()),
		zap.Int("turns", len(candidate.Conversation)),
	)

	result := e.scorer.EvaluateConversation(ctx, candidate.Conversation)

	if err := e.repo.UpdateResult(candidateID, result); err != nil {
		if updateErr := e.repo.UpdateError(candidateID, err.Error()); updateErr != nil {
			e.logger.Error("failed to record scoring error", zap.Error(updateErr))
		}
		return fmt.Errorf("failed to save interview result: %w", err)
	}

	e.logger.Info("interview scored",
		zap.String("candidate_id", candidateID.String()),
		zap.Int("final_score", result.FinalScore),
		zap.String("decision", string(result.Decision)),
	)
	return nil
}
