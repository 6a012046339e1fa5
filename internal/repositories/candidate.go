package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"empiric/hr-interviewer/internal/models"
)

type CandidateRepository interface {
	Create(candidate *models.Candidate) error
	FindByID(id uuid.UUID) (*models.Candidate, error)
	FindOrCreateByPhone(phone string) (*models.Candidate, error)
	FindLatest() (*models.Candidate, error)
	UpdateCallSID(id uuid.UUID, callSID string) error
	ResetInterview(id uuid.UUID) error
	UpdateConversation(id uuid.UUID, conversation models.Conversation, questionsAsked int) error
	MarkScoring(id uuid.UUID, endReason string) error
	UpdateResult(id uuid.UUID, result *models.InterviewResult) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingScoring(limit int) ([]models.Candidate, error)
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(candidate *models.Candidate) error {
	if err := r.db.Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

func (r *candidateRepository) FindByID(id uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.Where("id = ?", id).First(&candidate).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("candidate not found")
		}
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}
	return &candidate, nil
}

func (r *candidateRepository) FindOrCreateByPhone(phone string) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.db.Where("phone = ?", phone).First(&candidate).Error
	if err == nil {
		return &candidate, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to find candidate by phone: %w", err)
	}

	candidate = models.Candidate{
		ID:           uuid.New(),
		Phone:        phone,
		Conversation: models.Conversation{},
		Status:       models.StatusInProgress,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := r.db.Create(&candidate).Error; err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}
	return &candidate, nil
}

func (r *candidateRepository) FindLatest() (*models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.Order("created_at DESC").First(&candidate).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("no candidates found")
		}
		return nil, fmt.Errorf("failed to find latest candidate: %w", err)
	}
	return &candidate, nil
}

func (r *candidateRepository) UpdateCallSID(id uuid.UUID, callSID string) error {
	return r.update(id, map[string]interface{}{"call_sid": callSID})
}

// ResetInterview wipes the conversation and result fields so a fresh call
// to an already known phone number starts over.
func (r *candidateRepository) ResetInterview(id uuid.UUID) error {
	return r.update(id, map[string]interface{}{
		"conversation":    models.Conversation{},
		"questions_asked": 0,
		"status":          models.StatusInProgress,
		"end_reason":      "",
		"final_score":     0,
		"decision":        "",
		"red_flags":       models.StringList{},
		"hr_summary":      "",
		"error_message":   nil,
	})
}

func (r *candidateRepository) UpdateConversation(id uuid.UUID, conversation models.Conversation, questionsAsked int) error {
	return r.update(id, map[string]interface{}{
		"conversation":    conversation,
		"questions_asked": questionsAsked,
	})
}

func (r *candidateRepository) MarkScoring(id uuid.UUID, endReason string) error {
	return r.update(id, map[string]interface{}{
		"status":     models.StatusScoring,
		"end_reason": endReason,
	})
}

func (r *candidateRepository) UpdateResult(id uuid.UUID, result *models.InterviewResult) error {
	return r.update(id, map[string]interface{}{
		"status":      models.StatusCompleted,
		"final_score": result.FinalScore,
		"decision":    string(result.Decision),
		"red_flags":   models.StringList(result.RedFlags),
		"hr_summary":  result.HRSummary,
	})
}

func (r *candidateRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.update(id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
	})
}

func (r *candidateRepository) FindPendingScoring(limit int) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.
		Where("status = ?", models.StatusScoring).
		Order("updated_at ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending candidates: %w", err)
	}
	return candidates, nil
}

func (r *candidateRepository) update(id uuid.UUID, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()

	result := r.db.Model(&models.Candidate{}).
		Where("id = ?", id).
		Updates(fields)

	if result.Error != nil {
		return fmt.Errorf("failed to update candidate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("candidate not found")
	}
	return nil
}
