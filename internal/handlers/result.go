package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"empiric/hr-interviewer/internal/models"
	"empiric/hr-interviewer/internal/repositories"
)

type ResultHandler struct {
	repo repositories.CandidateRepository
}

func NewResultHandler(repo repositories.CandidateRepository) *ResultHandler {
	return &ResultHandler{
		repo: repo,
	}
}

// HandleGetResult handles GET /candidates/:id/result
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	idParam := c.Params("id")
	candidateID, err := uuid.Parse(idParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate ID format",
		})
	}

	candidate, err := h.repo.FindByID(candidateID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Candidate not found",
		})
	}

	return c.JSON(h.buildResponse(candidate))
}

// HandleGetLatestResult handles GET /candidates/latest/result
func (h *ResultHandler) HandleGetLatestResult(c *fiber.Ctx) error {
	candidate, err := h.repo.FindLatest()
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No candidates found",
		})
	}

	return c.JSON(h.buildResponse(candidate))
}

func (h *ResultHandler) buildResponse(candidate *models.Candidate) models.ResultResponse {
	response := models.ResultResponse{
		ID:             candidate.ID.String(),
		Phone:          candidate.Phone,
		Status:         string(candidate.Status),
		QuestionsAsked: candidate.QuestionsAsked,
		EndReason:      candidate.EndReason,
	}

	if candidate.Status == models.StatusCompleted {
		response.Result = &models.InterviewResult{
			FinalScore: candidate.FinalScore,
			Decision:   models.Decision(candidate.Decision),
			RedFlags:   candidate.RedFlags,
			HRSummary:  candidate.HRSummary,
		}
	}

	if candidate.Status == models.StatusFailed && candidate.ErrorMessage != nil {
		response.ErrorMessage = candidate.ErrorMessage
	}

	return response
}
