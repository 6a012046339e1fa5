package handlers

import (
	"regexp"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"empiric/hr-interviewer/internal/models"
	"empiric/hr-interviewer/internal/services"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

type CallHandler struct {
	interview services.InterviewService
	logger    *zap.Logger
}

func NewCallHandler(interview services.InterviewService, log *zap.Logger) *CallHandler {
	return &CallHandler{
		interview: interview,
		logger:    log,
	}
}

// HandleStartCall handles POST /calls
func (h *CallHandler) HandleStartCall(c *fiber.Ctx) error {
	var req models.StartCallRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.Phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "phone is required",
		})
	}

	if !phonePattern.MatchString(req.Phone) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid phone number format",
		})
	}

	candidate, callSID, err := h.interview.StartInterview(c.Context(), req.Phone)
	if err != nil {
		h.logger.Error("failed to start interview call",
			zap.String("phone", req.Phone), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start interview call",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(models.StartCallResponse{
		CandidateID: candidate.ID.String(),
		CallSID:     callSID,
		Status:      string(models.StatusInProgress),
	})
}
