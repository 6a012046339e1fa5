package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"empiric/hr-interviewer/internal/services"
)

// VoiceHandler serves the telephony webhook. Every callback on the live
// call lands here and the response is the TwiML for the next turn.
type VoiceHandler struct {
	interview services.InterviewService
	telephony services.TelephonyService
	logger    *zap.Logger
}

func NewVoiceHandler(
	interview services.InterviewService,
	telephony services.TelephonyService,
	log *zap.Logger,
) *VoiceHandler {
	return &VoiceHandler{
		interview: interview,
		telephony: telephony,
		logger:    log,
	}
}

// HandleVoiceWebhook handles POST /voice. On an outbound call the
// candidate is the called party, so their number arrives in "To".
func (h *VoiceHandler) HandleVoiceWebhook(c *fiber.Ctx) error {
	phone := c.FormValue("To")
	if phone == "" {
		phone = c.FormValue("From")
	}
	if phone == "" {
		return c.Status(fiber.StatusBadRequest).SendString("missing caller number")
	}

	input := services.VoiceTurnInput{
		Phone:        phone,
		RecordingURL: c.FormValue("RecordingUrl"),
	}

	directive, err := h.interview.HandleVoiceTurn(c.Context(), input)
	if err != nil {
		h.logger.Error("voice turn failed", zap.String("phone", phone), zap.Error(err))
		directive = services.VoiceDirective{
			Say:    []string{"We hit a technical problem. We will call you back shortly. Goodbye."},
			Hangup: true,
		}
	}

	twiml, err := h.telephony.RenderVoiceResponse(directive)
	if err != nil {
		h.logger.Error("failed to render voice response", zap.Error(err))
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	c.Set(fiber.HeaderContentType, "text/xml")
	return c.SendString(twiml)
}
