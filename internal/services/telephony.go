package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/twilio/twilio-go/twiml"
	"go.uber.org/zap"

	"empiric/hr-interviewer/internal/config"
)

// VoiceDirective is what the interview state machine wants the caller to
// hear next: speak the lines, then either record an answer or hang up.
type VoiceDirective struct {
	Say    []string
	Record bool
	Hangup bool
}

type TelephonyService interface {
	StartCall(ctx context.Context, toPhone string) (string, error)
	DownloadRecording(ctx context.Context, recordingURL string) ([]byte, error)
	RenderVoiceResponse(directive VoiceDirective) (string, error)
}

type telephonyService struct {
	client     *twilio.RestClient
	httpClient *http.Client
	accountSID string
	authToken  string
	fromNumber string
	webhookURL string
	voice      string
	logger     *zap.Logger
}

func NewTelephonyService(cfg *config.Config, script *config.InterviewScript, log *zap.Logger) TelephonyService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.Twilio.AccountSID,
		Password: cfg.Twilio.AuthToken,
	})

	return &telephonyService{
		client:     client,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		accountSID: cfg.Twilio.AccountSID,
		authToken:  cfg.Twilio.AuthToken,
		fromNumber: cfg.Twilio.FromNumber,
		webhookURL: cfg.VoiceWebhookURL(),
		voice:      script.Voice,
		logger:     log,
	}
}

// StartCall implements TelephonyService.
func (t *telephonyService) StartCall(_ context.Context, toPhone string) (string, error) {
	params := &twilioapi.CreateCallParams{}
	params.SetTo(toPhone)
	params.SetFrom(t.fromNumber)
	params.SetUrl(t.webhookURL)
	params.SetMethod("POST")

	call, err := t.client.Api.CreateCall(params)
	if err != nil {
		return "", fmt.Errorf("failed to create call: %w", err)
	}

	callSID := ""
	if call.Sid != nil {
		callSID = *call.Sid
	}

	t.logger.Info("outbound call started",
		zap.String("to", toPhone),
		zap.String("call_sid", callSID),
	)
	return callSID, nil
}

// DownloadRecording implements TelephonyService. Twilio serves recording
// media over basic-auth HTTP; the SDK has no media endpoint.
func (t *telephonyService) DownloadRecording(ctx context.Context, recordingURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recordingURL+".wav", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build recording request: %w", err)
	}
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recording download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording body: %w", err)
	}
	return data, nil
}

// RenderVoiceResponse implements TelephonyService. Record directives pause
// for a beat, then record up to two minutes with a beep, posting the
// result back to the voice webhook.
func (t *telephonyService) RenderVoiceResponse(directive VoiceDirective) (string, error) {
	var verbs []twiml.Element

	for _, line := range directive.Say {
		verbs = append(verbs, twiml.VoiceSay{Message: line, Voice: t.voice})
	}

	if directive.Record {
		verbs = append(verbs, twiml.VoicePause{Length: "1"})
		verbs = append(verbs, twiml.VoiceRecord{
			Action:    t.webhookURL,
			Method:    "POST",
			MaxLength: "120",
			Timeout:   "5",
			PlayBeep:  "true",
		})
	}

	if directive.Hangup {
		verbs = append(verbs, twiml.VoiceHangup{})
	}

	xml, err := twiml.Voice(verbs)
	if err != nil {
		return "", fmt.Errorf("failed to render voice response: %w", err)
	}
	return xml, nil
}
