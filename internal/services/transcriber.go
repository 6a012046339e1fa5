package services

import (
	"context"

	"go.uber.org/zap"

	"empiric/hr-interviewer/internal/logger"
)

// AudioTranscriber is the model-side transcription dependency.
type AudioTranscriber interface {
	TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// TranscriptionService converts recorded answers to text. Any failure
// yields an empty string: downstream treats empty text as "no content",
// never as an error to propagate.
type TranscriptionService interface {
	Transcribe(ctx context.Context, audio []byte) string
}

type transcriptionService struct {
	transcriber AudioTranscriber
	logger      *zap.Logger
}

func NewTranscriptionService(transcriber AudioTranscriber, log *zap.Logger) TranscriptionService {
	return &transcriptionService{
		transcriber: transcriber,
		logger:      log,
	}
}

// Transcribe implements TranscriptionService.
func (t *transcriptionService) Transcribe(ctx context.Context, audio []byte) string {
	if len(audio) == 0 {
		return ""
	}

	text, err := t.transcriber.TranscribeAudio(ctx, audio, "audio/wav")
	if err != nil {
		t.logger.Warn("transcription failed, treating answer as empty", zap.Error(err))
		return ""
	}

	t.logger.Debug("answer transcribed", zap.String("preview", logger.Truncate(text, 120)))
	return text
}
