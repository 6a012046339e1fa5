package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StorageService owns the two on-disk areas: short-lived call recordings
// (deleted right after transcription) and uploaded knowledge PDFs.
type StorageService interface {
	EnsureDirs() error
	SaveRecording(data []byte) (string, error)
	RemoveRecording(path string) error
	SaveUpload(file *multipart.FileHeader, docType string) (string, string, error)
}

type storageService struct {
	recordingPath string
	uploadPath    string
}

func NewStorageService(recordingPath, uploadPath string) StorageService {
	return &storageService{
		recordingPath: recordingPath,
		uploadPath:    uploadPath,
	}
}

func (s *storageService) EnsureDirs() error {
	for _, dir := range []string{s.recordingPath, s.uploadPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SaveRecording writes the downloaded call audio to a uniquely named temp
// file and returns its path.
func (s *storageService) SaveRecording(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty recording payload")
	}

	path := filepath.Join(s.recordingPath, uuid.New().String()+".wav")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save recording: %w", err)
	}
	return path, nil
}

func (s *storageService) RemoveRecording(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove recording: %w", err)
	}
	return nil
}

// SaveUpload stores an uploaded knowledge PDF under a unique name.
func (s *storageService) SaveUpload(file *multipart.FileHeader, docType string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" {
		return "", "", fmt.Errorf("invalid file extension: %s", ext)
	}

	uniqueFilename := fmt.Sprintf("%s_%s%s", docType, uuid.New().String(), ext)
	filePath := filepath.Join(s.uploadPath, uniqueFilename)

	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}

	return uniqueFilename, filePath, nil
}
