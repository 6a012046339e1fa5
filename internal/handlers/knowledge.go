package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"empiric/hr-interviewer/internal/models"
	"empiric/hr-interviewer/internal/services"
)

// KnowledgeHandler ingests role documents (job descriptions, interview
// rubrics) into the vector store that feeds question generation.
type KnowledgeHandler struct {
	storage     services.StorageService
	pdfParser   services.PDFParserService
	knowledge   services.KnowledgeService
	maxFileSize int64
	logger      *zap.Logger
}

func NewKnowledgeHandler(
	storage services.StorageService,
	pdfParser services.PDFParserService,
	knowledge services.KnowledgeService,
	maxFileSize int64,
	log *zap.Logger,
) *KnowledgeHandler {
	return &KnowledgeHandler{
		storage:     storage,
		pdfParser:   pdfParser,
		knowledge:   knowledge,
		maxFileSize: maxFileSize,
		logger:      log,
	}
}

// HandleUpload handles POST /knowledge. Expects a multipart form with a
// "document" PDF and a "doc_type" field.
func (h *KnowledgeHandler) HandleUpload(c *fiber.Ctx) error {
	docType := c.FormValue("doc_type")
	if docType != services.DocTypeJobDescription && docType != services.DocTypeInterviewRubric {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("doc_type must be %q or %q",
				services.DocTypeJobDescription, services.DocTypeInterviewRubric),
		})
	}

	file, err := c.FormFile("document")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "document file is required",
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Document too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	_, filePath, err := h.storage.SaveUpload(file, docType)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save document: %v", err),
		})
	}

	text, err := h.pdfParser.ExtractText(filePath)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to extract text from document: %v", err),
		})
	}

	docID := uuid.New().String()
	chunks, err := h.knowledge.IngestDocument(c.Context(), docID, docType, text)
	if err != nil {
		h.logger.Error("knowledge ingestion failed",
			zap.String("doc_type", docType), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to ingest document",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.KnowledgeUploadResponse{
		ID:       docID,
		Filename: file.Filename,
		DocType:  docType,
		Chunks:   chunks,
	})
}

// HandleDelete handles DELETE /knowledge/:id
func (h *KnowledgeHandler) HandleDelete(c *fiber.Ctx) error {
	docID := c.Params("id")
	if _, err := uuid.Parse(docID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document ID format",
		})
	}

	if err := h.knowledge.DeleteDocument(c.Context(), docID); err != nil {
		h.logger.Error("knowledge deletion failed", zap.String("doc_id", docID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete document",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
