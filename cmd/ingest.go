package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"empiric/hr-interviewer/internal/config"
	"empiric/hr-interviewer/internal/logger"
	"empiric/hr-interviewer/internal/services"
)

var ingestDocType string

var ingestCmd = &cobra.Command{
	Use:   "ingest <pdf-file>",
	Short: "Ingest a role document PDF into the knowledge store",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return ingest(args[0])
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVarP(&ingestDocType, "type", "t", services.DocTypeJobDescription,
		fmt.Sprintf("document type: %s or %s", services.DocTypeJobDescription, services.DocTypeInterviewRubric))
}

func ingest(filePath string) error {
	if ingestDocType != services.DocTypeJobDescription && ingestDocType != services.DocTypeInterviewRubric {
		return fmt.Errorf("unsupported document type: %s", ingestDocType)
	}

	cfg := config.Load()

	zlog, err := logger.New(flagJSON || cfg.Logging.JSON, flagDebug || cfg.Logging.Debug)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer zlog.Sync()

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model, zlog)
	if err != nil {
		return err
	}

	knowledgeService, err := services.NewKnowledgeService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		geminiService,
		zlog,
	)
	if err != nil {
		return err
	}
	if err := knowledgeService.InitCollection(); err != nil {
		return err
	}

	text, err := services.NewPDFParserService().ExtractText(filePath)
	if err != nil {
		return fmt.Errorf("failed to extract text from %s: %w", filePath, err)
	}

	docID := uuid.New().String()
	chunks, err := knowledgeService.IngestDocument(context.Background(), docID, ingestDocType, text)
	if err != nil {
		return fmt.Errorf("failed to ingest document: %w", err)
	}

	zlog.Info("document ingested",
		zap.String("doc_id", docID),
		zap.String("doc_type", ingestDocType),
		zap.Int("chunks", chunks),
	)
	return nil
}
