package cmd

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"empiric/hr-interviewer/internal/config"
	"empiric/hr-interviewer/internal/logger"
	"empiric/hr-interviewer/internal/repositories"
	"empiric/hr-interviewer/internal/services"
)

var processAllPending bool

var processCmd = &cobra.Command{
	Use:   "process [candidate-id...]",
	Short: "Score finished interviews offline, by candidate ID or all pending",
	RunE: func(_ *cobra.Command, args []string) error {
		return process(args)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(&processAllPending, "all-pending", false, "score every candidate waiting in scoring status")
}

func process(args []string) error {
	cfg := config.Load()

	zlog, err := logger.New(flagJSON || cfg.Logging.JSON, flagDebug || cfg.Logging.Debug)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer zlog.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return err
	}

	candidateRepo := repositories.NewCandidateRepository(db)

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model, zlog)
	if err != nil {
		return err
	}

	scorer := services.NewInterviewScorer(geminiService, cfg.Worker.RetryMaxAttempts, zlog)
	evaluator := services.NewInterviewEvaluator(candidateRepo, scorer, zlog)

	ctx := context.Background()

	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			zlog.Error("invalid candidate id, skipping", zap.String("arg", arg))
			continue
		}
		ids = append(ids, id)
	}

	if processAllPending {
		pending, err := candidateRepo.FindPendingScoring(100)
		if err != nil {
			return err
		}
		for _, candidate := range pending {
			ids = append(ids, candidate.ID)
		}
	}

	if len(ids) == 0 {
		zlog.Info("nothing to score")
		return nil
	}

	for _, id := range ids {
		if err := evaluator.EvaluateCandidate(ctx, id); err != nil {
			zlog.Error("scoring failed", zap.String("candidate_id", id.String()), zap.Error(err))
		}
	}

	return nil
}
