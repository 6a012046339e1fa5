package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"empiric/hr-interviewer/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueScoring(candidateID uuid.UUID)
}

type worker struct {
	repo         repositories.CandidateRepository
	evaluator    InterviewEvaluator
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	logger       *zap.Logger
	wg           sync.WaitGroup
	stopChan     chan struct{}
}

func NewWorker(
	repo repositories.CandidateRepository,
	evaluator InterviewEvaluator,
	concurrency int,
	pollInterval time.Duration,
	log *zap.Logger,
) Worker {
	return &worker{
		repo:         repo,
		evaluator:    evaluator,
		jobQueue:     make(chan uuid.UUID, 100),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		logger:       log,
		stopChan:     make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting scoring worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	// The poller picks up candidates stuck in scoring status, e.g. after
	// a crash between MarkScoring and the enqueue.
	w.wg.Add(1)
	go w.pollPendingJobs(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.logger.Info("stopping scoring worker")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("scoring worker stopped")
}

// EnqueueScoring implements Worker.
func (w *worker) EnqueueScoring(candidateID uuid.UUID) {
	select {
	case w.jobQueue <- candidateID:
		w.logger.Debug("scoring job enqueued", zap.String("candidate_id", candidateID.String()))
	case <-w.stopChan:
		w.logger.Warn("worker stopped, dropping scoring job",
			zap.String("candidate_id", candidateID.String()))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			w.logger.Debug("worker stopped", zap.Int("worker_id", workerID))
			return
		case candidateID := <-w.jobQueue:
			w.logger.Info("scoring candidate",
				zap.Int("worker_id", workerID),
				zap.String("candidate_id", candidateID.String()),
			)
			if err := w.evaluator.EvaluateCandidate(ctx, candidateID); err != nil {
				w.logger.Error("scoring failed",
					zap.Int("worker_id", workerID),
					zap.String("candidate_id", candidateID.String()),
					zap.Error(err),
				)
			}
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			pending, err := w.repo.FindPendingScoring(10)
			if err != nil {
				w.logger.Warn("failed to fetch pending scoring jobs", zap.Error(err))
				continue
			}
			for _, candidate := range pending {
				w.EnqueueScoring(candidate.ID)
			}
		}
	}
}
