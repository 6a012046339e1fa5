package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"empiric/hr-interviewer/internal/cache"
	"empiric/hr-interviewer/internal/config"
	"empiric/hr-interviewer/internal/handlers"
	"empiric/hr-interviewer/internal/logger"
	"empiric/hr-interviewer/internal/repositories"
	"empiric/hr-interviewer/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interview API server, telephony webhook and scoring worker",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() {
	cfg := config.Load()

	zlog, err := logger.New(flagJSON || cfg.Logging.JSON, flagDebug || cfg.Logging.Debug)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer zlog.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		zlog.Fatal("initializing database", zap.Error(err))
	}

	redisClient, err := config.InitRedis(cfg)
	if err != nil {
		zlog.Fatal("initializing redis", zap.Error(err))
	}

	script, err := config.LoadInterviewScript(cfg.Interview.ScriptPath)
	if err != nil {
		zlog.Fatal("loading interview script", zap.Error(err))
	}

	candidateRepo := repositories.NewCandidateRepository(db)
	conversationCache := cache.NewConversationCache(redisClient)

	storageService := services.NewStorageService(cfg.Storage.RecordingPath, cfg.Storage.UploadPath)
	if err := storageService.EnsureDirs(); err != nil {
		zlog.Fatal("creating storage directories", zap.Error(err))
	}

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model, zlog)
	if err != nil {
		zlog.Fatal("initializing gemini", zap.Error(err))
	}

	knowledgeService, err := services.NewKnowledgeService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		geminiService,
		zlog,
	)
	if err != nil {
		zlog.Fatal("initializing knowledge store", zap.Error(err))
	}
	if err := knowledgeService.InitCollection(); err != nil {
		zlog.Fatal("initializing knowledge collection", zap.Error(err))
	}

	scorer := services.NewInterviewScorer(geminiService, cfg.Worker.RetryMaxAttempts, zlog)
	evaluator := services.NewInterviewEvaluator(candidateRepo, scorer, zlog)

	worker := services.NewWorker(
		candidateRepo,
		evaluator,
		cfg.Worker.Concurrency,
		cfg.Worker.PollInterval,
		zlog,
	)

	turnGenerator := services.NewTurnGenerator(geminiService, knowledgeService, script, zlog)
	transcription := services.NewTranscriptionService(geminiService, zlog)
	telephony := services.NewTelephonyService(cfg, script, zlog)

	interviewService := services.NewInterviewService(
		candidateRepo,
		conversationCache,
		turnGenerator,
		transcription,
		telephony,
		storageService,
		worker,
		script,
		zlog,
	)

	ctx := context.Background()
	worker.Start(ctx)

	voiceHandler := handlers.NewVoiceHandler(interviewService, telephony, zlog)
	callHandler := handlers.NewCallHandler(interviewService, zlog)
	resultHandler := handlers.NewResultHandler(candidateRepo)
	knowledgeHandler := handlers.NewKnowledgeHandler(
		storageService,
		services.NewPDFParserService(),
		knowledgeService,
		cfg.Storage.MaxFileSize,
		zlog,
	)

	appServer := fiber.New(fiber.Config{
		AppName:      "HR Interviewer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: jsonErrorHandler,
	})

	appServer.Use(recover.New())
	appServer.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	appServer.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Telephony webhook lives outside the API group: the provider posts
	// form-encoded callbacks here.
	appServer.Post("/voice", voiceHandler.HandleVoiceWebhook)

	api := appServer.Group("/api/v1")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})
	api.Post("/calls", callHandler.HandleStartCall)
	api.Get("/candidates/latest/result", resultHandler.HandleGetLatestResult)
	api.Get("/candidates/:id/result", resultHandler.HandleGetResult)
	api.Post("/knowledge", knowledgeHandler.HandleUpload)
	api.Delete("/knowledge/:id", knowledgeHandler.HandleDelete)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		worker.Stop()
		if err := appServer.Shutdown(); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting",
		zap.String("addr", addr),
		zap.String("voice_webhook", cfg.VoiceWebhookURL()),
	)

	if err := appServer.Listen(addr); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func jsonErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
