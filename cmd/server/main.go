package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"moodsong/backend/internal/ai"
	"moodsong/backend/internal/api"
	"moodsong/backend/internal/classify"
	"moodsong/backend/internal/config"
	"moodsong/backend/internal/mood"
	"moodsong/backend/internal/pipeline"
	"moodsong/backend/internal/recommend"
	"moodsong/backend/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load configuration: %v", err)
	}
	configureLogging(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	visionClient, err := vision.NewClient(ctx, vision.Config{
		CredentialsFile: cfg.Vision.CredentialsFile,
		Endpoint:        cfg.Vision.Endpoint,
		Timeout:         cfg.Vision.Timeout,
		MaxResults:      cfg.Vision.MaxResults,
	})
	if err != nil {
		logrus.Fatalf("create vision client: %v", err)
	}
	defer visionClient.Close()

	classifier, err := classify.NewClient(classify.Config{
		APIKey:  cfg.Classifier.APIKey,
		BaseURL: cfg.Classifier.BaseURL,
		Model:   cfg.Classifier.Model,
		Timeout: cfg.Classifier.Timeout,
	})
	if err != nil {
		logrus.Fatalf("create classifier client: %v", err)
	}

	completer, err := ai.NewCompleter(ctx, cfg.Generator.Provider,
		ai.Config{
			APIKey:      cfg.Generator.APIKey,
			Model:       cfg.Generator.Model,
			BaseURL:     cfg.Generator.BaseURL,
			Temperature: cfg.Generator.Temperature,
			MaxTokens:   cfg.Generator.MaxTokens,
			Timeout:     cfg.Generator.Timeout,
		},
		ai.ArkConfig{
			APIKey:  cfg.Generator.Ark.APIKey,
			Model:   cfg.Generator.Ark.Model,
			BaseURL: cfg.Generator.Ark.BaseURL,
		},
	)
	if err != nil {
		logrus.Fatalf("create %s completer: %v", cfg.Generator.Provider, err)
	}

	imageDetector, err := mood.NewImageDetector(visionClient)
	if err != nil {
		logrus.Fatalf("create image detector: %v", err)
	}
	textDetector, err := mood.NewTextDetector(classifier, cfg.Classifier.MoodExamples())
	if err != nil {
		logrus.Fatalf("create text detector: %v", err)
	}
	generator, err := recommend.NewGenerator(completer, cfg.Generator.Artist)
	if err != nil {
		logrus.Fatalf("create generator: %v", err)
	}

	orchestrator := pipeline.NewOrchestrator(imageDetector, textDetector, generator)

	server, err := api.NewServer(api.Config{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}, orchestrator)
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"port":      cfg.Server.Port,
			"provider":  cfg.Generator.Provider,
			"artist":    cfg.Generator.Artist,
			"examples":  len(textDetector.Examples()),
			"log_level": cfg.Logging.Level,
		}).Info("starting moodsong backend")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server exited: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("shutdown signal received")

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
		return
	}
	logrus.Info("server stopped")
}

func configureLogging(cfg config.LoggingConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.WithError(err).Warnf("unknown log level %q, using info", cfg.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
