package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	appconv "github.com/bryanwahyu/podcast-assistant/internal/application/conversation"
	"github.com/bryanwahyu/podcast-assistant/internal/config"
	"github.com/bryanwahyu/podcast-assistant/internal/domain/conversation"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/ai/openai"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/analyzer"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/factcheck"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/httpserver"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/logging"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/nlp"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/nlp/hub"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/suggest"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/topics"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/transcribe"
	"github.com/bryanwahyu/podcast-assistant/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	chat := openai.NewClient(openai.Options{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		SpeechModel: cfg.OpenAI.SpeechModel,
		AudioName:   cfg.OpenAI.AudioName,
		HTTPClient:  &http.Client{Timeout: config.Seconds(cfg.OpenAI.Timeout)},
	})
	checkers := map[string]middleware.HealthChecker{
		"openai": middleware.PingChecker{Pinger: chat},
	}

	var (
		classifier analyzer.SentimentClassifier = nlp.LexiconClassifier{MaxChars: cfg.NLP.ClassifierMaxChars}
		zeroShot   analyzer.ZeroShotClassifier  = nlp.KeywordZeroShot{}
	)
	if cfg.NLP.InferenceURL != "" {
		h := hub.NewClient(hub.Options{
			BaseURL:        cfg.NLP.InferenceURL,
			Token:          cfg.NLP.InferenceToken,
			SentimentModel: cfg.NLP.SentimentModel,
			ZeroShotModel:  cfg.NLP.ZeroShotModel,
		})
		classifier, zeroShot = h, h
		checkers["inference"] = middleware.PingChecker{Pinger: h}
	}

	svc := appconv.NewService(
		buildTranscriber(cfg, chat, logger),
		analyzer.New(chat, classifier, zeroShot, analyzer.Options{
			ClassifierMaxChars: cfg.NLP.ClassifierMaxChars,
			Labels:             cfg.NLP.Labels,
			LDA:                nlp.LDA{Topics: cfg.NLP.Topics, Iterations: cfg.NLP.Iterations, Seed: cfg.NLP.Seed},
		}, logger.Named("analyzer")),
		buildFactChecker(cfg, chat, logger),
		buildTopicTracker(cfg, chat, logger),
		buildSuggestions(cfg, chat, logger),
		logger.Named("service"),
	)
	svc.Recorder = middleware.Recorder{}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSecond)
	stopSweep := make(chan struct{})
	go limiter.Run(stopSweep)

	maxAudioChars := (cfg.Server.MaxAudioBytes + 2) / 3 * 4 // base64 length
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: httpserver.NewRouter(svc, httpserver.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			MaxAudioChars:  maxAudioChars,
			RateLimiter:    limiter,
			HealthCheckers: checkers,
			Logger:         logger.Named("http"),
		}),
		ReadTimeout:  config.Seconds(cfg.Server.ReadTimeout),
		WriteTimeout: config.Seconds(cfg.Server.WriteTimeout),
		IdleTimeout:  config.Seconds(cfg.Server.IdleTimeout),
	}

	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("transcriber", cfg.Components.Transcriber),
			zap.String("fact_checker", cfg.Components.FactChecker),
			zap.String("topic_tracker", cfg.Components.TopicTracker),
			zap.String("suggestions", cfg.Components.Suggestions),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server")
	close(stopSweep)

	ctx, cancel := context.WithTimeout(context.Background(), config.Seconds(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

func buildTranscriber(cfg *config.Config, chat *openai.Client, logger *zap.Logger) conversation.Transcriber {
	if cfg.Components.Transcriber == config.TranscriberWhisper {
		return transcribe.NewWhisper(chat, logger.Named("transcriber"))
	}
	return transcribe.Mock{}
}

func buildFactChecker(cfg *config.Config, chat *openai.Client, logger *zap.Logger) conversation.FactChecker {
	if cfg.Components.FactChecker == config.FactCheckerOpenAI {
		return factcheck.NewHosted(chat, logger.Named("factcheck"))
	}
	return factcheck.Mock{}
}

func buildTopicTracker(cfg *config.Config, chat *openai.Client, logger *zap.Logger) conversation.TopicTracker {
	if cfg.Components.TopicTracker == config.TopicsOpenAI {
		return topics.NewHosted(chat, logger.Named("topics"))
	}
	return topics.Local{}
}

func buildSuggestions(cfg *config.Config, chat *openai.Client, logger *zap.Logger) conversation.SuggestionGenerator {
	if cfg.Components.Suggestions == config.SuggestOpenAI {
		return suggest.NewHosted(chat, logger.Named("suggest"))
	}
	return suggest.Template{}
}
