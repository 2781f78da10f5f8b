package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Component variants.
const (
	TranscriberMock    = "mock"
	TranscriberWhisper = "whisper"
	FactCheckerMock    = "mock"
	FactCheckerOpenAI  = "openai"
	TopicsLocal        = "local"
	TopicsOpenAI       = "openai"
	SuggestTemplate    = "template"
	SuggestOpenAI      = "openai"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
		// timeouts in seconds
		ReadTimeout     int `yaml:"readTimeout"`
		WriteTimeout    int `yaml:"writeTimeout"`
		IdleTimeout     int `yaml:"idleTimeout"`
		ShutdownTimeout int `yaml:"shutdownTimeout"`
		// MaxAudioBytes caps the length of the audio field in a request body.
		MaxAudioBytes int `yaml:"maxAudioBytes"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json | console
	} `yaml:"log"`

	OpenAI struct {
		APIKey      string `yaml:"apiKey"`
		BaseURL     string `yaml:"baseURL"`
		Model       string `yaml:"model"`
		SpeechModel string `yaml:"speechModel"`
		AudioName   string `yaml:"audioName"`
		Timeout     int    `yaml:"timeout"`
	} `yaml:"openai"`

	Components struct {
		Transcriber  string `yaml:"transcriber"`
		FactChecker  string `yaml:"factChecker"`
		TopicTracker string `yaml:"topicTracker"`
		Suggestions  string `yaml:"suggestions"`
	} `yaml:"components"`

	NLP struct {
		InferenceURL       string   `yaml:"inferenceURL"`
		InferenceToken     string   `yaml:"inferenceToken"`
		SentimentModel     string   `yaml:"sentimentModel"`
		ZeroShotModel      string   `yaml:"zeroShotModel"`
		ClassifierMaxChars int      `yaml:"classifierMaxChars"`
		Labels             []string `yaml:"labels"`
		Topics             int      `yaml:"topics"`
		Iterations         int      `yaml:"iterations"`
		Seed               int64    `yaml:"seed"`
	} `yaml:"nlp"`

	RateLimit struct {
		Capacity        int `yaml:"capacity"`
		RefillPerSecond int `yaml:"refillPerSecond"`
	} `yaml:"rateLimit"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var c Config
	c.Server.Port = 8080
	c.Server.AllowedOrigins = []string{"*"}
	c.Server.ReadTimeout = 30
	c.Server.WriteTimeout = 120
	c.Server.IdleTimeout = 60
	c.Server.ShutdownTimeout = 10
	c.Server.MaxAudioBytes = 25 << 20
	c.Log.Level = "info"
	c.Log.Format = "json"
	c.OpenAI.Model = "gpt-3.5-turbo"
	c.OpenAI.SpeechModel = "whisper-1"
	c.OpenAI.AudioName = "audio.mp3"
	c.OpenAI.Timeout = 60
	c.Components.Transcriber = TranscriberMock
	c.Components.FactChecker = FactCheckerMock
	c.Components.TopicTracker = TopicsLocal
	c.Components.Suggestions = SuggestTemplate
	c.NLP.ClassifierMaxChars = 512
	c.NLP.Labels = []string{"politics", "technology", "sports", "entertainment", "science"}
	c.NLP.Topics = 5
	c.NLP.Iterations = 200
	c.NLP.Seed = 1
	c.RateLimit.Capacity = 20
	c.RateLimit.RefillPerSecond = 1
	return &c
}

// Load baca .env, lalu config.yaml (kalau ada), lalu override dari env.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.OpenAI.BaseURL = v
	}
	if v, err := strconv.Atoi(os.Getenv("PORT")); err == nil && v > 0 {
		c.Server.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate rejects a missing credential and unknown component variants.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	checks := []struct {
		key, value string
		allowed    []string
	}{
		{"components.transcriber", c.Components.Transcriber, []string{TranscriberMock, TranscriberWhisper}},
		{"components.factChecker", c.Components.FactChecker, []string{FactCheckerMock, FactCheckerOpenAI}},
		{"components.topicTracker", c.Components.TopicTracker, []string{TopicsLocal, TopicsOpenAI}},
		{"components.suggestions", c.Components.Suggestions, []string{SuggestTemplate, SuggestOpenAI}},
		{"log.format", c.Log.Format, []string{"json", "console"}},
	}
	for _, ch := range checks {
		if !contains(ch.allowed, ch.value) {
			return fmt.Errorf("%s: unknown value %q (allowed: %s)", ch.key, ch.value, strings.Join(ch.allowed, ", "))
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: invalid port %d", c.Server.Port)
	}
	if c.NLP.Topics <= 0 {
		return fmt.Errorf("nlp.topics must be positive")
	}
	if len(c.NLP.Labels) == 0 {
		return fmt.Errorf("nlp.labels must not be empty")
	}
	return nil
}

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Server.Port) }

func Seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
