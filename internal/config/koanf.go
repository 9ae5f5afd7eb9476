package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"moodsong/backend/internal/mood"
)

// DefaultConfigPaths lists the paths searched for a config file, first match wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			AllowedOrigins:  []string{"http://localhost:3000"},
			MaxUploadBytes:  10 << 20,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Vision: VisionConfig{
			Timeout:    30 * time.Second,
			MaxResults: 10,
		},
		Classifier: ClassifierConfig{
			BaseURL: "https://api.cohere.ai",
			Model:   "embed-english-v3.0",
			Timeout: 30 * time.Second,
		},
		Generator: GeneratorConfig{
			Provider: "openai",
			Artist:   "Taylor Swift",
			Model:    "gpt-4",
			BaseURL:  "https://api.openai.com/v1",
			Timeout:  60 * time.Second,
		},
	}
}

// Load layers defaults, an optional YAML file and environment variables, then validates.
func Load() (*Config, error) {
	return load(findConfigFile())
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if len(cfg.Classifier.Examples) == 0 {
		cfg.Classifier.Examples = defaultExamples()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MoodExamples converts the configured few-shot set for the text detector.
func (c ClassifierConfig) MoodExamples() []mood.Example {
	out := make([]mood.Example, 0, len(c.Examples))
	for _, ex := range c.Examples {
		out = append(out, mood.Example{Text: ex.Text, Label: ex.Label})
	}
	return out
}

func defaultExamples() []FewShotExample {
	defaults := mood.DefaultExamples()
	out := make([]FewShotExample, 0, len(defaults))
	for _, ex := range defaults {
		out = append(out, FewShotExample{Text: ex.Text, Label: ex.Label})
	}
	return out
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"server.allowed_origins",
}

// processSliceFields splits comma-separated env values into lists.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"port":             "server.port",
	"allowed_origins":  "server.allowed_origins",
	"max_upload_bytes": "server.max_upload_bytes",
	"shutdown_timeout": "server.shutdown_timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",

	"google_application_credentials": "vision.credentials_file",
	"vision_endpoint":                "vision.endpoint",
	"vision_timeout":                 "vision.timeout",
	"vision_max_results":             "vision.max_results",

	"cohere_api_key":  "classifier.api_key",
	"cohere_base_url": "classifier.base_url",
	"cohere_model":    "classifier.model",
	"cohere_timeout":  "classifier.timeout",

	"generator_provider": "generator.provider",
	"recommend_artist":   "generator.artist",
	"openai_api_key":     "generator.api_key",
	"openai_model":       "generator.model",
	"openai_base_url":    "generator.base_url",
	"openai_temperature": "generator.temperature",
	"openai_max_tokens":  "generator.max_tokens",
	"openai_timeout":     "generator.timeout",
	"ark_api_key":        "generator.ark.api_key",
	"ark_model":          "generator.ark.model",
	"ark_base_url":       "generator.ark.base_url",
}

// envTransformFunc maps known environment variables onto config keys and drops the rest.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
