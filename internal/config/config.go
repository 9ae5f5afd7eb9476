package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the full runtime configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Vision     VisionConfig     `koanf:"vision"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Generator  GeneratorConfig  `koanf:"generator"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`
	MaxUploadBytes  int64         `koanf:"max_upload_bytes" validate:"min=1"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=0"`
}

// LoggingConfig controls logrus output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

// VisionConfig configures the Cloud Vision face detector.
type VisionConfig struct {
	CredentialsFile string        `koanf:"credentials_file"`
	Endpoint        string        `koanf:"endpoint"`
	Timeout         time.Duration `koanf:"timeout" validate:"min=0"`
	MaxResults      int           `koanf:"max_results" validate:"min=0"`
}

// ClassifierConfig configures the few-shot text classifier.
type ClassifierConfig struct {
	APIKey   string           `koanf:"api_key" validate:"required"`
	BaseURL  string           `koanf:"base_url" validate:"omitempty,url"`
	Model    string           `koanf:"model"`
	Timeout  time.Duration    `koanf:"timeout" validate:"min=0"`
	Examples []FewShotExample `koanf:"examples" validate:"dive"`
}

// FewShotExample is one labeled utterance for the classifier.
type FewShotExample struct {
	Text  string `koanf:"text" validate:"required"`
	Label string `koanf:"label" validate:"required"`
}

// GeneratorConfig configures the recommendation provider.
type GeneratorConfig struct {
	Provider    string        `koanf:"provider" validate:"oneof=openai ark"`
	Artist      string        `koanf:"artist"`
	APIKey      string        `koanf:"api_key"`
	Model       string        `koanf:"model"`
	BaseURL     string        `koanf:"base_url" validate:"omitempty,url"`
	Temperature float64       `koanf:"temperature" validate:"min=0,max=2"`
	MaxTokens   int           `koanf:"max_tokens" validate:"min=0"`
	Timeout     time.Duration `koanf:"timeout" validate:"min=0"`
	Ark         ArkConfig     `koanf:"ark"`
}

// ArkConfig configures the Volcengine Ark provider.
type ArkConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`
}

var validate = validator.New()

// Validate checks struct tags and provider-specific requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return err
	}

	switch c.Generator.Provider {
	case "openai":
		if strings.TrimSpace(c.Generator.APIKey) == "" {
			return errors.New("invalid configuration: generator.api_key is required for the openai provider")
		}
	case "ark":
		if strings.TrimSpace(c.Generator.Ark.APIKey) == "" || strings.TrimSpace(c.Generator.Ark.Model) == "" {
			return errors.New("invalid configuration: generator.ark.api_key and generator.ark.model are required for the ark provider")
		}
	}
	return nil
}
