package lingoquiz

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read into the config
const EnvPrefix = "LINGOQUIZ_"

// Config holds the settings shared by the executables
type Config struct {
	HTTP       HTTPConfig       `koanf:"http"`
	Session    SessionConfig    `koanf:"session"`
	Wiki       WikiConfig       `koanf:"wiki"`
	Translator TranslatorConfig `koanf:"translator"`
	OpenAI     OpenAIConfig     `koanf:"openai"`
	Speech     SpeechConfig     `koanf:"speech"`
	Verbose    bool             `koanf:"verbose"`
}

type HTTPConfig struct {
	Addr    string        `koanf:"addr" validate:"required"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

type SessionConfig struct {
	Secret string `koanf:"secret" validate:"required,min=16"`
}

type WikiConfig struct {
	Endpoint  string `koanf:"endpoint" validate:"required"`
	UserAgent string `koanf:"user_agent" validate:"required"`
}

type TranslatorConfig struct {
	Provider string `koanf:"provider" validate:"oneof=google openai"`
	Endpoint string `koanf:"endpoint" validate:"required,url"`
}

type OpenAIConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model" validate:"required"`
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`
}

type SpeechConfig struct {
	Endpoint      string `koanf:"endpoint" validate:"required,url"`
	CloudAPIKey   string `koanf:"cloud_api_key"`
	CloudEndpoint string `koanf:"cloud_endpoint" validate:"required,url"`
	MaxChars      int    `koanf:"max_chars" validate:"gt=0"`
}

var defaults = map[string]any{
	"http.addr":             ":8180",
	"http.timeout":          "10s",
	"session.secret":        "change-me-lingoquiz-secret",
	"wiki.endpoint":         "https://{lang}.wikipedia.org",
	"wiki.user_agent":       "lingoquiz/1.0 (https://github.com/lingoquiz)",
	"translator.provider":   "google",
	"translator.endpoint":   "https://translate.googleapis.com/translate_a/single",
	"openai.model":          "gpt-4o-mini",
	"speech.endpoint":       "https://translate.google.com/translate_tts",
	"speech.cloud_endpoint": "https://texttospeech.googleapis.com/v1/text:synthesize",
	"speech.max_chars":      5000,
	"verbose":               false,
}

// RegisterFlags adds the config flags to flags
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to a YAML config file")
	flags.String("http.addr", ":8180", "Address for the web server to listen on")
	flags.String("translator.provider", "google", "Translation provider (google or openai)")
	flags.String("openai.api_key", "", "OpenAI API key (or set LINGOQUIZ_OPENAI__API_KEY)")
	flags.Bool("verbose", false, "Enable verbose debugging output")
}

// LoadConfig builds the config from defaults, an optional YAML file,
// a .env file, the environment and finally the parsed flags.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if flags != nil {
		if path, _ := flags.GetString("config"); path != "" {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	envKey := func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the config for missing or inconsistent values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Translator.Provider == "openai" && c.OpenAI.APIKey == "" {
		return errors.New("invalid config: openai.api_key is required when translator.provider is openai")
	}
	return nil
}
