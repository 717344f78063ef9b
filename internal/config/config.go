// Package config loads the process-wide relay configuration.
//
// Values are read once at startup from .env files, the environment and an
// optional YAML config file, then treated as read-only for the lifetime of
// the process. Components receive a *Config and never re-read the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/smsrelay/pkg/errors"
)

// Translation provider selectors.
const (
	ProviderDeepL          = "deepl"
	ProviderLibreTranslate = "libretranslate"
	ProviderOpenAI         = "openai"
	ProviderGemini         = "gemini"
	ProviderNone           = "none"
)

// Providers lists every accepted TRANSLATION_PROVIDER value.
var Providers = []string{ProviderDeepL, ProviderLibreTranslate, ProviderOpenAI, ProviderGemini, ProviderNone}

// Defaults for settings that have one.
const (
	DefaultOpenPhoneURL      = "https://api.openphone.com"
	DefaultDeepLURL          = "https://api-free.deepl.com/v2/translate"
	DefaultLibreTranslateURL = "http://localhost:5000"
	DefaultOpenAIBaseURL     = "https://api.openai.com/v1"
	DefaultOpenAIModel       = "gpt-4o-mini"
	DefaultGeminiModel       = "gemini-2.0-flash"
	DefaultPort              = 3000
	DefaultStaticDir         = "./public"
	DefaultClientTimeout     = 30 * time.Second
)

// Config holds the relay configuration.
type Config struct {
	// Messaging provider
	OpenPhoneURL    string
	OpenPhoneAPIKey string
	DefaultFrom     string
	DefaultUserID   string

	// Translation
	TranslationProvider  string
	DeepLAPIKey          string
	DeepLURL             string
	LibreTranslateURL    string
	LibreTranslateAPIKey string
	OpenAIAPIKey         string
	OpenAIBaseURL        string
	OpenAIModel          string
	GeminiAPIKey         string
	GeminiModel          string

	// HTTP server
	Host           string
	Port           int
	AllowedOrigins []string
	StaticDir      string
	MetricsEnabled bool

	// Outbound HTTP
	ClientTimeout time.Duration

	// Config file actually read, if any
	ConfigFile string
}

// Load reads configuration in order of precedence:
//  1. Environment variables
//  2. .env.local, then .env
//  3. Config file (explicit path, or ~/.smsrelay.yaml / ./.smsrelay.yaml)
//  4. Defaults
//
// Command-line flags are applied afterwards by the caller.
func Load(configFile string) (*Config, error) {
	LoadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", fmt.Sprintf("reading %s", configFile), err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".smsrelay")
		_ = v.ReadInConfig()
	}

	cfg := fromViper(v)
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFiles loads .env files without overriding variables already set.
// .env.local is loaded first so its values win over .env.
func LoadEnvFiles() {
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("openphone_api_url", DefaultOpenPhoneURL)
	v.SetDefault("translation_provider", ProviderDeepL)
	v.SetDefault("deepl_api_url", DefaultDeepLURL)
	v.SetDefault("libretranslate_url", DefaultLibreTranslateURL)
	v.SetDefault("openai_base_url", DefaultOpenAIBaseURL)
	v.SetDefault("openai_model", DefaultOpenAIModel)
	v.SetDefault("gemini_model", DefaultGeminiModel)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("allowed_origin", "*")
	v.SetDefault("static_dir", DefaultStaticDir)
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("http_client_timeout", DefaultClientTimeout)
}

func fromViper(v *viper.Viper) *Config {
	gemini := v.GetString("gemini_api_key")
	if gemini == "" {
		gemini = v.GetString("google_api_key")
	}

	return &Config{
		OpenPhoneURL:    strings.TrimRight(v.GetString("openphone_api_url"), "/"),
		OpenPhoneAPIKey: v.GetString("openphone_api_key"),
		DefaultFrom:     v.GetString("openphone_from"),
		DefaultUserID:   v.GetString("openphone_user_id"),

		TranslationProvider:  strings.ToLower(strings.TrimSpace(v.GetString("translation_provider"))),
		DeepLAPIKey:          v.GetString("deepl_api_key"),
		DeepLURL:             v.GetString("deepl_api_url"),
		LibreTranslateURL:    strings.TrimRight(v.GetString("libretranslate_url"), "/"),
		LibreTranslateAPIKey: v.GetString("libretranslate_api_key"),
		OpenAIAPIKey:         v.GetString("openai_api_key"),
		OpenAIBaseURL:        strings.TrimRight(v.GetString("openai_base_url"), "/"),
		OpenAIModel:          v.GetString("openai_model"),
		GeminiAPIKey:         gemini,
		GeminiModel:          v.GetString("gemini_model"),

		Host:           v.GetString("host"),
		Port:           v.GetInt("port"),
		AllowedOrigins: splitList(v.GetString("allowed_origin")),
		StaticDir:      v.GetString("static_dir"),
		MetricsEnabled: v.GetBool("metrics_enabled"),

		ClientTimeout: v.GetDuration("http_client_timeout"),
	}
}

// Validate rejects settings that cannot work at all.
func (c *Config) Validate() error {
	if c.TranslationProvider == "" {
		c.TranslationProvider = ProviderNone
	}
	if !slices.Contains(Providers, c.TranslationProvider) {
		return errors.NewConfigError("translation",
			fmt.Sprintf("unknown TRANSLATION_PROVIDER %q (want one of %s)", c.TranslationProvider, strings.Join(Providers, ", ")), nil)
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.NewConfigError("server", fmt.Sprintf("invalid PORT %d", c.Port), nil)
	}
	return nil
}

// Warnings reports settings that are missing but only fail at first use.
func (c *Config) Warnings() []string {
	var w []string
	if c.OpenPhoneAPIKey == "" {
		w = append(w, "OPENPHONE_API_KEY is not set; provider calls will be rejected upstream")
	}
	if c.DefaultFrom == "" {
		w = append(w, "OPENPHONE_FROM is not set; POST /messages requires a from field")
	}
	switch c.TranslationProvider {
	case ProviderDeepL:
		if c.DeepLAPIKey == "" {
			w = append(w, "DEEPL_API_KEY is not set; translation will fall back to original text")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			w = append(w, "OPENAI_API_KEY is not set; translation will fall back to original text")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			w = append(w, "GEMINI_API_KEY is not set; translation will fall back to original text")
		}
	}
	if c.OpenAIAPIKey == "" {
		w = append(w, "OPENAI_API_KEY is not set; POST /translate will return 500")
	}
	return w
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StaticDirExists reports whether the static asset directory is present.
func (c *Config) StaticDirExists() bool {
	if c.StaticDir == "" {
		return false
	}
	info, err := os.Stat(filepath.Clean(c.StaticDir))
	return err == nil && info.IsDir()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
