package meshcheck

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/quailyquaily/meshcheck/internal/httputil"
)

// Config describes how to reach the model mesh under test.
type Config struct {
	BaseURL string
	APIKey  string

	Timeout    time.Duration
	MaxRetries int
	Debug      bool
	LogLevel   string
	PlanFile   string
	NoColor    bool
}

// Env keys, read with the LITELLM_ prefix (e.g. "api_key" -> LITELLM_API_KEY).
const (
	EnvPrefix = "LITELLM"

	KeyAPIKey         = "api_key"
	KeyBaseURL        = "base_url"
	KeyTimeoutSeconds = "timeout_seconds"
	KeyMaxRetries     = "max_retries"
	KeyDebug          = "debug"
	KeyLogLevel       = "log_level"
	KeyTestPlan       = "test_plan"
)

const (
	DefaultAPIKey     = "sk-akshat-homelab-key-change-this"
	DefaultBaseURL    = "http://localhost:4000"
	DefaultMaxRetries = 2
	DefaultLogLevel   = "info"

	// MaskedKeyChars is how many leading characters of the API key are shown.
	MaskedKeyChars = 20
)

// LoadConfig resolves the configuration from the environment once.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault(KeyAPIKey, DefaultAPIKey)
	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyTimeoutSeconds, int(httputil.DefaultTimeout/time.Second))
	v.SetDefault(KeyMaxRetries, DefaultMaxRetries)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyTestPlan, "")
	_ = v.BindEnv("no_color", "NO_COLOR")

	timeoutSeconds, err := envInt(v, KeyTimeoutSeconds)
	if err != nil {
		return Config{}, err
	}
	maxRetries, err := envInt(v, KeyMaxRetries)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		BaseURL:    strings.TrimSpace(v.GetString(KeyBaseURL)),
		APIKey:     strings.TrimSpace(v.GetString(KeyAPIKey)),
		Timeout:    time.Duration(timeoutSeconds) * time.Second,
		MaxRetries: maxRetries,
		Debug:      v.GetBool(KeyDebug),
		LogLevel:   strings.TrimSpace(v.GetString(KeyLogLevel)),
		PlanFile:   strings.TrimSpace(v.GetString(KeyTestPlan)),
		NoColor:    strings.TrimSpace(v.GetString("no_color")) != "",
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg.withDefaults(), nil
}

// envInt rejects values viper would otherwise read as 0.
func envInt(v *viper.Viper, key string) (int, error) {
	raw := v.Get(key)
	if str, ok := raw.(string); ok {
		raw = strings.TrimSpace(str)
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		return 0, fmt.Errorf("%s_%s: %q is not an integer", EnvPrefix, strings.ToUpper(key), fmt.Sprint(v.Get(key)))
	}
	return n, nil
}

func (cfg Config) Validate() error {
	if cfg.Timeout < 0 {
		return fmt.Errorf("%s_%s must not be negative", EnvPrefix, strings.ToUpper(KeyTimeoutSeconds))
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("%s_%s must not be negative", EnvPrefix, strings.ToUpper(KeyMaxRetries))
	}
	return nil
}

func (cfg Config) withDefaults() Config {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIKey == "" {
		cfg.APIKey = DefaultAPIKey
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = httputil.DefaultTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return cfg
}

// MaskedAPIKey is the display form of the API key.
func (cfg Config) MaskedAPIKey() string {
	return MaskSecret(cfg.APIKey, MaskedKeyChars)
}

// MaskSecret keeps the first n characters of s and appends "...".
// It is for display only.
func MaskSecret(s string, n int) string {
	r := []rune(s)
	if n < 0 {
		n = 0
	}
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + "..."
}
