package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/roster/internal/notify"
	"github.com/MarcoPoloResearchLab/roster/internal/users"
	"github.com/spf13/viper"
)

const (
	envPrefix               = "ROSTER"
	defaultHTTPAddress      = "0.0.0.0:8080"
	defaultClientBaseURL    = "http://127.0.0.1:8080"
	defaultStoreLatencyMS   = int(users.DefaultLatency / time.Millisecond)
	defaultTokenIssuer      = "roster-auth"
	defaultTokenAudience    = "roster-api"
	defaultTokenTTLMinutes  = 60
	defaultNotifyTTLMS      = int(notify.DefaultTTL / time.Millisecond)
	defaultHeartbeatSeconds = 15
	defaultLogLevel         = "info"
	defaultLogFormat        = "json"
)

// AppConfig captures runtime configuration for the API server and the client commands.
type AppConfig struct {
	HTTPAddress       string
	ClientBaseURL     string
	DatabasePath      string
	StoreLatency      time.Duration
	SeedDemoUsers     bool
	SigningSecret     string
	TokenIssuer       string
	TokenAudience     string
	TokenTTL          time.Duration
	NotificationTTL   time.Duration
	HeartbeatInterval time.Duration
	AllowedOrigins    []string
	LogLevel          string
	LogFormat         string
}

// UsesMemoryStore reports whether records live in process memory instead of SQLite.
func (c AppConfig) UsesMemoryStore() bool {
	return strings.TrimSpace(c.DatabasePath) == ""
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("client.base_url", defaultClientBaseURL)
	configViper.SetDefault("database.path", "")
	configViper.SetDefault("store.latency_ms", defaultStoreLatencyMS)
	configViper.SetDefault("store.seed", true)
	configViper.SetDefault("auth.issuer", defaultTokenIssuer)
	configViper.SetDefault("auth.audience", defaultTokenAudience)
	configViper.SetDefault("auth.token_ttl_minutes", defaultTokenTTLMinutes)
	configViper.SetDefault("notify.ttl_ms", defaultNotifyTTLMS)
	configViper.SetDefault("notify.heartbeat_seconds", defaultHeartbeatSeconds)
	configViper.SetDefault("cors.allowed_origins", "")
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("log.format", defaultLogFormat)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:       configViper.GetString("http.address"),
		ClientBaseURL:     configViper.GetString("client.base_url"),
		DatabasePath:      strings.TrimSpace(configViper.GetString("database.path")),
		StoreLatency:      time.Duration(configViper.GetInt("store.latency_ms")) * time.Millisecond,
		SeedDemoUsers:     configViper.GetBool("store.seed"),
		SigningSecret:     configViper.GetString("auth.signing_secret"),
		TokenIssuer:       configViper.GetString("auth.issuer"),
		TokenAudience:     configViper.GetString("auth.audience"),
		TokenTTL:          time.Duration(configViper.GetInt("auth.token_ttl_minutes")) * time.Minute,
		NotificationTTL:   time.Duration(configViper.GetInt("notify.ttl_ms")) * time.Millisecond,
		HeartbeatInterval: time.Duration(configViper.GetInt("notify.heartbeat_seconds")) * time.Second,
		AllowedOrigins:    splitList(configViper.GetStringSlice("cors.allowed_origins")),
		LogLevel:          configViper.GetString("log.level"),
		LogFormat:         configViper.GetString("log.format"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	if c.StoreLatency < 0 {
		return fmt.Errorf("store.latency_ms must not be negative")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl_minutes must be positive")
	}
	if c.NotificationTTL <= 0 {
		return fmt.Errorf("notify.ttl_ms must be positive")
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("notify.heartbeat_seconds must be positive")
	}
	return nil
}

// splitList accepts both repeated values and a single comma separated value.
func splitList(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
	}
	return result
}
