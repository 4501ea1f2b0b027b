// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	Cache      CacheConfig
	DocDB      DocDBConfig
	OpenAI     OpenAIConfig
	WhatsApp   WhatsAppConfig
	Escalation EscalationConfig
	Log        LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host    string
	Port    int
	GinMode string
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheConfig holds cache-related configuration.
type CacheConfig struct {
	Type     string
	Host     string
	Port     string
	Password string
	DB       int
	// SentimentTTL bounds how long a classified sentiment for a given
	// message is reused before it is re-classified.
	SentimentTTL time.Duration
}

// DocDBConfig holds document database configuration.
type DocDBConfig struct {
	Type     string
	URI      string
	Database string
}

// OpenAIConfig holds the chat-completion classifier configuration.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	RequestTimeout time.Duration
}

// WhatsAppConfig holds outbound channel configuration.
type WhatsAppConfig struct {
	AccessToken string
	// PhoneNumberID identifies the sending number on the Graph API.
	PhoneNumberID string
	APIVersion    string
	BaseURL       string
	// BusinessFallbackNumber is the notification target used when a
	// business record has no phone of its own.
	BusinessFallbackNumber string
	// EscalationTemplateName is the pre-approved template used for the
	// first notification attempt.
	EscalationTemplateName string
	Timeout                time.Duration
}

// EscalationConfig holds the escalation decision tunables.
type EscalationConfig struct {
	// FrustrationThreshold is the consecutive-frustrated-message count at
	// which the frustration trigger fires.
	FrustrationThreshold int
	// SentimentHistoryWindow is how many trailing history entries are
	// scanned for the staff-reset boundary.
	SentimentHistoryWindow int
	// NoStaffWindow is the trailing slice analyzed when the scanned window
	// contains no staff message.
	NoStaffWindow int
	// NotificationHistoryLength is how many trailing messages are rendered
	// into operator notifications.
	NotificationHistoryLength int
	// SiteBaseURL is the dashboard base used in notification links.
	SiteBaseURL string
	// RetryBaseDelay and RetryMaxDelay shape the notification delivery
	// backoff schedule; MaxDeliveryAttempts bounds it.
	RetryBaseDelay      time.Duration
	RetryMaxDelay       time.Duration
	MaxDeliveryAttempts int
	// ShortMessageLength is the trimmed length at or below which a message
	// is too ambiguous for language detection.
	ShortMessageLength int
	// LanguageSwitchConfidence is the classifier confidence required to
	// switch an already-established conversation language.
	LanguageSwitchConfidence float64
	// ProxyMaxDuration bounds how long a proxy session may stay open.
	ProxyMaxDuration time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvAsInt("SERVER_PORT", 8080),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		Cache: CacheConfig{
			Type:         getEnv("CACHE_TYPE", "redis"),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			SentimentTTL: time.Duration(getEnvAsInt("SENTIMENT_CACHE_TTL_SECONDS", 1800)) * time.Second,
		},
		DocDB: DocDBConfig{
			Type:     getEnv("DOCDB_TYPE", "mongodb"),
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "skedy"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o"),
			RequestTimeout: time.Duration(getEnvAsInt("OPENAI_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:            getEnv("WHATSAPP_ACCESS_TOKEN", ""),
			PhoneNumberID:          getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
			APIVersion:             getEnv("WHATSAPP_API_VERSION", "v23.0"),
			BaseURL:                getEnv("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			BusinessFallbackNumber: getEnv("BUSINESS_WHATSAPP_NUMBER", ""),
			EscalationTemplateName: getEnv("WHATSAPP_ESCALATION_TEMPLATE", "escalation_alert"),
			Timeout:                time.Duration(getEnvAsInt("WHATSAPP_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Escalation: EscalationConfig{
			FrustrationThreshold:      getEnvAsInt("ESCALATION_FRUSTRATION_THRESHOLD", 3),
			SentimentHistoryWindow:    getEnvAsInt("ESCALATION_SENTIMENT_HISTORY_WINDOW", 15),
			NoStaffWindow:             getEnvAsInt("ESCALATION_NO_STAFF_WINDOW", 10),
			NotificationHistoryLength: getEnvAsInt("ESCALATION_NOTIFICATION_HISTORY_LENGTH", 10),
			SiteBaseURL:               getEnv("SITE_BASE_URL", "https://skedy.io"),
			RetryBaseDelay:            time.Duration(getEnvAsInt("NOTIFICATION_RETRY_BASE_SECONDS", 1)) * time.Second,
			RetryMaxDelay:             time.Duration(getEnvAsInt("NOTIFICATION_RETRY_MAX_SECONDS", 300)) * time.Second,
			MaxDeliveryAttempts:       getEnvAsInt("NOTIFICATION_MAX_DELIVERY_ATTEMPTS", 5),
			ShortMessageLength:        getEnvAsInt("LANGUAGE_SHORT_MESSAGE_LENGTH", 8),
			LanguageSwitchConfidence:  getEnvAsFloat("LANGUAGE_SWITCH_CONFIDENCE", 0.8),
			ProxyMaxDuration:          time.Duration(getEnvAsInt("PROXY_MAX_DURATION_HOURS", 24)) * time.Hour,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as a float with a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
