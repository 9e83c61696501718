package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"civiguard-backend-go/internal/models"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
	StoreMemory    = "memory"
)

// AI providers accepted by AI_PROVIDER.
const (
	AIProviderGemini = "gemini"
	AIProviderOpenAI = "openai"
	AIProviderNone   = "none"
)

const minJWTSecretLength = 32

// Config holds all configuration for the application.
type Config struct {
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	StoreDriver                      string `mapstructure:"STORE_DRIVER"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	MongoURI                         string `mapstructure:"MONGODB_URI"`
	MongoDatabase                    string `mapstructure:"MONGODB_DATABASE"`

	GoogleClientID     string        `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string        `mapstructure:"GOOGLE_CALLBACK_URL"`
	JWTSecret          string        `mapstructure:"JWT_SECRET"`
	TokenTTL           time.Duration `mapstructure:"TOKEN_TTL"`
	FrontendURL        string        `mapstructure:"FRONTEND_URL"`
	AdminEmails        []string      `mapstructure:"ADMIN_EMAILS"`

	AIProvider    string        `mapstructure:"AI_PROVIDER"`
	GeminiAPIKey  string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel   string        `mapstructure:"GEMINI_MODEL"`
	GeminiBaseURL string        `mapstructure:"GEMINI_BASE_URL"`
	OpenAIAPIKey  string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel   string        `mapstructure:"OPENAI_MODEL"`
	OpenAIBaseURL string        `mapstructure:"OPENAI_BASE_URL"`
	AITimeout     time.Duration `mapstructure:"AI_TIMEOUT"`

	OfficersCSVPath      string `mapstructure:"OFFICERS_CSV_PATH"`
	PublicByDefault      bool   `mapstructure:"PUBLIC_BY_DEFAULT"`
	StrictStatusWorkflow bool   `mapstructure:"STRICT_STATUS_WORKFLOW"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	AMQPURL   string `mapstructure:"AMQP_URL"`
	AMQPQueue string `mapstructure:"AMQP_QUEUE"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`

	StaticDir    string  `mapstructure:"STATIC_DIR"`
	DefaultLat   float64 `mapstructure:"DEFAULT_LAT"`
	DefaultLng   float64 `mapstructure:"DEFAULT_LNG"`
	MapBoundsRaw string  `mapstructure:"MAP_BOUNDS"`

	MapBounds models.BoundingBox `mapstructure:"-"`
}

var envKeys = []string{
	"PORT", "GIN_MODE",
	"STORE_DRIVER", "FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"MONGODB_URI", "MONGODB_DATABASE",
	"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_CALLBACK_URL", "JWT_SECRET", "TOKEN_TTL", "FRONTEND_URL", "ADMIN_EMAILS",
	"AI_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "AI_TIMEOUT",
	"OFFICERS_CSV_PATH", "PUBLIC_BY_DEFAULT", "STRICT_STATUS_WORKFLOW",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"AMQP_URL", "AMQP_QUEUE",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "MAIL_FROM",
	"STATIC_DIR", "DEFAULT_LAT", "DEFAULT_LNG", "MAP_BOUNDS",
}

// LoadConfig loads configuration from environment variables using Viper.
// Secrets have no defaults; a missing secret fails startup.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("STORE_DRIVER", StoreFirestore)
	v.SetDefault("MONGODB_DATABASE", "civiguard")
	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("AI_PROVIDER", AIProviderGemini)
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("OPENAI_MODEL", "gpt-4o")
	v.SetDefault("AI_TIMEOUT", "8s")
	v.SetDefault("OFFICERS_CSV_PATH", "data/emailsData.csv")
	v.SetDefault("PUBLIC_BY_DEFAULT", false)
	v.SetDefault("STRICT_STATUS_WORKFLOW", false)
	v.SetDefault("AMQP_QUEUE", "complaint-events")
	v.SetDefault("SMTP_PORT", 2525)
	v.SetDefault("DEFAULT_LAT", 17.385)
	v.SetDefault("DEFAULT_LNG", 78.4867)
	v.SetDefault("MAP_BOUNDS", "17.2,78.3,17.6,78.6")

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}
	cfg.AdminEmails = normalizeEmails(cfg.AdminEmails)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.StoreDriver {
	case StoreFirestore:
		if cfg.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required")
		}
	case StoreMongo:
		if cfg.MongoURI == "" {
			return errors.New("MONGODB_URI is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER %q is not supported", cfg.StoreDriver)
	}

	if cfg.GoogleClientID == "" {
		return errors.New("GOOGLE_CLIENT_ID is required")
	}
	if cfg.GoogleClientSecret == "" {
		return errors.New("GOOGLE_CLIENT_SECRET is required")
	}
	if cfg.GoogleCallbackURL == "" {
		return errors.New("GOOGLE_CALLBACK_URL is required")
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTSecretLength)
	}
	if cfg.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if cfg.FrontendURL == "" {
		return errors.New("FRONTEND_URL is required")
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")

	switch cfg.AIProvider {
	case AIProviderGemini:
		if cfg.GeminiAPIKey == "" {
			cfg.AIProvider = AIProviderNone
		}
	case AIProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			cfg.AIProvider = AIProviderNone
		}
	case AIProviderNone:
	default:
		return fmt.Errorf("AI_PROVIDER %q is not supported", cfg.AIProvider)
	}
	if cfg.AITimeout <= 0 {
		return errors.New("AI_TIMEOUT must be positive")
	}

	bounds, err := models.ParseBoundingBox(cfg.MapBoundsRaw)
	if err != nil {
		return fmt.Errorf("MAP_BOUNDS: %w", err)
	}
	cfg.MapBounds = bounds
	if err := (models.Location{Lat: cfg.DefaultLat, Lng: cfg.DefaultLng}).Validate(); err != nil {
		return fmt.Errorf("DEFAULT_LAT/DEFAULT_LNG: %w", err)
	}
	return nil
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (cfg *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range cfg.AdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

// SMTPEnabled reports whether outbound email is configured.
func (cfg *Config) SMTPEnabled() bool {
	return cfg.SMTPHost != "" && cfg.MailFrom != ""
}

// DefaultLocation is the geolocation fallback offered to clients.
func (cfg *Config) DefaultLocation() models.Location {
	return models.Location{Lat: cfg.DefaultLat, Lng: cfg.DefaultLng}
}

func normalizeEmails(in []string) []string {
	var out []string
	for _, raw := range in {
		for _, e := range strings.Split(raw, ",") {
			e = strings.ToLower(strings.TrimSpace(e))
			if e != "" {
				out = append(out, e)
			}
		}
	}
	return out
}
