package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/joho/godotenv"

	"taskboard/internal/model"
)

const (
	ProviderLocal    = "local"
	ProviderFirebase = "firebase"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	ServerPort string
	JWTSecret  string
	SessionTTL time.Duration

	IdentityProvider string
	AdminEmails      []string
	ResetURL         string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	Assignees  []string
	DateLayout string

	FirebaseProjectID   string
	FirebaseCredentials string
	FirebaseAPIKey      string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		glog.Warning("⚠️  No .env file found, using system environment variables")
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		JWTSecret:  getEnv("JWT_SECRET", "supersecretkey"),
		SessionTTL: ttl,

		IdentityProvider: getEnv("IDENTITY_PROVIDER", ProviderLocal),
		AdminEmails:      splitList(getEnv("ADMIN_EMAILS", "")),
		ResetURL:         getEnv("RESET_URL", "http://localhost:8080/auth/reset"),

		DBDriver:   getEnv("DB_DRIVER", DriverPostgres),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "taskboard_user"),
		DBPassword: getEnv("DB_PASSWORD", "taskboard_pass"),
		DBName:     getEnv("DB_NAME", "taskboard_db"),
		SQLitePath: getEnv("SQLITE_PATH", "taskboard.db"),

		Assignees:  splitList(getEnv("ASSIGNEES", strings.Join(model.DefaultAssignees, ","))),
		DateLayout: getEnv("DATE_LAYOUT", "1/2/2006"),

		FirebaseProjectID:   getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		FirebaseAPIKey:      getEnv("FIREBASE_API_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.IdentityProvider {
	case ProviderLocal:
		switch c.DBDriver {
		case DriverPostgres, DriverSQLite:
		default:
			return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
		}
	case ProviderFirebase:
		if c.FirebaseAPIKey == "" {
			return errors.New("FIREBASE_API_KEY is required for the firebase identity provider")
		}
	default:
		return fmt.Errorf("unknown IDENTITY_PROVIDER %q", c.IdentityProvider)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

// PostgresDSN builds the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
