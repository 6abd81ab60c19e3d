// config/config.go
package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server and the maintenance tool need.
// It is built once at startup and handed to constructors.
type Config struct {
	Port   string
	Env    string
	AppURL string

	MongoURI string
	DBName   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTTTL    time.Duration

	CommissionRate float64
	FrontendURL    string

	SMTP SMTPConfig

	Paystack    PaystackConfig
	Flutterwave FlutterwaveConfig

	KafkaBrokers    []string
	KafkaOrderTopic string

	FirebaseProjectID         string
	FirebaseCredentialsFile   string
	FirebaseCredentialsBase64 string

	CORSAllowedOrigins []string
	UploadDir          string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type PaystackConfig struct {
	BaseURL   string
	SecretKey string
}

type FlutterwaveConfig struct {
	BaseURL    string
	SecretKey  string
	SecretHash string
}

// Load reads .env (when present) and the process environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Port:   getEnv("PORT", "8080"),
		Env:    getEnv("ENV", "development"),
		AppURL: getEnv("APP_URL", "http://localhost:8080"),

		MongoURI: firstEnv("MONGO_URI", "MONGODB_URI"),
		DBName:   getEnv("DB_NAME", "marketplace"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    getEnvDuration("JWT_TTL", 72*time.Hour),

		CommissionRate: getEnvFloat("COMMISSION_RATE", 0.10),
		FrontendURL:    strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),

		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("EMAIL_FROM", "no-reply@marketplace.local"),
		},

		Paystack: PaystackConfig{
			BaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			SecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
		},
		Flutterwave: FlutterwaveConfig{
			BaseURL:    getEnv("FLUTTERWAVE_BASE_URL", "https://api.flutterwave.com"),
			SecretKey:  os.Getenv("FLUTTERWAVE_SECRET_KEY"),
			SecretHash: os.Getenv("FLUTTERWAVE_SECRET_HASH"),
		},

		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic: getEnv("KAFKA_ORDER_TOPIC", "order-events"),

		FirebaseProjectID:         os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsFile:   os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FirebaseCredentialsBase64: os.Getenv("FIREBASE_CREDENTIALS_BASE64"),

		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

func (c *Config) validate() error {
	if c.MongoURI == "" {
		if !c.IsDevelopment() {
			return errors.New("MONGO_URI or MONGODB_URI environment variable is required for production")
		}
		c.MongoURI = "mongodb://localhost:27017"
	}
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("JWT_SECRET environment variable is required")
		}
		log.Printf("Warning: JWT_SECRET is not set, using an insecure development secret")
		c.JWTSecret = "development-secret"
	}
	if c.CommissionRate < 0 || c.CommissionRate > 1 {
		return errors.New("COMMISSION_RATE must be between 0 and 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Warning: invalid integer for %s: %q", key, v)
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("Warning: invalid number for %s: %q", key, v)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Warning: invalid duration for %s: %q", key, v)
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
