package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/quickbite/payment-service/utils"
)

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	Port       string
	Env        string

	RazorpayKey           string
	RazorpaySecret        string
	RazorpayWebhookSecret string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// PaymentTimeout bounds one startPayment call end to end, gateway
	// round trip included.
	PaymentTimeout time.Duration
	// WebhookTolerance is how far a webhook event timestamp may drift
	// before the event is rejected as stale.
	WebhookTolerance time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading .env file: %v", err)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %v", err)
	}

	config := &Config{
		DBHost:     getEnv("DB_HOST", utils.DefaultDBHost),
		DBPort:     getEnv("DB_PORT", utils.DefaultDBPort),
		DBUser:     getEnv("DB_USER", utils.DefaultDBUser),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", utils.DefaultDBName),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		Port:       getEnv("PORT", utils.DefaultPort),
		Env:        os.Getenv("ENV"),

		RazorpayKey:           os.Getenv("RAZORPAY_KEY"),
		RazorpaySecret:        os.Getenv("RAZORPAY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     smtpPort,
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		PaymentTimeout:   getDurationEnv("PAYMENT_TIMEOUT", 15*time.Second),
		WebhookTolerance: getDurationEnv("WEBHOOK_TOLERANCE", 5*time.Minute),
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
