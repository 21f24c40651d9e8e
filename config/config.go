package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Mpesa    MpesaConfig
	Stripe   StripeConfig
	Notify   NotifyConfig
	Ticket   TicketConfig
}

type ServerConfig struct {
	Addr      string
	PublicURL string // base URL advertised to providers for callbacks
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type MpesaConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	Environment    string // sandbox or production
	Shortcode      string
	Passkey        string
	Timeout        time.Duration
}

type StripeConfig struct {
	SecretKey string
}

// NotifyConfig selects the delivery backends. EmailBackend picks between
// sendgrid and smtp; SMS always goes through Twilio.
type NotifyConfig struct {
	EmailBackend     string
	SendgridAPIKey   string
	FromEmail        string
	FromName         string
	SMTPHost         string
	SMTPPort         string
	SMTPUser         string
	SMTPPassword     string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	SupportPhone     string
}

type TicketConfig struct {
	// SigningSecret keys the HMAC checksum embedded in every code payload.
	SigningSecret string
	// RetentionDays is how long tickets outlive their event before cleanup.
	RetentionDays int
}

var AppConfig *Config

func LoadConfig() *Config {
	AppConfig = &Config{
		Server:   GetServerConfig(),
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		Mpesa:    GetMpesaConfig(),
		Stripe:   GetStripeConfig(),
		Notify:   GetNotifyConfig(),
		Ticket:   GetTicketConfig(),
	}
	return AppConfig
}

func LoadTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":8081",
			PublicURL: "http://localhost:8081",
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5433", // test DB runs on 5433
			User:     "postgres",
			Password: "postgres",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     "6380", // test Redis runs on 6380
			Password: "",
			DB:       1,
		},
		Mpesa: MpesaConfig{
			ConsumerKey:    "test-key",
			ConsumerSecret: "test-secret",
			Environment:    "sandbox",
			Shortcode:      "174379",
			Passkey:        "test-passkey",
			Timeout:        5 * time.Second,
		},
		Ticket: TicketConfig{
			SigningSecret: "test-signing-secret",
			RetentionDays: 30,
		},
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      getEnv("SERVER_ADDR", ":8080"),
		PublicURL: getEnv("PUBLIC_URL", "http://localhost:8080"),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetMpesaConfig() MpesaConfig {
	timeoutSec, err := strconv.Atoi(getEnv("MPESA_TIMEOUT_SECONDS", "30"))
	if err != nil {
		panic(err)
	}

	return MpesaConfig{
		ConsumerKey:    getEnv("MPESA_CONSUMER_KEY", ""),
		ConsumerSecret: getEnv("MPESA_CONSUMER_SECRET", ""),
		Environment:    getEnv("MPESA_ENVIRONMENT", "sandbox"),
		Shortcode:      getEnv("MPESA_SHORTCODE", "174379"),
		Passkey:        getEnv("MPESA_PASSKEY", ""),
		Timeout:        time.Duration(timeoutSec) * time.Second,
	}
}

func GetStripeConfig() StripeConfig {
	return StripeConfig{
		SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
	}
}

func GetNotifyConfig() NotifyConfig {
	return NotifyConfig{
		EmailBackend:     getEnv("EMAIL_BACKEND", "sendgrid"),
		SendgridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		FromEmail:        getEnv("FROM_EMAIL", "tickets@slumpers.co.ke"),
		FromName:         getEnv("FROM_NAME", "Slumpers Events"),
		SMTPHost:         getEnv("SMTP_HOST", "localhost"),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUser:         getEnv("SMTP_USER", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
		SupportPhone:     getEnv("SUPPORT_PHONE", "+254 700 123 456"),
	}
}

func GetTicketConfig() TicketConfig {
	retention, err := strconv.Atoi(getEnv("TICKET_RETENTION_DAYS", "30"))
	if err != nil {
		panic(err)
	}

	return TicketConfig{
		SigningSecret: getEnv("TICKET_SIGNING_SECRET", "change-me"),
		RetentionDays: retention,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
