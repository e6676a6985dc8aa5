package utils

import (
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Server configuration
	AppPort  string `yaml:"APP_PORT" envconfig:"APP_PORT"`
	LogLevel string `yaml:"LOG_LEVEL" envconfig:"LOG_LEVEL"`

	// Database configuration
	DBUser     string `yaml:"DB_USER" envconfig:"DB_USER"`
	DBName     string `yaml:"DB_NAME" envconfig:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD" envconfig:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT" envconfig:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST" envconfig:"DB_HOST"`

	// JWT
	JWTSecret string `yaml:"JWT_SECRET" envconfig:"JWT_SECRET"`

	// Mailing configuration
	AppURL           string `yaml:"APP_URL" envconfig:"APP_URL"`
	MailDriver       string `yaml:"MAIL_DRIVER" envconfig:"MAIL_DRIVER"`
	SMTPHost         string `yaml:"SMTP_HOST" envconfig:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT" envconfig:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME" envconfig:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL" envconfig:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD" envconfig:"SMTP_AUTH_PASSWORD"`
	SESRegion        string `yaml:"SES_REGION" envconfig:"SES_REGION"`
	SESFromEmail     string `yaml:"SES_FROM_EMAIL" envconfig:"SES_FROM_EMAIL"`

	// Midtrans configuration
	ClientKey string `yaml:"CLIENT_KEY" envconfig:"CLIENT_KEY"`
	ServerKey string `yaml:"SERVER_KEY" envconfig:"SERVER_KEY"`
	IsProd    bool   `yaml:"IsProd" envconfig:"IS_PROD"`

	// AWS S3 configuration
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET" envconfig:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION" envconfig:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY" envconfig:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY" envconfig:"AWS_SECRET_KEY"`

	// Prediction service
	PredictionURL            string `yaml:"PREDICTION_URL" envconfig:"PREDICTION_URL"`
	PredictionTimeoutSeconds int    `yaml:"PREDICTION_TIMEOUT_SECONDS" envconfig:"PREDICTION_TIMEOUT_SECONDS"`

	// Google OAuth
	GoogleClientID     string `yaml:"GOOGLE_CLIENT_ID" envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `yaml:"GOOGLE_CLIENT_SECRET" envconfig:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `yaml:"GOOGLE_REDIRECT_URL" envconfig:"GOOGLE_REDIRECT_URL"`

	// Seeded admin account
	AdminEmail    string `yaml:"ADMIN_EMAIL" envconfig:"ADMIN_EMAIL"`
	AdminPassword string `yaml:"ADMIN_PASSWORD" envconfig:"ADMIN_PASSWORD"`
}

var (
	config     Config
	configOnce sync.Once
)

// LoadConfig reads config.yaml, then lets a .env file and the process
// environment override individual keys. Safe to call more than once.
func LoadConfig() {
	configOnce.Do(loadConfig)
}

func loadConfig() {
	file, err := os.ReadFile("config.yaml")
	if err != nil {
		log.Printf("Error reading YAML file: %s\n", err)
	} else if err := yaml.Unmarshal(file, &config); err != nil {
		log.Printf("Error parsing YAML file: %s\n", err)
	}

	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			log.Println("Warning: .env file not found, using config.yaml and environment variables.")
		} else {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	if err := envconfig.Process("", &config); err != nil {
		log.Printf("Error reading environment overrides: %s\n", err)
	}

	applyDefaults(&config)
}

func applyDefaults(cfg *Config) {
	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MailDriver == "" {
		cfg.MailDriver = "smtp"
	}
	if cfg.PredictionURL == "" {
		cfg.PredictionURL = "http://127.0.0.1:5000"
	}
	if cfg.PredictionTimeoutSeconds <= 0 {
		cfg.PredictionTimeoutSeconds = 30
	}
}

func getBoolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func GetConfig(key string) string {
	switch key {
	case "APP_PORT":
		return config.AppPort
	case "LOG_LEVEL":
		return config.LogLevel
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "JWT_SECRET":
		return config.JWTSecret
	case "APP_URL":
		return config.AppURL
	case "MAIL_DRIVER":
		return config.MailDriver
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "SES_REGION":
		return config.SESRegion
	case "SES_FROM_EMAIL":
		return config.SESFromEmail
	case "CLIENT_KEY":
		return config.ClientKey
	case "SERVER_KEY":
		return config.ServerKey
	case "IsProd":
		return getBoolString(config.IsProd)
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	case "PREDICTION_URL":
		return config.PredictionURL
	case "PREDICTION_TIMEOUT_SECONDS":
		return strconv.Itoa(config.PredictionTimeoutSeconds)
	case "GOOGLE_CLIENT_ID":
		return config.GoogleClientID
	case "GOOGLE_CLIENT_SECRET":
		return config.GoogleClientSecret
	case "GOOGLE_REDIRECT_URL":
		return config.GoogleRedirectURL
	case "ADMIN_EMAIL":
		return config.AdminEmail
	case "ADMIN_PASSWORD":
		return config.AdminPassword
	default:
		return ""
	}
}

func GetConfigInt(key string, fallback int) int {
	v, err := strconv.Atoi(GetConfig(key))
	if err != nil {
		return fallback
	}
	return v
}
