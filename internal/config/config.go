package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Verification strategies for newly registered accounts.
const (
	VerificationModeActivation = "activation" // signed activation link, nothing persisted until redeemed
	VerificationModeOTP        = "otp"        // 6-digit code, user persisted unverified
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string
	// AppURL is the externally reachable base URL, used to build activation links.
	AppURL string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	// Session tokens are RS256 and use a dedicated keypair; activation tokens
	// are HS256 and use their own secret. The two purposes never share keys.
	JWTPrivateKeyPath     string
	JWTPublicKeyPath      string
	SessionTokenTTL       time.Duration
	ActivationTokenSecret string
	ActivationTokenTTL    time.Duration

	VerificationMode string
	OTPTTL           time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users             string
	UserUniques       string
	UserVerifications string
	Todos             string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),
		AppURL:  getEnv("APP_URL", "http://localhost:3000"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:             getEnv("DYNAMO_TABLE_USERS", "users"),
			UserUniques:       getEnv("DYNAMO_TABLE_USER_UNIQUES", "user_uniques"),
			UserVerifications: getEnv("DYNAMO_TABLE_USER_VERIFICATIONS", "user_verifications"),
			Todos:             getEnv("DYNAMO_TABLE_TODOS", "todos"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "taskbox-todo-images"),

		JWTPrivateKeyPath:     getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:      getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		SessionTokenTTL:       getEnvHours("SESSION_TOKEN_EXPIRY_HOURS", 24),
		ActivationTokenSecret: getEnv("ACTIVATION_TOKEN_SECRET", ""),
		ActivationTokenTTL:    getEnvHours("ACTIVATION_TOKEN_EXPIRY_HOURS", 24),

		VerificationMode: getEnv("VERIFICATION_MODE", VerificationModeActivation),
		OTPTTL:           getEnvMinutes("OTP_EXPIRY_MINUTES", 10),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvHours(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Hour
}

func getEnvMinutes(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Minute
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
