package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full service configuration assembled from the environment.
type Config struct {
	Server   Server
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Notify   NotifyConfig
	Payment  PaymentConfig
	DBS      DBSConfig
	Register RegisterConfig
	Postcode PostcodeConfig
	Login    LoginConfig
	Reminder ReminderConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	PublicURL       string
	SessionKey      string
	AdminToken      string
	SecureCookies   bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers        []string
	AuditTopic     string
	OutboxInterval time.Duration
	OutboxBatch    int
}

// NotifyConfig configures the GOV.UK Notify client and its template ids.
type NotifyConfig struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	Templates NotifyTemplates
}

type NotifyTemplates struct {
	MagicLink         string
	SMSCode           string
	PaymentConfirmed  string
	AdultHealthCheck  string
	FurtherInfo       string
	InactiveReminder  string
	ApplicationExpiry string
}

type PaymentConfig struct {
	BaseURL      string
	MerchantCode string
	APIKey       string
	Timeout      time.Duration
}

type DBSConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type RegisterConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type PostcodeConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// LoginConfig holds the magic link and SMS second factor rules.
type LoginConfig struct {
	LinkTTL         time.Duration
	SMSCodeTTL      time.Duration
	PendingTTL      time.Duration
	SessionTTL      time.Duration
	MaxSMSResends   int
	ResendWindow    time.Duration
	MaxCodeFailures int
	FailureWindow   time.Duration
	LockDuration    time.Duration
	// IPLimit caps login requests per client IP within IPWindow.
	IPLimit  int
	IPWindow time.Duration
}

type ReminderConfig struct {
	Interval     time.Duration
	ReminderIdle time.Duration
	ExpiryIdle   time.Duration
}

// FromEnv builds the configuration from environment variables so main stays lean.
// Every value has a development default.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envString("CHILDMINDER_ADDR", ":8080"),
			PublicURL:       strings.TrimRight(envString("PUBLIC_URL", "http://localhost:8080"), "/"),
			SessionKey:      envString("SESSION_SIGNING_KEY", "dev-secret-key-change-in-production"),
			AdminToken:      envString("ADMIN_TOKEN", ""),
			SecureCookies:   envBool("SECURE_COOKIES", false),
			ReadTimeout:     envDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    envDuration("HTTP_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:             envString("DATABASE_URL", ""),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          envString("REDIS_URL", ""),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:        envList("KAFKA_BROKERS"),
			AuditTopic:     envString("KAFKA_AUDIT_TOPIC", "childminder.audit"),
			OutboxInterval: envDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),
			OutboxBatch:    envInt("OUTBOX_BATCH_SIZE", 100),
		},
		Notify: NotifyConfig{
			BaseURL: envString("NOTIFY_URL", "https://api.notifications.service.gov.uk"),
			APIKey:  envString("NOTIFY_API_KEY", ""),
			Timeout: envDuration("NOTIFY_TIMEOUT", 10*time.Second),
			Templates: NotifyTemplates{
				MagicLink:         envString("NOTIFY_TEMPLATE_MAGIC_LINK", "ecd2a788-257b-4bb9-8784-5aed82bcbb92"),
				SMSCode:           envString("NOTIFY_TEMPLATE_SMS_CODE", "d285f17b-8534-4110-ba6c-e7e788eeafb2"),
				PaymentConfirmed:  envString("NOTIFY_TEMPLATE_PAYMENT_CONFIRMED", "2cd5ae7e-e1e7-4fe4-9df1-7f84f1a4ac9b"),
				AdultHealthCheck:  envString("NOTIFY_TEMPLATE_ADULT_HEALTH_CHECK", "5bbf3677-49e9-47d0-acf2-55a9a03d8242"),
				FurtherInfo:       envString("NOTIFY_TEMPLATE_FURTHER_INFO", "4fda8b4b-5b5c-4d1d-9f53-4a9a8b6ef3e7"),
				InactiveReminder:  envString("NOTIFY_TEMPLATE_INACTIVE_REMINDER", "a1a0b4d7-1e41-4a40-9e44-1a9f1b34a1f1"),
				ApplicationExpiry: envString("NOTIFY_TEMPLATE_APPLICATION_EXPIRY", "b5fb4c1d-6d2c-4bb4-9a28-7e0d6a5b9c20"),
			},
		},
		Payment: PaymentConfig{
			BaseURL:      envString("PAYMENT_URL", "http://localhost:8089"),
			MerchantCode: envString("PAYMENT_MERCHANT_CODE", "OFSTED"),
			APIKey:       envString("PAYMENT_API_KEY", ""),
			Timeout:      envDuration("PAYMENT_TIMEOUT", 30*time.Second),
		},
		DBS: DBSConfig{
			BaseURL: envString("DBS_URL", "http://localhost:8090"),
			APIKey:  envString("DBS_API_KEY", ""),
			Timeout: envDuration("DBS_TIMEOUT", 10*time.Second),
		},
		Register: RegisterConfig{
			BaseURL: envString("REGISTER_URL", "http://localhost:8091"),
			APIKey:  envString("REGISTER_API_KEY", ""),
			Timeout: envDuration("REGISTER_TIMEOUT", 10*time.Second),
		},
		Postcode: PostcodeConfig{
			BaseURL: envString("POSTCODE_URL", "http://localhost:8092"),
			APIKey:  envString("POSTCODE_API_KEY", ""),
			Timeout: envDuration("POSTCODE_TIMEOUT", 5*time.Second),
		},
		Login: DefaultLogin(),
		Reminder: ReminderConfig{
			Interval:     envDuration("REMINDER_INTERVAL", time.Hour),
			ReminderIdle: envDuration("REMINDER_IDLE", 30*24*time.Hour),
			ExpiryIdle:   envDuration("EXPIRY_IDLE", 60*24*time.Hour),
		},
	}
}

// DefaultLogin returns the login rules, overridable from the environment.
func DefaultLogin() LoginConfig {
	return LoginConfig{
		LinkTTL:         envDuration("LOGIN_LINK_TTL", 24*time.Hour),
		SMSCodeTTL:      envDuration("LOGIN_SMS_CODE_TTL", 10*time.Minute),
		PendingTTL:      envDuration("LOGIN_PENDING_TTL", 30*time.Minute),
		SessionTTL:      envDuration("LOGIN_SESSION_TTL", 4*time.Hour),
		MaxSMSResends:   envInt("LOGIN_MAX_SMS_RESENDS", 3),
		ResendWindow:    envDuration("LOGIN_RESEND_WINDOW", 24*time.Hour),
		MaxCodeFailures: envInt("LOGIN_MAX_CODE_FAILURES", 5),
		FailureWindow:   envDuration("LOGIN_FAILURE_WINDOW", 15*time.Minute),
		LockDuration:    envDuration("LOGIN_LOCK_DURATION", 15*time.Minute),
		IPLimit:         envInt("LOGIN_IP_LIMIT", 30),
		IPWindow:        envDuration("LOGIN_IP_WINDOW", time.Minute),
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
