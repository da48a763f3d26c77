package config

import (
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	AppEnv    string
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	Mail      MailConfig
	RateLimit RateLimitConfig
	Leads     LeadsConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	// TrustedProxyHops: quantos proxies confiáveis acrescentam ao X-Forwarded-For (0 = usar RemoteAddr)
	TrustedProxyHops int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	URL          string
	LeadCacheTTL time.Duration
	// RateLimitBackend: "redis" ou "memory"
	RateLimitBackend string
}

type RabbitMQConfig struct {
	URL string
}

type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	NotifyTo string
}

type TierConfig struct {
	Window time.Duration
	Max    int
}

type RateLimitConfig struct {
	Global        TierConfig
	LeadCreation  TierConfig
	LeadLookup    TierConfig
	AdminQuery    TierConfig
	SweepInterval time.Duration
}

type LeadsConfig struct {
	ExistingEmailMode string
}

type LogConfig struct {
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Load lê o .env (se existir) e depois as variáveis de ambiente.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️ Falha ao ler .env: %v", err)
	}

	cfg := &Config{
		AppEnv: getEnvString("APP_ENV", "development"),
		Server: ServerConfig{
			Port:             getEnvString("PORT", "8080"),
			ReadTimeout:      getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:     getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:      getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout:  getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:   getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			TrustedProxyHops: getEnvInt("TRUSTED_PROXY_HOPS", 1),
		},
		Database: DatabaseConfig{
			URL:             getEnvString("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL:              getEnvString("REDIS_URL", ""),
			LeadCacheTTL:     getEnvDuration("LEAD_CACHE_TTL", 5*time.Minute),
			RateLimitBackend: getEnvString("RATE_LIMIT_BACKEND", "redis"),
		},
		RabbitMQ: RabbitMQConfig{
			URL: getEnvString("RABBITMQ_URL", ""),
		},
		Mail: MailConfig{
			Host:     getEnvString("MAIL_HOST", ""),
			Port:     getEnvInt("MAIL_PORT", 587),
			User:     getEnvString("MAIL_USER", ""),
			Password: getEnvString("MAIL_PASS", ""),
			From:     getEnvString("MAIL_FROM", "nao-responda@ligue.com.br"),
			NotifyTo: getEnvString("LEADS_NOTIFY_EMAIL", ""),
		},
		RateLimit: RateLimitConfig{
			// RATE_LIMIT_WINDOW_MS / RATE_LIMIT_MAX_REQUESTS valem para a faixa global
			Global: TierConfig{
				Window: getEnvMillis("RATE_LIMIT_WINDOW_MS", 15*time.Minute),
				Max:    getEnvInt("RATE_LIMIT_MAX_REQUESTS", 1000),
			},
			LeadCreation: TierConfig{
				Window: getEnvDuration("RATE_LIMIT_CREATE_WINDOW", 15*time.Minute),
				Max:    getEnvInt("RATE_LIMIT_CREATE_MAX", 5),
			},
			LeadLookup: TierConfig{
				Window: getEnvDuration("RATE_LIMIT_LOOKUP_WINDOW", 5*time.Minute),
				Max:    getEnvInt("RATE_LIMIT_LOOKUP_MAX", 20),
			},
			AdminQuery: TierConfig{
				Window: getEnvDuration("RATE_LIMIT_ADMIN_WINDOW", 15*time.Minute),
				Max:    getEnvInt("RATE_LIMIT_ADMIN_MAX", 200),
			},
			SweepInterval: getEnvDuration("RATE_LIMIT_SWEEP_INTERVAL", time.Minute),
		},
		Leads: LeadsConfig{
			ExistingEmailMode: getEnvString("LEADS_EXISTING_EMAIL_MODE", "success"),
		},
		Log: LogConfig{
			FilePath:   getEnvString("LOG_FILE_PATH", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
	}

	return cfg
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// LogWriter devolve o destino do log: stdout, ou stdout + arquivo rotacionado quando LOG_FILE_PATH existe.
func (c LogConfig) LogWriter() io.Writer {
	if c.FilePath == "" {
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   c.FilePath,
		MaxSize:    c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAgeDays,
		Compress:   c.Compress,
	})
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvMillis(key string, defaultValue time.Duration) time.Duration {
	if ms := getEnvInt(key, 0); ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
