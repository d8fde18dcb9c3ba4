package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Kafka     KafkaConfig
	Stripe    StripeConfig
	Telegram  TelegramConfig
	Bot       BotConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

// DSN returns a postgres connection string for the pgx stdlib driver
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.Schema)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type JWTConfig struct {
	Secret          string
	ServiceTokenTTL time.Duration
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	OrderTopic    string
	GroupID       string
	RelayInterval time.Duration
	RelayBatch    int
}

// Enabled reports whether any broker is configured
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
	MinAmount     decimal.Decimal
	APIURL        string // empty means the public Stripe API
}

type TelegramConfig struct {
	BotToken        string
	APIEndpoint     string
	ChannelID       int64
	ChannelURL      string
	GroupID         int64
	GroupURL        string
	Workers         int
	UpdatesTimeout  int // long polling timeout in seconds
	InlineCacheTime int
}

type BotConfig struct {
	APIURL     string
	LedgerPath string
	SessionTTL time.Duration
	PageSize   int
	FAQCache   time.Duration
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_SERVICE_TOKEN_TTL", "5m")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_ORDER_TOPIC", "storefront.orders")
	viper.SetDefault("KAFKA_GROUP_ID", "storefront-bot")
	viper.SetDefault("OUTBOX_RELAY_INTERVAL", "2s")
	viper.SetDefault("OUTBOX_RELAY_BATCH", 50)
	viper.SetDefault("STRIPE_CURRENCY", "usd")
	viper.SetDefault("STRIPE_MIN_AMOUNT", "0.50")
	viper.SetDefault("STRIPE_SUCCESS_URL", "https://t.me")
	viper.SetDefault("STRIPE_CANCEL_URL", "https://t.me")
	viper.SetDefault("TELEGRAM_API_ENDPOINT", "https://api.telegram.org/bot%s/%s")
	viper.SetDefault("TELEGRAM_WORKERS", 8)
	viper.SetDefault("TELEGRAM_UPDATES_TIMEOUT", 60)
	viper.SetDefault("TELEGRAM_INLINE_CACHE_TIME", 300)
	viper.SetDefault("BOT_API_URL", "http://localhost:8080")
	viper.SetDefault("BOT_LEDGER_PATH", "orders.xlsx")
	viper.SetDefault("BOT_SESSION_TTL", "24h")
	viper.SetDefault("BOT_PAGE_SIZE", 5)
	viper.SetDefault("BOT_FAQ_CACHE", "10m")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	minAmount, err := decimal.NewFromString(viper.GetString("STRIPE_MIN_AMOUNT"))
	if err != nil {
		log.Printf("Warning: invalid STRIPE_MIN_AMOUNT, using 0.50: %v", err)
		minAmount = decimal.New(50, -2)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:          viper.GetString("JWT_SECRET"),
			ServiceTokenTTL: viper.GetDuration("JWT_SERVICE_TOKEN_TTL"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(viper.GetString("KAFKA_BROKERS")),
			OrderTopic:    viper.GetString("KAFKA_ORDER_TOPIC"),
			GroupID:       viper.GetString("KAFKA_GROUP_ID"),
			RelayInterval: viper.GetDuration("OUTBOX_RELAY_INTERVAL"),
			RelayBatch:    viper.GetInt("OUTBOX_RELAY_BATCH"),
		},
		Stripe: StripeConfig{
			SecretKey:     viper.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: viper.GetString("STRIPE_WEBHOOK_SECRET"),
			Currency:      strings.ToLower(viper.GetString("STRIPE_CURRENCY")),
			SuccessURL:    viper.GetString("STRIPE_SUCCESS_URL"),
			CancelURL:     viper.GetString("STRIPE_CANCEL_URL"),
			MinAmount:     minAmount,
			APIURL:        viper.GetString("STRIPE_API_URL"),
		},
		Telegram: TelegramConfig{
			BotToken:        viper.GetString("TELEGRAM_BOT_TOKEN"),
			APIEndpoint:     viper.GetString("TELEGRAM_API_ENDPOINT"),
			ChannelID:       viper.GetInt64("TELEGRAM_CHANNEL_ID"),
			ChannelURL:      viper.GetString("TELEGRAM_CHANNEL_URL"),
			GroupID:         viper.GetInt64("TELEGRAM_GROUP_ID"),
			GroupURL:        viper.GetString("TELEGRAM_GROUP_URL"),
			Workers:         viper.GetInt("TELEGRAM_WORKERS"),
			UpdatesTimeout:  viper.GetInt("TELEGRAM_UPDATES_TIMEOUT"),
			InlineCacheTime: viper.GetInt("TELEGRAM_INLINE_CACHE_TIME"),
		},
		Bot: BotConfig{
			APIURL:     strings.TrimRight(viper.GetString("BOT_API_URL"), "/"),
			LedgerPath: viper.GetString("BOT_LEDGER_PATH"),
			SessionTTL: viper.GetDuration("BOT_SESSION_TTL"),
			PageSize:   viper.GetInt("BOT_PAGE_SIZE"),
			FAQCache:   viper.GetDuration("BOT_FAQ_CACHE"),
		},
	}
}

// splitList parses a comma separated env value, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
