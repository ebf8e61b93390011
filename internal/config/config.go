package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server       ServerConfig
	MongoDB      MongoDBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Google       GoogleConfig
	GitHub       GitHubConfig
	ClientURL    string
	Internal     InternalConfig
	AlphaVantage AlphaVantageConfig
	LLM          LLMConfig
	Ingest       IngestConfig
	Proxy        ProxyConfig
	RateLimit    RateLimitConfig
	Storage      StorageConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	UserInfoURL  string
}

type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

type InternalConfig struct {
	Token string
}

type AlphaVantageConfig struct {
	APIKey  string
	BaseURL string
	Topics  string
	Limit   int
}

type LLMConfig struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
}

type IngestConfig struct {
	Enabled  bool
	Interval time.Duration
	// Schedule is an optional cron expression (UTC) that replaces Interval.
	Schedule     string
	Timeout      time.Duration
	ArticleLimit int
}

type ProxyConfig struct {
	Timeout   time.Duration
	UserAgent string
	CacheTTL  time.Duration
	CacheSize int
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
}

// Enabled reports whether feed archiving is configured.
func (s StorageConfig) Enabled() bool { return s.Endpoint != "" }

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117 Safari/537.36"

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			AccessTokenTTL:  time.Duration(v.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
			RefreshTokenTTL: time.Duration(v.GetInt("JWT_REFRESH_TOKEN_TTL")) * time.Minute,
		},
		Google: GoogleConfig{
			ClientID:     v.GetString("CLIENT_ID"),
			ClientSecret: v.GetString("CLIENT_SECRET"),
			RedirectURL:  v.GetString("REDIRECT_URI"),
			UserInfoURL:  v.GetString("GOOGLE_USERINFO_URL"),
		},
		GitHub: GitHubConfig{
			ClientID:     v.GetString("GITHUB_CLIENT_ID"),
			ClientSecret: v.GetString("GITHUB_CLIENT_SECRET"),
			CallbackURL:  v.GetString("GITHUB_CALLBACK_URL"),
		},
		ClientURL: v.GetString("CLIENT_URL"),
		Internal: InternalConfig{
			Token: v.GetString("INTERNAL_API_TOKEN"),
		},
		AlphaVantage: AlphaVantageConfig{
			APIKey:  v.GetString("ALPHA_VANTAGE_API_KEY"),
			BaseURL: v.GetString("ALPHA_VANTAGE_BASE_URL"),
			Topics:  v.GetString("ALPHA_VANTAGE_TOPICS"),
			Limit:   v.GetInt("ALPHA_VANTAGE_LIMIT"),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(v.GetString("LLM_PROVIDER")),
			Model:       v.GetString("LLM_MODEL"),
			BaseURL:     v.GetString("LLM_BASE_URL"),
			MaxTokens:   v.GetInt("LLM_MAX_TOKENS"),
			Temperature: v.GetFloat64("LLM_TEMPERATURE"),
		},
		Ingest: IngestConfig{
			Enabled:      v.GetBool("INGEST_ENABLED"),
			Interval:     v.GetDuration("INGEST_INTERVAL"),
			Schedule:     v.GetString("INGEST_SCHEDULE"),
			Timeout:      v.GetDuration("INGEST_TIMEOUT"),
			ArticleLimit: v.GetInt("INGEST_ARTICLE_LIMIT"),
		},
		Proxy: ProxyConfig{
			Timeout:   v.GetDuration("PROXY_TIMEOUT"),
			UserAgent: v.GetString("PROXY_USER_AGENT"),
			CacheTTL:  v.GetDuration("PROXY_CACHE_TTL"),
			CacheSize: v.GetInt("PROXY_CACHE_SIZE"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			Region:    v.GetString("MINIO_REGION"),
		},
	}
	cfg.LLM.APIKey = llmKey(v, cfg.LLM.Provider)
	if cfg.Internal.Token == "" {
		cfg.Internal.Token = v.GetString("CRON_SECRET")
	}

	if cfg.MongoDB.URI == "" {
		return nil, fmt.Errorf("environment variable MONGODB_URI is required")
	}
	if t := cfg.Ingest.Timeout; t != 0 && t < time.Second {
		return nil, fmt.Errorf("INGEST_TIMEOUT %s is below one second; use a unit such as 300s or 5m", t)
	}
	if cfg.JWT.Secret == "" {
		log.Println("WARNING: JWT_SECRET is not set; set a secure value in production")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("MONGODB_DATABASE", "marketpulse")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", 24*60)
	v.SetDefault("JWT_REFRESH_TOKEN_TTL", 7*24*60)
	v.SetDefault("GOOGLE_USERINFO_URL", "https://www.googleapis.com/oauth2/v3/userinfo")
	v.SetDefault("GITHUB_CALLBACK_URL", "http://localhost:8000/auth/github/callback")
	v.SetDefault("CLIENT_URL", "http://localhost:3000")
	v.SetDefault("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co/query")
	v.SetDefault("ALPHA_VANTAGE_TOPICS", "financial_markets")
	v.SetDefault("ALPHA_VANTAGE_LIMIT", 50)
	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("LLM_MAX_TOKENS", 500)
	v.SetDefault("LLM_TEMPERATURE", 0.3)
	v.SetDefault("INGEST_ENABLED", false)
	v.SetDefault("INGEST_INTERVAL", "24h")
	v.SetDefault("INGEST_TIMEOUT", "5m")
	v.SetDefault("INGEST_ARTICLE_LIMIT", 20)
	v.SetDefault("PROXY_TIMEOUT", "20s")
	v.SetDefault("PROXY_USER_AGENT", defaultUserAgent)
	v.SetDefault("PROXY_CACHE_TTL", "30m")
	v.SetDefault("PROXY_CACHE_SIZE", 256)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("MINIO_BUCKET", "marketpulse")
}

// llmKey picks the provider-specific key, falling back to LLM_API_KEY.
func llmKey(v *viper.Viper, provider string) string {
	if k := v.GetString("LLM_API_KEY"); k != "" {
		return k
	}
	switch provider {
	case "openai":
		return v.GetString("OPENAI_API_KEY")
	case "anthropic":
		return v.GetString("ANTHROPIC_API_KEY")
	default:
		return v.GetString("GEMINI_API_KEY")
	}
}
