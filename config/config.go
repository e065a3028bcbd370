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
	JWT      JWTConfig
	Tracking TrackingConfig
	Referral ReferralConfig
	Networks NetworksConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr string // empty disables redis; the resolver falls back to the in-process cache
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

type TrackingConfig struct {
	// AttributionWindow bounds how late a reported conversion is still
	// credited to its click. RedirectTTL bounds how long /r/{token} keeps
	// serving the redirect; it is the shorter of the two.
	AttributionWindow time.Duration
	RedirectTTL       time.Duration
	CookieName        string
	CookieMaxAge      time.Duration
	ErrorRedirectURL  string
}

type ReferralConfig struct {
	FirstPurchaseRewardPaise int64
}

type NetworkConfig struct {
	Secret string
}

type NetworksConfig struct {
	Admitad  NetworkConfig
	Impact   NetworkConfig
	Cuelinks NetworkConfig
	Flipkart NetworkConfig
	Amazon   NetworkConfig
	Custom   NetworkConfig
}

type AdminConfig struct {
	Email    string
	Password string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getenv("PORT", "8088"),
			Env:          getenv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getenv("DATABASE_DSN", "paisaback:paisaback@tcp(localhost:3306)/paisaback?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		Redis: RedisConfig{
			Addr: getenv("REDIS_ADDR", ""),
		},
		JWT: JWTConfig{
			Secret: getenv("JWT_SECRET", "change-me-in-production"),
			Expiry: getduration("JWT_EXPIRY", 15*time.Minute),
			Issuer: "paisaback",
		},
		Tracking: TrackingConfig{
			AttributionWindow: getduration("ATTRIBUTION_WINDOW", 30*24*time.Hour),
			RedirectTTL:       getduration("REDIRECT_TTL", 24*time.Hour),
			CookieName:        "pb_click",
			CookieMaxAge:      30 * 24 * time.Hour,
			ErrorRedirectURL:  getenv("ERROR_REDIRECT_URL", "https://paisaback.in/link-error"),
		},
		Referral: ReferralConfig{
			FirstPurchaseRewardPaise: getint64("REFERRAL_REWARD_PAISE", 10000), // Rs 100
		},
		Networks: NetworksConfig{
			Admitad:  NetworkConfig{Secret: getenv("ADMITAD_WEBHOOK_SECRET", "")},
			Impact:   NetworkConfig{Secret: getenv("IMPACT_WEBHOOK_SECRET", "")},
			Cuelinks: NetworkConfig{Secret: getenv("CUELINKS_WEBHOOK_TOKEN", "")},
			Flipkart: NetworkConfig{Secret: getenv("FLIPKART_WEBHOOK_SECRET", "")},
			Amazon:   NetworkConfig{Secret: getenv("AMAZON_WEBHOOK_SECRET", "")},
			Custom:   NetworkConfig{Secret: getenv("CUSTOM_WEBHOOK_SECRET", "")},
		},
		Admin: AdminConfig{
			Email:    getenv("ADMIN_EMAIL", "admin@paisaback.in"),
			Password: getenv("ADMIN_PASSWORD", "change-me"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getint64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
