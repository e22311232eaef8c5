package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port              string
	AppEnv            string
	LogLevel          string
	CORSAllowedOrigin string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimezone string

	JWT JWTConfig

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	MediaPostFolder     string
	MediaAvatarFolder   string
	MaxUploadBytes      int64

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvi(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			logrus.Warnf("Invalid %s %q, using default %d", key, v, def)
			return def
		}
		return n
	}
	return def
}

// Load reads the configuration from the environment, after loading a .env file if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found")
	}

	cfg := &Config{
		Port:              getenv("PORT", "8080"),
		AppEnv:            getenv("APP_ENV", "development"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		CORSAllowedOrigin: getenv("CORS_ALLOWED_ORIGIN", "*"),

		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", "postgres"),
		DBName:     getenv("DB_NAME", "pinboard"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),
		DBTimezone: getenv("DB_TIMEZONE", "UTC"),

		JWT: JWTConfig{
			Secret:     []byte(os.Getenv("JWT_SECRET")),
			Expiration: time.Duration(getenvi("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		},

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		MediaPostFolder:     getenv("MEDIA_POST_FOLDER", "pinboard_posts"),
		MediaAvatarFolder:   getenv("MEDIA_AVATAR_FOLDER", "pinboard_avatars"),
		MaxUploadBytes:      int64(getenvi("MAX_UPLOAD_MB", 10)) << 20,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvi("REDIS_DB", 0),
	}

	if len(cfg.JWT.Secret) == 0 {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("environment variable JWT_SECRET must be set")
		}
		logrus.Warn("JWT_SECRET not set, using development secret")
		cfg.JWT.Secret = []byte(devJWTSecret)
	}
	if cfg.JWT.Expiration <= 0 {
		cfg.JWT.Expiration = 24 * time.Hour
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode, c.DBTimezone)
}
