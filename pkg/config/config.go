package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	PostgresConnStr string
	PostsAmount     int

	CacheBackend  string
	CacheTTL      time.Duration
	CacheSize     int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MongoURI      string
	MongoDatabase string

	MediaBackend       string
	MediaRoot          string
	MediaURL           string
	AWSRegion          string
	AWSBucketName      string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	JWTSecret               string
	FirebaseCredentialsPath string
	CSRFEnabled             bool
}

// Load reads the configuration from the environment, after loading a .env
// file when one is present
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:     getEnv("PORT", "8000"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		PostgresConnStr: getEnv("POSTGRES_CONN_STR", ""),
		PostsAmount:     getEnvInt("POSTS_AMOUNT", 10),

		CacheBackend:  getEnv("CACHE_BACKEND", "memory"),
		CacheTTL:      getEnvDuration("CACHE_TTL", 20*time.Second),
		CacheSize:     getEnvInt("CACHE_SIZE", 1024),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "yatube"),

		MediaBackend:       getEnv("MEDIA_BACKEND", "local"),
		MediaRoot:          getEnv("MEDIA_ROOT", "media"),
		MediaURL:           getEnv("MEDIA_URL", "/media/"),
		AWSRegion:          getEnv("AWS_REGION", ""),
		AWSBucketName:      getEnv("AWS_BUCKET_NAME", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		CSRFEnabled:             getEnvBool("CSRF_ENABLED", true),
	}
}

// IsProduction reports whether the app runs with ENV=production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.WithField("key", key).Warnf("invalid integer %q, using %d", value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.WithField("key", key).Warnf("invalid boolean %q, using %t", value, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		// plain seconds, as in CACHE_TTL=20
		n, nerr := strconv.Atoi(value)
		if nerr != nil {
			log.WithField("key", key).Warnf("invalid duration %q, using %s", value, defaultValue)
			return defaultValue
		}
		d = time.Duration(n) * time.Second
	}
	return d
}
