package config

import (
	"os"
	"strconv"
	"time"

	"github.com/mafius22/smart-fridge/pkg/config"
)

// Config carries everything the smart-fridge service needs.
type Config struct {
	Database config.DatabaseConfig
	Redis    config.RedisConfig
	MQTT     config.MQTTConfig

	HTTP struct {
		Addr string
	}

	Ingest struct {
		Topic           string // data topic filter, e.g. "esp32/smartfridge/+/data"
		RequirePressure bool   // drop payloads without "press" when true
	}

	Push struct {
		VAPIDPublicKey  string
		VAPIDPrivateKey string
		Subject         string // mailto: claim for VAPID
	}

	Cache struct {
		LatestTTL time.Duration // TTL for the per-device latest-reading cache
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load builds the configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = 5432
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "smartfridge")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.LoadFromEnv("DB")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "smart-fridge")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = 1
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Ingest.Topic = getEnv("MQTT_TOPIC", "esp32/smartfridge/+/data")
	cfg.Ingest.RequirePressure = getEnvBool("INGEST_REQUIRE_PRESSURE", false)

	cfg.Push.VAPIDPublicKey = getEnv("VAPID_PUBLIC_KEY", "")
	cfg.Push.VAPIDPrivateKey = getEnv("VAPID_PRIVATE_KEY", "")
	cfg.Push.Subject = getEnv("VAPID_SUBJECT", "mailto:admin@localhost")

	cfg.Cache.LatestTTL = time.Duration(getEnvInt("LATEST_CACHE_TTL", 300)) * time.Second

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
