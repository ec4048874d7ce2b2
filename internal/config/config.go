package config

import "os"

// Config holds the process configuration, read once at startup.
type Config struct {
	MongoURI      string
	MongoDB       string
	Port          string
	MQTTBrokerURL string
	MQTTClientID  string
	LogLevel      string
}

// Load reads the configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		MongoURI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getenv("MONGO_DB", "asset_tracker"),
		Port:          getenv("PORT", "8080"),
		MQTTBrokerURL: os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:  getenv("MQTT_CLIENT_ID", "asset-tracker"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
