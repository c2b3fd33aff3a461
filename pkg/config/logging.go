package config

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// SetupLogging configures the global logrus logger: JSON in production, text
// otherwise
func SetupLogging(cfg *Config) {
	log.SetOutput(os.Stdout)
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
