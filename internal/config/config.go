/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the back-office service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort              string `mapstructure:"SERVER_PORT"`
	DatabaseURL             string `mapstructure:"DATABASE_URL"`
	RedisURL                string `mapstructure:"REDIS_URL"`
	RedisLoginPrefix        string `mapstructure:"REDIS_LOGIN_PREFIX"`
	RabbitMQURL             string `mapstructure:"RABBITMQ_URL"`
	SessionSigningKey       string `mapstructure:"SESSION_SIGNING_KEY"`
	SessionTTLMinutes       int    `mapstructure:"SESSION_TTL_MINUTES"`
	LoginAttemptLimit       int    `mapstructure:"LOGIN_ATTEMPT_LIMIT"`
	LoginAttemptWindowSecs  int    `mapstructure:"LOGIN_ATTEMPT_WINDOW_SECONDS"`
	InterestAccrualSchedule string `mapstructure:"INTEREST_ACCRUAL_SCHEDULE"`
	CORSAllowedOrigins      string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_LOGIN_PREFIX", "backoffice:login_attempts")
	viper.SetDefault("SESSION_TTL_MINUTES", 480)
	viper.SetDefault("LOGIN_ATTEMPT_LIMIT", 5)
	viper.SetDefault("LOGIN_ATTEMPT_WINDOW_SECONDS", 600)
	viper.SetDefault("INTEREST_ACCRUAL_SCHEDULE", "0 1 * * *")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_LOGIN_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("SESSION_SIGNING_KEY")
	_ = viper.BindEnv("SESSION_TTL_MINUTES")
	_ = viper.BindEnv("LOGIN_ATTEMPT_LIMIT")
	_ = viper.BindEnv("LOGIN_ATTEMPT_WINDOW_SECONDS")
	_ = viper.BindEnv("INTEREST_ACCRUAL_SCHEDULE")
	_ = viper.BindEnv("CORS_ALLOWED_ORIGINS")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisLoginPrefix = strings.TrimSpace(config.RedisLoginPrefix)
	if config.RedisLoginPrefix == "" {
		config.RedisLoginPrefix = "backoffice:login_attempts"
	}

	if config.SessionTTLMinutes <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive session ttl configured; using default\" ttl_minutes=%d", config.SessionTTLMinutes)
		config.SessionTTLMinutes = 480
	}
	if config.LoginAttemptLimit < 0 {
		log.Printf("level=warn component=config msg=\"negative login attempt limit configured; disabling throttle\" limit=%d", config.LoginAttemptLimit)
		config.LoginAttemptLimit = 0
	}
	if config.LoginAttemptWindowSecs <= 0 {
		config.LoginAttemptWindowSecs = 600
	}
	if strings.TrimSpace(config.InterestAccrualSchedule) == "" {
		config.InterestAccrualSchedule = "0 1 * * *"
	}

	return
}
