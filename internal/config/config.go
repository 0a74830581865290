package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Orders   OrdersConfig
	Forecast ForecastConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// StoreConfig selects the persistence backend. "postgres" is the default;
// "jsonfile" keeps everything in a single JSON document for small deployments.
type StoreConfig struct {
	Backend  string
	JSONPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry int // in minutes
}

type OrdersConfig struct {
	RateLimitPerMinute int
}

type ForecastConfig struct {
	Horizon int // days ahead to project
}

func Load() *Config {
	// godotenv fills the process environment so AutomaticEnv sees .env values
	// even when viper cannot locate the file itself.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("STORE_BACKEND", "postgres")
	viper.SetDefault("STORE_JSON_PATH", "data/lunchline.json")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 480)
	viper.SetDefault("ORDER_RATE_LIMIT_PER_MINUTE", 10)
	viper.SetDefault("FORECAST_HORIZON", 3)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Store: StoreConfig{
			Backend:  viper.GetString("STORE_BACKEND"),
			JSONPath: viper.GetString("STORE_JSON_PATH"),
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
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: viper.GetInt("JWT_ACCESS_EXPIRY"),
		},
		Orders: OrdersConfig{
			RateLimitPerMinute: viper.GetInt("ORDER_RATE_LIMIT_PER_MINUTE"),
		},
		Forecast: ForecastConfig{
			Horizon: viper.GetInt("FORECAST_HORIZON"),
		},
	}
}
