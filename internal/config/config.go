package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Identity   IdentityConfig
	Pin        PinConfig
	Cloudinary CloudinaryConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// IdentityConfig carries the process-wide secret used to encrypt
// reporter identifiers. It is not tied to any staff account.
type IdentityConfig struct {
	Secret string
}

// PinConfig holds the fallback emergency PIN, used only while no PIN
// hash has been stored in the database. The PinService logs a warning
// whenever the fallback path is taken.
type PinConfig struct {
	Fallback string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	// .env is optional; real deployments use process env.
	_ = godotenv.Load()

	jwtExpiration, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "168"))

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "3000"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "safevoice"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "your-secret-key-change-this"),
			Expiration: time.Duration(jwtExpiration) * time.Hour,
		},
		Identity: IdentityConfig{
			Secret: getEnv("SECRET_KEY", "default_secret"),
		},
		Pin: PinConfig{
			Fallback: getEnv("ADMIN_MASTER_PIN", "123456"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "school-violence-reports"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
