package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	Port string
	Host string

	// Database configuration
	DatabasePath string

	// Where uploaded photo files and thumbnails are stored
	ImagesPath string

	// File upload limits
	MaxFileSize  int64 // in bytes
	AllowedTypes []string

	// Identities permitted to authenticate (normalized lowercase emails)
	AllowedEmails []string

	// Session token signing secret
	JWTSecret string

	// Application-wide password hash salt
	PasswordSalt string
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() *Config {
	config := &Config{
		Port:         getEnv("PORT", "8080"),
		Host:         getEnv("HOST", "localhost"),
		DatabasePath: getEnv("DATABASE_PATH", "./family_album.db"),
		ImagesPath:   getEnv("IMAGES_PATH", "./images"),
		MaxFileSize:  getEnvAsInt64("MAX_FILE_SIZE", 50*1024*1024), // 50MB default
		AllowedTypes: []string{
			"image/jpeg",
			"image/png",
			"image/gif",
			"image/webp",
		},
		AllowedEmails: getEnvAsList("ALLOWED_EMAILS", []string{"mom@family.com", "dad@family.com"}),
		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
		PasswordSalt:  getEnv("PASSWORD_SALT", "family-album-salt"),
	}

	return config
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 gets an environment variable as int64 with a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsList gets a comma-separated environment variable as a slice,
// trimming and lowercasing each entry
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
