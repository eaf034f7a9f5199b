package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DatabaseURL      string
	RedisURL         string
	JWTSecret        string
	SendGridAPIKey   string
	SendGridFrom     string
	FirebaseCredPath string
	FirebaseProject  string
	AppName          string
	AppURL           string
	Timezone         *time.Location
}

var AppConfig *Config

func Load() {
	godotenv.Load() // Load .env file if present

	AppConfig = &Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", "localhost:6379"),
		JWTSecret:        getEnv("JWT_SECRET", "dev-secret-change-me"),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		SendGridFrom:     getEnv("SENDGRID_FROM_EMAIL", "noreply@pagai.app"),
		FirebaseCredPath: getEnv("FIREBASE_CREDENTIALS", "firebase-credentials.json"),
		FirebaseProject:  getEnv("FIREBASE_PROJECT_ID", ""),
		AppName:          getEnv("APP_NAME", "PagAI"),
		AppURL:           getEnv("APP_URL", "http://localhost:8080"),
		Timezone:         loadTimezone(getEnv("TZ_NAME", "")),
	}
}

// loadTimezone resolves the zone used for month bucketing in metrics and
// calendar views. Falls back to the server's local zone.
func loadTimezone(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("⚠️  Unknown TZ_NAME %q, using local time: %v", name, err)
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
