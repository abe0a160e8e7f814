package main

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type config struct {
	Addr           string
	BooksFile      string
	JWTSecret      string
	AllowedOrigins []string
	EnableHSTS     bool
	RateLimitRPS   float64
	RateLimitBurst int
	MaxBodyBytes   int64
}

func loadEnvFiles() {
	// Do not override environment provided by the runtime (e.g. Docker).
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

func loadConfig() config {
	return config{
		Addr:           getEnv("APP_ADDR", ":8080"),
		BooksFile:      os.Getenv("BOOKS_FILE"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		EnableHSTS:     os.Getenv("ENABLE_HSTS") == "true",
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: int(getEnvFloat("RATE_LIMIT_BURST", 20)),
		MaxBodyBytes:   int64(getEnvFloat("MAX_BODY_BYTES", 1<<20)),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Printf("ignoring invalid %s=%q, using %v", key, v, def)
		return def
	}
	return f
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
