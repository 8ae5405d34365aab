package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// config is read from .env, then from the process environment.
type config struct {
	Addr     string
	Secret   string
	Langs    []string
	Locales  string
	Overlays string
	LogLevel slog.Level
}

func loadConfig() config {
	_ = godotenv.Load()

	cfg := config{
		Addr:     getEnv("CRUDUI_ADDR", ":8080"),
		Secret:   getEnv("CRUDUI_SECRET", ""),
		Langs:    splitList(getEnv("CRUDUI_LANGS", "en")),
		Locales:  getEnv("CRUDUI_LOCALES", ""),
		Overlays: getEnv("CRUDUI_CONFIG", ""),
		LogLevel: slog.LevelInfo,
	}
	if strings.EqualFold(getEnv("CRUDUI_DEBUG", ""), "true") {
		cfg.LogLevel = slog.LevelDebug
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
