package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Zxce3/tt-console/go/internal/settings"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port               string
	TickInterval       time.Duration
	LogDev             bool
	GuardedTransitions bool
	AllowedOrigins     []string

	NATSURL            string // empty disables event publishing
	EventStream        string
	EventSubjectPrefix string

	SettingsFile string
	Board        settings.BoardSettings
}

func loadConfig() (Config, error) {
	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		TickInterval:       time.Duration(getEnvAsInt("TICK_INTERVAL_MS", 1000)) * time.Millisecond,
		LogDev:             getEnvAsBool("LOG_DEV", false),
		GuardedTransitions: getEnvAsBool("GUARDED_TRANSITIONS", false),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "*")),
		NATSURL:            getEnv("NATS_URL", ""),
		EventStream:        getEnv("EVENT_STREAM", "SESSION_EVENTS"),
		EventSubjectPrefix: getEnv("EVENT_SUBJECT_PREFIX", "session.events"),
		SettingsFile:       getEnv("SETTINGS_FILE", "settings.yaml"),
	}

	if cfg.TickInterval <= 0 {
		return cfg, fmt.Errorf("TICK_INTERVAL_MS must be positive, got %s", cfg.TickInterval)
	}

	board, err := settings.Load(cfg.SettingsFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Info().Str("path", cfg.SettingsFile).Msg("no settings file, using default board")
	case err != nil:
		return cfg, fmt.Errorf("failed to load board settings: %w", err)
	}
	cfg.Board = board

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
