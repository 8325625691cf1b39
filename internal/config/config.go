package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // BUSINESS_TIMEZONE must resolve on hosts without a zoneinfo database

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath    string
	DatasetPath string
	LogDir      string
	CacheDir    string

	// Location is the business timezone weeks and days are computed in.
	Location  *time.Location
	WeekStart time.Weekday

	EnableMermaidCharts bool
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Binary directory first: MCP hosts start the server from arbitrary working directories
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Working directory (development)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	return fromEnv(exeDir)
}

func fromEnv(exeDir string) (*AppConfig, error) {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))
	cacheDir := filepath.Join(dataPath, "cache")

	for _, dir := range []string{logDir, cacheDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Str("path", dir).Msg("Failed to create directory")
		}
	}

	loc, err := time.LoadLocation(getEnv("BUSINESS_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_TIMEZONE: %w", err)
	}

	weekStart, err := parseWeekday(getEnv("WEEK_START", "sunday"))
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		DataPath:            dataPath,
		DatasetPath:         getEnv("CRM_DATASET", filepath.Join(dataPath, "crm.json")),
		LogDir:              logDir,
		CacheDir:            cacheDir,
		Location:            loc,
		WeekStart:           weekStart,
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
	}, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunday", "sun":
		return time.Sunday, nil
	case "monday", "mon":
		return time.Monday, nil
	}
	return time.Sunday, fmt.Errorf("invalid WEEK_START %q: expected sunday or monday", s)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
