package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort          string
	FirebaseProject     string
	FirebaseApiKey      string
	StorageBucket       string
	Environment         string
	StateTokenSecret    string
	SmsFunctionURL      string
	AllowAutoRoleSwitch bool
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		FirebaseProject:     getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:      getEnv("FIREBASE_API_KEY", ""),
		StorageBucket:       getEnv("STORAGE_BUCKET", ""),
		Environment:         getEnv("ENVIRONMENT", "development"),
		StateTokenSecret:    getEnv("STATE_TOKEN_SECRET", ""),
		SmsFunctionURL:      getEnv("SMS_FUNCTION_URL", ""),
		AllowAutoRoleSwitch: getEnvAsBool("ALLOW_AUTO_ROLE_SWITCH", true),
	}

	// The platform is the single source of truth; refuse to start against a
	// missing or obviously unconfigured project.
	if err := requireReal("FIREBASE_PROJECT_ID", config.FirebaseProject); err != nil {
		return nil, err
	}
	if err := requireReal("FIREBASE_API_KEY", config.FirebaseApiKey); err != nil {
		return nil, err
	}
	if config.StateTokenSecret == "" {
		config.StateTokenSecret = config.FirebaseApiKey
	}

	return config, nil
}

var placeholderMarkers = []string{"your-", "your_", "changeme", "placeholder", "example", "xxxx"}

func requireReal(key, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", key)
	}
	lower := strings.ToLower(value)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("%s looks like a placeholder value: %q", key, value)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}
