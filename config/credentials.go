package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Credential key names in the .env file.
const (
	DetailAPIKeyName = "unwrangle.apikey"
	SearchAPIKeyName = "homedepot.apikey"
)

// DefaultEnvFile is where both pipelines look for credentials.
const DefaultEnvFile = ".env"

// LoadDetailAPIKey loads the detail API key from the environment file.
// A missing key is fatal for the detail pipeline: no request may be issued
// without it.
func LoadDetailAPIKey(envFile string) (string, error) {
	loadEnvFile(envFile)
	key := os.Getenv(DetailAPIKeyName)
	if key == "" {
		return "", fmt.Errorf("missing %s in %s", DetailAPIKeyName, envFile)
	}
	return key, nil
}

// LoadSearchAPIKey loads the search API key from the environment file.
// When the environment lookup comes back empty it falls back to scanning the
// file directly for the expected key prefix, since dotted key names are not
// exported by every shell.
func LoadSearchAPIKey(envFile string) (string, error) {
	loadEnvFile(envFile)
	if key := os.Getenv(SearchAPIKeyName); key != "" {
		return key, nil
	}
	key, err := scanEnvFile(envFile, SearchAPIKeyName)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", fmt.Errorf("missing %s in %s", SearchAPIKeyName, envFile)
	}
	return key, nil
}

func loadEnvFile(envFile string) {
	// A missing .env file is fine when the key is already in the process
	// environment; the empty-key checks above catch the truly fatal case.
	_ = godotenv.Load(envFile)
}

// scanEnvFile reads the env file line by line looking for key=value.
func scanEnvFile(envFile, key string) (string, error) {
	f, err := os.Open(envFile)
	if err != nil {
		return "", fmt.Errorf("open env file: %w", err)
	}
	defer f.Close()

	prefix := key + "="
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan env file: %w", err)
	}
	return "", nil
}
