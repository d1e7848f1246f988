package cli

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Form sources accepted by Config.Forms.
const (
	FormsMarkdown = "markdown"
	FormsYAML     = "yaml"
	FormsSQLite   = "sqlite"
)

// Config describes how the CLI wires the engine and its stores.
type Config struct {
	// Dir holds the forms for the markdown and yaml sources.
	Dir string
	// Forms selects the form source. Markdown forms are read-only.
	Forms string

	// SQLitePath enables the SQLite store for sessions and responses,
	// and for forms when Forms is "sqlite".
	SQLitePath string
	// RedisAddr moves sessions and locks to Redis.
	RedisAddr  string
	SessionTTL time.Duration

	// Phrase enables AI-assisted transitions through OpenAI.
	Phrase      bool
	OpenAIModel string

	MaxAnswerLength int
	EncryptionKey   []byte
	FallbackKeys    [][]byte
	PIIPatterns     []string

	LogLevel string
}

// LoadEnv fills the settings that only come from the environment:
//
//	FORMFLOW_MAX_INPUT_SIZE            longest accepted text answer
//	FORMFLOW_ENCRYPTION_KEY            hex AES-256 key for stored sessions
//	FORMFLOW_ENCRYPTION_FALLBACK_KEYS  comma separated hex keys still accepted for decryption
//	FORMFLOW_PII_KEYS                  comma separated patterns of variable names masked in responses
func (c *Config) LoadEnv() error {
	if v := strings.TrimSpace(os.Getenv("FORMFLOW_MAX_INPUT_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid FORMFLOW_MAX_INPUT_SIZE %q", v)
		}
		c.MaxAnswerLength = n
	}

	if v := strings.TrimSpace(os.Getenv("FORMFLOW_ENCRYPTION_KEY")); v != "" {
		key, err := decodeKey(v)
		if err != nil {
			return fmt.Errorf("invalid FORMFLOW_ENCRYPTION_KEY: %w", err)
		}
		c.EncryptionKey = key
	}
	for _, v := range splitList(os.Getenv("FORMFLOW_ENCRYPTION_FALLBACK_KEYS")) {
		key, err := decodeKey(v)
		if err != nil {
			return fmt.Errorf("invalid FORMFLOW_ENCRYPTION_FALLBACK_KEYS: %w", err)
		}
		c.FallbackKeys = append(c.FallbackKeys, key)
	}

	c.PIIPatterns = append(c.PIIPatterns, splitList(os.Getenv("FORMFLOW_PII_KEYS"))...)
	return nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
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
