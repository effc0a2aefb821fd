package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Port:      "8080",
		DBPath:    "./test.db",
		JWTSecret: "secret",
		TokenTTL:  time.Hour,
	}

	tests := []struct {
		name        string
		mutate      func(c *Config)
		errorString string
	}{
		{"valid config", func(c *Config) {}, ""},
		{"non-numeric port", func(c *Config) { c.Port = "abc" }, "invalid port 'abc'"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "must be between 1 and 65535"},
		{"empty db path", func(c *Config) { c.DBPath = "" }, "database path cannot be empty"},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET must be set"},
		{"token ttl too short", func(c *Config) { c.TokenTTL = time.Second }, "must be at least 1 minute"},
		{"bad amqp scheme", func(c *Config) {
			c.AMQPURL = "http://localhost:5672/"
			c.AMQPExchange = "x"
			c.AMQPQueue = "q"
		}, "invalid AMQP URL scheme 'http'"},
		{"amqp without exchange", func(c *Config) {
			c.AMQPURL = "amqp://localhost:5672/"
			c.AMQPQueue = "q"
		}, "AMQP exchange name cannot be empty"},
		{"amqp without queue", func(c *Config) {
			c.AMQPURL = "amqp://localhost:5672/"
			c.AMQPExchange = "x"
			c.AMQPQueue = ""
		}, "AMQP queue name cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorString) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.errorString)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	keys := []string{"PORT", "DB_PATH", "JWT_SECRET", "TOKEN_TTL", "AMQP_URL", "LOG_LEVEL"}
	original := map[string]string{}
	for _, key := range keys {
		original[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	defer func() {
		for key, value := range original {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	}()

	t.Run("default values", func(t *testing.T) {
		cfg := Load()
		if cfg.Port != "8080" {
			t.Errorf("Load() Port = %v, want 8080", cfg.Port)
		}
		if cfg.DBPath != "./data/gestion.db" {
			t.Errorf("Load() DBPath = %v, want ./data/gestion.db", cfg.DBPath)
		}
		if cfg.TokenTTL != 24*time.Hour {
			t.Errorf("Load() TokenTTL = %v, want 24h", cfg.TokenTTL)
		}
		if cfg.AMQPURL != "" {
			t.Errorf("Load() AMQPURL = %v, want empty", cfg.AMQPURL)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		os.Setenv("PORT", "9090")
		os.Setenv("JWT_SECRET", "s3cret")
		os.Setenv("TOKEN_TTL", "45m")

		cfg := Load()
		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.JWTSecret != "s3cret" {
			t.Errorf("Load() JWTSecret = %v, want s3cret", cfg.JWTSecret)
		}
		if cfg.TokenTTL != 45*time.Minute {
			t.Errorf("Load() TokenTTL = %v, want 45m", cfg.TokenTTL)
		}
	})

	t.Run("invalid duration uses default", func(t *testing.T) {
		os.Setenv("TOKEN_TTL", "invalid")
		cfg := Load()
		if cfg.TokenTTL != 24*time.Hour {
			t.Errorf("Load() TokenTTL = %v, want 24h (default for invalid input)", cfg.TokenTTL)
		}
	})
}
