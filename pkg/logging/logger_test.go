package logging

import (
	"testing"

	"github.com/falco-social/falco/pkg/config"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{"json format", config.LoggingConfig{Level: "INFO", Format: "json"}},
		{"text format", config.LoggingConfig{Level: "DEBUG", Format: "text"}},
		{"invalid level falls back", config.LoggingConfig{Level: "bogus", Format: "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := InitLogger(&tt.cfg); err != nil {
				t.Fatalf("InitLogger() error = %v", err)
			}
			if Logger == nil {
				t.Fatal("Logger not initialized")
			}
		})
	}
}

func TestGetLoggerFallback(t *testing.T) {
	Logger = nil
	if GetLogger() == nil {
		t.Fatal("GetLogger() returned nil")
	}
}
