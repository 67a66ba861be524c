package models

import (
	"testing"
	"time"
)

func TestBanActiveAt(t *testing.T) {
	expiry := time.Date(2025, 3, 4, 18, 45, 0, 0, time.UTC)
	ban := &Ban{AccountID: 1, ExpiresAt: expiry}

	tests := []struct {
		name   string
		now    time.Time
		active bool
	}{
		{"before expiry", expiry.Add(-time.Minute), true},
		{"exactly at expiry", expiry, false},
		{"after expiry", expiry.Add(time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ban.ActiveAt(tt.now); got != tt.active {
				t.Errorf("ActiveAt(%v) = %v, want %v", tt.now, got, tt.active)
			}
		})
	}
}
