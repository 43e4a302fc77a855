package config_test

import (
	"testing"
	"time"

	"github.com/coupergateway/authproxy/config"
	"github.com/coupergateway/authproxy/errors"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		duration string
		_default time.Duration
		want     time.Duration
		err      string
	}{
		{"1s", time.Hour, time.Second, ""},
		{"0m", time.Hour, 0, ""},
		{"1h1s1m", time.Hour, 3661 * time.Second, ""},
		{"", time.Hour, time.Hour, ""},
		{"invalid", time.Hour, 0, `token-timeout: configuration error: time: invalid duration "invalid"`},
		{"1sec", time.Hour, 0, `token-timeout: configuration error: time: unknown unit "sec" in duration "1sec"`},
		{"-3s", time.Hour, 0, `token-timeout: configuration error: cannot be negative: '-3s'`},
	}
	for _, tt := range tests {
		t.Run(tt.duration, func(subT *testing.T) {
			duration, err := config.ParseDuration("token-timeout", tt.duration, tt._default)
			if duration != tt.want {
				subT.Errorf("unexpected duration, want: %q, got: %q", tt.want, duration)
			}
			if err != nil {
				gerr, ok := err.(*errors.Error)
				if !ok {
					subT.Fatalf("expected *errors.Error, got %T", err)
				}
				if gerr.LogError() != tt.err {
					subT.Errorf("unexpected error,\n\twant: %q\n\tgot:  %q", tt.err, gerr.LogError())
				}
			}
			if err == nil && tt.err != "" {
				subT.Errorf("expected error %q, got: %v", tt.err, nil)
			}
		})
	}
}
