package logging

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestHelper_roundMS(t *testing.T) {
	type testCase struct {
		dur time.Duration
		exp float64
	}

	for _, tc := range []testCase{
		{1234567 * time.Nanosecond, 1.2350},
		{123456 * time.Microsecond, 123.456},
		{123 * time.Millisecond, 123.0},
		{0, 0},
	} {
		if got := RoundMS(tc.dur); got != tc.exp {
			t.Errorf("expected '%#v', got '%#v'", tc.exp, got)
		}
	}
}

func TestHelper_filterHeader(t *testing.T) {
	header := http.Header{
		"Content-Type":  []string{"text/plain"},
		"Authorization": []string{"Bearer secret"},
		"Accept":        []string{"text/plain", "application/json"},
		"User-Agent":    []string{""},
	}

	got := filterHeader([]string{"content-type", "Accept", "User-Agent"}, header)
	want := map[string]string{
		"content-type": "text/plain",
		"accept":       "text/plain|application/json",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Error(diff)
	}
}

func TestHelper_splitHostPort(t *testing.T) {
	for _, tc := range []struct {
		in, host, port string
	}{
		{"127.0.0.1:3000", "127.0.0.1", "3000"},
		{"[::1]:443", "::1", "443"},
		{"example.com", "example.com", ""},
	} {
		host, port := splitHostPort(tc.in)
		if host != tc.host || port != tc.port {
			t.Errorf("%s: want %q %q, got %q %q", tc.in, tc.host, tc.port, host, port)
		}
	}
}
