package env_test

import (
	goerrors "errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/coupergateway/authproxy/config/env"
	"github.com/coupergateway/authproxy/errors"
)

type nested struct {
	ClientID string `env:"oauth2_client_id"`
}

type testSettings struct {
	Host     string        `env:"host"`
	Port     int           `env:"port"`
	Pretty   bool          `env:"log_pretty"`
	Scopes   []string      `env:"oauth2_scopes"`
	Timeout  time.Duration `env:"upstream_timeout"`
	Ignored  string        `env:"-"`
	NoTag    string
	OAuth2   nested
	Optional *nested
}

func TestDecode(t *testing.T) {
	env.SetTestOsEnviron(func() []string {
		return []string{
			"HOST=127.0.0.1",
			"PORT=8080",
			"LOG_PRETTY=true",
			"OAUTH2_SCOPES=read, write",
			"UPSTREAM_TIMEOUT=2s",
			"OAUTH2_CLIENT_ID=my-client",
			"IGNORED=value",
			"NOTAG=value",
		}
	})
	defer env.SetTestOsEnviron(os.Environ)

	got := testSettings{Host: "0.0.0.0", Port: 3000}
	if err := env.Decode(&got); err != nil {
		t.Fatal(err)
	}

	want := testSettings{
		Host:    "127.0.0.1",
		Port:    8080,
		Pretty:  true,
		Scopes:  []string{"read", "write"},
		Timeout: time.Second * 2,
		OAuth2:  nested{ClientID: "my-client"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Error(diff)
	}
}

func TestDecodeWithPrefix(t *testing.T) {
	env.SetTestOsEnviron(func() []string {
		return []string{"HOST=ignored", "AUTHPROXY_HOST=example.com"}
	})
	defer env.SetTestOsEnviron(os.Environ)

	got := testSettings{}
	if err := env.DecodeWithPrefix(&got, "AUTHPROXY_"); err != nil {
		t.Fatal(err)
	}
	if got.Host != "example.com" {
		t.Errorf("want example.com, got %q", got.Host)
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		environ []string
	}{
		{"int", []string{"PORT=http"}},
		{"bool", []string{"LOG_PRETTY=yes please"}},
		{"duration", []string{"UPSTREAM_TIMEOUT=10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(subT *testing.T) {
			env.SetTestOsEnviron(func() []string { return tt.environ })
			defer env.SetTestOsEnviron(os.Environ)

			err := env.Decode(&testSettings{})
			if !goerrors.Is(err, errors.Configuration) {
				subT.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}
