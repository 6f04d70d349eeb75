package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Gunvolt24/brokerdemo/config"
	"github.com/Gunvolt24/brokerdemo/internal/domain"
)

func TestResolveBroker(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		env     string
		want    config.Broker
		wantErr bool
	}{
		{"flag wins", "kafka", "sqs", config.BrokerKafka, false},
		{"env fallback", "", "SQS", config.BrokerSQS, false},
		{"none", "", "", "", true},
		{"unknown", "rabbit", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveBroker(tt.flag, tt.env)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrConfiguration) {
					t.Fatalf("want ErrConfiguration, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("want %s, got %s (err=%v)", tt.want, got, err)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := loadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file must be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env.local")
	if err := os.WriteFile(path, []byte("BROKER_DEMO_ENVFILE_TEST=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BROKER_DEMO_ENVFILE_TEST", "")
	os.Unsetenv("BROKER_DEMO_ENVFILE_TEST")

	if err := loadEnvFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("BROKER_DEMO_ENVFILE_TEST"); got != "from-file" {
		t.Fatalf("want from-file, got %q", got)
	}
}
