package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:   "bolt backend",
			mutate: func(c *Config) { c.Storage.Backend = "bolt" },
		},
		{
			name:   "memory backend",
			mutate: func(c *Config) { c.Storage.Backend = "memory" },
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Storage.Backend = "postgres" },
			wantErr: "storage.backend",
		},
		{
			name:    "blank key",
			mutate:  func(c *Config) { c.Storage.Key = "  " },
			wantErr: "storage.key",
		},
		{
			name:    "negative top limit",
			mutate:  func(c *Config) { c.Usage.TopLimit = -2 },
			wantErr: "usage.topLimit",
		},
		{
			name:   "zero top limit",
			mutate: func(c *Config) { c.Usage.TopLimit = 0 },
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "chatty" },
			wantErr: "logging.level",
		},
		{
			name:    "missing section",
			mutate:  func(c *Config) { c.Usage = nil },
			wantErr: "missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() should fail with %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error should contain %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}
