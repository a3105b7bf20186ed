package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":       "secret",
		"AUTH_SERVICE_URL": "http://auth:8080",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.BcryptCost)
	}
	if cfg.AuthService.AppID != "account-service" || cfg.AuthService.Timeout != 10*time.Second {
		t.Fatalf("unexpected auth defaults: %+v", cfg.AuthService)
	}
	if cfg.Mongo.Database != "accounts" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected storage defaults: %+v %+v", cfg.Mongo, cfg.Redis)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":       "secret",
		"AUTH_SERVICE_URL": "http://auth:8080",
		"AUTH_TIMEOUT":     "250ms",
		"ENV":              "production",
		"REDIS_DB":         "3",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AuthService.Timeout != 250*time.Millisecond {
		t.Fatalf("expected 250ms timeout, got %s", cfg.AuthService.Timeout)
	}
	if cfg.Redis.DB != 3 || cfg.IsDevelopment() {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_RequiresSecrets(t *testing.T) {
	cases := map[string]map[string]string{
		"no jwt secret": {"AUTH_SERVICE_URL": "http://auth:8080"},
		"no auth url":   {"JWT_SECRET": "secret"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := load(context.Background(), envconfig.MapLookuper(env)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}
