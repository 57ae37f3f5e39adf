package postgres

import (
	"testing"
	"time"
)

func TestClientOptions(t *testing.T) {
	cfg := &ClientConfig{
		Port:            5432,
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}

	for _, opt := range []ClientOption{
		WithHost("db.local", 5433),
		WithDatabase("stockpulse"),
		WithCredentials("svc", "secret"),
		WithSSLMode("require"),
		WithMaxConnections(20, 8),
	} {
		opt(cfg)
	}

	if cfg.Host != "db.local" || cfg.Port != 5433 {
		t.Errorf("host/port %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.Database != "stockpulse" {
		t.Errorf("database %s", cfg.Database)
	}
	if cfg.User != "svc" || cfg.Password != "secret" {
		t.Errorf("credentials %s/%s", cfg.User, cfg.Password)
	}
	if cfg.SSLMode != "require" {
		t.Errorf("sslmode %s", cfg.SSLMode)
	}
	if cfg.MaxOpenConns != 20 || cfg.MaxIdleConns != 8 {
		t.Errorf("pool %d/%d", cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
}
