package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8801" {
		t.Errorf("port = %q, want 8801", cfg.Server.Port)
	}
	if cfg.Data.File != "main_data.csv" {
		t.Errorf("data file = %q", cfg.Data.File)
	}
	if cfg.Dashboard.TopN != 5 {
		t.Errorf("top_n = %d, want 5", cfg.Dashboard.TopN)
	}
	if cfg.Dashboard.CurrencyPrefix != "AUD " || cfg.Dashboard.Locale != "es-CO" {
		t.Errorf("currency = %q/%q", cfg.Dashboard.CurrencyPrefix, cfg.Dashboard.Locale)
	}
	if cfg.Data.SeparatorRune() != ',' {
		t.Errorf("separator = %q", cfg.Data.SeparatorRune())
	}
	if cfg.Log.SlowThreshold() != 500*time.Millisecond {
		t.Errorf("slow threshold = %v", cfg.Log.SlowThreshold())
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
  mode: release
data:
  file: orders.csv
  separator: ";"
  timezone: America/Sao_Paulo
dashboard:
  title: Orders
  top_n: 10
  currency_prefix: "R$ "
  locale: pt-BR
security:
  allowed_origins:
    - http://localhost:3000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "9000" || cfg.Server.Mode != "release" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Data.File != "orders.csv" || cfg.Data.SeparatorRune() != ';' {
		t.Errorf("data = %+v", cfg.Data)
	}
	if cfg.Data.Location().String() != "America/Sao_Paulo" {
		t.Errorf("location = %v", cfg.Data.Location())
	}
	if cfg.Dashboard.TopN != 10 || cfg.Dashboard.CurrencyPrefix != "R$ " {
		t.Errorf("dashboard = %+v", cfg.Dashboard)
	}
	// 文件中未出现的字段保持默认值
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("read timeout = %v", cfg.Server.ReadTimeout)
	}
	if len(cfg.Security.AllowedOrigins) != 1 {
		t.Errorf("allowed origins = %v", cfg.Security.AllowedOrigins)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "data:\n  file: orders.csv\n")
	t.Setenv("DATA_FILE", "other.csv")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("DASHBOARD_TOP_N", "3")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Data.File != "other.csv" {
		t.Errorf("data file = %q, want other.csv", cfg.Data.File)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Dashboard.TopN != 3 {
		t.Errorf("top_n = %d", cfg.Dashboard.TopN)
	}
	if got := strings.Join(cfg.Security.AllowedOrigins, "|"); got != "http://a.test|http://b.test" {
		t.Errorf("allowed origins = %q", got)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad mode", "server:\n  mode: staging\n", "invalid server mode"},
		{"bad port", "server:\n  port: abc\n", "invalid server port"},
		{"bad separator", "data:\n  separator: \"ab\"\n", "single character"},
		{"bad timezone", "data:\n  timezone: Mars/Base\n", "invalid data timezone"},
		{"bad top_n", "dashboard:\n  top_n: 0\n", "top_n must be positive"},
		{"bad slow threshold", "log:\n  slow_threshold: soon\n", "slow_threshold"},
		{"bad log level", "log:\n  level: verbose\n", "invalid log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [unclosed\n")); err == nil {
		t.Fatal("expected yaml error")
	}
}

func TestInvalidTopNEnv(t *testing.T) {
	t.Setenv("DASHBOARD_TOP_N", "many")
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatal("expected error for non-numeric DASHBOARD_TOP_N")
	}
}

func TestLogLevelAllows(t *testing.T) {
	tests := []struct {
		level string
		check string
		want  bool
	}{
		{"debug", "info", true},
		{"info", "warn", true},
		{"warn", "warn", true},
		{"warn", "info", false},
		{"error", "warn", false},
		{"", "warn", true},
		{"", "debug", false},
	}
	for _, tt := range tests {
		if got := (LogConfig{Level: tt.level}).Allows(tt.check); got != tt.want {
			t.Errorf("level %q Allows(%q) = %v, want %v", tt.level, tt.check, got, tt.want)
		}
	}
}

func TestLogLevelEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "error" || cfg.Log.Allows("warn") {
		t.Fatalf("level = %q", cfg.Log.Level)
	}
}
