package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestGetEnvFallback(t *testing.T) {
	t.Setenv("CATCH_TEST_SET", "value")
	if got := GetEnv("CATCH_TEST_SET", "fallback"); got != "value" {
		t.Fatalf("got %q, want %q", got, "value")
	}
	if got := GetEnv("CATCH_TEST_UNSET_KEY", "fallback"); got != "fallback" {
		t.Fatalf("got %q, want %q", got, "fallback")
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"valid", "2222", 2222},
		{"spaces", " 42 ", 42},
		{"garbage", "abc", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CATCH_TEST_INT", tt.value)
			if got := GetEnvInt("CATCH_TEST_INT", 7); got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("CATCH_TEST_DUR", "1m30s")
	if got := GetEnvDuration("CATCH_TEST_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("got %v, want %v", got, 90*time.Second)
	}
	t.Setenv("CATCH_TEST_DUR", "soon")
	if got := GetEnvDuration("CATCH_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("got %v, want %v", got, time.Second)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("CATCH_DOTENV_A=from-file\nCATCH_DOTENV_B=file-b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CATCH_DOTENV_B", "from-env")
	t.Cleanup(func() { os.Unsetenv("CATCH_DOTENV_A") })

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("CATCH_DOTENV_A"); got != "from-file" {
		t.Fatalf("got %q, want %q", got, "from-file")
	}
	if got := os.Getenv("CATCH_DOTENV_B"); got != "from-env" {
		t.Fatalf("got %q, want %q", got, "from-env")
	}
}

func TestNewLoggerLevel(t *testing.T) {
	t.Setenv("CATCH_LOG_LEVEL", "debug")
	if got := NewLogger("test").GetLevel(); got != log.DebugLevel {
		t.Fatalf("got %v, want %v", got, log.DebugLevel)
	}
	t.Setenv("CATCH_LOG_LEVEL", "loud")
	if got := NewLogger("test").GetLevel(); got != log.InfoLevel {
		t.Fatalf("got %v, want %v", got, log.InfoLevel)
	}
}
