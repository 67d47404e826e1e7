package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(New())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != BackendHID || cfg.Brightness != 40 || cfg.RefreshInterval != time.Second {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Bridge.URL != "http://127.0.0.1:8080" || cfg.Bridge.CacheTTL != 2*time.Second {
		t.Fatalf("bridge defaults = %+v", cfg.Bridge)
	}
	if cfg.Framebuffer.Columns != 5 || cfg.Framebuffer.Rows != 3 || cfg.Framebuffer.Device != "/dev/fb0" {
		t.Fatalf("framebuffer defaults = %+v", cfg.Framebuffer)
	}
	if !cfg.WatchAssets || cfg.AssetsDir != "./Assets" {
		t.Fatalf("assets defaults = %+v", cfg)
	}
}

func TestFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flightdeck.yaml")
	yaml := strings.Join([]string{
		"backend: framebuffer",
		"brightness: 75",
		"refresh_interval: 250ms",
		"bridge:",
		"  url: http://sim.local:9000",
		"framebuffer:",
		"  columns: 4",
		"  rows: 2",
	}, "\n")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FLIGHTDECK_BRIGHTNESS", "10")
	t.Setenv("FLIGHTDECK_BRIDGE_TIMEOUT", "500ms")

	v := New()
	v.SetConfigFile(path)
	cfg, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Backend != BackendFramebuffer || cfg.RefreshInterval != 250*time.Millisecond {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Brightness != 10 {
		t.Fatalf("brightness = %d, want env override 10", cfg.Brightness)
	}
	if cfg.Bridge.URL != "http://sim.local:9000" || cfg.Bridge.Timeout != 500*time.Millisecond {
		t.Fatalf("bridge = %+v", cfg.Bridge)
	}
	if cfg.Framebuffer.Columns != 4 || cfg.Framebuffer.Rows != 2 {
		t.Fatalf("framebuffer = %+v", cfg.Framebuffer)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  interface{}
	}{
		{"unknown backend", "backend", "serial"},
		{"brightness too high", "brightness", 101},
		{"negative brightness", "brightness", -1},
		{"zero interval", "refresh_interval", "0s"},
		{"no bridge", "bridge.url", ""},
		{"no assets", "assets_dir", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Set(tt.key, tt.val)
			if _, err := Load(v); err == nil {
				t.Fatalf("%s=%v accepted", tt.key, tt.val)
			}
		})
	}

	t.Run("empty framebuffer grid", func(t *testing.T) {
		v := New()
		v.Set("backend", BackendFramebuffer)
		v.Set("framebuffer.rows", 0)
		if _, err := Load(v); err == nil {
			t.Fatal("0 rows accepted")
		}
	})
}

func TestMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flightdeck.yaml")
	if err := os.WriteFile(path, []byte("brightness: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	v := New()
	v.SetConfigFile(path)
	if _, err := Load(v); err == nil {
		t.Fatal("malformed file accepted")
	}
}
