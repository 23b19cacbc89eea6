package config

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejectsShortLease(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logic.LockTTLSeconds = 1
	cfg.Logic.TimeoutSeconds = 15
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for lease TTL shorter than 5x timeout")
	}
}

func TestValidateRejectsEmptySources(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sources = nil
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for empty sources")
	}
}

func TestSafeSourceName(t *testing.T) {
	cases := map[string]string{
		"Wiki":        "wiki",
		"Championat!": "championat_",
		"sports.ru":   "sports_ru",
	}
	for in, want := range cases {
		if got := SafeSourceName(in); got != want {
			t.Errorf("SafeSourceName(%q) = %q, want %q", in, got, want)
		}
	}
}
