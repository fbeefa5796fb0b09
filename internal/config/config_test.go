package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err == nil {
		t.Fatal("expected validation error for empty PORT")
	}
	_ = cfg

	t.Setenv("PORT", "9090")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("unexpected port %q", cfg.Port)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("unexpected default model %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Timeout.Seconds() != 30 {
		t.Errorf("unexpected default timeout %v", cfg.OpenAI.Timeout)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when OPENAI_API_KEY is unset")
	}
}

func TestIsDevelopment(t *testing.T) {
	t.Parallel()

	cases := []struct {
		frontendURL string
		want        bool
	}{
		{"", true},
		{"http://localhost:5173", true},
		{"https://chat.example.com", false},
	}
	for _, tc := range cases {
		c := &Config{FrontendURL: tc.frontendURL}
		if got := c.IsDevelopment(); got != tc.want {
			t.Errorf("IsDevelopment(%q) = %v, want %v", tc.frontendURL, got, tc.want)
		}
	}
}
