package config

import "testing"

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.App.Port != "3000" || cfg.Database.Path != "./appointments.db" {
		t.Fatalf("unexpected defaults: port=%s db=%s", cfg.App.Port, cfg.Database.Path)
	}
	if cfg.Messaging.Provider != ProviderTwilio {
		t.Fatalf("expected twilio provider by default, got %s", cfg.Messaging.Provider)
	}
	if cfg.HTTP.RateLimit != 12 || cfg.HTTP.BodyLimit != "64K" {
		t.Fatalf("unexpected http defaults: %+v", cfg.HTTP)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("default env must not be development")
	}
}

func TestParseReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "Development")
	t.Setenv("WHATSAPP_ENABLED", "TRUE")
	t.Setenv("ADMIN_SECRET", "  s3cret ")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env")
	}
	if !cfg.Messaging.WhatsAppEnabled {
		t.Fatalf("expected whatsapp enabled")
	}
	if cfg.Admin.Secret != "s3cret" {
		t.Fatalf("expected trimmed secret, got %q", cfg.Admin.Secret)
	}
	if len(cfg.HTTP.AllowOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.HTTP.AllowOrigins)
	}
}

func TestParseRejectsUnknownProvider(t *testing.T) {
	t.Setenv("MESSAGING_PROVIDER", "carrier-pigeon")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestSMSSenderFollowsProvider(t *testing.T) {
	t.Setenv("TWILIO_FROM_NUMBER", "+15550001")
	t.Setenv("TWILIO_MESSAGING_SERVICE_SID", "MG1")
	t.Setenv("SNS_SENDER_ID", "PAWS")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := cfg.SMSSender(); got.FromNumber != "+15550001" || got.SenderID != "MG1" {
		t.Fatalf("unexpected twilio sender: %+v", got)
	}

	cfg.Messaging.Provider = ProviderSNS
	if got := cfg.SMSSender(); got.FromNumber != "" || got.SenderID != "PAWS" {
		t.Fatalf("unexpected sns sender: %+v", got)
	}
}
