package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dvloznov/statement-insights/internal/config"
	"github.com/dvloznov/statement-insights/internal/narrative"
	"github.com/dvloznov/statement-insights/internal/oracle"
)

func offlineConfig() *config.Config {
	return &config.Config{
		Oracle:      oracle.Settings{Provider: oracle.ProviderNone},
		Timeouts:    narrative.DefaultTimeouts(),
		DefaultRisk: 50,
	}
}

func TestNewGenerator(t *testing.T) {
	g, err := NewGenerator(context.Background(), offlineConfig())
	if err != nil || g == nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
}

func TestNewGenerator_Errors(t *testing.T) {
	badRules := filepath.Join(t.TempDir(), "rules.json")
	if err := os.WriteFile(badRules, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown provider", func(c *config.Config) { c.Oracle.Provider = "mystery" }},
		{"missing rules file", func(c *config.Config) { c.TaxRulesFile = filepath.Join(t.TempDir(), "none.json") }},
		{"invalid rules file", func(c *config.Config) { c.TaxRulesFile = badRules }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := offlineConfig()
			tt.mutate(cfg)
			if _, err := NewGenerator(context.Background(), cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBackends_LoaderWithoutClients(t *testing.T) {
	l := (&Backends{}).Loader()
	if l.Storage != nil || l.Warehouse != nil {
		t.Errorf("unconfigured backends must stay nil interfaces: %+v", l)
	}
	if _, err := l.Load(context.Background(), "gs://bucket/x.csv"); err == nil {
		t.Error("expected error loading from unconfigured storage")
	}
}
