// Package app wires configuration into the services shared by the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/dvloznov/statement-insights/internal/config"
	"github.com/dvloznov/statement-insights/internal/gcs"
	bq "github.com/dvloznov/statement-insights/internal/infra/bigquery"
	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/dvloznov/statement-insights/internal/narrative"
	"github.com/dvloznov/statement-insights/internal/oracle"
	"github.com/dvloznov/statement-insights/internal/report"
	"github.com/dvloznov/statement-insights/internal/source"
	"github.com/dvloznov/statement-insights/internal/statement"
	"github.com/dvloznov/statement-insights/internal/tax"
)

// NewGenerator builds the report generator: tax rules, oracle provider and
// narrative timeouts all come from cfg.
func NewGenerator(ctx context.Context, cfg *config.Config) (*report.Generator, error) {
	rules := tax.DefaultRules()
	if cfg.TaxRulesFile != "" {
		var err error
		rules, err = tax.LoadRules(cfg.TaxRulesFile)
		if err != nil {
			return nil, fmt.Errorf("NewGenerator: %w", err)
		}
	}

	o, err := oracle.New(ctx, cfg.Oracle)
	if err != nil {
		return nil, fmt.Errorf("NewGenerator: %w", err)
	}

	log := logger.FromContext(ctx)
	if cfg.Offline() {
		log.Warn().Str("provider", cfg.Oracle.Provider).Msg("No oracle API key configured, narrative sections will use fallbacks")
	} else {
		log.Info().Str("provider", cfg.Oracle.Provider).Str("model", cfg.Oracle.Model).Msg("Oracle configured")
	}

	narrator := narrative.NewOrchestrator(o, cfg.Timeouts)
	return report.NewGenerator(statement.DefaultOptions(), narrator, tax.NewCalculator(rules)), nil
}

// Backends holds the optional cloud clients. Nil fields are not configured.
type Backends struct {
	Storage   *gcs.GCSStorageService
	Warehouse *bq.TransactionRepository
}

// OpenBackends creates the requested cloud clients.
func OpenBackends(ctx context.Context, cfg *config.Config, storage, warehouse bool) (*Backends, error) {
	b := &Backends{}
	if storage {
		s, err := gcs.NewGCSStorageService(ctx)
		if err != nil {
			return nil, fmt.Errorf("OpenBackends: %w", err)
		}
		b.Storage = s
	}
	if warehouse {
		w, err := bq.NewTransactionRepository(ctx, cfg.BigQueryProject)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("OpenBackends: %w", err)
		}
		b.Warehouse = w
	}
	return b, nil
}

// Loader returns a statement loader over the configured backends.
func (b *Backends) Loader() *source.Loader {
	l := &source.Loader{}
	if b.Storage != nil {
		l.Storage = b.Storage
	}
	if b.Warehouse != nil {
		l.Warehouse = b.Warehouse
	}
	return l
}

// Close releases every open client.
func (b *Backends) Close() {
	if b.Storage != nil {
		_ = b.Storage.Close()
	}
	if b.Warehouse != nil {
		_ = b.Warehouse.Close()
	}
}
