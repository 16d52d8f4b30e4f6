package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/supplier-cli/internal/aianalyst"
	"github.com/sells-group/supplier-cli/internal/analysis"
	"github.com/sells-group/supplier-cli/internal/scorer"
	"github.com/sells-group/supplier-cli/internal/store"
	"github.com/sells-group/supplier-cli/pkg/anthropic"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "supplier.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initOrchestrator wires the orchestrator over the given store. Without an
// API key the AI collaborators stay nil and every run uses local scoring.
func initOrchestrator(st store.Store) (*analysis.Orchestrator, error) {
	weights, err := scorer.LoadWeights(cfg.Scoring.WeightsFile)
	if err != nil {
		return nil, err
	}

	var analyzer aianalyst.Analyzer
	var generator aianalyst.MessageGenerator
	if cfg.Anthropic.Key != "" {
		client := anthropic.NewClient(cfg.Anthropic.Key, cfg.Anthropic.RequestsPerSec)
		analyzer = aianalyst.NewClaudeAnalyzer(client, cfg.Anthropic)
		generator = aianalyst.NewClaudeGenerator(client, cfg.Anthropic)
	}

	return analysis.NewOrchestrator(st, analyzer, generator, weights, cfg.Analysis), nil
}
