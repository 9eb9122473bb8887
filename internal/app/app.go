// Package app wires configuration into a ready-to-use stock service.
// Both the server and the CLI start from here.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/stockbook/internal/config"
	"github.com/JonMunkholm/stockbook/internal/core"
	"github.com/JonMunkholm/stockbook/internal/extract"
	"github.com/JonMunkholm/stockbook/internal/normalize"
	"github.com/JonMunkholm/stockbook/internal/sheets"
)

// App bundles the service with the store it owns.
type App struct {
	Service *core.Service
	Store   sheets.Store
}

// New opens the configured store and builds the service. The caller must
// Close the returned App.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := sheets.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}

	var normalizer core.Normalizer
	if cfg.Normalizer.WebhookURL != "" {
		wh, err := normalize.NewWebhook(cfg.Normalizer.WebhookURL, &http.Client{}, cfg.Normalizer.Timeout)
		if err != nil {
			store.Close()
			return nil, err
		}
		normalizer = wh
	}

	extractor := extract.New(extract.Options{
		HeaderMarker: cfg.Extraction.HeaderMarker,
		RowTolerance: cfg.Extraction.RowTolerance,
	})

	svc, err := core.NewService(store, extractor, normalizer, ServiceConfig(cfg))
	if err != nil {
		store.Close()
		return nil, err
	}
	return &App{Service: svc, Store: store}, nil
}

// ServiceConfig maps application configuration onto core.ServiceConfig.
func ServiceConfig(cfg *config.Config) core.ServiceConfig {
	return core.ServiceConfig{
		MasterSheet:      cfg.Store.MasterSheet,
		TemplateSheet:    cfg.Store.TemplateSheet,
		RefColumn:        cfg.Schema.RefColumn,
		QtyColumn:        cfg.Schema.QtyColumn,
		StoreTimeout:     cfg.Store.Timeout,
		ExtractTimeout:   cfg.Extraction.Timeout,
		NormalizeTimeout: cfg.Normalizer.Timeout,
		CycleWait:        cfg.Store.CycleWait,
	}
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
