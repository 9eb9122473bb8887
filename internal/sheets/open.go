package sheets

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/stockbook/internal/config"
)

// Open returns the backend selected by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return NewMemory(nil), nil
	case config.BackendFile:
		return NewDir(cfg.Store.Dir)
	case config.BackendSheets:
		return NewGoogle(ctx, cfg.Google.SpreadsheetID, GoogleCredentials{
			File: cfg.Google.CredentialsFile,
			JSON: cfg.Google.CredentialsJSON,
		})
	case config.BackendPostgres:
		return NewPostgres(ctx, cfg.Database.URL, PoolOptions{
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
	case config.BackendSQLite:
		return NewSQLite(ctx, cfg.SQLite.Path)
	case config.BackendS3:
		return NewS3(ctx, S3Options{
			Bucket:       cfg.S3.Bucket,
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			UsePathStyle: cfg.S3.UsePathStyle,
			Prefix:       cfg.S3.Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
