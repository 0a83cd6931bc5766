package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/milkbook/milkbook/internal/config"
	"github.com/milkbook/milkbook/internal/repository/localstore"
	"github.com/milkbook/milkbook/internal/repository/mongodb"
	"github.com/milkbook/milkbook/internal/repository/storage"
)

// Open selects a storage.Store implementation from the configured driver.
//
//	MILKBOOK_STORAGE_DRIVER: file|mongo (default file)
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.Store, error) {
	switch cfg.Driver {
	case config.StorageDriverFile:
		return localstore.New(cfg.DataFile, logger), nil
	case config.StorageDriverMongo:
		return mongodb.New(ctx, cfg.MongoURI, cfg.MongoDBName)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
