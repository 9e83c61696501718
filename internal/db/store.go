package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"civiguard-backend-go/internal/config"
)

// Open connects the store selected by STORE_DRIVER.
func Open(ctx context.Context, appConfig *config.Config, logger *zap.Logger) (Store, error) {
	switch appConfig.StoreDriver {
	case config.StoreFirestore:
		client, err := InitFirestore(ctx, appConfig, logger)
		if err != nil {
			return nil, err
		}
		return NewFirestoreStore(client), nil
	case config.StoreMongo:
		return NewMongoStore(ctx, appConfig.MongoURI, appConfig.MongoDatabase)
	case config.StoreMemory:
		logger.Warn("Using in-memory store; data is lost on restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", appConfig.StoreDriver)
	}
}
