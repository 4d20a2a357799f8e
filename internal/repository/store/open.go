package store

import (
	"context"
	"fmt"

	"github.com/mamadbah2/linetrack/internal/config"
)

// Open builds the store selected by configuration, wrapped in a Memo unless
// the memo size is zero.
func Open(ctx context.Context, cfg config.StoreConfig, mongoCfg config.MongoDBConfig) (Store, error) {
	var (
		base Store
		err  error
	)

	switch cfg.Driver {
	case config.StoreDriverBolt:
		base, err = NewBoltStore(cfg.Path)
	case config.StoreDriverMongo:
		base, err = NewMongoStore(ctx, mongoCfg.URI, mongoCfg.DBName)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.MemoSize == 0 {
		return base, nil
	}

	memo, err := NewMemo(base, cfg.MemoSize)
	if err != nil {
		_ = base.Close(ctx)
		return nil, err
	}
	return memo, nil
}
