package data

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/lk2023060901/prospect-finder/internal/conf"
	"github.com/lk2023060901/prospect-finder/internal/pkg/database"
	"github.com/lk2023060901/prospect-finder/internal/pkg/logger"
	"github.com/lk2023060901/prospect-finder/internal/pkg/redis"
)

// Data holds the backing stores. Each client is nil unless the
// configuration selects it.
type Data struct {
	DB            *database.DB
	Redis         *redis.Client
	Elasticsearch *elasticsearch.Client
	Logger        *logger.Logger
}

// NewData opens the stores the configuration needs and returns a cleanup
// that closes them.
func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	d := &Data{Logger: log}

	cleanup := func() {
		log.Info("cleaning up data resources")
		if d.DB != nil {
			if err := d.DB.Close(); err != nil {
				log.Warn("failed to close database", zap.Error(err))
			}
		}
		if d.Redis != nil {
			if err := d.Redis.Close(); err != nil {
				log.Warn("failed to close redis", zap.Error(err))
			}
		}
	}

	if config.Sink.Uses("postgres") {
		db, err := database.New(&config.Database, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init database: %w", err)
		}
		d.DB = db
	}

	if config.Redis.Enabled {
		rdb, err := redis.New(&config.Redis, log)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		d.Redis = rdb
	}

	if config.Sink.Uses("elasticsearch") {
		es, err := initElasticsearch(&config.Elasticsearch, log)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to init elasticsearch: %w", err)
		}
		d.Elasticsearch = es
	}

	return d, cleanup, nil
}

func initElasticsearch(cfg *conf.ElasticsearchConfig, log *logger.Logger) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := client.Ping(client.Ping.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("ping: %s", res.Status())
	}

	log.Info("elasticsearch connected", zap.Strings("addresses", cfg.Addresses))
	return client, nil
}
