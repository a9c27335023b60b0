// Package redisstore reads raw extract tables from the external redis
// cache. The pipeline never writes to this store.
package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/campuskit/seguimiento/core"
)

type Store struct {
	rdb *goredis.Client
	log core.Logger
}

var _ core.Store = (*Store)(nil)

func New(conf *core.Config, log core.Logger) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        conf.Redis.Addr,
		Password:    conf.Redis.Password,
		DB:          conf.Redis.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "redisstore: ping")
	}
	return &Store{rdb: rdb, log: log}, nil
}

// Get tries each key in order and returns the first non-empty table.
// A key that is absent or holds an empty table is not an error; only
// transport failures and undecodable payloads are.
func (s *Store) Get(ctx context.Context, keys ...string) (core.Table, error) {
	for _, key := range keys {
		raw, err := s.rdb.Get(ctx, key).Bytes()
		if err == goredis.Nil {
			continue
		}
		if err != nil {
			return core.Table{}, errors.Wrapf(err, "redisstore: GET %s", key)
		}
		var t core.Table
		if err := json.Unmarshal(raw, &t); err != nil {
			return core.Table{}, errors.Wrapf(err, "redisstore: decoding %s", key)
		}
		if !t.Empty() {
			return t, nil
		}
		s.log.Debug("redisstore: key " + key + " holds an empty table")
	}
	return core.Table{}, nil
}

func (s *Store) Close() error { return s.rdb.Close() }
