// Package redisstore backs the keystore with Redis, for shared kiosk
// installs where several admin stations must see the same session.
package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/darasa/core"
)

const (
	keyPrefix   = "darasa:keystore:"
	dialTimeout = 5 * time.Second
)

type Keystore struct {
	rdb *redis.Client
}

var _ core.Keystore = (*Keystore)(nil)

func New(conf core.KeystoreConfig) (*Keystore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: conf.RedisAddr,
		DB:   conf.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrapf(err, "connecting to redis at %s", conf.RedisAddr)
	}
	return &Keystore{rdb: rdb}, nil
}

func (ks *Keystore) Get(key string, v interface{}) (bool, error) {
	raw, err := ks.rdb.Get(context.Background(), keyPrefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "reading %s", key)
	}
	if err = json.Unmarshal(raw, v); err != nil {
		return false, nil // corrupt value == absent
	}
	return true, nil
}

func (ks *Keystore) Set(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "serializing %s", key)
	}
	return ks.rdb.Set(context.Background(), keyPrefix+key, raw, 0).Err()
}

func (ks *Keystore) Delete(key string) error {
	return ks.rdb.Del(context.Background(), keyPrefix+key).Err()
}

func (ks *Keystore) Close() error {
	return ks.rdb.Close()
}
