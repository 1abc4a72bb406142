// redis_store.go
//
// Session-authenticated data service for the Runway AI pageant training application
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of runway.
// runway is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// runway is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with runway.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisSessionPrefix = "runway:sess:"

// RedisSessionStore is a fiber.Storage over Redis, used when SESSION_STORE=redis
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore connects to addr and verifies the connection
func NewRedisSessionStore(ctx context.Context, addr, password string, db int) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, wrap("redisConnect", err)
	}
	return &RedisSessionStore{client: client}, nil
}

func (r *RedisSessionStore) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	val, err := r.client.Get(context.Background(), redisSessionPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("redisGet", err)
	}
	return val, nil
}

func (r *RedisSessionStore) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return wrap("redisSet", r.client.Set(context.Background(), redisSessionPrefix+key, val, exp).Err())
}

func (r *RedisSessionStore) Delete(key string) error {
	if key == "" {
		return nil
	}
	return wrap("redisDelete", r.client.Del(context.Background(), redisSessionPrefix+key).Err())
}

// Reset removes every session key, leaving the rest of the database alone
func (r *RedisSessionStore) Reset() error {
	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, redisSessionPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return wrap("redisReset", err)
		}
	}
	return wrap("redisReset", iter.Err())
}

func (r *RedisSessionStore) Close() error {
	return r.client.Close()
}
