// Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
//
// WSO2 LLC. licenses this file to you under the Apache License,
// Version 2.0 (the "License"); you may not use this file except
// in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied. See the License for the
// specific language governing permissions and limitations
// under the License.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wso2/classroom-platform/attendance-engine/pkg/core"
)

// RedisConfig holds Redis connection configuration for the ledger.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// RedisLedger implements the attendance ledger over Redis hashes, one
// hash per class keyed by member. Hash field semantics give the
// (class, member) uniqueness constraint for free.
type RedisLedger struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisLedger connects to Redis and verifies the connection.
func NewRedisLedger(cfg RedisConfig) (*RedisLedger, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "attendance:"
	}

	return &RedisLedger{client: client, keyPrefix: keyPrefix}, nil
}

func (r *RedisLedger) key(classID string) string {
	return r.keyPrefix + classID
}

// UpsertBatch writes all records in one pipeline round-trip.
func (r *RedisLedger) UpsertBatch(ctx context.Context, records []core.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for _, rec := range records {
		pipe.HSet(ctx, r.key(rec.ClassID), rec.MemberID, string(rec.Status))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis upsert batch: %w", err)
	}
	return nil
}

// Close releases the Redis client.
func (r *RedisLedger) Close() error {
	return r.client.Close()
}
