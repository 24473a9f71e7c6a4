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
	"fmt"

	"github.com/wso2/classroom-platform/attendance-engine/pkg/core"
)

// LedgerType identifies the attendance ledger backend.
type LedgerType string

const (
	LedgerTypeSQLite LedgerType = "sqlite"
	LedgerTypeRedis  LedgerType = "redis"
	LedgerTypeMemory LedgerType = "memory"
)

// Config selects and configures the storage backends. The roster
// always lives in the SQLite file; the ledger backend is switchable.
type Config struct {
	Path   string      `yaml:"path"`
	Ledger LedgerType  `yaml:"ledger"`
	Redis  RedisConfig `yaml:"redis"`
}

// NewLedger builds the configured attendance ledger. The SQLite store
// doubles as the ledger when selected; a non-nil closer is returned for
// backends that own their own connection.
func NewLedger(cfg Config, sqlite *SQLiteStore) (core.AttendanceLedger, func() error, error) {
	switch cfg.Ledger {
	case LedgerTypeSQLite, "":
		return sqlite, nil, nil
	case LedgerTypeRedis:
		ledger, err := NewRedisLedger(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return ledger, ledger.Close, nil
	case LedgerTypeMemory:
		return NewMemoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown ledger type: %s", cfg.Ledger)
	}
}
