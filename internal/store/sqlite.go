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

// Package store provides the roster and attendance ledger backends: a
// SQLite file for durable state, Redis as an alternate ledger, and an
// in-memory store for tests and development.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wso2/classroom-platform/attendance-engine/pkg/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS classes (
	id         TEXT PRIMARY KEY,
	teacher_id TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS enrollments (
	class_id  TEXT NOT NULL REFERENCES classes(id),
	member_id TEXT NOT NULL,
	PRIMARY KEY (class_id, member_id)
);
CREATE TABLE IF NOT EXISTS attendance (
	class_id   TEXT NOT NULL,
	member_id  TEXT NOT NULL,
	status     TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (class_id, member_id)
);
`

// SQLiteStore implements the roster store and the attendance ledger
// over a single SQLite file, so provisioning and persistence share one
// transaction and visibility boundary.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the store and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutClass provisions a class with its owner and enrolled members,
// replacing any previous enrollment set atomically.
func (s *SQLiteStore) PutClass(ctx context.Context, classID, teacherID string, members []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put class: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO classes (id, teacher_id, created_at) VALUES (?, ?, ?)
ON CONFLICT (id) DO UPDATE SET teacher_id = excluded.teacher_id`,
		classID, teacherID, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert class: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE class_id = ?`, classID); err != nil {
		return fmt.Errorf("clear enrollments: %w", err)
	}
	for _, member := range members {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO enrollments (class_id, member_id) VALUES (?, ?)`, classID, member); err != nil {
			return fmt.Errorf("insert enrollment: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetClassOwner(ctx context.Context, classID string) (string, error) {
	var teacherID string
	err := s.db.QueryRowContext(ctx,
		`SELECT teacher_id FROM classes WHERE id = ?`, classID).Scan(&teacherID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: class %s", core.ErrNotFound, classID)
	}
	if err != nil {
		return "", fmt.Errorf("query class owner: %w", err)
	}
	return teacherID, nil
}

func (s *SQLiteStore) GetEnrolledMembers(ctx context.Context, classID string) ([]string, error) {
	if _, err := s.GetClassOwner(ctx, classID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT member_id FROM enrollments WHERE class_id = ? ORDER BY member_id`, classID)
	if err != nil {
		return nil, fmt.Errorf("query enrollments: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var member string
		if err := rows.Scan(&member); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// UpsertBatch writes all records in one transaction. Conflicting
// (class_id, member_id) keys overwrite, so a retried finish after a
// partial failure never duplicates rows.
func (s *SQLiteStore) UpsertBatch(ctx context.Context, records []core.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO attendance (class_id, member_id, status, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (class_id, member_id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().UnixMilli()
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ClassID, r.MemberID, string(r.Status), now); err != nil {
			return fmt.Errorf("upsert %s/%s: %w", r.ClassID, r.MemberID, err)
		}
	}

	return tx.Commit()
}

// GetStatus reads one persisted status, mostly for verification tooling
// and tests. Missing rows map to core.ErrNotFound.
func (s *SQLiteStore) GetStatus(ctx context.Context, classID, memberID string) (core.Status, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM attendance WHERE class_id = ? AND member_id = ?`, classID, memberID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s/%s", core.ErrNotFound, classID, memberID)
	}
	if err != nil {
		return "", fmt.Errorf("query attendance: %w", err)
	}
	return core.Status(status), nil
}
