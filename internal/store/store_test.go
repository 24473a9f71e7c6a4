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
	"errors"
	"path/filepath"
	"testing"

	"github.com/wso2/classroom-platform/attendance-engine/pkg/core"
)

func TestMemoryRoster(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.PutClass(ctx, "c1", "t1", []string{"s1", "s2"}); err != nil {
		t.Fatalf("put class: %v", err)
	}

	owner, err := s.GetClassOwner(ctx, "c1")
	if err != nil {
		t.Fatalf("get owner: %v", err)
	}
	if owner != "t1" {
		t.Fatalf("expected t1, got %s", owner)
	}

	members, err := s.GetEnrolledMembers(ctx, "c1")
	if err != nil {
		t.Fatalf("get members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	if _, err := s.GetClassOwner(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryUpsertIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	batch := []core.AttendanceRecord{
		{ClassID: "c1", MemberID: "s1", Status: core.StatusPresent},
		{ClassID: "c1", MemberID: "s2", Status: core.StatusAbsent},
	}
	if err := s.UpsertBatch(ctx, batch); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	batch[1].Status = core.StatusPresent
	if err := s.UpsertBatch(ctx, batch); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	records := s.Records("c1")
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records["s2"] != core.StatusPresent {
		t.Fatalf("expected overwrite to present, got %s", records["s2"])
	}
}

func TestSQLiteRosterAndLedger(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "attendance.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if err := s.PutClass(ctx, "c1", "t1", []string{"s1", "s2", "s3"}); err != nil {
		t.Fatalf("put class: %v", err)
	}

	owner, err := s.GetClassOwner(ctx, "c1")
	if err != nil {
		t.Fatalf("get owner: %v", err)
	}
	if owner != "t1" {
		t.Fatalf("expected t1, got %s", owner)
	}

	members, err := s.GetEnrolledMembers(ctx, "c1")
	if err != nil {
		t.Fatalf("get members: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(members))
	}

	if _, err := s.GetEnrolledMembers(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	batch := []core.AttendanceRecord{
		{ClassID: "c1", MemberID: "s1", Status: core.StatusPresent},
		{ClassID: "c1", MemberID: "s2", Status: core.StatusAbsent},
	}
	if err := s.UpsertBatch(ctx, batch); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Re-running the batch with a changed status must overwrite, not
	// duplicate.
	batch[0].Status = core.StatusAbsent
	if err := s.UpsertBatch(ctx, batch); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	status, err := s.GetStatus(ctx, "c1", "s1")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if status != core.StatusAbsent {
		t.Fatalf("expected absent, got %s", status)
	}

	if _, err := s.GetStatus(ctx, "c1", "s9"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLitePutClassReplacesEnrollment(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "attendance.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if err := s.PutClass(ctx, "c1", "t1", []string{"s1", "s2"}); err != nil {
		t.Fatalf("put class: %v", err)
	}
	if err := s.PutClass(ctx, "c1", "t2", []string{"s3"}); err != nil {
		t.Fatalf("replace class: %v", err)
	}

	owner, _ := s.GetClassOwner(ctx, "c1")
	if owner != "t2" {
		t.Fatalf("expected t2, got %s", owner)
	}
	members, _ := s.GetEnrolledMembers(ctx, "c1")
	if len(members) != 1 || members[0] != "s3" {
		t.Fatalf("unexpected members: %v", members)
	}
}

func TestNewLedgerFactory(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "attendance.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer s.Close()

	ledger, closer, err := NewLedger(Config{Ledger: LedgerTypeSQLite}, s)
	if err != nil {
		t.Fatalf("sqlite ledger: %v", err)
	}
	if ledger != core.AttendanceLedger(s) {
		t.Fatal("expected the sqlite store itself")
	}
	if closer != nil {
		t.Fatal("sqlite ledger must not own a separate closer")
	}

	if _, _, err := NewLedger(Config{Ledger: "etcd"}, s); err == nil {
		t.Fatal("expected error for unknown ledger type")
	}
}
