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
	"sync"

	"github.com/wso2/classroom-platform/attendance-engine/pkg/core"
)

type memClass struct {
	teacherID string
	members   []string
}

// MemoryStore is an in-process roster and ledger. It backs tests and
// single-node development setups.
type MemoryStore struct {
	mu        sync.RWMutex
	classes   map[string]memClass
	records   map[string]map[string]core.Status
	upsertErr error
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		classes: make(map[string]memClass),
		records: make(map[string]map[string]core.Status),
	}
}

// PutClass provisions a class with its owner and enrolled members,
// replacing any previous definition.
func (m *MemoryStore) PutClass(ctx context.Context, classID, teacherID string, members []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes[classID] = memClass{teacherID: teacherID, members: append([]string(nil), members...)}
	return nil
}

func (m *MemoryStore) GetClassOwner(ctx context.Context, classID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.classes[classID]
	if !ok {
		return "", fmt.Errorf("%w: class %s", core.ErrNotFound, classID)
	}
	return c.teacherID, nil
}

func (m *MemoryStore) GetEnrolledMembers(ctx context.Context, classID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.classes[classID]
	if !ok {
		return nil, fmt.Errorf("%w: class %s", core.ErrNotFound, classID)
	}
	return append([]string(nil), c.members...), nil
}

func (m *MemoryStore) UpsertBatch(ctx context.Context, records []core.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, r := range records {
		byMember, ok := m.records[r.ClassID]
		if !ok {
			byMember = make(map[string]core.Status)
			m.records[r.ClassID] = byMember
		}
		byMember[r.MemberID] = r.Status
	}
	return nil
}

// SetUpsertErr injects a failure into subsequent UpsertBatch calls.
// Tests use it to exercise the finish-retry path.
func (m *MemoryStore) SetUpsertErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertErr = err
}

// Records returns a copy of the persisted statuses for a class.
func (m *MemoryStore) Records(classID string) map[string]core.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]core.Status, len(m.records[classID]))
	for member, status := range m.records[classID] {
		out[member] = status
	}
	return out
}
