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

// Package session owns the single active attendance session and every
// mutation of it. The coordinator is the only writer of session state;
// the gateway and the HTTP launcher call into it and fan out whatever
// it returns.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/wso2/classroom-platform/attendance-engine/internal/audit"
	"github.com/wso2/classroom-platform/attendance-engine/pkg/core"
)

type activeSession struct {
	classID        string
	startedAt      time.Time
	statusByMember map[string]core.Status
}

// Coordinator serializes all access to the session. Two locks: mu
// guards the session fields for the duration of a map access; busyMu
// is the session-busy lock held across Open and the whole of Finish,
// including the roster fetch and the ledger round-trip, so a
// concurrent Open or Finish cannot start while reads under mu keep
// being serviced.
type Coordinator struct {
	roster core.RosterStore
	ledger core.AttendanceLedger
	sink   audit.Sink
	logger *slog.Logger

	busyMu sync.Mutex
	mu     sync.Mutex
	active *activeSession
}

// NewCoordinator wires the coordinator to its collaborators.
func NewCoordinator(roster core.RosterStore, ledger core.AttendanceLedger, sink audit.Sink, logger *slog.Logger) *Coordinator {
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Coordinator{
		roster: roster,
		ledger: ledger,
		sink:   sink,
		logger: logger,
	}
}

// Open starts a session for classID. The requester must own the class
// per the roster. Fails with core.ErrConflict while another session is
// active, regardless of requester.
func (c *Coordinator) Open(ctx context.Context, classID string, requester core.Identity) (core.Snapshot, error) {
	if !core.ValidID(classID) {
		return core.Snapshot{}, fmt.Errorf("%w: class id %q", core.ErrInvalidArgument, classID)
	}

	c.busyMu.Lock()
	defer c.busyMu.Unlock()

	c.mu.Lock()
	alreadyActive := c.active != nil
	c.mu.Unlock()
	if alreadyActive {
		return core.Snapshot{}, core.ErrConflict
	}

	owner, err := c.roster.GetClassOwner(ctx, classID)
	if err != nil {
		return core.Snapshot{}, err
	}
	if requester.Role != core.RoleTeacher || owner != requester.SubjectID {
		return core.Snapshot{}, core.ErrNotClassTeacher
	}

	sess := &activeSession{
		classID:        classID,
		startedAt:      time.Now().UTC(),
		statusByMember: make(map[string]core.Status),
	}

	c.mu.Lock()
	c.active = sess
	c.mu.Unlock()

	c.logger.Info("session opened", "class_id", classID, "teacher_id", requester.SubjectID)
	c.publish(ctx, audit.Event{Kind: audit.KindSessionOpened, ClassID: classID, At: sess.startedAt})

	return core.Snapshot{ClassID: classID, StartedAt: sess.startedAt}, nil
}

// Mark records memberID's status in the active session. Re-marking
// overwrites; last write wins.
func (c *Coordinator) Mark(ctx context.Context, memberID string, status string, requester core.Identity) (core.MarkEvent, error) {
	if requester.Role != core.RoleTeacher {
		return core.MarkEvent{}, core.ErrTeacherOnly
	}

	parsed, ok := core.ParseStatus(status)
	if !ok || !core.ValidID(memberID) {
		return core.MarkEvent{}, fmt.Errorf("%w: member %q status %q", core.ErrInvalidArgument, memberID, status)
	}

	c.mu.Lock()
	if c.active == nil {
		c.mu.Unlock()
		return core.MarkEvent{}, core.ErrNoActiveSession
	}
	classID := c.active.classID
	c.active.statusByMember[memberID] = parsed
	c.mu.Unlock()

	c.publish(ctx, audit.Event{
		Kind:     audit.KindAttendanceMarked,
		ClassID:  classID,
		MemberID: memberID,
		Status:   string(parsed),
		At:       time.Now().UTC(),
	})

	return core.MarkEvent{MemberID: memberID, Status: parsed}, nil
}

// Summary counts explicitly marked members. Members never marked are
// excluded until Finish materializes defaults.
func (c *Coordinator) Summary(requester core.Identity) (core.Tally, error) {
	if requester.Role != core.RoleTeacher {
		return core.Tally{}, core.ErrTeacherOnly
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return core.Tally{}, core.ErrNoActiveSession
	}
	return tallyOf(c.active.statusByMember), nil
}

// MyStatus answers the requesting student's own status, or the
// not-yet-marked sentinel. Enrollment is not checked here; the answer
// is only meaningful for enrolled students.
func (c *Coordinator) MyStatus(requester core.Identity) (string, error) {
	if requester.Role != core.RoleStudent {
		return "", core.ErrStudentOnly
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return "", core.ErrNoActiveSession
	}
	if status, ok := c.active.statusByMember[requester.SubjectID]; ok {
		return string(status), nil
	}
	return core.StatusNotYetMarked, nil
}

// Finish closes the session: ownership is re-verified against the
// roster (not trusted from Open time), every enrolled-but-unmarked
// member defaults to absent, and all statuses go to the ledger as one
// idempotent upsert batch. On ledger failure the session is retained
// so Finish can be retried without losing marks.
func (c *Coordinator) Finish(ctx context.Context, requester core.Identity) (core.Tally, error) {
	if requester.Role != core.RoleTeacher {
		return core.Tally{}, core.ErrTeacherOnly
	}

	c.busyMu.Lock()
	defer c.busyMu.Unlock()

	c.mu.Lock()
	if c.active == nil {
		c.mu.Unlock()
		return core.Tally{}, core.ErrNoActiveSession
	}
	classID := c.active.classID
	statuses := make(map[string]core.Status, len(c.active.statusByMember))
	for member, status := range c.active.statusByMember {
		statuses[member] = status
	}
	c.mu.Unlock()

	owner, err := c.roster.GetClassOwner(ctx, classID)
	if err != nil {
		return core.Tally{}, err
	}
	if owner != requester.SubjectID {
		return core.Tally{}, core.ErrNotClassTeacher
	}

	enrolled, err := c.roster.GetEnrolledMembers(ctx, classID)
	if err != nil {
		return core.Tally{}, err
	}
	for _, member := range enrolled {
		if _, ok := statuses[member]; !ok {
			statuses[member] = core.StatusAbsent
		}
	}

	records := make([]core.AttendanceRecord, 0, len(statuses))
	for member, status := range statuses {
		records = append(records, core.AttendanceRecord{ClassID: classID, MemberID: member, Status: status})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].MemberID < records[j].MemberID })

	if err := c.ledger.UpsertBatch(ctx, records); err != nil {
		c.logger.Error("attendance batch write failed", "class_id", classID, "records", len(records), "error", err)
		return core.Tally{}, fmt.Errorf("%w: %v", core.ErrLedgerWrite, err)
	}

	tally := tallyOf(statuses)

	c.mu.Lock()
	c.active = nil
	c.mu.Unlock()

	c.logger.Info("session finished",
		"class_id", classID,
		"present", tally.Present,
		"absent", tally.Absent,
		"total", tally.Total,
	)
	c.publish(ctx, audit.Event{
		Kind:    audit.KindSessionFinished,
		ClassID: classID,
		Present: tally.Present,
		Absent:  tally.Absent,
		Total:   tally.Total,
		At:      time.Now().UTC(),
	})

	return tally, nil
}

func tallyOf(statuses map[string]core.Status) core.Tally {
	var t core.Tally
	for _, status := range statuses {
		switch status {
		case core.StatusPresent:
			t.Present++
		case core.StatusAbsent:
			t.Absent++
		}
	}
	t.Total = t.Present + t.Absent
	return t
}

// publish is best effort: sink failures are logged and swallowed.
func (c *Coordinator) publish(ctx context.Context, evt audit.Event) {
	if err := c.sink.Publish(ctx, evt); err != nil {
		c.logger.Warn("audit publish failed", "kind", evt.Kind, "class_id", evt.ClassID, "error", err)
	}
}
