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

package core

import (
	"regexp"
	"time"
)

// Role is the principal kind carried by a verified credential.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// ParseRole maps a raw claim value onto a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleTeacher:
		return RoleTeacher, true
	case RoleStudent:
		return RoleStudent, true
	default:
		return "", false
	}
}

// Status is a recorded attendance value. A member with no recorded
// status is not-yet-marked; that state is never stored.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// StatusNotYetMarked is the wire sentinel returned to a student who has
// no recorded status in the active session.
const StatusNotYetMarked = "not yet updated"

// ParseStatus maps a raw wire value onto a known status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPresent:
		return StatusPresent, true
	case StatusAbsent:
		return StatusAbsent, true
	default:
		return "", false
	}
}

// Identity is a verified principal: who is acting and as what.
type Identity struct {
	SubjectID string
	Role      Role
}

// Snapshot describes an opened session.
type Snapshot struct {
	ClassID   string
	StartedAt time.Time
}

// Tally is a running or final attendance count. Total covers explicitly
// marked members only until Finish materializes defaults.
type Tally struct {
	Present int
	Absent  int
	Total   int
}

// MarkEvent is the result of a successful mark, fanned out to all
// connected clients.
type MarkEvent struct {
	MemberID string
	Status   Status
}

// AttendanceRecord is one durable ledger row, unique on
// (ClassID, MemberID).
type AttendanceRecord struct {
	ClassID  string
	MemberID string
	Status   Status
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidID reports whether s is a well-formed class or member identifier.
func ValidID(s string) bool {
	return idPattern.MatchString(s)
}
