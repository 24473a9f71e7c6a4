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

import "context"

// RosterStore resolves a class to its owning teacher and enrolled
// members. Lookups return ErrNotFound when the class does not resolve.
type RosterStore interface {
	GetClassOwner(ctx context.Context, classID string) (string, error)
	GetEnrolledMembers(ctx context.Context, classID string) ([]string, error)
}

// AttendanceLedger durably stores per-(class, member) attendance.
// UpsertBatch is idempotent: the same keys overwrite, never duplicate,
// so a retried Finish after a partial failure is safe.
type AttendanceLedger interface {
	UpsertBatch(ctx context.Context, records []AttendanceRecord) error
}

// TokenVerifier validates a bearer credential and extracts the subject
// identity. Verification failures return ErrUnauthorized.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}
