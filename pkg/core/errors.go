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
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument covers malformed identifiers, bad status
	// values and unparsable frames.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnauthorized means the credential is missing or invalid.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is the base of all role and ownership failures.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the class did not resolve in the roster.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a session is already active on Open.
	ErrConflict = errors.New("session already active")

	// ErrNoActiveSession means an operation that requires an active
	// session was called while none exists.
	ErrNoActiveSession = errors.New("no active session")

	// ErrLedgerWrite means the attendance batch could not be
	// persisted; the session is retained so Finish can be retried.
	ErrLedgerWrite = errors.New("ledger write failed")
)

// Ownership and role refinements of ErrForbidden. They satisfy
// errors.Is(err, ErrForbidden) while mapping to distinct user messages.
var (
	ErrTeacherOnly     = fmt.Errorf("%w: teacher event only", ErrForbidden)
	ErrStudentOnly     = fmt.Errorf("%w: student event only", ErrForbidden)
	ErrNotClassTeacher = fmt.Errorf("%w: not class teacher", ErrForbidden)
)

// UserMessage maps an error onto the stable client-facing message for
// it. Internal detail (storage errors, wrap context) never leaks.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrTeacherOnly):
		return "Forbidden, teacher event only"
	case errors.Is(err, ErrStudentOnly):
		return "Forbidden, student event only"
	case errors.Is(err, ErrNotClassTeacher):
		return "Forbidden, not class teacher"
	case errors.Is(err, ErrForbidden):
		return "Forbidden"
	case errors.Is(err, ErrUnauthorized):
		return "Unauthorized, token missing or invalid"
	case errors.Is(err, ErrInvalidArgument):
		return "Invalid message format"
	case errors.Is(err, ErrNotFound):
		return "Class not found"
	case errors.Is(err, ErrConflict):
		return "Attendance session already active"
	case errors.Is(err, ErrNoActiveSession):
		return "No active attendance session"
	case errors.Is(err, ErrLedgerWrite):
		return "Attendance store failure, please retry"
	default:
		return "Internal server error"
	}
}
