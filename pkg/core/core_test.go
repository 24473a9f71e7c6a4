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
	"testing"
)

func TestValidID(t *testing.T) {
	valid := []string{"c1", "68b2f0c4a9d1e83f5a7b2c9d", "class_A-2"}
	for _, id := range valid {
		if !ValidID(id) {
			t.Fatalf("expected %q to be valid", id)
		}
	}

	invalid := []string{"", "has space", "semi;colon", string(make([]byte, 65))}
	for _, id := range invalid {
		if ValidID(id) {
			t.Fatalf("expected %q to be invalid", id)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if s, ok := ParseStatus("present"); !ok || s != StatusPresent {
		t.Fatalf("unexpected result: %v %v", s, ok)
	}
	if _, ok := ParseStatus("late"); ok {
		t.Fatal("expected late to be rejected")
	}
}

func TestForbiddenRefinements(t *testing.T) {
	for _, err := range []error{ErrTeacherOnly, ErrStudentOnly, ErrNotClassTeacher} {
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected %v to be ErrForbidden", err)
		}
	}
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ErrTeacherOnly, "Forbidden, teacher event only"},
		{ErrStudentOnly, "Forbidden, student event only"},
		{ErrNotClassTeacher, "Forbidden, not class teacher"},
		{ErrUnauthorized, "Unauthorized, token missing or invalid"},
		{ErrInvalidArgument, "Invalid message format"},
		{ErrNotFound, "Class not found"},
		{ErrConflict, "Attendance session already active"},
		{ErrNoActiveSession, "No active attendance session"},
		{ErrLedgerWrite, "Attendance store failure, please retry"},
		{errors.New("disk exploded"), "Internal server error"},
	}
	for _, tc := range cases {
		if got := UserMessage(tc.err); got != tc.want {
			t.Fatalf("%v: expected %q, got %q", tc.err, tc.want, got)
		}
		// Wrapped errors map the same and leak no detail.
		wrapped := fmt.Errorf("context: %w", tc.err)
		if got := UserMessage(wrapped); got != tc.want {
			t.Fatalf("wrapped %v: expected %q, got %q", tc.err, tc.want, got)
		}
	}
}
