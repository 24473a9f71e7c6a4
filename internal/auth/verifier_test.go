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

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/wso2/classroom-platform/attendance-engine/pkg/core"
)

func TestVerifyRoundTrip(t *testing.T) {
	v, err := NewHMAC([]byte("test-secret"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := v.Sign(core.Identity{SubjectID: "t1", Role: core.RoleTeacher}, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	identity, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.SubjectID != "t1" || identity.Role != core.RoleTeacher {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestVerifyMissingToken(t *testing.T) {
	v, _ := NewHMAC([]byte("test-secret"))
	if _, err := v.Verify(""); !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	signer, _ := NewHMAC([]byte("secret-a"))
	verifier, _ := NewHMAC([]byte("secret-b"))

	token, err := signer.Sign(core.Identity{SubjectID: "s1", Role: core.RoleStudent}, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	v, _ := NewHMAC([]byte("test-secret"))
	token, err := v.Sign(core.Identity{SubjectID: "s1", Role: core.RoleStudent}, -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(token); !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifyUnknownRole(t *testing.T) {
	v, _ := NewHMAC([]byte("test-secret"))
	token, err := v.Sign(core.Identity{SubjectID: "x1", Role: core.Role("janitor")}, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(token); !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestNewHMACEmptySecret(t *testing.T) {
	if _, err := NewHMAC(nil); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
