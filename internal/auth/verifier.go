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

// Package auth implements the identity verifier over HMAC-signed JWTs.
// Tokens carry {userId, role} claims plus standard expiry.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wso2/classroom-platform/attendance-engine/pkg/core"
)

type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// HMACVerifier verifies and issues HS256 tokens with a shared secret.
type HMACVerifier struct {
	secret []byte
}

// NewHMAC builds a verifier around the shared signing secret.
func NewHMAC(secret []byte) (*HMACVerifier, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("signing secret is required")
	}
	return &HMACVerifier{secret: secret}, nil
}

// Verify validates the token signature and expiry and extracts the
// subject identity. Any failure maps to core.ErrUnauthorized.
func (v *HMACVerifier) Verify(token string) (core.Identity, error) {
	if token == "" {
		return core.Identity{}, fmt.Errorf("%w: missing token", core.ErrUnauthorized)
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return core.Identity{}, fmt.Errorf("%w: %v", core.ErrUnauthorized, err)
	}

	role, ok := core.ParseRole(c.Role)
	if !ok || c.UserID == "" {
		return core.Identity{}, fmt.Errorf("%w: incomplete claims", core.ErrUnauthorized)
	}

	return core.Identity{SubjectID: c.UserID, Role: role}, nil
}

// Sign issues a token for the identity, valid for ttl. Used by
// provisioning tooling and tests.
func (v *HMACVerifier) Sign(identity core.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: identity.SubjectID,
		Role:   string(identity.Role),
	})
	return token.SignedString(v.secret)
}
