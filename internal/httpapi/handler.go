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

// Package httpapi is the thin HTTP surface: the session launcher and a
// liveness probe. Everything else happens over the realtime gateway.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/wso2/classroom-platform/attendance-engine/internal/session"
	"github.com/wso2/classroom-platform/attendance-engine/pkg/core"
)

// Handler exposes the session launcher endpoints.
type Handler struct {
	coord    *session.Coordinator
	verifier core.TokenVerifier
	logger   *slog.Logger
}

func NewHandler(coord *session.Coordinator, verifier core.TokenVerifier, logger *slog.Logger) *Handler {
	return &Handler{coord: coord, verifier: verifier, logger: logger}
}

// Register mounts the endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /attendance/start", h.requireTeacher(h.handleStart))
	mux.HandleFunc("GET /healthz", h.handleHealthz)
}

type startRequest struct {
	ClassID string `json:"classId"`
}

type startResponse struct {
	ClassID   string    `json:"classId"`
	StartedAt time.Time `json:"startedAt"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request, identity core.Identity) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClassID == "" {
		writeError(w, http.StatusBadRequest, "Invalid request schema")
		return
	}

	snap, err := h.coord.Open(r.Context(), req.ClassID, identity)
	if err != nil {
		h.logger.Warn("session start rejected", "class_id", req.ClassID, "teacher_id", identity.SubjectID, "error", err)
		writeError(w, statusCode(err), core.UserMessage(err))
		return
	}

	writeSuccess(w, http.StatusOK, startResponse{ClassID: snap.ClassID, StartedAt: snap.StartedAt})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireTeacher authenticates the bearer credential and requires the
// teacher role before invoking next.
func (h *Handler) requireTeacher(next func(http.ResponseWriter, *http.Request, core.Identity)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		identity, err := h.verifier.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized, token missing or invalid")
			return
		}
		if identity.Role != core.RoleTeacher {
			writeError(w, http.StatusForbidden, "Forbidden, teacher access required")
			return
		}
		next(w, r, identity)
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: message})
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, core.ErrNoActiveSession):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
