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

// Package protocol defines the realtime wire format: JSON text frames
// of the shape {"event": <string>, "data": <object>} in both
// directions. Inbound frames decode once into a closed union of event
// kinds so dispatch is an exhaustive type switch rather than string
// branching spread across the gateway.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/wso2/classroom-platform/attendance-engine/pkg/core"
)

// Wire event names, identical inbound and outbound.
const (
	EventAttendanceMarked = "ATTENDANCE_MARKED"
	EventTodaySummary     = "TODAY_SUMMARY"
	EventDone             = "DONE"
	EventMyAttendance     = "MY_ATTENDANCE"
	EventError            = "ERROR"
)

// ErrUnknownEvent reports a syntactically valid frame whose event name
// is not recognized. The connection stays open.
var ErrUnknownEvent = fmt.Errorf("%w: unknown event", core.ErrInvalidArgument)

// Frame is the raw envelope of every message.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Inbound is the closed set of client-originated events.
type Inbound interface {
	inbound()
}

// MarkRequest records one member's status (teacher only).
type MarkRequest struct {
	StudentID string `json:"studentId"`
	Status    string `json:"status"`
}

// SummaryRequest asks for the running tally (teacher only).
type SummaryRequest struct{}

// FinishRequest closes the session and persists results (teacher only).
type FinishRequest struct{}

// MyStatusRequest asks for the caller's own status (student only).
type MyStatusRequest struct{}

func (MarkRequest) inbound()     {}
func (SummaryRequest) inbound()  {}
func (FinishRequest) inbound()   {}
func (MyStatusRequest) inbound() {}

// EventName reports the wire event name of a decoded inbound event.
func EventName(in Inbound) string {
	switch in.(type) {
	case MarkRequest:
		return EventAttendanceMarked
	case SummaryRequest:
		return EventTodaySummary
	case FinishRequest:
		return EventDone
	case MyStatusRequest:
		return EventMyAttendance
	default:
		return ""
	}
}

// Decode parses one inbound frame. Malformed JSON and missing event
// names map to core.ErrInvalidArgument; recognized envelopes with an
// unknown event name map to ErrUnknownEvent.
func Decode(raw []byte) (Inbound, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
	}
	if f.Event == "" {
		return nil, fmt.Errorf("%w: missing event", core.ErrInvalidArgument)
	}

	switch f.Event {
	case EventAttendanceMarked:
		var req MarkRequest
		if err := decodeData(f.Data, &req); err != nil {
			return nil, err
		}
		return req, nil
	case EventTodaySummary:
		return SummaryRequest{}, nil
	case EventDone:
		return FinishRequest{}, nil
	case EventMyAttendance:
		return MyStatusRequest{}, nil
	default:
		return nil, ErrUnknownEvent
	}
}

func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
	}
	return nil
}

// Encode builds an outbound frame.
func Encode(event string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s data: %w", event, err)
	}
	return json.Marshal(Frame{Event: event, Data: payload})
}

// Outbound payloads.

type MarkPayload struct {
	StudentID string `json:"studentId"`
	Status    string `json:"status"`
}

type SummaryPayload struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Total   int `json:"total"`
}

type DonePayload struct {
	Message string `json:"message"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Total   int    `json:"total"`
}

type StatusPayload struct {
	Status string `json:"status"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// DoneMessage is the broadcast confirmation after a persisted finish.
const DoneMessage = "Attendance persisted"
