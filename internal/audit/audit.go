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

// Package audit streams session lifecycle records to an external
// topic. Publishing is best effort: a sink failure is logged by the
// caller and never fails the triggering operation.
package audit

import (
	"context"
	"fmt"
	"time"
)

// Record kinds.
const (
	KindSessionOpened    = "session_opened"
	KindAttendanceMarked = "attendance_marked"
	KindSessionFinished  = "session_finished"
)

// Event is one session lifecycle record.
type Event struct {
	Kind     string    `json:"kind"`
	ClassID  string    `json:"classId"`
	MemberID string    `json:"memberId,omitempty"`
	Status   string    `json:"status,omitempty"`
	Present  int       `json:"present,omitempty"`
	Absent   int       `json:"absent,omitempty"`
	Total    int       `json:"total,omitempty"`
	At       time.Time `json:"at"`
}

// Sink accepts session lifecycle records.
type Sink interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// NopSink discards all records. Used when no stream is configured.
type NopSink struct{}

func (NopSink) Publish(ctx context.Context, evt Event) error { return nil }
func (NopSink) Close() error                                 { return nil }

// Config selects and configures the audit sink.
type Config struct {
	Type    string   `yaml:"type"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// NewSink builds the configured sink. An empty or "none" type yields
// the nop sink.
func NewSink(cfg Config) (Sink, error) {
	switch cfg.Type {
	case "", "none":
		return NopSink{}, nil
	case "kafka":
		return NewKafkaSink(cfg.Brokers, cfg.Topic), nil
	default:
		return nil, fmt.Errorf("unknown audit sink type: %s", cfg.Type)
	}
}
