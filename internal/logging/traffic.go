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

package logging

import (
	"log/slog"

	"github.com/wso2/classroom-platform/attendance-engine/pkg/core"
)

// TrafficLogger records every realtime event the gateway processes.
type TrafficLogger struct {
	logger *slog.Logger
}

func NewTrafficLogger(logger *slog.Logger) *TrafficLogger {
	return &TrafficLogger{logger: logger}
}

// Log records one frame. Direction is "inbound", "unicast" or
// "broadcast"; connID is empty for broadcasts.
func (t *TrafficLogger) Log(event, direction, connID string, identity core.Identity, size int) {
	if t == nil {
		return
	}
	t.logger.Info("frame",
		"event", event,
		"direction", direction,
		"conn_id", connID,
		"subject_id", identity.SubjectID,
		"role", identity.Role,
		"payload_size", size,
	)
}
