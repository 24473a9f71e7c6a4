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

// Package gateway terminates realtime connections, authenticates them
// at connect time, decodes the wire protocol and routes events to the
// session coordinator, fanning results out to every live connection.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wso2/classroom-platform/attendance-engine/internal/logging"
	"github.com/wso2/classroom-platform/attendance-engine/internal/protocol"
	"github.com/wso2/classroom-platform/attendance-engine/internal/session"
	"github.com/wso2/classroom-platform/attendance-engine/pkg/core"
)

// connectUnauthorizedMessage is the error frame sent before closing a
// connection that failed credential verification.
const connectUnauthorizedMessage = "Unauthorized or invalid token"

const sendBufferSize = 16

type conn struct {
	id       string
	identity core.Identity
	ws       *websocket.Conn
	send     chan []byte
	done     chan struct{}
	closed   sync.Once
}

// trySend enqueues a frame without ever blocking the caller. Frames
// to a full or closing connection are dropped.
func (c *conn) trySend(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *conn) close() {
	c.closed.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// Hub owns the set of live connections. Broadcasts iterate a snapshot
// of the registry so a connection closing mid-broadcast cannot corrupt
// iteration; a send to a full connection drops the frame rather than
// block the hub.
type Hub struct {
	coord    *session.Coordinator
	verifier core.TokenVerifier
	upgrader websocket.Upgrader
	logger   *slog.Logger
	traffic  *logging.TrafficLogger

	mu    sync.Mutex
	conns map[string]*conn

	// dispatchMu serializes the broadcast-producing operations (mark,
	// summary, finish) so broadcasts leave the hub in the order their
	// events were applied to the coordinator. MyStatus is unicast and
	// stays outside it.
	dispatchMu sync.Mutex
}

// NewHub wires the hub to the coordinator and the identity verifier.
func NewHub(coord *session.Coordinator, verifier core.TokenVerifier, logger *slog.Logger, traffic *logging.TrafficLogger) *Hub {
	return &Hub{
		coord:    coord,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		traffic: traffic,
		conns:   make(map[string]*conn),
	}
}

// HandleConnection upgrades the request and services the connection
// until the peer goes away. The credential token comes from the
// "token" query parameter; a missing or invalid token gets an error
// frame and an immediate close, and the connection never reaches the
// registry.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", "error", err)
		return
	}

	identity, err := h.verifier.Verify(r.URL.Query().Get("token"))
	if err != nil {
		h.rejectConnection(ws, err)
		return
	}

	c := &conn{
		id:       uuid.New().String(),
		identity: identity,
		ws:       ws,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}

	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()

	h.logger.Info("client connected", "conn_id", c.id, "subject_id", identity.SubjectID, "role", identity.Role)

	go h.writeLoop(c)
	h.readLoop(r.Context(), c)
	h.removeConn(c)
	h.logger.Info("client disconnected", "conn_id", c.id, "subject_id", identity.SubjectID)
}

func (h *Hub) rejectConnection(ws *websocket.Conn, err error) {
	h.logger.Warn("connection rejected", "error", err)
	if payload, encErr := protocol.Encode(protocol.EventError, protocol.ErrorPayload{Message: connectUnauthorizedMessage}); encErr == nil {
		_ = ws.WriteMessage(websocket.TextMessage, payload)
	}
	_ = ws.Close()
}

func (h *Hub) removeConn(c *conn) {
	h.mu.Lock()
	delete(h.conns, c.id)
	h.mu.Unlock()
	c.close()
}

func (h *Hub) writeLoop(c *conn) {
	for {
		select {
		case payload := <-c.send:
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.logger.Warn("ws write failed", "conn_id", c.id, "error", err)
				// Closing the socket unblocks the read loop, which
				// unregisters the connection.
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (h *Hub) readLoop(ctx context.Context, c *conn) {
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("ws read error", "conn_id", c.id, "error", err)
			}
			return
		}

		in, err := protocol.Decode(raw)
		if err != nil {
			message := "Invalid message format"
			if errors.Is(err, protocol.ErrUnknownEvent) {
				message = "Unknown event"
			}
			h.unicast(c, protocol.EventError, protocol.ErrorPayload{Message: message})
			continue
		}

		h.traffic.Log(protocol.EventName(in), "inbound", c.id, c.identity, len(raw))
		h.dispatch(ctx, c, in)
	}
}

// dispatch routes one decoded event. Mark, summary and finish results
// are broadcast to every connection; a student's own status and all
// errors go only to the requester.
func (h *Hub) dispatch(ctx context.Context, c *conn, in protocol.Inbound) {
	switch ev := in.(type) {
	case protocol.MarkRequest:
		h.dispatchMu.Lock()
		defer h.dispatchMu.Unlock()
		res, err := h.coord.Mark(ctx, ev.StudentID, ev.Status, c.identity)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.broadcast(protocol.EventAttendanceMarked, protocol.MarkPayload{
			StudentID: res.MemberID,
			Status:    string(res.Status),
		})

	case protocol.SummaryRequest:
		h.dispatchMu.Lock()
		defer h.dispatchMu.Unlock()
		tally, err := h.coord.Summary(c.identity)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.broadcast(protocol.EventTodaySummary, protocol.SummaryPayload{
			Present: tally.Present,
			Absent:  tally.Absent,
			Total:   tally.Total,
		})

	case protocol.FinishRequest:
		h.dispatchMu.Lock()
		defer h.dispatchMu.Unlock()
		tally, err := h.coord.Finish(ctx, c.identity)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.broadcast(protocol.EventDone, protocol.DonePayload{
			Message: protocol.DoneMessage,
			Present: tally.Present,
			Absent:  tally.Absent,
			Total:   tally.Total,
		})

	case protocol.MyStatusRequest:
		status, err := h.coord.MyStatus(c.identity)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.unicast(c, protocol.EventMyAttendance, protocol.StatusPayload{Status: status})
	}
}

func (h *Hub) sendError(c *conn, err error) {
	h.unicast(c, protocol.EventError, protocol.ErrorPayload{Message: core.UserMessage(err)})
}

func (h *Hub) unicast(c *conn, event string, data any) {
	payload, err := protocol.Encode(event, data)
	if err != nil {
		h.logger.Error("encode frame failed", "event", event, "error", err)
		return
	}
	h.traffic.Log(event, "unicast", c.id, c.identity, len(payload))
	if !c.trySend(payload) {
		h.logger.Warn("dropping frame", "conn_id", c.id, "event", event)
	}
}

// broadcast fans one frame out to every live connection, best effort:
// a full or closing connection drops the frame without affecting the
// others and never rolls back the coordinator mutation that produced
// it.
func (h *Hub) broadcast(event string, data any) {
	payload, err := protocol.Encode(event, data)
	if err != nil {
		h.logger.Error("encode frame failed", "event", event, "error", err)
		return
	}

	h.mu.Lock()
	targets := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	h.traffic.Log(event, "broadcast", "", core.Identity{}, len(payload))
	for _, c := range targets {
		if !c.trySend(payload) {
			h.logger.Warn("dropping frame", "conn_id", c.id, "event", event)
		}
	}
}

// ConnCount reports the number of registered connections.
func (h *Hub) ConnCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close disconnects every registered connection. Used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	targets := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		c.close()
	}
}
