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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wso2/classroom-platform/attendance-engine/internal/audit"
	"github.com/wso2/classroom-platform/attendance-engine/internal/auth"
	"github.com/wso2/classroom-platform/attendance-engine/internal/gateway"
	"github.com/wso2/classroom-platform/attendance-engine/internal/httpapi"
	"github.com/wso2/classroom-platform/attendance-engine/internal/logging"
	"github.com/wso2/classroom-platform/attendance-engine/internal/session"
	"github.com/wso2/classroom-platform/attendance-engine/internal/store"
	"github.com/wso2/classroom-platform/attendance-engine/pkg/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "/etc/attendance/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	sqlite, err := store.OpenSQLite(cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer sqlite.Close()

	ledger, closeLedger, err := store.NewLedger(cfg.Store, sqlite)
	if err != nil {
		logger.Error("failed to build ledger", "type", cfg.Store.Ledger, "error", err)
		os.Exit(1)
	}
	if closeLedger != nil {
		defer closeLedger()
	}

	sink, err := audit.NewSink(cfg.Audit)
	if err != nil {
		logger.Error("failed to build audit sink", "type", cfg.Audit.Type, "error", err)
		os.Exit(1)
	}
	defer sink.Close()

	verifier, err := auth.NewHMAC([]byte(cfg.Auth.Secret))
	if err != nil {
		logger.Error("failed to build verifier", "error", err)
		os.Exit(1)
	}

	coord := session.NewCoordinator(sqlite, ledger, sink, logger.With("component", "coordinator"))
	traffic := logging.NewTrafficLogger(logger.With("component", "traffic"))
	hub := gateway.NewHub(coord, verifier, logger.With("component", "gateway"), traffic)
	api := httpapi.NewHandler(coord, verifier, logger.With("component", "httpapi"))

	mux := http.NewServeMux()
	api.Register(mux)
	mux.HandleFunc(cfg.Server.WSPath, hub.HandleConnection)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: mux,
	}

	go func() {
		logger.Info("attendance engine started",
			"port", cfg.Server.Port,
			"ws_path", cfg.Server.WSPath,
			"ledger", cfg.Store.Ledger,
		)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down attendance engine")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", "error", err)
	}

	logger.Info("attendance engine stopped")
}
