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

// Package config loads the process configuration from a YAML file,
// with secrets coming from the environment only.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/wso2/classroom-platform/attendance-engine/internal/audit"
	"github.com/wso2/classroom-platform/attendance-engine/internal/store"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
	Store  store.Config `yaml:"store"`
	Audit  audit.Config `yaml:"audit"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	WSPath string `yaml:"ws_path"`
}

type AuthConfig struct {
	// Secret signs and verifies credential tokens. Environment only,
	// never the config file.
	Secret string `yaml:"-" env:"ATTENDANCE_JWT_SECRET"`
}

// Load reads the YAML file at path, applies environment overrides and
// fills defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.WSPath == "" {
		cfg.Server.WSPath = "/ws"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "attendance.db"
	}
	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("ATTENDANCE_JWT_SECRET is required")
	}

	return &cfg, nil
}
