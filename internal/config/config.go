// federails
// Copyright (C) federails authors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package config is a viper-backed loader for federails' recognized
// configuration keys (§6), bindable from a config file or environment
// variables (FEDERAILS_ prefix). Command-line flags are not bound.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every key federails reads at startup. Zero value is
// not valid; use Load.
type Config struct {
	BindAddress string `mapstructure:"bind_address"`
	Port        int    `mapstructure:"port"`
	TLSMode     string `mapstructure:"tls_mode"`
	LogLevel    string `mapstructure:"log_level"`

	Hostname    string `mapstructure:"hostname"`
	DatabaseURL string `mapstructure:"database_url"`

	Federation FederationConfig `mapstructure:"federation"`
	Captcha    CaptchaConfig    `mapstructure:"captcha"`
	Email      EmailConfig      `mapstructure:"email"`
	Media      MediaConfig      `mapstructure:"media"`
}

// FederationConfig governs the Outbound Queue and Inbox Dispatcher.
type FederationConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	WorkerCount int  `mapstructure:"worker_count"`
	Debug       bool `mapstructure:"debug"`
}

// CaptchaConfig is read but not acted on: no captcha subsystem is
// implemented (see DESIGN.md), kept only so a deployment's existing
// config file doesn't fail to parse on these keys.
type CaptchaConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Provider string `mapstructure:"provider"`
	Secret   string `mapstructure:"secret"`
}

// EmailConfig is read but not acted on; see CaptchaConfig.
type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	From     string `mapstructure:"from"`
}

// MediaConfig is read but not acted on; media storage is out of
// scope (§1), this key only exists so a Lemmy-style config file
// naming a pict-rs sidecar still loads cleanly.
type MediaConfig struct {
	PictrsURL string `mapstructure:"pictrs_url"`
}

const envPrefix = "FEDERAILS"

func defaults(v *viper.Viper) {
	v.SetDefault("bind_address", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("tls_mode", "none")
	v.SetDefault("log_level", "info")
	v.SetDefault("hostname", "localhost")
	// registered with an empty default so Unmarshal picks up
	// FEDERAILS_DATABASE_URL; Load still rejects an empty value.
	v.SetDefault("database_url", "")
	v.SetDefault("federation.enabled", true)
	v.SetDefault("federation.worker_count", 4)
	v.SetDefault("federation.debug", false)
	v.SetDefault("captcha.enabled", false)
	v.SetDefault("media.pictrs_url", "")
}

// Load builds a Config from, in ascending priority: built-in
// defaults, a config file (if configPath is non-empty), and
// FEDERAILS_-prefixed environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("config: database_url is required")
	}
	if cfg.Federation.WorkerCount <= 0 {
		cfg.Federation.WorkerCount = 4
	}

	return &cfg, nil
}
