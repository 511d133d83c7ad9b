// Package config loads configuration structs from environment variables.
//
// Environment variable names follow the pattern:
//
//	{Prefix}_{STAGE}_{FIELD}
//
// Go field names are converted from CamelCase to UPPER_SNAKE_CASE unless the
// field carries an explicit `env` tag:
//
//	ListenAddr      → LISTEN_ADDR
//	ShutdownTimeout → SHUTDOWN_TIMEOUT
//
// Example with app.Config and stage "toolbox":
//
//	DISPATCH_TOOLBOX_LISTEN_ADDR=:8080
//	DISPATCH_TOOLBOX_STORE=redis
//	DISPATCH_TOOLBOX_SHUTDOWN_TIMEOUT=5s
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// DefaultPrefix is used by a Loader without Prefix.
const DefaultPrefix = "DISPATCH"

// Loader reads environment variables into configuration structs.
type Loader struct {
	// Prefix for environment variable names.
	// Default: "DISPATCH".
	Prefix string

	// environment overrides the process environment for testing.
	environment map[string]string
}

func (l Loader) prefix() string {
	if l.Prefix == "" {
		return DefaultPrefix
	}
	return l.Prefix
}

// Load populates the struct pointed to by dst with values from environment
// variables. The stage parameter identifies the component and becomes the
// second segment of the variable name.
//
// Only fields with set environment variables are modified; all other fields
// retain their current values. This makes Load suitable for overlaying
// environment overrides on top of programmatic defaults.
func (l Loader) Load(stage string, dst any) error {
	opts := env.Options{
		Prefix:                l.prefix() + "_" + normalizeStage(stage) + "_",
		Environment:           l.environment,
		UseFieldNameByDefault: true,
	}
	if err := env.ParseWithOptions(dst, opts); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load populates dst using the default Loader with prefix "DISPATCH".
func Load(stage string, dst any) error {
	return Loader{}.Load(stage, dst)
}

// normalizeStage converts a stage name to the upper snake form used in
// variable names, for example "tool-box" → "TOOL_BOX".
func normalizeStage(stage string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(stage))
}
