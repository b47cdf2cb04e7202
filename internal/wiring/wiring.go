// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/hob/internal/adapters/cas"
	_ "go.trai.ch/hob/internal/adapters/config"
	_ "go.trai.ch/hob/internal/adapters/detector"
	_ "go.trai.ch/hob/internal/adapters/fs"
	_ "go.trai.ch/hob/internal/adapters/linear"
	_ "go.trai.ch/hob/internal/adapters/lockfile"
	_ "go.trai.ch/hob/internal/adapters/logger"
	_ "go.trai.ch/hob/internal/adapters/recipefile"
	_ "go.trai.ch/hob/internal/adapters/script"
	_ "go.trai.ch/hob/internal/adapters/shell"
	_ "go.trai.ch/hob/internal/adapters/staging"
	_ "go.trai.ch/hob/internal/adapters/telemetry"
	_ "go.trai.ch/hob/internal/adapters/tui"
	// Register app and engine nodes.
	_ "go.trai.ch/hob/internal/app"
	_ "go.trai.ch/hob/internal/engine/lifecycle"
	_ "go.trai.ch/hob/internal/engine/locker"
	_ "go.trai.ch/hob/internal/engine/resolver"
)
