// Package modkit builds API modules from shared deps and options
package modkit

import (
	"walletsync/internal/modkit/module"
	"walletsync/internal/modkit/repokit"
	"walletsync/internal/platform/config"
	"walletsync/internal/platform/logger"
	"walletsync/internal/platform/store"
)

// Module is the contract every API module satisfies
type Module = module.Module

// Deps holds the core dependencies handed to every module
// PG and CH may be nil, modules decide whether that is fatal
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}
