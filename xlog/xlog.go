// Copyright 2024 The ObjectDict Authors
// This file is part of ObjectDict.
//
// ObjectDict is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ObjectDict is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with ObjectDict. If not, see <http://www.gnu.org/licenses/>.

// Package xlog configures the zap logger shared by every package in this
// module, matching the key-value call idiom used throughout (Debugw, Warnw,
// Errorw with "key", value pairs rather than formatted strings).
package xlog

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ledgerkv/objectdict/config"
)

// New builds a *zap.SugaredLogger from cfg: console encoding with debug
// level in development, JSON encoding at info level otherwise.
func New(cfg config.Config) (*zap.SugaredLogger, error) {
	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("xlog: build logger: %w", err)
	}
	return logger.Sugar(), nil
}

// Noop returns a logger that discards everything, for tests that don't care
// about log output but need a non-nil *zap.SugaredLogger.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
