// Copyright 2018 The klaytn Authors
// This file is part of the klaytn library.
//
// The klaytn library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The klaytn library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the klaytn library. If not, see <http://www.gnu.org/licenses/>.

// Package log provides the module-scoped structured logger used across
// this repository. Every call site uses the key/value idiom
// (logger.Info("message", "key", value, ...)); it is backed by zap's
// SugaredLogger rather than stdlib log.
package log

import (
	"sync"

	"go.uber.org/zap"
)

// ModuleID identifies the subsystem a logger belongs to, for the "mod"
// field attached to every record.
type ModuleID int

const (
	DKGSigning ModuleID = iota
	WorkManager
	Common
	Metrics
	Config
)

func (m ModuleID) String() string {
	switch m {
	case DKGSigning:
		return "dkgsigning"
	case WorkManager:
		return "workmanager"
	case Common:
		return "common"
	case Metrics:
		return "metrics"
	case Config:
		return "config"
	default:
		return "unknown"
	}
}

// ModuleLogger is the key/value structured logger handed out by
// NewModuleLogger. It mirrors the ethereum/klaytn log15-derived call
// convention while being backed by zap underneath.
type ModuleLogger struct {
	sugar *zap.SugaredLogger
	mod   string
}

var (
	baseOnce   sync.Once
	baseLogger *zap.Logger
)

func base() *zap.Logger {
	baseOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		l, err := cfg.Build(zap.AddCallerSkip(1))
		if err != nil {
			// Fall back to a no-op logger rather than panic; logging must
			// never be able to take a signing node down.
			l = zap.NewNop()
		}
		baseLogger = l
	})
	return baseLogger
}

// NewModuleLogger returns a logger tagged with the given module ID.
func NewModuleLogger(mod ModuleID) *ModuleLogger {
	return &ModuleLogger{sugar: base().Sugar().With("mod", mod.String()), mod: mod.String()}
}

// With returns a derived logger carrying the given static key/value pairs
// on every subsequent record, e.g. logger.With("fingerprint", fp).
func (l *ModuleLogger) With(kv ...interface{}) *ModuleLogger {
	return &ModuleLogger{sugar: l.sugar.With(kv...), mod: l.mod}
}

func (l *ModuleLogger) Trace(msg string, ctx ...interface{}) { l.sugar.Debugw(msg, ctx...) }
func (l *ModuleLogger) Debug(msg string, ctx ...interface{}) { l.sugar.Debugw(msg, ctx...) }
func (l *ModuleLogger) Info(msg string, ctx ...interface{})  { l.sugar.Infow(msg, ctx...) }
func (l *ModuleLogger) Warn(msg string, ctx ...interface{})  { l.sugar.Warnw(msg, ctx...) }
func (l *ModuleLogger) Error(msg string, ctx ...interface{}) { l.sugar.Errorw(msg, ctx...) }
