// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package logger wraps a zap sugared logger with key/value helpers.
//
//	log, err := logger.New(cfg.LogMode)
//	repoLog := log.With("repo", "BallotRepo")
//	repoLog.Info("ballot inserted", "election_id", id)
package logger
