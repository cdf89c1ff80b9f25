// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package repos provides per-table data access over gorm.
//
// Every method takes a context and an optional transaction; a nil tx runs
// against the store's own connection. Lookups by key return
// gorm.ErrRecordNotFound when nothing matches, as do keyed writes that touch
// no row.
package repos
