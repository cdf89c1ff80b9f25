// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package services implements account, election and candidate management.
//
// Each operation takes the caller's auth.Principal and checks its capability
// first. Request structs are validated with go-playground/validator and
// failures surface as apperr invalid-argument errors. Vote casting and
// tallying live in package voting; ElectionService.Complete reuses its
// tally to write the result snapshot.
package services
