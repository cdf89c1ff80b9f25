// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apperr defines the domain error taxonomy shared by services and handlers.

Every expected failure is an *Error with a Kind, a stable machine code and a
stable user-facing message:

	if errors.Is(err, apperr.ErrAlreadyVoted) { ... }

	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		// 404
	}

Errors that are not *Error values are infrastructure faults and are reported
to callers as internal errors.
*/
package apperr
