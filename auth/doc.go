// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides passwords, session tokens, principals and capabilities.

# Passwords

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(pw)
	ok := auth.CheckPassword(hash, pw)

# Session Tokens

TokenIssuer signs HS256 JWTs whose subject is the user ID and whose role
claim selects the capability set:

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	token, err := issuer.Issue(user.ID, user.Role)
	principal, err := issuer.Parse(token)

Any parse failure (bad signature, expired, unknown role) is
apperr.ErrInvalidToken.

# Capabilities

Every operation checks a capability at entry instead of comparing roles:

	if err := auth.Require(principal, auth.CapManageElections); err != nil {
		return err
	}

Students may vote, nominate themselves, and view completed results. Admins
may additionally manage elections, candidates and users, read the ballot
ledger, and view live results.

# IP Hashing

For privacy-preserving fraud detection:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.

# Inputs Hash

InputsHash fingerprints the ballot IDs behind a result snapshot so a later
recount can be checked against the same inputs.
*/
package auth
