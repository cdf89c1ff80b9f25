// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/danielhkuo/campus-vote/apperr"
	"github.com/danielhkuo/campus-vote/models"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

// Capability names one permission checked at operation entry.
type Capability string

const (
	CapCastVote         Capability = "vote:cast"
	CapViewHistory      Capability = "vote:history"
	CapViewResults      Capability = "results:view"
	CapViewLiveResults  Capability = "results:view_live"
	CapViewActive       Capability = "elections:view_active"
	CapManageProfile    Capability = "profile:manage"
	CapNominate         Capability = "candidates:nominate"
	CapManageElections  Capability = "elections:manage"
	CapManageCandidates Capability = "candidates:manage"
	CapManageUsers      Capability = "users:manage"
	CapViewLedger       Capability = "ledger:view"
)

var roleCapabilities = map[string]map[Capability]bool{
	models.RoleStudent: {
		CapCastVote:      true,
		CapViewHistory:   true,
		CapViewResults:   true,
		CapViewActive:    true,
		CapManageProfile: true,
		CapNominate:      true,
	},
	models.RoleAdmin: {
		CapCastVote:         true,
		CapViewHistory:      true,
		CapViewResults:      true,
		CapViewLiveResults:  true,
		CapViewActive:       true,
		CapManageProfile:    true,
		CapManageElections:  true,
		CapManageCandidates: true,
		CapManageUsers:      true,
		CapViewLedger:       true,
	},
}

// Can reports whether the principal's role grants c.
func (p Principal) Can(c Capability) bool {
	return roleCapabilities[p.Role][c]
}

func (p Principal) Authenticated() bool {
	return p.UserID != uuid.Nil
}

// Require fails with ErrUnauthenticated for an anonymous principal and
// ErrForbidden when the role lacks c.
func Require(p Principal, c Capability) error {
	if !p.Authenticated() {
		return apperr.ErrUnauthenticated
	}
	if !p.Can(c) {
		return apperr.ErrForbidden
	}
	return nil
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
