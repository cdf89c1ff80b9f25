// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/campus-vote/apperr"
	"github.com/danielhkuo/campus-vote/models"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			require.NoError(t, err)
			assert.Len(t, id, tt.wantLen)
		})
	}

	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	assert.NotEqual(t, id1, id2)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
	assert.False(t, CheckPassword("not-a-hash", "hunter22"))
}

func TestHashIP(t *testing.T) {
	a := HashIP("10.0.0.1", "salt")
	b := HashIP("10.0.0.1", "salt")
	c := HashIP("10.0.0.2", "salt")
	d := HashIP("10.0.0.1", "other-salt")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Len(t, a, 16)
}

func TestInputsHashIgnoresOrder(t *testing.T) {
	x, y := uuid.New(), uuid.New()

	assert.Equal(t, InputsHash([]uuid.UUID{x, y}), InputsHash([]uuid.UUID{y, x}))
	assert.NotEqual(t, InputsHash([]uuid.UUID{x}), InputsHash([]uuid.UUID{x, y}))
	assert.Len(t, InputsHash(nil), 64)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	userID := uuid.New()

	token, err := issuer.Issue(userID, models.RoleAdmin)
	require.NoError(t, err)

	p, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, models.RoleAdmin, p.Role)
}

func TestTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	userID := uuid.New()
	good, err := issuer.Issue(userID, models.RoleStudent)
	require.NoError(t, err)

	expired := NewTokenIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(userID, models.RoleStudent)
	require.NoError(t, err)

	unknownRole, err := issuer.Issue(userID, "superuser")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		with  *TokenIssuer
	}{
		{"garbage", "not.a.token", issuer},
		{"wrong secret", good, NewTokenIssuer("other", time.Hour)},
		{"expired", old, issuer},
		{"unknown role", unknownRole, issuer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.with.Parse(tt.token)
			assert.ErrorIs(t, err, apperr.ErrInvalidToken)
		})
	}
}

func TestRequire(t *testing.T) {
	student := Principal{UserID: uuid.New(), Role: models.RoleStudent}
	admin := Principal{UserID: uuid.New(), Role: models.RoleAdmin}

	tests := []struct {
		name      string
		principal Principal
		cap       Capability
		want      error
	}{
		{"student votes", student, CapCastVote, nil},
		{"student nominates", student, CapNominate, nil},
		{"student live results", student, CapViewLiveResults, apperr.ErrForbidden},
		{"student manages elections", student, CapManageElections, apperr.ErrForbidden},
		{"admin live results", admin, CapViewLiveResults, nil},
		{"admin ledger", admin, CapViewLedger, nil},
		{"anonymous", Principal{}, CapViewResults, apperr.ErrUnauthenticated},
		{"unknown role", Principal{UserID: uuid.New(), Role: "guest"}, CapViewResults, apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Require(tt.principal, tt.cap)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	p := Principal{UserID: uuid.New(), Role: models.RoleStudent}
	got, ok := PrincipalFromContext(WithPrincipal(context.Background(), p))
	require.True(t, ok)
	assert.Equal(t, p, got)
}
