// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/danielhkuo/campus-vote/apperr"
	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/logger"
)

const principalKey = "principal"

// Auth requires a valid bearer token and stores the caller's principal on
// both the gin context and the request context.
func Auth(tokens *auth.TokenIssuer, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			WriteError(c, log, apperr.ErrUnauthenticated)
			return
		}
		p, err := tokens.Parse(raw)
		if err != nil {
			WriteError(c, log, err)
			return
		}

		c.Set(principalKey, p)
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

// RequireCapability rejects callers whose role lacks need. Must run after Auth.
func RequireCapability(need auth.Capability, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Require(GetPrincipal(c), need); err != nil {
			WriteError(c, log, err)
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller, or the zero principal.
func GetPrincipal(c *gin.Context) auth.Principal {
	p, _ := principal(c)
	return p
}

func principal(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
