// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/danielhkuo/campus-vote/apperr"
)

// pathID parses the named path parameter as a UUID.
func pathID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.Invalid(name + " must be a valid id")
	}
	return id, nil
}
