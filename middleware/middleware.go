// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/danielhkuo/campus-vote/apperr"
	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/logger"
	"github.com/danielhkuo/campus-vote/models"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger logs one line per request at a level chosen by status class.
// It also assigns a request ID when the client did not send one.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			if id, err := auth.GenerateID(8); err == nil {
				requestID = id
			}
		}
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestID,
		}
		if p, ok := principal(c); ok {
			fields = append(fields, "user_id", p.UserID)
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

// CORS allows the configured origins with credentials. An empty list allows
// any origin without credentials.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// JSONResponse writes a JSON response
func JSONResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// ErrorResponse writes a JSON error response and stops the handler chain.
func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Code:    code,
		Message: message,
	})
}

// WriteError maps err to a status and writes it. Errors outside the apperr
// taxonomy are logged and reported as a generic 500.
func WriteError(c *gin.Context, log *logger.Logger, err error) {
	e, ok := apperr.As(err)
	if !ok {
		log.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		ErrorResponse(c, http.StatusInternalServerError, "internal", "Internal server error")
		return
	}
	ErrorResponse(c, StatusFor(e), e.Code, e.Message)
}

// StatusFor maps a domain error to its HTTP status.
func StatusFor(e *apperr.Error) int {
	if e.Is(apperr.ErrResultsNotReady) {
		return http.StatusForbidden
	}
	switch e.Kind {
	case apperr.KindInvalid, apperr.KindPrecondition:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ParseJSONBody binds the request body into v.
func ParseJSONBody(c *gin.Context, v interface{}) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return apperr.Invalid("Invalid JSON")
	}
	return nil
}
