// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package tracing sets up the OpenTelemetry tracer provider.
//
// Tracing is off unless OTEL_ENABLED is truthy. The HTTP router wraps every
// request in an otelgin span, and the voting service opens child spans for
// casting and tallying.
package tracing
