// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Identity: Public identifier namespaces and generator policy.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "institutions-api"
	AppVersion = "0.3.0"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// RetryAfterSeconds is advertised on retryable conflicts.
	RetryAfterSeconds = 1
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Identity

const (
	// PublicIDPrefix namespaces every institution's public identifier.
	PublicIDPrefix = "https://osg-htc.org/iid/"

	// RORIDPrefix is the namespace every ROR identifier must start with.
	RORIDPrefix = "https://ror.org/"

	// DefaultPublicIDLength is the number of random characters after the prefix.
	DefaultPublicIDLength = 12

	// MinPublicIDLength is the smallest suffix length the generator accepts.
	MinPublicIDLength = 9

	// DefaultPublicIDMaxAttempts bounds the collision retry loop.
	DefaultPublicIDMaxAttempts = 1000

	// DefaultAuthorHeader carries the authenticated subject set by the OIDC proxy.
	DefaultAuthorHeader = "oidc_claim_osgid"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderRetryAfter    = "Retry-After"
)

// # JSON Field Identifiers

const (
	FieldData      = "data"
	FieldError     = "error"
	FieldCode      = "code"
	FieldDetails   = "details"
	FieldStatus    = "status"
	FieldChecks    = "checks"
	FieldRetryable = "retryable"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisKeyValidInstitutions prefixes the cached list; the generation is appended.
	RedisKeyValidInstitutions = "institutions:valid:v1"

	// RedisKeyValidInstitutionsGeneration is bumped after every committed write.
	RedisKeyValidInstitutionsGeneration = "institutions:valid:v1:generation"
)
