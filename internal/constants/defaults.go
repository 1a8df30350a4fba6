// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values and limits used throughout the application.
// These constants provide sensible defaults for configuration settings, establish
// boundaries for resource usage, and define security parameters. Changes to these
// values may significantly impact application behavior, performance, and security.
package constants

// Default Pagination Values define the parameters used for paginated responses.
// These constants ensure consistent and reasonable pagination behavior.
const (
	// DefaultPage is the default page number for paginated results when not specified.
	DefaultPage = 1

	// DefaultPageSize is the default number of items per page when not specified.
	DefaultPageSize = 20

	// DefaultAccessLogPageSize is the default page size for the access-log
	// listing endpoint specifically (spec §6), distinct from the generic
	// DefaultPageSize used elsewhere.
	DefaultAccessLogPageSize = 50

	// MaxPageSize is the maximum allowable page size to prevent excessive resource usage.
	MaxPageSize = 100

	// MinPageSize is the minimum allowable page size.
	MinPageSize = 1
)

// Default Configuration Values define fallback settings when not specified in configuration.
// These constants provide sensible defaults for core application settings.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultDBMaxConnections is the default maximum number of database connections.
	DefaultDBMaxConnections = 20

	// DefaultDBMinConnections is the default minimum number of database connections.
	DefaultDBMinConnections = 5

	// DefaultLogLevel is the default logging verbosity level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"
)

// Environment Types define the recognized application running environments.
// These constants are used to adjust behavior based on the deployment environment.
const (
	// EnvDevelopment identifies a development environment with debugging features enabled.
	EnvDevelopment = "development"

	// EnvTesting identifies a testing environment for automated tests.
	EnvTesting = "testing"

	// EnvProduction identifies a production environment with optimized settings.
	EnvProduction = "production"
)

// File Size Limits define the maximum allowed sizes for various uploads.
// These constants help prevent denial of service attacks via excessive resource consumption.
const (
	// MaxRequestBodySize is the maximum size in bytes for HTTP request bodies.
	MaxRequestBodySize = 1048576 // 1MB in bytes
)

// Default GDPR Retention Periods define how long different categories of logs are kept.
// These constants ensure compliance with data minimization principles.
const (
	// StandardLogRetentionDays is the number of days to retain standard logs.
	StandardLogRetentionDays = 90

	// PersonalDataRetentionDays is the number of days to retain logs with personal data.
	PersonalDataRetentionDays = 30

	// SensitiveDataRetentionDays is the number of days to retain logs with sensitive data.
	SensitiveDataRetentionDays = 15
)

// Auth Constants define values related to admin token handling.
const (
	// DefaultJWTIssuer is the issuer claim value for JWT tokens.
	DefaultJWTIssuer = "sentrylog-api"

	// BearerTokenPrefix is the prefix for Authorization header bearer tokens.
	BearerTokenPrefix = "Bearer "
)

// Access Record Field Length Caps define the truncation limits from spec §3.
// Enforced at persistence so no AccessRecord ever exceeds them.
const (
	// MaxURLLength is the maximum number of bytes retained for a request URL.
	MaxURLLength = 2000

	// MaxPathLength is the maximum number of bytes retained for a request path.
	MaxPathLength = 500

	// MaxUserAgentLength is the maximum number of bytes retained for a User-Agent value.
	MaxUserAgentLength = 500

	// MaxRefererLength is the maximum number of bytes retained for a Referer value.
	MaxRefererLength = 500

	// MaxErrorLength is the maximum number of bytes retained for a diagnostic error string.
	MaxErrorLength = 1000
)

// Detection Engine Defaults define the default thresholds of spec §4.D's
// Configuration, merged field-wise with any caller-supplied override.
const (
	// DefaultHighRequestRate is the req/min threshold for the "high" rate band.
	DefaultHighRequestRate = 60.0

	// DefaultVeryHighRequestRate is the req/min threshold for the "very high" rate band.
	DefaultVeryHighRequestRate = 120.0

	// DefaultHighErrorRate is the percent threshold for the "high" error-rate band.
	DefaultHighErrorRate = 30.0

	// DefaultVeryHighErrorRate is the percent threshold for the "very high" error-rate band.
	DefaultVeryHighErrorRate = 50.0

	// DefaultFailedAuthThreshold is the count of 401/403 responses for the "elevated" auth band.
	DefaultFailedAuthThreshold = 5

	// DefaultTimeWindowMinutes is the default analysis window length in minutes.
	DefaultTimeWindowMinutes = 60

	// DefaultMinRiskScore is the default minimum risk score returned by detectSuspiciousIPs.
	DefaultMinRiskScore = 30
)

// Ingestion Pipeline Defaults define the bounded worker pool's shape (spec §4.B/§5/§9).
const (
	// DefaultIngestionQueueDepth is the default capacity of the ingestion channel.
	DefaultIngestionQueueDepth = 1024

	// DefaultIngestionWorkers is the default number of persistence worker goroutines.
	DefaultIngestionWorkers = 4
)
