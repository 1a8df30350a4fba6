// Package constants provides shared constant values used throughout the application.
//
// The general_const.go file defines general-purpose constants related to routing
// and request parameters. These constants ensure consistent API patterns and URL
// structure throughout the application, making the API more predictable and easier
// to maintain.
package constants

// Base Routes define top-level path prefixes used for request classification
// in logging and routing, independent of any single route group.
const (
	// HealthPath is the liveness/readiness check endpoint.
	HealthPath = "/health"

	// APIBasePath is the prefix shared by all admin query-surface routes.
	APIBasePath = "/sp-admin"
)

// URL Parameters define path parameter names used in route definitions.
// These constants are used when defining routes with path parameters and
// when extracting those parameters from requests.
const (
	// ParamIPAddress is the URL parameter for an IP address path segment.
	ParamIPAddress = "ipAddress"
)

// Query Parameters define the query string parameters accepted by the
// admin query surface (spec §6).
const (
	// QueryParamPage is the query parameter for pagination page number.
	QueryParamPage = "page"

	// QueryParamLimit is the query parameter for pagination page size.
	QueryParamLimit = "limit"

	// QueryParamIPAddress filters access log records by exact IP address.
	QueryParamIPAddress = "ipAddress"

	// QueryParamTenantID filters access log records by exact tenant identifier.
	QueryParamTenantID = "tenantId"

	// QueryParamUserID filters access log records by exact user identifier.
	QueryParamUserID = "userId"

	// QueryParamMethod filters access log records by exact HTTP method.
	QueryParamMethod = "method"

	// QueryParamPath filters access log records by path substring.
	QueryParamPath = "path"

	// QueryParamStatusCode filters access log records by exact status code.
	QueryParamStatusCode = "statusCode"

	// QueryParamStartDate bounds a time-window query on its lower (inclusive) end.
	QueryParamStartDate = "startDate"

	// QueryParamEndDate bounds a time-window query on its upper (inclusive) end.
	QueryParamEndDate = "endDate"

	// QueryParamMinRiskScore is the minimum risk score accepted by the suspicious-IP listing.
	QueryParamMinRiskScore = "minRiskScore"
)
