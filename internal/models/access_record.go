// Package models provides data structures representing entities in the application.
package models

import (
	"time"

	"github.com/yasinhessnawi1/sentrylog/internal/constants"
	"github.com/yasinhessnawi1/sentrylog/internal/utils"
)

// AccessRecord represents a single captured HTTP request/response, the
// immutable unit ingested by the pipeline and persisted to access_logs.
// Once written, a record is never mutated — detection and querying only
// ever read it back.
type AccessRecord struct {
	// ID is the unique identifier assigned by the store on insert.
	ID int64 `json:"id" db:"id"`

	// IPAddress is the client IP address the request originated from.
	IPAddress string `json:"ip_address" db:"ip_address"`

	// Method is the HTTP method of the request.
	Method string `json:"method" db:"method"`

	// URL is the full request URL, truncated to MaxURLLength.
	URL string `json:"url" db:"url"`

	// Path is the request path, truncated to MaxPathLength.
	Path string `json:"path" db:"path"`

	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"status_code" db:"status_code"`

	// ResponseTime is the time taken to process the request.
	ResponseTime time.Duration `json:"response_time" db:"response_time"`

	// UserAgent is the client's User-Agent header, truncated to MaxUserAgentLength.
	UserAgent string `json:"user_agent" db:"user_agent"`

	// Referer is the client's Referer header, truncated to MaxRefererLength.
	Referer string `json:"referer" db:"referer"`

	// TenantID identifies the tenant the request was made on behalf of, if any.
	TenantID string `json:"tenant_id,omitempty" db:"tenant_id"`

	// UserID identifies the authenticated user making the request, if any.
	UserID string `json:"user_id,omitempty" db:"user_id"`

	// RequestBody is an optional request body snippet supplied by the caller
	// that builds the record. AccessLogCapture never fills it, and
	// NewAccessRecord stores it without a length cap.
	RequestBody string `json:"request_body,omitempty" db:"request_body"`

	// Error holds a handler-reported error message, truncated to MaxErrorLength.
	Error string `json:"error,omitempty" db:"error"`

	// CreatedAt is when the record was captured.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewAccessRecord builds an AccessRecord from raw capture fields, applying
// the field-length caps defined in constants so that no record written by
// the ingestion pipeline can exceed them regardless of what a client sent.
//
// Parameters:
//   - ipAddress: The client IP address
//   - method: The HTTP method
//   - rawURL: The full request URL
//   - path: The request path
//   - statusCode: The HTTP response status code
//   - responseTime: The request processing duration
//   - userAgent: The client's User-Agent header
//   - referer: The client's Referer header
//   - tenantID: The tenant identifier, if any
//   - userID: The authenticated user identifier, if any
//   - requestBody: A captured request body snippet, if any
//   - errMsg: A handler-reported error message, if any
//
// Returns:
//   - A new AccessRecord with every text field truncated to its cap
func NewAccessRecord(
	ipAddress, method, rawURL, path string,
	statusCode int,
	responseTime time.Duration,
	userAgent, referer, tenantID, userID, requestBody, errMsg string,
) *AccessRecord {
	return &AccessRecord{
		IPAddress:    ipAddress,
		Method:       method,
		URL:          utils.TruncateString(rawURL, constants.MaxURLLength),
		Path:         utils.TruncateString(path, constants.MaxPathLength),
		StatusCode:   statusCode,
		ResponseTime: responseTime,
		UserAgent:    utils.TruncateString(userAgent, constants.MaxUserAgentLength),
		Referer:      utils.TruncateString(referer, constants.MaxRefererLength),
		TenantID:     tenantID,
		UserID:       userID,
		RequestBody:  requestBody,
		Error:        utils.TruncateString(errMsg, constants.MaxErrorLength),
		CreatedAt:    time.Now(),
	}
}

// IsError reports whether the captured response represents a client or
// server error (status code 400 or above).
//
// Returns:
//   - true if StatusCode is 400 or greater
func (a *AccessRecord) IsError() bool {
	return a.StatusCode >= 400
}

// IsAuthFailure reports whether the captured response represents a failed
// authentication or authorization attempt (401 or 403).
//
// Returns:
//   - true if StatusCode is 401 or 403
func (a *AccessRecord) IsAuthFailure() bool {
	return a.StatusCode == 401 || a.StatusCode == 403
}
