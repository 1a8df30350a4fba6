// Package constants provides shared constant values used throughout the application.
//
// The database_const.go file defines constants related to database structures,
// including table names, column names, and schema references. These constants
// ensure consistent and correct database access patterns throughout the application,
// reducing the risk of SQL errors and simplifying database schema changes.
package constants

// Table Names define the names of database tables used in the application.
// Using these constants instead of string literals ensures consistency
// and makes database schema changes easier to implement.
const (
	// TableAccessLogs is the name of the table storing per-request access records.
	TableAccessLogs = "access_logs"

	// TableIPBans is the name of the table storing blacklist (ban) entries.
	TableIPBans = "ip_bans"

	// TableIPWhitelist is the name of the table storing allow-list entries.
	TableIPWhitelist = "ip_whitelist"
)

// Common Column Names define frequently used database column names.
// These constants ensure consistent column name usage in SQL queries.
const (
	// ColumnID is the generic primary key column name.
	ColumnID = "id"

	// ColumnIPAddress is the column name for an IP address.
	ColumnIPAddress = "ip_address"

	// ColumnMethod is the column name for the HTTP method of a request.
	ColumnMethod = "method"

	// ColumnURL is the column name for the full request URL.
	ColumnURL = "url"

	// ColumnPath is the column name for the request path.
	ColumnPath = "path"

	// ColumnStatusCode is the column name for the HTTP response status code.
	ColumnStatusCode = "status_code"

	// ColumnResponseTime is the column name for the response time in milliseconds.
	ColumnResponseTime = "response_time"

	// ColumnUserAgent is the column name for the request's User-Agent header value.
	ColumnUserAgent = "user_agent"

	// ColumnReferer is the column name for the request's Referer header value.
	ColumnReferer = "referer"

	// ColumnTenantID is the column name for the tenant identifier.
	ColumnTenantID = "tenant_id"

	// ColumnUserID is the column name for the user identifier.
	ColumnUserID = "user_id"

	// ColumnRequestBody is the column name for the captured request body blob.
	ColumnRequestBody = "request_body"

	// ColumnError is the column name for a short diagnostic error string.
	ColumnError = "error"

	// ColumnCreatedAt is the column name for creation timestamps.
	ColumnCreatedAt = "created_at"

	// ColumnReason is the column name for a ban/whitelist entry's reason.
	ColumnReason = "reason"

	// ColumnBannedBy is the column name for the admin identifier that issued a ban.
	ColumnBannedBy = "banned_by"

	// ColumnCreatedBy is the column name for the admin identifier that created a whitelist entry.
	ColumnCreatedBy = "created_by"

	// ColumnExpiresAt is the column name for expiration timestamps.
	ColumnExpiresAt = "expires_at"
)

// Database Schema Names define the names of database schemas.
// These constants are used when querying database metadata.
const (
	// SchemaInformation is the name of the PostgreSQL information schema.
	SchemaInformation = "information_schema"
)

// PostgreSQL SSL connection string parameters
const (
	PostgresSSLParams  = "sslmode=verify-ca sslrootcert=internal/database/certs/server-ca.pem sslcert=internal/database/certs/client-cert.pem sslkey=internal/database/certs/client-key.pem connect_timeout=15"
	PostgresSSLDisable = "sslmode=disable connect_timeout=15"
)
