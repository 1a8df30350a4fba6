// Package constants provides shared constant values used throughout the application.
//
// The routes_const.go file defines the URL paths exposed by the admin query surface.
package constants

// Base Routes
const (
	RoutesPath = "/sp-admin/routes"
)

// Access-Log Admin Routes (spec §6)
const (
	AccessLogsBasePath           = "/sp-admin/access-logs"
	AccessLogsSuspiciousPath     = "/sp-admin/access-logs/suspicious"
	AccessLogsIPDetailPath       = "/sp-admin/access-logs/ip/{ipAddress}"
	AccessLogsIPBanPath          = "/sp-admin/access-logs/ip/{ipAddress}/ban"
)
