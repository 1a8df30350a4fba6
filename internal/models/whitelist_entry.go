// Package models provides data structures representing entities in the application.
package models

import (
	"net"
	"time"
)

// WhitelistEntry represents an IP address or CIDR range on the allow list.
// The detection engine does not consult it, and Authority.Ban does not
// refuse a whitelisted address. A whitelist match takes precedence over a
// ban where a caller composes the two checks — see Authority.IsWhitelisted.
type WhitelistEntry struct {
	// ID is the unique identifier for the whitelist record.
	ID int64 `json:"id" db:"whitelist_id"`

	// IPAddress is the whitelisted IP address or CIDR range.
	IPAddress string `json:"ip_address" db:"ip_address"`

	// Reason provides context for why the IP was whitelisted.
	Reason string `json:"reason" db:"reason"`

	// ExpiresAt defines when the whitelist entry expires (nil for permanent).
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`

	// CreatedAt is when the whitelist entry was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// CreatedBy is the admin user or system that created the entry.
	CreatedBy string `json:"created_by" db:"created_by"`
}

// NewWhitelistEntry creates a new whitelist record.
//
// Parameters:
//   - ipAddress: The IP address or CIDR range to whitelist
//   - reason: The reason for the whitelist entry
//   - expiresAt: The expiration time for the entry (nil for permanent)
//   - createdBy: Who or what created the entry
//
// Returns:
//   - A new WhitelistEntry record
func NewWhitelistEntry(ipAddress, reason string, expiresAt *time.Time, createdBy string) *WhitelistEntry {
	return &WhitelistEntry{
		IPAddress: ipAddress,
		Reason:    reason,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
		CreatedBy: createdBy,
	}
}

// IsExpired checks if the whitelist entry has expired.
//
// Returns:
//   - true if the entry has expired, false otherwise
func (w *WhitelistEntry) IsExpired() bool {
	return w.ExpiresAt != nil && time.Now().After(*w.ExpiresAt)
}

// MatchesIP checks if the provided IP matches this whitelist record.
// This supports both direct IP matches and CIDR range matches.
//
// Parameters:
//   - ip: The IP address to check
//
// Returns:
//   - true if the IP matches the entry, false otherwise
func (w *WhitelistEntry) MatchesIP(ip string) bool {
	if w.IPAddress == ip {
		return true
	}

	_, ipNet, err := net.ParseCIDR(w.IPAddress)
	if err != nil {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	return ipNet.Contains(parsedIP)
}
