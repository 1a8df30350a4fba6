package models

import "time"

// SuspiciousIP is the Detection Engine's derived, transient assessment of a
// single IP address's request history over an analysis window. Unlike
// AccessRecord and BanEntry, it is never persisted: it is recomputed on
// every call to DetectionEngine.DetectSuspiciousIPs from the current Store snapshot.
type SuspiciousIP struct {
	// IPAddress is the address this assessment covers.
	IPAddress string `json:"ip_address"`

	// RiskScore is the deterministic score in [0,100] produced by the
	// scoring algorithm.
	RiskScore int `json:"risk_score"`

	// RequestCount is the total number of records observed for this IP
	// in the window.
	RequestCount int `json:"request_count"`

	// RequestsPerMinute is requestCount divided by the actual window
	// width in minutes (distinct from the divisor used internally by
	// the scoring algorithm itself).
	RequestsPerMinute float64 `json:"requests_per_minute"`

	// ErrorRate is the percentage (0-100) of records with status >= 400.
	ErrorRate float64 `json:"error_rate"`

	// FailedAuthCount is the number of records with status 401 or 403.
	FailedAuthCount int `json:"failed_auth_count"`

	// SuspiciousFactors is the ordered set of factor labels that
	// contributed to RiskScore, drawn from the fixed vocabulary.
	SuspiciousFactors []string `json:"suspicious_factors"`

	// LastRequestAt is the most recent CreatedAt observed for this IP
	// in the window.
	LastRequestAt time.Time `json:"last_request_at"`

	// Recommendation is the engine's label: "ban", "monitor", or "safe".
	Recommendation string `json:"recommendation"`
}

// Recommendation labels.
const (
	RecommendationBan     = "ban"
	RecommendationMonitor = "monitor"
	RecommendationSafe    = "safe"
)

// Fixed suspicious-factor vocabulary, emitted in this order when their
// corresponding threshold band is met.
const (
	FactorVeryHighRequestRate = "Very high request rate"
	FactorHighRequestRate     = "High request rate"
	FactorVeryHighErrorRate   = "Very high error rate"
	FactorHighErrorRate       = "High error rate"
	FactorMultipleFailedAuth  = "Multiple failed auth attempts"
	FactorScanningBehavior    = "Scanning behavior (many paths)"
	FactorHigh404Rate         = "High 404 rate (probing)"
)
