// Package service provides business logic implementations.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yasinhessnawi1/sentrylog/internal/constants"
	"github.com/yasinhessnawi1/sentrylog/internal/models"
	"github.com/yasinhessnawi1/sentrylog/internal/repository"
)

// IPStats is the statistics bundle getIPStats computes for a single IP over
// a window.
type IPStats struct {
	IPAddress       string         `json:"ip_address"`
	TotalRequests   int            `json:"total_requests"`
	SuccessCount    int            `json:"success_count"`
	ErrorCount      int            `json:"error_count"`
	AvgResponseTime int            `json:"avg_response_time_ms"`
	Methods         map[string]int `json:"methods"`
	StatusCodes     map[int]int    `json:"status_codes"`
	Paths           []PathCount    `json:"paths"`
	LastRequestAt   time.Time      `json:"last_request_at"`
}

// PathCount is one entry of an IPStats top-paths listing.
type PathCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// IPDetailView composes IPStats with the Authority's allow/deny verdicts
// for a single IP, the response shape behind getIPDetails.
type IPDetailView struct {
	IPStats
	IsBlacklisted bool `json:"is_blacklisted"`
	IsWhitelisted bool `json:"is_whitelisted"`
}

// BanFromSuspiciousOptions carries the optional overrides banFromSuspicious
// accepts; an absent Reason triggers the synthesized-reason path.
type BanFromSuspiciousOptions struct {
	Reason    string
	ExpiresAt *time.Time
}

// AdminQueryService composes the Store, Detection Engine, and Authority
// into the read/administrative surface the HTTP handlers expose.
type AdminQueryService struct {
	store     repository.AccessLogRepository
	detection *DetectionEngine
	authority *Authority
}

// NewAdminQueryService creates an AdminQueryService.
//
// Parameters:
//   - store: The access-log repository backing listLogs/getIPStats
//   - detection: The detection engine backing the suspicious-IP listing
//   - authority: The ban/whitelist authority backing ban actions and lookups
//
// Returns:
//   - A configured AdminQueryService
func NewAdminQueryService(store repository.AccessLogRepository, detection *DetectionEngine, authority *Authority) *AdminQueryService {
	return &AdminQueryService{
		store:     store,
		detection: detection,
		authority: authority,
	}
}

// ListLogs delegates to the Store's filtered, paginated query.
//
// Parameters:
//   - ctx: Context for cancellation
//   - filter: The AND-combined filter to apply
//   - pagination: The page/limit to apply
//
// Returns:
//   - The matching page of records and the total count across all pages
//   - Error if the operation fails
func (s *AdminQueryService) ListLogs(ctx context.Context, filter repository.AccessLogFilter, pagination repository.Pagination) ([]*models.AccessRecord, int, error) {
	return s.store.Query(ctx, filter, pagination)
}

// ListSuspiciousIPs runs the Detection Engine over the given options.
//
// Parameters:
//   - ctx: Context for cancellation
//   - options: Per-call detection overrides
//
// Returns:
//   - The ranked suspicious-IP candidates
//   - Error if a non-catalog-missing storage failure occurs
func (s *AdminQueryService) ListSuspiciousIPs(ctx context.Context, options DetectionOptions) ([]models.SuspiciousIP, error) {
	return s.detection.DetectSuspiciousIPs(ctx, options)
}

// GetIPStats computes request statistics for a single IP over [start,end].
// If start and end are both zero, the window defaults to the last 24 hours.
//
// Parameters:
//   - ctx: Context for cancellation
//   - ip: The IP address to summarize
//   - start: Window lower bound; zero value triggers the 24h default
//   - end: Window upper bound; zero value defaults to now
//
// Returns:
//   - The computed statistics
//   - Error if the underlying query fails
func (s *AdminQueryService) GetIPStats(ctx context.Context, ip string, start, end time.Time) (*IPStats, error) {
	if end.IsZero() {
		end = time.Now().UTC()
	}
	if start.IsZero() {
		start = end.Add(-24 * time.Hour)
	}

	filter := repository.AccessLogFilter{IPAddress: ip, StartDate: start, EndDate: end}

	_, total, err := s.store.Query(ctx, filter, repository.Pagination{Page: 1, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to query records for %s: %w", ip, err)
	}

	stats := &IPStats{
		IPAddress:   ip,
		Methods:     make(map[string]int),
		StatusCodes: make(map[int]int),
	}

	if total == 0 {
		return stats, nil
	}

	records, _, err := s.store.Query(ctx, filter, repository.Pagination{Page: 1, Limit: total})
	if err != nil {
		return nil, fmt.Errorf("failed to query records for %s: %w", ip, err)
	}

	type pathFirstSeen struct {
		count int
		order int
	}
	pathOrder := make(map[string]*pathFirstSeen)

	var totalResponseMillis int64
	var responseSamples int

	for i, r := range records {
		stats.TotalRequests++
		stats.Methods[r.Method]++
		stats.StatusCodes[r.StatusCode]++
		if r.StatusCode >= 200 && r.StatusCode < 400 {
			stats.SuccessCount++
		} else if r.StatusCode >= 400 {
			stats.ErrorCount++
		}

		totalResponseMillis += r.ResponseTime.Milliseconds()
		responseSamples++
		if r.CreatedAt.After(stats.LastRequestAt) {
			stats.LastRequestAt = r.CreatedAt
		}
		if entry, exists := pathOrder[r.Path]; exists {
			entry.count++
		} else {
			pathOrder[r.Path] = &pathFirstSeen{count: 1, order: i}
		}
	}

	if responseSamples > 0 {
		stats.AvgResponseTime = int(totalResponseMillis / int64(responseSamples))
	}

	paths := make([]PathCount, 0, len(pathOrder))
	for path, entry := range pathOrder {
		paths = append(paths, PathCount{Path: path, Count: entry.count})
	}
	sort.Slice(paths, func(i, j int) bool {
		if paths[i].Count != paths[j].Count {
			return paths[i].Count > paths[j].Count
		}
		return pathOrder[paths[i].Path].order < pathOrder[paths[j].Path].order
	})
	if len(paths) > 10 {
		paths = paths[:10]
	}
	stats.Paths = paths

	return stats, nil
}

// GetIPDetails composes GetIPStats with the Authority's blacklist/whitelist
// verdicts for ip.
//
// Parameters:
//   - ctx: Context for cancellation
//   - ip: The IP address to inspect
//   - start: Window lower bound; zero value triggers the 24h default
//   - end: Window upper bound; zero value defaults to now
//
// Returns:
//   - The composed detail view
//   - Error if the underlying query fails
func (s *AdminQueryService) GetIPDetails(ctx context.Context, ip string, start, end time.Time) (*IPDetailView, error) {
	stats, err := s.GetIPStats(ctx, ip, start, end)
	if err != nil {
		return nil, err
	}

	return &IPDetailView{
		IPStats:       *stats,
		IsBlacklisted: s.authority.IsBlacklisted(ip),
		IsWhitelisted: s.authority.IsWhitelisted(ip),
	}, nil
}

// BanFromSuspicious bans ip, synthesizing a default reason from the
// Detection Engine's current factor set when options.Reason is absent.
//
// Parameters:
//   - ctx: Context for cancellation
//   - ip: The IP address to ban
//   - options: Optional reason/expiry overrides
//   - actorID: Identifier of the admin performing the ban
//
// Returns:
//   - The created or refreshed ban entry
//   - Error if the operation fails
func (s *AdminQueryService) BanFromSuspicious(ctx context.Context, ip string, options BanFromSuspiciousOptions, actorID string) (*models.BanEntry, error) {
	reason := options.Reason
	if reason == "" {
		reason = s.synthesizeBanReason(ctx, ip)
	}

	return s.authority.Ban(ctx, ip, reason, options.ExpiresAt, actorID)
}

// synthesizeBanReason finds ip's current suspicious-factor set and formats
// the default ban reason, falling back to a generic message when ip is not
// currently in the suspicious-IP listing.
func (s *AdminQueryService) synthesizeBanReason(ctx context.Context, ip string) string {
	minScore := 30
	candidates, err := s.detection.DetectSuspiciousIPs(ctx, DetectionOptions{MinRiskScore: &minScore})
	if err != nil {
		return constants.MsgBannedFromSuspiciousList
	}

	for _, c := range candidates {
		if c.IPAddress == ip {
			return fmt.Sprintf("Suspicious activity detected: %s", strings.Join(c.SuspiciousFactors, ", "))
		}
	}

	return constants.MsgBannedFromSuspiciousList
}
