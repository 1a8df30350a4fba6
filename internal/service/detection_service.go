// Package service provides business logic implementations.
package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yasinhessnawi1/sentrylog/internal/config"
	"github.com/yasinhessnawi1/sentrylog/internal/constants"
	"github.com/yasinhessnawi1/sentrylog/internal/models"
	"github.com/yasinhessnawi1/sentrylog/internal/repository"
)

// DetectionEngine turns raw access records into a ranked list of suspicious
// IP candidates. It is a pure function over the Store's snapshot at call
// time: it holds no mutable state of its own and every call recomputes its
// result from scratch.
type DetectionEngine struct {
	store       repository.AccessLogRepository
	detailStore repository.AccessLogDetailRepository
	baseConfig  config.DetectionSettings
}

// NewDetectionEngine creates a DetectionEngine. baseConfig's zero-valued
// fields are resolved against constants.Default* immediately, so every
// subsequent call starts from a fully populated configuration.
//
// Parameters:
//   - store: The access-log repository backing aggregateByIP
//   - detailStore: The narrower per-IP detail repository
//   - baseConfig: Default detection thresholds, merged with constants defaults
//
// Returns:
//   - A configured DetectionEngine
func NewDetectionEngine(store repository.AccessLogRepository, detailStore repository.AccessLogDetailRepository, baseConfig config.DetectionSettings) *DetectionEngine {
	return &DetectionEngine{
		store:       store,
		detailStore: detailStore,
		baseConfig:  resolveDetectionDefaults(baseConfig),
	}
}

// resolveDetectionDefaults fills any zero-valued field of cfg with its
// constants.Default* counterpart.
func resolveDetectionDefaults(cfg config.DetectionSettings) config.DetectionSettings {
	if cfg.HighRequestRate == 0 {
		cfg.HighRequestRate = constants.DefaultHighRequestRate
	}
	if cfg.VeryHighRequestRate == 0 {
		cfg.VeryHighRequestRate = constants.DefaultVeryHighRequestRate
	}
	if cfg.HighErrorRate == 0 {
		cfg.HighErrorRate = constants.DefaultHighErrorRate
	}
	if cfg.VeryHighErrorRate == 0 {
		cfg.VeryHighErrorRate = constants.DefaultVeryHighErrorRate
	}
	if cfg.FailedAuthThreshold == 0 {
		cfg.FailedAuthThreshold = constants.DefaultFailedAuthThreshold
	}
	if cfg.TimeWindowMinutes == 0 {
		cfg.TimeWindowMinutes = constants.DefaultTimeWindowMinutes
	}
	if cfg.MinRiskScore == 0 {
		cfg.MinRiskScore = constants.DefaultMinRiskScore
	}
	return cfg
}

// mergeDetectionConfig layers a partial caller-supplied override field-wise
// onto base: any non-zero field in override wins, everything else falls
// through to base.
func mergeDetectionConfig(base config.DetectionSettings, override *config.DetectionSettings) config.DetectionSettings {
	if override == nil {
		return base
	}
	merged := base
	if override.HighRequestRate != 0 {
		merged.HighRequestRate = override.HighRequestRate
	}
	if override.VeryHighRequestRate != 0 {
		merged.VeryHighRequestRate = override.VeryHighRequestRate
	}
	if override.HighErrorRate != 0 {
		merged.HighErrorRate = override.HighErrorRate
	}
	if override.VeryHighErrorRate != 0 {
		merged.VeryHighErrorRate = override.VeryHighErrorRate
	}
	if override.FailedAuthThreshold != 0 {
		merged.FailedAuthThreshold = override.FailedAuthThreshold
	}
	if override.TimeWindowMinutes != 0 {
		merged.TimeWindowMinutes = override.TimeWindowMinutes
	}
	if override.MinRiskScore != 0 {
		merged.MinRiskScore = override.MinRiskScore
	}
	return merged
}

// DetectionOptions parameterizes a single detectSuspiciousIPs call. Every
// field is optional; omitted fields fall back to the engine's base
// configuration and the default window/threshold rules.
type DetectionOptions struct {
	// Config is a partial override merged field-wise onto the engine's
	// base configuration.
	Config *config.DetectionSettings

	// StartDate is the window's inclusive lower bound. Defaults to
	// EndDate minus the resolved TimeWindowMinutes.
	StartDate *time.Time

	// EndDate is the window's inclusive upper bound. Defaults to now.
	EndDate *time.Time

	// MinRiskScore filters out candidates scoring below it. Defaults to
	// the resolved configuration's MinRiskScore (constants.DefaultMinRiskScore
	// when neither the base configuration nor Config sets one).
	MinRiskScore *int
}

// DetectSuspiciousIPs aggregates access records inside the resolved window,
// scores each distinct IP, and returns survivors sorted by riskScore
// descending (lastRequestAt descending as a tie-break).
//
// Parameters:
//   - ctx: Context for cancellation and deadline propagation
//   - options: Per-call overrides; see DetectionOptions
//
// Returns:
//   - The ranked suspicious-IP candidates
//   - Error if a non-catalog-missing storage failure occurs
func (e *DetectionEngine) DetectSuspiciousIPs(ctx context.Context, options DetectionOptions) ([]models.SuspiciousIP, error) {
	cfg := mergeDetectionConfig(e.baseConfig, options.Config)

	minRiskScore := cfg.MinRiskScore
	if options.MinRiskScore != nil {
		minRiskScore = *options.MinRiskScore
	}

	endDate := time.Now().UTC()
	if options.EndDate != nil {
		endDate = options.EndDate.UTC()
	}
	startDate := endDate.Add(-time.Duration(cfg.TimeWindowMinutes) * time.Minute)
	if options.StartDate != nil {
		startDate = options.StartDate.UTC()
	}

	windowMinutes := endDate.Sub(startDate).Minutes()

	aggregates, err := e.store.AggregateByIP(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate access records for detection: %w", err)
	}

	results := make([]models.SuspiciousIP, 0, len(aggregates))
	for _, agg := range aggregates {
		details, err := e.detailStore.GetIPDetails(ctx, agg.IPAddress, startDate, endDate)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch IP detail for %s: %w", agg.IPAddress, err)
		}

		stats := computeIPStatistics(details, agg.Count)

		requestsPerMinute := 0.0
		if windowMinutes > 0 {
			requestsPerMinute = float64(agg.Count) / windowMinutes
		}

		score, factors := scoreIP(cfg, stats)
		if score < minRiskScore {
			continue
		}

		results = append(results, models.SuspiciousIP{
			IPAddress:         agg.IPAddress,
			RiskScore:         score,
			RequestCount:      agg.Count,
			RequestsPerMinute: requestsPerMinute,
			ErrorRate:         stats.errorRate,
			FailedAuthCount:   stats.failedAuthCount,
			SuspiciousFactors: factors,
			LastRequestAt:     agg.MaxCreatedAt,
			Recommendation:    recommend(score, factors),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].RiskScore != results[j].RiskScore {
			return results[i].RiskScore > results[j].RiskScore
		}
		return results[i].LastRequestAt.After(results[j].LastRequestAt)
	})

	return results, nil
}

// ipStatistics holds the per-IP aggregates the scoring algorithm consumes.
type ipStatistics struct {
	totalRequests   int
	errorRate       float64
	failedAuthCount int
	uniquePaths     int
	count404        int
}

// computeIPStatistics derives the statistics spec §4.D step 2.c lists from
// the per-IP detail rows. totalRequests uses the aggregate's count rather
// than len(details): the two queries run against a single logical snapshot
// but are not guaranteed to observe identical rows (spec §5), so the
// aggregate count is the authoritative total.
func computeIPStatistics(details []repository.IPDetail, aggregateCount int) ipStatistics {
	stats := ipStatistics{totalRequests: aggregateCount}

	var errorCount int
	paths := make(map[string]struct{}, len(details))
	for _, d := range details {
		if d.StatusCode >= 400 {
			errorCount++
		}
		if d.StatusCode == 401 || d.StatusCode == 403 {
			stats.failedAuthCount++
		}
		if d.StatusCode == 404 {
			stats.count404++
		}
		paths[d.Path] = struct{}{}
	}
	stats.uniquePaths = len(paths)

	if stats.totalRequests > 0 {
		stats.errorRate = (float64(errorCount) / float64(stats.totalRequests)) * 100
	}

	return stats
}

// scoreIP computes the deterministic risk score and the ordered set of
// suspicious factors for one IP's statistics, per spec §4.D's scoring
// table. rpm intentionally divides by cfg.TimeWindowMinutes rather than the
// caller's actual window width — a documented asymmetry with the reported
// RequestsPerMinute field (see spec §9).
func scoreIP(cfg config.DetectionSettings, stats ipStatistics) (int, []string) {
	rpm := 0.0
	if cfg.TimeWindowMinutes > 0 {
		rpm = float64(stats.totalRequests) / float64(cfg.TimeWindowMinutes)
	}

	var points float64
	var factors []string

	switch {
	case rpm >= cfg.VeryHighRequestRate:
		points += 40
		factors = append(factors, models.FactorVeryHighRequestRate)
	case rpm >= cfg.HighRequestRate:
		points += 25
		factors = append(factors, models.FactorHighRequestRate)
	case rpm >= 0.5*cfg.HighRequestRate:
		points += 10
	}

	switch {
	case stats.errorRate >= cfg.VeryHighErrorRate:
		points += 30
		factors = append(factors, models.FactorVeryHighErrorRate)
	case stats.errorRate >= cfg.HighErrorRate:
		points += 20
		factors = append(factors, models.FactorHighErrorRate)
	case stats.errorRate >= 0.5*cfg.HighErrorRate:
		points += 10
	}

	switch {
	case stats.failedAuthCount >= 2*cfg.FailedAuthThreshold:
		points += 20
		factors = append(factors, models.FactorMultipleFailedAuth)
	case stats.failedAuthCount >= cfg.FailedAuthThreshold:
		points += 15
		factors = append(factors, models.FactorMultipleFailedAuth)
	case stats.failedAuthCount > 0:
		points += 5
	}

	scanning := stats.uniquePaths > 20
	probing := float64(stats.count404) > 0.5*float64(stats.totalRequests)
	if scanning || probing {
		points += 10
		if scanning {
			factors = append(factors, models.FactorScanningBehavior)
		}
		if probing {
			factors = append(factors, models.FactorHigh404Rate)
		}
	}

	score := int(math.Round(math.Min(100, points)))
	return score, factors
}

// recommend derives the ban|monitor|safe label from the final score and
// the factor set, applying the factor shortcut that can recommend ban even
// below score 70.
func recommend(score int, factors []string) string {
	for _, f := range factors {
		if f == models.FactorVeryHighRequestRate || f == models.FactorMultipleFailedAuth {
			return models.RecommendationBan
		}
	}
	if score >= 70 {
		return models.RecommendationBan
	}
	if score >= 50 {
		return models.RecommendationMonitor
	}
	return models.RecommendationSafe
}
