package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/sentrylog/internal/config"
	"github.com/yasinhessnawi1/sentrylog/internal/models"
	"github.com/yasinhessnawi1/sentrylog/internal/repository"
)

// fakeAggregateStore is an in-memory AccessLogRepository stub that only
// implements the subset AggregateByIP exercises; the other methods panic if
// called so an accidental dependency on them fails loudly.
type fakeAggregateStore struct {
	aggregates []repository.IPAggregate
	err        error
}

func (f *fakeAggregateStore) Insert(ctx context.Context, record *models.AccessRecord) error {
	panic("not used by detection tests")
}

func (f *fakeAggregateStore) Query(ctx context.Context, filter repository.AccessLogFilter, pagination repository.Pagination) ([]*models.AccessRecord, int, error) {
	panic("not used by detection tests")
}

func (f *fakeAggregateStore) AggregateByIP(ctx context.Context, start, end time.Time) ([]repository.IPAggregate, error) {
	return f.aggregates, f.err
}

// fakeDetailStore maps an IP address to the detail rows DetectSuspiciousIPs
// should see for it.
type fakeDetailStore struct {
	details map[string][]repository.IPDetail
	errFor  map[string]error
}

func (f *fakeDetailStore) GetIPDetails(ctx context.Context, ip string, start, end time.Time) ([]repository.IPDetail, error) {
	if err, ok := f.errFor[ip]; ok {
		return nil, err
	}
	return f.details[ip], nil
}

func buildStatusDetails(statuses []int, paths []string) []repository.IPDetail {
	details := make([]repository.IPDetail, len(statuses))
	for i, status := range statuses {
		path := "/"
		if len(paths) > 0 {
			path = paths[i%len(paths)]
		}
		details[i] = repository.IPDetail{StatusCode: status, Method: "GET", Path: path}
	}
	return details
}

func repeat(status int, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = status
	}
	return out
}

func newTestEngine(store repository.AccessLogRepository, detail repository.AccessLogDetailRepository) *DetectionEngine {
	return NewDetectionEngine(store, detail, config.DetectionSettings{})
}

// Scenario 1 from spec §8: a rate burst scores 40 via the rate band alone
// and is recommended for ban through the factor shortcut.
func TestDetectSuspiciousIPs_RateBurst(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeAggregateStore{aggregates: []repository.IPAggregate{
		{IPAddress: "10.0.0.1", Count: 8000, MaxCreatedAt: now},
	}}
	detail := &fakeDetailStore{details: map[string][]repository.IPDetail{
		"10.0.0.1": buildStatusDetails(repeat(200, 8000), nil),
	}}

	engine := newTestEngine(store, detail)
	start := now.Add(-60 * time.Minute)
	results, err := engine.DetectSuspiciousIPs(context.Background(), DetectionOptions{StartDate: &start, EndDate: &now})
	require.NoError(t, err)
	require.Len(t, results, 1)

	ip := results[0]
	assert.Equal(t, "10.0.0.1", ip.IPAddress)
	assert.Equal(t, 40, ip.RiskScore)
	assert.Equal(t, []string{models.FactorVeryHighRequestRate}, ip.SuspiciousFactors)
	assert.Equal(t, models.RecommendationBan, ip.Recommendation)
}

// Scenario 2: credential stuffing combines a very-high error rate with
// multiple failed auth attempts for score 50 and a ban recommendation via
// the factor shortcut (not the score threshold).
func TestDetectSuspiciousIPs_CredentialStuffing(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeAggregateStore{aggregates: []repository.IPAggregate{
		{IPAddress: "10.0.0.2", Count: 20, MaxCreatedAt: now},
	}}
	detail := &fakeDetailStore{details: map[string][]repository.IPDetail{
		"10.0.0.2": buildStatusDetails(repeat(401, 20), nil),
	}}

	engine := newTestEngine(store, detail)
	start := now.Add(-60 * time.Minute)
	results, err := engine.DetectSuspiciousIPs(context.Background(), DetectionOptions{StartDate: &start, EndDate: &now})
	require.NoError(t, err)
	require.Len(t, results, 1)

	ip := results[0]
	assert.Equal(t, 50, ip.RiskScore)
	assert.Equal(t, []string{models.FactorVeryHighErrorRate, models.FactorMultipleFailedAuth}, ip.SuspiciousFactors)
	assert.Equal(t, models.RecommendationBan, ip.Recommendation)
}

// Scenario 3: a scanner with many unique paths and a high 404 rate scores
// 40 but is labelled safe — the score threshold (50) is not crossed and
// neither factor-shortcut condition applies, demonstrating the documented
// factor-vs-score disagreement (spec §9).
func TestDetectSuspiciousIPs_Scanner(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeAggregateStore{aggregates: []repository.IPAggregate{
		{IPAddress: "10.0.0.3", Count: 50, MaxCreatedAt: now},
	}}

	statuses := make([]int, 0, 50)
	for i := 0; i < 40; i++ {
		statuses = append(statuses, 404)
	}
	for i := 0; i < 10; i++ {
		statuses = append(statuses, 200)
	}
	paths := make([]string, 30)
	for i := range paths {
		paths[i] = "/path" + string(rune('a'+i%26)) + string(rune('0'+i/26))
	}

	detail := &fakeDetailStore{details: map[string][]repository.IPDetail{
		"10.0.0.3": buildStatusDetails(statuses, paths),
	}}

	engine := newTestEngine(store, detail)
	start := now.Add(-60 * time.Minute)
	results, err := engine.DetectSuspiciousIPs(context.Background(), DetectionOptions{StartDate: &start, EndDate: &now})
	require.NoError(t, err)
	require.Len(t, results, 1)

	ip := results[0]
	assert.Equal(t, 40, ip.RiskScore)
	assert.Contains(t, ip.SuspiciousFactors, models.FactorVeryHighErrorRate)
	assert.Contains(t, ip.SuspiciousFactors, models.FactorScanningBehavior)
	assert.Contains(t, ip.SuspiciousFactors, models.FactorHigh404Rate)
	assert.Equal(t, models.RecommendationSafe, ip.Recommendation)
}

// Scenario 4: a quiet normal user scores 0 and is filtered out by the
// default minRiskScore of 30.
func TestDetectSuspiciousIPs_QuietNormalUserFilteredOut(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeAggregateStore{aggregates: []repository.IPAggregate{
		{IPAddress: "10.0.0.4", Count: 30, MaxCreatedAt: now},
	}}
	detail := &fakeDetailStore{details: map[string][]repository.IPDetail{
		"10.0.0.4": buildStatusDetails(repeat(200, 30), nil),
	}}

	engine := newTestEngine(store, detail)
	start := now.Add(-60 * time.Minute)
	results, err := engine.DetectSuspiciousIPs(context.Background(), DetectionOptions{StartDate: &start, EndDate: &now})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDetectSuspiciousIPs_MinRiskScoreFilterIsHonored(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeAggregateStore{aggregates: []repository.IPAggregate{
		{IPAddress: "10.0.0.1", Count: 8000, MaxCreatedAt: now}, // score 40
		{IPAddress: "10.0.0.4", Count: 30, MaxCreatedAt: now},   // score 0
	}}
	detail := &fakeDetailStore{details: map[string][]repository.IPDetail{
		"10.0.0.1": buildStatusDetails(repeat(200, 8000), nil),
		"10.0.0.4": buildStatusDetails(repeat(200, 30), nil),
	}}

	engine := newTestEngine(store, detail)
	high := 35
	results, err := engine.DetectSuspiciousIPs(context.Background(), DetectionOptions{MinRiskScore: &high})
	require.NoError(t, err)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.RiskScore, high)
	}
}

func TestDetectSuspiciousIPs_SortedByRiskScoreDescending(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeAggregateStore{aggregates: []repository.IPAggregate{
		{IPAddress: "10.0.0.2", Count: 20, MaxCreatedAt: now}, // score 50
		{IPAddress: "10.0.0.1", Count: 8000, MaxCreatedAt: now}, // score 40
	}}
	detail := &fakeDetailStore{details: map[string][]repository.IPDetail{
		"10.0.0.2": buildStatusDetails(repeat(401, 20), nil),
		"10.0.0.1": buildStatusDetails(repeat(200, 8000), nil),
	}}

	engine := newTestEngine(store, detail)
	results, err := engine.DetectSuspiciousIPs(context.Background(), DetectionOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "10.0.0.2", results[0].IPAddress)
	assert.Equal(t, "10.0.0.1", results[1].IPAddress)
	assert.True(t, results[0].RiskScore >= results[1].RiskScore)
}

func TestDetectSuspiciousIPs_TieBreakByLastRequestAtDescending(t *testing.T) {
	now := time.Now().UTC()
	older := now.Add(-time.Hour)
	// Both score 40 via the rate band; ip B has a more recent last request.
	store := &fakeAggregateStore{aggregates: []repository.IPAggregate{
		{IPAddress: "10.0.0.5", Count: 8000, MaxCreatedAt: older},
		{IPAddress: "10.0.0.6", Count: 8000, MaxCreatedAt: now},
	}}
	detail := &fakeDetailStore{details: map[string][]repository.IPDetail{
		"10.0.0.5": buildStatusDetails(repeat(200, 8000), nil),
		"10.0.0.6": buildStatusDetails(repeat(200, 8000), nil),
	}}

	engine := newTestEngine(store, detail)
	results, err := engine.DetectSuspiciousIPs(context.Background(), DetectionOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "10.0.0.6", results[0].IPAddress)
	assert.Equal(t, "10.0.0.5", results[1].IPAddress)
}

func TestDetectSuspiciousIPs_AggregateErrorPropagates(t *testing.T) {
	store := &fakeAggregateStore{err: errors.New("connection reset")}
	detail := &fakeDetailStore{}

	engine := newTestEngine(store, detail)
	_, err := engine.DetectSuspiciousIPs(context.Background(), DetectionOptions{})
	assert.Error(t, err)
}

func TestDetectSuspiciousIPs_DetailErrorPropagates(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeAggregateStore{aggregates: []repository.IPAggregate{
		{IPAddress: "10.0.0.1", Count: 5, MaxCreatedAt: now},
	}}
	detail := &fakeDetailStore{errFor: map[string]error{"10.0.0.1": errors.New("boom")}}

	engine := newTestEngine(store, detail)
	_, err := engine.DetectSuspiciousIPs(context.Background(), DetectionOptions{})
	assert.Error(t, err)
}

func TestDetectSuspiciousIPs_CatalogMissingAggregateYieldsEmptyResult(t *testing.T) {
	// The repository layer converts catalog-missing into (nil, nil); the
	// engine must treat that the same as "no candidates" rather than error.
	store := &fakeAggregateStore{aggregates: []repository.IPAggregate{}}
	detail := &fakeDetailStore{}

	engine := newTestEngine(store, detail)
	results, err := engine.DetectSuspiciousIPs(context.Background(), DetectionOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDetectSuspiciousIPs_RiskScoreAlwaysInBounds(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeAggregateStore{aggregates: []repository.IPAggregate{
		{IPAddress: "10.0.0.9", Count: 100000, MaxCreatedAt: now},
	}}
	// Every possible contribution maxed out at once: rate + errors + auth + pattern.
	statuses := append(repeat(401, 50000), repeat(404, 50000)...)
	paths := make([]string, 30)
	for i := range paths {
		paths[i] = "/p" + string(rune('a'+i))
	}
	detail := &fakeDetailStore{details: map[string][]repository.IPDetail{
		"10.0.0.9": buildStatusDetails(statuses, paths),
	}}

	engine := newTestEngine(store, detail)
	results, err := engine.DetectSuspiciousIPs(context.Background(), DetectionOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.LessOrEqual(t, results[0].RiskScore, 100)
	assert.GreaterOrEqual(t, results[0].RiskScore, 0)
}

func TestMergeDetectionConfig_OverrideWinsFieldWise(t *testing.T) {
	base := config.DetectionSettings{
		HighRequestRate:     60,
		VeryHighRequestRate: 120,
		HighErrorRate:       30,
		VeryHighErrorRate:   50,
		FailedAuthThreshold: 5,
		TimeWindowMinutes:   60,
		MinRiskScore:        30,
	}
	override := &config.DetectionSettings{HighRequestRate: 10}

	merged := mergeDetectionConfig(base, override)
	assert.Equal(t, 10.0, merged.HighRequestRate)
	assert.Equal(t, base.VeryHighRequestRate, merged.VeryHighRequestRate)
	assert.Equal(t, base.TimeWindowMinutes, merged.TimeWindowMinutes)
}

func TestMergeDetectionConfig_NilOverrideReturnsBase(t *testing.T) {
	base := config.DetectionSettings{HighRequestRate: 60}
	assert.Equal(t, base, mergeDetectionConfig(base, nil))
}

func TestResolveDetectionDefaults_FillsZeroFieldsOnly(t *testing.T) {
	resolved := resolveDetectionDefaults(config.DetectionSettings{HighRequestRate: 99})
	assert.Equal(t, 99.0, resolved.HighRequestRate)
	assert.Equal(t, 120.0, resolved.VeryHighRequestRate)
	assert.Equal(t, 60, resolved.TimeWindowMinutes)
	assert.Equal(t, 30, resolved.MinRiskScore)
}

func TestDetectSuspiciousIPs_WindowDefaultsFromEndDateMinusConfig(t *testing.T) {
	// No explicit window: engine resolves start = end - timeWindowMinutes,
	// end = now. We can't observe the resolved window directly, but we can
	// confirm the call succeeds and scores using the configured divisor.
	now := time.Now().UTC()
	store := &fakeAggregateStore{aggregates: []repository.IPAggregate{
		{IPAddress: "10.0.0.1", Count: 3600, MaxCreatedAt: now}, // 60 rpm == exactly "high" boundary
	}}
	detail := &fakeDetailStore{details: map[string][]repository.IPDetail{
		"10.0.0.1": buildStatusDetails(repeat(200, 3600), nil),
	}}

	engine := newTestEngine(store, detail)
	results, err := engine.DetectSuspiciousIPs(context.Background(), DetectionOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 25, results[0].RiskScore)
	assert.Equal(t, []string{models.FactorHighRequestRate}, results[0].SuspiciousFactors)
}
