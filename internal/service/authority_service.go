// Package service provides business logic implementations.
package service

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/sentrylog/internal/models"
	"github.com/yasinhessnawi1/sentrylog/internal/repository"
	"github.com/yasinhessnawi1/sentrylog/internal/utils/ratelimit"
)

// Authority is the single source of truth for IP allow/deny decisions (spec
// §4.C). It owns both the blacklist and the whitelist, mirrors each into an
// in-memory cache for lock-cheap lookups on the request path, and keeps rate
// limiting for the admin surface alongside it.
type Authority struct {
	banRepo       repository.BanEntryRepository
	whitelistRepo repository.WhitelistRepository

	rateLimiterStore *ratelimit.Store

	banCache  map[string]bool
	banCIDRs  []*net.IPNet
	banMutex  sync.RWMutex

	whitelistCache map[string]bool
	whitelistCIDRs []*net.IPNet
	whitelistMutex sync.RWMutex

	refreshInterval time.Duration
}

// NewAuthority creates a new Authority, seeding and periodically refreshing
// its ban/whitelist caches from the repositories.
//
// Parameters:
//   - banRepo: Repository for ban storage
//   - whitelistRepo: Repository for whitelist storage
//   - refreshInterval: How often to refresh both caches from the database
//
// Returns:
//   - A configured Authority
func NewAuthority(banRepo repository.BanEntryRepository, whitelistRepo repository.WhitelistRepository, refreshInterval time.Duration) *Authority {
	limiterStore := ratelimit.NewStore(ratelimit.Rate{
		RequestsPerSecond: 100,
		Burst:             50,
	}, 10*time.Minute)

	// admin-read is generous: dashboards poll listings frequently.
	limiterStore.SetRate("admin-read", ratelimit.Rate{
		RequestsPerSecond: 80,
		Burst:             50,
	})

	// admin-write is tighter: bans are a deliberate, infrequent action.
	limiterStore.SetRate("admin-write", ratelimit.Rate{
		RequestsPerSecond: 10,
		Burst:             20,
	})

	a := &Authority{
		banRepo:          banRepo,
		whitelistRepo:    whitelistRepo,
		rateLimiterStore: limiterStore,
		banCache:         make(map[string]bool),
		banCIDRs:         make([]*net.IPNet, 0),
		whitelistCache:   make(map[string]bool),
		whitelistCIDRs:   make([]*net.IPNet, 0),
		refreshInterval:  refreshInterval,
	}

	go a.refreshBanCache()
	go a.refreshWhitelistCache()
	go a.startRefreshTimer()

	return a
}

// IsRateLimited checks if a client has exceeded their rate limit for category.
//
// Parameters:
//   - clientID: Identifier for the client (typically IP address)
//   - category: The endpoint category ("admin-read", "admin-write")
//
// Returns:
//   - true if the client is rate limited, false otherwise
func (a *Authority) IsRateLimited(clientID, category string) bool {
	return !a.rateLimiterStore.GetLimiter(clientID, category).Allow()
}

// IsBlacklisted reports whether an active (non-expired) BanEntry exists for ip.
//
// Parameters:
//   - ip: The IP address to check
//
// Returns:
//   - true iff ip is actively banned
func (a *Authority) IsBlacklisted(ip string) bool {
	return matchesCache(&a.banMutex, a.banCache, a.banCIDRs, ip)
}

// IsWhitelisted reports whether ip matches an allow-list entry. A whitelist
// match always takes precedence over a ban for any external "is this IP
// allowed" decision (spec §4.C invariant); that composition is the caller's
// responsibility, not this method's.
//
// Parameters:
//   - ip: The IP address to check
//
// Returns:
//   - true iff ip is whitelisted
func (a *Authority) IsWhitelisted(ip string) bool {
	return matchesCache(&a.whitelistMutex, a.whitelistCache, a.whitelistCIDRs, ip)
}

func matchesCache(mu *sync.RWMutex, cache map[string]bool, cidrs []*net.IPNet, ip string) bool {
	mu.RLock()
	defer mu.RUnlock()

	if cache[ip] {
		return true
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range cidrs {
		if cidr.Contains(parsedIP) {
			return true
		}
	}

	return false
}

// Ban creates or refreshes an active ban for ip (spec §4.C). When a ban
// already exists for ip, this call is idempotent with respect to the
// address: no new row is created, but reason, bannedBy, and expiresAt are
// overwritten with the new values. The merge happens in a single statement
// against the repository's ip_address unique index (BanEntryRepository.Upsert),
// so two concurrent Ban calls for the same address — e.g. two detection
// workers both reacting to the same IP crossing the risk threshold — cannot
// race each other into creating duplicate active bans the way a separate
// lookup followed by a separate create or update would.
//
// Parameters:
//   - ctx: Context for the operation
//   - ip: The IP address or CIDR range to ban
//   - reason: The reason for the ban
//   - expiresAt: When the ban expires (nil for permanent)
//   - bannedBy: Who or what imposed the ban
//
// Returns:
//   - The created or refreshed ban record
//   - Error if the operation fails
func (a *Authority) Ban(ctx context.Context, ip, reason string, expiresAt *time.Time, bannedBy string) (*models.BanEntry, error) {
	ban, err := a.banRepo.Upsert(ctx, models.NewBanEntry(ip, reason, expiresAt, bannedBy))
	if err != nil {
		return nil, err
	}

	a.addBanToCache(ban)

	return ban, nil
}

// Unban removes a ban by ID.
//
// Parameters:
//   - ctx: Context for the operation
//   - id: The ID of the ban to remove
//
// Returns:
//   - Error if the operation fails
func (a *Authority) Unban(ctx context.Context, id int64) error {
	bans, err := a.banRepo.GetAll(ctx)
	if err != nil {
		return err
	}

	var ipToRemove string
	for _, ban := range bans {
		if ban.ID == id {
			ipToRemove = ban.IPAddress
			break
		}
	}

	if err := a.banRepo.Delete(ctx, id); err != nil {
		return err
	}

	if ipToRemove != "" {
		a.banMutex.Lock()
		delete(a.banCache, ipToRemove)
		a.banMutex.Unlock()
	}

	go a.refreshBanCache()

	return nil
}

// ListBans returns all active bans.
//
// Parameters:
//   - ctx: Context for the operation
//
// Returns:
//   - A slice of all active bans
//   - Error if the operation fails
func (a *Authority) ListBans(ctx context.Context) ([]*models.BanEntry, error) {
	return a.banRepo.GetAll(ctx)
}

// Whitelist adds ip to the allow list.
//
// Parameters:
//   - ctx: Context for the operation
//   - ip: The IP address or CIDR range to whitelist
//   - reason: The reason for the entry
//   - expiresAt: When the entry expires (nil for permanent)
//   - createdBy: Who or what created the entry
//
// Returns:
//   - The created whitelist entry
//   - Error if the operation fails
func (a *Authority) Whitelist(ctx context.Context, ip, reason string, expiresAt *time.Time, createdBy string) (*models.WhitelistEntry, error) {
	entry, err := a.whitelistRepo.Create(ctx, models.NewWhitelistEntry(ip, reason, expiresAt, createdBy))
	if err != nil {
		return nil, err
	}

	a.addWhitelistToCache(entry)

	return entry, nil
}

// CleanupExpiredBans removes expired bans from the database and refreshes
// the cache if any were removed.
//
// Parameters:
//   - ctx: Context for the operation
//
// Returns:
//   - The number of bans removed
//   - Error if the operation fails
func (a *Authority) CleanupExpiredBans(ctx context.Context) (int64, error) {
	count, err := a.banRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		go a.refreshBanCache()
	}

	return count, nil
}

func (a *Authority) refreshBanCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bans, err := a.banRepo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to refresh ban cache")
		return
	}

	newCache := make(map[string]bool)
	newCIDRs := make([]*net.IPNet, 0)

	for _, ban := range bans {
		if ban.IsExpired() {
			continue
		}
		if _, network, err := net.ParseCIDR(ban.IPAddress); err == nil {
			newCIDRs = append(newCIDRs, network)
		} else {
			newCache[ban.IPAddress] = true
		}
	}

	a.banMutex.Lock()
	a.banCache = newCache
	a.banCIDRs = newCIDRs
	a.banMutex.Unlock()

	log.Debug().
		Int("direct_bans", len(newCache)).
		Int("cidr_bans", len(newCIDRs)).
		Msg("Refreshed ban cache")
}

func (a *Authority) refreshWhitelistCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entries, err := a.whitelistRepo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to refresh whitelist cache")
		return
	}

	newCache := make(map[string]bool)
	newCIDRs := make([]*net.IPNet, 0)

	for _, entry := range entries {
		if entry.IsExpired() {
			continue
		}
		if _, network, err := net.ParseCIDR(entry.IPAddress); err == nil {
			newCIDRs = append(newCIDRs, network)
		} else {
			newCache[entry.IPAddress] = true
		}
	}

	a.whitelistMutex.Lock()
	a.whitelistCache = newCache
	a.whitelistCIDRs = newCIDRs
	a.whitelistMutex.Unlock()

	log.Debug().
		Int("direct_entries", len(newCache)).
		Int("cidr_entries", len(newCIDRs)).
		Msg("Refreshed whitelist cache")
}

func (a *Authority) addBanToCache(ban *models.BanEntry) {
	if ban.IsExpired() {
		return
	}

	if _, network, err := net.ParseCIDR(ban.IPAddress); err == nil {
		a.banMutex.Lock()
		a.banCIDRs = append(a.banCIDRs, network)
		a.banMutex.Unlock()
	} else {
		a.banMutex.Lock()
		a.banCache[ban.IPAddress] = true
		a.banMutex.Unlock()
	}
}

func (a *Authority) addWhitelistToCache(entry *models.WhitelistEntry) {
	if entry.IsExpired() {
		return
	}

	if _, network, err := net.ParseCIDR(entry.IPAddress); err == nil {
		a.whitelistMutex.Lock()
		a.whitelistCIDRs = append(a.whitelistCIDRs, network)
		a.whitelistMutex.Unlock()
	} else {
		a.whitelistMutex.Lock()
		a.whitelistCache[entry.IPAddress] = true
		a.whitelistMutex.Unlock()
	}
}

// startRefreshTimer periodically refreshes both caches.
func (a *Authority) startRefreshTimer() {
	ticker := time.NewTicker(a.refreshInterval)
	defer ticker.Stop()

	for range ticker.C {
		a.refreshBanCache()
		a.refreshWhitelistCache()
	}
}
