// Package enrich augments leads with CRM partner profiles, fronted by a
// Redis cache so repeated runs don't hammer the partner model.
package enrich

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"chatleads/internal/common/logger"
	"chatleads/internal/common/metrics"
	"chatleads/internal/models"
)

const cacheKeyPrefix = "enrich:partner:"

// PartnerLookup resolves a partner profile by email. Implemented by the
// Odoo client.
type PartnerLookup interface {
	LookupPartner(ctx context.Context, email string) (*models.PartnerProfile, error)
}

// Cache is the subset of the Redis wrapper the service needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type Service struct {
	lookup PartnerLookup
	cache  Cache
	ttl    time.Duration
	log    logger.Logger
}

// New builds the enrichment service. cache may be nil, in which case every
// call goes straight to the lookup.
func New(lookup PartnerLookup, cache Cache, ttl time.Duration, log logger.Logger) *Service {
	return &Service{lookup: lookup, cache: cache, ttl: ttl, log: log}
}

// Profile returns the partner profile for an email, or nil when no partner
// matches. Lookup and cache failures degrade to an absent profile: a lead
// without enrichment is still a lead.
func (s *Service) Profile(ctx context.Context, email string) *models.PartnerProfile {
	if email == "" {
		return nil
	}
	key := cacheKeyPrefix + strings.ToLower(email)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			metrics.EnrichmentLookups.WithLabelValues("hit").Inc()
			return decodeProfile(raw)
		} else if err != redis.Nil {
			s.log.Warn("Enrichment cache read failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	profile, err := s.lookup.LookupPartner(ctx, email)
	if err != nil {
		metrics.EnrichmentLookups.WithLabelValues("error").Inc()
		s.log.Warn("Partner lookup failed", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		return nil
	}
	metrics.EnrichmentLookups.WithLabelValues("miss").Inc()

	if s.cache != nil {
		// negative results are cached too: "null" round-trips to nil
		encoded, _ := json.Marshal(profile)
		if err := s.cache.Set(ctx, key, string(encoded), s.ttl); err != nil {
			s.log.Warn("Enrichment cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return profile
}

func decodeProfile(raw string) *models.PartnerProfile {
	var profile *models.PartnerProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil
	}
	return profile
}
