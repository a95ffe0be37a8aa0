package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatleads/internal/common/database"
	"chatleads/internal/common/logger"
	"chatleads/internal/models"
)

type stubLookup struct {
	profile *models.PartnerProfile
	err     error
	calls   int
}

func (s *stubLookup) LookupPartner(ctx context.Context, email string) (*models.PartnerProfile, error) {
	s.calls++
	return s.profile, s.err
}

func testCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}, mr
}

func TestProfile_CacheMissThenHit(t *testing.T) {
	cache, _ := testCache(t)
	lookup := &stubLookup{profile: &models.PartnerProfile{Name: "Juan", SaleOrderCount: 2}}
	svc := New(lookup, cache, time.Hour, logger.NewTestLogger(t))

	first := svc.Profile(context.Background(), "juan@obra.mx")
	require.NotNil(t, first)
	assert.Equal(t, "Juan", first.Name)
	assert.Equal(t, 1, lookup.calls)

	second := svc.Profile(context.Background(), "juan@obra.mx")
	require.NotNil(t, second)
	assert.Equal(t, "Juan", second.Name)
	assert.Equal(t, 1, lookup.calls, "second call served from cache")
}

func TestProfile_KeyIsLowercased(t *testing.T) {
	cache, mr := testCache(t)
	lookup := &stubLookup{profile: &models.PartnerProfile{Name: "Juan"}}
	svc := New(lookup, cache, time.Hour, logger.NewTestLogger(t))

	svc.Profile(context.Background(), "Juan@Obra.MX")

	assert.True(t, mr.Exists("enrich:partner:juan@obra.mx"))
	svc.Profile(context.Background(), "JUAN@OBRA.MX")
	assert.Equal(t, 1, lookup.calls)
}

func TestProfile_NegativeResultCached(t *testing.T) {
	cache, _ := testCache(t)
	lookup := &stubLookup{profile: nil}
	svc := New(lookup, cache, time.Hour, logger.NewTestLogger(t))

	assert.Nil(t, svc.Profile(context.Background(), "nadie@obra.mx"))
	assert.Nil(t, svc.Profile(context.Background(), "nadie@obra.mx"))
	assert.Equal(t, 1, lookup.calls, "not-found result is cached too")
}

func TestProfile_LookupFailureDegradesToNil(t *testing.T) {
	cache, _ := testCache(t)
	lookup := &stubLookup{err: errors.New("connection refused")}
	svc := New(lookup, cache, time.Hour, logger.NewTestLogger(t))

	assert.Nil(t, svc.Profile(context.Background(), "juan@obra.mx"))

	// Failures are not cached; the next run retries the lookup.
	svc.Profile(context.Background(), "juan@obra.mx")
	assert.Equal(t, 2, lookup.calls)
}

func TestProfile_NoCacheGoesStraightToLookup(t *testing.T) {
	lookup := &stubLookup{profile: &models.PartnerProfile{Name: "Juan"}}
	svc := New(lookup, nil, time.Hour, logger.NewTestLogger(t))

	require.NotNil(t, svc.Profile(context.Background(), "juan@obra.mx"))
	svc.Profile(context.Background(), "juan@obra.mx")
	assert.Equal(t, 2, lookup.calls)
}

func TestProfile_EmptyEmail(t *testing.T) {
	lookup := &stubLookup{}
	svc := New(lookup, nil, time.Hour, logger.NewTestLogger(t))

	assert.Nil(t, svc.Profile(context.Background(), ""))
	assert.Equal(t, 0, lookup.calls)
}

func TestProfile_EntryExpires(t *testing.T) {
	cache, mr := testCache(t)
	lookup := &stubLookup{profile: &models.PartnerProfile{Name: "Juan"}}
	svc := New(lookup, cache, time.Minute, logger.NewTestLogger(t))

	svc.Profile(context.Background(), "juan@obra.mx")
	mr.FastForward(2 * time.Minute)

	svc.Profile(context.Background(), "juan@obra.mx")
	assert.Equal(t, 2, lookup.calls)
}

func TestDecodeProfile(t *testing.T) {
	assert.Nil(t, decodeProfile("null"))
	assert.Nil(t, decodeProfile("{garbage"))

	p := decodeProfile(`{"name":"Juan","sale_order_count":3}`)
	require.NotNil(t, p)
	assert.Equal(t, "Juan", p.Name)
	assert.Equal(t, 3, p.SaleOrderCount)
}
