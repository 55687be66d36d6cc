package cache

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avramidis/dealscout/internal/modules/scoring"
	testdb "github.com/avramidis/dealscout/internal/testing"
)

func newTestCache(t *testing.T) *SnapshotCache {
	db, cleanup := testdb.NewTestDB(t, "cache")
	t.Cleanup(cleanup)
	return New(db, zerolog.Nop())
}

func TestCachePutGet(t *testing.T) {
	c := newTestCache(t)

	snapshot := scoring.Snapshot{OfferPrice: 200000, RehabCosts: 30000, ARV: 300000, PotentialRent: 2500, Units: 1}
	eval := scoring.Evaluate(snapshot)

	_, found := c.Get(snapshot.Hash())
	assert.False(t, found, "empty cache should miss")

	require.NoError(t, c.Put(snapshot.Hash(), "lead-1", &eval))

	cached, found := c.Get(snapshot.Hash())
	require.True(t, found)
	assert.Equal(t, eval.HoldScore, cached.HoldScore)
	assert.Equal(t, eval.FlipScore, cached.FlipScore)
	assert.InDelta(t, eval.MonthlyCashflow, cached.MonthlyCashflow, 1e-9)
}

func TestCacheInvalidate(t *testing.T) {
	c := newTestCache(t)

	a := scoring.Snapshot{OfferPrice: 100000, PotentialRent: 1200, Units: 1}
	b := scoring.Snapshot{OfferPrice: 150000, PotentialRent: 1600, Units: 1}
	evalA := scoring.Evaluate(a)
	evalB := scoring.Evaluate(b)

	require.NoError(t, c.Put(a.Hash(), "lead-1", &evalA))
	require.NoError(t, c.Put(b.Hash(), "lead-2", &evalB))

	require.NoError(t, c.Invalidate("lead-1"))

	_, found := c.Get(a.Hash())
	assert.False(t, found)
	_, found = c.Get(b.Hash())
	assert.True(t, found, "other leads' entries must survive")
}

func TestCacheCleanup(t *testing.T) {
	c := newTestCache(t)
	c.ttl = -time.Minute // every entry is born expired

	snapshot := scoring.Snapshot{OfferPrice: 100000, PotentialRent: 1200, Units: 1}
	eval := scoring.Evaluate(snapshot)
	require.NoError(t, c.Put(snapshot.Hash(), "lead-1", &eval))

	_, found := c.Get(snapshot.Hash())
	assert.False(t, found, "expired entries must not be served")

	removed, err := c.Cleanup()
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	total, _, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
