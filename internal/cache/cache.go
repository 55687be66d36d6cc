// Package cache persists computed evaluation snapshots in the cache database
// so list views don't recompute scores for every row on every request. The
// cache is purely an accelerator: entries are keyed by a hash of the financial
// inputs and any change to the inputs naturally misses.
package cache

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/avramidis/dealscout/internal/database"
	"github.com/avramidis/dealscout/internal/modules/scoring"
)

// DefaultTTL is how long a cached evaluation stays valid. Evaluations are
// deterministic, so the TTL only bounds growth from abandoned input hashes.
const DefaultTTL = 24 * time.Hour

// SnapshotCache stores msgpack-encoded evaluations in the cache database
type SnapshotCache struct {
	db  *database.DB
	ttl time.Duration
	log zerolog.Logger
}

// New creates a snapshot cache backed by the cache database
func New(db *database.DB, log zerolog.Logger) *SnapshotCache {
	return &SnapshotCache{
		db:  db,
		ttl: DefaultTTL,
		log: log.With().Str("component", "snapshot_cache").Logger(),
	}
}

// Get returns the cached evaluation for an input hash, or found=false on a
// miss or an expired entry. Decode failures are treated as misses so a codec
// change never breaks reads.
func (c *SnapshotCache) Get(inputHash string) (*scoring.Evaluation, bool) {
	var payload []byte
	err := c.db.QueryRow(
		`SELECT payload FROM evaluation_snapshots WHERE input_hash = ? AND expires_at > ?`,
		inputHash, time.Now().Unix(),
	).Scan(&payload)
	if err != nil {
		return nil, false
	}

	var eval scoring.Evaluation
	if err := msgpack.Unmarshal(payload, &eval); err != nil {
		c.log.Warn().Err(err).Str("input_hash", inputHash).Msg("Discarding undecodable cache entry")
		return nil, false
	}

	return &eval, true
}

// Put stores an evaluation under its input hash, replacing any previous entry
func (c *SnapshotCache) Put(inputHash, leadID string, eval *scoring.Evaluation) error {
	payload, err := msgpack.Marshal(eval)
	if err != nil {
		return fmt.Errorf("failed to encode evaluation: %w", err)
	}

	now := time.Now()
	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO evaluation_snapshots (input_hash, lead_id, payload, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)`,
		inputHash, leadID, payload, now.Unix(), now.Add(c.ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store evaluation snapshot: %w", err)
	}

	return nil
}

// Invalidate removes all cached evaluations for a lead. Called when a lead's
// financials change so stale scores never linger under the old hash.
func (c *SnapshotCache) Invalidate(leadID string) error {
	_, err := c.db.Exec(`DELETE FROM evaluation_snapshots WHERE lead_id = ?`, leadID)
	if err != nil {
		return fmt.Errorf("failed to invalidate snapshots for lead %s: %w", leadID, err)
	}
	return nil
}

// Cleanup deletes expired entries and returns how many were removed.
// Run nightly by the scheduler.
func (c *SnapshotCache) Cleanup() (int64, error) {
	result, err := c.db.Exec(`DELETE FROM evaluation_snapshots WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up expired snapshots: %w", err)
	}

	removed, _ := result.RowsAffected()
	if removed > 0 {
		c.log.Debug().Int64("removed", removed).Msg("Expired evaluation snapshots removed")
	}
	return removed, nil
}

// Stats returns entry counts for the system status endpoint
func (c *SnapshotCache) Stats() (total, expired int64, err error) {
	now := time.Now().Unix()
	if err = c.db.QueryRow(`SELECT COUNT(*) FROM evaluation_snapshots`).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	if err = c.db.QueryRow(`SELECT COUNT(*) FROM evaluation_snapshots WHERE expires_at <= ?`, now).Scan(&expired); err != nil {
		return 0, 0, fmt.Errorf("failed to count expired snapshots: %w", err)
	}
	return total, expired, nil
}
