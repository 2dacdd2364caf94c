// Package runhistory persists one row per planning run and provides an
// idempotency cache so that retried requests (the same request body
// submitted twice, e.g. by an at-least-once HTTP client) do not re-solve.
// Grounded on shivamshaw23-Hintro's pkg/db (pgxpool.Pool construction) and
// pkg/cache (go-redis Client construction) plus its repository package's
// pattern of a small struct wrapping a pool with one method per operation.
package runhistory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"example.com/your_project/two-step-routing/cfrjson"
)

// Run is one row of planning history: the request that was solved, whether
// a refinement pass ran, and when it completed.
type Run struct {
	ID            string
	RequestHash   string
	ShipmentCount int
	VehicleCount  int
	Refined       bool
	CompletedAt   time.Time
}

// Store persists Runs to PostgreSQL and caches completed results in Redis
// keyed by request hash, so a duplicate submission of the same request
// short-circuits to the cached outcome instead of solving again.
type Store struct {
	pool  *pgxpool.Pool
	cache *redis.Client
}

// NewStore wraps an already-connected pool and cache client. Connectivity
// is verified by the callers that construct pool/cache (mirroring
// db.NewPostgresPool / cache.NewRedisClient's own Ping checks), not here.
func NewStore(pool *pgxpool.Pool, cache *redis.Client) *Store {
	return &Store{pool: pool, cache: cache}
}

// HashRequest derives the idempotency key for a request: a stable SHA-256
// of its canonical JSON encoding.
func HashRequest(req *cfrjson.OptimizeToursRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("runhistory: marshal request: %w", err)
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

const cacheKeyPrefix = "twostep:run:"

// Lookup returns a previously recorded Run for this request hash, if the
// idempotency cache still has it. ok is false on a cache miss; callers
// should then run the planner and call Record.
func (s *Store) Lookup(ctx context.Context, requestHash string) (run Run, ok bool, err error) {
	raw, err := s.cache.Get(ctx, cacheKeyPrefix+requestHash).Bytes()
	if err == redis.Nil {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("runhistory: cache lookup: %w", err)
	}
	if err := json.Unmarshal(raw, &run); err != nil {
		return Run{}, false, fmt.Errorf("runhistory: decode cached run: %w", err)
	}
	return run, true, nil
}

// Record inserts a row into the run_history table and refreshes the
// idempotency cache entry for ttl.
func (s *Store) Record(ctx context.Context, run Run, ttl time.Duration) error {
	const insert = `
		INSERT INTO run_history (id, request_hash, shipment_count, vehicle_count, refined, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`
	if _, err := s.pool.Exec(ctx, insert,
		run.ID, run.RequestHash, run.ShipmentCount, run.VehicleCount, run.Refined, run.CompletedAt,
	); err != nil {
		return fmt.Errorf("runhistory: insert run: %w", err)
	}

	encoded, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("runhistory: marshal run for cache: %w", err)
	}
	if err := s.cache.Set(ctx, cacheKeyPrefix+run.RequestHash, encoded, ttl).Err(); err != nil {
		return fmt.Errorf("runhistory: cache set: %w", err)
	}
	return nil
}

// HealthCheck verifies both the database pool and the cache client are
// reachable, mirroring the teacher's db.HealthCheck/cache.HealthCheck pair.
func (s *Store) HealthCheck(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("runhistory: postgres unhealthy: %w", err)
	}
	if err := s.cache.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("runhistory: redis unhealthy: %w", err)
	}
	return nil
}
