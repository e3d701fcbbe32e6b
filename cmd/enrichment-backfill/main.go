package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"estate_portal_backend/internal/enrichment/repository"
	"estate_portal_backend/internal/enrichment/service"
	"estate_portal_backend/platform/config"
	"estate_portal_backend/platform/db"
	"estate_portal_backend/platform/logger"
)

// Re-runs the full enrichment pipeline over every lead, in creation order,
// with bounded parallelism. Intended for rule-set changes that should apply
// retroactively.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting enrichment backfill")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	svc := service.New(repository.New(pool), log)

	const batchSize = 50
	const workers = 4

	var processed int
	var failed int

	cursorTime := time.Time{}
	cursorID := uuid.Nil

	for {
		ids, lastTime, lastID, err := listLeadIDs(ctx, pool, batchSize, cursorTime, cursorID)
		if err != nil {
			log.Error("failed to list leads", "error", err)
			break
		}
		if len(ids) == 0 {
			break
		}
		cursorTime = lastTime
		cursorID = lastID

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		results := make([]service.RunResult, len(ids))

		for i, id := range ids {
			i, id := i, id
			g.Go(func() error {
				results[i] = svc.RunFullEnrichment(gctx, id)
				return nil
			})
		}
		_ = g.Wait()

		for _, result := range results {
			processed++
			if result.FailedStage != "" {
				failed++
			}
		}
	}

	log.Info("enrichment backfill completed", "processed", processed, "failed", failed)
}

func listLeadIDs(ctx context.Context, pool *pgxpool.Pool, limit int, cursorTime time.Time, cursorID uuid.UUID) ([]uuid.UUID, time.Time, uuid.UUID, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, created_at
		FROM leads
		WHERE deleted_at IS NULL
		  AND (created_at > $1 OR (created_at = $1 AND id > $2))
		ORDER BY created_at ASC, id ASC
		LIMIT $3
	`, cursorTime, cursorID, limit)
	if err != nil {
		return nil, cursorTime, cursorID, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0, limit)
	lastTime := cursorTime
	lastID := cursorID
	for rows.Next() {
		var id uuid.UUID
		var createdAt time.Time
		if err := rows.Scan(&id, &createdAt); err != nil {
			return nil, cursorTime, cursorID, err
		}
		ids = append(ids, id)
		lastTime = createdAt
		lastID = id
	}

	return ids, lastTime, lastID, rows.Err()
}
